// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/store"
	"github.com/danielhkuo/campus-vote/testutil"
)

func TestIssue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	election := testutil.CreateTestElection(t, f.db, "Student Council", true)
	voter := testutil.CreateTestVoter(t, f.db, election, "S-1")

	cred, err := f.issuer.Issue(ctx, "S-1")
	require.NoError(t, err)

	assert.Equal(t, f.hasher.Token("S-1", election), cred.Token)
	assert.Equal(t, voter.ID, cred.Voter.ID)
	assert.Equal(t, election, cred.Election.ID)
	assert.Equal(t, "Student Council", cred.Election.Name)

	// Issuance is read-only
	after := testutil.LoadVoter(t, f.db, voter.ID)
	assert.True(t, after.IsEligible)
	assert.False(t, after.HasVoted)
}

func TestIssueFailures(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		setup  func(t *testing.T, f *fixture)
		kind   Kind
		reason error
	}{
		{
			name:   "unknown voter",
			setup:  func(t *testing.T, f *fixture) { testutil.CreateTestElection(t, f.db, "A", true) },
			kind:   KindNotFound,
			reason: ErrVoterNotFound,
		},
		{
			name: "already voted",
			setup: func(t *testing.T, f *fixture) {
				e := testutil.CreateTestElection(t, f.db, "A", true)
				v := testutil.CreateTestVoter(t, f.db, e, "S-1")
				testutil.SetVoterState(t, f.db, v.ID, false, true)
			},
			kind:   KindConflict,
			reason: ErrAlreadyVoted,
		},
		{
			name: "not eligible",
			setup: func(t *testing.T, f *fixture) {
				e := testutil.CreateTestElection(t, f.db, "A", true)
				v := testutil.CreateTestVoter(t, f.db, e, "S-1")
				testutil.SetVoterState(t, f.db, v.ID, false, false)
			},
			kind:   KindForbidden,
			reason: ErrNotEligible,
		},
		{
			name: "eligible in two open elections",
			setup: func(t *testing.T, f *fixture) {
				a := testutil.CreateTestElection(t, f.db, "A", true)
				b := testutil.CreateTestElection(t, f.db, "B", true)
				testutil.CreateTestVoter(t, f.db, a, "S-1")
				testutil.CreateTestVoter(t, f.db, b, "S-1")
			},
			kind:   KindConflict,
			reason: ErrAmbiguousVoter,
		},
		{
			name: "window not yet open",
			setup: func(t *testing.T, f *fixture) {
				e := testutil.CreateTestElectionWindow(t, f.db, "A", true, now.Add(time.Hour), now.Add(2*time.Hour))
				testutil.CreateTestVoter(t, f.db, e, "S-1")
			},
			kind:   KindForbidden,
			reason: ErrElectionClosed,
		},
		{
			name: "window already closed",
			setup: func(t *testing.T, f *fixture) {
				e := testutil.CreateTestElectionWindow(t, f.db, "A", true, now.Add(-2*time.Hour), now.Add(-time.Hour))
				testutil.CreateTestVoter(t, f.db, e, "S-1")
			},
			kind:   KindForbidden,
			reason: ErrElectionClosed,
		},
		{
			name: "election inactive",
			setup: func(t *testing.T, f *fixture) {
				e := testutil.CreateTestElection(t, f.db, "A", false)
				testutil.CreateTestVoter(t, f.db, e, "S-1")
			},
			kind:   KindNotFound,
			reason: ErrVoterNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(t, f)

			_, err := f.issuer.Issue(context.Background(), "S-1")
			requireKind(t, err, tt.kind, tt.reason)
		})
	}
}

func TestIssuePicksOpenElection(t *testing.T) {
	f := newFixture(t)
	now := time.Now()

	// Voted last year, eligible this year
	old := testutil.CreateTestElectionWindow(t, f.db, "2024", true, now.Add(-400*24*time.Hour), now.Add(-399*24*time.Hour))
	v := testutil.CreateTestVoter(t, f.db, old, "S-1")
	testutil.SetVoterState(t, f.db, v.ID, false, true)

	current := testutil.CreateTestElection(t, f.db, "2025", true)
	testutil.CreateTestVoter(t, f.db, current, "S-1")

	cred, err := f.issuer.Issue(context.Background(), "S-1")
	require.NoError(t, err)
	assert.Equal(t, current, cred.Election.ID)
}

func TestSelectEligiblePrecedence(t *testing.T) {
	now := time.Now()
	open := models.Election{ID: 1, IsActive: true, StartTime: now.Add(-time.Hour), EndTime: now.Add(time.Hour)}
	other := models.Election{ID: 2, IsActive: true, StartTime: now.Add(-time.Hour), EndTime: now.Add(time.Hour)}

	record := func(e models.Election, eligible, voted bool) store.VoterRecord {
		return store.VoterRecord{
			Voter:    models.Voter{StudentID: "S-1", ElectionID: e.ID, IsEligible: eligible, HasVoted: voted},
			Election: e,
		}
	}

	// Voted in one open election, not eligible in another: already voted wins
	_, err := selectEligible([]store.VoterRecord{record(other, false, false), record(open, false, true)}, now)
	requireKind(t, err, KindConflict, ErrAlreadyVoted)

	// The window is inclusive at both ends
	edge := open
	edge.StartTime = now
	edge.EndTime = now
	got, err := selectEligible([]store.VoterRecord{record(edge, true, false)}, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Election.ID)

	_, err = selectEligible(nil, now)
	requireKind(t, err, KindNotFound, ErrVoterNotFound)
}
