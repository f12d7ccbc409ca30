// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/store"
	"github.com/danielhkuo/campus-vote/testutil"
)

func fullBallot(b testutil.Ballot) []models.VoteTriple {
	return []models.VoteTriple{
		testutil.Vote(b.ElectionID, b.Positions[0], b.Candidates[0][0]),
		testutil.Vote(b.ElectionID, b.Positions[1], b.Candidates[1][1]),
	}
}

func TestCast(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := testutil.CreateTestBallot(t, f.db, "S-1")
	p := f.login(t, "S-1", b.ElectionID)

	n, err := f.engine.Cast(ctx, p, fullBallot(b))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, 2, testutil.CountBallots(t, f.db, b.ElectionID))

	voter := testutil.LoadVoter(t, f.db, b.Voter.ID)
	assert.True(t, voter.HasVoted)
	assert.False(t, voter.IsEligible)

	// Records carry the fingerprint, never the student id
	var fingerprints []string
	rows, err := f.db.Query(`SELECT DISTINCT voter_fingerprint FROM ballot_record`)
	require.NoError(t, err)
	for rows.Next() {
		var fp string
		require.NoError(t, rows.Scan(&fp))
		fingerprints = append(fingerprints, fp)
	}
	require.NoError(t, rows.Close())
	assert.Equal(t, []string{p.Fingerprint}, fingerprints)
}

func TestCastOrderIrrelevant(t *testing.T) {
	f := newFixture(t)

	b := testutil.CreateTestBallot(t, f.db, "S-1")
	p := f.login(t, "S-1", b.ElectionID)

	votes := fullBallot(b)
	votes[0], votes[1] = votes[1], votes[0]

	n, err := f.engine.Cast(context.Background(), p, votes)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCastResubmission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := testutil.CreateTestBallot(t, f.db, "S-1")
	p := f.login(t, "S-1", b.ElectionID)

	_, err := f.engine.Cast(ctx, p, fullBallot(b))
	require.NoError(t, err)

	_, err = f.engine.Cast(ctx, p, fullBallot(b))
	requireKind(t, err, KindConflict, ErrAlreadyVoted)
	assert.Equal(t, 2, testutil.CountBallots(t, f.db, b.ElectionID))
}

func TestCastRechecksUnderLock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := testutil.CreateTestBallot(t, f.db, "S-1")
	p := f.login(t, "S-1", b.ElectionID)

	// Deactivated after authentication; the principal still says eligible
	testutil.SetVoterState(t, f.db, b.Voter.ID, false, false)
	require.True(t, p.Voter.IsEligible)

	_, err := f.engine.Cast(ctx, p, fullBallot(b))
	requireKind(t, err, KindForbidden, ErrNotEligible)
	assert.Zero(t, testutil.CountBallots(t, f.db, b.ElectionID))
}

func TestCastElectionClosedAfterLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := testutil.CreateTestBallot(t, f.db, "S-1")
	p := f.login(t, "S-1", b.ElectionID)

	_, err := f.db.Exec(`UPDATE election SET is_active = $1 WHERE id = $2`, false, b.ElectionID)
	require.NoError(t, err)

	_, err = f.engine.Cast(ctx, p, fullBallot(b))
	requireKind(t, err, KindForbidden, ErrElectionClosed)

	assert.Zero(t, testutil.CountBallots(t, f.db, b.ElectionID))
	assert.False(t, testutil.LoadVoter(t, f.db, b.Voter.ID).HasVoted)
}

func TestCastDatastoreFailureDuringValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := testutil.CreateTestBallot(t, f.db, "S-1")
	p := f.login(t, "S-1", b.ElectionID)

	// Position lookups fail once the table is gone; elections still resolve.
	_, err := f.db.Exec(`PRAGMA foreign_keys = OFF`)
	require.NoError(t, err)
	_, err = f.db.Exec(`DROP TABLE election_position`)
	require.NoError(t, err)

	_, err = f.engine.Cast(ctx, p, fullBallot(b))
	requireKind(t, err, KindInternal, nil)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "internal error", verr.PublicMessage())

	assert.Zero(t, testutil.CountBallots(t, f.db, b.ElectionID))
	voter := testutil.LoadVoter(t, f.db, b.Voter.ID)
	assert.False(t, voter.HasVoted)
	assert.True(t, voter.IsEligible)
}

func TestCastRejectsWholeBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := testutil.CreateTestBallot(t, f.db, "S-1")
	p := f.login(t, "S-1", b.ElectionID)

	tests := []struct {
		name   string
		votes  []models.VoteTriple
		kind   Kind
		reason error
	}{
		{
			name: "second candidate mismatched",
			votes: []models.VoteTriple{
				testutil.Vote(b.ElectionID, b.Positions[0], b.Candidates[0][0]),
				testutil.Vote(b.ElectionID, b.Positions[1], b.Candidates[0][0]),
			},
			kind:   KindValidation,
			reason: ErrCandidateMismatch,
		},
		{
			name: "duplicate position",
			votes: []models.VoteTriple{
				testutil.Vote(b.ElectionID, b.Positions[0], b.Candidates[0][0]),
				testutil.Vote(b.ElectionID, b.Positions[0], b.Candidates[0][1]),
			},
			kind:   KindValidation,
			reason: ErrDuplicatePosition,
		},
		{
			name:   "empty",
			votes:  []models.VoteTriple{},
			kind:   KindValidation,
			reason: ErrEmptyBallot,
		},
		{
			name:   "missing candidate",
			votes:  []models.VoteTriple{{Election: ptr(b.ElectionID), Position: ptr(b.Positions[0])}},
			kind:   KindValidation,
			reason: ErrMissingField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.Cast(ctx, p, tt.votes)
			requireKind(t, err, tt.kind, tt.reason)

			assert.Zero(t, testutil.CountBallots(t, f.db, b.ElectionID))
			voter := testutil.LoadVoter(t, f.db, b.Voter.ID)
			assert.False(t, voter.HasVoted)
			assert.True(t, voter.IsEligible)
		})
	}
}

func TestCastDuplicateRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := testutil.CreateTestBallot(t, f.db, "S-1")
	p := f.login(t, "S-1", b.ElectionID)

	// A stray record for this voter and position, e.g. from a repaired import
	_, err := store.New(f.db).InsertBallot(ctx, models.BallotRecord{
		ElectionID:  b.ElectionID,
		PositionID:  b.Positions[1],
		CandidateID: b.Candidates[1][0],
		Fingerprint: p.Fingerprint,
		CreatedAt:   time.Now(),
	})
	require.NoError(t, err)

	_, err = f.engine.Cast(ctx, p, fullBallot(b))
	requireKind(t, err, KindConflict, ErrDuplicateVote)

	assert.Equal(t, 1, testutil.CountBallots(t, f.db, b.ElectionID))
	assert.False(t, testutil.LoadVoter(t, f.db, b.Voter.ID).HasVoted)
}

func TestCastWithoutFingerprint(t *testing.T) {
	f := newFixture(t)

	b := testutil.CreateTestBallot(t, f.db, "S-1")
	p := auth.VoterPrincipal{Voter: b.Voter}

	_, err := f.engine.Cast(context.Background(), p, fullBallot(b))
	requireKind(t, err, KindInternal, nil)
	assert.Equal(t, "internal error", err.(*Error).PublicMessage())
}

func TestCastConcurrentSameVoter(t *testing.T) {
	f := newFixture(t)

	b := testutil.CreateTestBallot(t, f.db, "S-1")
	p := f.login(t, "S-1", b.ElectionID)

	const attempts = 10
	var wg sync.WaitGroup
	var successes, conflicts atomic.Int32

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.Cast(context.Background(), p, fullBallot(b))
			switch {
			case err == nil:
				successes.Add(1)
			case KindOf(err) == KindConflict:
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(attempts-1), conflicts.Load())
	assert.Equal(t, 2, testutil.CountBallots(t, f.db, b.ElectionID))
}

func TestCastConcurrentDifferentVoters(t *testing.T) {
	f := newFixture(t)

	b := testutil.CreateTestBallot(t, f.db, "S-0")

	const voters = 8
	principals := make([]auth.VoterPrincipal, voters)
	for i := range principals {
		code := "S-" + strconv.Itoa(i+1)
		testutil.CreateTestVoter(t, f.db, b.ElectionID, code)
		principals[i] = f.login(t, code, b.ElectionID)
	}

	var wg sync.WaitGroup
	var failures atomic.Int32
	for _, p := range principals {
		wg.Add(1)
		go func(p auth.VoterPrincipal) {
			defer wg.Done()
			// Everyone picks the same candidates
			if _, err := f.engine.Cast(context.Background(), p, fullBallot(b)); err != nil {
				t.Errorf("cast failed for %s: %v", p.Voter.StudentID, err)
				failures.Add(1)
			}
		}(p)
	}
	wg.Wait()

	assert.Zero(t, failures.Load())
	assert.Equal(t, voters*2, testutil.CountBallots(t, f.db, b.ElectionID))
}
