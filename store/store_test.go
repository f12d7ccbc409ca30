// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/campus-vote/db"
	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/store"
	"github.com/danielhkuo/campus-vote/testutil"
)

func TestElectionLookup(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	st := store.New(conn)
	ctx := context.Background()

	id := testutil.CreateTestElection(t, conn, "Student Council", true)

	found, err := st.Election(ctx, id)
	require.NoError(t, err)
	require.True(t, found.IsSome())

	e := found.Unwrap()
	assert.Equal(t, "Student Council", e.Name)
	assert.True(t, e.IsActive)
	assert.True(t, e.Open(time.Now()))

	missing, err := st.Election(ctx, id+100)
	require.NoError(t, err)
	assert.True(t, missing.IsNone())
}

func TestActiveElections(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	ctx := context.Background()

	a := testutil.CreateTestElection(t, conn, "A", true)
	testutil.CreateTestElection(t, conn, "B", false)

	elections, err := store.New(conn).ActiveElections(ctx)
	require.NoError(t, err)
	require.Len(t, elections, 1)
	assert.Equal(t, a, elections[0].ID)
}

func TestVoterLookups(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	st := store.New(conn)
	ctx := context.Background()

	e1 := testutil.CreateTestElection(t, conn, "2025", true)
	e2 := testutil.CreateTestElection(t, conn, "2026", false)
	v1 := testutil.CreateTestVoter(t, conn, e1, "S-1")
	testutil.CreateTestVoter(t, conn, e2, "S-1")

	t.Run("by code is scoped to election", func(t *testing.T) {
		found, err := st.VoterByCode(ctx, "S-1", e1)
		require.NoError(t, err)
		require.True(t, found.IsSome())
		assert.Equal(t, v1.ID, found.Unwrap().ID)

		missing, err := st.VoterByCode(ctx, "S-2", e1)
		require.NoError(t, err)
		assert.True(t, missing.IsNone())
	})

	t.Run("records span elections", func(t *testing.T) {
		records, err := st.VoterRecords(ctx, "S-1")
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, e1, records[0].Election.ID)
		assert.Equal(t, e2, records[1].Election.ID)
		assert.Equal(t, e2, records[1].Voter.ElectionID)
	})

	t.Run("by id", func(t *testing.T) {
		found, err := st.Voter(ctx, v1.ID)
		require.NoError(t, err)
		v := found.Unwrap()
		assert.Equal(t, "S-1", v.StudentID)
		assert.True(t, v.IsEligible)
		assert.False(t, v.HasVoted)
	})
}

func TestDuplicateVoterRejected(t *testing.T) {
	conn := testutil.SetupTestDB(t)

	e := testutil.CreateTestElection(t, conn, "2025", true)
	testutil.CreateTestVoter(t, conn, e, "S-1")

	_, err := store.New(conn).CreateVoter(context.Background(), models.Voter{StudentID: "S-1", FullName: "Dup", ElectionID: e})
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err))
}

func TestPositionAndCandidateScoping(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	st := store.New(conn)
	ctx := context.Background()

	e1 := testutil.CreateTestElection(t, conn, "A", true)
	e2 := testutil.CreateTestElection(t, conn, "B", true)
	p1 := testutil.CreateTestPosition(t, conn, e1, "President")
	p2 := testutil.CreateTestPosition(t, conn, e1, "Treasurer")
	c1 := testutil.CreateTestCandidate(t, conn, e1, p1, "C-1")

	found, err := st.Position(ctx, p1, e1)
	require.NoError(t, err)
	assert.True(t, found.IsSome())

	found, err = st.Position(ctx, p1, e2)
	require.NoError(t, err)
	assert.True(t, found.IsNone(), "position must not resolve under another election")

	cand, err := st.Candidate(ctx, c1, p1)
	require.NoError(t, err)
	assert.True(t, cand.IsSome())

	cand, err = st.Candidate(ctx, c1, p2)
	require.NoError(t, err)
	assert.True(t, cand.IsNone(), "candidate must not resolve under another position")
}

func TestBallotRecords(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	st := store.New(conn)
	ctx := context.Background()

	b := testutil.CreateTestBallot(t, conn, "S-1")
	rec := models.BallotRecord{
		ElectionID:  b.ElectionID,
		PositionID:  b.Positions[0],
		CandidateID: b.Candidates[0][0],
		Fingerprint: "fp-1",
		CreatedAt:   time.Now(),
	}

	exists, err := st.BallotExists(ctx, "fp-1", b.Positions[0])
	require.NoError(t, err)
	assert.False(t, exists)

	id, err := st.InsertBallot(ctx, rec)
	require.NoError(t, err)
	assert.NotZero(t, id)

	exists, err = st.BallotExists(ctx, "fp-1", b.Positions[0])
	require.NoError(t, err)
	assert.True(t, exists)

	// Same fingerprint, same position
	rec.CandidateID = b.Candidates[0][1]
	_, err = st.InsertBallot(ctx, rec)
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err))

	// Another voter may pick the same candidate
	rec.Fingerprint = "fp-2"
	_, err = st.InsertBallot(ctx, rec)
	require.NoError(t, err)
}

func TestMarkVoted(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	st := store.New(conn)
	ctx := context.Background()

	e := testutil.CreateTestElection(t, conn, "2025", true)
	v := testutil.CreateTestVoter(t, conn, e, "S-1")

	require.NoError(t, st.MarkVoted(ctx, v.ID))

	got := testutil.LoadVoter(t, conn, v.ID)
	assert.True(t, got.HasVoted)
	assert.False(t, got.IsEligible)

	// The transition happens once
	assert.ErrorIs(t, st.MarkVoted(ctx, v.ID), store.ErrNoRowsAffected)
	assert.ErrorIs(t, st.SetEligibility(ctx, v.ID, true), store.ErrNoRowsAffected)
}

func TestSetEligibility(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	st := store.New(conn)
	ctx := context.Background()

	e := testutil.CreateTestElection(t, conn, "2025", true)
	v := testutil.CreateTestVoter(t, conn, e, "S-1")

	require.NoError(t, st.SetEligibility(ctx, v.ID, false))
	assert.False(t, testutil.LoadVoter(t, conn, v.ID).IsEligible)

	require.NoError(t, st.SetEligibility(ctx, v.ID, true))
	assert.True(t, testutil.LoadVoter(t, conn, v.ID).IsEligible)
}

func TestAdminUser(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	st := store.New(conn)
	ctx := context.Background()

	_, err := st.CreateAdminUser(ctx, "registrar", models.RoleStaff)
	require.NoError(t, err)

	found, err := st.AdminUser(ctx, "registrar")
	require.NoError(t, err)
	require.True(t, found.IsSome())
	assert.Equal(t, models.RoleStaff, found.Unwrap().Role)

	missing, err := st.AdminUser(ctx, "nobody")
	require.NoError(t, err)
	assert.True(t, missing.IsNone())

	_, err = st.CreateAdminUser(ctx, "janitor", "janitor")
	assert.Error(t, err, "role check constraint")
}

func TestReports(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	st := store.New(conn)
	ctx := context.Background()

	b := testutil.CreateTestBallot(t, conn, "S-1")

	positions, err := st.Positions(ctx, b.ElectionID)
	require.NoError(t, err)
	require.Len(t, positions, 2)

	candidates, err := st.CandidatesByPosition(ctx, b.ElectionID)
	require.NoError(t, err)
	assert.Len(t, candidates[b.Positions[0]], 2)
	assert.Len(t, candidates[b.Positions[1]], 2)

	_, err = st.InsertBallot(ctx, models.BallotRecord{
		ElectionID:  b.ElectionID,
		PositionID:  b.Positions[0],
		CandidateID: b.Candidates[0][1],
		Fingerprint: "fp-1",
		CreatedAt:   time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, st.MarkVoted(ctx, b.Voter.ID))

	stats, err := st.ElectionStats(ctx, b.ElectionID)
	require.NoError(t, err)
	// Four candidate voters plus the fixture voter
	assert.Equal(t, 5, stats.TotalVoters)
	assert.Equal(t, 1, stats.VotedCount)
	assert.Equal(t, 4, stats.EligibleVoters)
	assert.InDelta(t, 20.0, stats.TurnoutPercent, 0.001)

	results, err := st.ElectionResults(ctx, b.ElectionID)
	require.NoError(t, err)
	require.Len(t, results.Positions, 2)

	first := results.Positions[0]
	assert.Equal(t, b.Positions[0], first.PositionID)
	require.Len(t, first.Tallies, 2)
	assert.Equal(t, b.Candidates[0][1], first.Tallies[0].CandidateID)
	assert.Equal(t, 1, first.Tallies[0].Votes)
	assert.Equal(t, 0, first.Tallies[1].Votes)

	for _, tally := range results.Positions[1].Tallies {
		assert.Zero(t, tally.Votes)
	}
}
