// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"

	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/store"
)

// Selection is a vote whose election, position and candidate have been
// resolved and cross-checked.
type Selection struct {
	Election  models.Election
	Position  models.Position
	Candidate models.Candidate
}

// Validator checks a batch of votes against the election structure. Any
// violation rejects the whole batch.
type Validator struct {
	now Clock
}

func NewValidator(now Clock) *Validator {
	return &Validator{now: now}
}

// CheckShape applies the checks that need no lookups: a non-empty batch, no
// position twice, and every id present.
func CheckShape(votes []models.VoteTriple) error {
	if len(votes) == 0 {
		return fail(KindValidation, ErrEmptyBallot)
	}

	seen := make(map[int64]bool, len(votes))
	for _, v := range votes {
		if v.Position == nil {
			continue
		}
		if seen[*v.Position] {
			return failf(KindValidation, ErrDuplicatePosition, "position %d", *v.Position)
		}
		seen[*v.Position] = true
	}

	for i, v := range votes {
		if v.Election == nil || v.Position == nil || v.Candidate == nil {
			return failf(KindValidation, ErrMissingField, "vote %d", i)
		}
	}
	return nil
}

// Validate resolves every vote through st for the given voter. Each election,
// position and candidate is fetched at most once per batch.
func (v *Validator) Validate(ctx context.Context, st *store.Store, voter models.Voter, votes []models.VoteTriple) ([]Selection, error) {
	if err := CheckShape(votes); err != nil {
		return nil, err
	}

	r := resolver{
		st:         st,
		elections:  make(map[int64]models.Election),
		positions:  make(map[int64]models.Position),
		candidates: make(map[int64]models.Candidate),
	}
	now := v.now()

	selections := make([]Selection, 0, len(votes))
	for _, vote := range votes {
		electionID, positionID, candidateID := *vote.Election, *vote.Position, *vote.Candidate

		if electionID != voter.ElectionID {
			return nil, failf(KindValidation, ErrWrongElection, "election %d", electionID)
		}

		election, err := r.election(ctx, electionID)
		if err != nil {
			return nil, err
		}
		if !election.Open(now) {
			return nil, failf(KindForbidden, ErrElectionClosed, "election %d", electionID)
		}

		position, err := r.position(ctx, positionID, electionID)
		if err != nil {
			return nil, err
		}

		candidate, err := r.candidate(ctx, candidateID, position.ID)
		if err != nil {
			return nil, err
		}

		selections = append(selections, Selection{Election: election, Position: position, Candidate: candidate})
	}
	return selections, nil
}

// resolver caches lookups for one batch. Positions and candidates are cached
// by id together with the parent they were checked against, since a hit is
// only valid for that parent.
type resolver struct {
	st         *store.Store
	elections  map[int64]models.Election
	positions  map[int64]models.Position
	candidates map[int64]models.Candidate
}

func (r *resolver) election(ctx context.Context, id int64) (models.Election, error) {
	if e, ok := r.elections[id]; ok {
		return e, nil
	}
	found, err := r.st.Election(ctx, id)
	if err != nil {
		return models.Election{}, internal(err)
	}
	e, err := found.Take()
	if err != nil {
		return models.Election{}, failf(KindNotFound, ErrElectionNotFound, "election %d", id)
	}
	r.elections[id] = e
	return e, nil
}

func (r *resolver) position(ctx context.Context, id, electionID int64) (models.Position, error) {
	if p, ok := r.positions[id]; ok && p.ElectionID == electionID {
		return p, nil
	}
	found, err := r.st.Position(ctx, id, electionID)
	if err != nil {
		return models.Position{}, internal(err)
	}
	p, err := found.Take()
	if err != nil {
		return models.Position{}, failf(KindValidation, ErrPositionMismatch, "position %d, election %d", id, electionID)
	}
	r.positions[id] = p
	return p, nil
}

func (r *resolver) candidate(ctx context.Context, id, positionID int64) (models.Candidate, error) {
	if c, ok := r.candidates[id]; ok && c.PositionID == positionID {
		return c, nil
	}
	found, err := r.st.Candidate(ctx, id, positionID)
	if err != nil {
		return models.Candidate{}, internal(err)
	}
	c, err := found.Take()
	if err != nil {
		return models.Candidate{}, failf(KindValidation, ErrCandidateMismatch, "candidate %d, position %d", id, positionID)
	}
	r.candidates[id] = c
	return c, nil
}
