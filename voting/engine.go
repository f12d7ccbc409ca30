// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strconv"

	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/db"
	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/store"
)

var errNoFingerprint = errors.New("principal has no voter fingerprint")

// Engine commits ballots. One call is one transaction: the voter row is
// locked, eligibility re-checked, every vote re-validated and persisted, and
// the voter flipped to voted. Nothing is visible unless all of it succeeds.
type Engine struct {
	db        *sql.DB
	dialect   db.Dialect
	validator *Validator
	now       Clock
}

func NewEngine(conn *sql.DB, dialect db.Dialect, validator *Validator, now Clock) *Engine {
	return &Engine{db: conn, dialect: dialect, validator: validator, now: now}
}

// Cast records the voter's ballot and returns the number of ballot records
// written.
func (e *Engine) Cast(ctx context.Context, p auth.VoterPrincipal, votes []models.VoteTriple) (int, error) {
	if err := CheckShape(votes); err != nil {
		return 0, err
	}
	if p.Fingerprint == "" {
		return 0, e.abort(p, votes, internal(errNoFingerprint))
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, e.abort(p, votes, internal(err))
	}
	defer tx.Rollback()

	if err := e.dialect.LockVoterRow(ctx, tx, p.Voter.ID); err != nil {
		return 0, e.abort(p, votes, internal(err))
	}

	st := store.New(tx)

	// Re-read under the lock; the principal's copy may be stale.
	found, err := st.Voter(ctx, p.Voter.ID)
	if err != nil {
		return 0, e.abort(p, votes, internal(err))
	}
	voter, err := found.Take()
	if err != nil {
		return 0, fail(KindNotFound, ErrVoterNotFound)
	}
	if voter.HasVoted {
		return 0, fail(KindConflict, ErrAlreadyVoted)
	}
	if !voter.IsEligible {
		return 0, fail(KindForbidden, ErrNotEligible)
	}

	selections, err := e.validator.Validate(ctx, st, voter, votes)
	if err != nil {
		if KindOf(err) == KindInternal {
			return 0, e.abort(p, votes, err)
		}
		return 0, err
	}

	for _, s := range selections {
		exists, err := st.BallotExists(ctx, p.Fingerprint, s.Position.ID)
		if err != nil {
			return 0, e.abort(p, votes, internal(err))
		}
		if exists {
			return 0, failf(KindConflict, ErrDuplicateVote, "position %d", s.Position.ID)
		}
	}

	createdAt := e.now()
	for _, s := range selections {
		_, err := st.InsertBallot(ctx, models.BallotRecord{
			ElectionID:  s.Election.ID,
			PositionID:  s.Position.ID,
			CandidateID: s.Candidate.ID,
			Fingerprint: p.Fingerprint,
			CreatedAt:   createdAt,
		})
		if db.IsUniqueViolation(err) {
			return 0, failf(KindConflict, ErrDuplicateVote, "position %d", s.Position.ID)
		}
		if err != nil {
			return 0, e.abort(p, votes, internal(err))
		}
	}

	if err := st.MarkVoted(ctx, voter.ID); err != nil {
		return 0, e.abort(p, votes, internal(err))
	}

	if err := tx.Commit(); err != nil {
		return 0, e.abort(p, votes, internal(err))
	}

	slog.Info("ballot cast",
		"election_id", voter.ElectionID,
		"voter_id", voter.ID,
		"votes", len(selections),
	)
	return len(selections), nil
}

// abort logs an internal failure with full context. The deferred rollback
// undoes whatever the transaction had written.
func (e *Engine) abort(p auth.VoterPrincipal, votes []models.VoteTriple, err error) error {
	cause := err
	var verr *Error
	if errors.As(err, &verr) {
		cause = verr.Err
	}
	slog.Error("ballot commit failed",
		"student_id", p.Voter.StudentID,
		"election_id", p.Voter.ElectionID,
		"votes", formatVotes(votes),
		"error", cause,
	)
	return err
}

func formatVotes(votes []models.VoteTriple) []string {
	out := make([]string, 0, len(votes))
	for _, v := range votes {
		out = append(out, fmtID(v.Election)+"/"+fmtID(v.Position)+"/"+fmtID(v.Candidate))
	}
	return out
}

func fmtID(id *int64) string {
	if id == nil {
		return "nil"
	}
	return strconv.FormatInt(*id, 10)
}
