// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/db"
	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/store"
)

// ToggleResult is the voter's eligibility after a toggle.
type ToggleResult struct {
	Voter   models.Voter
	Changed bool
}

// EligibilityToggle lets activators switch a voter's is_eligible flag. A
// voter who has voted stays ineligible for good.
type EligibilityToggle struct {
	db      *sql.DB
	dialect db.Dialect
}

func NewEligibilityToggle(conn *sql.DB, dialect db.Dialect) *EligibilityToggle {
	return &EligibilityToggle{db: conn, dialect: dialect}
}

// Toggle sets is_eligible for the voter identified by (studentID, electionID).
// Setting the current value again is a successful no-op.
func (t *EligibilityToggle) Toggle(ctx context.Context, p auth.Principal, studentID string, electionID int64, eligible bool) (ToggleResult, error) {
	if err := auth.RequireRole(p, models.RoleActivator, models.RoleSuperuser); err != nil {
		return ToggleResult{}, fail(KindForbidden, ErrNotPermitted)
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return ToggleResult{}, internal(err)
	}
	defer tx.Rollback()

	st := store.New(tx)

	found, err := st.VoterByCode(ctx, studentID, electionID)
	if err != nil {
		return ToggleResult{}, internal(err)
	}
	if found.IsNone() {
		return ToggleResult{}, failf(KindNotFound, ErrVoterNotFound, "voter %q, election %d", studentID, electionID)
	}

	// Same lock the commit engine takes, so a toggle cannot interleave with
	// a ballot being cast.
	voterID := found.Unwrap().ID
	if err := t.dialect.LockVoterRow(ctx, tx, voterID); err != nil {
		return ToggleResult{}, internal(err)
	}
	found, err = st.Voter(ctx, voterID)
	if err != nil {
		return ToggleResult{}, internal(err)
	}
	voter, err := found.Take()
	if err != nil {
		return ToggleResult{}, fail(KindNotFound, ErrVoterNotFound)
	}

	if voter.HasVoted {
		return ToggleResult{}, fail(KindConflict, ErrAlreadyVoted)
	}
	if voter.IsEligible == eligible {
		return ToggleResult{Voter: voter}, nil
	}

	if err := st.SetEligibility(ctx, voter.ID, eligible); err != nil {
		return ToggleResult{}, internal(err)
	}
	if err := tx.Commit(); err != nil {
		return ToggleResult{}, internal(err)
	}

	voter.IsEligible = eligible
	admin, _ := p.(auth.AdminPrincipal)
	slog.Info("voter eligibility changed",
		"student_id", studentID,
		"election_id", electionID,
		"is_eligible", eligible,
		"by", admin.Username,
	)
	return ToggleResult{Voter: voter, Changed: true}, nil
}
