// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/store"
)

// VoterCredentials is the request metadata a voter presents.
type VoterCredentials struct {
	StudentID  string
	ElectionID int64
	Token      string
	Origin     string
}

// Authenticator resolves request metadata into a VoterPrincipal. It does not
// look at eligibility or has_voted; the commit engine owns those checks.
type Authenticator struct {
	db     *sql.DB
	hasher *auth.VoterHasher
	now    Clock
}

func NewAuthenticator(db *sql.DB, hasher *auth.VoterHasher, now Clock) *Authenticator {
	return &Authenticator{db: db, hasher: hasher, now: now}
}

// Authenticate verifies the token for (student, election) while the
// election's window is open.
func (a *Authenticator) Authenticate(ctx context.Context, c VoterCredentials) (auth.VoterPrincipal, error) {
	st := store.New(a.db)

	election, err := st.Election(ctx, c.ElectionID)
	if err != nil {
		return auth.VoterPrincipal{}, a.reject(c, internal(err))
	}
	if election.IsNone() {
		return auth.VoterPrincipal{}, a.reject(c, fail(KindForbidden, ErrElectionNotFound))
	}
	if !election.Unwrap().Open(a.now()) {
		return auth.VoterPrincipal{}, a.reject(c, fail(KindForbidden, ErrElectionClosed))
	}

	voter, err := st.VoterByCode(ctx, c.StudentID, c.ElectionID)
	if err != nil {
		return auth.VoterPrincipal{}, a.reject(c, internal(err))
	}
	if voter.IsNone() {
		return auth.VoterPrincipal{}, a.reject(c, fail(KindNotFound, ErrVoterNotFound))
	}

	if err := a.hasher.VerifyToken(c.StudentID, c.ElectionID, c.Token); err != nil {
		return auth.VoterPrincipal{}, a.reject(c, fail(KindForbidden, err))
	}

	return auth.VoterPrincipal{
		Voter:       voter.Unwrap(),
		Fingerprint: a.hasher.Fingerprint(c.StudentID, c.ElectionID),
	}, nil
}

// reject logs the specific cause for audit and returns it. Callers facing
// the network must not echo the cause; see ErrAuthentication.
func (a *Authenticator) reject(c VoterCredentials, err *Error) error {
	slog.Warn("voter authentication failed",
		"student_id", c.StudentID,
		"election_id", c.ElectionID,
		"origin", c.Origin,
		"reason", err.Err,
	)
	return err
}
