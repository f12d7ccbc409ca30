// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"database/sql"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/db"
	"github.com/danielhkuo/campus-vote/testutil"
)

type fixture struct {
	db            *sql.DB
	hasher        *auth.VoterHasher
	issuer        *Issuer
	authenticator *Authenticator
	engine        *Engine
	toggle        *EligibilityToggle
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	hasher := testutil.Hasher()
	return &fixture{
		db:            conn,
		hasher:        hasher,
		issuer:        NewIssuer(conn, hasher, time.Now),
		authenticator: NewAuthenticator(conn, hasher, time.Now),
		engine:        NewEngine(conn, db.SQLite, NewValidator(time.Now), time.Now),
		toggle:        NewEligibilityToggle(conn, db.SQLite),
	}
}

// login runs the issue + authenticate flow for a voter.
func (f *fixture) login(t *testing.T, studentID string, electionID int64) auth.VoterPrincipal {
	t.Helper()

	p, err := f.authenticator.Authenticate(context.Background(), VoterCredentials{
		StudentID:  studentID,
		ElectionID: electionID,
		Token:      f.hasher.Token(studentID, electionID),
		Origin:     "127.0.0.1",
	})
	require.NoError(t, err)
	return p
}

// requireKind asserts err is a voting error of kind wrapping reason.
func requireKind(t *testing.T, err error, kind Kind, reason error) {
	t.Helper()

	require.Error(t, err)
	require.Equal(t, kind, KindOf(err), "error: %v", err)
	if reason != nil {
		require.ErrorIs(t, err, reason)
	}
}

// countingQuerier counts single-row lookups passing through it.
type countingQuerier struct {
	*sql.DB
	rowQueries atomic.Int32
}

func (c *countingQuerier) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	c.rowQueries.Add(1)
	return c.DB.QueryRowContext(ctx, query, args...)
}
