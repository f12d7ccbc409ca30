// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/middleware"
	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/store"
	"github.com/danielhkuo/campus-vote/voting"
)

var errAdminAuth = errors.New("invalid admin credentials")

// resolveAdmin authenticates X-Admin-User / X-Admin-Key against the
// admin_user table.
func resolveAdmin(ctx context.Context, db *sql.DB, salt string, r *http.Request) (auth.AdminPrincipal, error) {
	username := r.Header.Get(models.HeaderAdminUser)
	key := r.Header.Get(models.HeaderAdminKey)
	if username == "" || key == "" {
		return auth.AdminPrincipal{}, errAdminAuth
	}

	if err := auth.ValidateAdminKey(username, key, salt); err != nil {
		return auth.AdminPrincipal{}, errAdminAuth
	}

	found, err := store.New(db).AdminUser(ctx, username)
	if err != nil {
		return auth.AdminPrincipal{}, err
	}
	user, err := found.Take()
	if err != nil {
		return auth.AdminPrincipal{}, errAdminAuth
	}

	return auth.AdminPrincipal{Username: user.Username, Role: user.Role}, nil
}

// requireAdmin resolves the admin principal and checks its role, writing
// the error response itself. ok is false when the request was rejected.
func requireAdmin(w http.ResponseWriter, r *http.Request, db *sql.DB, salt string, roles ...string) (auth.AdminPrincipal, bool) {
	admin, err := resolveAdmin(r.Context(), db, salt, r)
	if errors.Is(err, errAdminAuth) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin credentials")
		return auth.AdminPrincipal{}, false
	}
	if err != nil {
		slog.Error("failed to resolve admin", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return auth.AdminPrincipal{}, false
	}

	if len(roles) > 0 {
		if err := auth.RequireRole(admin, roles...); err != nil {
			middleware.ErrorResponse(w, http.StatusForbidden, "Insufficient role")
			return auth.AdminPrincipal{}, false
		}
	}
	return admin, true
}

// voterCredentials reads the voter headers. A malformed election id yields
// zero, which fails authentication like any unknown election.
func voterCredentials(r *http.Request, electionID string) voting.VoterCredentials {
	id, _ := strconv.ParseInt(electionID, 10, 64)
	return voting.VoterCredentials{
		StudentID:  r.Header.Get(models.HeaderStudentID),
		ElectionID: id,
		Token:      r.Header.Get(models.HeaderVoterToken),
		Origin:     middleware.GetClientIP(r),
	}
}

// writeVotingError maps a voting failure onto an HTTP status.
func writeVotingError(w http.ResponseWriter, err error) {
	var verr *voting.Error
	if !errors.As(err, &verr) {
		slog.Error("unexpected voting error", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "internal error")
		return
	}

	status := http.StatusInternalServerError
	switch verr.Kind {
	case voting.KindNotFound:
		status = http.StatusNotFound
	case voting.KindForbidden:
		status = http.StatusForbidden
	case voting.KindConflict:
		status = http.StatusConflict
	case voting.KindValidation:
		status = http.StatusBadRequest
	}
	middleware.ErrorResponse(w, status, verr.PublicMessage())
}

// writeAuthError answers every authentication failure the same way so the
// response does not reveal which check failed.
func writeAuthError(w http.ResponseWriter, err error) {
	if voting.KindOf(err) == voting.KindInternal {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "internal error")
		return
	}
	middleware.ErrorResponse(w, http.StatusForbidden, voting.ErrAuthentication.Error())
}
