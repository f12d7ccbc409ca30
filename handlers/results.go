// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/campus-vote/cliparse"
	"github.com/danielhkuo/campus-vote/middleware"
	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/store"
)

type ResultsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{db: db, cfg: cfg}
}

// GetStats handles GET /elections/{id}/stats
// Voter counts and turnout. Staff and superusers only.
func (h *ResultsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r, h.db, h.cfg.AdminKeySalt, models.RoleStaff, models.RoleSuperuser); !ok {
		return
	}

	electionID, ok := h.existingElection(w, r)
	if !ok {
		return
	}

	stats, err := store.New(h.db).ElectionStats(r.Context(), electionID)
	if err != nil {
		slog.Error("failed to compute election stats", "election_id", electionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, stats)
}

// GetResults handles GET /elections/{id}/results
// Per-position tallies. Staff and superusers only.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r, h.db, h.cfg.AdminKeySalt, models.RoleStaff, models.RoleSuperuser); !ok {
		return
	}

	electionID, ok := h.existingElection(w, r)
	if !ok {
		return
	}

	results, err := store.New(h.db).ElectionResults(r.Context(), electionID)
	if err != nil {
		slog.Error("failed to compute election results", "election_id", electionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, results)
}

// existingElection parses the {id} path value and confirms the election
// exists, writing the error response otherwise.
func (h *ResultsHandler) existingElection(w http.ResponseWriter, r *http.Request) (int64, bool) {
	electionID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || electionID <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid election id")
		return 0, false
	}

	found, err := store.New(h.db).Election(r.Context(), electionID)
	if err != nil {
		slog.Error("failed to query election", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return 0, false
	}
	if found.IsNone() {
		middleware.ErrorResponse(w, http.StatusNotFound, "Election not found")
		return 0, false
	}
	return electionID, true
}
