// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/campus-vote/cliparse"
	"github.com/danielhkuo/campus-vote/db"
	"github.com/danielhkuo/campus-vote/middleware"
	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/voting"
)

type EligibilityHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	toggle *voting.EligibilityToggle
}

func NewEligibilityHandler(conn *sql.DB, cfg cliparse.Config) *EligibilityHandler {
	return &EligibilityHandler{
		db:     conn,
		cfg:    cfg,
		toggle: voting.NewEligibilityToggle(conn, db.Dialect(cfg.DatabaseType)),
	}
}

// Toggle handles POST /students/activate
// The role check lives in the toggle itself; here we only authenticate.
func (h *EligibilityHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireAdmin(w, r, h.db, h.cfg.AdminKeySalt)
	if !ok {
		return
	}

	var req models.ToggleEligibilityRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.toggle.Toggle(r.Context(), admin, req.VoterCode, req.ElectionID, *req.IsEligible)
	if err != nil {
		writeVotingError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ToggleEligibilityResponse{
		VoterCode:  result.Voter.StudentID,
		ElectionID: result.Voter.ElectionID,
		IsEligible: result.Voter.IsEligible,
		Changed:    result.Changed,
	})
}
