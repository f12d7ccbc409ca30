// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/cliparse"
	"github.com/danielhkuo/campus-vote/db"
	"github.com/danielhkuo/campus-vote/middleware"
	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/store"
	"github.com/danielhkuo/campus-vote/voting"
)

type VotingHandler struct {
	db            *sql.DB
	cfg           cliparse.Config
	issuer        *voting.Issuer
	authenticator *voting.Authenticator
	engine        *voting.Engine
}

func NewVotingHandler(conn *sql.DB, cfg cliparse.Config) *VotingHandler {
	hasher := auth.NewVoterHasher([]byte(cfg.VoterHMACKey))
	validator := voting.NewValidator(time.Now)

	return &VotingHandler{
		db:            conn,
		cfg:           cfg,
		issuer:        voting.NewIssuer(conn, hasher, time.Now),
		authenticator: voting.NewAuthenticator(conn, hasher, time.Now),
		engine:        voting.NewEngine(conn, db.Dialect(cfg.DatabaseType), validator, time.Now),
	}
}

// Login handles POST /voter/login
func (h *VotingHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.VoterLoginRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	cred, err := h.issuer.Issue(r.Context(), req.VoterCode)
	if err != nil {
		if voting.KindOf(err) == voting.KindInternal {
			slog.Error("failed to issue voter credential", "student_id", req.VoterCode, "error", err)
		}
		writeVotingError(w, err)
		return
	}

	slog.Info("voter credential issued", "student_id", req.VoterCode, "election_id", cred.Election.ID)

	middleware.JSONResponse(w, http.StatusOK, models.VoterLoginResponse{
		Token: cred.Token,
		Voter: models.VoterSummary{
			Code:  cred.Voter.StudentID,
			Name:  cred.Voter.FullName,
			Class: cred.Voter.ClassName,
		},
		Election: electionSummary(cred.Election),
	})
}

// CastBallot handles POST /vote
// Voter identity comes from the X-Student-Id, X-Election-Id and
// X-Voter-Token headers, never from the body.
func (h *VotingHandler) CastBallot(w http.ResponseWriter, r *http.Request) {
	creds := voterCredentials(r, r.Header.Get(models.HeaderElectionID))

	principal, err := h.authenticator.Authenticate(r.Context(), creds)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	var req models.CastBallotRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	recorded, err := h.engine.Cast(r.Context(), principal, req.Votes)
	if err != nil {
		writeVotingError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CastBallotResponse{
		Message:  "All votes submitted successfully",
		Recorded: recorded,
	})
}

// GetBallotSheet handles GET /elections/{id}/ballot
// Lists the positions and candidates the authenticated voter can choose from.
func (h *VotingHandler) GetBallotSheet(w http.ResponseWriter, r *http.Request) {
	principal, err := h.authenticator.Authenticate(r.Context(), voterCredentials(r, r.PathValue("id")))
	if err != nil {
		writeAuthError(w, err)
		return
	}

	electionID := principal.Voter.ElectionID

	sheet, err := ballotSheet(r.Context(), store.New(h.db), electionID)
	if errors.Is(err, errElectionGone) {
		// Removed between authentication and the lookup
		slog.Warn("election vanished during ballot sheet request", "election_id", electionID)
		middleware.ErrorResponse(w, http.StatusForbidden, voting.ErrAuthentication.Error())
		return
	}
	if err != nil {
		slog.Error("failed to load ballot sheet", "election_id", electionID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, sheet)
}

var errElectionGone = errors.New("election no longer exists")

// ballotSheet assembles the positions of an election in display order, each
// with its candidates.
func ballotSheet(ctx context.Context, st *store.Store, electionID int64) (models.BallotSheet, error) {
	found, err := st.Election(ctx, electionID)
	if err != nil {
		return models.BallotSheet{}, fmt.Errorf("failed to load election: %w", err)
	}
	election, err := found.Take()
	if err != nil {
		return models.BallotSheet{}, errElectionGone
	}

	positions, err := st.Positions(ctx, electionID)
	if err != nil {
		return models.BallotSheet{}, fmt.Errorf("failed to query positions: %w", err)
	}

	candidates, err := st.CandidatesByPosition(ctx, electionID)
	if err != nil {
		return models.BallotSheet{}, fmt.Errorf("failed to query candidates: %w", err)
	}

	sheet := models.BallotSheet{
		Election:  electionSummary(election),
		Positions: make([]models.BallotSection, 0, len(positions)),
	}
	for _, p := range positions {
		section := models.BallotSection{Position: p, Candidates: candidates[p.ID]}
		if section.Candidates == nil {
			section.Candidates = []models.CandidateInfo{}
		}
		sheet.Positions = append(sheet.Positions, section)
	}
	return sheet, nil
}

func electionSummary(e models.Election) models.ElectionSummary {
	return models.ElectionSummary{
		ID:       e.ID,
		Name:     e.Name,
		Year:     e.Year,
		ClosesIn: humanize.Time(e.EndTime),
	}
}
