// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/campus-vote/cliparse"
	"github.com/danielhkuo/campus-vote/handlers"
	"github.com/danielhkuo/campus-vote/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	votingHandler := handlers.NewVotingHandler(db, cfg)
	eligibilityHandler := handlers.NewEligibilityHandler(db, cfg)
	resultsHandler := handlers.NewResultsHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Voter operations
	mux.HandleFunc("POST /voter/login", middleware.WithLogging(votingHandler.Login))
	mux.HandleFunc("POST /vote", middleware.WithLogging(votingHandler.CastBallot))
	mux.HandleFunc("GET /elections/{id}/ballot", middleware.WithLogging(votingHandler.GetBallotSheet))

	// Administrative operations
	mux.HandleFunc("POST /students/activate", middleware.WithLogging(eligibilityHandler.Toggle))
	mux.HandleFunc("GET /elections/{id}/stats", middleware.WithLogging(resultsHandler.GetStats))
	mux.HandleFunc("GET /elections/{id}/results", middleware.WithLogging(resultsHandler.GetResults))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("campus-vote API v1"))
	})

	return mux
}
