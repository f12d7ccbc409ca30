// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the campus-vote API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Voters:

	POST /voter/login           - Issue election token
	GET  /elections/{id}/ballot - Positions and candidates
	POST /vote                  - Cast ballot

Administration:

	POST /students/activate      - Toggle eligibility
	GET  /elections/{id}/stats   - Turnout
	GET  /elections/{id}/results - Tallies

CORS is applied around the whole mux by the caller.
*/
package router
