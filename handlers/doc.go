// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the campus-vote API.

# Handler Types

  - VotingHandler: voter login, ballot sheet and ballot submission
  - EligibilityHandler: activation desk toggles
  - ResultsHandler: turnout statistics and tallies

Handlers are created via constructor functions that accept *sql.DB and Config:

	votingHandler := handlers.NewVotingHandler(db, cfg)

# Voter Requests

	POST /voter/login            → Login (returns token)
	GET  /elections/{id}/ballot  → GetBallotSheet
	POST /vote                   → CastBallot

Ballot requests carry X-Student-Id, X-Election-Id and X-Voter-Token. Any
authentication failure answers 403 "voter authentication failed"; the
specific cause is only logged.

# Admin Requests

Admin requests carry X-Admin-User and X-Admin-Key.

	POST /students/activate      → Toggle (activator, superuser)
	GET  /elections/{id}/stats   → GetStats (staff, superuser)
	GET  /elections/{id}/results → GetResults (staff, superuser)

# Errors

Voting failures map to status codes by kind: not found 404, forbidden 403,
conflict 409, validation 400, internal 500.
*/
package handlers
