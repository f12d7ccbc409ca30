// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

  - Election: name, year, voting window and active flag
  - Voter: a student's row in one election, with is_eligible and has_voted
  - Position, Candidate: what is on the ballot
  - BallotRecord: one vote, keyed by voter fingerprint
  - AdminUser: an administrative account and its role

Election.Open is the single definition of "accepting votes now".

# Request Types

  - VoterLoginRequest: voter_code
  - CastBallotRequest: votes, each {election, position, candidate}
  - ToggleEligibilityRequest: voter_code, election_id, is_eligible

Vote ids are pointers so a missing id is distinguishable from zero.

# Roles

	RoleSuperuser = "superuser"
	RoleStaff     = "staff"
	RoleActivator = "activator"
*/
package models
