// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting implements the ballot transaction core.

# Components

  - Issuer: finds the one open election a student may vote in and issues a
    token for it
  - Authenticator: turns request metadata into a VoterPrincipal
  - Validator: checks a batch of votes against the election structure
  - Engine: commits a ballot atomically
  - EligibilityToggle: lets activators switch is_eligible

# Commit Protocol

Engine.Cast runs one transaction: lock the voter row, re-check eligibility
and has_voted, re-validate every vote, refuse positions that already have a
record, insert one record per vote, flip the voter to voted. A concurrent
second submission for the same voter waits on the lock and then fails with
a conflict. Different voters never contend.

# Errors

Every failure is an *Error with a Kind:

	KindNotFound   unknown voter, election, position or candidate
	KindForbidden  window closed, not eligible, bad token, missing role
	KindConflict   already voted, duplicate vote, ambiguous eligibility
	KindValidation malformed batch
	KindInternal   datastore failure, details logged only
*/
package voting
