// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth derives voter credentials and admin keys and defines the
principals handlers act on behalf of.

# Voter Tokens

A voter token is the hex HMAC-SHA256 of "studentID:electionID" under the
server's voter key:

	h := auth.NewVoterHasher(key)
	token := h.Token("S-100", 7)
	err := h.VerifyToken("S-100", 7, token)

Nothing is stored; the token is recomputed and compared in constant time.
A token for one election never verifies for another.

# Fingerprints

Ballot records identify the voter only by fingerprint:

	fp := h.Fingerprint("S-100", 7)

The fingerprint uses its own label, so it cannot be replayed as a token and
does not reveal the student id.

# Admin Keys

Admin keys use HMAC-SHA256 over the username:

	adminKey := auth.GenerateAdminKey(username, salt)
	err := auth.ValidateAdminKey(username, adminKey, salt)

The key is URL-safe base64 encoded without padding and is never stored.

# Principals

A request acts as either a VoterPrincipal or an AdminPrincipal. Role checks
go through RequireRole.
*/
package auth
