// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens connections and creates the schema.

Two dialects are supported: postgres (lib/pq) for deployments and sqlite
(modernc.org/sqlite) for development and tests.

	conn, err := db.Open(db.Postgres, url)
	err = db.CreateSchema(conn, db.Postgres)

# Tables

	election 1──* voter
	election 1──* election_position 1──* candidate
	voter    1──1 candidate
	ballot_record (voter_fingerprint, position_id) unique
	admin_user

# Locking

LockVoterRow serializes ballot commits for one voter. Postgres takes a row
lock with SELECT ... FOR UPDATE; sqlite takes the database write lock.
*/
package db
