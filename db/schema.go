// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, d Dialect) error {
	_, err := db.Exec(d.render(schema))
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// render fills the dialect-specific column types into a schema template.
func (d Dialect) render(tmpl string) string {
	serial, ts := "BIGSERIAL PRIMARY KEY", "TIMESTAMPTZ"
	if d == SQLite {
		serial, ts = "INTEGER PRIMARY KEY AUTOINCREMENT", "TIMESTAMP"
	}
	return strings.NewReplacer("{{serial}}", serial, "{{timestamp}}", ts).Replace(tmpl)
}

const schema = `
-- Elections
CREATE TABLE IF NOT EXISTS election (
    id {{serial}},
    name TEXT NOT NULL,
    year INTEGER NOT NULL,
    start_time {{timestamp}} NOT NULL,
    end_time {{timestamp}} NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT FALSE,
    CHECK (start_time < end_time)
);

CREATE INDEX IF NOT EXISTS idx_election_is_active ON election(is_active);

-- Voters
CREATE TABLE IF NOT EXISTS voter (
    id {{serial}},
    student_id TEXT NOT NULL,
    full_name TEXT NOT NULL,
    class_name TEXT NOT NULL DEFAULT '',
    is_eligible BOOLEAN NOT NULL DEFAULT FALSE,
    has_voted BOOLEAN NOT NULL DEFAULT FALSE,
    election_id BIGINT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    UNIQUE (election_id, student_id)
);

CREATE INDEX IF NOT EXISTS idx_voter_student_id ON voter(student_id);

-- Positions
CREATE TABLE IF NOT EXISTS election_position (
    id {{serial}},
    name TEXT NOT NULL,
    election_id BIGINT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    display_order INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_election_position_election_id ON election_position(election_id);

-- Candidates
CREATE TABLE IF NOT EXISTS candidate (
    id {{serial}},
    voter_id BIGINT NOT NULL UNIQUE REFERENCES voter(id) ON DELETE CASCADE,
    position_id BIGINT NOT NULL REFERENCES election_position(id) ON DELETE CASCADE,
    photo_url TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_candidate_position_id ON candidate(position_id);

-- Ballot records
CREATE TABLE IF NOT EXISTS ballot_record (
    id {{serial}},
    election_id BIGINT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    position_id BIGINT NOT NULL REFERENCES election_position(id) ON DELETE CASCADE,
    candidate_id BIGINT NOT NULL REFERENCES candidate(id) ON DELETE CASCADE,
    voter_fingerprint TEXT NOT NULL,
    created_at {{timestamp}} NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (voter_fingerprint, position_id)
);

CREATE INDEX IF NOT EXISTS idx_ballot_record_election_id ON ballot_record(election_id);
CREATE INDEX IF NOT EXISTS idx_ballot_record_candidate_id ON ballot_record(candidate_id);

-- Admin users
CREATE TABLE IF NOT EXISTS admin_user (
    id {{serial}},
    username TEXT NOT NULL UNIQUE,
    role TEXT NOT NULL CHECK (role IN ('superuser', 'staff', 'activator')),
    created_at {{timestamp}} NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
