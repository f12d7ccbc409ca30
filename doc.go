// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the campus-vote command.

campus-vote runs student elections: voters pick up an election-scoped token
at login, cast a ballot covering one or more positions, and activators at the
registration desk toggle who may vote.

# Commands

	campus-vote serve         Run the HTTP API
	campus-vote migrate       Create the schema and exit
	campus-vote create-admin  Create an admin account and print its key

# Configuration

Settings come from flags, then the environment, then a .env file:

  - DATABASE_URL (-d): connection string
  - DATABASE_TYPE (-t): postgres (default) or sqlite
  - VOTER_HMAC_KEY (--voter-key): secret for voter tokens and fingerprints
  - ADMIN_KEY_SALT (--admin-salt): secret for admin keys
  - PORT (-p): server port (default: 3318)
  - ALLOWED_ORIGINS: CORS allowlist
  - TURNOUT_SCHEDULE: cron spec for turnout logs, "off" to disable

# Architecture

  - voting: credential issuance, authentication, ballot validation and commit
  - store: SQL lookups and writes shared by the above
  - handlers, router, middleware: the HTTP surface
  - auth: keyed hashes and principals
  - db: connections, schema and dialect differences
  - turnout: periodic turnout logging
  - cliparse: configuration
*/
package main
