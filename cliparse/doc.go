// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

RegisterFlags binds Config to a pflag set (the cobra commands use their
persistent flags); Resolve fills the rest from the environment:

	cliparse.RegisterFlags(cmd.PersistentFlags(), &cfg)
	err := cliparse.Resolve(&cfg)

ParseFlags does both for a plain argument list.

# Environment Variables

	PORT             → -p
	DATABASE_URL     → -d
	DATABASE_TYPE    → -t
	ALLOWED_ORIGINS  → --allowed-origins
	TURNOUT_SCHEDULE → --turnout-schedule
	VOTER_HMAC_KEY   → --voter-key
	ADMIN_KEY_SALT   → --admin-salt

CLI flags take precedence over environment variables. A .env file (or the
one named by --env-file) is loaded first and never overrides variables that
are already set.

# Validation

Resolve returns an error if DATABASE_URL, VOTER_HMAC_KEY or ADMIN_KEY_SALT
is missing.
*/
package cliparse
