// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package turnout logs turnout for open elections on a cron schedule.
package turnout
