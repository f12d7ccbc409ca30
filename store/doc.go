// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package store runs the SQL behind voting and reporting. A Store wraps
// either the pool or a transaction; single-row lookups return an Option
// that is None when the row does not exist.
package store
