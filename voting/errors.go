// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"errors"
	"fmt"
)

// Kind is the failure category a caller can act on.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation error"
	default:
		return "internal error"
	}
}

// Failure reasons. Each one is wrapped in an *Error with its category.
var (
	ErrVoterNotFound     = errors.New("voter not found in any open election")
	ErrElectionNotFound  = errors.New("election not found")
	ErrElectionClosed    = errors.New("election is not open for voting")
	ErrNotEligible       = errors.New("voter is not eligible to vote")
	ErrAlreadyVoted      = errors.New("voter has already voted")
	ErrAmbiguousVoter    = errors.New("voter is eligible in more than one open election")
	ErrAuthentication    = errors.New("voter authentication failed")
	ErrEmptyBallot       = errors.New("votes cannot be empty")
	ErrMissingField      = errors.New("each vote requires election, position and candidate")
	ErrDuplicatePosition = errors.New("duplicate position in ballot")
	ErrWrongElection     = errors.New("vote is for a different election than the voter's")
	ErrPositionMismatch  = errors.New("position does not belong to election")
	ErrCandidateMismatch = errors.New("candidate does not belong to position")
	ErrDuplicateVote     = errors.New("vote already recorded for position")
	ErrNotPermitted      = errors.New("administrative role required")
)

// Error is the error type returned by every operation in this package.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// PublicMessage is safe to show to the caller. Internal failures carry no
// detail.
func (e *Error) PublicMessage() string {
	if e.Kind == KindInternal {
		return "internal error"
	}
	return e.Err.Error()
}

func fail(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func failf(kind Kind, reason error, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf("%w: "+format, append([]any{reason}, args...)...)}
}

func internal(err error) *Error {
	return &Error{Kind: KindInternal, Err: err}
}

// KindOf returns the category of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
