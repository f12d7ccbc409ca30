// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"database/sql"
	"time"

	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/store"
)

// Clock returns the current instant. Production code passes time.Now.
type Clock func() time.Time

// Credential is what a voter receives at login.
type Credential struct {
	Token    string
	Voter    models.Voter
	Election models.Election
}

// Issuer hands out election-scoped voter tokens. It never writes.
type Issuer struct {
	db     *sql.DB
	hasher *auth.VoterHasher
	now    Clock
}

func NewIssuer(db *sql.DB, hasher *auth.VoterHasher, now Clock) *Issuer {
	return &Issuer{db: db, hasher: hasher, now: now}
}

// Issue finds the single open election in which studentID may vote right
// now and returns a token for it.
func (i *Issuer) Issue(ctx context.Context, studentID string) (Credential, error) {
	records, err := store.New(i.db).VoterRecords(ctx, studentID)
	if err != nil {
		return Credential{}, internal(err)
	}

	record, err := selectEligible(records, i.now())
	if err != nil {
		return Credential{}, err
	}

	return Credential{
		Token:    i.hasher.Token(record.Voter.StudentID, record.Election.ID),
		Voter:    record.Voter,
		Election: record.Election,
	}, nil
}

// selectEligible picks the one record that is in an open election, eligible
// and not yet voted. With no such record the cause decides the category:
// already voted beats not eligible beats a closed window beats unknown.
func selectEligible(records []store.VoterRecord, now time.Time) (store.VoterRecord, error) {
	var open, eligible []store.VoterRecord
	windowClosed := false

	for _, r := range records {
		if !r.Election.Open(now) {
			if r.Election.IsActive {
				windowClosed = true
			}
			continue
		}
		open = append(open, r)
		if r.Voter.IsEligible && !r.Voter.HasVoted {
			eligible = append(eligible, r)
		}
	}

	switch len(eligible) {
	case 1:
		return eligible[0], nil
	case 0:
	default:
		return store.VoterRecord{}, fail(KindConflict, ErrAmbiguousVoter)
	}

	if len(open) == 0 {
		if windowClosed {
			return store.VoterRecord{}, fail(KindForbidden, ErrElectionClosed)
		}
		return store.VoterRecord{}, fail(KindNotFound, ErrVoterNotFound)
	}
	for _, r := range open {
		if r.Voter.HasVoted {
			return store.VoterRecord{}, fail(KindConflict, ErrAlreadyVoted)
		}
	}
	return store.VoterRecord{}, fail(KindForbidden, ErrNotEligible)
}
