// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/moznion/go-optional"

	"github.com/danielhkuo/campus-vote/models"
)

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store runs the core's lookups and writes against a Querier. Bind it to a
// transaction with New(tx) to read under that transaction's isolation.
type Store struct {
	q Querier
}

func New(q Querier) *Store {
	return &Store{q: q}
}

// VoterRecord is a voter row joined with its owning election.
type VoterRecord struct {
	Voter    models.Voter
	Election models.Election
}

const electionColumns = `id, name, year, start_time, end_time, is_active`

const voterColumns = `id, student_id, full_name, class_name, is_eligible, has_voted, election_id`

func scanElection(row interface{ Scan(...any) error }) (models.Election, error) {
	var e models.Election
	err := row.Scan(&e.ID, &e.Name, &e.Year, &e.StartTime, &e.EndTime, &e.IsActive)
	return e, err
}

func scanVoter(row interface{ Scan(...any) error }) (models.Voter, error) {
	var v models.Voter
	err := row.Scan(&v.ID, &v.StudentID, &v.FullName, &v.ClassName, &v.IsEligible, &v.HasVoted, &v.ElectionID)
	return v, err
}

// lookup converts a single-row scan into an Option, treating sql.ErrNoRows
// as None.
func lookup[T any](v T, err error, what string) (optional.Option[T], error) {
	if errors.Is(err, sql.ErrNoRows) {
		return optional.None[T](), nil
	}
	if err != nil {
		return optional.None[T](), fmt.Errorf("failed to query %s: %w", what, err)
	}
	return optional.Some(v), nil
}

// Election returns the election with the given id.
func (s *Store) Election(ctx context.Context, id int64) (optional.Option[models.Election], error) {
	e, err := scanElection(s.q.QueryRowContext(ctx, `
		SELECT `+electionColumns+` FROM election WHERE id = $1
	`, id))
	return lookup(e, err, "election")
}

// ActiveElections returns every election flagged active, regardless of window.
func (s *Store) ActiveElections(ctx context.Context) ([]models.Election, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+electionColumns+` FROM election WHERE is_active = $1 ORDER BY id
	`, true)
	if err != nil {
		return nil, fmt.Errorf("failed to query elections: %w", err)
	}
	defer rows.Close()

	elections := []models.Election{}
	for rows.Next() {
		e, err := scanElection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan election: %w", err)
		}
		elections = append(elections, e)
	}
	return elections, rows.Err()
}

// Voter returns the voter with the given primary key.
func (s *Store) Voter(ctx context.Context, id int64) (optional.Option[models.Voter], error) {
	v, err := scanVoter(s.q.QueryRowContext(ctx, `
		SELECT `+voterColumns+` FROM voter WHERE id = $1
	`, id))
	return lookup(v, err, "voter")
}

// VoterByCode returns the voter identified by (student_id, election).
func (s *Store) VoterByCode(ctx context.Context, studentID string, electionID int64) (optional.Option[models.Voter], error) {
	v, err := scanVoter(s.q.QueryRowContext(ctx, `
		SELECT `+voterColumns+` FROM voter WHERE student_id = $1 AND election_id = $2
	`, studentID, electionID))
	return lookup(v, err, "voter")
}

// VoterRecords returns every voter row carrying the external code, across
// all elections, each joined with its election.
func (s *Store) VoterRecords(ctx context.Context, studentID string) ([]VoterRecord, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT v.id, v.student_id, v.full_name, v.class_name, v.is_eligible, v.has_voted, v.election_id,
		       e.id, e.name, e.year, e.start_time, e.end_time, e.is_active
		FROM voter v
		JOIN election e ON e.id = v.election_id
		WHERE v.student_id = $1
		ORDER BY e.id
	`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query voter records: %w", err)
	}
	defer rows.Close()

	records := []VoterRecord{}
	for rows.Next() {
		var r VoterRecord
		v, e := &r.Voter, &r.Election
		if err := rows.Scan(
			&v.ID, &v.StudentID, &v.FullName, &v.ClassName, &v.IsEligible, &v.HasVoted, &v.ElectionID,
			&e.ID, &e.Name, &e.Year, &e.StartTime, &e.EndTime, &e.IsActive,
		); err != nil {
			return nil, fmt.Errorf("failed to scan voter record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Position returns the position only if it belongs to the given election.
func (s *Store) Position(ctx context.Context, id, electionID int64) (optional.Option[models.Position], error) {
	var p models.Position
	err := s.q.QueryRowContext(ctx, `
		SELECT id, name, election_id, display_order
		FROM election_position
		WHERE id = $1 AND election_id = $2
	`, id, electionID).Scan(&p.ID, &p.Name, &p.ElectionID, &p.DisplayOrder)
	return lookup(p, err, "position")
}

// Candidate returns the candidate only if it stands for the given position.
func (s *Store) Candidate(ctx context.Context, id, positionID int64) (optional.Option[models.Candidate], error) {
	var c models.Candidate
	err := s.q.QueryRowContext(ctx, `
		SELECT id, voter_id, position_id, photo_url
		FROM candidate
		WHERE id = $1 AND position_id = $2
	`, id, positionID).Scan(&c.ID, &c.VoterID, &c.PositionID, &c.PhotoURL)
	return lookup(c, err, "candidate")
}

// BallotExists reports whether a ballot record exists for the fingerprint
// and position.
func (s *Store) BallotExists(ctx context.Context, fingerprint string, positionID int64) (bool, error) {
	var exists bool
	err := s.q.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM ballot_record
			WHERE voter_fingerprint = $1 AND position_id = $2
		)
	`, fingerprint, positionID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check ballot record: %w", err)
	}
	return exists, nil
}

// InsertBallot persists one ballot record and returns its id.
func (s *Store) InsertBallot(ctx context.Context, rec models.BallotRecord) (int64, error) {
	var id int64
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO ballot_record (election_id, position_id, candidate_id, voter_fingerprint, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, rec.ElectionID, rec.PositionID, rec.CandidateID, rec.Fingerprint, rec.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert ballot record: %w", err)
	}
	return id, nil
}

// MarkVoted flips has_voted on and eligibility off. It only matches a voter
// that has not voted yet, so the transition happens at most once.
func (s *Store) MarkVoted(ctx context.Context, voterID int64) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE voter SET has_voted = $1, is_eligible = $2
		WHERE id = $3 AND has_voted = $4
	`, true, false, voterID, false)
	if err != nil {
		return fmt.Errorf("failed to mark voter %d as voted: %w", voterID, err)
	}
	return expectOneRow(res, "mark voted")
}

// SetEligibility updates is_eligible for a voter who has not voted.
func (s *Store) SetEligibility(ctx context.Context, voterID int64, eligible bool) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE voter SET is_eligible = $1
		WHERE id = $2 AND has_voted = $3
	`, eligible, voterID, false)
	if err != nil {
		return fmt.Errorf("failed to update eligibility for voter %d: %w", voterID, err)
	}
	return expectOneRow(res, "set eligibility")
}

var ErrNoRowsAffected = errors.New("no rows affected")

func expectOneRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n != 1 {
		return fmt.Errorf("%s: %w", op, ErrNoRowsAffected)
	}
	return nil
}
