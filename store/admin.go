// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"

	"github.com/moznion/go-optional"

	"github.com/danielhkuo/campus-vote/models"
)

// The writes below belong to the administrative side (imports, seeding,
// operator commands). The ballot path never calls them.

// CreateElection inserts an election and returns its id.
func (s *Store) CreateElection(ctx context.Context, e models.Election) (int64, error) {
	var id int64
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO election (name, year, start_time, end_time, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, e.Name, e.Year, e.StartTime, e.EndTime, e.IsActive).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert election: %w", err)
	}
	return id, nil
}

// CreateVoter inserts a voter into its election and returns the id.
func (s *Store) CreateVoter(ctx context.Context, v models.Voter) (int64, error) {
	var id int64
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO voter (student_id, full_name, class_name, is_eligible, has_voted, election_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, v.StudentID, v.FullName, v.ClassName, v.IsEligible, v.HasVoted, v.ElectionID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert voter: %w", err)
	}
	return id, nil
}

// CreatePosition inserts a position and returns its id.
func (s *Store) CreatePosition(ctx context.Context, p models.Position) (int64, error) {
	var id int64
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO election_position (name, election_id, display_order)
		VALUES ($1, $2, $3)
		RETURNING id
	`, p.Name, p.ElectionID, p.DisplayOrder).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert position: %w", err)
	}
	return id, nil
}

// CreateCandidate inserts a candidate and returns its id.
func (s *Store) CreateCandidate(ctx context.Context, c models.Candidate) (int64, error) {
	var id int64
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO candidate (voter_id, position_id, photo_url)
		VALUES ($1, $2, $3)
		RETURNING id
	`, c.VoterID, c.PositionID, c.PhotoURL).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert candidate: %w", err)
	}
	return id, nil
}

// CreateAdminUser inserts an administrative account.
func (s *Store) CreateAdminUser(ctx context.Context, username, role string) (int64, error) {
	var id int64
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO admin_user (username, role)
		VALUES ($1, $2)
		RETURNING id
	`, username, role).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert admin user: %w", err)
	}
	return id, nil
}

// AdminUser looks up an administrative account by username.
func (s *Store) AdminUser(ctx context.Context, username string) (optional.Option[models.AdminUser], error) {
	var u models.AdminUser
	err := s.q.QueryRowContext(ctx, `
		SELECT id, username, role FROM admin_user WHERE username = $1
	`, username).Scan(&u.ID, &u.Username, &u.Role)
	return lookup(u, err, "admin user")
}
