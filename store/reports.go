// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"

	"github.com/danielhkuo/campus-vote/models"
)

// Positions lists an election's positions in display order.
func (s *Store) Positions(ctx context.Context, electionID int64) ([]models.Position, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, name, election_id, display_order
		FROM election_position
		WHERE election_id = $1
		ORDER BY display_order, id
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	positions := []models.Position{}
	for rows.Next() {
		var p models.Position
		if err := rows.Scan(&p.ID, &p.Name, &p.ElectionID, &p.DisplayOrder); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// CandidatesByPosition returns display info for every candidate standing in
// the election, keyed by position id.
func (s *Store) CandidatesByPosition(ctx context.Context, electionID int64) (map[int64][]models.CandidateInfo, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT c.id, c.position_id, v.full_name, v.class_name, c.photo_url
		FROM candidate c
		JOIN voter v ON v.id = c.voter_id
		JOIN election_position p ON p.id = c.position_id
		WHERE p.election_id = $1
		ORDER BY c.position_id, v.full_name, c.id
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	byPosition := make(map[int64][]models.CandidateInfo)
	for rows.Next() {
		var info models.CandidateInfo
		var positionID int64
		if err := rows.Scan(&info.ID, &positionID, &info.Name, &info.Class, &info.PhotoURL); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		byPosition[positionID] = append(byPosition[positionID], info)
	}
	return byPosition, rows.Err()
}

// ElectionStats counts the election's voters by state.
func (s *Store) ElectionStats(ctx context.Context, electionID int64) (models.ElectionStats, error) {
	stats := models.ElectionStats{ElectionID: electionID}
	err := s.q.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN is_eligible THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN has_voted THEN 1 ELSE 0 END), 0)
		FROM voter
		WHERE election_id = $1
	`, electionID).Scan(&stats.TotalVoters, &stats.EligibleVoters, &stats.VotedCount)
	if err != nil {
		return stats, fmt.Errorf("failed to query election stats: %w", err)
	}

	if stats.TotalVoters > 0 {
		stats.TurnoutPercent = float64(stats.VotedCount) * 100 / float64(stats.TotalVoters)
	}
	return stats, nil
}

// ElectionResults tallies ballot records per candidate for each position.
// Candidates with no votes are included with a zero count.
func (s *Store) ElectionResults(ctx context.Context, electionID int64) (models.ElectionResults, error) {
	results := models.ElectionResults{ElectionID: electionID, Positions: []models.PositionResult{}}

	rows, err := s.q.QueryContext(ctx, `
		SELECT p.id, p.name, c.id, v.full_name, COUNT(b.id)
		FROM election_position p
		JOIN candidate c ON c.position_id = p.id
		JOIN voter v ON v.id = c.voter_id
		LEFT JOIN ballot_record b ON b.candidate_id = c.id AND b.position_id = p.id
		WHERE p.election_id = $1
		GROUP BY p.id, p.name, p.display_order, c.id, v.full_name
		ORDER BY p.display_order, p.id, COUNT(b.id) DESC, c.id
	`, electionID)
	if err != nil {
		return results, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var positionID int64
		var positionName string
		var tally models.CandidateTally
		if err := rows.Scan(&positionID, &positionName, &tally.CandidateID, &tally.Name, &tally.Votes); err != nil {
			return results, fmt.Errorf("failed to scan tally: %w", err)
		}

		n := len(results.Positions)
		if n == 0 || results.Positions[n-1].PositionID != positionID {
			results.Positions = append(results.Positions, models.PositionResult{
				PositionID:   positionID,
				PositionName: positionName,
			})
			n++
		}
		results.Positions[n-1].Tallies = append(results.Positions[n-1].Tallies, tally)
	}
	return results, rows.Err()
}
