// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Admin role constants
const (
	RoleSuperuser = "superuser"
	RoleStaff     = "staff"
	RoleActivator = "activator"
)

// Request headers
const (
	HeaderStudentID  = "X-Student-Id"
	HeaderElectionID = "X-Election-Id"
	HeaderVoterToken = "X-Voter-Token"
	HeaderAdminUser  = "X-Admin-User"
	HeaderAdminKey   = "X-Admin-Key"
)

// Request types

type VoterLoginRequest struct {
	VoterCode string `json:"voter_code" validate:"required,max=30"`
}

// VoteTriple is one (election, position, candidate) selection. Pointer fields
// distinguish a missing id from zero.
type VoteTriple struct {
	Election  *int64 `json:"election"`
	Position  *int64 `json:"position"`
	Candidate *int64 `json:"candidate"`
}

type CastBallotRequest struct {
	Votes []VoteTriple `json:"votes" validate:"required,min=1"`
}

type ToggleEligibilityRequest struct {
	VoterCode  string `json:"voter_code" validate:"required,max=30"`
	ElectionID int64  `json:"election_id" validate:"required,gt=0"`
	IsEligible *bool  `json:"is_eligible" validate:"required"`
}

// Response types

type VoterSummary struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Class string `json:"class"`
}

type ElectionSummary struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Year     int    `json:"year"`
	ClosesIn string `json:"closes_in,omitempty"`
}

type VoterLoginResponse struct {
	Token    string          `json:"token"`
	Voter    VoterSummary    `json:"voter"`
	Election ElectionSummary `json:"election"`
}

type CastBallotResponse struct {
	Message  string `json:"message"`
	Recorded int    `json:"recorded"`
}

type ToggleEligibilityResponse struct {
	VoterCode  string `json:"voter_code"`
	ElectionID int64  `json:"election_id"`
	IsEligible bool   `json:"is_eligible"`
	Changed    bool   `json:"changed"`
}

type BallotSheet struct {
	Election  ElectionSummary `json:"election"`
	Positions []BallotSection `json:"positions"`
}

type BallotSection struct {
	Position   Position        `json:"position"`
	Candidates []CandidateInfo `json:"candidates"`
}

type CandidateInfo struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Class    string `json:"class"`
	PhotoURL string `json:"photo_url,omitempty"`
}

type ElectionStats struct {
	ElectionID     int64   `json:"election_id"`
	TotalVoters    int     `json:"total_voters"`
	EligibleVoters int     `json:"eligible_voters"`
	VotedCount     int     `json:"voted_count"`
	TurnoutPercent float64 `json:"turnout_percent"`
}

type CandidateTally struct {
	CandidateID int64  `json:"candidate_id"`
	Name        string `json:"name"`
	Votes       int    `json:"votes"`
}

type PositionResult struct {
	PositionID   int64            `json:"position_id"`
	PositionName string           `json:"position_name"`
	Tallies      []CandidateTally `json:"tallies"`
}

type ElectionResults struct {
	ElectionID int64            `json:"election_id"`
	Positions  []PositionResult `json:"positions"`
}

// Domain types

type Election struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Year      int       `json:"year"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	IsActive  bool      `json:"is_active"`
}

// Open reports whether the election accepts credentials and ballots at t.
// The window is inclusive on both ends.
func (e Election) Open(t time.Time) bool {
	return e.IsActive && !t.Before(e.StartTime) && !t.After(e.EndTime)
}

type Voter struct {
	ID         int64  `json:"id"`
	StudentID  string `json:"student_id"`
	FullName   string `json:"full_name"`
	ClassName  string `json:"class_name"`
	IsEligible bool   `json:"is_eligible"`
	HasVoted   bool   `json:"has_voted"`
	ElectionID int64  `json:"election_id"`
}

type Position struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	ElectionID   int64  `json:"election_id"`
	DisplayOrder int    `json:"display_order"`
}

type Candidate struct {
	ID         int64  `json:"id"`
	VoterID    int64  `json:"voter_id"`
	PositionID int64  `json:"position_id"`
	PhotoURL   string `json:"photo_url,omitempty"`
}

type BallotRecord struct {
	ID          int64     `json:"id"`
	ElectionID  int64     `json:"election_id"`
	PositionID  int64     `json:"position_id"`
	CandidateID int64     `json:"candidate_id"`
	Fingerprint string    `json:"-"` // Never expose in JSON
	CreatedAt   time.Time `json:"created_at"`
}

type AdminUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
