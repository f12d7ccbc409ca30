// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/cliparse"
	"github.com/danielhkuo/campus-vote/db"
	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/store"
)

// TestVoterKey is the voter HMAC key used by GetTestConfig.
const TestVoterKey = "test-voter-key"

// SetupTestDB creates a fresh sqlite database with the full schema in the
// test's temp dir. It is closed automatically when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "campus-vote.db")
	conn, err := db.Open(db.SQLite, path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn, db.SQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:            cliparse.DefaultPort,
		DatabaseType:    string(db.SQLite),
		VoterHMACKey:    TestVoterKey,
		AdminKeySalt:    "test-admin-salt",
		TurnoutSchedule: cliparse.DefaultTurnoutSchedule,
	}
}

// Hasher returns the voter hasher matching GetTestConfig.
func Hasher() *auth.VoterHasher {
	return auth.NewVoterHasher([]byte(TestVoterKey))
}

// CreateTestElection inserts an election whose window spans now +/- 1h.
func CreateTestElection(t *testing.T, conn *sql.DB, name string, active bool) int64 {
	t.Helper()

	now := time.Now()
	return CreateTestElectionWindow(t, conn, name, active, now.Add(-time.Hour), now.Add(time.Hour))
}

// CreateTestElectionWindow inserts an election with an explicit window.
func CreateTestElectionWindow(t *testing.T, conn *sql.DB, name string, active bool, start, end time.Time) int64 {
	t.Helper()

	id, err := store.New(conn).CreateElection(context.Background(), models.Election{
		Name:      name,
		Year:      start.Year(),
		StartTime: start,
		EndTime:   end,
		IsActive:  active,
	})
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}
	return id
}

// CreateTestVoter inserts an eligible voter who has not voted.
func CreateTestVoter(t *testing.T, conn *sql.DB, electionID int64, studentID string) models.Voter {
	t.Helper()

	v := models.Voter{
		StudentID:  studentID,
		FullName:   "Student " + studentID,
		ClassName:  "12A",
		IsEligible: true,
		ElectionID: electionID,
	}
	id, err := store.New(conn).CreateVoter(context.Background(), v)
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}
	v.ID = id
	return v
}

// SetVoterState overwrites a voter's eligibility and voted flags.
func SetVoterState(t *testing.T, conn *sql.DB, voterID int64, eligible, voted bool) {
	t.Helper()

	_, err := conn.Exec(`UPDATE voter SET is_eligible = $1, has_voted = $2 WHERE id = $3`, eligible, voted, voterID)
	if err != nil {
		t.Fatalf("Failed to update test voter: %v", err)
	}
}

// CreateTestPosition inserts a position into an election.
func CreateTestPosition(t *testing.T, conn *sql.DB, electionID int64, name string) int64 {
	t.Helper()

	id, err := store.New(conn).CreatePosition(context.Background(), models.Position{
		Name:       name,
		ElectionID: electionID,
	})
	if err != nil {
		t.Fatalf("Failed to create test position: %v", err)
	}
	return id
}

// CreateTestCandidate registers a new voter of the election as a candidate
// for the position and returns the candidate id.
func CreateTestCandidate(t *testing.T, conn *sql.DB, electionID, positionID int64, studentID string) int64 {
	t.Helper()

	voter := CreateTestVoter(t, conn, electionID, studentID)
	id, err := store.New(conn).CreateCandidate(context.Background(), models.Candidate{
		VoterID:    voter.ID,
		PositionID: positionID,
	})
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}
	return id
}

// CreateTestAdmin inserts an admin account and returns its key.
func CreateTestAdmin(t *testing.T, conn *sql.DB, cfg cliparse.Config, username, role string) string {
	t.Helper()

	if _, err := store.New(conn).CreateAdminUser(context.Background(), username, role); err != nil {
		t.Fatalf("Failed to create test admin: %v", err)
	}
	return auth.GenerateAdminKey(username, cfg.AdminKeySalt)
}

// Ballot is a minimal election fixture: one election, two positions with two
// candidates each, and one eligible voter.
type Ballot struct {
	ElectionID int64
	Positions  [2]int64
	Candidates [2][2]int64
	Voter      models.Voter
}

// CreateTestBallot builds the Ballot fixture in an open election.
func CreateTestBallot(t *testing.T, conn *sql.DB, studentID string) Ballot {
	t.Helper()

	var b Ballot
	b.ElectionID = CreateTestElection(t, conn, "Student Council", true)
	for i, name := range []string{"President", "Treasurer"} {
		b.Positions[i] = CreateTestPosition(t, conn, b.ElectionID, name)
		for j := range b.Candidates[i] {
			code := studentID + "-c" + string(rune('0'+i)) + string(rune('0'+j))
			b.Candidates[i][j] = CreateTestCandidate(t, conn, b.ElectionID, b.Positions[i], code)
		}
	}
	b.Voter = CreateTestVoter(t, conn, b.ElectionID, studentID)
	return b
}

// Vote builds a vote triple.
func Vote(election, position, candidate int64) models.VoteTriple {
	return models.VoteTriple{Election: &election, Position: &position, Candidate: &candidate}
}

// CountBallots returns the number of ballot records in the election.
func CountBallots(t *testing.T, conn *sql.DB, electionID int64) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM ballot_record WHERE election_id = $1`, electionID).Scan(&n); err != nil {
		t.Fatalf("Failed to count ballot records: %v", err)
	}
	return n
}

// LoadVoter re-reads a voter row.
func LoadVoter(t *testing.T, conn *sql.DB, voterID int64) models.Voter {
	t.Helper()

	found, err := store.New(conn).Voter(context.Background(), voterID)
	if err != nil {
		t.Fatalf("Failed to load voter: %v", err)
	}
	v, err := found.Take()
	if err != nil {
		t.Fatalf("Voter %d not found", voterID)
	}
	return v
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
