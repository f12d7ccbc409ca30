// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
)

var (
	ErrInvalidAdminKey = errors.New("invalid admin key")
	ErrInvalidToken    = errors.New("invalid voter token")
)

// VoterHasher derives election-scoped voter tokens and fingerprints from a
// server-held secret. The key is injected at construction so it can be
// rotated and fixed in tests.
type VoterHasher struct {
	key []byte
}

func NewVoterHasher(key []byte) *VoterHasher {
	k := make([]byte, len(key))
	copy(k, key)
	return &VoterHasher{key: k}
}

// Token returns hex HMAC-SHA256 of "studentID:electionID".
func (h *VoterHasher) Token(studentID string, electionID int64) string {
	return h.sum(studentID + ":" + strconv.FormatInt(electionID, 10))
}

// VerifyToken compares token against the expected value in constant time.
func (h *VoterHasher) VerifyToken(studentID string, electionID int64, token string) error {
	expected := h.Token(studentID, electionID)
	if !hmac.Equal([]byte(token), []byte(expected)) {
		return ErrInvalidToken
	}
	return nil
}

// Fingerprint is the identity stored on ballot records. It uses its own
// label so a stored fingerprint never doubles as a login token.
func (h *VoterHasher) Fingerprint(studentID string, electionID int64) string {
	return h.sum("ballot:" + studentID + ":" + strconv.FormatInt(electionID, 10))
}

func (h *VoterHasher) sum(msg string) string {
	mac := hmac.New(sha256.New, h.key)
	mac.Write([]byte(msg))
	return hex.EncodeToString(mac.Sum(nil))
}

// GenerateAdminKey creates an HMAC-based key for an admin account
// This is deterministic and verifiable
func GenerateAdminKey(username, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(username))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner keys
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// ValidateAdminKey checks if the provided admin key is valid for the account
func ValidateAdminKey(username, adminKey, salt string) error {
	expected := GenerateAdminKey(username, salt)
	if !hmac.Equal([]byte(adminKey), []byte(expected)) {
		return ErrInvalidAdminKey
	}
	return nil
}
