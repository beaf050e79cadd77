package model

import (
	"encoding/json"
	"strings"
	"time"

	"scenario-quiz/internal/domain"
)

// TokenStatus is the outcome of validating a token id against the ledger.
type TokenStatus string

const (
	TokenStatusValid   TokenStatus = "valid"
	TokenStatusExpired TokenStatus = "expired"
	TokenStatusInvalid TokenStatus = "invalid"
)

// TokenIDLength is the length of an issued token id: ten digits and two
// uppercase letters in shuffled order.
const TokenIDLength = 12

// Token is a usage-limited access credential. ID and Limit never change
// after issue; Used only grows.
type Token struct {
	ID        string    `json:"id"`
	Limit     int       `json:"limit"`
	Used      int       `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

func NewToken(id string, limit int) (*Token, error) {
	if limit <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if !IsWellFormedTokenID(id) {
		return nil, domain.ErrInvalidArgument
	}
	return &Token{
		ID:        id,
		Limit:     limit,
		Used:      0,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Usable reports whether at least one use remains.
func (t *Token) Usable() bool { return t != nil && t.Used < t.Limit }

// Remaining never goes below zero.
func (t *Token) Remaining() int {
	if t == nil || t.Used >= t.Limit {
		return 0
	}
	return t.Limit - t.Used
}

func (t *Token) Status() TokenStatus {
	if t == nil {
		return TokenStatusInvalid
	}
	if t.Usable() {
		return TokenStatusValid
	}
	return TokenStatusExpired
}

// IsWellFormedTokenID checks shape only, not ledger membership.
func IsWellFormedTokenID(id string) bool {
	if len(id) != TokenIDLength {
		return false
	}
	digits, letters := 0, 0
	for _, r := range id {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r >= 'A' && r <= 'Z':
			letters++
		default:
			return false
		}
	}
	return digits == 10 && letters == 2
}

// NormalizeTokenID trims surrounding whitespace from user input.
func NormalizeTokenID(raw string) string { return strings.TrimSpace(raw) }

// ledgerDocument is the persisted form of the whole ledger.
type ledgerDocument struct {
	Tokens []*Token `json:"tokens"`
}

// EncodeLedger serializes the ledger as one document, preserving order.
func EncodeLedger(tokens []*Token) ([]byte, error) {
	if tokens == nil {
		tokens = []*Token{}
	}
	return json.Marshal(ledgerDocument{Tokens: tokens})
}

// DecodeLedger is the inverse of EncodeLedger. An empty input is an empty ledger.
func DecodeLedger(b []byte) ([]*Token, error) {
	if len(b) == 0 {
		return []*Token{}, nil
	}
	var doc ledgerDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	if doc.Tokens == nil {
		doc.Tokens = []*Token{}
	}
	return doc.Tokens, nil
}
