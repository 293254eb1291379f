// Package receipt issues and verifies signed decision receipts: a compact
// JWT asserting that a given decision was produced by this pipeline for a
// given document and identity, so a downstream consumer can detect
// tampering in transit.
package receipt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/enterprise/fraud-pipeline/internal/verdict"
)

// Claims is the receipt's JWT payload.
type Claims struct {
	DocumentID  string          `json:"document_id"`
	IdentityKey string          `json:"identity_key"`
	Decision    verdict.Decision `json:"decision"`
	Score       float64         `json:"score"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies decision receipts with a shared HS256 secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// Issue signs a receipt for the given decision, issued at issuedAt rather
// than the wall clock, so callers can produce deterministic receipts in
// tests.
func (i *Issuer) Issue(documentID, identityKey string, decision verdict.Decision, score float64, issuedAt time.Time) (string, error) {
	claims := Claims{
		DocumentID:  documentID,
		IdentityKey: identityKey,
		Decision:    decision,
		Score:       score,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(i.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("receipt: signing: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a receipt, returning its claims on success.
func (i *Issuer) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("receipt: verifying: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("receipt: token invalid")
	}
	return claims, nil
}
