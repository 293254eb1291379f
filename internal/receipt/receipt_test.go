package receipt

import (
	"testing"
	"time"

	"github.com/enterprise/fraud-pipeline/internal/verdict"
)

func TestIssueThenVerifyRoundTrip(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)
	issuedAt := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	token, err := issuer.Issue("doc-1", "jane-doe", verdict.Approve, 0.12, issuedAt)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if token == "" {
		t.Fatal("expected a non-empty signed token")
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.DocumentID != "doc-1" || claims.IdentityKey != "jane-doe" {
		t.Errorf("claims = %+v, want document_id=doc-1 identity_key=jane-doe", claims)
	}
	if claims.Decision != verdict.Approve {
		t.Errorf("Decision = %v, want APPROVE", claims.Decision)
	}
	if claims.Score != 0.12 {
		t.Errorf("Score = %v, want 0.12", claims.Score)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewIssuer("secret-a", time.Hour)
	other := NewIssuer("secret-b", time.Hour)

	token, err := issuer.Issue("doc-1", "jane-doe", verdict.Reject, 0.9, time.Now())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := other.Verify(token); err == nil {
		t.Fatal("expected verification to fail with the wrong secret")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Millisecond)
	issuedAt := time.Now().Add(-time.Hour)

	token, err := issuer.Issue("doc-1", "jane-doe", verdict.Escalate, 0.5, issuedAt)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if _, err := issuer.Verify(token); err == nil {
		t.Fatal("expected verification to fail for an expired token")
	}
}

func TestNewIssuerDefaultsTTL(t *testing.T) {
	issuer := NewIssuer("secret", 0)
	if issuer.ttl != 24*time.Hour {
		t.Errorf("ttl = %v, want 24h default", issuer.ttl)
	}
}
