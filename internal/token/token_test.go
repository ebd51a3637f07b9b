package token

import (
	"testing"
	"time"

	"fundflow/internal/authz"
	dErrors "fundflow/pkg/domainerrors"
)

func TestIssueAndValidate(t *testing.T) {
	svc := NewService("test-signing-key", "fundflow-gateway", time.Hour)

	signed, err := svc.Issue(authz.Principal{UserID: "user-1", Role: authz.RoleAdmin}, "admin@example.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	p, err := svc.Validate(signed)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if p.UserID != "user-1" {
		t.Fatalf("expected user-1, got %q", p.UserID)
	}
	if p.Role != authz.RoleAdmin {
		t.Fatalf("expected ADMIN role, got %q", p.Role)
	}

	mail, err := svc.Email(signed)
	if err != nil {
		t.Fatalf("extract email: %v", err)
	}
	if mail != "admin@example.com" {
		t.Fatalf("expected email claim, got %q", mail)
	}
}

func TestValidateRejectsForeignSignature(t *testing.T) {
	issuer := NewService("key-a", "fundflow-gateway", time.Hour)
	verifier := NewService("key-b", "fundflow-gateway", time.Hour)

	signed, err := issuer.Issue(authz.Principal{UserID: "user-1", Role: authz.RoleUser}, "u@example.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	_, err = verifier.Validate(signed)
	if err == nil {
		t.Fatal("expected validation failure for foreign signature")
	}
	if !dErrors.HasCode(err, dErrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized code, got %v", err)
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := NewService("test-signing-key", "fundflow-gateway", -time.Minute)

	signed, err := svc.Issue(authz.Principal{UserID: "user-1", Role: authz.RoleUser}, "u@example.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	_, err = svc.Validate(signed)
	if !dErrors.HasCode(err, dErrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for expired token, got %v", err)
	}
}

func TestUnknownRoleDowngradesToUser(t *testing.T) {
	svc := NewService("test-signing-key", "fundflow-gateway", time.Hour)

	signed, err := svc.Issue(authz.Principal{UserID: "user-1", Role: authz.Role("SUPERVISOR")}, "u@example.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	p, err := svc.Validate(signed)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if p.Role != authz.RoleUser {
		t.Fatalf("unrecognized role should downgrade to USER, got %q", p.Role)
	}
}
