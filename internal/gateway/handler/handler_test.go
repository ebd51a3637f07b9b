package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"fundflow/internal/authz"
	"fundflow/internal/clients"
	"fundflow/internal/gateway/service"
	"fundflow/internal/platform/middleware"
	"fundflow/internal/token"
	"fundflow/pkg/platform/sentinel"
)

type stubAuditor struct{}

func (stubAuditor) Info(ctx context.Context, message string)  {}
func (stubAuditor) Error(ctx context.Context, message string) {}

type stubDirectory struct{}

func (stubDirectory) FindByEmail(_ context.Context, email string) (*clients.Credentials, error) {
	return nil, sentinel.ErrNotFound
}

func (stubDirectory) CreateGoogle(_ context.Context, email, name string) (*clients.ProvisionedUser, bool, error) {
	return &clients.ProvisionedUser{ID: "u-9", Email: email, Role: "USER"}, true, nil
}

func newRouter(t *testing.T) (chi.Router, *token.Service) {
	t.Helper()
	tokens := token.NewService("test-signing-key", "fundflow", time.Minute)
	logger := slog.Default()
	svc := service.New(stubDirectory{}, tokens, stubAuditor{}, logger)
	r := chi.NewRouter()
	New(svc, tokens, logger).Register(r, middleware.RequireAuth(tokens, logger))
	return r, tokens
}

func TestMeReflectsToken(t *testing.T) {
	r, tokens := newRouter(t)

	signed, err := tokens.Issue(authz.Principal{UserID: "u-1", Role: authz.RoleAdmin}, "admin@example.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var me meResponse
	if err := json.NewDecoder(rec.Body).Decode(&me); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if me.UserID != "u-1" || me.Email != "admin@example.com" || me.Role != "ADMIN" {
		t.Errorf("me = %+v, want u-1/admin@example.com/ADMIN", me)
	}
}

func TestMeRequiresToken(t *testing.T) {
	r, _ := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestLoginBasicUnknownUserUnauthorized(t *testing.T) {
	r, _ := newRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/login-basic", strings.NewReader(`{"email":"nobody@example.com","password":"x"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestExchangeGoogleIssuesSession(t *testing.T) {
	r, _ := newRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/exchange-google", strings.NewReader(`{"email":"new@example.com"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "token") {
		t.Error("session response missing token")
	}
}
