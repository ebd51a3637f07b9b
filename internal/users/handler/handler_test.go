package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"fundflow/internal/users/service"
	"fundflow/internal/users/store"
)

type stubAuditor struct{}

func (stubAuditor) Info(ctx context.Context, message string)  {}
func (stubAuditor) Error(ctx context.Context, message string) {}

func newRouter(t *testing.T) chi.Router {
	t.Helper()
	svc := service.New(store.NewInMemory(), stubAuditor{})
	h := New(svc, slog.Default())
	r := chi.NewRouter()
	passthrough := func(next http.Handler) http.Handler { return next }
	h.Register(r, passthrough)
	return r
}

func postJSON(t *testing.T, r chi.Router, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateGoogleStatusReflectsCreation(t *testing.T) {
	r := newRouter(t)

	rec := postJSON(t, r, "/create-google", `{"email":"john.smith@example.com"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first call status = %d, want 201", rec.Code)
	}
	var first map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&first); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if first["name"] != "John Smith" {
		t.Errorf("derived name = %v, want John Smith", first["name"])
	}

	rec = postJSON(t, r, "/create-google", `{"email":"John.Smith@Example.com","name":"Other Name"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("second call status = %d, want 200", rec.Code)
	}
	var second map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&second); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if second["_id"] != first["_id"] {
		t.Errorf("second call returned id %v, want %v", second["_id"], first["_id"])
	}
	if second["name"] != "John Smith" {
		t.Errorf("existing record name = %v, want unchanged John Smith", second["name"])
	}
}

func TestFindByEmail(t *testing.T) {
	r := newRouter(t)

	rec := postJSON(t, r, "/find-by-email", `{"email":"nobody@example.com"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown email status = %d, want 404", rec.Code)
	}

	rec = postJSON(t, r, "/create-basic", `{"name":"Jane","email":"jane@example.com","password":"hunter2"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create-basic status = %d, want 201", rec.Code)
	}

	rec = postJSON(t, r, "/find-by-email", `{"email":"jane@example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var creds credentialsResponse
	if err := json.NewDecoder(rec.Body).Decode(&creds); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if creds.PasswordHash == "" {
		t.Error("passwordHash missing from credentials response")
	}
	if creds.AuthType != "BASIC" {
		t.Errorf("authType = %q, want BASIC", creds.AuthType)
	}
}

func TestCreateBasicDuplicateConflicts(t *testing.T) {
	r := newRouter(t)

	rec := postJSON(t, r, "/create-basic", `{"name":"Jane","email":"jane@example.com","password":"hunter2"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	rec = postJSON(t, r, "/create-basic", `{"name":"Jane Again","email":"JANE@example.com","password":"hunter2"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", rec.Code)
	}
}

func TestUserResponseHidesPasswordHash(t *testing.T) {
	r := newRouter(t)

	rec := postJSON(t, r, "/create-basic", `{"name":"Jane","email":"jane@example.com","password":"hunter2"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "passwordHash") {
		t.Error("create-basic response leaked the password hash")
	}
}
