package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"fundflow/internal/authz"
	dmodels "fundflow/internal/donations/models"
	"fundflow/internal/projects/models"
	"fundflow/internal/projects/service"
	"fundflow/internal/projects/store"
	"fundflow/pkg/platform/sentinel"
	"fundflow/pkg/requestcontext"
)

type stubAuditor struct{}

func (stubAuditor) Info(ctx context.Context, message string)  {}
func (stubAuditor) Error(ctx context.Context, message string) {}

type stubSummer struct {
	sums []dmodels.ProjectSum
	err  error
}

func (s *stubSummer) SummedByProject(_ context.Context, _ []string) ([]dmodels.ProjectSum, error) {
	return s.sums, s.err
}

type stubResolver struct {
	names map[string]string
}

func (s *stubResolver) CategoryName(_ context.Context, categoryID string) (string, error) {
	name, ok := s.names[categoryID]
	if !ok {
		return "", sentinel.ErrUnavailable
	}
	return name, nil
}

// asPrincipal injects a fixed principal the way the auth middleware would.
func asPrincipal(p authz.Principal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(requestcontext.WithPrincipal(r.Context(), p)))
		})
	}
}

func newRouter(t *testing.T, summer *stubSummer, resolver *stubResolver, p authz.Principal) (chi.Router, *service.Service) {
	t.Helper()
	svc := service.New(store.NewInMemory(), summer, resolver, stubAuditor{}, slog.Default(), nil)
	h := New(svc, slog.Default())
	r := chi.NewRouter()
	h.Register(r, asPrincipal(p))
	return r, svc
}

func createProject(t *testing.T, svc *service.Service, owner authz.Principal, name, categoryID string) *models.Project {
	t.Helper()
	p, err := svc.Create(context.Background(), owner, service.CreateInput{
		Name:       name,
		CategoryID: categoryID,
		GoalAmount: 500,
		DeadLine:   "2027-01-01T00:00:00Z",
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p
}

func TestListComposesViews(t *testing.T) {
	owner := authz.Principal{UserID: "owner-1", Role: authz.RoleUser}
	summer := &stubSummer{}
	resolver := &stubResolver{names: map[string]string{"cat-health": "Health"}}
	r, svc := newRouter(t, summer, resolver, owner)

	p1 := createProject(t, svc, owner, "Clean Water", "cat-health")
	p2 := createProject(t, svc, owner, "School Books", "cat-education")
	summer.sums = []dmodels.ProjectSum{{ProjectID: p1.ID, CurrentValue: 150}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var views []models.View
	if err := json.NewDecoder(rec.Body).Decode(&views); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("len(views) = %d, want 2", len(views))
	}
	byID := map[string]models.View{}
	for _, v := range views {
		byID[v.ID] = v
	}
	if got := byID[p1.ID]; got.CurrentAmount != 150 || got.CategoryName != "Health" {
		t.Errorf("p1 view = %+v, want amount 150 and name Health", got)
	}
	if got := byID[p2.ID]; got.CurrentAmount != 0 || got.CategoryName != "" {
		t.Errorf("p2 view = %+v, want zero amount and empty name", got)
	}
}

func TestListFailsWhenDonationsDown(t *testing.T) {
	owner := authz.Principal{UserID: "owner-1", Role: authz.RoleUser}
	summer := &stubSummer{err: errors.New("connection refused")}
	r, svc := newRouter(t, summer, &stubResolver{names: map[string]string{}}, owner)
	createProject(t, svc, owner, "Clean Water", "cat-health")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestCreateRequiresValidBody(t *testing.T) {
	owner := authz.Principal{UserID: "owner-1", Role: authz.RoleUser}
	r, _ := newRouter(t, &stubSummer{}, &stubResolver{}, owner)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"categoryId":"c"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestOwnerStatusChangeRestrictedToClose(t *testing.T) {
	owner := authz.Principal{UserID: "owner-1", Role: authz.RoleUser}
	r, svc := newRouter(t, &stubSummer{}, &stubResolver{}, owner)
	p := createProject(t, svc, owner, "Clean Water", "cat-health")

	req := httptest.NewRequest(http.MethodPut, "/"+p.ID, strings.NewReader(`{"status":"Approved"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("approve status = %d, want 403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPut, "/"+p.ID, strings.NewReader(`{"status":"Closed"}`))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("close status = %d, want 200", rec.Code)
	}
	var updated models.Project
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if updated.Status != models.StatusClosed {
		t.Fatalf("status = %q, want Closed", updated.Status)
	}
}

// The lifecycle vocabulary is part of the wire contract shared with the
// frontend; both the stored values and new-project responses must use it.
func TestStatusWireVocabulary(t *testing.T) {
	want := map[models.Status]string{
		models.StatusPendingApproval: "PendingApproval",
		models.StatusApproved:        "Approved",
		models.StatusRejected:        "Rejected",
		models.StatusClosed:          "Closed",
	}
	for status, wire := range want {
		if string(status) != wire {
			t.Errorf("status constant = %q, want %q", status, wire)
		}
		if !status.Valid() {
			t.Errorf("status %q should be valid", wire)
		}
	}

	owner := authz.Principal{UserID: "owner-1", Role: authz.RoleUser}
	r, svc := newRouter(t, &stubSummer{}, &stubResolver{}, owner)
	p := createProject(t, svc, owner, "Clean Water", "cat-health")

	req := httptest.NewRequest(http.MethodGet, "/"+p.ID, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"PendingApproval"`) {
		t.Errorf("new project body %s missing PendingApproval status", rec.Body.String())
	}
}

func TestUpdateAcceptsPostVerb(t *testing.T) {
	owner := authz.Principal{UserID: "owner-1", Role: authz.RoleUser}
	r, svc := newRouter(t, &stubSummer{}, &stubResolver{}, owner)
	p := createProject(t, svc, owner, "Clean Water", "cat-health")

	req := httptest.NewRequest(http.MethodPost, "/"+p.ID, strings.NewReader(`{"name":"Cleaner Water"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var updated models.Project
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if updated.Name != "Cleaner Water" {
		t.Fatalf("name = %q, want Cleaner Water", updated.Name)
	}
}

func TestDeleteProject(t *testing.T) {
	owner := authz.Principal{UserID: "owner-1", Role: authz.RoleUser}
	r, svc := newRouter(t, &stubSummer{}, &stubResolver{}, owner)
	p := createProject(t, svc, owner, "Clean Water", "cat-health")

	req := httptest.NewRequest(http.MethodDelete, "/"+p.ID, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/"+p.ID, nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
