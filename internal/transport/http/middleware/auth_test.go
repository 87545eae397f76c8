package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"fieldops/internal/domain/auth"
)

const testSecret = "test-secret"

func TestAuthAttachesPrincipal(t *testing.T) {
	token, err := auth.IssueToken(testSecret, "emp-1", "MANAGER")
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}

	var got auth.Principal
	var found bool
	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, found = GetUser(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leave/requests", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !found {
		t.Fatal("expected principal in context")
	}
	if got.EmployeeID != "emp-1" || got.Role != "MANAGER" {
		t.Fatalf("unexpected principal %+v", got)
	}
}

func TestAuthIgnoresInvalidToken(t *testing.T) {
	var found bool
	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = GetUser(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leave/requests", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if found {
		t.Fatal("invalid token must not attach a principal")
	}
}

func TestAuthRejectsWrongSecret(t *testing.T) {
	token, err := auth.IssueToken("another-secret", "emp-1", "MANAGER")
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}

	var found bool
	handler := Auth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = GetUser(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leave/requests", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if found {
		t.Fatal("token signed with a different secret must not attach a principal")
	}
}

func TestRequireCapability(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	guarded := RequireCapability(auth.CapApproveLeaves)(next)

	anonymous := httptest.NewRequest(http.MethodPost, "/api/v1/leave/requests/r1/approve", nil)
	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, anonymous)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous request should be 401, got %d", rec.Code)
	}

	token, err := auth.IssueToken(testSecret, "emp-1", "EMPLOYEE")
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}
	employee := httptest.NewRequest(http.MethodPost, "/api/v1/leave/requests/r1/approve", nil)
	employee.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	Auth(testSecret)(guarded).ServeHTTP(rec, employee)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("employee should be 403, got %d", rec.Code)
	}

	token, err = auth.IssueToken(testSecret, "mgr-1", "MANAGER")
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}
	manager := httptest.NewRequest(http.MethodPost, "/api/v1/leave/requests/r1/approve", nil)
	manager.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	Auth(testSecret)(guarded).ServeHTTP(rec, manager)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("manager should pass, got %d", rec.Code)
	}
}
