package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/salud-red/appointment-service/internal/identity"
	"github.com/salud-red/appointment-service/internal/store"
)

type fakeVerifier struct {
	verifyFunc func(token string) (*identity.TokenClaims, error)
}

func (f *fakeVerifier) VerifyIDToken(token string) (*identity.TokenClaims, error) {
	return f.verifyFunc(token)
}

type fakeResolver struct {
	getFunc func(ctx context.Context, uid string) (*store.User, error)
}

func (f *fakeResolver) GetUserByFirebaseUID(ctx context.Context, uid string) (*store.User, error) {
	return f.getFunc(ctx, uid)
}

type failureRecorder struct {
	reasons []string
}

func (f *failureRecorder) RecordAuthFailure(ctx context.Context, reason string) {
	f.reasons = append(f.reasons, reason)
}

func activeUser() *store.User {
	return &store.User{
		ID:          "u1",
		FirebaseUID: "fb-u1",
		Email:       "ana@example.com",
		Role:        "patient",
		IsActive:    true,
	}
}

func okVerifier() *fakeVerifier {
	return &fakeVerifier{verifyFunc: func(token string) (*identity.TokenClaims, error) {
		return &identity.TokenClaims{UID: "fb-u1", Email: "ana@example.com"}, nil
	}}
}

func okResolver(user *store.User) *fakeResolver {
	return &fakeResolver{getFunc: func(ctx context.Context, uid string) (*store.User, error) {
		return user, nil
	}}
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	return body.Message
}

// Test that a request without an Authorization header is rejected with 401.
func TestMiddlewareMissingHeader(t *testing.T) {
	recorder := &failureRecorder{}
	mw := MiddlewareWithMetrics(okVerifier(), okResolver(activeUser()), recorder)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("Handler should not be reached")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "missing authorization header" {
		t.Errorf("Expected missing header message, got %q", msg)
	}
	if len(recorder.reasons) != 1 || recorder.reasons[0] != "missing_authorization" {
		t.Errorf("Expected missing_authorization metric, got %v", recorder.reasons)
	}
}

// Test that a malformed Authorization header is rejected with 401.
func TestMiddlewareInvalidHeaderFormat(t *testing.T) {
	mw := Middleware(okVerifier(), okResolver(activeUser()))
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("Handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Token abc123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "invalid authorization header" {
		t.Errorf("Expected invalid header message, got %q", msg)
	}
}

// Test that a token the verifier rejects yields 401.
func TestMiddlewareVerificationFailure(t *testing.T) {
	ver := &fakeVerifier{verifyFunc: func(token string) (*identity.TokenClaims, error) {
		return nil, errors.New("token has expired")
	}}
	recorder := &failureRecorder{}
	mw := MiddlewareWithMetrics(ver, okResolver(activeUser()), recorder)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("Handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
	if len(recorder.reasons) != 1 || recorder.reasons[0] != "invalid_token" {
		t.Errorf("Expected invalid_token metric, got %v", recorder.reasons)
	}
}

// Test that a verified token with no matching account yields 404.
func TestMiddlewareUnknownUser(t *testing.T) {
	res := &fakeResolver{getFunc: func(ctx context.Context, uid string) (*store.User, error) {
		return nil, nil
	}}
	mw := Middleware(okVerifier(), res)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("Handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "user not found" {
		t.Errorf("Expected user not found message, got %q", msg)
	}
}

// Test that a deactivated account is rejected with 403 even with a valid token.
func TestMiddlewareDeactivatedUser(t *testing.T) {
	user := activeUser()
	user.IsActive = false
	mw := Middleware(okVerifier(), okResolver(user))
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("Handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "account is deactivated" {
		t.Errorf("Expected deactivated message, got %q", msg)
	}
}

// Test that a valid bearer token attaches the domain user to the context.
func TestMiddlewareSuccess(t *testing.T) {
	recorder := &failureRecorder{}
	mw := MiddlewareWithMetrics(okVerifier(), okResolver(activeUser()), recorder)

	var got *store.User
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "bearer good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if got == nil || got.ID != "u1" {
		t.Fatalf("Expected user u1 in context, got %+v", got)
	}
	if len(recorder.reasons) != 0 {
		t.Errorf("Expected no failure metrics, got %v", recorder.reasons)
	}
}

// Test that RequireRoles passes a user whose role is in the allowlist.
func TestRequireRolesAllowed(t *testing.T) {
	user := activeUser()
	user.Role = "admin"
	handler := RequireRoles("admin", "health_worker")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req = req.WithContext(ContextWithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
}

// Test that RequireRoles rejects a user outside the allowlist with 403.
func TestRequireRolesDenied(t *testing.T) {
	handler := RequireRoles("admin", "health_worker")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("Handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req = req.WithContext(ContextWithUser(req.Context(), activeUser()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rec.Code)
	}
	want := "access denied: requires one of roles [admin, health_worker], your role is patient"
	if msg := errorMessage(t, rec); msg != want {
		t.Errorf("Expected %q, got %q", want, msg)
	}
}

// Test that RequireRoles with no context user yields 401.
func TestRequireRolesUnauthenticated(t *testing.T) {
	handler := RequireRoles("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("Handler should not be reached")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

// Test that an empty role list admits any authenticated user.
func TestRequireRolesEmptyListAllowsAny(t *testing.T) {
	handler := RequireRoles()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	req = req.WithContext(ContextWithUser(req.Context(), activeUser()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
}
