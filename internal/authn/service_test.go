package authn

import (
	"context"
	"testing"

	"github.com/salud-red/appointment-service/internal/identity"
	"github.com/salud-red/appointment-service/internal/store"
)

// Test that a valid password login returns the token and profile.
func TestLogin(t *testing.T) {
	svc, _, _, _ := resetFixture(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, "ana@example.com", "old-password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if resp.Token == "" {
		t.Error("Expected a provider ID token")
	}
	if resp.User == nil || resp.User.Email != "ana@example.com" {
		t.Errorf("Expected the user profile, got %+v", resp.User)
	}
}

// Test that a wrong password yields ErrInvalidCredentials.
func TestLoginWrongPassword(t *testing.T) {
	svc, _, _, _ := resetFixture(t)
	ctx := context.Background()

	if _, err := svc.Login(ctx, "ana@example.com", "wrong"); err != ErrInvalidCredentials {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "whatever"); err != ErrInvalidCredentials {
		t.Errorf("Expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

// Test that a deactivated account cannot log in with a correct password.
func TestLoginDeactivatedAccount(t *testing.T) {
	svc, fs, _, _ := resetFixture(t)
	ctx := context.Background()

	fs.Update(ctx, store.CollectionUsers, "u1", map[string]interface{}{"is_active": false})

	if _, err := svc.Login(ctx, "ana@example.com", "old-password"); err != ErrAccountDisabled {
		t.Errorf("Expected ErrAccountDisabled, got %v", err)
	}
}

// Test that a federated login provisions a patient on first sight.
func TestFederatedLoginAutoProvision(t *testing.T) {
	svc, fs, gw, _ := resetFixture(t)
	ctx := context.Background()

	gw.RegisterToken("google-token", &identity.TokenClaims{
		UID:    "goog-1",
		Email:  "ben@example.com",
		Claims: map[string]interface{}{"name": "Ben Cruz"},
	})

	resp, err := svc.FederatedLogin(ctx, "google-token", "google")
	if err != nil {
		t.Fatalf("FederatedLogin failed: %v", err)
	}
	if resp.User.Role != store.RolePatient {
		t.Errorf("Expected provisioned role patient, got %q", resp.User.Role)
	}
	if resp.User.Name != "Ben Cruz" || resp.User.Provider != "google" {
		t.Errorf("Expected name and provider from claims, got %+v", resp.User)
	}
	if n := fs.Count(ctx, store.CollectionUsers); n != 2 {
		t.Errorf("Expected 2 user documents, got %d", n)
	}

	again, err := svc.FederatedLogin(ctx, "google-token", "google")
	if err != nil {
		t.Fatalf("Second FederatedLogin failed: %v", err)
	}
	if again.User.ID != resp.User.ID {
		t.Errorf("Expected the same user on repeat login, got %s and %s", resp.User.ID, again.User.ID)
	}
	if n := fs.Count(ctx, store.CollectionUsers); n != 2 {
		t.Errorf("Expected no duplicate document, got %d users", n)
	}
}

// Test that an unverifiable ID token is rejected.
func TestFederatedLoginBadToken(t *testing.T) {
	svc, _, _, _ := resetFixture(t)
	ctx := context.Background()

	if _, err := svc.FederatedLogin(ctx, "forged", "google"); err != ErrInvalidCredentials {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
}

// Test that changing the password requires the current one.
func TestChangePassword(t *testing.T) {
	svc, _, gw, _ := resetFixture(t)
	ctx := context.Background()

	profile, err := svc.Login(ctx, "ana@example.com", "old-password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := svc.ChangePassword(ctx, profile.User, "wrong", "new-password"); err != ErrInvalidCredentials {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
	if err := svc.ChangePassword(ctx, profile.User, "old-password", "new-password"); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}
	if _, err := gw.VerifyPassword(ctx, "ana@example.com", "new-password"); err != nil {
		t.Errorf("Expected new password to work, got %v", err)
	}
}

// Test that SetPassword refuses accounts that already have one.
func TestSetPassword(t *testing.T) {
	svc, _, gw, _ := resetFixture(t)
	ctx := context.Background()

	// A federated account exists at the provider without a password
	// credential.
	uid, err := gw.CreateUser(ctx, "ben@example.com", "", "Ben Cruz")
	if err != nil {
		t.Fatalf("Failed to seed federated account: %v", err)
	}
	gw.RegisterToken("google-token", &identity.TokenClaims{UID: uid, Email: "ben@example.com"})

	resp, err := svc.FederatedLogin(ctx, "google-token", "google")
	if err != nil {
		t.Fatalf("FederatedLogin failed: %v", err)
	}

	has, err := svc.HasPassword(ctx, resp.User)
	if err != nil {
		t.Fatalf("HasPassword failed: %v", err)
	}
	if has {
		t.Fatal("Expected federated account to have no password")
	}

	if err := svc.SetPassword(ctx, resp.User, "first-password"); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	if err := svc.SetPassword(ctx, resp.User, "another"); err != ErrPasswordAlreadySet {
		t.Errorf("Expected ErrPasswordAlreadySet, got %v", err)
	}
	if _, err := gw.VerifyPassword(ctx, "ben@example.com", "first-password"); err != nil {
		t.Errorf("Expected the new password to sign in, got %v", err)
	}
}
