package authn

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/salud-red/appointment-service/internal/identity"
	"github.com/salud-red/appointment-service/internal/mailer"
	"github.com/salud-red/appointment-service/internal/store"
	"github.com/salud-red/appointment-service/internal/telemetry"
)

type Service struct {
	records *store.Records
	gateway identity.Gateway
	mail    mailer.Sender
	baseURL string
	metrics *telemetry.Metrics
}

func NewService(records *store.Records, gateway identity.Gateway, mail mailer.Sender, baseURL string, metrics *telemetry.Metrics) *Service {
	return &Service{
		records: records,
		gateway: gateway,
		mail:    mail,
		baseURL: baseURL,
		metrics: metrics,
	}
}

func (s *Service) recordAuthFailure(ctx context.Context, reason string) {
	if s.metrics != nil {
		s.metrics.RecordAuthFailure(ctx, reason)
	}
}

// Login verifies email and password at the identity provider and returns
// the provider ID token together with the user profile.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	result, err := s.gateway.VerifyPassword(ctx, email, password)
	if err != nil {
		if err == identity.ErrInvalidCredentials {
			s.recordAuthFailure(ctx, "invalid_credentials")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("identity provider sign-in failed: %w", err)
	}

	user, err := s.records.GetUserByFirebaseUID(ctx, result.UID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.recordAuthFailure(ctx, "unknown_user")
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		s.recordAuthFailure(ctx, "account_disabled")
		return nil, ErrAccountDisabled
	}

	log.Printf("User %s logged in", user.ID)
	return &LoginResponse{Token: result.IDToken, User: user}, nil
}

// FederatedLogin verifies a client-obtained ID token and returns the
// matching user, provisioning the document with role patient when the
// identity is seen for the first time.
func (s *Service) FederatedLogin(ctx context.Context, idToken, provider string) (*LoginResponse, error) {
	claims, err := s.gateway.VerifyIDToken(idToken)
	if err != nil {
		s.recordAuthFailure(ctx, "invalid_token")
		return nil, ErrInvalidCredentials
	}

	user, err := s.records.GetUserByFirebaseUID(ctx, claims.UID)
	if err != nil {
		return nil, err
	}

	if user == nil {
		name, _ := claims.Claims["name"].(string)
		if name == "" {
			name = claims.Email
		}
		user = &store.User{
			ID:          uuid.New().String(),
			FirebaseUID: claims.UID,
			Name:        name,
			Email:       claims.Email,
			Role:        store.RolePatient,
			Provider:    provider,
			IsActive:    true,
		}

		doc := user.ToMap()
		delete(doc, "created_at")
		delete(doc, "updated_at")

		if _, err := s.records.S.Create(ctx, store.CollectionUsers, doc, user.ID); err != nil {
			return nil, ErrStoreFailure
		}
		log.Printf("Auto-provisioned user %s for identity %s (%s)", user.ID, claims.UID, provider)
	}

	if !user.IsActive {
		s.recordAuthFailure(ctx, "account_disabled")
		return nil, ErrAccountDisabled
	}

	return &LoginResponse{User: user}, nil
}

// Logout revokes the user's refresh tokens at the identity provider.
// Already-issued ID tokens stay valid until they expire.
func (s *Service) Logout(ctx context.Context, user *store.User) error {
	if user.FirebaseUID == "" {
		return nil
	}
	if err := s.gateway.RevokeTokens(ctx, user.FirebaseUID); err != nil {
		return fmt.Errorf("failed to revoke tokens: %w", err)
	}
	log.Printf("User %s logged out", user.ID)
	return nil
}

// ChangePassword re-verifies the current password before setting the new
// one.
func (s *Service) ChangePassword(ctx context.Context, user *store.User, current, newPassword string) error {
	if _, err := s.gateway.VerifyPassword(ctx, user.Email, current); err != nil {
		if err == identity.ErrInvalidCredentials {
			s.recordAuthFailure(ctx, "invalid_credentials")
			return ErrInvalidCredentials
		}
		return fmt.Errorf("identity provider sign-in failed: %w", err)
	}

	password := newPassword
	if err := s.gateway.UpdateUser(ctx, user.FirebaseUID, identity.UserUpdate{Password: &password}); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// SetPassword attaches a password to a federated-only account. Accounts
// that already have one must use the change-password flow instead.
func (s *Service) SetPassword(ctx context.Context, user *store.User, newPassword string) error {
	has, err := s.gateway.UserHasPassword(ctx, user.FirebaseUID)
	if err != nil {
		return fmt.Errorf("failed to inspect sign-in providers: %w", err)
	}
	if has {
		return ErrPasswordAlreadySet
	}

	password := newPassword
	if err := s.gateway.UpdateUser(ctx, user.FirebaseUID, identity.UserUpdate{Password: &password}); err != nil {
		return fmt.Errorf("failed to set password: %w", err)
	}
	return nil
}

func (s *Service) HasPassword(ctx context.Context, user *store.User) (bool, error) {
	return s.gateway.UserHasPassword(ctx, user.FirebaseUID)
}
