package authn

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/salud-red/appointment-service/internal/identity"
	"github.com/salud-red/appointment-service/internal/mailer"
	"github.com/salud-red/appointment-service/internal/store"
)

// resetTokenTTL bounds how long a reset link stays usable.
const resetTokenTTL = 60 * time.Minute

// ForgotPassword issues a reset token and mails the raw token link. The
// outcome is identical whether or not the email is registered, so the
// endpoint cannot be used to probe for accounts. Any previous token for
// the email is deleted first; only the newest link works. The delete and
// insert are separate writes, so two concurrent requests can briefly
// leave two live tokens.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.records.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	rawToken := hex.EncodeToString(raw)
	hash := sha256.Sum256([]byte(rawToken))

	stale := s.records.S.QueryCollection(ctx, store.CollectionPasswordResets, []store.Condition{
		{Field: "email", Op: "==", Value: email},
	})
	for _, doc := range stale {
		if id, ok := doc["id"].(string); ok {
			s.records.S.Delete(ctx, store.CollectionPasswordResets, id)
		}
	}

	token := &store.PasswordResetToken{
		ID:        uuid.New().String(),
		Email:     email,
		TokenHash: hex.EncodeToString(hash[:]),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(resetTokenTTL).Format(store.TimestampFormat),
		Used:      false,
	}

	doc := token.ToMap()
	delete(doc, "created_at")

	if _, err := s.records.S.Create(ctx, store.CollectionPasswordResets, doc, token.ID); err != nil {
		return ErrStoreFailure
	}

	if s.mail != nil {
		resetURL := s.baseURL + "/reset-password?token=" + rawToken
		body := mailer.ResetEmailBody(user.Name, resetURL)
		if err := s.mail.Send(user.Email, "Reset your password", body); err != nil {
			log.Printf("Warning: failed to send reset email to %s: %v", user.Email, err)
		}
	}

	log.Printf("Issued password reset token for user %s", user.ID)
	return nil
}

// VerifyResetToken checks a raw token without consuming it, so a reset
// form can validate the link before asking for the new password.
func (s *Service) VerifyResetToken(ctx context.Context, rawToken string) (*store.PasswordResetToken, error) {
	if rawToken == "" {
		return nil, ErrInvalidResetToken
	}

	hash := sha256.Sum256([]byte(rawToken))
	doc, err := s.records.S.FindByField(ctx, store.CollectionPasswordResets, "token_hash", hex.EncodeToString(hash[:]))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrInvalidResetToken
	}

	id, _ := doc["id"].(string)
	token := store.PasswordResetTokenFromMap(id, doc)
	if token.Used {
		return nil, ErrInvalidResetToken
	}

	expires, err := time.Parse(store.TimestampFormat, token.ExpiresAt)
	if err != nil || time.Now().After(expires) {
		return nil, ErrInvalidResetToken
	}

	return token, nil
}

// ResetPassword verifies the token, sets the new password at the identity
// provider, and only then marks the token used. A provider failure leaves
// the token reusable.
func (s *Service) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	token, err := s.VerifyResetToken(ctx, rawToken)
	if err != nil {
		return err
	}

	user, err := s.records.GetUser(ctx, token.UserID)
	if err != nil {
		return err
	}
	if user == nil || user.FirebaseUID == "" {
		return ErrUserNotFound
	}

	password := newPassword
	if err := s.gateway.UpdateUser(ctx, user.FirebaseUID, identity.UserUpdate{Password: &password}); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if !s.records.S.Update(ctx, store.CollectionPasswordResets, token.ID, map[string]interface{}{"used": true}) {
		log.Printf("Warning: failed to mark reset token %s as used", token.ID)
	}

	_ = s.gateway.RevokeTokens(ctx, user.FirebaseUID)

	log.Printf("Password reset completed for user %s", user.ID)
	return nil
}
