package authn

import (
	"context"

	"github.com/salud-red/appointment-service/internal/store"
)

// ServiceInterface defines the contract for authentication business logic
// operations
type ServiceInterface interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	FederatedLogin(ctx context.Context, idToken, provider string) (*LoginResponse, error)
	Logout(ctx context.Context, user *store.User) error
	ForgotPassword(ctx context.Context, email string) error
	VerifyResetToken(ctx context.Context, rawToken string) (*store.PasswordResetToken, error)
	ResetPassword(ctx context.Context, rawToken, newPassword string) error
	ChangePassword(ctx context.Context, user *store.User, current, newPassword string) error
	SetPassword(ctx context.Context, user *store.User, newPassword string) error
	HasPassword(ctx context.Context, user *store.User) (bool, error)
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
