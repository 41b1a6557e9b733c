package identity

import "context"

// Gateway is the contract for the external identity provider. Every
// operation converts provider/transport failures into sentinel errors or
// tagged results; nothing below this boundary leaks to callers.
type Gateway interface {
	CreateUser(ctx context.Context, email, password, name string) (string, error)
	VerifyIDToken(tokenString string) (*TokenClaims, error)
	VerifyPassword(ctx context.Context, email, password string) (*SignInResult, error)
	RevokeTokens(ctx context.Context, uid string) error
	DeleteUser(ctx context.Context, uid string) error
	UpdateUser(ctx context.Context, uid string, props UserUpdate) error
	UserHasPassword(ctx context.Context, uid string) (bool, error)
	SendPush(ctx context.Context, tokens []string, title, body string, data map[string]string) PushOutcome
}

// Ensure Client implements Gateway
var _ Gateway = (*Client)(nil)
