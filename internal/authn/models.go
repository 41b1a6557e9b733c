package authn

import (
	"strings"

	"github.com/salud-red/appointment-service/internal/store"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(r.Email) == "" {
		errs["email"] = "email is required"
	}
	if r.Password == "" {
		errs["password"] = "password is required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// TokenLoginRequest carries a client-obtained identity provider ID token.
type TokenLoginRequest struct {
	IDToken string `json:"id_token"`
}

// LoginResponse pairs the provider ID token with the application user
// profile. Federated logins return an empty token; the client already
// holds one.
type LoginResponse struct {
	Token string      `json:"token,omitempty"`
	User  *store.User `json:"user"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type VerifyResetTokenRequest struct {
	Token string `json:"token"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (r *ResetPasswordRequest) Validate() map[string]string {
	errs := map[string]string{}
	if r.Token == "" {
		errs["token"] = "token is required"
	}
	if len(r.Password) < 6 {
		errs["password"] = "password must be at least 6 characters"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (r *ChangePasswordRequest) Validate() map[string]string {
	errs := map[string]string{}
	if r.CurrentPassword == "" {
		errs["current_password"] = "current_password is required"
	}
	if len(r.NewPassword) < 6 {
		errs["new_password"] = "new_password must be at least 6 characters"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

type SetPasswordRequest struct {
	Password string `json:"password"`
}

func (r *SetPasswordRequest) Validate() map[string]string {
	if len(r.Password) < 6 {
		return map[string]string{"password": "password must be at least 6 characters"}
	}
	return nil
}
