package authn

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/salud-red/appointment-service/internal/activitylog"
	"github.com/salud-red/appointment-service/internal/auth"
	"github.com/salud-red/appointment-service/internal/respond"
	"github.com/salud-red/appointment-service/internal/store"
	"github.com/salud-red/appointment-service/internal/users"
)

// ProfileUpdater is the slice of the users service the profile endpoints
// need.
type ProfileUpdater interface {
	UpdateProfile(ctx context.Context, user *store.User, req users.UpdateUserRequest) (*store.User, error)
}

type Handler struct {
	service  ServiceInterface
	profiles ProfileUpdater
	audit    activitylog.Logger
}

func NewHandler(service ServiceInterface, profiles ProfileUpdater, audit activitylog.Logger) *Handler {
	return &Handler{service: service, profiles: profiles, audit: audit}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if errs := req.Validate(); errs != nil {
		respond.ValidationError(w, "validation failed", errs)
		return
	}

	resp, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch err {
		case ErrInvalidCredentials:
			respond.Error(w, http.StatusUnauthorized, err.Error())
		case ErrUserNotFound:
			respond.Error(w, http.StatusNotFound, err.Error())
		case ErrAccountDisabled:
			respond.Error(w, http.StatusForbidden, err.Error())
		default:
			log.Printf("Login failed: %v", err)
			respond.Error(w, http.StatusInternalServerError, "login failed")
		}
		return
	}

	h.audit.Log(r.Context(), resp.User.ID, "auth.login", "logged in", r.RemoteAddr, r.UserAgent())
	respond.Success(w, http.StatusOK, "login successful", resp)
}

// FirebaseLogin exchanges a verified provider ID token for the application
// user profile, provisioning it on first sight.
func (h *Handler) FirebaseLogin(w http.ResponseWriter, r *http.Request) {
	h.tokenLogin(w, r, "firebase")
}

// GoogleLogin is FirebaseLogin for Google-signed tokens; the provider is
// recorded on the provisioned user.
func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	h.tokenLogin(w, r, "google")
}

func (h *Handler) tokenLogin(w http.ResponseWriter, r *http.Request, provider string) {
	var req TokenLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.IDToken == "" {
		respond.ValidationError(w, "validation failed", map[string]string{"id_token": "id_token is required"})
		return
	}

	resp, err := h.service.FederatedLogin(r.Context(), req.IDToken, provider)
	if err != nil {
		switch err {
		case ErrInvalidCredentials:
			respond.Error(w, http.StatusUnauthorized, "invalid or expired token")
		case ErrAccountDisabled:
			respond.Error(w, http.StatusForbidden, err.Error())
		default:
			log.Printf("Token login failed: %v", err)
			respond.Error(w, http.StatusInternalServerError, "login failed")
		}
		return
	}

	h.audit.Log(r.Context(), resp.User.ID, "auth.login", "logged in via "+provider, r.RemoteAddr, r.UserAgent())
	respond.Success(w, http.StatusOK, "login successful", resp)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	if err := h.service.Logout(r.Context(), user); err != nil {
		log.Printf("Logout failed: %v", err)
		respond.Error(w, http.StatusInternalServerError, "logout failed")
		return
	}

	h.audit.Log(r.Context(), user.ID, "auth.logout", "logged out", r.RemoteAddr, r.UserAgent())
	respond.Success(w, http.StatusOK, "logged out", nil)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	respond.Success(w, http.StatusOK, "profile retrieved", user)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req users.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.profiles.UpdateProfile(r.Context(), user, req)
	if err != nil {
		log.Printf("Failed to update profile: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	h.audit.Log(r.Context(), user.ID, "auth.profile_update", "updated own profile", r.RemoteAddr, r.UserAgent())
	respond.Success(w, http.StatusOK, "profile updated", updated)
}

// ForgotPassword always answers 200 so the endpoint cannot be used to
// probe which emails are registered.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		respond.ValidationError(w, "validation failed", map[string]string{"email": "email is required"})
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		log.Printf("Failed to issue reset token: %v", err)
	}

	respond.Success(w, http.StatusOK, "if the email is registered, a reset link has been sent", nil)
}

func (h *Handler) VerifyResetToken(w http.ResponseWriter, r *http.Request) {
	var req VerifyResetTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.service.VerifyResetToken(r.Context(), req.Token); err != nil {
		if err == ErrInvalidResetToken {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("Failed to verify reset token: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to verify reset token")
		return
	}

	respond.Success(w, http.StatusOK, "reset token is valid", nil)
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if errs := req.Validate(); errs != nil {
		respond.ValidationError(w, "validation failed", errs)
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		switch err {
		case ErrInvalidResetToken:
			respond.Error(w, http.StatusBadRequest, err.Error())
		case ErrUserNotFound:
			respond.Error(w, http.StatusNotFound, err.Error())
		default:
			log.Printf("Failed to reset password: %v", err)
			respond.Error(w, http.StatusInternalServerError, "failed to reset password")
		}
		return
	}

	respond.Success(w, http.StatusOK, "password has been reset", nil)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if errs := req.Validate(); errs != nil {
		respond.ValidationError(w, "validation failed", errs)
		return
	}

	if err := h.service.ChangePassword(r.Context(), user, req.CurrentPassword, req.NewPassword); err != nil {
		switch err {
		case ErrInvalidCredentials:
			respond.Error(w, http.StatusUnauthorized, err.Error())
		default:
			log.Printf("Failed to change password: %v", err)
			respond.Error(w, http.StatusInternalServerError, "failed to change password")
		}
		return
	}

	h.audit.Log(r.Context(), user.ID, "auth.password_change", "changed password", r.RemoteAddr, r.UserAgent())
	respond.Success(w, http.StatusOK, "password changed", nil)
}

// SetPassword attaches a password to a federated-only account.
func (h *Handler) SetPassword(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req SetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if errs := req.Validate(); errs != nil {
		respond.ValidationError(w, "validation failed", errs)
		return
	}

	if err := h.service.SetPassword(r.Context(), user, req.Password); err != nil {
		switch err {
		case ErrPasswordAlreadySet:
			respond.Error(w, http.StatusConflict, err.Error())
		default:
			log.Printf("Failed to set password: %v", err)
			respond.Error(w, http.StatusInternalServerError, "failed to set password")
		}
		return
	}

	h.audit.Log(r.Context(), user.ID, "auth.password_set", "set account password", r.RemoteAddr, r.UserAgent())
	respond.Success(w, http.StatusOK, "password set", nil)
}

func (h *Handler) HasPassword(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	has, err := h.service.HasPassword(r.Context(), user)
	if err != nil {
		log.Printf("Failed to inspect sign-in providers: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to check password state")
		return
	}

	respond.Success(w, http.StatusOK, "password state retrieved", map[string]bool{"has_password": has})
}
