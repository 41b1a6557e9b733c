package users

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/salud-red/appointment-service/internal/activitylog"
	"github.com/salud-red/appointment-service/internal/auth"
	"github.com/salud-red/appointment-service/internal/pagination"
	"github.com/salud-red/appointment-service/internal/respond"
)

type Handler struct {
	service ServiceInterface
	audit   activitylog.Logger
}

func NewHandler(service ServiceInterface, audit activitylog.Logger) *Handler {
	return &Handler{service: service, audit: audit}
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if errs := req.Validate(); errs != nil {
		respond.ValidationError(w, "validation failed", errs)
		return
	}

	user, err := h.service.CreateUser(r.Context(), req)
	if err != nil {
		log.Printf("Failed to create user: %v", err)
		switch err {
		case ErrEmailExists:
			respond.ValidationError(w, "validation failed", map[string]string{"email": err.Error()})
		case ErrInvalidRole:
			respond.ValidationError(w, "validation failed", map[string]string{"role": err.Error()})
		default:
			respond.Error(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}

	h.audit.Log(r.Context(), actor.ID, "user.create", "created user "+user.ID, r.RemoteAddr, r.UserAgent())
	respond.Success(w, http.StatusCreated, "user created", user)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := pagination.ParseParams(r)
	role := r.URL.Query().Get("role")

	resp, err := h.service.ListUsers(r.Context(), role, params, r.URL.Path)
	if err != nil {
		log.Printf("Failed to list users: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	respond.Page(w, "users retrieved", resp.Users, resp.Pagination)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		if err == ErrUserNotFound {
			respond.Error(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("Failed to get user: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to get user")
		return
	}

	respond.Success(w, http.StatusOK, "user retrieved", user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	userID := mux.Vars(r)["id"]

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.service.UpdateUser(r.Context(), userID, req)
	if err != nil {
		log.Printf("Failed to update user: %v", err)
		switch err {
		case ErrUserNotFound:
			respond.Error(w, http.StatusNotFound, err.Error())
		default:
			respond.Error(w, http.StatusInternalServerError, "failed to update user")
		}
		return
	}

	h.audit.Log(r.Context(), actor.ID, "user.update", "updated user "+userID, r.RemoteAddr, r.UserAgent())
	respond.Success(w, http.StatusOK, "user updated", user)
}

func (h *Handler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false, "user.deactivate")
}

func (h *Handler) ActivateUser(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true, "user.activate")
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request, active bool, action string) {
	actor, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	userID := mux.Vars(r)["id"]

	user, err := h.service.SetActive(r.Context(), userID, active)
	if err != nil {
		log.Printf("Failed to change user state: %v", err)
		switch err {
		case ErrUserNotFound:
			respond.Error(w, http.StatusNotFound, err.Error())
		default:
			respond.Error(w, http.StatusInternalServerError, "failed to change user state")
		}
		return
	}

	h.audit.Log(r.Context(), actor.ID, action, action+" "+userID, r.RemoteAddr, r.UserAgent())
	respond.Success(w, http.StatusOK, "user updated", user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	userID := mux.Vars(r)["id"]

	if err := h.service.DeleteUser(r.Context(), userID); err != nil {
		log.Printf("Failed to delete user: %v", err)
		switch err {
		case ErrUserNotFound:
			respond.Error(w, http.StatusNotFound, err.Error())
		default:
			respond.Error(w, http.StatusInternalServerError, "failed to delete user")
		}
		return
	}

	h.audit.Log(r.Context(), actor.ID, "user.delete", "deleted user "+userID, r.RemoteAddr, r.UserAgent())
	respond.Success(w, http.StatusOK, "user deleted", nil)
}
