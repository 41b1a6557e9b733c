package notifications

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

// ListNotifications returns the authenticated user's notifications.
// `?unread=true` narrows to unread ones.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	params := pagination.ParseParams(r)
	unreadOnly := r.URL.Query().Get("unread") == "true"

	resp, err := h.service.ListForUser(r.Context(), user.ID, unreadOnly, params, r.URL.Path)
	if err != nil {
		log.Printf("Failed to list notifications: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}

	respond.Page(w, "notifications retrieved", resp.Notifications, resp.Pagination)
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	notif, err := h.service.MarkRead(r.Context(), user.ID, mux.Vars(r)["id"])
	if err != nil {
		switch err {
		case ErrNotificationNotFound:
			respond.Error(w, http.StatusNotFound, err.Error())
		case ErrNotOwner:
			respond.Error(w, http.StatusForbidden, err.Error())
		default:
			log.Printf("Failed to mark notification read: %v", err)
			respond.Error(w, http.StatusInternalServerError, "failed to mark notification read")
		}
		return
	}

	respond.Success(w, http.StatusOK, "notification marked as read", notif)
}

func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	updated, err := h.service.MarkAllRead(r.Context(), user.ID)
	if err != nil {
		log.Printf("Failed to mark notifications read: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to mark notifications read")
		return
	}

	respond.Success(w, http.StatusOK, "notifications marked as read", map[string]int{"updated": updated})
}

func (h *Handler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	if err := h.service.Delete(r.Context(), user.ID, mux.Vars(r)["id"]); err != nil {
		switch err {
		case ErrNotificationNotFound:
			respond.Error(w, http.StatusNotFound, err.Error())
		case ErrNotOwner:
			respond.Error(w, http.StatusForbidden, err.Error())
		default:
			log.Printf("Failed to delete notification: %v", err)
			respond.Error(w, http.StatusInternalServerError, "failed to delete notification")
		}
		return
	}

	respond.Success(w, http.StatusOK, "notification deleted", nil)
}

// Broadcast creates a notification for one user or all active users.
// Admin only.
func (h *Handler) Broadcast(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req BroadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if errs := req.Validate(); errs != nil {
		respond.ValidationError(w, "validation failed", errs)
		return
	}

	sent, err := h.service.Broadcast(r.Context(), req)
	if err != nil {
		log.Printf("Failed to broadcast notification: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to broadcast notification")
		return
	}

	h.audit.Log(r.Context(), actor.ID, "notification.broadcast", "broadcast notification to users", r.RemoteAddr, r.UserAgent())
	respond.Success(w, http.StatusCreated, "notification sent", map[string]int{"sent": sent})
}

func (h *Handler) RegisterDeviceToken(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req RegisterDeviceTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if errs := req.Validate(); errs != nil {
		respond.ValidationError(w, "validation failed", errs)
		return
	}

	token, err := h.service.RegisterDeviceToken(r.Context(), user.ID, req)
	if err != nil {
		log.Printf("Failed to register device token: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to register device token")
		return
	}

	respond.Success(w, http.StatusCreated, "device token registered", token)
}

func (h *Handler) ListDeviceTokens(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	tokens, err := h.service.ListDeviceTokens(r.Context(), user.ID)
	if err != nil {
		log.Printf("Failed to list device tokens: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to list device tokens")
		return
	}

	respond.Success(w, http.StatusOK, "device tokens retrieved", tokens)
}

func (h *Handler) DeleteDeviceToken(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	if err := h.service.DeleteDeviceToken(r.Context(), user.ID, mux.Vars(r)["id"]); err != nil {
		switch err {
		case ErrDeviceTokenNotFound:
			respond.Error(w, http.StatusNotFound, err.Error())
		case ErrNotOwner:
			respond.Error(w, http.StatusForbidden, err.Error())
		default:
			log.Printf("Failed to delete device token: %v", err)
			respond.Error(w, http.StatusInternalServerError, "failed to delete device token")
		}
		return
	}

	respond.Success(w, http.StatusOK, "device token deleted", nil)
}
