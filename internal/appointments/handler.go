package appointments

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/salud-red/appointment-service/internal/activitylog"
	"github.com/salud-red/appointment-service/internal/auth"
	"github.com/salud-red/appointment-service/internal/pagination"
	"github.com/salud-red/appointment-service/internal/respond"
	"github.com/salud-red/appointment-service/internal/store"
)

type Handler struct {
	service ServiceInterface
	audit   activitylog.Logger
}

func NewHandler(service ServiceInterface, audit activitylog.Logger) *Handler {
	return &Handler{service: service, audit: audit}
}

func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if errs := req.Validate(); errs != nil {
		respond.ValidationError(w, "validation failed", errs)
		return
	}

	appt, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		log.Printf("Failed to create appointment: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to create appointment")
		return
	}

	h.audit.Log(r.Context(), actor.ID, "appointment.create", "created appointment "+appt.ID, r.RemoteAddr, r.UserAgent())
	respond.Success(w, http.StatusCreated, "appointment created", appt)
}

func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	params := pagination.ParseParams(r)
	filter := ListFilter{
		Status: r.URL.Query().Get("status"),
		Date:   r.URL.Query().Get("date"),
	}

	resp, err := h.service.List(r.Context(), actor, filter, params, r.URL.Path)
	if err != nil {
		log.Printf("Failed to list appointments: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to list appointments")
		return
	}

	respond.Page(w, "appointments retrieved", resp.Appointments, resp.Pagination)
}

func (h *Handler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	appt, err := h.service.Get(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err, "failed to get appointment")
		return
	}

	respond.Success(w, http.StatusOK, "appointment retrieved", appt)
}

func (h *Handler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	apptID := mux.Vars(r)["id"]

	var req UpdateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if errs := req.Validate(); errs != nil {
		respond.ValidationError(w, "validation failed", errs)
		return
	}

	appt, err := h.service.Update(r.Context(), actor, apptID, req)
	if err != nil {
		h.writeError(w, err, "failed to update appointment")
		return
	}

	h.audit.Log(r.Context(), actor.ID, "appointment.update", "updated appointment "+apptID, r.RemoteAddr, r.UserAgent())
	respond.Success(w, http.StatusOK, "appointment updated", appt)
}

func (h *Handler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	apptID := mux.Vars(r)["id"]

	appt, err := h.service.Cancel(r.Context(), actor, apptID)
	if err != nil {
		h.writeError(w, err, "failed to cancel appointment")
		return
	}

	h.audit.Log(r.Context(), actor.ID, "appointment.cancel", "cancelled appointment "+apptID, r.RemoteAddr, r.UserAgent())
	respond.Success(w, http.StatusOK, "appointment cancelled", appt)
}

// ApproveAppointment confirms a pending appointment. Health worker only.
func (h *Handler) ApproveAppointment(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, store.StatusConfirmed, "appointment.approve", "appointment confirmed")
}

// RejectAppointment declines a pending appointment. Health worker only.
func (h *Handler) RejectAppointment(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, store.StatusCancelled, "appointment.reject", "appointment rejected")
}

// CompleteAppointment marks a confirmed appointment as done. Health
// worker only.
func (h *Handler) CompleteAppointment(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, store.StatusCompleted, "appointment.complete", "appointment completed")
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, status, action, message string) {
	actor, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	apptID := mux.Vars(r)["id"]

	// The body is optional; an empty or absent one means no remarks.
	var req DecisionRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	appt, err := h.service.Decide(r.Context(), actor, apptID, status, req.Remarks)
	if err != nil {
		h.writeError(w, err, "failed to update appointment status")
		return
	}

	h.audit.Log(r.Context(), actor.ID, action, action+" "+apptID, r.RemoteAddr, r.UserAgent())
	respond.Success(w, http.StatusOK, message, appt)
}

func (h *Handler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch err {
	case ErrAppointmentNotFound:
		respond.Error(w, http.StatusNotFound, err.Error())
	case ErrNotOwner:
		respond.Error(w, http.StatusForbidden, err.Error())
	case ErrAlreadyFinal:
		respond.Error(w, http.StatusConflict, err.Error())
	default:
		log.Printf("%s: %v", fallback, err)
		respond.Error(w, http.StatusInternalServerError, fallback)
	}
}
