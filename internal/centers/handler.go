package centers

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

func (h *Handler) CreateCenter(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req CreateHealthCenterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if errs := req.Validate(); errs != nil {
		respond.ValidationError(w, "validation failed", errs)
		return
	}

	center, err := h.service.CreateCenter(r.Context(), req)
	if err != nil {
		log.Printf("Failed to create health center: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to create health center")
		return
	}

	h.audit.Log(r.Context(), actor.ID, "center.create", "created health center "+center.ID, r.RemoteAddr, r.UserAgent())
	respond.Success(w, http.StatusCreated, "health center created", center)
}

func (h *Handler) ListCenters(w http.ResponseWriter, r *http.Request) {
	params := pagination.ParseParams(r)

	resp, err := h.service.ListCenters(r.Context(), params, r.URL.Path)
	if err != nil {
		log.Printf("Failed to list health centers: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to list health centers")
		return
	}

	respond.Page(w, "health centers retrieved", resp.HealthCenters, resp.Pagination)
}

func (h *Handler) GetCenter(w http.ResponseWriter, r *http.Request) {
	center, err := h.service.GetCenter(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if err == ErrCenterNotFound {
			respond.Error(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("Failed to get health center: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to get health center")
		return
	}

	respond.Success(w, http.StatusOK, "health center retrieved", center)
}

func (h *Handler) UpdateCenter(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	centerID := mux.Vars(r)["id"]

	var req UpdateHealthCenterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	center, err := h.service.UpdateCenter(r.Context(), centerID, req)
	if err != nil {
		log.Printf("Failed to update health center: %v", err)
		switch err {
		case ErrCenterNotFound:
			respond.Error(w, http.StatusNotFound, err.Error())
		default:
			respond.Error(w, http.StatusInternalServerError, "failed to update health center")
		}
		return
	}

	h.audit.Log(r.Context(), actor.ID, "center.update", "updated health center "+centerID, r.RemoteAddr, r.UserAgent())
	respond.Success(w, http.StatusOK, "health center updated", center)
}

func (h *Handler) DeleteCenter(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	centerID := mux.Vars(r)["id"]

	if err := h.service.DeleteCenter(r.Context(), centerID); err != nil {
		log.Printf("Failed to delete health center: %v", err)
		switch err {
		case ErrCenterNotFound:
			respond.Error(w, http.StatusNotFound, err.Error())
		default:
			respond.Error(w, http.StatusInternalServerError, "failed to delete health center")
		}
		return
	}

	h.audit.Log(r.Context(), actor.ID, "center.delete", "deleted health center "+centerID, r.RemoteAddr, r.UserAgent())
	respond.Success(w, http.StatusOK, "health center deleted", nil)
}

func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if errs := req.Validate(); errs != nil {
		respond.ValidationError(w, "validation failed", errs)
		return
	}

	svc, err := h.service.CreateService(r.Context(), req)
	if err != nil {
		log.Printf("Failed to create service: %v", err)
		switch err {
		case ErrCenterNotFound:
			respond.ValidationError(w, "validation failed", map[string]string{"health_center_id": err.Error()})
		default:
			respond.Error(w, http.StatusInternalServerError, "failed to create service")
		}
		return
	}

	h.audit.Log(r.Context(), actor.ID, "service.create", "created service "+svc.ID, r.RemoteAddr, r.UserAgent())
	respond.Success(w, http.StatusCreated, "service created", svc)
}

// ListServices lists all services, or the services of one health center
// when health_center_id is given.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.service.ListServices(r.Context(), r.URL.Query().Get("health_center_id"))
	if err != nil {
		log.Printf("Failed to list services: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to list services")
		return
	}

	respond.Success(w, http.StatusOK, "services retrieved", services)
}

func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	svc, err := h.service.GetService(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if err == ErrServiceNotFound {
			respond.Error(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("Failed to get service: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to get service")
		return
	}

	respond.Success(w, http.StatusOK, "service retrieved", svc)
}

func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	serviceID := mux.Vars(r)["id"]

	var req UpdateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	svc, err := h.service.UpdateService(r.Context(), serviceID, req)
	if err != nil {
		log.Printf("Failed to update service: %v", err)
		switch err {
		case ErrServiceNotFound:
			respond.Error(w, http.StatusNotFound, err.Error())
		default:
			respond.Error(w, http.StatusInternalServerError, "failed to update service")
		}
		return
	}

	h.audit.Log(r.Context(), actor.ID, "service.update", "updated service "+serviceID, r.RemoteAddr, r.UserAgent())
	respond.Success(w, http.StatusOK, "service updated", svc)
}

func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.FromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	serviceID := mux.Vars(r)["id"]

	if err := h.service.DeleteService(r.Context(), serviceID); err != nil {
		log.Printf("Failed to delete service: %v", err)
		switch err {
		case ErrServiceNotFound:
			respond.Error(w, http.StatusNotFound, err.Error())
		default:
			respond.Error(w, http.StatusInternalServerError, "failed to delete service")
		}
		return
	}

	h.audit.Log(r.Context(), actor.ID, "service.delete", "deleted service "+serviceID, r.RemoteAddr, r.UserAgent())
	respond.Success(w, http.StatusOK, "service deleted", nil)
}
