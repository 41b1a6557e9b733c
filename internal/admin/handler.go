package admin

import (
	"log"
	"net/http"

	"github.com/salud-red/appointment-service/internal/pagination"
	"github.com/salud-red/appointment-service/internal/respond"
)

type Handler struct {
	service ServiceInterface
}

func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		log.Printf("Failed to aggregate stats: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to aggregate stats")
		return
	}

	respond.Success(w, http.StatusOK, "stats retrieved", stats)
}

func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	params := pagination.ParseParams(r)

	resp, err := h.service.Logs(r.Context(), r.URL.Query().Get("user_id"), params, r.URL.Path)
	if err != nil {
		log.Printf("Failed to list activity logs: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to list activity logs")
		return
	}

	respond.Page(w, "activity logs retrieved", resp.Logs, resp.Pagination)
}
