package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hemen47/coolgards-front-sub000/internal/alert"
)

type AlertHandler struct {
	responder
	sessions Sessions
	timeout  time.Duration
}

func NewAlertHandler(sessions Sessions, timeout time.Duration, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{
		responder: responder{logger: logger},
		sessions:  sessions,
		timeout:   timeout,
	}
}

// GET /api/v1/alerts
func (h *AlertHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, ok := h.loadSession(ctx, w, r, h.sessions)
	if !ok {
		return
	}
	alerts := s.Alerts.List()
	if alerts == nil {
		alerts = []alert.Alert{}
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

// DELETE /api/v1/alerts
func (h *AlertHandler) DismissAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, ok := h.loadSession(ctx, w, r, h.sessions)
	if !ok {
		return
	}
	s.Alerts.DismissAll()
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/v1/alerts/{alert_id}
func (h *AlertHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	alertID, err := strconv.ParseUint(chi.URLParam(r, "alert_id"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_alert_id", "alert_id must be a positive integer")
		return
	}

	s, ok := h.loadSession(ctx, w, r, h.sessions)
	if !ok {
		return
	}
	if !s.Alerts.Dismiss(alertID) {
		h.respondError(w, http.StatusNotFound, "not_found", "alert not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
