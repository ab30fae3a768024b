package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hemen47/coolgards-front-sub000/internal/domain"
	"github.com/hemen47/coolgards-front-sub000/internal/session"
)

type CheckoutHandler struct {
	responder
	sessions Sessions
	timeout  time.Duration
}

func NewCheckoutHandler(sessions Sessions, timeout time.Duration, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		responder: responder{logger: logger},
		sessions:  sessions,
		timeout:   timeout,
	}
}

type CheckoutResponseDTO struct {
	SessionID    string              `json:"session_id"`
	ShipmentPlan string              `json:"shipment_plan"`
	Items        []domain.LineItem   `json:"items"`
	Summary      domain.OrderSummary `json:"summary"`
}

// POST /api/v1/checkout
//
// Returns the priced cart the payment step charges for. Refused while the
// summary is loading, stale or missing.
func (h *CheckoutHandler) InitiateCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, ok := h.loadSession(ctx, w, r, h.sessions)
	if !ok {
		return
	}

	view, err := s.Checkout()
	if errors.Is(err, session.ErrSummaryNotReady) {
		h.respondJSON(w, http.StatusConflict, ErrorResponse{
			Error:   "order summary is not up to date",
			Code:    "summary_not_ready",
			Details: view.State.String(),
		})
		return
	}
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	items := view.Cart
	if items == nil {
		items = []domain.LineItem{}
	}
	h.respondJSON(w, http.StatusOK, CheckoutResponseDTO{
		SessionID:    s.ID,
		ShipmentPlan: view.ShipmentPlan,
		Items:        items,
		Summary:      *view.Summary,
	})
}

// POST /api/v1/checkout/complete
func (h *CheckoutHandler) CompleteCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if err := h.sessions.OrderPlaced(ctx, sessionID); err != nil {
		h.handleSessionError(w, err)
		return
	}

	s, ok := h.loadSession(ctx, w, r, h.sessions)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, cartResponse(s, s.Cart.Items()))
}
