package http

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hemen47/coolgards-front-sub000/internal/domain"
)

// ShipmentLister lists the plans the pricing API offers.
type ShipmentLister interface {
	ListShipments(ctx context.Context) ([]domain.ShipmentPlan, error)
}

type ShipmentHandler struct {
	responder
	lister  ShipmentLister
	timeout time.Duration
}

func NewShipmentHandler(lister ShipmentLister, timeout time.Duration, logger *zap.Logger) *ShipmentHandler {
	return &ShipmentHandler{
		responder: responder{logger: logger},
		lister:    lister,
		timeout:   timeout,
	}
}

// GET /api/v1/shipments
func (h *ShipmentHandler) ListShipments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	plans, err := h.lister.ListShipments(ctx)
	if err != nil {
		h.handlePricingError(w, err)
		return
	}
	if plans == nil {
		plans = []domain.ShipmentPlan{}
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"shipments": plans})
}
