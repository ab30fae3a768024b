package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hemen47/coolgards-front-sub000/internal/domain"
	"github.com/hemen47/coolgards-front-sub000/internal/session"
)

const maxQuantity = 99

// Sessions resolves shopper sessions.
type Sessions interface {
	Get(ctx context.Context, id string) (*session.Session, error)
	OrderPlaced(ctx context.Context, id string) error
}

type CartHandler struct {
	responder
	sessions Sessions
	timeout  time.Duration
}

func NewCartHandler(sessions Sessions, timeout time.Duration, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		responder: responder{logger: logger},
		sessions:  sessions,
		timeout:   timeout,
	}
}

type AddItemRequestDTO struct {
	Product  domain.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

type SelectShipmentRequestDTO struct {
	ShipmentPlan string `json:"shipment_plan"`
}

// CartResponseDTO is the cart page model. Items is the list the page
// renders: the pricing API's rendition of the cart, carrying server-owned
// prices and line totals, once the summary is ready; the local cart while a
// refresh is pending or has failed, in which case Stale or Error say so.
type CartResponseDTO struct {
	SessionID    string               `json:"session_id"`
	Items        []domain.LineItem    `json:"items"`
	ShipmentPlan string               `json:"shipment_plan"`
	State        string               `json:"state"`
	Stale        bool                 `json:"stale"`
	Ready        bool                 `json:"ready"`
	Summary      *domain.OrderSummary `json:"summary,omitempty"`
	Error        string               `json:"error,omitempty"`
}

func cartResponse(s *session.Session, local []domain.LineItem) CartResponseDTO {
	view := s.Summary.View()
	items := local
	if view.Ready() {
		items = view.Cart
	}
	if items == nil {
		items = []domain.LineItem{}
	}
	return CartResponseDTO{
		SessionID:    s.ID,
		Items:        items,
		ShipmentPlan: s.Summary.ShipmentPlan(),
		State:        view.State.String(),
		Stale:        view.Stale(),
		Ready:        view.Ready(),
		Summary:      view.Summary,
		Error:        view.Err,
	}
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, ok := h.loadSession(ctx, w, r, h.sessions)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, cartResponse(s, s.Cart.Items()))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if !h.decodeBody(w, r, &req) {
		return
	}

	if req.Product.ID == "" {
		h.respondError(w, http.StatusBadRequest, "invalid_product_id", "product.id is required")
		return
	}
	// zero means "use the default of one"
	if req.Quantity < 0 || req.Quantity > maxQuantity {
		h.respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	s, ok := h.loadSession(ctx, w, r, h.sessions)
	if !ok {
		return
	}

	items := s.Cart.AddItem(req.Product, req.Quantity)
	s.Notify.Success("Added to cart")
	h.respondJSON(w, http.StatusCreated, cartResponse(s, items))
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		h.respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	s, ok := h.loadSession(ctx, w, r, h.sessions)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, cartResponse(s, s.Cart.RemoveItem(productID)))
}

// POST /api/v1/cart/items/{product_id}/decrement
func (h *CartHandler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		h.respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	s, ok := h.loadSession(ctx, w, r, h.sessions)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, cartResponse(s, s.Cart.DecrementItem(productID)))
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, ok := h.loadSession(ctx, w, r, h.sessions)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, cartResponse(s, s.Cart.Clear()))
}

// PUT /api/v1/cart/shipment
func (h *CartHandler) SelectShipment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SelectShipmentRequestDTO
	if !h.decodeBody(w, r, &req) {
		return
	}
	if req.ShipmentPlan == "" {
		h.respondError(w, http.StatusBadRequest, "invalid_shipment_plan", "shipment_plan is required")
		return
	}

	s, ok := h.loadSession(ctx, w, r, h.sessions)
	if !ok {
		return
	}
	s.Summary.SelectShipment(req.ShipmentPlan)
	h.respondJSON(w, http.StatusOK, cartResponse(s, s.Cart.Items()))
}
