package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	RequestTimeout time.Duration
}

// NewRouter wires the storefront cart API.
func NewRouter(sessions Sessions, shipments ShipmentLister, cfg RouterConfig, logger *zap.Logger) http.Handler {
	cartHandler := NewCartHandler(sessions, cfg.RequestTimeout, logger)
	checkoutHandler := NewCheckoutHandler(sessions, cfg.RequestTimeout, logger)
	shipmentHandler := NewShipmentHandler(shipments, cfg.RequestTimeout, logger)
	alertHandler := NewAlertHandler(sessions, cfg.RequestTimeout, logger)

	rs := responder{logger: logger}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		rs.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/shipments", shipmentHandler.ListShipments)

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(logger))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)
				r.Post("/items", cartHandler.AddItem)
				r.Delete("/items/{product_id}", cartHandler.RemoveItem)
				r.Post("/items/{product_id}/decrement", cartHandler.DecrementItem)
				r.Put("/shipment", cartHandler.SelectShipment)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/", checkoutHandler.InitiateCheckout)
				r.Post("/complete", checkoutHandler.CompleteCheckout)
			})

			r.Route("/alerts", func(r chi.Router) {
				r.Get("/", alertHandler.ListAlerts)
				r.Delete("/", alertHandler.DismissAll)
				r.Delete("/{alert_id}", alertHandler.Dismiss)
			})
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}
