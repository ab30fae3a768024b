package summary

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/hemen47/coolgards-front-sub000/internal/domain"
	"github.com/hemen47/coolgards-front-sub000/internal/pricing"
)

// slowPricingAPI answers POST /cart after latency, giving up early when the
// caller cancels.
func slowPricingAPI(t *testing.T, latency time.Duration) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req domain.PriceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		select {
		case <-time.After(latency):
		case <-r.Context().Done():
			return
		}
		total := fmt.Sprintf("%d", 10*domain.TotalQuantity(req.Cart))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(quoteFor(req.Cart, total))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRefresher_RapidEditsWithPricingClient(t *testing.T) {
	srv := slowPricingAPI(t, 150*time.Millisecond)
	client := pricing.NewClient(pricing.Config{
		BaseURL:          srv.URL,
		Timeout:          2 * time.Second,
		FailureThreshold: 3,
		OpenTimeout:      time.Minute,
	}, zaptest.NewLogger(t))
	r, banner := newTestRefresher(t, client, Options{ShipmentPlan: "se"})

	var cart []domain.LineItem
	for i := range 6 {
		cart = append(cart, item(fmt.Sprintf("p%d", i), 1))
		r.CartChanged(cart)
		time.Sleep(20 * time.Millisecond)
	}
	r.Wait()

	view := r.View()
	require.Equal(t, StateDisplayed, view.State, "error: %s", view.Err)
	assert.Equal(t, uint64(6), view.Seq)
	assert.Len(t, view.Cart, 6)
	assert.Equal(t, 6, view.Summary.TotalItems)

	// superseded calls must not have tripped the shared breaker
	cart = append(cart, item("p6", 1))
	r.CartChanged(cart)
	r.Wait()

	view = r.View()
	require.Equal(t, StateDisplayed, view.State, "error: %s", view.Err)
	assert.Equal(t, 7, view.Summary.TotalItems)
	assert.Empty(t, banner.List())
}

func TestRefresher_ServerMessageFromPricingClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"Shipment plan is not available"}`))
	}))
	t.Cleanup(srv.Close)
	client := pricing.NewClient(pricing.Config{BaseURL: srv.URL, Timeout: time.Second}, zaptest.NewLogger(t))
	r, banner := newTestRefresher(t, client, Options{})

	r.CartChanged([]domain.LineItem{item("p1", 1)})
	r.Wait()

	assert.Equal(t, StateIdle, r.View().State)
	assert.Equal(t, []string{"Shipment plan is not available"}, errorAlerts(banner))
}
