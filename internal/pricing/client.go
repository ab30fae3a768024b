package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/hemen47/coolgards-front-sub000/internal/domain"
)

const maxResponseBodySize = 4 << 20 // 4MB

type Config struct {
	BaseURL          string
	Timeout          time.Duration
	FailureThreshold uint32        // consecutive failures before the breaker opens
	OpenTimeout      time.Duration // how long the breaker stays open
}

// Client talks to the external storefront API that owns prices, VAT and
// shipment plans. It never retries; the caller decides what a failure means.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
	logger     *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "pricing-api",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: breaker,
		logger:  logger,
	}
}

// PriceCart asks the API for the authoritative totals of items shipped with
// the given plan. An empty cart is a valid request.
func (c *Client) PriceCart(ctx context.Context, items []domain.LineItem, shipmentPlanID string) (*domain.Quote, error) {
	if items == nil {
		items = []domain.LineItem{}
	}
	body, err := c.do(ctx, http.MethodPost, "/cart", domain.PriceRequest{
		Cart:         items,
		ShipmentPlan: shipmentPlanID,
	})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Cart      []domain.LineItem    `json:"cart"`
		OrderInfo *domain.OrderSummary `json:"orderInfo"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if resp.OrderInfo == nil {
		return nil, fmt.Errorf("%w: missing orderInfo", ErrMalformedResponse)
	}
	if resp.Cart == nil {
		resp.Cart = []domain.LineItem{}
	}

	return &domain.Quote{Cart: resp.Cart, OrderInfo: *resp.OrderInfo}, nil
}

// ListShipments returns the selectable shipment plans. The API may answer
// with a bare array or wrap it as {"shipments": [...]}.
func (c *Client) ListShipments(ctx context.Context) ([]domain.ShipmentPlan, error) {
	body, err := c.do(ctx, http.MethodGet, "/shipments", nil)
	if err != nil {
		return nil, err
	}

	var plans []domain.ShipmentPlan
	if err := json.Unmarshal(body, &plans); err == nil {
		return plans, nil
	}

	var wrapped struct {
		Shipments []domain.ShipmentPlan `json:"shipments"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return wrapped.Shipments, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		var reqBody io.Reader
		if payload != nil {
			data, err := json.Marshal(payload)
			if err != nil {
				return nil, fmt.Errorf("marshal request failed: %w", err)
			}
			reqBody = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
		if err != nil {
			return nil, fmt.Errorf("build request failed: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s %s failed: %w", method, path, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
		if err != nil {
			return nil, fmt.Errorf("read response failed: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
		}
		return body, nil
	})
}

// isSuccessful decides what the breaker counts as a failure. A 4xx answer
// means the API is up, and a call canceled by its caller (a superseded
// refresh) says nothing about the API's health.
func isSuccessful(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError
}

// errorMessage extracts a human readable message from an error body.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
