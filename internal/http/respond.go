package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/hemen47/coolgards-front-sub000/internal/pricing"
	"github.com/hemen47/coolgards-front-sub000/internal/session"
)

const maxRequestBodySize = 1 << 20

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// responder writes JSON responses for the handlers and logs what cannot be
// written.
type responder struct {
	logger *zap.Logger
}

func (rs responder) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		rs.logger.Warn("failed to encode response", zap.Int("status", status), zap.Error(err))
	}
}

func (rs responder) respondError(w http.ResponseWriter, status int, code, message string) {
	rs.respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func (rs responder) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		rs.respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid JSON body",
			Code:    "invalid_request",
			Details: err.Error(),
		})
		return false
	}
	return true
}

func (rs responder) handleSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrInvalidSessionID):
		rs.respondError(w, http.StatusBadRequest, "invalid_session_id", err.Error())
	case errors.Is(err, session.ErrClosed):
		rs.respondError(w, http.StatusServiceUnavailable, "service_unavailable", "service is shutting down")
	default:
		rs.respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// loadSession loads the caller's session, writing the error response on failure.
func (rs responder) loadSession(ctx context.Context, w http.ResponseWriter, r *http.Request, sessions Sessions) (*session.Session, bool) {
	s, err := sessions.Get(ctx, getSessionID(r.Context()))
	if err != nil {
		rs.handleSessionError(w, err)
		return nil, false
	}
	return s, true
}

func (rs responder) handlePricingError(w http.ResponseWriter, err error) {
	var apiErr *pricing.APIError
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		rs.respondError(w, http.StatusServiceUnavailable, "service_unavailable", "pricing service unavailable")
	case errors.As(err, &apiErr):
		rs.respondJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:   pricing.UserMessage(err, "pricing service error"),
			Code:    "pricing_error",
			Details: apiErr.Error(),
		})
	case errors.Is(err, pricing.ErrMalformedResponse):
		rs.respondError(w, http.StatusBadGateway, "pricing_error", "unexpected response from pricing service")
	default:
		rs.respondError(w, http.StatusBadGateway, "pricing_unavailable", "pricing service unreachable")
	}
}
