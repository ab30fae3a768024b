package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hemen47/coolgards-front-sub000/internal/session"
)

func TestRespondJSON_LogsEncodeFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	rs := responder{logger: zap.New(core)}
	rec := httptest.NewRecorder()

	rs.respondJSON(rec, http.StatusOK, map[string]any{"bad": make(chan int)})

	assert.Equal(t, http.StatusOK, rec.Code)
	entries := logs.FilterMessage("failed to encode response").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(http.StatusOK), entries[0].ContextMap()["status"])
}

func TestHandleSessionError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "invalid id", err: session.ErrInvalidSessionID, wantStatus: http.StatusBadRequest, wantCode: "invalid_session_id"},
		{name: "closed", err: session.ErrClosed, wantStatus: http.StatusServiceUnavailable, wantCode: "service_unavailable"},
		{name: "other", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.WarnLevel)
			rs := responder{logger: zap.New(core)}
			rec := httptest.NewRecorder()

			rs.handleSessionError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decode[ErrorResponse](t, rec).Code)
			assert.Zero(t, logs.Len())
		})
	}
}
