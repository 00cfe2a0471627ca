package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civitas-ai/opinionspace/internal/infrastructure/monitoring/logging"
	"github.com/civitas-ai/opinionspace/pkg/errors"
)

func TestLiveness(t *testing.T) {
	h := NewHealthHandler(nil, logging.NewNopLogger())

	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadinessAllUp(t *testing.T) {
	up := PingerFunc(func(ctx context.Context) error { return nil })
	h := NewHealthHandler(map[string]Pinger{"postgres": up, "redis": up}, logging.NewNopLogger())

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var status struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, map[string]string{"postgres": "up", "redis": "up"}, status.Components)
}

func TestReadinessComponentDown(t *testing.T) {
	h := NewHealthHandler(map[string]Pinger{
		"postgres": PingerFunc(func(ctx context.Context) error { return nil }),
		"redis": PingerFunc(func(ctx context.Context) error {
			return errors.New(errors.ErrCodeCacheError, "connection refused")
		}),
	}, logging.NewNopLogger())

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var status struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "up", status.Components["postgres"])
	assert.Equal(t, "down", status.Components["redis"])
}
