package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AzielCF/az-devocional/pkg/msgworker"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolStats_Uninitialized(t *testing.T) {
	app := fiber.New()
	app.Get("/api/worker-pool/stats", WorkerPoolStats(nil))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/worker-pool/stats", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestWorkerPoolStats_Initialized(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := msgworker.NewMessageWorkerPool(2, 10)
	pool.Start(ctx)
	t.Cleanup(func() {
		cancel()
		pool.Stop()
	})

	app := fiber.New()
	app.Get("/api/worker-pool/stats", WorkerPoolStats(pool))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/worker-pool/stats", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats msgworker.PoolStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 2, stats.NumWorkers)
	assert.Equal(t, 10, stats.QueueSize)
	assert.NotEmpty(t, stats.Started)
}

func TestMetricsEndpoint(t *testing.T) {
	app := fiber.New()
	InitRestMetrics(app)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
