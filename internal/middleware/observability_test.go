package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sai-review-api/internal/observability"
)

func TestObservabilityCountsOnlyPrefixedRoutes(t *testing.T) {
	app := fiber.New()
	app.Use(Observability(zerolog.New(io.Discard), "/api/v2/review"))
	app.Get("/api/v2/review/statistics", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/api/v2/review/missing", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNotFound) })
	app.Get("/api/v1/health", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	observability.RegisterMetrics()
	before := counterValue(t, "review_requests_total", "/api/v2/review/statistics", "200")
	errorsBefore := counterValue(t, "review_errors_total", "/api/v2/review/missing", "404")

	for _, path := range []string{"/api/v2/review/statistics", "/api/v2/review/missing", "/api/v1/health"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		resp.Body.Close()
	}

	require.Equal(t, before+1, counterValue(t, "review_requests_total", "/api/v2/review/statistics", "200"))
	require.Equal(t, errorsBefore+1, counterValue(t, "review_errors_total", "/api/v2/review/missing", "404"))
	require.Zero(t, counterValue(t, "review_requests_total", "/api/v1/health", "200"))
}

func counterValue(t *testing.T, name, route, status string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := map[string]string{}
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			if labels["route"] == route && labels["status"] == status {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestLatencyBucket(t *testing.T) {
	require.Equal(t, "<=25ms", latencyBucket(10*time.Millisecond))
	require.Equal(t, "<=250ms", latencyBucket(200*time.Millisecond))
	require.Equal(t, ">500ms", latencyBucket(time.Second))
}
