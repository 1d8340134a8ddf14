package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func correlationApp() *fiber.App {
	app := fiber.New()
	app.Use(CorrelationID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(GetCorrelationID(c))
	})
	return app
}

func TestCorrelationIDReusesClientHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Correlation-ID", "review-42")

	resp, err := correlationApp().Test(req)
	require.NoError(t, err)
	require.Equal(t, "review-42", resp.Header.Get("X-Correlation-ID"))
}

func TestCorrelationIDFallsBackToRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-7")

	resp, err := correlationApp().Test(req)
	require.NoError(t, err)
	require.Equal(t, "req-7", resp.Header.Get("X-Correlation-ID"))
}

func TestCorrelationIDReplacesUnsafeValues(t *testing.T) {
	for _, raw := range []string{"", "has space", "<script>", strings.Repeat("a", 200)} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Correlation-ID", raw)

		resp, err := correlationApp().Test(req)
		require.NoError(t, err)

		_, err = uuid.Parse(resp.Header.Get("X-Correlation-ID"))
		require.NoError(t, err, "input %q", raw)
	}
}
