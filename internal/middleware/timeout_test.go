package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestTimeout(t *testing.T) {
	tests := []struct {
		name         string
		timeout      time.Duration
		wantDeadline bool
	}{
		{"Deadline applied", 50 * time.Millisecond, true},
		{"Zero disables", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(RequestTimeout(tt.timeout))
			app.Get("/", func(c *fiber.Ctx) error {
				_, ok := c.UserContext().Deadline()
				if ok {
					return c.SendString("deadline")
				}
				return c.SendString("none")
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			buf := make([]byte, 16)
			n, _ := resp.Body.Read(buf)
			if tt.wantDeadline {
				assert.Equal(t, "deadline", string(buf[:n]))
			} else {
				assert.Equal(t, "none", string(buf[:n]))
			}
		})
	}
}

func TestRequestTimeout_Expires(t *testing.T) {
	app := fiber.New()
	app.Use(RequestTimeout(10 * time.Millisecond))
	app.Get("/slow", func(c *fiber.Ctx) error {
		select {
		case <-c.UserContext().Done():
			return c.SendStatus(fiber.StatusServiceUnavailable)
		case <-time.After(time.Second):
			return c.SendStatus(fiber.StatusOK)
		}
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/slow", nil), 2000)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
