package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sibarkumen/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func serveSystem(t *testing.T, handle gin.HandlerFunc) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)
	handle(c)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	return w, data
}

func TestSystemHandler_Info(t *testing.T) {
	h := NewSystemHandler("sibarkumen", "1.2.0", nil)
	h.startTime = time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return h.startTime.Add(90 * time.Second) }

	w, data := serveSystem(t, h.Info)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "sibarkumen", data["name"])
	assert.Equal(t, "1.2.0", data["version"])
	assert.NotEmpty(t, data["go_version"])
	assert.Equal(t, "1m30s", data["uptime"])
}

func TestSystemHandler_LiveSkipsChecks(t *testing.T) {
	called := false
	h := NewSystemHandler("sibarkumen", "dev", map[string]Pinger{
		"database": pingerFunc(func(context.Context) error { called = true; return errors.New("down") }),
	})

	w, data := serveSystem(t, h.Live)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", data["status"])
	assert.False(t, called)
}

func TestSystemHandler_Ready(t *testing.T) {
	t.Run("all checks pass", func(t *testing.T) {
		h := NewSystemHandler("sibarkumen", "dev", map[string]Pinger{
			"database": pingerFunc(func(context.Context) error { return nil }),
			"redis":    pingerFunc(func(context.Context) error { return nil }),
		})

		w, data := serveSystem(t, h.Ready)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "healthy", data["status"])
		assert.Equal(t, map[string]any{"database": "ok", "redis": "ok"}, data["checks"])
	})

	t.Run("a failing check makes the service unavailable", func(t *testing.T) {
		h := NewSystemHandler("sibarkumen", "dev", map[string]Pinger{
			"database": pingerFunc(func(context.Context) error { return errors.New("connection refused") }),
			"redis":    pingerFunc(func(context.Context) error { return nil }),
		})

		w, data := serveSystem(t, h.Ready)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "unhealthy", data["status"])
		assert.Equal(t, map[string]any{"database": "error", "redis": "ok"}, data["checks"])
	})

	t.Run("checks receive a deadline", func(t *testing.T) {
		h := NewSystemHandler("sibarkumen", "dev", map[string]Pinger{
			"database": pingerFunc(func(ctx context.Context) error {
				_, ok := ctx.Deadline()
				assert.True(t, ok)
				return nil
			}),
		})

		w, _ := serveSystem(t, h.Ready)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
