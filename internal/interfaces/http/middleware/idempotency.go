package middleware

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sibarkumen/backend/internal/domain/shared"
	"github.com/sibarkumen/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader carries the client-chosen key of a create request.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotentReplayHeader marks a response served from the store.
	IdempotentReplayHeader = "Idempotent-Replayed"

	maxIdempotencyKeyLen = 128
)

// Idempotency replays the first successful response for a repeated
// Idempotency-Key so a double-submitted form does not create two documents.
// Keys are scoped to the caller and the request path. Requests without the
// header pass through. Only 2xx responses are remembered; anything else
// releases the key so the client may retry.
//
// A store failure lets the request through unprotected. A panicking
// handler releases the key before the panic reaches Recovery.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration, log *zap.Logger) gin.HandlerFunc {
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyTTL
	}
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLen {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest,
				"Idempotency-Key must be at most 128 characters",
				getRequestIDFromContext(c),
			))
			return
		}

		ctx := c.Request.Context()
		scoped := idempotencyScope(c, key)

		if replayStored(c, store, scoped) {
			return
		}
		claimed, err := store.Claim(ctx, scoped, ttl)
		if err != nil {
			log.Warn("Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !claimed {
			if replayStored(c, store, scoped) {
				return
			}
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeConflict,
				"A request with this Idempotency-Key is still in progress",
				getRequestIDFromContext(c),
			))
			return
		}

		w := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = w
		// The request context may already be cancelled when the key is settled.
		bg := context.WithoutCancel(ctx)
		defer func() {
			if r := recover(); r != nil {
				if err := store.Release(bg, scoped); err != nil {
					log.Warn("Failed to release idempotency key after panic", zap.Error(err))
				}
				panic(r)
			}
		}()
		c.Next()

		status := w.Status()
		if status >= 200 && status < 300 {
			err = store.Complete(bg, scoped, shared.IdempotentResponse{
				Status:      status,
				ContentType: w.Header().Get("Content-Type"),
				Body:        w.body.Bytes(),
			}, ttl)
		} else {
			err = store.Release(bg, scoped)
		}
		if err != nil {
			log.Warn("Failed to settle idempotency key", zap.Int("status", status), zap.Error(err))
		}
	}
}

func replayStored(c *gin.Context, store shared.IdempotencyStore, key string) bool {
	resp, err := store.Load(c.Request.Context(), key)
	if err != nil || resp == nil {
		return false
	}
	c.Header(IdempotentReplayHeader, "true")
	c.Data(resp.Status, resp.ContentType, resp.Body)
	c.Abort()
	return true
}

func idempotencyScope(c *gin.Context, key string) string {
	caller := "anonymous"
	if s := GetSession(c); s != nil {
		caller = s.UserID.String()
	}
	return caller + ":" + c.Request.Method + ":" + c.Request.URL.Path + ":" + key
}

type captureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
