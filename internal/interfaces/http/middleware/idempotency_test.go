package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sibarkumen/backend/internal/domain/identity"
	"github.com/sibarkumen/backend/internal/domain/shared"
	"github.com/sibarkumen/backend/internal/infrastructure/cache"
	"github.com/sibarkumen/backend/internal/infrastructure/logger"
	"github.com/sibarkumen/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingStore struct{}

func (failingStore) Claim(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("redis down")
}
func (failingStore) Load(context.Context, string) (*shared.IdempotentResponse, error) {
	return nil, errors.New("redis down")
}
func (failingStore) Complete(context.Context, string, shared.IdempotentResponse, time.Duration) error {
	return errors.New("redis down")
}
func (failingStore) Release(context.Context, string) error { return errors.New("redis down") }

func idempotentRouter(store shared.IdempotencyStore, calls *atomic.Int32, status int, userID uuid.UUID) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if userID != uuid.Nil {
			c.Set(SessionKey, &identity.Session{UserID: userID, Role: identity.RoleStaff})
		}
		c.Next()
	})
	router.Use(Idempotency(store, time.Hour, zap.NewNop()))
	router.POST("/dashboard/spb", func(c *gin.Context) {
		n := calls.Add(1)
		c.JSON(status, gin.H{"call": n})
	})
	return router
}

func postWithKey(router *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/dashboard/spb", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotency(t *testing.T) {
	user := uuid.New()

	t.Run("replays the first successful response", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()
		var calls atomic.Int32
		router := idempotentRouter(store, &calls, http.StatusCreated, user)

		first := postWithKey(router, "form-1")
		second := postWithKey(router, "form-1")

		assert.Equal(t, int32(1), calls.Load())
		assert.Equal(t, http.StatusCreated, first.Code)
		assert.Equal(t, http.StatusCreated, second.Code)
		assert.JSONEq(t, first.Body.String(), second.Body.String())
		assert.Empty(t, first.Header().Get(IdempotentReplayHeader))
		assert.Equal(t, "true", second.Header().Get(IdempotentReplayHeader))
		assert.Contains(t, second.Header().Get("Content-Type"), "application/json")
	})

	t.Run("requests without a key are not deduplicated", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()
		var calls atomic.Int32
		router := idempotentRouter(store, &calls, http.StatusCreated, user)

		postWithKey(router, "")
		postWithKey(router, "")
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("failed responses release the key", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()
		var calls atomic.Int32
		router := idempotentRouter(store, &calls, http.StatusUnprocessableEntity, user)

		postWithKey(router, "form-2")
		postWithKey(router, "form-2")
		assert.Equal(t, int32(2), calls.Load())
		assert.Equal(t, 0, store.Size())
	})

	t.Run("keys are scoped per caller", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()
		var calls atomic.Int32

		postWithKey(idempotentRouter(store, &calls, http.StatusCreated, user), "same")
		postWithKey(idempotentRouter(store, &calls, http.StatusCreated, uuid.New()), "same")
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("in-flight duplicate gets a conflict", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()
		var calls atomic.Int32
		router := idempotentRouter(store, &calls, http.StatusCreated, user)

		ok, err := store.Claim(context.Background(), user.String()+":POST:/dashboard/spb:busy", time.Hour)
		require.NoError(t, err)
		require.True(t, ok)

		w := postWithKey(router, "busy")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeConflict)
		assert.Equal(t, int32(0), calls.Load())
	})

	t.Run("rejects an overlong key", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()
		var calls atomic.Int32
		router := idempotentRouter(store, &calls, http.StatusCreated, user)

		w := postWithKey(router, strings.Repeat("k", maxIdempotencyKeyLen+1))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, int32(0), calls.Load())
	})

	t.Run("panicking handler releases the key", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()
		var calls atomic.Int32

		router := gin.New()
		router.Use(logger.Recovery(zap.NewNop()))
		router.Use(func(c *gin.Context) {
			c.Set(SessionKey, &identity.Session{UserID: user, Role: identity.RoleStaff})
			c.Next()
		})
		router.Use(Idempotency(store, time.Hour, zap.NewNop()))
		router.POST("/dashboard/spb", func(c *gin.Context) {
			if calls.Add(1) == 1 {
				panic("database went away")
			}
			c.JSON(http.StatusCreated, gin.H{"ok": true})
		})

		first := postWithKey(router, "form-4")
		assert.Equal(t, http.StatusInternalServerError, first.Code)
		assert.Equal(t, 0, store.Size())

		second := postWithKey(router, "form-4")
		assert.Equal(t, http.StatusCreated, second.Code)
		assert.Equal(t, int32(2), calls.Load())
		assert.Empty(t, second.Header().Get(IdempotentReplayHeader))
	})

	t.Run("store failure lets the request through", func(t *testing.T) {
		var calls atomic.Int32
		router := idempotentRouter(failingStore{}, &calls, http.StatusCreated, user)

		w := postWithKey(router, "form-3")
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, int32(1), calls.Load())
	})
}
