package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sibarkumen/backend/internal/domain/identity"
	"github.com/sibarkumen/backend/internal/domain/shared"
	"github.com/sibarkumen/backend/internal/interfaces/http/dto"
	"github.com/sibarkumen/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func newTestContext(method, target string, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	c.Request = r
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*gin.Context)
		expectedID string
	}{
		{
			name:       "from context",
			setup:      func(c *gin.Context) { c.Set(middleware.RequestIDKey, "ctx-request-id") },
			expectedID: "ctx-request-id",
		},
		{
			name:       "from header when context empty",
			setup:      func(c *gin.Context) { c.Request.Header.Set(middleware.RequestIDHeader, "header-request-id") },
			expectedID: "header-request-id",
		},
		{
			name:       "empty when not set",
			setup:      func(c *gin.Context) {},
			expectedID: "",
		},
		{
			name: "context takes precedence over header",
			setup: func(c *gin.Context) {
				c.Set(middleware.RequestIDKey, "ctx-id")
				c.Request.Header.Set(middleware.RequestIDHeader, "header-id")
			},
			expectedID: "ctx-id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(http.MethodGet, "/", "")
			tt.setup(c)
			assert.Equal(t, tt.expectedID, getRequestID(c))
		})
	}
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound, "Resource not found"},
		{"wrapped conflict", errors.Join(errors.New("ctx"), shared.ErrConflict), http.StatusConflict, dto.ErrCodeConflict, ""},
		{"insufficient stock", shared.ErrInsufficientStock, http.StatusUnprocessableEntity, dto.ErrCodeInsufficientStock, ""},
		{"unmapped business code", shared.NewDomainError("INVALID_QUANTITY", "Approved exceeds requested"), http.StatusUnprocessableEntity, "ERR_INVALID_QUANTITY", "Approved exceeds requested"},
		{"plain error is hidden", errors.New("pq: connection reset"), http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(http.MethodGet, "/", "")
			c.Set(middleware.RequestIDKey, "req-1")

			(&BaseHandler{}).HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, resp.Error.Message)
			}
		})
	}

	t.Run("nil writes nothing", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/", "")
		(&BaseHandler{}).HandleError(c, nil)
		assert.False(t, c.Writer.Written())
		assert.Equal(t, 0, w.Body.Len())
	})
}

func TestBaseHandler_BindJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name" binding:"required,max=5"`
	}

	t.Run("valid body", func(t *testing.T) {
		c, _ := newTestContext(http.MethodPost, "/", `{"name":"ok"}`)
		var p payload
		assert.True(t, (&BaseHandler{}).bindJSON(c, &p))
		assert.Equal(t, "ok", p.Name)
	})

	t.Run("validation failure lists the json field", func(t *testing.T) {
		c, w := newTestContext(http.MethodPost, "/", `{"name":"too long"}`)
		var p payload
		assert.False(t, (&BaseHandler{}).bindJSON(c, &p))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "name", resp.Error.Details[0].Field)
	})

	t.Run("malformed json", func(t *testing.T) {
		c, w := newTestContext(http.MethodPost, "/", `{"name":`)
		var p payload
		assert.False(t, (&BaseHandler{}).bindJSON(c, &p))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
	})

	t.Run("body over the limit", func(t *testing.T) {
		c, w := newTestContext(http.MethodPost, "/", `{"name":"abcdefghijklmnop"}`)
		c.Request.Body = http.MaxBytesReader(w, c.Request.Body, 4)
		var p payload
		assert.False(t, (&BaseHandler{}).bindJSON(c, &p))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestBaseHandler_ListFilterWith(t *testing.T) {
	categoryID := uuid.New()

	t.Run("typed filters", func(t *testing.T) {
		c, _ := newTestContext(http.MethodGet,
			"/items?page=2&page_size=5&search=kertas&active=true&low_stock=false&category_id="+categoryID.String()+"&status=PENDING", "")

		filter, ok := (&BaseHandler{}).listFilterWith(c, "active", "low_stock", "category_id", "status", "unit_id")
		require.True(t, ok)

		assert.Equal(t, 2, filter.Page)
		assert.Equal(t, 5, filter.PageSize)
		assert.Equal(t, "kertas", filter.Search)
		assert.Equal(t, true, filter.Filters["active"])
		assert.Equal(t, false, filter.Filters["low_stock"])
		assert.Equal(t, categoryID, filter.Filters["category_id"])
		assert.Equal(t, "PENDING", filter.Filters["status"])
		assert.NotContains(t, filter.Filters, "unit_id")
	})

	t.Run("bad uuid", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/items?category_id=abc", "")
		_, ok := (&BaseHandler{}).listFilterWith(c, "category_id")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad bool", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/items?active=maybe", "")
		_, ok := (&BaseHandler{}).listFilterWith(c, "active")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("page size above the cap", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/items?page_size=500", "")
		_, ok := (&BaseHandler{}).listFilterWith(c)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, w).Error.Code)
	})
}

func TestBaseHandler_PathID(t *testing.T) {
	id := uuid.New()

	c, _ := newTestContext(http.MethodGet, "/", "")
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	got, ok := (&BaseHandler{}).pathID(c, "id")
	assert.True(t, ok)
	assert.Equal(t, id, got)

	c, w := newTestContext(http.MethodGet, "/", "")
	c.Params = gin.Params{{Key: "id", Value: "12"}}
	_, ok = (&BaseHandler{}).pathID(c, "id")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBaseHandler_Session(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/", "")
	_, ok := (&BaseHandler{}).session(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	want := &identity.Session{UserID: uuid.New(), Role: identity.RoleStaff}
	c, _ = newTestContext(http.MethodGet, "/", "")
	c.Set(middleware.SessionKey, want)
	got, ok := (&BaseHandler{}).session(c)
	assert.True(t, ok)
	assert.Same(t, want, got)
}

func TestPage(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/", "")
	p := shared.NewPaginated([]string{"a", "b"}, 12, 2, 2)

	Page(c, &p)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(12), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 6, resp.Meta.TotalPages)
}
