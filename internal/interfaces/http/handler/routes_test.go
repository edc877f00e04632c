package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sibarkumen/backend/internal/domain/identity"
	"github.com/sibarkumen/backend/internal/interfaces/http/middleware"
	"github.com/sibarkumen/backend/internal/interfaces/http/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// emptyHandlers is enough to register routes; guarded requests never reach
// the handlers.
func emptyHandlers() Handlers {
	return Handlers{
		Auth:        &AuthHandler{},
		Users:       &UserHandler{},
		Categories:  &CategoryHandler{},
		Units:       &NamedHandler{},
		Positions:   &NamedHandler{},
		Suppliers:   &SupplierHandler{},
		Employees:   &EmployeeHandler{},
		Items:       &ItemHandler{},
		Opnames:     &OpnameHandler{},
		Documents:   &DocumentHandler{},
		Prints:      &PrintHandler{},
		Attachments: &AttachmentHandler{},
		Dashboard:   &DashboardHandler{},
		System:      &SystemHandler{},
	}
}

func guardedEngine(role identity.Role) *gin.Engine {
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set(middleware.SessionKey, &identity.Session{UserID: uuid.New(), Role: role})
		c.Next()
	})
	r := router.NewRouter(engine)
	r.RegisterRoot(DashboardRoutes(emptyHandlers(), RouteOptions{UploadLimit: 1024}))
	r.Setup()
	return engine
}

func TestDashboardRoutes_Register(t *testing.T) {
	require.NotPanics(t, func() { guardedEngine(identity.RoleAdmin) })

	routes := DashboardRoutes(emptyHandlers(), RouteOptions{}).Routes()
	for _, want := range []string{
		"GET /dashboard",
		"GET /dashboard/items/search",
		"GET /dashboard/documents/next-number/:type",
		"POST /dashboard/spb/:id/approve",
		"GET /dashboard/sppb/:id/print",
		"POST /dashboard/bast-in/:id/attachment",
		"POST /dashboard/bast-out",
		"POST /dashboard/opnames/:id/complete",
		"GET /dashboard/mutations",
	} {
		assert.Contains(t, routes, want)
	}
	for _, r := range routes {
		assert.True(t, strings.Contains(r, " /dashboard"), r)
	}
}

func TestDashboardRoutes_RoleGuards(t *testing.T) {
	id := uuid.NewString()
	tests := []struct {
		role   identity.Role
		method string
		path   string
	}{
		{identity.RoleStaff, http.MethodGet, "/dashboard/users"},
		{identity.RoleSupervisor, http.MethodPost, "/dashboard/users"},
		{identity.RoleStaff, http.MethodPost, "/dashboard/items"},
		{identity.RoleSupervisor, http.MethodDelete, "/dashboard/categories/" + id},
		{identity.RoleStaff, http.MethodPut, "/dashboard/units/" + id},
		{identity.RoleStaff, http.MethodPost, "/dashboard/suppliers/" + id + "/accounts"},
		{identity.RoleStaff, http.MethodPost, "/dashboard/employees/" + id + "/assignments"},
		{identity.RoleSupervisor, http.MethodPost, "/dashboard/spb"},
		{identity.RoleStaff, http.MethodPost, "/dashboard/spb/" + id + "/approve"},
		{identity.RoleStaff, http.MethodPost, "/dashboard/spb/" + id + "/reject"},
		{identity.RoleSupervisor, http.MethodPost, "/dashboard/bast-in"},
		{identity.RoleSupervisor, http.MethodPost, "/dashboard/bast-in/" + id + "/attachment"},
		{identity.RoleSupervisor, http.MethodPost, "/dashboard/bast-out"},
		{identity.RoleSupervisor, http.MethodPost, "/dashboard/opnames"},
		{identity.RoleStaff, http.MethodPost, "/dashboard/opnames/" + id + "/complete"},
	}

	for _, tt := range tests {
		t.Run(tt.role.String()+" "+tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			guardedEngine(tt.role).ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, http.StatusForbidden, w.Code)
		})
	}
}

func TestDashboardRoutes_UploadLimit(t *testing.T) {
	engine := guardedEngine(identity.RoleStaff)

	req := httptest.NewRequest(http.MethodPost, "/dashboard/bast-in/"+uuid.NewString()+"/attachment",
		strings.NewReader(strings.Repeat("x", 1024+multipartOverhead+1)))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestSignInRoutes(t *testing.T) {
	calls := 0
	limit := func(c *gin.Context) {
		calls++
		c.AbortWithStatus(http.StatusTooManyRequests)
	}
	engine := gin.New()
	r := router.NewRouter(engine)
	r.RegisterRoot(SignInRoutes(&AuthHandler{}, RouteOptions{SignInLimit: limit}))
	r.Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/sign-in", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sign-in", nil))
	assert.Equal(t, http.StatusOK, w.Code, "the form descriptor is not rate limited")
	assert.Equal(t, 1, calls)
}

func TestDashboardRoutes_IdempotencyHook(t *testing.T) {
	var hits []string
	hook := func(c *gin.Context) {
		hits = append(hits, c.Request.Method+" "+c.FullPath())
		c.AbortWithStatus(http.StatusConflict)
	}
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set(middleware.SessionKey, &identity.Session{UserID: uuid.New(), Role: identity.RoleAdmin})
		c.Next()
	})
	r := router.NewRouter(engine)
	r.RegisterRoot(DashboardRoutes(emptyHandlers(), RouteOptions{Idempotency: hook}))
	r.Setup()

	id := uuid.NewString()
	for _, path := range []string{"/dashboard/spb", "/dashboard/spb/" + id + "/approve", "/dashboard/bast-in", "/dashboard/bast-out", "/dashboard/opnames"} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
		assert.Equal(t, http.StatusConflict, w.Code, path)
	}
	assert.Len(t, hits, 5)

	// Guards still run before the hook.
	staff := gin.New()
	staff.Use(func(c *gin.Context) {
		c.Set(middleware.SessionKey, &identity.Session{UserID: uuid.New(), Role: identity.RoleStaff})
		c.Next()
	})
	rs := router.NewRouter(staff)
	rs.RegisterRoot(DashboardRoutes(emptyHandlers(), RouteOptions{Idempotency: hook}))
	rs.Setup()
	w := httptest.NewRecorder()
	staff.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/dashboard/spb/"+id+"/approve", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Len(t, hits, 5)
}
