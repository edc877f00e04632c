package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.api)
	assert.Empty(t, r.root)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v1"))

	auth := NewDomainGroup("auth", "/auth")
	auth.POST("/refresh", func(c *gin.Context) { c.String(http.StatusOK, "refreshed") })

	dashboard := NewDomainGroup("dashboard", "/dashboard")
	dashboard.GET("", func(c *gin.Context) { c.String(http.StatusOK, "stats") })

	r.Register(auth).RegisterRoot(dashboard)
	r.Setup()

	w := serve(engine, http.MethodPost, "/api/v1/auth/refresh")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "refreshed", w.Body.String())

	w = serve(engine, http.MethodGet, "/dashboard")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "stats", w.Body.String())

	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/v1/dashboard").Code)
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodPost, "/auth/refresh").Code)
}

func TestDomainGroup(t *testing.T) {
	t.Run("creates group with name and prefix", func(t *testing.T) {
		g := NewDomainGroup("items", "/items")
		assert.Equal(t, "items", g.Name())
		assert.Equal(t, "/items", g.Prefix())
	})

	methods := []struct {
		method   string
		register func(g *DomainGroup, h gin.HandlerFunc)
	}{
		{http.MethodGet, func(g *DomainGroup, h gin.HandlerFunc) { g.GET("/:id", h) }},
		{http.MethodPost, func(g *DomainGroup, h gin.HandlerFunc) { g.POST("/:id", h) }},
		{http.MethodPut, func(g *DomainGroup, h gin.HandlerFunc) { g.PUT("/:id", h) }},
		{http.MethodPatch, func(g *DomainGroup, h gin.HandlerFunc) { g.PATCH("/:id", h) }},
		{http.MethodDelete, func(g *DomainGroup, h gin.HandlerFunc) { g.DELETE("/:id", h) }},
	}
	for _, m := range methods {
		t.Run("registers "+m.method+" route", func(t *testing.T) {
			engine := gin.New()
			g := NewDomainGroup("items", "/items")
			m.register(g, func(c *gin.Context) { c.String(http.StatusOK, c.Param("id")) })
			g.RegisterRoutes(engine.Group("/dashboard"))

			w := serve(engine, m.method, "/dashboard/items/123")
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "123", w.Body.String())
		})
	}

	t.Run("applies middleware to sub-groups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("dashboard", "/dashboard")
		g.Use(func(c *gin.Context) {
			c.Header("X-Test-Middleware", "applied")
			c.Next()
		})
		g.Group("items", "/items").GET("", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
		g.RegisterRoutes(engine.Group(""))

		w := serve(engine, http.MethodGet, "/dashboard/items")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "applied", w.Header().Get("X-Test-Middleware"))
	})

	t.Run("sub-group middleware stays in the sub-group", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("dashboard", "/dashboard")
		g.GET("/items", func(c *gin.Context) { c.String(http.StatusOK, "items") })
		users := g.Group("users", "/users")
		users.Use(func(c *gin.Context) { c.AbortWithStatus(http.StatusForbidden) })
		users.GET("", func(c *gin.Context) { c.String(http.StatusOK, "users") })
		g.RegisterRoutes(engine.Group(""))

		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/dashboard/items").Code)
		assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodGet, "/dashboard/users").Code)
	})
}

func TestDomainGroupRoutes(t *testing.T) {
	noop := func(*gin.Context) {}
	g := NewDomainGroup("dashboard", "/dashboard")
	g.GET("", noop)
	spb := g.Group("spb", "/spb")
	spb.GET("", noop).POST("", noop).POST("/:id/approve", noop)
	g.Group("items", "/items").GET("/search", noop)

	assert.Equal(t, []string{
		"GET /dashboard",
		"GET /dashboard/spb",
		"POST /dashboard/spb",
		"POST /dashboard/spb/:id/approve",
		"GET /dashboard/items/search",
	}, g.Routes())
}

func TestChainedMethodCalls(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	g := NewDomainGroup("test", "/test")
	g.GET("/a", func(c *gin.Context) { c.String(http.StatusOK, "a") }).
		POST("/b", func(c *gin.Context) { c.String(http.StatusOK, "b") }).
		PUT("/c", func(c *gin.Context) { c.String(http.StatusOK, "c") })

	r.Register(g).Setup()

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/test/a"},
		{http.MethodPost, "/api/v1/test/b"},
		{http.MethodPut, "/api/v1/test/c"},
	}

	for _, tt := range tests {
		w := serve(engine, tt.method, tt.path)
		assert.Equal(t, http.StatusOK, w.Code, "Route %s %s should work", tt.method, tt.path)
	}
}
