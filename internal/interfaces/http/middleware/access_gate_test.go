package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sibarkumen/backend/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubResolver struct {
	session *identity.Session
	err     error
	calls   atomic.Int32
}

func (s *stubResolver) ResolveSession(context.Context, *http.Request) (*identity.Session, error) {
	s.calls.Add(1)
	return s.session, s.err
}

func adminSession() *identity.Session {
	return &identity.Session{UserID: uuid.New(), Name: "Siti Aminah", Email: "siti@example.go.id", Role: identity.RoleAdmin}
}

func TestDecide(t *testing.T) {
	session := adminSession()

	tests := []struct {
		name     string
		path     string
		session  *identity.Session
		expected Decision
	}{
		{"anonymous sign-in page", "/sign-in", nil, Decision{Action: Pass}},
		{"anonymous sign-in sub-path", "/sign-in/reset", nil, Decision{Action: Pass}},
		{"anonymous dashboard", "/dashboard", nil, Decision{Action: Redirect, Location: SignInPath}},
		{"anonymous dashboard sub-path", "/dashboard/spb/1", nil, Decision{Action: Redirect, Location: SignInPath}},
		{"signed in sign-in page", "/sign-in", session, Decision{Action: Redirect, Location: DashboardPath}},
		{"signed in sign-in sub-path", "/sign-in/anything", session, Decision{Action: Redirect, Location: DashboardPath}},
		{"signed in dashboard", "/dashboard", session, Decision{Action: Pass}},
		{"signed in dashboard sub-path", "/dashboard/items/search", session, Decision{Action: Pass}},
		{"sign-up is not special", "/sign-up", nil, Decision{Action: Pass}},
		{"lookalike prefix is not gated", "/dashboards", nil, Decision{Action: Pass}},
		{"lookalike sign-in is not gated", "/sign-in-help", session, Decision{Action: Pass}},
		{"health is open", "/health", nil, Decision{Action: Pass}},
		{"api auth is open", "/api/v1/auth/refresh", nil, Decision{Action: Pass}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Decide(tt.path, tt.session))
		})
	}
}

func TestDecide_IsIdempotent(t *testing.T) {
	session := adminSession()
	for _, path := range []string{"/sign-in", "/dashboard", "/dashboard/bast-in/3", "/health"} {
		for _, s := range []*identity.Session{nil, session} {
			assert.Equal(t, Decide(path, s), Decide(path, s), path)
		}
	}
}

func gateRouter(resolver SessionResolver) *gin.Engine {
	router := gin.New()
	router.Use(AccessGate(resolver, zap.NewNop()))
	ok := func(c *gin.Context) {
		name := ""
		if s := GetSession(c); s != nil {
			name = s.Name
		}
		c.String(http.StatusOK, "ok:"+name)
	}
	router.GET("/sign-in", ok)
	router.POST("/sign-in", ok)
	router.GET("/dashboard", ok)
	router.POST("/dashboard/spb", ok)
	router.GET("/health", ok)
	return router
}

func TestAccessGate(t *testing.T) {
	tests := []struct {
		name         string
		resolver     *stubResolver
		method       string
		path         string
		wantStatus   int
		wantLocation string
		wantBody     string
	}{
		{"anonymous reaches sign-in", &stubResolver{}, http.MethodGet, "/sign-in", http.StatusOK, "", "ok:"},
		{"anonymous bounced from dashboard", &stubResolver{}, http.MethodGet, "/dashboard", http.StatusTemporaryRedirect, SignInPath, ""},
		{"anonymous POST keeps method on redirect", &stubResolver{}, http.MethodPost, "/dashboard/spb", http.StatusTemporaryRedirect, SignInPath, ""},
		{"signed in bounced from sign-in", &stubResolver{session: adminSession()}, http.MethodPost, "/sign-in", http.StatusTemporaryRedirect, DashboardPath, ""},
		{"signed in reaches dashboard", &stubResolver{session: adminSession()}, http.MethodGet, "/dashboard", http.StatusOK, "", "ok:Siti Aminah"},
		{"resolver error fails closed", &stubResolver{err: errors.New("token expired")}, http.MethodGet, "/dashboard", http.StatusTemporaryRedirect, SignInPath, ""},
		{"resolver error still allows sign-in", &stubResolver{session: adminSession(), err: errors.New("blacklisted")}, http.MethodGet, "/sign-in", http.StatusOK, "", "ok:"},
		{"open path passes", &stubResolver{}, http.MethodGet, "/health", http.StatusOK, "", "ok:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body *strings.Reader
			if tt.method == http.MethodPost {
				body = strings.NewReader(`{"email":"siti@example.go.id"}`)
			} else {
				body = strings.NewReader("")
			}
			req := httptest.NewRequest(tt.method, tt.path, body)
			w := httptest.NewRecorder()
			gateRouter(tt.resolver).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantLocation, w.Header().Get("Location"))
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
			assert.Equal(t, int32(1), tt.resolver.calls.Load(), "resolver must run exactly once")
		})
	}
}

func TestGetSession(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetSession(c))

	c.Set(SessionKey, "not a session")
	assert.Nil(t, GetSession(c))

	s := adminSession()
	c.Set(SessionKey, s)
	require.NotNil(t, GetSession(c))
	assert.Equal(t, s.UserID, GetSession(c).UserID)
}
