package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sibarkumen/backend/internal/domain/identity"
	"github.com/sibarkumen/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Gated paths and redirect targets.
const (
	SignInPath    = "/sign-in"
	DashboardPath = "/dashboard"
)

// SessionKey is the gin context key of the resolved session
const SessionKey = "session"

// Action is what the gate does with a request
type Action int

const (
	// Pass lets the request through
	Pass Action = iota
	// Redirect sends the client to Decision.Location
	Redirect
)

// Decision is the outcome of Decide
type Decision struct {
	Action   Action
	Location string
}

// SessionResolver resolves the caller of a request.
// *auth.SessionResolver implements it.
type SessionResolver interface {
	ResolveSession(ctx context.Context, req *http.Request) (*identity.Session, error)
}

// Decide routes a request by path and session:
//
//	no session, sign-in page     -> pass
//	no session, dashboard        -> redirect to sign-in
//	session,    sign-in page     -> redirect to dashboard
//	session,    dashboard        -> pass
//
// Every other path passes.
func Decide(path string, session *identity.Session) Decision {
	switch {
	case under(path, SignInPath):
		if session != nil {
			return Decision{Action: Redirect, Location: DashboardPath}
		}
	case under(path, DashboardPath):
		if session == nil {
			return Decision{Action: Redirect, Location: SignInPath}
		}
	}
	return Decision{Action: Pass}
}

// under reports whether path is prefix itself or one of its sub-paths.
func under(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// AccessGate resolves the session once and applies Decide. A resolver error
// counts as no session. Redirects use 307 so the method and body survive.
func AccessGate(resolver SessionResolver, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := resolver.ResolveSession(c.Request.Context(), c.Request)
		if err != nil {
			session = nil
			if log != nil {
				log.Debug("Session not resolved", zap.String("path", c.Request.URL.Path), zap.Error(err))
			}
		}
		if session != nil {
			c.Set(SessionKey, session)
			c.Set("user_id", session.UserID.String())
			c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), session.UserID.String()))
		}

		d := Decide(c.Request.URL.Path, session)
		if d.Action == Redirect {
			c.Redirect(http.StatusTemporaryRedirect, d.Location)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetSession returns the session stored by AccessGate, or nil
func GetSession(c *gin.Context) *identity.Session {
	if v, ok := c.Get(SessionKey); ok {
		if s, ok := v.(*identity.Session); ok {
			return s
		}
	}
	return nil
}
