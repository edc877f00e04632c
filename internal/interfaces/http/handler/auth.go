package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	identityapp "github.com/sibarkumen/backend/internal/application/identity"
	"github.com/sibarkumen/backend/internal/infrastructure/config"
	"github.com/sibarkumen/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles sign-in, sign-out and the caller's own account
type AuthHandler struct {
	BaseHandler
	auth   *identityapp.AuthService
	cookie config.SessionConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth *identityapp.AuthService, cookie config.SessionConfig) *AuthHandler {
	return &AuthHandler{auth: auth, cookie: cookie}
}

// SignInForm describes the sign-in form to the frontend
type SignInForm struct {
	Action string   `json:"action"`
	Method string   `json:"method"`
	Fields []string `json:"fields"`
}

// SignInPage handles GET /sign-in. Only anonymous callers get here; the
// access gate sends signed-in users to the dashboard.
func (h *AuthHandler) SignInPage(c *gin.Context) {
	h.Success(c, SignInForm{
		Action: middleware.SignInPath,
		Method: http.MethodPost,
		Fields: []string{"email", "password"},
	})
}

// SignIn handles POST /sign-in
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req identityapp.SignInRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	result, err := h.auth.SignIn(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.setSessionCookie(c, result.Tokens.AccessToken, result.Tokens.AccessTokenExpiresAt)
	h.Success(c, result)
}

// SignOut handles POST /dashboard/sign-out
func (h *AuthHandler) SignOut(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	if err := h.auth.SignOut(c.Request.Context(), session); err != nil {
		h.HandleError(c, err)
		return
	}
	h.clearSessionCookie(c)
	h.NoContent(c)
}

// Me handles GET /dashboard/me
func (h *AuthHandler) Me(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	user, err := h.auth.Me(c.Request.Context(), session.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Refresh handles POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req identityapp.RefreshRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tokens, err := h.auth.Refresh(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.setSessionCookie(c, tokens.AccessToken, tokens.AccessTokenExpiresAt)
	h.Success(c, tokens)
}

// ChangePassword handles PUT /dashboard/me/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req identityapp.ChangePasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.auth.ChangePassword(c.Request.Context(), session.UserID, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, expires time.Time) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cookie.CookieName,
		Value:    token,
		Path:     h.cookiePath(),
		Domain:   h.cookie.Domain,
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		Secure:   h.cookie.Secure,
		HttpOnly: true,
		SameSite: sameSite(h.cookie.SameSite),
	})
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cookie.CookieName,
		Value:    "",
		Path:     h.cookiePath(),
		Domain:   h.cookie.Domain,
		MaxAge:   -1,
		Secure:   h.cookie.Secure,
		HttpOnly: true,
		SameSite: sameSite(h.cookie.SameSite),
	})
}

func (h *AuthHandler) cookiePath() string {
	if h.cookie.Path == "" {
		return "/"
	}
	return h.cookie.Path
}

func sameSite(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
