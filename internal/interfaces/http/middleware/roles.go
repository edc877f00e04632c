package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sibarkumen/backend/internal/domain/identity"
	"github.com/sibarkumen/backend/internal/interfaces/http/dto"
)

// RequireRoles only lets sessions holding one of roles through. It runs
// after AccessGate.
func RequireRoles(roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := GetSession(c)
		if session == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized, "Authentication required", getRequestIDFromContext(c)))
			return
		}
		if !session.HasRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden, "Your role does not allow this action", getRequestIDFromContext(c)))
			return
		}
		c.Next()
	}
}
