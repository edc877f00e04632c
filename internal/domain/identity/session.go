package identity

import "github.com/google/uuid"

// Session is the authenticated caller of a request.
// It is read-only once resolved; Role has already been validated.
type Session struct {
	UserID uuid.UUID
	Name   string
	Email  string
	Role   Role
	// TokenID identifies the access token the session was resolved from.
	TokenID string
}

// HasRole reports whether the session carries one of the allowed roles.
func (s *Session) HasRole(allowed ...Role) bool {
	if s == nil {
		return false
	}
	return s.Role.In(allowed...)
}
