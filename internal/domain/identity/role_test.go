package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		label string
		want  Role
	}{
		{"admin", RoleAdmin},
		{"ADMIN", RoleAdmin},
		{" Supervisor ", RoleSupervisor},
		{"Staff", RoleStaff},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := ParseRole(tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unknown label", func(t *testing.T) {
		_, err := ParseRole("superuser")
		assert.ErrorIs(t, err, ErrUnknownRole)
	})

	t.Run("empty label", func(t *testing.T) {
		_, err := ParseRole("")
		assert.ErrorIs(t, err, ErrUnknownRole)
	})
}

func TestSession_HasRole(t *testing.T) {
	s := &Session{Role: RoleStaff}
	assert.True(t, s.HasRole(RoleAdmin, RoleStaff))
	assert.False(t, s.HasRole(RoleAdmin))

	var nilSession *Session
	assert.False(t, nilSession.HasRole(RoleAdmin))
}
