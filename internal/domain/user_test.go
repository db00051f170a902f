package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"USER", RoleUser},
		{"MANAGER", RoleManager},
		{"ADMIN", RoleAdmin},
		{"admin", RoleAdmin},
	}
	for _, tc := range tests {
		got, err := ParseRole(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestParseRoleRejectsUnknown(t *testing.T) {
	for _, in := range []string{"", "ROOT", "SUPERUSER"} {
		_, err := ParseRole(in)
		assert.Error(t, err, in)
	}
}

func TestFullName(t *testing.T) {
	u := &User{FirstName: "Alice", LastName: "Smith"}
	assert.Equal(t, "Alice Smith", u.FullName())

	u = &User{FirstName: "Alice"}
	assert.Equal(t, "Alice", u.FullName())
}
