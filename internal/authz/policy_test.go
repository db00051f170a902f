package authz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/user-service/internal/domain"
)

func principalWithRole(id int64, role domain.Role) *Principal {
	return NewPrincipal(&domain.User{ID: id, Email: "p@example.com", Role: role})
}

func TestIsAuthenticated(t *testing.T) {
	allow, err := Authorize(principalWithRole(1, domain.RoleUser), IsAuthenticated())
	require.NoError(t, err)
	assert.Equal(t, Allow, allow)

	deny, err := Authorize(nil, IsAuthenticated())
	require.NoError(t, err)
	assert.Equal(t, Deny, deny)
}

func TestHasRole(t *testing.T) {
	req := HasRole(domain.RoleAdmin)

	decision, err := Authorize(principalWithRole(1, domain.RoleAdmin), req)
	require.NoError(t, err)
	assert.Equal(t, Allow, decision)

	decision, err = Authorize(principalWithRole(1, domain.RoleManager), req)
	require.NoError(t, err)
	assert.Equal(t, Deny, decision)

	decision, err = Authorize(nil, req)
	require.NoError(t, err)
	assert.Equal(t, Deny, decision)
}

func TestHasAnyRole(t *testing.T) {
	req := HasAnyRole(domain.RoleAdmin, domain.RoleManager)

	for role, want := range map[domain.Role]Decision{
		domain.RoleAdmin:   Allow,
		domain.RoleManager: Allow,
		domain.RoleUser:    Deny,
	} {
		decision, err := Authorize(principalWithRole(1, role), req)
		require.NoError(t, err)
		assert.Equal(t, want, decision, "role %s", role)
	}
}

func TestIsOwner(t *testing.T) {
	req := IsOwner(42)

	decision, err := Authorize(principalWithRole(42, domain.RoleUser), req)
	require.NoError(t, err)
	assert.Equal(t, Allow, decision)

	decision, err = Authorize(principalWithRole(43, domain.RoleUser), req)
	require.NoError(t, err)
	assert.Equal(t, Deny, decision)
}

func TestReportsPolicyComposite(t *testing.T) {
	// HasRole(ADMIN) OR (HasRole(MANAGER) AND Predicate(canAccessReports))
	build := func(canAccess bool) Requirement {
		return Or(
			HasRole(domain.RoleAdmin),
			And(
				HasRole(domain.RoleManager),
				Predicate("can_access_reports", func(p *Principal) (bool, error) {
					return canAccess, nil
				}),
			),
		)
	}

	tests := []struct {
		name      string
		role      domain.Role
		canAccess bool
		want      Decision
	}{
		{"admin regardless of predicate", domain.RoleAdmin, false, Allow},
		{"manager with access", domain.RoleManager, true, Allow},
		{"manager without access", domain.RoleManager, false, Deny},
		{"plain user", domain.RoleUser, true, Deny},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			decision, err := Authorize(principalWithRole(1, tc.role), build(tc.canAccess))
			require.NoError(t, err)
			assert.Equal(t, tc.want, decision)
		})
	}
}

func TestOrShortCircuitsLeftFirst(t *testing.T) {
	called := false
	req := Or(
		HasRole(domain.RoleAdmin),
		Predicate("never", func(p *Principal) (bool, error) {
			called = true
			return true, nil
		}),
	)

	decision, err := Authorize(principalWithRole(1, domain.RoleAdmin), req)
	require.NoError(t, err)
	assert.Equal(t, Allow, decision)
	assert.False(t, called, "right operand must not run when left allows")
}

func TestAndShortCircuitsOnDeny(t *testing.T) {
	called := false
	req := And(
		HasRole(domain.RoleAdmin),
		Predicate("never", func(p *Principal) (bool, error) {
			called = true
			return true, nil
		}),
	)

	decision, err := Authorize(principalWithRole(1, domain.RoleUser), req)
	require.NoError(t, err)
	assert.Equal(t, Deny, decision)
	assert.False(t, called)
}

func TestPredicateFailureIsErrorNotDeny(t *testing.T) {
	boom := errors.New("store unreachable")
	req := Or(
		HasRole(domain.RoleAdmin),
		Predicate("reports", func(p *Principal) (bool, error) {
			return false, boom
		}),
	)

	_, err := Authorize(principalWithRole(1, domain.RoleManager), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "ALLOW", Allow.String())
	assert.Equal(t, "DENY", Deny.String())
}
