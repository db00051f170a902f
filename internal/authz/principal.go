package authz

import "github.com/spec-kit/user-service/internal/domain"

// Principal is the authenticated caller for one request: resolved user ID,
// email, role and the authority set derived from the role. It is never
// persisted; the authenticating middleware rebuilds it per request.
type Principal struct {
	UserID      int64
	Email       string
	Role        domain.Role
	Authorities map[Authority]struct{}
}

// NewPrincipal derives a request principal from a stored user.
func NewPrincipal(user *domain.User) *Principal {
	return &Principal{
		UserID:      user.ID,
		Email:       user.Email,
		Role:        user.Role,
		Authorities: Authorities(user.Role),
	}
}

// HasAuthority reports whether the principal carries the capability token.
func (p *Principal) HasAuthority(token Authority) bool {
	if p == nil {
		return false
	}
	_, ok := p.Authorities[token]
	return ok
}
