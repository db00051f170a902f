package authz

import "github.com/spec-kit/user-service/internal/domain"

// Authority is a fine-grained capability tag derived from a role.
type Authority string

const (
	AuthorityRoleUser    Authority = "ROLE_USER"
	AuthorityRoleManager Authority = "ROLE_MANAGER"
	AuthorityRoleAdmin   Authority = "ROLE_ADMIN"
	AuthorityReadUsers   Authority = "READ_USERS"
	AuthorityWriteUsers  Authority = "WRITE_USERS"
	AuthorityDeleteUsers Authority = "DELETE_USERS"
	AuthorityUserAccess  Authority = "USER_ACCESS"
	AuthorityManager     Authority = "MANAGER_ACCESS"
	AuthorityAdmin       Authority = "ADMIN_ACCESS"
)

// Authorities maps a role to its capability set. The mapping is fixed: each
// step up the role ladder is a strict superset of capabilities.
func Authorities(role domain.Role) map[Authority]struct{} {
	switch role {
	case domain.RoleAdmin:
		return authoritySet(AuthorityRoleAdmin, AuthorityReadUsers, AuthorityWriteUsers, AuthorityDeleteUsers, AuthorityAdmin)
	case domain.RoleManager:
		return authoritySet(AuthorityRoleManager, AuthorityReadUsers, AuthorityWriteUsers, AuthorityManager)
	case domain.RoleUser:
		return authoritySet(AuthorityRoleUser, AuthorityReadUsers, AuthorityUserAccess)
	default:
		// Unknown roles are rejected at the domain boundary; an empty set here
		// means the caller bypassed ParseRole.
		return map[Authority]struct{}{}
	}
}

func authoritySet(tokens ...Authority) map[Authority]struct{} {
	set := make(map[Authority]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}
