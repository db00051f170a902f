package authz

import (
	"fmt"

	"github.com/spec-kit/user-service/internal/domain"
)

// Decision is the outcome of evaluating a requirement against a principal.
// Deny is a first-class value: an evaluator failure is returned as an error
// and must never be collapsed into a Deny.
type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "ALLOW"
	}
	return "DENY"
}

// Requirement is a compiled policy predicate over a principal. Requirements
// are composed once at endpoint-definition time, not parsed per request.
type Requirement interface {
	Evaluate(p *Principal) (bool, error)
}

// Authorize evaluates a requirement and returns the access decision.
func Authorize(p *Principal, req Requirement) (Decision, error) {
	ok, err := req.Evaluate(p)
	if err != nil {
		return Deny, fmt.Errorf("authorize: %w", err)
	}
	if ok {
		return Allow, nil
	}
	return Deny, nil
}

type requirementFunc func(p *Principal) (bool, error)

func (f requirementFunc) Evaluate(p *Principal) (bool, error) { return f(p) }

// IsAuthenticated allows any non-nil principal.
func IsAuthenticated() Requirement {
	return requirementFunc(func(p *Principal) (bool, error) {
		return p != nil, nil
	})
}

// HasRole allows principals holding exactly the given role.
func HasRole(role domain.Role) Requirement {
	return requirementFunc(func(p *Principal) (bool, error) {
		return p != nil && p.Role == role, nil
	})
}

// HasAnyRole allows principals holding one of the given roles.
func HasAnyRole(roles ...domain.Role) Requirement {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return requirementFunc(func(p *Principal) (bool, error) {
		if p == nil {
			return false, nil
		}
		_, ok := allowed[p.Role]
		return ok, nil
	})
}

// IsOwner allows the principal whose resolved user ID matches the target
// record. Ownership is identity-based, not email-based, so renames and email
// case differences cannot widen access.
func IsOwner(userID int64) Requirement {
	return requirementFunc(func(p *Principal) (bool, error) {
		return p != nil && p.UserID == userID, nil
	})
}

// Predicate wraps an injected boolean check over the principal. The name is
// used in evaluation errors.
func Predicate(name string, fn func(p *Principal) (bool, error)) Requirement {
	return requirementFunc(func(p *Principal) (bool, error) {
		ok, err := fn(p)
		if err != nil {
			return false, fmt.Errorf("predicate %s: %w", name, err)
		}
		return ok, nil
	})
}

// Or evaluates left first and short-circuits on allow.
func Or(left, right Requirement) Requirement {
	return requirementFunc(func(p *Principal) (bool, error) {
		ok, err := left.Evaluate(p)
		if err != nil || ok {
			return ok, err
		}
		return right.Evaluate(p)
	})
}

// And evaluates left first and short-circuits on deny.
func And(left, right Requirement) Requirement {
	return requirementFunc(func(p *Principal) (bool, error) {
		ok, err := left.Evaluate(p)
		if err != nil || !ok {
			return ok, err
		}
		return right.Evaluate(p)
	})
}
