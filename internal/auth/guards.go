package auth

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-service/internal/authz"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

// RequirePolicy evaluates a compiled requirement against the request
// principal. A deny renders 403; an evaluator failure is an internal error,
// never a silent deny.
func RequirePolicy(req authz.Requirement) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, _ := PrincipalFromContext(c)
		decision, err := authz.Authorize(principal, req)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		if decision != authz.Allow {
			return apperrors.NewForbidden("access denied")
		}
		return c.Next()
	}
}

// RequireOwnerOr allows the request when the static requirement passes or when
// the principal owns the record identified by the numeric path parameter.
func RequireOwnerOr(req authz.Requirement, param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseInt(c.Params(param), 10, 64)
		if err != nil {
			return apperrors.NewValidationError("invalid id parameter", nil)
		}

		principal, _ := PrincipalFromContext(c)
		decision, err := authz.Authorize(principal, authz.Or(req, authz.IsOwner(id)))
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		if decision != authz.Allow {
			return apperrors.NewForbidden("access denied")
		}
		return c.Next()
	}
}
