package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/user-service/internal/authz"
	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/repository"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

const principalKey = "auth_principal"
const sessionKey = "auth_session"

// Middleware validates bearer tokens, checks the backing session is still the
// user's current one, and loads the request principal.
type Middleware struct {
	tokens   *TokenManager
	users    repository.UserRepository
	sessions repository.SessionRepository
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, users repository.UserRepository, sessions repository.SessionRepository) *Middleware {
	return &Middleware{tokens: tokens, users: users, sessions: sessions}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	session, err := m.sessions.GetByID(c.Context(), claims.SessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("session not found")
		}
		return apperrors.MapError(err)
	}
	if !session.Valid {
		// Superseded by a newer login or explicitly logged out.
		return apperrors.NewUnauthorized("session no longer valid")
	}

	userID, err := claims.UserID()
	if err != nil {
		return apperrors.NewUnauthorized("invalid token subject")
	}

	user, err := m.users.GetByID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}
	if _, err := domain.ParseRole(string(user.Role)); err != nil {
		return apperrors.NewIntegrityError("user has unrecognized role", err)
	}
	if !user.Enabled {
		return apperrors.NewUnauthorized("account disabled")
	}
	if !user.AccountNonLocked {
		return apperrors.NewUnauthorized("account locked")
	}

	SetPrincipal(c, authz.NewPrincipal(user))
	SetSession(c, session)
	return c.Next()
}

// SetPrincipal stores the authenticated caller on the request context.
func SetPrincipal(c *fiber.Ctx, principal *authz.Principal) {
	c.Locals(principalKey, principal)
}

// SetSession stores the caller's session record on the request context.
func SetSession(c *fiber.Ctx, session *domain.Session) {
	c.Locals(sessionKey, session)
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*authz.Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*authz.Principal)
	return principal, ok
}

// SessionFromContext retrieves the caller's session record.
func SessionFromContext(c *fiber.Ctx) (*domain.Session, bool) {
	val := c.Locals(sessionKey)
	if val == nil {
		return nil, false
	}
	session, ok := val.(*domain.Session)
	return session, ok
}
