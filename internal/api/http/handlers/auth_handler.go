package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-service/internal/api/dto"
	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/service"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

// AuthHandler exposes login/logout and the current-principal endpoint.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	result, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return apperrors.MapError(err)
	}

	switch result.Result {
	case service.VerifySuccess:
	case service.VerifyNoPassword:
		return apperrors.NewIntegrityError("user has no password set", nil)
	case service.VerifyAccountDisabled:
		return apperrors.NewUnauthorized("account disabled")
	case service.VerifyAccountLocked:
		return apperrors.NewUnauthorized("account locked")
	default:
		// USER_NOT_FOUND and BAD_PASSWORD collapse into one message so the
		// response never reveals whether the account exists.
		return apperrors.NewUnauthorized("invalid credentials")
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewUserResponse(result.User),
			"auth": dto.AuthResponse{Token: result.Token, ExpiresAt: result.ExpiresAt},
		},
	})
}

// Logout handles POST /auth/logout. It invalidates exactly the caller's own
// session.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	session, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("no active session")
	}
	if err := h.auth.Logout(c.Context(), session.ID); err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "logged out"}})
}

// ActiveSession handles GET /api/secure/users/:id/session. It reports the
// user's single current session or 404 when none is valid.
func (h *AuthHandler) ActiveSession(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("invalid id parameter", nil)
	}

	session, err := h.auth.ActiveSession(c.Context(), id)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewSessionResponse(session)})
}

// Me handles GET /api/secure/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("no principal")
	}

	authorities := make([]string, 0, len(principal.Authorities))
	for token := range principal.Authorities {
		authorities = append(authorities, string(token))
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user_id":     principal.UserID,
			"email":       principal.Email,
			"role":        principal.Role,
			"authorities": authorities,
		},
	})
}
