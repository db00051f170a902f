package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-service/internal/api/dto"
	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/service"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

// UsersHandler exposes the user directory and profile endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// Get handles GET /api/secure/users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	user, err := h.users.GetUser(c.Context(), id)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// Update handles PUT /api/secure/users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	update := service.UserUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
	}
	if req.Role != "" {
		role, err := domain.ParseRole(req.Role)
		if err != nil {
			return apperrors.NewValidationError(err.Error(), nil)
		}
		update.Role = &role
	}

	user, err := h.users.UpdateUser(c.Context(), id, update)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// ChangePassword handles PUT /api/secure/users/:id/password.
func (h *UsersHandler) ChangePassword(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "password required")
	}

	if err := h.users.ChangePassword(c.Context(), id, req.Password); err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "password updated"}})
}

// Search handles GET /api/secure/users/search?name=term.
func (h *UsersHandler) Search(c *fiber.Ctx) error {
	term := c.Query("name")
	if term == "" {
		return fiber.NewError(http.StatusBadRequest, "name query parameter required")
	}
	users, err := h.users.SearchUsersByName(c.Context(), term)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponses(users)})
}

// ByEmail handles GET /api/secure/users/email/:email.
func (h *UsersHandler) ByEmail(c *fiber.Ctx) error {
	user, err := h.users.GetUserByEmail(c.Context(), c.Params("email"))
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}

// ByDomain handles GET /api/secure/users/domain/:domain.
func (h *UsersHandler) ByDomain(c *fiber.Ctx) error {
	users, err := h.users.UsersByEmailDomain(c.Context(), c.Params("domain"))
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponses(users)})
}

// Exists handles GET /api/secure/users/exists?email=addr.
func (h *UsersHandler) Exists(c *fiber.Ctx) error {
	email := c.Query("email")
	if email == "" {
		return fiber.NewError(http.StatusBadRequest, "email query parameter required")
	}
	exists, err := h.users.EmailExists(c.Context(), email)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"exists": exists}})
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid id parameter", nil)
	}
	return id, nil
}
