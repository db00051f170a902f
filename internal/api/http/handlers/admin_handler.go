package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-service/internal/api/dto"
	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/service"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

// AdminHandler exposes administrative user operations and reports.
type AdminHandler struct {
	users *service.UserService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(userService *service.UserService) *AdminHandler {
	return &AdminHandler{users: userService}
}

// List handles GET /api/secure/admin/users.
func (h *AdminHandler) List(c *fiber.Ctx) error {
	users, err := h.users.ListUsers(c.Context())
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponses(users)})
}

// Create handles POST /api/secure/admin/users.
func (h *AdminHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" {
		return fiber.NewError(http.StatusBadRequest, "email required")
	}

	user := &domain.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      domain.Role(req.Role),
	}
	created, err := h.users.CreateUser(c.Context(), user, req.Password)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewUserResponse(created)})
}

// Delete handles DELETE /api/secure/admin/users/:id.
func (h *AdminHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.users.DeleteUser(c.Context(), id); err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "user deleted"}})
}

// Stats handles GET /api/secure/admin/stats.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	total, err := h.users.CountUsers(c.Context())
	if err != nil {
		return apperrors.MapError(err)
	}

	byRole := make(map[string]int64, 3)
	for _, role := range []domain.Role{domain.RoleUser, domain.RoleManager, domain.RoleAdmin} {
		users, err := h.users.UsersByRole(c.Context(), role)
		if err != nil {
			return apperrors.MapError(err)
		}
		byRole[string(role)] = int64(len(users))
	}

	return c.JSON(fiber.Map{"data": dto.StatsResponse{TotalUsers: total, ByRole: byRole}})
}

// SetEnabled handles PUT /api/secure/admin/users/:id/enabled.
func (h *AdminHandler) SetEnabled(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.SetEnabledRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.users.SetUserEnabled(c.Context(), id, req.Enabled); err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"enabled": req.Enabled}})
}

// SetLocked handles PUT /api/secure/admin/users/:id/locked. Unlocking resets
// the failed-attempt counter; there is no time-based auto-unlock.
func (h *AdminHandler) SetLocked(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.SetLockedRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.users.SetUserLocked(c.Context(), id, req.Locked); err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"locked": req.Locked}})
}

// ChangeRole handles PUT /api/secure/admin/users/:id/role.
func (h *AdminHandler) ChangeRole(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.ChangeRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	if err := h.users.ChangeUserRole(c.Context(), id, role); err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"role": role}})
}

// Reports handles GET /api/secure/manager/reports.
func (h *AdminHandler) Reports(c *fiber.Ctx) error {
	total, err := h.users.CountUsers(c.Context())
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"report":      "user-summary",
		"total_users": total,
	}})
}

// ReportsCheck handles GET /api/secure/reports/check. The route guard carries
// the composite policy; reaching the handler means access was allowed.
func (h *AdminHandler) ReportsCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": fiber.Map{"access": "granted"}})
}
