package http

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/authz"
	"github.com/spec-kit/user-service/internal/domain"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

// stubRoutes satisfies every route interface and answers 200, so a response
// status other than 200 always comes from the route's policy guard.
type stubRoutes struct{}

func okStub(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }

func (stubRoutes) Live(c *fiber.Ctx) error  { return okStub(c) }
func (stubRoutes) Ready(c *fiber.Ctx) error { return okStub(c) }

func (stubRoutes) Login(c *fiber.Ctx) error         { return okStub(c) }
func (stubRoutes) Logout(c *fiber.Ctx) error        { return okStub(c) }
func (stubRoutes) Me(c *fiber.Ctx) error            { return okStub(c) }
func (stubRoutes) ActiveSession(c *fiber.Ctx) error { return okStub(c) }

func (stubRoutes) Get(c *fiber.Ctx) error            { return okStub(c) }
func (stubRoutes) Update(c *fiber.Ctx) error         { return okStub(c) }
func (stubRoutes) ChangePassword(c *fiber.Ctx) error { return okStub(c) }
func (stubRoutes) Search(c *fiber.Ctx) error         { return okStub(c) }
func (stubRoutes) ByEmail(c *fiber.Ctx) error        { return okStub(c) }
func (stubRoutes) ByDomain(c *fiber.Ctx) error       { return okStub(c) }
func (stubRoutes) Exists(c *fiber.Ctx) error         { return okStub(c) }

func (stubRoutes) List(c *fiber.Ctx) error         { return okStub(c) }
func (stubRoutes) Create(c *fiber.Ctx) error       { return okStub(c) }
func (stubRoutes) Delete(c *fiber.Ctx) error       { return okStub(c) }
func (stubRoutes) Stats(c *fiber.Ctx) error        { return okStub(c) }
func (stubRoutes) SetEnabled(c *fiber.Ctx) error   { return okStub(c) }
func (stubRoutes) SetLocked(c *fiber.Ctx) error    { return okStub(c) }
func (stubRoutes) ChangeRole(c *fiber.Ctx) error   { return okStub(c) }
func (stubRoutes) Reports(c *fiber.Ctx) error      { return okStub(c) }
func (stubRoutes) ReportsCheck(c *fiber.Ctx) error { return okStub(c) }

// routedApp registers the real route map with stub handlers and an auth
// middleware replaced by one installing the given principal directly.
func routedApp(principal *authz.Principal) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"code": domainErr.Code})
		},
	})

	RegisterRoutes(app, RouteConfig{
		Health: stubRoutes{},
		Auth:   stubRoutes{},
		Users:  stubRoutes{},
		Admin:  stubRoutes{},
		AuthMiddleware: func(c *fiber.Ctx) error {
			if principal == nil {
				return apperrors.NewUnauthorized("missing authorization header")
			}
			auth.SetPrincipal(c, principal)
			return c.Next()
		},
		CanAccessReports: func(p *authz.Principal) (bool, error) {
			return p != nil && (p.Role == domain.RoleManager || p.Role == domain.RoleAdmin), nil
		},
	})
	return app
}

func principalAs(id int64, role domain.Role) *authz.Principal {
	return authz.NewPrincipal(&domain.User{ID: id, Email: "p@example.com", Role: role})
}

func TestRoutePolicies(t *testing.T) {
	asUser := principalAs(7, domain.RoleUser)
	otherUser := principalAs(8, domain.RoleUser)
	asManager := principalAs(20, domain.RoleManager)
	asAdmin := principalAs(30, domain.RoleAdmin)

	tests := []struct {
		name       string
		method     string
		path       string
		principal  *authz.Principal
		wantStatus int
	}{
		{"stats allows admin", "GET", "/api/secure/admin/stats", asAdmin, fiber.StatusOK},
		{"stats allows manager", "GET", "/api/secure/admin/stats", asManager, fiber.StatusOK},
		{"stats denies user", "GET", "/api/secure/admin/stats", asUser, fiber.StatusForbidden},

		{"admin list allows admin", "GET", "/api/secure/admin/users", asAdmin, fiber.StatusOK},
		{"admin list denies manager", "GET", "/api/secure/admin/users", asManager, fiber.StatusForbidden},
		{"admin create denies manager", "POST", "/api/secure/admin/users", asManager, fiber.StatusForbidden},
		{"admin delete allows admin", "DELETE", "/api/secure/admin/users/9", asAdmin, fiber.StatusOK},
		{"admin delete denies manager", "DELETE", "/api/secure/admin/users/9", asManager, fiber.StatusForbidden},
		{"admin lock denies manager", "PUT", "/api/secure/admin/users/9/locked", asManager, fiber.StatusForbidden},
		{"admin role change allows admin", "PUT", "/api/secure/admin/users/9/role", asAdmin, fiber.StatusOK},

		{"me allows any principal", "GET", "/api/secure/me", asUser, fiber.StatusOK},
		{"me rejects anonymous", "GET", "/api/secure/me", nil, fiber.StatusUnauthorized},

		{"profile read allows owner", "GET", "/api/secure/users/7", asUser, fiber.StatusOK},
		{"profile read denies other user", "GET", "/api/secure/users/7", otherUser, fiber.StatusForbidden},
		{"profile read allows manager", "GET", "/api/secure/users/7", asManager, fiber.StatusOK},

		{"profile update allows owner", "PUT", "/api/secure/users/7", asUser, fiber.StatusOK},
		{"profile update denies manager", "PUT", "/api/secure/users/7", asManager, fiber.StatusForbidden},
		{"profile update allows admin", "PUT", "/api/secure/users/7", asAdmin, fiber.StatusOK},

		{"password change allows owner", "PUT", "/api/secure/users/7/password", asUser, fiber.StatusOK},
		{"password change denies other user", "PUT", "/api/secure/users/7/password", otherUser, fiber.StatusForbidden},
		{"password change allows admin", "PUT", "/api/secure/users/7/password", asAdmin, fiber.StatusOK},

		{"session view allows owner", "GET", "/api/secure/users/7/session", asUser, fiber.StatusOK},
		{"session view denies manager", "GET", "/api/secure/users/7/session", asManager, fiber.StatusForbidden},
		{"session view allows admin", "GET", "/api/secure/users/7/session", asAdmin, fiber.StatusOK},

		{"email lookup denies user", "GET", "/api/secure/users/email/a@example.com", asUser, fiber.StatusForbidden},
		{"email lookup allows manager", "GET", "/api/secure/users/email/a@example.com", asManager, fiber.StatusOK},
		{"domain lookup allows admin", "GET", "/api/secure/users/domain/example.com", asAdmin, fiber.StatusOK},
		{"search allows user", "GET", "/api/secure/users/search?name=smith", asUser, fiber.StatusOK},
		{"exists allows user", "GET", "/api/secure/users/exists?email=a@example.com", asUser, fiber.StatusOK},

		{"manager reports denies user", "GET", "/api/secure/manager/reports", asUser, fiber.StatusForbidden},
		{"manager reports allows manager", "GET", "/api/secure/manager/reports", asManager, fiber.StatusOK},

		{"reports check denies user", "GET", "/api/secure/reports/check", asUser, fiber.StatusForbidden},
		{"reports check allows manager via predicate", "GET", "/api/secure/reports/check", asManager, fiber.StatusOK},
		{"reports check allows admin", "GET", "/api/secure/reports/check", asAdmin, fiber.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := routedApp(tc.principal)

			resp, err := app.Test(httptest.NewRequest(tc.method, tc.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, resp.StatusCode)
		})
	}
}
