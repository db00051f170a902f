package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/authz"
	"github.com/spec-kit/user-service/internal/domain"
)

// HealthRoutes exposes liveness and readiness probes.
type HealthRoutes interface {
	Live(c *fiber.Ctx) error
	Ready(c *fiber.Ctx) error
}

// AuthRoutes exposes login, logout and principal introspection.
type AuthRoutes interface {
	Login(c *fiber.Ctx) error
	Logout(c *fiber.Ctx) error
	Me(c *fiber.Ctx) error
	ActiveSession(c *fiber.Ctx) error
}

// UserRoutes exposes the user directory and profile endpoints.
type UserRoutes interface {
	Get(c *fiber.Ctx) error
	Update(c *fiber.Ctx) error
	ChangePassword(c *fiber.Ctx) error
	Search(c *fiber.Ctx) error
	ByEmail(c *fiber.Ctx) error
	ByDomain(c *fiber.Ctx) error
	Exists(c *fiber.Ctx) error
}

// AdminRoutes exposes user administration and reporting endpoints.
type AdminRoutes interface {
	List(c *fiber.Ctx) error
	Create(c *fiber.Ctx) error
	Delete(c *fiber.Ctx) error
	Stats(c *fiber.Ctx) error
	SetEnabled(c *fiber.Ctx) error
	SetLocked(c *fiber.Ctx) error
	ChangeRole(c *fiber.Ctx) error
	Reports(c *fiber.Ctx) error
	ReportsCheck(c *fiber.Ctx) error
}

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         HealthRoutes
	Auth           AuthRoutes
	Users          UserRoutes
	Admin          AdminRoutes
	AuthMiddleware fiber.Handler
	// CanAccessReports is the injected predicate for the composite report
	// policy.
	CanAccessReports func(p *authz.Principal) (bool, error)
}

// RegisterRoutes wires HTTP routes. Each protected route carries its own policy
// requirement, compiled once here rather than interpreted per request. Policies
// are attached per route, never on a group prefix: /admin/stats admits
// managers while the rest of /admin is admin-only, and a prefix guard would
// shadow the stats policy.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)
	app.Post("/auth/logout", cfg.AuthMiddleware, cfg.Auth.Logout)

	secure := app.Group("/api/secure", cfg.AuthMiddleware)

	secure.Get("/me", auth.RequirePolicy(authz.IsAuthenticated()), cfg.Auth.Me)

	adminOnly := authz.HasRole(domain.RoleAdmin)
	adminOrManager := authz.HasAnyRole(domain.RoleAdmin, domain.RoleManager)

	admin := secure.Group("/admin")
	admin.Get("/users", auth.RequirePolicy(adminOnly), cfg.Admin.List)
	admin.Post("/users", auth.RequirePolicy(adminOnly), cfg.Admin.Create)
	admin.Delete("/users/:id", auth.RequirePolicy(adminOnly), cfg.Admin.Delete)
	admin.Put("/users/:id/enabled", auth.RequirePolicy(adminOnly), cfg.Admin.SetEnabled)
	admin.Put("/users/:id/locked", auth.RequirePolicy(adminOnly), cfg.Admin.SetLocked)
	admin.Put("/users/:id/role", auth.RequirePolicy(adminOnly), cfg.Admin.ChangeRole)
	admin.Get("/stats", auth.RequirePolicy(adminOrManager), cfg.Admin.Stats)

	users := secure.Group("/users")
	users.Get("/search", auth.RequirePolicy(authz.IsAuthenticated()), cfg.Users.Search)
	users.Get("/exists", auth.RequirePolicy(authz.IsAuthenticated()), cfg.Users.Exists)
	users.Get("/email/:email", auth.RequirePolicy(adminOrManager), cfg.Users.ByEmail)
	users.Get("/domain/:domain", auth.RequirePolicy(adminOrManager), cfg.Users.ByDomain)
	users.Get("/:id", auth.RequireOwnerOr(adminOrManager, "id"), cfg.Users.Get)
	users.Put("/:id", auth.RequireOwnerOr(adminOnly, "id"), cfg.Users.Update)
	users.Put("/:id/password", auth.RequireOwnerOr(adminOnly, "id"), cfg.Users.ChangePassword)
	users.Get("/:id/session", auth.RequireOwnerOr(adminOnly, "id"), cfg.Auth.ActiveSession)

	secure.Get("/manager/reports", auth.RequirePolicy(adminOrManager), cfg.Admin.Reports)

	reportsPolicy := authz.Or(
		adminOnly,
		authz.And(
			authz.HasRole(domain.RoleManager),
			authz.Predicate("can_access_reports", cfg.CanAccessReports),
		),
	)
	secure.Get("/reports/check", auth.RequirePolicy(reportsPolicy), cfg.Admin.ReportsCheck)
}
