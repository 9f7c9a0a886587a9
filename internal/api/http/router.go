package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/authz"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	Catalogs       *handlers.CatalogsHandler
	Dashboard      *handlers.DashboardHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
	Policy         *authz.Policy
	LoginLimiter   fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Index)
	app.Get("/health", cfg.Health.Health)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	if cfg.LoginLimiter != nil {
		authGroup.Post("/login", cfg.LoginLimiter, cfg.Auth.Login)
	} else {
		authGroup.Post("/login", cfg.Auth.Login)
	}
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	// Authentication is attached per route so unknown paths under /api stay 404.
	guarded := func(resource authz.Resource, action authz.Action, handler fiber.Handler) []fiber.Handler {
		return []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequirePermission(cfg.Policy, resource, action), handler}
	}

	api.Get("/tickets", guarded(authz.ResourceTicket, authz.ActionList, cfg.Tickets.ListTickets)...)
	api.Post("/tickets", guarded(authz.ResourceTicket, authz.ActionCreate, cfg.Tickets.CreateTicket)...)
	api.Get("/tickets/:id", guarded(authz.ResourceTicket, authz.ActionRead, cfg.Tickets.GetTicket)...)
	api.Put("/tickets/:id", guarded(authz.ResourceTicket, authz.ActionUpdate, cfg.Tickets.UpdateTicket)...)
	api.Delete("/tickets/:id", guarded(authz.ResourceTicket, authz.ActionDelete, cfg.Tickets.DeleteTicket)...)
	api.Put("/tickets/:id/close", guarded(authz.ResourceTicket, authz.ActionClose, cfg.Tickets.CloseTicket)...)
	api.Get("/tickets/:id/comments", guarded(authz.ResourceComment, authz.ActionList, cfg.Comments.ListComments)...)
	api.Post("/tickets/:id/comments", guarded(authz.ResourceComment, authz.ActionCreate, cfg.Comments.AddComment)...)
	api.Get("/tickets/:id/history", guarded(authz.ResourceHistory, authz.ActionRead, cfg.Comments.History)...)

	catalog := func(handler fiber.Handler) []fiber.Handler {
		return guarded(authz.ResourceCatalog, authz.ActionRead, handler)
	}
	api.Get("/categorias", catalog(cfg.Catalogs.List(domain.CatalogCategory))...)
	api.Get("/estados", catalog(cfg.Catalogs.List(domain.CatalogState))...)
	api.Get("/criticidades", catalog(cfg.Catalogs.List(domain.CatalogCriticality))...)
	api.Get("/ubicaciones", catalog(cfg.Catalogs.List(domain.CatalogLocation))...)
	api.Get("/roles", catalog(cfg.Catalogs.Roles)...)

	api.Get("/dashboard/stats", guarded(authz.ResourceDashboard, authz.ActionRead, cfg.Dashboard.Stats)...)

	api.Get("/users", guarded(authz.ResourceUser, authz.ActionList, cfg.Users.ListUsers)...)
	api.Get("/users/:id", guarded(authz.ResourceUser, authz.ActionRead, cfg.Users.GetUser)...)
	api.Put("/users/:id", guarded(authz.ResourceUser, authz.ActionUpdate, cfg.Users.UpdateUser)...)
	api.Delete("/users/:id", guarded(authz.ResourceUser, authz.ActionDelete, cfg.Users.DeleteUser)...)
}
