package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civic-report/internal/api/http/handlers"
	"github.com/spec-kit/civic-report/internal/auth"
	"github.com/spec-kit/civic-report/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Auth    *handlers.AuthHandler
	Admin   *handlers.AdminHandler
	Issues  *handlers.IssuesHandler
	Theme   *handlers.ThemeHandler
	Weather *handlers.WeatherHandler
	Gate    *auth.Gate
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	api := app.Group("/api")

	api.Get("/health", cfg.Health.Live)
	api.Get("/health/ready", cfg.Health.Ready)

	api.Get("/theme", cfg.Theme.Get)
	api.Put("/theme", cfg.Theme.Update)

	weather := api.Group("/weather")
	weather.Get("/", cfg.Weather.Current)
	weather.Get("/city", cfg.Weather.ByCity)
	weather.Get("/forecast", cfg.Weather.Forecast)

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Gate.Handle, cfg.Auth.Logout)
	authGroup.Get("/me", cfg.Gate.Handle, cfg.Auth.Me)

	issues := api.Group("/issues")
	issues.Post("/", cfg.Gate.Optional, cfg.Issues.Submit)
	issues.Get("/", cfg.Issues.List)
	issues.Get("/mine", cfg.Gate.Handle, cfg.Issues.Mine)
	issues.Get("/:issueId", cfg.Issues.Get)
	issues.Get("/:issueId/history", cfg.Issues.History)

	admin := api.Group("/admin", cfg.Gate.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Get("/stats", cfg.Admin.Stats)
	admin.Get("/metrics", cfg.Health.Metrics)
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Get("/users/:userId", cfg.Admin.GetUser)
	admin.Put("/role/:userId", cfg.Admin.UpdateRole)
	admin.Delete("/users/:userId", cfg.Admin.DeleteUser)
	admin.Get("/issues", cfg.Admin.ListIssues)
	admin.Get("/issues/:issueId", cfg.Admin.GetIssue)
	admin.Put("/issues/:issueId/status", cfg.Admin.UpdateIssueStatus)
}
