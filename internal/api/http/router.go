package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/debtor-registry/internal/api/http/handlers"
	"github.com/spec-kit/debtor-registry/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Requests       *handlers.RequestsHandler
	Admin          *handlers.AdminHandler
	Debtors        *handlers.DebtorsHandler
	Documents      *handlers.DocumentsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	// The canonical table is the public face of the service.
	app.Get("/debtors", cfg.Debtors.List)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	session := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireUser())
	session.Post("/logout", cfg.Users.Logout)
	session.Get("/me", cfg.Users.Me)
	session.Post("/password/change", cfg.Users.ChangePassword)

	profile := app.Group("/profile", cfg.AuthMiddleware.Handle, auth.RequireUser())
	profile.Put("/telegram", cfg.Users.UpdateTelegram)
	profile.Put("/email", cfg.Users.UpdateEmail)
	profile.Put("/name", cfg.Users.UpdateFullName)

	requests := app.Group("/requests", cfg.AuthMiddleware.Handle, auth.RequireUser())
	requests.Post("", cfg.Requests.Submit)
	requests.Get("", cfg.Requests.List)
	requests.Get("/:id", cfg.Requests.Get)
	requests.Put("/:id", cfg.Requests.Edit)
	requests.Delete("/:id", cfg.Requests.Delete)
	requests.Post("/:id/request-edit", cfg.Requests.RequestEdit)
	requests.Post("/:id/request-deletion", cfg.Requests.RequestDeletion)

	docs := app.Group("/documents", cfg.AuthMiddleware.Handle, auth.RequireUser())
	docs.Post("", cfg.Documents.Upload)
	docs.Get("/:ref", cfg.Documents.Download)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireOperator())
	admin.Get("/requests", cfg.Admin.ListRequests)
	admin.Get("/requests/:id", cfg.Admin.GetRequest)
	admin.Post("/requests/review", cfg.Admin.Review)
	admin.Post("/requests/approve", cfg.Admin.Approve)
	admin.Post("/requests/reject", cfg.Admin.Reject)
	admin.Post("/requests/confirm-deletion", cfg.Admin.ConfirmDeletion)
	admin.Post("/requests/approve-update", cfg.Admin.MarkForUpdate)
	admin.Post("/requests/confirm-update", cfg.Admin.ConfirmUpdate)
	admin.Post("/requests/reject-update", cfg.Admin.RejectUpdate)
}
