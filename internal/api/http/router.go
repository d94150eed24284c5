package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/helpline-io/support-portal/internal/api/http/handlers"
	"github.com/helpline-io/support-portal/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Account        *handlers.AccountHandler
	AppUsers       *handlers.AppUsersHandler
	ServicePlans   *handlers.ServicePlansHandler
	SupportTickets *handlers.SupportTicketsHandler
	Emails         *handlers.EmailsHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.AuthMiddleware
	// Metrics is served at MetricsPath when set.
	Metrics     nethttp.Handler
	MetricsPath string
}

// RegisterRoutes wires the routing table. Static segments such as /me are
// registered before the :id routes they would otherwise collide with.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(cfg.Metrics))
	}

	app.Post("/account/register", cfg.Account.Register)
	app.Post("/connect/token", cfg.Account.Token)
	app.Post("/account/password/change", cfg.AuthMiddleware.Handle, cfg.Account.ChangePassword)

	api := app.Group("/api", cfg.AuthMiddleware.Handle)
	admin := auth.RequireAdmin()
	staff := auth.RequireStaff()

	users := api.Group("/app-users")
	users.Get("/me", cfg.AppUsers.Me)
	users.Get("/", admin, cfg.AppUsers.List)
	users.Get("/:id", cfg.AppUsers.Get)
	users.Put("/:id", admin, cfg.AppUsers.Update)
	users.Delete("/:id", admin, cfg.AppUsers.Delete)

	plans := api.Group("/service-plans")
	plans.Get("/subscriptions/me", cfg.ServicePlans.MySubscriptions)
	plans.Get("/", cfg.ServicePlans.List)
	plans.Post("/", admin, cfg.ServicePlans.Create)
	plans.Get("/:id", cfg.ServicePlans.Get)
	plans.Put("/:id", admin, cfg.ServicePlans.Update)
	plans.Delete("/:id", admin, cfg.ServicePlans.Delete)
	plans.Post("/:id/subscribe", cfg.ServicePlans.Subscribe)

	tickets := api.Group("/support-tickets")
	tickets.Get("/", cfg.SupportTickets.List)
	tickets.Post("/", cfg.SupportTickets.Create)
	tickets.Get("/:id", cfg.SupportTickets.Get)
	tickets.Put("/:id", cfg.SupportTickets.Update)
	tickets.Delete("/:id", admin, cfg.SupportTickets.Delete)
	tickets.Post("/:id/assign", staff, cfg.SupportTickets.Assign)
	tickets.Get("/:id/comments", cfg.SupportTickets.Comments)
	tickets.Get("/:id/reports", cfg.SupportTickets.Reports)
	api.Get("/ticket-comments/:id", cfg.SupportTickets.GetComment)

	emails := api.Group("/emails")
	emails.Post("/test", cfg.Emails.SendTest)
	emails.Get("/", admin, cfg.Emails.List)
	emails.Get("/:id", cfg.Emails.Get)

	api.Post("/reports", cfg.Reports.Generate)
	api.Get("/reports/:id", cfg.Reports.Get)
	api.Get("/report-templates", cfg.Reports.ListTemplates)
	api.Post("/report-templates", admin, cfg.Reports.CreateTemplate)
}
