package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/motorsure/brokerage-backend/api/controllers"
	"github.com/motorsure/brokerage-backend/api/middleware"
	"github.com/motorsure/brokerage-backend/internal/agents"
	"github.com/motorsure/brokerage-backend/internal/auth"
	"github.com/motorsure/brokerage-backend/internal/customers"
	"github.com/motorsure/brokerage-backend/internal/dashboard"
	"github.com/motorsure/brokerage-backend/internal/notifications"
	"github.com/motorsure/brokerage-backend/internal/purchases"
	"github.com/motorsure/brokerage-backend/internal/rates"
	"github.com/motorsure/brokerage-backend/pkg/config"
	"github.com/motorsure/brokerage-backend/pkg/enums"
	"github.com/motorsure/brokerage-backend/pkg/logger"
	"github.com/motorsure/brokerage-backend/pkg/redis"
)

// RouterParams carries the wired services for the HTTP surface.
type RouterParams struct {
	Config        *config.Config
	Logger        *logger.Logger
	DBPinger      controllers.Pinger
	Redis         *redis.Client
	Auth          auth.Service
	Register      auth.RegisterService
	Customers     customers.Service
	Agents        agents.Service
	Rates         rates.Service
	Purchases     purchases.Service
	Notifications notifications.Service
	Dashboard     dashboard.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterUserLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DBPinger, p.Redis))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.CustomerLogin(p.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg)).Post("/register", controllers.RegisterCustomer(p.Register, logg))
	})
	r.Route("/api/agent/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AgentLogin(p.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg)).Post("/register", controllers.RegisterAgent(p.Register, logg))
	})
	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AdminLogin(p.Auth, logg))
	})

	// Public catalog lookups. Quoting, the vehicle dropdowns and the agent
	// license card work without an account.
	r.Get("/api/v1/rates/quote", controllers.QuoteRates(p.Rates, logg))
	r.Get("/api/v1/agents/license/{licenseNumber}", controllers.AgentByLicense(p.Agents, logg))
	r.Route("/api/v1/cars", func(r chi.Router) {
		r.Get("/years", controllers.CarYears(p.Rates, logg))
		r.Get("/brands", controllers.CarBrands(p.Rates, logg))
		r.Get("/models", controllers.CarModels(p.Rates, logg))
		r.Get("/sub-models", controllers.CarSubModels(p.Rates, logg))
	})

	// Customer surface.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(enums.ActorRoleCustomer, logg))

		r.Get("/me", controllers.CustomerProfile(p.Customers, logg))
		r.Put("/me", controllers.CustomerUpdateProfile(p.Customers, logg))

		r.Route("/purchases", func(r chi.Router) {
			r.Post("/", controllers.CreatePurchase(p.Purchases, logg))
			r.Get("/", controllers.ListPurchases(p.Purchases, logg))
			r.Get("/{purchaseId}", controllers.GetPurchase(p.Purchases, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(p.Notifications, logg))
			r.Get("/unread", controllers.UnreadNotificationCount(p.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(p.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(p.Notifications, logg))
		})
	})

	// Agent surface.
	r.Route("/api/agent/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(enums.ActorRoleAgent, logg))

		r.Get("/me", controllers.AgentProfile(p.Agents, logg))
		r.Put("/me", controllers.AgentUpdateProfile(p.Agents, logg))

		r.Get("/dashboard", controllers.AgentDashboard(p.Dashboard, logg))

		r.Route("/purchases", func(r chi.Router) {
			r.Post("/", controllers.CreatePurchase(p.Purchases, logg))
			r.Get("/", controllers.ListPurchases(p.Purchases, logg))
			r.Get("/{purchaseId}", controllers.GetPurchase(p.Purchases, logg))
			r.Patch("/{purchaseId}", controllers.UpdatePurchase(p.Purchases, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(p.Notifications, logg))
			r.Get("/unread", controllers.UnreadNotificationCount(p.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(p.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(p.Notifications, logg))
		})
	})

	// Admin surface.
	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(enums.ActorRoleAdmin, logg))

		r.Get("/dashboard", controllers.AdminDashboard(p.Dashboard, logg))

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.AdminListCustomers(p.Customers, logg))
			r.Get("/{customerId}", controllers.AdminGetCustomer(p.Customers, logg))
			r.Patch("/{customerId}", controllers.AdminUpdateCustomer(p.Customers, logg))
			r.Post("/{customerId}/reset-password", controllers.AdminResetCustomerPassword(p.Customers, logg))
		})

		r.Route("/agents", func(r chi.Router) {
			r.Get("/", controllers.AdminListAgents(p.Agents, logg))
			r.Post("/", controllers.RegisterAgent(p.Register, logg))
			r.Get("/{agentId}", controllers.AdminGetAgent(p.Agents, logg))
			r.Patch("/{agentId}", controllers.AdminUpdateAgent(p.Agents, logg))
			r.Post("/{agentId}/verify", controllers.AdminVerifyAgent(p.Agents, logg))
		})

		r.Route("/rates", func(r chi.Router) {
			r.Get("/", controllers.ListRates(p.Rates, logg))
			r.Post("/", controllers.AdminCreateRate(p.Rates, logg))
			r.Get("/{rateId}", controllers.GetRate(p.Rates, logg))
			r.Patch("/{rateId}", controllers.AdminUpdateRate(p.Rates, logg))
			r.Delete("/{rateId}", controllers.AdminDeleteRate(p.Rates, logg))
		})

		r.Route("/purchases", func(r chi.Router) {
			r.Post("/", controllers.CreatePurchase(p.Purchases, logg))
			r.Get("/", controllers.ListPurchases(p.Purchases, logg))
			r.Get("/{purchaseId}", controllers.GetPurchase(p.Purchases, logg))
			r.Patch("/{purchaseId}", controllers.UpdatePurchase(p.Purchases, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(p.Notifications, logg))
			r.Get("/unread", controllers.UnreadNotificationCount(p.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(p.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(p.Notifications, logg))
		})
	})

	return r
}
