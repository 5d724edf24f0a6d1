package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/motorsure/brokerage-backend/api/routes"
	"github.com/motorsure/brokerage-backend/internal/agents"
	"github.com/motorsure/brokerage-backend/internal/auth"
	"github.com/motorsure/brokerage-backend/internal/customers"
	"github.com/motorsure/brokerage-backend/internal/dashboard"
	"github.com/motorsure/brokerage-backend/internal/notifications"
	"github.com/motorsure/brokerage-backend/internal/policynumber"
	"github.com/motorsure/brokerage-backend/internal/purchases"
	"github.com/motorsure/brokerage-backend/internal/rates"
	"github.com/motorsure/brokerage-backend/pkg/config"
	"github.com/motorsure/brokerage-backend/pkg/db"
	"github.com/motorsure/brokerage-backend/pkg/logger"
	"github.com/motorsure/brokerage-backend/pkg/migrate"
	"github.com/motorsure/brokerage-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gormDB := dbClient.DB()
	customersRepo := customers.NewRepository(gormDB)
	agentsRepo := agents.NewRepository(gormDB)

	authService, err := auth.NewService(auth.ServiceParams{
		Customers: customersRepo,
		Agents:    agentsRepo,
		Admins:    auth.NewAdminRepository(gormDB),
		JWTConfig: cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	customersService, err := customers.NewService(customers.ServiceParams{
		Repository:     customersRepo,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create customers service", err)
		os.Exit(1)
	}

	agentsService, err := agents.NewService(agents.ServiceParams{Repository: agentsRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create agents service", err)
		os.Exit(1)
	}

	ratesService, err := rates.NewService(rates.ServiceParams{Repository: rates.NewRepository(gormDB)})
	if err != nil {
		logg.Error(context.Background(), "failed to create rates service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	allocator, err := policynumber.NewAllocator(policynumber.NewGormCounterStore())
	if err != nil {
		logg.Error(context.Background(), "failed to create policy number allocator", err)
		os.Exit(1)
	}

	purchasesService, err := purchases.NewService(purchases.ServiceParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: purchases.NewRepository(gormDB),
		Allocator:  allocator,
		Notifier:   notificationsService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create purchases service", err)
		os.Exit(1)
	}

	dashboardService, err := dashboard.NewService(dashboard.ServiceParams{DB: gormDB})
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:        cfg,
			Logger:        logg,
			DBPinger:      dbClient,
			Redis:         redisClient,
			Auth:          authService,
			Register:      registerService,
			Customers:     customersService,
			Agents:        agentsService,
			Rates:         ratesService,
			Purchases:     purchasesService,
			Notifications: notificationsService,
			Dashboard:     dashboardService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
