package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ivdgroup/medlab-backend/api/routes"
	"github.com/ivdgroup/medlab-backend/internal/admin"
	authsvc "github.com/ivdgroup/medlab-backend/internal/auth"
	"github.com/ivdgroup/medlab-backend/internal/bulkorder"
	cartsvc "github.com/ivdgroup/medlab-backend/internal/cart"
	"github.com/ivdgroup/medlab-backend/internal/catalog"
	"github.com/ivdgroup/medlab-backend/internal/exhibitions"
	"github.com/ivdgroup/medlab-backend/internal/invoice"
	"github.com/ivdgroup/medlab-backend/internal/mailer"
	"github.com/ivdgroup/medlab-backend/internal/orders"
	"github.com/ivdgroup/medlab-backend/internal/users"
	"github.com/ivdgroup/medlab-backend/pkg/config"
	"github.com/ivdgroup/medlab-backend/pkg/db"
	"github.com/ivdgroup/medlab-backend/pkg/logger"
	"github.com/ivdgroup/medlab-backend/pkg/metrics"
	"github.com/ivdgroup/medlab-backend/pkg/migrate"
	"github.com/ivdgroup/medlab-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

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

	mail, err := mailer.New(cfg.SMTP, cfg.Orders, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create mailer", err)
		os.Exit(1)
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())
	userRepo := users.NewRepository(dbClient.DB())

	catalogService, err := catalog.NewService(catalogRepo, cfg.Catalog)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	exhibitionService, err := exhibitions.NewService(exhibitions.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create exhibition service", err)
		os.Exit(1)
	}

	authService, err := authsvc.NewService(userRepo, redisClient, mail, logg, cfg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	cartStore, err := cartsvc.NewRedisStore(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart store", err)
		os.Exit(1)
	}
	cartService, err := cartsvc.NewService(cartStore, catalogRepo, orderRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orderRepo, dbClient, catalogRepo, invoice.NewGenerator(), mail, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	bulkOrderService, err := bulkorder.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create bulk order service", err)
		os.Exit(1)
	}

	adminService, err := admin.NewService(catalogRepo, orderRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create admin service", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg, logg, dbClient, redisClient, httpMetrics,
			catalogService, exhibitionService, authService,
			cartService, orderService, bulkOrderService, adminService,
		),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithFields(ctx, map[string]any{"signal": sig.String()}), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
