package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/narekgrig/shopfront-backend/api/routes"
	"github.com/narekgrig/shopfront-backend/internal/cart"
	"github.com/narekgrig/shopfront-backend/internal/catalog"
	"github.com/narekgrig/shopfront-backend/internal/identity"
	"github.com/narekgrig/shopfront-backend/internal/notify"
	"github.com/narekgrig/shopfront-backend/internal/orders"
	"github.com/narekgrig/shopfront-backend/internal/users"
	"github.com/narekgrig/shopfront-backend/internal/wishlist"
	"github.com/narekgrig/shopfront-backend/pkg/config"
	"github.com/narekgrig/shopfront-backend/pkg/db"
	"github.com/narekgrig/shopfront-backend/pkg/logger"
	"github.com/narekgrig/shopfront-backend/pkg/metrics"
	"github.com/narekgrig/shopfront-backend/pkg/migrate"
	"github.com/narekgrig/shopfront-backend/pkg/redis"
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

	identityProvider, err := identity.NewHTTPProvider(cfg.Identity)
	if err != nil {
		logg.Error(context.Background(), "failed to create identity provider", err)
		os.Exit(1)
	}
	verifier := identity.NewCached(identityProvider, redisClient, cfg.Identity.CacheTTL)

	notifier, err := notify.New(cfg.Notify, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifier", err)
		os.Exit(1)
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())
	usersRepo := users.NewRepository(dbClient.DB())
	cartRepo := cart.NewRepository(dbClient.DB())
	wishlistRepo := wishlist.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())

	catalogService, err := catalog.NewService(catalogRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	guestStore := cart.NewGuestStore(redisClient, cfg.Redis.GuestCartTTL)
	cartService, err := cart.NewService(cartRepo, guestStore, wishlistRepo, dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	wishlistService, err := wishlist.NewService(wishlistRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create wishlist service", err)
		os.Exit(1)
	}

	reconciler, err := catalog.NewReconciler(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog reconciler", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.Options{
		Tx:         dbClient,
		Reconciler: reconciler,
		Profiles:   orders.GormProfiles{Repo: usersRepo},
		Orders:     orders.GormOrders{Repo: ordersRepo},
		IDs:        orders.GormIDs{},
		Verifier:   verifier,
		Notifier:   notifier,
		Metrics:    metrics.NewOrderMetrics(prometheus.DefaultRegisterer),
		Logger:     logg,
		Attempts:   cfg.Orders.CommitAttempts,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

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
			cfg, logg, dbClient, redisClient,
			catalogService, cartService, wishlistService, ordersService, ordersRepo, usersRepo,
		),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}
