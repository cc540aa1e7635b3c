package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/kapilraj10/pos-storefront/api/routes"
	cartsvc "github.com/kapilraj10/pos-storefront/internal/cart"
	checkoutsvc "github.com/kapilraj10/pos-storefront/internal/checkout"
	"github.com/kapilraj10/pos-storefront/internal/payments"
	"github.com/kapilraj10/pos-storefront/internal/session"
	"github.com/kapilraj10/pos-storefront/pkg/backend"
	"github.com/kapilraj10/pos-storefront/pkg/config"
	"github.com/kapilraj10/pos-storefront/pkg/logger"
	"github.com/kapilraj10/pos-storefront/pkg/metrics"
	"github.com/kapilraj10/pos-storefront/pkg/redis"
	"github.com/kapilraj10/pos-storefront/pkg/wallet"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	backendClient, err := backend.NewClient(cfg.Backend, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create backend client", err)
		os.Exit(1)
	}

	walletClient, err := wallet.NewClient(cfg.Wallet, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet client", err)
		os.Exit(1)
	}

	sessions, err := session.NewManager(redisClient, cfg.Session)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	carts := cartsvc.NewStore()
	snapshots := payments.NewSnapshotStore(redisClient, cfg.Payment.SnapshotTTL)

	checkoutService, err := checkoutsvc.NewService(carts, backendClient, walletClient, snapshots, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	reconciler, err := payments.NewReconciler(walletClient, backendClient, snapshots, carts, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment reconciler", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	janitor := cartsvc.NewJanitor(
		carts,
		metrics.NewCronJobMetrics(registry),
		logg,
		cfg.Cart.SweepInterval,
		cfg.Cart.IdleTTL,
	)
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go janitor.Run(janitorCtx)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting storefront server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			redisClient,
			backendClient,
			sessions,
			carts,
			checkoutService,
			reconciler,
			snapshots,
			registry,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "storefront server stopped unexpectedly", err)
		os.Exit(1)
	}
}
