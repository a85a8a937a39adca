package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	appAccount "github.com/shopcore/shopcore/internal/application/account"
	appCart "github.com/shopcore/shopcore/internal/application/cart"
	appInventory "github.com/shopcore/shopcore/internal/application/inventory"
	appProduct "github.com/shopcore/shopcore/internal/application/product"
	"github.com/shopcore/shopcore/internal/config"
	"github.com/shopcore/shopcore/internal/domain/authz"
	domainProduct "github.com/shopcore/shopcore/internal/domain/product"
	"github.com/shopcore/shopcore/internal/infrastructure/eventbus"
	httptransport "github.com/shopcore/shopcore/internal/infrastructure/http"
	"github.com/shopcore/shopcore/internal/infrastructure/id"
	"github.com/shopcore/shopcore/internal/infrastructure/memory"
	"github.com/shopcore/shopcore/internal/infrastructure/observability/oteltrace"
	"github.com/shopcore/shopcore/internal/infrastructure/observability/prometrics"
	"github.com/shopcore/shopcore/internal/infrastructure/observability/telemetry"
	"github.com/shopcore/shopcore/internal/infrastructure/observability/zaplogger"
	"github.com/shopcore/shopcore/internal/infrastructure/redisstock"
	"github.com/shopcore/shopcore/internal/observability"
)

func main() {
	cfg, err := config.Load(os.Getenv("SHOPCORE_CONFIG"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	baseLogger := zaplogger.New(
		observability.F("service", cfg.Service),
		observability.F("env", cfg.Env),
	)
	if syncer, ok := baseLogger.(interface{ Sync() error }); ok {
		defer func() { _ = syncer.Sync() }()
	}

	registry := prometrics.New("", "")
	counters := map[observability.MetricKey]observability.Counter{
		observability.MUsecaseRequests: registry.Counter(
			string(observability.MUsecaseRequests),
			"Total number of use case invocations.",
			"use_case", "outcome",
		),
		observability.MHTTPRequests: registry.Counter(
			string(observability.MHTTPRequests),
			"Total number of HTTP requests.",
			"method", "route", "status",
		),
		observability.MStockReservations: registry.Counter(
			string(observability.MStockReservations),
			"Count of stock reservation attempts.",
			"op", "outcome",
		),
		observability.MCartConflictRetries: registry.Counter(
			string(observability.MCartConflictRetries),
			"Count of cart mutations retried after a version conflict.",
			"use_case",
		),
	}
	histograms := map[observability.MetricKey]observability.Histogram{
		observability.MUsecaseDuration: registry.Histogram(
			string(observability.MUsecaseDuration),
			"Duration of use case execution in seconds.",
			nil,
			"use_case",
		),
		observability.MHTTPRequestDuration: registry.Histogram(
			string(observability.MHTTPRequestDuration),
			"Duration of HTTP requests in seconds.",
			nil,
			"method", "route", "status",
		),
	}
	tel := telemetry.New(oteltrace.New(cfg.Service), baseLogger, counters, histograms)

	productRepo := memory.NewProductRepository()
	cartRepo := memory.NewCartRepository()
	actorRepo := memory.NewActorRepository()
	idGenerator := id.NewUUIDGenerator()

	var stocks domainProduct.StockStore = productRepo
	if cfg.Store.Backend == config.BackendRedis {
		client := redis.NewClient(&redis.Options{Addr: cfg.Store.RedisAddr})
		defer func() { _ = client.Close() }()
		stocks = redisstock.New(client)
	}

	var engineOpts []authz.Option
	if cfg.Authz.PlatformUpdateExemption {
		engineOpts = append(engineOpts, authz.WithPlatformUpdateExemption())
	}
	engine := authz.NewEngine(authz.DefaultTable(), engineOpts...)

	bus := eventbus.New(tel.Logger())
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	guard := appInventory.NewGuard(stocks, tel)
	cartService := appCart.NewService(
		cartRepo, productRepo, guard, engine, idGenerator, tel,
		appCart.WithMutateRetries(cfg.Cart.MutateRetries),
	)
	productService := appProduct.NewService(productRepo, stocks, engine, idGenerator, bus, tel)
	accountService := appAccount.NewService(actorRepo, engine, tel)

	pruneWorker := appCart.NewWorker(bus, cartService, tel)
	pruneWorker.Start()

	handler := httptransport.NewHandler(productService, cartService, accountService)
	mw := httptransport.ObservabilityMiddleware(tel)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", mw(handler.Router()))

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	systemLogger := tel.Logger()
	go func() {
		systemLogger.Info("http_server_start",
			observability.F("addr", server.Addr),
			observability.F("store_backend", cfg.Store.Backend),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			systemLogger.Error("http_server_error",
				observability.F("error", err.Error()),
			)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("http_server_shutdown_error",
			observability.F("error", err.Error()),
		)
	} else {
		systemLogger.Info("http_server_stopped")
	}
}
