package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Zhima-Mochi/minishop-pos/internal/application/audit"
	appInventory "github.com/Zhima-Mochi/minishop-pos/internal/application/inventory"
	appReturns "github.com/Zhima-Mochi/minishop-pos/internal/application/returns"
	appSale "github.com/Zhima-Mochi/minishop-pos/internal/application/sale"
	"github.com/Zhima-Mochi/minishop-pos/internal/domain/transaction"
	"github.com/Zhima-Mochi/minishop-pos/internal/infrastructure/config"
	"github.com/Zhima-Mochi/minishop-pos/internal/infrastructure/id"
	"github.com/Zhima-Mochi/minishop-pos/internal/infrastructure/memory"
	infraobs "github.com/Zhima-Mochi/minishop-pos/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/minishop-pos/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/minishop-pos/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/minishop-pos/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/minishop-pos/internal/infrastructure/outbox"
	"github.com/Zhima-Mochi/minishop-pos/internal/pkg/logging"
	clipresentation "github.com/Zhima-Mochi/minishop-pos/internal/presentation/cli"
	httppresentation "github.com/Zhima-Mochi/minishop-pos/internal/presentation/http"
	workerpresentation "github.com/Zhima-Mochi/minishop-pos/internal/presentation/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	baseLogger := logging.MustNewLogger(logging.Options{
		Service: cfg.App.Name,
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Output:  cfg.Log.Output,
		File:    cfg.Log.File,
	})
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	systemLogger := logging.WithTrace(baseLogger, logging.SystemTraceID, logging.SystemSpanID)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	instruments := infraobs.RegisterInstruments(prometrics.New("", "", registry))
	logger := zaplogger.New(baseLogger)
	tel := infraobs.New(oteltrace.New(cfg.App.Name), logger, instruments)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// In-memory event bus; transaction notifications only, never stock changes
	bus := outbox.NewBus(logger,
		outbox.WithBuffer(cfg.Bus.Buffer),
		outbox.WithConcurrency(cfg.Bus.Concurrency),
	)

	catalogRepo := memory.NewCatalogRepository()
	inventoryService := appInventory.NewService(catalogRepo, tel)

	products, err := config.LoadSeed(cfg.Catalog.SeedFile)
	if err != nil {
		systemLogger.Fatal("catalog_seed_load_failed", zap.Error(err))
	}
	if err := inventoryService.Seed(ctx, products); err != nil {
		systemLogger.Fatal("catalog_seed_failed", zap.Error(err))
	}
	systemLogger.Info("catalog_seeded",
		zap.Int("products", len(products)),
		zap.String("seed_file", cfg.Catalog.SeedFile),
	)

	salesLedger := memory.NewLedger[*transaction.Sale]()
	returnsLedger := memory.NewLedger[*transaction.Return]()

	saleService := appSale.NewService(inventoryService, salesLedger,
		id.NewTransactionIDGenerator(id.PrefixSale), bus, tel)
	returnService := appReturns.NewService(inventoryService, saleService, returnsLedger,
		id.NewTransactionIDGenerator(id.PrefixReturn), bus, tel)

	auditWorker := audit.New(workerpresentation.Observed(bus, tel), tel)
	auditWorker.Start()
	bus.Start(ctx)

	var server *http.Server
	if cfg.Metrics.Addr != "" {
		handler := httppresentation.NewHandler(auditWorker, tel)
		server = &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           handler.Router(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			systemLogger.Info("http_server_start",
				zap.String("addr", server.Addr),
			)
			err := server.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				systemLogger.Error("http_server_error",
					zap.Error(err),
				)
			}
		}()
	}

	shell := clipresentation.New(inventoryService, saleService, returnService,
		clipresentation.WithReporter(auditWorker),
		clipresentation.WithLogger(logger),
	)
	shellDone := make(chan error, 1)
	go func() { shellDone <- shell.Run(ctx, os.Stdin, os.Stdout) }()

	var shellErr error
	shellStopped := false
	select {
	case shellErr = <-shellDone:
		shellStopped = true
	case <-ctx.Done():
		systemLogger.Info("shutdown_signal_received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if !shellStopped {
		// The shell releases any open sale before it returns.
		select {
		case shellErr = <-shellDone:
		case <-shutdownCtx.Done():
			systemLogger.Warn("shell_stop_timeout")
		}
	}
	if shellErr != nil {
		systemLogger.Error("shell_error", zap.Error(shellErr))
	}

	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			systemLogger.Error("http_server_shutdown_error",
				zap.Error(err),
			)
		} else {
			systemLogger.Info("http_server_stopped")
		}
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		systemLogger.Warn("event_bus_stop_incomplete", zap.Error(err))
	}
}
