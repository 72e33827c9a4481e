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

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/luisriego/MatisseAPI-sub001/infrastructure/config"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/di"
	"github.com/luisriego/MatisseAPI-sub001/infrastructure/persistence/resilience"
	"github.com/luisriego/MatisseAPI-sub001/interfaces/http/rest"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer cleanup()

	logger := container.Logger
	logger.Info("Ledger started",
		zap.String("environment", cfg.App.Environment),
		zap.String("store", cfg.Store.Driver),
		zap.Bool("publishing", cfg.AWS.EventBusName != ""),
	)

	if container.Recovery != nil {
		container.Recovery.Start(ctx)
	}

	var srv *http.Server
	if cfg.Metrics.ListenAddr != "" {
		router := rest.NewRouter(container.Metrics.Registry(), readinessChecks(container), logger)
		srv = &http.Server{
			Addr:              cfg.Metrics.ListenAddr,
			Handler:           router.Setup(),
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		go func() {
			logger.Info("Starting operations server", zap.String("address", cfg.Metrics.ListenAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("Operations server failed", zap.Error(err))
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down ledger...")

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Operations server shutdown error", zap.Error(err))
		}
	}

	if container.Recovery != nil {
		container.Recovery.Stop()
		stats := container.Recovery.GetStats()
		logger.Info("Projection recovery stopped",
			zap.Int64("batches", stats.Batches),
			zap.Int64("recovered", stats.Recovered),
			zap.Int64("failed", stats.Failed))
	}

	_ = logger.Sync()
}

func readinessChecks(container *di.Container) map[string]rest.ReadinessCheck {
	checks := map[string]rest.ReadinessCheck{}
	if guarded, ok := container.EventStore.(*resilience.EventStore); ok {
		checks["event_store"] = func(context.Context) error {
			if guarded.State() == gobreaker.StateOpen {
				return errors.New("event store circuit is open")
			}
			return nil
		}
	}
	return checks
}
