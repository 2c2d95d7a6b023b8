// Command server runs the ESG analytics dashboard API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/yashika-63/ESG-Analytics/internal/config"
	"github.com/yashika-63/ESG-Analytics/internal/modules"
	"github.com/yashika-63/ESG-Analytics/internal/services"
	"github.com/yashika-63/ESG-Analytics/internal/store"
	transport "github.com/yashika-63/ESG-Analytics/internal/transport/http"
)

const version = "1.2.0"

func main() {
	configFile := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	if err := run(*configFile); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	registry, err := modules.NewRegistry(modules.DefaultConfigs())
	if err != nil {
		return fmt.Errorf("module registry: %w", err)
	}

	var source services.RecordSource
	if cfg.Database.DSN != "" {
		db, err := store.Open(cfg.Database.DSN, cfg.Database.MaxConns, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		source = store.New(db, logger)
	} else {
		logger.Warn("no database DSN configured, store-backed loads will report no data")
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector())

	service := services.NewDashboardService(registry, source, logger, services.NewMetrics(promRegistry))

	routerCfg := transport.RouterConfig{Version: version}
	if cfg.Security.RateLimitEnabled {
		routerCfg.RateLimitRPS = cfg.Security.RateLimitRPS
		routerCfg.RateLimitBurst = cfg.Security.RateLimitBurst
	}
	router := transport.NewRouter(service, promRegistry, logger, routerCfg)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdownErr := make(chan error, 1)
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		s := <-sig
		logger.Info("shutting down", slog.String("signal", s.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		shutdownErr <- server.Shutdown(ctx)
	}()

	logger.Info("server listening",
		slog.Int("port", cfg.Server.Port),
		slog.String("version", version),
		slog.Int("modules", len(registry.List())))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-shutdownErr
}
