package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/iwvelando/loan-desk/internal/assistant"
	"github.com/iwvelando/loan-desk/internal/config"
	"github.com/iwvelando/loan-desk/internal/logging"
	"github.com/iwvelando/loan-desk/internal/metrics"
	"github.com/iwvelando/loan-desk/internal/reference"
	"github.com/iwvelando/loan-desk/internal/server"
	"github.com/iwvelando/loan-desk/pkg/constants"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// staleReferenceMonths is the age after which the reference tables are
// reported as possibly outdated.
const staleReferenceMonths = 12

func main() {
	configLocation := flag.String("config", constants.DefaultServerConfigFile, "path to server configuration file")
	address := flag.String("address", "", "listen address override, e.g. :8080")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	cfg, err := server.LoadConfig(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}
	envFile := config.LoadEnvFile(filepath.Join(filepath.Dir(*configLocation), ".env"), ".env")
	cfg.ApplyEnvironment()
	if *address != "" {
		cfg.Address = *address
	}

	logger, err := logging.New(cfg.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	if envFile != "" {
		logger.Debug("loaded environment file", zap.String("op", "main"), zap.String("path", envFile))
	}

	tables, err := reference.LoadFile(cfg.ReferenceFile)
	if err != nil {
		logger.Fatal("failed to load reference tables",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	if age := tables.AgeInMonths(time.Now()); age > staleReferenceMonths {
		logger.Warn("reference tables may be outdated",
			zap.String("op", "main"),
			zap.String("effectiveMonth", tables.Tables().EffectiveMonth),
			zap.Int("ageMonths", age),
		)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	gateway, enabled := buildGateway(cfg.Assistant, logger)
	store := assistant.NewStore(gateway, logger, cfg.MaxSessions,
		assistant.WithTimeout(cfg.Assistant.Timeout()),
		assistant.WithObserver(m),
	)

	srv := &http.Server{
		Addr: cfg.Address,
		Handler: server.NewHandler(server.Options{
			Logger:           logger,
			Reference:        tables,
			Store:            store,
			Metrics:          m,
			Gatherer:         registry,
			MaxRequestSize:   cfg.RequestSizeBytes(),
			Version:          version,
			AssistantEnabled: enabled,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("listening",
			zap.String("op", "main"),
			zap.String("address", cfg.Address),
			zap.String("version", version),
			zap.Bool("assistant", enabled),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down", zap.String("op", "main"))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Assistant.Timeout()+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

// buildGateway returns the Gemini gateway when the assistant is enabled and
// configured, and the disabled gateway otherwise.
func buildGateway(cfg config.AssistantConfig, logger *zap.Logger) (assistant.Gateway, bool) {
	if !cfg.Enabled {
		return assistant.DisabledGateway{}, false
	}

	gateway, err := assistant.NewGeminiGateway(assistant.GeminiConfig{
		Endpoint: cfg.Endpoint,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey,
		Timeout:  cfg.Timeout(),
	}, logger)
	if err != nil {
		logger.Warn("assistant disabled",
			zap.String("op", "main"),
			zap.String("code", assistant.ErrorCode(err)),
			zap.Error(err),
		)
		return assistant.DisabledGateway{}, false
	}
	logger.Info("assistant enabled",
		zap.String("op", "main"),
		zap.String("model", gateway.Model()),
	)
	return gateway, true
}
