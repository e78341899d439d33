package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"

	"github.com/logbook-io/logbook/pkg/clickhouse"
	"github.com/logbook-io/logbook/pkg/logbook"
	"github.com/logbook-io/logbook/pkg/util"
)

func main() {
	os.Exit(run())
}

// buildMirror creates the optional ClickHouse mirror from the running
// configuration. Returns nils when the mirror is disabled.
func buildMirror(ctx context.Context, logger *slog.Logger,
	metrics *logbook.Metrics) (*logbook.Mirror, *clickhouse.Client, error) {
	if !logbook.ConfigSpec.GetBool("mirror.enabled") {
		return nil, nil, nil
	}

	chClient, err := clickhouse.NewClient(ctx, clickhouse.Config{
		Hosts:          util.ParseCommaSeparatedHosts(logbook.ConfigSpec.GetString("clickhouse.url")),
		Database:       logbook.ConfigSpec.GetString("clickhouse.database"),
		Username:       logbook.ConfigSpec.GetString("clickhouse.username"),
		Password:       logbook.ConfigSpec.GetString("clickhouse.password"),
		Timeout:        time.Duration(logbook.ConfigSpec.GetInt("clickhouse.timeout-seconds")) * time.Second,
		MaxRetries:     logbook.ConfigSpec.GetInt("clickhouse.max-retries"),
		InitialBackoff: time.Duration(logbook.ConfigSpec.GetInt("clickhouse.initial-backoff-seconds")) * time.Second,
		MaxBackoff:     time.Duration(logbook.ConfigSpec.GetInt("clickhouse.max-backoff-seconds")) * time.Second,
		Logger:         logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create ClickHouse client: %w", err)
	}

	if err := chClient.EnsureSchema(ctx); err != nil {
		_ = chClient.Close()
		return nil, nil, fmt.Errorf("failed to ensure ClickHouse schema: %w", err)
	}

	mirror := logbook.NewMirror(logbook.MirrorConfig{
		Sink:           chClient,
		Logger:         logger,
		BufferSize:     logbook.ConfigSpec.GetInt("mirror.buffer-size"),
		CountThreshold: logbook.ConfigSpec.GetInt("mirror.count-threshold"),
		TimeThreshold:  time.Duration(logbook.ConfigSpec.GetInt("mirror.time-threshold-seconds")) * time.Second,
	}, metrics)

	return mirror, chClient, nil
}

// waitForShutdown waits for shutdown signal or server error, returns exit code
func waitForShutdown(cancel context.CancelFunc, logger *slog.Logger,
	errChan <-chan error, signalsChan <-chan os.Signal, shutdownTimeout time.Duration) int {
	select {
	case sig := <-signalsChan:
		logger.Info("signal received", "signal", sig)
		cancel()

		// Wait for server to stop gracefully (with timeout)
		shutdownTimer := time.NewTimer(shutdownTimeout)
		defer shutdownTimer.Stop()

		select {
		case <-shutdownTimer.C:
			logger.Warn("shutdown timeout exceeded, forcing exit")
			return 1
		case err := <-errChan:
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("server stopped with error", "error", err)
				return 1
			}
		}

	case err := <-errChan:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server error", "error", err)
			return 1
		}
	}

	return 0
}

func run() int {
	// Add command-line flags
	logbook.ConfigSpec.AddFlag(pflag.CommandLine, "log-level", "log-level")
	logbook.ConfigSpec.AddFlag(pflag.CommandLine, "listen-port", "server.listen-port")
	logbook.ConfigSpec.AddFlag(pflag.CommandLine, "store-path", "store.path")

	configFileFlag := pflag.String("config-file", "", "Path to configuration file")
	pflag.Parse()

	// Load configuration
	configFile := *configFileFlag
	if configFile == "" {
		configFile = os.Getenv("LOGBOOK_CONFIG_FILE")
	}

	err := logbook.ConfigSpec.LoadConfiguration(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		pflag.Usage()
		return 2
	}

	// Validate configuration
	err = logbook.ValidateConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration validation error: %v\n", err)
		return 2
	}

	// Set up logger
	logLevel := util.ParseLogLevel(logbook.ConfigSpec.GetString("log-level"))
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	// Get shutdown timeout from config
	shutdownTimeout := time.Duration(logbook.ConfigSpec.GetInt("server.shutdown-timeout-seconds")) * time.Second

	metrics := logbook.NewMetrics()

	// Open the record file eagerly so the header exists before the first
	// request and a missing file is caught at startup
	store, err := logbook.OpenFileStore(logbook.ConfigSpec.GetString("store.path"), metrics)
	if err != nil {
		logger.Error("failed to open record file", "error", err)
		return 1
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			logger.Error("failed to close record file", "error", closeErr)
		}
	}()

	ctx := context.Background()

	// Create optional ClickHouse mirror
	mirror, chClient, err := buildMirror(ctx, logger, metrics)
	if err != nil {
		logger.Error("failed to create mirror", "error", err)
		return 1
	}
	if mirror != nil {
		defer func() {
			mirror.Close()
			if closeErr := chClient.Close(); closeErr != nil {
				logger.Error("failed to close ClickHouse client", "error", closeErr)
			}
		}()
	}

	// Start metrics server
	metricsServer, err := util.StartMetricsServerIfEnabled(
		logbook.ConfigSpec, "metrics-server", logger)
	if err != nil {
		logger.Error("failed to start metrics server", "error", err)
		return 1
	}
	if metricsServer != nil {
		defer func() {
			if closeErr := metricsServer.Close(); closeErr != nil {
				logger.Error("failed to close metrics server", "error", closeErr)
			}
		}()
	}

	// Create server
	server := logbook.NewServer(logbook.ServerConfig{
		Store:           store,
		Mirror:          mirror,
		Metrics:         metrics,
		Logger:          logger,
		ListenAddress:   logbook.ConfigSpec.GetString("server.listen-address"),
		ListenPort:      logbook.ConfigSpec.GetInt("server.listen-port"),
		ShutdownTimeout: shutdownTimeout,
	})

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalsChan := make(chan os.Signal, 1)
	signal.Notify(signalsChan, unix.SIGINT, unix.SIGTERM)

	// Start server in goroutine
	errChan := make(chan error)
	go func() {
		errChan <- server.Run(ctx)
	}()

	// Wait for signal or error
	exitCode := waitForShutdown(cancel, logger, errChan, signalsChan, shutdownTimeout+time.Second)

	if exitCode == 0 {
		logger.Info("logbookd stopped")
	}
	return exitCode
}
