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

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/adfharrison1/go-indexdb/pkg/config"
	"github.com/adfharrison1/go-indexdb/pkg/indexdb"
	"github.com/adfharrison1/go-indexdb/pkg/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "go-indexdb: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Command line flags
	var (
		configFile = flag.String("config", "", "Path to a YAML configuration file")
		port       = flag.String("port", "", "Server port (overrides the configuration file)")
		dataDir    = flag.String("data-dir", "", "Store directory (overrides the configuration file)")
		inMemory   = flag.Bool("in-memory", false, "Keep the store in memory; nothing is persisted")
		logLevel   = flag.String("log-level", "", "Log level: debug, info, warn or error")
		showHelp   = flag.Bool("help", false, "Show help message")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\ngo-indexdb is a record store with ordered secondary indexes and range queries.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                    # Start with defaults\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -config indexdb.yaml               # Load a configuration file\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -in-memory -log-level debug        # Throwaway store with query diagnostics\n", os.Args[0])
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		return nil
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		return err
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *dataDir != "" {
		cfg.Storage.Path = *dataDir
	}
	if *inMemory {
		cfg.Storage.InMemory = true
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	db, err := indexdb.Open(cfg, indexdb.WithLogger(logger), indexdb.WithRegisterer(reg))
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}()

	srv := server.NewServer(db, reg, server.WithLogger(logger))

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	errc := make(chan error, 1)
	go func() {
		logger.Info("starting go-indexdb server", "addr", httpServer.Addr, "store", cfg.Storage.Path, "in_memory", cfg.Storage.InMemory)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	// Give outstanding requests a deadline for completion
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}

func newLogger(cfg config.LogConfig) (*slog.Logger, error) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level: %q", cfg.Level)
	}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
	}
	return slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})), nil
}
