package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"GoLex/internal/config"
	"GoLex/internal/logutil"
	"GoLex/internal/metrics"
	"GoLex/internal/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

const shutdownTimeout = 15 * time.Second

type cli struct {
	Config   string `help:"Path to YAML config file" type:"path"`
	Port     string `help:"HTTP listen port (overrides config)"`
	DataDir  string `help:"Data directory holding stored rule sets (overrides config)"`
	LogLevel string `help:"Log level: debug, info, warn, error (overrides config)"`
}

func (c cli) overrides() map[string]any {
	o := make(map[string]any)
	if c.Port != "" {
		o["port"] = c.Port
	}
	if c.DataDir != "" {
		o["data_dir"] = c.DataDir
	}
	if c.LogLevel != "" {
		o["log.level"] = c.LogLevel
	}
	return o
}

func main() {
	var params cli
	kong.Parse(&params, kong.Description("GoLex tokenization service."))

	if err := run(params); err != nil {
		fmt.Fprintf(os.Stderr, "golex server: %v\n", err)
		os.Exit(1)
	}
}

func run(params cli) error {
	cfg, err := config.Load(params.Config, params.overrides())
	if err != nil {
		return err
	}

	logger, err := logutil.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting GoLex",
		zap.String("version", Version),
		zap.String("port", cfg.Port),
		zap.String("data_dir", cfg.DataDir),
		zap.String("config", params.Config),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(reg)

	opts := cfg.LexerOptions()
	opts.Logger = logger
	mgr, err := server.NewManager(cfg.DataDir, opts, logger)
	if err != nil {
		return errors.Wrap(err, "initialize rule set manager")
	}

	mux := http.NewServeMux()
	server.NewHandler(mgr, logger, Version, cfg.MaxBodyBytes).RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "serve")
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
