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
	"time"

	"github.com/ulifigueroa/rocket-launches-calendar/internal/auth"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/cache"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/calendar"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/config"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/logging"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/plugin"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/server"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/view"

	// Plugins
	"github.com/ulifigueroa/rocket-launches-calendar/plugins/example"
	"github.com/ulifigueroa/rocket-launches-calendar/plugins/launchlibrary"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadFromFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to configure logging: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("launchcal stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := plugin.NewRegistry()
	if err := registerPlugins(registry); err != nil {
		return fmt.Errorf("failed to register plugins: %w", err)
	}

	aggregator := calendar.NewAggregator()
	if err := initializePlugins(cfg, registry, aggregator, logger); err != nil {
		return fmt.Errorf("failed to initialize plugins: %w", err)
	}

	var source plugin.Source = aggregator
	if cfg.Cache.Path != "" {
		c, err := cache.Open(cfg.Cache.Path, cfg.Cache.TTL)
		if err != nil {
			return err
		}
		defer c.Close()

		cached := c.Source(aggregator)
		source = cached
		logger.Info("caching launches", slog.String("path", cfg.Cache.Path), slog.Duration("ttl", cfg.Cache.TTL))

		go startScheduler(ctx, c, cached, cfg.Scheduler.Interval, logger)
	}

	authenticator, err := auth.NewAuthenticator(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to configure auth: %w", err)
	}

	srv := server.New(cfg, source, authenticator, logger)
	if err := srv.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func registerPlugins(registry *plugin.Registry) error {
	plugins := []plugin.Plugin{
		example.New(),
		launchlibrary.New(),
	}

	for _, p := range plugins {
		if err := registry.Register(p); err != nil {
			return err
		}
	}

	return nil
}

func initializePlugins(cfg *config.Config, registry *plugin.Registry, agg *calendar.Aggregator, logger *slog.Logger) error {
	for _, sourceCfg := range cfg.Sources {
		instance, err := registry.Create(sourceCfg.Type, sourceCfg.Config)
		if err != nil {
			return fmt.Errorf("failed to create source %s: %w", sourceCfg.ID, err)
		}

		agg.AddInstance(sourceCfg.ID, instance)
		logger.Info("initialized source", slog.String("id", sourceCfg.ID), slog.String("type", sourceCfg.Type))
	}

	return nil
}

// startScheduler keeps the current and the next month warm in the cache
// and purges expired entries
func startScheduler(ctx context.Context, c *cache.Cache, cached *cache.Source, interval time.Duration, logger *slog.Logger) {
	refresh := func() {
		first := view.MonthStart(time.Now())
		for _, month := range []time.Time{first, first.AddDate(0, 1, 0)} {
			start, end := calendar.MonthRange(month)
			if _, err := cached.Refresh(ctx, start, end); err != nil {
				logger.Warn("failed to refresh launches", slog.String("month", month.Format("2006-01")), slog.Any("error", err))
			}
		}
		if n, err := c.Purge(); err != nil {
			logger.Warn("failed to purge cache", slog.Any("error", err))
		} else if n > 0 {
			logger.Debug("purged expired cache entries", slog.Int("count", n))
		}
	}

	if interval <= 0 {
		return
	}

	logger.Info("starting cache warm-up scheduler", slog.Duration("interval", interval))
	refresh()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}
