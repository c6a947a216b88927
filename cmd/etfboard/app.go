package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"ETFBoard/internal/board"
	"ETFBoard/internal/cache"
	"ETFBoard/internal/collector"
	"ETFBoard/internal/config"
	"ETFBoard/internal/metadata"
	"ETFBoard/internal/screener"
)

var configPath = flag.String("config", defaultConfigPath(), "Path to the YAML config file (env CONFIG_PATH)")

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}

// app is the wired component graph shared by every subcommand.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	fetcher  collector.Fetcher
	metadata metadata.Source
	storage  cache.Storage
	board    *board.Board
}

// openApp loads the config and wires the board from it.
func openApp() (*app, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation")
	}
	logger, err := newLogger(cfg.Log.Development)
	if err != nil {
		return nil, errors.Wrap(err, "init logger")
	}
	a, err := newApp(cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return a, nil
}

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, log: logger}

	var opts []board.Option
	if cfg.SampleMode() {
		logger.Warn("no service key configured, using sample data")
		a.fetcher = &collector.MockFetcher{}
		opts = append(opts, board.WithSampleData())
	} else {
		f := collector.NewDataGoKrFetcher(cfg.DataSource.BaseURL, cfg.DataSource.ServiceKey,
			*cfg.DataSource.RelayURL, cfg.Proxy, logger)
		f.PageSize = cfg.DataSource.PageSize
		if rps := cfg.DataSource.RequestsPerSecond; rps > 0 {
			f.Limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
		a.fetcher = f
	}
	logger.Info("data source", zap.String("name", a.fetcher.Name()))

	if cfg.Metadata.URL != "" {
		a.metadata = metadata.NewHTTPSource(cfg.Metadata.URL)
	} else {
		a.metadata = metadata.NewFileSource(cfg.Metadata.Path)
	}

	switch cfg.Cache.Backend {
	case config.BackendSQLite:
		s, err := cache.NewSQLiteStorage(cfg.Cache.SQLitePath, logger)
		if err != nil {
			return nil, errors.Wrap(err, "init sqlite cache")
		}
		a.storage = s
	default:
		a.storage = cache.NewMemoryStorage()
	}

	snapshots := cache.New(a.storage,
		cache.WithKey(cfg.Cache.Key),
		cache.WithTTL(cfg.Cache.TTL),
		cache.WithLogger(logger))
	col := collector.NewCollector(a.fetcher, cfg.DataSource.FetchCount, *cfg.DataSource.IncludeForeign, logger)
	engine := screener.NewEngine(*cfg.Screener.LowValueThreshold)

	opts = append(opts,
		board.WithLogger(logger),
		board.WithFilters(cfg.Defaults.Filters.FilterState()),
		board.WithSort(cfg.Defaults.Sort),
		board.WithExcludedMarkers(cfg.Screener.ExcludedMarkers))
	a.board = board.New(col, a.metadata, snapshots, engine, opts...)
	return a, nil
}

func (a *app) Close() {
	if err := a.storage.Close(); err != nil {
		a.log.Warn("close cache storage", zap.Error(err))
	}
	_ = a.log.Sync()
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
