package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"ETFBoard/internal/model"
	"ETFBoard/internal/screener"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		BaseURL           string  `yaml:"base_url"`
		ServiceKey        string  `yaml:"service_key"`
		RelayURL          *string `yaml:"relay_url"`
		FetchCount        int     `yaml:"fetch_count"`
		PageSize          int     `yaml:"page_size"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		IncludeForeign    *bool   `yaml:"include_foreign"`
	} `yaml:"data_source"`
	Metadata struct {
		Path string `yaml:"path"`
		URL  string `yaml:"url"`
	} `yaml:"metadata"`
	Cache struct {
		Key        string        `yaml:"key"`
		TTL        time.Duration `yaml:"ttl"`
		Backend    string        `yaml:"backend"`
		SQLitePath string        `yaml:"sqlite_path"`
	} `yaml:"cache"`
	Screener struct {
		LowValueThreshold *float64 `yaml:"low_value_threshold"`
		ExcludedMarkers   []string `yaml:"excluded_markers"`
	} `yaml:"screener"`
	Defaults struct {
		Filters FilterDefaults  `yaml:"filters"`
		Sort    model.SortState `yaml:"sort"`
	} `yaml:"defaults"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Log struct {
		Development bool `yaml:"development"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// FilterDefaults is the initial filter selection. Unset fields take their
// defaults individually.
type FilterDefaults struct {
	Market       model.Market `yaml:"market"`
	SearchTerm   string       `yaml:"search_term"`
	HideLowValue *bool        `yaml:"hide_low_value"`
}

// FilterState returns the selection as a model value.
func (f FilterDefaults) FilterState() model.FilterState {
	return model.FilterState{
		Market:       f.Market,
		SearchTerm:   f.SearchTerm,
		HideLowValue: f.HideLowValue != nil && *f.HideLowValue,
	}
}

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DATA_GO_KR_SERVICE_KEY"); v != "" {
		cfg.DataSource.ServiceKey = v
	}
	if v, ok := os.LookupEnv("CORS_RELAY_URL"); ok {
		cfg.DataSource.RelayURL = &v
	}
	if v := os.Getenv("ETF_METADATA_PATH"); v != "" {
		cfg.Metadata.Path = v
	}
	if v := os.Getenv("ETF_METADATA_URL"); v != "" {
		cfg.Metadata.URL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = d
		}
	}
	if v := os.Getenv("LOW_VALUE_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Screener.LowValueThreshold = &f
		}
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		cfg.Schedule.RefreshCron = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataSource.BaseURL == "" {
		c.DataSource.BaseURL = "https://apis.data.go.kr/1160100/service/GetSecuritiesProductInfoService"
	}
	if c.DataSource.RelayURL == nil {
		relay := "https://corsproxy.io/?"
		c.DataSource.RelayURL = &relay
	}
	if c.DataSource.FetchCount == 0 {
		c.DataSource.FetchCount = 1200
	}
	if c.DataSource.PageSize == 0 {
		c.DataSource.PageSize = 1000
	}
	if c.DataSource.RequestsPerSecond == 0 {
		c.DataSource.RequestsPerSecond = 5
	}
	if c.DataSource.IncludeForeign == nil {
		include := true
		c.DataSource.IncludeForeign = &include
	}
	if c.Metadata.Path == "" && c.Metadata.URL == "" {
		c.Metadata.Path = "data/etf-details.json"
	}
	if c.Cache.Key == "" {
		c.Cache.Key = "topEtfDataCache"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 60 * time.Second
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = BackendMemory
	}
	if c.Cache.SQLitePath == "" {
		c.Cache.SQLitePath = ":memory:"
	}
	if c.Screener.LowValueThreshold == nil {
		threshold := 500_000_000.0
		c.Screener.LowValueThreshold = &threshold
	}
	if len(c.Screener.ExcludedMarkers) == 0 {
		c.Screener.ExcludedMarkers = []string{"인버스", "레버리지", "Inverse", "Leverage"}
	}
	if c.Defaults.Filters.Market == "" {
		c.Defaults.Filters.Market = model.MarketDomestic
	}
	if c.Defaults.Filters.HideLowValue == nil {
		hide := true
		c.Defaults.Filters.HideLowValue = &hide
	}
	if c.Defaults.Sort.Field == "" {
		c.Defaults.Sort.Field = model.SortByEstimatedTradingValue
	}
	if c.Defaults.Sort.Direction == "" {
		c.Defaults.Sort.Direction = model.Descending
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
}

// Validate checks that all fields hold usable values. An empty service key
// is allowed and selects the sample dataset.
func (c *Config) Validate() error {
	if c.DataSource.FetchCount < 0 {
		return fmt.Errorf("data_source.fetch_count must not be negative")
	}
	if c.DataSource.PageSize < 0 {
		return fmt.Errorf("data_source.page_size must not be negative")
	}
	if c.DataSource.RequestsPerSecond < 0 {
		return fmt.Errorf("data_source.requests_per_second must not be negative")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}
	if c.Cache.Backend != BackendMemory && c.Cache.Backend != BackendSQLite {
		return fmt.Errorf("cache.backend must be %q or %q", BackendMemory, BackendSQLite)
	}
	if *c.Screener.LowValueThreshold < 0 {
		return fmt.Errorf("screener.low_value_threshold must not be negative")
	}
	if !c.Defaults.Filters.Market.Valid() {
		return fmt.Errorf("defaults.filters.market: unknown market %q", c.Defaults.Filters.Market)
	}
	if err := screener.ValidateSort(c.Defaults.Sort); err != nil {
		return fmt.Errorf("defaults.sort: %w", err)
	}
	return nil
}

// SampleMode reports whether no service key is configured.
func (c *Config) SampleMode() bool {
	return c.DataSource.ServiceKey == ""
}
