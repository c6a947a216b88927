package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ETFBoard/internal/model"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"DATA_GO_KR_SERVICE_KEY", "ETF_METADATA_PATH", "ETF_METADATA_URL", "HTTPS_PROXY", "LISTEN_ADDR", "CACHE_TTL", "LOW_VALUE_THRESHOLD", "CRON_REFRESH"} {
		t.Setenv(k, "")
	}
	if v, ok := os.LookupEnv("CORS_RELAY_URL"); ok {
		os.Unsetenv("CORS_RELAY_URL")
		t.Cleanup(func() { os.Setenv("CORS_RELAY_URL", v) })
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1200, cfg.DataSource.FetchCount)
	assert.Equal(t, "https://corsproxy.io/?", *cfg.DataSource.RelayURL)
	assert.True(t, *cfg.DataSource.IncludeForeign)
	assert.Equal(t, 60*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "topEtfDataCache", cfg.Cache.Key)
	assert.Equal(t, BackendMemory, cfg.Cache.Backend)
	assert.Equal(t, 500_000_000.0, *cfg.Screener.LowValueThreshold)
	assert.Equal(t, model.FilterState{Market: model.MarketDomestic, HideLowValue: true}, cfg.Defaults.Filters.FilterState())
	assert.Equal(t, model.SortState{Field: model.SortByEstimatedTradingValue, Direction: model.Descending}, cfg.Defaults.Sort)
	assert.Equal(t, "data/etf-details.json", cfg.Metadata.Path)
	assert.True(t, cfg.SampleMode())
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_source:
  service_key: from-file
  relay_url: ""
  fetch_count: 300
  include_foreign: false
cache:
  ttl: 90s
  backend: sqlite
screener:
  low_value_threshold: 0
defaults:
  filters:
    market: ALL
    search_term: kodex
  sort:
    field: name
    direction: asc
schedule:
  refresh_cron: "0 */5 * * * *"
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "from-file", cfg.DataSource.ServiceKey)
	assert.Equal(t, "", *cfg.DataSource.RelayURL)
	assert.Equal(t, 300, cfg.DataSource.FetchCount)
	assert.False(t, *cfg.DataSource.IncludeForeign)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	assert.Equal(t, BackendSQLite, cfg.Cache.Backend)
	assert.Equal(t, 0.0, *cfg.Screener.LowValueThreshold)
	assert.Equal(t, model.MarketAll, cfg.Defaults.Filters.Market)
	assert.Equal(t, "kodex", cfg.Defaults.Filters.SearchTerm)
	assert.True(t, cfg.Defaults.Filters.FilterState().HideLowValue, "unset hide_low_value defaults to true")
	assert.Equal(t, model.SortByName, cfg.Defaults.Sort.Field)
	assert.Equal(t, "0 */5 * * * *", cfg.Schedule.RefreshCron)
	assert.False(t, cfg.SampleMode())
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATA_GO_KR_SERVICE_KEY", "from-env")
	t.Setenv("CORS_RELAY_URL", "")
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("LOW_VALUE_THRESHOLD", "1000")
	t.Setenv("LISTEN_ADDR", ":9999")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.DataSource.ServiceKey)
	assert.Equal(t, "", *cfg.DataSource.RelayURL)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 1000.0, *cfg.Screener.LowValueThreshold)
	assert.Equal(t, ":9999", cfg.Server.Addr)
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache: [unclosed"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	cfg.Cache.Backend = "redis"
	assert.Error(t, cfg.Validate())
	cfg.Cache.Backend = BackendMemory

	cfg.Cache.TTL = -time.Second
	assert.Error(t, cfg.Validate())
	cfg.Cache.TTL = time.Second

	cfg.Defaults.Filters.Market = "JP"
	assert.Error(t, cfg.Validate())
	cfg.Defaults.Filters.Market = model.MarketAll

	cfg.Defaults.Sort.Field = "tradingvalue"
	assert.Error(t, cfg.Validate())
	cfg.Defaults.Sort.Field = model.SortByFee

	cfg.Defaults.Sort.Direction = "down"
	assert.Error(t, cfg.Validate())
}

func TestLoad_PartialFilterDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
defaults:
  filters:
    hide_low_value: false
    search_term: tiger
  sort:
    field: fee
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, model.FilterState{Market: model.MarketDomestic, SearchTerm: "tiger", HideLowValue: false},
		cfg.Defaults.Filters.FilterState())
	assert.Equal(t, model.SortState{Field: model.SortByFee, Direction: model.Descending}, cfg.Defaults.Sort)
}
