package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ETFBoard/internal/cache"
	"ETFBoard/internal/collector"
	"ETFBoard/internal/config"
	"ETFBoard/internal/metadata"
)

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("DATA_GO_KR_SERVICE_KEY", "")
	t.Setenv("ETF_METADATA_URL", "")
	t.Setenv("ETF_METADATA_PATH", filepath.Join(t.TempDir(), "missing.json"))
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestNewApp_SampleMode(t *testing.T) {
	cfg := loadConfig(t)
	a, err := newApp(cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &collector.MockFetcher{}, a.fetcher)
	assert.IsType(t, &metadata.FileSource{}, a.metadata)
	assert.IsType(t, &cache.MemoryStorage{}, a.storage)

	require.NoError(t, a.board.Load(context.Background()))
	st := a.board.State()
	assert.False(t, st.IsLive, "sample data is never live")
	assert.Equal(t, 7, st.Total)
}

func TestNewApp_LiveSourceAndSQLite(t *testing.T) {
	cfg := loadConfig(t)
	cfg.DataSource.ServiceKey = "key"
	cfg.DataSource.PageSize = 250
	cfg.Metadata.URL = "http://127.0.0.1:1/etf-details.json"
	cfg.Cache.Backend = config.BackendSQLite

	a, err := newApp(cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	f, ok := a.fetcher.(*collector.DataGoKrFetcher)
	require.True(t, ok)
	assert.Equal(t, 250, f.PageSize)
	assert.Equal(t, "https://corsproxy.io/?", f.RelayURL)
	require.NotNil(t, f.Limiter)
	assert.Equal(t, 5.0, float64(f.Limiter.Limit()))

	assert.IsType(t, &metadata.HTTPSource{}, a.metadata)
	assert.IsType(t, &cache.SQLiteStorage{}, a.storage)
}
