package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "grid", cfg.Optimize.Method)
	assert.Equal(t, "sharpe", cfg.Optimize.Metric)
	assert.Equal(t, 50, cfg.Optimize.Trials)
	assert.Equal(t, "close", cfg.Backtest.PriceColumn)
	assert.Equal(t, 10000.0, cfg.Backtest.InitialCapital)
	assert.Equal(t, 0.001, cfg.Backtest.TransactionCost)
	assert.Equal(t, "1d", cfg.Data.Timeframe)
	assert.Equal(t, int64(10*1024*1024), cfg.Data.MaxFileSize)
	assert.Equal(t, "strategies.db", cfg.Storage.StrategyDB)
}

func TestLoad_FromFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "quant-trading.yaml")
	content := `
data:
  pair: BTCUSDT
  timeframe: 4h
  file: data/BTCUSDT-4h.csv
optimize:
  method: continuous
  metric: total_return
  seed: 7
  strategies: [momentum, sma_cross]
backtest:
  initial_capital: 25000
telegram:
  token: secret
  users: [12345]
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))

	cfg, err := Load(file)
	require.NoError(t, err)

	assert.Equal(t, "BTCUSDT", cfg.Data.Pair)
	assert.Equal(t, "4h", cfg.Data.Timeframe)
	assert.Equal(t, "continuous", cfg.Optimize.Method)
	assert.Equal(t, "total_return", cfg.Optimize.Metric)
	assert.Equal(t, int64(7), cfg.Optimize.Seed)
	assert.Equal(t, []string{"momentum", "sma_cross"}, cfg.Optimize.Strategies)
	assert.Equal(t, 25000.0, cfg.Backtest.InitialCapital)
	// file values merge over defaults
	assert.Equal(t, 0.001, cfg.Backtest.TransactionCost)
	assert.Equal(t, "secret", cfg.Telegram.Token)
	assert.Equal(t, []int{12345}, cfg.Telegram.Users)
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Setenv("QUANT_OPTIMIZE_METHOD", "sequential")
	t.Setenv("QUANT_DATA_TIMEFRAME", "4h")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sequential", cfg.Optimize.Method)
	assert.Equal(t, "4h", cfg.Data.Timeframe)
}

func TestLoad_MalformedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(file, []byte("data: [unclosed"), 0o644))

	_, err := Load(file)
	assert.Error(t, err)
}
