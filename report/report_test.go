package report

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JuanMi-CG/quant-trading/core"
	"github.com/JuanMi-CG/quant-trading/optimizer"
)

func sampleSummary() core.Summary {
	return core.Summary{
		TotalReturn:  0.42,
		AnnualReturn: 0.21,
		Volatility:   0.15,
		Sharpe:       1.4,
		MaxDrawdown:  -0.08,
		WinRate:      0.55,
		ProfitFactor: 1.8,
		Expectancy:   0.003,
	}
}

func TestRenderRanking(t *testing.T) {
	rows := []optimizer.StrategyRow{
		{
			Strategy:  "momentum",
			Candidate: core.Candidate{"lookback": 10, "mode": "long_only"},
			Summary:   sampleSummary(),
			Score:     1.4,
		},
		{
			Strategy:  "sma_cross",
			Candidate: core.Candidate{"fast": 5, "slow": 20},
			Summary:   core.Summary{},
			Score:     0.3,
		},
	}

	var buf bytes.Buffer
	RenderRanking(&buf, rows, core.MetricSharpe)
	out := buf.String()

	assert.Contains(t, out, "momentum")
	assert.Contains(t, out, "sma_cross")
	assert.Contains(t, out, "lookback=10")
	// momentum outranks sma_cross in the table body
	assert.Less(t, strings.Index(out, "momentum"), strings.Index(out, "sma_cross"))
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	RenderSummary(&buf, "momentum", sampleSummary())
	out := buf.String()

	assert.Contains(t, out, "Sharpe")
	assert.Contains(t, out, "Max Drawdown")
	assert.Contains(t, out, "Total Return")
}

func TestPrintReturnsHistogram(t *testing.T) {
	returns := []float64{0.01, -0.02, 0.03, 0.015, -0.005, 0.0, 0.02, -0.01}

	var buf bytes.Buffer
	require.NoError(t, PrintReturnsHistogram(&buf, returns))
	assert.NotEmpty(t, buf.String())
}

func TestFormatCandidate(t *testing.T) {
	candidate := core.Candidate{"slow": 20, "fast": 5, "mode": "long_only"}
	// keys come out sorted
	assert.Equal(t, "fast=5 mode=long_only slow=20", FormatCandidate(candidate))
	assert.Equal(t, "", FormatCandidate(core.Candidate{}))
}

func TestManager_SaveLoadRoundTrip(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	want := sampleSummary()
	require.NoError(t, manager.SaveSummary("btc_momentum", want))

	got, err := manager.LoadSummary("btc_momentum")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestManager_RoundTripKeepsNaN(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	summary := sampleSummary()
	summary.Sharpe = math.NaN()
	summary.ProfitFactor = math.NaN()
	require.NoError(t, manager.SaveSummary("degenerate", summary))

	got, err := manager.LoadSummary("degenerate")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got.Sharpe))
	assert.True(t, math.IsNaN(got.ProfitFactor))
	assert.Equal(t, summary.TotalReturn, got.TotalReturn)
}

func TestManager_LoadMissing(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	_, err = manager.LoadSummary("ghost")
	assert.Error(t, err)
}

func TestManager_List(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, manager.SaveSummary("alpha", sampleSummary()))
	require.NoError(t, manager.SaveSummary("beta", sampleSummary()))

	names, err := manager.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alpha", "beta"}, names)
}
