package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JuanMi-CG/quant-trading/core"
	"github.com/JuanMi-CG/quant-trading/strategies"
)

func testRecord(name string) StrategyRecord {
	return StrategyRecord{
		Name:      name,
		Class:     "momentum",
		Candidate: core.Candidate{"lookback": 10, "mode": "long_only"},
		Metric:    core.MetricSharpe,
		Score:     1.37,
	}
}

func TestStrategyStore_SaveAndGet(t *testing.T) {
	store, err := NewFromMemory()
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(testRecord("btc_momentum")))

	got, err := store.Get("btc_momentum")
	require.NoError(t, err)
	assert.Equal(t, "momentum", got.Class)
	assert.Equal(t, 1.37, got.Score)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestStrategyStore_GetMissing(t *testing.T) {
	store, err := NewFromMemory()
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get("ghost")
	assert.ErrorIs(t, err, core.ErrStrategyNotFound)
}

func TestStrategyStore_SaveOverwrites(t *testing.T) {
	store, err := NewFromMemory()
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(testRecord("btc_momentum")))

	updated := testRecord("btc_momentum")
	updated.Score = 2.01
	require.NoError(t, store.Save(updated))

	got, err := store.Get("btc_momentum")
	require.NoError(t, err)
	assert.Equal(t, 2.01, got.Score)

	records, err := store.List()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestStrategyStore_ListAndDelete(t *testing.T) {
	store, err := NewFromMemory()
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(testRecord("one")))
	require.NoError(t, store.Save(testRecord("two")))

	records, err := store.List()
	require.NoError(t, err)
	assert.Len(t, records, 2)

	require.NoError(t, store.Delete("one"))
	records, err = store.List()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "two", records[0].Name)
}

func TestStrategyStore_FileRoundTrip(t *testing.T) {
	file := t.TempDir() + "/strategies.db"

	store, err := NewFromFile(file)
	require.NoError(t, err)
	require.NoError(t, store.Save(testRecord("persisted")))
	require.NoError(t, store.Close())

	reopened, err := NewFromFile(file)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get("persisted")
	require.NoError(t, err)
	assert.Equal(t, "momentum", got.Class)
}

// A stored record must rebuild the exact strategy it was saved with,
// even after its candidate went through JSON number decoding.
func TestStrategyStore_RecordRebuildsStrategy(t *testing.T) {
	store, err := NewFromMemory()
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(testRecord("btc_momentum")))
	got, err := store.Get("btc_momentum")
	require.NoError(t, err)

	rebuilt, err := strategies.Build(got.Class, got.Candidate)
	require.NoError(t, err)
	assert.Equal(t, "momentum", rebuilt.Name())

	df := core.NewDataframe("BTCUSDT")
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	prices := []float64{100, 101, 103, 102, 104, 106, 105, 107, 109, 108, 110, 112}
	for i, price := range prices {
		df.AppendCandle(core.Candle{Time: start.Add(time.Duration(i) * time.Hour), Open: price, High: price, Low: price, Close: price, Volume: 1})
	}

	direct, err := strategies.NewMomentum(10, strategies.ModeLongOnly)
	require.NoError(t, err)
	want, err := direct.GenerateSignals(df)
	require.NoError(t, err)
	signals, err := rebuilt.GenerateSignals(df)
	require.NoError(t, err)
	assert.Equal(t, want, signals)
}
