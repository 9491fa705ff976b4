package core

import (
	"fmt"
	"time"
)

// Dataframe is a time-indexed container for OHLCV data
type Dataframe struct {
	Pair string

	Close  Series[float64]
	Open   Series[float64]
	High   Series[float64]
	Low    Series[float64]
	Volume Series[float64]

	Time       []time.Time
	LastUpdate time.Time

	// Custom user metadata for indicators
	Metadata map[string]Series[float64]
}

// NewDataframe creates an empty dataframe for a pair
func NewDataframe(pair string) *Dataframe {
	return &Dataframe{
		Pair:     pair,
		Metadata: make(map[string]Series[float64]),
	}
}

// NewDataframeFromCandles builds a dataframe from a chronological candle slice
func NewDataframeFromCandles(pair string, candles []Candle) *Dataframe {
	df := NewDataframe(pair)
	for _, candle := range candles {
		df.AppendCandle(candle)
	}
	return df
}

// AppendCandle adds one candle to the end of the dataframe
func (df *Dataframe) AppendCandle(candle Candle) {
	df.Open = append(df.Open, candle.Open)
	df.High = append(df.High, candle.High)
	df.Low = append(df.Low, candle.Low)
	df.Close = append(df.Close, candle.Close)
	df.Volume = append(df.Volume, candle.Volume)
	df.Time = append(df.Time, candle.Time)
	df.LastUpdate = candle.Time
}

// Len returns the number of rows in the dataframe
func (df *Dataframe) Len() int {
	return len(df.Time)
}

// Column resolves a named price column. The standard OHLCV names are
// always available; any other name is looked up in the metadata.
func (df *Dataframe) Column(name string) (Series[float64], error) {
	switch name {
	case "open":
		return df.Open, nil
	case "high":
		return df.High, nil
	case "low":
		return df.Low, nil
	case "close":
		return df.Close, nil
	case "volume":
		return df.Volume, nil
	}
	if series, ok := df.Metadata[name]; ok {
		return series, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
}

// Sample returns a subset of the dataframe with the last 'positions' rows
func (df Dataframe) Sample(positions int) Dataframe {
	size := len(df.Time)
	start := size - positions
	if start <= 0 {
		return df
	}

	sample := Dataframe{
		Pair:       df.Pair,
		Close:      df.Close.LastValues(positions),
		Open:       df.Open.LastValues(positions),
		High:       df.High.LastValues(positions),
		Low:        df.Low.LastValues(positions),
		Volume:     df.Volume.LastValues(positions),
		Time:       df.Time[start:],
		LastUpdate: df.LastUpdate,
		Metadata:   make(map[string]Series[float64]),
	}
	for key := range df.Metadata {
		sample.Metadata[key] = df.Metadata[key].LastValues(positions)
	}
	return sample
}
