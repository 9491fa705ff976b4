package exchange

import (
	"context"
	"strconv"
	"time"

	"github.com/JuanMi-CG/quant-trading/core"
	"github.com/adshao/go-binance/v2"
	"github.com/jpillora/backoff"
)

const maxKlineRetries = 3

// Binance is a spot market candle feed backed by the Binance REST API.
// It implements core.Feeder.
type Binance struct {
	client *binance.Client
	log    core.Logger
}

// BinanceOption configures the feed client
type BinanceOption func(*Binance)

// WithBinanceCredentials sets API credentials. Historical klines are a
// public endpoint, so credentials are optional.
func WithBinanceCredentials(key, secret string) BinanceOption {
	return func(b *Binance) {
		b.client = binance.NewClient(key, secret)
	}
}

// NewBinance creates a new Binance spot feed
func NewBinance(log core.Logger, options ...BinanceOption) *Binance {
	b := &Binance{
		client: binance.NewClient("", ""),
		log:    log,
	}
	for _, option := range options {
		option(b)
	}
	return b
}

// setupBackoffRetry creates a backoff with sensible defaults
func setupBackoffRetry() *backoff.Backoff {
	return &backoff.Backoff{
		Min: 100 * time.Millisecond,
		Max: 1 * time.Second,
	}
}

// CandlesByLimit gets a number of candles for a pair
func (b *Binance) CandlesByLimit(ctx context.Context, pair, timeframe string, limit int) ([]core.Candle, error) {
	data, err := b.fetchKlines(ctx, func() ([]*binance.Kline, error) {
		return b.client.NewKlinesService().
			Symbol(pair).
			Interval(timeframe).
			Limit(limit + 1). // +1 to account for the incomplete candle
			Do(ctx)
	})
	if err != nil {
		return nil, err
	}

	candles := make([]core.Candle, 0, len(data))
	for i, d := range data {
		// Skip the last candle as it's incomplete
		if i == len(data)-1 {
			break
		}
		candles = append(candles, convertKlineToCandle(pair, *d))
	}

	return candles, nil
}

// CandlesByPeriod gets candles for a pair within a time range
func (b *Binance) CandlesByPeriod(ctx context.Context, pair, timeframe string,
	start, end time.Time) ([]core.Candle, error) {

	data, err := b.fetchKlines(ctx, func() ([]*binance.Kline, error) {
		return b.client.NewKlinesService().
			Symbol(pair).
			Interval(timeframe).
			StartTime(start.UnixNano() / int64(time.Millisecond)).
			EndTime(end.UnixNano() / int64(time.Millisecond)).
			Do(ctx)
	})
	if err != nil {
		return nil, err
	}

	candles := make([]core.Candle, 0, len(data))
	for _, d := range data {
		candles = append(candles, convertKlineToCandle(pair, *d))
	}

	return candles, nil
}

// fetchKlines runs a kline request with backoff retries on transient errors
func (b *Binance) fetchKlines(ctx context.Context, do func() ([]*binance.Kline, error)) ([]*binance.Kline, error) {
	retry := setupBackoffRetry()

	var data []*binance.Kline
	var err error
	for attempt := 0; attempt < maxKlineRetries; attempt++ {
		data, err = do()
		if err == nil {
			return data, nil
		}

		b.log.WithError(err).Warnf("kline request failed, retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retry.Duration()):
		}
	}
	return nil, err
}

// convertKlineToCandle converts a Binance spot kline to a core.Candle
func convertKlineToCandle(pair string, k binance.Kline) core.Candle {
	candle := core.Candle{
		Pair: pair,
		Time: time.Unix(0, k.OpenTime*int64(time.Millisecond)).UTC(),
	}

	candle.Open, _ = strconv.ParseFloat(k.Open, 64)
	candle.Close, _ = strconv.ParseFloat(k.Close, 64)
	candle.High, _ = strconv.ParseFloat(k.High, 64)
	candle.Low, _ = strconv.ParseFloat(k.Low, 64)
	candle.Volume, _ = strconv.ParseFloat(k.Volume, 64)

	return candle
}
