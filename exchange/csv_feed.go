// Package exchange provides historical market data feeds backed by CSV
// files and the Binance REST API.
package exchange

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/JuanMi-CG/quant-trading/core"
	"github.com/samber/lo"
	"github.com/xhit/go-str2duration/v2"
)

var (
	// ErrInsufficientData is returned when there is not enough data to fulfill a request
	ErrInsufficientData = errors.New("insufficient data")

	// defaultHeaderMap defines the standard CSV column mapping
	defaultHeaderMap = map[string]int{
		"time": 0, "open": 1, "close": 2, "low": 3, "high": 4, "volume": 5,
	}
)

// PairFeed represents data for a specific trading pair
type PairFeed struct {
	Pair      string
	File      string
	Timeframe string
}

// CSVFeed is an offline candle feed loaded from CSV files.
// It implements core.Feeder.
type CSVFeed struct {
	Feeds               map[string]PairFeed
	CandlePairTimeFrame map[string][]core.Candle
}

// NewCSVFeed creates a new CSV feed and resamples data to the target timeframe
func NewCSVFeed(targetTimeframe string, feeds ...PairFeed) (*CSVFeed, error) {
	csvFeed := &CSVFeed{
		Feeds:               make(map[string]PairFeed),
		CandlePairTimeFrame: make(map[string][]core.Candle),
	}

	for _, feed := range feeds {
		csvFeed.Feeds[feed.Pair] = feed

		candles, err := readCandlesFromCSV(feed)
		if err != nil {
			return nil, err
		}

		sourceKey := csvFeed.feedTimeframeKey(feed.Pair, feed.Timeframe)
		csvFeed.CandlePairTimeFrame[sourceKey] = candles

		if err := csvFeed.resample(feed.Pair, feed.Timeframe, targetTimeframe); err != nil {
			return nil, err
		}
	}

	return csvFeed, nil
}

// readCandlesFromCSV reads and processes a CSV file to create candles
func readCandlesFromCSV(feed PairFeed) ([]core.Candle, error) {
	csvFile, err := os.Open(feed.File)
	if err != nil {
		return nil, err
	}
	defer csvFile.Close()

	csvLines, err := csv.NewReader(csvFile).ReadAll()
	if err != nil {
		return nil, err
	}

	if len(csvLines) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrInsufficientData, feed.File)
	}

	headerMap, hasCustomHeaders := parseHeaders(csvLines[0])
	if hasCustomHeaders {
		csvLines = csvLines[1:]
	}

	candles := make([]core.Candle, 0, len(csvLines))
	for _, line := range csvLines {
		candle, err := parseCandleFromLine(line, headerMap, feed.Pair)
		if err != nil {
			return nil, err
		}
		candles = append(candles, candle)
	}

	return candles, nil
}

// parseHeaders analyzes CSV headers and returns an index map
func parseHeaders(headers []string) (headerMap map[string]int, hasCustomHeaders bool) {
	// Check if first element is a number (not a header)
	if _, err := strconv.Atoi(headers[0]); err == nil {
		return defaultHeaderMap, false
	}

	headerMap = make(map[string]int)
	for index, header := range headers {
		headerMap[header] = index
	}

	return headerMap, true
}

// parseCandleFromLine parses a CSV line and creates a candle
func parseCandleFromLine(line []string, headerMap map[string]int, pair string) (core.Candle, error) {
	timestamp, err := strconv.Atoi(line[headerMap["time"]])
	if err != nil {
		return core.Candle{}, err
	}

	candle := core.Candle{
		Time: time.Unix(int64(timestamp), 0).UTC(),
		Pair: pair,
	}

	if candle.Open, err = strconv.ParseFloat(line[headerMap["open"]], 64); err != nil {
		return core.Candle{}, err
	}

	if candle.Close, err = strconv.ParseFloat(line[headerMap["close"]], 64); err != nil {
		return core.Candle{}, err
	}

	if candle.Low, err = strconv.ParseFloat(line[headerMap["low"]], 64); err != nil {
		return core.Candle{}, err
	}

	if candle.High, err = strconv.ParseFloat(line[headerMap["high"]], 64); err != nil {
		return core.Candle{}, err
	}

	if candle.Volume, err = strconv.ParseFloat(line[headerMap["volume"]], 64); err != nil {
		return core.Candle{}, err
	}

	return candle, nil
}

// ---------------------
// Timeframe Handling
// ---------------------

// isFirstCandlePeriod checks if a candle is the first in a period
func isFirstCandlePeriod(t time.Time, fromTimeframe, targetTimeframe string) (bool, error) {
	fromDuration, err := str2duration.ParseDuration(fromTimeframe)
	if err != nil {
		return false, err
	}

	prev := t.Add(-fromDuration).UTC()
	return isLastCandlePeriod(prev, fromTimeframe, targetTimeframe)
}

// isLastCandlePeriod checks if a candle is the last in a period
func isLastCandlePeriod(t time.Time, fromTimeframe, targetTimeframe string) (bool, error) {
	if fromTimeframe == targetTimeframe {
		return true, nil
	}

	fromDuration, err := str2duration.ParseDuration(fromTimeframe)
	if err != nil {
		return false, err
	}

	next := t.Add(fromDuration).UTC()
	return isTimeOnPeriodBoundary(next, targetTimeframe)
}

// isTimeOnPeriodBoundary checks if a timestamp is on a period boundary
func isTimeOnPeriodBoundary(t time.Time, targetTimeframe string) (bool, error) {
	switch targetTimeframe {
	case "1m":
		return t.Second() == 0, nil
	case "5m":
		return t.Minute()%5 == 0 && t.Second() == 0, nil
	case "10m":
		return t.Minute()%10 == 0 && t.Second() == 0, nil
	case "15m":
		return t.Minute()%15 == 0 && t.Second() == 0, nil
	case "30m":
		return t.Minute()%30 == 0 && t.Second() == 0, nil
	case "1h":
		return t.Minute() == 0 && t.Second() == 0, nil
	case "2h":
		return t.Hour()%2 == 0 && t.Minute() == 0 && t.Second() == 0, nil
	case "4h":
		return t.Hour()%4 == 0 && t.Minute() == 0 && t.Second() == 0, nil
	case "12h":
		return t.Hour()%12 == 0 && t.Minute() == 0 && t.Second() == 0, nil
	case "1d":
		return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0, nil
	case "1w":
		return t.Weekday() == time.Sunday && t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0, nil
	default:
		return false, fmt.Errorf("invalid timeframe: %s", targetTimeframe)
	}
}

// ---------------------
// Resampling
// ---------------------

// resample resamples candles from source timeframe to target timeframe
func (c *CSVFeed) resample(pair, sourceTimeframe, targetTimeframe string) error {
	sourceKey := c.feedTimeframeKey(pair, sourceTimeframe)
	targetKey := c.feedTimeframeKey(pair, targetTimeframe)

	sourceCandles := c.CandlePairTimeFrame[sourceKey]
	if len(sourceCandles) == 0 {
		return nil
	}

	startIdx, err := c.findFirstPeriodCandle(sourceCandles, sourceTimeframe, targetTimeframe)
	if err != nil {
		return err
	}

	targetCandles, err := resampleCandles(sourceCandles[startIdx:], sourceTimeframe, targetTimeframe)
	if err != nil {
		return err
	}

	c.CandlePairTimeFrame[targetKey] = targetCandles
	return nil
}

// findFirstPeriodCandle finds the index of the first candle that starts a period
func (c *CSVFeed) findFirstPeriodCandle(candles []core.Candle, sourceTimeframe, targetTimeframe string) (int, error) {
	for i := range candles {
		isFirst, err := isFirstCandlePeriod(candles[i].Time, sourceTimeframe, targetTimeframe)
		if err != nil {
			return 0, err
		}
		if isFirst {
			return i, nil
		}
	}
	return 0, nil // If not found, start from beginning
}

// resampleCandles resamples candles by grouping them by period
func resampleCandles(sourceCandles []core.Candle, sourceTimeframe, targetTimeframe string) ([]core.Candle, error) {
	if len(sourceCandles) == 0 {
		return nil, nil
	}

	targetCandles := make([]core.Candle, 0, len(sourceCandles)/4)

	var currentCandle core.Candle
	inPeriod := false

	for _, candle := range sourceCandles {
		isLast, err := isLastCandlePeriod(candle.Time, sourceTimeframe, targetTimeframe)
		if err != nil {
			return nil, err
		}

		if !inPeriod {
			currentCandle = candle
			inPeriod = true
			if isLast {
				targetCandles = append(targetCandles, currentCandle)
				inPeriod = false
			}
			continue
		}

		currentCandle.High = math.Max(currentCandle.High, candle.High)
		currentCandle.Low = math.Min(currentCandle.Low, candle.Low)
		currentCandle.Close = candle.Close
		currentCandle.Volume += candle.Volume

		if isLast {
			targetCandles = append(targetCandles, currentCandle)
			inPeriod = false
		}
	}

	return targetCandles, nil
}

// feedTimeframeKey generates a unique key for each pair and timeframe
func (c CSVFeed) feedTimeframeKey(pair, timeframe string) string {
	return fmt.Sprintf("%s--%s", pair, timeframe)
}

// Limit trims every stored series to the trailing duration
func (c *CSVFeed) Limit(duration time.Duration) *CSVFeed {
	for key, candles := range c.CandlePairTimeFrame {
		if len(candles) == 0 {
			continue
		}

		start := candles[len(candles)-1].Time.Add(-duration)
		c.CandlePairTimeFrame[key] = lo.Filter(candles, func(candle core.Candle, _ int) bool {
			return candle.Time.After(start)
		})
	}
	return c
}

// ---------------------
// Feeder Implementation
// ---------------------

// CandlesByPeriod returns candles for a pair and timeframe inside [start, end]
func (c CSVFeed) CandlesByPeriod(_ context.Context, pair, timeframe string, start, end time.Time) ([]core.Candle, error) {
	key := c.feedTimeframeKey(pair, timeframe)
	candles, ok := c.CandlePairTimeFrame[key]
	if !ok {
		return nil, fmt.Errorf("%w: no candles for %s %s", ErrInsufficientData, pair, timeframe)
	}

	result := lo.Filter(candles, func(candle core.Candle, _ int) bool {
		return !candle.Time.Before(start) && !candle.Time.After(end)
	})
	if len(result) == 0 {
		return nil, fmt.Errorf("%w: no candles for %s %s in period", ErrInsufficientData, pair, timeframe)
	}
	return result, nil
}

// CandlesByLimit returns the most recent candles for a pair and timeframe
func (c CSVFeed) CandlesByLimit(_ context.Context, pair, timeframe string, limit int) ([]core.Candle, error) {
	key := c.feedTimeframeKey(pair, timeframe)
	candles, ok := c.CandlePairTimeFrame[key]
	if !ok {
		return nil, fmt.Errorf("%w: no candles for %s %s", ErrInsufficientData, pair, timeframe)
	}
	if len(candles) < limit {
		return nil, fmt.Errorf("%w: %d candles available, %d requested", ErrInsufficientData, len(candles), limit)
	}
	return candles[len(candles)-limit:], nil
}

// Dataframe assembles all stored candles for a pair and timeframe
func (c CSVFeed) Dataframe(pair, timeframe string) (*core.Dataframe, error) {
	key := c.feedTimeframeKey(pair, timeframe)
	candles, ok := c.CandlePairTimeFrame[key]
	if !ok || len(candles) == 0 {
		return nil, fmt.Errorf("%w: no candles for %s %s", ErrInsufficientData, pair, timeframe)
	}
	return core.NewDataframeFromCandles(pair, candles), nil
}
