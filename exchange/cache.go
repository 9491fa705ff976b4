package exchange

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/JuanMi-CG/quant-trading/core"
	"github.com/samber/lo"
)

// DataManager caches downloaded candles as partitioned CSV files. A
// dataset is split into "<basename>_partN.csv" files so no single file
// grows beyond MaxFileSize bytes; loading concatenates the parts back
// in order.
type DataManager struct {
	dataDir     string
	maxFileSize int64
	feeder      core.Feeder
	log         core.Logger
}

// NewDataManager creates a cache manager rooted at dataDir
func NewDataManager(dataDir string, maxFileSize int64, feeder core.Feeder, log core.Logger) (*DataManager, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return &DataManager{
		dataDir:     dataDir,
		maxFileSize: maxFileSize,
		feeder:      feeder,
		log:         log,
	}, nil
}

// Load returns the cached candles for a pair, timeframe and time range,
// fetching and caching them on a miss
func (m *DataManager) Load(ctx context.Context, pair, timeframe string, start, end time.Time) ([]core.Candle, error) {
	basename := cacheBasename(pair, timeframe, start, end)

	parts, err := m.partFiles(basename)
	if err != nil {
		return nil, err
	}

	if len(parts) > 0 {
		candles, err := m.loadParts(pair, timeframe, parts)
		if err != nil {
			return nil, err
		}
		m.log.Infof("Loaded %d candles from cache (%d files)", len(candles), len(parts))
		return candles, nil
	}

	m.log.Infof("Downloading %s %s from %s to %s",
		pair, timeframe, start.Format("2006-01-02"), end.Format("2006-01-02"))

	candles, err := m.feeder.CandlesByPeriod(ctx, pair, timeframe, start, end)
	if err != nil {
		return nil, err
	}

	if err := m.saveSplit(candles, basename); err != nil {
		return nil, err
	}
	return candles, nil
}

// partFiles lists the cached part files for a basename in part order
func (m *DataManager) partFiles(basename string) ([]string, error) {
	parts, err := filepath.Glob(filepath.Join(m.dataDir, basename+"_part*.csv"))
	if err != nil {
		return nil, err
	}
	sort.Slice(parts, func(i, j int) bool {
		return partNumber(parts[i]) < partNumber(parts[j])
	})
	return parts, nil
}

// partNumber extracts the N from "<basename>_partN.csv"
func partNumber(path string) int {
	name := strings.TrimSuffix(filepath.Base(path), ".csv")
	idx := strings.LastIndex(name, "_part")
	if idx < 0 {
		return 0
	}
	var n int
	fmt.Sscanf(name[idx+len("_part"):], "%d", &n)
	return n
}

// loadParts reads and concatenates cached part files
func (m *DataManager) loadParts(pair, timeframe string, parts []string) ([]core.Candle, error) {
	chunks := make([][]core.Candle, 0, len(parts))
	for _, part := range parts {
		candles, err := readCandlesFromCSV(PairFeed{Pair: pair, File: part, Timeframe: timeframe})
		if err != nil {
			return nil, fmt.Errorf("reading cache part %s: %w", part, err)
		}
		chunks = append(chunks, candles)
	}
	return lo.Flatten(chunks), nil
}

// saveSplit writes candles across part files capped at maxFileSize bytes
func (m *DataManager) saveSplit(candles []core.Candle, basename string) error {
	if len(candles) == 0 {
		return nil
	}

	rows := make([][]string, len(candles))
	totalBytes := 0
	for i, candle := range candles {
		rows[i] = candle.ToSlice(csvPrecision)
		for _, field := range rows[i] {
			totalBytes += len(field) + 1
		}
	}

	avgRowBytes := totalBytes / len(rows)
	if avgRowBytes == 0 {
		avgRowBytes = 1
	}
	chunk := int(m.maxFileSize) / avgRowBytes
	if chunk < 1 {
		chunk = 1
	}

	for i := 0; i < len(rows); i += chunk {
		last := i + chunk
		if last > len(rows) {
			last = len(rows)
		}

		path := filepath.Join(m.dataDir, fmt.Sprintf("%s_part%d.csv", basename, i/chunk+1))
		if err := writePart(path, rows[i:last]); err != nil {
			return err
		}
		m.log.Infof("Saved cache %s (%d rows)", path, last-i)
	}
	return nil
}

// writePart writes one part file with the standard header
func writePart(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeaders); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// cacheBasename builds a filesystem-safe dataset name from its identity
func cacheBasename(pair, timeframe string, start, end time.Time) string {
	safePair := strings.NewReplacer("/", "", ":", "").Replace(pair)
	return strings.Join([]string{
		safePair,
		timeframe,
		start.Format("2006-01-02"),
		end.Format("2006-01-02"),
	}, "_")
}
