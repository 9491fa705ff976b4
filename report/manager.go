package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JuanMi-CG/quant-trading/core"
)

// Manager stores performance summaries as CSV reports in a directory
type Manager struct {
	directory string
}

// NewManager creates a report manager rooted at the given directory
func NewManager(directory string) (*Manager, error) {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, err
	}
	return &Manager{directory: directory}, nil
}

// SaveSummary writes a summary as "<name>.csv" with metric,value rows
func (m *Manager) SaveSummary(name string, summary core.Summary) error {
	file, err := os.Create(m.path(name))
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"metric", "value"}); err != nil {
		return err
	}
	for _, entry := range summaryEntries(summary) {
		row := []string{entry.label, strconv.FormatFloat(entry.value, 'g', -1, 64)}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// LoadSummary reads a summary previously written by SaveSummary
func (m *Manager) LoadSummary(name string) (core.Summary, error) {
	var summary core.Summary

	file, err := os.Open(m.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return summary, fmt.Errorf("report %q not found", name)
		}
		return summary, err
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return summary, err
	}

	values := make(map[string]float64, len(rows))
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		value, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return summary, fmt.Errorf("report %q: bad value for %s: %w", name, row[0], err)
		}
		values[row[0]] = value
	}

	summary.TotalReturn = values["Total Return"]
	summary.AnnualReturn = values["Ann. Return"]
	summary.Volatility = values["Ann. Vol"]
	summary.Sharpe = values["Sharpe"]
	summary.MaxDrawdown = values["Max Drawdown"]
	summary.WinRate = values["Win Rate"]
	summary.ProfitFactor = values["Profit Factor"]
	summary.Expectancy = values["Expectancy"]

	return summary, nil
}

// List returns the names of all stored reports
func (m *Manager) List() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(m.directory, "*.csv"))
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(matches))
	for _, match := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(match), ".csv"))
	}
	return names, nil
}

func (m *Manager) path(name string) string {
	return filepath.Join(m.directory, name+".csv")
}
