// Package report renders optimization results as terminal tables and
// histograms, and persists performance summaries as CSV reports.
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/JuanMi-CG/quant-trading/core"
	"github.com/JuanMi-CG/quant-trading/optimizer"
	"github.com/aybabtme/uniplot/histogram"
	"github.com/olekukonko/tablewriter"
)

// RenderRanking writes the ranked strategy table produced by a
// selection run
func RenderRanking(w io.Writer, rows []optimizer.StrategyRow, metric string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{
		"Rank", "Strategy", "Parameters", strings.ToUpper(metric),
		"Return", "Sharpe", "Max DD", "% Win",
	})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for i, row := range rows {
		table.Append([]string{
			strconv.Itoa(i + 1),
			row.Strategy,
			FormatCandidate(row.Candidate),
			fmt.Sprintf("%.4f", row.Score),
			fmt.Sprintf("%.2f %%", row.Summary.TotalReturn*100),
			fmt.Sprintf("%.3f", row.Summary.Sharpe),
			fmt.Sprintf("%.2f %%", row.Summary.MaxDrawdown*100),
			fmt.Sprintf("%.1f %%", row.Summary.WinRate*100),
		})
	}

	table.Render()
}

// RenderSummary writes one performance summary as a metric/value table
func RenderSummary(w io.Writer, name string, summary core.Summary) {
	fmt.Fprintf(w, "Performance Report (%s):\n", name)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})

	for _, entry := range summaryEntries(summary) {
		table.Append([]string{entry.label, fmt.Sprintf("%.4f", entry.value)})
	}

	table.Render()
}

// PrintReturnsHistogram draws the distribution of per-period returns
func PrintReturnsHistogram(w io.Writer, returns []float64) error {
	returnsPercent := make([]float64, len(returns))
	for i, r := range returns {
		returnsPercent[i] = r * 100
	}

	hist := histogram.Hist(15, returnsPercent)
	return histogram.Fprint(w, hist, histogram.Linear(10))
}

// FormatCandidate renders a candidate as "key=value" pairs in key order
func FormatCandidate(candidate core.Candidate) string {
	keys := make([]string, 0, len(candidate))
	for key := range candidate {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", key, candidate[key]))
	}
	return strings.Join(parts, " ")
}

type summaryEntry struct {
	label string
	value float64
}

// summaryEntries fixes the report row order
func summaryEntries(summary core.Summary) []summaryEntry {
	return []summaryEntry{
		{"Total Return", summary.TotalReturn},
		{"Ann. Return", summary.AnnualReturn},
		{"Ann. Vol", summary.Volatility},
		{"Sharpe", summary.Sharpe},
		{"Max Drawdown", summary.MaxDrawdown},
		{"Win Rate", summary.WinRate},
		{"Profit Factor", summary.ProfitFactor},
		{"Expectancy", summary.Expectancy},
	}
}
