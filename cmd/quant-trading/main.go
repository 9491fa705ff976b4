package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/JuanMi-CG/quant-trading/backtest"
	"github.com/JuanMi-CG/quant-trading/config"
	"github.com/JuanMi-CG/quant-trading/core"
	"github.com/JuanMi-CG/quant-trading/exchange"
	"github.com/JuanMi-CG/quant-trading/logger/zerolog"
	"github.com/JuanMi-CG/quant-trading/notification"
	"github.com/JuanMi-CG/quant-trading/optimizer"
	"github.com/JuanMi-CG/quant-trading/report"
	"github.com/JuanMi-CG/quant-trading/storage"
	"github.com/JuanMi-CG/quant-trading/strategies"
)

const dateLayout = "2006-01-02"

// Command line flags
var (
	configFile string

	// Download command flags
	pair       string
	days       int
	startDate  string
	endDate    string
	timeframe  string
	outputFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "quant-trading",
		Short:   "Strategy parameter optimization and backtesting",
		Version: "1.0.0",
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file path")

	rootCmd.AddCommand(buildOptimizeCmd())
	rootCmd.AddCommand(buildDownloadCmd())
	rootCmd.AddCommand(buildReportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// ---------------------
// optimize
// ---------------------

func buildOptimizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "optimize",
		Short: "Optimize strategy parameters and rank strategies",
		RunE:  runOptimize,
	}
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	log := zerolog.NewConsole()

	df, err := loadDataframe(cmd, cfg, log)
	if err != nil {
		return err
	}

	classes, err := resolveClasses(cfg.Optimize.Strategies)
	if err != nil {
		return err
	}

	searchConfig := optimizer.NewConfig().
		WithMetric(cfg.Optimize.Metric).
		WithTrials(cfg.Optimize.Trials).
		WithSeed(cfg.Optimize.Seed).
		WithMaxIterations(cfg.Optimize.MaxIterations).
		WithPopulationSize(cfg.Optimize.PopulationSize).
		WithBacktest(backtest.Config{
			PriceColumn:     cfg.Backtest.PriceColumn,
			InitialCapital:  cfg.Backtest.InitialCapital,
			TransactionCost: cfg.Backtest.TransactionCost,
		}).
		WithLogger(log).
		WithProgress(true)

	selector, err := optimizer.NewStrategySelector(core.SearchMethod(cfg.Optimize.Method), searchConfig)
	if err != nil {
		return err
	}

	log.Infof("Optimizing %d strategy classes on %s (%d candles)", len(classes), cfg.Data.Pair, df.Len())

	result, err := selector.FindBestStrategy(df, classes)
	if err != nil {
		return err
	}

	report.RenderRanking(os.Stdout, result.Rows, cfg.Optimize.Metric)

	best := result.Best()
	report.RenderSummary(os.Stdout, best.Strategy, best.Summary)

	if equity := result.Equity[best.Strategy]; len(equity) > 1 {
		fmt.Println("Best strategy period returns:")
		if err := report.PrintReturnsHistogram(os.Stdout, equityReturns(equity)); err != nil {
			log.WithError(err).Warn("failed to render histogram")
		}
	}

	if err := persistResults(cmd, cfg, best, result, log); err != nil {
		return err
	}

	notify(cfg, best, log)
	return nil
}

// loadDataframe builds the price dataframe from the configured CSV
// file, or fetches the last year of candles from the exchange through
// the local cache when no file is set
func loadDataframe(cmd *cobra.Command, cfg *config.Config, log core.Logger) (*core.Dataframe, error) {
	if cfg.Data.Pair == "" {
		return nil, fmt.Errorf("data.pair is required")
	}

	if cfg.Data.File != "" {
		feed, err := exchange.NewCSVFeed(cfg.Data.Timeframe, exchange.PairFeed{
			Pair:      cfg.Data.Pair,
			File:      cfg.Data.File,
			Timeframe: cfg.Data.Timeframe,
		})
		if err != nil {
			return nil, err
		}
		return feed.Dataframe(cfg.Data.Pair, cfg.Data.Timeframe)
	}

	manager, err := exchange.NewDataManager(
		cfg.Data.CacheDir, cfg.Data.MaxFileSize, exchange.NewBinance(log), log)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := end.AddDate(-1, 0, 0)

	candles, err := manager.Load(cmd.Context(), cfg.Data.Pair, cfg.Data.Timeframe, start, end)
	if err != nil {
		return nil, err
	}
	return core.NewDataframeFromCandles(cfg.Data.Pair, candles), nil
}

// resolveClasses maps configured names to strategy classes, defaulting
// to every built-in class
func resolveClasses(names []string) ([]optimizer.StrategyClass, error) {
	if len(names) == 0 {
		return strategies.Classes(), nil
	}

	classes := make([]optimizer.StrategyClass, 0, len(names))
	for _, name := range names {
		class, err := strategies.Class(name)
		if err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}
	return classes, nil
}

// equityReturns derives per-period returns from an equity curve
func equityReturns(equity []float64) []float64 {
	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		returns = append(returns, equity[i]/equity[i-1]-1)
	}
	return returns
}

// persistResults saves the winning strategy, all ranked rows, and the
// best summary report
func persistResults(cmd *cobra.Command, cfg *config.Config,
	best optimizer.StrategyRow, result *optimizer.SelectionResult, log core.Logger) error {

	store, err := storage.NewFromFile(cfg.Storage.StrategyDB)
	if err != nil {
		return err
	}
	defer store.Close()

	record := storage.StrategyRecord{
		Name:      best.Strategy,
		Class:     best.Strategy,
		Candidate: best.Candidate,
		Metric:    cfg.Optimize.Metric,
		Score:     best.Score,
	}
	if err := store.Save(record); err != nil {
		return err
	}
	log.Infof("Saved strategy %q to %s", best.Strategy, cfg.Storage.StrategyDB)

	results, err := storage.NewFromSQLite(cfg.Storage.ResultsDB, storage.DefaultConfig())
	if err != nil {
		return err
	}
	for _, row := range result.Rows {
		entry, err := storage.NewResult(
			cfg.Data.Pair, row.Strategy, cfg.Optimize.Method, cfg.Optimize.Metric,
			row.Score, row.Candidate, row.Summary,
		)
		if err != nil {
			return err
		}
		if err := results.SaveResult(cmd.Context(), entry); err != nil {
			return err
		}
	}

	reports, err := report.NewManager(cfg.Storage.ReportDir)
	if err != nil {
		return err
	}
	return reports.SaveSummary(best.Strategy, best.Summary)
}

// notify pushes the winner to telegram when configured
func notify(cfg *config.Config, best optimizer.StrategyRow, log core.Logger) {
	if cfg.Telegram.Token == "" {
		return
	}

	notifier, err := notification.NewTelegram(notification.Settings{
		Token: cfg.Telegram.Token,
		Users: cfg.Telegram.Users,
	})
	if err != nil {
		log.WithError(err).Warn("failed to create telegram notifier")
		return
	}

	notifier.Notify(fmt.Sprintf(
		"Best strategy for %s: *%s* (%s)\n%s = %.4f",
		cfg.Data.Pair, best.Strategy,
		report.FormatCandidate(best.Candidate),
		cfg.Optimize.Metric, best.Score,
	))
}

// ---------------------
// download
// ---------------------

func buildDownloadCmd() *cobra.Command {
	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Download historical data",
		RunE:  runDownload,
	}

	downloadCmd.Flags().StringVarP(&pair, "pair", "p", "", "Trading pair (e.g. BTCUSDT)")
	downloadCmd.Flags().IntVarP(&days, "days", "d", 0, "Number of days to download (default 30 days)")
	downloadCmd.Flags().StringVarP(&startDate, "start", "s", "", "Start date (e.g. 2021-12-01)")
	downloadCmd.Flags().StringVarP(&endDate, "end", "e", "", "End date (e.g. 2022-12-31)")
	downloadCmd.Flags().StringVarP(&timeframe, "timeframe", "t", "", "Timeframe (e.g. 1h)")
	downloadCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (e.g. ./btc.csv)")

	downloadCmd.MarkFlagRequired("pair")
	downloadCmd.MarkFlagRequired("timeframe")
	downloadCmd.MarkFlagRequired("output")

	return downloadCmd
}

func runDownload(cmd *cobra.Command, args []string) error {
	log := zerolog.NewConsole()

	options, err := buildDownloadOptions()
	if err != nil {
		return err
	}

	feed := exchange.NewBinance(log)
	return exchange.NewDownloader(feed, log).Download(
		cmd.Context(),
		pair,
		timeframe,
		outputFile,
		options...,
	)
}

func buildDownloadOptions() ([]exchange.Option, error) {
	var options []exchange.Option

	if days > 0 {
		options = append(options, exchange.WithDays(days))
	}

	if startDate != "" || endDate != "" {
		if startDate == "" || endDate == "" {
			return nil, fmt.Errorf("start and end dates must be provided together")
		}

		start, err := time.Parse(dateLayout, startDate)
		if err != nil {
			return nil, fmt.Errorf("invalid start date format: %w", err)
		}

		end, err := time.Parse(dateLayout, endDate)
		if err != nil {
			return nil, fmt.Errorf("invalid end date format: %w", err)
		}

		options = append(options, exchange.WithInterval(start, end))
	}

	return options, nil
}

// ---------------------
// report
// ---------------------

func buildReportCmd() *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Inspect saved performance reports",
	}

	reportCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved reports",
		RunE:  runReportList,
	})
	reportCmd.AddCommand(&cobra.Command{
		Use:   "show <name>",
		Short: "Show one saved report",
		Args:  cobra.ExactArgs(1),
		RunE:  runReportShow,
	})

	return reportCmd
}

func runReportList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	reports, err := report.NewManager(cfg.Storage.ReportDir)
	if err != nil {
		return err
	}

	names, err := reports.List()
	if err != nil {
		return err
	}

	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func runReportShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	reports, err := report.NewManager(cfg.Storage.ReportDir)
	if err != nil {
		return err
	}

	summary, err := reports.LoadSummary(args[0])
	if err != nil {
		return err
	}

	report.RenderSummary(os.Stdout, args[0], summary)
	return nil
}
