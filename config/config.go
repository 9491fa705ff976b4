// Package config loads application configuration from YAML files and
// environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the full application configuration
type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Optimize OptimizeConfig `mapstructure:"optimize"`
	Backtest BacktestConfig `mapstructure:"backtest"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// DataConfig describes where candle data comes from
type DataConfig struct {
	Pair      string `mapstructure:"pair"`
	Timeframe string `mapstructure:"timeframe"`
	File      string `mapstructure:"file"`
	CacheDir  string `mapstructure:"cache_dir"`
	// MaxFileSize caps each cache part file, in bytes
	MaxFileSize int64 `mapstructure:"max_file_size"`
}

// OptimizeConfig describes the parameter search
type OptimizeConfig struct {
	Method         string   `mapstructure:"method"`
	Metric         string   `mapstructure:"metric"`
	Trials         int      `mapstructure:"trials"`
	Seed           int64    `mapstructure:"seed"`
	MaxIterations  int      `mapstructure:"max_iterations"`
	PopulationSize int      `mapstructure:"population_size"`
	Strategies     []string `mapstructure:"strategies"`
}

// BacktestConfig describes the simulation settings
type BacktestConfig struct {
	PriceColumn     string  `mapstructure:"price_column"`
	InitialCapital  float64 `mapstructure:"initial_capital"`
	TransactionCost float64 `mapstructure:"transaction_cost"`
}

// StorageConfig describes persistence locations
type StorageConfig struct {
	StrategyDB string `mapstructure:"strategy_db"`
	ResultsDB  string `mapstructure:"results_db"`
	ReportDir  string `mapstructure:"report_dir"`
}

// TelegramConfig describes the optional notification channel
type TelegramConfig struct {
	Token string `mapstructure:"token"`
	Users []int  `mapstructure:"users"`
}

// Load reads configuration from the given path, or from
// "quant-trading.yaml" in ./configs when the path is empty. Environment
// variables prefixed with QUANT override file values.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("quant-trading")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	setDefaults(v)

	v.SetEnvPrefix("QUANT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine, defaults and env apply
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.timeframe", "1d")
	v.SetDefault("data.cache_dir", "data")
	v.SetDefault("data.max_file_size", 10*1024*1024)

	v.SetDefault("optimize.method", "grid")
	v.SetDefault("optimize.metric", "sharpe")
	v.SetDefault("optimize.trials", 50)
	v.SetDefault("optimize.seed", 1)
	v.SetDefault("optimize.max_iterations", 30)
	v.SetDefault("optimize.population_size", 10)

	v.SetDefault("backtest.price_column", "close")
	v.SetDefault("backtest.initial_capital", 10000)
	v.SetDefault("backtest.transaction_cost", 0.001)

	v.SetDefault("storage.strategy_db", "strategies.db")
	v.SetDefault("storage.results_db", "results.db")
	v.SetDefault("storage.report_dir", "reports")
}
