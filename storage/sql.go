package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JuanMi-CG/quant-trading/core"
	"github.com/samber/lo"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OptimizationResult is one evaluated strategy row persisted after a
// selection run
type OptimizationResult struct {
	ID        uint   `gorm:"primarykey"`
	Pair      string `gorm:"index"`
	Strategy  string `gorm:"index"`
	Method    string
	Metric    string
	Score     float64
	Candidate string // JSON encoded parameter candidate

	TotalReturn  float64
	AnnualReturn float64
	Volatility   float64
	Sharpe       float64
	MaxDrawdown  float64
	WinRate      float64
	ProfitFactor float64
	Expectancy   float64

	CreatedAt time.Time
}

// ResultFilter selects a subset of stored results
type ResultFilter func(result OptimizationResult) bool

// WithPair filters results to a single trading pair
func WithPair(pair string) ResultFilter {
	return func(result OptimizationResult) bool {
		return result.Pair == pair
	}
}

// WithStrategy filters results to a single strategy class
func WithStrategy(strategy string) ResultFilter {
	return func(result OptimizationResult) bool {
		return result.Strategy == strategy
	}
}

// ResultStore persists optimization results in a SQL database via GORM
type ResultStore struct {
	db *gorm.DB
}

// Config holds the configuration for SQL database connections
type Config struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns a default configuration for SQL connections
func DefaultConfig() Config {
	return Config{
		MaxIdleConns:    5,
		MaxOpenConns:    10,
		ConnMaxLifetime: time.Hour,
	}
}

// NewFromSQLite creates a new SQLite result store
func NewFromSQLite(dbPath string, config Config, opts ...gorm.Option) (*ResultStore, error) {
	dialect := sqlite.Open(dbPath)
	return newFromSQL(dialect, config, opts...)
}

// newFromSQL creates a new result store with the specified configuration
func newFromSQL(dialect gorm.Dialector, config Config, opts ...gorm.Option) (*ResultStore, error) {
	db, err := gorm.Open(dialect, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)

	if err = db.AutoMigrate(&OptimizationResult{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &ResultStore{db: db}, nil
}

// NewResult assembles a result row from a scored candidate and its summary
func NewResult(pair, strategy, method, metric string, score float64,
	candidate core.Candidate, summary core.Summary) (*OptimizationResult, error) {

	encoded, err := json.Marshal(candidate)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal candidate: %w", err)
	}

	return &OptimizationResult{
		Pair:         pair,
		Strategy:     strategy,
		Method:       method,
		Metric:       metric,
		Score:        score,
		Candidate:    string(encoded),
		TotalReturn:  summary.TotalReturn,
		AnnualReturn: summary.AnnualReturn,
		Volatility:   summary.Volatility,
		Sharpe:       summary.Sharpe,
		MaxDrawdown:  summary.MaxDrawdown,
		WinRate:      summary.WinRate,
		ProfitFactor: summary.ProfitFactor,
		Expectancy:   summary.Expectancy,
	}, nil
}

// SaveResult creates a new result row
func (s *ResultStore) SaveResult(ctx context.Context, result *OptimizationResult) error {
	tx := s.db.WithContext(ctx)
	if result := tx.Create(result); result.Error != nil {
		return fmt.Errorf("failed to create result: %w", result.Error)
	}
	return nil
}

// Results retrieves stored results, newest first, matching all filters
func (s *ResultStore) Results(ctx context.Context, filters ...ResultFilter) ([]*OptimizationResult, error) {
	tx := s.db.WithContext(ctx)

	var results []*OptimizationResult
	if query := tx.Order("created_at desc").Find(&results); query.Error != nil && query.Error != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to fetch results: %w", query.Error)
	}

	if len(filters) > 0 {
		results = lo.Filter(results, func(result *OptimizationResult, _ int) bool {
			for _, filter := range filters {
				if !filter(*result) {
					return false
				}
			}
			return true
		})
	}

	return results, nil
}

// DecodeCandidate unpacks the stored candidate JSON
func (r *OptimizationResult) DecodeCandidate() (core.Candidate, error) {
	var candidate core.Candidate
	if err := json.Unmarshal([]byte(r.Candidate), &candidate); err != nil {
		return nil, fmt.Errorf("failed to unmarshal candidate: %w", err)
	}
	return candidate, nil
}
