// Package storage persists optimized strategies and optimization results.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/JuanMi-CG/quant-trading/core"
	"github.com/tidwall/buntdb"
)

const (
	// DefaultIndexName is the default index used for record retrieval
	DefaultIndexName = "update_index"
)

// StrategyRecord is the persisted form of an optimized strategy: its
// class and the winning parameter candidate. Rebuilding the strategy
// from a record must reproduce the exact backtest it was saved with.
type StrategyRecord struct {
	Name      string         `json:"name"`
	Class     string         `json:"class"`
	Candidate core.Candidate `json:"candidate"`
	Metric    string         `json:"metric"`
	Score     float64        `json:"score"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// BuntConfig holds configuration options for BuntDB
type BuntConfig struct {
	// SyncPolicy determines how often data is synchronized to disk
	SyncPolicy buntdb.SyncPolicy
}

// DefaultBuntConfig returns the default configuration for BuntDB
func DefaultBuntConfig() BuntConfig {
	return BuntConfig{
		SyncPolicy: buntdb.Never,
	}
}

// StrategyStore keeps strategy records in a BuntDB keyspace keyed by
// strategy name
type StrategyStore struct {
	db *buntdb.DB
}

// NewFromMemory creates an in-memory store with default configuration
func NewFromMemory() (*StrategyStore, error) {
	return NewStrategyStore(":memory:", DefaultBuntConfig())
}

// NewFromFile creates a file-based store with default configuration
func NewFromFile(file string) (*StrategyStore, error) {
	return NewStrategyStore(file, DefaultBuntConfig())
}

// NewStrategyStore creates a new BuntDB store with the specified configuration
func NewStrategyStore(sourceFile string, config BuntConfig) (*StrategyStore, error) {
	db, err := buntdb.Open(sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb: %w", err)
	}

	if err := db.SetConfig(buntdb.Config{
		SyncPolicy: config.SyncPolicy,
	}); err != nil {
		return nil, fmt.Errorf("failed to configure buntdb: %w", err)
	}

	if err := db.CreateIndex(DefaultIndexName, "*", buntdb.IndexJSON("updated_at")); err != nil {
		return nil, fmt.Errorf("failed to create default index: %w", err)
	}

	return &StrategyStore{db: db}, nil
}

// Save writes a strategy record, replacing any record of the same name
func (s *StrategyStore) Save(record StrategyRecord) error {
	return s.db.Update(func(tx *buntdb.Tx) error {
		record.UpdatedAt = time.Now().UTC()

		content, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal strategy record: %w", err)
		}

		_, _, err = tx.Set(record.Name, string(content), nil)
		if err != nil {
			return fmt.Errorf("failed to store strategy record: %w", err)
		}

		return nil
	})
}

// Get retrieves a strategy record by name
func (s *StrategyStore) Get(name string) (StrategyRecord, error) {
	var record StrategyRecord

	err := s.db.View(func(tx *buntdb.Tx) error {
		content, err := tx.Get(name)
		if err != nil {
			if errors.Is(err, buntdb.ErrNotFound) {
				return fmt.Errorf("%w: %q", core.ErrStrategyNotFound, name)
			}
			return err
		}
		return json.Unmarshal([]byte(content), &record)
	})

	return record, err
}

// List returns all stored records ordered by update time
func (s *StrategyStore) List() ([]StrategyRecord, error) {
	records := make([]StrategyRecord, 0)

	err := s.db.View(func(tx *buntdb.Tx) error {
		var innerErr error
		err := tx.Ascend(DefaultIndexName, func(_, value string) bool {
			var record StrategyRecord
			if innerErr = json.Unmarshal([]byte(value), &record); innerErr != nil {
				return false
			}
			records = append(records, record)
			return true
		})
		if err != nil {
			return err
		}
		return innerErr
	})

	return records, err
}

// Delete removes a strategy record by name
func (s *StrategyStore) Delete(name string) error {
	return s.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(name)
		if errors.Is(err, buntdb.ErrNotFound) {
			return fmt.Errorf("%w: %q", core.ErrStrategyNotFound, name)
		}
		return err
	})
}

// Close releases the underlying database
func (s *StrategyStore) Close() error {
	return s.db.Close()
}
