package database

import (
	"fmt"
	"os"
	"path/filepath"

	"tgstore/internal/config"
	"tgstore/internal/filestore"
)

// NewStoreFromConfig creates a Store implementation based on the database
// config type. quota is the per-owner record ceiling.
func NewStoreFromConfig(cfg config.DatabaseConfig, quota int) (*SQLiteStore, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dbPath := filepath.Join(cfg.DataDir, "tgstore.db")
		return NewSQLiteStore(dbPath, quota, filestore.RealClock{})
	case "memory":
		return NewSQLiteStore(":memory:", quota, filestore.RealClock{})
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
