package store

import (
	"fmt"
	"path/filepath"

	"snapcheck/internal/config"
)

// NewStoreFromConfig creates a Store over the given state directory based on
// the configured backend type.
func NewStoreFromConfig(cfg config.StoreConfig, stateDir string) (Store, error) {
	switch cfg.Type {
	case "", "textfile":
		return NewTextFileStore(stateDir)
	case "sqlite":
		return NewSQLiteStore(filepath.Join(stateDir, "snapshots.db"))
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
