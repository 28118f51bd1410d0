package database

import (
	"context"
	"fmt"
)

// Optimize runs SQLite's PRAGMA optimize to refresh planner stats.
func (db *DB) Optimize(ctx context.Context) error {
	if db == nil || db.conn == nil {
		return fmt.Errorf("database not initialized")
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if _, err := db.exec(ctx, "PRAGMA optimize"); err != nil {
		return fmt.Errorf("failed to optimize database: %w", err)
	}

	return nil
}

// Checkpoint folds the WAL file back into the main database file.
func (db *DB) Checkpoint(ctx context.Context) error {
	if db == nil || db.conn == nil {
		return fmt.Errorf("database not initialized")
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if _, err := db.exec(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("failed to checkpoint database: %w", err)
	}

	return nil
}
