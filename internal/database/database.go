package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection pool of a single service.
type DB struct {
	conn   *sql.DB
	path   string
	schema Schema
	mu     sync.Mutex
}

// New opens the SQLite database at path. The schema selects which set of
// migrations Migrate applies.
func New(path string, schema Schema) (*DB, error) {
	// WAL lets readers proceed while a writer holds the lock. Transactions take
	// the write lock at BEGIN so a read-modify-write waits on busy_timeout
	// instead of failing with SQLITE_BUSY when another writer commits first.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_txlock=immediate", path)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite serializes writes; a small pool is plenty
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)

	log.Debug().Str("path", path).Str("schema", schema.Name).Msg("Database connection established")

	return &DB{
		conn:   conn,
		path:   path,
		schema: schema,
	}, nil
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Close closes the underlying connection pool
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifies the database is reachable
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Transaction wraps fn in a database transaction. The transaction is rolled
// back when fn returns an error.
func (db *DB) Transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("Failed to rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
