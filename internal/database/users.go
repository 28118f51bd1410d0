package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// UserRecord represents a user account stored in the database.
type UserRecord struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUser inserts a new user record. It returns ErrUsernameTaken when the
// username is already registered.
func (db *DB) CreateUser(ctx context.Context, username, passwordHash string) (*UserRecord, error) {
	now := time.Now().UTC()
	result, err := db.exec(ctx, `
		INSERT INTO users (username, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, username, passwordHash, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get user id: %w", err)
	}

	return &UserRecord{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// GetUserByUsername retrieves a user by username. It returns nil when no user matches.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*UserRecord, error) {
	user := &UserRecord{}
	err := db.queryRow(ctx, `
		SELECT id, username, password_hash, created_at, updated_at
		FROM users WHERE username = ?
	`, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// CountUsers returns the number of registered users
func (db *DB) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := db.queryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
