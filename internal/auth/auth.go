package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/saltyorg/schedulr/internal/database"
)

// PlaceholderAccessToken is returned on successful login. No session or token
// is issued; clients only use it as a "logged in" marker.
const PlaceholderAccessToken = "dummy-token"

var (
	// ErrUsernameTaken is returned by Register when the username is already registered
	ErrUsernameTaken = database.ErrUsernameTaken
	// ErrPasswordTooLong is returned by Register when the password exceeds bcrypt's 72 byte input limit
	ErrPasswordTooLong = bcrypt.ErrPasswordTooLong
)

// User represents a registered account. The password hash never leaves this package.
type User struct {
	ID        int64
	Username  string
	CreatedAt time.Time
}

// AuthService registers and authenticates users
type AuthService struct {
	db   *database.DB
	cost int
}

// NewAuthService creates a new auth service hashing with the given bcrypt cost
func NewAuthService(db *database.DB, cost int) *AuthService {
	return &AuthService{db: db, cost: cost}
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword verifies a password against a hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Register creates a new user account
func (s *AuthService) Register(ctx context.Context, username, password string) (*User, error) {
	hash, err := HashPassword(password, s.cost)
	if err != nil {
		return nil, err
	}

	record, err := s.db.CreateUser(ctx, username, hash)
	if err != nil {
		return nil, err
	}

	return toUser(record), nil
}

// Authenticate verifies credentials and returns the user.
// It returns nil when the username is unknown or the password does not match.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*User, error) {
	record, err := s.db.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	if !CheckPassword(password, record.PasswordHash) {
		return nil, nil
	}
	return toUser(record), nil
}

// UserCount returns the number of registered users
func (s *AuthService) UserCount(ctx context.Context) (int, error) {
	return s.db.CountUsers(ctx)
}

// IsUsernameTaken reports whether err means the username already exists
func IsUsernameTaken(err error) bool {
	return errors.Is(err, ErrUsernameTaken)
}

// IsPasswordTooLong reports whether err means the password cannot be hashed due to its length
func IsPasswordTooLong(err error) bool {
	return errors.Is(err, ErrPasswordTooLong)
}

func toUser(record *database.UserRecord) *User {
	return &User{
		ID:        record.ID,
		Username:  record.Username,
		CreatedAt: record.CreatedAt,
	}
}
