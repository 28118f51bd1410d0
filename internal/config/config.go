// Package config loads service configuration from the environment (and an
// optional .env file) and exposes typed access to runtime settings stored in
// the database.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"golang.org/x/crypto/bcrypt"
)

// EnvPrefix is the prefix shared by every environment variable the services read
const EnvPrefix = "SCHEDULR_"

// Service identifies which of the two services a process runs
type Service string

const (
	ServiceAuth      Service = "auth"
	ServiceSchedules Service = "schedules"
)

// DefaultOwner is the placeholder owner every schedule is stored under
const DefaultOwner = "dummy_user"

// ParseService maps a command line argument to a Service
func ParseService(name string) (Service, error) {
	switch s := Service(strings.ToLower(name)); s {
	case ServiceAuth, ServiceSchedules:
		return s, nil
	}
	return "", fmt.Errorf("unknown service %q (expected %s or %s)", name, ServiceAuth, ServiceSchedules)
}

// Config holds the settings of one service process.
type Config struct {
	Port                int    `koanf:"port" validate:"required,min=1,max=65535"`
	Bind                string `koanf:"bind" validate:"omitempty,ip"`
	AllowSubnet         string `koanf:"allow_subnet" validate:"omitempty,cidr"`
	DBPath              string `koanf:"db_path" validate:"required"`
	LogLevel            string `koanf:"log_level" validate:"omitempty,oneof=info debug trace"`
	LogFile             string `koanf:"log_file"`
	CORSOrigins         string `koanf:"cors_origins"`
	Owner               string `koanf:"owner" validate:"required"`
	BcryptCost          int    `koanf:"bcrypt_cost" validate:"min=4,max=31"`
	MaintenanceSchedule string `koanf:"maintenance_schedule"`
}

// Default returns the built-in configuration for service
func Default(service Service) *Config {
	cfg := &Config{
		LogLevel:            "info",
		CORSOrigins:         "*",
		Owner:               DefaultOwner,
		BcryptCost:          bcrypt.DefaultCost,
		MaintenanceSchedule: "@daily",
	}

	switch service {
	case ServiceAuth:
		cfg.Port = 5000
		cfg.DBPath = "./users.db"
	case ServiceSchedules:
		cfg.Port = 5001
		cfg.DBPath = "./schedules.db"
	}

	return cfg
}

// Load returns the defaults for service overlaid with SCHEDULR_* variables and
// then with service-scoped variables (SCHEDULR_AUTH_*, SCHEDULR_SCHEDULES_*).
func Load(service Service) (*Config, error) {
	cfg := Default(service)

	k := koanf.New(".")
	scoped := EnvPrefix + strings.ToUpper(string(service)) + "_"

	for _, prefix := range []string{EnvPrefix, scoped} {
		if err := k.Load(env.Provider(prefix, ".", func(s string) string {
			return strings.ToLower(strings.TrimPrefix(s, prefix))
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load %s* environment: %w", prefix, err)
		}
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for missing or malformed values
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// AllowedOrigins returns the CORS origins as a list. An empty value allows every origin.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for origin := range strings.SplitSeq(c.CORSOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
