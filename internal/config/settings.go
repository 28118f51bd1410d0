package config

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
)

// SettingsGetter is an interface for retrieving settings from storage
type SettingsGetter interface {
	GetSetting(key string) (string, error)
}

// Loader provides typed access to settings with default values
type Loader struct {
	db SettingsGetter
}

// NewLoader creates a new settings loader
func NewLoader(db SettingsGetter) *Loader {
	return &Loader{db: db}
}

// Int retrieves an integer setting, returning defaultVal if not found or invalid
func (l *Loader) Int(key string, defaultVal int) int {
	if val, _ := l.db.GetSetting(key); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			return v
		}
	}
	return defaultVal
}

// Bool retrieves a boolean setting, returning defaultVal if not found.
// Only "true" is true once a value is stored.
func (l *Loader) Bool(key string, defaultVal bool) bool {
	if val, _ := l.db.GetSetting(key); val != "" {
		return val == "true"
	}
	return defaultVal
}

// String retrieves a string setting, returning defaultVal if not found or empty
func (l *Loader) String(key, defaultVal string) string {
	if val, _ := l.db.GetSetting(key); val != "" {
		return val
	}
	return defaultVal
}

// Runtime setting keys
const (
	SettingLogMaxSizeMB        = "log.max_size_mb"
	SettingLogMaxBackups       = "log.max_backups"
	SettingLogMaxAgeDays       = "log.max_age_days"
	SettingLogCompress         = "log.compress"
	SettingMaintenanceSchedule = "maintenance.schedule"
)

var settingValidators = map[string]func(string) error{
	SettingLogMaxSizeMB:        intAtLeast(1),
	SettingLogMaxBackups:       intAtLeast(0),
	SettingLogMaxAgeDays:       intAtLeast(0),
	SettingLogCompress:         boolString,
	SettingMaintenanceSchedule: cronSchedule,
}

// SettingKeys returns every key ValidateSetting accepts, sorted
func SettingKeys() []string {
	return slices.Sorted(maps.Keys(settingValidators))
}

// ValidateSetting checks that key is a known setting and value parses for it
func ValidateSetting(key, value string) error {
	check, ok := settingValidators[key]
	if !ok {
		return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(SettingKeys(), ", "))
	}
	if err := check(value); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}

func intAtLeast(floor int) func(string) error {
	return func(value string) error {
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%q is not an integer", value)
		}
		if v < floor {
			return fmt.Errorf("must be at least %d", floor)
		}
		return nil
	}
}

func boolString(value string) error {
	if value != "true" && value != "false" {
		return fmt.Errorf("%q must be true or false", value)
	}
	return nil
}

func cronSchedule(value string) error {
	if value == "off" {
		return nil
	}
	_, err := cron.ParseStandard(value)
	return err
}
