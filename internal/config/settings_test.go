package config

import (
	"errors"
	"testing"
)

type mapSettings map[string]string

func (m mapSettings) GetSetting(key string) (string, error) {
	if key == "broken" {
		return "", errors.New("storage unavailable")
	}
	return m[key], nil
}

func TestLoader(t *testing.T) {
	l := NewLoader(mapSettings{
		"log.max_backups": "3",
		"log.max_size_mb": "big",
		"log.compress":    "false",
		"schedule":        "@hourly",
	})

	if got := l.Int("log.max_backups", 5); got != 3 {
		t.Errorf("Int stored = %d, want 3", got)
	}
	if got := l.Int("log.max_size_mb", 50); got != 50 {
		t.Errorf("Int invalid = %d, want default 50", got)
	}
	if got := l.Int("missing", 7); got != 7 {
		t.Errorf("Int missing = %d, want default 7", got)
	}
	if got := l.Bool("log.compress", true); got {
		t.Error("Bool stored false returned true")
	}
	if got := l.Bool("missing", true); !got {
		t.Error("Bool missing should return default")
	}
	if got := l.String("schedule", "@daily"); got != "@hourly" {
		t.Errorf("String stored = %q, want @hourly", got)
	}
	if got := l.String("broken", "@daily"); got != "@daily" {
		t.Errorf("String on error = %q, want default", got)
	}
}

func TestValidateSetting(t *testing.T) {
	tests := []struct {
		key   string
		value string
		ok    bool
	}{
		{SettingLogMaxSizeMB, "10", true},
		{SettingLogMaxSizeMB, "0", false},
		{SettingLogMaxBackups, "0", true},
		{SettingLogMaxBackups, "-1", false},
		{SettingLogMaxAgeDays, "many", false},
		{SettingLogCompress, "false", true},
		{SettingLogCompress, "no", false},
		{SettingMaintenanceSchedule, "@hourly", true},
		{SettingMaintenanceSchedule, "30 3 * * *", true},
		{SettingMaintenanceSchedule, "off", true},
		{SettingMaintenanceSchedule, "whenever", false},
		{"log.colour", "red", false},
	}

	for _, tt := range tests {
		err := ValidateSetting(tt.key, tt.value)
		if (err == nil) != tt.ok {
			t.Errorf("ValidateSetting(%q, %q) error = %v, want ok=%v", tt.key, tt.value, err, tt.ok)
		}
	}
}

func TestSettingKeys(t *testing.T) {
	keys := SettingKeys()
	if len(keys) != 5 || keys[0] != SettingLogCompress || keys[len(keys)-1] != SettingMaintenanceSchedule {
		t.Fatalf("unexpected keys: %v", keys)
	}
}
