package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/saltyorg/schedulr/internal/config"
)

type mapSettings map[string]string

func (m mapSettings) GetSetting(key string) (string, error) {
	return m[key], nil
}

func TestRotationFromSettings(t *testing.T) {
	if got := RotationFromSettings(nil); got != DefaultRotation() {
		t.Fatalf("nil loader: got %+v, want defaults", got)
	}

	got := RotationFromSettings(config.NewLoader(mapSettings{
		config.SettingLogMaxSizeMB:  "0",
		config.SettingLogMaxBackups: "2",
		config.SettingLogMaxAgeDays: "-4",
		config.SettingLogCompress:   "false",
	}))
	want := Rotation{MaxSizeMB: 50, MaxBackups: 2, MaxAgeDays: 30, Compress: false}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestApply_WritesLogFile(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	path := filepath.Join(t.TempDir(), "logs", "auth.log")
	Apply("debug", nil, path)

	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Fatalf("expected debug level, got %s", zerolog.GlobalLevel())
	}

	log.Info().Str("service", "auth").Msg("hello from the test")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello from the test") {
		t.Fatalf("log file missing message: %q", data)
	}
}

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		verbosity int
		fallback  string
		want      string
	}{
		{0, "info", "info"},
		{0, "debug", "debug"},
		{1, "info", "debug"},
		{2, "info", "trace"},
		{5, "info", "trace"},
	}

	for _, tt := range tests {
		if got := LevelFromVerbosity(tt.verbosity, tt.fallback); got != tt.want {
			t.Errorf("LevelFromVerbosity(%d, %q) = %q, want %q", tt.verbosity, tt.fallback, got, tt.want)
		}
	}
}

func TestFilePathForDB(t *testing.T) {
	dir := t.TempDir()

	got := FilePathForDB(filepath.Join(dir, "users.db"), config.ServiceAuth)
	if want := filepath.Join(dir, "auth.log"); got != want {
		t.Errorf("FilePathForDB = %q, want %q", got, want)
	}

	if got := FilePathForDB("", config.ServiceSchedules); got != "schedules.log" {
		t.Errorf("FilePathForDB without db = %q, want schedules.log", got)
	}

	if got := FilePathForDB("", ""); got != DefaultLogFileName {
		t.Errorf("FilePathForDB without service = %q, want %q", got, DefaultLogFileName)
	}
}

func TestEnsureLogDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "logs", "auth.log")
	if err := ensureLogDir(path); err != nil {
		t.Fatalf("ensureLogDir returned error: %v", err)
	}
	if err := ensureLogDir("auth.log"); err != nil {
		t.Fatalf("ensureLogDir for bare file returned error: %v", err)
	}
}
