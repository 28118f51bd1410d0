// Package logging configures the global zerolog logger: a console writer on
// stdout and, once the service database is open, a rotating log file.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/saltyorg/schedulr/internal/config"
)

const (
	DefaultLogFileName = "schedulr.log"

	timeFormat = "2006-01-02 15:04:05"
)

// Rotation holds the lumberjack limits of the log file
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultRotation keeps five compressed 50 MB files for at most 30 days
func DefaultRotation() Rotation {
	return Rotation{MaxSizeMB: 50, MaxBackups: 5, MaxAgeDays: 30, Compress: true}
}

// RotationFromSettings overlays the stored log.* settings on DefaultRotation.
// Out of range values keep the default.
func RotationFromSettings(loader *config.Loader) Rotation {
	r := DefaultRotation()
	if loader == nil {
		return r
	}
	if v := loader.Int(config.SettingLogMaxSizeMB, r.MaxSizeMB); v > 0 {
		r.MaxSizeMB = v
	}
	if v := loader.Int(config.SettingLogMaxBackups, r.MaxBackups); v >= 0 {
		r.MaxBackups = v
	}
	if v := loader.Int(config.SettingLogMaxAgeDays, r.MaxAgeDays); v >= 0 {
		r.MaxAgeDays = v
	}
	r.Compress = loader.Bool(config.SettingLogCompress, r.Compress)
	return r
}

// Console points the global logger at stdout only. Used before the database
// (and with it the rotation settings) is available.
func Console(level string) {
	setLevel(level)
	log.Logger = newLogger(consoleWriter(os.Stdout))
}

// Apply sets the level and tees output to stdout and a rotating file at path
// (DefaultLogFileName when empty). If the file's directory cannot be created
// logging stays on the console.
func Apply(level string, loader *config.Loader, path string) {
	setLevel(level)

	if path == "" {
		path = DefaultLogFileName
	}
	console := consoleWriter(os.Stdout)

	file, err := fileWriter(path, RotationFromSettings(loader))
	if err != nil {
		log.Logger = newLogger(console)
		log.Error().Err(err).Str("path", path).Msg("Failed to prepare log directory; logging to console only")
		return
	}

	log.Logger = newLogger(zerolog.MultiLevelWriter(console, file))
}

// LevelFromVerbosity maps a -v count to a level name
func LevelFromVerbosity(verbosity int, fallback string) string {
	switch {
	case verbosity == 1:
		return "debug"
	case verbosity >= 2:
		return "trace"
	default:
		return fallback
	}
}

// FilePathForDB returns "<service>.log" in the directory holding the database
func FilePathForDB(dbPath string, service config.Service) string {
	name := DefaultLogFileName
	if service != "" {
		name = string(service) + ".log"
	}
	if dbPath == "" {
		return name
	}
	if abs, err := filepath.Abs(dbPath); err == nil {
		dbPath = abs
	}
	return filepath.Join(filepath.Dir(dbPath), name)
}

func setLevel(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}

func newLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

func consoleWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: out, TimeFormat: timeFormat}
}

// fileWriter returns an uncoloured console-format writer rotating at path
func fileWriter(path string, r Rotation) (io.Writer, error) {
	if err := ensureLogDir(path); err != nil {
		return nil, err
	}
	return zerolog.ConsoleWriter{
		Out: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    r.MaxSizeMB,
			MaxBackups: r.MaxBackups,
			MaxAge:     r.MaxAgeDays,
			Compress:   r.Compress,
		},
		TimeFormat: timeFormat,
		NoColor:    true,
	}, nil
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
