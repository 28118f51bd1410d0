package config

import "time"

// TimeoutConfig holds timeout settings for the HTTP server.
type TimeoutConfig struct {
	// Read bounds reading a request including its body. Default: 15s
	Read time.Duration

	// Idle bounds keep-alive connections between requests. Default: 120s
	Idle time.Duration

	// Request bounds handler execution. Default: 60s
	Request time.Duration

	// Shutdown bounds draining in-flight requests on exit. Default: 30s
	Shutdown time.Duration
}

// DefaultTimeoutConfig returns the default timeout configuration
func DefaultTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		Read:     15 * time.Second,
		Idle:     120 * time.Second,
		Request:  60 * time.Second,
		Shutdown: 30 * time.Second,
	}
}

// global instance that can be set at startup
var globalTimeouts = DefaultTimeoutConfig()

// SetGlobalTimeouts sets the global timeout configuration
func SetGlobalTimeouts(cfg *TimeoutConfig) {
	globalTimeouts = cfg
}

// GetTimeouts returns the global timeout configuration
func GetTimeouts() *TimeoutConfig {
	return globalTimeouts
}
