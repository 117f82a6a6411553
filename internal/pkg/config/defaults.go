package config

import "time"

// Default values for configuration.
const (
	// Bot defaults
	DefaultCommandPrefix = "!"
	DefaultConfigFile    = "bot_config.yml"

	// Polling defaults
	DefaultPollInterval    = 10 * time.Second
	DefaultPollMaxAttempts = 30

	// Mux defaults
	DefaultMuxBaseURL    = "https://api.mux.com"
	DefaultStreamBaseURL = "https://stream.mux.com"
	DefaultMP4Quality    = "capped-1080p"
	DefaultHTTPTimeout   = 30 * time.Second

	// Status server defaults
	DefaultServerHost      = "0.0.0.0"
	DefaultServerPort      = 8080
	DefaultShutdownTimeout = 15 * time.Second
	DefaultConversionTTL   = 24 * time.Hour
	DefaultCleanupInterval = 1 * time.Hour

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)
