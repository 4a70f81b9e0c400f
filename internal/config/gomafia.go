package config

import "time"

// GomafiaConfig holds configuration for the gomafia scraping client
type GomafiaConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	Retry          RetryConfig
}

// RetryConfig holds bounded exponential backoff configuration for
// transient transport failures
type RetryConfig struct {
	MaxRetries      int
	InitialBackoff  time.Duration
	MaxBackoff      time.Duration
	RetryMultiplier float64
}

// DefaultGomafiaConfig returns the default gomafia client configuration
func DefaultGomafiaConfig() *GomafiaConfig {
	return &GomafiaConfig{
		BaseURL:        "https://gomafia.pro",
		RequestTimeout: 30 * time.Second,
		Retry: RetryConfig{
			MaxRetries:      3,
			InitialBackoff:  time.Second,
			MaxBackoff:      time.Minute,
			RetryMultiplier: 2.0,
		},
	}
}
