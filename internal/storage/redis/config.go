package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is a redis:// or rediss:// connection URL. Credentials and the
	// database number travel in the URL.
	URL string

	PoolSize     int
	MinIdleConns int

	// ConnectTimeout bounds the start-up ping
	ConnectTimeout time.Duration

	// MaxTxRetries bounds optimistic transaction retries when a watched key
	// changes underneath a score record update
	MaxTxRetries int
}

// DefaultConfig returns the settings used when only a URL is configured
func DefaultConfig() Config {
	return Config{
		URL:            "redis://localhost:6379",
		PoolSize:       10,
		MinIdleConns:   2,
		ConnectTimeout: 5 * time.Second,
		MaxTxRetries:   16,
	}
}
