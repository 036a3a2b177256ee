package markets

import (
	"time"

	"github.com/joefazee/roundbet/models"
)

// Config represents the configuration for the market registry
type Config struct {
	// File is an optional TOML catalogue replacing the built-in markets.
	File     string        `env:"MARKETS_FILE"`
	CacheTTL time.Duration `env:"MARKETS_CACHE_TTL" env-default:"30s"`
}

// Validate validates the market configuration
func (c *Config) Validate() error {
	if c.CacheTTL <= 0 || c.CacheTTL > time.Hour {
		return models.ErrInvalidCacheTTL
	}
	return nil
}

// GetDefaultConfig returns the default configuration
func GetDefaultConfig() *Config {
	return &Config{
		CacheTTL: 30 * time.Second,
	}
}
