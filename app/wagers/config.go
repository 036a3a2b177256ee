package wagers

import "github.com/joefazee/roundbet/models"

// Config represents the configuration for the bet ledger
type Config struct {
	// PlaceRetries bounds how often a placement is retried after losing the
	// wallet version race.
	PlaceRetries int `env:"WAGER_PLACE_RETRIES" env-default:"5"`
}

// Validate validates the bet ledger configuration
func (c *Config) Validate() error {
	if c.PlaceRetries < 1 || c.PlaceRetries > 50 {
		return models.ErrInvalidRetryLimit
	}
	return nil
}

// GetDefaultConfig returns the default configuration
func GetDefaultConfig() *Config {
	return &Config{PlaceRetries: 5}
}
