package wallet

import "github.com/joefazee/roundbet/models"

// Config represents the configuration for the wallet ledger
type Config struct {
	MaxRetries int `env:"WALLET_MAX_RETRIES" env-default:"5"`
}

// Validate validates the wallet configuration
func (c *Config) Validate() error {
	if c.MaxRetries < 1 || c.MaxRetries > 50 {
		return models.ErrInvalidRetryLimit
	}
	return nil
}

// GetDefaultConfig returns the default wallet configuration
func GetDefaultConfig() *Config {
	return &Config{
		MaxRetries: 5,
	}
}
