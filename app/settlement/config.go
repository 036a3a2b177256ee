package settlement

import (
	"time"

	"github.com/joefazee/roundbet/models"
)

// Config represents the configuration for settlement
type Config struct {
	BatchSize     int `env:"SETTLEMENT_BATCH_SIZE" env-default:"200"`
	CreditRetries int `env:"SETTLEMENT_CREDIT_RETRIES" env-default:"5"`
	// ResumeAfter is how long a claimed round may stay unsettled before
	// ResumePending picks it up.
	ResumeAfter time.Duration `env:"ROUND_RESUME_AFTER" env-default:"30s"`
	ResumeLimit int           `env:"SETTLEMENT_RESUME_LIMIT" env-default:"50"`
}

// Validate validates the settlement configuration
func (c *Config) Validate() error {
	if c.BatchSize < 1 || c.ResumeLimit < 1 {
		return models.ErrInvalidBatchSize
	}
	if c.CreditRetries < 1 || c.CreditRetries > 50 {
		return models.ErrInvalidRetryLimit
	}
	if c.ResumeAfter <= 0 {
		return models.ErrInvalidTickInterval
	}
	return nil
}

// GetDefaultConfig returns the default configuration
func GetDefaultConfig() *Config {
	return &Config{
		BatchSize:     200,
		CreditRetries: 5,
		ResumeAfter:   30 * time.Second,
		ResumeLimit:   50,
	}
}
