package rounds

import (
	"time"

	"github.com/joefazee/roundbet/models"
)

// Config represents the configuration for the round scheduler
type Config struct {
	TickInterval    time.Duration `env:"ROUND_TICK_INTERVAL" env-default:"1s"`
	TickConcurrency int           `env:"ROUND_TICK_CONCURRENCY" env-default:"8"`
	// ResumeAfter is how long a claimed round may stay unsettled before the
	// worker re-runs its distribution.
	ResumeAfter      time.Duration `env:"ROUND_RESUME_AFTER" env-default:"30s"`
	SnapshotInterval time.Duration `env:"ROUND_SNAPSHOT_INTERVAL" env-default:"1s"`
	HistoryLimit     int           `env:"ROUND_HISTORY_LIMIT" env-default:"50"`
}

// Validate validates the round configuration
func (c *Config) Validate() error {
	if c.TickInterval <= 0 || c.SnapshotInterval <= 0 || c.ResumeAfter <= 0 {
		return models.ErrInvalidTickInterval
	}
	if c.TickConcurrency < 1 {
		return models.ErrInvalidConcurrency
	}
	if c.HistoryLimit < 1 {
		return models.ErrInvalidBatchSize
	}
	return nil
}

// GetDefaultConfig returns the default configuration
func GetDefaultConfig() *Config {
	return &Config{
		TickInterval:     time.Second,
		TickConcurrency:  8,
		ResumeAfter:      30 * time.Second,
		SnapshotInterval: time.Second,
		HistoryLimit:     50,
	}
}
