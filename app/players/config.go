package players

import (
	"time"

	"github.com/joefazee/roundbet/models"
)

// Config represents the configuration for the players module
type Config struct {
	PermissionTTL time.Duration `env:"PLAYER_PERMISSION_TTL" env-default:"30m"`
	// DefaultRegion is used to parse phone numbers given without a country
	// prefix.
	DefaultRegion string `env:"PLAYER_DEFAULT_REGION" env-default:"NG"`
}

func (c *Config) Validate() error {
	if c.PermissionTTL <= 0 {
		return models.ErrInvalidCacheTTL
	}
	return nil
}

func GetDefaultConfig() *Config {
	return &Config{
		PermissionTTL: 30 * time.Minute,
		DefaultRegion: "NG",
	}
}
