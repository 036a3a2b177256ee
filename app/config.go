package app

import (
	"errors"

	"github.com/joefazee/roundbet/app/database"
	"github.com/joefazee/roundbet/app/markets"
	"github.com/joefazee/roundbet/app/players"
	"github.com/joefazee/roundbet/app/rounds"
	"github.com/joefazee/roundbet/app/settlement"
	"github.com/joefazee/roundbet/app/wagers"
	"github.com/joefazee/roundbet/app/wallet"
	"github.com/joefazee/roundbet/internal/cache"
	"github.com/joefazee/roundbet/internal/nexus"
)

var ErrUnknownBackend = errors.New("backend must be memory or redis")

type Config struct {
	DB         database.Config
	Markets    markets.Config
	Rounds     rounds.Config
	Wallet     wallet.Config
	Wagers     wagers.Config
	Settlement settlement.Config
	Players    players.Config
	Redis      cache.RedisOptions

	AppHost string `env:"APP_HOST" env-default:"localhost"`
	AppPort string `env:"APP_PORT" env-default:"8080"`
	Env     string `env:"APP_ENV" env-default:"development"`

	LogLevel     string `env:"LOG_LEVEL" env-default:"info"`
	CacheBackend string `env:"CACHE_BACKEND" env-default:"memory"`
	BusBackend   string `env:"STREAM_BACKEND" env-default:"memory"`
	SymmetricKey string `env:"SYMMETRIC_KEY"`

	MigrationsPath string `env:"MIGRATIONS_PATH" env-default:"migrations"`
	AutoMigrate    bool   `env:"DB_AUTO_MIGRATE" env-default:"false"`
}

// Validate checks the process-level settings. Module configs validate
// themselves when their module is initialized; the token key is checked by
// the token maker so the worker can run without one.
func (c *Config) Validate() error {
	for _, b := range []string{c.CacheBackend, c.BusBackend} {
		if b != cache.MemoryBackend && b != cache.RedisBackend {
			return ErrUnknownBackend
		}
	}
	return nil
}

// UsesRedis reports whether any shared component needs a redis client.
func (c *Config) UsesRedis() bool {
	return c.CacheBackend == cache.RedisBackend || c.BusBackend == cache.RedisBackend
}

// LoadConfig loads the application configuration from environment variables or a config file.
func LoadConfig() (*Config, error) {
	c := &Config{}
	err := nexus.NewLoader().Load(c)
	return c, err
}
