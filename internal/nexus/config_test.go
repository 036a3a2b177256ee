package nexus

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tickerConfig struct {
	Interval    time.Duration `env:"NEXUS_TEST_INTERVAL" yaml:"interval"`
	Concurrency int           `env:"NEXUS_TEST_CONCURRENCY" yaml:"concurrency" validate:"gte=0"`
	Name        string        `env:"NEXUS_TEST_NAME" yaml:"name"`
}

type strictConfig struct {
	MaxRetries int `env:"NEXUS_TEST_RETRIES"`
}

func (c *strictConfig) Validate() error {
	if c.MaxRetries <= 0 {
		return errors.New("max retries must be positive")
	}
	return nil
}

func TestLoader(t *testing.T) {
	t.Run("rejects non pointer", func(t *testing.T) {
		err := NewLoader(WithOnlyEnvironment()).Load(tickerConfig{})
		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, ErrCodeInvalidType, cfgErr.Code)
	})

	t.Run("env overrides defaults", func(t *testing.T) {
		t.Setenv("NEXUS_TEST_CONCURRENCY", "7")

		cfg := &tickerConfig{}
		err := NewLoader(
			WithOnlyEnvironment(),
			WithDefaults(&tickerConfig{Interval: time.Second, Concurrency: 2, Name: "ticker"}),
		).Load(cfg)

		require.NoError(t, err)
		assert.Equal(t, 7, cfg.Concurrency)
		assert.Equal(t, time.Second, cfg.Interval)
		assert.Equal(t, "ticker", cfg.Name)
	})

	t.Run("reads file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yml")
		require.NoError(t, os.WriteFile(path, []byte("interval: 2s\nname: worker\n"), 0o600))

		cfg := &tickerConfig{}
		err := NewLoader(WithFileName(path)).Load(cfg)

		require.NoError(t, err)
		assert.Equal(t, 2*time.Second, cfg.Interval)
		assert.Equal(t, "worker", cfg.Name)
	})

	t.Run("missing file", func(t *testing.T) {
		err := NewLoader(WithFileName("/does/not/exist.yml")).Load(&tickerConfig{})
		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, ErrCodeFileNotFound, cfgErr.Code)
	})

	t.Run("struct tag validation", func(t *testing.T) {
		t.Setenv("NEXUS_TEST_CONCURRENCY", "-1")
		err := NewLoader(WithOnlyEnvironment()).Load(&tickerConfig{})
		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, ErrCodeValidation, cfgErr.Code)
	})

	t.Run("self validation", func(t *testing.T) {
		err := NewLoader(WithOnlyEnvironment()).Load(&strictConfig{})
		assert.Error(t, err)

		t.Setenv("NEXUS_TEST_RETRIES", "3")
		cfg := &strictConfig{}
		assert.NoError(t, NewLoader(WithOnlyEnvironment()).Load(cfg))
		assert.Equal(t, 3, cfg.MaxRetries)
	})
}
