package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	c := &Config{CacheBackend: "memory", BusBackend: "memory"}
	assert.NoError(t, c.Validate())
	assert.False(t, c.UsesRedis())

	c.BusBackend = "redis"
	assert.NoError(t, c.Validate())
	assert.True(t, c.UsesRedis())

	c.CacheBackend = "memcached"
	assert.ErrorIs(t, c.Validate(), ErrUnknownBackend)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SYMMETRIC_KEY", "12345678901234567890123456789012")

	c, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "8080", c.AppPort)
	assert.Equal(t, "memory", c.CacheBackend)
	assert.Equal(t, 200, c.Settlement.BatchSize)
	assert.Equal(t, "NG", c.Players.DefaultRegion)
	assert.Equal(t, "migrations", c.MigrationsPath)
}
