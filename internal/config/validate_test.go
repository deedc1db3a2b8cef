package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.Database.Primary.DSN = "postgres://localhost/mailsift"
	cfg.Redis.Address = "localhost:6379"
	cfg.Worker.Concurrency = 4
	cfg.Worker.Queues = map[string]int{"default": 1}
	return cfg
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	t.Run("missing dsn", func(t *testing.T) {
		cfg := validConfig()
		cfg.Database.Primary.DSN = ""
		assert.ErrorContains(t, cfg.Validate(), "database.primary.dsn")
	})

	t.Run("missing redis", func(t *testing.T) {
		cfg := validConfig()
		cfg.Redis.Address = ""
		assert.ErrorContains(t, cfg.Validate(), "redis.address")
	})

	t.Run("bad queue priority", func(t *testing.T) {
		cfg := validConfig()
		cfg.Worker.Queues = map[string]int{"default": 0}
		assert.ErrorContains(t, cfg.Validate(), "priority")
	})

	t.Run("provider keys are not required here", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})
}
