package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProductionConfig() Config {
	return Config{
		Port:         "8080",
		Env:          "production",
		DBDriver:     "postgres",
		DBPassword:   "a-strong-password",
		DBSSLMode:    "require",
		BcryptCost:   12,
		RedisURL:     "redis://localhost:6379",
		DBSchemaMode: "sql",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"Production baseline", func(_ *Config) {}, false},
		{"Missing port", func(c *Config) { c.Port = "" }, true},
		{"Production with default DB password", func(c *Config) { c.DBPassword = defaultDBPassword }, true},
		{"Production with empty DB password", func(c *Config) { c.DBPassword = "" }, true},
		{"Production with disabled SSL", func(c *Config) { c.DBSSLMode = "disable" }, true},
		{"Production with weak bcrypt cost", func(c *Config) { c.BcryptCost = 4 }, true},
		{"Production with sqlite", func(c *Config) { c.DBDriver = "sqlite"; c.DBPath = "x.db" }, true},
		{"Unknown driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"Negative device cap", func(c *Config) { c.SessionMaxDevices = -1 }, true},
		{"Development allows defaults", func(c *Config) {
			c.Env = "development"
			c.DBPassword = defaultDBPassword
			c.DBSSLMode = "disable"
			c.BcryptCost = 4
		}, false},
		{"Development sqlite without path", func(c *Config) {
			c.Env = "development"
			c.DBDriver = "sqlite"
			c.DBPath = ""
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validProductionConfig()
			tt.mutate(&c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Durations(t *testing.T) {
	t.Parallel()

	var zero Config
	assert.Equal(t, 14*24*time.Hour, zero.SessionTTL())
	assert.Equal(t, time.Hour, zero.SessionPurgeInterval())
	assert.Equal(t, 10*time.Second, zero.RequestTimeout())

	c := Config{SessionTTLHours: 2, SessionPurgeIntervalMinutes: 5, RequestTimeoutSeconds: 3}
	assert.Equal(t, 2*time.Hour, c.SessionTTL())
	assert.Equal(t, 5*time.Minute, c.SessionPurgeInterval())
	assert.Equal(t, 3*time.Second, c.RequestTimeout())
}

func TestLoadConfig_EnvOverridesAndNormalization(t *testing.T) {
	t.Cleanup(viper.Reset)

	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_PATH", "test.db")
	t.Setenv("SESSION_TTL_HOURS", "48")

	c, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "test", c.Env)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, 48*time.Hour, c.SessionTTL())
	assert.Equal(t, 10, c.SessionMaxDevices)
	assert.Equal(t, "hybrid", c.DBSchemaMode)
}
