package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		DatabaseURL:     "postgres://localhost/app",
		JWTSecret:       "secret",
		RateLimitMax:    5,
		RateLimitWindow: time.Minute,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"Valid", func(c *Config) {}, ""},
		{"Missing database URL", func(c *Config) { c.DatabaseURL = "" }, "DATABASE_URL"},
		{"Missing JWT secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"Zero rate limit", func(c *Config) { c.RateLimitMax = 0 }, "RATE_LIMIT_MAX"},
		{"Negative window", func(c *Config) { c.RateLimitWindow = -time.Second }, "RATE_LIMIT_WINDOW_SECONDS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("RATE_LIMIT_MAX", "7")
	t.Setenv("RATE_LIMIT_WINDOW_SECONDS", "30")
	t.Setenv("BLOCKED_WORDS", "badword, spam ,,scam")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "postgres://localhost/test", cfg.DatabaseURL)
	assert.Equal(t, 7, cfg.RateLimitMax)
	assert.Equal(t, 30*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, []string{"badword", "spam", "scam"}, cfg.BlockedWords)
	assert.True(t, cfg.IsTest())

	// Load installs the instance as the package global
	assert.Same(t, cfg, GetConfig())
}

func TestLoadRejectsIncompleteEnvironment(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("SOME_STRING", "value")
	assert.Equal(t, "value", getEnv("SOME_STRING", "fallback"))
	assert.Equal(t, "fallback", getEnv("UNSET_STRING", "fallback"))

	t.Setenv("SOME_INT", "42")
	t.Setenv("BAD_INT", "not-a-number")
	assert.Equal(t, 42, getEnvInt("SOME_INT", 1))
	assert.Equal(t, 1, getEnvInt("UNSET_INT", 1))
	assert.Equal(t, 1, getEnvInt("BAD_INT", 1))

	t.Setenv("SOME_LIST", " a ,b,, c")
	assert.Equal(t, []string{"a", "b", "c"}, getEnvList("SOME_LIST"))
	assert.Nil(t, getEnvList("UNSET_LIST"))
}
