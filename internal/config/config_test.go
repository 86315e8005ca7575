package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080", Host: "0.0.0.0"},
		Database: DatabaseConfig{
			Host: "localhost", Port: "5432", Name: "pawnshop",
			User: "postgres", Password: "secret", SSLMode: "disable",
		},
		Redis: RedisConfig{Host: "localhost", Port: "6379"},
		Business: BusinessConfig{
			DefaultInterestRate: "3000",
			DefaultInterestType: "per_day_per_million",
			DefaultTermDays:     30,
		},
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing server port",
			mutate:  func(c *Config) { c.Server.Port = "" },
			wantErr: "SERVER_PORT",
		},
		{
			name:    "missing database name",
			mutate:  func(c *Config) { c.Database.Name = "" },
			wantErr: "DATABASE_NAME",
		},
		{
			name:    "zero term days",
			mutate:  func(c *Config) { c.Business.DefaultTermDays = 0 },
			wantErr: "DEFAULT_TERM_DAYS",
		},
		{
			name:    "unparseable interest rate",
			mutate:  func(c *Config) { c.Business.DefaultInterestRate = "three thousand" },
			wantErr: "DEFAULT_INTEREST_RATE",
		},
		{
			name:    "negative interest rate",
			mutate:  func(c *Config) { c.Business.DefaultInterestRate = "-3000" },
			wantErr: "DEFAULT_INTEREST_RATE",
		},
		{
			name:    "unknown interest type",
			mutate:  func(c *Config) { c.Business.DefaultInterestType = "per_hour" },
			wantErr: "DEFAULT_INTEREST_TYPE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestConnectionHelpers(t *testing.T) {
	cfg := validConfig()

	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=secret dbname=pawnshop sslmode=disable",
		cfg.Database.DSN())
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
}

func TestGetDefaultInterestRate(t *testing.T) {
	cfg := validConfig()
	require.True(t, cfg.GetDefaultInterestRate().Equal(decimal.NewFromInt(3000)))
}
