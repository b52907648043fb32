package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "auth_token", cfg.Auth.CookieName)
	assert.Equal(t, int64(10<<20), cfg.Storage.MaxUploadSize)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, "stackit.events", cfg.Events.Exchange)
	assert.Empty(t, cfg.Server.TrustedProxies)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_PlainEnvNames(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_NAME", "qa")
	t.Setenv("DB_USER", "qa_user")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_SSLMODE", "require")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t,
		"host=db.internal user=qa_user password=pw dbname=qa port=6543 sslmode=require TimeZone=UTC",
		cfg.DSN())
}

func TestLoad_PrefixedEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STACKIT_STORAGE_DRIVER", "s3")
	t.Setenv("STACKIT_STORAGE_BUCKET", "uploads")
	t.Setenv("STACKIT_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "s3", cfg.Storage.Driver)
	assert.Equal(t, "uploads", cfg.Storage.Bucket)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		var cfg Config
		cfg.Auth.JWTSecret = "secret"
		cfg.Auth.TokenTTL = time.Hour
		cfg.Server.AllowedOrigins = []string{"http://localhost:5173"}
		cfg.Database.Driver = "memory"
		cfg.Storage.Driver = "local"
		cfg.Storage.MaxUploadSize = 1024
		cfg.Log.Level = "info"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing secret", func(c *Config) { c.Auth.JWTSecret = " " }, "jwt secret"},
		{"no origins", func(c *Config) { c.Server.AllowedOrigins = nil }, "allowed origin"},
		{"trusted proxies", func(c *Config) { c.Server.TrustedProxies = []string{"10.0.0.1", "172.16.0.0/12"} }, ""},
		{"bad trusted proxy", func(c *Config) { c.Server.TrustedProxies = []string{"proxy.local"} }, "trusted proxy"},
		{"bad database driver", func(c *Config) { c.Database.Driver = "mysql" }, "database driver"},
		{"s3 without bucket", func(c *Config) { c.Storage.Driver = "s3" }, "bucket"},
		{"bad storage driver", func(c *Config) { c.Storage.Driver = "ftp" }, "storage driver"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
