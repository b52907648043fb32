package config

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Host           string
		Port           string
		AllowedOrigins []string
		// TrustedProxies may set X-Forwarded-For; empty trusts none.
		TrustedProxies []string
		ReadTimeout    time.Duration
		WriteTimeout   time.Duration
		IdleTimeout    time.Duration
	}
	Database struct {
		Driver          string
		Host            string
		Port            string
		User            string
		Password        string
		Name            string
		SSLMode         string
		MaxIdleConns    int
		MaxOpenConns    int
		ConnMaxLifetime time.Duration
		SlowThreshold   time.Duration
	}
	Auth struct {
		JWTSecret  string
		TokenTTL   time.Duration
		CookieName string
		// CookieSecure marks the auth cookie Secure; enable behind TLS.
		CookieSecure bool
	}
	RateLimit struct {
		Enabled bool
		// RPS and Burst apply per client ip on the auth routes.
		RPS   float64
		Burst int
	}
	Storage struct {
		Driver        string
		LocalDir      string
		PublicBaseURL string
		MaxUploadSize int64
		Bucket        string
		KeyPrefix     string
		Region        string
		Endpoint      string
	}
	AWS struct {
		Profile string
	}
	Events struct {
		RabbitURL string
		Exchange  string
	}
	Log struct {
		Level  string
		Format string
	}
}

// Addr is the listen address of the HTTP server.
func (c Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// DSN is the Postgres connection string.
func (c Config) DSN() string {
	d := c.Database
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		errs = append(errs, errors.New("auth jwt secret is required (JWT_SECRET)"))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("at least one allowed origin is required"))
	}
	for _, proxy := range c.Server.TrustedProxies {
		if _, err := netip.ParsePrefix(proxy); err == nil {
			continue
		}
		if _, err := netip.ParseAddr(proxy); err != nil {
			errs = append(errs, fmt.Errorf("trusted proxy %q is not an ip or cidr", proxy))
		}
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth token ttl must be positive"))
	}
	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.Database.Driver))
	}
	switch c.Storage.Driver {
	case "local":
	case "s3":
		if c.Storage.Bucket == "" {
			errs = append(errs, errors.New("storage bucket is required for the s3 driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}
	if c.Storage.MaxUploadSize <= 0 {
		errs = append(errs, errors.New("storage max upload size must be positive"))
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log level: %w", err))
	}
	return errors.Join(errs...)
}

// Load reads configuration from .env, environment variables and an optional config file.
func Load() (Config, error) {
	_ = godotenv.Load() // optional file

	v := viper.New()
	v.SetEnvPrefix("STACKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Deployment variables shared with the database container keep their plain names.
	bindings := map[string]string{
		"database.host":     "DB_HOST",
		"database.port":     "DB_PORT",
		"database.user":     "DB_USER",
		"database.password": "DB_PASSWORD",
		"database.name":     "DB_NAME",
		"database.sslmode":  "DB_SSLMODE",
		"auth.jwtsecret":    "JWT_SECRET",
		"server.port":       "PORT",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, "STACKIT_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowedorigins", []string{"http://localhost:5173"})
	v.SetDefault("server.trustedproxies", []string{})
	v.SetDefault("server.readtimeout", 10*time.Second)
	v.SetDefault("server.writetimeout", 30*time.Second)
	v.SetDefault("server.idletimeout", time.Minute)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "stackit")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.maxidleconns", 10)
	v.SetDefault("database.maxopenconns", 100)
	v.SetDefault("database.connmaxlifetime", time.Hour)
	v.SetDefault("database.slowthreshold", time.Second)

	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttl", 7*24*time.Hour)
	v.SetDefault("auth.cookiename", "auth_token")
	v.SetDefault("auth.cookiesecure", false)

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.rps", 1.0)
	v.SetDefault("ratelimit.burst", 10)

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.localdir", "images")
	v.SetDefault("storage.publicbaseurl", "http://localhost:8080")
	v.SetDefault("storage.maxuploadsize", int64(10<<20))
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "uploads")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("aws.profile", "")

	v.SetDefault("events.rabbiturl", "")
	v.SetDefault("events.exchange", "stackit.events")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
