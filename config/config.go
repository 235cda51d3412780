// config/config.go
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds every runtime setting of the service. Values come from the
// process environment (optionally seeded from a .env file).
type Config struct {
	Port            string `koanf:"port"`
	DatabaseURL     string `koanf:"database_url"`
	RedisURL        string `koanf:"redis_url"`
	AllowedOrigins  string `koanf:"allowed_origins"`
	LogLevel        string `koanf:"log_level"`
	DefaultLanguage string `koanf:"default_language"`
	SessionTTLHours int    `koanf:"session_ttl_hours"`

	S3Endpoint        string `koanf:"s3_endpoint"`
	S3AccessKeyID     string `koanf:"s3_access_key_id"`
	S3SecretAccessKey string `koanf:"s3_secret_access_key"`
	S3Bucket          string `koanf:"s3_bucket"`
	S3Region          string `koanf:"s3_region"`
	CDNBaseURL        string `koanf:"cdn_base_url"`
	UploadDir         string `koanf:"upload_dir"`
	MaxUploadMB       int    `koanf:"max_upload_mb"`

	AdminEmail    string `koanf:"admin_email"`
	AdminPassword string `koanf:"admin_password"`

	PasswordResetURL     string `koanf:"password_reset_url"`
	StatsIntervalMinutes int    `koanf:"stats_interval_minutes"`
}

// Defaults returns the baseline configuration before the environment is applied.
func Defaults() *Config {
	return &Config{
		Port:            "5200",
		AllowedOrigins:  "http://localhost:3000",
		LogLevel:        "info",
		DefaultLanguage: "he",
		SessionTTLHours: 720,
		S3Region:        "auto",
		UploadDir:       "./uploads",
		MaxUploadMB:     500,

		PasswordResetURL:     "http://localhost:3000/reset-password",
		StatsIntervalMinutes: 5,
	}
}

// Load layers defaults, an optional .env file and the environment.
func Load() (*Config, error) {
	// .env is optional; real deployments inject variables directly
	_ = godotenv.Load()
	return loadFromEnv()
}

func loadFromEnv() (*Config, error) {
	k := koanf.New(".")
	envProvider := env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *Defaults()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL environment variable not set")
	}
	if c.Port == "" {
		return errors.New("PORT must not be empty")
	}
	switch c.DefaultLanguage {
	case "he", "en":
	default:
		return errors.New("DEFAULT_LANGUAGE must be he or en")
	}
	if c.SessionTTLHours <= 0 {
		return errors.New("SESSION_TTL_HOURS must be positive")
	}
	if c.MaxUploadMB <= 0 {
		return errors.New("MAX_UPLOAD_MB must be positive")
	}
	if c.StatsIntervalMinutes <= 0 {
		return errors.New("STATS_INTERVAL_MINUTES must be positive")
	}
	return nil
}

// Origins splits ALLOWED_ORIGINS and trims each entry.
func (c *Config) Origins() []string {
	var out []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if o := strings.TrimSpace(origin); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// SessionTTL is the lifetime of a bearer token.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// MaxUploadBytes is the per-file upload ceiling.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

// StatsInterval is the period of the player stats worker.
func (c *Config) StatsInterval() time.Duration {
	return time.Duration(c.StatsIntervalMinutes) * time.Minute
}

// UsesObjectStorage reports whether an S3-compatible bucket is configured.
func (c *Config) UsesObjectStorage() bool {
	return c.S3Bucket != "" && c.S3AccessKeyID != ""
}

// Hostname is used to label log lines when running several replicas.
func Hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
