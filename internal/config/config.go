package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	DBConn   string `env:"DB_CONN" envDefault:"host=localhost port=5436 user=test password=test dbname=ziptalk sslmode=disable"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"INFO"`

	JWTSecret      string `env:"JWT_SECRET" envDefault:"secret"`
	AdminUsername  string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword  string `env:"ADMIN_PASSWORD"`
	LoginRateLimit int    `env:"LOGIN_RATE_LIMIT" envDefault:"5"`
	SeedSampleData bool   `env:"SEED_SAMPLE_DATA" envDefault:"true"`

	// TrustedProxy makes client addresses come from X-Forwarded-For / X-Real-IP
	TrustedProxy bool     `env:"TRUSTED_PROXY" envDefault:"false"`
	CORSOrigins  []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"10m"`

	ApplyhomeURL        string `env:"APPLYHOME_URL"`
	ApplyhomeServiceKey string `env:"APPLYHOME_SERVICE_KEY"`
	SyncCron            string `env:"SYNC_CRON" envDefault:"0 0 4 * * *"`
	PurgeCron           string `env:"PURGE_CRON" envDefault:"0 30 3 * * *"`
	ScoreRetentionDays  int    `env:"SCORE_RETENTION_DAYS" envDefault:"90"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SenderEmail  string `env:"SENDER_EMAIL" envDefault:"noreply@ziptalk.kr"`
	AdminEmail   string `env:"ADMIN_EMAIL"`
}

// NewConfig loads configuration from environment variables and an optional .env file
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DBConn == "" {
		return fmt.Errorf("DB_CONN is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.AdminUsername == "" {
		return fmt.Errorf("ADMIN_USERNAME is required")
	}
	if c.LoginRateLimit <= 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT must be positive")
	}
	if c.ScoreRetentionDays < 0 {
		return fmt.Errorf("SCORE_RETENTION_DAYS must not be negative")
	}
	return nil
}

// FeedEnabled reports whether the public-data feed sync is configured
func (c *Config) FeedEnabled() bool {
	return c.ApplyhomeURL != ""
}

// MailEnabled reports whether upload notifications can be sent
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.AdminEmail != ""
}
