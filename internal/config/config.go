package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	devAccessSecret  = "defaultAccessSecret"
	devRefreshSecret = "defaultRefreshSecret"
)

type Config struct {
	Env      string
	HTTPAddr string
	LogLevel string

	DBDriver    string
	DatabaseURL string

	JWTAccessSecret  []byte
	JWTRefreshSecret []byte
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration

	BcryptCost int

	CORSOrigins []string

	KafkaBrokers   []string
	KafkaUserTopic string
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("config: cannot read .env", "error", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		Env:      strings.ToLower(EnvDefault("APP_ENV", EnvDefault("NODE_ENV", EnvDevelopment))),
		HTTPAddr: ":" + strconv.Itoa(EnvIntDefault("PORT", 5000)),
		LogLevel: EnvDefault("LOG_LEVEL", "info"),

		DBDriver:    EnvDefault("DB_DRIVER", "pgx"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTAccessSecret:  []byte(os.Getenv("JWT_ACCESS_SECRET")),
		JWTRefreshSecret: []byte(os.Getenv("JWT_REFRESH_SECRET")),
		AccessTokenTTL:   EnvDurationDefault("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:  EnvDurationDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		BcryptCost: EnvIntDefault("BCRYPT_COST", 10),

		CORSOrigins: CSV(EnvDefault("CORS_ORIGINS", "http://localhost:3000")),

		KafkaBrokers:   CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaUserTopic: EnvDefault("KAFKA_USER_TOPIC", "user_events"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.IsProduction() {
		var errs []error
		if len(c.JWTAccessSecret) == 0 {
			errs = append(errs, missing("JWT_ACCESS_SECRET"))
		}
		if len(c.JWTRefreshSecret) == 0 {
			errs = append(errs, missing("JWT_REFRESH_SECRET"))
		}
		if len(c.JWTAccessSecret) > 0 && bytes.Equal(c.JWTAccessSecret, c.JWTRefreshSecret) {
			errs = append(errs, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ"))
		}
		if c.DatabaseURL == "" {
			errs = append(errs, missing("DATABASE_URL"))
		}
		return errors.Join(errs...)
	}

	if len(c.JWTAccessSecret) == 0 {
		slog.Warn("config: JWT_ACCESS_SECRET not set, using development default")
		c.JWTAccessSecret = []byte(devAccessSecret)
	}
	if len(c.JWTRefreshSecret) == 0 {
		slog.Warn("config: JWT_REFRESH_SECRET not set, using development default")
		c.JWTRefreshSecret = []byte(devRefreshSecret)
	}
	if c.DatabaseURL == "" {
		c.DBDriver = "sqlite"
		c.DatabaseURL = "auth.db"
	}
	return nil
}

func missing(name string) error {
	return fmt.Errorf("missing required env %s", name)
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
