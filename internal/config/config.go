package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported store backends.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName              string
	AppEnv               string
	AppPort              string
	StoreBackend         string
	DatabaseURL          string
	SQLitePath           string
	RedisURL             string
	JWTSecret            string
	StatsCacheTTL        time.Duration
	EligibilityThreshold float64
	GradeTablePath       string
	NATSURL              string
	EventsChannel        string
	SeedEnabled          bool
	SeedToken            string
	SeedOnStart          bool
	LogLevel             string
	LogFile              string
	LogMaxSizeMB         int
	LogMaxBackups        int
	LogMaxAgeDays        int
	ReviewRateLimit      int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SAI")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "SAI Review API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("store.backend", StoreMemory)
	v.SetDefault("sqlite.path", "sai-review.db")
	v.SetDefault("stats.cache_ttl", "2m")
	v.SetDefault("eligibility.threshold", 75.0)
	v.SetDefault("events.channel", "sai:reviews")
	v.SetDefault("seed.enabled", false)
	v.SetDefault("seed.on_start", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 14)
	v.SetDefault("review.rate_limit", 30)

	ttl, err := time.ParseDuration(v.GetString("stats.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid stats cache ttl: %w", err)
	}

	cfg := Config{
		AppName:              v.GetString("app.name"),
		AppEnv:               v.GetString("app.env"),
		AppPort:              v.GetString("app.port"),
		StoreBackend:         strings.ToLower(strings.TrimSpace(v.GetString("store.backend"))),
		DatabaseURL:          v.GetString("database.url"),
		SQLitePath:           v.GetString("sqlite.path"),
		RedisURL:             v.GetString("redis.url"),
		JWTSecret:            v.GetString("jwt.secret"),
		StatsCacheTTL:        ttl,
		EligibilityThreshold: v.GetFloat64("eligibility.threshold"),
		GradeTablePath:       v.GetString("grading.table_path"),
		NATSURL:              v.GetString("nats.url"),
		EventsChannel:        v.GetString("events.channel"),
		SeedEnabled:          v.GetBool("seed.enabled"),
		SeedToken:            v.GetString("seed.token"),
		SeedOnStart:          v.GetBool("seed.on_start"),
		LogLevel:             strings.ToLower(v.GetString("log.level")),
		LogFile:              v.GetString("log.file"),
		LogMaxSizeMB:         v.GetInt("log.max_size_mb"),
		LogMaxBackups:        v.GetInt("log.max_backups"),
		LogMaxAgeDays:        v.GetInt("log.max_age_days"),
		ReviewRateLimit:      v.GetInt("review.rate_limit"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt secret must be provided")
	}

	switch c.StoreBackend {
	case StoreMemory, StoreSQLite:
	case StoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("redis url is required for the redis store backend")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("database url is required for the postgres store backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}

	if c.EligibilityThreshold < 0 || c.EligibilityThreshold > 100 {
		return fmt.Errorf("eligibility threshold must be between 0 and 100, got %v", c.EligibilityThreshold)
	}
	if c.StatsCacheTTL < 0 {
		return fmt.Errorf("stats cache ttl must not be negative")
	}
	if c.SeedOnStart && !c.SeedEnabled {
		return fmt.Errorf("seed on start requires seeding to be enabled")
	}

	return nil
}
