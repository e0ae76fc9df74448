package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

type Config struct {
	Port        string `validate:"required,numeric"`
	Env         string `validate:"omitempty,oneof=development staging production"`
	DatabaseURL string `validate:"required"`
	Timezone    *time.Location

	Clerk   ClerkConfig
	Redis   RedisConfig
	FCM     FCMConfig
	Metrics MetricsConfig
	Engine  EngineConfig

	SiteURL        string `validate:"required,url"`
	MigrateOnStart bool
	// TrustedProxies are the load balancer addresses allowed to set
	// X-Forwarded-For, as IPs or CIDRs.
	TrustedProxies []string `validate:"dive,ip|cidr"`
}

type ClerkConfig struct {
	SecretKey     string `validate:"required"`
	WebhookSecret string
}

type RedisConfig struct {
	URL string `validate:"omitempty,url"`
}

type FCMConfig struct {
	CredentialsFile string
	// CredentialsJSON is base64 encoded service account JSON.
	CredentialsJSON string
}

type MetricsConfig struct {
	User        string
	Pass        string
	PprofSecret string
}

type EngineConfig struct {
	DefaultLives        int           `validate:"gte=0,lte=10"`
	SweepInterval       time.Duration `validate:"gte=1s"`
	LeaderboardCacheTTL time.Duration `validate:"gte=0"`
}

// Get returns the environment variable or fallback when unset or empty.
func Get(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		return v
	}
	return fallback
}

// Load reads .env when present and then the process environment. The
// returned bool reports whether a .env file was loaded.
func Load() (Config, bool, error) {
	loaded := godotenv.Load() == nil

	cfg := Config{
		Port:        Get("PORT", "3333"),
		Env:         Get("APP_ENV", "production"),
		DatabaseURL: Get("DATABASE_URL", ""),
		Clerk: ClerkConfig{
			SecretKey:     Get("CLERK_SECRET_KEY", ""),
			WebhookSecret: Get("CLERK_WEBHOOK_SECRET", ""),
		},
		Redis: RedisConfig{URL: Get("REDIS_URL", "")},
		FCM: FCMConfig{
			CredentialsFile: Get("FCM_CREDENTIALS_FILE", "./serviceAccountKey.json"),
			CredentialsJSON: Get("FCM_SERVICE_ACCOUNT_JSON", ""),
		},
		Metrics: MetricsConfig{
			User:        Get("METRICS_USER", ""),
			Pass:        Get("METRICS_PASS", ""),
			PprofSecret: Get("PPROF_SECRET", ""),
		},
		SiteURL:        Get("SITE_URL", "https://streakzilla.com"),
		TrustedProxies: splitList(Get("TRUSTED_PROXIES", "")),
	}

	var err error
	if cfg.Timezone, err = time.LoadLocation(Get("APP_TIMEZONE", "Local")); err != nil {
		return cfg, loaded, fmt.Errorf("APP_TIMEZONE: %w", err)
	}
	if cfg.Engine.SweepInterval, err = time.ParseDuration(Get("SWEEP_INTERVAL", "15m")); err != nil {
		return cfg, loaded, fmt.Errorf("SWEEP_INTERVAL: %w", err)
	}
	if cfg.Engine.LeaderboardCacheTTL, err = time.ParseDuration(Get("LEADERBOARD_CACHE_TTL", "30s")); err != nil {
		return cfg, loaded, fmt.Errorf("LEADERBOARD_CACHE_TTL: %w", err)
	}
	if cfg.Engine.DefaultLives, err = strconv.Atoi(Get("DEFAULT_LIVES", "3")); err != nil {
		return cfg, loaded, fmt.Errorf("DEFAULT_LIVES: %w", err)
	}
	if cfg.MigrateOnStart, err = strconv.ParseBool(Get("MIGRATE_ON_START", "false")); err != nil {
		return cfg, loaded, fmt.Errorf("MIGRATE_ON_START: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return cfg, loaded, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, loaded, nil
}

func splitList(s string) []string {
	var out []string
	for item := range strings.SplitSeq(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (c Config) Addr() string {
	return ":" + c.Port
}
