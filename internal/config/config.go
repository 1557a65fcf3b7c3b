package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName       = "SmartBudgetTracker"
	defaultAppEnv        = "development"
	defaultPort          = "8080"
	defaultLogLevel      = "info"
	defaultShutdownDelay = 10 * time.Second
	defaultAccessTTL     = 7 * 24 * time.Hour
	defaultPendingTTL    = 5 * time.Minute
	defaultDarajaBaseURL = "https://sandbox.safaricom.co.ke"

	pendingTTLSecondsEnvVar = "PENDING_TTL_SECONDS"
	pendingTTLDurEnvVar     = "PENDING_TTL"
	shutdownSecondsEnvVar   = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar  = "SHUTDOWN_TIMEOUT"
	accessTTLDurEnvVar      = "ACCESS_TOKEN_TTL"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	Env            string
	Port           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	JWTSecret      string
	AccessTokenTTL time.Duration
	ShutdownPeriod time.Duration

	// Daraja (M-Pesa) provider settings.
	DarajaBaseURL  string
	ConsumerKey    string
	ConsumerSecret string
	Shortcode      string
	Passkey        string
	CallbackURL    string
	PendingTTL     time.Duration
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:        getEnv("APP_NAME", defaultAppName),
		Env:            getEnv("APP_ENV", defaultAppEnv),
		Port:           getEnv("PORT", defaultPort),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AccessTokenTTL: defaultAccessTTL,
		ShutdownPeriod: defaultShutdownDelay,
		DarajaBaseURL:  getEnv("DARAJA_BASE_URL", defaultDarajaBaseURL),
		ConsumerKey:    os.Getenv("CONSUMER_KEY"),
		ConsumerSecret: os.Getenv("CONSUMER_SECRET"),
		Shortcode:      os.Getenv("SHORTCODE"),
		Passkey:        os.Getenv("PASSKEY"),
		CallbackURL:    os.Getenv("CALLBACK_URL"),
		PendingTTL:     defaultPendingTTL,
	}

	if v := os.Getenv(accessTTLDurEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", accessTTLDurEnvVar, err)
		}
		cfg.AccessTokenTTL = d
	}

	if v := os.Getenv(shutdownSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownSecondsEnvVar, err)
		}
		cfg.ShutdownPeriod = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(shutdownDurationEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownDurationEnvVar, err)
		}
		cfg.ShutdownPeriod = d
	}

	if v := os.Getenv(pendingTTLSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", pendingTTLSecondsEnvVar, err)
		}
		cfg.PendingTTL = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(pendingTTLDurEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", pendingTTLDurEnvVar, err)
		}
		cfg.PendingTTL = d
	}

	if cfg.JWTSecret == "" {
		if !cfg.IsDev() {
			return Config{}, fmt.Errorf("JWT_SECRET must be set")
		}
		cfg.JWTSecret = "dev-secret-change-me"
	}

	if !cfg.IsDev() {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set")
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set")
		}
		if cfg.ConsumerKey == "" || cfg.ConsumerSecret == "" {
			return Config{}, fmt.Errorf("CONSUMER_KEY and CONSUMER_SECRET must be set")
		}
		if cfg.Shortcode == "" || cfg.Passkey == "" {
			return Config{}, fmt.Errorf("SHORTCODE and PASSKEY must be set")
		}
		if cfg.CallbackURL == "" {
			return Config{}, fmt.Errorf("CALLBACK_URL must be set")
		}
	}

	return cfg, nil
}

// IsDev reports whether the app runs in a development-like environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.Env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
