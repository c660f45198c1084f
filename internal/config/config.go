package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultAppName       = "MoveSmart"
	defaultAppEnv        = "development"
	defaultPort          = "8080"
	defaultLogLevel      = "info"
	defaultShutdownDelay = 10 * time.Second
	defaultTokenTTL      = 24 * time.Hour
	defaultGeocodeRPS    = 10

	// minSigningKeyBytes is the minimum HMAC key length (256 bits). A shorter
	// key is a fatal configuration error: the process must refuse to start.
	minSigningKeyBytes = 32

	tokenTTLSecondsEnvVar  = "TOKEN_TTL_SECONDS"
	tokenTTLDurEnvVar      = "TOKEN_TTL"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
)

// Config captures application runtime configuration. Values come from an
// optional YAML file (CONFIG_FILE) overlaid by environment variables; the
// environment always wins.
type Config struct {
	AppName          string
	AppEnv           string
	Port             string
	LogLevel         string
	DatabaseURL      string
	RedisURL         string
	JWTSecret        string
	TokenTTL         time.Duration
	GoogleMapsAPIKey string
	GeocodeRPS       int
	ShutdownPeriod   time.Duration
}

type fileConfig struct {
	AppName          string `yaml:"app_name"`
	AppEnv           string `yaml:"app_env"`
	Port             string `yaml:"port"`
	LogLevel         string `yaml:"log_level"`
	DatabaseURL      string `yaml:"database_url"`
	RedisURL         string `yaml:"redis_url"`
	JWTSecret        string `yaml:"jwt_secret"`
	TokenTTL         string `yaml:"token_ttl"`
	GoogleMapsAPIKey string `yaml:"google_maps_api_key"`
	GeocodeRPS       int    `yaml:"geocode_rps"`
	ShutdownTimeout  string `yaml:"shutdown_timeout"`
}

// Load builds the configuration and validates it. Note that rotating
// JWTSecret invalidates every previously issued token; that is an accepted
// operational tradeoff of the stateless token design.
func Load() (Config, error) {
	cfg := Config{
		AppName:        defaultAppName,
		AppEnv:         defaultAppEnv,
		Port:           defaultPort,
		LogLevel:       defaultLogLevel,
		TokenTTL:       defaultTokenTTL,
		GeocodeRPS:     defaultGeocodeRPS,
		ShutdownPeriod: defaultShutdownDelay,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	cfg.AppName = getEnv("APP_NAME", cfg.AppName)
	cfg.AppEnv = getEnv("APP_ENV", cfg.AppEnv)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", cfg.LogLevel))
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.GoogleMapsAPIKey = getEnv("GOOGLE_MAPS_API_KEY", cfg.GoogleMapsAPIKey)

	if v := os.Getenv("GEOCODE_RPS"); v != "" {
		rps, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid GEOCODE_RPS: %w", err)
		}
		cfg.GeocodeRPS = rps
	}

	if v := os.Getenv(tokenTTLSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", tokenTTLSecondsEnvVar, err)
		}
		cfg.TokenTTL = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(tokenTTLDurEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", tokenTTLDurEnvVar, err)
		}
		cfg.TokenTTL = d
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

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if len(c.JWTSecret) < minSigningKeyBytes {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes, got %d: refusing to start with a weak signing key", minSigningKeyBytes, len(c.JWTSecret))
	}
	if !c.IsDev() {
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", c.AppEnv)
		}
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", c.AppEnv)
		}
	}
	return nil
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	if fc.AppName != "" {
		cfg.AppName = fc.AppName
	}
	if fc.AppEnv != "" {
		cfg.AppEnv = fc.AppEnv
	}
	if fc.Port != "" {
		cfg.Port = fc.Port
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.DatabaseURL != "" {
		cfg.DatabaseURL = fc.DatabaseURL
	}
	if fc.RedisURL != "" {
		cfg.RedisURL = fc.RedisURL
	}
	if fc.JWTSecret != "" {
		cfg.JWTSecret = fc.JWTSecret
	}
	if fc.GoogleMapsAPIKey != "" {
		cfg.GoogleMapsAPIKey = fc.GoogleMapsAPIKey
	}
	if fc.GeocodeRPS > 0 {
		cfg.GeocodeRPS = fc.GeocodeRPS
	}
	if fc.TokenTTL != "" {
		d, err := time.ParseDuration(fc.TokenTTL)
		if err != nil {
			return fmt.Errorf("invalid token_ttl in %s: %w", path, err)
		}
		cfg.TokenTTL = d
	}
	if fc.ShutdownTimeout != "" {
		d, err := time.ParseDuration(fc.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("invalid shutdown_timeout in %s: %w", path, err)
		}
		cfg.ShutdownPeriod = d
	}
	return nil
}

// IsDev reports whether the app runs in a development environment, where
// Postgres and Redis are optional and in-memory stores are used instead.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
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
