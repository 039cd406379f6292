package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port            string        `yaml:"port"`
	DatabaseURL     string        `yaml:"databaseURL"`
	JWTSecret       string        `yaml:"jwtSecret"`
	TokenTTL        time.Duration `yaml:"tokenTTL"`
	AllowedOrigins  []string      `yaml:"allowedOrigins"`
	DemoMode        bool          `yaml:"demoMode"`
	TrustProxy      bool          `yaml:"trustProxy"`
	AuthRateLimit   float64       `yaml:"authRateLimitRPS"`
	AuthRateBurst   int           `yaml:"authRateLimitBurst"`
	LogLevel        string        `yaml:"logLevel"`
	LogPretty       bool          `yaml:"logPretty"`
	MigrateOnStart  bool          `yaml:"migrateOnStart"`
	CacheMaxItems   int64         `yaml:"cacheMaxItems"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

func Default() Config {
	return Config{
		Port:            "5000",
		TokenTTL:        30 * 24 * time.Hour,
		AllowedOrigins:  []string{"*"},
		AuthRateLimit:   1,
		AuthRateBurst:   5,
		LogLevel:        "info",
		MigrateOnStart:  true,
		CacheMaxItems:   10000,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load reads defaults, then the YAML file named by CONFIG_FILE (or
// config.yaml when present), then the environment. A .env file is loaded
// into the environment first if present.
func Load() (Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	cfg := Default()

	path, explicit := os.LookupEnv("CONFIG_FILE")
	if !explicit {
		path = "config.yaml"
	}
	if err := mergeFile(&cfg, path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	if cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return cfg, errors.New("JWT_SECRET is required")
	}
	if cfg.TokenTTL <= 0 {
		return cfg, errors.New("TOKEN_TTL must be positive")
	}
	return cfg, nil
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	if v, ok := os.LookupEnv("ALLOWED_ORIGINS"); ok {
		cfg.AllowedOrigins = splitList(v)
	}

	var err error
	if cfg.TokenTTL, err = envDuration("TOKEN_TTL", cfg.TokenTTL); err != nil {
		return err
	}
	if cfg.ShutdownTimeout, err = envDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return err
	}
	if cfg.DemoMode, err = envBool("DEMO_MODE", cfg.DemoMode); err != nil {
		return err
	}
	if cfg.TrustProxy, err = envBool("TRUST_PROXY", cfg.TrustProxy); err != nil {
		return err
	}
	if cfg.LogPretty, err = envBool("LOG_PRETTY", cfg.LogPretty); err != nil {
		return err
	}
	if cfg.MigrateOnStart, err = envBool("MIGRATE_ON_START", cfg.MigrateOnStart); err != nil {
		return err
	}
	if v, ok := os.LookupEnv("AUTH_RATE_LIMIT_RPS"); ok {
		if cfg.AuthRateLimit, err = strconv.ParseFloat(v, 64); err != nil {
			return fmt.Errorf("AUTH_RATE_LIMIT_RPS: %w", err)
		}
	}
	if v, ok := os.LookupEnv("AUTH_RATE_LIMIT_BURST"); ok {
		if cfg.AuthRateBurst, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("AUTH_RATE_LIMIT_BURST: %w", err)
		}
	}
	if v, ok := os.LookupEnv("CACHE_MAX_ITEMS"); ok {
		if cfg.CacheMaxItems, err = strconv.ParseInt(v, 10, 64); err != nil {
			return fmt.Errorf("CACHE_MAX_ITEMS: %w", err)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func envBool(key string, fallback bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
