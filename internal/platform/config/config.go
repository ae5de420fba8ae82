package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"paycalc/internal/domain/payroll"
)

type Config struct {
	Addr               string        `yaml:"addr"`
	Environment        string        `yaml:"environment"`
	LogLevel           string        `yaml:"log_level"`
	JWTSecret          string        `yaml:"jwt_secret"`
	RedisAddr          string        `yaml:"redis_addr"`
	IdempotencyTTL     time.Duration `yaml:"idempotency_ttl"`
	MaxBodyBytes       int64         `yaml:"max_body_bytes"`
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute"`
	Workers            int           `yaml:"workers"`
	ContinueOnError    bool          `yaml:"continue_on_error"`
	Tax                TaxConfig     `yaml:"tax"`
}

type TaxConfig struct {
	Slabs []SlabConfig `yaml:"slabs"`
}

// SlabConfig leaves UpTo unset on the open-ended top slab.
type SlabConfig struct {
	UpTo *float64 `yaml:"up_to"`
	Rate float64  `yaml:"rate"`
}

func Default() Config {
	return Config{
		Addr:               ":8080",
		Environment:        "development",
		LogLevel:           "info",
		IdempotencyTTL:     24 * time.Hour,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 60,
		Workers:            1,
	}
}

// Load layers defaults, the optional YAML file at path and PAYCALC_*
// environment overrides, in that order.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.Addr = getEnv("PAYCALC_ADDR", c.Addr)
	c.Environment = getEnv("PAYCALC_ENV", c.Environment)
	c.LogLevel = getEnv("PAYCALC_LOG_LEVEL", c.LogLevel)
	c.JWTSecret = getEnv("PAYCALC_JWT_SECRET", c.JWTSecret)
	c.RedisAddr = getEnv("PAYCALC_REDIS_ADDR", c.RedisAddr)
	c.IdempotencyTTL = getEnvDuration("PAYCALC_IDEMPOTENCY_TTL", c.IdempotencyTTL)
	c.MaxBodyBytes = int64(getEnvInt("PAYCALC_MAX_BODY_BYTES", int(c.MaxBodyBytes)))
	c.RateLimitPerMinute = getEnvInt("PAYCALC_RATE_LIMIT_PER_MINUTE", c.RateLimitPerMinute)
	c.Workers = getEnvInt("PAYCALC_WORKERS", c.Workers)
	c.ContinueOnError = getEnvBool("PAYCALC_CONTINUE_ON_ERROR", c.ContinueOnError)
}

// TaxSchedule returns the configured slabs, or the default schedule when the
// config does not define any.
func (c Config) TaxSchedule() payroll.TaxSchedule {
	if len(c.Tax.Slabs) == 0 {
		return payroll.DefaultSchedule()
	}
	schedule := make(payroll.TaxSchedule, 0, len(c.Tax.Slabs))
	for _, slab := range c.Tax.Slabs {
		upTo := math.Inf(1)
		if slab.UpTo != nil {
			upTo = *slab.UpTo
		}
		schedule = append(schedule, payroll.Slab{UpTo: upTo, Rate: slab.Rate})
	}
	return schedule
}

func (c Config) Policy() string {
	if c.ContinueOnError {
		return payroll.PolicyCollect
	}
	return payroll.PolicyFailFast
}

func (c Config) Validate() error {
	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}
	if c.MaxBodyBytes < 1024 {
		return errors.New("max_body_bytes must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return errors.New("rate_limit_per_minute must be positive")
	}
	if c.IdempotencyTTL <= 0 {
		return errors.New("idempotency_ttl must be positive")
	}
	if c.Environment == "production" && strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("PAYCALC_JWT_SECRET must be set in production")
	}
	if err := c.TaxSchedule().Validate(); err != nil {
		return fmt.Errorf("tax: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
