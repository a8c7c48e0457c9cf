package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Port        string
	Env         string
	DatabaseURL string
	JWTSecret   string

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	BalanceCacheTTL time.Duration

	AMQPURL          string
	AMQPExchange     string
	AMQPQueue        string
	ReminderSchedule string

	GeminiAPIKey     string
	AllowedOrigins   []string
	MaxBodySize      int64
	GroupFanoutLimit int
	RunMigrations    bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("ENV", "development")
	origins := os.Getenv("ALLOWED_ORIGINS")
	var allowedOrigins []string
	if origins != "" {
		allowedOrigins = splitOrigins(origins)
	} else {
		if env == "production" {
			zap.L().Warn("ALLOWED_ORIGINS not set in production, defaulting to '*'")
		}
		allowedOrigins = []string{"*"}
	}

	var errs []error
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		Env:              env,
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getInt("REDIS_DB", 0, &errs),
		BalanceCacheTTL:  getDuration("BALANCE_CACHE_TTL", 5*time.Minute, &errs),
		AMQPURL:          getEnv("AMQP_URL", ""),
		AMQPExchange:     getEnv("AMQP_EXCHANGE", "splitledger.reminders"),
		AMQPQueue:        getEnv("AMQP_QUEUE", "debt-reminders"),
		ReminderSchedule: getEnv("REMINDER_SCHEDULE", "0 9 * * 1"),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		AllowedOrigins:   allowedOrigins,
		MaxBodySize:      int64(getInt("MAX_BODY_SIZE", 1*1024*1024, &errs)),
		GroupFanoutLimit: getInt("GROUP_FANOUT_LIMIT", 8, &errs),
		RunMigrations:    getBool("RUN_MIGRATIONS", true, &errs),
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// Validate reports every missing or out-of-range setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.BalanceCacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("BALANCE_CACHE_TTL must be positive, got %s", c.BalanceCacheTTL))
	}
	if c.GroupFanoutLimit < 1 {
		errs = append(errs, fmt.Errorf("GROUP_FANOUT_LIMIT must be at least 1, got %d", c.GroupFanoutLimit))
	}
	if c.MaxBodySize <= 0 {
		errs = append(errs, fmt.Errorf("MAX_BODY_SIZE must be positive, got %d", c.MaxBodySize))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int, errs *[]error) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return n
}

func getBool(key string, defaultValue bool, errs *[]error) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return b
}

func getDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return d
}

func splitOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
