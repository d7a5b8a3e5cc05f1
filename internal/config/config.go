package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env      string
	HTTPPort string
	LogLevel string

	DatabaseURL string

	JWTIssuer             string
	JWTSecret             string
	AccessTokenTTL        time.Duration
	RefreshIdleWindow     time.Duration
	RefreshAbsoluteWindow time.Duration

	CookieSecure   bool
	CookieSameSite string

	RedisAddr           string
	AuthRateLimitPerMin int

	OTELMetricsEnabled       bool
	OTELTracingEnabled       bool
	OTELExporterOTLPEndpoint string
	OTELExporterOTLPInsecure bool
	OTELServiceName          string
	OTELEnvironment          string
	OTELTraceSamplingRatio   float64
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:                      getEnv("APP_ENV", "development"),
		HTTPPort:                 getEnv("HTTP_PORT", "8080"),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		DatabaseURL:              os.Getenv("DATABASE_URL"),
		JWTIssuer:                getEnv("JWT_ISSUER", "go-board-backend"),
		JWTSecret:                os.Getenv("JWT_SECRET"),
		CookieSecure:             getEnvBool("COOKIE_SECURE", true),
		CookieSameSite:           strings.ToLower(getEnv("COOKIE_SAMESITE", "lax")),
		RedisAddr:                os.Getenv("REDIS_ADDR"),
		AuthRateLimitPerMin:      getEnvInt("AUTH_RATE_LIMIT_PER_MIN", 30),
		OTELMetricsEnabled:       getEnvBool("OTEL_METRICS_ENABLED", false),
		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", false),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "go-board-backend"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", "development"),
		OTELTraceSamplingRatio:   getEnvFloat("OTEL_TRACE_SAMPLING_RATIO", 1.0),
	}

	accessTTL, err := time.ParseDuration(getEnv("ACCESS_TOKEN_TTL", "60m"))
	if err != nil {
		return nil, fmt.Errorf("parse ACCESS_TOKEN_TTL: %w", err)
	}
	cfg.AccessTokenTTL = accessTTL

	// 14 days idle, 30 days absolute
	idle, err := time.ParseDuration(getEnv("REFRESH_IDLE_WINDOW", "336h"))
	if err != nil {
		return nil, fmt.Errorf("parse REFRESH_IDLE_WINDOW: %w", err)
	}
	cfg.RefreshIdleWindow = idle

	absolute, err := time.ParseDuration(getEnv("REFRESH_ABSOLUTE_WINDOW", "720h"))
	if err != nil {
		return nil, fmt.Errorf("parse REFRESH_ABSOLUTE_WINDOW: %w", err)
	}
	cfg.RefreshAbsoluteWindow = absolute

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if len(c.JWTSecret) < 32 {
		errs = append(errs, "JWT_SECRET must be at least 32 chars")
	}
	if c.AccessTokenTTL <= 0 || c.AccessTokenTTL > time.Hour {
		errs = append(errs, "ACCESS_TOKEN_TTL must be between 1s and 1h")
	}
	if c.RefreshIdleWindow <= 0 {
		errs = append(errs, "REFRESH_IDLE_WINDOW must be > 0")
	}
	if c.RefreshAbsoluteWindow <= c.RefreshIdleWindow {
		errs = append(errs, "REFRESH_ABSOLUTE_WINDOW must exceed REFRESH_IDLE_WINDOW")
	}
	if c.AuthRateLimitPerMin <= 0 {
		errs = append(errs, "AUTH_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be within [0, 1]")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
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

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
