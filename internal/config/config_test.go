package config

import (
	"strings"
	"testing"
	"time"
)

func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/board")
	t.Setenv("JWT_SECRET", "abcdefghijklmnopqrstuvwxyz123456")
}

func TestLoadDefaults(t *testing.T) {
	validEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AccessTokenTTL != 60*time.Minute {
		t.Fatalf("expected 60m access TTL, got %v", cfg.AccessTokenTTL)
	}
	if cfg.RefreshIdleWindow != 14*24*time.Hour {
		t.Fatalf("expected 14d idle window, got %v", cfg.RefreshIdleWindow)
	}
	if cfg.RefreshAbsoluteWindow != 30*24*time.Hour {
		t.Fatalf("expected 30d absolute window, got %v", cfg.RefreshAbsoluteWindow)
	}
	if cfg.CookieSameSite != "lax" || !cfg.CookieSecure {
		t.Fatalf("unexpected cookie defaults: samesite=%q secure=%v", cfg.CookieSameSite, cfg.CookieSecure)
	}
	if cfg.AuthRateLimitPerMin != 30 {
		t.Fatalf("unexpected auth rate limit default: %d", cfg.AuthRateLimitPerMin)
	}
}

func TestLoadRejectsShortSecret(t *testing.T) {
	validEnv(t)
	t.Setenv("JWT_SECRET", "short")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected JWT_SECRET validation error, got %v", err)
	}
}

func TestLoadRejectsMissingDatabaseURL(t *testing.T) {
	validEnv(t)
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected DATABASE_URL validation error, got %v", err)
	}
}

func TestLoadRejectsInvertedWindows(t *testing.T) {
	validEnv(t)
	t.Setenv("REFRESH_IDLE_WINDOW", "720h")
	t.Setenv("REFRESH_ABSOLUTE_WINDOW", "336h")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "REFRESH_ABSOLUTE_WINDOW") {
		t.Fatalf("expected window ordering error, got %v", err)
	}
}

func TestLoadRejectsOversizedAccessTTL(t *testing.T) {
	validEnv(t)
	t.Setenv("ACCESS_TOKEN_TTL", "2h")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "ACCESS_TOKEN_TTL") {
		t.Fatalf("expected access TTL validation error, got %v", err)
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	cfg := &Config{AuthRateLimitPerMin: 0, OTELTraceSamplingRatio: 2}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation failure")
	}
	for _, want := range []string{"DATABASE_URL", "JWT_SECRET", "AUTH_RATE_LIMIT_PER_MIN", "OTEL_TRACE_SAMPLING_RATIO"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %s in error, got %q", want, err.Error())
		}
	}
}
