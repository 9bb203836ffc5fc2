package config

import (
	"bytes"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestLoad_Defaults verifies development defaults and generated secrets.
func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Env != EnvDevelopment || cfg.Addr != ":8080" || cfg.Store.Backend != BackendDocDB {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.RateLimit.Limit != 100 || cfg.RateLimit.Window != 15*time.Minute {
		t.Errorf("rate limit = %+v, want 100 per 15m", cfg.RateLimit)
	}
	if cfg.Auth.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %v, want 24h", cfg.Auth.SessionTTL)
	}
	if cfg.Email.RetryInterval != time.Minute {
		t.Errorf("RetryInterval = %v, want 1m", cfg.Email.RetryInterval)
	}
	if cfg.Auth.JWTSecret == "" || len(cfg.CSRF.KeyBytes()) != 32 {
		t.Error("development secrets were not generated")
	}
	if cfg.Auth.AdminEmail == "" || cfg.Auth.AdminPassword == "" {
		t.Error("development admin credentials were not filled")
	}
	if len(cfg.CSRF.TrustedOrigins) != 2 {
		t.Errorf("TrustedOrigins = %v", cfg.CSRF.TrustedOrigins)
	}
}

// TestLoad_EnvOverridesFile verifies precedence of environment over YAML.
func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "moodadmin.yaml")
	yaml := "addr: \":9000\"\ntimezone: Pacific/Auckland\nrate_limit:\n  limit: 10\n  window: 1m\nauth:\n  admin_email: file@example.com\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MOODADMIN_ADMIN_EMAIL", "env@example.com")
	t.Setenv("MOODADMIN_TRUSTED_ORIGINS", "admin.example.com, ops.example.com")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.RateLimit.Limit != 10 || cfg.RateLimit.Window != time.Minute {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Auth.AdminEmail != "env@example.com" {
		t.Errorf("AdminEmail = %s, want env value", cfg.Auth.AdminEmail)
	}
	if strings.Join(cfg.CSRF.TrustedOrigins, "|") != "admin.example.com|ops.example.com" {
		t.Errorf("TrustedOrigins = %v", cfg.CSRF.TrustedOrigins)
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "Pacific/Auckland" {
		t.Errorf("Location() = %v, %v", loc, err)
	}
}

// TestLoad_ProductionRequiresSecrets verifies production refuses generated secrets.
func TestLoad_ProductionRequiresSecrets(t *testing.T) {
	t.Setenv("MOODADMIN_ENV", "production")
	t.Setenv("MOODADMIN_ADMIN_EMAIL", "admin@example.com")
	t.Setenv("MOODADMIN_ADMIN_PASSWORD", "s3cret")

	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "MOODADMIN_JWT_SECRET") {
		t.Fatalf("Load() = %v, want JWT secret error", err)
	}

	t.Setenv("MOODADMIN_JWT_SECRET", "jwt-secret")
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "MOODADMIN_CSRF_KEY") {
		t.Fatalf("Load() = %v, want CSRF key error", err)
	}

	t.Setenv("MOODADMIN_CSRF_KEY", hex.EncodeToString(bytes.Repeat([]byte{7}, 32)))
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.IsProduction() || cfg.CSRF.KeyBytes()[0] != 7 {
		t.Errorf("production config = %+v", cfg)
	}
}

// TestLoad_InvalidValues verifies validation errors.
func TestLoad_InvalidValues(t *testing.T) {
	tests := map[string]string{
		"MOODADMIN_STORE":    "cassandra",
		"MOODADMIN_TIMEZONE": "Mars/Base",
		"MOODADMIN_CSRF_KEY": "short",
	}
	for env, val := range tests {
		t.Run(env, func(t *testing.T) {
			t.Setenv(env, val)
			if _, err := Load(""); err == nil {
				t.Errorf("Load() with %s=%s succeeded, want error", env, val)
			}
		})
	}
}

// TestNewLogger picks the handler by environment.
func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(Config{Env: EnvProduction, LogLevel: "warn"}, &buf).Warn("auth_event", "event", "login_failed")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("production log = %q, want JSON", buf.String())
	}

	buf.Reset()
	l := NewLogger(Config{Env: EnvDevelopment, LogLevel: "warn"}, &buf)
	l.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buf.String())
	}
	if ParseLevel("DEBUG") != slog.LevelDebug || ParseLevel("bogus") != slog.LevelInfo {
		t.Error("ParseLevel mapping wrong")
	}
}
