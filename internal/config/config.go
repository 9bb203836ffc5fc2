package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Environment names
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Store backends
const (
	BackendDocDB     = "docdb"
	BackendFirestore = "firestore"
	BackendMongo     = "mongo"
)

// Config is the full service configuration.
// Precedence: defaults, then the optional YAML file, then MOODADMIN_* environment variables.
type Config struct {
	Env       string          `mapstructure:"env"`
	Addr      string          `mapstructure:"addr"`
	LogLevel  string          `mapstructure:"log_level"`
	Timezone  string          `mapstructure:"timezone"`
	Store     StoreConfig     `mapstructure:"store"`
	Auth      AuthConfig      `mapstructure:"auth"`
	CSRF      CSRFConfig      `mapstructure:"csrf"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Email     EmailConfig     `mapstructure:"email"`
	Perf      PerfConfig      `mapstructure:"perf"`
}

// StoreConfig selects and configures the record store backend.
type StoreConfig struct {
	Backend          string `mapstructure:"backend"`
	SQLitePath       string `mapstructure:"sqlite_path"`
	FirestoreProject string `mapstructure:"firestore_project"`
	MongoURI         string `mapstructure:"mongo_uri"`
	MongoDatabase    string `mapstructure:"mongo_database"`
	Seed             bool   `mapstructure:"seed"`
}

// AuthConfig holds the admin credential and session settings.
type AuthConfig struct {
	AdminEmail        string        `mapstructure:"admin_email"`
	AdminPassword     string        `mapstructure:"admin_password"`
	AdminPasswordHash string        `mapstructure:"admin_password_hash"`
	JWTSecret         string        `mapstructure:"jwt_secret"`
	SessionTTL        time.Duration `mapstructure:"session_ttl"`
}

// CSRFConfig holds the form-protection key.
type CSRFConfig struct {
	Key            string   `mapstructure:"key"` // hex, 32 bytes
	TrustedOrigins []string `mapstructure:"trusted_origins"`
	keyBytes       []byte
}

// KeyBytes returns the decoded CSRF key.
func (c CSRFConfig) KeyBytes() []byte {
	return c.keyBytes
}

// RateLimitConfig configures the fixed-window API limiter.
type RateLimitConfig struct {
	Limit      int           `mapstructure:"limit"`
	Window     time.Duration `mapstructure:"window"`
	RedisURL   string        `mapstructure:"redis_url"`
	TrustProxy bool          `mapstructure:"trust_proxy"`
}

// EmailConfig configures decision e-mails.
type EmailConfig struct {
	ResendKey string `mapstructure:"resend_key"`
	From      string `mapstructure:"from"`
	ReplyTo   string `mapstructure:"reply_to"`
	// RetryInterval paces the outbox worker; zero disables it.
	RetryInterval time.Duration `mapstructure:"retry_interval"`
}

// PerfConfig holds slow-operation thresholds.
type PerfConfig struct {
	SlowRequestMs int `mapstructure:"slow_request_ms"`
	SlowQueryMs   int `mapstructure:"slow_query_ms"`
}

// setting binds one config key to its environment variable and default.
type setting struct {
	key string
	env string
	def any
}

var settings = []setting{
	{"env", "MOODADMIN_ENV", EnvDevelopment},
	{"addr", "MOODADMIN_ADDR", ":8080"},
	{"log_level", "MOODADMIN_LOG_LEVEL", "info"},
	{"timezone", "MOODADMIN_TIMEZONE", "UTC"},
	{"store.backend", "MOODADMIN_STORE", BackendDocDB},
	{"store.sqlite_path", "MOODADMIN_SQLITE_PATH", "moodadmin.db"},
	{"store.firestore_project", "MOODADMIN_FIRESTORE_PROJECT", ""},
	{"store.mongo_uri", "MOODADMIN_MONGO_URI", ""},
	{"store.mongo_database", "MOODADMIN_MONGO_DATABASE", "moodapp"},
	{"store.seed", "MOODADMIN_SEED", false},
	{"auth.admin_email", "MOODADMIN_ADMIN_EMAIL", ""},
	{"auth.admin_password", "MOODADMIN_ADMIN_PASSWORD", ""},
	{"auth.admin_password_hash", "MOODADMIN_ADMIN_PASSWORD_HASH", ""},
	{"auth.jwt_secret", "MOODADMIN_JWT_SECRET", ""},
	{"auth.session_ttl", "MOODADMIN_SESSION_TTL", "24h"},
	{"csrf.key", "MOODADMIN_CSRF_KEY", ""},
	{"csrf.trusted_origins", "MOODADMIN_TRUSTED_ORIGINS", []string{"localhost:8080", "127.0.0.1:8080"}},
	{"rate_limit.limit", "MOODADMIN_RATE_LIMIT", 100},
	{"rate_limit.window", "MOODADMIN_RATE_WINDOW", "15m"},
	{"rate_limit.redis_url", "MOODADMIN_REDIS_URL", ""},
	{"rate_limit.trust_proxy", "MOODADMIN_TRUST_PROXY", false},
	{"email.resend_key", "MOODADMIN_RESEND_KEY", ""},
	{"email.from", "MOODADMIN_EMAIL_FROM", "Mood Admin <noreply@moodadmin.app>"},
	{"email.reply_to", "MOODADMIN_REPLY_TO", ""},
	{"email.retry_interval", "MOODADMIN_EMAIL_RETRY_INTERVAL", "1m"},
	{"perf.slow_request_ms", "MOODADMIN_SLOW_REQUEST_MS", 200},
	{"perf.slow_query_ms", "MOODADMIN_SLOW_QUERY_MS", 50},
}

// Development-only fallback credentials.
const (
	devAdminEmail    = "admin@moodadmin.local"
	devAdminPassword = "changeme"
)

// Load reads configuration. path may be empty to skip the YAML file.
// PRE: environment variables are already set
// POST: secrets are resolved; production refuses to start without them
func Load(path string) (Config, error) {
	v := viper.New()
	for _, s := range settings {
		v.SetDefault(s.key, s.def)
		if err := v.BindEnv(s.key, s.env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", s.env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.CSRF.TrustedOrigins = splitList(cfg.CSRF.TrustedOrigins)

	if err := cfg.resolveSecrets(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// IsProduction reports whether the service runs in production mode.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Location returns the zone used for calendar-date bucketing.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Validate checks values that would otherwise fail at first use.
func (c Config) Validate() error {
	var errs []error
	switch c.Store.Backend {
	case BackendDocDB:
	case BackendFirestore:
		if c.Store.FirestoreProject == "" {
			errs = append(errs, errors.New("MOODADMIN_FIRESTORE_PROJECT is required for the firestore backend"))
		}
	case BackendMongo:
		if c.Store.MongoURI == "" {
			errs = append(errs, errors.New("MOODADMIN_MONGO_URI is required for the mongo backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}
	if c.RateLimit.Limit <= 0 || c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate limit and window must be positive"))
	}
	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New("session ttl must be positive"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("invalid timezone: %w", err))
	}
	if c.Store.Seed && c.Store.Backend != BackendDocDB {
		errs = append(errs, errors.New("seeding is only supported on the docdb backend"))
	}
	return errors.Join(errs...)
}

// resolveSecrets decodes the CSRF key and fills development fallbacks.
// Production requires every secret to be configured explicitly.
func (c *Config) resolveSecrets() error {
	prod := c.IsProduction()

	if c.Auth.AdminEmail == "" || (c.Auth.AdminPassword == "" && c.Auth.AdminPasswordHash == "") {
		if prod {
			return errors.New("MOODADMIN_ADMIN_EMAIL and MOODADMIN_ADMIN_PASSWORD (or _HASH) are required in production")
		}
		if c.Auth.AdminEmail == "" {
			c.Auth.AdminEmail = devAdminEmail
		}
		if c.Auth.AdminPassword == "" && c.Auth.AdminPasswordHash == "" {
			c.Auth.AdminPassword = devAdminPassword
		}
		slog.Warn("config_default_admin", "email", c.Auth.AdminEmail, "message", "using development admin credentials")
	}

	if c.Auth.JWTSecret == "" {
		if prod {
			return errors.New("MOODADMIN_JWT_SECRET is required in production")
		}
		c.Auth.JWTSecret = randomHex(32)
		slog.Warn("config_generated_secret", "name", "MOODADMIN_JWT_SECRET", "message", "sessions will not survive restarts")
	}

	if c.CSRF.Key == "" {
		if prod {
			return errors.New("MOODADMIN_CSRF_KEY is required in production")
		}
		c.CSRF.keyBytes = randomBytes(32)
		slog.Warn("config_generated_secret", "name", "MOODADMIN_CSRF_KEY", "message", "forms will not survive restarts")
		return nil
	}
	key, err := hex.DecodeString(c.CSRF.Key)
	if err != nil || len(key) != 32 {
		return errors.New("MOODADMIN_CSRF_KEY must be 64 hex characters (32 bytes)")
	}
	c.CSRF.keyBytes = key
	return nil
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand: %v", err))
	}
	return b
}

func randomHex(n int) string {
	return hex.EncodeToString(randomBytes(n))
}

// splitList flattens comma-separated entries, which is how list values arrive from the environment.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
