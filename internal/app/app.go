// Package app wires configuration, stores and adapters into the dashboard handler
// shared by the HTTP server and the Lambda entry point.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	_ "modernc.org/sqlite"

	"moodadmin/internal/adapters/cache"
	"moodadmin/internal/adapters/email"
	web "moodadmin/internal/adapters/http"
	"moodadmin/internal/adapters/http/middleware"
	"moodadmin/internal/adapters/http/perf"
	"moodadmin/internal/adapters/storage"
	auditStore "moodadmin/internal/adapters/storage/audit"
	"moodadmin/internal/adapters/storage/docdb"
	"moodadmin/internal/adapters/storage/firestore"
	"moodadmin/internal/adapters/storage/mongo"
	outboxStore "moodadmin/internal/adapters/storage/outbox"
	"moodadmin/internal/adapters/storage/records"
	"moodadmin/internal/application/orchestrators"
	"moodadmin/internal/config"
)

// SeedValue fixes the synthetic data set so every fresh development database looks the same.
const SeedValue = 20240501

// App is a fully wired dashboard.
type App struct {
	Handler   http.Handler
	Collector *perf.Collector
	closers   []func() error
}

// New opens every backend named in cfg and builds the HTTP handler.
// PRE: cfg came from config.Load
// POST: on error everything opened so far is closed again
func New(ctx context.Context, cfg config.Config) (*App, error) {
	a := &App{Collector: perf.NewCollector(perf.DefaultRingSize)}
	if err := a.build(ctx, cfg); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context, cfg config.Config) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// The local SQLite file always holds the audit trail; with the docdb backend it
	// holds the records too.
	dsn := cfg.Store.SQLitePath + "?_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	a.closers = append(a.closers, db.Close)
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	if err := storage.InitDB(db, cfg.Store.SQLitePath); err != nil {
		return fmt.Errorf("failed to initialise database: %w", err)
	}
	timedDB := storage.NewTimedDB(db, a.Collector, cfg.Perf.SlowQueryMs)
	slog.Info("database_ready", "path", cfg.Store.SQLitePath, "schema", storage.LatestSchemaVersion())

	audits := auditStore.NewSQLiteStore(timedDB)

	var backend records.Store
	switch cfg.Store.Backend {
	case config.BackendDocDB:
		docs := docdb.NewStore(timedDB)
		if cfg.Store.Seed {
			res, err := orchestrators.ExecuteSeedSynthetic(ctx, orchestrators.SyntheticSeedDeps{
				Store: docs,
				Audit: audits,
				Seed:  SeedValue,
			})
			if err != nil {
				return fmt.Errorf("failed to seed synthetic data: %w", err)
			}
			if !res.Skipped {
				slog.Info("seed_loaded", "counts", res.Counts)
			}
		}
		backend = docs
	case config.BackendFirestore:
		fs, err := firestore.NewStore(ctx, cfg.Store.FirestoreProject)
		if err != nil {
			return err
		}
		backend = fs
	case config.BackendMongo:
		ms, err := mongo.NewStore(ctx, cfg.Store.MongoURI, cfg.Store.MongoDatabase)
		if err != nil {
			return err
		}
		backend = ms
	default:
		return fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	a.closers = append(a.closers, backend.Close)
	slog.Info("record_store_ready", "backend", cfg.Store.Backend)

	var limiter middleware.Limiter
	if cfg.RateLimit.RedisURL != "" {
		client, err := cache.NewClient(ctx, cfg.RateLimit.RedisURL)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, client.Close)
		limiter = cache.NewRedisLimiter(client, cfg.RateLimit.Limit, cfg.RateLimit.Window)
		slog.Info("rate_limiter_ready", "backend", "redis", "limit", cfg.RateLimit.Limit, "window", cfg.RateLimit.Window)
	} else {
		ml := middleware.NewMemoryLimiter(cfg.RateLimit.Limit, cfg.RateLimit.Window)
		a.closers = append(a.closers, func() error { ml.Stop(); return nil })
		limiter = ml
	}

	var mailer email.Sender
	mailerName := "noop"
	if cfg.Email.ResendKey != "" {
		mailer = email.NewResendSender(cfg.Email.ResendKey, cfg.Email.From, cfg.Email.ReplyTo)
		mailerName = "resend"
	} else {
		mailer = email.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("email_disabled", "message", "MOODADMIN_RESEND_KEY is not set; decision e-mails are not delivered")
		}
	}

	outbox := outboxStore.NewSQLiteStore(timedDB)
	if cfg.Email.RetryInterval > 0 {
		stop := orchestrators.StartOutboxWorker(context.WithoutCancel(ctx), orchestrators.OutboxRetryDeps{
			Outbox: outbox,
			Mailer: mailer,
		}, cfg.Email.RetryInterval)
		a.closers = append(a.closers, func() error { stop(); return nil })
	}

	creds, err := orchestrators.NewCredentials(cfg.Auth.AdminEmail, cfg.Auth.AdminPassword, cfg.Auth.AdminPasswordHash)
	if err != nil {
		return err
	}

	a.Handler = web.NewMux(&web.Stores{
		Records: records.Instrument(backend, a.Collector, cfg.Store.Backend),
		Audit:   audits,
		Outbox:  outbox,
	}, a.Collector, web.Options{
		Credentials:    creds,
		Tokens:         middleware.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL),
		Limiter:        limiter,
		Mailer:         mailer,
		Location:       loc,
		CSRFKey:        cfg.CSRF.KeyBytes(),
		TrustedOrigins: cfg.CSRF.TrustedOrigins,
		TrustProxy:     cfg.RateLimit.TrustProxy,
		SlowRequestMs:  cfg.Perf.SlowRequestMs,
		Settings: web.Settings{
			AdminEmail: creds.Email,
			SessionTTL: cfg.Auth.SessionTTL,
			Backend:    cfg.Store.Backend,
			Timezone:   loc.String(),
			RateLimit:  cfg.RateLimit.Limit,
			RateWindow: cfg.RateLimit.Window,
			Mailer:     mailerName,
			Production: cfg.IsProduction(),
		},
	})
	return nil
}

// Close releases every backend in reverse opening order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
