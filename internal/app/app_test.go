package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"moodadmin/internal/adapters/cache"
	"moodadmin/internal/adapters/http/middleware"
	"moodadmin/internal/config"
)

func loadTestConfig(t *testing.T) config.Config {
	t.Helper()
	t.Setenv("MOODADMIN_SQLITE_PATH", filepath.Join(t.TempDir(), "app.db"))
	t.Setenv("MOODADMIN_ADMIN_EMAIL", "ops@example.com")
	t.Setenv("MOODADMIN_ADMIN_PASSWORD", "open-sesame")
	t.Setenv("MOODADMIN_SEED", "true")
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cfg
}

// TestNew_SeededDocDBWithRedisLimiter boots the whole dashboard against local backends.
func TestNew_SeededDocDBWithRedisLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("MOODADMIN_REDIS_URL", "redis://"+mr.Addr())
	cfg := loadTestConfig(t)

	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { a.Close() })

	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health = %d", rec.Code)
	}

	login := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"ops@example.com","password":"open-sesame"}`))
	login.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, login)
	if rec.Code != http.StatusOK {
		t.Fatalf("login = %d %s", rec.Code, rec.Body.String())
	}
	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("no session cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("users = %d %s", rec.Code, rec.Body.String())
	}
	var users struct {
		PageInfo struct {
			Total int `json:"total"`
		} `json:"pageInfo"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &users); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if users.PageInfo.Total == 0 {
		t.Error("seeded users missing")
	}

	if keys := mr.Keys(); len(keys) == 0 || !strings.HasPrefix(keys[0], cache.KeyPrefix) {
		t.Errorf("redis keys = %v, want rate-limit counters", keys)
	}
}

// TestNew_ReopenSkipsSeed verifies a second boot on the same file keeps the data.
func TestNew_ReopenSkipsSeed(t *testing.T) {
	cfg := loadTestConfig(t)
	for i := 0; i < 2; i++ {
		a, err := New(context.Background(), cfg)
		if err != nil {
			t.Fatalf("New #%d: %v", i+1, err)
		}
		if err := a.Close(); err != nil {
			t.Fatalf("Close #%d: %v", i+1, err)
		}
	}
}

// TestNew_UnknownBackend fails without leaking the database handle.
func TestNew_UnknownBackend(t *testing.T) {
	cfg := loadTestConfig(t)
	cfg.Store.Backend = "cassandra"
	if _, err := New(context.Background(), cfg); err == nil || !strings.Contains(err.Error(), "cassandra") {
		t.Errorf("New = %v, want unknown backend error", err)
	}
}

// TestNew_RedisUnreachable surfaces the connection error.
func TestNew_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	t.Setenv("MOODADMIN_REDIS_URL", "redis://"+addr)
	cfg := loadTestConfig(t)
	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("New succeeded with an unreachable redis")
	}
}
