package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"moodadmin/internal/adapters/http/middleware"
	"moodadmin/internal/domain/audit"
)

func testCredentials(t *testing.T) Credentials {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	creds, err := NewCredentials("admin@example.com", "", string(hash))
	if err != nil {
		t.Fatalf("NewCredentials: %v", err)
	}
	return creds
}

func loginDeps(t *testing.T, rec *recordingAudit) LoginDeps {
	return LoginDeps{
		Credentials: testCredentials(t),
		Tokens:      middleware.NewTokens("test-secret", time.Hour).WithClock(fixedNow),
		Audit:       rec,
		Now:         fixedNow,
	}
}

func TestNewCredentials(t *testing.T) {
	if _, err := NewCredentials("a@b.c", "", ""); !errors.Is(err, ErrNoAdminPassword) {
		t.Errorf("no password: got %v, want ErrNoAdminPassword", err)
	}
	if _, err := NewCredentials("a@b.c", "", "not-a-hash"); err == nil {
		t.Error("invalid hash: expected error")
	}
}

func TestExecuteLogin_Success(t *testing.T) {
	rec := &recordingAudit{}
	res, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "  Admin@Example.com ",
		Password: "correct horse",
		Actor:    Actor{IP: "10.0.0.1", UserAgent: "test"},
	}, loginDeps(t, rec))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Token == "" {
		t.Error("expected a signed token")
	}
	if res.Session.Email != "admin@example.com" || res.Session.Role != middleware.RoleAdmin {
		t.Errorf("session = %+v", res.Session)
	}
	e := rec.last()
	if e.Action != audit.ActionLogin || e.ActorEmail != "admin@example.com" || e.IPAddress != "10.0.0.1" {
		t.Errorf("audit event = %+v", e)
	}
}

func TestExecuteLogin_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "admin@example.com", "wrong"},
		{"wrong email", "other@example.com", "correct horse"},
		{"empty email", "", "correct horse"},
		{"empty password", "admin@example.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingAudit{}
			_, err := ExecuteLogin(context.Background(), LoginInput{Email: tt.email, Password: tt.password}, loginDeps(t, rec))
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("got %v, want ErrInvalidCredentials", err)
			}
			e := rec.last()
			if e.Action != audit.ActionLoginFail || e.Severity != audit.SeverityWarning {
				t.Errorf("audit event = %+v", e)
			}
		})
	}
}

func TestExecuteLogin_AuditFailureDoesNotBlock(t *testing.T) {
	rec := &recordingAudit{fail: true}
	if _, err := ExecuteLogin(context.Background(), LoginInput{
		Email:    "admin@example.com",
		Password: "correct horse",
	}, loginDeps(t, rec)); err != nil {
		t.Fatalf("login with failing audit store: %v", err)
	}
}

func TestExecuteLogout(t *testing.T) {
	rec := &recordingAudit{}
	ExecuteLogout(context.Background(), Actor{Email: "admin@example.com"}, LogoutDeps{Audit: rec, Now: fixedNow})
	if e := rec.last(); e.Action != audit.ActionLogout || !e.Timestamp.Equal(fixedTime) {
		t.Errorf("audit event = %+v", e)
	}
}
