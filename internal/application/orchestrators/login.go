package orchestrators

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"moodadmin/internal/adapters/http/middleware"
	"moodadmin/internal/domain/audit"
)

// PasswordCost is the bcrypt cost used when hashing a plaintext admin password.
const PasswordCost = 12

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoAdminPassword    = errors.New("admin password or password hash is required")
)

// Credentials are the statically configured admin identity.
type Credentials struct {
	Email        string
	PasswordHash []byte
}

// NewCredentials builds the admin credentials. A configured bcrypt hash wins over a
// plaintext password, which is hashed once here.
// PRE: email is non-empty
// POST: PasswordHash is a bcrypt hash
func NewCredentials(email, password, passwordHash string) (Credentials, error) {
	c := Credentials{Email: strings.TrimSpace(email)}
	switch {
	case passwordHash != "":
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return Credentials{}, err
		}
		c.PasswordHash = []byte(passwordHash)
	case password != "":
		hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
		if err != nil {
			return Credentials{}, err
		}
		c.PasswordHash = hash
	default:
		return Credentials{}, ErrNoAdminPassword
	}
	return c, nil
}

// TokenIssuer signs session credentials.
type TokenIssuer interface {
	Issue(email string) (string, middleware.Session, error)
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string
	Password string
	Actor    Actor
}

// LoginResult carries the signed token and its session.
type LoginResult struct {
	Token   string
	Session middleware.Session
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	Credentials Credentials
	Tokens      TokenIssuer
	Audit       AuditRecorder
	Now         func() time.Time
}

// ExecuteLogin checks the submitted pair against the configured admin and issues a token.
// PRE: deps.Credentials came from NewCredentials
// POST: every attempt is audited; failures return ErrInvalidCredentials only
// INVARIANT: the bcrypt comparison runs even when the email does not match
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	now := nowFunc(deps.Now)
	email := strings.TrimSpace(input.Email)

	emailOK := subtle.ConstantTimeCompare([]byte(strings.ToLower(email)), []byte(strings.ToLower(deps.Credentials.Email))) == 1
	passwordOK := bcrypt.CompareHashAndPassword(deps.Credentials.PasswordHash, []byte(input.Password)) == nil

	if email == "" || input.Password == "" || !emailOK || !passwordOK {
		reason := "wrong_password"
		if !emailOK {
			reason = "unknown_email"
		}
		slog.Info("auth_event", "event", "login_failed", "email", email, "ip", input.Actor.IP, "reason", reason)
		recordAudit(ctx, deps.Audit, input.Actor.event(audit.CategoryAuth, audit.ActionLoginFail, now).
			WithSeverity(audit.SeverityWarning).
			WithDescription("failed login for "+email))
		return LoginResult{}, ErrInvalidCredentials
	}

	token, sess, err := deps.Tokens.Issue(deps.Credentials.Email)
	if err != nil {
		return LoginResult{}, err
	}

	actor := input.Actor
	actor.Email = sess.Email
	slog.Info("auth_event", "event", "login_success", "email", sess.Email, "ip", actor.IP)
	recordAudit(ctx, deps.Audit, actor.event(audit.CategoryAuth, audit.ActionLogin, now).
		WithDescription("admin signed in"))

	return LoginResult{Token: token, Session: sess}, nil
}

// LogoutDeps holds dependencies for Logout.
type LogoutDeps struct {
	Audit AuditRecorder
	Now   func() time.Time
}

// ExecuteLogout audits the end of a session. Clearing the cookie is the caller's job.
func ExecuteLogout(ctx context.Context, actor Actor, deps LogoutDeps) {
	slog.Info("auth_event", "event", "logout", "email", actor.Email)
	recordAudit(ctx, deps.Audit, actor.event(audit.CategoryAuth, audit.ActionLogout, nowFunc(deps.Now)).
		WithDescription("admin signed out"))
}
