package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// RoleAdmin is the only role a dashboard session can carry.
const RoleAdmin = "admin"

// SessionCookieName is the cookie holding the signed session token.
const SessionCookieName = "admin-token"

// DefaultSessionTTL is how long a signed session stays valid.
const DefaultSessionTTL = 24 * time.Hour

// SecureCookies marks session cookies Secure. Set in production.
var SecureCookies bool

// ErrInvalidToken covers absent, malformed, tampered and expired tokens alike.
var ErrInvalidToken = errors.New("invalid session token")

// Session is an authenticated admin session.
type Session struct {
	Email     string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Claims is the signed payload of a session token.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens creates a token signer.
// PRE: secret is non-empty
func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock overrides the time source. Intended for tests.
func (t *Tokens) WithClock(now func() time.Time) *Tokens {
	t.now = now
	return t
}

// TTL returns the session lifetime.
func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

// Issue signs a new admin session for email.
// POST: exp = iat + ttl
func (t *Tokens) Issue(email string) (string, Session, error) {
	iat := t.now().Truncate(time.Second)
	sess := Session{Email: email, Role: RoleAdmin, IssuedAt: iat, ExpiresAt: iat.Add(t.ttl)}
	claims := Claims{
		Email: email,
		Role:  RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(sess.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", Session{}, fmt.Errorf("sign session: %w", err)
	}
	return signed, sess, nil
}

// Verify checks signature, algorithm, expiry and role.
// POST: any failure returns ErrInvalidToken
func (t *Tokens) Verify(token string) (Session, error) {
	if token == "" {
		return Session{}, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return Session{}, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Role != RoleAdmin || claims.Email == "" {
		return Session{}, ErrInvalidToken
	}
	sess := Session{Email: claims.Email, Role: claims.Role, ExpiresAt: claims.ExpiresAt.Time}
	if claims.IssuedAt != nil {
		sess.IssuedAt = claims.IssuedAt.Time
	}
	return sess, nil
}

// publicAPIPaths are reachable without a session.
var publicAPIPaths = map[string]bool{
	"/api/auth/login": true,
	"/api/health":     true,
}

// SessionGate attaches a valid session to the context and blocks protected paths without one.
// /admin pages redirect to /login; /api/ paths answer 401 JSON.
// INVARIANT: expired and absent tokens get the same response
func SessionGate(tokens *Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if cookie, err := r.Cookie(SessionCookieName); err == nil {
				token = cookie.Value
			}
			sess, err := tokens.Verify(token)
			if err == nil {
				r = r.WithContext(ContextWithSession(r.Context(), sess))
				next.ServeHTTP(w, r)
				return
			}

			path := r.URL.Path
			switch {
			case path == "/admin" || strings.HasPrefix(path, "/admin/"):
				http.Redirect(w, r, "/login", http.StatusSeeOther)
			case strings.HasPrefix(path, APIPrefix) && !publicAPIPaths[path]:
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(Session)
	return session, ok
}

// ContextWithSession returns a context with the given session set.
func ContextWithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
