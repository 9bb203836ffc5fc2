package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"moodadmin/internal/adapters/http/middleware"
	"moodadmin/internal/application/orchestrators"
)

// loginRequest is the JSON body of POST /api/auth/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse is returned on a successful JSON login.
type loginResponse struct {
	Success   bool      `json:"success"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func loginDeps() orchestrators.LoginDeps {
	return orchestrators.LoginDeps{
		Credentials: opts.Credentials,
		Tokens:      opts.Tokens,
		Audit:       stores.Audit,
		Now:         timeNow,
	}
}

// handleLoginPage renders the sign-in form. A signed-in admin goes straight to the dashboard.
func handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, "login.html", newPage(r, "Sign in", "", nil))
}

// handleLoginForm handles POST /login from the HTML form.
// POST: success sets the session cookie and redirects to /admin; failure re-renders with 401
func handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	res, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		Actor:    actorFrom(r),
	}, loginDeps())
	if err != nil {
		status := http.StatusInternalServerError
		msg := "Login failed"
		if errors.Is(err, orchestrators.ErrInvalidCredentials) {
			status = http.StatusUnauthorized
			msg = "Invalid credentials"
		} else {
			internalLog(r, err)
		}
		p := newPage(r, "Sign in", "", map[string]string{"Email": r.PostFormValue("email")})
		p.Error = msg
		renderTemplateStatus(w, r, status, "login.html", p)
		return
	}
	middleware.SetSessionCookie(w, res.Token, opts.Tokens.TTL())
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// handleAPILogin handles POST /api/auth/login.
// POST: 200 with the cookie set, or 401 {"error":"Invalid credentials"}
func handleAPILogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := strictDecode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	res, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Actor:    actorFrom(r),
	}, loginDeps())
	if errors.Is(err, orchestrators.ErrInvalidCredentials) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, res.Token, opts.Tokens.TTL())
	writeJSON(w, http.StatusOK, loginResponse{Success: true, Email: res.Session.Email, ExpiresAt: res.Session.ExpiresAt})
}

// handleLogout clears the session cookie for POST /logout and POST /api/auth/logout.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	orchestrators.ExecuteLogout(r.Context(), actorFrom(r), orchestrators.LogoutDeps{Audit: stores.Audit, Now: timeNow})
	middleware.ClearSessionCookie(w)
	if r.URL.Path == "/logout" {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleHealth reports whether the record store answers. It is reachable without a session.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := stores.Records.Ping(ctx); err != nil {
		internalLog(r, err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
