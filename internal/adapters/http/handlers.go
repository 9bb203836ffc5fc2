package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"moodadmin/internal/adapters/http/middleware"
	"moodadmin/internal/adapters/storage/records"
	"moodadmin/internal/application/orchestrators"
	"moodadmin/internal/application/projections"
	"moodadmin/internal/domain/diary"
	"moodadmin/internal/domain/export"
	"moodadmin/internal/domain/task"
	"moodadmin/internal/domain/user"
)

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// internalError logs the real error and returns a generic JSON message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

// internalLog records an error that is not surfaced to the caller verbatim.
func internalLog(r *http.Request, err error) {
	slog.Error("internal_error", "request_id", middleware.RequestIDFrom(r.Context()), "path", r.URL.Path, "error", err.Error())
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json_encode_failed", "error", err)
	}
}

// errorStatus maps domain and store errors to an HTTP status. Zero means internal.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, records.ErrNotFound), errors.Is(err, export.ErrUnknownDataset):
		return http.StatusNotFound
	case errors.Is(err, user.ErrNotConsultant):
		return http.StatusConflict
	case errors.Is(err, projections.ErrInvalidFilter),
		errors.Is(err, user.ErrEmptyID),
		errors.Is(err, user.ErrReasonTooLong),
		errors.Is(err, user.ErrInvalidActiveFlag),
		errors.Is(err, task.ErrInvalidWindow),
		errors.Is(err, task.ErrInvalidStatus),
		errors.Is(err, task.ErrInvalidVerification):
		return http.StatusBadRequest
	}
	return 0
}

// apiError writes {"error": "..."} for known errors and falls back to internalError.
func apiError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status == 0 {
		internalError(w, err)
		return
	}
	msg := err.Error()
	if status == http.StatusNotFound && errors.Is(err, records.ErrNotFound) {
		msg = "not found"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
// An empty body leaves v untouched.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func isJSONRequest(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

// actorFrom identifies the signed-in admin and the request origin.
func actorFrom(r *http.Request) orchestrators.Actor {
	a := orchestrators.Actor{
		IP:        middleware.ClientIP(r, opts.TrustProxy),
		UserAgent: r.UserAgent(),
	}
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		a.Email = sess.Email
	}
	return a
}

// returnTo reads the form's return_to path, accepting only local dashboard paths.
func returnTo(r *http.Request, fallback string) string {
	target := r.FormValue("return_to")
	if !strings.HasPrefix(target, "/admin") || strings.HasPrefix(target, "//") {
		return fallback
	}
	return target
}

// redirectWithFlash sends a 303 back to target with ?ok= or ?error= set.
func redirectWithFlash(w http.ResponseWriter, r *http.Request, target, key, msg string) {
	u, err := url.Parse(target)
	if err != nil {
		u = &url.URL{Path: "/admin"}
	}
	q := u.Query()
	q.Del("ok")
	q.Del("error")
	q.Set(key, msg)
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusSeeOther)
}

// page is the data handed to every dashboard template.
type page struct {
	Title string
	Nav   string
	OK    string
	Error string
	Query url.Values
	Data  any
}

func newPage(r *http.Request, title, nav string, data any) page {
	q := r.URL.Query()
	return page{Title: title, Nav: nav, OK: q.Get("ok"), Error: q.Get("error"), Query: q, Data: data}
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	renderTemplateStatus(w, r, http.StatusOK, templateName, data)
}

func renderTemplateStatus(w http.ResponseWriter, r *http.Request, status int, templateName string, data any) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	email := ""
	if ok {
		email = sess.Email
	}

	funcMap := template.FuncMap{
		"currentEmail": func() string { return email },
		"isLoggedIn":   func() bool { return ok },
		"csrfToken":    func() string { return csrf.Token(r) },
		"csrfField":    func() template.HTML { return csrf.TemplateField(r) },
		"currentPath":  func() string { return r.URL.RequestURI() },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.In(opts.Location).Format("2006-01-02 15:04")
		},
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.In(opts.Location).Format(diary.DateLayout)
		},
		"score":        func(f float64) string { return fmt.Sprintf("%.2f", f) },
		"barWidth":     func(f float64) int { return int(max(0, min(f, 1)) * 100) },
		"ms":           func(f float64) string { return fmt.Sprintf("%.1f", f) },
		"emotionColor": diary.EmotionColor,
		"sortHeaderArgs": func(col, label, activeSort, activeDir string, q url.Values) map[string]any {
			nextDir := "asc"
			if col == activeSort && activeDir == "asc" {
				nextDir = "desc"
			}
			next := cloneQuery(q)
			next.Set("sort", col)
			next.Set("dir", nextDir)
			next.Del("page")
			return map[string]any{
				"Col": col, "Label": label,
				"ActiveSort": activeSort, "ActiveDir": activeDir,
				"Href": template.URL("?" + next.Encode()),
			}
		},
		"paginationQuery": func(pageNum int, q url.Values) template.URL {
			next := cloneQuery(q)
			next.Set("page", fmt.Sprintf("%d", pageNum))
			next.Del("ok")
			next.Del("error")
			return template.URL(next.Encode())
		},
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		http.Error(w, "Render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderError shows the terminal error page for a failed page fetch.
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status == 0 {
		status = http.StatusInternalServerError
		internalLog(r, err)
	}
	renderTemplateStatus(w, r, status, "error.html", newPage(r, "Error", "", err.Error()))
}

func cloneQuery(q url.Values) url.Values {
	out := url.Values{}
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// parseDate reads a YYYY-MM-DD query value in the dashboard zone. endOfDay moves it
// to the last instant of that date.
func parseDate(value string, endOfDay bool) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(diary.DateLayout, value, opts.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", value, projections.ErrInvalidFilter)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return t, nil
}
