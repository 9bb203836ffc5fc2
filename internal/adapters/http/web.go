package web

import (
	"embed"
	"io/fs"
	"net/http"
	"time"

	"moodadmin/internal/adapters/email"
	"moodadmin/internal/adapters/http/middleware"
	"moodadmin/internal/adapters/http/perf"
	auditStore "moodadmin/internal/adapters/storage/audit"
	outboxStore "moodadmin/internal/adapters/storage/outbox"
	"moodadmin/internal/adapters/storage/records"
	"moodadmin/internal/application/orchestrators"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Stores holds all storage dependencies.
type Stores struct {
	Records records.Store
	Audit   auditStore.Store
	Outbox  outboxStore.Store // optional
}

// Settings is the read-only configuration summary shown on the settings page.
type Settings struct {
	AdminEmail string
	SessionTTL time.Duration
	Backend    string
	Timezone   string
	RateLimit  int
	RateWindow time.Duration
	Mailer     string
	Production bool
}

// Options carries everything NewMux needs besides the stores.
type Options struct {
	Credentials    orchestrators.Credentials
	Tokens         *middleware.Tokens
	Limiter        middleware.Limiter
	Mailer         email.Sender
	Location       *time.Location
	CSRFKey        []byte
	TrustedOrigins []string
	TrustProxy     bool
	SlowRequestMs  int
	Settings       Settings
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global options (set by NewMux)
var opts Options

// timeNow is a variable for testability.
var timeNow = time.Now

// NewMux wires HTTP handlers for the dashboard.
func NewMux(s *Stores, collector *perf.Collector, o Options) http.Handler {
	if collector == nil {
		collector = perf.NewCollector(perf.DefaultRingSize)
	}
	stores = s
	perfCollector = collector
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Limiter == nil {
		o.Limiter = middleware.NewMemoryLimiter(100, 15*time.Minute)
	}
	opts = o
	middleware.SecureCookies = o.Settings.Production

	mux := http.NewServeMux()
	static, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	registerRoutes(mux)

	// Apply middleware: Timing -> RateLimit -> SessionGate -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(o.CSRFKey, o.Settings.Production, o.TrustedOrigins),
		middleware.SessionGate(o.Tokens),
		middleware.RateLimit(o.Limiter, o.TrustProxy),
		middleware.Timing(collector, o.SlowRequestMs),
	)
}

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
	})

	// Session
	mux.HandleFunc("GET /login", handleLoginPage)
	mux.HandleFunc("POST /login", handleLoginForm)
	mux.HandleFunc("POST /logout", handleLogout)
	mux.HandleFunc("POST /api/auth/login", handleAPILogin)
	mux.HandleFunc("POST /api/auth/logout", handleLogout)
	mux.HandleFunc("GET /api/health", handleHealth)

	// Pages
	mux.HandleFunc("GET /admin", handleDashboardPage)
	mux.HandleFunc("GET /admin/users", handleUsersPage)
	mux.HandleFunc("GET /admin/consultants", handleConsultantsPage)
	mux.HandleFunc("GET /admin/consultants/requests", handleRequestsPage)
	mux.HandleFunc("GET /admin/consultants/{id}", handleConsultantPage)
	mux.HandleFunc("GET /admin/chats", handleChatsPage)
	mux.HandleFunc("GET /admin/diary-insights", handleDiaryPage)
	mux.HandleFunc("GET /admin/tasks", handleTasksPage)
	mux.HandleFunc("GET /admin/leaderboard", handleLeaderboardPage)
	mux.HandleFunc("GET /admin/leaderboard/{userId}", handleHistoryPage)
	mux.HandleFunc("GET /admin/sos", handleContactsPage)
	mux.HandleFunc("GET /admin/motivation", handleMotivationPage)
	mux.HandleFunc("GET /admin/search", handleSearchPage)
	mux.HandleFunc("GET /admin/settings", handleSettingsPage)
	mux.HandleFunc("GET /admin/audit", handleAuditPage)
	mux.HandleFunc("GET /admin/performance", handlePerformancePage)

	// Read API
	mux.HandleFunc("GET /api/dashboard", handleAPIDashboard)
	mux.HandleFunc("GET /api/users", handleAPIUsers)
	mux.HandleFunc("GET /api/consultants", handleAPIConsultants)
	mux.HandleFunc("GET /api/consultants/{id}/analytics", handleAPIConsultantAnalytics)
	mux.HandleFunc("GET /api/consultant-requests", handleAPIRequests)
	mux.HandleFunc("GET /api/chats", handleAPIChats)
	mux.HandleFunc("GET /api/diary-insights", handleAPIDiaryInsights)
	mux.HandleFunc("GET /api/tasks", handleAPITasks)
	mux.HandleFunc("GET /api/leaderboard", handleAPILeaderboard)
	mux.HandleFunc("GET /api/leaderboard/{userId}/transactions", handleAPIPointsHistory)
	mux.HandleFunc("GET /api/emergency-contacts", handleAPIContacts)
	mux.HandleFunc("GET /api/motivation", handleAPIMotivation)
	mux.HandleFunc("GET /api/search", handleAPISearch)
	mux.HandleFunc("GET /api/audit", handleAPIAudit)
	mux.HandleFunc("GET /api/performance", handleAPIPerformance)
	mux.HandleFunc("GET /api/export/{dataset}", handleExport)

	// Mutations
	mux.HandleFunc("POST /api/users/{id}/approve", handleApproveConsultant)
	mux.HandleFunc("POST /api/users/{id}/reject", handleRejectConsultant)
	mux.HandleFunc("POST /api/users/{id}/active", handleSetUserActive)
	mux.HandleFunc("POST /api/users/{id}/delete", handleDeleteUser)
	mux.HandleFunc("DELETE /api/users/{id}", handleDeleteUser)
}
