package web

import (
	"net/http"
	"time"

	"moodadmin/internal/application/listutil"
	"moodadmin/internal/application/projections"
	"moodadmin/internal/domain/audit"
	"moodadmin/internal/domain/task"
)

// policyNotes is shown on the settings page.
const policyNotes = `**Data handling**

- Diary text and chat messages are never loaded; only analysed summaries and metadata are shown.
- Motivation content is read-only here. Changes go through the content team.
- Deleting a user removes the account document only. Tasks, entries and chats stay for audit.

Every approval, rejection, status change, deletion and export is written to the audit trail.`

// handleDashboardPage renders GET /admin
func handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetDashboard(r.Context(), dashboardDeps(), timeNow())
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderTemplate(w, r, "dashboard.html", newPage(r, "Dashboard", "dashboard", res))
}

// usersView adds the parsed list state the table headers and pager need.
type usersView struct {
	projections.GetUserListResult
	Role           string
	Verified       string
	Search         string
	Sort           string
	Dir            string
	PerPageOptions []int
}

// handleUsersPage renders GET /admin/users
func handleUsersPage(w http.ResponseWriter, r *http.Request) {
	query := parseUserListQuery(r)
	res, err := projections.QueryGetUserList(r.Context(), query, projections.GetUserListDeps{Users: stores.Records})
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderTemplate(w, r, "users.html", newPage(r, "Users", "users", usersView{
		GetUserListResult: res,
		Role:              query.Role,
		Verified:          query.Verified,
		Search:            query.List.Search,
		Sort:              query.List.Sort,
		Dir:               query.List.Dir,
		PerPageOptions:    listutil.PerPageOptions,
	}))
}

// handleConsultantsPage renders GET /admin/consultants
func handleConsultantsPage(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetConsultants(r.Context(), consultantsDeps())
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderTemplate(w, r, "consultants.html", newPage(r, "Consultants", "consultants", res))
}

// handleConsultantPage renders GET /admin/consultants/{id}
func handleConsultantPage(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetConsultantAnalytics(r.Context(), r.PathValue("id"), consultantsDeps())
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderTemplate(w, r, "consultant.html", newPage(r, res.Consultant.Name(), "consultants", res))
}

// handleRequestsPage renders GET /admin/consultants/requests
func handleRequestsPage(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetConsultantRequests(r.Context(), projections.GetConsultantRequestsDeps{Users: stores.Records})
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderTemplate(w, r, "requests.html", newPage(r, "Consultant requests", "requests", res))
}

// handleChatsPage renders GET /admin/chats
func handleChatsPage(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetChats(r.Context(), projections.GetChatsDeps{Users: stores.Records, Chats: stores.Records}, timeNow())
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderTemplate(w, r, "chats.html", newPage(r, "Chats", "chats", res))
}

// handleDiaryPage renders GET /admin/diary-insights
func handleDiaryPage(w http.ResponseWriter, r *http.Request) {
	query, err := parseDiaryQuery(r)
	if err != nil {
		renderError(w, r, err)
		return
	}
	res, err := projections.QueryGetDiaryInsights(r.Context(), query, projections.GetDiaryInsightsDeps{
		Users:    stores.Records,
		Diary:    stores.Records,
		Location: opts.Location,
	}, timeNow())
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderTemplate(w, r, "diary.html", newPage(r, "Diary insights", "diary", res))
}

// tasksView carries the filter option lists next to the result.
type tasksView struct {
	projections.GetTasksResult
	Windows       []string
	Statuses      []string
	Verifications []string
}

// handleTasksPage renders GET /admin/tasks
func handleTasksPage(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetTasks(r.Context(), parseTasksQuery(r), projections.GetTasksDeps{Users: stores.Records, Tasks: stores.Records}, timeNow())
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderTemplate(w, r, "tasks.html", newPage(r, "Tasks", "tasks", tasksView{
		GetTasksResult: res,
		Windows:        []string{task.Window24h, task.Window7d, task.Window30d},
		Statuses:       []string{"all", task.StatusPending, task.StatusCompleted, task.StatusVerified},
		Verifications:  []string{task.VerificationAll, task.VerificationRequired, task.VerificationNotRequired},
	}))
}

// handleLeaderboardPage renders GET /admin/leaderboard
func handleLeaderboardPage(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetLeaderboard(r.Context(), leaderboardDeps())
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderTemplate(w, r, "leaderboard.html", newPage(r, "Leaderboard", "leaderboard", res))
}

// handleHistoryPage renders GET /admin/leaderboard/{userId}
func handleHistoryPage(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetPointsHistory(r.Context(), r.PathValue("userId"), leaderboardDeps())
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderTemplate(w, r, "history.html", newPage(r, "Points history", "leaderboard", res))
}

// handleContactsPage renders GET /admin/sos
func handleContactsPage(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetContacts(r.Context(), projections.GetContactsDeps{Contacts: stores.Records})
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderTemplate(w, r, "sos.html", newPage(r, "Emergency contacts", "sos", res))
}

// handleMotivationPage renders GET /admin/motivation. The page has no write actions.
func handleMotivationPage(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetMotivation(r.Context(), projections.GetMotivationDeps{Reels: stores.Records})
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderTemplate(w, r, "motivation.html", newPage(r, "Motivation lounge", "motivation", res))
}

// handleSearchPage renders GET /admin/search?q=
func handleSearchPage(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QuerySearch(r.Context(), r.URL.Query().Get("q"), projections.SearchDeps{Users: stores.Records, Tasks: stores.Records})
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderTemplate(w, r, "search.html", newPage(r, "Search", "", res))
}

// settingsView is the settings page model.
type settingsView struct {
	Settings
	PolicyNotes  string
	FailedLogins int            // last 24h
	Outbox       map[string]int // nil when no outbox is wired
}

// handleSettingsPage renders GET /admin/settings
func handleSettingsPage(w http.ResponseWriter, r *http.Request) {
	view := settingsView{
		Settings:    opts.Settings,
		PolicyNotes: policyNotes,
	}
	failed, err := stores.Audit.CountSince(r.Context(), audit.ActionLoginFail, timeNow().Add(-24*time.Hour))
	if err != nil {
		renderError(w, r, err)
		return
	}
	view.FailedLogins = failed
	if stores.Outbox != nil {
		counts, err := stores.Outbox.CountByStatus(r.Context())
		if err != nil {
			renderError(w, r, err)
			return
		}
		view.Outbox = counts
	}
	renderTemplate(w, r, "settings.html", newPage(r, "Settings", "settings", view))
}

// auditView carries the filter option lists next to the events.
type auditView struct {
	projections.GetAuditLogResult
	Categories []audit.Category
	Actions    []audit.Action
}

// handleAuditPage renders GET /admin/audit
// POST: shows at most projections.MaxAuditLimit events, newest first
func handleAuditPage(w http.ResponseWriter, r *http.Request) {
	query, err := parseAuditQuery(r)
	if err != nil {
		renderError(w, r, err)
		return
	}
	res, err := projections.QueryGetAuditLog(r.Context(), query, projections.GetAuditLogDeps{Audit: stores.Audit})
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderTemplate(w, r, "audit.html", newPage(r, "Audit trail", "audit", auditView{
		GetAuditLogResult: res,
		Categories:        []audit.Category{audit.CategoryAuth, audit.CategoryUser, audit.CategoryExport, audit.CategorySystem},
		Actions: []audit.Action{
			audit.ActionLogin, audit.ActionLoginFail, audit.ActionLogout,
			audit.ActionApprove, audit.ActionReject, audit.ActionActivate, audit.ActionDeactivate,
			audit.ActionDelete, audit.ActionExport, audit.ActionSeed,
		},
	}))
}

// performanceView lists the selectable windows next to the snapshot.
type performanceView struct {
	projections.GetPerformanceResult
	Windows []string
}

// handlePerformancePage renders GET /admin/performance
func handlePerformancePage(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetPerformance(r.URL.Query().Get("window"), perfCollector, timeNow())
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderTemplate(w, r, "performance.html", newPage(r, "Performance", "performance", performanceView{
		GetPerformanceResult: res,
		Windows:              []string{"15m", "1h", "24h"},
	}))
}
