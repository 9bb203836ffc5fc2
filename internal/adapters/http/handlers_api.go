package web

import (
	"net/http"
	"strconv"

	"moodadmin/internal/application/listutil"
	"moodadmin/internal/application/projections"
)

func dashboardDeps() projections.GetDashboardDeps {
	return projections.GetDashboardDeps{
		Users:    stores.Records,
		Tasks:    stores.Records,
		Diary:    stores.Records,
		Contacts: stores.Records,
		Location: opts.Location,
	}
}

func consultantsDeps() projections.GetConsultantsDeps {
	return projections.GetConsultantsDeps{
		Users:    stores.Records,
		Chats:    stores.Records,
		Diary:    stores.Records,
		Location: opts.Location,
	}
}

func leaderboardDeps() projections.GetLeaderboardDeps {
	return projections.GetLeaderboardDeps{Points: stores.Records, Users: stores.Records}
}

func parseUserListQuery(r *http.Request) projections.GetUserListQuery {
	q := r.URL.Query()
	return projections.GetUserListQuery{
		Role:     q.Get("role"),
		Verified: q.Get("verified"),
		List:     listutil.ParseListParams(q, projections.UserSortColumns),
	}
}

func parseTasksQuery(r *http.Request) projections.GetTasksQuery {
	q := r.URL.Query()
	return projections.GetTasksQuery{
		Window:       q.Get("window"),
		Status:       q.Get("status"),
		Verification: q.Get("verification"),
	}
}

func parseDiaryQuery(r *http.Request) (projections.GetDiaryInsightsQuery, error) {
	q := r.URL.Query()
	from, err := parseDate(q.Get("from"), false)
	if err != nil {
		return projections.GetDiaryInsightsQuery{}, err
	}
	to, err := parseDate(q.Get("to"), true)
	if err != nil {
		return projections.GetDiaryInsightsQuery{}, err
	}
	return projections.GetDiaryInsightsQuery{From: from, To: to, Emotion: q.Get("emotion")}, nil
}

func parseAuditQuery(r *http.Request) (projections.GetAuditLogQuery, error) {
	q := r.URL.Query()
	from, err := parseDate(q.Get("from"), false)
	if err != nil {
		return projections.GetAuditLogQuery{}, err
	}
	to, err := parseDate(q.Get("to"), true)
	if err != nil {
		return projections.GetAuditLogQuery{}, err
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	return projections.GetAuditLogQuery{
		Category:   q.Get("category"),
		Action:     q.Get("action"),
		ActorEmail: q.Get("actor"),
		ResourceID: q.Get("resource_id"),
		From:       from,
		To:         to,
		Limit:      limit,
	}, nil
}

// handleAPIDashboard handles GET /api/dashboard
func handleAPIDashboard(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetDashboard(r.Context(), dashboardDeps(), timeNow())
	if err != nil {
		apiError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleAPIUsers handles GET /api/users
func handleAPIUsers(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetUserList(r.Context(), parseUserListQuery(r), projections.GetUserListDeps{Users: stores.Records})
	if err != nil {
		apiError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleAPIConsultants handles GET /api/consultants
func handleAPIConsultants(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetConsultants(r.Context(), consultantsDeps())
	if err != nil {
		apiError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleAPIConsultantAnalytics handles GET /api/consultants/{id}/analytics
func handleAPIConsultantAnalytics(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetConsultantAnalytics(r.Context(), r.PathValue("id"), consultantsDeps())
	if err != nil {
		apiError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleAPIRequests handles GET /api/consultant-requests
func handleAPIRequests(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetConsultantRequests(r.Context(), projections.GetConsultantRequestsDeps{Users: stores.Records})
	if err != nil {
		apiError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleAPIChats handles GET /api/chats
func handleAPIChats(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetChats(r.Context(), projections.GetChatsDeps{Users: stores.Records, Chats: stores.Records}, timeNow())
	if err != nil {
		apiError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleAPIDiaryInsights handles GET /api/diary-insights
func handleAPIDiaryInsights(w http.ResponseWriter, r *http.Request) {
	query, err := parseDiaryQuery(r)
	if err != nil {
		apiError(w, err)
		return
	}
	res, err := projections.QueryGetDiaryInsights(r.Context(), query, projections.GetDiaryInsightsDeps{
		Users:    stores.Records,
		Diary:    stores.Records,
		Location: opts.Location,
	}, timeNow())
	if err != nil {
		apiError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleAPITasks handles GET /api/tasks
func handleAPITasks(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetTasks(r.Context(), parseTasksQuery(r), projections.GetTasksDeps{Users: stores.Records, Tasks: stores.Records}, timeNow())
	if err != nil {
		apiError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleAPILeaderboard handles GET /api/leaderboard
func handleAPILeaderboard(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetLeaderboard(r.Context(), leaderboardDeps())
	if err != nil {
		apiError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleAPIPointsHistory handles GET /api/leaderboard/{userId}/transactions
func handleAPIPointsHistory(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetPointsHistory(r.Context(), r.PathValue("userId"), leaderboardDeps())
	if err != nil {
		apiError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleAPIContacts handles GET /api/emergency-contacts
func handleAPIContacts(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetContacts(r.Context(), projections.GetContactsDeps{Contacts: stores.Records})
	if err != nil {
		apiError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleAPIMotivation handles GET /api/motivation
func handleAPIMotivation(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetMotivation(r.Context(), projections.GetMotivationDeps{Reels: stores.Records})
	if err != nil {
		apiError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleAPISearch handles GET /api/search?q=
func handleAPISearch(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QuerySearch(r.Context(), r.URL.Query().Get("q"), projections.SearchDeps{Users: stores.Records, Tasks: stores.Records})
	if err != nil {
		apiError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleAPIAudit handles GET /api/audit
func handleAPIAudit(w http.ResponseWriter, r *http.Request) {
	query, err := parseAuditQuery(r)
	if err != nil {
		apiError(w, err)
		return
	}
	res, err := projections.QueryGetAuditLog(r.Context(), query, projections.GetAuditLogDeps{Audit: stores.Audit})
	if err != nil {
		apiError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleAPIPerformance handles GET /api/performance?window=
func handleAPIPerformance(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetPerformance(r.URL.Query().Get("window"), perfCollector, timeNow())
	if err != nil {
		apiError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
