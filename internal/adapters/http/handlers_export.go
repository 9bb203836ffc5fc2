package web

import (
	"fmt"
	"net/http"

	"moodadmin/internal/application/orchestrators"
	"moodadmin/internal/application/projections"
)

// handleExport handles GET /api/export/{dataset}
// PRE: dataset is one of users, consultant-requests, tasks, leaderboard, emergency-contacts
// POST: a CSV attachment named "<dataset>-<YYYY-MM-DD>.csv"; the download is audited
func handleExport(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetExport(r.Context(), projections.GetExportQuery{
		Dataset: r.PathValue("dataset"),
		Users:   parseUserListQuery(r),
		Tasks:   parseTasksQuery(r),
	}, projections.GetExportDeps{
		Users:    stores.Records,
		Tasks:    stores.Records,
		Points:   stores.Records,
		Contacts: stores.Records,
	}, timeNow())
	if err != nil {
		apiError(w, err)
		return
	}

	orchestrators.ExecuteRecordExport(r.Context(), orchestrators.RecordExportInput{
		Dataset:  res.Dataset,
		Filename: res.Filename,
		Rows:     res.Rows,
		Actor:    actorFrom(r),
	}, orchestrators.RecordExportDeps{Audit: stores.Audit, Now: timeNow})

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(res.Body))
}
