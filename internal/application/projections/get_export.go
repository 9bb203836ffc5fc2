package projections

import (
	"context"
	"fmt"
	"time"

	"moodadmin/internal/adapters/storage/records"
	"moodadmin/internal/domain/export"
	"moodadmin/internal/domain/task"
)

// GetExportQuery selects a dataset and the page filters it inherits.
type GetExportQuery struct {
	Dataset string
	Users   GetUserListQuery // role and verified only; search and paging are ignored
	Tasks   GetTasksQuery
}

// GetExportResult is a rendered CSV document.
type GetExportResult struct {
	Dataset  string
	Filename string
	Rows     int
	Body     string
}

// GetExportDeps holds dependencies for the CSV export projection.
type GetExportDeps struct {
	Users    records.UserReader
	Tasks    records.TaskReader
	Points   records.PointsReader
	Contacts records.ContactReader
}

// QueryGetExport renders a dataset as CSV named "<base>-<YYYY-MM-DD>.csv".
// PRE: now is the request time
// POST: returns export.ErrUnknownDataset for unsupported names
func QueryGetExport(ctx context.Context, query GetExportQuery, deps GetExportDeps, now time.Time) (GetExportResult, error) {
	var (
		base    = query.Dataset
		rows    []export.Record
		columns []export.Column
	)

	switch query.Dataset {
	case export.DatasetUsers:
		filter, err := query.Users.filter()
		if err != nil {
			return GetExportResult{}, err
		}
		users, err := deps.Users.ListUsers(ctx, filter)
		if err != nil {
			return GetExportResult{}, err
		}
		rows, columns = export.UserRecords(users), export.UserColumns

	case export.DatasetConsultantRequests:
		requests, err := QueryGetConsultantRequests(ctx, GetConsultantRequestsDeps{Users: deps.Users})
		if err != nil {
			return GetExportResult{}, err
		}
		rows, columns = export.UserRecords(requests.Requests), export.RequestColumns

	case export.DatasetTasks:
		result, err := QueryGetTasks(ctx, query.Tasks, GetTasksDeps{Users: deps.Users, Tasks: deps.Tasks}, now)
		if err != nil {
			return GetExportResult{}, err
		}
		tasks := make([]task.Task, len(result.Tasks))
		for i, row := range result.Tasks {
			tasks[i] = row.Task
		}
		base = "tasks-" + result.Window
		rows, columns = export.TaskRecords(tasks), export.TaskColumns

	case export.DatasetLeaderboard:
		board, err := QueryGetLeaderboard(ctx, GetLeaderboardDeps{Points: deps.Points})
		if err != nil {
			return GetExportResult{}, err
		}
		rows, columns = export.StandingRecords(board.Standings), export.LeaderboardColumns

	case export.DatasetEmergencyContacts:
		contacts, err := deps.Contacts.ListEmergencyContacts(ctx)
		if err != nil {
			return GetExportResult{}, err
		}
		rows, columns = export.ContactRecords(contacts), export.ContactColumns

	default:
		return GetExportResult{}, fmt.Errorf("%q: %w", query.Dataset, export.ErrUnknownDataset)
	}

	return GetExportResult{
		Dataset:  query.Dataset,
		Filename: export.Filename(base, now),
		Rows:     len(rows),
		Body:     export.CSV(rows, columns),
	}, nil
}
