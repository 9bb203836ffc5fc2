package projections

import (
	"context"
	"fmt"
	"time"

	"moodadmin/internal/adapters/storage/records"
	"moodadmin/internal/domain/task"
	"moodadmin/internal/domain/user"
)

// GetTasksQuery carries the tasks page filters.
type GetTasksQuery struct {
	Window       string // task.Window24h, Window7d or Window30d; empty means task.DefaultWindow
	Status       string
	Verification string
}

// TaskRow is one task with its owner's name and scheduled time of day.
type TaskRow struct {
	task.Task
	UserName  string `json:"userName"`
	TimeOfDay string `json:"timeOfDay"`
}

// GetTasksResult carries the filtered tasks and their statistics.
type GetTasksResult struct {
	Window       string     `json:"window"`
	Status       string     `json:"status"`
	Verification string     `json:"verification"`
	Tasks        []TaskRow  `json:"tasks"`
	Stats        task.Stats `json:"stats"`
}

// GetTasksDeps holds dependencies for the tasks projection.
type GetTasksDeps struct {
	Users records.UserReader
	Tasks records.TaskReader
}

// QueryGetTasks fetches tasks created inside the window and applies the status and
// verification predicate before computing statistics.
// PRE: now is the request time
// POST: Stats describe exactly the rows in Tasks
func QueryGetTasks(ctx context.Context, query GetTasksQuery, deps GetTasksDeps, now time.Time) (GetTasksResult, error) {
	window := query.Window
	if window == "" {
		window = task.DefaultWindow
	}
	lookback, err := task.WindowDuration(window)
	if err != nil {
		return GetTasksResult{}, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}
	pred := task.Predicate{Status: query.Status, Verification: query.Verification}
	if err := pred.Validate(); err != nil {
		return GetTasksResult{}, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}

	var (
		users []user.User
		tasks []task.Task
	)
	err = fetchAll(ctx,
		func(ctx context.Context) (err error) {
			users, err = deps.Users.ListUsers(ctx, records.UserFilter{Limit: UserFetchLimit})
			return err
		},
		func(ctx context.Context) (err error) {
			tasks, err = deps.Tasks.ListTasks(ctx, records.TaskFilter{Since: now.Add(-lookback)})
			return err
		},
	)
	if err != nil {
		return GetTasksResult{}, err
	}

	filtered := pred.Filter(tasks)
	names := userNames(users)
	rows := make([]TaskRow, 0, len(filtered))
	for _, t := range filtered {
		name, ok := names[t.UserID]
		if !ok {
			name = UnknownUser
		}
		rows = append(rows, TaskRow{
			Task:      t,
			UserName:  name,
			TimeOfDay: fmt.Sprintf("%02d:%02d", t.TimeHour, t.TimeMinute),
		})
	}

	return GetTasksResult{
		Window:       window,
		Status:       orAll(query.Status),
		Verification: orAll(query.Verification),
		Tasks:        rows,
		Stats:        task.ComputeStats(filtered),
	}, nil
}

func orAll(s string) string {
	if s == "" {
		return "all"
	}
	return s
}
