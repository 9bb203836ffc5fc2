package projections

import (
	"context"
	"time"

	"moodadmin/internal/adapters/storage/records"
	"moodadmin/internal/domain/contact"
	"moodadmin/internal/domain/diary"
	"moodadmin/internal/domain/task"
	"moodadmin/internal/domain/user"
)

// DashboardTaskWindow is the lookback for the dashboard task counters.
const DashboardTaskWindow = 30 * 24 * time.Hour

// RecentRequestsShown caps the pending applications listed on the dashboard.
const RecentRequestsShown = 5

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	Users    records.UserReader
	Tasks    records.TaskReader
	Diary    records.DiaryReader
	Contacts records.ContactReader
	Location *time.Location
}

// DashboardResult carries the overview numbers and charts.
type DashboardResult struct {
	TotalUsers          int                `json:"totalUsers"`
	VerifiedConsultants int                `json:"verifiedConsultants"`
	PendingRequests     int                `json:"pendingRequests"`
	TasksLast30Days     int                `json:"tasksLast30Days"`
	EmergencyContacts   int                `json:"emergencyContacts"`
	TaskStats           task.Stats         `json:"taskStats"`
	SentimentTrend      []diary.TrendPoint `json:"sentimentTrend"`
	Emotions            diary.Distribution `json:"emotions"`
	RecentRequests      []user.User        `json:"recentRequests"`
}

// QueryGetDashboard aggregates the overview page.
// PRE: now is the request time
// POST: the sentiment trend covers the diary.DefaultLimit newest entries
func QueryGetDashboard(ctx context.Context, deps GetDashboardDeps, now time.Time) (DashboardResult, error) {
	var (
		users    []user.User
		tasks    []task.Task
		entries  []diary.Entry
		contacts []contact.EmergencyContact
	)
	err := fetchAll(ctx,
		func(ctx context.Context) (err error) {
			users, err = deps.Users.ListUsers(ctx, records.UserFilter{Limit: UserFetchLimit})
			return err
		},
		func(ctx context.Context) (err error) {
			tasks, err = deps.Tasks.ListTasks(ctx, records.TaskFilter{Since: now.Add(-DashboardTaskWindow)})
			return err
		},
		func(ctx context.Context) (err error) {
			entries, err = deps.Diary.ListDiaryEntries(ctx, records.DiaryFilter{Limit: diary.DefaultLimit})
			return err
		},
		func(ctx context.Context) (err error) {
			contacts, err = deps.Contacts.ListEmergencyContacts(ctx)
			return err
		},
	)
	if err != nil {
		return DashboardResult{}, err
	}

	result := DashboardResult{
		TasksLast30Days:   len(tasks),
		EmergencyContacts: len(contacts),
		TaskStats:         task.ComputeStats(tasks),
		SentimentTrend:    diary.DailyTrend(entries, deps.Location),
		Emotions:          diary.EmotionDistribution(entries),
		RecentRequests:    []user.User{},
	}
	for _, u := range users {
		switch {
		case u.Role == user.RoleUser:
			result.TotalUsers++
		case u.IsVerifiedConsultant():
			result.VerifiedConsultants++
		case u.IsPendingConsultant():
			result.PendingRequests++
			if len(result.RecentRequests) < RecentRequestsShown {
				result.RecentRequests = append(result.RecentRequests, u)
			}
		}
	}
	return result, nil
}
