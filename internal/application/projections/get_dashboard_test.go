package projections

import (
	"context"
	"testing"

	"moodadmin/internal/domain/contact"
	"moodadmin/internal/domain/diary"
	"moodadmin/internal/domain/task"
	"moodadmin/internal/domain/user"
)

// TestQueryGetDashboard_Counts verifies the overview counters and the task window.
func TestQueryGetDashboard_Counts(t *testing.T) {
	store := &fakeStore{
		users: []user.User{
			{ID: "u1", Role: user.RoleUser},
			{ID: "u2", Role: user.RoleUser},
			{ID: "c1", Role: user.RoleConsultant, Verified: true},
			{ID: "c2", Role: user.RoleConsultant},
			{ID: "c3", Role: user.RoleConsultant, Rejected: true},
		},
		tasks: []task.Task{
			{ID: "t1", Status: task.StatusPending, CreatedAt: hoursAgo(1)},
			{ID: "t2", Status: task.StatusVerified, CreatedAt: hoursAgo(48)},
			{ID: "t3", Status: task.StatusCompleted, CreatedAt: hoursAgo(24 * 40)},
		},
		entries: []diary.Entry{
			{ID: "e1", UserID: "u1", DominantEmotion: "joy", CreatedAt: hoursAgo(2), SentimentAnalysis: diary.Sentiment{Joy: 0.8}},
			{ID: "e2", UserID: "u2", DominantEmotion: "fear", CreatedAt: hoursAgo(30), SentimentAnalysis: diary.Sentiment{Fear: 0.6}},
		},
		contacts: []contact.EmergencyContact{{ID: "s1", UserID: "u1"}},
	}
	deps := GetDashboardDeps{Users: store, Tasks: store, Diary: store, Contacts: store}

	got, err := QueryGetDashboard(context.Background(), deps, testNow)
	if err != nil {
		t.Fatalf("QueryGetDashboard() error = %v", err)
	}
	if got.TotalUsers != 2 || got.VerifiedConsultants != 1 || got.PendingRequests != 2 {
		t.Errorf("users/verified/pending = %d/%d/%d, want 2/1/2", got.TotalUsers, got.VerifiedConsultants, got.PendingRequests)
	}
	if got.TasksLast30Days != 2 {
		t.Errorf("TasksLast30Days = %d, want 2", got.TasksLast30Days)
	}
	if got.TaskStats.Completed != 1 || got.TaskStats.Pending != 1 {
		t.Errorf("TaskStats = %+v", got.TaskStats)
	}
	if got.EmergencyContacts != 1 {
		t.Errorf("EmergencyContacts = %d, want 1", got.EmergencyContacts)
	}
	if len(got.SentimentTrend) != 2 {
		t.Errorf("len(SentimentTrend) = %d, want 2", len(got.SentimentTrend))
	}
	if len(got.RecentRequests) != 2 {
		t.Errorf("len(RecentRequests) = %d, want 2", len(got.RecentRequests))
	}
	if store.lastDiaryFilter.Limit != diary.DefaultLimit {
		t.Errorf("diary limit = %d, want %d", store.lastDiaryFilter.Limit, diary.DefaultLimit)
	}
}

// TestQueryGetDashboard_Empty verifies an empty store yields zeroes, not errors.
func TestQueryGetDashboard_Empty(t *testing.T) {
	store := &fakeStore{}
	got, err := QueryGetDashboard(context.Background(), GetDashboardDeps{Users: store, Tasks: store, Diary: store, Contacts: store}, testNow)
	if err != nil {
		t.Fatalf("QueryGetDashboard() error = %v", err)
	}
	if got.TotalUsers != 0 || got.SentimentTrend == nil || got.RecentRequests == nil {
		t.Errorf("got %+v, want zero counts and non-nil slices", got)
	}
}
