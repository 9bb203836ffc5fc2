package projections

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"moodadmin/internal/domain/contact"
	"moodadmin/internal/domain/export"
	"moodadmin/internal/domain/points"
	"moodadmin/internal/domain/task"
	"moodadmin/internal/domain/user"
)

func exportFixture() *fakeStore {
	created := time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC)
	return &fakeStore{
		users: []user.User{
			{ID: "u1", DisplayName: "Ana, A.", Email: "ana@example.com", Role: user.RoleUser, Active: true, CreatedAt: created},
			{ID: "c1", DisplayName: "Bea", Email: "bea@clinic.org", Role: user.RoleConsultant, CVURL: "https://cv", CreatedAt: created},
		},
		tasks: []task.Task{
			{ID: "t1", UserID: "u1", Title: "Walk", Status: task.StatusCompleted, CreatedAt: hoursAgo(2), PointsAwarded: 5},
			{ID: "t2", UserID: "u1", Title: "Old", Status: task.StatusCompleted, CreatedAt: hoursAgo(24 * 20)},
		},
		points:   []points.UserPoints{{UserID: "u1", UserName: "Ana", TotalPoints: 5}},
		contacts: []contact.EmergencyContact{{ID: "s1", UserID: "u1", Name: "Mum", PhoneNumber: "+44 1"}},
	}
}

// TestQueryGetExport renders each dataset with its filename.
func TestQueryGetExport(t *testing.T) {
	tests := []struct {
		name         string
		query        GetExportQuery
		wantFilename string
		wantRows     int
		wantHeader   string
	}{
		{"users", GetExportQuery{Dataset: export.DatasetUsers}, "users-2026-05-10.csv", 2, "User ID,Display Name,Email,Role,Verified,Active,Created At"},
		{"consultants only", GetExportQuery{Dataset: export.DatasetUsers, Users: GetUserListQuery{Role: user.RoleConsultant}}, "users-2026-05-10.csv", 1, "User ID,Display Name"},
		{"requests", GetExportQuery{Dataset: export.DatasetConsultantRequests}, "consultant-requests-2026-05-10.csv", 1, "User ID,Name,Email,Applied Date,CV URL,LinkedIn URL"},
		{"tasks", GetExportQuery{Dataset: export.DatasetTasks}, "tasks-7d-2026-05-10.csv", 1, "Task ID,User ID,Title"},
		{"tasks 30d", GetExportQuery{Dataset: export.DatasetTasks, Tasks: GetTasksQuery{Window: task.Window30d}}, "tasks-30d-2026-05-10.csv", 2, "Task ID"},
		{"leaderboard", GetExportQuery{Dataset: export.DatasetLeaderboard}, "leaderboard-2026-05-10.csv", 1, "Rank,User ID,User Name,Total Points,Last Updated"},
		{"contacts", GetExportQuery{Dataset: export.DatasetEmergencyContacts}, "emergency-contacts-2026-05-10.csv", 1, "Contact ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := exportFixture()
			deps := GetExportDeps{Users: store, Tasks: store, Points: store, Contacts: store}
			got, err := QueryGetExport(context.Background(), tt.query, deps, testNow)
			if err != nil {
				t.Fatalf("QueryGetExport() error = %v", err)
			}
			if got.Filename != tt.wantFilename {
				t.Errorf("Filename = %q, want %q", got.Filename, tt.wantFilename)
			}
			if got.Rows != tt.wantRows {
				t.Errorf("Rows = %d, want %d", got.Rows, tt.wantRows)
			}
			lines := strings.Split(got.Body, "\n")
			if len(lines) != tt.wantRows+1 {
				t.Errorf("got %d lines, want %d", len(lines), tt.wantRows+1)
			}
			if !strings.HasPrefix(lines[0], tt.wantHeader) {
				t.Errorf("header = %q, want prefix %q", lines[0], tt.wantHeader)
			}
		})
	}
}

// TestQueryGetExport_UserRow checks quoting and timestamp cells end to end.
func TestQueryGetExport_UserRow(t *testing.T) {
	store := exportFixture()
	got, err := QueryGetExport(context.Background(), GetExportQuery{Dataset: export.DatasetUsers, Users: GetUserListQuery{Role: user.RoleUser}},
		GetExportDeps{Users: store}, testNow)
	if err != nil {
		t.Fatalf("QueryGetExport() error = %v", err)
	}
	want := `u1,"Ana, A.",ana@example.com,user,false,true,2026-05-01T08:30:00.000Z`
	if lines := strings.Split(got.Body, "\n"); lines[1] != want {
		t.Errorf("row = %q, want %q", lines[1], want)
	}
}

// TestQueryGetExport_Errors covers unknown datasets and bad filters.
func TestQueryGetExport_Errors(t *testing.T) {
	store := exportFixture()
	deps := GetExportDeps{Users: store, Tasks: store, Points: store, Contacts: store}
	if _, err := QueryGetExport(context.Background(), GetExportQuery{Dataset: "diary"}, deps, testNow); !errors.Is(err, export.ErrUnknownDataset) {
		t.Errorf("unknown dataset error = %v", err)
	}
	bad := GetExportQuery{Dataset: export.DatasetTasks, Tasks: GetTasksQuery{Window: "1y"}}
	if _, err := QueryGetExport(context.Background(), bad, deps, testNow); !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("bad window error = %v", err)
	}
}
