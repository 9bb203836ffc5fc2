package export_test

import (
	"testing"
	"time"

	"moodadmin/internal/domain/export"
	"moodadmin/internal/domain/task"
)

// TestCSV_QuotesCommas verifies the exact output for a quoted cell and a number.
func TestCSV_QuotesCommas(t *testing.T) {
	got := export.CSV(
		[]export.Record{{"name": "A,B", "amount": 5}},
		[]export.Column{{Key: "name", Label: "name"}, {Key: "amount", Label: "amount"}},
	)
	want := "name,amount\n\"A,B\",5"
	if got != want {
		t.Errorf("CSV() = %q, want %q", got, want)
	}
}

// TestCell tests formatting of individual values.
func TestCell(t *testing.T) {
	ts := time.Date(2026, 2, 3, 4, 5, 6, 789000000, time.FixedZone("X", 3600))
	var nilTime *time.Time

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"plain string", "hello", "hello"},
		{"quote doubled", `say "hi"`, `"say ""hi"""`},
		{"newline quoted", "a\nb", "\"a\nb\""},
		{"time in UTC millis", ts, "2026-02-03T03:05:06.789Z"},
		{"zero time empty", time.Time{}, ""},
		{"nil time pointer", nilTime, ""},
		{"time pointer", &ts, "2026-02-03T03:05:06.789Z"},
		{"bool", false, "false"},
		{"zero int", 0, "0"},
		{"float", 1.5, "1.5"},
		{"slice as json", []string{"a", "b"}, `"[""a"",""b""]"`},
		{"map as json", map[string]int{"x": 1}, `"{""x"":1}"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := export.Cell(tt.in); got != tt.want {
				t.Errorf("Cell(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestCSV_NoRecords verifies a header-only export has no trailing newline.
func TestCSV_NoRecords(t *testing.T) {
	got := export.CSV(nil, export.LeaderboardColumns)
	if got != "Rank,User ID,User Name,Total Points,Last Updated" {
		t.Errorf("CSV() = %q", got)
	}
}

// TestTaskRecords verifies missing completion renders as an empty cell.
func TestTaskRecords(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	got := export.CSV(export.TaskRecords([]task.Task{{
		ID: "t1", UserID: "u1", Title: "Walk, 10 min", Status: task.StatusPending,
		Date: created, CreatedAt: created,
	}}), export.TaskColumns)
	want := "Task ID,User ID,Title,Status,Points Awarded,Requires Verification,Task Date,Created At,Completed At\n" +
		"t1,u1,\"Walk, 10 min\",pending,0,false,2026-01-01T00:00:00.000Z,2026-01-01T00:00:00.000Z,"
	if got != want {
		t.Errorf("CSV() =\n%q\nwant\n%q", got, want)
	}
}

// TestFilename uses the UTC date.
func TestFilename(t *testing.T) {
	now := time.Date(2026, 7, 1, 23, 30, 0, 0, time.FixedZone("W", -3*3600))
	if got := export.Filename("users", now); got != "users-2026-07-02.csv" {
		t.Errorf("Filename() = %s", got)
	}
}
