package projections

import (
	"context"
	"testing"
	"time"

	"moodadmin/internal/adapters/http/perf"
	auditStore "moodadmin/internal/adapters/storage/audit"
	"moodadmin/internal/domain/audit"
)

type recordingAuditStore struct {
	filter auditStore.Filter
	limit  int
}

// Save is unused by projections.
func (s *recordingAuditStore) Save(context.Context, audit.Event) error { return nil }

// List records its arguments.
func (s *recordingAuditStore) List(_ context.Context, filter auditStore.Filter, limit int) ([]audit.Event, error) {
	s.filter, s.limit = filter, limit
	return nil, nil
}

func (s *recordingAuditStore) CountSince(context.Context, audit.Action, time.Time) (int, error) {
	return 0, nil
}

// TestQueryGetAuditLog maps the query onto the store filter.
func TestQueryGetAuditLog(t *testing.T) {
	store := &recordingAuditStore{}
	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.FixedZone("X", 3600))
	got, err := QueryGetAuditLog(context.Background(), GetAuditLogQuery{
		Category: "user", Action: "delete", ActorEmail: "admin@example.com", From: from, Limit: 5000,
	}, GetAuditLogDeps{Audit: store})
	if err != nil {
		t.Fatalf("QueryGetAuditLog() error = %v", err)
	}
	if store.limit != MaxAuditLimit || got.Limit != MaxAuditLimit {
		t.Errorf("limit = %d, want %d", store.limit, MaxAuditLimit)
	}
	if store.filter.Category == nil || *store.filter.Category != audit.CategoryUser {
		t.Errorf("category = %v", store.filter.Category)
	}
	if store.filter.Action == nil || *store.filter.Action != audit.ActionDelete {
		t.Errorf("action = %v", store.filter.Action)
	}
	if store.filter.From == nil || *store.filter.From != "2026-04-30T23:00:00.000000000Z" {
		t.Errorf("from = %v", store.filter.From)
	}
	if store.filter.To != nil || store.filter.ResourceID != nil {
		t.Error("unset fields should stay nil")
	}
	if got.Events == nil {
		t.Error("Events is nil, want empty slice")
	}

	_, _ = QueryGetAuditLog(context.Background(), GetAuditLogQuery{}, GetAuditLogDeps{Audit: store})
	if store.limit != DefaultAuditLimit {
		t.Errorf("default limit = %d, want %d", store.limit, DefaultAuditLimit)
	}
}

// TestQueryGetPerformance snapshots the requested window.
func TestQueryGetPerformance(t *testing.T) {
	c := perf.NewCollector(16)
	c.Record(perf.Entry{Kind: perf.KindRequest, Path: "/admin", StatusCode: 200, DurationMs: 12, Timestamp: testNow.Add(-10 * time.Minute)})
	c.Record(perf.Entry{Kind: perf.KindRequest, Path: "/admin", StatusCode: 200, DurationMs: 30, Timestamp: testNow.Add(-2 * time.Hour)})

	got, err := QueryGetPerformance("", c, testNow)
	if err != nil {
		t.Fatalf("QueryGetPerformance() error = %v", err)
	}
	if got.Window != DefaultPerformanceWindow || got.Snapshot.Requests != 1 || got.TotalRecorded != 2 {
		t.Errorf("got window %s, %d requests, %d recorded", got.Window, got.Snapshot.Requests, got.TotalRecorded)
	}
	got, err = QueryGetPerformance("24h", c, testNow)
	if err != nil || got.Snapshot.Requests != 2 {
		t.Errorf("24h: %d requests, err %v", got.Snapshot.Requests, err)
	}
	if _, err := QueryGetPerformance("1y", c, testNow); err == nil {
		t.Error("expected error for unknown window")
	}
}
