package docdb_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"moodadmin/internal/adapters/storage"
	"moodadmin/internal/adapters/storage/docdb"
	"moodadmin/internal/adapters/storage/records"
	"moodadmin/internal/domain/user"
)

func newTestStore(t *testing.T) *docdb.Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db, ":memory:"); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	return docdb.NewStore(db)
}

var base = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func insert(t *testing.T, s *docdb.Store, collection, id string, created time.Time, doc map[string]any) {
	t.Helper()
	if err := s.Insert(context.Background(), collection, id, created, doc); err != nil {
		t.Fatalf("Insert(%s/%s): %v", collection, id, err)
	}
}

// TestStore_ListUsers_Filters verifies role, verified, order and limit.
func TestStore_ListUsers_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insert(t, s, records.CollectionUsers, "u1", base, map[string]any{"role": "user", "createdAt": base})
	insert(t, s, records.CollectionUsers, "c1", base.Add(time.Hour), map[string]any{"role": "consultant", "verified": true, "createdAt": base.Add(time.Hour)})
	insert(t, s, records.CollectionUsers, "c2", base.Add(2*time.Hour), map[string]any{"role": "consultant", "verified": false, "createdAt": base.Add(2 * time.Hour)})

	all, err := s.ListUsers(ctx, records.UserFilter{})
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(all) != 3 || all[0].ID != "c2" || all[2].ID != "u1" {
		t.Errorf("ListUsers order = %v", ids(all))
	}

	verified := true
	got, _ := s.ListUsers(ctx, records.UserFilter{Role: "consultant", Verified: &verified})
	if len(got) != 1 || got[0].ID != "c1" || !got[0].Verified {
		t.Errorf("verified consultants = %+v", got)
	}

	unverified := false
	got, _ = s.ListUsers(ctx, records.UserFilter{Role: "consultant", Verified: &unverified})
	if len(got) != 1 || got[0].ID != "c2" {
		t.Errorf("pending consultants = %+v", got)
	}

	got, _ = s.ListUsers(ctx, records.UserFilter{Limit: 1})
	if len(got) != 1 {
		t.Errorf("limit 1 returned %d", len(got))
	}
}

// TestStore_UpdateUser patches fields and reports missing documents.
func TestStore_UpdateUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insert(t, s, records.CollectionUsers, "c1", base, map[string]any{"role": "consultant", "verified": true, "email": "c@x.io"})

	f, tr, reason := false, true, "Missing CV"
	if err := s.UpdateUser(ctx, "c1", records.UserPatch{Verified: &f, Rejected: &tr, RejectReason: &reason}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	u, err := s.GetUser(ctx, "c1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u.Verified || !u.Rejected || u.RejectReason != "Missing CV" || u.Email != "c@x.io" {
		t.Errorf("after reject = %+v", u)
	}

	// booleans must stay JSON booleans so the verified filter keeps working
	got, _ := s.ListUsers(ctx, records.UserFilter{Verified: &f})
	if len(got) != 1 {
		t.Errorf("verified=false filter after update returned %d users", len(got))
	}

	err = s.UpdateUser(ctx, "missing", records.UserPatch{Active: &f})
	if !errors.Is(err, records.ErrNotFound) {
		t.Errorf("UpdateUser(missing) = %v, want ErrNotFound", err)
	}
}

// TestStore_DeleteUser removes the document once.
func TestStore_DeleteUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insert(t, s, records.CollectionUsers, "u1", base, map[string]any{"role": "user"})

	if err := s.DeleteUser(ctx, "u1"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := s.GetUser(ctx, "u1"); !errors.Is(err, records.ErrNotFound) {
		t.Errorf("GetUser after delete = %v, want ErrNotFound", err)
	}
	if err := s.DeleteUser(ctx, "u1"); !errors.Is(err, records.ErrNotFound) {
		t.Errorf("second DeleteUser = %v, want ErrNotFound", err)
	}
}

// TestStore_ListUserPoints_TieBreak orders by points desc then user id.
func TestStore_ListUserPoints_TieBreak(t *testing.T) {
	s := newTestStore(t)
	insert(t, s, records.CollectionUserPoints, "p1", base, map[string]any{"userId": "zed", "totalPoints": 50})
	insert(t, s, records.CollectionUserPoints, "p2", base, map[string]any{"userId": "amy", "totalPoints": 50})
	insert(t, s, records.CollectionUserPoints, "p3", base, map[string]any{"userId": "bob", "totalPoints": 70})

	got, err := s.ListUserPoints(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListUserPoints: %v", err)
	}
	want := []string{"bob", "amy", "zed"}
	for i, p := range got {
		if p.UserID != want[i] {
			t.Errorf("position %d = %s, want %s", i+1, p.UserID, want[i])
		}
	}
}

// TestStore_ListDiaryEntries_Range applies the createdAt range and limit.
func TestStore_ListDiaryEntries_Range(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 5; i++ {
		at := base.Add(time.Duration(i) * 24 * time.Hour)
		insert(t, s, records.CollectionDiaryEntries, string(rune('a'+i)), at, map[string]any{"userId": "u1", "createdAt": at})
	}
	got, err := s.ListDiaryEntries(context.Background(), records.DiaryFilter{
		From: base.Add(24 * time.Hour),
		To:   base.Add(3 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("ListDiaryEntries: %v", err)
	}
	if len(got) != 3 || got[0].ID != "d" || got[2].ID != "b" {
		t.Errorf("range = %v", got)
	}

	got, _ = s.ListDiaryEntries(context.Background(), records.DiaryFilter{Limit: 2})
	if len(got) != 2 || got[0].ID != "e" {
		t.Errorf("limit = %v", got)
	}
}

// TestStore_ListTasks_Since keeps tasks created in the window.
func TestStore_ListTasks_Since(t *testing.T) {
	s := newTestStore(t)
	insert(t, s, records.CollectionTasks, "old", base.Add(-48*time.Hour), map[string]any{"status": "pending"})
	insert(t, s, records.CollectionTasks, "new", base, map[string]any{"status": "verified", "pointsAwarded": 10})

	got, err := s.ListTasks(context.Background(), records.TaskFilter{Since: base.Add(-24 * time.Hour)})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(got) != 1 || got[0].ID != "new" || got[0].PointsAwarded != 10 {
		t.Errorf("ListTasks = %+v", got)
	}
}

// TestStore_ListPointsTransactions_ByUser filters on userId.
func TestStore_ListPointsTransactions_ByUser(t *testing.T) {
	s := newTestStore(t)
	insert(t, s, records.CollectionPointsTransactions, "t1", base, map[string]any{"userId": "u1", "points": 5, "type": "earned"})
	insert(t, s, records.CollectionPointsTransactions, "t2", base, map[string]any{"userId": "u2", "points": 3, "type": "earned"})

	got, err := s.ListPointsTransactions(context.Background(), records.TransactionFilter{UserID: "u1"})
	if err != nil {
		t.Fatalf("ListPointsTransactions: %v", err)
	}
	if len(got) != 1 || got[0].Points != 5 {
		t.Errorf("transactions = %+v", got)
	}
}

func ids(users []user.User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.ID
	}
	return out
}
