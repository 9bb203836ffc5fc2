package projections

import (
	"context"
	"errors"
	"time"

	"moodadmin/internal/adapters/storage/records"
	"moodadmin/internal/domain/chat"
	"moodadmin/internal/domain/contact"
	"moodadmin/internal/domain/diary"
	"moodadmin/internal/domain/motivation"
	"moodadmin/internal/domain/points"
	"moodadmin/internal/domain/task"
	"moodadmin/internal/domain/user"
)

var errFetch = errors.New("store unavailable")

// fakeStore is an in-memory records.Store that applies filters the way the real backends do.
type fakeStore struct {
	users    []user.User
	entries  []diary.Entry
	chats    []chat.Chat
	tasks    []task.Task
	points   []points.UserPoints
	txs      []points.Transaction
	contacts []contact.EmergencyContact
	reels    []motivation.Reel

	failChats bool

	lastUserFilter  records.UserFilter
	lastDiaryFilter records.DiaryFilter
	lastTaskFilter  records.TaskFilter
}

var _ records.Store = (*fakeStore)(nil)

// ListUsers applies role and verified filters and the limit.
func (f *fakeStore) ListUsers(_ context.Context, filter records.UserFilter) ([]user.User, error) {
	f.lastUserFilter = filter
	out := []user.User{}
	for _, u := range f.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Verified != nil && u.Verified != *filter.Verified {
			continue
		}
		out = append(out, u)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// GetUser returns the seeded user or records.ErrNotFound.
func (f *fakeStore) GetUser(_ context.Context, id string) (user.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return user.User{}, records.ErrNotFound
}

// UpdateUser is unused by projections.
func (f *fakeStore) UpdateUser(context.Context, string, records.UserPatch) error { return nil }

// DeleteUser is unused by projections.
func (f *fakeStore) DeleteUser(context.Context, string) error { return nil }

// ListDiaryEntries applies the inclusive range and limit.
func (f *fakeStore) ListDiaryEntries(_ context.Context, filter records.DiaryFilter) ([]diary.Entry, error) {
	f.lastDiaryFilter = filter
	out := []diary.Entry{}
	for _, e := range f.entries {
		if !filter.From.IsZero() && e.CreatedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && e.CreatedAt.After(filter.To) {
			continue
		}
		out = append(out, e)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// ListChats returns the seeded chats or errFetch.
func (f *fakeStore) ListChats(context.Context) ([]chat.Chat, error) {
	if f.failChats {
		return nil, errFetch
	}
	return f.chats, nil
}

// ListTasks applies the createdAt lower bound.
func (f *fakeStore) ListTasks(_ context.Context, filter records.TaskFilter) ([]task.Task, error) {
	f.lastTaskFilter = filter
	out := []task.Task{}
	for _, t := range f.tasks {
		if !filter.Since.IsZero() && t.CreatedAt.Before(filter.Since) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// ListUserPoints returns the seeded rows in seeded order.
func (f *fakeStore) ListUserPoints(context.Context, int) ([]points.UserPoints, error) {
	return f.points, nil
}

// ListPointsTransactions filters by user.
func (f *fakeStore) ListPointsTransactions(_ context.Context, filter records.TransactionFilter) ([]points.Transaction, error) {
	out := []points.Transaction{}
	for _, tx := range f.txs {
		if filter.UserID == "" || tx.UserID == filter.UserID {
			out = append(out, tx)
		}
	}
	return out, nil
}

// ListEmergencyContacts returns the seeded contacts.
func (f *fakeStore) ListEmergencyContacts(context.Context) ([]contact.EmergencyContact, error) {
	return f.contacts, nil
}

// ListMotivationReels returns the seeded reels.
func (f *fakeStore) ListMotivationReels(context.Context) ([]motivation.Reel, error) {
	return f.reels, nil
}

// Ping always succeeds.
func (f *fakeStore) Ping(context.Context) error { return nil }

// Close always succeeds.
func (f *fakeStore) Close() error { return nil }

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func hoursAgo(h int) time.Time {
	return testNow.Add(-time.Duration(h) * time.Hour)
}
