package orchestrators

import (
	"context"
	"errors"
	"sync"
	"time"

	"moodadmin/internal/adapters/email"
	"moodadmin/internal/adapters/storage/records"
	"moodadmin/internal/domain/audit"
	"moodadmin/internal/domain/outbox"
	"moodadmin/internal/domain/user"
)

var fixedTime = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

var errBoom = errors.New("boom")

// mockUserStore implements UserStoreForMutation for testing.
type mockUserStore struct {
	users   map[string]user.User
	patches []records.UserPatch
	failOn  string
}

func newMockUserStore(users ...user.User) *mockUserStore {
	m := &mockUserStore{users: make(map[string]user.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserStore) ListUsers(_ context.Context, _ records.UserFilter) ([]user.User, error) {
	out := make([]user.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserStore) GetUser(_ context.Context, id string) (user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return user.User{}, records.ErrNotFound
	}
	return u, nil
}

func (m *mockUserStore) UpdateUser(_ context.Context, id string, patch records.UserPatch) error {
	if m.failOn == "update" {
		return errBoom
	}
	u, ok := m.users[id]
	if !ok {
		return records.ErrNotFound
	}
	if patch.Verified != nil {
		u.Verified = *patch.Verified
	}
	if patch.Rejected != nil {
		u.Rejected = *patch.Rejected
	}
	if patch.RejectReason != nil {
		u.RejectReason = *patch.RejectReason
	}
	if patch.Active != nil {
		u.Active = *patch.Active
	}
	m.users[id] = u
	m.patches = append(m.patches, patch)
	return nil
}

func (m *mockUserStore) DeleteUser(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return records.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// recordingAudit implements AuditRecorder and keeps every saved event.
type recordingAudit struct {
	mu     sync.Mutex
	events []audit.Event
	fail   bool
}

func (r *recordingAudit) Save(_ context.Context, e audit.Event) error {
	if r.fail {
		return errBoom
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingAudit) last() audit.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return audit.Event{}
	}
	return r.events[len(r.events)-1]
}

// failingSender implements email.Sender and always errors.
type failingSender struct{ calls int }

func (f *failingSender) Send(_ context.Context, _ email.SendRequest) (email.SendResult, error) {
	f.calls++
	return email.SendResult{}, errBoom
}

// memoryOutbox implements the outbox store in memory, in insertion order.
type memoryOutbox struct {
	mu      sync.Mutex
	order   []string
	entries map[string]outbox.Entry
}

func newMemoryOutbox() *memoryOutbox {
	return &memoryOutbox{entries: make(map[string]outbox.Entry)}
}

func (m *memoryOutbox) Save(_ context.Context, e outbox.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[e.ID]; !ok {
		m.order = append(m.order, e.ID)
	}
	m.entries[e.ID] = e
	return nil
}

func (m *memoryOutbox) ListPending(_ context.Context, limit int) ([]outbox.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []outbox.Entry
	for _, id := range m.order {
		e := m.entries[id]
		if e.Status == outbox.StatusPending || e.Status == outbox.StatusRetrying {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memoryOutbox) CountByStatus(_ context.Context) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int)
	for _, e := range m.entries {
		counts[e.Status]++
	}
	return counts, nil
}

func (m *memoryOutbox) all() []outbox.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]outbox.Entry, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.entries[id])
	}
	return out
}
