package records

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"moodadmin/internal/adapters/http/perf"
	"moodadmin/internal/domain/chat"
	"moodadmin/internal/domain/contact"
	"moodadmin/internal/domain/diary"
	"moodadmin/internal/domain/motivation"
	"moodadmin/internal/domain/points"
	"moodadmin/internal/domain/task"
	"moodadmin/internal/domain/user"
)

// Instrumented times every call on the wrapped Store and records it to a collector.
type Instrumented struct {
	next      Store
	collector *perf.Collector
	backend   string
}

// Ensure Instrumented implements Store.
var _ Store = (*Instrumented)(nil)

// Instrument wraps next. backend names the store in log events ("firestore", "mongo", "docdb").
func Instrument(next Store, collector *perf.Collector, backend string) *Instrumented {
	return &Instrumented{next: next, collector: collector, backend: backend}
}

func (s *Instrumented) observe(op string, start time.Time, err error) {
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	failed := err != nil && !errors.Is(err, ErrNotFound)
	if failed {
		slog.Error("store_call_failed", "backend", s.backend, "op", op, "error", err, "duration_ms", durationMs)
	} else {
		slog.Debug("store_call", "backend", s.backend, "op", op, "duration_ms", durationMs)
	}
	if s.collector != nil {
		s.collector.Record(perf.Entry{
			Kind:       perf.KindStore,
			Path:       op,
			Failed:     failed,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
}

func (s *Instrumented) ListUsers(ctx context.Context, filter UserFilter) ([]user.User, error) {
	start := time.Now()
	out, err := s.next.ListUsers(ctx, filter)
	s.observe("ListUsers", start, err)
	return out, err
}

func (s *Instrumented) GetUser(ctx context.Context, id string) (user.User, error) {
	start := time.Now()
	out, err := s.next.GetUser(ctx, id)
	s.observe("GetUser", start, err)
	return out, err
}

func (s *Instrumented) UpdateUser(ctx context.Context, id string, patch UserPatch) error {
	start := time.Now()
	err := s.next.UpdateUser(ctx, id, patch)
	s.observe("UpdateUser", start, err)
	return err
}

func (s *Instrumented) DeleteUser(ctx context.Context, id string) error {
	start := time.Now()
	err := s.next.DeleteUser(ctx, id)
	s.observe("DeleteUser", start, err)
	return err
}

func (s *Instrumented) ListDiaryEntries(ctx context.Context, filter DiaryFilter) ([]diary.Entry, error) {
	start := time.Now()
	out, err := s.next.ListDiaryEntries(ctx, filter)
	s.observe("ListDiaryEntries", start, err)
	return out, err
}

func (s *Instrumented) ListChats(ctx context.Context) ([]chat.Chat, error) {
	start := time.Now()
	out, err := s.next.ListChats(ctx)
	s.observe("ListChats", start, err)
	return out, err
}

func (s *Instrumented) ListTasks(ctx context.Context, filter TaskFilter) ([]task.Task, error) {
	start := time.Now()
	out, err := s.next.ListTasks(ctx, filter)
	s.observe("ListTasks", start, err)
	return out, err
}

func (s *Instrumented) ListUserPoints(ctx context.Context, limit int) ([]points.UserPoints, error) {
	start := time.Now()
	out, err := s.next.ListUserPoints(ctx, limit)
	s.observe("ListUserPoints", start, err)
	return out, err
}

func (s *Instrumented) ListPointsTransactions(ctx context.Context, filter TransactionFilter) ([]points.Transaction, error) {
	start := time.Now()
	out, err := s.next.ListPointsTransactions(ctx, filter)
	s.observe("ListPointsTransactions", start, err)
	return out, err
}

func (s *Instrumented) ListEmergencyContacts(ctx context.Context) ([]contact.EmergencyContact, error) {
	start := time.Now()
	out, err := s.next.ListEmergencyContacts(ctx)
	s.observe("ListEmergencyContacts", start, err)
	return out, err
}

func (s *Instrumented) ListMotivationReels(ctx context.Context) ([]motivation.Reel, error) {
	start := time.Now()
	out, err := s.next.ListMotivationReels(ctx)
	s.observe("ListMotivationReels", start, err)
	return out, err
}

func (s *Instrumented) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

func (s *Instrumented) Close() error {
	return s.next.Close()
}
