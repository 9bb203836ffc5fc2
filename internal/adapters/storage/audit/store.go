package audit

import (
	"context"
	"time"

	domain "moodadmin/internal/domain/audit"
)

// Store persists the admin audit trail. Events are append-only.
type Store interface {
	// PRE: event has an ID and timestamp
	Save(ctx context.Context, event domain.Event) error

	// List returns matching events, newest first.
	// PRE: limit > 0
	List(ctx context.Context, filter Filter, limit int) ([]domain.Event, error)

	// CountSince counts events of one action at or after since.
	CountSince(ctx context.Context, action domain.Action, since time.Time) (int, error)
}

// Filter narrows List. Nil fields match everything.
type Filter struct {
	Category   *domain.Category
	Action     *domain.Action
	ActorEmail *string
	ResourceID *string
	From       *string // inclusive, same layout as stored timestamps
	To         *string
}

var _ Store = (*SQLiteStore)(nil)
