package records

import (
	"context"
	"errors"
	"time"

	"moodadmin/internal/domain/chat"
	"moodadmin/internal/domain/contact"
	"moodadmin/internal/domain/diary"
	"moodadmin/internal/domain/motivation"
	"moodadmin/internal/domain/points"
	"moodadmin/internal/domain/task"
	"moodadmin/internal/domain/user"
)

// Collection names in the document store.
const (
	CollectionUsers              = "users"
	CollectionDiaryEntries       = "diary_entries"
	CollectionChats              = "chats"
	CollectionTasks              = "tasks"
	CollectionUserPoints         = "userPoints"
	CollectionPointsTransactions = "pointsTransactions"
	CollectionEmergencyContacts  = "emergency_contacts"
	CollectionMotivationReels    = "motivation_reels"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("record not found")

// UserFilter narrows the users query. Results are ordered by createdAt desc.
type UserFilter struct {
	Role     string
	Verified *bool
	Limit    int
}

// DiaryFilter narrows the diary query. Zero times are unbounded; results are ordered by createdAt desc.
type DiaryFilter struct {
	From  time.Time
	To    time.Time
	Limit int
}

// TaskFilter narrows the task query to createdAt >= Since. Results are ordered by createdAt desc.
type TaskFilter struct {
	Since time.Time
	Limit int
}

// TransactionFilter narrows the points transaction query. Empty UserID returns all users.
type TransactionFilter struct {
	UserID string
	Limit  int
}

// UserPatch lists the user fields a mutation writes. Nil fields are left untouched.
type UserPatch struct {
	Verified     *bool
	Rejected     *bool
	RejectReason *string
	Active       *bool
}

// Field is a single document path and its new value.
type Field struct {
	Path  string
	Value any
}

// Fields returns the non-nil patch entries as document fields in a fixed order.
func (p UserPatch) Fields() []Field {
	var out []Field
	if p.Verified != nil {
		out = append(out, Field{"verified", *p.Verified})
	}
	if p.Rejected != nil {
		out = append(out, Field{"rejected", *p.Rejected})
	}
	if p.RejectReason != nil {
		out = append(out, Field{"rejectReason", *p.RejectReason})
	}
	if p.Active != nil {
		out = append(out, Field{"active", *p.Active})
	}
	return out
}

// UserReader reads user documents.
type UserReader interface {
	// ListUsers returns users matching the filter.
	// PRE: filter.Limit >= 0 (0 means unlimited)
	// POST: ordered by createdAt desc
	ListUsers(ctx context.Context, filter UserFilter) ([]user.User, error)

	// GetUser returns one user or ErrNotFound.
	GetUser(ctx context.Context, id string) (user.User, error)
}

// UserWriter mutates user documents.
type UserWriter interface {
	// UpdateUser writes the patch fields to one document.
	// PRE: id is non-empty, patch has at least one field
	// POST: returns ErrNotFound when the document does not exist
	UpdateUser(ctx context.Context, id string, patch UserPatch) error

	// DeleteUser removes the document.
	// POST: returns ErrNotFound when the document does not exist
	DeleteUser(ctx context.Context, id string) error
}

// DiaryReader reads diary entry summaries.
type DiaryReader interface {
	ListDiaryEntries(ctx context.Context, filter DiaryFilter) ([]diary.Entry, error)
}

// ChatReader reads chat metadata.
type ChatReader interface {
	ListChats(ctx context.Context) ([]chat.Chat, error)
}

// TaskReader reads tasks.
type TaskReader interface {
	ListTasks(ctx context.Context, filter TaskFilter) ([]task.Task, error)
}

// PointsReader reads the points collections.
type PointsReader interface {
	// ListUserPoints returns points documents.
	// POST: ordered by totalPoints desc, then userId asc
	ListUserPoints(ctx context.Context, limit int) ([]points.UserPoints, error)

	// ListPointsTransactions returns transactions ordered by createdAt desc.
	ListPointsTransactions(ctx context.Context, filter TransactionFilter) ([]points.Transaction, error)
}

// ContactReader reads emergency contacts.
type ContactReader interface {
	ListEmergencyContacts(ctx context.Context) ([]contact.EmergencyContact, error)
}

// MotivationReader reads motivation reels.
type MotivationReader interface {
	ListMotivationReels(ctx context.Context) ([]motivation.Reel, error)
}

// Store is the full record store client.
type Store interface {
	UserReader
	UserWriter
	DiaryReader
	ChatReader
	TaskReader
	PointsReader
	ContactReader
	MotivationReader

	// Ping checks the connection to the backend.
	Ping(ctx context.Context) error
	Close() error
}
