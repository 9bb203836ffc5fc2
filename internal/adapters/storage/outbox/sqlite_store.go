package outbox

import (
	"context"
	"time"

	"moodadmin/internal/adapters/storage"
	domain "moodadmin/internal/domain/outbox"
)

const dateLayout = "2006-01-02T15:04:05.000000000Z"

const selectColumns = `SELECT id, kind, payload, status, attempts, max_attempts, last_attempted_at, created_at, last_error FROM outbox`

// Store persists outbox entries.
type Store interface {
	// Save inserts or replaces an entry.
	// PRE: e.Validate() == nil
	Save(ctx context.Context, e domain.Entry) error

	// ListPending returns pending and retrying entries, oldest first.
	// PRE: limit > 0
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)

	// CountByStatus returns how many entries are in each status.
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new outbox store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists an entry (insert or update).
func (s *SQLiteStore) Save(ctx context.Context, e domain.Entry) error {
	lastAttemptedAt := ""
	if !e.LastAttemptedAt.IsZero() {
		lastAttemptedAt = e.LastAttemptedAt.UTC().Format(dateLayout)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outbox (id, kind, payload, status, attempts, max_attempts, last_attempted_at, created_at, last_error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   status=excluded.status, attempts=excluded.attempts, max_attempts=excluded.max_attempts,
		   last_attempted_at=excluded.last_attempted_at, last_error=excluded.last_error`,
		e.ID, e.Kind, e.Payload, e.Status, e.Attempts, e.MaxAttempts,
		lastAttemptedAt, e.CreatedAt.UTC().Format(dateLayout), e.LastError)
	return err
}

// ListPending returns entries still waiting for delivery.
// POST: ordered by created_at ascending, at most limit
func (s *SQLiteStore) ListPending(ctx context.Context, limit int) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		selectColumns+` WHERE status IN (?, ?) ORDER BY created_at ASC LIMIT ?`,
		domain.StatusPending, domain.StatusRetrying, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		var e domain.Entry
		var createdAt, lastAttemptedAt string
		if err := rows.Scan(&e.ID, &e.Kind, &e.Payload, &e.Status, &e.Attempts, &e.MaxAttempts,
			&lastAttemptedAt, &createdAt, &e.LastError); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(dateLayout, createdAt)
		if lastAttemptedAt != "" {
			e.LastAttemptedAt, _ = time.Parse(dateLayout, lastAttemptedAt)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountByStatus groups entries by status.
func (s *SQLiteStore) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM outbox GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
