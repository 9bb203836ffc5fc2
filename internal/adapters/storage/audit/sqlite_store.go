package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"moodadmin/internal/adapters/storage"
	domain "moodadmin/internal/domain/audit"
)

// DateLayout is fixed-width UTC so stored timestamps sort lexically.
const DateLayout = "2006-01-02T15:04:05.000000000Z"

const eventColumns = `id, timestamp, category, action, severity, actor_email, resource_id, resource_type, description, ip_address, user_agent, metadata`

// SQLiteStore keeps the audit trail in the local SQLite file.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore wraps db, which must already be migrated.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save appends one event.
// PRE: event has an ID and timestamp
func (s *SQLiteStore) Save(ctx context.Context, e domain.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_event (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Timestamp.UTC().Format(DateLayout), string(e.Category), string(e.Action),
		string(e.Severity), e.ActorEmail, e.ResourceID, e.ResourceType,
		e.Description, e.IPAddress, e.UserAgent, e.Metadata)
	if err != nil {
		return fmt.Errorf("insert audit event %s: %w", e.ID, err)
	}
	return nil
}

// List returns matching events, newest first. Equal timestamps order by id.
// PRE: limit > 0
func (s *SQLiteStore) List(ctx context.Context, f Filter, limit int) ([]domain.Event, error) {
	var where []string
	var args []any
	add := func(clause string, v any) {
		where = append(where, clause)
		args = append(args, v)
	}
	if f.Category != nil {
		add("category = ?", string(*f.Category))
	}
	if f.Action != nil {
		add("action = ?", string(*f.Action))
	}
	if f.ActorEmail != nil {
		add("actor_email = ?", *f.ActorEmail)
	}
	if f.ResourceID != nil {
		add("resource_id = ?", *f.ResourceID)
	}
	if f.From != nil {
		add("timestamp >= ?", *f.From)
	}
	if f.To != nil {
		add("timestamp <= ?", *f.To)
	}

	query := `SELECT ` + eventColumns + ` FROM audit_event`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY timestamp DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountSince counts events of one action at or after since.
func (s *SQLiteStore) CountSince(ctx context.Context, action domain.Action, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_event WHERE action = ? AND timestamp >= ?`,
		string(action), since.UTC().Format(DateLayout)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count audit events: %w", err)
	}
	return n, nil
}

func scanEvent(rows *sql.Rows) (domain.Event, error) {
	var e domain.Event
	var ts string
	err := rows.Scan(&e.ID, &ts, &e.Category, &e.Action, &e.Severity, &e.ActorEmail,
		&e.ResourceID, &e.ResourceType, &e.Description, &e.IPAddress, &e.UserAgent, &e.Metadata)
	if err != nil {
		return domain.Event{}, fmt.Errorf("scan audit event: %w", err)
	}
	e.Timestamp, _ = time.Parse(DateLayout, ts)
	return e, nil
}
