package docdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"moodadmin/internal/adapters/storage"
	"moodadmin/internal/adapters/storage/records"
	"moodadmin/internal/domain/chat"
	"moodadmin/internal/domain/contact"
	"moodadmin/internal/domain/diary"
	"moodadmin/internal/domain/motivation"
	"moodadmin/internal/domain/points"
	"moodadmin/internal/domain/task"
	"moodadmin/internal/domain/user"
)

// createdLayout is fixed-width so created_at compares lexically in time order.
const createdLayout = "2006-01-02T15:04:05.000000000Z"

// Store keeps the app's collections as JSON documents in the SQLite document table.
// It backs local development and tests.
type Store struct {
	db storage.SQLDB
}

// Ensure Store implements records.Store.
var _ records.Store = (*Store)(nil)

// NewStore creates a document store.
// PRE: db has been initialised with storage.InitDB
func NewStore(db storage.SQLDB) *Store {
	return &Store{db: db}
}

// Close is a no-op; the caller owns the database handle.
func (s *Store) Close() error {
	return nil
}

// Ping checks the document table is reachable.
func (s *Store) Ping(ctx context.Context) error {
	var n int
	return s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM document WHERE 0`).Scan(&n)
}

// Insert stores doc as JSON under (collection, id), replacing any existing document.
// PRE: doc marshals to a JSON object
// POST: created_at is indexed for range queries
func (s *Store) Insert(ctx context.Context, collection, id string, createdAt time.Time, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO document (collection, id, created_at, data) VALUES (?, ?, ?, ?)`,
		collection, id, createdAt.UTC().Format(createdLayout), string(data))
	if err != nil {
		return fmt.Errorf("insert %s/%s: %w", collection, id, err)
	}
	return nil
}

// Count returns the number of documents in collection.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM document WHERE collection = ?`, collection).Scan(&n)
	return n, err
}

// query is a small builder over the document table for one collection.
type query struct {
	collection string
	where      []string
	args       []any
	order      string
	limit      int
}

func newQuery(collection string) *query {
	return &query{collection: collection, order: "created_at DESC"}
}

func (q *query) field(path string, value any) *query {
	q.where = append(q.where, "json_extract(data, ?) = ?")
	q.args = append(q.args, "$."+path, value)
	return q
}

func (q *query) createdFrom(t time.Time) *query {
	q.where = append(q.where, "created_at >= ?")
	q.args = append(q.args, t.UTC().Format(createdLayout))
	return q
}

func (q *query) createdTo(t time.Time) *query {
	q.where = append(q.where, "created_at <= ?")
	q.args = append(q.args, t.UTC().Format(createdLayout))
	return q
}

func (q *query) build() (string, []any) {
	var b strings.Builder
	b.WriteString(`SELECT id, data FROM document WHERE collection = ?`)
	args := append([]any{q.collection}, q.args...)
	for _, w := range q.where {
		b.WriteString(" AND ")
		b.WriteString(w)
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(q.order)
	b.WriteString(", id ASC")
	if q.limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, q.limit)
	}
	return b.String(), args
}

func (s *Store) each(ctx context.Context, op string, q *query, fn func(id string, d records.Doc)) error {
	sqlText, args := q.build()
	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return fmt.Errorf("docdb %s: %w", op, err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return fmt.Errorf("docdb %s scan: %w", op, err)
		}
		fn(id, decode(data))
	}
	return rows.Err()
}

// decode parses stored JSON; a corrupt document decodes as empty and is default-filled.
func decode(data string) records.Doc {
	var m map[string]any
	if err := json.Unmarshal([]byte(data), &m); err != nil || m == nil {
		return records.Doc{}
	}
	return records.Doc(m)
}

func boolArg(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ListUsers returns users ordered by createdAt desc.
func (s *Store) ListUsers(ctx context.Context, filter records.UserFilter) ([]user.User, error) {
	q := newQuery(records.CollectionUsers)
	if filter.Role != "" {
		q.field("role", filter.Role)
	}
	if filter.Verified != nil {
		q.field("verified", boolArg(*filter.Verified))
	}
	q.limit = filter.Limit

	out := []user.User{}
	err := s.each(ctx, "ListUsers", q, func(id string, d records.Doc) {
		out = append(out, records.DecodeUser(id, d))
	})
	return out, err
}

// GetUser returns one user or records.ErrNotFound.
func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM document WHERE collection = ? AND id = ?`, records.CollectionUsers, id).Scan(&data)
	if err == sql.ErrNoRows {
		return user.User{}, records.ErrNotFound
	}
	if err != nil {
		return user.User{}, fmt.Errorf("docdb GetUser: %w", err)
	}
	return records.DecodeUser(id, decode(data)), nil
}

// UpdateUser merges the patch fields into the stored JSON with json_set.
func (s *Store) UpdateUser(ctx context.Context, id string, patch records.UserPatch) error {
	fields := patch.Fields()
	if len(fields) == 0 {
		return nil
	}
	expr := "data"
	args := make([]any, 0, len(fields)*2+2)
	for _, f := range fields {
		v, err := json.Marshal(f.Value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", f.Path, err)
		}
		expr = "json_set(" + expr + ", ?, json(?))"
		args = append(args, "$."+f.Path, string(v))
	}
	args = append(args, records.CollectionUsers, id)

	res, err := s.db.ExecContext(ctx,
		`UPDATE document SET data = `+expr+` WHERE collection = ? AND id = ?`, args...)
	if err != nil {
		return fmt.Errorf("docdb UpdateUser: %w", err)
	}
	return affected(res)
}

// DeleteUser removes the document.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM document WHERE collection = ? AND id = ?`, records.CollectionUsers, id)
	if err != nil {
		return fmt.Errorf("docdb DeleteUser: %w", err)
	}
	return affected(res)
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return records.ErrNotFound
	}
	return nil
}

// ListDiaryEntries returns entry summaries ordered by createdAt desc.
func (s *Store) ListDiaryEntries(ctx context.Context, filter records.DiaryFilter) ([]diary.Entry, error) {
	q := newQuery(records.CollectionDiaryEntries)
	if !filter.From.IsZero() {
		q.createdFrom(filter.From)
	}
	if !filter.To.IsZero() {
		q.createdTo(filter.To)
	}
	q.limit = filter.Limit

	out := []diary.Entry{}
	err := s.each(ctx, "ListDiaryEntries", q, func(id string, d records.Doc) {
		out = append(out, records.DecodeDiaryEntry(id, d))
	})
	return out, err
}

// ListChats returns all chat metadata ordered by createdAt desc.
func (s *Store) ListChats(ctx context.Context) ([]chat.Chat, error) {
	out := []chat.Chat{}
	err := s.each(ctx, "ListChats", newQuery(records.CollectionChats), func(id string, d records.Doc) {
		out = append(out, records.DecodeChat(id, d))
	})
	return out, err
}

// ListTasks returns tasks created since filter.Since, newest first.
func (s *Store) ListTasks(ctx context.Context, filter records.TaskFilter) ([]task.Task, error) {
	q := newQuery(records.CollectionTasks)
	if !filter.Since.IsZero() {
		q.createdFrom(filter.Since)
	}
	q.limit = filter.Limit

	out := []task.Task{}
	err := s.each(ctx, "ListTasks", q, func(id string, d records.Doc) {
		out = append(out, records.DecodeTask(id, d))
	})
	return out, err
}

// ListUserPoints returns points ordered by totalPoints desc, userId asc.
func (s *Store) ListUserPoints(ctx context.Context, limit int) ([]points.UserPoints, error) {
	q := newQuery(records.CollectionUserPoints)
	q.order = "json_extract(data, '$.totalPoints') DESC, json_extract(data, '$.userId') ASC"
	q.limit = limit

	out := []points.UserPoints{}
	err := s.each(ctx, "ListUserPoints", q, func(id string, d records.Doc) {
		out = append(out, records.DecodeUserPoints(id, d))
	})
	return out, err
}

// ListPointsTransactions returns transactions newest first.
func (s *Store) ListPointsTransactions(ctx context.Context, filter records.TransactionFilter) ([]points.Transaction, error) {
	q := newQuery(records.CollectionPointsTransactions)
	if filter.UserID != "" {
		q.field("userId", filter.UserID)
	}
	q.limit = filter.Limit

	out := []points.Transaction{}
	err := s.each(ctx, "ListPointsTransactions", q, func(id string, d records.Doc) {
		out = append(out, records.DecodeTransaction(id, d))
	})
	return out, err
}

// ListEmergencyContacts returns contacts newest first.
func (s *Store) ListEmergencyContacts(ctx context.Context) ([]contact.EmergencyContact, error) {
	out := []contact.EmergencyContact{}
	err := s.each(ctx, "ListEmergencyContacts", newQuery(records.CollectionEmergencyContacts), func(id string, d records.Doc) {
		out = append(out, records.DecodeEmergencyContact(id, d))
	})
	return out, err
}

// ListMotivationReels returns reels newest first.
func (s *Store) ListMotivationReels(ctx context.Context) ([]motivation.Reel, error) {
	out := []motivation.Reel{}
	err := s.each(ctx, "ListMotivationReels", newQuery(records.CollectionMotivationReels), func(id string, d records.Doc) {
		out = append(out, records.DecodeMotivationReel(id, d))
	})
	return out, err
}
