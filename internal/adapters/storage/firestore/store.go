package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"moodadmin/internal/adapters/storage/records"
	"moodadmin/internal/domain/chat"
	"moodadmin/internal/domain/contact"
	"moodadmin/internal/domain/diary"
	"moodadmin/internal/domain/motivation"
	"moodadmin/internal/domain/points"
	"moodadmin/internal/domain/task"
	"moodadmin/internal/domain/user"
)

// Store reads and mutates the app's Cloud Firestore collections.
type Store struct {
	client *firestore.Client
}

// Ensure Store implements records.Store.
var _ records.Store = (*Store)(nil)

// NewStore creates a Firestore store for projectID.
// PRE: projectID is non-empty; credentials come from the environment (ADC)
// POST: returns a connected client or an error
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	return &Store{client: client}, nil
}

// Close releases the client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Ping performs a cheap read to check connectivity.
func (s *Store) Ping(ctx context.Context) error {
	iter := s.client.Collection(records.CollectionUsers).Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && err != iterator.Done {
		return fmt.Errorf("firestore ping: %w", err)
	}
	return nil
}

// each runs q and calls fn for every document snapshot.
func each(ctx context.Context, op string, q firestore.Query, fn func(id string, d records.Doc)) error {
	iter := q.Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				return nil
			}
			return fmt.Errorf("firestore %s: %w", op, err)
		}
		fn(snap.Ref.ID, records.Doc(snap.Data()))
	}
}

func withLimit(q firestore.Query, limit int) firestore.Query {
	if limit > 0 {
		return q.Limit(limit)
	}
	return q
}

// ListUsers returns users ordered by createdAt desc.
func (s *Store) ListUsers(ctx context.Context, filter records.UserFilter) ([]user.User, error) {
	q := s.client.Collection(records.CollectionUsers).Query
	if filter.Role != "" {
		q = q.Where("role", "==", filter.Role)
	}
	if filter.Verified != nil {
		q = q.Where("verified", "==", *filter.Verified)
	}
	q = withLimit(q.OrderBy("createdAt", firestore.Desc), filter.Limit)

	out := []user.User{}
	err := each(ctx, "ListUsers", q, func(id string, d records.Doc) {
		out = append(out, records.DecodeUser(id, d))
	})
	return out, err
}

// GetUser returns one user or records.ErrNotFound.
func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	snap, err := s.client.Collection(records.CollectionUsers).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return user.User{}, records.ErrNotFound
		}
		return user.User{}, fmt.Errorf("firestore GetUser: %w", err)
	}
	return records.DecodeUser(snap.Ref.ID, records.Doc(snap.Data())), nil
}

// UpdateUser writes the patch fields. Firestore's Update fails with NotFound for missing docs.
func (s *Store) UpdateUser(ctx context.Context, id string, patch records.UserPatch) error {
	fields := patch.Fields()
	updates := make([]firestore.Update, 0, len(fields))
	for _, f := range fields {
		updates = append(updates, firestore.Update{Path: f.Path, Value: f.Value})
	}
	_, err := s.client.Collection(records.CollectionUsers).Doc(id).Update(ctx, updates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return records.ErrNotFound
		}
		return fmt.Errorf("firestore UpdateUser: %w", err)
	}
	return nil
}

// DeleteUser removes the document, requiring that it exists.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	_, err := s.client.Collection(records.CollectionUsers).Doc(id).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return records.ErrNotFound
		}
		return fmt.Errorf("firestore DeleteUser: %w", err)
	}
	return nil
}

// ListDiaryEntries returns entry summaries ordered by createdAt desc.
func (s *Store) ListDiaryEntries(ctx context.Context, filter records.DiaryFilter) ([]diary.Entry, error) {
	q := s.client.Collection(records.CollectionDiaryEntries).Query
	if !filter.From.IsZero() {
		q = q.Where("createdAt", ">=", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("createdAt", "<=", filter.To)
	}
	q = withLimit(q.OrderBy("createdAt", firestore.Desc), filter.Limit)

	out := []diary.Entry{}
	err := each(ctx, "ListDiaryEntries", q, func(id string, d records.Doc) {
		out = append(out, records.DecodeDiaryEntry(id, d))
	})
	return out, err
}

// ListChats returns all chat metadata ordered by createdAt desc.
func (s *Store) ListChats(ctx context.Context) ([]chat.Chat, error) {
	q := s.client.Collection(records.CollectionChats).OrderBy("createdAt", firestore.Desc)
	out := []chat.Chat{}
	err := each(ctx, "ListChats", q, func(id string, d records.Doc) {
		out = append(out, records.DecodeChat(id, d))
	})
	return out, err
}

// ListTasks returns tasks created since filter.Since, newest first.
func (s *Store) ListTasks(ctx context.Context, filter records.TaskFilter) ([]task.Task, error) {
	q := s.client.Collection(records.CollectionTasks).Query
	if !filter.Since.IsZero() {
		q = q.Where("createdAt", ">=", filter.Since)
	}
	q = withLimit(q.OrderBy("createdAt", firestore.Desc), filter.Limit)

	out := []task.Task{}
	err := each(ctx, "ListTasks", q, func(id string, d records.Doc) {
		out = append(out, records.DecodeTask(id, d))
	})
	return out, err
}

// ListUserPoints returns points ordered by totalPoints desc, userId asc.
func (s *Store) ListUserPoints(ctx context.Context, limit int) ([]points.UserPoints, error) {
	q := s.client.Collection(records.CollectionUserPoints).
		OrderBy("totalPoints", firestore.Desc).
		OrderBy("userId", firestore.Asc)
	q = withLimit(q, limit)

	out := []points.UserPoints{}
	err := each(ctx, "ListUserPoints", q, func(id string, d records.Doc) {
		out = append(out, records.DecodeUserPoints(id, d))
	})
	return out, err
}

// ListPointsTransactions returns transactions newest first.
func (s *Store) ListPointsTransactions(ctx context.Context, filter records.TransactionFilter) ([]points.Transaction, error) {
	q := s.client.Collection(records.CollectionPointsTransactions).Query
	if filter.UserID != "" {
		q = q.Where("userId", "==", filter.UserID)
	}
	q = withLimit(q.OrderBy("createdAt", firestore.Desc), filter.Limit)

	out := []points.Transaction{}
	err := each(ctx, "ListPointsTransactions", q, func(id string, d records.Doc) {
		out = append(out, records.DecodeTransaction(id, d))
	})
	return out, err
}

// ListEmergencyContacts returns contacts newest first.
func (s *Store) ListEmergencyContacts(ctx context.Context) ([]contact.EmergencyContact, error) {
	q := s.client.Collection(records.CollectionEmergencyContacts).OrderBy("createdAt", firestore.Desc)
	out := []contact.EmergencyContact{}
	err := each(ctx, "ListEmergencyContacts", q, func(id string, d records.Doc) {
		out = append(out, records.DecodeEmergencyContact(id, d))
	})
	return out, err
}

// ListMotivationReels returns reels newest first.
func (s *Store) ListMotivationReels(ctx context.Context) ([]motivation.Reel, error) {
	q := s.client.Collection(records.CollectionMotivationReels).OrderBy("createdAt", firestore.Desc)
	out := []motivation.Reel{}
	err := each(ctx, "ListMotivationReels", q, func(id string, d records.Doc) {
		out = append(out, records.DecodeMotivationReel(id, d))
	})
	return out, err
}
