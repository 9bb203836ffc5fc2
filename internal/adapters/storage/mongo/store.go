package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"moodadmin/internal/adapters/storage/records"
	"moodadmin/internal/domain/chat"
	"moodadmin/internal/domain/contact"
	"moodadmin/internal/domain/diary"
	"moodadmin/internal/domain/motivation"
	"moodadmin/internal/domain/points"
	"moodadmin/internal/domain/task"
	"moodadmin/internal/domain/user"
)

// connectTimeout bounds the initial connect and ping.
const connectTimeout = 30 * time.Second

// Store reads and mutates the app's collections in a MongoDB database.
// Document identifiers live in the string _id field.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Ensure Store implements records.Store.
var _ records.Store = (*Store)(nil)

// NewStore connects to uri and opens database.
// PRE: uri and database are non-empty
// POST: the server answered a ping
func NewStore(ctx context.Context, uri, database string) (*Store, error) {
	if uri == "" || database == "" {
		return nil, fmt.Errorf("uri and database are required for Mongo store")
	}
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// find runs a query and decodes every result into a records.Doc.
func (s *Store) find(ctx context.Context, op, collection string, filter bson.D, opts *options.FindOptions, fn func(id string, d records.Doc)) error {
	cursor, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return fmt.Errorf("mongo %s: %w", op, err)
	}
	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return fmt.Errorf("mongo %s decode: %w", op, err)
	}
	for _, m := range docs {
		id := idString(m["_id"])
		fn(id, records.Doc(normalizeMap(m)))
	}
	return nil
}

func findOpts(sort bson.D, limit int) *options.FindOptions {
	opts := options.Find().SetSort(sort)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}

func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case primitive.ObjectID:
		return id.Hex()
	}
	return fmt.Sprint(v)
}

// normalize converts driver container and date types to plain Go values.
func normalize(v any) any {
	switch x := v.(type) {
	case primitive.DateTime:
		return x.Time().UTC()
	case primitive.Timestamp:
		return time.Unix(int64(x.T), 0).UTC()
	case bson.M:
		return normalizeMap(x)
	case map[string]any:
		return normalizeMap(x)
	case bson.D:
		m := make(map[string]any, len(x))
		for _, e := range x {
			m[e.Key] = normalize(e.Value)
		}
		return m
	case bson.A:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	}
	return v
}

func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = normalize(v)
	}
	return out
}

// ListUsers returns users ordered by createdAt desc.
func (s *Store) ListUsers(ctx context.Context, filter records.UserFilter) ([]user.User, error) {
	q := bson.D{}
	if filter.Role != "" {
		q = append(q, bson.E{Key: "role", Value: filter.Role})
	}
	if filter.Verified != nil {
		q = append(q, bson.E{Key: "verified", Value: *filter.Verified})
	}
	out := []user.User{}
	err := s.find(ctx, "ListUsers", records.CollectionUsers, q,
		findOpts(bson.D{{Key: "createdAt", Value: -1}}, filter.Limit),
		func(id string, d records.Doc) { out = append(out, records.DecodeUser(id, d)) })
	return out, err
}

// GetUser returns one user or records.ErrNotFound.
func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	var m bson.M
	err := s.db.Collection(records.CollectionUsers).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return user.User{}, records.ErrNotFound
		}
		return user.User{}, fmt.Errorf("mongo GetUser: %w", err)
	}
	return records.DecodeUser(id, records.Doc(normalizeMap(m))), nil
}

// UpdateUser applies the patch with $set.
func (s *Store) UpdateUser(ctx context.Context, id string, patch records.UserPatch) error {
	set := bson.D{}
	for _, f := range patch.Fields() {
		set = append(set, bson.E{Key: f.Path, Value: f.Value})
	}
	res, err := s.db.Collection(records.CollectionUsers).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return fmt.Errorf("mongo UpdateUser: %w", err)
	}
	if res.MatchedCount == 0 {
		return records.ErrNotFound
	}
	return nil
}

// DeleteUser removes the document.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.Collection(records.CollectionUsers).DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("mongo DeleteUser: %w", err)
	}
	if res.DeletedCount == 0 {
		return records.ErrNotFound
	}
	return nil
}

// ListDiaryEntries returns entry summaries ordered by createdAt desc.
func (s *Store) ListDiaryEntries(ctx context.Context, filter records.DiaryFilter) ([]diary.Entry, error) {
	q := bson.D{}
	rng := bson.D{}
	if !filter.From.IsZero() {
		rng = append(rng, bson.E{Key: "$gte", Value: filter.From})
	}
	if !filter.To.IsZero() {
		rng = append(rng, bson.E{Key: "$lte", Value: filter.To})
	}
	if len(rng) > 0 {
		q = append(q, bson.E{Key: "createdAt", Value: rng})
	}
	opts := findOpts(bson.D{{Key: "createdAt", Value: -1}}, filter.Limit).
		SetProjection(bson.D{{Key: "content", Value: 0}})

	out := []diary.Entry{}
	err := s.find(ctx, "ListDiaryEntries", records.CollectionDiaryEntries, q, opts,
		func(id string, d records.Doc) { out = append(out, records.DecodeDiaryEntry(id, d)) })
	return out, err
}

// ListChats returns all chat metadata ordered by createdAt desc.
func (s *Store) ListChats(ctx context.Context) ([]chat.Chat, error) {
	opts := findOpts(bson.D{{Key: "createdAt", Value: -1}}, 0).
		SetProjection(bson.D{{Key: "lastMessage", Value: 0}})
	out := []chat.Chat{}
	err := s.find(ctx, "ListChats", records.CollectionChats, bson.D{}, opts,
		func(id string, d records.Doc) { out = append(out, records.DecodeChat(id, d)) })
	return out, err
}

// ListTasks returns tasks created since filter.Since, newest first.
func (s *Store) ListTasks(ctx context.Context, filter records.TaskFilter) ([]task.Task, error) {
	q := bson.D{}
	if !filter.Since.IsZero() {
		q = append(q, bson.E{Key: "createdAt", Value: bson.D{{Key: "$gte", Value: filter.Since}}})
	}
	out := []task.Task{}
	err := s.find(ctx, "ListTasks", records.CollectionTasks, q,
		findOpts(bson.D{{Key: "createdAt", Value: -1}}, filter.Limit),
		func(id string, d records.Doc) { out = append(out, records.DecodeTask(id, d)) })
	return out, err
}

// ListUserPoints returns points ordered by totalPoints desc, userId asc.
func (s *Store) ListUserPoints(ctx context.Context, limit int) ([]points.UserPoints, error) {
	out := []points.UserPoints{}
	err := s.find(ctx, "ListUserPoints", records.CollectionUserPoints, bson.D{},
		findOpts(bson.D{{Key: "totalPoints", Value: -1}, {Key: "userId", Value: 1}}, limit),
		func(id string, d records.Doc) { out = append(out, records.DecodeUserPoints(id, d)) })
	return out, err
}

// ListPointsTransactions returns transactions newest first.
func (s *Store) ListPointsTransactions(ctx context.Context, filter records.TransactionFilter) ([]points.Transaction, error) {
	q := bson.D{}
	if filter.UserID != "" {
		q = append(q, bson.E{Key: "userId", Value: filter.UserID})
	}
	out := []points.Transaction{}
	err := s.find(ctx, "ListPointsTransactions", records.CollectionPointsTransactions, q,
		findOpts(bson.D{{Key: "createdAt", Value: -1}}, filter.Limit),
		func(id string, d records.Doc) { out = append(out, records.DecodeTransaction(id, d)) })
	return out, err
}

// ListEmergencyContacts returns contacts newest first.
func (s *Store) ListEmergencyContacts(ctx context.Context) ([]contact.EmergencyContact, error) {
	out := []contact.EmergencyContact{}
	err := s.find(ctx, "ListEmergencyContacts", records.CollectionEmergencyContacts, bson.D{},
		findOpts(bson.D{{Key: "createdAt", Value: -1}}, 0),
		func(id string, d records.Doc) { out = append(out, records.DecodeEmergencyContact(id, d)) })
	return out, err
}

// ListMotivationReels returns reels newest first.
func (s *Store) ListMotivationReels(ctx context.Context) ([]motivation.Reel, error) {
	out := []motivation.Reel{}
	err := s.find(ctx, "ListMotivationReels", records.CollectionMotivationReels, bson.D{},
		findOpts(bson.D{{Key: "createdAt", Value: -1}}, 0),
		func(id string, d records.Doc) { out = append(out, records.DecodeMotivationReel(id, d)) })
	return out, err
}
