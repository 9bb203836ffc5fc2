package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"moodadmin/internal/adapters/storage/records"
	"moodadmin/internal/domain/audit"
	"moodadmin/internal/domain/chat"
	"moodadmin/internal/domain/contact"
	"moodadmin/internal/domain/diary"
	"moodadmin/internal/domain/motivation"
	"moodadmin/internal/domain/points"
	"moodadmin/internal/domain/task"
	"moodadmin/internal/domain/user"
)

// DocumentInserter writes raw documents into the local document store.
type DocumentInserter interface {
	Insert(ctx context.Context, collection, id string, createdAt time.Time, doc any) error
	Count(ctx context.Context, collection string) (int, error)
}

// SyntheticSeedDeps holds dependencies for synthetic data seeding.
type SyntheticSeedDeps struct {
	Store DocumentInserter
	Audit AuditRecorder
	Now   func() time.Time
	Seed  uint64 // PRNG seed; the same seed yields the same documents
}

// SyntheticSeedResult reports how many documents were written per collection.
type SyntheticSeedResult struct {
	Skipped bool
	Counts  map[string]int
}

var (
	synFirstNames = []string{"Ava", "Ben", "Chloe", "Dan", "Eli", "Fay", "Gus", "Hana", "Ivo", "Jade", "Kai", "Lena"}
	synEmotions   = []string{"joy", "sadness", "anger", "fear", "surprise", "neutral"}
	synTasks      = []string{"Morning walk", "Drink water", "Gratitude journal", "Call a friend", "Breathing exercise", "Read 10 pages"}
	synRelations  = []string{"Parent", "Sibling", "Partner", "Friend"}
)

// ExecuteSeedSynthetic fills an empty local store with a month of plausible activity.
// PRE: deps.Store is the local SQLite document store
// POST: Skipped is true and nothing is written when users already exist
func ExecuteSeedSynthetic(ctx context.Context, deps SyntheticSeedDeps) (SyntheticSeedResult, error) {
	existing, err := deps.Store.Count(ctx, records.CollectionUsers)
	if err != nil {
		return SyntheticSeedResult{}, err
	}
	if existing > 0 {
		slog.Info("seed_skipped", "reason", "users_exist", "count", existing)
		return SyntheticSeedResult{Skipped: true}, nil
	}

	now := nowFunc(deps.Now).UTC()
	rng := rand.New(rand.NewPCG(deps.Seed, deps.Seed^0x9e3779b97f4a7c15))
	s := &seeder{ctx: ctx, store: deps.Store, counts: map[string]int{}}
	ago := func(maxHours int) time.Time {
		return now.Add(-time.Duration(rng.IntN(maxHours*60)+1) * time.Minute)
	}

	var users, consultants []user.User
	for i, name := range synFirstNames {
		u := user.User{
			ID:          uuid.NewString(),
			DisplayName: name + " " + string(rune('A'+i)) + ".",
			Email:       fmt.Sprintf("%s%d@example.com", name, i),
			Role:        user.RoleUser,
			Active:      i%7 != 6,
			CreatedAt:   ago(24 * 90),
		}
		users = append(users, u)
		s.put(records.CollectionUsers, u.ID, u.CreatedAt, u)
	}
	consultantStates := []struct{ verified, rejected bool }{{true, false}, {true, false}, {false, false}, {false, true}}
	for i, st := range consultantStates {
		c := user.User{
			ID:          uuid.NewString(),
			DisplayName: fmt.Sprintf("Dr. Consultant %d", i+1),
			Email:       fmt.Sprintf("consultant%d@clinic.example", i+1),
			Role:        user.RoleConsultant,
			Verified:    st.verified,
			Rejected:    st.rejected,
			Active:      true,
			CVURL:       fmt.Sprintf("https://files.example.com/cv/%d.pdf", i+1),
			LinkedInURL: fmt.Sprintf("https://www.linkedin.com/in/consultant-%d", i+1),
			CreatedAt:   ago(24 * 60),
		}
		if st.rejected {
			c.RejectReason = user.DefaultRejectReason
		}
		consultants = append(consultants, c)
		s.put(records.CollectionUsers, c.ID, c.CreatedAt, c)
	}

	for _, c := range consultants {
		if !c.Verified {
			continue
		}
		for j := 0; j < 4; j++ {
			u := users[rng.IntN(len(users))]
			last := ago(72)
			ch := chat.Chat{
				ID:                uuid.NewString(),
				ConsultantID:      c.ID,
				Participants:      []string{c.ID, u.ID},
				CreatedAt:         last.Add(-time.Duration(rng.IntN(240)) * time.Hour),
				LastMessageTime:   &last,
				LastSenderID:      u.ID,
				LastMessageSeenBy: []string{u.ID},
			}
			s.put(records.CollectionChats, ch.ID, ch.CreatedAt, ch)
		}
	}

	for i := 0; i < 80; i++ {
		u := users[rng.IntN(len(users))]
		created := ago(24 * 30)
		e := diary.Entry{
			ID:              uuid.NewString(),
			UserID:          u.ID,
			Date:            created,
			CreatedAt:       created,
			DominantEmotion: synEmotions[rng.IntN(len(synEmotions))],
			SentimentAnalysis: diary.Sentiment{
				Joy:   rng.Float64(),
				Anger: rng.Float64() * 0.5,
				Fear:  rng.Float64() * 0.5,
			},
			ConfidenceScore: 0.5 + rng.Float64()/2,
		}
		s.put(records.CollectionDiaryEntries, e.ID, e.CreatedAt, e)
	}

	totals := map[string]int{}
	for i := 0; i < 60; i++ {
		u := users[rng.IntN(len(users))]
		created := ago(24 * 30)
		t := task.Task{
			ID:                   uuid.NewString(),
			UserID:               u.ID,
			Title:                synTasks[rng.IntN(len(synTasks))],
			Date:                 created,
			CreatedAt:            created,
			Status:               task.StatusPending,
			TimeHour:             rng.IntN(24),
			TimeMinute:           rng.IntN(4) * 15,
			RequiresVerification: rng.IntN(3) == 0,
		}
		if rng.IntN(3) > 0 {
			done := created.Add(time.Duration(rng.IntN(12)+1) * time.Hour)
			t.CompletedAt = &done
			t.Status = task.StatusCompleted
			t.PointsAwarded = 10
			if t.RequiresVerification {
				t.Status = task.StatusVerified
				t.PointsAwarded = 20
				t.VerificationPhotoURL = "https://files.example.com/proof/" + t.ID + ".jpg"
			}
			tx := points.Transaction{
				ID:        uuid.NewString(),
				UserID:    u.ID,
				TaskID:    t.ID,
				Points:    t.PointsAwarded,
				Type:      points.TypeEarned,
				Reason:    "Completed: " + t.Title,
				CreatedAt: done,
			}
			s.put(records.CollectionPointsTransactions, tx.ID, tx.CreatedAt, tx)
			totals[u.ID] += t.PointsAwarded
		}
		s.put(records.CollectionTasks, t.ID, t.CreatedAt, t)
	}

	for _, u := range users {
		total, ok := totals[u.ID]
		if !ok {
			continue
		}
		if rng.IntN(5) == 0 {
			adj := points.Transaction{
				ID:        uuid.NewString(),
				UserID:    u.ID,
				Points:    -5,
				Type:      points.TypeAdjusted,
				Reason:    "Manual correction",
				CreatedAt: ago(48),
			}
			s.put(records.CollectionPointsTransactions, adj.ID, adj.CreatedAt, adj)
			total += adj.Points
		}
		up := points.UserPoints{
			ID:          u.ID,
			UserID:      u.ID,
			UserName:    u.DisplayName,
			TotalPoints: total,
			LastUpdated: now,
		}
		s.put(records.CollectionUserPoints, up.ID, up.LastUpdated, up)
	}

	for i := 0; i < 6; i++ {
		u := users[i]
		created := ago(24 * 60)
		c := contact.EmergencyContact{
			ID:           uuid.NewString(),
			UserID:       u.ID,
			Name:         synFirstNames[len(synFirstNames)-1-i] + " (contact)",
			PhoneNumber:  fmt.Sprintf("+1 555 01%02d", i),
			Relationship: synRelations[i%len(synRelations)],
			CreatedAt:    created,
			UpdatedAt:    created,
		}
		s.put(records.CollectionEmergencyContacts, c.ID, c.CreatedAt, c)
	}

	reels := []struct{ title, author, source string }{
		{"Small steps every day", "Maya R.", "YouTube"},
		{"Breathing through anxiety", "Dr. Lin", "Vimeo"},
		{"Why rest is productive", "Maya R.", "YouTube"},
		{"Morning light routine", "Sam O.", "Instagram"},
	}
	for i, r := range reels {
		reel := motivation.Reel{
			ID:           uuid.NewString(),
			Title:        r.title,
			Author:       r.author,
			Source:       r.source,
			VideoURL:     fmt.Sprintf("https://videos.example.com/%d", i+1),
			ThumbnailURL: fmt.Sprintf("https://videos.example.com/%d.jpg", i+1),
			Active:       i != len(reels)-1,
			CreatedAt:    ago(24 * 45),
		}
		s.put(records.CollectionMotivationReels, reel.ID, reel.CreatedAt, reel)
	}

	if s.err != nil {
		return SyntheticSeedResult{}, s.err
	}
	slog.Info("seed_complete", "counts", s.counts)
	recordAudit(ctx, deps.Audit, audit.NewEvent("", audit.CategorySystem, audit.ActionSeed, now).
		WithDescription("synthetic data seeded"))
	return SyntheticSeedResult{Counts: s.counts}, nil
}

// seeder stops writing after the first error.
type seeder struct {
	ctx    context.Context
	store  DocumentInserter
	counts map[string]int
	err    error
}

func (s *seeder) put(collection, id string, createdAt time.Time, doc any) {
	if s.err != nil {
		return
	}
	if err := s.store.Insert(s.ctx, collection, id, createdAt, doc); err != nil {
		s.err = err
		return
	}
	s.counts[collection]++
}
