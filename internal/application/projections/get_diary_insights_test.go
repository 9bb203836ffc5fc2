package projections

import (
	"context"
	"errors"
	"testing"

	"moodadmin/internal/domain/diary"
	"moodadmin/internal/domain/user"
)

func diaryFixture() *fakeStore {
	return &fakeStore{
		users: []user.User{{ID: "u1", DisplayName: "Ana"}},
		entries: []diary.Entry{
			{ID: "e1", UserID: "u1", DominantEmotion: "joy", ConfidenceScore: 0.876, CreatedAt: hoursAgo(1), SentimentAnalysis: diary.Sentiment{Joy: 0.8}},
			{ID: "e2", UserID: "u2", DominantEmotion: "fear", CreatedAt: hoursAgo(26), SentimentAnalysis: diary.Sentiment{Fear: 0.5}},
			{ID: "e3", UserID: "u1", DominantEmotion: "joy", CreatedAt: hoursAgo(24 * 45)},
		},
	}
}

// TestQueryGetDiaryInsights_DefaultRange verifies the 30-day default and the emotion filter scope.
func TestQueryGetDiaryInsights_DefaultRange(t *testing.T) {
	store := diaryFixture()
	got, err := QueryGetDiaryInsights(context.Background(), GetDiaryInsightsQuery{Emotion: "fear"},
		GetDiaryInsightsDeps{Users: store, Diary: store}, testNow)
	if err != nil {
		t.Fatalf("QueryGetDiaryInsights() error = %v", err)
	}
	if !store.lastDiaryFilter.From.Equal(testNow.Add(-DefaultInsightsRange)) || !store.lastDiaryFilter.To.Equal(testNow) {
		t.Errorf("range = %v..%v", store.lastDiaryFilter.From, store.lastDiaryFilter.To)
	}
	if store.lastDiaryFilter.Limit != diary.DefaultLimit {
		t.Errorf("limit = %d, want %d", store.lastDiaryFilter.Limit, diary.DefaultLimit)
	}
	if got.TotalEntries != 2 || got.UniqueUsers != 2 {
		t.Errorf("total/unique = %d/%d, want 2/2", got.TotalEntries, got.UniqueUsers)
	}
	if len(got.Trend) != 2 || got.Emotions.Counts["joy"] != 1 {
		t.Errorf("charts should cover every fetched entry: trend %d, counts %v", len(got.Trend), got.Emotions.Counts)
	}
	if len(got.Entries) != 1 || got.Entries[0].ID != "e2" || got.Entries[0].UserName != UnknownUser {
		t.Errorf("Entries = %+v, want only e2 by an unknown user", got.Entries)
	}
}

// TestQueryGetDiaryInsights_Rows verifies names and confidence percentages.
func TestQueryGetDiaryInsights_Rows(t *testing.T) {
	store := diaryFixture()
	got, err := QueryGetDiaryInsights(context.Background(), GetDiaryInsightsQuery{},
		GetDiaryInsightsDeps{Users: store, Diary: store}, testNow)
	if err != nil {
		t.Fatalf("QueryGetDiaryInsights() error = %v", err)
	}
	if got.Emotion != "all" || len(got.Entries) != 2 {
		t.Fatalf("emotion %q with %d rows", got.Emotion, len(got.Entries))
	}
	row := got.Entries[0]
	if row.UserName != "Ana" || row.ConfidencePercent != 88 || row.Color != diary.EmotionColor("joy") {
		t.Errorf("row = %+v", row)
	}
}

// TestQueryGetDiaryInsights_InvertedRange rejects from after to.
func TestQueryGetDiaryInsights_InvertedRange(t *testing.T) {
	store := diaryFixture()
	_, err := QueryGetDiaryInsights(context.Background(), GetDiaryInsightsQuery{From: testNow, To: hoursAgo(1)},
		GetDiaryInsightsDeps{Users: store, Diary: store}, testNow)
	if !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("error = %v, want ErrInvalidFilter", err)
	}
}
