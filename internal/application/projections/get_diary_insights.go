package projections

import (
	"context"
	"fmt"
	"time"

	"moodadmin/internal/adapters/storage/records"
	"moodadmin/internal/domain/diary"
	"moodadmin/internal/domain/user"
)

// DefaultInsightsRange is the lookback used when no date range is given.
const DefaultInsightsRange = 30 * 24 * time.Hour

// UnknownUser labels rows whose author is not among the fetched users.
const UnknownUser = "Unknown User"

// GetDiaryInsightsQuery carries the date range and the table's emotion filter.
type GetDiaryInsightsQuery struct {
	From    time.Time // zero means now minus DefaultInsightsRange
	To      time.Time // zero means now
	Emotion string    // "" or "all" keeps every row
}

// DiaryRow is one entry summary with its author's name.
type DiaryRow struct {
	diary.Entry
	UserName          string `json:"userName"`
	ConfidencePercent int    `json:"confidencePercent"`
	Color             string `json:"color"`
}

// GetDiaryInsightsResult carries the charts and the filtered table.
type GetDiaryInsightsResult struct {
	From         time.Time          `json:"from"`
	To           time.Time          `json:"to"`
	Emotion      string             `json:"emotion"`
	TotalEntries int                `json:"totalEntries"`
	UniqueUsers  int                `json:"uniqueUsers"`
	Trend        []diary.TrendPoint `json:"trend"`
	Emotions     diary.Distribution `json:"emotions"`
	Entries      []DiaryRow         `json:"entries"`
}

// GetDiaryInsightsDeps holds dependencies for the diary insights projection.
type GetDiaryInsightsDeps struct {
	Users    records.UserReader
	Diary    records.DiaryReader
	Location *time.Location
}

// QueryGetDiaryInsights aggregates the newest diary.DefaultLimit entries in the range.
// PRE: now is the request time
// POST: Trend and Emotions cover every fetched entry; only Entries honours the emotion filter
func QueryGetDiaryInsights(ctx context.Context, query GetDiaryInsightsQuery, deps GetDiaryInsightsDeps, now time.Time) (GetDiaryInsightsResult, error) {
	if query.To.IsZero() {
		query.To = now
	}
	if query.From.IsZero() {
		query.From = query.To.Add(-DefaultInsightsRange)
	}
	if query.From.After(query.To) {
		return GetDiaryInsightsResult{}, fmt.Errorf("from is after to: %w", ErrInvalidFilter)
	}

	var (
		users   []user.User
		entries []diary.Entry
	)
	err := fetchAll(ctx,
		func(ctx context.Context) (err error) {
			users, err = deps.Users.ListUsers(ctx, records.UserFilter{Limit: UserFetchLimit})
			return err
		},
		func(ctx context.Context) (err error) {
			entries, err = deps.Diary.ListDiaryEntries(ctx, records.DiaryFilter{
				From: query.From, To: query.To, Limit: diary.DefaultLimit,
			})
			return err
		},
	)
	if err != nil {
		return GetDiaryInsightsResult{}, err
	}

	authors := make(map[string]struct{})
	for _, e := range entries {
		authors[e.UserID] = struct{}{}
	}

	names := userNames(users)
	filtered := diary.ByEmotion(entries, query.Emotion)
	rows := make([]DiaryRow, 0, len(filtered))
	for _, e := range filtered {
		name, ok := names[e.UserID]
		if !ok {
			name = UnknownUser
		}
		rows = append(rows, DiaryRow{
			Entry:             e,
			UserName:          name,
			ConfidencePercent: e.ConfidencePercent(),
			Color:             diary.EmotionColor(e.DominantEmotion),
		})
	}

	emotion := query.Emotion
	if emotion == "" {
		emotion = "all"
	}
	return GetDiaryInsightsResult{
		From:         query.From,
		To:           query.To,
		Emotion:      emotion,
		TotalEntries: len(entries),
		UniqueUsers:  len(authors),
		Trend:        diary.DailyTrend(entries, deps.Location),
		Emotions:     diary.EmotionDistribution(entries),
		Entries:      rows,
	}, nil
}
