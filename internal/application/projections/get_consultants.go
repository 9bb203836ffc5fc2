package projections

import (
	"context"
	"math"
	"time"

	"moodadmin/internal/adapters/storage/records"
	"moodadmin/internal/domain/chat"
	"moodadmin/internal/domain/diary"
	"moodadmin/internal/domain/user"
)

// ConsultantRow is one verified consultant with their caseload.
type ConsultantRow struct {
	user.User
	CasesHandled int `json:"casesHandled"`
	UniqueUsers  int `json:"uniqueUsers"`
}

// GetConsultantsResult carries the consultants table and its summary cards.
type GetConsultantsResult struct {
	Consultants     []ConsultantRow `json:"consultants"`
	TotalChats      int             `json:"totalChats"`
	AvgCasesPerHead int             `json:"avgCasesPerConsultant"`
}

// GetConsultantsDeps holds dependencies for the consultants projections.
type GetConsultantsDeps struct {
	Users    records.UserReader
	Chats    records.ChatReader
	Diary    records.DiaryReader
	Location *time.Location
}

// QueryGetConsultants lists verified consultants with their caseload, recomputed on every call.
// POST: AvgCasesPerHead is 0 when there are no consultants
func QueryGetConsultants(ctx context.Context, deps GetConsultantsDeps) (GetConsultantsResult, error) {
	verified := true
	var (
		consultants []user.User
		chats       []chat.Chat
	)
	err := fetchAll(ctx,
		func(ctx context.Context) (err error) {
			consultants, err = deps.Users.ListUsers(ctx, records.UserFilter{
				Role: user.RoleConsultant, Verified: &verified, Limit: UserFetchLimit,
			})
			return err
		},
		func(ctx context.Context) (err error) {
			chats, err = deps.Chats.ListChats(ctx)
			return err
		},
	)
	if err != nil {
		return GetConsultantsResult{}, err
	}

	result := GetConsultantsResult{
		Consultants: make([]ConsultantRow, 0, len(consultants)),
		TotalChats:  len(chats),
	}
	for _, c := range consultants {
		load := chat.ComputeCaseload(chats, c.ID)
		result.Consultants = append(result.Consultants, ConsultantRow{
			User:         c,
			CasesHandled: load.CasesHandled,
			UniqueUsers:  load.UniqueUserCount(),
		})
	}
	if len(consultants) > 0 {
		result.AvgCasesPerHead = int(math.Round(float64(len(chats)) / float64(len(consultants))))
	}
	return result, nil
}

// Analytics is one consultant's caseload and the sentiment of the users they served.
type Analytics struct {
	ConsultantID string             `json:"consultantId"`
	CasesHandled int                `json:"casesHandled"`
	UniqueUsers  int                `json:"uniqueUsers"`
	Entries      int                `json:"entries"`
	Trend        []diary.TrendPoint `json:"trend"`
	Emotions     diary.Distribution `json:"emotions"`
}

// ConsultantAnalytics derives a consultant's analytics from already-fetched lists.
// PRE: chats and entries are complete fetches; loc may be nil
// POST: a consultant with no chats yields zero counts and an empty trend
// INVARIANT: diary entries are included only through the unique-user set
func ConsultantAnalytics(chats []chat.Chat, entries []diary.Entry, consultantID string, loc *time.Location) Analytics {
	load := chat.ComputeCaseload(chats, consultantID)
	served := diary.ByUsers(entries, load.UniqueUsers)
	return Analytics{
		ConsultantID: consultantID,
		CasesHandled: load.CasesHandled,
		UniqueUsers:  load.UniqueUserCount(),
		Entries:      len(served),
		Trend:        diary.DailyTrend(served, loc),
		Emotions:     diary.EmotionDistribution(served),
	}
}

// GetConsultantAnalyticsResult pairs the consultant with their analytics.
type GetConsultantAnalyticsResult struct {
	Consultant user.User `json:"consultant"`
	Analytics  Analytics `json:"analytics"`
}

// QueryGetConsultantAnalytics fetches the consultant, all chats and the recent diary
// entries, then derives the analytics.
// POST: returns records.ErrNotFound when the user is missing and user.ErrNotConsultant
// when the user is not a consultant
func QueryGetConsultantAnalytics(ctx context.Context, consultantID string, deps GetConsultantsDeps) (GetConsultantAnalyticsResult, error) {
	if consultantID == "" {
		return GetConsultantAnalyticsResult{}, user.ErrEmptyID
	}
	var (
		consultant user.User
		chats      []chat.Chat
		entries    []diary.Entry
	)
	err := fetchAll(ctx,
		func(ctx context.Context) (err error) {
			consultant, err = deps.Users.GetUser(ctx, consultantID)
			return err
		},
		func(ctx context.Context) (err error) {
			chats, err = deps.Chats.ListChats(ctx)
			return err
		},
		func(ctx context.Context) (err error) {
			entries, err = deps.Diary.ListDiaryEntries(ctx, records.DiaryFilter{Limit: diary.DefaultLimit})
			return err
		},
	)
	if err != nil {
		return GetConsultantAnalyticsResult{}, err
	}
	if !consultant.IsConsultant() {
		return GetConsultantAnalyticsResult{}, user.ErrNotConsultant
	}
	return GetConsultantAnalyticsResult{
		Consultant: consultant,
		Analytics:  ConsultantAnalytics(chats, entries, consultantID, deps.Location),
	}, nil
}
