package records

import (
	"encoding/json"
	"strconv"
	"time"

	"moodadmin/internal/domain/chat"
	"moodadmin/internal/domain/contact"
	"moodadmin/internal/domain/diary"
	"moodadmin/internal/domain/motivation"
	"moodadmin/internal/domain/points"
	"moodadmin/internal/domain/task"
	"moodadmin/internal/domain/user"
)

// Doc is a raw schemaless document as returned by a backend.
// Decoders fill missing or mistyped fields with zero values and never fail.
type Doc map[string]any

// String returns the field as a string, or "" when absent or not a string.
func (d Doc) String(key string) string {
	if s, ok := d[key].(string); ok {
		return s
	}
	return ""
}

// Bool returns the field as a bool, or def when absent or not a bool.
func (d Doc) Bool(key string, def bool) bool {
	switch v := d[key].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	}
	return def
}

// Float returns the field as a float64, or 0.
func (d Doc) Float(key string) float64 {
	return toFloat(d[key])
}

// Int returns the field truncated to an int, or 0.
func (d Doc) Int(key string) int {
	return int(toFloat(d[key]))
}

// Time returns the field as a time, or the zero time.
// Accepts time.Time, anything with a Time() method (driver timestamp types)
// and RFC 3339 strings.
func (d Doc) Time(key string) time.Time {
	switch v := d[key].(type) {
	case time.Time:
		return v
	case *time.Time:
		if v != nil {
			return *v
		}
	case interface{ Time() time.Time }:
		return v.Time()
	case interface{ AsTime() time.Time }:
		return v.AsTime()
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// TimePtr returns the field as a time pointer, or nil when absent or unparseable.
func (d Doc) TimePtr(key string) *time.Time {
	t := d.Time(key)
	if t.IsZero() {
		return nil
	}
	return &t
}

// Strings returns the field as a string slice, skipping non-string elements.
func (d Doc) Strings(key string) []string {
	out := []string{}
	switch v := d[key].(type) {
	case []string:
		out = append(out, v...)
	case []any:
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// Sub returns a nested map field, or an empty Doc.
func (d Doc) Sub(key string) Doc {
	switch v := d[key].(type) {
	case map[string]any:
		return Doc(v)
	case Doc:
		return v
	}
	return Doc{}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	}
	return 0
}

// DecodeUser maps a users document. Active defaults to true when absent.
func DecodeUser(id string, d Doc) user.User {
	return user.User{
		ID:           id,
		DisplayName:  d.String("displayName"),
		Email:        d.String("email"),
		Role:         d.String("role"),
		Verified:     d.Bool("verified", false),
		Active:       d.Bool("active", true),
		Rejected:     d.Bool("rejected", false),
		RejectReason: d.String("rejectReason"),
		CVURL:        d.String("cvUrl"),
		LinkedInURL:  d.String("linkedinUrl"),
		CreatedAt:    d.Time("createdAt"),
	}
}

// DecodeDiaryEntry maps a diary_entries document. The content field is never read.
func DecodeDiaryEntry(id string, d Doc) diary.Entry {
	sa := d.Sub("sentimentAnalysis")
	return diary.Entry{
		ID:              id,
		UserID:          d.String("userId"),
		Date:            d.Time("date"),
		CreatedAt:       d.Time("createdAt"),
		DominantEmotion: d.String("dominantEmotion"),
		SentimentAnalysis: diary.Sentiment{
			Joy:   sa.Float("joy"),
			Anger: sa.Float("anger"),
			Fear:  sa.Float("fear"),
		},
		ConfidenceScore: d.Float("confidenceScore"),
	}
}

// DecodeChat maps a chats document. The lastMessage text is never read.
func DecodeChat(id string, d Doc) chat.Chat {
	return chat.Chat{
		ID:                id,
		ConsultantID:      d.String("consultantId"),
		Participants:      d.Strings("participants"),
		CreatedAt:         d.Time("createdAt"),
		LastMessageTime:   d.TimePtr("lastMessageTime"),
		LastSenderID:      d.String("lastSenderId"),
		LastMessageSeenBy: d.Strings("lastMessageSeenBy"),
	}
}

// DecodeTask maps a tasks document.
func DecodeTask(id string, d Doc) task.Task {
	return task.Task{
		ID:                   id,
		UserID:               d.String("userId"),
		Title:                d.String("title"),
		Date:                 d.Time("date"),
		CreatedAt:            d.Time("createdAt"),
		CompletedAt:          d.TimePtr("completedAt"),
		Status:               d.String("status"),
		TimeHour:             d.Int("timeHour"),
		TimeMinute:           d.Int("timeMinute"),
		RequiresVerification: d.Bool("requiresVerification", false),
		VerificationPhotoURL: d.String("verificationPhotoUrl"),
		PointsAwarded:        d.Int("pointsAwarded"),
	}
}

// DecodeUserPoints maps a userPoints document.
func DecodeUserPoints(id string, d Doc) points.UserPoints {
	return points.UserPoints{
		ID:          id,
		UserID:      d.String("userId"),
		UserName:    d.String("userName"),
		PhotoURL:    d.String("photoUrl"),
		TotalPoints: d.Int("totalPoints"),
		Rank:        d.Int("rank"),
		LastUpdated: d.Time("lastUpdated"),
	}
}

// DecodeTransaction maps a pointsTransactions document.
func DecodeTransaction(id string, d Doc) points.Transaction {
	return points.Transaction{
		ID:        id,
		UserID:    d.String("userId"),
		TaskID:    d.String("taskId"),
		Points:    d.Int("points"),
		Type:      d.String("type"),
		Reason:    d.String("reason"),
		CreatedAt: d.Time("createdAt"),
	}
}

// DecodeEmergencyContact maps an emergency_contacts document.
func DecodeEmergencyContact(id string, d Doc) contact.EmergencyContact {
	return contact.EmergencyContact{
		ID:           id,
		UserID:       d.String("userId"),
		Name:         d.String("name"),
		PhoneNumber:  d.String("phoneNumber"),
		Relationship: d.String("relationship"),
		CreatedAt:    d.Time("createdAt"),
		UpdatedAt:    d.Time("updatedAt"),
	}
}

// DecodeMotivationReel maps a motivation_reels document.
func DecodeMotivationReel(id string, d Doc) motivation.Reel {
	return motivation.Reel{
		ID:           id,
		Title:        d.String("title"),
		Author:       d.String("author"),
		Source:       d.String("source"),
		VideoURL:     d.String("videoUrl"),
		ThumbnailURL: d.String("thumbnailUrl"),
		Active:       d.Bool("active", false),
		CreatedAt:    d.Time("createdAt"),
	}
}
