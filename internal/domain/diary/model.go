package diary

import (
	"sort"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for trend buckets.
const DateLayout = "2006-01-02"

// DefaultColor is used for emotion labels outside the known set.
const DefaultColor = "#6b7280"

// emotionColors maps the known dominant-emotion labels to chart colors.
var emotionColors = map[string]string{
	"joy":       "#10b981",
	"happiness": "#10b981",
	"sadness":   "#3b82f6",
	"anger":     "#ef4444",
	"fear":      "#f59e0b",
	"surprise":  "#8b5cf6",
	"disgust":   "#84cc16",
	"neutral":   "#6b7280",
}

// Sentiment holds the three analysed scores of an entry. No sum invariant is enforced.
type Sentiment struct {
	Joy   float64 `json:"joy"`
	Anger float64 `json:"anger"`
	Fear  float64 `json:"fear"`
}

// Entry is the structured summary of a diary entry. The diary body is never loaded.
type Entry struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	Date              time.Time `json:"date"`
	CreatedAt         time.Time `json:"createdAt"`
	DominantEmotion   string    `json:"dominantEmotion"`
	SentimentAnalysis Sentiment `json:"sentimentAnalysis"`
	ConfidenceScore   float64   `json:"confidenceScore"`
}

// ConfidencePercent returns the confidence score as a rounded percentage.
func (e Entry) ConfidencePercent() int {
	return int(e.ConfidenceScore*100 + 0.5)
}

// DefaultLimit is the number of most recent entries fetched for insights.
const DefaultLimit = 100

// EmotionColor returns the chart color for a label, matched case-insensitively.
func EmotionColor(label string) string {
	if c, ok := emotionColors[strings.ToLower(label)]; ok {
		return c
	}
	return DefaultColor
}

// TrendPoint is one day of averaged sentiment scores.
type TrendPoint struct {
	Date  string  `json:"date"`
	Joy   float64 `json:"joy"`
	Anger float64 `json:"anger"`
	Fear  float64 `json:"fear"`
}

type bucket struct {
	joy, anger, fear float64
	count            int
}

// DailyTrend groups entries by calendar date in loc and averages each score per day.
// PRE: loc may be nil (UTC is used)
// POST: one point per date with at least one entry, ascending by date
// INVARIANT: input order does not affect the output
func DailyTrend(entries []Entry, loc *time.Location) []TrendPoint {
	if loc == nil {
		loc = time.UTC
	}
	buckets := make(map[string]*bucket)
	for _, e := range entries {
		date := e.CreatedAt.In(loc).Format(DateLayout)
		b, ok := buckets[date]
		if !ok {
			b = &bucket{}
			buckets[date] = b
		}
		b.joy += e.SentimentAnalysis.Joy
		b.anger += e.SentimentAnalysis.Anger
		b.fear += e.SentimentAnalysis.Fear
		b.count++
	}

	points := make([]TrendPoint, 0, len(buckets))
	for date, b := range buckets {
		n := float64(b.count)
		points = append(points, TrendPoint{
			Date:  date,
			Joy:   b.joy / n,
			Anger: b.anger / n,
			Fear:  b.fear / n,
		})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})
	return points
}

// EmotionSlice is one wedge of the dominant-emotion chart.
type EmotionSlice struct {
	Label string `json:"label"`
	Count int    `json:"count"`
	Color string `json:"color"`
}

// Distribution is the dominant-emotion count table plus its chart slices.
type Distribution struct {
	Counts map[string]int `json:"counts"`
	Slices []EmotionSlice `json:"slices"`
}

// EmotionDistribution counts entries per dominant emotion, case-sensitive as stored.
// POST: Slices ordered by count descending, then label ascending
func EmotionDistribution(entries []Entry) Distribution {
	counts := make(map[string]int)
	for _, e := range entries {
		counts[e.DominantEmotion]++
	}
	slices := make([]EmotionSlice, 0, len(counts))
	for label, n := range counts {
		slices = append(slices, EmotionSlice{Label: label, Count: n, Color: EmotionColor(label)})
	}
	sort.Slice(slices, func(i, j int) bool {
		if slices[i].Count != slices[j].Count {
			return slices[i].Count > slices[j].Count
		}
		return slices[i].Label < slices[j].Label
	})
	return Distribution{Counts: counts, Slices: slices}
}

// ByUsers returns the entries written by any user in the set.
func ByUsers(entries []Entry, users map[string]struct{}) []Entry {
	out := make([]Entry, 0)
	for _, e := range entries {
		if _, ok := users[e.UserID]; ok {
			out = append(out, e)
		}
	}
	return out
}

// ByEmotion returns the entries whose dominant emotion equals label. "all" or empty keeps everything.
func ByEmotion(entries []Entry, label string) []Entry {
	if label == "" || label == "all" {
		return entries
	}
	out := make([]Entry, 0)
	for _, e := range entries {
		if e.DominantEmotion == label {
			out = append(out, e)
		}
	}
	return out
}
