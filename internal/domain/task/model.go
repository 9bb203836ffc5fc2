package task

import (
	"errors"
	"math"
	"time"
)

// Status constants
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusVerified  = "verified"
)

// Window constants for the task time filter.
const (
	Window24h = "24h"
	Window7d  = "7d"
	Window30d = "30d"
)

// DefaultWindow is applied when no window is requested.
const DefaultWindow = Window7d

// Verification filter values.
const (
	VerificationAll         = "all"
	VerificationRequired    = "required"
	VerificationNotRequired = "not-required"
)

// Domain errors
var (
	ErrInvalidWindow       = errors.New("window must be one of 24h, 7d, 30d")
	ErrInvalidStatus       = errors.New("status must be all, pending, completed or verified")
	ErrInvalidVerification = errors.New("verification must be all, required or not-required")
)

// Task is a wellness task assigned to a user.
type Task struct {
	ID                   string     `json:"id"`
	UserID               string     `json:"userId"`
	Title                string     `json:"title"`
	Date                 time.Time  `json:"date"`
	CreatedAt            time.Time  `json:"createdAt"`
	CompletedAt          *time.Time `json:"completedAt,omitempty"`
	Status               string     `json:"status"`
	TimeHour             int        `json:"timeHour"`
	TimeMinute           int        `json:"timeMinute"`
	RequiresVerification bool       `json:"requiresVerification"`
	VerificationPhotoURL string     `json:"verificationPhotoUrl,omitempty"`
	PointsAwarded        int        `json:"pointsAwarded"`
}

// IsDone reports whether the task counts as completed (completed or verified).
func (t Task) IsDone() bool {
	return t.Status == StatusCompleted || t.Status == StatusVerified
}

// WindowDuration returns the lookback for a window name.
// PRE: window may be empty (DefaultWindow is used)
// POST: returns ErrInvalidWindow for unknown names
func WindowDuration(window string) (time.Duration, error) {
	switch window {
	case Window24h:
		return 24 * time.Hour, nil
	case "", Window7d:
		return 7 * 24 * time.Hour, nil
	case Window30d:
		return 30 * 24 * time.Hour, nil
	}
	return 0, ErrInvalidWindow
}

// Predicate holds the status and verification filters applied after the window query.
type Predicate struct {
	Status       string
	Verification string
}

// Validate checks the filter values.
func (p Predicate) Validate() error {
	switch p.Status {
	case "", "all", StatusPending, StatusCompleted, StatusVerified:
	default:
		return ErrInvalidStatus
	}
	switch p.Verification {
	case "", VerificationAll, VerificationRequired, VerificationNotRequired:
	default:
		return ErrInvalidVerification
	}
	return nil
}

// Match reports whether t passes the filters. Empty or "all" matches everything.
func (p Predicate) Match(t Task) bool {
	if p.Status != "" && p.Status != "all" && t.Status != p.Status {
		return false
	}
	switch p.Verification {
	case VerificationRequired:
		return t.RequiresVerification
	case VerificationNotRequired:
		return !t.RequiresVerification
	}
	return true
}

// Filter returns the tasks matching p, preserving order.
func (p Predicate) Filter(tasks []Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if p.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Stats summarises completion over a filtered task set.
type Stats struct {
	Total          int `json:"total"`
	Pending        int `json:"pending"`
	Completed      int `json:"completed"`
	Verified       int `json:"verified"`
	CompletionRate int `json:"completionRate"`
	TotalPoints    int `json:"totalPoints"`
}

// ComputeStats counts completion over tasks.
// POST: Completed counts completed and verified; CompletionRate is 0 when Total is 0
// INVARIANT: Verified <= Completed <= Total
func ComputeStats(tasks []Task) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case StatusVerified:
			s.Verified++
			s.Completed++
		case StatusCompleted:
			s.Completed++
		case StatusPending:
			s.Pending++
		}
		s.TotalPoints += t.PointsAwarded
	}
	if s.Total > 0 {
		s.CompletionRate = int(math.Round(float64(s.Completed) / float64(s.Total) * 100))
	}
	return s
}
