package outbox

import (
	"errors"
	"time"
)

// Status constants for the entry lifecycle.
const (
	StatusPending  = "pending"
	StatusRetrying = "retrying"
	StatusDone     = "done"
	StatusFailed   = "failed"
)

// KindDecisionEmail is a consultant decision e-mail that could not be delivered inline.
const KindDecisionEmail = "decision_email"

// DefaultMaxAttempts bounds the retries of a new entry.
const DefaultMaxAttempts = 5

// Domain errors.
var (
	ErrEmptyKind    = errors.New("kind is required")
	ErrEmptyPayload = errors.New("payload is required")
)

// Entry is one deferred side effect waiting to be replayed.
type Entry struct {
	ID              string
	Kind            string
	Payload         string // JSON, replayed verbatim
	Status          string
	Attempts        int
	MaxAttempts     int
	LastAttemptedAt time.Time
	CreatedAt       time.Time
	LastError       string
}

// NewEntry creates a pending entry. The first inline attempt already failed, so it counts.
// POST: Attempts == 1, LastAttemptedAt == now
func NewEntry(id, kind, payload string, cause error, now time.Time) (Entry, error) {
	e := Entry{
		ID:              id,
		Kind:            kind,
		Payload:         payload,
		Status:          StatusPending,
		Attempts:        1,
		MaxAttempts:     DefaultMaxAttempts,
		LastAttemptedAt: now,
		CreatedAt:       now,
	}
	if cause != nil {
		e.LastError = cause.Error()
	}
	return e, e.Validate()
}

// Validate checks that the entry can be stored.
func (e Entry) Validate() error {
	if e.Kind == "" {
		return ErrEmptyKind
	}
	if e.Payload == "" {
		return ErrEmptyPayload
	}
	if e.CreatedAt.IsZero() {
		return errors.New("created_at must be set")
	}
	return nil
}

// CanRetry reports whether another attempt is allowed.
func (e Entry) CanRetry() bool {
	return (e.Status == StatusPending || e.Status == StatusRetrying) && e.Attempts < e.MaxAttempts
}

// NextRetryDelay is base * 2^(attempts-1), capped at max.
func (e Entry) NextRetryDelay(base, max time.Duration) time.Duration {
	shift := e.Attempts - 1
	if shift < 0 {
		shift = 0
	}
	if shift > 30 {
		return max
	}
	delay := base * time.Duration(1<<shift)
	if delay > max || delay <= 0 {
		return max
	}
	return delay
}

// Due reports whether the backoff since the last attempt has elapsed.
func (e Entry) Due(now time.Time, base, max time.Duration) bool {
	if e.LastAttemptedAt.IsZero() {
		return true
	}
	return !now.Before(e.LastAttemptedAt.Add(e.NextRetryDelay(base, max)))
}

// MarkAttempt records the start of a retry.
// POST: Attempts incremented, status retrying
func (e *Entry) MarkAttempt(now time.Time) {
	e.Attempts++
	e.LastAttemptedAt = now
	e.Status = StatusRetrying
}

// MarkSuccess closes the entry.
func (e *Entry) MarkSuccess() {
	e.Status = StatusDone
	e.LastError = ""
}

// MarkFailed records err; the entry fails for good once attempts are spent.
// POST: Status is StatusFailed iff Attempts >= MaxAttempts
func (e *Entry) MarkFailed(err error) {
	e.LastError = err.Error()
	if e.Attempts >= e.MaxAttempts {
		e.Status = StatusFailed
	}
}
