package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"moodadmin/internal/adapters/email"
	outboxStore "moodadmin/internal/adapters/storage/outbox"
	"moodadmin/internal/domain/outbox"
)

// OutboxWriter queues a deferred side effect.
type OutboxWriter interface {
	Save(ctx context.Context, e outbox.Entry) error
}

// emailPayload is the replayable form of an e-mail send.
type emailPayload struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Tag     string   `json:"tag,omitempty"`
}

// enqueueEmail stores req for a later retry. Failures are logged.
func enqueueEmail(ctx context.Context, w OutboxWriter, req email.SendRequest, cause error, now time.Time) {
	if w == nil {
		return
	}
	payload, err := json.Marshal(emailPayload{To: req.To, Subject: req.Subject, HTML: req.HTML, Tag: req.Tag})
	if err != nil {
		slog.Error("outbox_enqueue_failed", "error", err)
		return
	}
	entry, err := outbox.NewEntry(uuid.NewString(), outbox.KindDecisionEmail, string(payload), cause, now)
	if err != nil {
		slog.Error("outbox_enqueue_failed", "error", err)
		return
	}
	if err := w.Save(ctx, entry); err != nil {
		slog.Error("outbox_enqueue_failed", "entry_id", entry.ID, "error", err)
		return
	}
	slog.Info("outbox_enqueued", "entry_id", entry.ID, "kind", entry.Kind)
}

// Backoff bounds for outbox retries.
const (
	OutboxBaseDelay = time.Minute
	OutboxMaxDelay  = time.Hour
	outboxBatchSize = 20
)

// OutboxRetryDeps holds dependencies for ExecuteOutboxRetry.
type OutboxRetryDeps struct {
	Outbox outboxStore.Store
	Mailer email.Sender
	Now    func() time.Time
}

// OutboxRetryResult summarises one pass.
type OutboxRetryResult struct {
	Due       int
	Succeeded int
	Failed    int
}

// ExecuteOutboxRetry replays due entries once.
// PRE: deps.Outbox and deps.Mailer are set
// POST: every due entry has one more attempt recorded; entries out of attempts end failed
func ExecuteOutboxRetry(ctx context.Context, deps OutboxRetryDeps) (OutboxRetryResult, error) {
	entries, err := deps.Outbox.ListPending(ctx, outboxBatchSize)
	if err != nil {
		return OutboxRetryResult{}, fmt.Errorf("list pending outbox entries: %w", err)
	}

	var res OutboxRetryResult
	now := nowFunc(deps.Now)
	for _, entry := range entries {
		if !entry.Due(now, OutboxBaseDelay, OutboxMaxDelay) {
			continue
		}
		res.Due++
		if !entry.CanRetry() {
			entry.MarkFailed(fmt.Errorf("gave up after %d attempts", entry.Attempts))
		} else {
			entry.MarkAttempt(now)
			if err := replay(ctx, deps.Mailer, entry); err != nil {
				entry.MarkFailed(err)
				slog.Warn("outbox_retry_failed", "entry_id", entry.ID, "attempt", entry.Attempts, "error", err)
			} else {
				entry.MarkSuccess()
				slog.Info("outbox_retry_succeeded", "entry_id", entry.ID, "attempt", entry.Attempts)
			}
		}
		if entry.Status == outbox.StatusDone {
			res.Succeeded++
		} else {
			res.Failed++
		}
		if err := deps.Outbox.Save(ctx, entry); err != nil {
			slog.Error("outbox_save_failed", "entry_id", entry.ID, "error", err)
		}
	}
	return res, nil
}

func replay(ctx context.Context, mailer email.Sender, entry outbox.Entry) error {
	switch entry.Kind {
	case outbox.KindDecisionEmail:
		var p emailPayload
		if err := json.Unmarshal([]byte(entry.Payload), &p); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}
		_, err := mailer.Send(ctx, email.SendRequest{To: p.To, Subject: p.Subject, HTML: p.HTML, Tag: p.Tag})
		return err
	}
	return fmt.Errorf("unknown outbox kind %q", entry.Kind)
}

// StartOutboxWorker runs ExecuteOutboxRetry every interval until ctx ends or the
// returned stop function is called.
func StartOutboxWorker(ctx context.Context, deps OutboxRetryDeps, interval time.Duration) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				slog.Info("outbox_worker_stopped")
				return
			case <-ticker.C:
				res, err := ExecuteOutboxRetry(ctx, deps)
				if err != nil {
					slog.Error("outbox_worker_error", "error", err)
					continue
				}
				if res.Due > 0 {
					slog.Info("outbox_retry_complete", "due", res.Due, "succeeded", res.Succeeded, "failed", res.Failed)
				}
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}
