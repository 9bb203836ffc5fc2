package orchestrators

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"moodadmin/internal/adapters/email"
	"moodadmin/internal/domain/outbox"
)

func TestExecuteApproveConsultant_QueuesUndeliveredMail(t *testing.T) {
	store := newMockUserStore(consultant("c1", false))
	box := newMemoryOutbox()
	err := ExecuteApproveConsultant(context.Background(), ApproveConsultantInput{UserID: "c1"},
		ManageUserDeps{Users: store, Mailer: &failingSender{}, Outbox: box, Now: fixedNow})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	entries := box.all()
	if len(entries) != 1 {
		t.Fatalf("queued = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Kind != outbox.KindDecisionEmail || e.Status != outbox.StatusPending || e.LastError != errBoom.Error() {
		t.Errorf("entry = %+v", e)
	}
	if !e.CreatedAt.Equal(fixedTime) {
		t.Errorf("created_at = %v", e.CreatedAt)
	}
	var p emailPayload
	if err := json.Unmarshal([]byte(e.Payload), &p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if len(p.To) != 1 || p.To[0] != "c1@clinic.example" || p.Tag != DecisionTag {
		t.Errorf("payload = %+v", p)
	}
}

func TestExecuteOutboxRetry_Delivers(t *testing.T) {
	box := newMemoryOutbox()
	payload := `{"to":["cara@example.com"],"subject":"Hello","html":"<p>hi</p>","tag":"consultant_decision"}`
	e, _ := outbox.NewEntry("o1", outbox.KindDecisionEmail, payload, errBoom, fixedTime)
	box.Save(context.Background(), e)

	mailer := email.NewNoopSender()
	now := fixedTime.Add(OutboxBaseDelay)
	res, err := ExecuteOutboxRetry(context.Background(), OutboxRetryDeps{
		Outbox: box, Mailer: mailer, Now: func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if res.Due != 1 || res.Succeeded != 1 || res.Failed != 0 {
		t.Errorf("result = %+v", res)
	}
	sent := mailer.Sent()
	if len(sent) != 1 || sent[0].To[0] != "cara@example.com" || sent[0].Subject != "Hello" {
		t.Errorf("sent = %+v", sent)
	}
	if got := box.all()[0]; got.Status != outbox.StatusDone || got.Attempts != 2 {
		t.Errorf("entry after retry = %+v", got)
	}
}

func TestExecuteOutboxRetry_Backoff(t *testing.T) {
	box := newMemoryOutbox()
	e, _ := outbox.NewEntry("o1", outbox.KindDecisionEmail, `{"to":["a@example.com"]}`, errBoom, fixedTime)
	box.Save(context.Background(), e)
	mailer := &failingSender{}

	run := func(at time.Time) OutboxRetryResult {
		t.Helper()
		res, err := ExecuteOutboxRetry(context.Background(), OutboxRetryDeps{
			Outbox: box, Mailer: mailer, Now: func() time.Time { return at },
		})
		if err != nil {
			t.Fatalf("retry: %v", err)
		}
		return res
	}

	if res := run(fixedTime.Add(30 * time.Second)); res.Due != 0 {
		t.Fatalf("retried before backoff: %+v", res)
	}
	if res := run(fixedTime.Add(time.Minute)); res.Due != 1 || res.Failed != 1 {
		t.Fatalf("first retry = %+v", res)
	}
	// Attempts is now 2, so the next retry waits two minutes.
	if res := run(fixedTime.Add(2 * time.Minute)); res.Due != 0 {
		t.Fatalf("retried inside second backoff: %+v", res)
	}
	if mailer.calls != 1 {
		t.Errorf("mailer calls = %d, want 1", mailer.calls)
	}
	if got := box.all()[0]; got.Status != outbox.StatusRetrying || got.Attempts != 2 {
		t.Errorf("entry = %+v", got)
	}
}

func TestExecuteOutboxRetry_GivesUp(t *testing.T) {
	box := newMemoryOutbox()
	e, _ := outbox.NewEntry("o1", outbox.KindDecisionEmail, `{"to":["a@example.com"]}`, errBoom, fixedTime)
	e.MaxAttempts = 2
	box.Save(context.Background(), e)
	bad, _ := outbox.NewEntry("o2", "sms", `{}`, nil, fixedTime)
	box.Save(context.Background(), bad)

	res, err := ExecuteOutboxRetry(context.Background(), OutboxRetryDeps{
		Outbox: box, Mailer: &failingSender{}, Now: func() time.Time { return fixedTime.Add(time.Hour) },
	})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if res.Due != 2 || res.Failed != 2 {
		t.Errorf("result = %+v", res)
	}
	entries := box.all()
	if entries[0].Status != outbox.StatusFailed {
		t.Errorf("exhausted entry = %+v", entries[0])
	}
	if entries[1].Status != outbox.StatusRetrying || entries[1].LastError == "" {
		t.Errorf("unknown kind entry = %+v", entries[1])
	}
}

func TestStartOutboxWorker_Stops(t *testing.T) {
	box := newMemoryOutbox()
	e, _ := outbox.NewEntry("o1", outbox.KindDecisionEmail, `{"to":["a@example.com"],"subject":"Decision"}`, errBoom, fixedTime)
	box.Save(context.Background(), e)
	mailer := email.NewNoopSender()

	stop := StartOutboxWorker(context.Background(), OutboxRetryDeps{
		Outbox: box, Mailer: mailer, Now: func() time.Time { return fixedTime.Add(time.Hour) },
	}, 5*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for len(mailer.Sent()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	stop()
	if len(mailer.Sent()) != 1 {
		t.Errorf("sent = %d, want 1", len(mailer.Sent()))
	}
}
