package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"moodadmin/internal/domain/audit"
)

// AuditRecorder persists audit events.
type AuditRecorder interface {
	Save(ctx context.Context, event audit.Event) error
}

// Actor identifies the admin behind a request and where it came from.
type Actor struct {
	Email     string
	IP        string
	UserAgent string
}

// event starts an audit event for the actor at now.
func (a Actor) event(category audit.Category, action audit.Action, now time.Time) audit.Event {
	return audit.NewEvent(a.Email, category, action, now).WithRequest(a.IP, a.UserAgent)
}

// recordAudit saves the event. A failed write is logged and never fails the caller.
func recordAudit(ctx context.Context, rec AuditRecorder, e audit.Event) {
	if rec == nil {
		return
	}
	if err := rec.Save(ctx, e); err != nil {
		slog.Error("audit_write_failed", "action", string(e.Action), "resource_id", e.ResourceID, "error", err)
	}
}

func nowFunc(now func() time.Time) time.Time {
	if now == nil {
		return time.Now()
	}
	return now()
}
