package projections

import (
	"context"
	"fmt"
	"time"

	auditStore "moodadmin/internal/adapters/storage/audit"
	"moodadmin/internal/domain/audit"
)

// Audit listing limits.
const (
	DefaultAuditLimit = 100
	MaxAuditLimit     = 1000
)

// GetAuditLogQuery carries the audit trail filters. Empty fields are ignored.
type GetAuditLogQuery struct {
	Category   string
	Action     string
	ActorEmail string
	ResourceID string
	From       time.Time
	To         time.Time
	Limit      int
}

// GetAuditLogResult carries the matching events, newest first.
type GetAuditLogResult struct {
	Events []audit.Event `json:"events"`
	Limit  int           `json:"limit"`
}

// GetAuditLogDeps holds dependencies for the audit trail projection.
type GetAuditLogDeps struct {
	Audit auditStore.Store
}

// QueryGetAuditLog lists audit events.
// POST: Limit is clamped to [1, MaxAuditLimit], defaulting to DefaultAuditLimit
func QueryGetAuditLog(ctx context.Context, query GetAuditLogQuery, deps GetAuditLogDeps) (GetAuditLogResult, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	limit = min(limit, MaxAuditLimit)

	var filter auditStore.Filter
	if query.Category != "" {
		cat := audit.Category(query.Category)
		filter.Category = &cat
	}
	if query.Action != "" {
		act := audit.Action(query.Action)
		filter.Action = &act
	}
	if query.ActorEmail != "" {
		filter.ActorEmail = &query.ActorEmail
	}
	if query.ResourceID != "" {
		filter.ResourceID = &query.ResourceID
	}
	if !query.From.IsZero() {
		from := query.From.UTC().Format(auditStore.DateLayout)
		filter.From = &from
	}
	if !query.To.IsZero() {
		to := query.To.UTC().Format(auditStore.DateLayout)
		filter.To = &to
	}

	events, err := deps.Audit.List(ctx, filter, limit)
	if err != nil {
		return GetAuditLogResult{}, fmt.Errorf("list audit events: %w", err)
	}
	if events == nil {
		events = []audit.Event{}
	}
	return GetAuditLogResult{Events: events, Limit: limit}, nil
}
