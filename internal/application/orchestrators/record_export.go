package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"moodadmin/internal/domain/audit"
)

// RecordExportInput describes a completed CSV download.
type RecordExportInput struct {
	Dataset  string
	Filename string
	Rows     int
	Actor    Actor
}

// RecordExportDeps holds dependencies for RecordExport.
type RecordExportDeps struct {
	Audit AuditRecorder
	Now   func() time.Time
}

// ExecuteRecordExport audits a data export.
// POST: one export event carrying the dataset and row count
func ExecuteRecordExport(ctx context.Context, input RecordExportInput, deps RecordExportDeps) {
	slog.Info("export_event", "dataset", input.Dataset, "rows", input.Rows, "actor", input.Actor.Email)
	recordAudit(ctx, deps.Audit, input.Actor.event(audit.CategoryExport, audit.ActionExport, nowFunc(deps.Now)).
		WithResource("dataset", input.Dataset).
		WithDescription("exported "+input.Filename).
		WithMetadata(fmt.Sprintf(`{"rows":%d}`, input.Rows)))
}
