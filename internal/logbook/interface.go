package logbook

import (
	"context"

	"support-logbook/internal/model"
)

// UseCase defines the business logic interface for the logbook domain.
type UseCase interface {
	// Append persists one finished log entry for the scoped user.
	Append(ctx context.Context, sc model.Scope, input AppendInput) (model.TaskRecord, error)

	// Summary renders the aggregate text report for the selected records.
	Summary(ctx context.Context, sc model.Scope, input ReportInput) (string, error)

	// Export renders the selected records as a CSV document.
	Export(ctx context.Context, sc model.Scope, input ReportInput) (ExportOutput, error)
}
