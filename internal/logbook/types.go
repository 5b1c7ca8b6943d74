package logbook

import (
	"time"

	"support-logbook/internal/model"
)

// AppendInput is the input for committing one finished log entry.
// Author is taken from models.Scope at commit time, not carried here.
type AppendInput struct {
	Category  model.Category
	Reference string // already resolved to a single string by the wizard
	Duration  string // validated duration text
}

// ReportInput selects the records a summary or export covers.
type ReportInput struct {
	AllUsers bool       // false: only the calling user's records
	Day      *time.Time // nil: all time; otherwise one calendar day
}

// ExportOutput is a rendered CSV export.
type ExportOutput struct {
	Filename    string
	Content     []byte
	RecordCount int
}
