package model

import "time"

// Category is the closed set of task types the logbook supports.
type Category string

const (
	CategoryMail         Category = "mail"
	CategoryMissingField Category = "missing_field"
	CategoryEscalation   Category = "escalation"
	CategoryCall         Category = "call"
	CategoryInquiry      Category = "inquiry"
	CategoryMeeting      Category = "meeting"
	CategoryAudit        Category = "audit"
	CategoryReport       Category = "report"
	CategoryAgenda       Category = "agenda"
)

// Categories lists all categories in the order they are offered to users.
var Categories = []Category{
	CategoryMail,
	CategoryMissingField,
	CategoryEscalation,
	CategoryCall,
	CategoryInquiry,
	CategoryMeeting,
	CategoryAudit,
	CategoryReport,
	CategoryAgenda,
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// TaskRecord is one finalized, persisted task log entry.
// Records are immutable once persisted; there is no update or delete.
type TaskRecord struct {
	ID        int64
	Author    string
	Category  Category
	Reference string    // category-dependent meaning, resolved to one string before persistence
	Duration  string    // validated duration text, kept verbatim for display
	CreatedAt time.Time // assigned by the store at insert time
}
