package wizard

import (
	"errors"
	"fmt"
	"strings"

	"support-logbook/internal/model"
)

// Step is the active state of an entry dialogue.
type Step int

const (
	// StepCategory waits for a category button press.
	StepCategory Step = iota
	// StepPrimary waits for the category's primary field.
	StepPrimary
	// StepSecondary waits for the secondary field (agenda only).
	StepSecondary
	// StepDuration waits for the duration text; committing ends the session.
	StepDuration
)

// Session is the ephemeral per-chat dialogue state while a record is
// being assembled. It never holds the author; that is resolved from the
// message sender at commit time.
type Session struct {
	Category model.Category
	Fields   map[string]string
	Step     Step
}

// Choice is one option offered with a prompt.
type Choice struct {
	Label string
	Data  string
}

// Reply is what the transport should deliver back to the user.
// Choices is non-nil only for the category-selection prompt.
type Reply struct {
	Text    string
	Choices []Choice
}

// ErrNoSession is returned when a text arrives for a chat with no entry
// in progress.
var ErrNoSession = errors.New("no entry in progress")

// fieldSpec describes one collected field. The validate predicate is
// pluggable so stricter per-field rules can be added without touching
// the state machine; the default accepts any non-blank text.
type fieldSpec struct {
	name     string
	prompt   string
	validate func(string) error
}

// categorySpec carries a category's required-field schema and how its
// fields collapse into the persisted reference string.
type categorySpec struct {
	label          string
	fields         []fieldSpec
	buildReference func(fields map[string]string) string
}

func nonBlank(text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("value must not be empty")
	}
	return nil
}

func verbatim(name string) func(map[string]string) string {
	return func(fields map[string]string) string { return fields[name] }
}

var specs = map[model.Category]categorySpec{
	model.CategoryMail: {
		label:          "📧 Mail",
		fields:         []fieldSpec{{name: "reference", prompt: "📧 Freshdesk ticket ID (e.g. FD12345)", validate: nonBlank}},
		buildReference: verbatim("reference"),
	},
	model.CategoryMissingField: {
		label:          "📝 Missing field",
		fields:         []fieldSpec{{name: "reference", prompt: "🆔 Related SIN or Freshdesk ID", validate: nonBlank}},
		buildReference: verbatim("reference"),
	},
	model.CategoryEscalation: {
		label:          "📤 Escalation",
		fields:         []fieldSpec{{name: "reference", prompt: "🆔 Related SIN or Freshdesk ID", validate: nonBlank}},
		buildReference: verbatim("reference"),
	},
	model.CategoryCall: {
		label:          "📞 Call",
		fields:         []fieldSpec{{name: "reference", prompt: "📞 Related ticket or case ID", validate: nonBlank}},
		buildReference: verbatim("reference"),
	},
	model.CategoryInquiry: {
		label:          "❓ Inquiry",
		fields:         []fieldSpec{{name: "description", prompt: "❓ Briefly describe the inquiry", validate: nonBlank}},
		buildReference: verbatim("description"),
	},
	model.CategoryMeeting: {
		label:          "👥 Meeting",
		fields:         []fieldSpec{{name: "description", prompt: "👥 Describe the meeting (e.g. call with Houston)", validate: nonBlank}},
		buildReference: verbatim("description"),
	},
	model.CategoryAudit: {
		label:  "🗂 Audit",
		fields: []fieldSpec{{name: "count", prompt: "🗂 How many tickets were audited?", validate: nonBlank}},
		buildReference: func(fields map[string]string) string {
			return fmt.Sprintf("%s tickets", fields["count"])
		},
	},
	model.CategoryReport: {
		label:          "📊 Report",
		fields:         []fieldSpec{{name: "report_name", prompt: "📊 Report name (e.g. Monthly Pending)", validate: nonBlank}},
		buildReference: verbatim("report_name"),
	},
	model.CategoryAgenda: {
		label: "📅 Agenda",
		fields: []fieldSpec{
			{name: "count", prompt: "📅 How many cases?", validate: nonBlank},
			{name: "facility", prompt: "🏥 At which facility?", validate: nonBlank},
		},
		buildReference: func(fields map[string]string) string {
			return fmt.Sprintf("%s cases in %s", fields["count"], fields["facility"])
		},
	},
}

// CategoryChoices lists the category buttons in presentation order.
func CategoryChoices() []Choice {
	choices := make([]Choice, 0, len(model.Categories))
	for _, c := range model.Categories {
		choices = append(choices, Choice{Label: specs[c].label, Data: string(c)})
	}
	return choices
}
