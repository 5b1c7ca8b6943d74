package wizard_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"support-logbook/internal/logbook"
	"support-logbook/internal/model"
	"support-logbook/internal/wizard"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, args ...interface{})                  {}
func (nopLogger) Debugf(ctx context.Context, format string, args ...interface{})  {}
func (nopLogger) Info(ctx context.Context, args ...interface{})                   {}
func (nopLogger) Infof(ctx context.Context, format string, args ...interface{})   {}
func (nopLogger) Warn(ctx context.Context, args ...interface{})                   {}
func (nopLogger) Warnf(ctx context.Context, format string, args ...interface{})   {}
func (nopLogger) Error(ctx context.Context, args ...interface{})                  {}
func (nopLogger) Errorf(ctx context.Context, format string, args ...interface{})  {}
func (nopLogger) DPanic(ctx context.Context, args ...interface{})                 {}
func (nopLogger) DPanicf(ctx context.Context, format string, args ...interface{}) {}
func (nopLogger) Panic(ctx context.Context, args ...interface{})                  {}
func (nopLogger) Panicf(ctx context.Context, format string, args ...interface{})  {}
func (nopLogger) Fatal(ctx context.Context, args ...interface{})                  {}
func (nopLogger) Fatalf(ctx context.Context, format string, args ...interface{})  {}

type mockUseCase struct {
	appendErr error
	appended  []logbook.AppendInput
	lastScope model.Scope
}

func (m *mockUseCase) Append(ctx context.Context, sc model.Scope, input logbook.AppendInput) (model.TaskRecord, error) {
	if m.appendErr != nil {
		return model.TaskRecord{}, m.appendErr
	}
	m.lastScope = sc
	m.appended = append(m.appended, input)
	return model.TaskRecord{
		ID:        int64(len(m.appended)),
		Author:    sc.Author,
		Category:  input.Category,
		Reference: input.Reference,
		Duration:  input.Duration,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (m *mockUseCase) Summary(ctx context.Context, sc model.Scope, input logbook.ReportInput) (string, error) {
	return "", nil
}

func (m *mockUseCase) Export(ctx context.Context, sc model.Scope, input logbook.ReportInput) (logbook.ExportOutput, error) {
	return logbook.ExportOutput{}, nil
}

func newWizard(uc logbook.UseCase) *wizard.Wizard {
	return wizard.New(nopLogger{}, uc, 100, time.Minute)
}

var testScope = model.Scope{UserID: "telegram_1", Username: "ana_dev", Author: "ana_dev"}

func TestStartOffersAllCategories(t *testing.T) {
	w := newWizard(&mockUseCase{})

	reply := w.Start(1)
	if len(reply.Choices) != len(model.Categories) {
		t.Fatalf("expected %d choices, got %d", len(model.Categories), len(reply.Choices))
	}
	for i, c := range model.Categories {
		if reply.Choices[i].Data != string(c) {
			t.Errorf("choice %d = %q, want %q", i, reply.Choices[i].Data, c)
		}
	}
}

func TestAuditFlow(t *testing.T) {
	ctx := context.Background()
	uc := &mockUseCase{}
	w := newWizard(uc)

	w.Start(1)
	if _, err := w.HandleCategory(ctx, 1, "audit"); err != nil {
		t.Fatalf("HandleCategory failed: %v", err)
	}

	if _, done, err := w.HandleText(ctx, 1, testScope, "12"); err != nil || done {
		t.Fatalf("count step: done=%v err=%v", done, err)
	}

	reply, done, err := w.HandleText(ctx, 1, testScope, "1h")
	if err != nil {
		t.Fatalf("duration step failed: %v", err)
	}
	if !done {
		t.Fatalf("expected commit on valid duration")
	}
	if !strings.Contains(reply.Text, "12 tickets") {
		t.Errorf("confirmation missing reference: %q", reply.Text)
	}

	if len(uc.appended) != 1 {
		t.Fatalf("expected 1 committed record, got %d", len(uc.appended))
	}
	got := uc.appended[0]
	if got.Category != model.CategoryAudit || got.Reference != "12 tickets" || got.Duration != "1h" {
		t.Errorf("unexpected committed input: %+v", got)
	}
	if uc.lastScope.Author != "ana_dev" {
		t.Errorf("author not resolved from sender at commit: %+v", uc.lastScope)
	}
	if w.InProgress(1) {
		t.Errorf("session must be discarded after commit")
	}
}

func TestAgendaFlowCollectsSecondaryField(t *testing.T) {
	ctx := context.Background()
	uc := &mockUseCase{}
	w := newWizard(uc)

	w.Start(1)
	w.HandleCategory(ctx, 1, "agenda")

	if reply, _, _ := w.HandleText(ctx, 1, testScope, "3"); !strings.Contains(reply.Text, "facility") {
		t.Errorf("expected facility prompt after count, got %q", reply.Text)
	}
	w.HandleText(ctx, 1, testScope, "Clinic A")
	_, done, err := w.HandleText(ctx, 1, testScope, "45min")
	if err != nil || !done {
		t.Fatalf("commit failed: done=%v err=%v", done, err)
	}

	if uc.appended[0].Reference != "3 cases in Clinic A" {
		t.Errorf("reference = %q, want %q", uc.appended[0].Reference, "3 cases in Clinic A")
	}
}

func TestVerbatimReferenceCategories(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		category string
		input    string
	}{
		{"mail", "FD12345"},
		{"missing_field", "SIN-9"},
		{"escalation", "FD777"},
		{"call", "FD100"},
		{"inquiry", "how do refunds work"},
		{"meeting", "call with Houston"},
		{"report", "Monthly Pending"},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			uc := &mockUseCase{}
			w := newWizard(uc)
			w.Start(1)
			w.HandleCategory(ctx, 1, tt.category)
			w.HandleText(ctx, 1, testScope, tt.input)
			_, done, err := w.HandleText(ctx, 1, testScope, "30min")
			if err != nil || !done {
				t.Fatalf("commit failed: done=%v err=%v", done, err)
			}
			if uc.appended[0].Reference != tt.input {
				t.Errorf("reference = %q, want verbatim %q", uc.appended[0].Reference, tt.input)
			}
		})
	}
}

func TestBadDurationSelfLoops(t *testing.T) {
	ctx := context.Background()
	uc := &mockUseCase{}
	w := newWizard(uc)

	w.Start(1)
	w.HandleCategory(ctx, 1, "mail")
	w.HandleText(ctx, 1, testScope, "FD1")

	// Unlimited retries: each bad duration re-prompts without advancing.
	for _, bad := range []string{"2 h", "30min2h", "ninety minutes"} {
		reply, done, err := w.HandleText(ctx, 1, testScope, bad)
		if err != nil || done {
			t.Fatalf("bad duration %q: done=%v err=%v", bad, done, err)
		}
		if !strings.Contains(reply.Text, "1h30min") {
			t.Errorf("re-prompt should restate the grammar, got %q", reply.Text)
		}
	}
	if len(uc.appended) != 0 {
		t.Fatalf("nothing should be committed yet")
	}

	if _, done, _ := w.HandleText(ctx, 1, testScope, "15min"); !done {
		t.Fatalf("valid duration after retries must commit")
	}
}

func TestStoreFailureKeepsSession(t *testing.T) {
	ctx := context.Background()
	uc := &mockUseCase{appendErr: logbook.ErrStoreUnavailable}
	w := newWizard(uc)

	w.Start(1)
	w.HandleCategory(ctx, 1, "mail")
	w.HandleText(ctx, 1, testScope, "FD1")

	_, done, err := w.HandleText(ctx, 1, testScope, "15min")
	if !errors.Is(err, logbook.ErrStoreUnavailable) || done {
		t.Fatalf("expected store error, got done=%v err=%v", done, err)
	}
	if !w.InProgress(1) {
		t.Errorf("session must survive a store failure")
	}

	// Store recovers; the same step commits.
	uc.appendErr = nil
	_, done, err = w.HandleText(ctx, 1, testScope, "15min")
	if err != nil || !done {
		t.Fatalf("retry after recovery failed: done=%v err=%v", done, err)
	}
}

func TestTextWithoutSession(t *testing.T) {
	w := newWizard(&mockUseCase{})

	_, _, err := w.HandleText(context.Background(), 1, testScope, "hello")
	if !errors.Is(err, wizard.ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestSessionsAreIsolatedPerChat(t *testing.T) {
	ctx := context.Background()
	uc := &mockUseCase{}
	w := newWizard(uc)

	w.Start(1)
	w.Start(2)
	w.HandleCategory(ctx, 1, "mail")
	w.HandleCategory(ctx, 2, "audit")
	w.HandleText(ctx, 1, testScope, "FD1")
	w.HandleText(ctx, 2, testScope, "5")
	w.HandleText(ctx, 1, testScope, "15min")
	w.HandleText(ctx, 2, testScope, "2h")

	if len(uc.appended) != 2 {
		t.Fatalf("expected 2 records, got %d", len(uc.appended))
	}
	if uc.appended[0].Reference != "FD1" || uc.appended[1].Reference != "5 tickets" {
		t.Errorf("sessions bled into each other: %+v", uc.appended)
	}
}

func TestCategoryIsSetOnce(t *testing.T) {
	ctx := context.Background()
	uc := &mockUseCase{}
	w := newWizard(uc)

	w.Start(1)
	w.HandleCategory(ctx, 1, "mail")
	// Stale button press mid-dialogue must not change the category.
	w.HandleCategory(ctx, 1, "audit")
	w.HandleText(ctx, 1, testScope, "FD1")
	w.HandleText(ctx, 1, testScope, "15min")

	if uc.appended[0].Category != model.CategoryMail {
		t.Errorf("category changed mid-session: %+v", uc.appended[0])
	}
}

func TestUnknownCategoryReprompts(t *testing.T) {
	ctx := context.Background()
	w := newWizard(&mockUseCase{})

	w.Start(1)
	reply, err := w.HandleCategory(ctx, 1, "gardening")
	if err != nil {
		t.Fatalf("unknown category should not error: %v", err)
	}
	if len(reply.Choices) == 0 {
		t.Errorf("expected category choices again, got %+v", reply)
	}
}

func TestBlankFieldReprompts(t *testing.T) {
	ctx := context.Background()
	uc := &mockUseCase{}
	w := newWizard(uc)

	w.Start(1)
	w.HandleCategory(ctx, 1, "inquiry")

	reply, done, err := w.HandleText(ctx, 1, testScope, "   ")
	if err != nil || done {
		t.Fatalf("blank field: done=%v err=%v", done, err)
	}
	if !strings.Contains(reply.Text, "inquiry") {
		t.Errorf("expected field prompt again, got %q", reply.Text)
	}
}

func TestCancel(t *testing.T) {
	w := newWizard(&mockUseCase{})

	w.Start(1)
	w.Cancel(1)
	if w.InProgress(1) {
		t.Errorf("cancel must discard the session")
	}

	reply := w.Cancel(1)
	if !strings.Contains(reply.Text, "/task") {
		t.Errorf("cancel without session should hint at /task, got %q", reply.Text)
	}
}

func TestSessionExpiry(t *testing.T) {
	w := wizard.New(nopLogger{}, &mockUseCase{}, 100, 20*time.Millisecond)

	w.Start(1)
	time.Sleep(60 * time.Millisecond)

	if w.InProgress(1) {
		t.Errorf("abandoned session should expire")
	}
}

func TestConcurrentUpdatesSameChat(t *testing.T) {
	uc := &mockUseCase{}
	w := newWizard(uc)

	w.Start(1)
	if _, err := w.HandleCategory(context.Background(), 1, "mail"); err != nil {
		t.Fatalf("HandleCategory failed: %v", err)
	}

	// Telegram delivers webhook updates on parallel connections, so inputs
	// for one chat can arrive concurrently. Run under -race.
	texts := []string{
		"FD12345", "15min", "FD12345", "15min",
		"FD12345", "15min", "FD12345", "15min",
	}
	var wg sync.WaitGroup
	for _, text := range texts {
		wg.Add(1)
		go func(text string) {
			defer wg.Done()
			_, _, _ = w.HandleText(context.Background(), 1, testScope, text)
		}(text)
	}
	wg.Wait()

	// Whatever the interleaving, the first text becomes the reference and
	// the first valid duration after it commits; the session is then gone,
	// so exactly one record lands.
	if len(uc.appended) != 1 {
		t.Fatalf("expected exactly one committed record, got %d", len(uc.appended))
	}
	if w.InProgress(1) {
		t.Errorf("session should be discarded after the commit")
	}
}
