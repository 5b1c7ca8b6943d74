// Package wizard drives the multi-step entry dialogue: a per-chat finite
// state machine that collects a category-dependent set of fields, validates
// the duration and commits exactly one record per completed run.
package wizard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"support-logbook/internal/logbook"
	"support-logbook/internal/model"
	"support-logbook/pkg/duration"
	pkgLog "support-logbook/pkg/log"
)

const (
	promptCategory = "📌 Pick the task type:"
	promptDuration = "⏱ How long did it take? (e.g. 15min, 2h, 1h30min)"

	msgBadDuration = "⏱ I couldn't read that duration. Use <n>h, <n>min or <n>h<n>min — like 15min, 2h or 1h30min."
	msgUseButtons  = "📌 Use the buttons above to pick the task type."
	msgNoSession   = "There is no entry in progress. Send /task to start one."
	msgCancelled   = "🚮 Entry discarded."
)

// Wizard owns all in-progress entry sessions, keyed by chat ID.
// Sessions expire from the LRU after the TTL, so abandoned dialogues
// reclaim themselves; /cancel discards one explicitly.
type Wizard struct {
	l  pkgLog.Logger
	uc logbook.UseCase

	// mu serializes all session access. Telegram delivers webhook updates
	// on parallel connections, so two quick messages from one chat would
	// otherwise mutate the same Session concurrently.
	mu       sync.Mutex
	sessions *expirable.LRU[int64, *Session]
}

// New creates a Wizard holding at most capacity concurrent sessions,
// each expiring ttl after its last touch.
func New(l pkgLog.Logger, uc logbook.UseCase, capacity int, ttl time.Duration) *Wizard {
	return &Wizard{
		l:        l,
		uc:       uc,
		sessions: expirable.NewLRU[int64, *Session](capacity, nil, ttl),
	}
}

// Start begins a fresh entry dialogue for the chat, replacing any
// half-finished one.
func (w *Wizard) Start(chatID int64) Reply {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.sessions.Add(chatID, &Session{Step: StepCategory, Fields: map[string]string{}})
	return Reply{Text: promptCategory, Choices: CategoryChoices()}
}

// Cancel discards the chat's in-progress entry, if any.
func (w *Wizard) Cancel(chatID int64) Reply {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.sessions.Remove(chatID) {
		return Reply{Text: msgCancelled}
	}
	return Reply{Text: msgNoSession}
}

// InProgress reports whether the chat has an entry dialogue open.
// Get, not Contains: Get is the accessor that honors expiry.
func (w *Wizard) InProgress(chatID int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, ok := w.sessions.Get(chatID)
	return ok
}

// HandleCategory consumes a category button press. The category is set
// once per session and never changed afterwards.
func (w *Wizard) HandleCategory(ctx context.Context, chatID int64, data string) (Reply, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	sess, ok := w.sessions.Get(chatID)
	if !ok {
		return Reply{Text: msgNoSession}, ErrNoSession
	}
	if sess.Step != StepCategory {
		// Stale button press from an earlier prompt; keep the dialogue where it is.
		return w.promptFor(sess), nil
	}

	category := model.Category(data)
	if !category.Valid() {
		w.l.Warnf(ctx, "wizard: unknown category callback %q from chat %d", data, chatID)
		return Reply{Text: promptCategory, Choices: CategoryChoices()}, nil
	}

	sess.Category = category
	sess.Step = StepPrimary
	w.touch(chatID, sess)

	return w.promptFor(sess), nil
}

// HandleText consumes a free-text message according to the session's
// current step. The returned bool is true when the text completed the
// dialogue and a record was committed.
func (w *Wizard) HandleText(ctx context.Context, chatID int64, sc model.Scope, text string) (Reply, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	sess, ok := w.sessions.Get(chatID)
	if !ok {
		return Reply{Text: msgNoSession}, false, ErrNoSession
	}

	switch sess.Step {
	case StepCategory:
		return Reply{Text: msgUseButtons}, false, nil
	case StepPrimary, StepSecondary:
		return w.collectField(chatID, sess, text), false, nil
	case StepDuration:
		return w.commit(ctx, chatID, sess, sc, text)
	default:
		return Reply{Text: msgNoSession}, false, nil
	}
}

// collectField stores a primary or secondary field value and advances.
func (w *Wizard) collectField(chatID int64, sess *Session, text string) Reply {
	spec := specs[sess.Category]

	i := 0
	if sess.Step == StepSecondary {
		i = 1
	}
	field := spec.fields[i]

	if err := field.validate(text); err != nil {
		return Reply{Text: field.prompt}
	}
	sess.Fields[field.name] = text

	if i+1 < len(spec.fields) {
		sess.Step = StepSecondary
	} else {
		sess.Step = StepDuration
	}
	w.touch(chatID, sess)

	return w.promptFor(sess)
}

// commit validates the duration and persists the finished record. On a
// malformed duration the session self-loops with the grammar restated;
// on a store failure the session stays on the duration step so the user
// is not advanced past an uncommitted record.
func (w *Wizard) commit(ctx context.Context, chatID int64, sess *Session, sc model.Scope, text string) (Reply, bool, error) {
	if !duration.Validate(text) {
		return Reply{Text: msgBadDuration}, false, nil
	}

	spec := specs[sess.Category]
	rec, err := w.uc.Append(ctx, sc, logbook.AppendInput{
		Category:  sess.Category,
		Reference: spec.buildReference(sess.Fields),
		Duration:  text,
	})
	if err != nil {
		w.l.Errorf(ctx, "wizard: commit failed for chat %d: %v", chatID, err)
		return Reply{}, false, err
	}

	w.sessions.Remove(chatID)

	confirm := fmt.Sprintf("✅ Task recorded:\n👤 %s\n📌 %s\n🆔 %s\n⏱ %s",
		rec.Author, rec.Category, rec.Reference, rec.Duration)
	return Reply{Text: confirm}, true, nil
}

// promptFor returns the prompt matching the session's current step.
func (w *Wizard) promptFor(sess *Session) Reply {
	spec := specs[sess.Category]
	switch sess.Step {
	case StepCategory:
		return Reply{Text: promptCategory, Choices: CategoryChoices()}
	case StepPrimary:
		return Reply{Text: spec.fields[0].prompt}
	case StepSecondary:
		return Reply{Text: spec.fields[1].prompt}
	default:
		return Reply{Text: promptDuration}
	}
}

// touch refreshes the session's TTL after a mutation.
func (w *Wizard) touch(chatID int64, sess *Session) {
	w.sessions.Add(chatID, sess)
}
