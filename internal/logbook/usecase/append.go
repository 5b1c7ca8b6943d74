package usecase

import (
	"context"
	"fmt"
	"strings"

	"support-logbook/internal/logbook"
	"support-logbook/internal/logbook/repository"
	"support-logbook/internal/model"
	"support-logbook/pkg/duration"
)

// Append persists one finished log entry. The author is resolved from the
// scope at commit time; the wizard never stores it in the session.
func (uc *implUseCase) Append(ctx context.Context, sc model.Scope, input logbook.AppendInput) (model.TaskRecord, error) {
	if !input.Category.Valid() {
		return model.TaskRecord{}, logbook.ErrUnknownCategory
	}
	if !duration.Validate(input.Duration) {
		return model.TaskRecord{}, logbook.ErrInvalidDuration
	}
	if strings.TrimSpace(input.Reference) == "" {
		return model.TaskRecord{}, logbook.ErrEmptyReference
	}
	if strings.TrimSpace(sc.Author) == "" {
		return model.TaskRecord{}, logbook.ErrEmptyAuthor
	}

	rec, err := uc.repo.Insert(ctx, repository.InsertOptions{
		Author:    sc.Author,
		Category:  input.Category,
		Reference: input.Reference,
		Duration:  input.Duration,
	})
	if err != nil {
		uc.l.Errorf(ctx, "logbook/usecase.Append: insert failed for user=%s: %v", sc.UserID, err)
		return model.TaskRecord{}, fmt.Errorf("%w: %v", logbook.ErrStoreUnavailable, err)
	}

	uc.l.Infof(ctx, "logbook/usecase.Append: recorded id=%d author=%s category=%s", rec.ID, rec.Author, rec.Category)
	return rec, nil
}
