package usecase

import (
	"context"
	"fmt"

	"support-logbook/internal/logbook"
	"support-logbook/internal/logbook/repository"
	"support-logbook/internal/model"
	"support-logbook/pkg/datemath"
	pkgLog "support-logbook/pkg/log"
)

type implUseCase struct {
	l     pkgLog.Logger
	repo  repository.RecordRepository
	dates *datemath.Parser
}

// New creates a new logbook UseCase instance.
func New(l pkgLog.Logger, repo repository.RecordRepository, dates *datemath.Parser) *implUseCase {
	return &implUseCase{
		l:     l,
		repo:  repo,
		dates: dates,
	}
}

// listFor resolves a ReportInput into repository filters and runs the query.
func (uc *implUseCase) listFor(ctx context.Context, sc model.Scope, input logbook.ReportInput) ([]model.TaskRecord, error) {
	opt := repository.ListOptions{}
	if !input.AllUsers {
		opt.Author = sc.Author
	}
	if input.Day != nil {
		opt.From, opt.To = uc.dates.DayBounds(*input.Day)
	}

	records, err := uc.repo.List(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", logbook.ErrStoreUnavailable, err)
	}
	return records, nil
}
