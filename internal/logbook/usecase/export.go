package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"support-logbook/internal/logbook"
	"support-logbook/internal/model"
	"support-logbook/pkg/duration"
)

// exportTimestampFormat is the timestamp layout used in CSV rows.
const exportTimestampFormat = "2006-01-02 15:04"

// Export renders the selected records as a CSV document, one row per
// record, preserving the store's newest-first order.
func (uc *implUseCase) Export(ctx context.Context, sc model.Scope, input logbook.ReportInput) (logbook.ExportOutput, error) {
	records, err := uc.listFor(ctx, sc, input)
	if err != nil {
		return logbook.ExportOutput{}, err
	}

	content, err := toCSV(records, uc.dates.Location())
	if err != nil {
		return logbook.ExportOutput{}, fmt.Errorf("failed to render export: %w", err)
	}

	name := fmt.Sprintf("logbook_%s.csv", time.Now().In(uc.dates.Location()).Format("2006-01-02_1504"))
	uc.l.Infof(ctx, "logbook/usecase.Export: user=%s all=%v records=%d", sc.UserID, input.AllUsers, len(records))

	return logbook.ExportOutput{
		Filename:    name,
		Content:     content,
		RecordCount: len(records),
	}, nil
}

// toCSV renders records as CSV rows in input order.
func toCSV(records []model.TaskRecord, loc *time.Location) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"author", "category", "reference", "duration", "duration_minutes", "timestamp"}); err != nil {
		return nil, err
	}
	for _, rec := range records {
		minutes, _ := duration.Minutes(rec.Duration)
		row := []string{
			rec.Author,
			string(rec.Category),
			rec.Reference,
			rec.Duration,
			strconv.Itoa(minutes),
			rec.CreatedAt.In(loc).Format(exportTimestampFormat),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
