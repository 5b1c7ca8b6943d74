package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"support-logbook/internal/logbook"
	"support-logbook/internal/model"
	"support-logbook/pkg/duration"
)

// NoRecordsMessage is returned when a summary covers zero records.
const NoRecordsMessage = "📭 No tasks recorded."

// maxBarLength caps the bar chart width; the largest category renders at
// most this many characters and the rest scale proportionally.
const maxBarLength = 20

// recentLimit is how many raw entries the summary lists before the totals.
const recentLimit = 5

// Summary renders the text report for the selected records: the latest raw
// entries followed by per-category totals.
func (uc *implUseCase) Summary(ctx context.Context, sc model.Scope, input logbook.ReportInput) (string, error) {
	records, err := uc.listFor(ctx, sc, input)
	if err != nil {
		return "", err
	}
	return summarize(records, uc.dates.Location()), nil
}

// categoryTotal accumulates one category's slice of the summary.
type categoryTotal struct {
	category model.Category
	count    int
	minutes  int
}

// summarize lists the newest entries, then groups records by category in
// first-seen order and renders counts, converted minutes, percentages, a
// capped bar chart and the grand total duration. Records arrive newest-first.
func summarize(records []model.TaskRecord, loc *time.Location) string {
	if len(records) == 0 {
		return NoRecordsMessage
	}

	index := map[model.Category]int{}
	var totals []categoryTotal
	for _, rec := range records {
		i, seen := index[rec.Category]
		if !seen {
			i = len(totals)
			index[rec.Category] = i
			totals = append(totals, categoryTotal{category: rec.Category})
		}
		minutes, _ := duration.Minutes(rec.Duration) // validated at append time
		totals[i].count++
		totals[i].minutes += minutes
	}

	maxCount := 0
	totalCount := 0
	totalMinutes := 0
	for _, ct := range totals {
		if ct.count > maxCount {
			maxCount = ct.count
		}
		totalCount += ct.count
		totalMinutes += ct.minutes
	}

	scale := 1.0
	if maxCount > maxBarLength {
		scale = float64(maxBarLength) / float64(maxCount)
	}

	var b strings.Builder
	b.WriteString("📋 Recent tasks:\n\n")
	recent := records
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	for _, rec := range recent {
		fmt.Fprintf(&b, "👤 %s | 📌 %s | 🆔 %s | ⏱ %s | 📅 %s\n",
			rec.Author, rec.Category, rec.Reference, rec.Duration,
			rec.CreatedAt.In(loc).Format("2006-01-02 15:04"))
	}

	b.WriteString("\n📊 By category:\n")
	for _, ct := range totals {
		pct := float64(ct.count) / float64(totalCount) * 100
		bar := strings.Repeat("█", int(float64(ct.count)*scale))
		fmt.Fprintf(&b, "%s: %d (%.1f%%) | %s | %s\n", ct.category, ct.count, pct, duration.Format(ct.minutes), bar)
	}
	fmt.Fprintf(&b, "\n⏱ Total: %d tasks · %s", totalCount, duration.Format(totalMinutes))

	return b.String()
}
