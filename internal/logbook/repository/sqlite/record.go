package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"support-logbook/internal/logbook/repository"
	"support-logbook/internal/model"
)

// Insert stores one record. The creation timestamp is assigned here, at
// insert time, as Unix seconds in UTC.
func (r *implRepository) Insert(ctx context.Context, opt repository.InsertOptions) (model.TaskRecord, error) {
	const query = `
		INSERT INTO records (author, category, reference, duration, created_at)
		VALUES (?, ?, ?, ?, ?)`

	now := time.Now().UTC().Truncate(time.Second)

	res, err := r.db.ExecContext(ctx, query,
		opt.Author, string(opt.Category), opt.Reference, opt.Duration, now.Unix(),
	)
	if err != nil {
		r.l.Errorf(ctx, "logbook/repository/sqlite.Insert: %v", err)
		return model.TaskRecord{}, repository.ErrFailedToInsert
	}

	id, err := res.LastInsertId()
	if err != nil {
		r.l.Errorf(ctx, "logbook/repository/sqlite.Insert: last insert id: %v", err)
		return model.TaskRecord{}, repository.ErrFailedToInsert
	}

	return model.TaskRecord{
		ID:        id,
		Author:    opt.Author,
		Category:  opt.Category,
		Reference: opt.Reference,
		Duration:  opt.Duration,
		CreatedAt: now,
	}, nil
}

// List returns records matching opt, newest first. Ties on created_at are
// broken by id so insertion order is stable within one second.
func (r *implRepository) List(ctx context.Context, opt repository.ListOptions) ([]model.TaskRecord, error) {
	query := `SELECT id, author, category, reference, duration, created_at FROM records`

	var conds []string
	var args []any
	if opt.Author != "" {
		conds = append(conds, "author = ?")
		args = append(args, opt.Author)
	}
	if !opt.From.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, opt.From.Unix())
	}
	if !opt.To.IsZero() {
		conds = append(conds, "created_at < ?")
		args = append(args, opt.To.Unix())
	}
	if len(conds) > 0 {
		query = fmt.Sprintf("%s WHERE %s", query, strings.Join(conds, " AND "))
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.l.Errorf(ctx, "logbook/repository/sqlite.List: %v", err)
		return nil, repository.ErrFailedToQuery
	}
	defer rows.Close()

	var records []model.TaskRecord
	for rows.Next() {
		var rec model.TaskRecord
		var category string
		var createdAt int64
		if err := rows.Scan(&rec.ID, &rec.Author, &category, &rec.Reference, &rec.Duration, &createdAt); err != nil {
			r.l.Errorf(ctx, "logbook/repository/sqlite.List: scan: %v", err)
			return nil, repository.ErrFailedToQuery
		}
		rec.Category = model.Category(category)
		rec.CreatedAt = time.Unix(createdAt, 0).UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		r.l.Errorf(ctx, "logbook/repository/sqlite.List: rows: %v", err)
		return nil, repository.ErrFailedToQuery
	}

	return records, nil
}
