// Package taskstore provides the sqlite-backed implementation of
// store.TaskStore (spec §6), adapted from the teacher's own sqlite task
// persistence to the new Task model.
package taskstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hochfrequenz/task-engine/internal/domain"
	"github.com/hochfrequenz/task-engine/internal/store"
)

// Store provides sqlite-backed task persistence.
type Store struct {
	db *sql.DB
}

// New opens (and migrates) a Store at dbPath. Use ":memory:" for an
// ephemeral database, as the teacher's tests do.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("taskstore: running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

const selectColumns = `id, title, project, bucket, tags, notes, deadline, estimate_minutes,
	window_start, window_end, recurrence, last_completed_at, next_due_at,
	dependencies, curve_config, status, created_at, updated_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row scanner) (*domain.Task, error) {
	var (
		t               domain.Task
		bucket          sql.NullInt64
		tagsJSON        string
		deadline        sql.NullTime
		estimate        sql.NullInt64
		windowStart     sql.NullString
		windowEnd       sql.NullString
		recurrenceJSON  sql.NullString
		lastCompletedAt sql.NullTime
		nextDueAt       sql.NullTime
		depsJSON        string
		curveJSON       string
		status          string
	)

	err := row.Scan(
		&t.ID, &t.Title, &t.Project, &bucket, &tagsJSON, &t.Notes, &deadline, &estimate,
		&windowStart, &windowEnd, &recurrenceJSON, &lastCompletedAt, &nextDueAt,
		&depsJSON, &curveJSON, &status, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Status = domain.TaskStatus(status)

	if bucket.Valid {
		b := int(bucket.Int64)
		t.Bucket = &b
	}
	if err := json.Unmarshal([]byte(tagsJSON), &t.Tags); err != nil {
		return nil, fmt.Errorf("taskstore: decoding tags: %w", err)
	}
	if deadline.Valid {
		d := deadline.Time
		t.Deadline = &d
	}
	if estimate.Valid {
		e := int(estimate.Int64)
		t.EstimateMinutes = &e
	}
	if windowStart.Valid {
		t.WindowStart = &windowStart.String
	}
	if windowEnd.Valid {
		t.WindowEnd = &windowEnd.String
	}
	if recurrenceJSON.Valid {
		var pattern domain.RecurrencePattern
		if err := json.Unmarshal([]byte(recurrenceJSON.String), &pattern); err != nil {
			return nil, fmt.Errorf("taskstore: decoding recurrence: %w", err)
		}
		t.Recurrence = &pattern
	}
	if lastCompletedAt.Valid {
		l := lastCompletedAt.Time
		t.LastCompletedAt = &l
	}
	if nextDueAt.Valid {
		n := nextDueAt.Time
		t.NextDueAt = &n
	}
	if err := json.Unmarshal([]byte(depsJSON), &t.Dependencies); err != nil {
		return nil, fmt.Errorf("taskstore: decoding dependencies: %w", err)
	}
	if err := json.Unmarshal([]byte(curveJSON), &t.Curve); err != nil {
		return nil, fmt.Errorf("taskstore: decoding curve config: %w", err)
	}

	return &t, nil
}

// Get retrieves a task by id.
func (s *Store) Get(ctx context.Context, id int) (*domain.Task, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM tasks WHERE id = ?", id)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

// List returns tasks matching filter. Status/project/bucket are pushed
// down to SQL; tags/has_deadline/has_recurrence/overdue are applied in Go
// over the (already narrow) result set, matching the teacher's preference
// for a handful of simple WHERE clauses over a general query builder.
func (s *Store) List(ctx context.Context, filter store.Filter) ([]*domain.Task, error) {
	query := "SELECT " + selectColumns + " FROM tasks WHERE 1=1"
	var args []interface{}

	if len(filter.Status) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(filter.Status)), ",")
		query += " AND status IN (" + placeholders + ")"
		for _, st := range filter.Status {
			args = append(args, string(st))
		}
	}
	if filter.Project != "" {
		query += " AND project = ?"
		args = append(args, filter.Project)
	}
	if filter.Bucket != nil {
		query += " AND bucket = ?"
		args = append(args, *filter.Bucket)
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*domain.Task
	now := time.Now()
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		if !matchesTagsDeadlineRecurrenceOverdue(task, filter, now) {
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func matchesTagsDeadlineRecurrenceOverdue(task *domain.Task, filter store.Filter, now time.Time) bool {
	for _, want := range filter.Tags {
		found := false
		for _, have := range task.Tags {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.HasDeadline != nil && task.HasDeadline() != *filter.HasDeadline {
		return false
	}
	if filter.HasRecurrence != nil && task.IsRecurring() != *filter.HasRecurrence {
		return false
	}
	if filter.Overdue != nil {
		overdue := task.Deadline != nil && task.Deadline.Before(now)
		if overdue != *filter.Overdue {
			return false
		}
	}
	return true
}

// Insert creates a new task with status Open and returns its id.
func (s *Store) Insert(ctx context.Context, input store.TaskInput) (int, error) {
	tagsJSON, err := json.Marshal(input.Tags)
	if err != nil {
		return 0, err
	}
	depsJSON, err := json.Marshal(input.Dependencies)
	if err != nil {
		return 0, err
	}
	curveJSON, err := json.Marshal(input.Curve)
	if err != nil {
		return 0, err
	}
	var recurrenceJSON []byte
	if input.Recurrence != nil {
		recurrenceJSON, err = json.Marshal(input.Recurrence)
		if err != nil {
			return 0, err
		}
	}

	now := time.Now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (title, project, bucket, tags, notes, deadline, estimate_minutes,
			window_start, window_end, recurrence, dependencies, curve_config, status,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		input.Title, input.Project, nullableInt(input.Bucket), string(tagsJSON), input.Notes,
		nullableTime(input.Deadline), nullableInt(input.EstimateMinutes),
		nullableString(input.WindowStart), nullableString(input.WindowEnd),
		nullableJSON(recurrenceJSON), string(depsJSON), string(curveJSON),
		string(domain.StatusOpen), now, now,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

// Update applies patch to task id. Nil fields are left unchanged.
func (s *Store) Update(ctx context.Context, id int, patch store.Patch) error {
	var sets []string
	var args []interface{}

	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Project != nil {
		sets = append(sets, "project = ?")
		args = append(args, *patch.Project)
	}
	if patch.Bucket != nil {
		sets = append(sets, "bucket = ?")
		args = append(args, nullableInt(*patch.Bucket))
	}
	if patch.Tags != nil {
		tagsJSON, err := json.Marshal(*patch.Tags)
		if err != nil {
			return err
		}
		sets = append(sets, "tags = ?")
		args = append(args, string(tagsJSON))
	}
	if patch.Notes != nil {
		sets = append(sets, "notes = ?")
		args = append(args, *patch.Notes)
	}
	if patch.Deadline != nil {
		sets = append(sets, "deadline = ?")
		args = append(args, nullableTime(*patch.Deadline))
	}
	if patch.EstimateMinutes != nil {
		sets = append(sets, "estimate_minutes = ?")
		args = append(args, nullableInt(*patch.EstimateMinutes))
	}
	if patch.WindowStart != nil {
		sets = append(sets, "window_start = ?")
		args = append(args, nullableString(*patch.WindowStart))
	}
	if patch.WindowEnd != nil {
		sets = append(sets, "window_end = ?")
		args = append(args, nullableString(*patch.WindowEnd))
	}
	if patch.Recurrence != nil {
		var recurrenceJSON []byte
		if *patch.Recurrence != nil {
			var err error
			recurrenceJSON, err = json.Marshal(*patch.Recurrence)
			if err != nil {
				return err
			}
		}
		sets = append(sets, "recurrence = ?")
		args = append(args, nullableJSON(recurrenceJSON))
	}
	if patch.Dependencies != nil {
		depsJSON, err := json.Marshal(*patch.Dependencies)
		if err != nil {
			return err
		}
		sets = append(sets, "dependencies = ?")
		args = append(args, string(depsJSON))
	}
	if patch.Curve != nil {
		curveJSON, err := json.Marshal(*patch.Curve)
		if err != nil {
			return err
		}
		sets = append(sets, "curve_config = ?")
		args = append(args, string(curveJSON))
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*patch.Status))
	}

	if len(sets) == 0 {
		return nil
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now())
	args = append(args, id)

	query := "UPDATE tasks SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// Delete removes a task outright.
func (s *Store) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// SetLastCompleted records the most recent completion instant.
func (s *Store) SetLastCompleted(ctx context.Context, id int, ts time.Time) error {
	res, err := s.db.ExecContext(ctx, "UPDATE tasks SET last_completed_at = ?, updated_at = ? WHERE id = ?", ts, time.Now(), id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// SetNextDue records the next due instant for a recurring task.
func (s *Store) SetNextDue(ctx context.Context, id int, ts time.Time) error {
	res, err := s.db.ExecContext(ctx, "UPDATE tasks SET next_due_at = ?, updated_at = ? WHERE id = ?", ts, time.Now(), id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// InsertCompletion records an immutable completion row.
func (s *Store) InsertCompletion(ctx context.Context, record store.CompletionRecord) error {
	_, err := s.db.ExecContext(ctx, "INSERT INTO completions (id, task_id, completed_at) VALUES (?, ?, ?)",
		record.ID, record.TaskID, record.CompletedAt)
	return err
}

// Search does a simple substring match over title and notes.
func (s *Store) Search(ctx context.Context, query string) ([]*domain.Task, error) {
	like := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, "SELECT "+selectColumns+" FROM tasks WHERE title LIKE ? OR notes LIKE ? ORDER BY id", like, like)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nullableInt(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func nullableString(p *string) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func nullableTime(p *time.Time) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func nullableJSON(b []byte) interface{} {
	if b == nil {
		return nil
	}
	return string(b)
}
