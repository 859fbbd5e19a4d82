package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/task-tracker/internal/model"
	"github.com/BuzzLyutic/task-tracker/migrations"
)

var (
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")
	ErrorField    = errors.New("unknown field")
)

const taskColumns = "id, user_id, title, priority, comments, status, due_date"

// columns maps searchable fields onto table columns; nothing else reaches the query text.
var columns = map[model.Field]string{
	model.FieldTitle:    "title",
	model.FieldComments: "comments",
	model.FieldDueDate:  "due_date",
	model.FieldPriority: "priority",
	model.FieldStatus:   "status",
}

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{
		pool: pool,
	}
}

// Migrate applies the embedded schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, migrations.Up); err != nil {
		return fmt.Errorf("could not apply schema: %w", err)
	}
	return nil
}

// Rollback drops every table the schema created.
func Rollback(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, migrations.Down); err != nil {
		return fmt.Errorf("could not drop schema: %w", err)
	}
	return nil
}

func (r *TaskRepo) Insert(ctx context.Context, userID int64, t model.Task) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (user_id, title, due_date, priority, comments, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, userID, t.Title, t.DueDate.Time, string(t.Priority), t.Comments, string(t.Status)).Scan(&id)
	return id, mapPgError(err)
}

func (r *TaskRepo) Get(ctx context.Context, userID, id int64) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	return r.scanOne(row)
}

func (r *TaskRepo) Update(ctx context.Context, t model.Task) error {
	cmd, err := r.pool.Exec(ctx, `
		UPDATE tasks
		SET title = $2, due_date = $3, priority = $4, comments = $5, status = $6
		WHERE id = $1
	`, t.ID, t.Title, t.DueDate.Time, string(t.Priority), t.Comments, string(t.Status))
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *TaskRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

func (r *TaskRepo) FindAll(ctx context.Context, userID int64) ([]model.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = $1
		ORDER BY id
	`, userID)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *TaskRepo) FindByTitle(ctx context.Context, userID int64, title string) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = $1 AND title = $2
		ORDER BY id
		LIMIT 1
	`, userID, title)
	return r.scanOne(row)
}

func (r *TaskRepo) FindByExactFields(ctx context.Context, userID int64, t model.Task) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = $1 AND title = $2 AND due_date = $3
		  AND priority = $4 AND comments = $5 AND status = $6
		ORDER BY id
		LIMIT 1
	`, userID, t.Title, t.DueDate.Time, string(t.Priority), t.Comments, string(t.Status))
	return r.scanOne(row)
}

func (r *TaskRepo) FindByField(ctx context.Context, userID int64, field model.Field, kind model.MatchKind, value string) ([]model.Task, error) {
	col, ok := columns[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrorField, field)
	}

	var (
		cond string
		arg  any = value
	)
	switch {
	case field == model.FieldDueDate:
		d, err := model.ParseDate(value)
		if err != nil {
			return []model.Task{}, nil
		}
		cond, arg = col+" = $2", d.Time
	case kind == model.MatchSubstring:
		cond, arg = col+" ILIKE $2 ESCAPE '!'", likePattern(value)
	default:
		cond = col + " = $2"
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = $1 AND `+cond+`
		ORDER BY id
	`, userID, arg)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *TaskRepo) CountByStatus(ctx context.Context, userID int64, status model.Status) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM tasks WHERE user_id = $1 AND status = $2
	`, userID, string(status)).Scan(&n)
	return n, err
}

func (r *TaskRepo) scanOne(row pgx.Row) (model.Task, error) {
	t, err := scanTask(row, scanPgDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrorNotFound
	}
	return t, err
}

func (r *TaskRepo) collect(rows pgx.Rows) ([]model.Task, error) {
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows, scanPgDate)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func mapPgError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrorConflict
		case "23503":
			// tasks.user_id references a missing user
			return ErrorNotFound
		}
	}
	return err
}

// rowScanner is satisfied by pgx and database/sql rows alike.
type rowScanner interface {
	Scan(dest ...any) error
}

type dateScanner func(row rowScanner, dest ...any) (model.Date, error)

func scanPgDate(row rowScanner, dest ...any) (model.Date, error) {
	var due time.Time
	if err := row.Scan(append(dest, &due)...); err != nil {
		return model.Date{}, err
	}
	return model.DateOf(due), nil
}

func scanTask(row rowScanner, scanDate dateScanner) (model.Task, error) {
	var (
		t                model.Task
		priority, status string
	)
	// due_date is read last so each dialect can decode it its own way
	due, err := scanDate(row, &t.ID, &t.UserID, &t.Title, &priority, &t.Comments, &status)
	if err != nil {
		return t, err
	}
	t.DueDate = due
	t.Priority = model.Priority(priority)
	t.Status = model.Status(status)
	return t, nil
}
