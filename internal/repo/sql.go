package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/BuzzLyutic/task-tracker/internal/model"
	"github.com/BuzzLyutic/task-tracker/migrations"
)

type Dialect string

const (
	DialectMySQL  Dialect = "mysql"
	DialectSQLite Dialect = "sqlite"
)

var schemas = map[Dialect][]string{
	DialectMySQL: {
		`CREATE TABLE IF NOT EXISTS users (
    id BIGINT PRIMARY KEY AUTO_INCREMENT,
    username VARCHAR(191) NOT NULL UNIQUE
)`,
		`CREATE TABLE IF NOT EXISTS tasks (
    id BIGINT PRIMARY KEY AUTO_INCREMENT,
    user_id BIGINT NOT NULL,
    title VARCHAR(255) NOT NULL,
    due_date DATE NOT NULL,
    priority VARCHAR(20) NOT NULL DEFAULT 'Normal',
    comments TEXT,
    status VARCHAR(20) NOT NULL DEFAULT 'Pending',
    INDEX tasks_user_id_idx (user_id),
    FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
)`,
	},
	DialectSQLite: {
		`CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE
)`,
		`CREATE TABLE IF NOT EXISTS tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL REFERENCES users (id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    due_date TEXT NOT NULL,
    priority TEXT NOT NULL DEFAULT 'Normal',
    comments TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'Pending'
)`,
		`CREATE INDEX IF NOT EXISTS tasks_user_id_idx ON tasks (user_id)`,
	},
}

// SQLStore keeps tasks and users behind database/sql for MySQL and SQLite.
// Due dates travel as YYYY-MM-DD text in both directions.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

func (s *SQLStore) Migrate(ctx context.Context) error {
	stmts, ok := schemas[s.dialect]
	if !ok {
		return fmt.Errorf("unsupported dialect %q", s.dialect)
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("could not apply schema: %w", err)
		}
	}
	return nil
}

// Rollback runs the shared down migration one statement at a time; the MySQL
// driver rejects multi-statement queries by default.
func (s *SQLStore) Rollback(ctx context.Context) error {
	for _, stmt := range strings.Split(migrations.Down, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("could not drop schema: %w", err)
		}
	}
	return nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

func (s *SQLStore) Insert(ctx context.Context, userID int64, t model.Task) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (user_id, title, due_date, priority, comments, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, userID, t.Title, t.DueDate.String(), string(t.Priority), t.Comments, string(t.Status))
	if err != nil {
		return 0, fmt.Errorf("could not insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("could not get last insert id: %w", err)
	}
	return id, nil
}

func (s *SQLStore) Get(ctx context.Context, userID, id int64) (model.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?
	`, id, userID)
	return s.scanOne(row)
}

// Update does not report missing ids: MySQL counts only changed rows.
func (s *SQLStore) Update(ctx context.Context, t model.Task) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, due_date = ?, priority = ?, comments = ?, status = ?
		WHERE id = ?
	`, t.Title, t.DueDate.String(), string(t.Priority), t.Comments, string(t.Status), t.ID)
	if err != nil {
		return fmt.Errorf("could not update task: %w", err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("could not remove task: %w", err)
	}
	return nil
}

func (s *SQLStore) FindAll(ctx context.Context, userID int64) ([]model.Task, error) {
	return s.query(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY id
	`, userID)
}

func (s *SQLStore) FindByTitle(ctx context.Context, userID int64, title string) (model.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE user_id = ? AND title = ? ORDER BY id LIMIT 1
	`, userID, title)
	return s.scanOne(row)
}

func (s *SQLStore) FindByExactFields(ctx context.Context, userID int64, t model.Task) (model.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE user_id = ? AND title = ? AND due_date = ? AND priority = ? AND comments = ? AND status = ?
		ORDER BY id LIMIT 1
	`, userID, t.Title, t.DueDate.String(), string(t.Priority), t.Comments, string(t.Status))
	return s.scanOne(row)
}

func (s *SQLStore) FindByField(ctx context.Context, userID int64, field model.Field, kind model.MatchKind, value string) ([]model.Task, error) {
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
		cond, arg = col+" = ?", d.String()
	case kind == model.MatchSubstring:
		cond, arg = "LOWER("+col+") LIKE ? ESCAPE '!'", likePattern(strings.ToLower(value))
	default:
		cond = col + " = ?"
	}

	return s.query(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE user_id = ? AND `+cond+` ORDER BY id
	`, userID, arg)
}

func (s *SQLStore) CountByStatus(ctx context.Context, userID int64, status model.Status) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM tasks WHERE user_id = ? AND status = ?
	`, userID, string(status)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("could not count tasks: %w", err)
	}
	return n, nil
}

func (s *SQLStore) Create(ctx context.Context, username string) (model.User, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO users (username) VALUES (?)`, username)
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, ErrorConflict
		}
		return model.User{}, fmt.Errorf("could not create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, fmt.Errorf("could not get last insert id: %w", err)
	}
	return model.User{ID: id, Username: username}, nil
}

func (s *SQLStore) GetByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username FROM users WHERE username = ?
	`, username).Scan(&u.ID, &u.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrorNotFound
	}
	return u, err
}

func (s *SQLStore) query(ctx context.Context, query string, args ...any) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows, scanTextDate)
		if err != nil {
			return nil, fmt.Errorf("could not scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *SQLStore) scanOne(row *sql.Row) (model.Task, error) {
	t, err := scanTask(row, scanTextDate)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrorNotFound
	}
	return t, err
}

func scanTextDate(row rowScanner, dest ...any) (model.Date, error) {
	var due string
	if err := row.Scan(append(dest, &due)...); err != nil {
		return model.Date{}, err
	}
	return parseStoredDate(due)
}

// parseStoredDate accepts the full timestamps some drivers return for DATE columns.
func parseStoredDate(s string) (model.Date, error) {
	if len(s) > len(model.DateLayout) {
		s = s[:len(model.DateLayout)]
	}
	return model.ParseDate(s)
}

func isUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}

// likePattern wraps v for a substring LIKE using '!' as the escape character.
func likePattern(v string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(v) + "%"
}
