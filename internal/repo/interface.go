package repo

import (
	"context"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

// TaskRepository stores one user's task records. It does not enforce title uniqueness.
type TaskRepository interface {
	Insert(ctx context.Context, userID int64, t model.Task) (int64, error)
	Get(ctx context.Context, userID, id int64) (model.Task, error)
	Update(ctx context.Context, t model.Task) error
	Delete(ctx context.Context, id int64) error
	FindAll(ctx context.Context, userID int64) ([]model.Task, error)
	FindByTitle(ctx context.Context, userID int64, title string) (model.Task, error)
	FindByExactFields(ctx context.Context, userID int64, t model.Task) (model.Task, error)
	FindByField(ctx context.Context, userID int64, field model.Field, kind model.MatchKind, value string) ([]model.Task, error)
	CountByStatus(ctx context.Context, userID int64, status model.Status) (int, error)
}

// UserRepository is the username existence check behind login and registration.
type UserRepository interface {
	Create(ctx context.Context, username string) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
}
