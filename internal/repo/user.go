package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, username string) (model.User, error) {
	u := model.User{Username: username}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (username) VALUES ($1) RETURNING id
	`, username).Scan(&u.ID)
	if err != nil {
		return u, mapPgError(err)
	}
	return u, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx, `
		SELECT id, username FROM users WHERE username = $1
	`, username).Scan(&u.ID, &u.Username)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, ErrorNotFound
	}
	return u, err
}
