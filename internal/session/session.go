// Package session carries the signed-in user between the HTTP layer and the engine.
package session

import (
	"context"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

type Session struct {
	UserID   int64
	Username string
}

func New(u model.User) Session {
	return Session{UserID: u.ID, Username: u.Username}
}

type ctxKey struct{}

func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}
