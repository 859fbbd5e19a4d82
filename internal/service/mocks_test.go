package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

// MockTaskRepository - мок репозитория
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Insert(ctx context.Context, userID int64, t model.Task) (int64, error) {
	args := m.Called(ctx, userID, t)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskRepository) Get(ctx context.Context, userID, id int64) (model.Task, error) {
	args := m.Called(ctx, userID, id)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, t model.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskRepository) FindAll(ctx context.Context, userID int64) ([]model.Task, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) FindByTitle(ctx context.Context, userID int64, title string) (model.Task, error) {
	args := m.Called(ctx, userID, title)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) FindByExactFields(ctx context.Context, userID int64, t model.Task) (model.Task, error) {
	args := m.Called(ctx, userID, t)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockTaskRepository) FindByField(ctx context.Context, userID int64, field model.Field, kind model.MatchKind, value string) ([]model.Task, error) {
	args := m.Called(ctx, userID, field, kind, value)
	return args.Get(0).([]model.Task), args.Error(1)
}

func (m *MockTaskRepository) CountByStatus(ctx context.Context, userID int64, status model.Status) (int, error) {
	args := m.Called(ctx, userID, status)
	return args.Int(0), args.Error(1)
}
