package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/task-tracker/internal/model"
	"github.com/BuzzLyutic/task-tracker/internal/repo"
	"github.com/BuzzLyutic/task-tracker/internal/session"
)

// TestPayRentScenario walks one task through its whole life against a real SQLite store.
func TestPayRentScenario(t *testing.T) {
	ctx := context.Background()

	stores, err := repo.Open(ctx, repo.DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer stores.Close()
	require.NoError(t, stores.Migrate(ctx))

	user, err := stores.Users.Create(ctx, "scenario")
	require.NoError(t, err)
	sess := session.New(user)

	service := newTestService(stores.Tasks)

	// add "Pay rent" due today
	res, err := service.Add(ctx, sess, model.Task{
		Title:    "Pay rent",
		DueDate:  today,
		Priority: model.PriorityNormal,
		Status:   model.StatusPending,
	})
	require.NoError(t, err)
	require.True(t, res.Added)
	rent := res.Task

	board, err := service.Board(ctx, sess)
	require.NoError(t, err)
	for _, tab := range model.Tabs {
		assert.Equal(t, []string{"Pay rent"}, titles(board[tab]), tab)
	}

	// same title, different date: suppressed
	res, err = service.Add(ctx, sess, model.Task{Title: "Pay rent", DueDate: today.AddDays(12)})
	require.NoError(t, err)
	assert.False(t, res.Added)
	all, err := service.All(ctx, sess)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	before, err := service.Stats(ctx, sess)
	require.NoError(t, err)

	// complete it
	rent.Status = model.StatusCompleted
	_, err = service.Update(ctx, sess, rent)
	require.NoError(t, err)

	after, err := service.Stats(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, before.Completed+1, after.Completed)
	assert.Equal(t, before.Pending-1, after.Pending)

	// remove it
	require.NoError(t, service.Remove(ctx, sess, model.Task{ID: rent.ID}))

	board, err = service.Board(ctx, sess)
	require.NoError(t, err)
	for _, tab := range model.Tabs {
		assert.Empty(t, board[tab], tab)
	}
	all, err = service.All(ctx, sess)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestFarTaskStaysInStore(t *testing.T) {
	ctx := context.Background()

	stores, err := repo.Open(ctx, repo.DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer stores.Close()
	require.NoError(t, stores.Migrate(ctx))

	user, err := stores.Users.Create(ctx, "planner")
	require.NoError(t, err)
	sess := session.New(user)
	service := newTestService(stores.Tasks)

	_, err = service.Add(ctx, sess, model.Task{Title: "Renew licence", DueDate: today.AddDays(45)})
	require.NoError(t, err)

	board, err := service.Reload(ctx, sess)
	require.NoError(t, err)
	for _, tab := range model.Tabs {
		assert.Empty(t, board[tab], tab)
	}

	all, err := service.All(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, []string{"Renew licence"}, titles(all))
}
