package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/task-tracker/internal/model"
	"github.com/BuzzLyutic/task-tracker/internal/repo"
	"github.com/BuzzLyutic/task-tracker/internal/session"
)

func openSQLite(t *testing.T) *repo.Stores {
	t.Helper()
	ctx := context.Background()

	stores, err := repo.Open(ctx, repo.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(stores.Close)
	require.NoError(t, stores.Migrate(ctx))
	return stores
}

func TestConcurrent_DuplicateTitles(t *testing.T) {
	stores := openSQLite(t)
	ctx := context.Background()

	user, err := stores.Users.Create(ctx, "racer")
	require.NoError(t, err)
	sess := session.New(user)
	service := newTestService(stores.Tasks)

	const goroutines = 10
	var wg sync.WaitGroup
	results := make([]AddResult, goroutines)
	errs := make([]error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = service.Add(ctx, sess, model.Task{Title: "Same title", DueDate: today})
		}(i)
	}
	wg.Wait()

	added := 0
	for i, err := range errs {
		require.NoError(t, err, "request %d should not error", i)
		if results[i].Added {
			added++
		}
	}
	assert.Equal(t, 1, added, "only one add should store the title")

	all, err := service.All(ctx, sess)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestConcurrent_SessionsAreIsolated(t *testing.T) {
	stores := openSQLite(t)
	ctx := context.Background()
	service := newTestService(stores.Tasks)

	const users = 5
	sessions := make([]session.Session, users)
	for i := range sessions {
		u, err := stores.Users.Create(ctx, fmt.Sprintf("user-%d", i))
		require.NoError(t, err)
		sessions[i] = session.New(u)
	}

	var wg sync.WaitGroup
	for i, s := range sessions {
		wg.Add(1)
		go func(idx int, s session.Session) {
			defer wg.Done()
			for j := 0; j < 3; j++ {
				_, err := service.Add(ctx, s, model.Task{Title: fmt.Sprintf("task %d-%d", idx, j), DueDate: today.AddDays(j)})
				assert.NoError(t, err)
			}
			_, err := service.Board(ctx, s)
			assert.NoError(t, err)
		}(i, s)
	}
	wg.Wait()

	for i, s := range sessions {
		board, err := service.Reload(ctx, s)
		require.NoError(t, err)
		assert.Len(t, board[model.TabWeek], 3, "user %d", i)
		for _, task := range board[model.TabMonth] {
			assert.Equal(t, s.UserID, task.UserID)
		}
	}
}

func TestConcurrent_RenameAgainstAdd(t *testing.T) {
	stores := openSQLite(t)
	ctx := context.Background()

	user, err := stores.Users.Create(ctx, "renamer")
	require.NoError(t, err)
	sess := session.New(user)
	service := newTestService(stores.Tasks)

	for i := 0; i < 20; i++ {
		title := fmt.Sprintf("Shared %d", i)
		res, err := service.Add(ctx, sess, model.Task{Title: fmt.Sprintf("Draft %d", i), DueDate: today})
		require.NoError(t, err)
		draft := res.Task

		var wg sync.WaitGroup
		var addErr, updateErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, addErr = service.Add(ctx, sess, model.Task{Title: title, DueDate: today})
		}()
		go func() {
			defer wg.Done()
			draft.Title = title
			_, updateErr = service.Update(ctx, sess, draft)
		}()
		wg.Wait()

		require.NoError(t, addErr)
		if updateErr != nil {
			assert.ErrorIs(t, updateErr, repo.ErrorConflict)
		}

		matches, err := service.Search(ctx, sess, model.FieldTitle, model.MatchExact, title)
		require.NoError(t, err)
		assert.Len(t, matches, 1, "title %q stored more than once", title)
	}
}
