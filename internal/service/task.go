package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/model"
	"github.com/BuzzLyutic/task-tracker/internal/repo"
	"github.com/BuzzLyutic/task-tracker/internal/session"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("task not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// AddResult tells a fresh insert apart from a suppressed duplicate title.
type AddResult struct {
	Task  model.Task `json:"task"`
	Added bool       `json:"added"`
}

// view is one user's categorized tasks as last derived.
type view struct {
	board model.Board
	today model.Date
}

// TaskService is the task engine: it keeps each user's tab view, applies the
// due-date buckets, suppresses duplicate titles and filters and sorts views.
type TaskService struct {
	repo   repo.TaskRepository
	logger *zap.Logger
	now    func() time.Time
	loc    *time.Location

	mu    sync.Mutex
	views map[int64]*view

	// addMu serializes every title-uniqueness check with the write that follows it.
	addMu sync.Mutex
}

type Option func(*TaskService)

func WithLogger(l *zap.Logger) Option { return func(s *TaskService) { s.logger = l } }

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option { return func(s *TaskService) { s.now = now } }

// WithLocation sets the zone that decides which calendar day "today" is.
func WithLocation(loc *time.Location) Option { return func(s *TaskService) { s.loc = loc } }

func NewTaskService(repo repo.TaskRepository, opts ...Option) *TaskService {
	s := &TaskService{
		repo:   repo,
		logger: zap.NewNop(),
		now:    time.Now,
		loc:    time.Local,
		views:  make(map[int64]*view),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TaskService) Today() model.Date {
	return model.DateOf(s.now().In(s.loc))
}

// TabsForDueDate applies the bucket policy against today's date.
func (s *TaskService) TabsForDueDate(due model.Date) []model.Tab {
	return TabsFor(due, s.Today())
}

func (s *TaskService) Add(ctx context.Context, sess session.Session, t model.Task) (AddResult, error) {
	t, err := s.validate(t)
	if err != nil {
		return AddResult{Task: t}, err
	}

	s.addMu.Lock()
	defer s.addMu.Unlock()

	existing, err := s.repo.FindByTitle(ctx, sess.UserID, t.Title)
	switch {
	case err == nil:
		s.logger.Debug("duplicate title, task not added",
			zap.Int64("user_id", sess.UserID),
			zap.String("title", t.Title),
		)
		return AddResult{Task: existing, Added: false}, nil
	case !errors.Is(err, repo.ErrorNotFound):
		return AddResult{Task: t}, storeError(err)
	}

	id, err := s.repo.Insert(ctx, sess.UserID, t)
	if err != nil {
		return AddResult{Task: t}, storeError(err)
	}
	t.ID = id
	t.UserID = sess.UserID

	s.mu.Lock()
	if v, ok := s.views[sess.UserID]; ok {
		place(v.board, t, v.today)
	}
	s.mu.Unlock()

	return AddResult{Task: t, Added: true}, nil
}

// Update overwrites every field of a known task and re-derives the user's view.
func (s *TaskService) Update(ctx context.Context, sess session.Session, t model.Task) (model.Task, error) {
	if t.ID == 0 {
		return t, ErrNotFound
	}
	t, err := s.validate(t)
	if err != nil {
		return t, err
	}

	if _, err := s.repo.Get(ctx, sess.UserID, t.ID); err != nil {
		if errors.Is(err, repo.ErrorNotFound) {
			return t, fmt.Errorf("%w: id %d", ErrNotFound, t.ID)
		}
		return t, storeError(err)
	}

	s.addMu.Lock()
	defer s.addMu.Unlock()

	// a rename must not collide with another task's title
	other, err := s.repo.FindByTitle(ctx, sess.UserID, t.Title)
	switch {
	case err == nil && other.ID != t.ID:
		return t, fmt.Errorf("%w: title %q already used", repo.ErrorConflict, t.Title)
	case err != nil && !errors.Is(err, repo.ErrorNotFound):
		return t, storeError(err)
	}

	t.UserID = sess.UserID
	if err := s.repo.Update(ctx, t); err != nil {
		if errors.Is(err, repo.ErrorNotFound) {
			return t, fmt.Errorf("%w: id %d", ErrNotFound, t.ID)
		}
		return t, storeError(err)
	}

	if _, err := s.Reload(ctx, sess); err != nil {
		return t, err
	}
	return t, nil
}

// Remove deletes a selected task. A task without an id was never selected and is ignored.
func (s *TaskService) Remove(ctx context.Context, sess session.Session, t model.Task) error {
	if t.ID == 0 {
		return nil
	}

	// the stored row proves ownership and supplies the title to clear from the tabs
	stored, err := s.repo.Get(ctx, sess.UserID, t.ID)
	switch {
	case errors.Is(err, repo.ErrorNotFound):
		return nil
	case err != nil:
		return storeError(err)
	}
	t = stored

	if err := s.repo.Delete(ctx, t.ID); err != nil && !errors.Is(err, repo.ErrorNotFound) {
		return storeError(err)
	}

	s.mu.Lock()
	if v, ok := s.views[sess.UserID]; ok {
		for tab, tasks := range v.board {
			v.board[tab] = dropTask(tasks, t)
		}
	}
	s.mu.Unlock()
	return nil
}

// Filter narrows every tab to tasks matching keyword. An empty keyword is a full reload.
func (s *TaskService) Filter(ctx context.Context, sess session.Session, keyword string) (model.Board, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return s.Reload(ctx, sess)
	}

	tasks, err := s.repo.FindAll(ctx, sess.UserID)
	if err != nil {
		return nil, storeError(err)
	}
	return s.store(sess.UserID, filterByKeyword(tasks, keyword)), nil
}

// Reload re-derives the user's view from every stored task.
func (s *TaskService) Reload(ctx context.Context, sess session.Session) (model.Board, error) {
	tasks, err := s.repo.FindAll(ctx, sess.UserID)
	if err != nil {
		return nil, storeError(err)
	}
	return s.store(sess.UserID, tasks), nil
}

// Board returns the current view, loading it on first use.
func (s *TaskService) Board(ctx context.Context, sess session.Session) (model.Board, error) {
	s.mu.Lock()
	v, ok := s.views[sess.UserID]
	var board model.Board
	if ok {
		board = v.board.Clone()
	}
	s.mu.Unlock()

	if ok {
		return board, nil
	}
	return s.Reload(ctx, sess)
}

// SortTab reorders one tab of the current view and keeps the new order.
func (s *TaskService) SortTab(ctx context.Context, sess session.Session, tab model.Tab, criterion model.SortCriterion) ([]model.Task, error) {
	if _, err := s.Board(ctx, sess); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views[sess.UserID]
	if !ok {
		// removed by a concurrent refresh; nothing to sort
		return []model.Task{}, nil
	}
	sorted := SortTasks(criterion, v.board[tab])
	v.board[tab] = sorted

	out := make([]model.Task, len(sorted))
	copy(out, sorted)
	return out, nil
}

func (s *TaskService) Stats(ctx context.Context, sess session.Session) (model.Stats, error) {
	var (
		stats model.Stats
		dest  = map[model.Status]*int{
			model.StatusPending:    &stats.Pending,
			model.StatusInProgress: &stats.InProgress,
			model.StatusCompleted:  &stats.Completed,
		}
	)
	for _, status := range model.Statuses {
		n, err := s.repo.CountByStatus(ctx, sess.UserID, status)
		if err != nil {
			return stats, storeError(err)
		}
		*dest[status] = n
	}
	return stats, nil
}

// All lists every stored task, including those outside every tab.
func (s *TaskService) All(ctx context.Context, sess session.Session) ([]model.Task, error) {
	tasks, err := s.repo.FindAll(ctx, sess.UserID)
	if err != nil {
		return nil, storeError(err)
	}
	return tasks, nil
}

// Search matches a single field. An empty kind takes the field's default.
// Exact matches and dates go to the store; substrings are folded like Filter.
func (s *TaskService) Search(ctx context.Context, sess session.Session, field model.Field, kind model.MatchKind, value string) ([]model.Task, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("%w: unknown field %q", ErrValidation, field)
	}
	switch kind {
	case "":
		kind = field.DefaultMatch()
	case model.MatchExact, model.MatchSubstring:
	default:
		return nil, fmt.Errorf("%w: unknown match kind %q", ErrValidation, kind)
	}
	if field == model.FieldDueDate {
		if _, err := model.ParseDate(value); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}

	if kind == model.MatchSubstring && field != model.FieldDueDate {
		// store LIKE folding differs per backend, so substrings match the way Filter does
		tasks, err := s.repo.FindAll(ctx, sess.UserID)
		if err != nil {
			return nil, storeError(err)
		}
		return filterByField(tasks, field, value), nil
	}

	tasks, err := s.repo.FindByField(ctx, sess.UserID, field, kind, value)
	if err != nil {
		return nil, storeError(err)
	}
	return tasks, nil
}

// Lookup resolves a row by matching every displayed field. Two identical rows
// resolve to the older one; clients that hold ids should not need this.
func (s *TaskService) Lookup(ctx context.Context, sess session.Session, t model.Task) (model.Task, error) {
	found, err := s.repo.FindByExactFields(ctx, sess.UserID, t)
	if err != nil {
		if errors.Is(err, repo.ErrorNotFound) {
			return t, ErrNotFound
		}
		return t, storeError(err)
	}
	return found, nil
}

// Refresh re-derives cached views whose day has passed. It returns how many were
// rebuilt; a failed view stays stale and the rest are still rebuilt.
func (s *TaskService) Refresh(ctx context.Context) (int, error) {
	today := s.Today()

	s.mu.Lock()
	var stale []int64
	for userID, v := range s.views {
		if !v.today.Equal(today.Time) {
			stale = append(stale, userID)
		}
	}
	s.mu.Unlock()

	var errs []error
	refreshed := 0
	for _, userID := range stale {
		if _, err := s.Reload(ctx, session.Session{UserID: userID}); err != nil {
			s.logger.Error("failed to refresh tab view", zap.Int64("user_id", userID), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		refreshed++
	}
	if refreshed > 0 {
		s.logger.Info("refreshed tab views", zap.Int("views", refreshed), zap.Stringer("today", today))
	}
	return refreshed, errors.Join(errs...)
}

func (s *TaskService) store(userID int64, tasks []model.Task) model.Board {
	today := s.Today()
	board := Categorize(tasks, today)

	s.mu.Lock()
	s.views[userID] = &view{board: board, today: today}
	s.mu.Unlock()

	return board.Clone()
}

// validate trims the title and fills in the default priority and status.
func (s *TaskService) validate(t model.Task) (model.Task, error) {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return t, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if t.DueDate.IsZero() {
		return t, fmt.Errorf("%w: due date is required", ErrValidation)
	}
	if t.Priority == "" {
		t.Priority = model.PriorityNormal
	}
	if !t.Priority.Valid() {
		return t, fmt.Errorf("%w: unknown priority %q", ErrValidation, t.Priority)
	}
	if t.Status == "" {
		t.Status = model.StatusPending
	}
	if !t.Status.Valid() {
		return t, fmt.Errorf("%w: unknown status %q", ErrValidation, t.Status)
	}
	return t, nil
}

func dropTask(tasks []model.Task, t model.Task) []model.Task {
	out := tasks[:0]
	for _, x := range tasks {
		if x.ID == t.ID || x.Title == t.Title {
			continue
		}
		out = append(out, x)
	}
	return out
}

// storeError marks a persistence failure, keeping the sentinels callers branch on.
func storeError(err error) error {
	if errors.Is(err, repo.ErrorNotFound) || errors.Is(err, repo.ErrorConflict) || errors.Is(err, repo.ErrorField) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
