package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/model"
	"github.com/BuzzLyutic/task-tracker/internal/report"
	"github.com/BuzzLyutic/task-tracker/internal/repo"
	"github.com/BuzzLyutic/task-tracker/internal/service"
	"github.com/BuzzLyutic/task-tracker/internal/session"
	"github.com/BuzzLyutic/task-tracker/pkg/respond"
)

type TaskHandler struct {
	service  *service.TaskService
	exporter *report.Exporter
	logger   *zap.Logger
}

func NewTaskHandler(srv *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service:  srv,
		exporter: report.NewExporter(),
		logger:   logger,
	}
}

// taskRequest keeps the due date as text so a malformed date is a validation error.
type taskRequest struct {
	Title    string `json:"title"`
	DueDate  string `json:"due_date"`
	Priority string `json:"priority"`
	Comments string `json:"comments"`
	Status   string `json:"status"`
}

func (req taskRequest) task() (model.Task, error) {
	due, err := model.ParseDate(req.DueDate)
	if err != nil {
		return model.Task{}, fmt.Errorf("%w: %v", service.ErrValidation, err)
	}
	return model.Task{
		Title:    req.Title,
		DueDate:  due,
		Priority: model.Priority(req.Priority),
		Comments: req.Comments,
		Status:   model.Status(req.Status),
	}, nil
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return
	}
	task, err := req.task()
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	res, err := h.service.Add(r.Context(), mustSession(r), task)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	if !res.Added {
		respond.JSON(w, r, http.StatusOK, res)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/tasks/%d", res.Task.ID))
	respond.JSON(w, r, http.StatusCreated, res)
}

// List returns the tab board, narrowed by the q keyword when present.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	board, err := h.service.Filter(r.Context(), mustSession(r), r.URL.Query().Get("q"))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, board)
}

func (h *TaskHandler) Reset(w http.ResponseWriter, r *http.Request) {
	board, err := h.service.Reload(r.Context(), mustSession(r))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, board)
}

func (h *TaskHandler) All(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.All(r.Context(), mustSession(r))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, tasks)
}

func (h *TaskHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tasks, err := h.service.Search(r.Context(), mustSession(r),
		model.Field(q.Get("field")), model.MatchKind(q.Get("match")), q.Get("value"))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, tasks)
}

func (h *TaskHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	task, err := taskRequest{
		Title:    q.Get("title"),
		DueDate:  q.Get("due_date"),
		Priority: q.Get("priority"),
		Comments: q.Get("comments"),
		Status:   q.Get("status"),
	}.task()
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	found, err := h.service.Lookup(r.Context(), mustSession(r), task)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, found)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	task, err := req.task()
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	task.ID = id

	task, err = h.service.Update(r.Context(), mustSession(r), task)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	if err := h.service.Remove(r.Context(), mustSession(r), model.Task{ID: id}); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Tab returns one tab of the current view, sorted when a sort criterion is given.
func (h *TaskHandler) Tab(w http.ResponseWriter, r *http.Request) {
	tab, ok := model.ParseTab(chi.URLParam(r, "tab"))
	if !ok {
		respond.Error(w, r, http.StatusNotFound, "unknown tab")
		return
	}

	sess := mustSession(r)
	criterion := model.SortCriterion(r.URL.Query().Get("sort"))
	if criterion == "" {
		board, err := h.service.Board(r.Context(), sess)
		if err != nil {
			h.handleErrors(w, r, err)
			return
		}
		respond.JSON(w, r, http.StatusOK, board[tab])
		return
	}

	if !service.ValidCriterion(criterion) {
		h.logger.Debug("unknown sort criterion, order kept", zap.String("sort", string(criterion)))
	}
	tasks, err := h.service.SortTab(r.Context(), sess, tab, criterion)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, tasks)
}

func (h *TaskHandler) Due(w http.ResponseWriter, r *http.Request) {
	due, err := model.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}

	tabs := h.service.TabsForDueDate(due)
	if tabs == nil {
		tabs = []model.Tab{}
	}
	respond.JSON(w, r, http.StatusOK, map[string]any{
		"due_date": due,
		"tabs":     tabs,
	})
}

func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context(), mustSession(r))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, stats)
}

func (h *TaskHandler) Report(w http.ResponseWriter, r *http.Request) {
	sess := mustSession(r)
	format := r.URL.Query().Get("format")
	if format == "" {
		format = report.FormatJSON
	}

	stats, err := h.service.Stats(r.Context(), sess)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	tasks, err := h.service.All(r.Context(), sess)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	body, err := h.exporter.Export(format, report.Report{
		Username:    sess.Username,
		GeneratedAt: time.Now().UTC(),
		Stats:       stats,
		Tasks:       tasks,
	})
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.Attachment(w, r, report.ContentType(format), "tasks."+format, body)
}

func (h *TaskHandler) taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(w, r, http.StatusBadRequest, "invalid task id")
		return 0, false
	}
	return id, true
}

func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, repo.ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, repo.ErrorConflict):
		respond.Error(w, r, http.StatusConflict, "conflict")
	case errors.Is(err, service.ErrValidation), errors.Is(err, report.ErrUnknownFormat):
		respond.Error(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrStoreUnavailable):
		h.logger.Error("store unavailable", zap.Error(err))
		respond.Error(w, r, http.StatusServiceUnavailable, "store unavailable")
	default:
		h.logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}

// mustSession is only called behind Authenticate.
func mustSession(r *http.Request) session.Session {
	sess, _ := session.FromContext(r.Context())
	return sess
}
