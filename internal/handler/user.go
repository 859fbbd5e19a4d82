package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/repo"
	"github.com/BuzzLyutic/task-tracker/internal/session"
	"github.com/BuzzLyutic/task-tracker/pkg/respond"
)

// UsernameHeader names the signed-in user on every task request.
const UsernameHeader = "X-Username"

type UserHandler struct {
	users  repo.UserRepository
	logger *zap.Logger
}

func NewUserHandler(users repo.UserRepository, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

type userRequest struct {
	Username string `json:"username"`
}

func (h *UserHandler) decode(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return "", false
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		respond.Error(w, r, http.StatusBadRequest, "username is required")
		return "", false
	}
	return username, true
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	username, ok := h.decode(w, r)
	if !ok {
		return
	}

	u, err := h.users.Create(r.Context(), username)
	switch {
	case errors.Is(err, repo.ErrorConflict):
		respond.Error(w, r, http.StatusConflict, "username already taken")
		return
	case err != nil:
		h.logger.Error("failed to create user", zap.Error(err))
		respond.Error(w, r, http.StatusServiceUnavailable, "store unavailable")
		return
	}

	h.logger.Info("user registered", zap.Int64("user_id", u.ID), zap.String("username", u.Username))
	respond.JSON(w, r, http.StatusCreated, u)
}

// Login only checks that the username exists.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	username, ok := h.decode(w, r)
	if !ok {
		return
	}

	u, err := h.users.GetByUsername(r.Context(), username)
	switch {
	case errors.Is(err, repo.ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, "user not found")
		return
	case err != nil:
		h.logger.Error("failed to look up user", zap.Error(err))
		respond.Error(w, r, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	respond.JSON(w, r, http.StatusOK, u)
}

// Authenticate resolves the X-Username header into a session on the request context.
func (h *UserHandler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username := strings.TrimSpace(r.Header.Get(UsernameHeader))
		if username == "" {
			respond.Error(w, r, http.StatusUnauthorized, "missing "+UsernameHeader+" header")
			return
		}

		u, err := h.users.GetByUsername(r.Context(), username)
		switch {
		case errors.Is(err, repo.ErrorNotFound):
			respond.Error(w, r, http.StatusUnauthorized, "unknown user")
			return
		case err != nil:
			h.logger.Error("failed to look up user", zap.Error(err))
			respond.Error(w, r, http.StatusServiceUnavailable, "store unavailable")
			return
		}

		next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), session.New(u))))
	})
}
