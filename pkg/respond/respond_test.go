package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		data     any
		wantCode int
		wantBody string
	}{
		{
			name:     "board",
			code:     http.StatusOK,
			data:     map[string][]string{"Day": {}, "Week": {"Pay rent"}},
			wantCode: http.StatusOK,
			wantBody: `{"Day":[],"Week":["Pay rent"]}`,
		},
		{
			name:     "created task",
			code:     http.StatusCreated,
			data:     map[string]any{"added": true, "task": map[string]int{"id": 123}},
			wantCode: http.StatusCreated,
			wantBody: `{"added":true,"task":{"id":123}}`,
		},
		{
			name:     "empty list",
			code:     http.StatusOK,
			data:     []string{},
			wantCode: http.StatusOK,
			wantBody: `[]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)

			JSON(w, r, tt.code, tt.data)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		message  string
		wantCode int
		wantErr  string
	}{
		{
			name:     "bad request",
			code:     http.StatusBadRequest,
			message:  "title is required",
			wantCode: http.StatusBadRequest,
			wantErr:  "title is required",
		},
		{
			name:     "not found",
			code:     http.StatusNotFound,
			message:  "unknown tab",
			wantCode: http.StatusNotFound,
			wantErr:  "unknown tab",
		},
		{
			name:     "store unavailable",
			code:     http.StatusServiceUnavailable,
			message:  "store unavailable",
			wantCode: http.StatusServiceUnavailable,
			wantErr:  "store unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			Error(w, r, tt.code, tt.message)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var got map[string]string
			err := json.NewDecoder(w.Body).Decode(&got)
			require.NoError(t, err)
			assert.Equal(t, tt.wantErr, got["error"])
		})
	}
}

func TestAttachment(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/report?format=csv", nil)

	Attachment(w, r, "text/csv", "tasks.csv", []byte("id,title\n"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="tasks.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "9", w.Header().Get("Content-Length"))
	assert.Equal(t, "id,title\n", w.Body.String())
}
