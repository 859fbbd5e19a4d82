package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

func sampleReport() Report {
	return Report{
		Username:    "alice",
		GeneratedAt: time.Date(2026, time.October, 14, 9, 0, 0, 0, time.UTC),
		Stats:       model.Stats{Pending: 1, InProgress: 1, Completed: 2},
		Tasks: []model.Task{
			{ID: 1, Title: "Pay rent", DueDate: model.NewDate(2026, time.October, 14), Priority: model.PriorityNormal, Status: model.StatusCompleted},
			{ID: 2, Title: "Dentist, 9am", Comments: "bring card", DueDate: model.NewDate(2026, time.October, 20), Priority: model.PriorityHigh, Status: model.StatusPending},
		},
	}
}

func TestExport_JSON(t *testing.T) {
	out, err := NewExporter().Export("json", sampleReport())
	require.NoError(t, err)

	var got Report
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, 4, got.Stats.Total())
	assert.Len(t, got.Tasks, 2)
}

func TestExport_CSV(t *testing.T) {
	out, err := NewExporter().Export("CSV", sampleReport())
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "title", "due_date", "priority", "comments", "status"}, rows[0])
	assert.Equal(t, []string{"2", "Dentist, 9am", "2026-10-20", "High", "bring card", "Pending"}, rows[2])
}

func TestExport_PDF(t *testing.T) {
	tests := []struct {
		name   string
		report Report
	}{
		{name: "with tasks", report: sampleReport()},
		{name: "no tasks", report: Report{Username: "empty"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewExporter().Export("pdf", tt.report)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
		})
	}
}

func TestExport_UnknownFormat(t *testing.T) {
	_, err := NewExporter().Export("xlsx", sampleReport())
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestWedge(t *testing.T) {
	points := wedge(0, 0, 10, 90, 0)
	require.NotEmpty(t, points)
	assert.Equal(t, 0.0, points[0].X)
	first, last := points[1], points[len(points)-1]
	assert.InDelta(t, 0, first.X, 1e-9)
	assert.InDelta(t, -10, first.Y, 1e-9)
	assert.InDelta(t, 10, last.X, 1e-9)
	assert.InDelta(t, 0, last.Y, 1e-9)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentType("pdf"))
	assert.Equal(t, "text/csv", ContentType("csv"))
	assert.Equal(t, "application/json", ContentType(""))
}
