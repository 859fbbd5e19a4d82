package service

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

// keywordFields is the one field set every keyword search looks at.
func keywordFields(t model.Task) []string {
	return []string{
		t.Title,
		t.Comments,
		t.DueDate.String(),
		string(t.Priority),
		string(t.Status),
	}
}

// filterByKeyword keeps tasks where keyword occurs in any keyword field, ignoring case.
func filterByKeyword(tasks []model.Task, keyword string) []model.Task {
	// a Caser keeps state, so each call gets its own
	fold := cases.Fold()
	needle := fold.String(keyword)

	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		for _, v := range keywordFields(t) {
			if strings.Contains(fold.String(v), needle) {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// fieldValue is the text a single-field search matches against.
func fieldValue(t model.Task, field model.Field) string {
	switch field {
	case model.FieldTitle:
		return t.Title
	case model.FieldComments:
		return t.Comments
	case model.FieldDueDate:
		return t.DueDate.String()
	case model.FieldPriority:
		return string(t.Priority)
	case model.FieldStatus:
		return string(t.Status)
	}
	return ""
}

// filterByField keeps tasks whose field contains value, ignoring case.
func filterByField(tasks []model.Task, field model.Field, value string) []model.Task {
	fold := cases.Fold()
	needle := fold.String(value)

	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if strings.Contains(fold.String(fieldValue(t, field)), needle) {
			out = append(out, t)
		}
	}
	return out
}
