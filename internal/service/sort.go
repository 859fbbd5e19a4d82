package service

import (
	"cmp"
	"slices"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

var comparators = map[model.SortCriterion]func(a, b model.Task) int{
	model.SortByTitle: func(a, b model.Task) int {
		return cmp.Compare(a.Title, b.Title)
	},
	model.SortByDueDate: func(a, b model.Task) int {
		return a.DueDate.Compare(b.DueDate.Time)
	},
	model.SortByStatus: func(a, b model.Task) int {
		return cmp.Compare(a.Status.Rank(), b.Status.Rank())
	},
	model.SortByPriority: func(a, b model.Task) int {
		return cmp.Compare(a.Priority.Rank(), b.Priority.Rank())
	},
}

// SortTasks returns a stably sorted copy. An unknown criterion keeps the order.
func SortTasks(criterion model.SortCriterion, tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)

	if less, ok := comparators[criterion]; ok {
		slices.SortStableFunc(out, less)
	}
	return out
}

func ValidCriterion(c model.SortCriterion) bool {
	_, ok := comparators[c]
	return ok
}
