package service

import "github.com/BuzzLyutic/task-tracker/internal/model"

const (
	weekWindow  = 7
	monthWindow = 30
)

// TabsFor returns every tab whose window contains due. Membership is cumulative:
// overdue and today's tasks sit in all three tabs, and anything past the month
// window sits in none.
func TabsFor(due, today model.Date) []model.Tab {
	var tabs []model.Tab
	if !due.After(today.Time) {
		tabs = append(tabs, model.TabDay)
	}
	if !due.After(today.AddDays(weekWindow).Time) {
		tabs = append(tabs, model.TabWeek)
	}
	if !due.After(today.AddDays(monthWindow).Time) {
		tabs = append(tabs, model.TabMonth)
	}
	return tabs
}

// Categorize derives a board from scratch, keeping the input order within each tab.
func Categorize(tasks []model.Task, today model.Date) model.Board {
	board := model.NewBoard()
	for _, t := range tasks {
		place(board, t, today)
	}
	return board
}

func place(board model.Board, t model.Task, today model.Date) {
	for _, tab := range TabsFor(t.DueDate, today) {
		board[tab] = append(board[tab], t)
	}
}
