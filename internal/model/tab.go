package model

import "strings"

// Tab is one of the cumulative due-date windows.
type Tab string

const (
	TabDay   Tab = "Day"
	TabWeek  Tab = "Week"
	TabMonth Tab = "Month"
)

var Tabs = []Tab{TabDay, TabWeek, TabMonth}

// ParseTab accepts any letter case.
func ParseTab(s string) (Tab, bool) {
	for _, t := range Tabs {
		if strings.EqualFold(string(t), s) {
			return t, true
		}
	}
	return "", false
}

// Board maps every tab to the tasks displayed under it.
type Board map[Tab][]Task

func NewBoard() Board {
	b := make(Board, len(Tabs))
	for _, t := range Tabs {
		b[t] = []Task{}
	}
	return b
}

// Clone copies the slices so callers can reorder them freely.
func (b Board) Clone() Board {
	out := make(Board, len(b))
	for tab, tasks := range b {
		cp := make([]Task, len(tasks))
		copy(cp, tasks)
		out[tab] = cp
	}
	return out
}

type SortCriterion string

const (
	SortByTitle    SortCriterion = "title"
	SortByDueDate  SortCriterion = "due_date"
	SortByStatus   SortCriterion = "status"
	SortByPriority SortCriterion = "priority"
)
