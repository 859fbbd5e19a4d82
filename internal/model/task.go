package model

import (
	"errors"
	"strings"
	"time"
)

type Task struct {
	ID       int64    `json:"id"`
	UserID   int64    `json:"-"`
	Title    string   `json:"title"`
	DueDate  Date     `json:"due_date"`
	Priority Priority `json:"priority"`
	Comments string   `json:"comments"`
	Status   Status   `json:"status"`
}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Priority ranks Normal < Medium < High.
type Priority string

const (
	PriorityNormal Priority = "Normal"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

var Priorities = []Priority{PriorityNormal, PriorityMedium, PriorityHigh}

func (p Priority) Rank() int {
	switch p {
	case PriorityNormal:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	}
	return len(Priorities)
}

func (p Priority) Valid() bool { return p.Rank() < len(Priorities) }

// Status ranks Pending < In Progress < Completed. The order is fixed, not alphabetical.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

func (s Status) Rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusInProgress:
		return 1
	case StatusCompleted:
		return 2
	}
	return len(Statuses)
}

func (s Status) Valid() bool { return s.Rank() < len(Statuses) }

const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// Date is a calendar day stored as midnight UTC.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{t}, nil
}

func (d Date) AddDays(n int) Date { return Date{d.Time.AddDate(0, 0, n)} }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Field names a searchable task column.
type Field string

const (
	FieldTitle    Field = "title"
	FieldComments Field = "comments"
	FieldDueDate  Field = "due_date"
	FieldPriority Field = "priority"
	FieldStatus   Field = "status"
)

func (f Field) Valid() bool {
	switch f {
	case FieldTitle, FieldComments, FieldDueDate, FieldPriority, FieldStatus:
		return true
	}
	return false
}

type MatchKind string

const (
	MatchSubstring MatchKind = "substring"
	MatchExact     MatchKind = "exact"
)

// DefaultMatch is substring for free text and exact for enumerated or date fields.
func (f Field) DefaultMatch() MatchKind {
	if f == FieldTitle || f == FieldComments {
		return MatchSubstring
	}
	return MatchExact
}

type Stats struct {
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
}

func (s Stats) Total() int { return s.Pending + s.InProgress + s.Completed }

// Ratio returns the completed share in [0, 1].
func (s Stats) Ratio() float64 {
	if s.Total() == 0 {
		return 0
	}
	return float64(s.Completed) / float64(s.Total())
}
