package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/harrisonrobin/taskflow/pkg/model"
)

// Selector names one of the date-window views of the task list.
type Selector string

const (
	All     Selector = "all"
	Today   Selector = "today"
	Week    Selector = "week"
	Month   Selector = "month"
	Overdue Selector = "overdue"
)

func ParseSelector(s string) (Selector, error) {
	switch Selector(s) {
	case All, Today, Week, Month, Overdue:
		return Selector(s), nil
	}
	return "", fmt.Errorf("unknown filter %q (want all, today, week, month, or overdue)", s)
}

// Apply returns the tasks matching both the selector and the search text,
// preserving the relative order of the input. It is pure: the selector is
// evaluated against the supplied now, and the input slice is never modified.
//
// Search is a case-insensitive substring match against title, description,
// or category; empty search text matches everything.
func Apply(tasks []model.Task, sel Selector, search string, now time.Time) []model.Task {
	needle := strings.ToLower(search)
	var out []model.Task
	for _, t := range tasks {
		if matchesSelector(t, sel, now) && matchesSearch(t, needle) {
			out = append(out, t)
		}
	}
	return out
}

// IsOverdue reports whether a pending task's due day has already passed. A
// task due today is never overdue, regardless of the hour.
func IsOverdue(t model.Task, now time.Time) bool {
	if t.Status != model.StatusPending || t.DueDate.IsZero() {
		return false
	}
	return t.DueDate.Day().Before(startOfDay(now))
}

func matchesSelector(t model.Task, sel Selector, now time.Time) bool {
	switch sel {
	case Today:
		return !t.DueDate.IsZero() && t.DueDate.Day().Equal(startOfDay(now))
	case Week:
		if t.DueDate.IsZero() {
			return false
		}
		// Sunday through Saturday, inclusive both ends.
		weekStart := startOfDay(now).AddDate(0, 0, -int(now.Weekday()))
		weekEnd := weekStart.AddDate(0, 0, 6)
		due := t.DueDate.Day()
		return !due.Before(weekStart) && !due.After(weekEnd)
	case Month:
		return !t.DueDate.IsZero() &&
			t.DueDate.Month() == now.Month() && t.DueDate.Year() == now.Year()
	case Overdue:
		return IsOverdue(t, now)
	default:
		return true
	}
}

func matchesSearch(t model.Task, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle) ||
		strings.Contains(strings.ToLower(t.Category), needle)
}

func startOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}
