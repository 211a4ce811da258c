package filter

import (
	"testing"
	"time"

	"github.com/harrisonrobin/taskflow/pkg/model"
)

// now is a Wednesday afternoon.
var now = time.Date(2025, 6, 18, 15, 30, 0, 0, time.UTC)

func dueOn(t time.Time) model.DueTime {
	return model.DueTime{Time: t}
}

func task(id string, due time.Time, status model.Status) model.Task {
	return model.Task{ID: id, Title: "Task " + id, Status: status, DueDate: dueOn(due)}
}

func ids(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestApplyAllPreservesOrder(t *testing.T) {
	tasks := []model.Task{
		task("a", now.AddDate(0, 0, 3), model.StatusPending),
		task("b", now.AddDate(0, 0, -3), model.StatusCompleted),
		task("c", now, model.StatusPending),
	}

	got := Apply(tasks, All, "", now)
	if len(got) != 3 {
		t.Fatalf("Expected 3 tasks, got %d", len(got))
	}
	for i, id := range []string{"a", "b", "c"} {
		if got[i].ID != id {
			t.Errorf("Expected task %s at position %d, got %s", id, i, got[i].ID)
		}
	}
}

func TestApplyToday(t *testing.T) {
	tasks := []model.Task{
		task("morning", time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC), model.StatusPending),
		task("night", time.Date(2025, 6, 18, 23, 59, 0, 0, time.UTC), model.StatusPending),
		task("tomorrow", time.Date(2025, 6, 19, 0, 0, 0, 0, time.UTC), model.StatusPending),
		task("yesterday", time.Date(2025, 6, 17, 12, 0, 0, 0, time.UTC), model.StatusPending),
	}

	got := ids(Apply(tasks, Today, "", now))
	if len(got) != 2 || got[0] != "morning" || got[1] != "night" {
		t.Errorf("Expected [morning night], got %v", got)
	}
}

func TestApplyWeekWindowIsSundayThroughSaturday(t *testing.T) {
	// now is Wednesday 2025-06-18; the week runs Sunday 06-15 to Saturday 06-21.
	tasks := []model.Task{
		task("sunday", time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC), model.StatusPending),
		task("saturday", time.Date(2025, 6, 21, 22, 0, 0, 0, time.UTC), model.StatusPending),
		task("before", time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC), model.StatusPending),
		task("after", time.Date(2025, 6, 22, 0, 0, 0, 0, time.UTC), model.StatusPending),
	}

	got := ids(Apply(tasks, Week, "", now))
	if len(got) != 2 || got[0] != "sunday" || got[1] != "saturday" {
		t.Errorf("Expected [sunday saturday], got %v", got)
	}
}

func TestApplyMonth(t *testing.T) {
	tasks := []model.Task{
		task("in", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), model.StatusPending),
		task("lastMonth", time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC), model.StatusPending),
		task("lastYear", time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), model.StatusPending),
	}

	got := ids(Apply(tasks, Month, "", now))
	if len(got) != 1 || got[0] != "in" {
		t.Errorf("Expected [in], got %v", got)
	}
}

func TestApplyOverdue(t *testing.T) {
	tasks := []model.Task{
		task("pastPending", now.AddDate(0, 0, -2), model.StatusPending),
		task("pastCompleted", now.AddDate(0, 0, -2), model.StatusCompleted),
		// Due earlier today: never overdue, even late in the day.
		task("earlierToday", time.Date(2025, 6, 18, 1, 0, 0, 0, time.UTC), model.StatusPending),
		task("future", now.AddDate(0, 0, 2), model.StatusPending),
	}

	got := Apply(tasks, Overdue, "", now)
	if len(got) != 1 || got[0].ID != "pastPending" {
		t.Fatalf("Expected only pastPending, got %v", ids(got))
	}

	// Overdue results are a subset of All, with the predicate held.
	all := Apply(tasks, All, "", now)
	if len(all) != len(tasks) {
		t.Fatalf("Expected All to return every task")
	}
	for _, tk := range got {
		if tk.Status != model.StatusPending || !tk.DueDate.Day().Before(startOfDay(now)) {
			t.Errorf("Task %s does not satisfy the overdue predicate", tk.ID)
		}
	}
}

func TestApplyOverdueIgnoresMissingDueDate(t *testing.T) {
	tasks := []model.Task{
		{ID: "nodue", Title: "No due date", Status: model.StatusPending},
	}
	if got := Apply(tasks, Overdue, "", now); len(got) != 0 {
		t.Errorf("Expected no overdue tasks, got %v", ids(got))
	}
}

func TestApplySearch(t *testing.T) {
	tasks := []model.Task{
		{ID: "1", Title: "Website Redesign", Description: "homepage", Category: "Development", DueDate: dueOn(now)},
		{ID: "2", Title: "Client Meeting", Description: "Quarterly review", Category: "Meeting", DueDate: dueOn(now)},
		{ID: "3", Title: "Invoice Processing", Description: "Q3 vendor invoices", Category: "Finance", DueDate: dueOn(now)},
	}

	cases := []struct {
		search string
		want   []string
	}{
		{"", []string{"1", "2", "3"}},
		{"WEBSITE", []string{"1"}},          // title, case-insensitive
		{"quarterly", []string{"2"}},        // description
		{"finance", []string{"3"}},          // category
		{"in", []string{"1", "2", "3"}},     // substring across fields
		{"nothing-matches", []string(nil)},  // no hit
	}
	for _, c := range cases {
		got := ids(Apply(tasks, All, c.search, now))
		if len(got) != len(c.want) {
			t.Errorf("search %q: expected %v, got %v", c.search, c.want, got)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("search %q: expected %v, got %v", c.search, c.want, got)
				break
			}
		}
	}
}

func TestApplySelectorAndSearchBothHold(t *testing.T) {
	tasks := []model.Task{
		task("overdueHit", now.AddDate(0, 0, -1), model.StatusPending),
		task("overdueMiss", now.AddDate(0, 0, -1), model.StatusPending),
		task("todayHit", now, model.StatusPending),
	}
	tasks[0].Category = "Work"
	tasks[2].Category = "Work"

	got := ids(Apply(tasks, Overdue, "work", now))
	if len(got) != 1 || got[0] != "overdueHit" {
		t.Errorf("Expected [overdueHit], got %v", got)
	}
}

func TestParseSelector(t *testing.T) {
	for _, valid := range []string{"all", "today", "week", "month", "overdue"} {
		if _, err := ParseSelector(valid); err != nil {
			t.Errorf("ParseSelector(%q) failed: %v", valid, err)
		}
	}
	if _, err := ParseSelector("yesterday"); err == nil {
		t.Error("Expected error for unknown selector")
	}
}
