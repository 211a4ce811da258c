package backup

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/harrisonrobin/taskflow/pkg/model"
	"github.com/shopspring/decimal"
)

func sampleTasks() []model.Task {
	return []model.Task{
		{
			ID:          "a1",
			Title:       "Website Redesign",
			Description: "Complete homepage redesign",
			Category:    "Development",
			Amount:      decimal.RequireFromString("2500"),
			DueDate:     model.DueTime{Time: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
			Status:      model.StatusPending,
			CreatedAt:   time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:          "b2",
			Title:       "Team Building",
			Description: "",
			Category:    "HR",
			Amount:      decimal.RequireFromString("19.99"),
			DueDate:     model.DueTime{Time: time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)},
			Status:      model.StatusCompleted,
			CreatedAt:   time.Date(2025, 5, 28, 9, 30, 0, 0, time.UTC),
		},
	}
}

func TestRoundTrip(t *testing.T) {
	in := sampleTasks()

	var buf bytes.Buffer
	if err := Export(&buf, in); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	out, err := Import(&buf)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("Expected %d tasks, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i].ID != in[i].ID || out[i].Title != in[i].Title ||
			out[i].Description != in[i].Description || out[i].Category != in[i].Category ||
			out[i].Status != in[i].Status {
			t.Errorf("Task %d changed across round trip: %+v vs %+v", i, in[i], out[i])
		}
		if !out[i].Amount.Equal(in[i].Amount) {
			t.Errorf("Task %d amount changed: %s vs %s", i, in[i].Amount, out[i].Amount)
		}
		if !out[i].DueDate.Time.Equal(in[i].DueDate.Time) {
			t.Errorf("Task %d due date changed: %v vs %v", i, in[i].DueDate, out[i].DueDate)
		}
		if !out[i].CreatedAt.Equal(in[i].CreatedAt) {
			t.Errorf("Task %d creation time changed: %v vs %v", i, in[i].CreatedAt, out[i].CreatedAt)
		}
	}
}

func TestExportEmptyWritesArray(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, nil); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("Expected empty JSON array, got %q", got)
	}
}

func TestImportAcceptsAmountsAsNumbers(t *testing.T) {
	// The web build exported amounts as bare JSON numbers.
	doc := `[{
		"id": "x",
		"title": "Cached",
		"category": "Work",
		"amount": 150.5,
		"dueDate": "2025-01-01",
		"status": "pending"
	}]`

	tasks, err := Import(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if !tasks[0].Amount.Equal(decimal.RequireFromString("150.5")) {
		t.Errorf("Expected amount 150.5, got %s", tasks[0].Amount)
	}
}

func TestImportRejectsNonArray(t *testing.T) {
	cases := map[string]string{
		"object": `{"id": "x"}`,
		"null":   `null`,
		"string": `"tasks"`,
		"number": `42`,
	}
	for name, doc := range cases {
		if _, err := Import(strings.NewReader(doc)); err == nil {
			t.Errorf("Expected error for %s document", name)
		}
	}
}

func TestImportRejectsTrailingData(t *testing.T) {
	doc := `[{"id": "x", "title": "t", "category": "c", "dueDate": "2025-01-01"}] {"extra": true}`
	if _, err := Import(strings.NewReader(doc)); err == nil {
		t.Error("Expected error for trailing data after the array")
	}
}

func TestImportAcceptsEmptyArray(t *testing.T) {
	tasks, err := Import(strings.NewReader(`[]`))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("Expected no tasks, got %d", len(tasks))
	}
}

func TestImportRejectsInvalidElement(t *testing.T) {
	cases := map[string]string{
		"missing id":       `[{"title": "t", "category": "c", "dueDate": "2025-01-01"}]`,
		"missing title":    `[{"id": "x", "category": "c", "dueDate": "2025-01-01"}]`,
		"missing category": `[{"id": "x", "title": "t", "dueDate": "2025-01-01"}]`,
		"missing due date": `[{"id": "x", "title": "t", "category": "c"}]`,
	}
	for name, doc := range cases {
		if _, err := Import(strings.NewReader(doc)); err == nil {
			t.Errorf("Expected error for %s", name)
		}
	}
}

func TestImportRejectsWholeDocumentOnOneBadElement(t *testing.T) {
	doc := `[
		{"id": "ok", "title": "Fine", "category": "Work", "dueDate": "2025-01-01"},
		{"id": "", "title": "Broken", "category": "Work", "dueDate": "2025-01-01"}
	]`
	if _, err := Import(strings.NewReader(doc)); err == nil {
		t.Error("Expected rejection when any element is invalid")
	}
}
