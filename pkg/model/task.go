package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as plain JSON numbers in exports and cached snapshots.
	decimal.MarshalJSONWithoutQuotes = true
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Task is the sole entity of the tracker. ID and CreatedAt are assigned once
// at creation and never change; an "overdue" state is always derived from
// DueDate and Status, never stored.
type Task struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     DueTime         `json:"dueDate"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Draft carries the user-supplied fields for a new task.
type Draft struct {
	Title       string
	Description string
	Category    string
	Amount      decimal.Decimal
	DueDate     DueTime
	Status      Status
}

func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("task title must not be empty")
	}
	if d.Amount.IsNegative() {
		return fmt.Errorf("task amount must not be negative, got %s", d.Amount)
	}
	if d.Status != "" && d.Status != StatusPending && d.Status != StatusCompleted {
		return fmt.Errorf("unknown task status %q", d.Status)
	}
	return nil
}

// Patch holds the fields of a partial update. Nil fields are left unchanged.
type Patch struct {
	Title       *string
	Description *string
	Category    *string
	Amount      *decimal.Decimal
	DueDate     *DueTime
	Status      *Status
}
