package backend

import (
	"time"

	"github.com/harrisonrobin/taskflow/pkg/model"
	"github.com/shopspring/decimal"
)

// Record is the shape tasks take on the wire: snake_case fields, scoped to
// the owning account by UserID.
type Record struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     model.DueTime   `json:"due_date"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UserID      string          `json:"user_id"`
}

func RecordFromTask(t model.Task, identity Identity) Record {
	return Record{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Category:    t.Category,
		Amount:      t.Amount,
		DueDate:     t.DueDate,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UserID:      string(identity),
	}
}

func (r Record) Task() model.Task {
	return model.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Amount:      r.Amount,
		DueDate:     r.DueDate,
		Status:      model.Status(r.Status),
		CreatedAt:   r.CreatedAt,
	}
}
