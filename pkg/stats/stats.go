package stats

import (
	"time"

	"github.com/harrisonrobin/taskflow/pkg/filter"
	"github.com/harrisonrobin/taskflow/pkg/model"
	"github.com/shopspring/decimal"
)

// Summary holds the derived counters the dashboard renders.
type Summary struct {
	Total             int
	Completed         int
	PendingPaymentSum decimal.Decimal
	ProgressPct       float64
	OverdueCount      int
}

// Summarize computes every counter from one snapshot of the collection.
// ProgressPct is 0 for an empty collection; the overdue predicate matches the
// overdue filter selector.
func Summarize(tasks []model.Task, now time.Time) Summary {
	sum := Summary{PendingPaymentSum: decimal.Zero}
	for _, t := range tasks {
		sum.Total++
		if t.Status == model.StatusCompleted {
			sum.Completed++
		}
		if t.Status == model.StatusPending && t.Amount.IsPositive() {
			sum.PendingPaymentSum = sum.PendingPaymentSum.Add(t.Amount)
		}
		if filter.IsOverdue(t, now) {
			sum.OverdueCount++
		}
	}
	if sum.Total > 0 {
		sum.ProgressPct = float64(sum.Completed) / float64(sum.Total) * 100
	}
	return sum
}
