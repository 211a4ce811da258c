package google

import (
	"fmt"
	"time"

	"github.com/harrisonrobin/taskflow/pkg/backend"
	"github.com/harrisonrobin/taskflow/pkg/model"
	"github.com/shopspring/decimal"
	"google.golang.org/api/calendar/v3"
)

// Private extended property keys carrying the task fields an event cannot
// express natively.
const (
	propTaskID    = "taskflow_id"
	propUser      = "taskflow_user"
	propCategory  = "category"
	propAmount    = "amount"
	propStatus    = "status"
	propCreatedAt = "created_at"
	propDueDate   = "due_date"
)

const dateLayout = "2006-01-02"

// eventFromRecord maps a wire record onto an all-day calendar event. The
// full-resolution due date is kept in the extended properties; the event's
// Start/End only carry the calendar day.
func eventFromRecord(rec backend.Record, colorID string) *calendar.Event {
	due := rec.DueDate.Time
	if due.IsZero() {
		due = rec.CreatedAt
	}

	props := map[string]string{
		propTaskID:    rec.ID,
		propUser:      rec.UserID,
		propCategory:  rec.Category,
		propAmount:    rec.Amount.String(),
		propStatus:    rec.Status,
		propCreatedAt: rec.CreatedAt.Format(time.RFC3339Nano),
	}
	if !rec.DueDate.IsZero() {
		props[propDueDate] = rec.DueDate.Format(time.RFC3339)
	}

	return &calendar.Event{
		Summary:     rec.Title,
		Description: rec.Description,
		ColorId:     colorID,
		Start:       &calendar.EventDateTime{Date: due.Format(dateLayout)},
		End:         &calendar.EventDateTime{Date: due.AddDate(0, 0, 1).Format(dateLayout)},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: props,
		},
	}
}

// recordFromEvent maps a calendar event back onto the wire record. Events
// without task metadata are a malformed response, not silently skippable:
// the caller falls back to the local cache on error.
func recordFromEvent(ev *calendar.Event) (backend.Record, error) {
	if ev.ExtendedProperties == nil || ev.ExtendedProperties.Private == nil {
		return backend.Record{}, fmt.Errorf("event %s carries no task metadata", ev.Id)
	}
	props := ev.ExtendedProperties.Private
	if props[propTaskID] == "" {
		return backend.Record{}, fmt.Errorf("event %s carries no task id", ev.Id)
	}

	rec := backend.Record{
		ID:          props[propTaskID],
		Title:       ev.Summary,
		Description: ev.Description,
		Category:    props[propCategory],
		Status:      props[propStatus],
		UserID:      props[propUser],
	}
	if rec.Status == "" {
		rec.Status = string(model.StatusPending)
	}

	if raw := props[propAmount]; raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return backend.Record{}, fmt.Errorf("event %s has malformed amount %q: %w", ev.Id, raw, err)
		}
		rec.Amount = amount
	}

	if raw := props[propCreatedAt]; raw != "" {
		createdAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return backend.Record{}, fmt.Errorf("event %s has malformed creation time %q: %w", ev.Id, raw, err)
		}
		rec.CreatedAt = createdAt
	}

	if raw := props[propDueDate]; raw != "" {
		due, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return backend.Record{}, fmt.Errorf("event %s has malformed due date %q: %w", ev.Id, raw, err)
		}
		rec.DueDate = model.DueTime{Time: due}
	} else if ev.Start != nil && ev.Start.Date != "" {
		due, err := time.Parse(dateLayout, ev.Start.Date)
		if err != nil {
			return backend.Record{}, fmt.Errorf("event %s has malformed start date %q: %w", ev.Id, ev.Start.Date, err)
		}
		rec.DueDate = model.DueTime{Time: due}
	}

	return rec, nil
}

// needsPatch returns a patch event holding only the fields that differ
// between the existing event and the target, or nil when nothing changed.
func needsPatch(existing, target *calendar.Event) *calendar.Event {
	patch := &calendar.Event{}
	dirty := false

	if existing.Summary != target.Summary {
		patch.Summary = target.Summary
		dirty = true
	}
	if existing.Description != target.Description {
		patch.Description = target.Description
		dirty = true
	}
	if existing.ColorId != target.ColorId {
		patch.ColorId = target.ColorId
		dirty = true
	}
	if startDate(existing) != startDate(target) {
		patch.Start = target.Start
		patch.End = target.End
		dirty = true
	}
	if !samePrivateProps(existing, target) {
		patch.ExtendedProperties = target.ExtendedProperties
		dirty = true
	}

	if !dirty {
		return nil
	}
	return patch
}

func startDate(ev *calendar.Event) string {
	if ev.Start == nil {
		return ""
	}
	if ev.Start.Date != "" {
		return ev.Start.Date
	}
	return ev.Start.DateTime
}

func samePrivateProps(a, b *calendar.Event) bool {
	ap := privateProps(a)
	bp := privateProps(b)
	if len(ap) != len(bp) {
		return false
	}
	for k, v := range ap {
		if bp[k] != v {
			return false
		}
	}
	return true
}

func privateProps(ev *calendar.Event) map[string]string {
	if ev.ExtendedProperties == nil {
		return nil
	}
	return ev.ExtendedProperties.Private
}
