package google

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/harrisonrobin/taskflow/pkg/backend"
	"google.golang.org/api/calendar/v3"
)

const maxResults = 2500

// Query returns every task record owned by identity, newest first.
func (c *Client) Query(ctx context.Context, identity backend.Identity) ([]backend.Record, error) {
	events, err := c.listEvents(ctx, identity)
	if err != nil {
		return nil, err
	}

	recs := make([]backend.Record, 0, len(events))
	for _, ev := range events {
		rec, err := recordFromEvent(ev)
		if err != nil {
			return nil, fmt.Errorf("malformed task event: %w", err)
		}
		recs = append(recs, rec)
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})
	return recs, nil
}

// Insert stores a single new record as a calendar event.
func (c *Client) Insert(ctx context.Context, rec backend.Record) (backend.Record, error) {
	ev := eventFromRecord(rec, c.colors.ColorID(rec.Category))
	created, err := c.srv.Events.Insert(c.calendarID, ev).Context(ctx).Do()
	if err != nil {
		return backend.Record{}, fmt.Errorf("unable to insert task event: %w", err)
	}
	c.index.Set(rec.ID, created.Id)
	c.saveState()
	return rec, nil
}

// Upsert makes the remote collection for identity match recs exactly:
// existing events are patched only where fields differ, new tasks become new
// events, and events whose task no longer exists are deleted.
func (c *Client) Upsert(ctx context.Context, identity backend.Identity, recs []backend.Record) error {
	events, err := c.listEvents(ctx, identity)
	if err != nil {
		return err
	}
	existing := make(map[string]*calendar.Event, len(events))
	for _, ev := range events {
		if props := privateProps(ev); props != nil && props[propTaskID] != "" {
			existing[props[propTaskID]] = ev
		}
	}

	keep := make(map[string]bool, len(recs))
	for _, rec := range recs {
		keep[rec.ID] = true
		target := eventFromRecord(rec, c.colors.ColorID(rec.Category))

		ev := existing[rec.ID]
		if ev == nil {
			// The listing can lag a recent insert; the index still knows it.
			if eventID := c.index.Get(rec.ID); eventID != "" {
				ev, _ = c.srv.Events.Get(c.calendarID, eventID).Context(ctx).Do()
			}
		}

		if ev == nil {
			created, err := c.srv.Events.Insert(c.calendarID, target).Context(ctx).Do()
			if err != nil {
				return fmt.Errorf("unable to insert task event for %s: %w", rec.ID, err)
			}
			c.index.Set(rec.ID, created.Id)
			continue
		}

		if patch := needsPatch(ev, target); patch != nil {
			updated, err := c.srv.Events.Patch(c.calendarID, ev.Id, patch).Context(ctx).Do()
			if err != nil {
				return fmt.Errorf("unable to patch task event for %s: %w", rec.ID, err)
			}
			c.index.Set(rec.ID, updated.Id)
		} else {
			c.index.Set(rec.ID, ev.Id)
		}
	}

	for taskID, ev := range existing {
		if keep[taskID] {
			continue
		}
		if err := c.srv.Events.Delete(c.calendarID, ev.Id).Context(ctx).Do(); err != nil {
			return fmt.Errorf("unable to delete task event for %s: %w", taskID, err)
		}
		c.index.Remove(taskID)
	}

	c.saveState()
	return nil
}

// Delete removes the event backing the given task ID, if any.
func (c *Client) Delete(ctx context.Context, identity backend.Identity, id string) error {
	eventID := c.index.Get(id)
	if eventID == "" {
		events, err := c.srv.Events.List(c.calendarID).
			PrivateExtendedProperty(fmt.Sprintf("%s=%s", propTaskID, id)).
			Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("unable to search for task event %s: %w", id, err)
		}
		if len(events.Items) == 0 {
			return nil
		}
		eventID = events.Items[0].Id
	}

	if err := c.srv.Events.Delete(c.calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to delete task event %s: %w", id, err)
	}
	c.index.Remove(id)
	c.saveState()
	return nil
}

// Subscribe polls the calendar for events updated since the last poll and
// invokes onChange, with no payload, when anything moved. The Calendar API
// offers push channels only to webhook-reachable servers, so a poll loop is
// the change feed here.
func (c *Client) Subscribe(identity backend.Identity, onChange func()) (cancel func(), err error) {
	stop := make(chan struct{})
	var once sync.Once

	go c.poll(identity, onChange, stop)

	return func() {
		once.Do(func() { close(stop) })
	}, nil
}

func (c *Client) poll(identity backend.Identity, onChange func(), stop <-chan struct{}) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			events, err := c.srv.Events.List(c.calendarID).
				PrivateExtendedProperty(fmt.Sprintf("%s=%s", propUser, identity)).
				UpdatedMin(last.Format(time.RFC3339)).
				ShowDeleted(true).
				MaxResults(maxResults).
				Do()
			if err != nil {
				log.Printf("change feed poll for %s failed: %v", identity, err)
				continue
			}
			if len(events.Items) > 0 {
				last = time.Now()
				onChange()
			}
		}
	}
}

func (c *Client) listEvents(ctx context.Context, identity backend.Identity) ([]*calendar.Event, error) {
	events, err := c.srv.Events.List(c.calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", propUser, identity)).
		MaxResults(maxResults).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list task events: %w", err)
	}
	return events.Items, nil
}

func (c *Client) saveState() {
	if err := c.index.Save(); err != nil {
		log.Printf("Warning: failed to save event index: %v", err)
	}
	if err := c.colors.Save(); err != nil {
		log.Printf("Warning: failed to save category colors: %v", err)
	}
}
