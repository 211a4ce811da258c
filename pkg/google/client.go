package google

import (
	"context"
	"fmt"
	"time"

	"github.com/harrisonrobin/taskflow/pkg/auth"
	"github.com/harrisonrobin/taskflow/pkg/backend"
	"github.com/harrisonrobin/taskflow/pkg/colors"
	"github.com/harrisonrobin/taskflow/pkg/index"
	"google.golang.org/api/calendar/v3"
)

// Client stores tasks as events on a dedicated Google Calendar. Task fields
// ride in each event's private extended properties; the event index maps task
// IDs to event IDs so upserts can patch in place.
type Client struct {
	srv          *calendar.Service
	calendarID   string
	identity     backend.Identity
	index        *index.EventIndex
	colors       *colors.Cache
	pollInterval time.Duration
}

// NewClient authenticates and binds to the named calendar, creating the
// calendar on first use. The signed-in account's primary calendar ID doubles
// as the identity every record is scoped to.
func NewClient(ctx context.Context, calendarName string, pollInterval time.Duration) (*Client, error) {
	srv, err := auth.GetCalendarService(ctx)
	if err != nil {
		return nil, err
	}

	list, err := srv.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve calendar list: %w", err)
	}

	var calendarID string
	var identity backend.Identity
	for _, item := range list.Items {
		if item.Primary {
			identity = backend.Identity(item.Id)
		}
		if item.Summary == calendarName {
			calendarID = item.Id
		}
	}
	if identity.IsAnonymous() {
		return nil, fmt.Errorf("could not determine account identity from calendar list")
	}
	if calendarID == "" {
		created, err := srv.Calendars.Insert(&calendar.Calendar{Summary: calendarName}).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("calendar '%s' not found and could not be created: %w", calendarName, err)
		}
		calendarID = created.Id
	}

	idxPath, err := index.DefaultPath()
	if err != nil {
		return nil, err
	}
	idx, err := index.New(idxPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open event index: %w", err)
	}

	colorsPath, err := colors.DefaultPath()
	if err != nil {
		return nil, err
	}
	colorCache, err := colors.New(colorsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open category color cache: %w", err)
	}

	return &Client{
		srv:          srv,
		calendarID:   calendarID,
		identity:     identity,
		index:        idx,
		colors:       colorCache,
		pollInterval: pollInterval,
	}, nil
}

// Identity returns the signed-in account this client is scoped to.
func (c *Client) Identity() backend.Identity {
	return c.identity
}
