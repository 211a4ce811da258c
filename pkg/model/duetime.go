package model

import (
	"fmt"
	"strings"
	"time"
)

const dateOnlyLayout = "2006-01-02"

// DueTime is a calendar date with an optional time component. Exports written
// by older builds carried bare dates, so both RFC3339 and date-only strings
// are accepted on the way in.
type DueTime struct {
	time.Time
}

func (dt *DueTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		dt.Time = time.Time{}
		return nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		dt.Time = t
		return nil
	}
	t, err := time.Parse(dateOnlyLayout, s)
	if err != nil {
		return fmt.Errorf("failed to parse due date %q: %w", s, err)
	}
	dt.Time = t
	return nil
}

func (dt DueTime) MarshalJSON() ([]byte, error) {
	if dt.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + dt.Format(time.RFC3339) + `"`), nil
}

// Day truncates to the start of the calendar day in the date's own location.
// Comparisons against "today" happen at day granularity.
func (dt DueTime) Day() time.Time {
	y, m, d := dt.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, dt.Location())
}
