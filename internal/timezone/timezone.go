package timezone

import (
	"fmt"
	"time"
)

// Load resolves an IANA zone name. An empty name is an error, not UTC.
func Load(name string) (*time.Location, error) {
	if name == "" {
		return nil, fmt.Errorf("timezone: empty zone name")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	return loc, nil
}

// Location falls back to UTC for unknown names.
func Location(name string) *time.Location {
	if loc, err := Load(name); err == nil {
		return loc
	}
	return time.UTC
}

// StartOfMonth is midnight on the first day of t's month, in t's location.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// DayRange turns optional YYYY-MM-DD bounds into instants in loc. The upper
// bound is exclusive: the start of the day after "to".
func DayRange(from, to string, loc *time.Location) (start, end *time.Time, err error) {
	if from != "" {
		d, err := time.ParseInLocation(time.DateOnly, from, loc)
		if err != nil {
			return nil, nil, fmt.Errorf("timezone: bad from date %q", from)
		}
		start = &d
	}
	if to != "" {
		d, err := time.ParseInLocation(time.DateOnly, to, loc)
		if err != nil {
			return nil, nil, fmt.Errorf("timezone: bad to date %q", to)
		}
		d = d.AddDate(0, 0, 1)
		end = &d
	}
	if start != nil && end != nil && !start.Before(*end) {
		return nil, nil, fmt.Errorf("timezone: from %q is after to %q", from, to)
	}
	return start, end, nil
}
