package business

import (
	"time"

	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/models"
)

// Weekdays in display order. Every business stores exactly one row per entry.
var Weekdays = []string{
	"monday",
	"tuesday",
	"wednesday",
	"thursday",
	"friday",
	"saturday",
	"sunday",
}

func IsWeekday(s string) bool {
	for _, d := range Weekdays {
		if d == s {
			return true
		}
	}
	return false
}

// DayHours is the API shape of a single weekday.
type DayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	IsOpen bool   `json:"isOpen"`
}

// Week maps lowercase weekday names to their hours.
type Week map[string]DayHours

// DefaultHours is what a day reports before the owner configured it.
func DefaultHours(day string) DayHours {
	if day == "saturday" || day == "sunday" {
		return DayHours{Open: "10:00", Close: "15:00", IsOpen: false}
	}
	return DayHours{Open: "09:00", Close: "17:00", IsOpen: true}
}

// WeekFromRows fills every weekday, falling back to defaults for
// days without a stored row.
func WeekFromRows(rows []models.HoursOfOperation) Week {
	week := make(Week, len(Weekdays))
	for _, d := range Weekdays {
		week[d] = DefaultHours(d)
	}

	for _, r := range rows {
		if !IsWeekday(r.DayOfWeek) {
			continue
		}
		def := DefaultHours(r.DayOfWeek)
		h := DayHours{Open: def.Open, Close: def.Close, IsOpen: r.IsOpen}
		if r.OpenTime != nil {
			h.Open = *r.OpenTime
		}
		if r.CloseTime != nil {
			h.Close = *r.CloseTime
		}
		week[r.DayOfWeek] = h
	}
	return week
}

// RowsFromWeek converts a complete week into rows ready to be stored.
// Closed days keep their times so the dashboard can show them again.
func RowsFromWeek(businessID uint, week Week) ([]models.HoursOfOperation, error) {
	if len(week) != len(Weekdays) {
		return nil, httperr.ErrBusiness("incomplete_week")
	}

	rows := make([]models.HoursOfOperation, 0, len(Weekdays))
	for _, d := range Weekdays {
		h, ok := week[d]
		if !ok {
			return nil, httperr.ErrBusiness("incomplete_week")
		}
		if err := validateDay(h.IsOpen, h.Open, h.Close); err != nil {
			return nil, err
		}

		rows = append(rows, models.HoursOfOperation{
			BusinessID: businessID,
			DayOfWeek:  d,
			OpenTime:   optional(h.Open),
			CloseTime:  optional(h.Close),
			IsOpen:     h.IsOpen,
		})
	}
	return rows, nil
}

// DaySetup is one entry of the onboarding hours form.
type DaySetup struct {
	DayOfWeek string
	IsOpen    bool
	OpenTime  string
	CloseTime string
}

// RowsFromSetup is the onboarding variant: one entry per weekday in any
// order, closed days stored without times.
func RowsFromSetup(businessID uint, days []DaySetup) ([]models.HoursOfOperation, error) {
	byDay := make(map[string]DaySetup, len(days))
	for _, d := range days {
		if !IsWeekday(d.DayOfWeek) {
			return nil, httperr.ErrBusiness("invalid_day_of_week")
		}
		if _, dup := byDay[d.DayOfWeek]; dup {
			return nil, httperr.ErrBusiness("duplicate_day_of_week")
		}
		byDay[d.DayOfWeek] = d
	}
	if len(byDay) != len(Weekdays) {
		return nil, httperr.ErrBusiness("incomplete_week")
	}

	rows := make([]models.HoursOfOperation, 0, len(Weekdays))
	for _, day := range Weekdays {
		d := byDay[day]
		row := models.HoursOfOperation{
			BusinessID: businessID,
			DayOfWeek:  day,
			IsOpen:     d.IsOpen,
		}
		if d.IsOpen {
			if err := validateDay(true, d.OpenTime, d.CloseTime); err != nil {
				return nil, err
			}
			row.OpenTime = optional(d.OpenTime)
			row.CloseTime = optional(d.CloseTime)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func validateDay(isOpen bool, openAt, closeAt string) error {
	if !isOpen && openAt == "" && closeAt == "" {
		return nil
	}

	o, err := time.Parse("15:04", openAt)
	if err != nil {
		return httperr.ErrBusiness("invalid_time_format")
	}
	c, err := time.Parse("15:04", closeAt)
	if err != nil {
		return httperr.ErrBusiness("invalid_time_format")
	}
	if isOpen && !c.After(o) {
		return httperr.ErrBusiness("invalid_hours_range")
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
