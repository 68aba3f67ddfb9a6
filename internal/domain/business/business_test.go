package business

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/models"
)

func fullWeek() Week {
	week := Week{}
	for _, d := range Weekdays {
		week[d] = DefaultHours(d)
	}
	return week
}

func TestWeekFromRowsFillsDefaults(t *testing.T) {
	open, close := "08:00", "12:00"
	week := WeekFromRows([]models.HoursOfOperation{
		{DayOfWeek: "monday", OpenTime: &open, CloseTime: &close, IsOpen: true},
		{DayOfWeek: "sunday", IsOpen: false},
	})

	require.Len(t, week, 7)
	assert.Equal(t, DayHours{Open: "08:00", Close: "12:00", IsOpen: true}, week["monday"])
	assert.Equal(t, DayHours{Open: "09:00", Close: "17:00", IsOpen: true}, week["tuesday"])
	assert.Equal(t, DayHours{Open: "10:00", Close: "15:00", IsOpen: false}, week["saturday"])
	assert.Equal(t, DayHours{Open: "10:00", Close: "15:00", IsOpen: false}, week["sunday"])
}

func TestRowsFromWeek(t *testing.T) {
	rows, err := RowsFromWeek(3, fullWeek())
	require.NoError(t, err)
	require.Len(t, rows, 7)

	for i, r := range rows {
		assert.Equal(t, uint(3), r.BusinessID)
		assert.Equal(t, Weekdays[i], r.DayOfWeek)
	}
}

func TestRowsFromWeekRejectsIncompleteOrInvalid(t *testing.T) {
	week := fullWeek()
	delete(week, "friday")
	week["funday"] = DefaultHours("monday")
	_, err := RowsFromWeek(1, week)
	assert.True(t, httperr.IsBusiness(err, "incomplete_week"))

	week = fullWeek()
	week["monday"] = DayHours{Open: "9am", Close: "17:00", IsOpen: true}
	_, err = RowsFromWeek(1, week)
	assert.True(t, httperr.IsBusiness(err, "invalid_time_format"))

	week = fullWeek()
	week["monday"] = DayHours{Open: "18:00", Close: "17:00", IsOpen: true}
	_, err = RowsFromWeek(1, week)
	assert.True(t, httperr.IsBusiness(err, "invalid_hours_range"))
}

func TestRowsFromSetupClearsClosedDays(t *testing.T) {
	var days []DaySetup
	for _, d := range Weekdays {
		days = append(days, DaySetup{DayOfWeek: d, IsOpen: d != "sunday", OpenTime: "09:00", CloseTime: "17:00"})
	}

	rows, err := RowsFromSetup(5, days)
	require.NoError(t, err)
	require.Len(t, rows, 7)

	sunday := rows[6]
	assert.Equal(t, "sunday", sunday.DayOfWeek)
	assert.Nil(t, sunday.OpenTime)
	assert.Nil(t, sunday.CloseTime)
	require.NotNil(t, rows[0].OpenTime)
	assert.Equal(t, "09:00", *rows[0].OpenTime)

	_, err = RowsFromSetup(5, append(days, DaySetup{DayOfWeek: "monday"}))
	assert.True(t, httperr.IsBusiness(err, "duplicate_day_of_week"))

	_, err = RowsFromSetup(5, days[:6])
	assert.True(t, httperr.IsBusiness(err, "incomplete_week"))
}

func TestIsSetupComplete(t *testing.T) {
	b := &models.Business{BusinessName: "Cafe", BusinessType: "restaurant", Description: "Coffee and cake"}

	assert.True(t, IsSetupComplete(b, 7))
	assert.False(t, IsSetupComplete(b, 6))
	assert.False(t, IsSetupComplete(&models.Business{BusinessName: "Cafe", BusinessType: "other"}, 7))
	assert.False(t, IsSetupComplete(nil, 7))
}

func TestIsValidType(t *testing.T) {
	assert.True(t, IsValidType("hair_salon"))
	assert.True(t, IsValidType(string(DefaultType)))
	assert.False(t, IsValidType("bakery"))
}
