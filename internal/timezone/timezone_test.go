package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocation(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
	_, err = Load("Mars/Olympus")
	assert.Error(t, err)

	loc, err := Load("UTC")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	assert.Equal(t, time.UTC, Location("Mars/Olympus"))
}

func TestStartOfMonth(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	now := time.Date(2026, 3, 17, 22, 45, 0, 0, loc)

	start := StartOfMonth(now)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2026, 3, 1, 5, 0, 0, 0, time.UTC), start.UTC())
}

func TestDayRange(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)

	start, end, err := DayRange("2026-03-01", "2026-03-01", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 5, 0, 0, 0, time.UTC), start.UTC())
	assert.Equal(t, time.Date(2026, 3, 2, 5, 0, 0, 0, time.UTC), end.UTC())

	start, end, err = DayRange("", "", loc)
	require.NoError(t, err)
	assert.Nil(t, start)
	assert.Nil(t, end)

	_, _, err = DayRange("03/01/2026", "", loc)
	assert.Error(t, err)

	_, _, err = DayRange("2026-03-05", "2026-03-01", loc)
	assert.Error(t, err)
}
