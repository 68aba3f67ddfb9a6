package business

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/micro8gents-api/internal/audit"
	domain "github.com/BruksfildServices01/micro8gents-api/internal/domain/business"
	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/models"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage/memory"
)

type recorder struct {
	events []audit.Event
}

func (r *recorder) Dispatch(ev audit.Event) { r.events = append(r.events, ev) }

func str(s string) *string { return &s }

func TestSaveInfoCreatesThenUpdates(t *testing.T) {
	store := memory.New()
	rec := &recorder{}
	uc := NewSaveInfo(store, rec)
	ctx := context.Background()

	b, created, err := uc.Execute(ctx, 1, InfoInput{BusinessName: str(" Cafe ")})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Cafe", b.BusinessName)
	assert.Equal(t, "other", b.BusinessType)

	b2, created, err := uc.Execute(ctx, 1, InfoInput{Phone: str("+1 (512) 555-0100")})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, b.ID, b2.ID)
	assert.Equal(t, "Cafe", b2.BusinessName)
	assert.Equal(t, "+1 (512) 555-0100", b2.Phone)

	got, err := store.GetBusinessByPhone(ctx, "+15125550100")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, _, err = uc.Execute(ctx, 1, InfoInput{BusinessType: str("bakery")})
	assert.True(t, httperr.IsBusiness(err, "invalid_business_type"))

	assert.Len(t, rec.events, 2)
}

func TestSetupRequiresBasics(t *testing.T) {
	uc := NewSetup(NewSaveInfo(memory.New(), audit.Discard{}))
	_, _, err := uc.Execute(context.Background(), 1, SetupInput{BusinessName: "Cafe", BusinessType: "restaurant"})
	assert.True(t, httperr.IsBusiness(err, "incomplete_business_setup"))
}

func TestReplaceHoursAlwaysLeavesSevenRows(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	uc := NewReplaceHours(store, audit.Discard{})

	// Leftovers from an older layout must not survive the replace.
	for i := 0; i < 3; i++ {
		require.NoError(t, store.CreateHours(ctx, &models.HoursOfOperation{BusinessID: 9, DayOfWeek: "monday", IsOpen: true}))
	}

	week := domain.Week{}
	for _, d := range domain.Weekdays {
		week[d] = domain.DefaultHours(d)
	}
	week["monday"] = domain.DayHours{Open: "07:00", Close: "11:00", IsOpen: true}

	for i := 0; i < 2; i++ {
		out, err := uc.Execute(ctx, 9, 1, week)
		require.NoError(t, err)
		assert.Equal(t, "07:00", out["monday"].Open)

		rows, err := store.ListHours(ctx, 9)
		require.NoError(t, err)
		assert.Len(t, rows, 7)
	}
}

func TestReplaceHoursRejectsBeforeDeleting(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	uc := NewReplaceHours(store, audit.Discard{})

	require.NoError(t, store.CreateHours(ctx, &models.HoursOfOperation{BusinessID: 9, DayOfWeek: "monday"}))

	_, err := uc.Execute(ctx, 9, 1, domain.Week{"monday": domain.DefaultHours("monday")})
	assert.True(t, httperr.IsBusiness(err, "incomplete_week"))

	rows, err := store.ListHours(ctx, 9)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestReplaceFAQs(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	uc := NewReplaceFAQs(store, audit.Discard{})

	_, err := uc.Execute(ctx, 2, 1, []FAQInput{{Question: "Open late?", Answer: "Until nine."}, {Question: "Parking?", Answer: "Street only."}})
	require.NoError(t, err)

	out, err := uc.Execute(ctx, 2, 1, []FAQInput{{Question: "Wifi at all?", Answer: "Yes, free."}})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.NotZero(t, out[0].ID)

	stored, err := store.ListFAQs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Wifi at all?", stored[0].Question)
}

func TestSetupStatus(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	status := NewGetSetupStatus(store, store)

	st, err := status.Execute(ctx, 1)
	require.NoError(t, err)
	assert.False(t, st.IsSetupComplete)
	assert.Nil(t, st.Business)

	b, _, err := NewSetup(NewSaveInfo(store, audit.Discard{})).Execute(ctx, 1, SetupInput{
		BusinessName: "Cafe", BusinessType: "restaurant", Description: "Coffee and cake all day",
	})
	require.NoError(t, err)

	st, err = status.Execute(ctx, 1)
	require.NoError(t, err)
	assert.True(t, st.HasBusinessInfo)
	assert.False(t, st.HasHoursSetup)
	assert.False(t, st.IsSetupComplete)

	var days []domain.DaySetup
	for _, d := range domain.Weekdays {
		days = append(days, domain.DaySetup{DayOfWeek: d, IsOpen: true, OpenTime: "09:00", CloseTime: "17:00"})
	}
	_, err = NewReplaceHours(store, audit.Discard{}).ExecuteSetup(ctx, b.ID, 1, days)
	require.NoError(t, err)

	st, err = status.Execute(ctx, 1)
	require.NoError(t, err)
	assert.True(t, st.IsSetupComplete)
}
