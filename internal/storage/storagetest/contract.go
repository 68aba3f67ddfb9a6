// Package storagetest holds the behaviour every storage.Storage
// implementation must share. Implementations call Run from their own tests.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/micro8gents-api/internal/models"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
)

// Run exercises a fresh store per subtest.
func Run(t *testing.T, newStore func(t *testing.T) storage.Storage) {
	t.Helper()

	cases := []struct {
		name string
		fn   func(t *testing.T, s storage.Storage)
	}{
		{"Users", testUsers},
		{"UserResetToken", testUserResetToken},
		{"Businesses", testBusinesses},
		{"BusinessByPhone", testBusinessByPhone},
		{"HoursAndFAQs", testHoursAndFAQs},
		{"Calls", testCalls},
		{"Bookings", testBookings},
		{"Integrations", testIntegrations},
		{"Subscriptions", testSubscriptions},
		{"AuditLogs", testAuditLogs},
		{"Timestamps", testTimestamps},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, newStore(t))
		})
	}
}

func str(s string) *string { return &s }

func seedUser(t *testing.T, s storage.Storage, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Password: "hash", Email: username + "@example.com"}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func seedBusiness(t *testing.T, s storage.Storage, userID uint, phone string) *models.Business {
	t.Helper()
	b := &models.Business{UserID: userID, BusinessName: "Shop", Phone: phone}
	require.NoError(t, s.CreateBusiness(context.Background(), b))
	return b
}

func testUsers(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	u := seedUser(t, s, "alice")
	assert.NotZero(t, u.ID)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.False(t, u.CreatedAt.IsZero())

	err := s.CreateUser(ctx, &models.User{Username: "alice", Password: "x", Email: "other@example.com"})
	assert.ErrorIs(t, err, storage.ErrConflict)

	err = s.CreateUser(ctx, &models.User{Username: "bob", Email: "bob@example.com"})
	assert.ErrorIs(t, err, storage.ErrMissingField)

	got, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = s.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	updated, err := s.UpdateUser(ctx, u.ID, storage.UserPatch{FullName: str("Alice Doe"), Bio: str("hi")})
	require.NoError(t, err)
	assert.Equal(t, "Alice Doe", updated.FullName)
	assert.Equal(t, "alice@example.com", updated.Email)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))

	_, err = s.UpdateUser(ctx, 9999, storage.UserPatch{Bio: str("x")})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.GetUser(ctx, 9999)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	seedUser(t, s, "carol")
	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
}

func testUserResetToken(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	u := seedUser(t, s, "dave")

	expiry := time.Now().Add(time.Hour).UTC()
	withToken, err := s.UpdateUserResetToken(ctx, u.ID, "token-1", expiry)
	require.NoError(t, err)
	require.NotNil(t, withToken.ResetToken)
	assert.Equal(t, "token-1", *withToken.ResetToken)
	require.NotNil(t, withToken.ResetTokenExpiry)
	assert.WithinDuration(t, expiry, *withToken.ResetTokenExpiry, time.Second)

	reset, err := s.UpdateUserPassword(ctx, u.ID, "new-hash")
	require.NoError(t, err)
	assert.Equal(t, "new-hash", reset.Password)
	assert.Nil(t, reset.ResetToken)
	assert.Nil(t, reset.ResetTokenExpiry)
}

func testBusinesses(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	u := seedUser(t, s, "erin")

	b := seedBusiness(t, s, u.ID, "")
	assert.Equal(t, "other", b.BusinessType)

	err := s.CreateBusiness(ctx, &models.Business{UserID: u.ID})
	assert.ErrorIs(t, err, storage.ErrConflict)

	err = s.CreateBusiness(ctx, &models.Business{})
	assert.ErrorIs(t, err, storage.ErrMissingField)

	got, err := s.GetBusinessByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	updated, err := s.UpdateBusiness(ctx, b.ID, storage.BusinessPatch{
		BusinessType: str("salon"),
		City:         str("Austin"),
	})
	require.NoError(t, err)
	assert.Equal(t, "salon", updated.BusinessType)
	assert.Equal(t, "Austin", updated.City)
	assert.Equal(t, "Shop", updated.BusinessName)

	_, err = s.GetBusinessByUserID(ctx, 4242)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	list, err := s.ListBusinesses(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func testBusinessByPhone(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	u := seedUser(t, s, "frank")
	b := seedBusiness(t, s, u.ID, "(512) 555-0100")

	got, err := s.GetBusinessByPhone(ctx, "+15125550100")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = s.GetBusinessByPhone(ctx, "+15125550199")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.GetBusinessByPhone(ctx, "")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.UpdateBusiness(ctx, b.ID, storage.BusinessPatch{Phone: str("+1 512 555 0111")})
	require.NoError(t, err)

	got, err = s.GetBusinessByPhone(ctx, "+15125550111")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
}

func testHoursAndFAQs(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	u := seedUser(t, s, "gina")
	b := seedBusiness(t, s, u.ID, "")

	open := &models.HoursOfOperation{BusinessID: b.ID, DayOfWeek: "monday", OpenTime: str("09:00"), CloseTime: str("17:00"), IsOpen: true}
	closed := &models.HoursOfOperation{BusinessID: b.ID, DayOfWeek: "sunday"}
	require.NoError(t, s.CreateHours(ctx, open))
	require.NoError(t, s.CreateHours(ctx, closed))
	assert.ErrorIs(t, s.CreateHours(ctx, &models.HoursOfOperation{BusinessID: b.ID}), storage.ErrMissingField)

	rows, err := s.ListHours(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "monday", rows[0].DayOfWeek)
	assert.Nil(t, rows[1].OpenTime)

	updated, err := s.UpdateHours(ctx, open.ID, storage.HoursPatch{OpenTime: str(""), IsOpen: new(bool)})
	require.NoError(t, err)
	assert.Nil(t, updated.OpenTime)
	assert.False(t, updated.IsOpen)
	require.NotNil(t, updated.CloseTime)
	assert.Equal(t, "17:00", *updated.CloseTime)

	require.NoError(t, s.DeleteHoursByBusinessID(ctx, b.ID))
	rows, err = s.ListHours(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	faq := &models.FAQ{BusinessID: b.ID, Question: "Parking?", Answer: "Yes"}
	require.NoError(t, s.CreateFAQ(ctx, faq))
	assert.ErrorIs(t, s.CreateFAQ(ctx, &models.FAQ{BusinessID: b.ID, Question: "Q"}), storage.ErrMissingField)

	changed, err := s.UpdateFAQ(ctx, faq.ID, storage.FAQPatch{Answer: str("Street only")})
	require.NoError(t, err)
	assert.Equal(t, "Parking?", changed.Question)
	assert.Equal(t, "Street only", changed.Answer)

	_, err = s.UpdateFAQ(ctx, 777, storage.FAQPatch{Answer: str("x")})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.DeleteFAQsByBusinessID(ctx, b.ID))
	faqs, err := s.ListFAQs(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, faqs)
}

func testCalls(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	u := seedUser(t, s, "hank")
	b := seedBusiness(t, s, u.ID, "")

	c := &models.Call{BusinessID: b.ID, Caller: "Jane", Phone: "+15125550123"}
	require.NoError(t, s.CreateCall(ctx, c))
	assert.Equal(t, "in-progress", c.Status)
	assert.Equal(t, "0:00", c.Duration)
	assert.False(t, c.StartTime.IsZero())

	older := &models.Call{BusinessID: b.ID, StartTime: c.StartTime.Add(-time.Hour), Status: "missed"}
	require.NoError(t, s.CreateCall(ctx, older))

	assert.ErrorIs(t, s.CreateCall(ctx, &models.Call{}), storage.ErrMissingField)

	end := c.StartTime.Add(90 * time.Second)
	updated, err := s.UpdateCall(ctx, c.ID, storage.CallPatch{
		Status:   str("completed"),
		Duration: str("1:30"),
		EndTime:  &end,
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", updated.Status)
	require.NotNil(t, updated.EndTime)
	assert.WithinDuration(t, end, *updated.EndTime, time.Second)

	calls, err := s.ListCalls(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, c.ID, calls[0].ID)
	assert.Equal(t, older.ID, calls[1].ID)

	count, err := s.CountCalls(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = s.GetCall(ctx, 12345)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testBookings(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	u := seedUser(t, s, "ivy")
	b := seedBusiness(t, s, u.ID, "")

	later := &models.Booking{BusinessID: b.ID, Customer: "Ann", Service: "Cut", Date: time.Date(2030, 1, 2, 10, 0, 0, 0, time.UTC)}
	sooner := &models.Booking{BusinessID: b.ID, Customer: "Ben", Service: "Color", Date: time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)}
	require.NoError(t, s.CreateBooking(ctx, later))
	require.NoError(t, s.CreateBooking(ctx, sooner))
	assert.Equal(t, "upcoming", later.Status)

	err := s.CreateBooking(ctx, &models.Booking{BusinessID: b.ID, Customer: "C", Service: "S"})
	assert.ErrorIs(t, err, storage.ErrMissingField)

	list, err := s.ListBookings(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, sooner.ID, list[0].ID)

	updated, err := s.UpdateBooking(ctx, later.ID, storage.BookingPatch{Status: str("completed"), Notes: str("paid")})
	require.NoError(t, err)
	assert.Equal(t, "completed", updated.Status)
	assert.Equal(t, "Ann", updated.Customer)

	require.NoError(t, s.DeleteBooking(ctx, sooner.ID))
	assert.ErrorIs(t, s.DeleteBooking(ctx, sooner.ID), storage.ErrNotFound)

	count, err := s.CountBookings(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func testIntegrations(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	u := seedUser(t, s, "jack")
	b := seedBusiness(t, s, u.ID, "")

	i := &models.Integration{BusinessID: b.ID, Type: "n8n", Config: models.JSON(`{"webhookUrl":"https://n8n.example.com/hook"}`)}
	require.NoError(t, s.CreateIntegration(ctx, i))
	assert.Equal(t, "inactive", i.Status)

	dup := &models.Integration{BusinessID: b.ID, Type: "n8n", Config: models.JSON(`{}`)}
	assert.ErrorIs(t, s.CreateIntegration(ctx, dup), storage.ErrConflict)

	assert.ErrorIs(t, s.CreateIntegration(ctx, &models.Integration{BusinessID: b.ID, Type: "email"}), storage.ErrMissingField)

	updated, err := s.UpdateIntegration(ctx, i.ID, storage.IntegrationPatch{Status: str("active")})
	require.NoError(t, err)
	assert.Equal(t, "active", updated.Status)
	assert.JSONEq(t, `{"webhookUrl":"https://n8n.example.com/hook"}`, string(updated.Config))

	updated, err = s.UpdateIntegration(ctx, i.ID, storage.IntegrationPatch{Config: models.JSON(`{"webhookUrl":"https://n8n.example.com/v2"}`)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"webhookUrl":"https://n8n.example.com/v2"}`, string(updated.Config))
	assert.Equal(t, "active", updated.Status)

	list, err := s.ListIntegrations(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.DeleteIntegration(ctx, i.ID))
	_, err = s.GetIntegration(ctx, i.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.DeleteIntegration(ctx, i.ID), storage.ErrNotFound)
}

func testSubscriptions(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	u := seedUser(t, s, "kate")

	sub := &models.Subscription{UserID: u.ID}
	require.NoError(t, s.CreateSubscription(ctx, sub))
	assert.Equal(t, "free", sub.Plan)
	assert.Equal(t, "active", sub.Status)

	assert.ErrorIs(t, s.CreateSubscription(ctx, &models.Subscription{UserID: u.ID}), storage.ErrConflict)

	end := time.Now().Add(30 * 24 * time.Hour).UTC()
	yes := true
	updated, err := s.UpdateSubscription(ctx, sub.ID, storage.SubscriptionPatch{
		Plan:                 str("premium"),
		StripeCustomerID:     str("cus_1"),
		StripeSubscriptionID: str("sub_1"),
		CancelAtPeriodEnd:    &yes,
		CurrentPeriodEnd:     &end,
	})
	require.NoError(t, err)
	assert.Equal(t, "premium", updated.Plan)
	assert.True(t, updated.CancelAtPeriodEnd)
	require.NotNil(t, updated.CurrentPeriodEnd)
	assert.WithinDuration(t, end, *updated.CurrentPeriodEnd, time.Second)

	byStripe, err := s.GetSubscriptionByStripeID(ctx, "sub_1")
	require.NoError(t, err)
	assert.Equal(t, sub.ID, byStripe.ID)

	byCustomer, err := s.GetSubscriptionByCustomerID(ctx, "cus_1")
	require.NoError(t, err)
	assert.Equal(t, sub.ID, byCustomer.ID)

	_, err = s.GetSubscriptionByStripeID(ctx, "")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	byUser, err := s.GetSubscriptionByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "cus_1", byUser.StripeCustomerID)

	list, err := s.ListSubscriptions(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func testAuditLogs(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	assert.True(t, errors.Is(s.CreateAuditLog(ctx, &models.AuditLog{}), storage.ErrMissingField))

	for i := 0; i < 5; i++ {
		require.NoError(t, s.CreateAuditLog(ctx, &models.AuditLog{BusinessID: 1, Action: "BOOKING_CREATED", Entity: "booking"}))
	}
	require.NoError(t, s.CreateAuditLog(ctx, &models.AuditLog{BusinessID: 1, Action: "CALL_RECEIVED", Entity: "call"}))
	require.NoError(t, s.CreateAuditLog(ctx, &models.AuditLog{BusinessID: 2, Action: "BOOKING_CREATED", Entity: "booking"}))

	logs, total, err := s.ListAuditLogs(ctx, storage.AuditFilter{BusinessID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	require.Len(t, logs, 6)
	assert.Equal(t, "CALL_RECEIVED", logs[0].Action)

	logs, total, err = s.ListAuditLogs(ctx, storage.AuditFilter{BusinessID: 1, Action: "BOOKING_CREATED", Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, logs, 2)

	logs, _, err = s.ListAuditLogs(ctx, storage.AuditFilter{Entity: "booking"})
	require.NoError(t, err)
	assert.Len(t, logs, 6)

	past := time.Now().Add(-time.Hour).UTC()
	future := time.Now().Add(time.Hour).UTC()
	_, total, err = s.ListAuditLogs(ctx, storage.AuditFilter{From: &past, To: &future})
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)

	_, total, err = s.ListAuditLogs(ctx, storage.AuditFilter{From: &future})
	require.NoError(t, err)
	assert.Zero(t, total)
}

// tick outlasts the coarsest timestamp precision of the supported drivers.
const tick = 20 * time.Millisecond

// testTimestamps checks that every update, including an empty patch, moves
// updatedAt forward and leaves createdAt alone.
func testTimestamps(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	u := seedUser(t, s, "tess")
	b := seedBusiness(t, s, u.ID, "")

	bk := &models.Booking{BusinessID: b.ID, Customer: "Ann", Service: "Cut", Date: time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)}
	require.NoError(t, s.CreateBooking(ctx, bk))
	in := &models.Integration{BusinessID: b.ID, Type: "stripe", Config: models.JSON(`{"apiKey":"sk_test"}`)}
	require.NoError(t, s.CreateIntegration(ctx, in))
	sub := &models.Subscription{UserID: u.ID}
	require.NoError(t, s.CreateSubscription(ctx, sub))

	type stamps struct{ created, updated time.Time }

	cases := []struct {
		name   string
		load   func() (stamps, error)
		empty  func() (stamps, error)
		change func() (stamps, error)
	}{
		{
			name: "business",
			load: func() (stamps, error) {
				r, err := s.GetBusiness(ctx, b.ID)
				if err != nil {
					return stamps{}, err
				}
				return stamps{r.CreatedAt, r.UpdatedAt}, nil
			},
			empty: func() (stamps, error) {
				r, err := s.UpdateBusiness(ctx, b.ID, storage.BusinessPatch{})
				if err != nil {
					return stamps{}, err
				}
				return stamps{r.CreatedAt, r.UpdatedAt}, nil
			},
			change: func() (stamps, error) {
				r, err := s.UpdateBusiness(ctx, b.ID, storage.BusinessPatch{City: str("Austin")})
				if err != nil {
					return stamps{}, err
				}
				return stamps{r.CreatedAt, r.UpdatedAt}, nil
			},
		},
		{
			name: "booking",
			load: func() (stamps, error) {
				r, err := s.GetBooking(ctx, bk.ID)
				if err != nil {
					return stamps{}, err
				}
				return stamps{r.CreatedAt, r.UpdatedAt}, nil
			},
			empty: func() (stamps, error) {
				r, err := s.UpdateBooking(ctx, bk.ID, storage.BookingPatch{})
				if err != nil {
					return stamps{}, err
				}
				return stamps{r.CreatedAt, r.UpdatedAt}, nil
			},
			change: func() (stamps, error) {
				r, err := s.UpdateBooking(ctx, bk.ID, storage.BookingPatch{Notes: str("window seat")})
				if err != nil {
					return stamps{}, err
				}
				return stamps{r.CreatedAt, r.UpdatedAt}, nil
			},
		},
		{
			name: "integration",
			load: func() (stamps, error) {
				r, err := s.GetIntegration(ctx, in.ID)
				if err != nil {
					return stamps{}, err
				}
				return stamps{r.CreatedAt, r.UpdatedAt}, nil
			},
			empty: func() (stamps, error) {
				r, err := s.UpdateIntegration(ctx, in.ID, storage.IntegrationPatch{})
				if err != nil {
					return stamps{}, err
				}
				return stamps{r.CreatedAt, r.UpdatedAt}, nil
			},
			change: func() (stamps, error) {
				r, err := s.UpdateIntegration(ctx, in.ID, storage.IntegrationPatch{Status: str("active")})
				if err != nil {
					return stamps{}, err
				}
				return stamps{r.CreatedAt, r.UpdatedAt}, nil
			},
		},
		{
			name: "subscription",
			load: func() (stamps, error) {
				r, err := s.GetSubscription(ctx, sub.ID)
				if err != nil {
					return stamps{}, err
				}
				return stamps{r.CreatedAt, r.UpdatedAt}, nil
			},
			empty: func() (stamps, error) {
				r, err := s.UpdateSubscription(ctx, sub.ID, storage.SubscriptionPatch{})
				if err != nil {
					return stamps{}, err
				}
				return stamps{r.CreatedAt, r.UpdatedAt}, nil
			},
			change: func() (stamps, error) {
				r, err := s.UpdateSubscription(ctx, sub.ID, storage.SubscriptionPatch{Plan: str("basic")})
				if err != nil {
					return stamps{}, err
				}
				return stamps{r.CreatedAt, r.UpdatedAt}, nil
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before, err := tc.load()
			require.NoError(t, err)
			assert.False(t, before.created.IsZero())

			prev := before.updated
			for _, update := range []func() (stamps, error){tc.empty, tc.change} {
				time.Sleep(tick)
				got, err := update()
				require.NoError(t, err)
				assert.WithinDuration(t, before.created, got.created, time.Millisecond)
				assert.True(t, got.updated.After(prev), "updatedAt %v not after %v", got.updated, prev)
				prev = got.updated
			}
		})
	}
}
