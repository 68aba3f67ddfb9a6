package admin

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/micro8gents-api/internal/audit"
	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/models"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage/memory"
)

func seed(t *testing.T, store *memory.Store, n int) []uint {
	t.Helper()
	ctx := context.Background()
	var ids []uint
	for i := 0; i < n; i++ {
		u := &models.User{Username: fmt.Sprintf("user%d", i), Password: "hash", Email: fmt.Sprintf("u%d@example.com", i)}
		require.NoError(t, store.CreateUser(ctx, u))
		ids = append(ids, u.ID)
		// Every other user has a business and a subscription.
		if i%2 == 0 {
			require.NoError(t, store.CreateBusiness(ctx, &models.Business{UserID: u.ID, BusinessType: "spa"}))
			require.NoError(t, store.CreateSubscription(ctx, &models.Subscription{UserID: u.ID}))
		}
	}
	return ids
}

func TestListUsers(t *testing.T) {
	store := memory.New()
	ids := seed(t, store, 20)

	out, err := NewListUsers(store).Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 20)

	for i, s := range out {
		assert.Equal(t, ids[i], s.ID)
		if i%2 == 0 {
			require.NotNil(t, s.Business)
			assert.Equal(t, s.ID, s.Business.UserID)
			require.NotNil(t, s.Subscription)
		} else {
			assert.Nil(t, s.Business)
			assert.Nil(t, s.Subscription)
		}
	}
}

func TestUserDetail(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	ids := seed(t, store, 2)

	b, err := store.GetBusinessByUserID(ctx, ids[0])
	require.NoError(t, err)
	require.NoError(t, store.CreateCall(ctx, &models.Call{BusinessID: b.ID}))
	require.NoError(t, store.CreateFAQ(ctx, &models.FAQ{BusinessID: b.ID, Question: "Open?", Answer: "Yes"}))

	d, err := NewGetUserDetail(store).Execute(ctx, ids[0])
	require.NoError(t, err)
	assert.Len(t, d.Calls, 1)
	assert.Len(t, d.FAQs, 1)
	assert.Empty(t, d.Bookings)
	assert.NotNil(t, d.Subscription)

	d, err = NewGetUserDetail(store).Execute(ctx, ids[1])
	require.NoError(t, err)
	assert.Nil(t, d.Business)
	assert.NotNil(t, d.Calls)

	_, err = NewGetUserDetail(store).Execute(ctx, 999)
	assert.True(t, httperr.IsBusiness(err, "user_not_found"))
}

func TestUpdateRole(t *testing.T) {
	store := memory.New()
	ids := seed(t, store, 1)
	uc := NewUpdateRole(store, audit.Discard{})

	u, err := uc.Execute(context.Background(), 99, ids[0], "admin")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())

	_, err = uc.Execute(context.Background(), 99, ids[0], "root")
	assert.True(t, httperr.IsBusiness(err, "invalid_role"))

	_, err = uc.Execute(context.Background(), 99, 12345, "user")
	assert.True(t, httperr.IsBusiness(err, "user_not_found"))
}

func TestStats(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	seed(t, store, 4)
	require.NoError(t, store.CreateCall(ctx, &models.Call{BusinessID: 1}))

	uc := NewGetStats(store)
	stats, err := uc.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalUsers)
	assert.Equal(t, 2, stats.TotalBusinesses)
	assert.EqualValues(t, 1, stats.TotalCalls)
	assert.EqualValues(t, 0, stats.TotalBookings)
	assert.Equal(t, map[string]int{"free": 2}, stats.SubscriptionsByPlan)
	assert.Equal(t, map[string]int{"spa": 2}, stats.BusinessesByType)
	assert.Equal(t, 4, stats.RecentSignups)

	uc.now = func() time.Time { return time.Now().Add(31 * 24 * time.Hour) }
	stats, err = uc.Execute(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.RecentSignups)
}
