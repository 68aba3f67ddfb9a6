package admin

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/BruksfildServices01/micro8gents-api/internal/models"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
)

const recentSignupWindow = 30 * 24 * time.Hour

type Stats struct {
	TotalUsers          int            `json:"totalUsers"`
	TotalBusinesses     int            `json:"totalBusinesses"`
	TotalCalls          int64          `json:"totalCalls"`
	TotalBookings       int64          `json:"totalBookings"`
	SubscriptionsByPlan map[string]int `json:"subscriptionsByPlan"`
	BusinessesByType    map[string]int `json:"businessesByType"`
	RecentSignups       int            `json:"recentSignups"`
}

type GetStats struct {
	store storage.Storage
	now   func() time.Time
}

func NewGetStats(store storage.Storage) *GetStats {
	return &GetStats{store: store, now: time.Now}
}

func (uc *GetStats) Execute(ctx context.Context) (*Stats, error) {
	var (
		users         []models.User
		businesses    []models.Business
		subscriptions []models.Subscription
		stats         = &Stats{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = uc.store.ListUsers(gctx)
		return err
	})
	g.Go(func() (err error) {
		businesses, err = uc.store.ListBusinesses(gctx)
		return err
	})
	g.Go(func() (err error) {
		subscriptions, err = uc.store.ListSubscriptions(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalCalls, err = uc.store.CountCalls(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalBookings, err = uc.store.CountBookings(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	since := uc.now().Add(-recentSignupWindow)

	stats.TotalUsers = len(users)
	stats.TotalBusinesses = len(businesses)
	stats.SubscriptionsByPlan = map[string]int{}
	stats.BusinessesByType = map[string]int{}

	for _, u := range users {
		if !u.CreatedAt.Before(since) {
			stats.RecentSignups++
		}
	}
	for _, s := range subscriptions {
		stats.SubscriptionsByPlan[s.Plan]++
	}
	for _, b := range businesses {
		stats.BusinessesByType[b.BusinessType]++
	}

	return stats, nil
}
