package subscription

import (
	"context"
	"errors"
	"time"

	domain "github.com/BruksfildServices01/micro8gents-api/internal/domain/subscription"
	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/models"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
)

type CreateFree struct {
	store storage.SubscriptionStore
	now   func() time.Time
}

func NewCreateFree(store storage.SubscriptionStore) *CreateFree {
	return &CreateFree{store: store, now: time.Now}
}

func (uc *CreateFree) Execute(ctx context.Context, userID uint) (*models.Subscription, error) {
	_, err := uc.store.GetSubscriptionByUserID(ctx, userID)
	if err == nil {
		return nil, httperr.ErrBusiness("subscription_exists")
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	start, end := domain.FreePeriod(uc.now().UTC())
	sub := &models.Subscription{
		UserID:             userID,
		Plan:               string(domain.PlanFree),
		Status:             domain.StatusActive,
		CurrentPeriodStart: &start,
		CurrentPeriodEnd:   &end,
	}
	if err := uc.store.CreateSubscription(ctx, sub); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, httperr.ErrBusiness("subscription_exists")
		}
		return nil, err
	}
	return sub, nil
}
