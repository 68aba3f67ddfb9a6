package subscription

import (
	"context"
	"errors"
	"strings"

	domain "github.com/BruksfildServices01/micro8gents-api/internal/domain/subscription"
	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/models"
	"github.com/BruksfildServices01/micro8gents-api/internal/services/billing"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
)

// ======================================================
// CHECKOUT
// ======================================================

type CheckoutInput struct {
	Plan         string
	BillingCycle string
}

type Checkout struct {
	store     storage.SubscriptionStore
	billing   Billing
	prices    PriceLookup
	clientURL string
}

func NewCheckout(
	store storage.SubscriptionStore,
	billing Billing,
	prices PriceLookup,
	clientURL string,
) *Checkout {
	return &Checkout{
		store:     store,
		billing:   billing,
		prices:    prices,
		clientURL: strings.TrimRight(clientURL, "/"),
	}
}

// Execute makes sure the user has a Stripe customer, remembering it on the
// local subscription, and opens a checkout session for the plan.
func (uc *Checkout) Execute(
	ctx context.Context,
	user *models.User,
	in CheckoutInput,
) (*billing.Checkout, error) {

	if !domain.IsPaidPlan(in.Plan) {
		return nil, httperr.ErrBusiness("invalid_plan")
	}
	priceID := uc.prices(in.Plan, in.BillingCycle)
	if priceID == "" {
		return nil, httperr.ErrBusiness("price_not_configured")
	}

	sub, err := uc.ensureSubscription(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	customerID := sub.StripeCustomerID
	if customerID == "" {
		customerID, err = uc.billing.CreateCustomer(ctx, user.Email, user.Username, user.ID)
		if err != nil {
			return nil, err
		}
		if _, err := uc.store.UpdateSubscription(ctx, sub.ID, storage.SubscriptionPatch{
			StripeCustomerID: &customerID,
		}); err != nil {
			return nil, err
		}
	}

	return uc.billing.CreateSubscriptionCheckout(ctx, billing.CheckoutRequest{
		CustomerID: customerID,
		PriceID:    priceID,
		SuccessURL: uc.clientURL + "/subscription?success=true",
		CancelURL:  uc.clientURL + "/subscription?canceled=true",
		UserID:     user.ID,
		Plan:       in.Plan,
	})
}

// ensureSubscription returns the user's row, creating a free one for
// accounts that predate automatic subscriptions.
func (uc *Checkout) ensureSubscription(ctx context.Context, userID uint) (*models.Subscription, error) {
	sub, err := uc.store.GetSubscriptionByUserID(ctx, userID)
	if err == nil {
		return sub, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	sub = &models.Subscription{UserID: userID}
	if err := uc.store.CreateSubscription(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// ======================================================
// BILLING PORTAL
// ======================================================

type BillingPortal struct {
	store     storage.SubscriptionStore
	billing   Billing
	clientURL string
}

func NewBillingPortal(
	store storage.SubscriptionStore,
	billing Billing,
	clientURL string,
) *BillingPortal {
	return &BillingPortal{
		store:     store,
		billing:   billing,
		clientURL: strings.TrimRight(clientURL, "/"),
	}
}

func (uc *BillingPortal) Execute(ctx context.Context, userID uint) (string, error) {
	sub, err := uc.store.GetSubscriptionByUserID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", httperr.ErrBusiness("no_billing_customer")
	}
	if err != nil {
		return "", err
	}
	if sub.StripeCustomerID == "" {
		return "", httperr.ErrBusiness("no_billing_customer")
	}

	return uc.billing.CreateBillingPortal(ctx, sub.StripeCustomerID, uc.clientURL+"/subscription")
}
