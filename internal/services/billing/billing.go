// Package billing wraps the Stripe calls used for subscriptions. Without a
// secret key every call logs and returns a mock value.
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

var (
	ErrMissingSignature = errors.New("stripe webhook signature missing")
	ErrWebhookSignature = errors.New("stripe webhook signature verification failed")
	ErrWebhookPayload   = errors.New("stripe webhook payload malformed")
)

// Event types handled by the subscription webhook.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

const (
	metaUserID = "userId"
	metaPlan   = "plan"
)

type CheckoutRequest struct {
	CustomerID string
	PriceID    string
	SuccessURL string
	CancelURL  string
	UserID     uint
	Plan       string
}

type Checkout struct {
	SessionID string
	URL       string
}

// SubscriptionState is the part of a Stripe subscription mirrored locally.
type SubscriptionState struct {
	ID                 string
	CustomerID         string
	Status             string
	CancelAtPeriodEnd  bool
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	Plan               string
	UserID             uint
}

type CheckoutCompleted struct {
	SessionID      string
	CustomerID     string
	SubscriptionID string
	UserID         uint
	Plan           string
}

type WebhookEvent struct {
	ID           string
	Type         string
	Checkout     *CheckoutCompleted
	Subscription *SubscriptionState
}

type Service struct {
	api           *client.API
	webhookSecret string
	log           *zap.Logger
}

func New(secretKey, webhookSecret string, log *zap.Logger) *Service {
	s := &Service{webhookSecret: webhookSecret, log: log}
	if secretKey != "" {
		s.api = client.New(secretKey, nil)
	}
	return s
}

func (s *Service) Enabled() bool {
	return s.api != nil
}

func (s *Service) CreateCustomer(ctx context.Context, email, name string, userID uint) (string, error) {
	if s.api == nil {
		id := "cus_mock_" + uuid.NewString()[:8]
		s.log.Info("[mock] stripe create customer", zap.String("email", email), zap.String("customer_id", id))
		return id, nil
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
	}
	params.Context = ctx
	params.AddMetadata(metaUserID, strconv.FormatUint(uint64(userID), 10))

	cust, err := s.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe create customer: %w", err)
	}
	return cust.ID, nil
}

func (s *Service) CreateSubscriptionCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	if s.api == nil {
		id := "cs_mock_" + uuid.NewString()[:8]
		s.log.Info("[mock] stripe subscription checkout",
			zap.String("price_id", req.PriceID),
			zap.String("session_id", id),
		)
		return &Checkout{SessionID: id, URL: req.SuccessURL}, nil
	}

	userID := strconv.FormatUint(uint64(req.UserID), 10)
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:          stripe.String(req.CustomerID),
		ClientReferenceID: stripe.String(userID),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(req.PriceID), Quantity: stripe.Int64(1)},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{metaUserID: userID, metaPlan: req.Plan},
		},
	}
	params.Context = ctx
	params.AddMetadata(metaUserID, userID)
	params.AddMetadata(metaPlan, req.Plan)

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}
	return &Checkout{SessionID: sess.ID, URL: sess.URL}, nil
}

func (s *Service) CreateBillingPortal(ctx context.Context, customerID, returnURL string) (string, error) {
	if s.api == nil {
		s.log.Info("[mock] stripe billing portal", zap.String("customer_id", customerID))
		return returnURL, nil
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	sess, err := s.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe billing portal: %w", err)
	}
	return sess.URL, nil
}

// CancelSubscription cancels immediately.
func (s *Service) CancelSubscription(ctx context.Context, subscriptionID string) (*SubscriptionState, error) {
	if s.api == nil {
		s.log.Info("[mock] stripe cancel subscription", zap.String("subscription_id", subscriptionID))
		return &SubscriptionState{ID: subscriptionID, Status: string(stripe.SubscriptionStatusCanceled)}, nil
	}

	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx

	sub, err := s.api.Subscriptions.Cancel(subscriptionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe cancel subscription: %w", err)
	}
	return subscriptionState(sub), nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes the events
// this service reacts to. Without a webhook secret the payload is decoded
// unverified; that mode is for local development only.
func (s *Service) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	if signature == "" {
		return nil, ErrMissingSignature
	}

	var event stripe.Event
	if s.webhookSecret != "" {
		ev, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
			webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrWebhookSignature, err)
		}
		event = ev
	} else {
		s.log.Warn("stripe webhook secret not configured; skipping signature verification")
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrWebhookPayload, err)
		}
	}

	out := &WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if event.Data == nil {
		return out, nil
	}

	switch out.Type {
	case EventCheckoutCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrWebhookPayload, err)
		}
		out.Checkout = checkoutCompleted(&sess)

	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrWebhookPayload, err)
		}
		out.Subscription = subscriptionState(&sub)
	}

	return out, nil
}

func checkoutCompleted(sess *stripe.CheckoutSession) *CheckoutCompleted {
	out := &CheckoutCompleted{
		SessionID: sess.ID,
		Plan:      sess.Metadata[metaPlan],
		UserID:    parseUserID(sess.ClientReferenceID),
	}
	if out.UserID == 0 {
		out.UserID = parseUserID(sess.Metadata[metaUserID])
	}
	if sess.Customer != nil {
		out.CustomerID = sess.Customer.ID
	}
	if sess.Subscription != nil {
		out.SubscriptionID = sess.Subscription.ID
	}
	return out
}

func subscriptionState(sub *stripe.Subscription) *SubscriptionState {
	out := &SubscriptionState{
		ID:                 sub.ID,
		Status:             string(sub.Status),
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		CurrentPeriodStart: unixTime(sub.CurrentPeriodStart),
		CurrentPeriodEnd:   unixTime(sub.CurrentPeriodEnd),
		Plan:               sub.Metadata[metaPlan],
		UserID:             parseUserID(sub.Metadata[metaUserID]),
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	return out
}

func unixTime(sec int64) *time.Time {
	if sec == 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

func parseUserID(s string) uint {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}
