// Package storage defines the persistence contract shared by the in-memory
// and SQL implementations. Both must behave identically: same defaults,
// same timestamps, same sentinel errors.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BruksfildServices01/micro8gents-api/internal/models"
)

var (
	// ErrNotFound is returned when a lookup, update or delete targets a
	// missing record.
	ErrNotFound = errors.New("storage: not found")
	// ErrConflict is returned when a create would break a uniqueness rule.
	ErrConflict = errors.New("storage: conflict")
	// ErrMissingField is wrapped with the name of the absent required field.
	ErrMissingField = errors.New("storage: missing required field")
)

func missing(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, field)
}

// UserStore persists accounts.
type UserStore interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
	UpdateUser(ctx context.Context, id uint, patch UserPatch) (*models.User, error)
	UpdateUserResetToken(ctx context.Context, id uint, token string, expiry time.Time) (*models.User, error)
	// UpdateUserPassword stores a new hash and clears any reset token.
	UpdateUserPassword(ctx context.Context, id uint, hash string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// BusinessStore persists business profiles, one per user.
type BusinessStore interface {
	GetBusiness(ctx context.Context, id uint) (*models.Business, error)
	GetBusinessByUserID(ctx context.Context, userID uint) (*models.Business, error)
	GetBusinessByPhone(ctx context.Context, phone string) (*models.Business, error)
	CreateBusiness(ctx context.Context, b *models.Business) error
	UpdateBusiness(ctx context.Context, id uint, patch BusinessPatch) (*models.Business, error)
	ListBusinesses(ctx context.Context) ([]models.Business, error)
}

// HoursStore persists weekday rows. Callers replace the whole set.
type HoursStore interface {
	ListHours(ctx context.Context, businessID uint) ([]models.HoursOfOperation, error)
	CreateHours(ctx context.Context, h *models.HoursOfOperation) error
	UpdateHours(ctx context.Context, id uint, patch HoursPatch) (*models.HoursOfOperation, error)
	DeleteHoursByBusinessID(ctx context.Context, businessID uint) error
}

type FAQStore interface {
	ListFAQs(ctx context.Context, businessID uint) ([]models.FAQ, error)
	CreateFAQ(ctx context.Context, f *models.FAQ) error
	UpdateFAQ(ctx context.Context, id uint, patch FAQPatch) (*models.FAQ, error)
	DeleteFAQsByBusinessID(ctx context.Context, businessID uint) error
}

type CallStore interface {
	ListCalls(ctx context.Context, businessID uint) ([]models.Call, error)
	GetCall(ctx context.Context, id uint) (*models.Call, error)
	CreateCall(ctx context.Context, c *models.Call) error
	UpdateCall(ctx context.Context, id uint, patch CallPatch) (*models.Call, error)
	CountCalls(ctx context.Context) (int64, error)
}

type BookingStore interface {
	ListBookings(ctx context.Context, businessID uint) ([]models.Booking, error)
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	CreateBooking(ctx context.Context, b *models.Booking) error
	UpdateBooking(ctx context.Context, id uint, patch BookingPatch) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id uint) error
	CountBookings(ctx context.Context) (int64, error)
}

type IntegrationStore interface {
	ListIntegrations(ctx context.Context, businessID uint) ([]models.Integration, error)
	GetIntegration(ctx context.Context, id uint) (*models.Integration, error)
	CreateIntegration(ctx context.Context, i *models.Integration) error
	UpdateIntegration(ctx context.Context, id uint, patch IntegrationPatch) (*models.Integration, error)
	DeleteIntegration(ctx context.Context, id uint) error
}

type SubscriptionStore interface {
	GetSubscription(ctx context.Context, id uint) (*models.Subscription, error)
	GetSubscriptionByUserID(ctx context.Context, userID uint) (*models.Subscription, error)
	GetSubscriptionByStripeID(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error)
	GetSubscriptionByCustomerID(ctx context.Context, stripeCustomerID string) (*models.Subscription, error)
	CreateSubscription(ctx context.Context, s *models.Subscription) error
	UpdateSubscription(ctx context.Context, id uint, patch SubscriptionPatch) (*models.Subscription, error)
	ListSubscriptions(ctx context.Context) ([]models.Subscription, error)
}

// AuditFilter narrows an audit listing. Zero values mean "any".
type AuditFilter struct {
	BusinessID uint
	Action     string
	Entity     string
	From       *time.Time
	To         *time.Time // exclusive
	Limit      int
	Offset     int
}

type AuditStore interface {
	CreateAuditLog(ctx context.Context, l *models.AuditLog) error
	// ListAuditLogs returns one page, newest first, and the total match count.
	ListAuditLogs(ctx context.Context, f AuditFilter) ([]models.AuditLog, int64, error)
}

// Storage is the full contract handed to handlers and use cases.
type Storage interface {
	UserStore
	BusinessStore
	HoursStore
	FAQStore
	CallStore
	BookingStore
	IntegrationStore
	SubscriptionStore
	AuditStore
}
