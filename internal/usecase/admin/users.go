package admin

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/BruksfildServices01/micro8gents-api/internal/audit"
	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/models"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
)

// maxFanOut bounds concurrent storage lookups per request.
const maxFanOut = 8

// ======================================================
// LIST USERS
// ======================================================

type UserSummary struct {
	models.User
	Business     *models.Business     `json:"business"`
	Subscription *models.Subscription `json:"subscription"`
}

type ListUsers struct {
	store storage.Storage
}

func NewListUsers(store storage.Storage) *ListUsers {
	return &ListUsers{store: store}
}

// Execute loads every user's business and subscription concurrently. The
// lookups touch disjoint rows, so each goroutine owns its slot.
func (uc *ListUsers) Execute(ctx context.Context) ([]UserSummary, error) {
	users, err := uc.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]UserSummary, len(users))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxFanOut)

	for i := range users {
		out[i].User = users[i]
		g.Go(func() error {
			b, err := optional(uc.store.GetBusinessByUserID(gctx, users[i].ID))
			if err != nil {
				return err
			}
			s, err := optional(uc.store.GetSubscriptionByUserID(gctx, users[i].ID))
			if err != nil {
				return err
			}
			out[i].Business = b
			out[i].Subscription = s
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ======================================================
// USER DETAIL
// ======================================================

type UserDetail struct {
	User         *models.User              `json:"user"`
	Business     *models.Business          `json:"business"`
	Hours        []models.HoursOfOperation `json:"hours"`
	FAQs         []models.FAQ              `json:"faqs"`
	Calls        []models.Call             `json:"calls"`
	Bookings     []models.Booking          `json:"bookings"`
	Subscription *models.Subscription      `json:"subscription"`
}

type GetUserDetail struct {
	store storage.Storage
}

func NewGetUserDetail(store storage.Storage) *GetUserDetail {
	return &GetUserDetail{store: store}
}

func (uc *GetUserDetail) Execute(ctx context.Context, userID uint) (*UserDetail, error) {
	user, err := uc.store.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, httperr.ErrBusiness("user_not_found")
	}
	if err != nil {
		return nil, err
	}

	d := &UserDetail{
		User:     user,
		Hours:    []models.HoursOfOperation{},
		FAQs:     []models.FAQ{},
		Calls:    []models.Call{},
		Bookings: []models.Booking{},
	}

	if d.Business, err = optional(uc.store.GetBusinessByUserID(ctx, userID)); err != nil {
		return nil, err
	}
	if d.Subscription, err = optional(uc.store.GetSubscriptionByUserID(ctx, userID)); err != nil {
		return nil, err
	}
	if d.Business == nil {
		return d, nil
	}

	businessID := d.Business.ID
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Hours, err = uc.store.ListHours(gctx, businessID)
		return err
	})
	g.Go(func() (err error) {
		d.FAQs, err = uc.store.ListFAQs(gctx, businessID)
		return err
	})
	g.Go(func() (err error) {
		d.Calls, err = uc.store.ListCalls(gctx, businessID)
		return err
	})
	g.Go(func() (err error) {
		d.Bookings, err = uc.store.ListBookings(gctx, businessID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

// ======================================================
// ROLE
// ======================================================

type UpdateRole struct {
	store storage.Storage
	audit audit.Recorder
}

func NewUpdateRole(
	store storage.Storage,
	audit audit.Recorder,
) *UpdateRole {
	return &UpdateRole{
		store: store,
		audit: audit,
	}
}

func (uc *UpdateRole) Execute(
	ctx context.Context,
	actorID uint,
	userID uint,
	role string,
) (*models.User, error) {

	if role != models.RoleAdmin && role != models.RoleUser {
		return nil, httperr.ErrBusiness("invalid_role")
	}

	updated, err := uc.store.UpdateUser(ctx, userID, storage.UserPatch{Role: &role})
	if errors.Is(err, storage.ErrNotFound) {
		return nil, httperr.ErrBusiness("user_not_found")
	}
	if err != nil {
		return nil, err
	}

	var businessID uint
	if b, err := optional(uc.store.GetBusinessByUserID(ctx, userID)); err == nil && b != nil {
		businessID = b.ID
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		UserID:     &actorID,
		Action:     audit.ActionUserRoleChanged,
		Entity:     "user",
		EntityID:   &updated.ID,
		Metadata:   map[string]string{"role": role},
	})

	return updated, nil
}

// optional turns ErrNotFound into a nil result.
func optional[T any](v *T, err error) (*T, error) {
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
