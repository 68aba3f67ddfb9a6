package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/micro8gents-api/internal/audit"
	domain "github.com/BruksfildServices01/micro8gents-api/internal/domain/booking"
	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/models"
	"github.com/BruksfildServices01/micro8gents-api/internal/services/workflow"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
)

// ======================================================
// INPUT
// ======================================================

type CreateInput struct {
	Customer string
	Phone    string
	Email    string
	Service  string
	Date     time.Time
	Status   string
	Notes    string
}

type UpdateInput struct {
	Customer *string
	Phone    *string
	Email    *string
	Service  *string
	Date     *time.Time
	Status   *string
	Notes    *string
}

// ======================================================
// CREATE
// ======================================================

// Create stores a booking and notifies the booking workflow. A failed
// notification is logged; the booking stands.
type Create struct {
	store     storage.BookingStore
	workflows workflow.Triggerer
	audit     audit.Recorder
	log       *zap.Logger
}

func NewCreate(
	store storage.BookingStore,
	workflows workflow.Triggerer,
	audit audit.Recorder,
	log *zap.Logger,
) *Create {
	return &Create{
		store:     store,
		workflows: workflows,
		audit:     audit,
		log:       log,
	}
}

func (uc *Create) Execute(
	ctx context.Context,
	businessID uint,
	userID uint,
	in CreateInput,
) (*models.Booking, error) {

	if in.Status != "" && !domain.IsValidStatus(in.Status) {
		return nil, httperr.ErrBusiness("invalid_booking_status")
	}

	b := &models.Booking{
		BusinessID: businessID,
		Customer:   strings.TrimSpace(in.Customer),
		Phone:      strings.TrimSpace(in.Phone),
		Email:      strings.TrimSpace(in.Email),
		Service:    strings.TrimSpace(in.Service),
		Date:       in.Date.UTC(),
		Status:     in.Status,
		Notes:      in.Notes,
	}
	if err := uc.store.CreateBooking(ctx, b); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		UserID:     &userID,
		Action:     audit.ActionBookingCreated,
		Entity:     "booking",
		EntityID:   &b.ID,
	})

	if err := uc.workflows.TriggerBookingWorkflow(ctx, map[string]any{
		"bookingId":  b.ID,
		"businessId": businessID,
		"customer":   b.Customer,
		"service":    b.Service,
		"date":       b.Date,
	}); err != nil {
		uc.log.Warn("booking workflow trigger failed",
			zap.Uint("booking_id", b.ID),
			zap.Error(err),
		)
	}

	return b, nil
}

// ======================================================
// UPDATE
// ======================================================

type Update struct {
	store storage.BookingStore
	audit audit.Recorder
}

func NewUpdate(
	store storage.BookingStore,
	audit audit.Recorder,
) *Update {
	return &Update{
		store: store,
		audit: audit,
	}
}

func (uc *Update) Execute(
	ctx context.Context,
	businessID uint,
	userID uint,
	bookingID uint,
	in UpdateInput,
) (*models.Booking, error) {

	if in.Status != nil && !domain.IsValidStatus(*in.Status) {
		return nil, httperr.ErrBusiness("invalid_booking_status")
	}

	if _, err := Owned(ctx, uc.store, businessID, bookingID); err != nil {
		return nil, err
	}

	patch := storage.BookingPatch{
		Customer: in.Customer,
		Phone:    in.Phone,
		Email:    in.Email,
		Service:  in.Service,
		Status:   in.Status,
		Notes:    in.Notes,
	}
	if in.Date != nil {
		d := in.Date.UTC()
		patch.Date = &d
	}

	updated, err := uc.store.UpdateBooking(ctx, bookingID, patch)
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		UserID:     &userID,
		Action:     audit.ActionBookingUpdated,
		Entity:     "booking",
		EntityID:   &updated.ID,
		Metadata:   map[string]string{"status": updated.Status},
	})

	return updated, nil
}

// ======================================================
// DELETE
// ======================================================

type Delete struct {
	store storage.BookingStore
	audit audit.Recorder
}

func NewDelete(
	store storage.BookingStore,
	audit audit.Recorder,
) *Delete {
	return &Delete{
		store: store,
		audit: audit,
	}
}

func (uc *Delete) Execute(
	ctx context.Context,
	businessID uint,
	userID uint,
	bookingID uint,
) error {

	if _, err := Owned(ctx, uc.store, businessID, bookingID); err != nil {
		return err
	}

	if err := uc.store.DeleteBooking(ctx, bookingID); err != nil {
		return err
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		UserID:     &userID,
		Action:     audit.ActionBookingDeleted,
		Entity:     "booking",
		EntityID:   &bookingID,
	})
	return nil
}

// Owned loads a booking of the given business. Another business's booking
// is reported exactly like a missing one.
func Owned(
	ctx context.Context,
	store storage.BookingStore,
	businessID uint,
	bookingID uint,
) (*models.Booking, error) {

	b, err := store.GetBooking(ctx, bookingID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, httperr.ErrBusiness("booking_not_found")
	}
	if err != nil {
		return nil, err
	}
	if b.BusinessID != businessID {
		return nil, httperr.ErrBusiness("booking_not_found")
	}
	return b, nil
}
