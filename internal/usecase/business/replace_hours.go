package business

import (
	"context"

	"github.com/BruksfildServices01/micro8gents-api/internal/audit"
	domain "github.com/BruksfildServices01/micro8gents-api/internal/domain/business"
	"github.com/BruksfildServices01/micro8gents-api/internal/models"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
)

// ReplaceHours swaps the stored week for a new complete one. Rows are
// validated before anything is deleted.
type ReplaceHours struct {
	store storage.HoursStore
	audit audit.Recorder
}

func NewReplaceHours(
	store storage.HoursStore,
	audit audit.Recorder,
) *ReplaceHours {
	return &ReplaceHours{
		store: store,
		audit: audit,
	}
}

// Execute stores a dashboard week and returns it as stored.
func (uc *ReplaceHours) Execute(
	ctx context.Context,
	businessID uint,
	userID uint,
	week domain.Week,
) (domain.Week, error) {

	rows, err := domain.RowsFromWeek(businessID, week)
	if err != nil {
		return nil, err
	}

	stored, err := uc.replace(ctx, businessID, userID, rows)
	if err != nil {
		return nil, err
	}
	return domain.WeekFromRows(stored), nil
}

// ExecuteSetup stores the onboarding variant and returns the rows.
func (uc *ReplaceHours) ExecuteSetup(
	ctx context.Context,
	businessID uint,
	userID uint,
	days []domain.DaySetup,
) ([]models.HoursOfOperation, error) {

	rows, err := domain.RowsFromSetup(businessID, days)
	if err != nil {
		return nil, err
	}
	return uc.replace(ctx, businessID, userID, rows)
}

func (uc *ReplaceHours) replace(
	ctx context.Context,
	businessID uint,
	userID uint,
	rows []models.HoursOfOperation,
) ([]models.HoursOfOperation, error) {

	if err := uc.store.DeleteHoursByBusinessID(ctx, businessID); err != nil {
		return nil, err
	}

	for i := range rows {
		if err := uc.store.CreateHours(ctx, &rows[i]); err != nil {
			return nil, err
		}
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		UserID:     &userID,
		Action:     audit.ActionHoursReplaced,
		Entity:     "hours_of_operation",
	})

	return rows, nil
}
