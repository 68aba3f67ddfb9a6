package business

import (
	"context"
	"errors"

	domain "github.com/BruksfildServices01/micro8gents-api/internal/domain/business"
	"github.com/BruksfildServices01/micro8gents-api/internal/models"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
)

type SetupStatus struct {
	IsSetupComplete bool             `json:"isSetupComplete"`
	HasBusinessInfo bool             `json:"hasBusinessInfo"`
	HasHoursSetup   bool             `json:"hasHoursSetup"`
	Business        *models.Business `json:"business"`
}

type GetSetupStatus struct {
	businesses storage.BusinessStore
	hours      storage.HoursStore
}

func NewGetSetupStatus(
	businesses storage.BusinessStore,
	hours storage.HoursStore,
) *GetSetupStatus {
	return &GetSetupStatus{
		businesses: businesses,
		hours:      hours,
	}
}

func (uc *GetSetupStatus) Execute(ctx context.Context, userID uint) (*SetupStatus, error) {
	b, err := uc.businesses.GetBusinessByUserID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return &SetupStatus{}, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := uc.hours.ListHours(ctx, b.ID)
	if err != nil {
		return nil, err
	}

	return &SetupStatus{
		IsSetupComplete: domain.IsSetupComplete(b, len(rows)),
		HasBusinessInfo: b.BusinessName != "" && b.Description != "",
		HasHoursSetup:   len(rows) >= len(domain.Weekdays),
		Business:        b,
	}, nil
}
