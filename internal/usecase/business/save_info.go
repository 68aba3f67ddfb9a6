package business

import (
	"context"
	"errors"
	"strings"

	"github.com/BruksfildServices01/micro8gents-api/internal/audit"
	domain "github.com/BruksfildServices01/micro8gents-api/internal/domain/business"
	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/models"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
)

// ======================================================
// INPUT
// ======================================================

// InfoInput is a partial profile. Nil fields are left as they are.
type InfoInput struct {
	BusinessName *string
	BusinessType *string
	Description  *string
	Address      *string
	City         *string
	State        *string
	Zip          *string
	Country      *string
	Phone        *string
	Email        *string
	Website      *string
}

func (in InfoInput) patch() storage.BusinessPatch {
	return storage.BusinessPatch{
		BusinessName: trim(in.BusinessName),
		BusinessType: trim(in.BusinessType),
		Description:  trim(in.Description),
		Address:      trim(in.Address),
		City:         trim(in.City),
		State:        trim(in.State),
		Zip:          trim(in.Zip),
		Country:      trim(in.Country),
		Phone:        trim(in.Phone),
		Email:        trim(in.Email),
		Website:      trim(in.Website),
	}
}

// ======================================================
// USE CASE
// ======================================================

// SaveInfo creates the caller's business on first save and patches it
// afterwards. The bool result reports a create.
type SaveInfo struct {
	store storage.BusinessStore
	audit audit.Recorder
}

func NewSaveInfo(
	store storage.BusinessStore,
	audit audit.Recorder,
) *SaveInfo {
	return &SaveInfo{
		store: store,
		audit: audit,
	}
}

func (uc *SaveInfo) Execute(
	ctx context.Context,
	userID uint,
	in InfoInput,
) (*models.Business, bool, error) {

	if in.BusinessType != nil && !domain.IsValidType(strings.TrimSpace(*in.BusinessType)) {
		return nil, false, httperr.ErrBusiness("invalid_business_type")
	}

	patch := in.patch()

	existing, err := uc.store.GetBusinessByUserID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		b := &models.Business{UserID: userID}
		patch.Apply(b)
		if err := uc.store.CreateBusiness(ctx, b); err != nil {
			return nil, false, err
		}
		uc.record(b, userID, "created")
		return b, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	updated, err := uc.store.UpdateBusiness(ctx, existing.ID, patch)
	if err != nil {
		return nil, false, err
	}
	uc.record(updated, userID, "updated")
	return updated, false, nil
}

func (uc *SaveInfo) record(b *models.Business, userID uint, op string) {
	uc.audit.Dispatch(audit.Event{
		BusinessID: b.ID,
		UserID:     &userID,
		Action:     audit.ActionBusinessUpdated,
		Entity:     "business",
		EntityID:   &b.ID,
		Metadata:   map[string]string{"op": op},
	})
}

// ======================================================
// SETUP
// ======================================================

type SetupInput struct {
	BusinessName string
	BusinessType string
	Description  string
	Address      string
	City         string
	State        string
	Zip          string
	Country      string
	Phone        string
	Email        string
	Website      string
}

// Setup is the onboarding form: name, type and description are required,
// every other field overwrites what was stored.
type Setup struct {
	save *SaveInfo
}

func NewSetup(save *SaveInfo) *Setup {
	return &Setup{save: save}
}

func (uc *Setup) Execute(
	ctx context.Context,
	userID uint,
	in SetupInput,
) (*models.Business, bool, error) {

	if strings.TrimSpace(in.BusinessName) == "" || strings.TrimSpace(in.Description) == "" {
		return nil, false, httperr.ErrBusiness("incomplete_business_setup")
	}

	return uc.save.Execute(ctx, userID, InfoInput{
		BusinessName: &in.BusinessName,
		BusinessType: &in.BusinessType,
		Description:  &in.Description,
		Address:      &in.Address,
		City:         &in.City,
		State:        &in.State,
		Zip:          &in.Zip,
		Country:      &in.Country,
		Phone:        &in.Phone,
		Email:        &in.Email,
		Website:      &in.Website,
	})
}

func trim(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
