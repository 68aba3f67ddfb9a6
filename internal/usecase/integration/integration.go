package integration

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/BruksfildServices01/micro8gents-api/internal/audit"
	domain "github.com/BruksfildServices01/micro8gents-api/internal/domain/integration"
	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/models"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
)

// View is the list row shown on the integrations page.
type View struct {
	ID          uint   `json:"id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	IconColor   string `json:"iconColor"`
}

func ViewOf(i models.Integration) View {
	d := domain.Describe(domain.Type(i.Type))
	return View{
		ID:          i.ID,
		Type:        i.Type,
		Name:        d.Name,
		Description: d.Description,
		Status:      i.Status,
		IconColor:   d.IconColor,
	}
}

// ======================================================
// CREATE
// ======================================================

type CreateInput struct {
	Type   string
	Config json.RawMessage
	Status string
}

type Create struct {
	store storage.IntegrationStore
	audit audit.Recorder
}

func NewCreate(
	store storage.IntegrationStore,
	audit audit.Recorder,
) *Create {
	return &Create{
		store: store,
		audit: audit,
	}
}

// Execute validates the config against its type. A second integration of
// the same type for a business is rejected before anything is written.
func (uc *Create) Execute(
	ctx context.Context,
	businessID uint,
	userID uint,
	in CreateInput,
) (*models.Integration, error) {

	if in.Status != "" && !domain.IsValidStatus(in.Status) {
		return nil, httperr.ErrBusiness("invalid_integration_status")
	}
	if _, err := domain.ParseConfig(domain.Type(in.Type), in.Config); err != nil {
		return nil, err
	}

	existing, err := uc.store.ListIntegrations(ctx, businessID)
	if err != nil {
		return nil, err
	}
	for _, e := range existing {
		if e.Type == in.Type {
			return nil, httperr.ErrBusiness("integration_exists")
		}
	}

	i := &models.Integration{
		BusinessID: businessID,
		Type:       in.Type,
		Config:     models.JSON(in.Config),
		Status:     in.Status,
	}
	if err := uc.store.CreateIntegration(ctx, i); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, httperr.ErrBusiness("integration_exists")
		}
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		UserID:     &userID,
		Action:     audit.ActionIntegrationCreated,
		Entity:     "integration",
		EntityID:   &i.ID,
		Metadata:   map[string]string{"type": i.Type},
	})

	return i, nil
}

// ======================================================
// UPDATE
// ======================================================

// UpdateInput: a nil Config keeps the stored one.
type UpdateInput struct {
	Config json.RawMessage
	Status *string
}

type Update struct {
	store storage.IntegrationStore
	audit audit.Recorder
}

func NewUpdate(
	store storage.IntegrationStore,
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
	integrationID uint,
	in UpdateInput,
) (*models.Integration, error) {

	current, err := Owned(ctx, uc.store, businessID, integrationID)
	if err != nil {
		return nil, err
	}

	if in.Status != nil && !domain.IsValidStatus(*in.Status) {
		return nil, httperr.ErrBusiness("invalid_integration_status")
	}

	patch := storage.IntegrationPatch{Status: in.Status}
	if in.Config != nil {
		if _, err := domain.ParseConfig(domain.Type(current.Type), in.Config); err != nil {
			return nil, err
		}
		patch.Config = models.JSON(in.Config)
	}

	updated, err := uc.store.UpdateIntegration(ctx, current.ID, patch)
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		UserID:     &userID,
		Action:     audit.ActionIntegrationUpdated,
		Entity:     "integration",
		EntityID:   &updated.ID,
		Metadata:   map[string]string{"type": updated.Type, "status": updated.Status},
	})

	return updated, nil
}

// ======================================================
// DELETE
// ======================================================

type Delete struct {
	store storage.IntegrationStore
	audit audit.Recorder
}

func NewDelete(
	store storage.IntegrationStore,
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
	integrationID uint,
) error {

	current, err := Owned(ctx, uc.store, businessID, integrationID)
	if err != nil {
		return err
	}

	if err := uc.store.DeleteIntegration(ctx, current.ID); err != nil {
		return err
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		UserID:     &userID,
		Action:     audit.ActionIntegrationDeleted,
		Entity:     "integration",
		EntityID:   &current.ID,
		Metadata:   map[string]string{"type": current.Type},
	})
	return nil
}

func Owned(
	ctx context.Context,
	store storage.IntegrationStore,
	businessID uint,
	integrationID uint,
) (*models.Integration, error) {

	i, err := store.GetIntegration(ctx, integrationID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, httperr.ErrBusiness("integration_not_found")
	}
	if err != nil {
		return nil, err
	}
	if i.BusinessID != businessID {
		return nil, httperr.ErrBusiness("integration_not_found")
	}
	return i, nil
}
