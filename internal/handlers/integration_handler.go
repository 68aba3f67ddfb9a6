package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/httpresp"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
	"github.com/BruksfildServices01/micro8gents-api/internal/usecase/integration"
)

type IntegrationHandler struct {
	store  storage.Storage
	create *integration.Create
	update *integration.Update
	remove *integration.Delete
	log    *zap.Logger
}

func NewIntegrationHandler(
	store storage.Storage,
	create *integration.Create,
	update *integration.Update,
	remove *integration.Delete,
	log *zap.Logger,
) *IntegrationHandler {
	return &IntegrationHandler{
		store:  store,
		create: create,
		update: update,
		remove: remove,
		log:    log,
	}
}

type CreateIntegrationRequest struct {
	Type   string          `json:"type" binding:"required"`
	Config json.RawMessage `json:"config" binding:"required"`
	Status string          `json:"status"`
}

type UpdateIntegrationRequest struct {
	Config json.RawMessage `json:"config"`
	Status *string         `json:"status"`
}

// List returns display rows; configs stay out of list responses.
func (h *IntegrationHandler) List(c *gin.Context) {
	b, ok := callerBusiness(c, h.store, h.log)
	if !ok {
		return
	}

	rows, err := h.store.ListIntegrations(c.Request.Context(), b.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	views := make([]integration.View, 0, len(rows))
	for _, i := range rows {
		views = append(views, integration.ViewOf(i))
	}
	httpresp.List(c, views)
}

func (h *IntegrationHandler) Get(c *gin.Context) {
	b, ok := callerBusiness(c, h.store, h.log)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	i, err := integration.Owned(c.Request.Context(), h.store, b.ID, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	httpresp.OK(c, i)
}

func (h *IntegrationHandler) Create(c *gin.Context) {
	b, ok := callerBusiness(c, h.store, h.log)
	if !ok {
		return
	}

	var req CreateIntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Validation(c, err)
		return
	}

	i, err := h.create.Execute(c.Request.Context(), b.ID, userID(c), integration.CreateInput{
		Type:   req.Type,
		Config: req.Config,
		Status: req.Status,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	httpresp.Created(c, i)
}

func (h *IntegrationHandler) Update(c *gin.Context) {
	b, ok := callerBusiness(c, h.store, h.log)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateIntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Validation(c, err)
		return
	}

	i, err := h.update.Execute(c.Request.Context(), b.ID, userID(c), id, integration.UpdateInput{
		Config: req.Config,
		Status: req.Status,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	httpresp.OK(c, i)
}

func (h *IntegrationHandler) Delete(c *gin.Context) {
	b, ok := callerBusiness(c, h.store, h.log)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.remove.Execute(c.Request.Context(), b.ID, userID(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	httpresp.Message(c, http.StatusOK, "Integration deleted")
}
