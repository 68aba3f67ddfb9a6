package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/httpresp"
	"github.com/BruksfildServices01/micro8gents-api/internal/middleware"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
	"github.com/BruksfildServices01/micro8gents-api/internal/usecase/subscription"
)

type SubscriptionHandler struct {
	store    storage.Storage
	free     *subscription.CreateFree
	checkout *subscription.Checkout
	portal   *subscription.BillingPortal
	cancel   *subscription.Cancel
	log      *zap.Logger
}

func NewSubscriptionHandler(
	store storage.Storage,
	free *subscription.CreateFree,
	checkout *subscription.Checkout,
	portal *subscription.BillingPortal,
	cancel *subscription.Cancel,
	log *zap.Logger,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		store:    store,
		free:     free,
		checkout: checkout,
		portal:   portal,
		cancel:   cancel,
		log:      log,
	}
}

type CheckoutRequest struct {
	Plan         string `json:"plan" binding:"required,oneof=basic premium enterprise"`
	BillingCycle string `json:"billingCycle" binding:"required,oneof=monthly annually"`
}

type CheckoutResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

func (h *SubscriptionHandler) Current(c *gin.Context) {
	sub, err := h.store.GetSubscriptionByUserID(c.Request.Context(), userID(c))
	if errors.Is(err, storage.ErrNotFound) {
		httperr.NotFound(c, "subscription_not_found", "No subscription found")
		return
	}
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	httpresp.OK(c, sub)
}

func (h *SubscriptionHandler) CreateFree(c *gin.Context) {
	sub, err := h.free.Execute(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	httpresp.Created(c, sub)
}

func (h *SubscriptionHandler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Validation(c, err)
		return
	}

	out, err := h.checkout.Execute(c.Request.Context(), middleware.CurrentUser(c), subscription.CheckoutInput{
		Plan:         req.Plan,
		BillingCycle: req.BillingCycle,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	httpresp.OK(c, CheckoutResponse{SessionID: out.SessionID, URL: out.URL})
}

func (h *SubscriptionHandler) BillingPortal(c *gin.Context) {
	url, err := h.portal.Execute(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	httpresp.URL(c, url)
}

func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)

	// The audit row hangs off the business; a user without one is still
	// allowed to cancel.
	var businessID uint
	b, err := h.store.GetBusinessByUserID(ctx, uid)
	switch {
	case err == nil:
		businessID = b.ID
	case !errors.Is(err, storage.ErrNotFound):
		respondError(c, h.log, err)
		return
	}

	sub, err := h.cancel.Execute(ctx, uid, businessID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	httpresp.OK(c, sub)
}
