package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/middleware"
	"github.com/BruksfildServices01/micro8gents-api/internal/models"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
)

func userID(c *gin.Context) uint {
	return c.MustGet(middleware.ContextUserID).(uint)
}

// callerBusiness resolves the business owned by the session user. It writes
// the 404 itself, so callers just return on false.
func callerBusiness(c *gin.Context, store storage.BusinessStore, log *zap.Logger) (*models.Business, bool) {
	b, err := store.GetBusinessByUserID(c.Request.Context(), userID(c))
	if errors.Is(err, storage.ErrNotFound) {
		httperr.NotFound(c, "business_not_found", "Business not found")
		return nil, false
	}
	if err != nil {
		respondError(c, log, err)
		return nil, false
	}
	return b, true
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		httperr.BadRequest(c, "invalid_id", "Invalid ID")
		return 0, false
	}
	return uint(id), true
}
