package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/httpresp"
	"github.com/BruksfildServices01/micro8gents-api/internal/middleware"
	"github.com/BruksfildServices01/micro8gents-api/internal/usecase/account"
)

type ProfileHandler struct {
	update *account.UpdateProfile
	log    *zap.Logger
}

func NewProfileHandler(update *account.UpdateProfile, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{update: update, log: log}
}

type UpdateProfileRequest struct {
	FullName *string `json:"fullName" binding:"omitempty,min=2,max=150"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Phone    *string `json:"phone" binding:"omitempty,max=30"`
	Bio      *string `json:"bio" binding:"omitempty,max=500"`
}

func (h *ProfileHandler) Get(c *gin.Context) {
	httpresp.OK(c, middleware.CurrentUser(c))
}

func (h *ProfileHandler) Update(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Validation(c, err)
		return
	}

	user, err := h.update.Execute(c.Request.Context(), userID(c), account.ProfileInput{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Bio:      req.Bio,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	httpresp.OK(c, user)
}
