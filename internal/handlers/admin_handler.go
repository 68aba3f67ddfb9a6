package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/httpresp"
	"github.com/BruksfildServices01/micro8gents-api/internal/usecase/admin"
)

type AdminHandler struct {
	listUsers  *admin.ListUsers
	userDetail *admin.GetUserDetail
	updateRole *admin.UpdateRole
	stats      *admin.GetStats
	log        *zap.Logger
}

func NewAdminHandler(
	listUsers *admin.ListUsers,
	userDetail *admin.GetUserDetail,
	updateRole *admin.UpdateRole,
	stats *admin.GetStats,
	log *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		listUsers:  listUsers,
		userDetail: userDetail,
		updateRole: updateRole,
		stats:      stats,
		log:        log,
	}
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin user"`
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.listUsers.Execute(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	httpresp.List(c, users)
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	detail, err := h.userDetail.Execute(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	httpresp.OK(c, detail)
}

func (h *AdminHandler) UpdateRole(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Validation(c, err)
		return
	}

	user, err := h.updateRole.Execute(c.Request.Context(), userID(c), id, req.Role)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	httpresp.OK(c, user)
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.stats.Execute(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	httpresp.OK(c, stats)
}
