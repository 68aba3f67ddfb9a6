package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/httpresp"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
	"github.com/BruksfildServices01/micro8gents-api/internal/timezone"
)

const (
	defaultAuditPageSize = 50
	maxAuditPageSize     = 200
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	store    storage.Storage
	timezone string
	log      *zap.Logger
}

func NewAuditLogsHandler(store storage.Storage, tz string, log *zap.Logger) *AuditLogsHandler {
	return &AuditLogsHandler{store: store, timezone: tz, log: log}
}

// --------- Requests ---------

// AuditLogQuery filters the trail. Dates are whole days in the
// configured timezone; "to" includes the whole day.
type AuditLogQuery struct {
	Action string `form:"action"`
	Entity string `form:"entity"`
	From   string `form:"from"`
	To     string `form:"to"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

func (q *AuditLogQuery) normalize() {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > maxAuditPageSize {
		q.Limit = defaultAuditPageSize
	}
}

// --------- Handlers ---------

func (h *AuditLogsHandler) List(c *gin.Context) {
	b, ok := callerBusiness(c, h.store, h.log)
	if !ok {
		return
	}

	var q AuditLogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.BadRequest(c, "invalid_query", "Invalid query parameters")
		return
	}
	q.normalize()

	from, to, err := timezone.DayRange(q.From, q.To, timezone.Location(h.timezone))
	if err != nil {
		httperr.BadRequest(c, "invalid_date_range", "Dates must be YYYY-MM-DD and from must not be after to")
		return
	}

	logs, total, err := h.store.ListAuditLogs(c.Request.Context(), storage.AuditFilter{
		BusinessID: b.ID,
		Action:     q.Action,
		Entity:     q.Entity,
		From:       from,
		To:         to,
		Limit:      q.Limit,
		Offset:     (q.Page - 1) * q.Limit,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	httpresp.Paged(c, q.Page, q.Limit, total, logs)
}
