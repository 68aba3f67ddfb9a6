package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/micro8gents-api/internal/domain/call"
	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/httpresp"
	"github.com/BruksfildServices01/micro8gents-api/internal/models"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
	"github.com/BruksfildServices01/micro8gents-api/internal/usecase/call"
)

type CallHandler struct {
	store     storage.Storage
	recording *call.RecordingLink
	stats     *call.GetDashboardStats
	report    *call.RequestReport
	log       *zap.Logger
}

func NewCallHandler(
	store storage.Storage,
	recording *call.RecordingLink,
	stats *call.GetDashboardStats,
	report *call.RequestReport,
	log *zap.Logger,
) *CallHandler {
	return &CallHandler{
		store:     store,
		recording: recording,
		stats:     stats,
		report:    report,
		log:       log,
	}
}

type CreateCallRequest struct {
	Caller     string     `json:"caller"`
	Phone      string     `json:"phone"`
	Type       string     `json:"type"`
	StartTime  *time.Time `json:"startTime"`
	Status     string     `json:"status"`
	Duration   string     `json:"duration"`
	Recording  string     `json:"recording"`
	Transcript string     `json:"transcript"`
}

func (h *CallHandler) List(c *gin.Context) {
	b, ok := callerBusiness(c, h.store, h.log)
	if !ok {
		return
	}

	calls, err := h.store.ListCalls(c.Request.Context(), b.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	httpresp.List(c, calls)
}

func (h *CallHandler) Get(c *gin.Context) {
	b, ok := callerBusiness(c, h.store, h.log)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	cl, err := call.OwnedCall(c.Request.Context(), h.store, b.ID, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	httpresp.OK(c, cl)
}

// Create logs a call by hand, e.g. one taken outside the phone integration.
func (h *CallHandler) Create(c *gin.Context) {
	b, ok := callerBusiness(c, h.store, h.log)
	if !ok {
		return
	}

	var req CreateCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Validation(c, err)
		return
	}
	if req.Status != "" && !domain.IsValidStatus(req.Status) {
		httperr.BadRequest(c, "invalid_call_status", "Invalid call status")
		return
	}

	cl := &models.Call{
		BusinessID: b.ID,
		Caller:     req.Caller,
		Phone:      req.Phone,
		Type:       req.Type,
		Status:     req.Status,
		Duration:   req.Duration,
		Recording:  req.Recording,
		Transcript: req.Transcript,
	}
	if req.StartTime != nil {
		cl.StartTime = req.StartTime.UTC()
	}

	if err := h.store.CreateCall(c.Request.Context(), cl); err != nil {
		respondError(c, h.log, err)
		return
	}
	httpresp.Created(c, cl)
}

func (h *CallHandler) Recording(c *gin.Context) {
	b, ok := callerBusiness(c, h.store, h.log)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	url, err := h.recording.Execute(c.Request.Context(), b.ID, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	httpresp.URL(c, url)
}

// ======================================================
// DASHBOARD
// ======================================================

func (h *CallHandler) Stats(c *gin.Context) {
	b, ok := callerBusiness(c, h.store, h.log)
	if !ok {
		return
	}

	stats, err := h.stats.Execute(c.Request.Context(), b.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	httpresp.OK(c, stats)
}

func (h *CallHandler) Report(c *gin.Context) {
	b, ok := callerBusiness(c, h.store, h.log)
	if !ok {
		return
	}

	stats, err := h.report.Execute(c.Request.Context(), b.ID, userID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusAccepted, stats)
}
