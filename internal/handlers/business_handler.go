package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/micro8gents-api/internal/domain/business"
	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/httpresp"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
	"github.com/BruksfildServices01/micro8gents-api/internal/usecase/business"
)

// ======================================================
// HANDLER
// ======================================================

type BusinessHandler struct {
	store        storage.Storage
	saveInfo     *business.SaveInfo
	setup        *business.Setup
	replaceHours *business.ReplaceHours
	replaceFAQs  *business.ReplaceFAQs
	setupStatus  *business.GetSetupStatus
	log          *zap.Logger
}

func NewBusinessHandler(
	store storage.Storage,
	saveInfo *business.SaveInfo,
	setup *business.Setup,
	replaceHours *business.ReplaceHours,
	replaceFAQs *business.ReplaceFAQs,
	setupStatus *business.GetSetupStatus,
	log *zap.Logger,
) *BusinessHandler {
	return &BusinessHandler{
		store:        store,
		saveInfo:     saveInfo,
		setup:        setup,
		replaceHours: replaceHours,
		replaceFAQs:  replaceFAQs,
		setupStatus:  setupStatus,
		log:          log,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type BusinessInfoRequest struct {
	BusinessName *string `json:"businessName" binding:"omitempty,min=2,max=200"`
	BusinessType *string `json:"businessType"`
	Description  *string `json:"description"`
	Address      *string `json:"address"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	Zip          *string `json:"zip"`
	Country      *string `json:"country"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email" binding:"omitempty,email"`
	Website      *string `json:"website" binding:"omitempty,url"`
}

type BusinessSetupRequest struct {
	BusinessName string `json:"businessName" binding:"required,min=2,max=200"`
	BusinessType string `json:"businessType" binding:"required"`
	Description  string `json:"description" binding:"required,min=10"`
	Address      string `json:"address"`
	City         string `json:"city"`
	State        string `json:"state"`
	Zip          string `json:"zip"`
	Country      string `json:"country"`
	Phone        string `json:"phone"`
	Email        string `json:"email" binding:"omitempty,email"`
	Website      string `json:"website" binding:"omitempty,url"`
}

type FAQRequest struct {
	Question string `json:"question" binding:"required,min=5"`
	Answer   string `json:"answer" binding:"required,min=5"`
}

type FAQsRequest struct {
	FAQs []FAQRequest `json:"faqs" binding:"required,dive"`
}

type DaySetupRequest struct {
	DayOfWeek string `json:"dayOfWeek" binding:"required"`
	IsOpen    bool   `json:"isOpen"`
	OpenTime  string `json:"openTime"`
	CloseTime string `json:"closeTime"`
}

type HoursSetupRequest struct {
	Hours []DaySetupRequest `json:"hours" binding:"required,dive"`
}

// ======================================================
// INFO
// ======================================================

func (h *BusinessHandler) GetInfo(c *gin.Context) {
	b, ok := callerBusiness(c, h.store, h.log)
	if !ok {
		return
	}
	httpresp.OK(c, b)
}

func (h *BusinessHandler) SaveInfo(c *gin.Context) {
	var req BusinessInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Validation(c, err)
		return
	}

	b, created, err := h.saveInfo.Execute(c.Request.Context(), userID(c), business.InfoInput{
		BusinessName: req.BusinessName,
		BusinessType: req.BusinessType,
		Description:  req.Description,
		Address:      req.Address,
		City:         req.City,
		State:        req.State,
		Zip:          req.Zip,
		Country:      req.Country,
		Phone:        req.Phone,
		Email:        req.Email,
		Website:      req.Website,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	httpresp.Saved(c, created, b)
}

func (h *BusinessHandler) Setup(c *gin.Context) {
	var req BusinessSetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Validation(c, err)
		return
	}

	b, created, err := h.setup.Execute(c.Request.Context(), userID(c), business.SetupInput{
		BusinessName: req.BusinessName,
		BusinessType: req.BusinessType,
		Description:  req.Description,
		Address:      req.Address,
		City:         req.City,
		State:        req.State,
		Zip:          req.Zip,
		Country:      req.Country,
		Phone:        req.Phone,
		Email:        req.Email,
		Website:      req.Website,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	httpresp.Saved(c, created, b)
}

func (h *BusinessHandler) SetupStatus(c *gin.Context) {
	status, err := h.setupStatus.Execute(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	httpresp.OK(c, status)
}

// ======================================================
// HOURS
// ======================================================

func (h *BusinessHandler) GetHours(c *gin.Context) {
	b, ok := callerBusiness(c, h.store, h.log)
	if !ok {
		return
	}

	rows, err := h.store.ListHours(c.Request.Context(), b.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	httpresp.OK(c, domain.WeekFromRows(rows))
}

func (h *BusinessHandler) ReplaceHours(c *gin.Context) {
	b, ok := callerBusiness(c, h.store, h.log)
	if !ok {
		return
	}

	var week domain.Week
	if err := c.ShouldBindJSON(&week); err != nil {
		httperr.Validation(c, err)
		return
	}

	out, err := h.replaceHours.Execute(c.Request.Context(), b.ID, userID(c), week)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	httpresp.OK(c, out)
}

func (h *BusinessHandler) SetupHours(c *gin.Context) {
	b, ok := callerBusiness(c, h.store, h.log)
	if !ok {
		return
	}

	var req HoursSetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Validation(c, err)
		return
	}

	days := make([]domain.DaySetup, 0, len(req.Hours))
	for _, d := range req.Hours {
		days = append(days, domain.DaySetup{
			DayOfWeek: d.DayOfWeek,
			IsOpen:    d.IsOpen,
			OpenTime:  d.OpenTime,
			CloseTime: d.CloseTime,
		})
	}

	rows, err := h.replaceHours.ExecuteSetup(c.Request.Context(), b.ID, userID(c), days)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	httpresp.List(c, rows)
}

// ======================================================
// FAQS
// ======================================================

func (h *BusinessHandler) ListFAQs(c *gin.Context) {
	b, ok := callerBusiness(c, h.store, h.log)
	if !ok {
		return
	}

	faqs, err := h.store.ListFAQs(c.Request.Context(), b.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	httpresp.List(c, faqs)
}

func (h *BusinessHandler) ReplaceFAQs(c *gin.Context) {
	b, ok := callerBusiness(c, h.store, h.log)
	if !ok {
		return
	}

	var req FAQsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Validation(c, err)
		return
	}

	in := make([]business.FAQInput, 0, len(req.FAQs))
	for _, f := range req.FAQs {
		in = append(in, business.FAQInput{Question: f.Question, Answer: f.Answer})
	}

	faqs, err := h.replaceFAQs.Execute(c.Request.Context(), b.ID, userID(c), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	httpresp.List(c, faqs)
}
