package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/httpresp"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
	"github.com/BruksfildServices01/micro8gents-api/internal/usecase/booking"
)

type BookingHandler struct {
	store  storage.Storage
	create *booking.Create
	update *booking.Update
	remove *booking.Delete
	log    *zap.Logger
}

func NewBookingHandler(
	store storage.Storage,
	create *booking.Create,
	update *booking.Update,
	remove *booking.Delete,
	log *zap.Logger,
) *BookingHandler {
	return &BookingHandler{
		store:  store,
		create: create,
		update: update,
		remove: remove,
		log:    log,
	}
}

// --------- Requests ---------

type CreateBookingRequest struct {
	Customer string    `json:"customer" binding:"required,max=150"`
	Phone    string    `json:"phone"`
	Email    string    `json:"email" binding:"omitempty,email"`
	Service  string    `json:"service" binding:"required,max=150"`
	Date     time.Time `json:"date" binding:"required"`
	Status   string    `json:"status"`
	Notes    string    `json:"notes"`
}

type UpdateBookingRequest struct {
	Customer *string    `json:"customer" binding:"omitempty,min=1,max=150"`
	Phone    *string    `json:"phone"`
	Email    *string    `json:"email" binding:"omitempty,email"`
	Service  *string    `json:"service" binding:"omitempty,min=1,max=150"`
	Date     *time.Time `json:"date"`
	Status   *string    `json:"status"`
	Notes    *string    `json:"notes"`
}

// --------- Handlers ---------

func (h *BookingHandler) List(c *gin.Context) {
	b, ok := callerBusiness(c, h.store, h.log)
	if !ok {
		return
	}

	bookings, err := h.store.ListBookings(c.Request.Context(), b.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	httpresp.List(c, bookings)
}

func (h *BookingHandler) Get(c *gin.Context) {
	b, ok := callerBusiness(c, h.store, h.log)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	bk, err := booking.Owned(c.Request.Context(), h.store, b.ID, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	httpresp.OK(c, bk)
}

func (h *BookingHandler) Create(c *gin.Context) {
	b, ok := callerBusiness(c, h.store, h.log)
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Validation(c, err)
		return
	}

	bk, err := h.create.Execute(c.Request.Context(), b.ID, userID(c), booking.CreateInput{
		Customer: req.Customer,
		Phone:    req.Phone,
		Email:    req.Email,
		Service:  req.Service,
		Date:     req.Date,
		Status:   req.Status,
		Notes:    req.Notes,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	httpresp.Created(c, bk)
}

func (h *BookingHandler) Update(c *gin.Context) {
	b, ok := callerBusiness(c, h.store, h.log)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.Validation(c, err)
		return
	}

	bk, err := h.update.Execute(c.Request.Context(), b.ID, userID(c), id, booking.UpdateInput{
		Customer: req.Customer,
		Phone:    req.Phone,
		Email:    req.Email,
		Service:  req.Service,
		Date:     req.Date,
		Status:   req.Status,
		Notes:    req.Notes,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	httpresp.OK(c, bk)
}

func (h *BookingHandler) Delete(c *gin.Context) {
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
	httpresp.Message(c, http.StatusOK, "Booking deleted")
}
