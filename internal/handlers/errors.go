package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/micro8gents-api/internal/domain/integration"
	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
)

type businessErr struct {
	status  int
	message string
}

var businessErrors = map[string]businessErr{
	// account
	"username_taken":       {http.StatusBadRequest, "Username already exists"},
	"invalid_email_domain": {http.StatusBadRequest, "The email domain does not look valid"},
	"invalid_credentials":  {http.StatusUnauthorized, "Invalid username or password"},
	"invalid_reset_token":  {http.StatusBadRequest, "Invalid or expired reset token"},

	// business
	"business_not_found":        {http.StatusNotFound, "Business not found"},
	"invalid_business_type":     {http.StatusBadRequest, "Invalid business type"},
	"incomplete_business_setup": {http.StatusBadRequest, "Business name, type and description are required"},
	"incomplete_week":           {http.StatusBadRequest, "Hours are required for all seven days"},
	"invalid_time_format":       {http.StatusBadRequest, "Times must use the HH:MM format"},
	"invalid_hours_range":       {http.StatusBadRequest, "Closing time must be after opening time"},
	"invalid_day_of_week":       {http.StatusBadRequest, "Invalid day of week"},
	"duplicate_day_of_week":     {http.StatusBadRequest, "Each day of the week may appear only once"},

	// subscriptions
	"subscription_exists":    {http.StatusBadRequest, "Subscription already exists"},
	"subscription_not_found": {http.StatusNotFound, "No subscription found"},
	"invalid_plan":           {http.StatusBadRequest, "Invalid plan"},
	"price_not_configured":   {http.StatusBadRequest, "Pricing is not configured for this plan"},
	"no_billing_customer":    {http.StatusBadRequest, "No billing account found"},

	// calls
	"call_not_found":        {http.StatusNotFound, "Call not found"},
	"invalid_action":        {http.StatusBadRequest, "Invalid action"},
	"missing_call_type":     {http.StatusBadRequest, "Call type is required"},
	"recording_not_found":   {http.StatusNotFound, "Recording not found"},
	"object_store_disabled": {http.StatusServiceUnavailable, "File storage is not configured"},

	// bookings
	"booking_not_found":      {http.StatusNotFound, "Booking not found"},
	"invalid_booking_status": {http.StatusBadRequest, "Invalid booking status"},

	// integrations
	"integration_exists":         {http.StatusBadRequest, "Integration of this type already exists"},
	"integration_not_found":      {http.StatusNotFound, "Integration not found"},
	"invalid_integration_type":   {http.StatusBadRequest, "Invalid integration type"},
	"invalid_integration_status": {http.StatusBadRequest, "Invalid integration status"},

	// admin
	"user_not_found": {http.StatusNotFound, "User not found"},
	"invalid_role":   {http.StatusBadRequest, "Invalid role"},

	// voice
	"voice_not_found": {http.StatusNotFound, "Voice not found"},
}

// respondError maps use case and storage errors to the error envelope.
// Anything unrecognised is logged and reported as a generic 500.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	if code, ok := httperr.Code(err); ok {
		be, known := businessErrors[code]
		if !known {
			be = businessErr{http.StatusBadRequest, code}
		}
		httperr.Write(c, be.status, code, be.message)
		return
	}

	var cfgErr *integration.ConfigError
	if errors.As(err, &cfgErr) {
		fields := make([]httperr.FieldError, 0, len(cfgErr.Missing)+len(cfgErr.Invalid))
		for _, f := range cfgErr.Missing {
			fields = append(fields, httperr.FieldError{Field: "config." + f, Rule: "required", Message: "is required"})
		}
		for _, f := range cfgErr.Invalid {
			fields = append(fields, httperr.FieldError{Field: "config." + f, Rule: "invalid", Message: "is invalid"})
		}
		c.JSON(http.StatusBadRequest, httperr.HTTPError{
			Code:    "invalid_integration_config",
			Message: "Invalid integration configuration",
			Errors:  fields,
		})
		return
	}

	switch {
	case errors.Is(err, storage.ErrNotFound):
		httperr.NotFound(c, "not_found", "Not found")
	case errors.Is(err, storage.ErrConflict):
		httperr.BadRequest(c, "conflict", "Record already exists")
	case errors.Is(err, storage.ErrMissingField):
		httperr.BadRequest(c, "missing_field", err.Error())
	default:
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		httperr.Internal(c, "internal_error", "Internal server error")
	}
}
