package business

import "github.com/BruksfildServices01/micro8gents-api/internal/models"

// IsSetupComplete reports whether onboarding is done: profile basics are
// filled in and a full week of hours exists.
func IsSetupComplete(b *models.Business, hourRows int) bool {
	if b == nil {
		return false
	}
	return b.BusinessName != "" &&
		b.BusinessType != "" &&
		b.Description != "" &&
		hourRows >= len(Weekdays)
}
