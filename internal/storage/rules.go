package storage

import (
	"strings"
	"time"

	"github.com/BruksfildServices01/micro8gents-api/internal/domain/booking"
	"github.com/BruksfildServices01/micro8gents-api/internal/domain/business"
	"github.com/BruksfildServices01/micro8gents-api/internal/domain/call"
	"github.com/BruksfildServices01/micro8gents-api/internal/domain/integration"
	"github.com/BruksfildServices01/micro8gents-api/internal/domain/subscription"
	"github.com/BruksfildServices01/micro8gents-api/internal/models"
)

// Prepare* check required fields and fill defaults before an insert. Both
// implementations call them so defaults cannot drift apart.

func PrepareUser(u *models.User) error {
	switch {
	case strings.TrimSpace(u.Username) == "":
		return missing("username")
	case u.Password == "":
		return missing("password")
	case strings.TrimSpace(u.Email) == "":
		return missing("email")
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	return nil
}

func PrepareBusiness(b *models.Business) error {
	if b.UserID == 0 {
		return missing("userId")
	}
	if b.BusinessType == "" {
		b.BusinessType = string(business.DefaultType)
	}
	b.PhoneDigits = PhoneDigits(b.Phone)
	return nil
}

func PrepareHours(h *models.HoursOfOperation) error {
	switch {
	case h.BusinessID == 0:
		return missing("businessId")
	case h.DayOfWeek == "":
		return missing("dayOfWeek")
	}
	return nil
}

func PrepareFAQ(f *models.FAQ) error {
	switch {
	case f.BusinessID == 0:
		return missing("businessId")
	case strings.TrimSpace(f.Question) == "":
		return missing("question")
	case strings.TrimSpace(f.Answer) == "":
		return missing("answer")
	}
	return nil
}

// Business-owned rows only need a non-zero BusinessID here. Whether that
// business exists is settled by the caller, which resolves it first.
func PrepareCall(c *models.Call, now time.Time) error {
	if c.BusinessID == 0 {
		return missing("businessId")
	}
	if c.StartTime.IsZero() {
		c.StartTime = now
	}
	if c.Status == "" {
		c.Status = string(call.StatusInProgress)
	}
	if c.Duration == "" {
		c.Duration = call.InitialDuration
	}
	return nil
}

func PrepareBooking(b *models.Booking) error {
	switch {
	case b.BusinessID == 0:
		return missing("businessId")
	case strings.TrimSpace(b.Customer) == "":
		return missing("customer")
	case strings.TrimSpace(b.Service) == "":
		return missing("service")
	case b.Date.IsZero():
		return missing("date")
	}
	if b.Status == "" {
		b.Status = string(booking.InitialStatus())
	}
	return nil
}

func PrepareIntegration(i *models.Integration) error {
	switch {
	case i.BusinessID == 0:
		return missing("businessId")
	case i.Type == "":
		return missing("type")
	case len(i.Config) == 0:
		return missing("config")
	}
	if i.Status == "" {
		i.Status = string(integration.InitialStatus())
	}
	return nil
}

func PrepareSubscription(s *models.Subscription) error {
	if s.UserID == 0 {
		return missing("userId")
	}
	if s.Plan == "" {
		s.Plan = string(subscription.PlanFree)
	}
	if s.Status == "" {
		s.Status = subscription.StatusActive
	}
	return nil
}

func PrepareAuditLog(l *models.AuditLog) error {
	if l.Action == "" {
		return missing("action")
	}
	return nil
}

// NormalizeFilter clamps paging the same way for every implementation.
func NormalizeFilter(f AuditFilter) AuditFilter {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// PhoneDigits reduces a phone number to its digits for comparison.
func PhoneDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PhoneKeys are the stored digit strings an inbound number may match: the
// full digits and, for numbers with a country code, the last ten.
func PhoneKeys(phone string) []string {
	d := PhoneDigits(phone)
	if d == "" {
		return nil
	}
	keys := []string{d}
	if len(d) > 10 {
		keys = append(keys, d[len(d)-10:])
	}
	return keys
}
