package storage

import (
	"time"

	"github.com/BruksfildServices01/micro8gents-api/internal/models"
)

// Patches carry partial updates. A nil field is left untouched.
// Apply mutates an in-memory record; Columns yields the gorm update map.

type UserPatch struct {
	Email        *string
	BusinessName *string
	FullName     *string
	Phone        *string
	Bio          *string
	Role         *string
}

func (p UserPatch) Apply(u *models.User) {
	setString(&u.Email, p.Email)
	setString(&u.BusinessName, p.BusinessName)
	setString(&u.FullName, p.FullName)
	setString(&u.Phone, p.Phone)
	setString(&u.Bio, p.Bio)
	setString(&u.Role, p.Role)
}

func (p UserPatch) Columns() map[string]any {
	cols := map[string]any{}
	putString(cols, "email", p.Email)
	putString(cols, "business_name", p.BusinessName)
	putString(cols, "full_name", p.FullName)
	putString(cols, "phone", p.Phone)
	putString(cols, "bio", p.Bio)
	putString(cols, "role", p.Role)
	return cols
}

type BusinessPatch struct {
	BusinessName *string
	BusinessType *string
	Description  *string
	Address      *string
	City         *string
	State        *string
	Zip          *string
	Country      *string
	Phone        *string
	Email        *string
	Website      *string
}

func (p BusinessPatch) Apply(b *models.Business) {
	setString(&b.BusinessName, p.BusinessName)
	setString(&b.BusinessType, p.BusinessType)
	setString(&b.Description, p.Description)
	setString(&b.Address, p.Address)
	setString(&b.City, p.City)
	setString(&b.State, p.State)
	setString(&b.Zip, p.Zip)
	setString(&b.Country, p.Country)
	setString(&b.Phone, p.Phone)
	setString(&b.Email, p.Email)
	setString(&b.Website, p.Website)
	if p.Phone != nil {
		b.PhoneDigits = PhoneDigits(*p.Phone)
	}
}

func (p BusinessPatch) Columns() map[string]any {
	cols := map[string]any{}
	putString(cols, "business_name", p.BusinessName)
	putString(cols, "business_type", p.BusinessType)
	putString(cols, "description", p.Description)
	putString(cols, "address", p.Address)
	putString(cols, "city", p.City)
	putString(cols, "state", p.State)
	putString(cols, "zip", p.Zip)
	putString(cols, "country", p.Country)
	putString(cols, "phone", p.Phone)
	putString(cols, "email", p.Email)
	putString(cols, "website", p.Website)
	if p.Phone != nil {
		cols["phone_digits"] = PhoneDigits(*p.Phone)
	}
	return cols
}

// HoursPatch: an empty OpenTime/CloseTime clears the stored time.
type HoursPatch struct {
	OpenTime  *string
	CloseTime *string
	IsOpen    *bool
}

func (p HoursPatch) Apply(h *models.HoursOfOperation) {
	if p.OpenTime != nil {
		h.OpenTime = nullable(*p.OpenTime)
	}
	if p.CloseTime != nil {
		h.CloseTime = nullable(*p.CloseTime)
	}
	if p.IsOpen != nil {
		h.IsOpen = *p.IsOpen
	}
}

func (p HoursPatch) Columns() map[string]any {
	cols := map[string]any{}
	if p.OpenTime != nil {
		cols["open_time"] = nullable(*p.OpenTime)
	}
	if p.CloseTime != nil {
		cols["close_time"] = nullable(*p.CloseTime)
	}
	if p.IsOpen != nil {
		cols["is_open"] = *p.IsOpen
	}
	return cols
}

type FAQPatch struct {
	Question *string
	Answer   *string
}

func (p FAQPatch) Apply(f *models.FAQ) {
	setString(&f.Question, p.Question)
	setString(&f.Answer, p.Answer)
}

func (p FAQPatch) Columns() map[string]any {
	cols := map[string]any{}
	putString(cols, "question", p.Question)
	putString(cols, "answer", p.Answer)
	return cols
}

type CallPatch struct {
	Caller     *string
	Phone      *string
	Type       *string
	Status     *string
	Duration   *string
	Recording  *string
	Transcript *string
	EndTime    *time.Time
}

func (p CallPatch) Apply(c *models.Call) {
	setString(&c.Caller, p.Caller)
	setString(&c.Phone, p.Phone)
	setString(&c.Type, p.Type)
	setString(&c.Status, p.Status)
	setString(&c.Duration, p.Duration)
	setString(&c.Recording, p.Recording)
	setString(&c.Transcript, p.Transcript)
	if p.EndTime != nil {
		t := *p.EndTime
		c.EndTime = &t
	}
}

func (p CallPatch) Columns() map[string]any {
	cols := map[string]any{}
	putString(cols, "caller", p.Caller)
	putString(cols, "phone", p.Phone)
	putString(cols, "type", p.Type)
	putString(cols, "status", p.Status)
	putString(cols, "duration", p.Duration)
	putString(cols, "recording", p.Recording)
	putString(cols, "transcript", p.Transcript)
	if p.EndTime != nil {
		cols["end_time"] = *p.EndTime
	}
	return cols
}

type BookingPatch struct {
	Customer *string
	Phone    *string
	Email    *string
	Service  *string
	Status   *string
	Notes    *string
	Date     *time.Time
}

func (p BookingPatch) Apply(b *models.Booking) {
	setString(&b.Customer, p.Customer)
	setString(&b.Phone, p.Phone)
	setString(&b.Email, p.Email)
	setString(&b.Service, p.Service)
	setString(&b.Status, p.Status)
	setString(&b.Notes, p.Notes)
	if p.Date != nil {
		b.Date = *p.Date
	}
}

func (p BookingPatch) Columns() map[string]any {
	cols := map[string]any{}
	putString(cols, "customer", p.Customer)
	putString(cols, "phone", p.Phone)
	putString(cols, "email", p.Email)
	putString(cols, "service", p.Service)
	putString(cols, "status", p.Status)
	putString(cols, "notes", p.Notes)
	if p.Date != nil {
		cols["date"] = *p.Date
	}
	return cols
}

type IntegrationPatch struct {
	Config models.JSON
	Status *string
}

func (p IntegrationPatch) Apply(i *models.Integration) {
	if p.Config != nil {
		i.Config = p.Config.Clone()
	}
	setString(&i.Status, p.Status)
}

func (p IntegrationPatch) Columns() map[string]any {
	cols := map[string]any{}
	if p.Config != nil {
		cols["config"] = p.Config
	}
	putString(cols, "status", p.Status)
	return cols
}

type SubscriptionPatch struct {
	Plan                 *string
	StripeCustomerID     *string
	StripeSubscriptionID *string
	Status               *string
	CancelAtPeriodEnd    *bool
	CurrentPeriodStart   *time.Time
	CurrentPeriodEnd     *time.Time
}

func (p SubscriptionPatch) Apply(s *models.Subscription) {
	setString(&s.Plan, p.Plan)
	setString(&s.StripeCustomerID, p.StripeCustomerID)
	setString(&s.StripeSubscriptionID, p.StripeSubscriptionID)
	setString(&s.Status, p.Status)
	if p.CancelAtPeriodEnd != nil {
		s.CancelAtPeriodEnd = *p.CancelAtPeriodEnd
	}
	if p.CurrentPeriodStart != nil {
		t := *p.CurrentPeriodStart
		s.CurrentPeriodStart = &t
	}
	if p.CurrentPeriodEnd != nil {
		t := *p.CurrentPeriodEnd
		s.CurrentPeriodEnd = &t
	}
}

func (p SubscriptionPatch) Columns() map[string]any {
	cols := map[string]any{}
	putString(cols, "plan", p.Plan)
	putString(cols, "stripe_customer_id", p.StripeCustomerID)
	putString(cols, "stripe_subscription_id", p.StripeSubscriptionID)
	putString(cols, "status", p.Status)
	if p.CancelAtPeriodEnd != nil {
		cols["cancel_at_period_end"] = *p.CancelAtPeriodEnd
	}
	if p.CurrentPeriodStart != nil {
		cols["current_period_start"] = *p.CurrentPeriodStart
	}
	if p.CurrentPeriodEnd != nil {
		cols["current_period_end"] = *p.CurrentPeriodEnd
	}
	return cols
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func putString(cols map[string]any, column string, v *string) {
	if v != nil {
		cols[column] = *v
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
