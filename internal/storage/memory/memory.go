package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BruksfildServices01/micro8gents-api/internal/models"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
)

// Store is an in-memory implementation of storage.Storage. It is safe for
// concurrent use and is meant for tests, demos and local development.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time
	ids map[string]uint

	users         map[uint]models.User
	businesses    map[uint]models.Business
	hours         map[uint]models.HoursOfOperation
	faqs          map[uint]models.FAQ
	calls         map[uint]models.Call
	bookings      map[uint]models.Booking
	integrations  map[uint]models.Integration
	subscriptions map[uint]models.Subscription
	auditLogs     map[uint]models.AuditLog
}

var _ storage.Storage = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		now:           func() time.Time { return time.Now().UTC() },
		ids:           make(map[string]uint),
		users:         make(map[uint]models.User),
		businesses:    make(map[uint]models.Business),
		hours:         make(map[uint]models.HoursOfOperation),
		faqs:          make(map[uint]models.FAQ),
		calls:         make(map[uint]models.Call),
		bookings:      make(map[uint]models.Booking),
		integrations:  make(map[uint]models.Integration),
		subscriptions: make(map[uint]models.Subscription),
		auditLogs:     make(map[uint]models.AuditLog),
	}
}

// nextIDLocked hands out per-table sequences, like serial columns.
func (s *Store) nextIDLocked(table string) uint {
	s.ids[table]++
	return s.ids[table]
}

// UserStore implementation -----------------------------------------------------

func (s *Store) GetUser(_ context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *models.User
	for _, id := range sortedKeys(s.users) {
		if u := s.users[id]; strings.EqualFold(u.Email, email) {
			found = cloneUser(u)
			break
		}
	}
	if found == nil {
		return nil, storage.ErrNotFound
	}
	return found, nil
}

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	if err := storage.PrepareUser(u); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == u.Username {
			return storage.ErrConflict
		}
	}

	now := s.now()
	u.ID = s.nextIDLocked("users")
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users[u.ID] = *cloneUser(*u)
	return nil
}

func (s *Store) UpdateUser(_ context.Context, id uint, patch storage.UserPatch) (*models.User, error) {
	return s.updateUser(id, patch.Apply)
}

func (s *Store) UpdateUserResetToken(_ context.Context, id uint, token string, expiry time.Time) (*models.User, error) {
	return s.updateUser(id, func(u *models.User) {
		u.ResetToken = &token
		u.ResetTokenExpiry = &expiry
	})
}

func (s *Store) UpdateUserPassword(_ context.Context, id uint, hash string) (*models.User, error) {
	return s.updateUser(id, func(u *models.User) {
		u.Password = hash
		u.ResetToken = nil
		u.ResetTokenExpiry = nil
	})
}

func (s *Store) updateUser(id uint, mutate func(*models.User)) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	mutate(&u)
	u.UpdatedAt = s.now()
	s.users[id] = *cloneUser(u)
	return cloneUser(u), nil
}

func (s *Store) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(s.users))
	for _, id := range sortedKeys(s.users) {
		out = append(out, *cloneUser(s.users[id]))
	}
	return out, nil
}

// BusinessStore implementation -------------------------------------------------

func (s *Store) GetBusiness(_ context.Context, id uint) (*models.Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.businesses[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &b, nil
}

func (s *Store) GetBusinessByUserID(_ context.Context, userID uint) (*models.Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.businesses {
		if b.UserID == userID {
			return &b, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) GetBusinessByPhone(_ context.Context, phone string) (*models.Business, error) {
	keys := storage.PhoneKeys(phone)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range sortedKeys(s.businesses) {
		b := s.businesses[id]
		for _, k := range keys {
			if b.PhoneDigits == k {
				return &b, nil
			}
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) CreateBusiness(_ context.Context, b *models.Business) error {
	if err := storage.PrepareBusiness(b); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.businesses {
		if existing.UserID == b.UserID {
			return storage.ErrConflict
		}
	}

	now := s.now()
	b.ID = s.nextIDLocked("businesses")
	b.CreatedAt = now
	b.UpdatedAt = now
	s.businesses[b.ID] = *b
	return nil
}

func (s *Store) UpdateBusiness(_ context.Context, id uint, patch storage.BusinessPatch) (*models.Business, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.businesses[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	patch.Apply(&b)
	b.UpdatedAt = s.now()
	s.businesses[id] = b
	return &b, nil
}

func (s *Store) ListBusinesses(_ context.Context) ([]models.Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Business, 0, len(s.businesses))
	for _, id := range sortedKeys(s.businesses) {
		out = append(out, s.businesses[id])
	}
	return out, nil
}

// HoursStore implementation ----------------------------------------------------

func (s *Store) ListHours(_ context.Context, businessID uint) ([]models.HoursOfOperation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.HoursOfOperation{}
	for _, id := range sortedKeys(s.hours) {
		if h := s.hours[id]; h.BusinessID == businessID {
			out = append(out, cloneHours(h))
		}
	}
	return out, nil
}

func (s *Store) CreateHours(_ context.Context, h *models.HoursOfOperation) error {
	if err := storage.PrepareHours(h); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	h.ID = s.nextIDLocked("hours_of_operation")
	s.hours[h.ID] = cloneHours(*h)
	return nil
}

func (s *Store) UpdateHours(_ context.Context, id uint, patch storage.HoursPatch) (*models.HoursOfOperation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.hours[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	h = cloneHours(h)
	patch.Apply(&h)
	s.hours[id] = h
	out := cloneHours(h)
	return &out, nil
}

func (s *Store) DeleteHoursByBusinessID(_ context.Context, businessID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, h := range s.hours {
		if h.BusinessID == businessID {
			delete(s.hours, id)
		}
	}
	return nil
}

// FAQStore implementation ------------------------------------------------------

func (s *Store) ListFAQs(_ context.Context, businessID uint) ([]models.FAQ, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.FAQ{}
	for _, id := range sortedKeys(s.faqs) {
		if f := s.faqs[id]; f.BusinessID == businessID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *Store) CreateFAQ(_ context.Context, f *models.FAQ) error {
	if err := storage.PrepareFAQ(f); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f.ID = s.nextIDLocked("faqs")
	s.faqs[f.ID] = *f
	return nil
}

func (s *Store) UpdateFAQ(_ context.Context, id uint, patch storage.FAQPatch) (*models.FAQ, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.faqs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	patch.Apply(&f)
	s.faqs[id] = f
	return &f, nil
}

func (s *Store) DeleteFAQsByBusinessID(_ context.Context, businessID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, f := range s.faqs {
		if f.BusinessID == businessID {
			delete(s.faqs, id)
		}
	}
	return nil
}

// CallStore implementation -----------------------------------------------------

func (s *Store) ListCalls(_ context.Context, businessID uint) ([]models.Call, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Call{}
	for _, c := range s.calls {
		if c.BusinessID == businessID {
			out = append(out, cloneCall(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.After(out[j].StartTime)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) GetCall(_ context.Context, id uint) (*models.Call, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.calls[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := cloneCall(c)
	return &out, nil
}

func (s *Store) CreateCall(_ context.Context, c *models.Call) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := storage.PrepareCall(c, s.now()); err != nil {
		return err
	}
	c.ID = s.nextIDLocked("calls")
	s.calls[c.ID] = cloneCall(*c)
	return nil
}

func (s *Store) UpdateCall(_ context.Context, id uint, patch storage.CallPatch) (*models.Call, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.calls[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c = cloneCall(c)
	patch.Apply(&c)
	s.calls[id] = c
	out := cloneCall(c)
	return &out, nil
}

func (s *Store) CountCalls(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.calls)), nil
}

// BookingStore implementation --------------------------------------------------

func (s *Store) ListBookings(_ context.Context, businessID uint) ([]models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Booking{}
	for _, b := range s.bookings {
		if b.BusinessID == businessID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetBooking(_ context.Context, id uint) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &b, nil
}

func (s *Store) CreateBooking(_ context.Context, b *models.Booking) error {
	if err := storage.PrepareBooking(b); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	b.ID = s.nextIDLocked("bookings")
	b.CreatedAt = now
	b.UpdatedAt = now
	s.bookings[b.ID] = *b
	return nil
}

func (s *Store) UpdateBooking(_ context.Context, id uint, patch storage.BookingPatch) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	patch.Apply(&b)
	b.UpdatedAt = s.now()
	s.bookings[id] = b
	return &b, nil
}

func (s *Store) DeleteBooking(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.bookings, id)
	return nil
}

func (s *Store) CountBookings(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.bookings)), nil
}

// IntegrationStore implementation ----------------------------------------------

func (s *Store) ListIntegrations(_ context.Context, businessID uint) ([]models.Integration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Integration{}
	for _, id := range sortedKeys(s.integrations) {
		if i := s.integrations[id]; i.BusinessID == businessID {
			out = append(out, cloneIntegration(i))
		}
	}
	return out, nil
}

func (s *Store) GetIntegration(_ context.Context, id uint) (*models.Integration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.integrations[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := cloneIntegration(i)
	return &out, nil
}

func (s *Store) CreateIntegration(_ context.Context, i *models.Integration) error {
	if err := storage.PrepareIntegration(i); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.integrations {
		if existing.BusinessID == i.BusinessID && existing.Type == i.Type {
			return storage.ErrConflict
		}
	}

	now := s.now()
	i.ID = s.nextIDLocked("integrations")
	i.CreatedAt = now
	i.UpdatedAt = now
	s.integrations[i.ID] = cloneIntegration(*i)
	return nil
}

func (s *Store) UpdateIntegration(_ context.Context, id uint, patch storage.IntegrationPatch) (*models.Integration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.integrations[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	i = cloneIntegration(i)
	patch.Apply(&i)
	i.UpdatedAt = s.now()
	s.integrations[id] = i
	out := cloneIntegration(i)
	return &out, nil
}

func (s *Store) DeleteIntegration(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.integrations[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.integrations, id)
	return nil
}

// SubscriptionStore implementation ---------------------------------------------

func (s *Store) GetSubscription(_ context.Context, id uint) (*models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subscriptions[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := cloneSubscription(sub)
	return &out, nil
}

func (s *Store) GetSubscriptionByUserID(_ context.Context, userID uint) (*models.Subscription, error) {
	return s.findSubscription(func(sub models.Subscription) bool { return sub.UserID == userID })
}

func (s *Store) GetSubscriptionByStripeID(_ context.Context, stripeSubscriptionID string) (*models.Subscription, error) {
	if stripeSubscriptionID == "" {
		return nil, storage.ErrNotFound
	}
	return s.findSubscription(func(sub models.Subscription) bool {
		return sub.StripeSubscriptionID == stripeSubscriptionID
	})
}

func (s *Store) GetSubscriptionByCustomerID(_ context.Context, stripeCustomerID string) (*models.Subscription, error) {
	if stripeCustomerID == "" {
		return nil, storage.ErrNotFound
	}
	return s.findSubscription(func(sub models.Subscription) bool {
		return sub.StripeCustomerID == stripeCustomerID
	})
}

func (s *Store) findSubscription(match func(models.Subscription) bool) (*models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range sortedKeys(s.subscriptions) {
		if sub := s.subscriptions[id]; match(sub) {
			out := cloneSubscription(sub)
			return &out, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) CreateSubscription(_ context.Context, sub *models.Subscription) error {
	if err := storage.PrepareSubscription(sub); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.subscriptions {
		if existing.UserID == sub.UserID {
			return storage.ErrConflict
		}
	}

	now := s.now()
	sub.ID = s.nextIDLocked("subscriptions")
	sub.CreatedAt = now
	sub.UpdatedAt = now
	s.subscriptions[sub.ID] = cloneSubscription(*sub)
	return nil
}

func (s *Store) UpdateSubscription(_ context.Context, id uint, patch storage.SubscriptionPatch) (*models.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subscriptions[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	sub = cloneSubscription(sub)
	patch.Apply(&sub)
	sub.UpdatedAt = s.now()
	s.subscriptions[id] = sub
	out := cloneSubscription(sub)
	return &out, nil
}

func (s *Store) ListSubscriptions(_ context.Context) ([]models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Subscription, 0, len(s.subscriptions))
	for _, id := range sortedKeys(s.subscriptions) {
		out = append(out, cloneSubscription(s.subscriptions[id]))
	}
	return out, nil
}

// AuditStore implementation ----------------------------------------------------

func (s *Store) CreateAuditLog(_ context.Context, l *models.AuditLog) error {
	if err := storage.PrepareAuditLog(l); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l.ID = s.nextIDLocked("audit_logs")
	l.CreatedAt = s.now()
	s.auditLogs[l.ID] = *l
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, f storage.AuditFilter) ([]models.AuditLog, int64, error) {
	f = storage.NormalizeFilter(f)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.AuditLog
	for _, l := range s.auditLogs {
		if f.BusinessID != 0 && l.BusinessID != f.BusinessID {
			continue
		}
		if f.Action != "" && l.Action != f.Action {
			continue
		}
		if f.Entity != "" && l.Entity != f.Entity {
			continue
		}
		if f.From != nil && l.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !l.CreatedAt.Before(*f.To) {
			continue
		}
		matched = append(matched, l)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	if f.Offset >= len(matched) {
		return []models.AuditLog{}, total, nil
	}
	end := f.Offset + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return append([]models.AuditLog(nil), matched[f.Offset:end]...), total, nil
}

// helpers ----------------------------------------------------------------------

func sortedKeys[T any](m map[uint]T) []uint {
	keys := make([]uint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func cloneUser(u models.User) *models.User {
	if u.ResetToken != nil {
		t := *u.ResetToken
		u.ResetToken = &t
	}
	if u.ResetTokenExpiry != nil {
		t := *u.ResetTokenExpiry
		u.ResetTokenExpiry = &t
	}
	return &u
}

func cloneHours(h models.HoursOfOperation) models.HoursOfOperation {
	if h.OpenTime != nil {
		v := *h.OpenTime
		h.OpenTime = &v
	}
	if h.CloseTime != nil {
		v := *h.CloseTime
		h.CloseTime = &v
	}
	return h
}

func cloneCall(c models.Call) models.Call {
	if c.EndTime != nil {
		t := *c.EndTime
		c.EndTime = &t
	}
	return c
}

func cloneIntegration(i models.Integration) models.Integration {
	i.Config = i.Config.Clone()
	return i
}

func cloneSubscription(s models.Subscription) models.Subscription {
	if s.CurrentPeriodStart != nil {
		t := *s.CurrentPeriodStart
		s.CurrentPeriodStart = &t
	}
	if s.CurrentPeriodEnd != nil {
		t := *s.CurrentPeriodEnd
		s.CurrentPeriodEnd = &t
	}
	return s
}
