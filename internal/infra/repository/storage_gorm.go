package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/micro8gents-api/internal/models"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
)

// GormStorage implements storage.Storage on top of gorm. It runs against
// postgres in production and sqlite in tests.
type GormStorage struct {
	db *gorm.DB
}

var _ storage.Storage = (*GormStorage)(nil)

func NewGormStorage(db *gorm.DB) *GormStorage {
	return &GormStorage{db: db}
}

func (r *GormStorage) now() time.Time {
	return time.Now().UTC()
}

// translate maps driver errors onto storage sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storage.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return storage.ErrConflict
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return storage.ErrConflict
	}
	return err
}

// updateByID applies cols to the row with the given id and returns the
// reloaded record. Models with an updated_at column are stamped even when
// cols is empty. Missing rows yield storage.ErrNotFound.
func updateByID[T any](
	ctx context.Context,
	db *gorm.DB,
	id uint,
	cols map[string]any,
) (*T, error) {

	var rec T
	if err := db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, translate(err)
	}

	if hasUpdatedAt(db, &rec) {
		if cols == nil {
			cols = map[string]any{}
		}
		cols["updated_at"] = nowFor(db)
	}

	if len(cols) > 0 {
		if err := db.WithContext(ctx).Model(&rec).Updates(cols).Error; err != nil {
			return nil, translate(err)
		}
	}

	var out T
	if err := db.WithContext(ctx).First(&out, id).Error; err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func hasUpdatedAt(db *gorm.DB, model any) bool {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return false
	}
	return stmt.Schema.LookUpField("UpdatedAt") != nil
}

func nowFor(db *gorm.DB) time.Time {
	if db.NowFunc != nil {
		return db.NowFunc()
	}
	return time.Now().UTC()
}

func deleteByID[T any](ctx context.Context, db *gorm.DB, id uint) error {
	var rec T
	res := db.WithContext(ctx).Delete(&rec, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func first[T any](ctx context.Context, db *gorm.DB, query string, args ...any) (*T, error) {
	var rec T
	if err := db.WithContext(ctx).Where(query, args...).First(&rec).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

// --------------------------------------------------
// Users
// --------------------------------------------------

func (r *GormStorage) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return first[models.User](ctx, r.db, "id = ?", id)
}

func (r *GormStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return first[models.User](ctx, r.db, "username = ?", username)
}

func (r *GormStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return first[models.User](ctx, r.db, "LOWER(email) = LOWER(?)", email)
}

func (r *GormStorage) CreateUser(ctx context.Context, u *models.User) error {
	if err := storage.PrepareUser(u); err != nil {
		return err
	}
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *GormStorage) UpdateUser(
	ctx context.Context,
	id uint,
	patch storage.UserPatch,
) (*models.User, error) {
	return updateByID[models.User](ctx, r.db, id, patch.Columns())
}

func (r *GormStorage) UpdateUserResetToken(
	ctx context.Context,
	id uint,
	token string,
	expiry time.Time,
) (*models.User, error) {
	return updateByID[models.User](ctx, r.db, id, map[string]any{
		"reset_token":        token,
		"reset_token_expiry": expiry,
	})
}

func (r *GormStorage) UpdateUserPassword(
	ctx context.Context,
	id uint,
	hash string,
) (*models.User, error) {
	return updateByID[models.User](ctx, r.db, id, map[string]any{
		"password":           hash,
		"reset_token":        nil,
		"reset_token_expiry": nil,
	})
}

func (r *GormStorage) ListUsers(ctx context.Context) ([]models.User, error) {
	out := []models.User{}
	err := r.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, translate(err)
}

// --------------------------------------------------
// Businesses
// --------------------------------------------------

func (r *GormStorage) GetBusiness(ctx context.Context, id uint) (*models.Business, error) {
	return first[models.Business](ctx, r.db, "id = ?", id)
}

func (r *GormStorage) GetBusinessByUserID(ctx context.Context, userID uint) (*models.Business, error) {
	return first[models.Business](ctx, r.db, "user_id = ?", userID)
}

func (r *GormStorage) GetBusinessByPhone(ctx context.Context, phone string) (*models.Business, error) {
	keys := storage.PhoneKeys(phone)
	if len(keys) == 0 {
		return nil, storage.ErrNotFound
	}
	return first[models.Business](ctx, r.db, "phone_digits IN ?", keys)
}

func (r *GormStorage) CreateBusiness(ctx context.Context, b *models.Business) error {
	if err := storage.PrepareBusiness(b); err != nil {
		return err
	}
	return translate(r.db.WithContext(ctx).Create(b).Error)
}

func (r *GormStorage) UpdateBusiness(
	ctx context.Context,
	id uint,
	patch storage.BusinessPatch,
) (*models.Business, error) {
	return updateByID[models.Business](ctx, r.db, id, patch.Columns())
}

func (r *GormStorage) ListBusinesses(ctx context.Context) ([]models.Business, error) {
	out := []models.Business{}
	err := r.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, translate(err)
}

// --------------------------------------------------
// Hours of operation
// --------------------------------------------------

func (r *GormStorage) ListHours(ctx context.Context, businessID uint) ([]models.HoursOfOperation, error) {
	out := []models.HoursOfOperation{}
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("id").
		Find(&out).Error
	return out, translate(err)
}

func (r *GormStorage) CreateHours(ctx context.Context, h *models.HoursOfOperation) error {
	if err := storage.PrepareHours(h); err != nil {
		return err
	}
	return translate(r.db.WithContext(ctx).Create(h).Error)
}

func (r *GormStorage) UpdateHours(
	ctx context.Context,
	id uint,
	patch storage.HoursPatch,
) (*models.HoursOfOperation, error) {
	return updateByID[models.HoursOfOperation](ctx, r.db, id, patch.Columns())
}

func (r *GormStorage) DeleteHoursByBusinessID(ctx context.Context, businessID uint) error {
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Delete(&models.HoursOfOperation{}).Error
	return translate(err)
}

// --------------------------------------------------
// FAQs
// --------------------------------------------------

func (r *GormStorage) ListFAQs(ctx context.Context, businessID uint) ([]models.FAQ, error) {
	out := []models.FAQ{}
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("id").
		Find(&out).Error
	return out, translate(err)
}

func (r *GormStorage) CreateFAQ(ctx context.Context, f *models.FAQ) error {
	if err := storage.PrepareFAQ(f); err != nil {
		return err
	}
	return translate(r.db.WithContext(ctx).Create(f).Error)
}

func (r *GormStorage) UpdateFAQ(
	ctx context.Context,
	id uint,
	patch storage.FAQPatch,
) (*models.FAQ, error) {
	return updateByID[models.FAQ](ctx, r.db, id, patch.Columns())
}

func (r *GormStorage) DeleteFAQsByBusinessID(ctx context.Context, businessID uint) error {
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Delete(&models.FAQ{}).Error
	return translate(err)
}

// --------------------------------------------------
// Calls
// --------------------------------------------------

func (r *GormStorage) ListCalls(ctx context.Context, businessID uint) ([]models.Call, error) {
	out := []models.Call{}
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("start_time DESC, id DESC").
		Find(&out).Error
	return out, translate(err)
}

func (r *GormStorage) GetCall(ctx context.Context, id uint) (*models.Call, error) {
	return first[models.Call](ctx, r.db, "id = ?", id)
}

func (r *GormStorage) CreateCall(ctx context.Context, c *models.Call) error {
	if err := storage.PrepareCall(c, r.now()); err != nil {
		return err
	}
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *GormStorage) UpdateCall(
	ctx context.Context,
	id uint,
	patch storage.CallPatch,
) (*models.Call, error) {
	return updateByID[models.Call](ctx, r.db, id, patch.Columns())
}

func (r *GormStorage) CountCalls(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Call{}).Count(&n).Error
	return n, translate(err)
}

// --------------------------------------------------
// Bookings
// --------------------------------------------------

func (r *GormStorage) ListBookings(ctx context.Context, businessID uint) ([]models.Booking, error) {
	out := []models.Booking{}
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("date ASC, id ASC").
		Find(&out).Error
	return out, translate(err)
}

func (r *GormStorage) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	return first[models.Booking](ctx, r.db, "id = ?", id)
}

func (r *GormStorage) CreateBooking(ctx context.Context, b *models.Booking) error {
	if err := storage.PrepareBooking(b); err != nil {
		return err
	}
	return translate(r.db.WithContext(ctx).Create(b).Error)
}

func (r *GormStorage) UpdateBooking(
	ctx context.Context,
	id uint,
	patch storage.BookingPatch,
) (*models.Booking, error) {
	return updateByID[models.Booking](ctx, r.db, id, patch.Columns())
}

func (r *GormStorage) DeleteBooking(ctx context.Context, id uint) error {
	return deleteByID[models.Booking](ctx, r.db, id)
}

func (r *GormStorage) CountBookings(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Booking{}).Count(&n).Error
	return n, translate(err)
}

// --------------------------------------------------
// Integrations
// --------------------------------------------------

func (r *GormStorage) ListIntegrations(ctx context.Context, businessID uint) ([]models.Integration, error) {
	out := []models.Integration{}
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("id").
		Find(&out).Error
	return out, translate(err)
}

func (r *GormStorage) GetIntegration(ctx context.Context, id uint) (*models.Integration, error) {
	return first[models.Integration](ctx, r.db, "id = ?", id)
}

func (r *GormStorage) CreateIntegration(ctx context.Context, i *models.Integration) error {
	if err := storage.PrepareIntegration(i); err != nil {
		return err
	}
	return translate(r.db.WithContext(ctx).Create(i).Error)
}

func (r *GormStorage) UpdateIntegration(
	ctx context.Context,
	id uint,
	patch storage.IntegrationPatch,
) (*models.Integration, error) {
	return updateByID[models.Integration](ctx, r.db, id, patch.Columns())
}

func (r *GormStorage) DeleteIntegration(ctx context.Context, id uint) error {
	return deleteByID[models.Integration](ctx, r.db, id)
}

// --------------------------------------------------
// Subscriptions
// --------------------------------------------------

func (r *GormStorage) GetSubscription(ctx context.Context, id uint) (*models.Subscription, error) {
	return first[models.Subscription](ctx, r.db, "id = ?", id)
}

func (r *GormStorage) GetSubscriptionByUserID(ctx context.Context, userID uint) (*models.Subscription, error) {
	return first[models.Subscription](ctx, r.db, "user_id = ?", userID)
}

func (r *GormStorage) GetSubscriptionByStripeID(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error) {
	if stripeSubscriptionID == "" {
		return nil, storage.ErrNotFound
	}
	return first[models.Subscription](ctx, r.db, "stripe_subscription_id = ?", stripeSubscriptionID)
}

func (r *GormStorage) GetSubscriptionByCustomerID(ctx context.Context, stripeCustomerID string) (*models.Subscription, error) {
	if stripeCustomerID == "" {
		return nil, storage.ErrNotFound
	}
	return first[models.Subscription](ctx, r.db, "stripe_customer_id = ?", stripeCustomerID)
}

func (r *GormStorage) CreateSubscription(ctx context.Context, s *models.Subscription) error {
	if err := storage.PrepareSubscription(s); err != nil {
		return err
	}
	return translate(r.db.WithContext(ctx).Create(s).Error)
}

func (r *GormStorage) UpdateSubscription(
	ctx context.Context,
	id uint,
	patch storage.SubscriptionPatch,
) (*models.Subscription, error) {
	return updateByID[models.Subscription](ctx, r.db, id, patch.Columns())
}

func (r *GormStorage) ListSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	out := []models.Subscription{}
	err := r.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, translate(err)
}

// --------------------------------------------------
// Audit logs
// --------------------------------------------------

func (r *GormStorage) CreateAuditLog(ctx context.Context, l *models.AuditLog) error {
	if err := storage.PrepareAuditLog(l); err != nil {
		return err
	}
	return translate(r.db.WithContext(ctx).Create(l).Error)
}

func (r *GormStorage) ListAuditLogs(
	ctx context.Context,
	f storage.AuditFilter,
) ([]models.AuditLog, int64, error) {

	f = storage.NormalizeFilter(f)

	filtered := func(db *gorm.DB) *gorm.DB {
		if f.BusinessID != 0 {
			db = db.Where("business_id = ?", f.BusinessID)
		}
		if f.Action != "" {
			db = db.Where("action = ?", f.Action)
		}
		if f.Entity != "" {
			db = db.Where("entity = ?", f.Entity)
		}
		if f.From != nil {
			db = db.Where("created_at >= ?", f.From.UTC())
		}
		if f.To != nil {
			db = db.Where("created_at < ?", f.To.UTC())
		}
		return db
	}

	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.AuditLog{}).
		Scopes(filtered).
		Count(&total).Error
	if err != nil {
		return nil, 0, translate(err)
	}

	out := []models.AuditLog{}
	err = r.db.WithContext(ctx).
		Scopes(filtered).
		Order("created_at DESC, id DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&out).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return out, total, nil
}
