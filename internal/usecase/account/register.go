package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/BruksfildServices01/micro8gents-api/internal/domain/subscription"
	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/models"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
	"github.com/BruksfildServices01/micro8gents-api/internal/validators"
)

// ======================================================
// INPUT
// ======================================================

type RegisterInput struct {
	Username     string
	Password     string
	Email        string
	BusinessName string
}

// ======================================================
// USE CASE
// ======================================================

// Register creates the user together with an empty business and a free
// subscription.
type Register struct {
	store    storage.Storage
	resolver validators.Resolver
	now      func() time.Time
}

// NewRegister: a nil resolver skips the email domain check.
func NewRegister(
	store storage.Storage,
	resolver validators.Resolver,
) *Register {
	return &Register{
		store:    store,
		resolver: resolver,
		now:      time.Now,
	}
}

func (uc *Register) Execute(
	ctx context.Context,
	in RegisterInput,
) (*models.User, error) {

	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	// --------------------------------------------------
	// Username
	// --------------------------------------------------
	_, err := uc.store.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, httperr.ErrBusiness("username_taken")
	case !errors.Is(err, storage.ErrNotFound):
		return nil, err
	}

	if uc.resolver != nil && !validators.IsEmailDomainValid(ctx, uc.resolver, email) {
		return nil, httperr.ErrBusiness("invalid_email_domain")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// User
	// --------------------------------------------------
	user := &models.User{
		Username:     username,
		Password:     string(hashed),
		Email:        email,
		BusinessName: strings.TrimSpace(in.BusinessName),
		Role:         models.RoleUser,
	}
	if err := uc.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, httperr.ErrBusiness("username_taken")
		}
		return nil, err
	}

	// --------------------------------------------------
	// Business + free subscription
	// --------------------------------------------------
	if err := uc.store.CreateBusiness(ctx, &models.Business{
		UserID:       user.ID,
		BusinessName: user.BusinessName,
		Email:        email,
	}); err != nil {
		return nil, err
	}

	start, end := subscription.FreePeriod(uc.now().UTC())
	if err := uc.store.CreateSubscription(ctx, &models.Subscription{
		UserID:             user.ID,
		Plan:               string(subscription.PlanFree),
		Status:             subscription.StatusActive,
		CurrentPeriodStart: &start,
		CurrentPeriodEnd:   &end,
	}); err != nil {
		return nil, err
	}

	return user, nil
}
