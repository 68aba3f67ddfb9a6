package account

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/BruksfildServices01/micro8gents-api/internal/httperr"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
)

const (
	resetTokenBytes = 32
	ResetTokenTTL   = time.Hour
)

type ResetMailer interface {
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

// ======================================================
// FORGOT PASSWORD
// ======================================================

// ForgotPassword never reveals whether the address is registered: unknown
// emails return nil.
type ForgotPassword struct {
	users     storage.UserStore
	mailer    ResetMailer
	clientURL string
	now       func() time.Time
}

func NewForgotPassword(
	users storage.UserStore,
	mailer ResetMailer,
	clientURL string,
) *ForgotPassword {
	return &ForgotPassword{
		users:     users,
		mailer:    mailer,
		clientURL: strings.TrimRight(clientURL, "/"),
		now:       time.Now,
	}
}

func (uc *ForgotPassword) Execute(ctx context.Context, email string) error {
	user, err := uc.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	token, err := newResetToken()
	if err != nil {
		return err
	}

	if _, err := uc.users.UpdateUserResetToken(ctx, user.ID, token, uc.now().Add(ResetTokenTTL)); err != nil {
		return err
	}

	return uc.mailer.SendPasswordReset(ctx, user.Email, uc.resetURL(token, user.Email))
}

func (uc *ForgotPassword) resetURL(token, email string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", email)
	return uc.clientURL + "/auth/reset-password?" + q.Encode()
}

func newResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// ======================================================
// RESET PASSWORD
// ======================================================

type ResetPasswordInput struct {
	Email    string
	Token    string
	Password string
}

type ResetPassword struct {
	users storage.UserStore
	now   func() time.Time
}

func NewResetPassword(users storage.UserStore) *ResetPassword {
	return &ResetPassword{users: users, now: time.Now}
}

func (uc *ResetPassword) Execute(ctx context.Context, in ResetPasswordInput) error {
	invalid := httperr.ErrBusiness("invalid_reset_token")

	user, err := uc.users.GetUserByEmail(ctx, strings.TrimSpace(in.Email))
	if errors.Is(err, storage.ErrNotFound) {
		return invalid
	}
	if err != nil {
		return err
	}

	if user.ResetToken == nil || user.ResetTokenExpiry == nil {
		return invalid
	}
	if subtle.ConstantTimeCompare([]byte(*user.ResetToken), []byte(in.Token)) != 1 {
		return invalid
	}
	if !uc.now().Before(*user.ResetTokenExpiry) {
		return invalid
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = uc.users.UpdateUserPassword(ctx, user.ID, string(hashed))
	return err
}
