package account

import (
	"context"
	"strings"

	"github.com/BruksfildServices01/micro8gents-api/internal/models"
	"github.com/BruksfildServices01/micro8gents-api/internal/storage"
)

type ProfileInput struct {
	FullName *string
	Email    *string
	Phone    *string
	Bio      *string
}

type UpdateProfile struct {
	users storage.UserStore
}

func NewUpdateProfile(users storage.UserStore) *UpdateProfile {
	return &UpdateProfile{users: users}
}

func (uc *UpdateProfile) Execute(
	ctx context.Context,
	userID uint,
	in ProfileInput,
) (*models.User, error) {

	patch := storage.UserPatch{
		FullName: trimmed(in.FullName),
		Phone:    trimmed(in.Phone),
		Bio:      in.Bio,
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		patch.Email = &email
	}

	return uc.users.UpdateUser(ctx, userID, patch)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
