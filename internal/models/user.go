package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Password string `gorm:"size:255;not null" json:"-"`
	Email    string `gorm:"size:255;index;not null" json:"email"`

	BusinessName string `gorm:"size:200" json:"businessName"`
	FullName     string `gorm:"size:150" json:"fullName"`
	Phone        string `gorm:"size:30" json:"phone"`
	Bio          string `gorm:"size:500" json:"bio"`
	Role         string `gorm:"size:20;not null" json:"role"`

	ResetToken       *string    `gorm:"size:128" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
