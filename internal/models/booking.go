package models

import "time"

type Booking struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	BusinessID uint `gorm:"index;not null" json:"businessId"`

	Customer string    `gorm:"size:150;not null" json:"customer"`
	Phone    string    `gorm:"size:30" json:"phone"`
	Email    string    `gorm:"size:255" json:"email"`
	Service  string    `gorm:"size:150;not null" json:"service"`
	Date     time.Time `gorm:"index;not null" json:"date"`
	Status   string    `gorm:"size:20;not null" json:"status"`
	Notes    string    `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
