package models

import "time"

type Business struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex;not null" json:"userId"`

	BusinessName string `gorm:"size:200" json:"businessName"`
	BusinessType string `gorm:"size:40;not null" json:"businessType"`
	Description  string `gorm:"type:text" json:"description"`

	Address string `gorm:"size:255" json:"address"`
	City    string `gorm:"size:100" json:"city"`
	State   string `gorm:"size:100" json:"state"`
	Zip     string `gorm:"size:20" json:"zip"`
	Country string `gorm:"size:100" json:"country"`
	Phone   string `gorm:"size:30" json:"phone"`
	Email   string `gorm:"size:255" json:"email"`
	Website string `gorm:"size:255" json:"website"`

	// PhoneDigits is Phone reduced to digits; inbound calls are matched on it.
	PhoneDigits string `gorm:"size:30;index" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HoursOfOperation is one weekday row. Closed days keep nil times.
type HoursOfOperation struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	BusinessID uint    `gorm:"index;not null" json:"businessId"`
	DayOfWeek  string  `gorm:"size:10;not null" json:"dayOfWeek"`
	OpenTime   *string `gorm:"size:5" json:"openTime"`
	CloseTime  *string `gorm:"size:5" json:"closeTime"`
	IsOpen     bool    `gorm:"not null" json:"isOpen"`
}

func (HoursOfOperation) TableName() string { return "hours_of_operation" }

type FAQ struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	BusinessID uint   `gorm:"index;not null" json:"businessId"`
	Question   string `gorm:"type:text;not null" json:"question"`
	Answer     string `gorm:"type:text;not null" json:"answer"`
}

func (FAQ) TableName() string { return "faqs" }
