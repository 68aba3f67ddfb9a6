package models

import "time"

type Integration struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	BusinessID uint   `gorm:"uniqueIndex:idx_integrations_business_type;not null" json:"businessId"`
	Type       string `gorm:"uniqueIndex:idx_integrations_business_type;size:30;not null" json:"type"`
	Config     JSON   `gorm:"not null" json:"config"`
	Status     string `gorm:"size:20;not null" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
