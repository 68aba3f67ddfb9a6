package models

import "time"

type Subscription struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"uniqueIndex;not null" json:"userId"`
	Plan   string `gorm:"size:20;not null" json:"plan"`

	StripeCustomerID     string `gorm:"size:100;index" json:"stripeCustomerId"`
	StripeSubscriptionID string `gorm:"size:100;index" json:"stripeSubscriptionId"`

	Status             string     `gorm:"size:30;not null" json:"status"`
	CancelAtPeriodEnd  bool       `gorm:"not null" json:"cancelAtPeriodEnd"`
	CurrentPeriodStart *time.Time `json:"currentPeriodStart"`
	CurrentPeriodEnd   *time.Time `json:"currentPeriodEnd"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
