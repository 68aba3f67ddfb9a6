package models

import "time"

type Call struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	BusinessID uint `gorm:"index;not null" json:"businessId"`

	Caller string `gorm:"size:150" json:"caller"`
	Phone  string `gorm:"size:30" json:"phone"`
	Type   string `gorm:"size:100" json:"type"`

	StartTime time.Time  `gorm:"not null" json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
	Status    string     `gorm:"size:20;not null" json:"status"`
	Duration  string     `gorm:"size:20" json:"duration"`

	Recording  string `gorm:"size:500" json:"recording"`
	Transcript string `gorm:"type:text" json:"transcript"`
}
