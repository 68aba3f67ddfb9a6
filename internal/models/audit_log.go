package models

import "time"

// AuditLog is one recorded change. Rows are listed per business, newest
// first, so the composite index leads with business_id.
type AuditLog struct {
	ID         uint  `gorm:"primaryKey" json:"id"`
	BusinessID uint  `gorm:"index:idx_audit_business_created,priority:1" json:"businessId"`
	UserID     *uint `json:"userId"`

	Action   string `gorm:"size:50;not null;index" json:"action"`
	Entity   string `gorm:"size:50" json:"entity"`
	EntityID *uint  `json:"entityId"`
	Metadata string `gorm:"type:text" json:"metadata"`

	CreatedAt time.Time `gorm:"index:idx_audit_business_created,priority:2" json:"createdAt"`
}
