package models

import (
	"time"
)

// AuditLog records who did what to which record
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Actor     string    `gorm:"size:100" json:"actor"`        // staff email or "scheduler"
	Action    string    `gorm:"size:50;not null" json:"action"` // CREATE, CONFIRM, START, DONE, CANCEL, RESET, INVOICE
	Entity    string    `gorm:"size:50;not null" json:"entity"`
	EntityID  uint      `json:"entity_id"`
	Details   string    `gorm:"type:text" json:"details"`
	IPAddress string    `gorm:"size:45" json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}
