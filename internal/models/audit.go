package models

import (
	"time"
)

const (
	AuditTierCreated          = "tier_created"
	AuditTierUpdated          = "tier_updated"
	AuditTierDeleted          = "tier_deleted"
	AuditTierReplaced         = "tier_replaced"
	AuditEmployeeQuotaUpdated = "employee_quota_updated"
	AuditEmployeeOnboarded    = "employee_onboarded"
)

// Represents one recorded leave mutation
type AuditEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
	ActorID   uint      `gorm:"index" json:"actorId"`
	Action    string    `gorm:"index;not null" json:"action"`
	Subject   string    `gorm:"index" json:"subject"`
	Detail    string    `json:"detail,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
}

func (AuditEntry) TableName() string {
	return "leave_audit_entries"
}
