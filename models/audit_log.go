package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit actions written by admin operations.
const (
	AuditActionOverrideOutcome = "override_outcome"
	AuditActionWalletCredit    = "wallet_credit"
	AuditActionScheduleUpdate  = "schedule_update"
)

// Audited resource types.
const (
	AuditResourceRound  = "round"
	AuditResourceWallet = "wallet"
	AuditResourceMarket = "market"
)

// AuditValues represents values for audit logging
type AuditValues map[string]interface{}

// AuditLog represents an audit trail entry for admin actions
type AuditLog struct {
	ID           uuid.UUID   `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	ActorID      *uuid.UUID  `gorm:"type:uuid;index:idx_audit_logs_actor" json:"actor_id"`
	Action       string      `gorm:"type:varchar(50);not null" json:"action"`
	ResourceType string      `gorm:"type:varchar(50);not null" json:"resource_type"`
	ResourceID   string      `gorm:"type:varchar(100)" json:"resource_id"`
	OldValues    AuditValues `gorm:"type:jsonb" json:"old_values"`
	NewValues    AuditValues `gorm:"type:jsonb" json:"new_values"`
	CreatedAt    time.Time   `gorm:"autoCreateTime;index:idx_audit_logs_created_at" json:"created_at"`
}

// TableName specifies the table name for AuditLog model
func (*AuditLog) TableName() string {
	return "audit_logs"
}

// BeforeCreate sets up the model before creation
func (al *AuditLog) BeforeCreate(_ *gorm.DB) error {
	if al.ID == uuid.Nil {
		al.ID = uuid.New()
	}
	return nil
}

// Value implements driver.Valuer interface for AuditValues
func (av AuditValues) Value() (driver.Value, error) {
	if av == nil {
		return nil, nil
	}
	return json.Marshal(av)
}

// Scan implements sql.Scanner interface for AuditValues
func (av *AuditValues) Scan(value interface{}) error {
	return scanJSON(value, av)
}

// IsSystemAction checks if this audit log has no acting admin
func (al *AuditLog) IsSystemAction() bool {
	return al.ActorID == nil
}

// GetChangedFields returns the fields that were changed
func (al *AuditLog) GetChangedFields() []string {
	if al.OldValues == nil || al.NewValues == nil {
		return []string{}
	}

	var changedFields []string
	for field := range al.NewValues {
		if oldVal, exists := al.OldValues[field]; !exists || oldVal != al.NewValues[field] {
			changedFields = append(changedFields, field)
		}
	}

	return changedFields
}

// Validate performs validation on the audit log model
func (al *AuditLog) Validate() error {
	if al.Action == "" {
		return ErrInvalidAuditAction
	}
	if al.ResourceType == "" {
		return ErrInvalidResourceType
	}
	return nil
}

// NewAdminAuditLog creates an audit log entry for an admin action
func NewAdminAuditLog(actorID uuid.UUID, action, resourceType, resourceID string, oldValues, newValues AuditValues) *AuditLog {
	return &AuditLog{
		ActorID:      &actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		OldValues:    oldValues,
		NewValues:    newValues,
	}
}
