package models

import "time"

// AdminActionType identifies a moderation action recorded in the audit log.
type AdminActionType string

const (
	// AdminActionApprove records a provider being approved for listing.
	AdminActionApprove AdminActionType = "APPROVE"
	// AdminActionVerifyOn records the verified badge being granted.
	AdminActionVerifyOn AdminActionType = "VERIFY_ON"
	// AdminActionVerifyOff records the verified badge being revoked.
	AdminActionVerifyOff AdminActionType = "VERIFY_OFF"
	// AdminActionDisable records a provider being taken down.
	AdminActionDisable AdminActionType = "DISABLE"
	// AdminActionEnable records a disabled provider being restored.
	AdminActionEnable AdminActionType = "ENABLE"
	// AdminActionSetPending records a provider being sent back to review.
	AdminActionSetPending AdminActionType = "SET_PENDING"
	// AdminActionEdit records an admin edit to provider fields.
	AdminActionEdit AdminActionType = "EDIT"
)

// AdminAction is an append-only audit record of a moderation action.
// Rows are never updated or deleted; concurrent admins racing on the same
// provider resolve to last-write-wins with the full history preserved here.
type AdminAction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	AdminUserID *uint           `gorm:"index" json:"admin_user_id"`
	AdminUser   *User           `gorm:"foreignKey:AdminUserID" json:"admin_user,omitempty"`
	ProviderID  uint            `gorm:"not null;index" json:"provider_id"`
	Action      AdminActionType `gorm:"type:varchar(20);not null" json:"action"`
	Metadata    string          `gorm:"type:text" json:"metadata"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (AdminAction) TableName() string {
	return "admin_actions"
}
