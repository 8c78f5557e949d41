package models

import "time"

// AuthzAuditLog 后台授权变更审计日志
type AuthzAuditLog struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	OperatorUserID uint      `gorm:"index;not null" json:"operator_user_id"`
	OperatorEmail  string    `gorm:"type:varchar(255);index;not null;default:''" json:"operator_email"`
	TargetUserID   *uint     `gorm:"index" json:"target_user_id,omitempty"`
	TargetEmail    string    `gorm:"type:varchar(255);index;not null;default:''" json:"target_email"`
	Action         string    `gorm:"type:varchar(100);index;not null" json:"action"`
	Role           string    `gorm:"type:varchar(120);index;not null;default:''" json:"role"`
	RequestID      string    `gorm:"type:varchar(64);index;not null;default:''" json:"request_id"`
	DetailJSON     JSON      `gorm:"type:json" json:"detail"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (AuthzAuditLog) TableName() string {
	return "authz_audit_logs"
}
