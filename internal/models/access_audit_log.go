package models

import "time"

// AccessAuditLog 管理员与角色权限变更记录
type AccessAuditLog struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	Event         string    `gorm:"type:varchar(64);index;not null" json:"event"`
	OperatorID    uint      `gorm:"index;not null" json:"operator_id"`
	OperatorName  string    `gorm:"type:varchar(64);not null;default:''" json:"operator_name"`
	TargetAdminID *uint     `gorm:"index" json:"target_admin_id,omitempty"`
	TargetName    string    `gorm:"type:varchar(64);not null;default:''" json:"target_name"`
	Role          string    `gorm:"type:varchar(120);index;not null;default:''" json:"role,omitempty"`
	Object        string    `gorm:"type:varchar(255);not null;default:''" json:"object,omitempty"`
	Method        string    `gorm:"type:varchar(16);not null;default:''" json:"method,omitempty"`
	RequestID     string    `gorm:"type:varchar(64);not null;default:''" json:"request_id"`
	Detail        JSON      `gorm:"type:json" json:"detail,omitempty"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (AccessAuditLog) TableName() string {
	return "access_audit_logs"
}
