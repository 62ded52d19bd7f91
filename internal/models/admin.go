package models

import (
	"time"

	"gorm.io/gorm"
)

// Admin 后台账号。改密时 TokenVersion 自增并刷新 TokenInvalidBefore，
// 之前签发的 JWT 随之失效；IsSuper 跳过 RBAC
type Admin struct {
	ID                 uint           `gorm:"primarykey" json:"id"`
	Username           string         `gorm:"type:varchar(64);uniqueIndex:idx_admins_username;not null" json:"username"`
	DisplayName        string         `gorm:"type:varchar(64)" json:"display_name"`
	PasswordHash       string         `gorm:"not null" json:"-"`
	IsSuper            bool           `gorm:"not null;default:false" json:"is_super"`
	TokenVersion       uint64         `gorm:"not null;default:0" json:"-"`
	TokenInvalidBefore *time.Time     `json:"-"`
	LastLoginAt        *time.Time     `json:"last_login_at"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Admin) TableName() string { return "admins" }

// Label 展示用名称
func (a *Admin) Label() string {
	if a == nil {
		return ""
	}
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Username
}
