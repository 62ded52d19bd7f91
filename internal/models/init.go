package models

import (
	"fmt"

	"github.com/stockdesk/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

const (
	bootstrapUsername = "admin"
	bootstrapPassword = "admin123"
)

// InitDefaultAdmin 空库时创建首个超级管理员；已有账号时只保证内置 admin 仍是超管
func InitDefaultAdmin(username, password string) error {
	var count int64
	if err := DB.Model(&Admin{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return DB.Model(&Admin{}).
			Where("username = ? AND is_super = ?", bootstrapUsername, false).
			Update("is_super", true).Error
	}

	if username == "" {
		username = bootstrapUsername
	}
	usingDefault := password == ""
	if usingDefault {
		password = bootstrapPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	// 首个账号无论叫什么都是超管，否则没有人能分配角色
	if err := DB.Create(&Admin{
		Username:     username,
		DisplayName:  username,
		PasswordHash: string(hash),
		IsSuper:      true,
	}).Error; err != nil {
		return err
	}

	if usingDefault {
		logger.Warnw("bootstrap_admin_default_password", "username", username)
	} else {
		logger.Infow("bootstrap_admin_created", "username", username)
	}
	return nil
}
