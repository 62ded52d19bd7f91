package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/stockdesk/internal/models"
)

const authSnapshotTTL = 10 * time.Minute

// AuthSnapshot JWT 校验所需的管理员状态，避免每个请求都查库
type AuthSnapshot struct {
	AdminID       uint   `json:"admin_id"`
	TokenVersion  uint64 `json:"token_version"`
	InvalidBefore int64  `json:"invalid_before"`
	IsSuper       bool   `json:"is_super"`
}

// Accepts 令牌版本一致且签发时间不早于失效时间点
func (s *AuthSnapshot) Accepts(version uint64, issuedAt time.Time) bool {
	if s == nil || version != s.TokenVersion {
		return false
	}
	return s.InvalidBefore <= 0 || issuedAt.Unix() >= s.InvalidBefore
}

// SnapshotOf 从管理员记录生成快照
func SnapshotOf(admin *models.Admin) *AuthSnapshot {
	snap := &AuthSnapshot{AdminID: admin.ID, TokenVersion: admin.TokenVersion, IsSuper: admin.IsSuper}
	if admin.TokenInvalidBefore != nil {
		snap.InvalidBefore = admin.TokenInvalidBefore.Unix()
	}
	return snap
}

func authSnapshotKey(adminID uint) string {
	return fmt.Sprintf("auth:admin:%d", adminID)
}

// LoadAuthSnapshot 未命中或 Redis 未启用时返回 nil
func LoadAuthSnapshot(ctx context.Context, adminID uint) (*AuthSnapshot, error) {
	var snap AuthSnapshot
	hit, err := GetJSON(ctx, authSnapshotKey(adminID), &snap)
	if err != nil || !hit {
		return nil, err
	}
	return &snap, nil
}

// StoreAuthSnapshot 管理员登录、改密、变更超管标记后刷新
func StoreAuthSnapshot(ctx context.Context, admin *models.Admin) error {
	if admin == nil || admin.ID == 0 {
		return nil
	}
	return SetJSON(ctx, authSnapshotKey(admin.ID), SnapshotOf(admin), authSnapshotTTL)
}

// ForgetAuthSnapshot 删除管理员时清理
func ForgetAuthSnapshot(ctx context.Context, adminID uint) error {
	return Del(ctx, authSnapshotKey(adminID))
}
