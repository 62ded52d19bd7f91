package service

import (
	"strings"
	"time"

	"github.com/stockdesk/internal/models"
	"github.com/stockdesk/internal/repository"
)

// 权限审计事件
const (
	AuditRoleCreate    = "role_create"
	AuditRoleDelete    = "role_delete"
	AuditPolicyGrant   = "policy_grant"
	AuditPolicyRevoke  = "policy_revoke"
	AuditAdminRolesSet = "admin_roles_set"
	AuditAdminCreate   = "admin_create"
	AuditAdminUpdate   = "admin_update"
	AuditAdminDelete   = "admin_delete"
)

// AccessAuditEntry 一次权限变更
type AccessAuditEntry struct {
	Event        string
	OperatorID   uint
	OperatorName string
	Target       *models.Admin
	Role         string
	Object       string
	Method       string
	RequestID    string
	Detail       models.JSON
}

// AccessAuditService 记录并查询权限变更
type AccessAuditService struct {
	repo repository.AccessAuditRepository
	now  func() time.Time
}

// NewAccessAuditService 创建权限审计服务
func NewAccessAuditService(repo repository.AccessAuditRepository) *AccessAuditService {
	return &AccessAuditService{repo: repo, now: time.Now}
}

// Record 写入审计日志；缺少操作人或事件的条目直接丢弃
func (s *AccessAuditService) Record(entry AccessAuditEntry) error {
	if s == nil || s.repo == nil || entry.OperatorID == 0 || strings.TrimSpace(entry.Event) == "" {
		return nil
	}
	row := &models.AccessAuditLog{
		Event:        entry.Event,
		OperatorID:   entry.OperatorID,
		OperatorName: entry.OperatorName,
		Role:         entry.Role,
		Object:       entry.Object,
		Method:       strings.ToUpper(entry.Method),
		RequestID:    entry.RequestID,
		Detail:       entry.Detail,
		CreatedAt:    s.now(),
	}
	if entry.Target != nil {
		id := entry.Target.ID
		row.TargetAdminID = &id
		row.TargetName = entry.Target.Label()
	}
	return s.repo.Create(row)
}

// List 分页查询审计日志
func (s *AccessAuditService) List(filter repository.AccessAuditFilter) ([]models.AccessAuditLog, int64, error) {
	if s == nil || s.repo == nil {
		return []models.AccessAuditLog{}, 0, nil
	}
	filter.Event = strings.TrimSpace(filter.Event)
	filter.Role = strings.TrimSpace(filter.Role)
	if filter.Role != "" && !strings.HasPrefix(filter.Role, "role:") {
		filter.Role = "role:" + filter.Role
	}
	return s.repo.List(filter)
}
