package repository

import (
	"github.com/stockdesk/internal/models"

	"gorm.io/gorm"
)

// AccessAuditRepository 权限审计日志
type AccessAuditRepository interface {
	Create(entry *models.AccessAuditLog) error
	List(filter AccessAuditFilter) ([]models.AccessAuditLog, int64, error)
}

// GormAccessAuditRepository GORM 实现
type GormAccessAuditRepository struct {
	db *gorm.DB
}

// NewAccessAuditRepository 创建权限审计日志仓库
func NewAccessAuditRepository(db *gorm.DB) *GormAccessAuditRepository {
	return &GormAccessAuditRepository{db: db}
}

func (r *GormAccessAuditRepository) Create(entry *models.AccessAuditLog) error {
	return r.db.Create(entry).Error
}

// List 按时间倒序分页，total 为过滤后的总数
func (r *GormAccessAuditRepository) List(filter AccessAuditFilter) ([]models.AccessAuditLog, int64, error) {
	query := r.db.Model(&models.AccessAuditLog{}).Scopes(accessAuditConditions(filter))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	entries := []models.AccessAuditLog{}
	err := query.Scopes(paginate(filter.Page, filter.PageSize)).
		Order("created_at DESC").
		Order("id DESC").
		Find(&entries).Error
	return entries, total, err
}

func accessAuditConditions(filter AccessAuditFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		conds := map[string]interface{}{}
		if filter.Event != "" {
			conds["event"] = filter.Event
		}
		if filter.OperatorID != 0 {
			conds["operator_id"] = filter.OperatorID
		}
		if filter.TargetAdminID != 0 {
			conds["target_admin_id"] = filter.TargetAdminID
		}
		if filter.Role != "" {
			conds["role"] = filter.Role
		}
		if len(conds) > 0 {
			db = db.Where(conds)
		}
		if filter.From != nil {
			db = db.Where("created_at >= ?", *filter.From)
		}
		if filter.To != nil {
			db = db.Where("created_at <= ?", *filter.To)
		}
		return db
	}
}
