package repository

import (
	"strings"

	"github.com/stockdesk/internal/models"

	"gorm.io/gorm"
)

// ReturnRepository 退货申请数据访问接口
type ReturnRepository interface {
	Create(item *models.ReturnRequest) error
	GetByID(id uint) (*models.ReturnRequest, error)
	List(filter ReturnListFilter) ([]models.ReturnRequest, int64, error)
	SumQuantityBySale(saleID uint, statuses []string) (int64, error)
	UpdateStatus(id uint, fromStatus string, updates map[string]interface{}) (int64, error)
	WithTx(tx *gorm.DB) ReturnRepository
}

// GormReturnRepository GORM 实现
type GormReturnRepository struct {
	db *gorm.DB
}

// NewReturnRepository 创建退货仓库
func NewReturnRepository(db *gorm.DB) *GormReturnRepository {
	return &GormReturnRepository{db: db}
}

// WithTx 绑定事务
func (r *GormReturnRepository) WithTx(tx *gorm.DB) ReturnRepository {
	if tx == nil {
		return r
	}
	return &GormReturnRepository{db: tx}
}

// Create 创建退货申请
func (r *GormReturnRepository) Create(item *models.ReturnRequest) error {
	return r.db.Omit("Sale").Create(item).Error
}

// GetByID 根据 ID 获取退货申请（含销售记录）
func (r *GormReturnRepository) GetByID(id uint) (*models.ReturnRequest, error) {
	return findOne[models.ReturnRequest](r.db.Preload("Sale"), id)
}

// List 退货申请列表
func (r *GormReturnRepository) List(filter ReturnListFilter) ([]models.ReturnRequest, int64, error) {
	query := r.db.Model(&models.ReturnRequest{})
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("return_requests.status = ?", status)
	}
	if filter.SaleID > 0 {
		query = query.Where("return_requests.sale_id = ?", filter.SaleID)
	}
	query = query.Scopes(keywordSearch(filter.Keyword,
		"return_requests.return_no",
		"EXISTS (SELECT 1 FROM sales s WHERE s.id = return_requests.sale_id AND (s.order_no {like} ? OR s.product_name {like} ?))",
	))
	if filter.CreatedFrom != nil {
		query = query.Where("return_requests.created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("return_requests.created_at < ?", *filter.CreatedTo)
	}

	var total int64
	if !filter.SkipCount {
		if err := query.Count(&total).Error; err != nil {
			return nil, 0, err
		}
	}

	var items []models.ReturnRequest
	if err := query.Scopes(paginate(filter.Page, filter.PageSize)).
		Preload("Sale").
		Order("return_requests.id DESC").
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// SumQuantityBySale 统计某销售记录在指定状态下的退货数量
func (r *GormReturnRepository) SumQuantityBySale(saleID uint, statuses []string) (int64, error) {
	var total int64
	query := r.db.Model(&models.ReturnRequest{}).Where("sale_id = ?", saleID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if err := query.Select("COALESCE(SUM(quantity), 0)").Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// UpdateStatus 仅当当前状态为 fromStatus 时更新（乐观并发控制）
func (r *GormReturnRepository) UpdateStatus(id uint, fromStatus string, updates map[string]interface{}) (int64, error) {
	if id == 0 || len(updates) == 0 {
		return 0, invalidArgument("return update")
	}
	return rowsAffected(r.db.Model(&models.ReturnRequest{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(updates))
}
