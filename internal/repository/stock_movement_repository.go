package repository

import (
	"github.com/stockdesk/internal/models"

	"gorm.io/gorm"
)

// StockMovementRepository 库存流水数据访问接口
type StockMovementRepository interface {
	Create(movement *models.StockMovement) error
	CreateBatch(movements []models.StockMovement) error
	List(filter StockMovementFilter) ([]models.StockMovement, int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) StockMovementRepository
}

// GormStockMovementRepository GORM 实现
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewStockMovementRepository 创建库存流水仓库
func NewStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStockMovementRepository) WithTx(tx *gorm.DB) StockMovementRepository {
	if tx == nil {
		return r
	}
	return &GormStockMovementRepository{db: tx}
}

// Transaction 执行事务
func (r *GormStockMovementRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// Create 写入一条流水
func (r *GormStockMovementRepository) Create(movement *models.StockMovement) error {
	return r.db.Create(movement).Error
}

// CreateBatch 批量写入流水
func (r *GormStockMovementRepository) CreateBatch(movements []models.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.db.Create(&movements).Error
}

// List 流水列表
func (r *GormStockMovementRepository) List(filter StockMovementFilter) ([]models.StockMovement, int64, error) {
	query := r.db.Model(&models.StockMovement{})
	if filter.SKUID > 0 {
		query = query.Where("sku_id = ?", filter.SKUID)
	}
	if filter.ProductID > 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []models.StockMovement
	if err := query.Scopes(paginate(filter.Page, filter.PageSize)).
		Order("id DESC").
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
