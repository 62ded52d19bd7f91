package repository

import (
	"strconv"
	"time"

	"github.com/stockdesk/internal/models"

	"gorm.io/gorm"
)

// ProductSKURepository SKU 与库存数量的读写；库存变更均为带条件的原子更新，返回受影响行数
type ProductSKURepository interface {
	ListByProduct(productID uint) ([]models.ProductSKU, error)
	GetByID(id uint) (*models.ProductSKU, error)
	ListLowStock(ids []uint) ([]models.ProductSKU, error)
	CreateBatch(items []models.ProductSKU) error
	Update(item *models.ProductSKU) error
	RetireByProduct(productID uint, at time.Time) (int64, error)
	DecreaseStock(skuID uint, quantity int, soldAt time.Time) (int64, error)
	IncreaseStock(skuID uint, quantity int) (int64, error)
	AdjustStock(skuID uint, delta int) (int64, error)
	WithTx(tx *gorm.DB) ProductSKURepository
}

// retiredSKUCodeMaxLen 与 sku_code 列宽一致
const retiredSKUCodeMaxLen = 64

type GormProductSKURepository struct {
	db *gorm.DB
}

func NewProductSKURepository(db *gorm.DB) *GormProductSKURepository {
	return &GormProductSKURepository{db: db}
}

func (r *GormProductSKURepository) WithTx(tx *gorm.DB) ProductSKURepository {
	if tx == nil {
		return r
	}
	return &GormProductSKURepository{db: tx}
}

func (r *GormProductSKURepository) ListByProduct(productID uint) ([]models.ProductSKU, error) {
	if productID == 0 {
		return nil, invalidArgument("product id")
	}
	var items []models.ProductSKU
	err := skuOrder(r.db.Where("product_id = ?", productID)).Find(&items).Error
	return items, err
}

func (r *GormProductSKURepository) GetByID(id uint) (*models.ProductSKU, error) {
	return findOne[models.ProductSKU](r.db.Preload("Product"), id)
}

// ListLowStock 启用且库存不高于自身阈值的 SKU，库存升序；ids 为空时不限范围
func (r *GormProductSKURepository) ListLowStock(ids []uint) ([]models.ProductSKU, error) {
	query := r.db.Preload("Product").Where("is_active = ? AND stock <= low_stock_threshold", true)
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}
	var items []models.ProductSKU
	err := query.Order("stock ASC, id ASC").Find(&items).Error
	return items, err
}

func (r *GormProductSKURepository) CreateBatch(items []models.ProductSKU) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.Omit("Product").Create(&items).Error
}

func (r *GormProductSKURepository) Update(item *models.ProductSKU) error {
	if item == nil {
		return invalidArgument("nil sku")
	}
	return r.db.Omit("Product").Save(item).Error
}

// RetireByProduct 软删除商品当前全部 SKU 并清零库存。
// sku_code 改写为 "<原编码>~<id>" 以释放唯一索引，历史销售与退货仍可按 id 找回原记录。
func (r *GormProductSKURepository) RetireByProduct(productID uint, at time.Time) (int64, error) {
	if productID == 0 {
		return 0, invalidArgument("product id")
	}
	var items []models.ProductSKU
	if err := r.db.Select("id", "sku_code").Where("product_id = ?", productID).Find(&items).Error; err != nil {
		return 0, err
	}
	for _, item := range items {
		err := r.db.Model(&models.ProductSKU{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
			"sku_code":   retiredSKUCode(item.SKUCode, item.ID),
			"stock":      0,
			"is_active":  false,
			"deleted_at": at,
		}).Error
		if err != nil {
			return 0, err
		}
	}
	return int64(len(items)), nil
}

func retiredSKUCode(code string, id uint) string {
	suffix := "~" + strconv.FormatUint(uint64(id), 10)
	if limit := retiredSKUCodeMaxLen - len(suffix); len(code) > limit {
		code = code[:limit]
	}
	return code + suffix
}

func (r *GormProductSKURepository) stock(skuID uint, guard string, args ...interface{}) *gorm.DB {
	query := r.db.Model(&models.ProductSKU{}).Where("id = ?", skuID)
	if guard != "" {
		query = query.Where(guard, args...)
	}
	return query
}

// DecreaseStock 出库；库存不足时不更新并返回 0
func (r *GormProductSKURepository) DecreaseStock(skuID uint, quantity int, soldAt time.Time) (int64, error) {
	if skuID == 0 || quantity <= 0 {
		return 0, invalidArgument("stock decrease")
	}
	return rowsAffected(r.stock(skuID, "stock >= ?", quantity).Updates(map[string]interface{}{
		"stock":        gorm.Expr("stock - ?", quantity),
		"last_sold_at": soldAt,
	}))
}

// IncreaseStock 退货回库
func (r *GormProductSKURepository) IncreaseStock(skuID uint, quantity int) (int64, error) {
	if skuID == 0 || quantity <= 0 {
		return 0, invalidArgument("stock increase")
	}
	return rowsAffected(r.stock(skuID, "").Update("stock", gorm.Expr("stock + ?", quantity)))
}

// AdjustStock 人工盘点；结果为负时不更新并返回 0
func (r *GormProductSKURepository) AdjustStock(skuID uint, delta int) (int64, error) {
	if skuID == 0 || delta == 0 {
		return 0, invalidArgument("stock adjust")
	}
	return rowsAffected(r.stock(skuID, "stock + ? >= 0", delta).Update("stock", gorm.Expr("stock + ?", delta)))
}
