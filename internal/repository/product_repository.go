package repository

import (
	"strings"

	"github.com/stockdesk/internal/constants"
	"github.com/stockdesk/internal/models"

	"gorm.io/gorm"
)

// ProductRepository 商品主档；写入时不级联分类与 SKU
type ProductRepository interface {
	List(filter ProductListFilter) ([]models.Product, int64, error)
	GetByID(id uint) (*models.Product, error)
	GetBySlug(slug string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id uint) error
	CountBySlug(slug string, excludeID *uint) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) ProductRepository
}

const (
	skuSearchClause = "EXISTS (SELECT 1 FROM product_skus ps WHERE ps.product_id = products.id AND ps.deleted_at IS NULL AND ps.sku_code {like} ?)"
	activeSKUExists = "EXISTS (SELECT 1 FROM product_skus ps WHERE ps.product_id = products.id AND ps.is_active = ? AND ps.deleted_at IS NULL AND "
)

// stockStatusConditions out: 有启用 SKU 售罄；low: 有启用 SKU 低于阈值但未售罄；in: 没有启用 SKU 低于阈值
var stockStatusConditions = map[string]string{
	constants.StockStatusOut: activeSKUExists + "ps.stock <= 0)",
	constants.StockStatusLow: activeSKUExists + "ps.stock > 0 AND ps.stock <= ps.low_stock_threshold)",
	constants.StockStatusIn:  "NOT " + activeSKUExists + "ps.stock <= ps.low_stock_threshold)",
}

var productAssociations = []string{"SKUs", "Category"}

type GormProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) WithTx(tx *gorm.DB) ProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

func (r *GormProductRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

func (f ProductListFilter) scope(db *gorm.DB) *gorm.DB {
	if f.OnlyActive {
		db = db.Where("is_active = ?", true)
	}
	if f.CategoryID > 0 {
		db = db.Where("category_id = ?", f.CategoryID)
	}
	if cond, ok := stockStatusConditions[strings.ToLower(strings.TrimSpace(f.StockStatus))]; ok {
		db = db.Where(cond, true)
	}
	return db.Scopes(keywordSearch(f.Search, "slug", "name", "brand", skuSearchClause))
}

// List 按排序权重与创建时间倒序分页，SKU 总是预加载
func (r *GormProductRepository) List(filter ProductListFilter) ([]models.Product, int64, error) {
	query := r.db.Model(&models.Product{}).Scopes(filter.scope)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Preload("SKUs", skuOrder)
	if filter.WithCategory {
		query = query.Preload("Category")
	}
	var products []models.Product
	err := query.Scopes(paginate(filter.Page, filter.PageSize)).
		Order("sort_order DESC, created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func skuOrder(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC, id ASC")
}

func (r *GormProductRepository) GetByID(id uint) (*models.Product, error) {
	return findOne[models.Product](r.db.Preload("Category").Preload("SKUs", skuOrder), id)
}

func (r *GormProductRepository) GetBySlug(slug string) (*models.Product, error) {
	return findOne[models.Product](r.db.Where("slug = ?", slug))
}

func (r *GormProductRepository) Create(product *models.Product) error {
	return r.db.Omit(productAssociations...).Create(product).Error
}

func (r *GormProductRepository) Update(product *models.Product) error {
	return r.db.Omit(productAssociations...).Save(product).Error
}

// Delete 软删除商品与全部 SKU
func (r *GormProductRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductSKU{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, id).Error
	})
}

func (r *GormProductRepository) CountBySlug(slug string, excludeID *uint) (int64, error) {
	return countSlug[models.Product](r.db, slug, excludeID)
}
