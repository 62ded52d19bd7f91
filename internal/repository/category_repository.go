package repository

import (
	"github.com/stockdesk/internal/models"

	"gorm.io/gorm"
)

const categoryOrder = "sort_order DESC, id ASC"

// CategoryRepository 商品分类；名称为多语言 JSON
type CategoryRepository interface {
	List() ([]models.Category, error)
	Search(keyword string) ([]models.Category, error)
	GetByID(id uint) (*models.Category, error)
	Create(category *models.Category) error
	Update(category *models.Category) error
	Delete(id uint) error
	CountBySlug(slug string, excludeID *uint) (int64, error)
	CountProducts(categoryID uint) (int64, error)
}

type GormCategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

func (r *GormCategoryRepository) List() ([]models.Category, error) {
	return r.Search("")
}

// Search 匹配 slug 或任一语言的名称，空关键字返回全部
func (r *GormCategoryRepository) Search(keyword string) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.Scopes(keywordSearch(keyword, "slug", i18nPrefix+"name_json")).
		Order(categoryOrder).
		Find(&categories).Error
	return categories, err
}

func (r *GormCategoryRepository) GetByID(id uint) (*models.Category, error) {
	return findOne[models.Category](r.db, id)
}

func (r *GormCategoryRepository) Create(category *models.Category) error {
	return r.db.Create(category).Error
}

func (r *GormCategoryRepository) Update(category *models.Category) error {
	return r.db.Save(category).Error
}

func (r *GormCategoryRepository) Delete(id uint) error {
	return r.db.Delete(&models.Category{}, id).Error
}

func (r *GormCategoryRepository) CountBySlug(slug string, excludeID *uint) (int64, error) {
	return countSlug[models.Category](r.db, slug, excludeID)
}

// CountProducts 删除分类前检查是否仍被商品引用
func (r *GormCategoryRepository) CountProducts(categoryID uint) (int64, error) {
	return countRows[models.Product](r.db.Where("category_id = ?", categoryID))
}
