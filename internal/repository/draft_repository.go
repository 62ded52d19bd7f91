package repository

import (
	"time"

	"github.com/stockdesk/internal/models"

	"gorm.io/gorm"
)

// DraftRepository 商品向导草稿数据访问接口
type DraftRepository interface {
	Create(draft *models.ProductDraft) error
	GetByToken(token string) (*models.ProductDraft, error)
	ListByAdmin(adminID uint) ([]models.ProductDraft, error)
	Update(draft *models.ProductDraft) error
	DeleteByToken(token string) error
	DeleteOlderThan(before time.Time) (int64, error)
}

// GormDraftRepository GORM 实现
type GormDraftRepository struct {
	db *gorm.DB
}

// NewDraftRepository 创建草稿仓库
func NewDraftRepository(db *gorm.DB) *GormDraftRepository {
	return &GormDraftRepository{db: db}
}

// Create 创建草稿
func (r *GormDraftRepository) Create(draft *models.ProductDraft) error {
	return r.db.Create(draft).Error
}

// GetByToken 根据令牌获取草稿
func (r *GormDraftRepository) GetByToken(token string) (*models.ProductDraft, error) {
	return findOne[models.ProductDraft](r.db.Where("token = ?", token))
}

// ListByAdmin 获取管理员的草稿列表
func (r *GormDraftRepository) ListByAdmin(adminID uint) ([]models.ProductDraft, error) {
	var drafts []models.ProductDraft
	if err := r.db.Where("admin_id = ?", adminID).Order("updated_at DESC").Find(&drafts).Error; err != nil {
		return nil, err
	}
	return drafts, nil
}

// Update 保存草稿
func (r *GormDraftRepository) Update(draft *models.ProductDraft) error {
	return r.db.Save(draft).Error
}

// DeleteByToken 删除草稿
func (r *GormDraftRepository) DeleteByToken(token string) error {
	return r.db.Where("token = ?", token).Delete(&models.ProductDraft{}).Error
}

// DeleteOlderThan 清理长时间未更新的草稿
func (r *GormDraftRepository) DeleteOlderThan(before time.Time) (int64, error) {
	result := r.db.Where("updated_at < ?", before).Delete(&models.ProductDraft{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
