package repository

import (
	"github.com/stockdesk/internal/models"

	"gorm.io/gorm"
)

// adminListColumns 列表不带密码哈希与 Token 版本
var adminListColumns = []string{"id", "username", "display_name", "is_super", "last_login_at", "created_at", "updated_at"}

// AdminRepository 后台账号
type AdminRepository interface {
	GetByUsername(username string) (*models.Admin, error)
	GetByID(id uint) (*models.Admin, error)
	List() ([]models.Admin, error)
	Count() (int64, error)
	Create(admin *models.Admin) error
	Update(admin *models.Admin) error
	Delete(id uint) error
}

type GormAdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *GormAdminRepository {
	return &GormAdminRepository{db: db}
}

func (r *GormAdminRepository) GetByUsername(username string) (*models.Admin, error) {
	return findOne[models.Admin](r.db.Where("username = ?", username))
}

func (r *GormAdminRepository) GetByID(id uint) (*models.Admin, error) {
	return findOne[models.Admin](r.db, id)
}

func (r *GormAdminRepository) List() ([]models.Admin, error) {
	admins := []models.Admin{}
	err := r.db.Select(adminListColumns).Order("id ASC").Find(&admins).Error
	return admins, err
}

func (r *GormAdminRepository) Count() (int64, error) {
	return countRows[models.Admin](r.db)
}

func (r *GormAdminRepository) Create(admin *models.Admin) error {
	return r.db.Create(admin).Error
}

func (r *GormAdminRepository) Update(admin *models.Admin) error {
	return r.db.Save(admin).Error
}

// Delete 软删除，id 为 0 时忽略
func (r *GormAdminRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.Admin{}, id).Error
}
