package models

import (
	"time"

	"gorm.io/gorm"
)

// Category 商品分类。名称按语言存 JSON，前台列表按 sort_order 降序
type Category struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Slug      string         `gorm:"type:varchar(64);uniqueIndex:idx_categories_slug;not null" json:"slug"`
	NameJSON  JSON           `gorm:"type:json;not null" json:"name"`
	Icon      string         `gorm:"type:varchar(500)" json:"icon"`
	SortOrder int            `gorm:"not null;default:0;index:idx_categories_sort" json:"sort_order"`
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Category) TableName() string { return "categories" }
