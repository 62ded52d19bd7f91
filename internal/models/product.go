package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/stockdesk/internal/variant"

	"gorm.io/gorm"
)

// AttributeList 商品的变体属性定义（颜色、尺码等）
type AttributeList []variant.Attribute

// Value 实现 driver.Valuer 接口
func (a AttributeList) Value() (driver.Value, error) {
	if a == nil {
		return json.Marshal([]variant.Attribute{})
	}
	return json.Marshal(a)
}

// Scan 实现 sql.Scanner 接口
func (a *AttributeList) Scan(value interface{}) error {
	if value == nil {
		*a = AttributeList{}
		return nil
	}
	bytes, err := scanBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, a)
}

// Product 商品表
type Product struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                          // 主键
	CategoryID      uint           `gorm:"not null;index" json:"category_id"`                             // 分类ID
	Slug            string         `gorm:"uniqueIndex;not null" json:"slug"`                              // 唯一标识
	Name            string         `gorm:"type:varchar(255);not null;index" json:"name"`                  // 商品名称
	Brand           string         `gorm:"type:varchar(128)" json:"brand"`                                // 品牌
	Description     string         `gorm:"type:text" json:"description"`                                  // 描述
	SKUPrefix       string         `gorm:"column:sku_prefix;type:varchar(32)" json:"sku_prefix"`          // SKU 编码前缀
	Attributes      AttributeList  `gorm:"type:json" json:"attributes"`                                   // 变体属性定义
	PriceAmount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"`     // 售价
	CompareAtAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"compare_at_price"` // 划线价
	CostAmount      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"cost_amount"`      // 成本价（用于库存价值）
	Currency        string         `gorm:"type:varchar(8);not null;default:'CNY'" json:"currency"`        // 币种
	Images          StringArray    `gorm:"type:json" json:"images"`                                       // 图片数组
	Tags            StringArray    `gorm:"type:json" json:"tags"`                                         // 标签数组
	IsActive        bool           `gorm:"not null;index" json:"is_active"`                               // 是否在售
	SortOrder       int            `gorm:"default:0;index" json:"sort_order"`                             // 排序权重
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt       time.Time      `json:"updated_at"`                                                    // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                                // 软删除时间

	// 关联
	Category Category     `gorm:"foreignKey:CategoryID" json:"category,omitempty"` // 分类信息
	SKUs     []ProductSKU `gorm:"foreignKey:ProductID" json:"skus,omitempty"`      // SKU 列表
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
