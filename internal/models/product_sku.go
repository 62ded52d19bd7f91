package models

import (
	"time"

	"github.com/stockdesk/internal/variant"

	"gorm.io/gorm"
)

const (
	// DefaultSKUCode 无变体商品使用的默认 SKU 编码
	DefaultSKUCode = "DEFAULT"
)

// ProductSKU 商品 SKU 表（一个变体组合对应一行）
type ProductSKU struct {
	ID                uint           `gorm:"primarykey" json:"id"`                                                                       // 主键
	ProductID         uint           `gorm:"not null;index;uniqueIndex:idx_product_sku_code" json:"product_id"`                          // 商品ID
	SKUCode           string         `gorm:"column:sku_code;type:varchar(64);not null;uniqueIndex:idx_product_sku_code" json:"sku_code"` // SKU编码（同商品内唯一）
	Options           StringMap      `gorm:"type:json" json:"options"`                                                                   // 属性组合（小写属性名 -> 值）
	PriceAmount       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"`                                  // SKU 售价
	CostAmount        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"cost_amount"`                                   // SKU 成本
	Stock             int            `gorm:"not null;default:0" json:"stock"`                                                            // 当前库存
	LowStockThreshold int            `gorm:"not null;default:10" json:"low_stock_threshold"`                                             // 低库存阈值
	MinReorderQty     int            `gorm:"not null;default:5" json:"min_reorder_qty"`                                                  // 最小补货量
	WeightValue       float64        `gorm:"not null;default:0" json:"weight_value"`                                                     // 重量
	WeightUnit        string         `gorm:"type:varchar(4);not null;default:'g'" json:"weight_unit"`                                    // 重量单位 g/kg/lb/oz
	Length            float64        `gorm:"not null;default:0" json:"length"`                                                           // 长
	Width             float64        `gorm:"not null;default:0" json:"width"`                                                            // 宽
	Height            float64        `gorm:"not null;default:0" json:"height"`                                                           // 高
	DimensionUnit     string         `gorm:"type:varchar(4);not null;default:'mm'" json:"dimension_unit"`                                // 尺寸单位 mm/cm/in
	IsActive          bool           `gorm:"not null;index" json:"is_active"`                                                            // 是否启用
	SortOrder         int            `gorm:"default:0;index" json:"sort_order"`                                                          // 排序权重
	LastSoldAt        *time.Time     `gorm:"index" json:"last_sold_at"`                                                                  // 最近一次售出时间（库龄分析）
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                                                                    // 创建时间
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`                                                                    // 更新时间
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                                                                             // 软删除时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (ProductSKU) TableName() string {
	return "product_skus"
}

// ToVariation 转换为变体结构
func (s ProductSKU) ToVariation() variant.Variation {
	options := make(map[string]string, len(s.Options))
	for k, v := range s.Options {
		options[k] = v
	}
	return variant.Variation{
		Options:           options,
		InitialStock:      s.Stock,
		LowStockThreshold: s.LowStockThreshold,
		MinReorderQty:     s.MinReorderQty,
		Weight:            variant.Weight{Value: s.WeightValue, Unit: variant.WeightUnit(s.WeightUnit)},
		Dimensions: variant.Dimensions{
			Length: s.Length,
			Width:  s.Width,
			Height: s.Height,
			Unit:   variant.DimensionUnit(s.DimensionUnit),
		},
		IsActive: s.IsActive,
	}
}

// ApplyVariation 用变体元数据填充 SKU（不含价格与编码）
func (s *ProductSKU) ApplyVariation(v variant.Variation) {
	s.Options = StringMap{}
	for k, val := range v.Options {
		s.Options[k] = val
	}
	s.Stock = v.InitialStock
	s.LowStockThreshold = v.LowStockThreshold
	s.MinReorderQty = v.MinReorderQty
	s.WeightValue = v.Weight.Value
	s.WeightUnit = string(v.Weight.Unit)
	s.Length = v.Dimensions.Length
	s.Width = v.Dimensions.Width
	s.Height = v.Dimensions.Height
	s.DimensionUnit = string(v.Dimensions.Unit)
	s.IsActive = v.IsActive
}
