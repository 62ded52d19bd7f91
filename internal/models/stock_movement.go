package models

import "time"

// StockMovement 库存流水表（只追加）
type StockMovement struct {
	ID         uint      `gorm:"primarykey" json:"id"`                        // 主键
	SKUID      uint      `gorm:"column:sku_id;not null;index" json:"sku_id"`  // SKU ID
	ProductID  uint      `gorm:"not null;index" json:"product_id"`            // 商品ID
	Type       string    `gorm:"type:varchar(20);not null;index" json:"type"` // 流水类型
	Quantity   int       `gorm:"not null" json:"quantity"`                    // 变动数量（正为入库，负为出库）
	StockAfter int       `gorm:"not null" json:"stock_after"`                 // 变动后库存
	RefType    string    `gorm:"type:varchar(20)" json:"ref_type"`            // 关联单据类型（sale/return）
	RefID      uint      `gorm:"index" json:"ref_id"`                         // 关联单据ID
	Reason     string    `gorm:"type:varchar(255)" json:"reason"`             // 备注原因
	OperatorID uint      `gorm:"index" json:"operator_id"`                    // 操作管理员
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                     // 创建时间
}

// TableName 指定表名
func (StockMovement) TableName() string {
	return "stock_movements"
}
