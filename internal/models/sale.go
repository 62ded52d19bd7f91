package models

import "time"

// Sale 销售记录表（一行对应一个 SKU 的一次成交）
type Sale struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                         // 主键
	OrderNo        string    `gorm:"type:varchar(64);not null;index" json:"order_no"`              // 订单号
	ProductID      uint      `gorm:"not null;index" json:"product_id"`                             // 商品ID
	SKUID          uint      `gorm:"column:sku_id;not null;index" json:"sku_id"`                   // SKU ID
	ProductName    string    `gorm:"type:varchar(255);not null" json:"product_name"`               // 商品名称快照
	SKUCode        string    `gorm:"column:sku_code;type:varchar(64);not null" json:"sku_code"`    // SKU 编码快照
	Quantity       int       `gorm:"not null" json:"quantity"`                                     // 数量
	ReturnedQty    int       `gorm:"not null;default:0" json:"returned_qty"`                       // 已退货数量
	UnitPrice      Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`      // 成交单价
	UnitCost       Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_cost"`       // 成本单价快照
	TotalAmount    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`    // 成交总额
	RefundedAmount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"refunded_amount"` // 已退款金额
	Currency       string    `gorm:"type:varchar(8);not null;default:'CNY'" json:"currency"`       // 币种
	Channel        string    `gorm:"type:varchar(20);not null;index" json:"channel"`               // 销售渠道
	CustomerName   string    `gorm:"type:varchar(128);index" json:"customer_name"`                 // 客户名称
	Status         string    `gorm:"type:varchar(32);not null;index" json:"status"`                // 状态
	SoldAt         time.Time `gorm:"not null;index" json:"sold_at"`                                // 成交时间
	CreatedBy      uint      `gorm:"index" json:"created_by"`                                      // 录入管理员
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt      time.Time `json:"updated_at"`                                                   // 更新时间
}

// TableName 指定表名
func (Sale) TableName() string {
	return "sales"
}
