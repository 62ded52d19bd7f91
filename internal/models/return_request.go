package models

import "time"

// ReturnRequest 退货申请表
type ReturnRequest struct {
	ID           uint       `gorm:"primarykey" json:"id"`                                       // 主键
	ReturnNo     string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"return_no"`     // 退货单号
	SaleID       uint       `gorm:"not null;index" json:"sale_id"`                              // 销售记录ID
	ProductID    uint       `gorm:"not null;index" json:"product_id"`                           // 商品ID
	SKUID        uint       `gorm:"column:sku_id;not null;index" json:"sku_id"`                 // SKU ID
	Quantity     int        `gorm:"not null" json:"quantity"`                                   // 退货数量
	Reason       string     `gorm:"type:varchar(500)" json:"reason"`                            // 退货原因
	Condition    string     `gorm:"type:varchar(20);not null" json:"condition"`                 // 商品状况（可再售/损坏）
	RefundAmount Money      `gorm:"type:decimal(20,2);not null;default:0" json:"refund_amount"` // 退款金额
	Status       string     `gorm:"type:varchar(20);not null;index" json:"status"`              // 状态
	Restocked    bool       `gorm:"not null;default:false" json:"restocked"`                    // 是否已回库
	Note         string     `gorm:"type:varchar(500)" json:"note"`                              // 处理备注
	CreatedBy    uint       `gorm:"index" json:"created_by"`                                    // 创建管理员
	ProcessedBy  uint       `gorm:"index" json:"processed_by"`                                  // 处理管理员
	ProcessedAt  *time.Time `gorm:"index" json:"processed_at"`                                  // 处理时间
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt    time.Time  `json:"updated_at"`                                                 // 更新时间

	Sale *Sale `gorm:"foreignKey:SaleID" json:"sale,omitempty"` // 关联销售记录
}

// TableName 指定表名
func (ReturnRequest) TableName() string {
	return "return_requests"
}
