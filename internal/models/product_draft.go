package models

import "time"

// ProductDraft 新增商品向导草稿表
type ProductDraft struct {
	ID          uint      `gorm:"primarykey" json:"id"`                               // 主键
	Token       string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"token"` // 草稿令牌（uuid）
	AdminID     uint      `gorm:"not null;index" json:"admin_id"`                     // 所属管理员
	Step        string    `gorm:"type:varchar(20);not null" json:"step"`              // 当前步骤
	PayloadJSON string    `gorm:"type:text;not null" json:"-"`                        // 草稿内容（wizard.Draft 的 JSON）
	CreatedAt   time.Time `json:"created_at"`                                         // 创建时间
	UpdatedAt   time.Time `gorm:"index" json:"updated_at"`                            // 更新时间
}

// TableName 指定表名
func (ProductDraft) TableName() string {
	return "product_drafts"
}
