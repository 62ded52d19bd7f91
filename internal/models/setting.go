package models

import "time"

// Setting 运行时可改的配置项，值整体存 JSON
type Setting struct {
	Key       string    `gorm:"primarykey;type:varchar(64)" json:"key"`
	ValueJSON JSON      `gorm:"type:json" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string { return "settings" }
