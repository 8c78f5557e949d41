package models

import "time"

// Tag 标签表（名称统一小写）
type Tag struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定表名
func (Tag) TableName() string {
	return "tags"
}
