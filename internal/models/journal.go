package models

import (
	"time"

	"gorm.io/gorm"
)

// Journal 期刊表
type Journal struct {
	ID          uint           `gorm:"primarykey" json:"id"`                         // 主键
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`             // 唯一标识
	Title       string         `gorm:"not null" json:"title"`                        // 刊名
	ISSN        string         `gorm:"type:varchar(16)" json:"issn"`                 // ISSN
	Description string         `gorm:"type:text" json:"description"`                 // 简介
	Status      string         `gorm:"not null;index;default:'DRAFT'" json:"status"` // 状态
	PublishedAt *time.Time     `gorm:"index" json:"published_at"`                    // 发布时间
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                      // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                   // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                               // 软删除时间
}

// TableName 指定表名
func (Journal) TableName() string {
	return "journals"
}
