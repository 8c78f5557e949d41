package models

import "time"

// Author 作者表
// Email 与 User.Email 为弱关联，按值匹配，不建外键
type Author struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"not null;index" json:"name"`
	Email       string    `gorm:"index" json:"email"`
	Affiliation string    `json:"affiliation"`
	ORCID       string    `gorm:"type:varchar(32)" json:"orcid"`
	Bio         string    `gorm:"type:text" json:"bio"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Author) TableName() string {
	return "authors"
}
