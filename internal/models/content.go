package models

import "time"

// Content 出版内容表（文章、案例、图书、章节、教学笔记、合集）
type Content struct {
	ID                uint            `gorm:"primarykey" json:"id"`                                     // 主键
	Slug              string          `gorm:"uniqueIndex;not null" json:"slug"`                         // 唯一标识，创建后不可变
	Type              string          `gorm:"not null;index" json:"type"`                               // 内容类型
	Title             string          `gorm:"not null" json:"title"`                                    // 标题
	Abstract          string          `gorm:"type:text" json:"abstract"`                                // 摘要
	Body              string          `gorm:"type:text" json:"body"`                                    // 正文
	Language          string          `gorm:"type:varchar(16);default:'en'" json:"language"`            // 语言
	Keywords          StringArray     `gorm:"type:json" json:"keywords"`                                // 关键词
	PDFKey            string          `gorm:"type:varchar(500)" json:"pdf_key"`                         // PDF 存储键
	JournalID         *uint           `gorm:"index" json:"journal_id"`                                  // 所属期刊
	Status            string          `gorm:"not null;index;default:'DRAFT'" json:"status"`             // 发布状态
	PublishedAt       *time.Time      `gorm:"index" json:"published_at"`                                // 首次发布时间，设置后不清空
	DOI               *string         `gorm:"uniqueIndex" json:"doi"`                                   // DOI，设置后不可变
	CrossrefStatus    string          `gorm:"not null;default:'not_registered'" json:"crossref_status"` // Crossref 登记状态
	CrossrefMessage   string          `gorm:"type:text" json:"crossref_message"`                        // 最近一次登记结果
	CrossrefClaimedAt *time.Time      `json:"-"`                                                        // 登记占用时间（CAS 闸门）
	ViewCount         int64           `gorm:"not null;default:0" json:"view_count"`                     // 浏览次数
	CreatedAt         time.Time       `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt         time.Time       `gorm:"index" json:"updated_at"`                                  // 更新时间
	Authors           []ContentAuthor `gorm:"foreignKey:ContentID" json:"authors,omitempty"`
	Tags              []ContentTag    `gorm:"foreignKey:ContentID" json:"tags,omitempty"`
	Journal           *Journal        `gorm:"foreignKey:JournalID" json:"journal,omitempty"`
}

// TableName 指定表名
func (Content) TableName() string {
	return "contents"
}

// HasDOI 是否已登记 DOI
func (c *Content) HasDOI() bool {
	return c != nil && c.DOI != nil && *c.DOI != ""
}

// AuthorEmails 返回内容作者邮箱（保持作者顺序，跳过空值）
func (c *Content) AuthorEmails() []string {
	if c == nil {
		return nil
	}
	emails := make([]string, 0, len(c.Authors))
	for _, item := range c.Authors {
		if item.Author.Email == "" {
			continue
		}
		emails = append(emails, item.Author.Email)
	}
	return emails
}

// ContentAuthor 内容与作者关联表
type ContentAuthor struct {
	ContentID uint   `gorm:"primaryKey" json:"content_id"`
	AuthorID  uint   `gorm:"primaryKey;index" json:"author_id"`
	Position  int    `gorm:"not null;default:0" json:"position"` // 作者署名顺序
	Author    Author `gorm:"foreignKey:AuthorID" json:"author"`
}

// TableName 指定表名
func (ContentAuthor) TableName() string {
	return "content_authors"
}

// ContentTag 内容与标签关联表
type ContentTag struct {
	ContentID uint `gorm:"primaryKey" json:"content_id"`
	TagID     uint `gorm:"primaryKey;index" json:"tag_id"`
	Tag       Tag  `gorm:"foreignKey:TagID" json:"tag"`
}

// TableName 指定表名
func (ContentTag) TableName() string {
	return "content_tags"
}
