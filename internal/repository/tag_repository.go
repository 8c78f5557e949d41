package repository

import (
	"errors"
	"strings"

	"github.com/pressdesk/internal/constants"
	"github.com/pressdesk/internal/models"

	"gorm.io/gorm"
)

// TagRepository 标签数据访问接口
type TagRepository interface {
	FindOrCreate(name string) (*models.Tag, error)
	List() ([]models.Tag, error)
	ListWithCounts() ([]TagWithCount, error)
	WithTx(tx *gorm.DB) TagRepository
}

// GormTagRepository GORM 实现
type GormTagRepository struct {
	db *gorm.DB
}

// NewTagRepository 创建标签仓库
func NewTagRepository(db *gorm.DB) *GormTagRepository {
	return &GormTagRepository{db: db}
}

// WithTx 绑定事务
func (r *GormTagRepository) WithTx(tx *gorm.DB) TagRepository {
	if tx == nil {
		return r
	}
	return &GormTagRepository{db: tx}
}

// FindOrCreate 查找或创建标签（名称统一小写）
func (r *GormTagRepository) FindOrCreate(name string) (*models.Tag, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, nil
	}
	var tag models.Tag
	err := r.db.Where("name = ?", name).First(&tag).Error
	if err == nil {
		return &tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	tag = models.Tag{Name: name}
	if err := r.db.Create(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// List 标签列表
func (r *GormTagRepository) List() ([]models.Tag, error) {
	tags := make([]models.Tag, 0)
	if err := r.db.Order("name ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// ListWithCounts 标签及其已发布内容数
func (r *GormTagRepository) ListWithCounts() ([]TagWithCount, error) {
	rows := make([]TagWithCount, 0)
	err := r.db.Table("tags").
		Select("tags.id AS id, tags.name AS name, COUNT(contents.id) AS count").
		Joins("LEFT JOIN content_tags ON content_tags.tag_id = tags.id").
		Joins("LEFT JOIN contents ON contents.id = content_tags.content_id AND contents.status = ?", constants.ContentStatusPublished).
		Group("tags.id, tags.name").
		Order("count DESC, tags.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
