package repository

import (
	"errors"
	"time"

	"github.com/pressdesk/internal/constants"
	"github.com/pressdesk/internal/models"

	"gorm.io/gorm"
)

// JournalRepository 期刊数据访问接口
type JournalRepository interface {
	GetByID(id uint) (*models.Journal, error)
	GetBySlug(slug string, onlyPublished bool) (*models.Journal, error)
	List(filter JournalListFilter) ([]models.Journal, int64, error)
	ListByStatus(status string, limit int) ([]models.Journal, error)
	Create(journal *models.Journal) error
	Update(journal *models.Journal) error
	UpdateStatus(id uint, fromStatus, toStatus string, now time.Time) (bool, error)
	CountBySlug(slug string, excludeID *uint) (int64, error)
}

// GormJournalRepository GORM 实现
type GormJournalRepository struct {
	db *gorm.DB
}

// NewJournalRepository 创建期刊仓库
func NewJournalRepository(db *gorm.DB) *GormJournalRepository {
	return &GormJournalRepository{db: db}
}

// GetByID 根据 ID 获取期刊
func (r *GormJournalRepository) GetByID(id uint) (*models.Journal, error) {
	var journal models.Journal
	if err := r.db.First(&journal, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &journal, nil
}

// GetBySlug 根据 slug 获取期刊
func (r *GormJournalRepository) GetBySlug(slug string, onlyPublished bool) (*models.Journal, error) {
	query := r.db.Where("slug = ?", slug)
	if onlyPublished {
		query = query.Where("status = ?", constants.JournalStatusPublished)
	}
	var journal models.Journal
	if err := query.First(&journal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &journal, nil
}

// List 期刊列表
func (r *GormJournalRepository) List(filter JournalListFilter) ([]models.Journal, int64, error) {
	query := r.db.Model(&models.Journal{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	query = query.Scopes(containsAny(filter.Search, "title", "slug", "issn"))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = query.Scopes(paginate(filter.Page, filter.PageSize))

	journals := make([]models.Journal, 0)
	if err := query.Order("created_at DESC, id DESC").Find(&journals).Error; err != nil {
		return nil, 0, err
	}
	return journals, total, nil
}

// ListByStatus 按状态查询最新期刊
func (r *GormJournalRepository) ListByStatus(status string, limit int) ([]models.Journal, error) {
	query := r.db.Where("status = ?", status).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	journals := make([]models.Journal, 0)
	if err := query.Find(&journals).Error; err != nil {
		return nil, err
	}
	return journals, nil
}

// Create 创建期刊
func (r *GormJournalRepository) Create(journal *models.Journal) error {
	return r.db.Create(journal).Error
}

// Update 更新期刊
func (r *GormJournalRepository) Update(journal *models.Journal) error {
	return r.db.Save(journal).Error
}

// UpdateStatus 条件更新期刊状态，返回是否发生变更
func (r *GormJournalRepository) UpdateStatus(id uint, fromStatus, toStatus string, now time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":     toStatus,
		"updated_at": now,
	}
	if toStatus == constants.JournalStatusPublished {
		updates["published_at"] = gorm.Expr("COALESCE(published_at, ?)", now)
	}
	result := r.db.Model(&models.Journal{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// CountBySlug 统计 slug 数量
func (r *GormJournalRepository) CountBySlug(slug string, excludeID *uint) (int64, error) {
	var count int64
	query := r.db.Model(&models.Journal{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
