package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/pressdesk/internal/constants"
	"github.com/pressdesk/internal/models"

	"gorm.io/gorm"
)

const facetTagLimit = 20

// ContentRepository 内容数据访问接口
type ContentRepository interface {
	GetByID(id uint) (*models.Content, error)
	GetBySlug(slug string, onlyPublished bool) (*models.Content, error)
	List(filter ContentListFilter) ([]models.Content, int64, error)
	Facets(filter ContentListFilter) (*ContentFacets, error)
	Create(content *models.Content) error
	Update(content *models.Content) error
	ReplaceAuthors(contentID uint, authorIDs []uint) error
	ReplaceTags(contentID uint, tagIDs []uint) error
	Delete(id uint) error
	CountBySlug(slug string, excludeID *uint) (int64, error)
	ApplyStatus(id uint, status string, now time.Time) (int64, error)
	ClaimDOIRegistration(id uint, now, staleBefore time.Time) (bool, error)
	CompleteDOIRegistration(id uint, doi, message string) (bool, error)
	FailDOIRegistration(id uint, message string) error
	IncrementViewCount(id uint) error
	ListByStatus(status string, limit int) ([]models.Content, error)
	ListByAuthorEmail(email string, filter ContentListFilter) ([]models.Content, int64, error)
	WithTx(tx *gorm.DB) ContentRepository
	Transaction(fn func(tx *gorm.DB) error) error
}

// GormContentRepository GORM 实现
type GormContentRepository struct {
	db *gorm.DB
}

// NewContentRepository 创建内容仓库
func NewContentRepository(db *gorm.DB) *GormContentRepository {
	return &GormContentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormContentRepository) WithTx(tx *gorm.DB) ContentRepository {
	if tx == nil {
		return r
	}
	return &GormContentRepository{db: tx}
}

// Transaction 执行事务
func (r *GormContentRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

func withContentAssociations(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Authors", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Authors.Author").
		Preload("Tags").
		Preload("Tags.Tag")
}

// GetByID 根据 ID 获取内容（含作者与标签）
func (r *GormContentRepository) GetByID(id uint) (*models.Content, error) {
	var content models.Content
	if err := withContentAssociations(r.db).First(&content, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &content, nil
}

// GetBySlug 根据 slug 获取内容
func (r *GormContentRepository) GetBySlug(slug string, onlyPublished bool) (*models.Content, error) {
	query := withContentAssociations(r.db).Preload("Journal").Where("slug = ?", slug)
	if onlyPublished {
		query = query.Where("status = ?", constants.ContentStatusPublished)
	}

	var content models.Content
	if err := query.First(&content).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &content, nil
}

// applyContentFilter 应用检索条件（不含排序与分页）
func (r *GormContentRepository) applyContentFilter(query *gorm.DB, filter ContentListFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("contents.status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("contents.type = ?", filter.Type)
	}
	if filter.JournalID != 0 {
		query = query.Where("contents.journal_id = ?", filter.JournalID)
	}
	if tag := strings.ToLower(strings.TrimSpace(filter.Tag)); tag != "" {
		query = query.Where(
			"contents.id IN (?)",
			r.db.Table("content_tags").
				Select("content_tags.content_id").
				Joins("JOIN tags ON tags.id = content_tags.tag_id").
				Where("tags.name = ?", tag),
		)
	}
	if author := strings.TrimSpace(filter.Author); author != "" {
		match, args := likeClause(dialectOf(r.db), author, []string{"authors.name", "authors.email"})
		query = query.Where(
			"contents.id IN (?)",
			r.db.Table("content_authors").
				Select("content_authors.content_id").
				Joins("JOIN authors ON authors.id = content_authors.author_id").
				Where(match, args...),
		)
	}
	// 作者与用户之间按邮箱值关联，每次查询实时计算
	if email := strings.ToLower(strings.TrimSpace(filter.AuthorEmail)); email != "" {
		query = query.Where(
			"contents.id IN (?)",
			r.db.Table("content_authors").
				Select("content_authors.content_id").
				Joins("JOIN authors ON authors.id = content_authors.author_id").
				Where("LOWER(authors.email) = ?", email),
		)
	}
	if filter.Year > 0 {
		start := time.Date(filter.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		query = query.Where("contents.published_at >= ? AND contents.published_at < ?", start, start.AddDate(1, 0, 0))
	}
	query = query.Scopes(containsAny(filter.Search, "contents.title", "contents.abstract", "contents.slug"))
	return query
}

func contentOrderBy(filter ContentListFilter) string {
	switch filter.Sort {
	case constants.ContentSortOldest:
		if filter.Status == constants.ContentStatusPublished {
			return "contents.published_at ASC, contents.id ASC"
		}
		return "contents.created_at ASC, contents.id ASC"
	case constants.ContentSortPopular:
		return "contents.view_count DESC, contents.id DESC"
	case constants.ContentSortTitle:
		return "contents.title ASC, contents.id ASC"
	default:
		if filter.Status == constants.ContentStatusPublished {
			return "contents.published_at DESC, contents.id DESC"
		}
		return "contents.created_at DESC, contents.id DESC"
	}
}

// List 内容列表
func (r *GormContentRepository) List(filter ContentListFilter) ([]models.Content, int64, error) {
	query := r.applyContentFilter(r.db.Model(&models.Content{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Scopes(paginate(filter.Page, filter.PageSize))

	contents := make([]models.Content, 0)
	if err := withContentAssociations(query).Order(contentOrderBy(filter)).Find(&contents).Error; err != nil {
		return nil, 0, err
	}
	return contents, total, nil
}

// Facets 统计检索结果的类型与标签分布
func (r *GormContentRepository) Facets(filter ContentListFilter) (*ContentFacets, error) {
	facets := &ContentFacets{
		Types: make([]FacetCount, 0),
		Tags:  make([]FacetCount, 0),
	}

	typeFilter := filter
	typeFilter.Type = ""
	typeQuery := r.applyContentFilter(r.db.Model(&models.Content{}), typeFilter)
	if err := typeQuery.
		Select("contents.type AS value, COUNT(*) AS count").
		Group("contents.type").
		Order("count DESC, value ASC").
		Scan(&facets.Types).Error; err != nil {
		return nil, err
	}

	matched := r.applyContentFilter(r.db.Model(&models.Content{}), filter).Select("contents.id")
	if err := r.db.Table("content_tags").
		Select("tags.name AS value, COUNT(*) AS count").
		Joins("JOIN tags ON tags.id = content_tags.tag_id").
		Where("content_tags.content_id IN (?)", matched).
		Group("tags.name").
		Order("count DESC, value ASC").
		Limit(facetTagLimit).
		Scan(&facets.Tags).Error; err != nil {
		return nil, err
	}
	return facets, nil
}

// Create 创建内容
func (r *GormContentRepository) Create(content *models.Content) error {
	return r.db.Omit("Authors", "Tags", "Journal").Create(content).Error
}

// Update 更新内容可编辑字段（不含状态、slug、DOI）
func (r *GormContentRepository) Update(content *models.Content) error {
	if content == nil {
		return nil
	}
	updates := map[string]interface{}{
		"type":       content.Type,
		"title":      content.Title,
		"abstract":   content.Abstract,
		"body":       content.Body,
		"language":   content.Language,
		"keywords":   content.Keywords,
		"pdf_key":    content.PDFKey,
		"journal_id": content.JournalID,
		"updated_at": time.Now(),
	}
	return r.db.Model(&models.Content{}).Where("id = ?", content.ID).Updates(updates).Error
}

// ReplaceAuthors 按顺序覆盖内容作者
func (r *GormContentRepository) ReplaceAuthors(contentID uint, authorIDs []uint) error {
	if err := r.db.Where("content_id = ?", contentID).Delete(&models.ContentAuthor{}).Error; err != nil {
		return err
	}
	if len(authorIDs) == 0 {
		return nil
	}
	rows := make([]models.ContentAuthor, 0, len(authorIDs))
	seen := make(map[uint]struct{}, len(authorIDs))
	for _, authorID := range authorIDs {
		if _, ok := seen[authorID]; ok || authorID == 0 {
			continue
		}
		seen[authorID] = struct{}{}
		rows = append(rows, models.ContentAuthor{
			ContentID: contentID,
			AuthorID:  authorID,
			Position:  len(rows),
		})
	}
	return r.db.Omit("Author").Create(&rows).Error
}

// ReplaceTags 覆盖内容标签
func (r *GormContentRepository) ReplaceTags(contentID uint, tagIDs []uint) error {
	if err := r.db.Where("content_id = ?", contentID).Delete(&models.ContentTag{}).Error; err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}
	rows := make([]models.ContentTag, 0, len(tagIDs))
	seen := make(map[uint]struct{}, len(tagIDs))
	for _, tagID := range tagIDs {
		if _, ok := seen[tagID]; ok || tagID == 0 {
			continue
		}
		seen[tagID] = struct{}{}
		rows = append(rows, models.ContentTag{ContentID: contentID, TagID: tagID})
	}
	return r.db.Omit("Tag").Create(&rows).Error
}

// Delete 物理删除内容及其关联
func (r *GormContentRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("content_id = ?", id).Delete(&models.ContentAuthor{}).Error; err != nil {
			return err
		}
		if err := tx.Where("content_id = ?", id).Delete(&models.ContentTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Content{}, id).Error
	})
}

// CountBySlug 统计 slug 数量
func (r *GormContentRepository) CountBySlug(slug string, excludeID *uint) (int64, error) {
	var count int64
	query := r.db.Model(&models.Content{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ApplyStatus 单行更新状态；发布时仅在 published_at 为空时写入
func (r *GormContentRepository) ApplyStatus(id uint, status string, now time.Time) (int64, error) {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": now,
	}
	if status == constants.ContentStatusPublished {
		updates["published_at"] = gorm.Expr("COALESCE(published_at, ?)", now)
	}
	result := r.db.Model(&models.Content{}).Where("id = ?", id).Updates(updates)
	return result.RowsAffected, result.Error
}

// ClaimDOIRegistration 原子占用 DOI 登记资格
// 仅在 doi 为空且无进行中的登记（或登记已过期）时成功
func (r *GormContentRepository) ClaimDOIRegistration(id uint, now, staleBefore time.Time) (bool, error) {
	result := r.db.Model(&models.Content{}).
		Where("id = ? AND doi IS NULL", id).
		Where("(crossref_status <> ? OR crossref_claimed_at IS NULL OR crossref_claimed_at < ?)",
			constants.CrossrefStatusPending, staleBefore).
		Updates(map[string]interface{}{
			"crossref_status":     constants.CrossrefStatusPending,
			"crossref_claimed_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// CompleteDOIRegistration 写入 DOI，已存在 DOI 时不覆盖
func (r *GormContentRepository) CompleteDOIRegistration(id uint, doi, message string) (bool, error) {
	result := r.db.Model(&models.Content{}).
		Where("id = ? AND doi IS NULL", id).
		Updates(map[string]interface{}{
			"doi":                 doi,
			"crossref_status":     constants.CrossrefStatusRegistered,
			"crossref_message":    message,
			"crossref_claimed_at": nil,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// FailDOIRegistration 记录登记失败并释放占用
func (r *GormContentRepository) FailDOIRegistration(id uint, message string) error {
	return r.db.Model(&models.Content{}).
		Where("id = ? AND doi IS NULL", id).
		Updates(map[string]interface{}{
			"crossref_status":     constants.CrossrefStatusFailed,
			"crossref_message":    message,
			"crossref_claimed_at": nil,
		}).Error
}

// IncrementViewCount 浏览数原子加一
func (r *GormContentRepository) IncrementViewCount(id uint) error {
	return r.db.Model(&models.Content{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// ListByStatus 按状态查询最新内容（含作者）
func (r *GormContentRepository) ListByStatus(status string, limit int) ([]models.Content, error) {
	query := withContentAssociations(r.db).
		Where("status = ?", status).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	contents := make([]models.Content, 0)
	if err := query.Find(&contents).Error; err != nil {
		return nil, err
	}
	return contents, nil
}

// ListByAuthorEmail 查询作者邮箱匹配的内容
func (r *GormContentRepository) ListByAuthorEmail(email string, filter ContentListFilter) ([]models.Content, int64, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return []models.Content{}, 0, nil
	}
	filter.AuthorEmail = email
	return r.List(filter)
}
