package service

import (
	"strings"
	"time"

	"github.com/pressdesk/internal/constants"
	"github.com/pressdesk/internal/logger"
	"github.com/pressdesk/internal/models"
	"github.com/pressdesk/internal/repository"
)

// JournalInput 期刊创建/更新输入
type JournalInput struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	ISSN        string `json:"issn"`
	Description string `json:"description"`
}

// JournalService 期刊服务
// 期刊以 DRAFT 创建，经审核队列通过后发布。
type JournalService struct {
	repo repository.JournalRepository
}

// NewJournalService 创建期刊服务
func NewJournalService(repo repository.JournalRepository) *JournalService {
	return &JournalService{repo: repo}
}

// Create 创建期刊
func (s *JournalService) Create(principal *Principal, input JournalInput) (*models.Journal, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if len(slug) > maxSlugLength || !slugPattern.MatchString(slug) {
		return nil, ErrInvalidSlug
	}
	count, err := s.repo.CountBySlug(slug, nil)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrJournalSlugExists
	}

	now := time.Now()
	journal := &models.Journal{
		Slug:        slug,
		Title:       title,
		ISSN:        strings.TrimSpace(input.ISSN),
		Description: strings.TrimSpace(input.Description),
		Status:      constants.JournalStatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(journal); err != nil {
		return nil, err
	}
	logger.Infow("journal_created", "journal_id", journal.ID, "slug", slug, "actor_id", principal.ActorID())
	return journal, nil
}

// Update 更新期刊元数据，不修改状态与 slug
func (s *JournalService) Update(principal *Principal, id uint, input JournalInput) (*models.Journal, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}
	journal, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if journal == nil {
		return nil, ErrJournalNotFound
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	journal.Title = title
	journal.ISSN = strings.TrimSpace(input.ISSN)
	journal.Description = strings.TrimSpace(input.Description)
	journal.UpdatedAt = time.Now()
	if err := s.repo.Update(journal); err != nil {
		return nil, err
	}
	return journal, nil
}

// GetByID 获取期刊
func (s *JournalService) GetByID(id uint) (*models.Journal, error) {
	journal, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if journal == nil {
		return nil, ErrJournalNotFound
	}
	return journal, nil
}

// ListPublic 公开期刊列表，仅返回已发布期刊
func (s *JournalService) ListPublic(filter repository.JournalListFilter) ([]models.Journal, int64, error) {
	filter.Status = constants.JournalStatusPublished
	return s.repo.List(filter)
}

// ListAdmin 后台期刊列表
func (s *JournalService) ListAdmin(filter repository.JournalListFilter) ([]models.Journal, int64, error) {
	filter.Status = strings.ToUpper(strings.TrimSpace(filter.Status))
	return s.repo.List(filter)
}
