package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pressdesk/internal/cache"
	"github.com/pressdesk/internal/config"
	"github.com/pressdesk/internal/constants"
	"github.com/pressdesk/internal/logger"
	"github.com/pressdesk/internal/models"
	"github.com/pressdesk/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	maxSlugLength      = 120
	maxSlugAttempts    = 50
	defaultContentLang = "en"
)

var (
	slugPattern       = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	slugInvalidChars  = regexp.MustCompile(`[^a-z0-9]+`)
	validContentTypes = map[string]struct{}{
		constants.ContentTypeArticle:      {},
		constants.ContentTypeCaseStudy:    {},
		constants.ContentTypeBook:         {},
		constants.ContentTypeBookChapter:  {},
		constants.ContentTypeTeachingNote: {},
		constants.ContentTypeCollection:   {},
	}
)

// AuthorInput 作者输入
type AuthorInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Affiliation string `json:"affiliation"`
	ORCID       string `json:"orcid"`
}

// ContentInput 内容创建/更新输入
type ContentInput struct {
	Type      string        `json:"type"`
	Title     string        `json:"title"`
	Slug      string        `json:"slug"`
	Abstract  string        `json:"abstract"`
	Body      string        `json:"body"`
	Language  string        `json:"language"`
	Keywords  []string      `json:"keywords"`
	PDFKey    string        `json:"pdf_key"`
	JournalID *uint         `json:"journal_id"`
	Status    string        `json:"status"`
	Tags      []string      `json:"tags"`
	Authors   []AuthorInput `json:"authors"`
}

// ContentCreateResult 创建结果
type ContentCreateResult struct {
	Content         *models.Content        `json:"content"`
	DOIRegistration *DOIRegistrationResult `json:"doi_registration"`
}

// ContentSearchResult 检索结果
type ContentSearchResult struct {
	Items  []models.Content          `json:"items"`
	Total  int64                     `json:"total"`
	Facets *repository.ContentFacets `json:"facets"`
}

// ContentService 内容服务
type ContentService struct {
	contentRepo repository.ContentRepository
	authorRepo  repository.AuthorRepository
	tagRepo     repository.TagRepository
	journalRepo repository.JournalRepository
	userRepo    repository.UserRepository
	registrar   DOIRegistrar
	workflow    *WorkflowService
	cacheTTL    time.Duration
	now         func() time.Time
}

// NewContentService 创建内容服务
func NewContentService(
	cfg config.ContentConfig,
	contentRepo repository.ContentRepository,
	authorRepo repository.AuthorRepository,
	tagRepo repository.TagRepository,
	journalRepo repository.JournalRepository,
	userRepo repository.UserRepository,
	registrar DOIRegistrar,
	workflow *WorkflowService,
) *ContentService {
	return &ContentService{
		contentRepo: contentRepo,
		authorRepo:  authorRepo,
		tagRepo:     tagRepo,
		journalRepo: journalRepo,
		userRepo:    userRepo,
		registrar:   registrar,
		workflow:    workflow,
		cacheTTL:    time.Duration(cfg.PublicCacheTTLSeconds) * time.Second,
		now:         time.Now,
	}
}

// CreateByAuthor 作者创建内容，状态固定为 DRAFT，调用方自动列为作者
func (s *ContentService) CreateByAuthor(ctx context.Context, principal *Principal, input ContentInput) (*models.Content, error) {
	if principal == nil || principal.UserID == 0 {
		return nil, ErrForbidden
	}
	input.Status = constants.ContentStatusDraft
	input.Authors = s.ensurePrincipalAuthor(principal, input.Authors)
	content, err := s.create(input, s.now())
	if err != nil {
		return nil, err
	}
	logger.Infow("content_created", "content_id", content.ID, "slug", content.Slug, "actor_id", principal.ActorID(), "status", content.Status)
	return content, nil
}

// CreateByAdmin 管理员创建内容，状态由调用方指定
// 直接以 PUBLISHED 创建时同步登记一次 DOI。
func (s *ContentService) CreateByAdmin(ctx context.Context, principal *Principal, input ContentInput) (*ContentCreateResult, error) {
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}
	status := NormalizeContentStatus(input.Status)
	if status == "" {
		status = constants.ContentStatusDraft
	}
	if !IsValidContentStatus(status) {
		return nil, ErrInvalidStatus
	}
	input.Status = status
	content, err := s.create(input, s.now())
	if err != nil {
		return nil, err
	}
	logger.Infow("content_created", "content_id", content.ID, "slug", content.Slug, "actor_id", principal.ActorID(), "status", content.Status)

	result := &ContentCreateResult{Content: content}
	if content.Status == constants.ContentStatusPublished && s.registrar != nil && s.registrar.IsConfigured() {
		result.DOIRegistration = s.registrar.RegisterDOI(ctx, content.ID)
		if reloaded, err := s.contentRepo.GetByID(content.ID); err == nil && reloaded != nil {
			result.Content = reloaded
		}
	}
	return result, nil
}

func (s *ContentService) create(input ContentInput, now time.Time) (*models.Content, error) {
	if err := validateContentInput(&input); err != nil {
		return nil, err
	}
	if err := s.ensureJournal(input.JournalID); err != nil {
		return nil, err
	}

	var created *models.Content
	err := s.contentRepo.Transaction(func(tx *gorm.DB) error {
		contentRepo := s.contentRepo.WithTx(tx)
		slug, err := s.resolveSlug(contentRepo, input.Slug, input.Title)
		if err != nil {
			return err
		}
		content := &models.Content{
			Slug:           slug,
			Type:           input.Type,
			Title:          input.Title,
			Abstract:       input.Abstract,
			Body:           input.Body,
			Language:       input.Language,
			Keywords:       models.StringArray(input.Keywords),
			PDFKey:         input.PDFKey,
			JournalID:      input.JournalID,
			Status:         input.Status,
			CrossrefStatus: constants.CrossrefStatusNotRegistered,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if content.Status == constants.ContentStatusPublished {
			content.PublishedAt = &now
		}
		if err := contentRepo.Create(content); err != nil {
			return err
		}
		if err := s.replaceAuthors(tx, content.ID, input.Authors); err != nil {
			return err
		}
		if err := s.replaceTags(tx, content.ID, input.Tags); err != nil {
			return err
		}
		created, err = contentRepo.GetByID(content.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update 更新内容元数据，不修改状态、slug 与 DOI
// 管理员可随时更新；作者仅能更新自己名下的草稿。
func (s *ContentService) Update(ctx context.Context, principal *Principal, id uint, input ContentInput) (*models.Content, error) {
	content, err := s.contentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, ErrContentNotFound
	}
	isAdmin := principal.IsAdmin()
	if !isAdmin {
		if principal == nil || !isListedAuthor(principal, content) {
			return nil, ErrForbidden
		}
		if content.Status != constants.ContentStatusDraft {
			return nil, ErrContentNotEditable
		}
		if input.Authors != nil {
			input.Authors = s.ensurePrincipalAuthor(principal, input.Authors)
		}
	}

	if strings.TrimSpace(input.Type) == "" {
		input.Type = content.Type
	}
	if err := validateContentInput(&input); err != nil {
		return nil, err
	}
	if err := s.ensureJournal(input.JournalID); err != nil {
		return nil, err
	}

	content.Type = input.Type
	content.Title = input.Title
	content.Abstract = input.Abstract
	content.Body = input.Body
	content.Language = input.Language
	content.Keywords = models.StringArray(input.Keywords)
	content.PDFKey = input.PDFKey
	content.JournalID = input.JournalID

	err = s.contentRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.contentRepo.WithTx(tx).Update(content); err != nil {
			return err
		}
		if input.Authors != nil {
			if err := s.replaceAuthors(tx, content.ID, input.Authors); err != nil {
				return err
			}
		}
		if input.Tags != nil {
			if err := s.replaceTags(tx, content.ID, input.Tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Errorw("content_update_failed", "content_id", id, "actor_id", principal.ActorID(), "error", err)
		return nil, fmt.Errorf("%w: %v", ErrContentUpdate, err)
	}
	_ = cache.DelPublicContent(ctx, content.Slug)
	return s.contentRepo.GetByID(id)
}

// Delete 管理员硬删除内容（流程之外的独立操作）
func (s *ContentService) Delete(ctx context.Context, principal *Principal, id uint) error {
	if !principal.IsAdmin() {
		return ErrForbidden
	}
	content, err := s.contentRepo.GetByID(id)
	if err != nil {
		return err
	}
	if content == nil {
		return ErrContentNotFound
	}
	// DOI 由 slug 派生，删除后同名新内容会拿到同一个 DOI
	if content.HasDOI() || !isUnregistered(content.CrossrefStatus) {
		return ErrContentHasDOI
	}
	if err := s.contentRepo.Delete(id); err != nil {
		return err
	}
	_ = cache.DelPublicContent(ctx, content.Slug)
	logger.Infow("content_deleted", "content_id", id, "slug", content.Slug, "actor_id", principal.ActorID())
	return nil
}

// Submit 提交审核（作者入口）
func (s *ContentService) Submit(ctx context.Context, principal *Principal, id uint) (*TransitionResult, error) {
	return s.workflow.TransitionStatus(ctx, principal, id, constants.ContentStatusReview)
}

// GetByID 后台获取内容详情
func (s *ContentService) GetByID(id uint) (*models.Content, error) {
	content, err := s.contentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, ErrContentNotFound
	}
	return content, nil
}

// Search 公开检索：仅返回已发布内容，附带分面统计
func (s *ContentService) Search(filter repository.ContentListFilter) (*ContentSearchResult, error) {
	filter.Status = constants.ContentStatusPublished
	return s.search(filter)
}

// AdminList 后台列表，可按任意状态过滤
func (s *ContentService) AdminList(filter repository.ContentListFilter) (*ContentSearchResult, error) {
	if filter.Status != "" {
		filter.Status = NormalizeContentStatus(filter.Status)
		if !IsValidContentStatus(filter.Status) {
			return nil, ErrInvalidStatus
		}
	}
	return s.search(filter)
}

func (s *ContentService) search(filter repository.ContentListFilter) (*ContentSearchResult, error) {
	if filter.Type != "" {
		filter.Type = strings.ToUpper(strings.TrimSpace(filter.Type))
		if _, ok := validContentTypes[filter.Type]; !ok {
			return nil, ErrInvalidContentType
		}
	}
	filter.Tag = strings.ToLower(strings.TrimSpace(filter.Tag))
	filter.Search = strings.TrimSpace(filter.Search)

	items, total, err := s.contentRepo.List(filter)
	if err != nil {
		return nil, err
	}
	facets, err := s.contentRepo.Facets(filter)
	if err != nil {
		return nil, err
	}
	return &ContentSearchResult{Items: items, Total: total, Facets: facets}, nil
}

// GetPublicBySlug 公开详情（带缓存），浏览计数失败不影响读者
func (s *ContentService) GetPublicBySlug(ctx context.Context, slug string) (*models.Content, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, ErrContentNotFound
	}

	var cached models.Content
	hit, err := cache.GetPublicContent(ctx, slug, &cached)
	if err != nil {
		logger.Debugw("content_cache_get_failed", "slug", slug, "error", err)
	}
	if hit && cached.ID != 0 {
		s.countView(cached.ID)
		return &cached, nil
	}

	content, err := s.contentRepo.GetBySlug(slug, true)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, ErrContentNotFound
	}
	if err := cache.SetPublicContent(ctx, slug, content, s.cacheTTL); err != nil {
		logger.Debugw("content_cache_set_failed", "slug", slug, "error", err)
	}
	s.countView(content.ID)
	return content, nil
}

func (s *ContentService) countView(id uint) {
	if err := s.contentRepo.IncrementViewCount(id); err != nil {
		logger.Debugw("content_view_count_failed", "content_id", id, "error", err)
	}
}

// ListMine 列出作者邮箱与当前用户邮箱一致的内容
func (s *ContentService) ListMine(principal *Principal, filter repository.ContentListFilter) ([]models.Content, int64, error) {
	if principal == nil || strings.TrimSpace(principal.Email) == "" {
		return nil, 0, ErrForbidden
	}
	if filter.Status != "" {
		filter.Status = NormalizeContentStatus(filter.Status)
		if !IsValidContentStatus(filter.Status) {
			return nil, 0, ErrInvalidStatus
		}
	}
	return s.contentRepo.ListByAuthorEmail(principal.Email, filter)
}

func (s *ContentService) ensurePrincipalAuthor(principal *Principal, authors []AuthorInput) []AuthorInput {
	for _, author := range authors {
		if principal.MatchesEmail(author.Email) {
			return authors
		}
	}
	name := ""
	if s.userRepo != nil && principal.UserID != 0 {
		if user, err := s.userRepo.GetByID(principal.UserID); err == nil && user != nil {
			name = strings.TrimSpace(user.Name)
		}
	}
	if name == "" {
		name = resolveNameFromEmail(principal.Email)
	}
	return append([]AuthorInput{{Name: name, Email: principal.Email}}, authors...)
}

func (s *ContentService) ensureJournal(journalID *uint) error {
	if journalID == nil || *journalID == 0 || s.journalRepo == nil {
		return nil
	}
	journal, err := s.journalRepo.GetByID(*journalID)
	if err != nil {
		return err
	}
	if journal == nil {
		return ErrJournalNotFound
	}
	return nil
}

func (s *ContentService) replaceAuthors(tx *gorm.DB, contentID uint, inputs []AuthorInput) error {
	authorRepo := s.authorRepo.WithTx(tx)
	ids := make([]uint, 0, len(inputs))
	for _, input := range inputs {
		name := strings.TrimSpace(input.Name)
		email := strings.ToLower(strings.TrimSpace(input.Email))
		if name == "" && email == "" {
			continue
		}
		if name == "" {
			name = resolveNameFromEmail(email)
		}
		author, err := authorRepo.FindOrCreate(models.Author{
			Name:        name,
			Email:       email,
			Affiliation: strings.TrimSpace(input.Affiliation),
			ORCID:       strings.TrimSpace(input.ORCID),
		})
		if err != nil {
			return err
		}
		ids = append(ids, author.ID)
	}
	return s.contentRepo.WithTx(tx).ReplaceAuthors(contentID, ids)
}

func (s *ContentService) replaceTags(tx *gorm.DB, contentID uint, names []string) error {
	tagRepo := s.tagRepo.WithTx(tx)
	ids := make([]uint, 0, len(names))
	for _, name := range NormalizeTags(names) {
		tag, err := tagRepo.FindOrCreate(name)
		if err != nil {
			return err
		}
		if tag == nil {
			continue
		}
		ids = append(ids, tag.ID)
	}
	return s.contentRepo.WithTx(tx).ReplaceTags(contentID, ids)
}

// resolveSlug 显式 slug 校验唯一；否则由标题生成并追加数字后缀去重
func (s *ContentService) resolveSlug(repo repository.ContentRepository, explicit, title string) (string, error) {
	explicit = strings.TrimSpace(explicit)
	if explicit != "" {
		if len(explicit) > maxSlugLength || !slugPattern.MatchString(explicit) {
			return "", ErrInvalidSlug
		}
		count, err := repo.CountBySlug(explicit, nil)
		if err != nil {
			return "", err
		}
		if count > 0 {
			return "", ErrSlugExists
		}
		return explicit, nil
	}

	base := Slugify(title)
	candidate := base
	for attempt := 2; attempt <= maxSlugAttempts+1; attempt++ {
		count, err := repo.CountBySlug(candidate, nil)
		if err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, attempt)
	}
	return fmt.Sprintf("%s-%s", base, strings.SplitN(uuid.NewString(), "-", 2)[0]), nil
}

func validateContentInput(input *ContentInput) error {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return ErrTitleRequired
	}
	input.Type = strings.ToUpper(strings.TrimSpace(input.Type))
	if input.Type == "" {
		input.Type = constants.ContentTypeArticle
	}
	if _, ok := validContentTypes[input.Type]; !ok {
		return ErrInvalidContentType
	}
	input.Language = strings.TrimSpace(input.Language)
	if input.Language == "" {
		input.Language = defaultContentLang
	}
	input.Abstract = strings.TrimSpace(input.Abstract)
	input.PDFKey = strings.TrimSpace(input.PDFKey)
	keywords := make([]string, 0, len(input.Keywords))
	for _, keyword := range input.Keywords {
		if trimmed := strings.TrimSpace(keyword); trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}
	input.Keywords = keywords
	return nil
}

// IsValidContentType 是否为合法内容类型
func IsValidContentType(contentType string) bool {
	_, ok := validContentTypes[strings.ToUpper(strings.TrimSpace(contentType))]
	return ok
}

// Slugify 由标题生成 slug
func Slugify(title string) string {
	slug := slugInvalidChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLength-8 {
		slug = strings.TrimRight(slug[:maxSlugLength-8], "-")
	}
	if slug == "" {
		return "content"
	}
	return slug
}

// NormalizeTags 标签小写、去空白、去重，保持输入顺序
func NormalizeTags(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))
	for _, name := range names {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		result = append(result, normalized)
	}
	return result
}

func resolveNameFromEmail(email string) string {
	parts := strings.SplitN(strings.TrimSpace(email), "@", 2)
	if len(parts) == 2 && strings.TrimSpace(parts[0]) != "" {
		return parts[0]
	}
	return strings.TrimSpace(email)
}

// IsContentValidationError 是否为输入校验类错误
func IsContentValidationError(err error) bool {
	return errors.Is(err, ErrTitleRequired) ||
		errors.Is(err, ErrInvalidContentType) ||
		errors.Is(err, ErrInvalidSlug) ||
		errors.Is(err, ErrInvalidStatus)
}

func isUnregistered(crossrefStatus string) bool {
	status := strings.TrimSpace(crossrefStatus)
	return status == "" || status == constants.CrossrefStatusNotRegistered
}
