package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/pressdesk/internal/config"
	"github.com/pressdesk/internal/constants"
	"github.com/pressdesk/internal/i18n"
	"github.com/pressdesk/internal/logger"
	"github.com/pressdesk/internal/metrics"
	"github.com/pressdesk/internal/models"
	"github.com/pressdesk/internal/repository"

	"golang.org/x/sync/errgroup"
)

const (
	defaultReviewPageSize    = 50
	defaultNewUserWindowDays = 7
	reviewTimestampLayout    = time.RFC3339
	reviewMessageKeyApproved = "review.approved"
	reviewMessageKeyRejected = "review.rejected"
	reviewMessageKeyNoChange = "review.no_change"
)

// ReviewAuthor 审核条目中的作者信息
type ReviewAuthor struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ContentReviewSummary 待审内容摘要
type ContentReviewSummary struct {
	ID        uint           `json:"id"`
	Title     string         `json:"title"`
	Slug      string         `json:"slug"`
	Type      string         `json:"type"`
	Status    string         `json:"status"`
	Authors   []ReviewAuthor `json:"authors"`
	CreatedAt string         `json:"created_at"`
}

// JournalReviewSummary 待发布期刊摘要
type JournalReviewSummary struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// UserReviewSummary 新注册用户摘要
type UserReviewSummary struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// PendingReview 审核队列快照
type PendingReview struct {
	Content  []ContentReviewSummary `json:"content"`
	Journals []JournalReviewSummary `json:"journals"`
	Users    []UserReviewSummary    `json:"users"`
}

// ReviewActionResult 审核操作结果
type ReviewActionResult struct {
	Type       string            `json:"type"`
	ID         uint              `json:"id"`
	Changed    bool              `json:"changed"`
	Status     string            `json:"status,omitempty"`
	Message    string            `json:"message"`
	Transition *TransitionResult `json:"transition,omitempty"`
	messageKey string
}

// Localize 按语言重写提示文案
func (r *ReviewActionResult) Localize(locale string) {
	if r == nil {
		return
	}
	if r.messageKey != "" {
		r.Message = i18n.T(locale, r.messageKey)
	}
	r.Transition.Localize(locale)
}

// ReviewService 审核队列服务
type ReviewService struct {
	pageSize    int
	window      time.Duration
	contentRepo repository.ContentRepository
	journalRepo repository.JournalRepository
	userRepo    repository.UserRepository
	workflow    *WorkflowService
	now         func() time.Time
}

// NewReviewService 创建审核队列服务
func NewReviewService(cfg config.ReviewConfig, contentRepo repository.ContentRepository, journalRepo repository.JournalRepository, userRepo repository.UserRepository, workflow *WorkflowService) *ReviewService {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultReviewPageSize
	}
	windowDays := cfg.NewUserWindowDays
	if windowDays <= 0 {
		windowDays = defaultNewUserWindowDays
	}
	return &ReviewService{
		pageSize:    pageSize,
		window:      time.Duration(windowDays) * 24 * time.Hour,
		contentRepo: contentRepo,
		journalRepo: journalRepo,
		userRepo:    userRepo,
		workflow:    workflow,
		now:         time.Now,
	}
}

// GetPendingReview 汇总待处理条目（只读）
// 三类查询互不依赖，并发执行后合并。
func (s *ReviewService) GetPendingReview(ctx context.Context) (*PendingReview, error) {
	var (
		contents []models.Content
		journals []models.Journal
		users    []models.User
	)
	since := s.now().Add(-s.window)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.contentRepo.ListByStatus(constants.ContentStatusReview, s.pageSize)
		contents = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.journalRepo.ListByStatus(constants.JournalStatusDraft, s.pageSize)
		journals = rows
		return err
	})
	g.Go(func() error {
		rows, err := s.userRepo.ListCreatedSince(since, constants.UserRoleAdmin, s.pageSize)
		users = rows
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Errorw("review_pending_query_failed", "error", err)
		return nil, err
	}

	result := &PendingReview{
		Content:  make([]ContentReviewSummary, 0, len(contents)),
		Journals: make([]JournalReviewSummary, 0, len(journals)),
		Users:    make([]UserReviewSummary, 0, len(users)),
	}
	for i := range contents {
		result.Content = append(result.Content, buildContentReviewSummary(&contents[i]))
	}
	for _, journal := range journals {
		result.Journals = append(result.Journals, JournalReviewSummary{
			ID:        journal.ID,
			Title:     journal.Title,
			Slug:      journal.Slug,
			Status:    journal.Status,
			CreatedAt: formatReviewTime(journal.CreatedAt),
		})
	}
	for _, user := range users {
		result.Users = append(result.Users, UserReviewSummary{
			ID:        user.ID,
			Name:      user.Name,
			Email:     user.Email,
			Role:      user.Role,
			Status:    user.Status,
			CreatedAt: formatReviewTime(user.CreatedAt),
		})
	}

	metrics.SetReviewQueueSize(constants.ReviewItemContent, len(result.Content))
	metrics.SetReviewQueueSize(constants.ReviewItemJournal, len(result.Journals))
	metrics.SetReviewQueueSize(constants.ReviewItemUser, len(result.Users))
	return result, nil
}

// Approve 审核通过
// 内容：REVIEW -> PUBLISHED；期刊：DRAFT -> PUBLISHED；用户：不做任何变更。
func (s *ReviewService) Approve(ctx context.Context, principal *Principal, itemType string, id uint) (*ReviewActionResult, error) {
	return s.decide(ctx, principal, itemType, id, true)
}

// Reject 审核驳回
// 内容：REVIEW -> DRAFT；期刊与用户：不做任何变更。
func (s *ReviewService) Reject(ctx context.Context, principal *Principal, itemType string, id uint) (*ReviewActionResult, error) {
	return s.decide(ctx, principal, itemType, id, false)
}

func (s *ReviewService) decide(ctx context.Context, principal *Principal, itemType string, id uint, approve bool) (*ReviewActionResult, error) {
	kind := strings.ToLower(strings.TrimSpace(itemType))
	switch kind {
	case constants.ReviewItemContent, constants.ReviewItemJournal, constants.ReviewItemUser:
	default:
		return nil, ErrInvalidReviewType
	}
	if !principal.IsAdmin() {
		return nil, ErrForbidden
	}

	switch kind {
	case constants.ReviewItemContent:
		return s.decideContent(ctx, principal, id, approve)
	case constants.ReviewItemJournal:
		return s.decideJournal(principal, id, approve)
	default:
		return s.decideUser(id)
	}
}

func (s *ReviewService) decideContent(ctx context.Context, principal *Principal, id uint, approve bool) (*ReviewActionResult, error) {
	target := constants.ContentStatusDraft
	key := reviewMessageKeyRejected
	if approve {
		target = constants.ContentStatusPublished
		key = reviewMessageKeyApproved
	}
	transition, err := s.workflow.TransitionStatus(ctx, principal, id, target)
	if err != nil {
		if errors.Is(err, ErrContentNotFound) {
			return nil, ErrReviewItemNotFound
		}
		return nil, err
	}
	if !transition.Changed {
		key = reviewMessageKeyNoChange
	}
	return &ReviewActionResult{
		Type:       constants.ReviewItemContent,
		ID:         id,
		Changed:    transition.Changed,
		Status:     transition.Content.Status,
		Message:    i18n.T(i18n.DefaultLocale, key),
		Transition: transition,
		messageKey: key,
	}, nil
}

func (s *ReviewService) decideJournal(principal *Principal, id uint, approve bool) (*ReviewActionResult, error) {
	journal, err := s.journalRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if journal == nil {
		return nil, ErrReviewItemNotFound
	}
	result := &ReviewActionResult{
		Type:       constants.ReviewItemJournal,
		ID:         id,
		Status:     journal.Status,
		messageKey: reviewMessageKeyNoChange,
	}
	if approve {
		changed, err := s.journalRepo.UpdateStatus(id, constants.JournalStatusDraft, constants.JournalStatusPublished, s.now())
		if err != nil {
			logger.Errorw("review_journal_publish_failed", "journal_id", id, "error", err)
			return nil, err
		}
		if changed {
			result.Changed = true
			result.Status = constants.JournalStatusPublished
			result.messageKey = reviewMessageKeyApproved
			logger.Infow("journal_published", "journal_id", id, "actor_id", principal.ActorID())
		}
	}
	result.Message = i18n.T(i18n.DefaultLocale, result.messageKey)
	return result, nil
}

// decideUser 用户条目仅确认存在，不改变任何状态
func (s *ReviewService) decideUser(id uint) (*ReviewActionResult, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrReviewItemNotFound
	}
	return &ReviewActionResult{
		Type:       constants.ReviewItemUser,
		ID:         id,
		Changed:    false,
		Status:     user.Status,
		Message:    i18n.T(i18n.DefaultLocale, reviewMessageKeyNoChange),
		messageKey: reviewMessageKeyNoChange,
	}, nil
}

func buildContentReviewSummary(content *models.Content) ContentReviewSummary {
	authors := make([]ReviewAuthor, 0, len(content.Authors))
	for _, item := range content.Authors {
		authors = append(authors, ReviewAuthor{Name: item.Author.Name, Email: item.Author.Email})
	}
	return ContentReviewSummary{
		ID:        content.ID,
		Title:     content.Title,
		Slug:      content.Slug,
		Type:      content.Type,
		Status:    content.Status,
		Authors:   authors,
		CreatedAt: formatReviewTime(content.CreatedAt),
	}
}

func formatReviewTime(t time.Time) string {
	return t.UTC().Format(reviewTimestampLayout)
}
