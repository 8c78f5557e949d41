package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pressdesk/internal/cache"
	"github.com/pressdesk/internal/config"
	"github.com/pressdesk/internal/constants"
	"github.com/pressdesk/internal/i18n"
	"github.com/pressdesk/internal/logger"
	"github.com/pressdesk/internal/metrics"
	"github.com/pressdesk/internal/models"
	"github.com/pressdesk/internal/queue"
	"github.com/pressdesk/internal/repository"

	"gorm.io/gorm"
)

// contentTransitions 内容状态流转表：当前状态 -> 目标状态 -> 动作
var contentTransitions = map[string]map[string]string{
	constants.ContentStatusDraft: {
		constants.ContentStatusReview: constants.TransitionActionSubmit,
	},
	constants.ContentStatusReview: {
		constants.ContentStatusPublished: constants.TransitionActionApprove,
		constants.ContentStatusDraft:     constants.TransitionActionReject,
	},
	constants.ContentStatusPublished: {
		constants.ContentStatusArchived: constants.TransitionActionArchive,
	},
	constants.ContentStatusArchived: {
		constants.ContentStatusPublished: constants.TransitionActionRestore,
	},
}

// TransitionContent 流转后的内容快照
type TransitionContent struct {
	ID             uint       `json:"id"`
	Title          string     `json:"title"`
	Status         string     `json:"status"`
	DOI            *string    `json:"doi"`
	CrossrefStatus string     `json:"crossref_status"`
	PublishedAt    *time.Time `json:"published_at"`
}

// TransitionResult 状态流转结果
type TransitionResult struct {
	Success         bool                   `json:"success"`
	Content         TransitionContent      `json:"content"`
	DOI             *string                `json:"doi"`
	DOIRegistration *DOIRegistrationResult `json:"doi_registration"`
	Message         string                 `json:"message"`
	Action          string                 `json:"action"`
	PreviousStatus  string                 `json:"previous_status"`
	Changed         bool                   `json:"changed"`
}

// Localize 按语言重写提示文案
func (r *TransitionResult) Localize(locale string) {
	if r == nil || r.Action == "" {
		return
	}
	r.Message = i18n.T(locale, "content.transition."+r.Action)
}

// WorkflowService 内容发布状态机
type WorkflowService struct {
	policy      string
	contentRepo repository.ContentRepository
	registrar   DOIRegistrar
	queueClient *queue.Client
	now         func() time.Time
}

// NewWorkflowService 创建状态流转服务
func NewWorkflowService(cfg config.ContentConfig, contentRepo repository.ContentRepository, registrar DOIRegistrar, queueClient *queue.Client) *WorkflowService {
	return &WorkflowService{
		policy:      normalizeTransitionPolicy(cfg.TransitionPolicy),
		contentRepo: contentRepo,
		registrar:   registrar,
		queueClient: queueClient,
		now:         time.Now,
	}
}

// Policy 当前流转策略
func (s *WorkflowService) Policy() string {
	return s.policy
}

// TransitionStatus 请求将内容流转到目标状态
// 顺序：事务内读取当前状态并写入新状态 -> 提交 -> 首次发布且无 DOI 时同步登记一次。
// DOI 登记失败不影响流转结果。
func (s *WorkflowService) TransitionStatus(ctx context.Context, principal *Principal, contentID uint, requestedStatus string) (*TransitionResult, error) {
	requested := NormalizeContentStatus(requestedStatus)
	if !IsValidContentStatus(requested) {
		return nil, ErrInvalidStatus
	}

	var prior *models.Content
	var action string
	err := s.contentRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.contentRepo.WithTx(tx)
		content, err := repo.GetByID(contentID)
		if err != nil {
			return err
		}
		if content == nil {
			return ErrContentNotFound
		}
		resolved, err := s.resolveAction(principal, content, requested)
		if err != nil {
			return err
		}
		affected, err := repo.ApplyStatus(content.ID, requested, s.now())
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrContentNotFound
		}
		prior = content
		action = resolved
		return nil
	})
	if err != nil {
		if isWorkflowError(err) {
			return nil, err
		}
		logger.Errorw("content_status_update_failed",
			"content_id", contentID,
			"requested_status", requested,
			"actor_id", principal.ActorID(),
			"error", err,
		)
		return nil, fmt.Errorf("%w: %v", ErrContentUpdate, err)
	}

	changed := prior.Status != requested
	if action == constants.TransitionActionOverride {
		logger.Warnw("content_status_override",
			"content_id", prior.ID,
			"from", prior.Status,
			"to", requested,
			"actor_id", principal.ActorID(),
		)
	}

	result := &TransitionResult{
		Success:        true,
		Action:         action,
		PreviousStatus: prior.Status,
		Changed:        changed,
		Message:        i18n.T(i18n.DefaultLocale, "content.transition."+action),
	}

	if requested == constants.ContentStatusPublished && !prior.HasDOI() {
		if s.registrar != nil && s.registrar.IsConfigured() {
			result.DOIRegistration = s.registrar.RegisterDOI(ctx, prior.ID)
		} else {
			metrics.ObserveDOIRegistration(metrics.DOIResultSkipped)
		}
	}

	final, err := s.contentRepo.GetByID(prior.ID)
	if err != nil || final == nil {
		logger.Errorw("content_status_reload_failed", "content_id", prior.ID, "error", err)
		return nil, fmt.Errorf("%w: reload content", ErrContentUpdate)
	}
	result.Content = buildTransitionContent(final)
	result.DOI = final.DOI

	s.afterTransition(ctx, prior, final, changed, principal)
	return result, nil
}

// resolveAction 权限与流转边校验，返回动作名
func (s *WorkflowService) resolveAction(principal *Principal, content *models.Content, requested string) (string, error) {
	current := content.Status
	if !principal.IsAdmin() && !canAuthorRequest(principal, content, requested) {
		return "", ErrForbidden
	}
	if current == requested {
		return constants.TransitionActionUnchanged, nil
	}
	if action, ok := contentTransitions[current][requested]; ok {
		return action, nil
	}
	if s.policy == constants.TransitionPolicyPermissive && principal.IsAdmin() {
		return constants.TransitionActionOverride, nil
	}
	return "", ErrInvalidTransition
}

// canAuthorRequest 作者仅可将自己的草稿提交审核
func canAuthorRequest(principal *Principal, content *models.Content, requested string) bool {
	if principal == nil || requested != constants.ContentStatusReview {
		return false
	}
	if content.Status != constants.ContentStatusDraft && content.Status != constants.ContentStatusReview {
		return false
	}
	return isListedAuthor(principal, content)
}

func isListedAuthor(principal *Principal, content *models.Content) bool {
	for _, email := range content.AuthorEmails() {
		if principal.MatchesEmail(email) {
			return true
		}
	}
	return false
}

func (s *WorkflowService) afterTransition(ctx context.Context, prior, final *models.Content, changed bool, principal *Principal) {
	if err := cache.DelPublicContent(ctx, final.Slug); err != nil {
		logger.Warnw("content_cache_invalidate_failed", "content_id", final.ID, "slug", final.Slug, "error", err)
	}
	if !changed {
		return
	}
	metrics.ObserveTransition(prior.Status, final.Status)
	logger.Infow("content_status_changed",
		"content_id", final.ID,
		"from", prior.Status,
		"to", final.Status,
		"actor_id", principal.ActorID(),
	)
	if !s.queueClient.Enabled() {
		return
	}
	payload := queue.ContentStatusEmailPayload{ContentID: final.ID, Status: final.Status}
	if final.DOI != nil {
		payload.DOI = *final.DOI
	}
	if err := s.queueClient.EnqueueContentStatusEmail(ctx, payload); err != nil {
		logger.Warnw("content_status_email_enqueue_failed", "content_id", final.ID, "status", final.Status, "error", err)
	}
}

func buildTransitionContent(content *models.Content) TransitionContent {
	return TransitionContent{
		ID:             content.ID,
		Title:          content.Title,
		Status:         content.Status,
		DOI:            content.DOI,
		CrossrefStatus: content.CrossrefStatus,
		PublishedAt:    content.PublishedAt,
	}
}

func isWorkflowError(err error) bool {
	return errors.Is(err, ErrContentNotFound) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrInvalidStatus)
}

// NormalizeContentStatus 统一状态写法
func NormalizeContentStatus(status string) string {
	return strings.ToUpper(strings.TrimSpace(status))
}

// IsValidContentStatus 是否为合法内容状态
func IsValidContentStatus(status string) bool {
	switch status {
	case constants.ContentStatusDraft,
		constants.ContentStatusReview,
		constants.ContentStatusPublished,
		constants.ContentStatusArchived:
		return true
	}
	return false
}

// CanTransition 流转表中是否存在该边
func CanTransition(from, to string) bool {
	_, ok := contentTransitions[from][to]
	return ok
}

// AllowedTransitions 返回当前状态可流转到的目标状态
func AllowedTransitions(from string) []string {
	targets := make([]string, 0, len(contentTransitions[from]))
	for target := range contentTransitions[from] {
		targets = append(targets, target)
	}
	sort.Strings(targets)
	return targets
}

func normalizeTransitionPolicy(policy string) string {
	if strings.EqualFold(strings.TrimSpace(policy), constants.TransitionPolicyPermissive) {
		return constants.TransitionPolicyPermissive
	}
	return constants.TransitionPolicyStrict
}
