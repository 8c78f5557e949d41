package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pressdesk/internal/cache"
	"github.com/pressdesk/internal/config"
	"github.com/pressdesk/internal/constants"
	"github.com/pressdesk/internal/crossref"
	"github.com/pressdesk/internal/logger"
	"github.com/pressdesk/internal/metrics"
	"github.com/pressdesk/internal/models"
	"github.com/pressdesk/internal/repository"

	"github.com/google/uuid"
)

const defaultDOIClaimStale = 5 * time.Minute

// DOIRegistrationResult DOI 登记结果
type DOIRegistrationResult struct {
	Success bool    `json:"success"`
	DOI     *string `json:"doi"`
	Message string  `json:"message,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// DOIRegistrar DOI 登记协作方
// 登记失败以结果返回，不作为 error 向上传播。
type DOIRegistrar interface {
	IsConfigured() bool
	RegisterDOI(ctx context.Context, contentID uint) *DOIRegistrationResult
}

// DOIConfigSummary 后台展示的登记配置摘要（不含凭据）
type DOIConfigSummary struct {
	Enabled    bool   `json:"enabled"`
	Configured bool   `json:"configured"`
	DOIPrefix  string `json:"doi_prefix"`
	DepositURL string `json:"deposit_url"`
	Error      string `json:"error,omitempty"`
}

// DOIService Crossref DOI 登记服务
type DOIService struct {
	cfg         crossref.Config
	configErr   error
	claimStale  time.Duration
	contentRepo repository.ContentRepository
	depositor   crossref.Depositor
	now         func() time.Time
}

// NewDOIService 创建 DOI 登记服务
func NewDOIService(cfg config.CrossrefConfig, contentRepo repository.ContentRepository, depositor crossref.Depositor) *DOIService {
	resolved := toCrossrefConfig(cfg)
	claimStale := time.Duration(cfg.ClaimStaleSeconds) * time.Second
	if claimStale <= 0 {
		claimStale = defaultDOIClaimStale
	}
	if depositor == nil {
		depositor = crossref.NewHTTPDepositor(nil)
	}
	return &DOIService{
		cfg:         resolved,
		configErr:   crossref.ValidateConfig(&resolved),
		claimStale:  claimStale,
		contentRepo: contentRepo,
		depositor:   depositor,
		now:         time.Now,
	}
}

func toCrossrefConfig(cfg config.CrossrefConfig) crossref.Config {
	resolved := crossref.Config{
		Enabled:         cfg.Enabled,
		DepositURL:      cfg.DepositURL,
		LoginID:         cfg.LoginID,
		LoginPassword:   cfg.LoginPassword,
		DOIPrefix:       cfg.DOIPrefix,
		DepositorName:   cfg.DepositorName,
		DepositorEmail:  cfg.DepositorEmail,
		Registrant:      cfg.Registrant,
		ResourceBaseURL: cfg.ResourceBaseURL,
		Timeout:         time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
	resolved.Normalize()
	return resolved
}

// IsConfigured 登记是否可用
func (s *DOIService) IsConfigured() bool {
	return s != nil && s.configErr == nil
}

// ConfigSummary 返回配置摘要
func (s *DOIService) ConfigSummary() DOIConfigSummary {
	if s == nil {
		return DOIConfigSummary{}
	}
	summary := DOIConfigSummary{
		Enabled:    s.cfg.Enabled,
		Configured: s.IsConfigured(),
		DOIPrefix:  s.cfg.DOIPrefix,
		DepositURL: s.cfg.DepositURL,
	}
	if s.configErr != nil && s.cfg.Enabled {
		summary.Error = s.configErr.Error()
	}
	return summary
}

// RegisterDOI 为内容登记 DOI
// 通过 ClaimDOIRegistration 抢占登记资格，同一内容同一时刻只有一个调用方会提交到 Crossref。
func (s *DOIService) RegisterDOI(ctx context.Context, contentID uint) *DOIRegistrationResult {
	if !s.IsConfigured() {
		metrics.ObserveDOIRegistration(metrics.DOIResultSkipped)
		return &DOIRegistrationResult{Success: false, Error: ErrDOINotConfigured.Error()}
	}
	log := logger.SW("content_id", contentID)
	now := s.now()

	claimed, err := s.contentRepo.ClaimDOIRegistration(contentID, now, now.Add(-s.claimStale))
	if err != nil {
		log.Errorw("doi_claim_failed", "error", err)
		metrics.ObserveDOIRegistration(metrics.DOIResultFailed)
		return &DOIRegistrationResult{Success: false, Error: "doi claim failed"}
	}
	if !claimed {
		return s.unclaimedResult(contentID)
	}

	content, err := s.contentRepo.GetByID(contentID)
	if err != nil || content == nil {
		msg := "content not found"
		if err != nil {
			msg = "load content failed"
			log.Errorw("doi_load_content_failed", "error", err)
		}
		s.fail(contentID, msg)
		return &DOIRegistrationResult{Success: false, Error: msg}
	}

	doi := crossref.BuildDOI(s.cfg.DOIPrefix, content.Slug)
	batchID := uuid.NewString()
	payload, err := crossref.BuildDepositXML(&s.cfg, crossref.Batch{
		ID:        batchID,
		Timestamp: now,
		Items:     []crossref.Item{s.buildItem(content, doi, now)},
	})
	if err != nil {
		log.Warnw("doi_build_deposit_failed", "error", err)
		s.fail(contentID, err.Error())
		return &DOIRegistrationResult{Success: false, Error: err.Error()}
	}

	start := time.Now()
	result, err := s.depositor.Deposit(ctx, &s.cfg, batchID, payload)
	metrics.ObserveDeposit(time.Since(start))
	if err != nil {
		msg := err.Error()
		if result != nil && strings.TrimSpace(result.Message) != "" {
			msg = fmt.Sprintf("%s: %s", msg, result.Message)
		}
		log.Warnw("doi_deposit_failed", "doi", doi, "batch_id", batchID, "error", msg)
		s.fail(contentID, msg)
		return &DOIRegistrationResult{Success: false, Error: msg}
	}

	message := "deposit accepted"
	if result != nil && strings.TrimSpace(result.Message) != "" {
		message = result.Message
	}
	completed, err := s.contentRepo.CompleteDOIRegistration(contentID, doi, message)
	if err != nil {
		// Crossref 已受理但本地未落库；释放占用，重试会以同一 DOI 重新提交
		log.Errorw("doi_complete_failed", "doi", doi, "error", err)
		s.fail(contentID, "persist doi failed: "+err.Error())
		return &DOIRegistrationResult{Success: false, Error: "persist doi failed"}
	}
	if !completed {
		return s.unclaimedResult(contentID)
	}
	_ = cache.DelPublicContent(ctx, content.Slug)
	metrics.ObserveDOIRegistration(metrics.DOIResultRegistered)
	log.Infow("doi_registered", "doi", doi, "batch_id", batchID)
	return &DOIRegistrationResult{Success: true, DOI: &doi, Message: message}
}

// RetryRegistration 后台手动重试登记
func (s *DOIService) RetryRegistration(ctx context.Context, contentID uint) (*DOIRegistrationResult, error) {
	if !s.IsConfigured() {
		return nil, ErrDOINotConfigured
	}
	content, err := s.contentRepo.GetByID(contentID)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return nil, ErrContentNotFound
	}
	if content.Status != constants.ContentStatusPublished || content.HasDOI() {
		return nil, ErrDOINotEligible
	}
	return s.RegisterDOI(ctx, contentID), nil
}

// unclaimedResult 未抢到登记资格：已登记则回显 DOI，否则视为进行中
func (s *DOIService) unclaimedResult(contentID uint) *DOIRegistrationResult {
	content, err := s.contentRepo.GetByID(contentID)
	if err != nil {
		logger.Errorw("doi_unclaimed_load_failed", "content_id", contentID, "error", err)
		metrics.ObserveDOIRegistration(metrics.DOIResultFailed)
		return &DOIRegistrationResult{Success: false, Error: "load content failed"}
	}
	if content.HasDOI() {
		doi := *content.DOI
		return &DOIRegistrationResult{Success: true, DOI: &doi, Message: "doi already registered"}
	}
	metrics.ObserveDOIRegistration(metrics.DOIResultInProgress)
	return &DOIRegistrationResult{Success: false, Message: "registration already in progress"}
}

func (s *DOIService) fail(contentID uint, message string) {
	metrics.ObserveDOIRegistration(metrics.DOIResultFailed)
	if err := s.contentRepo.FailDOIRegistration(contentID, message); err != nil {
		logger.Errorw("doi_mark_failed_error", "content_id", contentID, "error", err)
	}
}

func (s *DOIService) buildItem(content *models.Content, doi string, now time.Time) crossref.Item {
	postedAt := now
	if content.PublishedAt != nil {
		postedAt = *content.PublishedAt
	}
	contributors := make([]crossref.Contributor, 0, len(content.Authors))
	for _, item := range content.Authors {
		contributors = append(contributors, crossref.Contributor{
			Name:        item.Author.Name,
			ORCID:       item.Author.ORCID,
			Affiliation: item.Author.Affiliation,
		})
	}
	return crossref.Item{
		DOI:          doi,
		Title:        content.Title,
		Abstract:     content.Abstract,
		ContentType:  content.Type,
		ResourceURL:  s.cfg.ResourceURL(content.Slug),
		PostedAt:     postedAt,
		Contributors: contributors,
	}
}
