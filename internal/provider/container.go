package provider

import (
	"github.com/pressdesk/internal/authz"
	"github.com/pressdesk/internal/cache"
	"github.com/pressdesk/internal/config"
	"github.com/pressdesk/internal/logger"
	"github.com/pressdesk/internal/models"
	"github.com/pressdesk/internal/queue"
	"github.com/pressdesk/internal/repository"
	"github.com/pressdesk/internal/service"
	"github.com/pressdesk/internal/storage"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Storage     storage.Backend

	// Repositories
	UserRepo          repository.UserRepository
	AuthorRepo        repository.AuthorRepository
	TagRepo           repository.TagRepository
	JournalRepo       repository.JournalRepository
	ContentRepo       repository.ContentRepository
	AuthzAuditLogRepo repository.AuthzAuditLogRepository

	// Services
	AuthzService      *authz.Service
	AuthService       *service.AuthService
	EmailService      *service.EmailService
	UploadService     *service.UploadService
	DOIService        *service.DOIService
	WorkflowService   *service.WorkflowService
	ReviewService     *service.ReviewService
	ContentService    *service.ContentService
	JournalService    *service.JournalService
	TagService        *service.TagService
	AuthorService     *service.AuthorService
	AccessService     *service.AccessService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端，未启用时为空操作客户端
	queueClient, _ := queue.NewClient(nil)
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	backend, err := storage.New(cfg.Storage)
	if err != nil {
		logger.Errorw("provider_init_storage_failed", "driver", cfg.Storage.Driver, "error", err)
		panic(err)
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Storage:     backend,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.AuthorRepo = repository.NewAuthorRepository(db)
	c.TagRepo = repository.NewTagRepository(db)
	c.JournalRepo = repository.NewJournalRepository(db)
	c.ContentRepo = repository.NewContentRepository(db)
	c.AuthzAuditLogRepo = repository.NewAuthzAuditLogRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.AuthService = service.NewAuthService(c.Config, c.UserRepo)
	c.UploadService = service.NewUploadService(c.Config.Upload, c.Storage)

	c.DOIService = service.NewDOIService(c.Config.Crossref, c.ContentRepo, nil)
	if summary := c.DOIService.ConfigSummary(); summary.Enabled && !summary.Configured {
		logger.Warnw("provider_crossref_not_configured", "error", summary.Error)
	}
	c.WorkflowService = service.NewWorkflowService(c.Config.Content, c.ContentRepo, c.DOIService, c.QueueClient)
	c.ReviewService = service.NewReviewService(c.Config.Review, c.ContentRepo, c.JournalRepo, c.UserRepo, c.WorkflowService)
	c.ContentService = service.NewContentService(
		c.Config.Content,
		c.ContentRepo,
		c.AuthorRepo,
		c.TagRepo,
		c.JournalRepo,
		c.UserRepo,
		c.DOIService,
		c.WorkflowService,
	)
	c.JournalService = service.NewJournalService(c.JournalRepo)
	c.TagService = service.NewTagService(c.TagRepo)
	c.AuthorService = service.NewAuthorService(c.AuthorRepo, c.UserRepo)
	c.AccessService = service.NewAccessService(c.AuthzService, c.AuthzAuditLogRepo, c.UserRepo)
}
