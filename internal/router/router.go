package router

import (
	"sort"
	"strings"

	"github.com/pressdesk/internal/authz"
	"github.com/pressdesk/internal/cache"
	"github.com/pressdesk/internal/config"
	adminhandlers "github.com/pressdesk/internal/http/handlers/admin"
	publichandlers "github.com/pressdesk/internal/http/handlers/public"
	"github.com/pressdesk/internal/http/response"
	"github.com/pressdesk/internal/logger"
	"github.com/pressdesk/internal/metrics"
	"github.com/pressdesk/internal/provider"
	"github.com/pressdesk/internal/storage"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.Z()
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "pd"
	}
	redisClient := cache.Client()
	loginRule := NewRateLimitRule(redisPrefix, "login", cfg.Security.LoginRateLimit, "error.login_rate_limited")
	submitLimit := RateLimitMiddleware(redisClient, NewRateLimitRule(redisPrefix, "submit", cfg.Security.SubmissionRateLimit, ""), KeyByUser)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	if cfg.Metrics.Enabled {
		metrics.Register()
		r.Use(MetricsMiddleware())
		metricsPath := strings.TrimSpace(cfg.Metrics.Path)
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		r.GET(metricsPath, gin.WrapH(metrics.Handler()))
	}

	// 本地存储时提供上传文件访问
	if local, ok := c.Storage.(*storage.LocalBackend); ok && local != nil && strings.HasPrefix(local.URLPrefix(), "/") {
		r.Static(local.URLPrefix(), local.Dir())
	}

	userAuth := UserJWTAuthMiddleware(c.AuthService.Tokens(), c.UserRepo)

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/contents", publicHandler.GetContents)
			public.GET("/contents/:slug", publicHandler.GetContentBySlug)
			public.GET("/tags", publicHandler.GetTags)
			public.GET("/journals", publicHandler.GetJournals)
		}

		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", RateLimitMiddleware(redisClient, loginRule, KeyByIP), publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.UserLogin)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(userAuth)
		{
			user.GET("/me", publicHandler.GetCurrentUser)
			user.PUT("/me/password", publicHandler.ChangeUserPassword)
			user.GET("/me/contents", publicHandler.ListMyContents)
			user.POST("/me/contents", publicHandler.CreateMyContent)
			user.PUT("/me/contents/:id", publicHandler.UpdateMyContent)
			user.POST("/me/contents/:id/submit", submitLimit, publicHandler.SubmitMyContent)
			user.POST("/me/uploads/pdf", submitLimit, publicHandler.UploadMyPDF)
		}

		// 管理接口
		admin := apiV1.Group("/admin")
		admin.Use(userAuth, AdminAccessMiddleware(c.AuthzService))
		{
			// 内容管理
			admin.GET("/contents", adminHandler.GetAdminContents)
			admin.GET("/contents/:id", adminHandler.GetAdminContent)
			admin.POST("/contents", adminHandler.CreateContent)
			admin.PUT("/contents/:id", adminHandler.UpdateContent)
			admin.DELETE("/contents/:id", adminHandler.DeleteContent)
			admin.PATCH("/contents/:id/status", adminHandler.UpdateContentStatus)
			admin.POST("/contents/:id/doi", adminHandler.RetryContentDOI)
			admin.POST("/uploads/pdf", adminHandler.UploadContentPDF)

			// 审核队列
			admin.GET("/review/pending", adminHandler.GetPendingReview)
			admin.POST("/review/:type/:id/approve", adminHandler.ApproveReviewItem)
			admin.POST("/review/:type/:id/reject", adminHandler.RejectReviewItem)

			// 期刊与作者
			admin.GET("/journals", adminHandler.GetAdminJournals)
			admin.GET("/journals/:id", adminHandler.GetAdminJournal)
			admin.POST("/journals", adminHandler.CreateJournal)
			admin.PUT("/journals/:id", adminHandler.UpdateJournal)
			admin.GET("/authors", adminHandler.GetAdminAuthors)
			admin.GET("/authors/:id", adminHandler.GetAdminAuthor)

			// 用户管理
			admin.GET("/users", adminHandler.GetAdminUsers)
			admin.GET("/users/:id", adminHandler.GetAdminUser)
			admin.PUT("/users/:id/role", adminHandler.UpdateUserRole)
			admin.PUT("/users/:id/status", adminHandler.UpdateUserStatus)

			// 权限管理
			admin.GET("/authz/me", adminHandler.GetAuthzMe)
			admin.GET("/authz/roles", adminHandler.ListAuthzRoles)
			admin.POST("/authz/roles", adminHandler.CreateAuthzRole)
			admin.DELETE("/authz/roles/:role", adminHandler.DeleteAuthzRole)
			admin.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
			admin.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
			admin.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
			admin.GET("/authz/users/:id/roles", adminHandler.GetAuthzUserRoles)
			admin.PUT("/authz/users/:id/roles", adminHandler.SetAuthzUserRoles)
			admin.GET("/authz/audit-logs", adminHandler.ListAuthzAuditLogs)
			admin.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
				response.Success(ctx, buildAdminPermissionCatalog(r))
			})

			// Crossref
			admin.GET("/crossref/config", adminHandler.GetCrossrefConfig)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
