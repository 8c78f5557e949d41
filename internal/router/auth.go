package router

import (
	"context"
	"errors"
	"strings"

	"github.com/pressdesk/internal/authz"
	"github.com/pressdesk/internal/cache"
	"github.com/pressdesk/internal/constants"
	handlershared "github.com/pressdesk/internal/http/handlers/shared"
	"github.com/pressdesk/internal/logger"
	"github.com/pressdesk/internal/repository"
	"github.com/pressdesk/internal/service"

	"github.com/gin-gonic/gin"
)

// UserJWTAuthMiddleware 校验 Bearer 令牌并写入 user_id / email / role
// 角色与状态取自服务端快照（Redis 缓存，未命中回源数据库），令牌中的角色不参与鉴权。
func UserJWTAuthMiddleware(tokens *service.TokenIssuer, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !tokens.Configured() {
			abortUnauthorized(c, "error.jwt_secret_missing")
			return
		}
		raw, key := bearerToken(c.GetHeader("Authorization"))
		if key != "" {
			abortUnauthorized(c, key)
			return
		}
		claims, err := tokens.Parse(raw)
		if err != nil || userRepo == nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		state, err := loadAuthState(c.Request.Context(), userRepo, claims.UserID)
		if err != nil || state == nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		switch err := state.Verify(claims.TokenVersion, claims.IssuedAtTime()); {
		case errors.Is(err, cache.ErrAccountDisabled):
			abortUnauthorized(c, "error.user_disabled")
			return
		case err != nil:
			abortUnauthorized(c, "error.token_revoked")
			return
		}
		setUserContext(c, state.UserID, state.Email, state.Role)
		c.Next()
	}
}

// bearerToken 解析 Authorization 头，失败时返回对应的 i18n key
func bearerToken(header string) (token, failureKey string) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", "error.auth_header_missing"
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", "error.auth_header_invalid"
	}
	return strings.TrimSpace(token), ""
}

func loadAuthState(ctx context.Context, userRepo repository.UserRepository, userID uint) (*cache.UserAuthState, error) {
	if state, hit, err := cache.GetUserAuthState(ctx, userID); err == nil && hit {
		return state, nil
	}
	user, err := userRepo.GetByID(userID)
	if err != nil || user == nil {
		return nil, err
	}
	state := cache.BuildUserAuthState(user)
	if err := cache.SetUserAuthState(ctx, state); err != nil {
		logger.Debugw("auth_state_cache_write_failed", "user_id", user.ID, "error", err)
	}
	return state, nil
}

// AdminAccessMiddleware 后台访问控制
// ADMIN 直接放行；其余账号须经 RBAC 对当前路由授权，放行后标记 admin_elevated。
func AdminAccessMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint(handlershared.ContextKeyUserID)
		if userID == 0 {
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		if strings.EqualFold(c.GetString(handlershared.ContextKeyRole), constants.UserRoleAdmin) {
			c.Next()
			return
		}
		resource := c.FullPath()
		if strings.TrimSpace(resource) == "" {
			resource = c.Request.URL.Path
		}
		log := logger.SW("user_id", userID, "method", c.Request.Method, "path", c.Request.URL.Path)

		allowed, err := authzService.EnforceUser(userID, resource, c.Request.Method)
		switch {
		case err != nil:
			log.Errorw("admin_rbac_enforce_failed", "error", err)
			abortForbidden(c)
			return
		case !allowed:
			log.Warnw("admin_rbac_permission_denied", "resource", authz.NormalizeObject(resource))
			abortForbidden(c)
			return
		}
		c.Set(handlershared.ContextKeyElevated, true)
		c.Next()
	}
}
