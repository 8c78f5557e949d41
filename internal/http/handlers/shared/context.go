package shared

import (
	"strconv"
	"strings"

	"github.com/pressdesk/internal/http/response"
	"github.com/pressdesk/internal/service"

	"github.com/gin-gonic/gin"
)

// 认证中间件写入上下文的键
const (
	ContextKeyUserID   = "user_id"
	ContextKeyEmail    = "email"
	ContextKeyRole     = "role"
	ContextKeyElevated = "admin_elevated"
)

// GetContextUintWithKeys 从上下文读取 uint 值并统一处理错误响应。
func GetContextUintWithKeys(c *gin.Context, key, invalidKey, typeInvalidKey string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, invalidKey, nil)
			return 0, false
		}
		return uint(v), true
	case float64:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, invalidKey, nil)
			return 0, false
		}
		return uint(v), true
	default:
		RespondError(c, response.CodeInternal, typeInvalidKey, nil)
		return 0, false
	}
}

// CurrentPrincipal 组装当前调用方身份，未登录时返回 nil。
func CurrentPrincipal(c *gin.Context) *service.Principal {
	if c == nil {
		return nil
	}
	value, exists := c.Get(ContextKeyUserID)
	if !exists {
		return nil
	}
	userID, ok := value.(uint)
	if !ok || userID == 0 {
		return nil
	}
	return &service.Principal{
		UserID:   userID,
		Email:    c.GetString(ContextKeyEmail),
		Role:     c.GetString(ContextKeyRole),
		Elevated: c.GetBool(ContextKeyElevated),
	}
}

// RequirePrincipal 读取当前调用方，未登录时直接返回 401。
func RequirePrincipal(c *gin.Context) (*service.Principal, bool) {
	principal := CurrentPrincipal(c)
	if principal == nil {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return nil, false
	}
	return principal, true
}

// CurrentRequestID 获取请求 ID
func CurrentRequestID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.GetString(response.RequestIDKey))
}

// ParseIDParam 解析路径中的正整数 ID，失败时返回 400。
func ParseIDParam(c *gin.Context, name, invalidKey string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id == 0 {
		RespondError(c, response.CodeBadRequest, invalidKey, nil)
		return 0, false
	}
	return uint(id), true
}
