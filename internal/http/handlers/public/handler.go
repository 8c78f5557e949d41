package public

import (
	handlershared "github.com/pressdesk/internal/http/handlers/shared"
	"github.com/pressdesk/internal/provider"
	"github.com/pressdesk/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 读者与作者侧接口：公开目录、登录注册、我的投稿
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func requestLog(c *gin.Context) *zap.SugaredLogger { return handlershared.RequestLog(c) }

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, handlershared.ContextKeyUserID, "error.user_id_invalid", "error.user_id_type_invalid")
}

func requirePrincipal(c *gin.Context) (*service.Principal, bool) {
	return handlershared.RequirePrincipal(c)
}
