package admin

import (
	"strings"
	"time"

	handlershared "github.com/pressdesk/internal/http/handlers/shared"
	"github.com/pressdesk/internal/service"

	"github.com/gin-gonic/gin"
)

func currentPrincipal(c *gin.Context) (*service.Principal, bool) {
	return handlershared.RequirePrincipal(c)
}

func parseIDParam(c *gin.Context, invalidKey string) (uint, bool) {
	return handlershared.ParseIDParam(c, "id", invalidKey)
}

// parseTimeNullable 解析可选时间参数，支持 RFC3339 与日期
func parseTimeNullable(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func currentRequestID(c *gin.Context) string {
	return handlershared.CurrentRequestID(c)
}
