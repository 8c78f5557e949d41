package shared

import (
	"errors"

	"github.com/pressdesk/internal/http/response"
	"github.com/pressdesk/internal/i18n"
	"github.com/pressdesk/internal/logger"
	"github.com/pressdesk/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if id := CurrentRequestID(c); id != "" {
		return logger.SW(response.RequestIDKey, id)
	}
	return logger.S()
}

// RespondError 返回国际化错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, key string, err error) {
	RespondErrorWithMsg(c, code, i18n.T(i18n.ResolveLocale(c), key), err)
}

// RespondErrorWithMsg 返回自定义消息错误响应；原始错误只进日志，不回给调用方。
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", code,
			"message", msg,
			"error", err,
		)
	}
	response.Error(c, code, msg)
}

// MappedError 定义业务错误到接口错误响应的映射关系。
type MappedError struct {
	Target error
	Code   int
	Key    string
}

// RespondMappedError 按规则映射业务错误，未命中时使用兜底错误码并记录原始错误。
func RespondMappedError(c *gin.Context, err error, rules []MappedError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			RespondError(c, rule.Code, rule.Key, nil)
			return
		}
	}
	RespondError(c, fallbackCode, fallbackKey, err)
}

// RespondPasswordPolicyError 密码策略错误带参数翻译
func RespondPasswordPolicyError(c *gin.Context, err error) {
	var violation *service.PasswordPolicyViolation
	if errors.As(err, &violation) {
		msg := i18n.Sprintf(i18n.ResolveLocale(c), violation.Key(), violation.Args()...)
		RespondErrorWithMsg(c, response.CodeBadRequest, msg, nil)
		return
	}
	RespondError(c, response.CodeBadRequest, "error.password_weak", nil)
}

// ContentErrorRules 内容与状态流转相关错误
var ContentErrorRules = []MappedError{
	{Target: service.ErrContentNotFound, Code: response.CodeNotFound, Key: "error.content_not_found"},
	{Target: service.ErrForbidden, Code: response.CodeForbidden, Key: "error.forbidden"},
	{Target: service.ErrInvalidStatus, Code: response.CodeBadRequest, Key: "error.invalid_status"},
	{Target: service.ErrInvalidTransition, Code: response.CodeBadRequest, Key: "error.invalid_transition"},
	{Target: service.ErrInvalidContentType, Code: response.CodeBadRequest, Key: "error.invalid_content_type"},
	{Target: service.ErrTitleRequired, Code: response.CodeBadRequest, Key: "error.title_required"},
	{Target: service.ErrInvalidSlug, Code: response.CodeBadRequest, Key: "error.slug_invalid"},
	{Target: service.ErrSlugExists, Code: response.CodeConflict, Key: "error.slug_exists"},
	{Target: service.ErrContentNotEditable, Code: response.CodeForbidden, Key: "error.content_not_editable"},
	{Target: service.ErrJournalNotFound, Code: response.CodeBadRequest, Key: "error.journal_not_found"},
	{Target: service.ErrContentHasDOI, Code: response.CodeConflict, Key: "error.content_has_doi"},
}

// UploadErrorRules 文件上传相关错误
var UploadErrorRules = []MappedError{
	{Target: service.ErrUploadTooLarge, Code: response.CodeBadRequest, Key: "error.upload_too_large"},
	{Target: service.ErrUploadInvalidType, Code: response.CodeBadRequest, Key: "error.upload_invalid_type"},
}
