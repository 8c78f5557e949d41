package service

import "errors"

// 通用错误
var (
	ErrNotFound  = errors.New("资源不存在")
	ErrForbidden = errors.New("无权执行该操作")
)

// 内容与流程错误
var (
	ErrContentNotFound    = errors.New("内容不存在")
	ErrInvalidStatus      = errors.New("无效的内容状态")
	ErrInvalidTransition  = errors.New("不允许的状态流转")
	ErrInvalidContentType = errors.New("无效的内容类型")
	ErrTitleRequired      = errors.New("标题不能为空")
	ErrInvalidSlug        = errors.New("slug 格式无效")
	ErrSlugExists         = errors.New("slug 已存在")
	ErrContentNotEditable = errors.New("当前状态下内容不可编辑")
	ErrContentUpdate      = errors.New("内容更新失败")
)

// 期刊与审核错误
var (
	ErrJournalNotFound    = errors.New("期刊不存在")
	ErrJournalSlugExists  = errors.New("期刊 slug 已存在")
	ErrInvalidReviewType  = errors.New("无效的审核条目类型")
	ErrReviewItemNotFound = errors.New("审核条目不存在")
)

// 用户与认证错误
var (
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailExists        = errors.New("邮箱已被注册")
	ErrInvalidEmail       = errors.New("邮箱格式无效")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrUserDisabled       = errors.New("账号已被禁用")
	ErrWeakPassword       = errors.New("密码强度不足")
	ErrInvalidRole        = errors.New("无效的角色")
	ErrTokenInvalid       = errors.New("无效的 token")
)

// DOI 登记错误
var (
	ErrDOINotConfigured = errors.New("DOI 登记未配置")
	ErrDOINotEligible   = errors.New("内容不满足 DOI 登记条件")
	ErrContentHasDOI    = errors.New("内容已进入 DOI 登记，不能删除")
)

// 文件上传错误
var (
	ErrUploadTooLarge    = errors.New("文件大小超过限制")
	ErrUploadInvalidType = errors.New("文件类型不被允许")
	ErrUploadFailed      = errors.New("文件上传失败")
)

// 邮件错误
var (
	ErrEmailServiceDisabled      = errors.New("邮件服务未启用")
	ErrEmailServiceNotConfigured = errors.New("邮件服务未配置")
	ErrEmailRecipientRejected    = errors.New("收件人地址被拒绝")
)
