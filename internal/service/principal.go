package service

import (
	"strings"

	"github.com/pressdesk/internal/constants"
)

// Principal 已认证的调用方
// 由 HTTP 层解析后传入服务层，服务层不读取任何全局会话状态。
type Principal struct {
	UserID uint
	Email  string
	Role   string
	// Elevated 表示持有后台委派角色（RBAC 已放行对应接口）
	Elevated bool
}

// IsAdmin 是否具备管理员能力
func (p *Principal) IsAdmin() bool {
	if p == nil {
		return false
	}
	return strings.EqualFold(p.Role, constants.UserRoleAdmin) || p.Elevated
}

// MatchesEmail 判断调用方邮箱是否与给定邮箱一致（忽略大小写）
func (p *Principal) MatchesEmail(email string) bool {
	if p == nil {
		return false
	}
	own := strings.ToLower(strings.TrimSpace(p.Email))
	if own == "" {
		return false
	}
	return own == strings.ToLower(strings.TrimSpace(email))
}

// ActorID 用于日志的调用方标识
func (p *Principal) ActorID() uint {
	if p == nil {
		return 0
	}
	return p.UserID
}

// SystemPrincipal 内部流程使用的管理员身份
func SystemPrincipal() *Principal {
	return &Principal{Role: constants.UserRoleAdmin, Email: "system"}
}
