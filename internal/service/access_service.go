package service

import (
	"strings"
	"time"

	"github.com/pressdesk/internal/authz"
	"github.com/pressdesk/internal/logger"
	"github.com/pressdesk/internal/models"
	"github.com/pressdesk/internal/repository"
)

// 审计动作
const (
	AuditRoleCreate   = "role_create"
	AuditRoleDelete   = "role_delete"
	AuditPolicyGrant  = "policy_grant"
	AuditPolicyRevoke = "policy_revoke"
	AuditUserRolesSet = "user_roles_update"
)

// AuditActor 发起后台授权变更的操作人
type AuditActor struct {
	UserID    uint
	Email     string
	RequestID string
}

// AccessSnapshot 当前账号在后台的权限视图
type AccessSnapshot struct {
	UserID   uint           `json:"user_id"`
	Role     string         `json:"role"`
	Elevated bool           `json:"elevated"`
	Roles    []string       `json:"roles"`
	Policies []authz.Policy `json:"policies"`
}

// AccessService 后台委派角色管理，每次变更写一条审计记录
// 审计写入失败只告警，不回滚已生效的授权变更。
type AccessService struct {
	authz *authz.Service
	audit repository.AuthzAuditLogRepository
	users repository.UserRepository
}

// NewAccessService 创建授权管理服务
func NewAccessService(authzService *authz.Service, audit repository.AuthzAuditLogRepository, users repository.UserRepository) *AccessService {
	return &AccessService{authz: authzService, audit: audit, users: users}
}

// Snapshot 汇总账号的委派角色与展开后的策略
func (s *AccessService) Snapshot(principal *Principal) (*AccessSnapshot, error) {
	if principal == nil || principal.UserID == 0 {
		return nil, ErrForbidden
	}
	roles, err := s.authz.GetUserRoles(principal.UserID)
	if err != nil {
		return nil, err
	}
	policies, err := s.authz.GetUserPolicies(principal.UserID)
	if err != nil {
		return nil, err
	}
	return &AccessSnapshot{
		UserID:   principal.UserID,
		Role:     principal.Role,
		Elevated: principal.Elevated,
		Roles:    roles,
		Policies: policies,
	}, nil
}

// ListRoles 全部委派角色
func (s *AccessService) ListRoles() ([]string, error) {
	return s.authz.ListRoles()
}

// RolePolicies 角色直接授予的策略
func (s *AccessService) RolePolicies(role string) ([]authz.Policy, error) {
	return s.authz.GetRolePolicies(role)
}

// CreateRole 创建角色，已存在时视为成功
func (s *AccessService) CreateRole(actor AuditActor, role string) (string, error) {
	created, err := s.authz.EnsureRole(role)
	if err != nil {
		return "", err
	}
	s.record(actor, &models.AuthzAuditLog{
		Action:     AuditRoleCreate,
		Role:       created,
		DetailJSON: models.JSON{"role": created},
	})
	return created, nil
}

// DeleteRole 删除角色及其策略与用户绑定，内置角色不可删除
func (s *AccessService) DeleteRole(actor AuditActor, role string) error {
	if err := s.authz.DeleteRole(role); err != nil {
		return err
	}
	s.record(actor, &models.AuthzAuditLog{
		Action:     AuditRoleDelete,
		Role:       canonicalRole(role),
		DetailJSON: models.JSON{"role": canonicalRole(role)},
	})
	return nil
}

// ChangePolicy grant 为真时授予策略，否则撤销
func (s *AccessService) ChangePolicy(actor AuditActor, grant bool, role, object, action string) error {
	auditAction := AuditPolicyRevoke
	change := s.authz.RevokeRolePolicy
	if grant {
		auditAction = AuditPolicyGrant
		change = s.authz.GrantRolePolicy
	}
	if err := change(role, object, action); err != nil {
		return err
	}
	s.record(actor, &models.AuthzAuditLog{
		Action: auditAction,
		Role:   canonicalRole(role),
		DetailJSON: models.JSON{
			"role":   canonicalRole(role),
			"object": authz.NormalizeObject(object),
			"method": authz.NormalizeAction(action),
		},
	})
	return nil
}

// UserRoles 账号当前的委派角色
func (s *AccessService) UserRoles(userID uint) ([]string, error) {
	if _, err := s.requireUser(userID); err != nil {
		return nil, err
	}
	return s.authz.GetUserRoles(userID)
}

// SetUserRoles 以给定列表整体替换账号的委派角色
func (s *AccessService) SetUserRoles(actor AuditActor, userID uint, roles []string) error {
	user, err := s.requireUser(userID)
	if err != nil {
		return err
	}
	if err := s.authz.SetUserRoles(userID, roles); err != nil {
		return err
	}
	s.record(actor, &models.AuthzAuditLog{
		TargetUserID: &userID,
		TargetEmail:  user.Email,
		Action:       AuditUserRolesSet,
		DetailJSON:   models.JSON{"target_user_id": userID, "roles": roles},
	})
	return nil
}

// ListAudit 审计日志分页查询
func (s *AccessService) ListAudit(filter repository.AuthzAuditLogListFilter) ([]models.AuthzAuditLog, int64, error) {
	if s.audit == nil {
		return []models.AuthzAuditLog{}, 0, nil
	}
	filter.Action = strings.TrimSpace(filter.Action)
	if filter.Role != "" {
		filter.Role = canonicalRole(filter.Role)
	}
	return s.audit.List(filter)
}

// canonicalRole 审计中统一记录 role: 前缀的规范名
func canonicalRole(role string) string {
	if normalized, err := authz.NormalizeRole(role); err == nil {
		return normalized
	}
	return strings.TrimSpace(role)
}

func (s *AccessService) requireUser(userID uint) (*models.User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AccessService) record(actor AuditActor, entry *models.AuthzAuditLog) {
	logger.Infow("admin_authz_"+entry.Action, "operator_user_id", actor.UserID, "role", entry.Role)
	if s.audit == nil || actor.UserID == 0 {
		return
	}
	entry.OperatorUserID = actor.UserID
	entry.OperatorEmail = strings.TrimSpace(actor.Email)
	entry.RequestID = strings.TrimSpace(actor.RequestID)
	entry.CreatedAt = time.Now()
	if err := s.audit.Create(entry); err != nil {
		logger.Warnw("admin_authz_audit_record_failed",
			"action", entry.Action,
			"operator_user_id", actor.UserID,
			"error", err,
		)
	}
}
