package authz

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/util"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

const (
	apiV1Prefix   = "/api/v1"
	ruleTable     = "casbin_rule"
	groupingPType = "g"
	userSubject   = "user:"
	rolePrefix    = "role:"
	// 锚点只用于登记角色存在，本身不授予任何权限
	roleAnchor = "role:__anchor__"
)

// 编辑部委派模型：用户继承角色，角色持有 (路由模板, 方法) 授权
const deskRBACModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (g(r.sub, p.sub) || r.sub == p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

var (
	ErrUnavailable    = errors.New("authz service unavailable")
	ErrRoleRequired   = errors.New("role is required")
	ErrReservedRole   = errors.New("reserved role is not allowed")
	ErrActionRequired = errors.New("action is required")
	ErrUserRequired   = errors.New("user id is required")
)

// Policy 授权策略，Object 为去掉 /api/v1 前缀的路由模板
type Policy struct {
	Subject string `json:"subject"`
	Object  string `json:"object"`
	Action  string `json:"action"`
}

// Service 后台委派授权
// ADMIN 用户不经过这里；编辑、审稿等委派身份通过角色获得具体后台接口权限。
type Service struct {
	enforcer *casbin.SyncedEnforcer
}

// NewService 基于业务库创建授权服务，策略存放在 casbin_rule 表
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("authz db is nil")
	}
	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", ruleTable)
	if err != nil {
		return nil, fmt.Errorf("create authz adapter failed: %w", err)
	}
	m, err := model.NewModelFromString(deskRBACModel)
	if err != nil {
		return nil, fmt.Errorf("load authz model failed: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("init authz enforcer failed: %w", err)
	}
	enforcer.AddFunction("keyMatch2", util.KeyMatch2Func)
	enforcer.EnableAutoSave(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load authz policy failed: %w", err)
	}
	return &Service{enforcer: enforcer}, nil
}

func (s *Service) ready() (*casbin.SyncedEnforcer, error) {
	if s == nil || s.enforcer == nil {
		return nil, ErrUnavailable
	}
	return s.enforcer, nil
}

// Enforce 判定主体能否以 act 访问 obj
func (s *Service) Enforce(sub, obj, act string) (bool, error) {
	e, err := s.ready()
	if err != nil {
		return false, err
	}
	return e.Enforce(strings.TrimSpace(sub), NormalizeObject(obj), NormalizeAction(act))
}

// EnforceUser 按用户判定后台接口访问
func (s *Service) EnforceUser(userID uint, obj, act string) (bool, error) {
	return s.Enforce(SubjectForUser(userID), obj, act)
}

// ReloadPolicy 从库中重新加载策略
func (s *Service) ReloadPolicy() error {
	e, err := s.ready()
	if err != nil {
		return err
	}
	return e.LoadPolicy()
}

// EnsureRole 登记角色，已存在时直接返回规范名称
func (s *Service) EnsureRole(role string) (string, error) {
	normalized, err := normalizeAssignableRole(role)
	if err != nil {
		return "", err
	}
	e, err := s.ready()
	if err != nil {
		return "", err
	}
	if _, err := e.AddNamedGroupingPolicy(groupingPType, normalized, roleAnchor); err != nil {
		return "", fmt.Errorf("create role failed: %w", err)
	}
	return normalized, nil
}

// ListRoles 列出全部已登记或被引用的角色
func (s *Service) ListRoles() ([]string, error) {
	e, err := s.ready()
	if err != nil {
		return nil, err
	}
	links, err := e.GetFilteredNamedGroupingPolicy(groupingPType, 0)
	if err != nil {
		return nil, fmt.Errorf("list roles failed: %w", err)
	}
	seen := make(map[string]struct{})
	for _, link := range links {
		for _, name := range link {
			if isDeskRole(name) {
				seen[name] = struct{}{}
			}
		}
	}
	return sortedKeys(seen), nil
}

// DeleteRole 删除角色、角色策略以及所有指向该角色的继承关系
func (s *Service) DeleteRole(role string) error {
	normalized, err := normalizeAssignableRole(role)
	if err != nil {
		return err
	}
	if IsBuiltinRole(normalized) {
		return ErrBuiltinRole
	}
	e, err := s.ready()
	if err != nil {
		return err
	}
	if _, err := e.RemoveFilteredPolicy(0, normalized); err != nil {
		return fmt.Errorf("remove role policy failed: %w", err)
	}
	for field := 0; field <= 1; field++ {
		if _, err := e.RemoveFilteredNamedGroupingPolicy(groupingPType, field, normalized); err != nil {
			return fmt.Errorf("remove role link failed: %w", err)
		}
	}
	return nil
}

// GrantRolePolicy 为角色授予接口权限，角色不存在时自动登记
func (s *Service) GrantRolePolicy(role, object, action string) error {
	act := NormalizeAction(action)
	if act == "" {
		return ErrActionRequired
	}
	normalized, err := s.EnsureRole(role)
	if err != nil {
		return err
	}
	if _, err := s.enforcer.AddPolicy(normalized, NormalizeObject(object), act); err != nil {
		return fmt.Errorf("grant policy failed: %w", err)
	}
	return nil
}

// RevokeRolePolicy 撤销角色的接口权限
func (s *Service) RevokeRolePolicy(role, object, action string) error {
	act := NormalizeAction(action)
	if act == "" {
		return ErrActionRequired
	}
	normalized, err := NormalizeRole(role)
	if err != nil {
		return err
	}
	e, err := s.ready()
	if err != nil {
		return err
	}
	if _, err := e.RemovePolicy(normalized, NormalizeObject(object), act); err != nil {
		return fmt.Errorf("revoke policy failed: %w", err)
	}
	return nil
}

// GetRolePolicies 查询角色直接持有的策略
func (s *Service) GetRolePolicies(role string) ([]Policy, error) {
	normalized, err := NormalizeRole(role)
	if err != nil {
		return nil, err
	}
	e, err := s.ready()
	if err != nil {
		return nil, err
	}
	rules, err := e.GetFilteredPolicy(0, normalized)
	if err != nil {
		return nil, fmt.Errorf("get role policies failed: %w", err)
	}
	return toPolicies(rules), nil
}

// SetUserRoles 覆盖用户的委派角色，传空切片即撤销全部委派
func (s *Service) SetUserRoles(userID uint, roles []string) error {
	if userID == 0 {
		return ErrUserRequired
	}
	e, err := s.ready()
	if err != nil {
		return err
	}
	subject := SubjectForUser(userID)
	if _, err := e.RemoveFilteredNamedGroupingPolicy(groupingPType, 0, subject); err != nil {
		return fmt.Errorf("clear user roles failed: %w", err)
	}
	for _, role := range roles {
		normalized, err := s.EnsureRole(role)
		if err != nil {
			return err
		}
		if _, err := e.AddNamedGroupingPolicy(groupingPType, subject, normalized); err != nil {
			return fmt.Errorf("assign user role failed: %w", err)
		}
	}
	return nil
}

// GetUserRoles 查询用户的委派角色
func (s *Service) GetUserRoles(userID uint) ([]string, error) {
	if userID == 0 {
		return nil, ErrUserRequired
	}
	e, err := s.ready()
	if err != nil {
		return nil, err
	}
	roles, err := e.GetRolesForUser(SubjectForUser(userID))
	if err != nil {
		return nil, fmt.Errorf("get user roles failed: %w", err)
	}
	seen := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		if isDeskRole(role) {
			seen[role] = struct{}{}
		}
	}
	return sortedKeys(seen), nil
}

// HasDelegatedRole 用户是否持有任一委派角色
func (s *Service) HasDelegatedRole(userID uint) (bool, error) {
	roles, err := s.GetUserRoles(userID)
	if err != nil {
		return false, err
	}
	return len(roles) > 0, nil
}

// GetUserPolicies 汇总用户生效策略：直连策略加上每个委派角色的策略
func (s *Service) GetUserPolicies(userID uint) ([]Policy, error) {
	roles, err := s.GetUserRoles(userID)
	if err != nil {
		return nil, err
	}
	e := s.enforcer
	subjects := append([]string{SubjectForUser(userID)}, roles...)
	merged := make(map[Policy]struct{})
	for _, subject := range subjects {
		rules, err := e.GetFilteredPolicy(0, subject)
		if err != nil {
			return nil, fmt.Errorf("get policies for %s failed: %w", subject, err)
		}
		for _, item := range toPolicies(rules) {
			merged[item] = struct{}{}
		}
	}
	result := make([]Policy, 0, len(merged))
	for item := range merged {
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		if a.Object != b.Object {
			return a.Object < b.Object
		}
		return a.Action < b.Action
	})
	return result, nil
}

func toPolicies(rules [][]string) []Policy {
	policies := make([]Policy, 0, len(rules))
	for _, rule := range rules {
		if len(rule) < 3 {
			continue
		}
		policies = append(policies, Policy{
			Subject: strings.TrimSpace(rule[0]),
			Object:  NormalizeObject(rule[1]),
			Action:  NormalizeAction(rule[2]),
		})
	}
	return policies
}

func isDeskRole(name string) bool {
	return strings.HasPrefix(name, rolePrefix) && name != roleAnchor
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func normalizeAssignableRole(role string) (string, error) {
	normalized, err := NormalizeRole(role)
	if err != nil {
		return "", err
	}
	if normalized == roleAnchor {
		return "", ErrReservedRole
	}
	return normalized, nil
}

// SubjectForUser 用户主体标识，形如 user:42
func SubjectForUser(userID uint) string {
	return fmt.Sprintf("%s%d", userSubject, userID)
}

// NormalizeRole 角色名去空白、空格转下划线并补齐 role: 前缀
func NormalizeRole(role string) (string, error) {
	name := strings.ReplaceAll(strings.TrimSpace(role), " ", "_")
	name = strings.TrimPrefix(name, rolePrefix)
	if name == "" {
		return "", ErrRoleRequired
	}
	return rolePrefix + name, nil
}

// NormalizeObject 统一为不带 /api/v1 前缀的绝对路径
func NormalizeObject(object string) string {
	path := strings.TrimSpace(object)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	switch {
	case path == apiV1Prefix:
		return "/"
	case strings.HasPrefix(path, apiV1Prefix+"/"):
		return strings.TrimPrefix(path, apiV1Prefix)
	}
	return path
}

// NormalizeAction HTTP 方法统一大写，"*" 表示任意方法
func NormalizeAction(action string) string {
	return strings.ToUpper(strings.TrimSpace(action))
}
