package authz

import (
	"errors"
	"fmt"
)

// ErrBuiltinRole 预置角色不可删除
var ErrBuiltinRole = errors.New("builtin role cannot be deleted")

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role      string
	Inherits  []string
	Policies  []Policy
	Immutable bool
}

// BuiltinRoleSeeds 编辑部预置角色：只读审计 < 审稿 < 编辑
// ADMIN 用户角色不走委派，始终拥有全部后台权限。
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "readonly_auditor",
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role:     "reviewer",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/admin/review/:type/:id/approve", Action: "POST"},
				{Object: "/admin/review/:type/:id/reject", Action: "POST"},
				{Object: "/admin/contents/:id/status", Action: "PATCH"},
			},
			Immutable: true,
		},
		{
			Role:     "editor",
			Inherits: []string{"reviewer"},
			Policies: []Policy{
				{Object: "/admin/contents", Action: "*"},
				{Object: "/admin/contents/:id", Action: "*"},
				{Object: "/admin/contents/:id/doi", Action: "POST"},
				{Object: "/admin/journals", Action: "*"},
				{Object: "/admin/journals/:id", Action: "*"},
				{Object: "/admin/uploads/pdf", Action: "POST"},
			},
			Immutable: true,
		},
	}
}

// IsBuiltinRole 判断角色是否为不可删除的预置角色
func IsBuiltinRole(role string) bool {
	normalized, err := NormalizeRole(role)
	if err != nil {
		return false
	}
	for _, seed := range BuiltinRoleSeeds() {
		if !seed.Immutable {
			continue
		}
		if name, _ := NormalizeRole(seed.Role); name == normalized {
			return true
		}
	}
	return false
}

// BootstrapBuiltinRoles 写入预置角色、继承链与默认策略，可重复执行
func (s *Service) BootstrapBuiltinRoles() error {
	e, err := s.ready()
	if err != nil {
		return err
	}
	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return fmt.Errorf("create builtin role %s failed: %w", seed.Role, err)
		}
		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if _, err := e.AddNamedGroupingPolicy(groupingPType, role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}
		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return ErrActionRequired
			}
			if _, err := e.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}
	return nil
}
