package admin

import (
	"net/url"
	"strings"

	"github.com/pressdesk/internal/authz"
	handlershared "github.com/pressdesk/internal/http/handlers/shared"
	"github.com/pressdesk/internal/http/response"
	"github.com/pressdesk/internal/service"

	"github.com/gin-gonic/gin"
)

type authzRolePayload struct {
	Role string `json:"role" binding:"required"`
}

type authzPolicyPayload struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

type authzSetUserRolesPayload struct {
	Roles []string `json:"roles"`
}

var authzErrorRules = []handlershared.MappedError{
	{Target: service.ErrUserNotFound, Code: response.CodeNotFound, Key: "error.user_not_found"},
	{Target: authz.ErrBuiltinRole, Code: response.CodeBadRequest, Key: "error.role_builtin"},
	{Target: authz.ErrReservedRole, Code: response.CodeBadRequest, Key: "error.role_invalid"},
	{Target: authz.ErrRoleRequired, Code: response.CodeBadRequest, Key: "error.role_invalid"},
	{Target: authz.ErrActionRequired, Code: response.CodeBadRequest, Key: "error.bad_request"},
	{Target: authz.ErrUserRequired, Code: response.CodeBadRequest, Key: "error.user_id_invalid"},
}

// GetAuthzMe 当前账号的后台权限快照
func (h *Handler) GetAuthzMe(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	snapshot, err := h.AccessService.Snapshot(principal)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, snapshot)
}

// ListAuthzRoles 角色列表
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AccessService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, roles)
}

// CreateAuthzRole 创建角色
func (h *Handler) CreateAuthzRole(c *gin.Context) {
	var req authzRolePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	role, err := h.AccessService.CreateRole(auditActor(c), req.Role)
	if err != nil {
		respondMappedError(c, err, authzErrorRules, response.CodeInternal, "error.authz_update_failed")
		return
	}
	response.Success(c, gin.H{"role": role})
}

// DeleteAuthzRole 删除角色
func (h *Handler) DeleteAuthzRole(c *gin.Context) {
	role, ok := roleParam(c)
	if !ok {
		return
	}
	if err := h.AccessService.DeleteRole(auditActor(c), role); err != nil {
		respondMappedError(c, err, authzErrorRules, response.CodeInternal, "error.authz_update_failed")
		return
	}
	response.Success(c, nil)
}

// GetAuthzRolePolicies 角色策略
func (h *Handler) GetAuthzRolePolicies(c *gin.Context) {
	role, ok := roleParam(c)
	if !ok {
		return
	}
	policies, err := h.AccessService.RolePolicies(role)
	if err != nil {
		respondMappedError(c, err, authzErrorRules, response.CodeInternal, "error.fetch_failed")
		return
	}
	response.Success(c, policies)
}

// GrantAuthzPolicy 授予角色策略
func (h *Handler) GrantAuthzPolicy(c *gin.Context) {
	h.changeAuthzPolicy(c, true)
}

// RevokeAuthzPolicy 撤销角色策略
func (h *Handler) RevokeAuthzPolicy(c *gin.Context) {
	h.changeAuthzPolicy(c, false)
}

func (h *Handler) changeAuthzPolicy(c *gin.Context, grant bool) {
	var req authzPolicyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.AccessService.ChangePolicy(auditActor(c), grant, req.Role, req.Object, req.Action); err != nil {
		respondMappedError(c, err, authzErrorRules, response.CodeInternal, "error.authz_update_failed")
		return
	}
	response.Success(c, nil)
}

// GetAuthzUserRoles 账号的委派角色
func (h *Handler) GetAuthzUserRoles(c *gin.Context) {
	userID, ok := parseIDParam(c, "error.user_id_invalid")
	if !ok {
		return
	}
	roles, err := h.AccessService.UserRoles(userID)
	if err != nil {
		respondMappedError(c, err, authzErrorRules, response.CodeInternal, "error.fetch_failed")
		return
	}
	response.Success(c, roles)
}

// SetAuthzUserRoles 整体替换账号的委派角色，空列表即撤销全部
func (h *Handler) SetAuthzUserRoles(c *gin.Context) {
	userID, ok := parseIDParam(c, "error.user_id_invalid")
	if !ok {
		return
	}
	var req authzSetUserRolesPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.AccessService.SetUserRoles(auditActor(c), userID, req.Roles); err != nil {
		respondMappedError(c, err, authzErrorRules, response.CodeInternal, "error.authz_update_failed")
		return
	}
	response.Success(c, nil)
}

func auditActor(c *gin.Context) service.AuditActor {
	actor := service.AuditActor{RequestID: currentRequestID(c)}
	if principal := handlershared.CurrentPrincipal(c); principal != nil {
		actor.UserID = principal.UserID
		actor.Email = principal.Email
	}
	return actor
}

// roleParam 路径中的角色名可能被 URL 编码（role%3Aeditor）
func roleParam(c *gin.Context) (string, bool) {
	raw := c.Param("role")
	role, err := url.PathUnescape(raw)
	if err != nil {
		role = raw
	}
	role = strings.TrimSpace(role)
	if role == "" {
		respondError(c, response.CodeBadRequest, "error.role_invalid", nil)
		return "", false
	}
	return role, true
}
