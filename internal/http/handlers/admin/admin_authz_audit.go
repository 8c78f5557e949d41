package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/pressdesk/internal/http/handlers/shared"
	"github.com/pressdesk/internal/http/response"
	"github.com/pressdesk/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListAuthzAuditLogs 授权变更审计日志，支持操作人、目标账号、动作、角色与时间过滤
func (h *Handler) ListAuthzAuditLogs(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)

	operatorUserID, err := parseOptionalUint(c.Query("operator_user_id"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	targetUserID, err := parseOptionalUint(c.Query("target_user_id"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdFrom, err := parseTimeNullable(c.Query("created_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := parseTimeNullable(c.Query("created_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	items, total, err := h.AccessService.ListAudit(repository.AuthzAuditLogListFilter{
		Page:           page,
		PageSize:       pageSize,
		OperatorUserID: operatorUserID,
		TargetUserID:   targetUserID,
		Action:         strings.TrimSpace(c.Query("action")),
		Role:           strings.TrimSpace(c.Query("role")),
		CreatedFrom:    createdFrom,
		CreatedTo:      createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, items, response.NewPagination(page, pageSize, total))
}

func parseOptionalUint(raw string) (uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}
