package admin

import (
	"errors"

	handlershared "github.com/pressdesk/internal/http/handlers/shared"
	"github.com/pressdesk/internal/http/response"
	"github.com/pressdesk/internal/i18n"
	"github.com/pressdesk/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateContentStatusRequest 状态流转请求
type UpdateContentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetAdminContents 后台内容列表
func (h *Handler) GetAdminContents(c *gin.Context) {
	filter := handlershared.ParseContentFilter(c)
	result, err := h.ContentService.AdminList(filter)
	if err != nil {
		respondMappedError(c, err, handlershared.ContentErrorRules, response.CodeInternal, "error.fetch_failed")
		return
	}
	response.SuccessWithFacets(c, result.Items, result.Facets, response.NewPagination(filter.Page, filter.PageSize, result.Total))
}

// GetAdminContent 后台内容详情
func (h *Handler) GetAdminContent(c *gin.Context) {
	id, ok := parseIDParam(c, "error.content_id_invalid")
	if !ok {
		return
	}
	content, err := h.ContentService.GetByID(id)
	if err != nil {
		respondMappedError(c, err, handlershared.ContentErrorRules, response.CodeInternal, "error.fetch_failed")
		return
	}
	response.Success(c, gin.H{
		"content":             content,
		"allowed_transitions": service.AllowedTransitions(content.Status),
		"pdf_url":             h.UploadService.URL(content.PDFKey),
	})
}

// CreateContent 后台创建内容
func (h *Handler) CreateContent(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	var req service.ContentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	result, err := h.ContentService.CreateByAdmin(c.Request.Context(), principal, req)
	if err != nil {
		respondMappedError(c, err, handlershared.ContentErrorRules, response.CodeInternal, "error.save_failed")
		return
	}
	response.Success(c, result)
}

// UpdateContent 后台更新内容元数据
func (h *Handler) UpdateContent(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "error.content_id_invalid")
	if !ok {
		return
	}
	var req service.ContentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	content, err := h.ContentService.Update(c.Request.Context(), principal, id, req)
	if err != nil {
		respondMappedError(c, err, handlershared.ContentErrorRules, response.CodeInternal, "error.save_failed")
		return
	}
	response.Success(c, content)
}

// DeleteContent 删除内容
func (h *Handler) DeleteContent(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "error.content_id_invalid")
	if !ok {
		return
	}
	if err := h.ContentService.Delete(c.Request.Context(), principal, id); err != nil {
		respondMappedError(c, err, handlershared.ContentErrorRules, response.CodeInternal, "error.delete_failed")
		return
	}
	response.Success(c, nil)
}

// UpdateContentStatus 请求内容状态流转
func (h *Handler) UpdateContentStatus(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "error.content_id_invalid")
	if !ok {
		return
	}
	var req UpdateContentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.invalid_status", err)
		return
	}
	result, err := h.WorkflowService.TransitionStatus(c.Request.Context(), principal, id, req.Status)
	if err != nil {
		if errors.Is(err, service.ErrContentUpdate) {
			respondError(c, response.CodeInternal, "error.content_update_failed", nil)
			return
		}
		respondMappedError(c, err, handlershared.ContentErrorRules, response.CodeInternal, "error.content_update_failed")
		return
	}
	result.Localize(i18n.ResolveLocale(c))
	response.SuccessWithMsg(c, result.Message, result)
}

// RetryContentDOI 手动重试 DOI 登记
func (h *Handler) RetryContentDOI(c *gin.Context) {
	id, ok := parseIDParam(c, "error.content_id_invalid")
	if !ok {
		return
	}
	result, err := h.DOIService.RetryRegistration(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDOINotConfigured):
			respondError(c, response.CodeBadRequest, "error.doi_not_configured", nil)
		case errors.Is(err, service.ErrDOINotEligible):
			respondError(c, response.CodeBadRequest, "error.doi_not_eligible", nil)
		case errors.Is(err, service.ErrContentNotFound):
			respondError(c, response.CodeNotFound, "error.content_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal_error", err)
		}
		return
	}
	requestLog(c).Infow("admin_doi_retry", "content_id", id, "success", result.Success)
	response.Success(c, result)
}

// UploadContentPDF 后台上传内容 PDF
func (h *Handler) UploadContentPDF(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	result, err := h.UploadService.SavePDF(c.Request.Context(), file)
	if err != nil {
		respondMappedError(c, err, handlershared.UploadErrorRules, response.CodeInternal, "error.upload_failed")
		return
	}
	response.Success(c, result)
}

// GetCrossrefConfig Crossref 配置摘要（不含凭据）
func (h *Handler) GetCrossrefConfig(c *gin.Context) {
	response.Success(c, gin.H{
		"crossref":          h.DOIService.ConfigSummary(),
		"transition_policy": h.WorkflowService.Policy(),
	})
}
