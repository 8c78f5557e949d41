package public

import (
	"errors"

	handlershared "github.com/pressdesk/internal/http/handlers/shared"
	"github.com/pressdesk/internal/http/response"
	"github.com/pressdesk/internal/i18n"
	"github.com/pressdesk/internal/service"

	"github.com/gin-gonic/gin"
)

// ListMyContents 我署名的内容
func (h *Handler) ListMyContents(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	filter := handlershared.ParseContentFilter(c)
	items, total, err := h.ContentService.ListMine(principal, filter)
	if err != nil {
		handlershared.RespondMappedError(c, err, handlershared.ContentErrorRules, response.CodeInternal, "error.fetch_failed")
		return
	}
	response.SuccessWithPage(c, items, response.NewPagination(filter.Page, filter.PageSize, total))
}

// CreateMyContent 作者创建草稿
func (h *Handler) CreateMyContent(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	var req service.ContentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	content, err := h.ContentService.CreateByAuthor(c.Request.Context(), principal, req)
	if err != nil {
		handlershared.RespondMappedError(c, err, handlershared.ContentErrorRules, response.CodeInternal, "error.save_failed")
		return
	}
	response.Success(c, content)
}

// UpdateMyContent 作者编辑自己的草稿
func (h *Handler) UpdateMyContent(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParseIDParam(c, "id", "error.content_id_invalid")
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
		handlershared.RespondMappedError(c, err, handlershared.ContentErrorRules, response.CodeInternal, "error.save_failed")
		return
	}
	response.Success(c, content)
}

// SubmitMyContent 提交审核
func (h *Handler) SubmitMyContent(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}
	id, ok := handlershared.ParseIDParam(c, "id", "error.content_id_invalid")
	if !ok {
		return
	}
	result, err := h.ContentService.Submit(c.Request.Context(), principal, id)
	if err != nil {
		if errors.Is(err, service.ErrContentUpdate) {
			respondError(c, response.CodeInternal, "error.content_update_failed", nil)
			return
		}
		handlershared.RespondMappedError(c, err, handlershared.ContentErrorRules, response.CodeInternal, "error.content_update_failed")
		return
	}
	result.Localize(i18n.ResolveLocale(c))
	response.Success(c, result)
}

// UploadMyPDF 上传内容 PDF
func (h *Handler) UploadMyPDF(c *gin.Context) {
	if _, ok := requirePrincipal(c); !ok {
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	result, err := h.UploadService.SavePDF(c.Request.Context(), file)
	if err != nil {
		handlershared.RespondMappedError(c, err, handlershared.UploadErrorRules, response.CodeInternal, "error.upload_failed")
		return
	}
	response.Success(c, result)
}
