package public

import (
	"errors"
	"strings"

	handlershared "github.com/pressdesk/internal/http/handlers/shared"
	"github.com/pressdesk/internal/http/response"
	"github.com/pressdesk/internal/repository"
	"github.com/pressdesk/internal/service"

	"github.com/gin-gonic/gin"
)

// GetContents 公开检索已发布内容（含分面统计）
func (h *Handler) GetContents(c *gin.Context) {
	filter := handlershared.ParseContentFilter(c)
	result, err := h.ContentService.Search(filter)
	if err != nil {
		if errors.Is(err, service.ErrInvalidContentType) {
			respondError(c, response.CodeBadRequest, "error.invalid_content_type", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithFacets(c, result.Items, result.Facets, response.NewPagination(filter.Page, filter.PageSize, result.Total))
}

// GetContentBySlug 公开内容详情
func (h *Handler) GetContentBySlug(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	content, err := h.ContentService.GetPublicBySlug(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, service.ErrContentNotFound) {
			respondError(c, response.CodeNotFound, "error.content_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, content)
}

// GetTags 标签及已发布内容数
func (h *Handler) GetTags(c *gin.Context) {
	tags, err := h.TagService.ListWithCounts()
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, tags)
}

// GetJournals 已发布期刊列表
func (h *Handler) GetJournals(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	journals, total, err := h.JournalService.ListPublic(repository.JournalListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, journals, response.NewPagination(page, pageSize, total))
}
