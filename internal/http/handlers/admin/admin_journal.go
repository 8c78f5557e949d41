package admin

import (
	"strings"

	handlershared "github.com/pressdesk/internal/http/handlers/shared"
	"github.com/pressdesk/internal/http/response"
	"github.com/pressdesk/internal/repository"
	"github.com/pressdesk/internal/service"

	"github.com/gin-gonic/gin"
)

var journalErrorRules = []handlershared.MappedError{
	{Target: service.ErrJournalNotFound, Code: response.CodeNotFound, Key: "error.journal_not_found"},
	{Target: service.ErrJournalSlugExists, Code: response.CodeConflict, Key: "error.journal_slug_exists"},
	{Target: service.ErrInvalidSlug, Code: response.CodeBadRequest, Key: "error.slug_invalid"},
	{Target: service.ErrTitleRequired, Code: response.CodeBadRequest, Key: "error.title_required"},
	{Target: service.ErrForbidden, Code: response.CodeForbidden, Key: "error.forbidden"},
}

// GetAdminJournals 期刊列表
func (h *Handler) GetAdminJournals(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	journals, total, err := h.JournalService.ListAdmin(repository.JournalListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.ToUpper(strings.TrimSpace(c.Query("status"))),
		Search:   strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, journals, response.NewPagination(page, pageSize, total))
}

// GetAdminJournal 期刊详情
func (h *Handler) GetAdminJournal(c *gin.Context) {
	id, ok := parseIDParam(c, "error.journal_id_invalid")
	if !ok {
		return
	}
	journal, err := h.JournalService.GetByID(id)
	if err != nil {
		respondMappedError(c, err, journalErrorRules, response.CodeInternal, "error.fetch_failed")
		return
	}
	response.Success(c, journal)
}

// CreateJournal 创建期刊（草稿，经审核队列发布）
func (h *Handler) CreateJournal(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	var req service.JournalInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	journal, err := h.JournalService.Create(principal, req)
	if err != nil {
		respondMappedError(c, err, journalErrorRules, response.CodeInternal, "error.save_failed")
		return
	}
	response.Success(c, journal)
}

// UpdateJournal 更新期刊
func (h *Handler) UpdateJournal(c *gin.Context) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "error.journal_id_invalid")
	if !ok {
		return
	}
	var req service.JournalInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	journal, err := h.JournalService.Update(principal, id, req)
	if err != nil {
		respondMappedError(c, err, journalErrorRules, response.CodeInternal, "error.save_failed")
		return
	}
	response.Success(c, journal)
}

// GetAdminAuthors 作者列表
func (h *Handler) GetAdminAuthors(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	authors, total, err := h.AuthorService.List(repository.AuthorListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  strings.TrimSpace(c.Query("keyword")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, authors, response.NewPagination(page, pageSize, total))
}

// GetAdminAuthor 作者详情（附按邮箱匹配的用户）
func (h *Handler) GetAdminAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "error.bad_request")
	if !ok {
		return
	}
	detail, err := h.AuthorService.GetWithUser(id)
	if err != nil {
		if err == service.ErrNotFound {
			respondError(c, response.CodeNotFound, "error.not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, detail)
}
