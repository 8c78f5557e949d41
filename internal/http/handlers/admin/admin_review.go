package admin

import (
	"errors"
	"strings"

	"github.com/pressdesk/internal/http/response"
	"github.com/pressdesk/internal/i18n"
	"github.com/pressdesk/internal/service"

	"github.com/gin-gonic/gin"
)

// GetPendingReview 待审核条目汇总
func (h *Handler) GetPendingReview(c *gin.Context) {
	pending, err := h.ReviewService.GetPendingReview(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, pending)
}

// ApproveReviewItem 审核通过
func (h *Handler) ApproveReviewItem(c *gin.Context) {
	h.decideReviewItem(c, true)
}

// RejectReviewItem 审核驳回
func (h *Handler) RejectReviewItem(c *gin.Context) {
	h.decideReviewItem(c, false)
}

func (h *Handler) decideReviewItem(c *gin.Context, approve bool) {
	principal, ok := currentPrincipal(c)
	if !ok {
		return
	}
	itemType := strings.TrimSpace(c.Param("type"))
	id, ok := parseIDParam(c, "error.bad_request")
	if !ok {
		return
	}

	var (
		result *service.ReviewActionResult
		err    error
	)
	if approve {
		result, err = h.ReviewService.Approve(c.Request.Context(), principal, itemType, id)
	} else {
		result, err = h.ReviewService.Reject(c.Request.Context(), principal, itemType, id)
	}
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidReviewType):
			respondError(c, response.CodeBadRequest, "error.invalid_review_type", nil)
		case errors.Is(err, service.ErrReviewItemNotFound):
			respondError(c, response.CodeNotFound, "error.review_item_not_found", nil)
		case errors.Is(err, service.ErrForbidden):
			respondError(c, response.CodeForbidden, "error.forbidden", nil)
		case errors.Is(err, service.ErrInvalidTransition):
			respondError(c, response.CodeBadRequest, "error.invalid_transition", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal_error", err)
		}
		return
	}
	result.Localize(i18n.ResolveLocale(c))
	response.SuccessWithMsg(c, result.Message, result)
}
