package shared

import (
	"strconv"
	"strings"

	"github.com/pressdesk/internal/repository"

	"github.com/gin-gonic/gin"
)

// ParseContentFilter 读取内容检索参数
func ParseContentFilter(c *gin.Context) repository.ContentListFilter {
	page, pageSize := ParsePagination(c)
	year, _ := strconv.Atoi(strings.TrimSpace(c.Query("year")))
	journalID, _ := strconv.ParseUint(strings.TrimSpace(c.Query("journal_id")), 10, 64)
	return repository.ContentListFilter{
		Page:      page,
		PageSize:  pageSize,
		Status:    strings.TrimSpace(c.Query("status")),
		Type:      strings.TrimSpace(c.Query("type")),
		Tag:       strings.TrimSpace(c.Query("tag")),
		Author:    strings.TrimSpace(c.Query("author")),
		JournalID: uint(journalID),
		Year:      year,
		Search:    strings.TrimSpace(c.Query("search")),
		Sort:      strings.TrimSpace(c.Query("sort")),
	}
}
