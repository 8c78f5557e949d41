package response

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequestIDKey gin 上下文中请求 ID 的键
const RequestIDKey = "request_id"

// Envelope 所有接口共用的响应外壳
// 列表接口额外带 pagination，检索接口再带 facets。
type Envelope struct {
	StatusCode int         `json:"status_code"`
	Msg        string      `json:"msg"`
	Data       interface{} `json:"data"`
	Facets     interface{} `json:"facets,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination 分页信息
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

// NewPagination 根据总数计算总页数
func NewPagination(page, pageSize int, total int64) Pagination {
	p := Pagination{Page: page, PageSize: pageSize, Total: total}
	if pageSize > 0 {
		p.TotalPage = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return p
}

func write(c *gin.Context, env Envelope) {
	if env.Msg == "" {
		env.Msg = CodeText(env.StatusCode)
	}
	c.JSON(http.StatusOK, env)
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	write(c, Envelope{StatusCode: CodeOK, Data: data})
}

// SuccessWithMsg 成功响应，自定义提示
func SuccessWithMsg(c *gin.Context, msg string, data interface{}) {
	write(c, Envelope{StatusCode: CodeOK, Msg: msg, Data: data})
}

// SuccessWithPage 分页列表
func SuccessWithPage(c *gin.Context, data interface{}, pagination Pagination) {
	write(c, Envelope{StatusCode: CodeOK, Data: data, Pagination: &pagination})
}

// SuccessWithFacets 检索结果，带分面统计
func SuccessWithFacets(c *gin.Context, data, facets interface{}, pagination Pagination) {
	write(c, Envelope{StatusCode: CodeOK, Data: data, Facets: facets, Pagination: &pagination})
}

// Error 错误响应，data 中带回 request_id 便于排查
func Error(c *gin.Context, code int, msg string) {
	var data interface{}
	if id := requestID(c); id != "" {
		data = gin.H{RequestIDKey: id}
	}
	write(c, Envelope{StatusCode: code, Msg: strings.TrimSpace(msg), Data: data})
}

// Unauthorized 401
func Unauthorized(c *gin.Context, msg string) {
	Error(c, CodeUnauthorized, msg)
}

// Forbidden 403
func Forbidden(c *gin.Context, msg string) {
	Error(c, CodeForbidden, msg)
}

func requestID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(RequestIDKey)
}
