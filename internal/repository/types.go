package repository

import "time"

// ContentListFilter 查询内容列表的过滤条件
type ContentListFilter struct {
	Page        int
	PageSize    int
	Status      string
	Type        string
	Tag         string
	Author      string
	AuthorEmail string
	JournalID   uint
	Year        int
	Search      string
	Sort        string
}

// FacetCount 分面统计项
type FacetCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// ContentFacets 内容检索分面
type ContentFacets struct {
	Types []FacetCount `json:"types"`
	Tags  []FacetCount `json:"tags"`
}

// AuthorListFilter 查询作者列表的过滤条件
type AuthorListFilter struct {
	Page     int
	PageSize int
	Keyword  string
}

// TagWithCount 标签及已发布内容数
type TagWithCount struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// JournalListFilter 查询期刊列表的过滤条件
type JournalListFilter struct {
	Page     int
	PageSize int
	Status   string
	Search   string
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Role        string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// AuthzAuditLogListFilter 权限审计日志查询条件
type AuthzAuditLogListFilter struct {
	Page           int
	PageSize       int
	OperatorUserID uint
	TargetUserID   uint
	Action         string
	Role           string
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
}
