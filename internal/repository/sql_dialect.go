package repository

import (
	"strings"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsAny 关键字模糊匹配任一列
// postgres 用 ILIKE；sqlite 的 LIKE 对 ASCII 本身不区分大小写。关键字为空时不加条件。
func containsAny(keyword string, columns ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		clause, args := likeClause(dialectOf(db), keyword, columns)
		if clause == "" {
			return db
		}
		return db.Where(clause, args...)
	}
}

func likeClause(dialect, keyword string, columns []string) (string, []interface{}) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return "", nil
	}
	op := "LIKE"
	if dialect == "postgres" || dialect == "postgresql" {
		op = "ILIKE"
	}
	pattern := "%" + likeEscaper.Replace(keyword) + "%"

	var (
		parts []string
		args  []interface{}
	)
	for _, column := range columns {
		if column = strings.TrimSpace(column); column != "" {
			parts = append(parts, column+" "+op+` ? ESCAPE '\'`)
			args = append(args, pattern)
		}
	}
	if len(parts) == 0 {
		return "", nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

func dialectOf(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return "sqlite"
	}
	return strings.ToLower(db.Dialector.Name())
}
