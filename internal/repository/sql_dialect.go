package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

const (
	dialectSQLite   = "sqlite"
	dialectPostgres = "postgres"
	likeEscapeChar  = `\`
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// dialectOf 返回连接使用的方言，未知时按 sqlite 处理
func dialectOf(db *gorm.DB) string {
	if db == nil || db.Dialector == nil {
		return dialectSQLite
	}
	switch strings.ToLower(strings.TrimSpace(db.Dialector.Name())) {
	case "postgres", "postgresql":
		return dialectPostgres
	default:
		return dialectSQLite
	}
}

// containsPattern 将搜索词转换为包含匹配模式，通配符按字面量处理
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(term))) + "%"
}

// containsCondition 构建多列包含匹配条件（OR 连接）及其参数；无有效列时返回空条件
func containsCondition(db *gorm.DB, term string, columns ...string) (string, []interface{}) {
	return containsConditionFor(dialectOf(db), term, columns)
}

func containsConditionFor(dialect, term string, columns []string) (string, []interface{}) {
	pattern := containsPattern(term)
	parts := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for _, column := range columns {
		column = strings.TrimSpace(column)
		if column == "" {
			continue
		}
		parts = append(parts, containsExpr(dialect, column))
		args = append(args, pattern)
	}
	return strings.Join(parts, " OR "), args
}

func containsExpr(dialect, column string) string {
	if dialect == dialectPostgres {
		return fmt.Sprintf("COALESCE(%s, '') ILIKE ? ESCAPE '%s'", column, likeEscapeChar)
	}
	// sqlite 的 LIKE 只对 ASCII 忽略大小写
	return fmt.Sprintf("LOWER(COALESCE(%s, '')) LIKE ? ESCAPE '%s'", column, likeEscapeChar)
}

// equalFoldExpr 大小写不敏感的等值条件
func equalFoldExpr(column string) string {
	return fmt.Sprintf("LOWER(%s) = ?", strings.TrimSpace(column))
}
