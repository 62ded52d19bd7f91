package repository

import (
	"fmt"
	"strings"

	"github.com/stockdesk/internal/i18n"

	"gorm.io/gorm"
)

const (
	likePlaceholder = "{like}"
	// i18nPrefix 标记按语言存储的 JSON 列，搜索时逐个语言展开
	i18nPrefix = "i18n:"
)

var searchLocales = []string{i18n.LocaleZH, i18n.LocaleTW, i18n.LocaleEN}

func isPostgres(db *gorm.DB) bool {
	if db == nil || db.Dialector == nil {
		return false
	}
	name := strings.ToLower(db.Dialector.Name())
	return name == "postgres" || name == "postgresql"
}

// jsonText 取 JSON 列某个键的文本值
func jsonText(postgres bool, column, key string) string {
	if postgres {
		return fmt.Sprintf("(%s::jsonb ->> '%s')", column, key)
	}
	return fmt.Sprintf(`json_extract(%s, '$."%s"')`, column, key)
}

// keywordSearch 多列关键词模糊搜索。纯列名展开为 "col LIKE ?"，
// 子查询等复杂子句用 {like} 标记运算符位置，每个 ? 都绑定同一个 %keyword%
func keywordSearch(keyword string, clauses ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			return db
		}
		condition, args := buildKeywordCondition(isPostgres(db), "%"+keyword+"%", clauses)
		if condition == "" {
			return db
		}
		return db.Where(condition, args...)
	}
}

// buildKeywordCondition postgres 用 ILIKE；sqlite 的 LIKE 对 ASCII 本就不区分大小写
func buildKeywordCondition(postgres bool, like string, clauses []string) (string, []interface{}) {
	operator := "LIKE"
	if postgres {
		operator = "ILIKE"
	}
	expanded := make([]string, 0, len(clauses))
	for _, clause := range clauses {
		clause = strings.TrimSpace(clause)
		column, ok := strings.CutPrefix(clause, i18nPrefix)
		if !ok {
			expanded = append(expanded, clause)
			continue
		}
		for _, locale := range searchLocales {
			expanded = append(expanded, jsonText(postgres, column, locale))
		}
	}

	parts := make([]string, 0, len(expanded))
	var args []interface{}
	for _, clause := range expanded {
		if clause == "" {
			continue
		}
		if !strings.Contains(clause, likePlaceholder) {
			clause += " " + likePlaceholder + " ?"
		}
		clause = strings.ReplaceAll(clause, likePlaceholder, operator)
		for range strings.Count(clause, "?") {
			args = append(args, like)
		}
		parts = append(parts, clause)
	}
	if len(parts) == 0 {
		return "", nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}
