package service

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/stockdesk/internal/models"
	"github.com/stockdesk/internal/variant"
)

const (
	skuCodeMaxLen   = 64
	skuPrefixMaxLen = 16
)

// SanitizeSKUSegment 规范化 SKU 编码片段：转大写，非字母数字字符折叠为单个 "-"
func SanitizeSKUSegment(raw string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(unicode.ToUpper(r))
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// ResolveSKUPrefix 选择 SKU 前缀：显式前缀优先，否则取 slug
func ResolveSKUPrefix(prefix, slug string) string {
	resolved := SanitizeSKUSegment(prefix)
	if resolved == "" {
		resolved = SanitizeSKUSegment(slug)
	}
	if resolved == "" {
		resolved = "SKU"
	}
	if len(resolved) > skuPrefixMaxLen {
		resolved = strings.TrimRight(resolved[:skuPrefixMaxLen], "-")
	}
	return resolved
}

// BuildSKUCode 按属性顺序拼接 <PREFIX>-<VALUE1>-<VALUE2>
func BuildSKUCode(prefix string, order []string, options map[string]string) string {
	parts := []string{prefix}
	for _, name := range order {
		value, ok := options[name]
		if !ok {
			continue
		}
		if segment := SanitizeSKUSegment(value); segment != "" {
			parts = append(parts, segment)
		}
	}
	code := strings.Join(parts, "-")
	if len(code) > skuCodeMaxLen {
		code = strings.TrimRight(code[:skuCodeMaxLen], "-")
	}
	return code
}

// attributeOrder 返回规范化后的属性顺序；没有属性定义时按变体键排序
func attributeOrder(attrs []variant.Attribute, variations []variant.Variation) []string {
	if len(attrs) > 0 {
		order := make([]string, 0, len(attrs))
		for _, attr := range attrs {
			order = append(order, strings.ToLower(attr.Name))
		}
		return order
	}
	seen := map[string]struct{}{}
	order := make([]string, 0)
	for _, v := range variations {
		for name := range v.Options {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			order = append(order, name)
		}
	}
	sort.Strings(order)
	return order
}

// buildSKUCodes 为变体生成同商品内唯一的编码，冲突时追加序号
func buildSKUCodes(prefix string, order []string, variations []variant.Variation) []string {
	codes := make([]string, 0, len(variations))
	used := make(map[string]int, len(variations))
	for _, v := range variations {
		base := BuildSKUCode(prefix, order, v.Options)
		if len(v.Options) == 0 && len(variations) == 1 {
			base = models.DefaultSKUCode
		}
		code := base
		if n, exists := used[base]; exists {
			for {
				n++
				code = fmt.Sprintf("%s-%d", base, n)
				if _, taken := used[code]; !taken {
					break
				}
			}
			used[base] = n
		}
		used[code] = 1
		codes = append(codes, code)
	}
	return codes
}
