package cache

import (
	"fmt"
	"strings"
)

const (
	// CategoryAllKey 分类参考数据缓存键
	CategoryAllKey = "category:all"
	// AnalyticsKeyPrefix 分析报表缓存键前缀
	AnalyticsKeyPrefix = "analytics:"
	// LowStockAlertKey 最近一次低库存巡检结果
	LowStockAlertKey = "inventory:low_stock_alerts"
)

// AnalyticsKey 构建分析报表缓存键，例如 analytics:overview:7d:2026-01-01:2026-01-08:Asia/Shanghai
func AnalyticsKey(kind string, parts ...string) string {
	cleaned := make([]string, 0, len(parts)+1)
	cleaned = append(cleaned, strings.TrimSpace(kind))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			part = "-"
		}
		cleaned = append(cleaned, part)
	}
	return fmt.Sprintf("%s%s", AnalyticsKeyPrefix, strings.Join(cleaned, ":"))
}
