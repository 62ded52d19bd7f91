package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/stockdesk/internal/constants"
	"github.com/stockdesk/internal/repository"

	"github.com/shopspring/decimal"
)

var defaultAgingEdges = []int{30, 60, 90}

// SuggestedReorderQty 建议补货量：max(最小补货量, 阈值×2 − 当前库存)
func SuggestedReorderQty(stock, threshold, minReorderQty int) int {
	suggested := threshold*2 - stock
	if suggested < minReorderQty {
		return minReorderQty
	}
	return suggested
}

// normalizeAgingEdges 过滤非正数并去重排序，空时使用 30/60/90
func normalizeAgingEdges(edges []int) []int {
	seen := make(map[int]struct{}, len(edges))
	out := make([]int, 0, len(edges))
	for _, edge := range edges {
		if edge <= 0 {
			continue
		}
		if _, ok := seen[edge]; ok {
			continue
		}
		seen[edge] = struct{}{}
		out = append(out, edge)
	}
	if len(out) == 0 {
		return append([]int(nil), defaultAgingEdges...)
	}
	sort.Ints(out)
	return out
}

// agingBucketLabels 根据边界生成桶标签，例如 [30 60 90] -> 0-30, 31-60, 61-90, 90+
func agingBucketLabels(edges []int) []string {
	labels := make([]string, 0, len(edges)+1)
	lower := 0
	for _, edge := range edges {
		labels = append(labels, fmt.Sprintf("%d-%d", lower, edge))
		lower = edge + 1
	}
	return append(labels, fmt.Sprintf("%d+", edges[len(edges)-1]))
}

// agingBucketIndex 返回天数所在的桶下标
func agingBucketIndex(days int, edges []int) int {
	for i, edge := range edges {
		if days <= edge {
			return i
		}
	}
	return len(edges)
}

// daysSince 计算距离参考时间的整天数，未来时间记为 0
func daysSince(ref, now time.Time) int {
	if !now.After(ref) {
		return 0
	}
	return int(now.Sub(ref) / (24 * time.Hour))
}

// AgingBucket 库龄分桶
type AgingBucket struct {
	Label      string `json:"label"`
	SKUCount   int    `json:"sku_count"`
	Units      int64  `json:"units"`
	StockValue string `json:"stock_value"`
}

// AgingItem 单个 SKU 的库龄
type AgingItem struct {
	SKUID         uint   `json:"sku_id"`
	ProductID     uint   `json:"product_id"`
	ProductName   string `json:"product_name"`
	SKUCode       string `json:"sku_code"`
	Stock         int64  `json:"stock"`
	DaysSinceSale int    `json:"days_since_sale"`
	NeverSold     bool   `json:"never_sold"`
	Bucket        string `json:"bucket"`
	StockValue    string `json:"stock_value"`
}

// bucketAging 将有库存的 SKU 按距上次售出（未售出则按创建时间）的天数分桶
func bucketAging(rows []repository.AnalyticsInventoryRow, edges []int, now time.Time) ([]AgingBucket, []AgingItem) {
	edges = normalizeAgingEdges(edges)
	labels := agingBucketLabels(edges)
	values := make([]decimal.Decimal, len(labels))
	buckets := make([]AgingBucket, len(labels))
	for i, label := range labels {
		buckets[i] = AgingBucket{Label: label}
		values[i] = decimal.Zero
	}

	items := make([]AgingItem, 0, len(rows))
	for _, row := range rows {
		if row.Stock <= 0 {
			continue
		}
		ref := row.CreatedAt
		neverSold := row.LastSoldAt == nil
		if !neverSold {
			ref = *row.LastSoldAt
		}
		days := daysSince(ref, now)
		idx := agingBucketIndex(days, edges)
		value := row.UnitCost.Mul(decimal.NewFromInt(row.Stock))

		buckets[idx].SKUCount++
		buckets[idx].Units += row.Stock
		values[idx] = values[idx].Add(value)
		items = append(items, AgingItem{
			SKUID:         row.SKUID,
			ProductID:     row.ProductID,
			ProductName:   row.ProductName,
			SKUCode:       row.SKUCode,
			Stock:         row.Stock,
			DaysSinceSale: days,
			NeverSold:     neverSold,
			Bucket:        labels[idx],
			StockValue:    formatMoneyDecimal(value),
		})
	}
	for i := range buckets {
		buckets[i].StockValue = formatMoneyDecimal(values[i])
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].DaysSinceSale > items[j].DaysSinceSale
	})
	return buckets, items
}

// ABCItem ABC 分类结果
type ABCItem struct {
	Rank              int    `json:"rank"`
	ProductID         uint   `json:"product_id"`
	ProductName       string `json:"product_name"`
	Units             int64  `json:"units"`
	Revenue           string `json:"revenue"`
	SharePercent      string `json:"share_percent"`
	CumulativePercent string `json:"cumulative_percent"`
	Class             string `json:"class"`
}

// classifyABC 按销售额降序排名并计算累计占比。
// 进入该商品前的累计占比低于 A 线为 A 类，低于 B 线为 B 类，其余为 C 类；总销售额为 0 时全部为 C 类。
func classifyABC(rows []repository.AnalyticsProductRevenueRow, classAPercent, classBPercent float64) []ABCItem {
	if classAPercent <= 0 || classAPercent > 100 {
		classAPercent = 80
	}
	if classBPercent <= classAPercent || classBPercent > 100 {
		classBPercent = 95
	}
	cutA := decimal.NewFromFloat(classAPercent)
	cutB := decimal.NewFromFloat(classBPercent)

	sorted := append([]repository.AnalyticsProductRevenueRow(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Revenue.Equal(sorted[j].Revenue) {
			return sorted[i].Revenue.GreaterThan(sorted[j].Revenue)
		}
		return sorted[i].ProductID < sorted[j].ProductID
	})

	total := decimal.Zero
	for _, row := range sorted {
		total = total.Add(row.Revenue)
	}

	items := make([]ABCItem, 0, len(sorted))
	cumulative := decimal.Zero
	for i, row := range sorted {
		class := constants.ABCClassC
		share := decimal.Zero
		if total.IsPositive() && row.Revenue.IsPositive() {
			share = percentOf(row.Revenue, total)
			switch {
			case cumulative.LessThan(cutA):
				class = constants.ABCClassA
			case cumulative.LessThan(cutB):
				class = constants.ABCClassB
			}
			cumulative = cumulative.Add(share)
		}
		items = append(items, ABCItem{
			Rank:              i + 1,
			ProductID:         row.ProductID,
			ProductName:       row.ProductName,
			Units:             row.Units,
			Revenue:           formatMoneyDecimal(row.Revenue),
			SharePercent:      formatPercentDecimal(share),
			CumulativePercent: formatPercentDecimal(cumulative),
			Class:             class,
		})
	}
	return items
}
