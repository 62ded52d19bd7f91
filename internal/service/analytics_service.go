package service

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/stockdesk/internal/cache"
	"github.com/stockdesk/internal/config"
	"github.com/stockdesk/internal/logger"
	"github.com/stockdesk/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	analyticsDefaultCacheTTL = 60 * time.Second
	analyticsDefaultTopLimit = 10
	analyticsMaxTopLimit     = 50
)

// AnalyticsService 库存与销售分析服务
type AnalyticsService struct {
	repo           repository.AnalyticsRepository
	skuRepo        repository.ProductSKURepository
	settingService *SettingService
	cfg            config.AnalyticsConfig
	now            func() time.Time
}

// NewAnalyticsService 创建分析服务
func NewAnalyticsService(
	repo repository.AnalyticsRepository,
	skuRepo repository.ProductSKURepository,
	settingService *SettingService,
	cfg config.AnalyticsConfig,
) *AnalyticsService {
	return &AnalyticsService{
		repo:           repo,
		skuRepo:        skuRepo,
		settingService: settingService,
		cfg:            cfg,
		now:            time.Now,
	}
}

// AnalyticsMetric 带上期对比的指标
type AnalyticsMetric struct {
	Value         string `json:"value"`
	Previous      string `json:"previous"`
	ChangePercent string `json:"change_percent"`
}

// AnalyticsKPI 销售核心指标
type AnalyticsKPI struct {
	Revenue           AnalyticsMetric `json:"revenue"`
	UnitsSold         AnalyticsMetric `json:"units_sold"`
	Orders            AnalyticsMetric `json:"orders"`
	AverageOrderValue AnalyticsMetric `json:"average_order_value"`
	ReturnRate        AnalyticsMetric `json:"return_rate"`
	RefundTotal       AnalyticsMetric `json:"refund_total"`
	GrossProfit       AnalyticsMetric `json:"gross_profit"`
}

// AnalyticsInventoryKPI 库存指标
type AnalyticsInventoryKPI struct {
	InventoryValue string `json:"inventory_value"`
	ActiveSKUs     int64  `json:"active_skus"`
	LowStock       int64  `json:"low_stock"`
	OutOfStock     int64  `json:"out_of_stock"`
}

// AnalyticsAlertItem 告警项
type AnalyticsAlertItem struct {
	Type  string `json:"type"`
	Level string `json:"level"`
	Value string `json:"value"`
}

// AnalyticsOverviewResponse 总览响应
type AnalyticsOverviewResponse struct {
	Range     string                `json:"range"`
	From      string                `json:"from"`
	To        string                `json:"to"`
	Timezone  string                `json:"timezone"`
	KPI       AnalyticsKPI          `json:"kpi"`
	Inventory AnalyticsInventoryKPI `json:"inventory"`
	Alerts    []AnalyticsAlertItem  `json:"alerts"`
}

// AnalyticsTrendPoint 单日趋势点
type AnalyticsTrendPoint struct {
	Date        string `json:"date"`
	Sales       int64  `json:"sales"`
	Units       int64  `json:"units"`
	Revenue     string `json:"revenue"`
	ReturnUnits int64  `json:"return_units"`
	Refund      string `json:"refund"`
}

// AnalyticsTrendResponse 趋势响应
type AnalyticsTrendResponse struct {
	Range    string                `json:"range"`
	From     string                `json:"from"`
	To       string                `json:"to"`
	Timezone string                `json:"timezone"`
	Points   []AnalyticsTrendPoint `json:"points"`
}

// TopProductItem 热销商品
type TopProductItem struct {
	Rank         int    `json:"rank"`
	ProductID    uint   `json:"product_id"`
	ProductName  string `json:"product_name"`
	Units        int64  `json:"units"`
	Revenue      string `json:"revenue"`
	SharePercent string `json:"share_percent"`
}

// TopProductsResponse 热销商品响应
type TopProductsResponse struct {
	Range    string           `json:"range"`
	From     string           `json:"from"`
	To       string           `json:"to"`
	Timezone string           `json:"timezone"`
	Items    []TopProductItem `json:"items"`
}

// AgingResponse 库龄分析响应
type AgingResponse struct {
	AsOf    string        `json:"as_of"`
	Buckets []AgingBucket `json:"buckets"`
	Items   []AgingItem   `json:"items"`
}

// ABCResponse ABC 分析响应
type ABCResponse struct {
	Range        string    `json:"range"`
	From         string    `json:"from"`
	To           string    `json:"to"`
	Timezone     string    `json:"timezone"`
	TotalRevenue string    `json:"total_revenue"`
	Items        []ABCItem `json:"items"`
}

// LowStockItem 低库存 SKU 与建议补货量
type LowStockItem struct {
	SKUID             uint   `json:"sku_id"`
	ProductID         uint   `json:"product_id"`
	ProductName       string `json:"product_name"`
	SKUCode           string `json:"sku_code"`
	Stock             int64  `json:"stock"`
	LowStockThreshold int64  `json:"low_stock_threshold"`
	MinReorderQty     int64  `json:"min_reorder_qty"`
	SuggestedReorder  int64  `json:"suggested_reorder"`
}

// LowStockResponse 低库存响应
type LowStockResponse struct {
	AsOf  string         `json:"as_of"`
	Items []LowStockItem `json:"items"`
}

// Overview 总览：销售 KPI（含上期对比）、库存指标与告警
func (s *AnalyticsService) Overview(ctx context.Context, input AnalyticsQueryInput) (*AnalyticsOverviewResponse, error) {
	window, err := s.resolveWindow(input)
	if err != nil {
		return nil, err
	}
	alertSetting := s.loadAlertSetting()
	cacheKey := cache.AnalyticsKey("overview", window.cacheParts()...)

	var cached AnalyticsOverviewResponse
	if s.readCache(ctx, cacheKey, input.ForceRefresh, &cached) {
		return &cached, nil
	}

	current, err := s.loadPeriod(window)
	if err != nil {
		return nil, err
	}
	previous, err := s.loadPeriod(window.previous())
	if err != nil {
		return nil, err
	}
	stock, err := s.repo.GetStockStats()
	if err != nil {
		return nil, err
	}

	response := &AnalyticsOverviewResponse{
		Range:    window.rangeKey,
		From:     window.startAt.Format(time.RFC3339),
		To:       window.endAt.Add(-time.Second).Format(time.RFC3339),
		Timezone: window.timezone,
		KPI: AnalyticsKPI{
			Revenue:           moneyMetric(current.revenue, previous.revenue),
			UnitsSold:         countMetric(current.units, previous.units),
			Orders:            countMetric(current.orders, previous.orders),
			AverageOrderValue: moneyMetric(current.averageOrderValue(), previous.averageOrderValue()),
			ReturnRate:        percentMetric(current.returnRate(), previous.returnRate()),
			RefundTotal:       moneyMetric(current.refund, previous.refund),
			GrossProfit:       moneyMetric(current.grossProfit(), previous.grossProfit()),
		},
		Inventory: AnalyticsInventoryKPI{
			InventoryValue: formatMoneyDecimal(stock.InventoryValue),
			ActiveSKUs:     stock.ActiveSKUs,
			LowStock:       stock.LowStock,
			OutOfStock:     stock.OutOfStock,
		},
	}

	slowMoving := int64(0)
	if alertSetting.Enabled {
		inventory, err := s.repo.ListInventory(true)
		if err != nil {
			return nil, err
		}
		now := s.now()
		for _, row := range inventory {
			ref := row.CreatedAt
			if row.LastSoldAt != nil {
				ref = *row.LastSoldAt
			}
			if daysSince(ref, now) >= alertSetting.NoSalesDays {
				slowMoving++
			}
		}
	}
	response.Alerts = buildAnalyticsAlerts(stock, current.returnRate(), slowMoving, alertSetting)

	s.writeCache(ctx, cacheKey, response)
	return response, nil
}

// Trends 按天汇总销售与退货，无数据的日期补零
func (s *AnalyticsService) Trends(ctx context.Context, input AnalyticsQueryInput) (*AnalyticsTrendResponse, error) {
	window, err := s.resolveWindow(input)
	if err != nil {
		return nil, err
	}
	cacheKey := cache.AnalyticsKey("trends", window.cacheParts()...)
	var cached AnalyticsTrendResponse
	if s.readCache(ctx, cacheKey, input.ForceRefresh, &cached) {
		return &cached, nil
	}

	salePoints, err := s.repo.ListSalePoints(window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}
	returnPoints, err := s.repo.ListReturnPoints(window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}

	type dayTotals struct {
		sales       int64
		units       int64
		revenue     decimal.Decimal
		returnUnits int64
		refund      decimal.Decimal
	}
	days := make(map[string]*dayTotals)
	bucket := func(at time.Time) *dayTotals {
		key := at.In(window.location).Format("2006-01-02")
		if days[key] == nil {
			days[key] = &dayTotals{revenue: decimal.Zero, refund: decimal.Zero}
		}
		return days[key]
	}
	for _, point := range salePoints {
		totals := bucket(point.SoldAt)
		totals.sales++
		totals.units += point.Quantity
		totals.revenue = totals.revenue.Add(point.TotalAmount)
	}
	for _, point := range returnPoints {
		totals := bucket(point.ProcessedAt)
		totals.returnUnits += point.Quantity
		totals.refund = totals.refund.Add(point.RefundAmount)
	}

	points := make([]AnalyticsTrendPoint, 0)
	for cursor := window.startAt; cursor.Before(window.endAt); cursor = cursor.AddDate(0, 0, 1) {
		day := cursor.Format("2006-01-02")
		point := AnalyticsTrendPoint{Date: day, Revenue: formatMoneyDecimal(decimal.Zero), Refund: formatMoneyDecimal(decimal.Zero)}
		if totals := days[day]; totals != nil {
			point.Sales = totals.sales
			point.Units = totals.units
			point.Revenue = formatMoneyDecimal(totals.revenue)
			point.ReturnUnits = totals.returnUnits
			point.Refund = formatMoneyDecimal(totals.refund)
		}
		points = append(points, point)
	}

	response := &AnalyticsTrendResponse{
		Range:    window.rangeKey,
		From:     window.startAt.Format(time.RFC3339),
		To:       window.endAt.Add(-time.Second).Format(time.RFC3339),
		Timezone: window.timezone,
		Points:   points,
	}
	s.writeCache(ctx, cacheKey, response)
	return response, nil
}

// TopProducts 按销售额排名的热销商品
func (s *AnalyticsService) TopProducts(ctx context.Context, input AnalyticsQueryInput) (*TopProductsResponse, error) {
	window, err := s.resolveWindow(input)
	if err != nil {
		return nil, err
	}
	limit := input.Limit
	if limit <= 0 {
		limit = analyticsDefaultTopLimit
	}
	if limit > analyticsMaxTopLimit {
		limit = analyticsMaxTopLimit
	}
	parts := append(window.cacheParts(), strconv.Itoa(limit))
	cacheKey := cache.AnalyticsKey("top_products", parts...)
	var cached TopProductsResponse
	if s.readCache(ctx, cacheKey, input.ForceRefresh, &cached) {
		return &cached, nil
	}

	totals, err := s.repo.GetSalesTotals(window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListProductRevenue(window.startAt, window.endAt, limit)
	if err != nil {
		return nil, err
	}
	items := make([]TopProductItem, 0, len(rows))
	for i, row := range rows {
		items = append(items, TopProductItem{
			Rank:         i + 1,
			ProductID:    row.ProductID,
			ProductName:  row.ProductName,
			Units:        row.Units,
			Revenue:      formatMoneyDecimal(row.Revenue),
			SharePercent: formatPercentDecimal(percentOf(row.Revenue, totals.Revenue)),
		})
	}
	response := &TopProductsResponse{
		Range:    window.rangeKey,
		From:     window.startAt.Format(time.RFC3339),
		To:       window.endAt.Add(-time.Second).Format(time.RFC3339),
		Timezone: window.timezone,
		Items:    items,
	}
	s.writeCache(ctx, cacheKey, response)
	return response, nil
}

// AgingInventory 库龄分析（时点数据，与查询窗口无关）
func (s *AnalyticsService) AgingInventory(ctx context.Context, forceRefresh bool) (*AgingResponse, error) {
	now := s.now()
	cacheKey := cache.AnalyticsKey("aging", now.Format("2006-01-02"))
	var cached AgingResponse
	if s.readCache(ctx, cacheKey, forceRefresh, &cached) {
		return &cached, nil
	}
	rows, err := s.repo.ListInventory(true)
	if err != nil {
		return nil, err
	}
	buckets, items := bucketAging(rows, s.cfg.AgingBucketsDays, now)
	response := &AgingResponse{AsOf: now.Format(time.RFC3339), Buckets: buckets, Items: items}
	s.writeCache(ctx, cacheKey, response)
	return response, nil
}

// ABCAnalysis 窗口内按销售额的 ABC 分类，包含没有销售的在售商品
func (s *AnalyticsService) ABCAnalysis(ctx context.Context, input AnalyticsQueryInput) (*ABCResponse, error) {
	window, err := s.resolveWindow(input)
	if err != nil {
		return nil, err
	}
	cacheKey := cache.AnalyticsKey("abc", window.cacheParts()...)
	var cached ABCResponse
	if s.readCache(ctx, cacheKey, input.ForceRefresh, &cached) {
		return &cached, nil
	}

	revenueRows, err := s.repo.ListProductRevenue(window.startAt, window.endAt, 0)
	if err != nil {
		return nil, err
	}
	inventory, err := s.repo.ListInventory(false)
	if err != nil {
		return nil, err
	}
	seen := make(map[uint]struct{}, len(revenueRows))
	total := decimal.Zero
	for _, row := range revenueRows {
		seen[row.ProductID] = struct{}{}
		total = total.Add(row.Revenue)
	}
	for _, row := range inventory {
		if _, ok := seen[row.ProductID]; ok {
			continue
		}
		seen[row.ProductID] = struct{}{}
		revenueRows = append(revenueRows, repository.AnalyticsProductRevenueRow{
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			Revenue:     decimal.Zero,
		})
	}

	response := &ABCResponse{
		Range:        window.rangeKey,
		From:         window.startAt.Format(time.RFC3339),
		To:           window.endAt.Add(-time.Second).Format(time.RFC3339),
		Timezone:     window.timezone,
		TotalRevenue: formatMoneyDecimal(total),
		Items:        classifyABC(revenueRows, s.cfg.ABCClassAPercent, s.cfg.ABCClassBPercent),
	}
	s.writeCache(ctx, cacheKey, response)
	return response, nil
}

// LowStockAlerts 库存不高于阈值的启用 SKU 及建议补货量
func (s *AnalyticsService) LowStockAlerts(ctx context.Context, forceRefresh bool) (*LowStockResponse, error) {
	now := s.now()
	cacheKey := cache.AnalyticsKey("low_stock")
	var cached LowStockResponse
	if s.readCache(ctx, cacheKey, forceRefresh, &cached) {
		return &cached, nil
	}
	rows, err := s.repo.ListInventory(false)
	if err != nil {
		return nil, err
	}
	items := make([]LowStockItem, 0)
	for _, row := range rows {
		if row.Stock > row.LowStockThreshold {
			continue
		}
		items = append(items, LowStockItem{
			SKUID:             row.SKUID,
			ProductID:         row.ProductID,
			ProductName:       row.ProductName,
			SKUCode:           row.SKUCode,
			Stock:             row.Stock,
			LowStockThreshold: row.LowStockThreshold,
			MinReorderQty:     row.MinReorderQty,
			SuggestedReorder:  int64(SuggestedReorderQty(int(row.Stock), int(row.LowStockThreshold), int(row.MinReorderQty))),
		})
	}
	sortLowStock(items)
	response := &LowStockResponse{AsOf: now.Format(time.RFC3339), Items: items}
	s.writeCache(ctx, cacheKey, response)
	return response, nil
}

// CheckLowStock 复核指定 SKU（为空时全部）的低库存状态，并刷新最近一次巡检结果
func (s *AnalyticsService) CheckLowStock(ctx context.Context, skuIDs []uint) ([]LowStockItem, error) {
	skus, err := s.skuRepo.ListLowStock(skuIDs)
	if err != nil {
		return nil, err
	}
	items := make([]LowStockItem, 0, len(skus))
	for _, sku := range skus {
		item := LowStockItem{
			SKUID:             sku.ID,
			ProductID:         sku.ProductID,
			SKUCode:           sku.SKUCode,
			Stock:             int64(sku.Stock),
			LowStockThreshold: int64(sku.LowStockThreshold),
			MinReorderQty:     int64(sku.MinReorderQty),
			SuggestedReorder:  int64(SuggestedReorderQty(sku.Stock, sku.LowStockThreshold, sku.MinReorderQty)),
		}
		if sku.Product != nil {
			item.ProductName = sku.Product.Name
		}
		items = append(items, item)
	}
	sortLowStock(items)

	if len(skuIDs) == 0 {
		snapshot := LowStockResponse{AsOf: s.now().Format(time.RFC3339), Items: items}
		if err := cache.SetJSON(ctx, cache.LowStockAlertKey, snapshot, 0); err != nil {
			logger.Warnw("low_stock_snapshot_cache_failed", "error", err)
		}
	}
	if err := cache.Del(ctx, cache.AnalyticsKey("low_stock")); err != nil {
		logger.Warnw("analytics_cache_del_failed", "kind", "low_stock", "error", err)
	}
	return items, nil
}

// InvalidateCache 清空全部分析缓存
func (s *AnalyticsService) InvalidateCache(ctx context.Context) (int64, error) {
	return cache.DelByPrefix(ctx, cache.AnalyticsKeyPrefix)
}

// Warm 预热指定时间范围的窗口类报表
func (s *AnalyticsService) Warm(ctx context.Context, rangeKey, timezone string) error {
	input := AnalyticsQueryInput{Range: rangeKey, Timezone: timezone, ForceRefresh: true}
	if _, err := s.Overview(ctx, input); err != nil {
		return err
	}
	if _, err := s.Trends(ctx, input); err != nil {
		return err
	}
	if _, err := s.TopProducts(ctx, input); err != nil {
		return err
	}
	_, err := s.ABCAnalysis(ctx, input)
	return err
}

type periodTotals struct {
	orders      int64
	units       int64
	revenue     decimal.Decimal
	cost        decimal.Decimal
	returnUnits int64
	refund      decimal.Decimal
}

func (p periodTotals) averageOrderValue() decimal.Decimal {
	if p.orders == 0 {
		return decimal.Zero
	}
	return p.revenue.Div(decimal.NewFromInt(p.orders))
}

func (p periodTotals) returnRate() decimal.Decimal {
	return percentOf(decimal.NewFromInt(p.returnUnits), decimal.NewFromInt(p.units))
}

func (p periodTotals) grossProfit() decimal.Decimal {
	return p.revenue.Sub(p.refund).Sub(p.cost)
}

func (s *AnalyticsService) loadPeriod(window analyticsWindow) (periodTotals, error) {
	sales, err := s.repo.GetSalesTotals(window.startAt, window.endAt)
	if err != nil {
		return periodTotals{}, err
	}
	returns, err := s.repo.GetReturnTotals(window.startAt, window.endAt)
	if err != nil {
		return periodTotals{}, err
	}
	return periodTotals{
		orders:      sales.Orders,
		units:       sales.Units,
		revenue:     sales.Revenue,
		cost:        sales.Cost,
		returnUnits: returns.Units,
		refund:      returns.Refund,
	}, nil
}

func (s *AnalyticsService) resolveWindow(input AnalyticsQueryInput) (analyticsWindow, error) {
	return resolveAnalyticsWindow(input, s.cfg.DefaultTimezone, s.cfg.MaxCustomRangeDay, s.now())
}

func (s *AnalyticsService) loadAlertSetting() AnalyticsAlertSetting {
	fallback := AnalyticsAlertDefaultSetting()
	if s.settingService == nil {
		return fallback
	}
	setting, err := s.settingService.GetAnalyticsAlertSetting()
	if err != nil {
		logger.Warnw("analytics_alert_setting_load_failed", "error", err)
		return fallback
	}
	return setting
}

func (s *AnalyticsService) cacheTTL() time.Duration {
	if s.cfg.CacheTTLSeconds > 0 {
		return time.Duration(s.cfg.CacheTTLSeconds) * time.Second
	}
	return analyticsDefaultCacheTTL
}

func (s *AnalyticsService) readCache(ctx context.Context, key string, force bool, dest interface{}) bool {
	if force {
		return false
	}
	hit, err := cache.GetJSON(ctx, key, dest)
	if err != nil {
		logger.Warnw("analytics_cache_get_failed", "key", key, "error", err)
		return false
	}
	return hit
}

func (s *AnalyticsService) writeCache(ctx context.Context, key string, value interface{}) {
	if err := cache.SetJSON(ctx, key, value, s.cacheTTL()); err != nil {
		logger.Warnw("analytics_cache_set_failed", "key", key, "error", err)
	}
}

func moneyMetric(current, previous decimal.Decimal) AnalyticsMetric {
	return AnalyticsMetric{
		Value:         formatMoneyDecimal(current),
		Previous:      formatMoneyDecimal(previous),
		ChangePercent: formatPercentDecimal(changePercent(current, previous)),
	}
}

func countMetric(current, previous int64) AnalyticsMetric {
	cur := decimal.NewFromInt(current)
	prev := decimal.NewFromInt(previous)
	return AnalyticsMetric{
		Value:         cur.String(),
		Previous:      prev.String(),
		ChangePercent: formatPercentDecimal(changePercent(cur, prev)),
	}
}

func percentMetric(current, previous decimal.Decimal) AnalyticsMetric {
	return AnalyticsMetric{
		Value:         formatPercentDecimal(current),
		Previous:      formatPercentDecimal(previous),
		ChangePercent: formatPercentDecimal(changePercent(current, previous)),
	}
}

func sortLowStock(items []LowStockItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Stock != items[j].Stock {
			return items[i].Stock < items[j].Stock
		}
		return items[i].SKUID < items[j].SKUID
	})
}

func buildAnalyticsAlerts(stock repository.AnalyticsStockStatsRow, returnRate decimal.Decimal, slowMoving int64, setting AnalyticsAlertSetting) []AnalyticsAlertItem {
	alerts := make([]AnalyticsAlertItem, 0, 4)
	if !setting.Enabled {
		return alerts
	}
	if stock.OutOfStock > 0 {
		alerts = append(alerts, AnalyticsAlertItem{Type: "out_of_stock_skus", Level: "error", Value: decimal.NewFromInt(stock.OutOfStock).String()})
	}
	ratio := percentOf(decimal.NewFromInt(stock.LowStock+stock.OutOfStock), decimal.NewFromInt(stock.ActiveSKUs))
	if stock.ActiveSKUs > 0 && ratio.GreaterThanOrEqual(decimal.NewFromFloat(setting.LowStockRatioPercent)) {
		alerts = append(alerts, AnalyticsAlertItem{Type: "low_stock_ratio", Level: "warning", Value: formatPercentDecimal(ratio)})
	}
	if returnRate.IsPositive() && returnRate.GreaterThanOrEqual(decimal.NewFromFloat(setting.ReturnRateWarnPercent)) {
		alerts = append(alerts, AnalyticsAlertItem{Type: "return_rate", Level: "warning", Value: formatPercentDecimal(returnRate)})
	}
	if slowMoving > 0 {
		alerts = append(alerts, AnalyticsAlertItem{Type: "slow_moving_skus", Level: "info", Value: decimal.NewFromInt(slowMoving).String()})
	}
	return alerts
}
