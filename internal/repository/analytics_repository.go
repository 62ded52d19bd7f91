package repository

import (
	"time"

	"github.com/stockdesk/internal/constants"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AnalyticsRepository 分析报表聚合查询接口
// 说明：只负责取数，分桶、排名与 ABC 分类在 service 层完成。
type AnalyticsRepository interface {
	GetSalesTotals(startAt, endAt time.Time) (AnalyticsSalesTotalsRow, error)
	GetReturnTotals(startAt, endAt time.Time) (AnalyticsReturnTotalsRow, error)
	ListSalePoints(startAt, endAt time.Time) ([]AnalyticsSalePointRow, error)
	ListReturnPoints(startAt, endAt time.Time) ([]AnalyticsReturnPointRow, error)
	ListProductRevenue(startAt, endAt time.Time, limit int) ([]AnalyticsProductRevenueRow, error)
	ListInventory(onlyInStock bool) ([]AnalyticsInventoryRow, error)
	GetStockStats() (AnalyticsStockStatsRow, error)
}

// AnalyticsSalesTotalsRow 销售汇总
type AnalyticsSalesTotalsRow struct {
	Orders  int64
	Units   int64
	Revenue decimal.Decimal
	Cost    decimal.Decimal
}

// AnalyticsReturnTotalsRow 已批准退货汇总
type AnalyticsReturnTotalsRow struct {
	Returns int64
	Units   int64
	Refund  decimal.Decimal
}

// AnalyticsSalePointRow 单笔销售明细（用于按时区分桶）
type AnalyticsSalePointRow struct {
	SoldAt      time.Time
	Quantity    int64
	TotalAmount decimal.Decimal
}

// AnalyticsReturnPointRow 单笔退货明细
type AnalyticsReturnPointRow struct {
	ProcessedAt  time.Time
	Quantity     int64
	RefundAmount decimal.Decimal
}

// AnalyticsProductRevenueRow 商品销售额
type AnalyticsProductRevenueRow struct {
	ProductID   uint
	ProductName string
	Units       int64
	Revenue     decimal.Decimal
}

// AnalyticsInventoryRow SKU 库存快照
type AnalyticsInventoryRow struct {
	SKUID             uint `gorm:"column:sku_id"`
	ProductID         uint
	ProductName       string
	SKUCode           string
	Stock             int64
	LowStockThreshold int64
	MinReorderQty     int64
	UnitCost          decimal.Decimal
	LastSoldAt        *time.Time
	CreatedAt         time.Time
}

// AnalyticsStockStatsRow 库存统计
type AnalyticsStockStatsRow struct {
	ActiveSKUs     int64 `gorm:"column:active_skus"`
	LowStock       int64
	OutOfStock     int64
	InventoryValue decimal.Decimal
}

// GormAnalyticsRepository 基于 squirrel 构建 SQL、由 gorm 执行的实现
type GormAnalyticsRepository struct {
	db      *gorm.DB
	builder squirrel.StatementBuilderType
}

// NewAnalyticsRepository 创建分析仓库
// 占位符统一使用 ?，由 gorm 方言在执行时转换（postgres 为 $n）。
func NewAnalyticsRepository(db *gorm.DB) *GormAnalyticsRepository {
	return &GormAnalyticsRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

func (r *GormAnalyticsRepository) raw(query squirrel.Sqlizer, dest interface{}) error {
	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}
	return r.db.Raw(sql, args...).Scan(dest).Error
}

func saleWindow(startAt, endAt time.Time) squirrel.And {
	return squirrel.And{
		squirrel.GtOrEq{"sold_at": startAt},
		squirrel.Lt{"sold_at": endAt},
	}
}

func approvedReturnWindow(startAt, endAt time.Time) squirrel.And {
	return squirrel.And{
		squirrel.Eq{"status": constants.ReturnStatusApproved},
		squirrel.GtOrEq{"processed_at": startAt},
		squirrel.Lt{"processed_at": endAt},
	}
}

// GetSalesTotals 统计窗口内订单数、件数、销售额与成本
func (r *GormAnalyticsRepository) GetSalesTotals(startAt, endAt time.Time) (AnalyticsSalesTotalsRow, error) {
	var row AnalyticsSalesTotalsRow
	query := r.builder.
		Select(
			"COUNT(DISTINCT order_no) AS orders",
			"COALESCE(SUM(quantity), 0) AS units",
			"COALESCE(SUM(total_amount), 0) AS revenue",
			"COALESCE(SUM(unit_cost * quantity), 0) AS cost",
		).
		From("sales").
		Where(saleWindow(startAt, endAt))
	if err := r.raw(query, &row); err != nil {
		return row, err
	}
	return row, nil
}

// GetReturnTotals 统计窗口内已批准退货
func (r *GormAnalyticsRepository) GetReturnTotals(startAt, endAt time.Time) (AnalyticsReturnTotalsRow, error) {
	var row AnalyticsReturnTotalsRow
	query := r.builder.
		Select(
			"COUNT(*) AS returns",
			"COALESCE(SUM(quantity), 0) AS units",
			"COALESCE(SUM(refund_amount), 0) AS refund",
		).
		From("return_requests").
		Where(approvedReturnWindow(startAt, endAt))
	if err := r.raw(query, &row); err != nil {
		return row, err
	}
	return row, nil
}

// ListSalePoints 获取窗口内销售明细
func (r *GormAnalyticsRepository) ListSalePoints(startAt, endAt time.Time) ([]AnalyticsSalePointRow, error) {
	rows := make([]AnalyticsSalePointRow, 0)
	query := r.builder.
		Select("sold_at", "quantity", "total_amount").
		From("sales").
		Where(saleWindow(startAt, endAt)).
		OrderBy("sold_at ASC")
	if err := r.raw(query, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListReturnPoints 获取窗口内已批准退货明细
func (r *GormAnalyticsRepository) ListReturnPoints(startAt, endAt time.Time) ([]AnalyticsReturnPointRow, error) {
	rows := make([]AnalyticsReturnPointRow, 0)
	query := r.builder.
		Select("processed_at", "quantity", "refund_amount").
		From("return_requests").
		Where(approvedReturnWindow(startAt, endAt)).
		OrderBy("processed_at ASC")
	if err := r.raw(query, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListProductRevenue 按商品汇总销售额（降序），limit<=0 表示不限
func (r *GormAnalyticsRepository) ListProductRevenue(startAt, endAt time.Time, limit int) ([]AnalyticsProductRevenueRow, error) {
	rows := make([]AnalyticsProductRevenueRow, 0)
	query := r.builder.
		Select(
			"product_id",
			"MAX(product_name) AS product_name",
			"COALESCE(SUM(quantity), 0) AS units",
			"COALESCE(SUM(total_amount), 0) AS revenue",
		).
		From("sales").
		Where(saleWindow(startAt, endAt)).
		GroupBy("product_id").
		OrderBy("revenue DESC", "product_id ASC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	if err := r.raw(query, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GormAnalyticsRepository) inventoryBase() squirrel.SelectBuilder {
	return r.builder.
		Select().
		From("product_skus ps").
		Join("products p ON p.id = ps.product_id").
		Where(squirrel.Eq{"ps.deleted_at": nil, "p.deleted_at": nil, "ps.is_active": true})
}

// ListInventory 获取 SKU 库存快照，单位成本优先取 SKU 成本，未设置时回退商品成本
func (r *GormAnalyticsRepository) ListInventory(onlyInStock bool) ([]AnalyticsInventoryRow, error) {
	rows := make([]AnalyticsInventoryRow, 0)
	query := r.inventoryBase().
		Columns(
			"ps.id AS sku_id",
			"ps.product_id AS product_id",
			"p.name AS product_name",
			"ps.sku_code AS sku_code",
			"ps.stock AS stock",
			"ps.low_stock_threshold AS low_stock_threshold",
			"ps.min_reorder_qty AS min_reorder_qty",
			"CASE WHEN ps.cost_amount > 0 THEN ps.cost_amount ELSE p.cost_amount END AS unit_cost",
			"ps.last_sold_at AS last_sold_at",
			"ps.created_at AS created_at",
		).
		OrderBy("ps.id ASC")
	if onlyInStock {
		query = query.Where(squirrel.Gt{"ps.stock": 0})
	}
	if err := r.raw(query, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetStockStats 统计启用 SKU 数、低库存数、售罄数与库存价值
func (r *GormAnalyticsRepository) GetStockStats() (AnalyticsStockStatsRow, error) {
	var row AnalyticsStockStatsRow
	query := r.inventoryBase().
		Columns(
			"COUNT(*) AS active_skus",
			"COALESCE(SUM(CASE WHEN ps.stock > 0 AND ps.stock <= ps.low_stock_threshold THEN 1 ELSE 0 END), 0) AS low_stock",
			"COALESCE(SUM(CASE WHEN ps.stock <= 0 THEN 1 ELSE 0 END), 0) AS out_of_stock",
			"COALESCE(SUM(CASE WHEN ps.stock > 0 THEN ps.stock * (CASE WHEN ps.cost_amount > 0 THEN ps.cost_amount ELSE p.cost_amount END) ELSE 0 END), 0) AS inventory_value",
		)
	if err := r.raw(query, &row); err != nil {
		return row, err
	}
	return row, nil
}
