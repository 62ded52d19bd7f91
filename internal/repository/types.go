package repository

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page         int
	PageSize     int
	CategoryID   uint
	Search       string
	StockStatus  string // low / out / in
	OnlyActive   bool
	WithCategory bool
}

// SaleListFilter 查询销售记录的过滤条件
type SaleListFilter struct {
	Page      int
	PageSize  int
	Keyword   string // 订单号 / 商品名 / SKU / 客户
	Channel   string
	Status    string
	ProductID uint
	SKUID     uint
	SoldFrom  *time.Time
	SoldTo    *time.Time
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	SortBy    string // sold_at / total_amount / quantity
	SortDesc  bool
	SkipCount bool
}

// ReturnListFilter 查询退货申请的过滤条件
type ReturnListFilter struct {
	Page        int
	PageSize    int
	Status      string
	SaleID      uint
	Keyword     string // 退货单号 / 订单号 / 商品名
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	SkipCount   bool
}

// StockMovementFilter 查询库存流水的过滤条件
type StockMovementFilter struct {
	Page      int
	PageSize  int
	SKUID     uint
	ProductID uint
	Type      string
}

// SaleSummaryRow 销售汇总
type SaleSummaryRow struct {
	Count   int64
	Units   int64
	Revenue decimal.Decimal
}

// AccessAuditFilter 权限审计日志筛选条件，零值字段不参与过滤
type AccessAuditFilter struct {
	Page          int
	PageSize      int
	Event         string
	OperatorID    uint
	TargetAdminID uint
	Role          string
	From          *time.Time
	To            *time.Time
}
