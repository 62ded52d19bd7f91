package repository

import (
	"strings"

	"github.com/stockdesk/internal/constants"
	"github.com/stockdesk/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var saleSortColumns = map[string]string{
	"sold_at":      "sold_at",
	"total_amount": "total_amount",
	"quantity":     "quantity",
}

// SaleRepository 销售记录数据访问接口
type SaleRepository interface {
	Create(sale *models.Sale) error
	GetByID(id uint) (*models.Sale, error)
	List(filter SaleListFilter) ([]models.Sale, int64, error)
	Summary(filter SaleListFilter) (SaleSummaryRow, error)
	ApplyReturn(saleID uint, quantity int, refund decimal.Decimal) (int64, error)
	WithTx(tx *gorm.DB) SaleRepository
}

// GormSaleRepository GORM 实现
type GormSaleRepository struct {
	db *gorm.DB
}

// NewSaleRepository 创建销售记录仓库
func NewSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSaleRepository) WithTx(tx *gorm.DB) SaleRepository {
	if tx == nil {
		return r
	}
	return &GormSaleRepository{db: tx}
}

// Create 创建销售记录
func (r *GormSaleRepository) Create(sale *models.Sale) error {
	return r.db.Create(sale).Error
}

// GetByID 根据 ID 获取销售记录
func (r *GormSaleRepository) GetByID(id uint) (*models.Sale, error) {
	return findOne[models.Sale](r.db, id)
}

func (r *GormSaleRepository) applyFilter(query *gorm.DB, filter SaleListFilter) *gorm.DB {
	query = query.Scopes(keywordSearch(filter.Keyword, "order_no", "product_name", "sku_code", "customer_name"))
	if channel := strings.TrimSpace(filter.Channel); channel != "" {
		query = query.Where("channel = ?", channel)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if filter.ProductID > 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.SKUID > 0 {
		query = query.Where("sku_id = ?", filter.SKUID)
	}
	if filter.SoldFrom != nil {
		query = query.Where("sold_at >= ?", *filter.SoldFrom)
	}
	if filter.SoldTo != nil {
		query = query.Where("sold_at < ?", *filter.SoldTo)
	}
	if filter.MinAmount != nil {
		query = query.Where("total_amount >= ?", filter.MinAmount.String())
	}
	if filter.MaxAmount != nil {
		query = query.Where("total_amount <= ?", filter.MaxAmount.String())
	}
	return query
}

// List 销售记录列表
func (r *GormSaleRepository) List(filter SaleListFilter) ([]models.Sale, int64, error) {
	query := r.applyFilter(r.db.Model(&models.Sale{}), filter)

	var total int64
	if !filter.SkipCount {
		if err := query.Count(&total).Error; err != nil {
			return nil, 0, err
		}
	}

	column, ok := saleSortColumns[strings.TrimSpace(filter.SortBy)]
	if !ok {
		column = "sold_at"
		filter.SortDesc = true
	}
	direction := " ASC"
	if filter.SortDesc {
		direction = " DESC"
	}

	var sales []models.Sale
	if err := query.Scopes(paginate(filter.Page, filter.PageSize)).
		Order(column + direction).
		Order("id" + direction).
		Find(&sales).Error; err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}

// Summary 汇总筛选结果的笔数、件数与销售额
func (r *GormSaleRepository) Summary(filter SaleListFilter) (SaleSummaryRow, error) {
	var row struct {
		Count   int64
		Units   int64
		Revenue decimal.Decimal
	}
	query := r.applyFilter(r.db.Model(&models.Sale{}), filter)
	if err := query.Select("COUNT(*) AS count, COALESCE(SUM(quantity), 0) AS units, COALESCE(SUM(total_amount), 0) AS revenue").
		Scan(&row).Error; err != nil {
		return SaleSummaryRow{}, err
	}
	return SaleSummaryRow{Count: row.Count, Units: row.Units, Revenue: row.Revenue.Round(2)}, nil
}

// ApplyReturn 累加已退数量与退款金额，退货总量不得超过成交数量。
// 状态在同一条 UPDATE 中按累加后的数量判定，并发审核不会写入过期状态。
func (r *GormSaleRepository) ApplyReturn(saleID uint, quantity int, refund decimal.Decimal) (int64, error) {
	if saleID == 0 || quantity <= 0 {
		return 0, invalidArgument("sale return")
	}
	return rowsAffected(r.db.Model(&models.Sale{}).
		Where("id = ? AND returned_qty + ? <= quantity", saleID, quantity).
		Updates(map[string]interface{}{
			"returned_qty":    gorm.Expr("returned_qty + ?", quantity),
			"refunded_amount": gorm.Expr("refunded_amount + ?", refund.Round(2).String()),
			"status": gorm.Expr("CASE WHEN returned_qty + ? >= quantity THEN ? ELSE ? END",
				quantity, constants.SaleStatusReturned, constants.SaleStatusPartiallyReturned),
		}))
}
