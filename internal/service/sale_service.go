package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/stockdesk/internal/constants"
	"github.com/stockdesk/internal/logger"
	"github.com/stockdesk/internal/models"
	"github.com/stockdesk/internal/queue"
	"github.com/stockdesk/internal/repository"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	exportBatchSize = 500
)

// NormalizePagination 规范化分页参数：页码至少为 1，每页 [1,100]，默认 20
func NormalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// SaleService 销售记录服务
type SaleService struct {
	saleRepo     repository.SaleRepository
	skuRepo      repository.ProductSKURepository
	movementRepo repository.StockMovementRepository
	queueClient  *queue.Client
	now          func() time.Time
}

// NewSaleService 创建销售记录服务
func NewSaleService(
	saleRepo repository.SaleRepository,
	skuRepo repository.ProductSKURepository,
	movementRepo repository.StockMovementRepository,
	queueClient *queue.Client,
) *SaleService {
	return &SaleService{
		saleRepo:     saleRepo,
		skuRepo:      skuRepo,
		movementRepo: movementRepo,
		queueClient:  queueClient,
		now:          time.Now,
	}
}

// RecordSaleInput 录入销售输入
type RecordSaleInput struct {
	OrderNo      string
	SKUID        uint
	Quantity     int
	UnitPrice    *decimal.Decimal // 为空时取 SKU 当前售价
	Channel      string
	CustomerName string
	SoldAt       *time.Time
	OperatorID   uint
}

// SaleCSVRow 销售导出行
type SaleCSVRow struct {
	OrderNo        string `csv:"order_no"`
	SoldAt         string `csv:"sold_at"`
	Channel        string `csv:"channel"`
	ProductName    string `csv:"product_name"`
	SKUCode        string `csv:"sku_code"`
	Quantity       int    `csv:"quantity"`
	ReturnedQty    int    `csv:"returned_qty"`
	UnitPrice      string `csv:"unit_price"`
	TotalAmount    string `csv:"total_amount"`
	RefundedAmount string `csv:"refunded_amount"`
	Currency       string `csv:"currency"`
	CustomerName   string `csv:"customer_name"`
	Status         string `csv:"status"`
}

// RecordSale 录入一笔销售：条件扣减库存并写出库流水
func (s *SaleService) RecordSale(ctx context.Context, input RecordSaleInput) (*models.Sale, error) {
	if input.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrSaleInvalid)
	}
	channel := strings.ToLower(strings.TrimSpace(input.Channel))
	if channel == "" {
		channel = constants.SaleChannelPOS
	}
	if !validSaleChannel(channel) {
		return nil, ErrSaleChannelInvalid
	}
	if input.UnitPrice != nil && input.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: unit price must not be negative", ErrSaleInvalid)
	}

	sku, err := s.skuRepo.GetByID(input.SKUID)
	if err != nil {
		return nil, err
	}
	if sku == nil || sku.Product == nil {
		return nil, ErrSKUNotFound
	}
	if !sku.IsActive {
		return nil, fmt.Errorf("%w: sku is inactive", ErrSaleInvalid)
	}

	soldAt := s.now()
	if input.SoldAt != nil && !input.SoldAt.IsZero() {
		soldAt = *input.SoldAt
	}
	unitPrice := sku.PriceAmount
	if input.UnitPrice != nil {
		unitPrice = models.NewMoneyFromDecimal(*input.UnitPrice)
	}
	orderNo := strings.TrimSpace(input.OrderNo)
	if orderNo == "" {
		orderNo = generateDocumentNo("S", soldAt)
	}

	sale := &models.Sale{
		OrderNo:        orderNo,
		ProductID:      sku.ProductID,
		SKUID:          sku.ID,
		ProductName:    sku.Product.Name,
		SKUCode:        sku.SKUCode,
		Quantity:       input.Quantity,
		UnitPrice:      unitPrice,
		UnitCost:       sku.CostAmount,
		TotalAmount:    unitPrice.MulQty(input.Quantity),
		RefundedAmount: models.NewMoneyFromInt(0),
		Currency:       sku.Product.Currency,
		Channel:        channel,
		CustomerName:   strings.TrimSpace(input.CustomerName),
		Status:         constants.SaleStatusCompleted,
		SoldAt:         soldAt,
		CreatedBy:      input.OperatorID,
	}

	var stockAfter int
	err = s.movementRepo.Transaction(func(tx *gorm.DB) error {
		skuRepo := s.skuRepo.WithTx(tx)
		affected, err := skuRepo.DecreaseStock(sku.ID, input.Quantity, soldAt)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrInsufficientStock
		}
		if err := s.saleRepo.WithTx(tx).Create(sale); err != nil {
			return err
		}
		current, err := skuRepo.GetByID(sku.ID)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrSKUNotFound
		}
		stockAfter = current.Stock
		return s.movementRepo.WithTx(tx).Create(&models.StockMovement{
			SKUID:      sku.ID,
			ProductID:  sku.ProductID,
			Type:       constants.StockMovementSale,
			Quantity:   -input.Quantity,
			StockAfter: stockAfter,
			RefType:    "sale",
			RefID:      sale.ID,
			OperatorID: input.OperatorID,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("sale_recorded",
		"sale_id", sale.ID,
		"order_no", sale.OrderNo,
		"sku_id", sale.SKUID,
		"quantity", sale.Quantity,
		"stock_after", stockAfter,
	)
	if stockAfter <= sku.LowStockThreshold && s.queueClient != nil {
		if err := s.queueClient.EnqueueLowStockCheck(queue.LowStockCheckPayload{SKUIDs: []uint{sku.ID}, Source: "sale"}); err != nil {
			logger.Warnw("low_stock_check_enqueue_failed", "sku_id", sku.ID, "source", "sale", "error", err)
		}
	}
	return sale, nil
}

// Get 获取销售记录
func (s *SaleService) Get(id uint) (*models.Sale, error) {
	sale, err := s.saleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, ErrSaleNotFound
	}
	return sale, nil
}

// ListSales 销售记录列表
func (s *SaleService) ListSales(filter repository.SaleListFilter) ([]models.Sale, int64, error) {
	filter.Page, filter.PageSize = NormalizePagination(filter.Page, filter.PageSize)
	if err := validateSaleFilter(filter); err != nil {
		return nil, 0, err
	}
	return s.saleRepo.List(filter)
}

// SalesSummary 筛选结果汇总
func (s *SaleService) SalesSummary(filter repository.SaleListFilter) (repository.SaleSummaryRow, error) {
	if err := validateSaleFilter(filter); err != nil {
		return repository.SaleSummaryRow{}, err
	}
	return s.saleRepo.Summary(filter)
}

// ExportSales 以 CSV 导出筛选结果，按批次分页读取
func (s *SaleService) ExportSales(filter repository.SaleListFilter, w io.Writer) (int, error) {
	if err := validateSaleFilter(filter); err != nil {
		return 0, err
	}
	filter.PageSize = exportBatchSize
	filter.SkipCount = true

	written := 0
	for page := 1; ; page++ {
		filter.Page = page
		sales, _, err := s.saleRepo.List(filter)
		if err != nil {
			return written, err
		}
		rows := make([]SaleCSVRow, 0, len(sales))
		for i := range sales {
			rows = append(rows, newSaleCSVRow(&sales[i]))
		}
		if page == 1 {
			err = gocsv.Marshal(&rows, w)
		} else if len(rows) > 0 {
			err = gocsv.MarshalWithoutHeaders(&rows, w)
		}
		if err != nil {
			return written, err
		}
		written += len(rows)
		if len(sales) < exportBatchSize {
			break
		}
	}
	logger.Infow("sales_exported", "rows", written)
	return written, nil
}

func newSaleCSVRow(sale *models.Sale) SaleCSVRow {
	return SaleCSVRow{
		OrderNo:        sale.OrderNo,
		SoldAt:         sale.SoldAt.Format(time.RFC3339),
		Channel:        sale.Channel,
		ProductName:    sale.ProductName,
		SKUCode:        sale.SKUCode,
		Quantity:       sale.Quantity,
		ReturnedQty:    sale.ReturnedQty,
		UnitPrice:      sale.UnitPrice.String(),
		TotalAmount:    sale.TotalAmount.String(),
		RefundedAmount: sale.RefundedAmount.String(),
		Currency:       sale.Currency,
		CustomerName:   sale.CustomerName,
		Status:         sale.Status,
	}
}

func validateSaleFilter(filter repository.SaleListFilter) error {
	if channel := strings.TrimSpace(filter.Channel); channel != "" && !validSaleChannel(channel) {
		return ErrSaleChannelInvalid
	}
	if filter.SoldFrom != nil && filter.SoldTo != nil && filter.SoldTo.Before(*filter.SoldFrom) {
		return fmt.Errorf("%w: sold_to before sold_from", ErrInvalidInput)
	}
	if filter.MinAmount != nil && filter.MaxAmount != nil && filter.MaxAmount.LessThan(*filter.MinAmount) {
		return fmt.Errorf("%w: max_amount below min_amount", ErrInvalidInput)
	}
	return nil
}

func validSaleChannel(channel string) bool {
	switch channel {
	case constants.SaleChannelPOS, constants.SaleChannelOnline, constants.SaleChannelWholesale:
		return true
	}
	return false
}

// generateDocumentNo 生成单据号，例如 S20260102150405A1B2C3D4
func generateDocumentNo(prefix string, at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return prefix + at.Format("20060102150405") + suffix
}
