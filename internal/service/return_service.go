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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReturnService 退货处理服务
type ReturnService struct {
	returnRepo   repository.ReturnRepository
	saleRepo     repository.SaleRepository
	skuRepo      repository.ProductSKURepository
	movementRepo repository.StockMovementRepository
	queueClient  *queue.Client
	now          func() time.Time
}

// NewReturnService 创建退货服务
func NewReturnService(
	returnRepo repository.ReturnRepository,
	saleRepo repository.SaleRepository,
	skuRepo repository.ProductSKURepository,
	movementRepo repository.StockMovementRepository,
	queueClient *queue.Client,
) *ReturnService {
	return &ReturnService{
		returnRepo:   returnRepo,
		saleRepo:     saleRepo,
		skuRepo:      skuRepo,
		movementRepo: movementRepo,
		queueClient:  queueClient,
		now:          time.Now,
	}
}

// CreateReturnInput 创建退货申请输入
type CreateReturnInput struct {
	SaleID       uint
	Quantity     int
	Reason       string
	Condition    string
	RefundAmount *decimal.Decimal // 为空时按成交单价 × 数量
	OperatorID   uint
}

// ReturnCSVRow 退货导出行
type ReturnCSVRow struct {
	ReturnNo     string `csv:"return_no"`
	OrderNo      string `csv:"order_no"`
	ProductName  string `csv:"product_name"`
	SKUCode      string `csv:"sku_code"`
	Quantity     int    `csv:"quantity"`
	Condition    string `csv:"condition"`
	RefundAmount string `csv:"refund_amount"`
	Status       string `csv:"status"`
	Reason       string `csv:"reason"`
	Note         string `csv:"note"`
	CreatedAt    string `csv:"created_at"`
	ProcessedAt  string `csv:"processed_at"`
}

// CreateReturn 创建退货申请；已退与待处理数量之和不得超过成交数量
func (s *ReturnService) CreateReturn(input CreateReturnInput) (*models.ReturnRequest, error) {
	if input.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrReturnInvalid)
	}
	condition := strings.ToLower(strings.TrimSpace(input.Condition))
	if condition == "" {
		condition = constants.ReturnConditionResellable
	}
	if condition != constants.ReturnConditionResellable && condition != constants.ReturnConditionDamaged {
		return nil, ErrReturnConditionInvalid
	}

	sale, err := s.saleRepo.GetByID(input.SaleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, ErrSaleNotFound
	}
	claimed, err := s.returnRepo.SumQuantityBySale(sale.ID, []string{constants.ReturnStatusPending, constants.ReturnStatusApproved})
	if err != nil {
		return nil, err
	}
	if claimed+int64(input.Quantity) > int64(sale.Quantity) {
		return nil, ErrReturnQuantityExceeded
	}

	refund := sale.UnitPrice.MulQty(input.Quantity)
	if input.RefundAmount != nil {
		if input.RefundAmount.IsNegative() {
			return nil, fmt.Errorf("%w: refund must not be negative", ErrReturnInvalid)
		}
		refund = models.NewMoneyFromDecimal(*input.RefundAmount)
	}

	item := &models.ReturnRequest{
		ReturnNo:     generateDocumentNo("R", s.now()),
		SaleID:       sale.ID,
		ProductID:    sale.ProductID,
		SKUID:        sale.SKUID,
		Quantity:     input.Quantity,
		Reason:       truncateRunes(strings.TrimSpace(input.Reason), 500),
		Condition:    condition,
		RefundAmount: refund,
		Status:       constants.ReturnStatusPending,
		CreatedBy:    input.OperatorID,
	}
	if err := s.returnRepo.Create(item); err != nil {
		return nil, err
	}
	item.Sale = sale
	logger.Infow("return_created", "return_id", item.ID, "sale_id", sale.ID, "quantity", item.Quantity)
	return item, nil
}

// Get 获取退货申请
func (s *ReturnService) Get(id uint) (*models.ReturnRequest, error) {
	item, err := s.returnRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrReturnNotFound
	}
	return item, nil
}

// ApproveReturn 审核通过：可再售且 SKU 仍在售时回库，更新销售记录状态，并触发低库存复核。
// SKU 已因重建变体或删除商品而下架时只结算退款，不回库。
func (s *ReturnService) ApproveReturn(ctx context.Context, id, adminID uint, note string) (*models.ReturnRequest, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if item.Status != constants.ReturnStatusPending {
		return nil, ErrReturnStatusInvalid
	}
	if item.Sale == nil {
		return nil, ErrSaleNotFound
	}

	now := s.now()
	restock := false
	err = s.movementRepo.Transaction(func(tx *gorm.DB) error {
		skuRepo := s.skuRepo.WithTx(tx)
		restock = false
		if item.Condition == constants.ReturnConditionResellable {
			sku, err := skuRepo.GetByID(item.SKUID)
			if err != nil {
				return err
			}
			restock = sku != nil
		}

		affected, err := s.returnRepo.WithTx(tx).UpdateStatus(item.ID, constants.ReturnStatusPending, map[string]interface{}{
			"status":       constants.ReturnStatusApproved,
			"note":         truncateRunes(strings.TrimSpace(note), 500),
			"processed_by": adminID,
			"processed_at": now,
			"restocked":    restock,
		})
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrReturnStatusInvalid
		}
		affected, err = s.saleRepo.WithTx(tx).ApplyReturn(item.SaleID, item.Quantity, item.RefundAmount.Decimal)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrReturnQuantityExceeded
		}
		if !restock {
			return nil
		}

		affected, err = skuRepo.IncreaseStock(item.SKUID, item.Quantity)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrSKUNotFound
		}
		sku, err := skuRepo.GetByID(item.SKUID)
		if err != nil {
			return err
		}
		if sku == nil {
			return ErrSKUNotFound
		}
		return s.movementRepo.WithTx(tx).Create(&models.StockMovement{
			SKUID:      item.SKUID,
			ProductID:  item.ProductID,
			Type:       constants.StockMovementReturn,
			Quantity:   item.Quantity,
			StockAfter: sku.Stock,
			RefType:    "return",
			RefID:      item.ID,
			OperatorID: adminID,
		})
	})
	if err != nil {
		return nil, err
	}

	approved, err := s.Get(item.ID)
	if err != nil {
		return nil, err
	}
	saleStatus := ""
	if approved.Sale != nil {
		saleStatus = approved.Sale.Status
	}
	logger.Infow("return_approved",
		"return_id", item.ID,
		"sale_id", item.SaleID,
		"restocked", restock,
		"sku_retired", item.Condition == constants.ReturnConditionResellable && !restock,
		"sale_status", saleStatus,
		"admin_id", adminID,
	)
	if restock && s.queueClient != nil {
		if err := s.queueClient.EnqueueLowStockCheck(queue.LowStockCheckPayload{SKUIDs: []uint{item.SKUID}, Source: "return_approved"}); err != nil {
			logger.Warnw("low_stock_check_enqueue_failed", "sku_id", item.SKUID, "source", "return_approved", "error", err)
		}
	}
	return approved, nil
}

// RejectReturn 驳回退货，仅限待处理状态
func (s *ReturnService) RejectReturn(id, adminID uint, note string) (*models.ReturnRequest, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if item.Status != constants.ReturnStatusPending {
		return nil, ErrReturnStatusInvalid
	}
	affected, err := s.returnRepo.UpdateStatus(item.ID, constants.ReturnStatusPending, map[string]interface{}{
		"status":       constants.ReturnStatusRejected,
		"note":         truncateRunes(strings.TrimSpace(note), 500),
		"processed_by": adminID,
		"processed_at": s.now(),
	})
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrReturnStatusInvalid
	}
	logger.Infow("return_rejected", "return_id", item.ID, "admin_id", adminID)
	return s.Get(item.ID)
}

// ListReturns 退货申请列表
func (s *ReturnService) ListReturns(filter repository.ReturnListFilter) ([]models.ReturnRequest, int64, error) {
	filter.Page, filter.PageSize = NormalizePagination(filter.Page, filter.PageSize)
	if err := validateReturnStatusFilter(filter.Status); err != nil {
		return nil, 0, err
	}
	return s.returnRepo.List(filter)
}

// ExportReturns 以 CSV 导出退货申请
func (s *ReturnService) ExportReturns(filter repository.ReturnListFilter, w io.Writer) (int, error) {
	if err := validateReturnStatusFilter(filter.Status); err != nil {
		return 0, err
	}
	filter.PageSize = exportBatchSize
	filter.SkipCount = true

	written := 0
	for page := 1; ; page++ {
		filter.Page = page
		items, _, err := s.returnRepo.List(filter)
		if err != nil {
			return written, err
		}
		rows := make([]ReturnCSVRow, 0, len(items))
		for i := range items {
			rows = append(rows, newReturnCSVRow(&items[i]))
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
		if len(items) < exportBatchSize {
			break
		}
	}
	logger.Infow("returns_exported", "rows", written)
	return written, nil
}

func newReturnCSVRow(item *models.ReturnRequest) ReturnCSVRow {
	row := ReturnCSVRow{
		ReturnNo:     item.ReturnNo,
		Quantity:     item.Quantity,
		Condition:    item.Condition,
		RefundAmount: item.RefundAmount.String(),
		Status:       item.Status,
		Reason:       item.Reason,
		Note:         item.Note,
		CreatedAt:    item.CreatedAt.Format(time.RFC3339),
	}
	if item.Sale != nil {
		row.OrderNo = item.Sale.OrderNo
		row.ProductName = item.Sale.ProductName
		row.SKUCode = item.Sale.SKUCode
	}
	if item.ProcessedAt != nil {
		row.ProcessedAt = item.ProcessedAt.Format(time.RFC3339)
	}
	return row
}

func validateReturnStatusFilter(status string) error {
	switch strings.TrimSpace(status) {
	case "", constants.ReturnStatusPending, constants.ReturnStatusApproved, constants.ReturnStatusRejected:
		return nil
	}
	return ErrReturnStatusInvalid
}
