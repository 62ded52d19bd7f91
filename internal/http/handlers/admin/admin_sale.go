package admin

import (
	"fmt"
	"strings"
	"time"

	"github.com/stockdesk/internal/http/response"
	"github.com/stockdesk/internal/repository"
	"github.com/stockdesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// RecordSaleRequest 录入销售请求
type RecordSaleRequest struct {
	OrderNo      string           `json:"order_no"`
	SKUID        uint             `json:"sku_id" binding:"required"`
	Quantity     int              `json:"quantity" binding:"required"`
	UnitPrice    *decimal.Decimal `json:"unit_price"`
	Channel      string           `json:"channel"`
	CustomerName string           `json:"customer_name"`
	SoldAt       string           `json:"sold_at"`
}

// CreateReturnRequest 创建退货申请请求
type CreateReturnRequest struct {
	SaleID       uint             `json:"sale_id" binding:"required"`
	Quantity     int              `json:"quantity" binding:"required"`
	Reason       string           `json:"reason"`
	Condition    string           `json:"condition"`
	RefundAmount *decimal.Decimal `json:"refund_amount"`
}

// ProcessReturnRequest 审核退货请求
type ProcessReturnRequest struct {
	Note string `json:"note"`
}

// ListSales 销售记录列表
func (h *Handler) ListSales(c *gin.Context) {
	page, pageSize := parsePageQuery(c)
	filter, err := buildSaleFilter(c, page, pageSize)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	sales, total, err := h.SaleService.ListSales(filter)
	if err != nil {
		respondWithMappedError(c, err, saleErrorRules, response.CodeInternal, "error.sale_fetch_failed")
		return
	}
	response.SuccessWithPage(c, sales, response.NewPagination(page, pageSize, total))
}

// GetSale 销售记录详情
func (h *Handler) GetSale(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	sale, err := h.SaleService.Get(id)
	if err != nil {
		respondWithMappedError(c, err, saleErrorRules, response.CodeInternal, "error.sale_fetch_failed")
		return
	}
	response.Success(c, sale)
}

// CreateSale 录入销售并扣减库存
func (h *Handler) CreateSale(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req RecordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	soldAt, err := parseTimeNullable(req.SoldAt)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	sale, err := h.SaleService.RecordSale(c.Request.Context(), service.RecordSaleInput{
		OrderNo:      req.OrderNo,
		SKUID:        req.SKUID,
		Quantity:     req.Quantity,
		UnitPrice:    req.UnitPrice,
		Channel:      req.Channel,
		CustomerName: req.CustomerName,
		SoldAt:       soldAt,
		OperatorID:   adminID,
	})
	if err != nil {
		respondWithMappedError(c, err, saleErrorRules, response.CodeInternal, "error.sale_create_failed")
		return
	}
	response.Success(c, sale)
}

// GetSalesSummary 筛选结果汇总
func (h *Handler) GetSalesSummary(c *gin.Context) {
	filter, err := buildSaleFilter(c, 1, 1)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	summary, err := h.SaleService.SalesSummary(filter)
	if err != nil {
		respondWithMappedError(c, err, saleErrorRules, response.CodeInternal, "error.sale_fetch_failed")
		return
	}
	response.Success(c, gin.H{
		"count":   summary.Count,
		"units":   summary.Units,
		"revenue": summary.Revenue.StringFixed(2),
	})
}

// ExportSales 导出销售记录 CSV
func (h *Handler) ExportSales(c *gin.Context) {
	filter, err := buildSaleFilter(c, 1, 1)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	w := newAttachmentWriter(c, "sales", "csv", "text/csv; charset=utf-8")
	if _, err := h.SaleService.ExportSales(filter, w); err != nil {
		if w.started {
			requestLog(c).Errorw("admin_sales_export_interrupted", "error", err)
			return
		}
		respondWithMappedError(c, err, saleErrorRules, response.CodeInternal, "error.export_failed")
		return
	}
	w.finish()
}

// ListReturns 退货申请列表
func (h *Handler) ListReturns(c *gin.Context) {
	page, pageSize := parsePageQuery(c)
	filter, err := buildReturnFilter(c, page, pageSize)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	items, total, err := h.ReturnService.ListReturns(filter)
	if err != nil {
		respondWithMappedError(c, err, returnErrorRules, response.CodeInternal, "error.return_fetch_failed")
		return
	}
	response.SuccessWithPage(c, items, response.NewPagination(page, pageSize, total))
}

// GetReturn 退货申请详情
func (h *Handler) GetReturn(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	item, err := h.ReturnService.Get(id)
	if err != nil {
		respondWithMappedError(c, err, returnErrorRules, response.CodeInternal, "error.return_fetch_failed")
		return
	}
	response.Success(c, item)
}

// CreateReturn 创建退货申请
func (h *Handler) CreateReturn(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req CreateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	item, err := h.ReturnService.CreateReturn(service.CreateReturnInput{
		SaleID:       req.SaleID,
		Quantity:     req.Quantity,
		Reason:       req.Reason,
		Condition:    req.Condition,
		RefundAmount: req.RefundAmount,
		OperatorID:   adminID,
	})
	if err != nil {
		respondWithMappedError(c, err, returnErrorRules, response.CodeInternal, "error.return_create_failed")
		return
	}
	response.Success(c, item)
}

// ApproveReturn 审核通过退货
func (h *Handler) ApproveReturn(c *gin.Context) {
	h.processReturn(c, func(id, adminID uint, note string) (interface{}, error) {
		return h.ReturnService.ApproveReturn(c.Request.Context(), id, adminID, note)
	})
}

// RejectReturn 驳回退货
func (h *Handler) RejectReturn(c *gin.Context) {
	h.processReturn(c, func(id, adminID uint, note string) (interface{}, error) {
		return h.ReturnService.RejectReturn(id, adminID, note)
	})
}

// ExportReturns 导出退货申请 CSV
func (h *Handler) ExportReturns(c *gin.Context) {
	filter, err := buildReturnFilter(c, 1, 1)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	w := newAttachmentWriter(c, "returns", "csv", "text/csv; charset=utf-8")
	if _, err := h.ReturnService.ExportReturns(filter, w); err != nil {
		if w.started {
			requestLog(c).Errorw("admin_returns_export_interrupted", "error", err)
			return
		}
		respondWithMappedError(c, err, returnErrorRules, response.CodeInternal, "error.export_failed")
		return
	}
	w.finish()
}

func (h *Handler) processReturn(c *gin.Context, fn func(id, adminID uint, note string) (interface{}, error)) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req ProcessReturnRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
	}
	item, err := fn(id, adminID, strings.TrimSpace(req.Note))
	if err != nil {
		respondWithMappedError(c, err, returnErrorRules, response.CodeInternal, "error.return_update_failed")
		return
	}
	response.Success(c, item)
}

func buildSaleFilter(c *gin.Context, page, pageSize int) (repository.SaleListFilter, error) {
	productID, err := parseQueryUint(c, "product_id")
	if err != nil {
		return repository.SaleListFilter{}, err
	}
	skuID, err := parseQueryUint(c, "sku_id")
	if err != nil {
		return repository.SaleListFilter{}, err
	}
	soldFrom, err := parseTimeNullable(c.Query("sold_from"))
	if err != nil {
		return repository.SaleListFilter{}, err
	}
	soldTo, err := parseDateRangeEnd(c.Query("sold_to"))
	if err != nil {
		return repository.SaleListFilter{}, err
	}
	minAmount, err := parseQueryDecimal(c, "min_amount")
	if err != nil {
		return repository.SaleListFilter{}, err
	}
	maxAmount, err := parseQueryDecimal(c, "max_amount")
	if err != nil {
		return repository.SaleListFilter{}, err
	}
	sortDesc := true
	if order := strings.ToLower(strings.TrimSpace(c.Query("order"))); order == "asc" {
		sortDesc = false
	}

	return repository.SaleListFilter{
		Page:      page,
		PageSize:  pageSize,
		Keyword:   strings.TrimSpace(c.Query("keyword")),
		Channel:   strings.TrimSpace(c.Query("channel")),
		Status:    strings.TrimSpace(c.Query("status")),
		ProductID: productID,
		SKUID:     skuID,
		SoldFrom:  soldFrom,
		SoldTo:    soldTo,
		MinAmount: minAmount,
		MaxAmount: maxAmount,
		SortBy:    strings.TrimSpace(c.Query("sort_by")),
		SortDesc:  sortDesc,
	}, nil
}

func buildReturnFilter(c *gin.Context, page, pageSize int) (repository.ReturnListFilter, error) {
	saleID, err := parseQueryUint(c, "sale_id")
	if err != nil {
		return repository.ReturnListFilter{}, err
	}
	createdFrom, err := parseTimeNullable(c.Query("created_from"))
	if err != nil {
		return repository.ReturnListFilter{}, err
	}
	createdTo, err := parseDateRangeEnd(c.Query("created_to"))
	if err != nil {
		return repository.ReturnListFilter{}, err
	}
	return repository.ReturnListFilter{
		Page:        page,
		PageSize:    pageSize,
		Status:      strings.TrimSpace(c.Query("status")),
		SaleID:      saleID,
		Keyword:     strings.TrimSpace(c.Query("keyword")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	}, nil
}

// attachmentWriter 首次写入时才发送下载头，导出前的校验错误仍可走 JSON 响应
type attachmentWriter struct {
	c           *gin.Context
	filename    string
	contentType string
	started     bool
}

func newAttachmentWriter(c *gin.Context, prefix, ext, contentType string) *attachmentWriter {
	return &attachmentWriter{
		c:           c,
		filename:    fmt.Sprintf("%s_%s.%s", prefix, time.Now().Format("20060102_150405"), ext),
		contentType: contentType,
	}
}

func (w *attachmentWriter) start() {
	if w.started {
		return
	}
	w.started = true
	w.c.Header("Content-Type", w.contentType)
	w.c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", w.filename))
	w.c.Status(200)
}

func (w *attachmentWriter) Write(p []byte) (int, error) {
	w.start()
	return w.c.Writer.Write(p)
}

// finish 没有任何输出时也要发送下载头
func (w *attachmentWriter) finish() {
	w.start()
	w.c.Writer.WriteHeaderNow()
}
