package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stockdesk/internal/constants"
	"github.com/stockdesk/internal/models"
	"github.com/stockdesk/internal/repository"
	"github.com/stockdesk/internal/variant"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type salesFixture struct {
	*inventoryFixture
	sales   *SaleService
	returns *ReturnService
	sku     models.ProductSKU
}

func newSalesFixture(t *testing.T, stock int) *salesFixture {
	t.Helper()
	f := newInventoryFixture(t)
	saleRepo := repository.NewSaleRepository(f.db)
	sf := &salesFixture{
		inventoryFixture: f,
		sales:            NewSaleService(saleRepo, f.skus, f.movements, nil),
		returns:          NewReturnService(repository.NewReturnRepository(f.db), saleRepo, f.skus, f.movements, nil),
	}
	product, err := f.productSvc.CreateProduct(context.Background(), CreateProductInput{
		CategoryID: f.category.ID,
		Name:       "Notebook",
		Price:      decimal.RequireFromString("25.00"),
		Cost:       decimal.RequireFromString("10.00"),
	})
	require.NoError(t, err)
	sf.sku = product.SKUs[0]
	if stock > 0 {
		_, err = f.productSvc.AdjustStock(context.Background(), sf.sku.ID, stock, "seed", 1)
		require.NoError(t, err)
	}
	return sf
}

func TestRecordSaleDecrementsStock(t *testing.T) {
	f := newSalesFixture(t, 10)
	ctx := context.Background()

	sale, err := f.sales.RecordSale(ctx, RecordSaleInput{SKUID: f.sku.ID, Quantity: 3, Channel: "online", CustomerName: "Lin"})
	require.NoError(t, err)
	assert.Equal(t, "75.00", sale.TotalAmount.String())
	assert.Equal(t, "10.00", sale.UnitCost.String())
	assert.Equal(t, constants.SaleStatusCompleted, sale.Status)
	assert.True(t, strings.HasPrefix(sale.OrderNo, "S"))

	sku, err := f.productSvc.GetSKU(f.sku.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, sku.Stock)
	require.NotNil(t, sku.LastSoldAt)

	_, err = f.sales.RecordSale(ctx, RecordSaleInput{SKUID: f.sku.ID, Quantity: 8})
	assert.True(t, errors.Is(err, ErrInsufficientStock))

	_, err = f.sales.RecordSale(ctx, RecordSaleInput{SKUID: f.sku.ID, Quantity: 1, Channel: "fax"})
	assert.True(t, errors.Is(err, ErrSaleChannelInvalid))

	_, err = f.sales.RecordSale(ctx, RecordSaleInput{SKUID: f.sku.ID, Quantity: 0})
	assert.True(t, errors.Is(err, ErrSaleInvalid))

	movements, _, err := f.productSvc.ListMovements(repository.StockMovementFilter{SKUID: f.sku.ID, Type: constants.StockMovementSale})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, -3, movements[0].Quantity)
	assert.Equal(t, 7, movements[0].StockAfter)
}

func TestListSalesFilterAndSummary(t *testing.T) {
	f := newSalesFixture(t, 50)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, qty := range []int{1, 2, 5} {
		soldAt := base.AddDate(0, 0, i)
		price := decimal.NewFromInt(int64(10 * (i + 1)))
		_, err := f.sales.RecordSale(ctx, RecordSaleInput{
			OrderNo:   "ORD-" + string(rune('A'+i)),
			SKUID:     f.sku.ID,
			Quantity:  qty,
			UnitPrice: &price,
			SoldAt:    &soldAt,
		})
		require.NoError(t, err)
	}

	sales, total, err := f.sales.ListSales(repository.SaleListFilter{SortBy: "quantity", SortDesc: true, PageSize: 500})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, 5, sales[0].Quantity)

	from := base.AddDate(0, 0, 1)
	summary, err := f.sales.SalesSummary(repository.SaleListFilter{SoldFrom: &from})
	require.NoError(t, err)
	assert.EqualValues(t, 2, summary.Count)
	assert.EqualValues(t, 7, summary.Units)
	assert.Equal(t, "190", summary.Revenue.String())

	sales, _, err = f.sales.ListSales(repository.SaleListFilter{Keyword: "ORD-B"})
	require.NoError(t, err)
	require.Len(t, sales, 1)

	minAmount := decimal.NewFromInt(100)
	maxAmount := decimal.NewFromInt(10)
	_, _, err = f.sales.ListSales(repository.SaleListFilter{MinAmount: &minAmount, MaxAmount: &maxAmount})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestExportSalesCSV(t *testing.T) {
	f := newSalesFixture(t, 5)
	_, err := f.sales.RecordSale(context.Background(), RecordSaleInput{OrderNo: "EXP-1", SKUID: f.sku.ID, Quantity: 2})
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := f.sales.ExportSales(repository.SaleListFilter{}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "order_no,sold_at,channel"))
	assert.Contains(t, lines[1], "EXP-1")
	assert.Contains(t, lines[1], "50.00")
}

func TestNormalizePagination(t *testing.T) {
	page, size := NormalizePagination(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, size)
	page, size = NormalizePagination(3, 1000)
	assert.Equal(t, 3, page)
	assert.Equal(t, 100, size)
}

func TestReturnLifecycle(t *testing.T) {
	f := newSalesFixture(t, 10)
	ctx := context.Background()

	sale, err := f.sales.RecordSale(ctx, RecordSaleInput{SKUID: f.sku.ID, Quantity: 4})
	require.NoError(t, err)

	first, err := f.returns.CreateReturn(CreateReturnInput{SaleID: sale.ID, Quantity: 3, Reason: "wrong size"})
	require.NoError(t, err)
	assert.Equal(t, "75.00", first.RefundAmount.String())
	assert.Equal(t, constants.ReturnConditionResellable, first.Condition)

	_, err = f.returns.CreateReturn(CreateReturnInput{SaleID: sale.ID, Quantity: 2})
	assert.True(t, errors.Is(err, ErrReturnQuantityExceeded))

	approved, err := f.returns.ApproveReturn(ctx, first.ID, 9, "ok")
	require.NoError(t, err)
	assert.Equal(t, constants.ReturnStatusApproved, approved.Status)
	assert.True(t, approved.Restocked)
	require.NotNil(t, approved.Sale)
	assert.Equal(t, constants.SaleStatusPartiallyReturned, approved.Sale.Status)
	assert.Equal(t, 3, approved.Sale.ReturnedQty)

	sku, err := f.productSvc.GetSKU(f.sku.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, sku.Stock)

	_, err = f.returns.ApproveReturn(ctx, first.ID, 9, "again")
	assert.True(t, errors.Is(err, ErrReturnStatusInvalid))

	damaged, err := f.returns.CreateReturn(CreateReturnInput{SaleID: sale.ID, Quantity: 1, Condition: "damaged"})
	require.NoError(t, err)
	approved, err = f.returns.ApproveReturn(ctx, damaged.ID, 9, "")
	require.NoError(t, err)
	assert.False(t, approved.Restocked)
	assert.Equal(t, constants.SaleStatusReturned, approved.Sale.Status)

	sku, err = f.productSvc.GetSKU(f.sku.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, sku.Stock)
}

func TestRejectReturnAndValidation(t *testing.T) {
	f := newSalesFixture(t, 3)
	ctx := context.Background()
	sale, err := f.sales.RecordSale(ctx, RecordSaleInput{SKUID: f.sku.ID, Quantity: 2})
	require.NoError(t, err)

	_, err = f.returns.CreateReturn(CreateReturnInput{SaleID: sale.ID, Quantity: 0})
	assert.True(t, errors.Is(err, ErrReturnInvalid))
	_, err = f.returns.CreateReturn(CreateReturnInput{SaleID: sale.ID, Quantity: 1, Condition: "lost"})
	assert.True(t, errors.Is(err, ErrReturnConditionInvalid))
	_, err = f.returns.CreateReturn(CreateReturnInput{SaleID: 999, Quantity: 1})
	assert.True(t, errors.Is(err, ErrSaleNotFound))

	item, err := f.returns.CreateReturn(CreateReturnInput{SaleID: sale.ID, Quantity: 2})
	require.NoError(t, err)
	rejected, err := f.returns.RejectReturn(item.ID, 1, "used")
	require.NoError(t, err)
	assert.Equal(t, constants.ReturnStatusRejected, rejected.Status)
	_, err = f.returns.RejectReturn(item.ID, 1, "")
	assert.True(t, errors.Is(err, ErrReturnStatusInvalid))

	// 驳回的数量不再占用可退额度
	again, err := f.returns.CreateReturn(CreateReturnInput{SaleID: sale.ID, Quantity: 2})
	require.NoError(t, err)

	items, total, err := f.returns.ListReturns(repository.ReturnListFilter{Status: constants.ReturnStatusPending})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, again.ID, items[0].ID)

	var buf bytes.Buffer
	n, err := f.returns.ExportReturns(repository.ReturnListFilter{}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, strings.HasPrefix(buf.String(), "return_no,order_no"))
}

func TestApproveReturnAfterRegenerateSkipsRestock(t *testing.T) {
	f := newSalesFixture(t, 5)
	ctx := context.Background()

	sale, err := f.sales.RecordSale(ctx, RecordSaleInput{SKUID: f.sku.ID, Quantity: 2})
	require.NoError(t, err)

	_, err = f.productSvc.RegenerateVariations(ctx, sale.ProductID, []variant.Attribute{
		{Name: "Color", Options: []string{"Red"}},
	}, 1)
	require.NoError(t, err)
	_, err = f.productSvc.GetSKU(f.sku.ID)
	assert.True(t, errors.Is(err, ErrSKUNotFound))

	item, err := f.returns.CreateReturn(CreateReturnInput{SaleID: sale.ID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, f.sku.ID, item.SKUID)

	approved, err := f.returns.ApproveReturn(ctx, item.ID, 9, "")
	require.NoError(t, err)
	assert.Equal(t, constants.ReturnStatusApproved, approved.Status)
	assert.False(t, approved.Restocked)
	assert.Equal(t, constants.SaleStatusReturned, approved.Sale.Status)

	movements, _, err := f.productSvc.ListMovements(repository.StockMovementFilter{SKUID: f.sku.ID, Type: constants.StockMovementReturn})
	require.NoError(t, err)
	assert.Empty(t, movements)
}
