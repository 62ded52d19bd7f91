package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stockdesk/internal/constants"
	"github.com/stockdesk/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupProductRepositoryTest(t *testing.T) (*GormProductRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Category{}, &models.Product{}, &models.ProductSKU{}, &models.Sale{}, &models.ReturnRequest{}); err != nil {
		t.Fatalf("migrate product/sku failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewProductRepository(db), db
}

func createTestProduct(t *testing.T, repo *GormProductRepository, slug string) *models.Product {
	t.Helper()
	product := &models.Product{
		CategoryID:  1,
		Slug:        slug,
		Name:        "测试商品 " + slug,
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		CostAmount:  models.NewMoneyFromDecimal(decimal.NewFromInt(40)),
		Currency:    "CNY",
		IsActive:    true,
	}
	if err := repo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func createTestSKU(t *testing.T, db *gorm.DB, productID uint, code string, stock, threshold int, isActive bool) *models.ProductSKU {
	t.Helper()
	sku := &models.ProductSKU{
		ProductID:         productID,
		SKUCode:           code,
		PriceAmount:       models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		Stock:             stock,
		LowStockThreshold: threshold,
		MinReorderQty:     5,
		IsActive:          true,
	}
	if err := db.Create(sku).Error; err != nil {
		t.Fatalf("create sku failed: %v", err)
	}
	if !isActive {
		if err := db.Model(sku).Update("is_active", false).Error; err != nil {
			t.Fatalf("update inactive sku failed: %v", err)
		}
		sku.IsActive = false
	}
	return sku
}

func reloadSKU(t *testing.T, db *gorm.DB, id uint) models.ProductSKU {
	t.Helper()
	var got models.ProductSKU
	if err := db.First(&got, id).Error; err != nil {
		t.Fatalf("reload sku failed: %v", err)
	}
	return got
}

func TestSKUStockDecreaseIncreaseAdjustLifecycle(t *testing.T) {
	repo, db := setupProductRepositoryTest(t)
	skuRepo := NewProductSKURepository(db)
	product := createTestProduct(t, repo, "stock-lifecycle")
	sku := createTestSKU(t, db, product.ID, "LIFE-S", 10, 3, true)

	soldAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	affected, err := skuRepo.DecreaseStock(sku.ID, 4, soldAt)
	if err != nil {
		t.Fatalf("decrease stock failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("decrease affected want 1 got %d", affected)
	}
	got := reloadSKU(t, db, sku.ID)
	if got.Stock != 6 {
		t.Fatalf("stock want 6 got %d", got.Stock)
	}
	if got.LastSoldAt == nil || !got.LastSoldAt.Equal(soldAt) {
		t.Fatalf("last_sold_at want %v got %v", soldAt, got.LastSoldAt)
	}

	affected, err = skuRepo.DecreaseStock(sku.ID, 7, soldAt)
	if err != nil {
		t.Fatalf("decrease over stock failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("decrease over stock affected want 0 got %d", affected)
	}

	affected, err = skuRepo.IncreaseStock(sku.ID, 2)
	if err != nil {
		t.Fatalf("increase stock failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("increase affected want 1 got %d", affected)
	}

	affected, err = skuRepo.AdjustStock(sku.ID, -9)
	if err != nil {
		t.Fatalf("adjust below zero failed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("adjust below zero affected want 0 got %d", affected)
	}

	affected, err = skuRepo.AdjustStock(sku.ID, -8)
	if err != nil {
		t.Fatalf("adjust to zero failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("adjust to zero affected want 1 got %d", affected)
	}
	if got := reloadSKU(t, db, sku.ID); got.Stock != 0 {
		t.Fatalf("stock want 0 got %d", got.Stock)
	}

	if _, err := skuRepo.DecreaseStock(sku.ID, 0, soldAt); err == nil {
		t.Fatalf("decrease zero quantity should fail")
	}
	if _, err := skuRepo.AdjustStock(sku.ID, 0); err == nil {
		t.Fatalf("adjust zero delta should fail")
	}
}

func TestListLowStockOnlyActiveSKUs(t *testing.T) {
	repo, db := setupProductRepositoryTest(t)
	skuRepo := NewProductSKURepository(db)
	product := createTestProduct(t, repo, "low-stock-list")

	low := createTestSKU(t, db, product.ID, "LOW", 2, 3, true)
	out := createTestSKU(t, db, product.ID, "OUT", 0, 3, true)
	createTestSKU(t, db, product.ID, "HEALTHY", 20, 3, true)
	createTestSKU(t, db, product.ID, "INACTIVE", 0, 3, false)

	items, err := skuRepo.ListLowStock(nil)
	if err != nil {
		t.Fatalf("list low stock failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("low stock len want 2 got %d", len(items))
	}
	if items[0].ID != out.ID || items[1].ID != low.ID {
		t.Fatalf("low stock order want [%d %d] got [%d %d]", out.ID, low.ID, items[0].ID, items[1].ID)
	}
	if items[0].Product == nil || items[0].Product.Slug != product.Slug {
		t.Fatalf("low stock sku should preload product")
	}

	items, err = skuRepo.ListLowStock([]uint{low.ID})
	if err != nil {
		t.Fatalf("list low stock by ids failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != low.ID {
		t.Fatalf("low stock by ids want only %d got %+v", low.ID, items)
	}
}

func TestListProductsByStockStatus(t *testing.T) {
	repo, db := setupProductRepositoryTest(t)

	lowProduct := createTestProduct(t, repo, "status-low")
	createTestSKU(t, db, lowProduct.ID, "LOW-A", 2, 5, true)
	createTestSKU(t, db, lowProduct.ID, "LOW-B", 50, 5, true)

	outProduct := createTestProduct(t, repo, "status-out")
	createTestSKU(t, db, outProduct.ID, "OUT-A", 0, 5, true)

	inProduct := createTestProduct(t, repo, "status-in")
	createTestSKU(t, db, inProduct.ID, "IN-A", 30, 5, true)
	createTestSKU(t, db, inProduct.ID, "IN-INACTIVE", 0, 5, false)

	checkSlugs := func(status string, expected map[string]bool) {
		products, total, err := repo.List(ProductListFilter{
			Page:        1,
			PageSize:    100,
			StockStatus: status,
		})
		if err != nil {
			t.Fatalf("list products by status=%s failed: %v", status, err)
		}
		if int(total) != len(products) {
			t.Fatalf("status=%s total %d does not match rows %d", status, total, len(products))
		}
		got := make(map[string]bool, len(products))
		for _, item := range products {
			got[item.Slug] = true
		}
		for slug, want := range expected {
			if got[slug] != want {
				t.Fatalf("status=%s expect slug=%s present=%v got=%v", status, slug, want, got[slug])
			}
		}
	}

	checkSlugs(constants.StockStatusLow, map[string]bool{
		lowProduct.Slug: true,
		outProduct.Slug: false,
		inProduct.Slug:  false,
	})
	checkSlugs(constants.StockStatusOut, map[string]bool{
		lowProduct.Slug: false,
		outProduct.Slug: true,
		inProduct.Slug:  false,
	})
	checkSlugs(constants.StockStatusIn, map[string]bool{
		lowProduct.Slug: false,
		outProduct.Slug: false,
		inProduct.Slug:  true,
	})
	checkSlugs("", map[string]bool{
		lowProduct.Slug: true,
		outProduct.Slug: true,
		inProduct.Slug:  true,
	})
}

func TestListProductsSearchMatchesSKUCode(t *testing.T) {
	repo, db := setupProductRepositoryTest(t)
	product := createTestProduct(t, repo, "search-target")
	createTestSKU(t, db, product.ID, "TEE-RED-XL", 5, 1, true)
	createTestProduct(t, repo, "search-other")

	products, total, err := repo.List(ProductListFilter{Page: 1, PageSize: 20, Search: "red-xl"})
	if err != nil {
		t.Fatalf("search products failed: %v", err)
	}
	if total != 1 || len(products) != 1 || products[0].ID != product.ID {
		t.Fatalf("search by sku code want product %d got total=%d rows=%d", product.ID, total, len(products))
	}
	if len(products[0].SKUs) != 1 {
		t.Fatalf("search result should preload skus, got %d", len(products[0].SKUs))
	}
}

func TestAnalyticsStockStatsAndProductRevenue(t *testing.T) {
	repo, db := setupProductRepositoryTest(t)
	analytics := NewAnalyticsRepository(db)

	product := createTestProduct(t, repo, "analytics-product")
	low := createTestSKU(t, db, product.ID, "AN-LOW", 2, 5, true)
	createTestSKU(t, db, product.ID, "AN-OUT", 0, 5, true)
	stocked := createTestSKU(t, db, product.ID, "AN-IN", 10, 5, true)
	createTestSKU(t, db, product.ID, "AN-OFF", 99, 5, false)

	stats, err := analytics.GetStockStats()
	if err != nil {
		t.Fatalf("get stock stats failed: %v", err)
	}
	if stats.ActiveSKUs != 3 || stats.LowStock != 1 || stats.OutOfStock != 1 {
		t.Fatalf("unexpected stock stats: %+v", stats)
	}
	if !stats.InventoryValue.Equal(decimal.NewFromInt(480)) {
		t.Fatalf("inventory value want 480 got %s", stats.InventoryValue)
	}

	inventory, err := analytics.ListInventory(true)
	if err != nil {
		t.Fatalf("list inventory failed: %v", err)
	}
	if len(inventory) != 2 {
		t.Fatalf("in-stock inventory len want 2 got %d", len(inventory))
	}
	if inventory[0].SKUID != low.ID || inventory[0].SKUCode != "AN-LOW" || inventory[1].SKUID != stocked.ID {
		t.Fatalf("inventory rows should carry sku ids and codes: %+v", inventory)
	}

	other := createTestProduct(t, repo, "analytics-other")
	now := time.Now().UTC().Truncate(time.Second)
	sales := []models.Sale{
		{OrderNo: "A-1", ProductID: product.ID, SKUID: 1, ProductName: product.Name, SKUCode: "AN-LOW", Quantity: 2,
			TotalAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(200)), Channel: constants.SaleChannelPOS,
			Status: constants.SaleStatusCompleted, SoldAt: now.Add(-time.Hour)},
		{OrderNo: "A-2", ProductID: other.ID, SKUID: 9, ProductName: other.Name, SKUCode: "OT-1", Quantity: 5,
			TotalAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(500)), Channel: constants.SaleChannelOnline,
			Status: constants.SaleStatusCompleted, SoldAt: now.Add(-2 * time.Hour)},
		{OrderNo: "A-3", ProductID: product.ID, SKUID: 1, ProductName: product.Name, SKUCode: "AN-LOW", Quantity: 1,
			TotalAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(100)), Channel: constants.SaleChannelPOS,
			Status: constants.SaleStatusCompleted, SoldAt: now.Add(-48 * time.Hour)},
	}
	if err := db.Create(&sales).Error; err != nil {
		t.Fatalf("create sales failed: %v", err)
	}

	rows, err := analytics.ListProductRevenue(now.Add(-24*time.Hour), now.Add(time.Hour), 0)
	if err != nil {
		t.Fatalf("list product revenue failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("product revenue len want 2 got %d", len(rows))
	}
	if rows[0].ProductID != other.ID || !rows[0].Revenue.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("top product want %d/500 got %d/%s", other.ID, rows[0].ProductID, rows[0].Revenue)
	}

	totals, err := analytics.GetSalesTotals(now.Add(-24*time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("get sales totals failed: %v", err)
	}
	if totals.Orders != 2 || totals.Units != 7 || !totals.Revenue.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("unexpected sales totals: %+v", totals)
	}
}

func TestSaleApplyReturnDerivesStatusFromStoredQuantity(t *testing.T) {
	_, db := setupProductRepositoryTest(t)
	sales := NewSaleRepository(db)
	sale := &models.Sale{OrderNo: "R-1", ProductID: 1, SKUID: 1, ProductName: "p", SKUCode: "P-1", Quantity: 2,
		TotalAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(20)), Channel: constants.SaleChannelPOS,
		Status: constants.SaleStatusCompleted, SoldAt: time.Now().UTC()}
	if err := sales.Create(sale); err != nil {
		t.Fatalf("create sale failed: %v", err)
	}

	steps := []struct {
		quantity int
		affected int64
		status   string
		returned int
	}{
		{1, 1, constants.SaleStatusPartiallyReturned, 1},
		{1, 1, constants.SaleStatusReturned, 2},
		{1, 0, constants.SaleStatusReturned, 2},
	}
	for i, step := range steps {
		affected, err := sales.ApplyReturn(sale.ID, step.quantity, decimal.NewFromInt(10))
		if err != nil {
			t.Fatalf("step %d apply return failed: %v", i, err)
		}
		if affected != step.affected {
			t.Fatalf("step %d affected want %d got %d", i, step.affected, affected)
		}
		got, err := sales.GetByID(sale.ID)
		if err != nil {
			t.Fatalf("step %d reload sale failed: %v", i, err)
		}
		if got.Status != step.status || got.ReturnedQty != step.returned {
			t.Fatalf("step %d want %s/%d got %s/%d", i, step.status, step.returned, got.Status, got.ReturnedQty)
		}
	}
}
