//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stockdesk/internal/constants"
	"github.com/stockdesk/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.ReturnRequest{},
		&models.Sale{},
		&models.ProductSKU{},
		&models.Product{},
		&models.Category{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.ProductSKU{},
		&models.Sale{},
		&models.ReturnRequest{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresLocalizedCategoryAndProductSearch(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	categoryRepo := NewCategoryRepository(db)
	category := &models.Category{
		Slug:     "pg-outerwear",
		NameJSON: models.JSON{"zh-CN": "外套", "en-US": "Outerwear"},
		IsActive: true,
	}
	if err := categoryRepo.Create(category); err != nil {
		t.Fatalf("create category failed: %v", err)
	}

	for _, keyword := range []string{"外套", "outer"} {
		rows, err := categoryRepo.Search(keyword)
		if err != nil {
			t.Fatalf("category search %q failed: %v", keyword, err)
		}
		if len(rows) != 1 || rows[0].ID != category.ID {
			t.Fatalf("category search %q want 1 got %d", keyword, len(rows))
		}
	}

	productRepo := NewProductRepository(db)
	product := &models.Product{
		CategoryID:  category.ID,
		Slug:        "pg-rain-jacket",
		Name:        "Rain Jacket",
		Brand:       "Northwind",
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(399)),
		Currency:    "CNY",
		IsActive:    true,
	}
	if err := productRepo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	sku := &models.ProductSKU{
		ProductID:         product.ID,
		SKUCode:           "RJ-NAVY-M",
		PriceAmount:       models.NewMoneyFromDecimal(decimal.NewFromInt(399)),
		Stock:             3,
		LowStockThreshold: 5,
		IsActive:          true,
	}
	if err := db.Create(sku).Error; err != nil {
		t.Fatalf("create sku failed: %v", err)
	}

	for _, keyword := range []string{"jacket", "NORTHWIND", "navy-m"} {
		rows, total, err := productRepo.List(ProductListFilter{Page: 1, PageSize: 10, Search: keyword})
		if err != nil {
			t.Fatalf("product search %q failed: %v", keyword, err)
		}
		if total != 1 || len(rows) != 1 {
			t.Fatalf("product search %q want 1 got total=%d len=%d", keyword, total, len(rows))
		}
	}

	rows, _, err := productRepo.List(ProductListFilter{Page: 1, PageSize: 10, StockStatus: constants.StockStatusLow})
	if err != nil {
		t.Fatalf("product low stock filter failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("product low stock filter want 1 got %d", len(rows))
	}
}

func TestPostgresAnalyticsQueries(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewAnalyticsRepository(db)
	now := time.Now().UTC().Truncate(time.Second)

	product := &models.Product{
		CategoryID: 1,
		Slug:       "pg-analytics-product",
		Name:       "分析商品",
		CostAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
		Currency:   "CNY",
		IsActive:   true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	sku := &models.ProductSKU{
		ProductID:         product.ID,
		SKUCode:           "PG-AN-1",
		Stock:             4,
		LowStockThreshold: 5,
		IsActive:          true,
	}
	if err := db.Create(sku).Error; err != nil {
		t.Fatalf("create sku failed: %v", err)
	}

	sale := &models.Sale{
		OrderNo:     "PG-SALE-001",
		ProductID:   product.ID,
		SKUID:       sku.ID,
		ProductName: product.Name,
		SKUCode:     sku.SKUCode,
		Quantity:    2,
		UnitPrice:   models.NewMoneyFromDecimal(decimal.NewFromInt(120)),
		UnitCost:    models.NewMoneyFromDecimal(decimal.NewFromInt(30)),
		TotalAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(240)),
		Currency:    "CNY",
		Channel:     constants.SaleChannelPOS,
		Status:      constants.SaleStatusPartiallyReturned,
		SoldAt:      now,
	}
	if err := db.Create(sale).Error; err != nil {
		t.Fatalf("create sale failed: %v", err)
	}

	processedAt := now
	ret := &models.ReturnRequest{
		ReturnNo:     "PG-RET-001",
		SaleID:       sale.ID,
		ProductID:    product.ID,
		SKUID:        sku.ID,
		Quantity:     1,
		Condition:    constants.ReturnConditionResellable,
		RefundAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(120)),
		Status:       constants.ReturnStatusApproved,
		ProcessedAt:  &processedAt,
	}
	if err := db.Create(ret).Error; err != nil {
		t.Fatalf("create return failed: %v", err)
	}

	startAt := now.Add(-time.Hour)
	endAt := now.Add(time.Hour)

	totals, err := repo.GetSalesTotals(startAt, endAt)
	if err != nil {
		t.Fatalf("get sales totals failed: %v", err)
	}
	if totals.Orders != 1 || totals.Units != 2 || !totals.Revenue.Equal(decimal.NewFromInt(240)) || !totals.Cost.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("unexpected sales totals: %+v", totals)
	}

	returns, err := repo.GetReturnTotals(startAt, endAt)
	if err != nil {
		t.Fatalf("get return totals failed: %v", err)
	}
	if returns.Returns != 1 || returns.Units != 1 || !returns.Refund.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("unexpected return totals: %+v", returns)
	}

	points, err := repo.ListSalePoints(startAt, endAt)
	if err != nil {
		t.Fatalf("list sale points failed: %v", err)
	}
	if len(points) != 1 || !points[0].SoldAt.Equal(now) {
		t.Fatalf("sale points want 1 at %v got %+v", now, points)
	}

	top, err := repo.ListProductRevenue(startAt, endAt, 5)
	if err != nil {
		t.Fatalf("list product revenue failed: %v", err)
	}
	if len(top) != 1 || top[0].ProductName != "分析商品" {
		t.Fatalf("top products want 分析商品 got %+v", top)
	}

	stats, err := repo.GetStockStats()
	if err != nil {
		t.Fatalf("get stock stats failed: %v", err)
	}
	if stats.ActiveSKUs != 1 || stats.LowStock != 1 || !stats.InventoryValue.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("unexpected stock stats: %+v", stats)
	}
}
