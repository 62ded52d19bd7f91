package service

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stockdesk/internal/config"
	"github.com/stockdesk/internal/models"
	"github.com/stockdesk/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var serviceTestDBSeq int64

func openServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, atomic.AddInt64(&serviceTestDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.MigrateModels()...))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

type inventoryFixture struct {
	db         *gorm.DB
	categories repository.CategoryRepository
	products   repository.ProductRepository
	skus       repository.ProductSKURepository
	movements  repository.StockMovementRepository
	catalog    *CategoryCatalog
	productSvc *ProductService
	category   models.Category
}

func newInventoryFixture(t *testing.T) *inventoryFixture {
	t.Helper()
	db := openServiceTestDB(t)
	f := &inventoryFixture{
		db:         db,
		categories: repository.NewCategoryRepository(db),
		products:   repository.NewProductRepository(db),
		skus:       repository.NewProductSKURepository(db),
		movements:  repository.NewStockMovementRepository(db),
	}
	f.catalog = NewCategoryCatalog(f.categories)
	f.productSvc = NewProductService(f.products, f.skus, f.movements, f.catalog, nil, config.InventoryConfig{
		DefaultLowStockThreshold: 10,
		DefaultMinReorderQty:     5,
		DefaultCurrency:          "cny",
	})
	f.category = models.Category{Slug: "apparel", NameJSON: models.JSON{"zh-CN": "服装"}, IsActive: true}
	require.NoError(t, f.categories.Create(&f.category))
	return f
}
