package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/stockdesk/internal/config"
	"github.com/stockdesk/internal/constants"
	"github.com/stockdesk/internal/logger"
	"github.com/stockdesk/internal/models"
	"github.com/stockdesk/internal/repository"
	"github.com/stockdesk/internal/service"
	"github.com/stockdesk/internal/variant"

	"github.com/shopspring/decimal"
)

type seedProduct struct {
	category   string
	slug       string
	name       string
	brand      string
	prefix     string
	price      string
	cost       string
	attributes []variant.Attribute
	stock      int
}

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	flag.Parse()
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Server.Mode, cfg.Log.LoggerOptions())
	stdLog := logger.StdLogger()
	log := logger.S()

	// 连接数据库
	if err := models.InitDB(cfg.Database, cfg.Log.SQLLevel); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}
	if err := models.InitDefaultAdmin(os.Getenv("SD_DEFAULT_ADMIN_USERNAME"), os.Getenv("SD_DEFAULT_ADMIN_PASSWORD")); err != nil {
		stdLog.Fatalf("Failed to init admin: %v", err)
	}

	var operator models.Admin
	if err := models.DB.Order("id asc").First(&operator).Error; err != nil {
		stdLog.Fatalf("Failed to load admin: %v", err)
	}

	db := models.DB
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	skuRepo := repository.NewProductSKURepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	returnRepo := repository.NewReturnRepository(db)
	catalog := service.NewCategoryCatalog(categoryRepo)
	categorySvc := service.NewCategoryService(categoryRepo, catalog)
	productSvc := service.NewProductService(productRepo, skuRepo, movementRepo, catalog, nil, cfg.Inventory)
	saleSvc := service.NewSaleService(saleRepo, skuRepo, movementRepo, nil)
	returnSvc := service.NewReturnService(returnRepo, saleRepo, skuRepo, movementRepo, nil)

	ctx := context.Background()

	// 添加分类
	categories := []service.CreateCategoryInput{
		{Slug: "apparel", NameJSON: map[string]interface{}{"zh-CN": "服饰", "zh-TW": "服飾", "en-US": "Apparel"}, SortOrder: 30},
		{Slug: "footwear", NameJSON: map[string]interface{}{"zh-CN": "鞋履", "zh-TW": "鞋履", "en-US": "Footwear"}, SortOrder: 20},
		{Slug: "accessories", NameJSON: map[string]interface{}{"zh-CN": "配饰", "zh-TW": "配飾", "en-US": "Accessories"}, SortOrder: 10},
	}
	existing, err := categoryRepo.List()
	if err != nil {
		stdLog.Fatalf("Failed to list categories: %v", err)
	}
	categoryIDs := make(map[string]uint, len(categories))
	for _, category := range existing {
		categoryIDs[category.Slug] = category.ID
	}
	for _, input := range categories {
		if _, ok := categoryIDs[input.Slug]; ok {
			continue
		}
		created, err := categorySvc.Create(ctx, input)
		if err != nil {
			stdLog.Fatalf("Failed to create category %s: %v", input.Slug, err)
		}
		categoryIDs[input.Slug] = created.ID
		log.Infow("seed_category_created", "slug", created.Slug)
	}

	// 添加商品与变体
	products := []seedProduct{
		{
			category: "apparel", slug: "classic-tee", name: "Classic Tee", brand: "Northwind", prefix: "TEE",
			price: "89.00", cost: "32.00", stock: 40,
			attributes: []variant.Attribute{
				{Name: "Size", Options: []string{"S", "M", "L", "XL"}},
				{Name: "Color", Options: []string{"Black", "White", "Navy"}},
			},
		},
		{
			category: "apparel", slug: "fleece-hoodie", name: "Fleece Hoodie", brand: "Northwind", prefix: "HOOD",
			price: "259.00", cost: "110.00", stock: 15,
			attributes: []variant.Attribute{
				{Name: "Size", Options: []string{"M", "L", "XL"}},
				{Name: "Color", Options: []string{"Grey", "Olive"}},
			},
		},
		{
			category: "footwear", slug: "trail-runner", name: "Trail Runner", brand: "Fleetfoot", prefix: "TRL",
			price: "599.00", cost: "280.00", stock: 8,
			attributes: []variant.Attribute{
				{Name: "Size", Options: []string{"40", "41", "42", "43", "44"}},
			},
		},
		{
			category: "accessories", slug: "canvas-tote", name: "Canvas Tote", brand: "Northwind", prefix: "TOTE",
			price: "69.00", cost: "18.00", stock: 60,
		},
	}

	var skuIDs []uint
	for _, item := range products {
		existing, err := productRepo.GetBySlug(item.slug)
		if err != nil {
			stdLog.Fatalf("Failed to query product %s: %v", item.slug, err)
		}
		if existing != nil {
			continue
		}
		var variations []variant.Variation
		if len(item.attributes) > 0 {
			expanded, err := productSvc.ExpandVariants(item.attributes)
			if err != nil {
				stdLog.Fatalf("Failed to expand variants for %s: %v", item.slug, err)
			}
			for i := range expanded {
				expanded[i].InitialStock = item.stock
			}
			variations = expanded
		}
		product, err := productSvc.CreateProduct(ctx, service.CreateProductInput{
			CategoryID: categoryIDs[item.category],
			Slug:       item.slug,
			Name:       item.name,
			Brand:      item.brand,
			SKUPrefix:  item.prefix,
			Attributes: item.attributes,
			Variations: variations,
			Price:      decimal.RequireFromString(item.price),
			Cost:       decimal.RequireFromString(item.cost),
			OperatorID: operator.ID,
		})
		if err != nil {
			stdLog.Fatalf("Failed to create product %s: %v", item.slug, err)
		}
		if len(item.attributes) == 0 && len(product.SKUs) > 0 {
			if _, err := productSvc.AdjustStock(ctx, product.SKUs[0].ID, item.stock, "seed", operator.ID); err != nil {
				stdLog.Fatalf("Failed to stock %s: %v", item.slug, err)
			}
		}
		for _, sku := range product.SKUs {
			skuIDs = append(skuIDs, sku.ID)
		}
		log.Infow("seed_product_created", "slug", product.Slug, "sku_count", len(product.SKUs))
	}

	if len(skuIDs) == 0 {
		log.Infow("seed_skipped_sales", "reason", "products_already_seeded")
		return
	}

	// 添加近 30 天的销售记录，分析页才有数据
	channels := []string{constants.SaleChannelPOS, constants.SaleChannelOnline, constants.SaleChannelWholesale}
	now := time.Now()
	var firstSale *models.Sale
	for day := 0; day < 30; day++ {
		for n := 0; n < 3; n++ {
			idx := (day*7 + n*3) % len(skuIDs)
			soldAt := now.AddDate(0, 0, -day).Add(-time.Duration(n) * time.Hour)
			sale, err := saleSvc.RecordSale(ctx, service.RecordSaleInput{
				SKUID:      skuIDs[idx],
				Quantity:   1 + (day+n)%3,
				Channel:    channels[(day+n)%len(channels)],
				SoldAt:     &soldAt,
				OperatorID: operator.ID,
			})
			if err != nil {
				if errors.Is(err, service.ErrInsufficientStock) {
					continue
				}
				stdLog.Fatalf("Failed to record sale: %v", err)
			}
			if firstSale == nil {
				firstSale = sale
			}
		}
	}

	// 添加一条已通过的退货
	if firstSale != nil {
		ret, err := returnSvc.CreateReturn(service.CreateReturnInput{
			SaleID:     firstSale.ID,
			Quantity:   1,
			Reason:     "size mismatch",
			Condition:  constants.ReturnConditionResellable,
			OperatorID: operator.ID,
		})
		if err != nil {
			stdLog.Fatalf("Failed to create return: %v", err)
		}
		if _, err := returnSvc.ApproveReturn(ctx, ret.ID, operator.ID, "seed"); err != nil {
			stdLog.Fatalf("Failed to approve return: %v", err)
		}
	}

	log.Infow("seed_completed", "sku_count", len(skuIDs))
}
