package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stockdesk/internal/config"
	"github.com/stockdesk/internal/constants"
	"github.com/stockdesk/internal/logger"
	"github.com/stockdesk/internal/models"
	"github.com/stockdesk/internal/queue"
	"github.com/stockdesk/internal/repository"
	"github.com/stockdesk/internal/variant"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductService 商品与 SKU 业务服务
type ProductService struct {
	productRepo  repository.ProductRepository
	skuRepo      repository.ProductSKURepository
	movementRepo repository.StockMovementRepository
	catalog      *CategoryCatalog
	queueClient  *queue.Client
	defaults     variant.Defaults
	currency     string
	now          func() time.Time
}

// NewProductService 创建商品服务
func NewProductService(
	productRepo repository.ProductRepository,
	skuRepo repository.ProductSKURepository,
	movementRepo repository.StockMovementRepository,
	catalog *CategoryCatalog,
	queueClient *queue.Client,
	inventory config.InventoryConfig,
) *ProductService {
	defaults := variant.DefaultDefaults()
	if inventory.DefaultLowStockThreshold > 0 {
		defaults.LowStockThreshold = inventory.DefaultLowStockThreshold
	}
	if inventory.DefaultMinReorderQty > 0 {
		defaults.MinReorderQty = inventory.DefaultMinReorderQty
	}
	if inventory.MaxVariations > 0 {
		defaults.MaxVariations = inventory.MaxVariations
	}
	currency := strings.ToUpper(strings.TrimSpace(inventory.DefaultCurrency))
	if currency == "" {
		currency = "CNY"
	}
	return &ProductService{
		productRepo:  productRepo,
		skuRepo:      skuRepo,
		movementRepo: movementRepo,
		catalog:      catalog,
		queueClient:  queueClient,
		defaults:     defaults,
		currency:     currency,
		now:          time.Now,
	}
}

// VariantDefaults 返回展开变体时使用的默认元数据
func (s *ProductService) VariantDefaults() variant.Defaults {
	return s.defaults
}

// ExpandVariants 按配置默认值预览变体展开结果
func (s *ProductService) ExpandVariants(attrs []variant.Attribute) ([]variant.Variation, error) {
	return variant.ExpandWithDefaults(attrs, s.defaults)
}

// CreateProductInput 创建商品输入
// Variations 为 nil 时按 Attributes 展开；两者都为空时生成单个 DEFAULT SKU。
type CreateProductInput struct {
	CategoryID     uint
	Slug           string
	Name           string
	Brand          string
	Description    string
	SKUPrefix      string
	Attributes     []variant.Attribute
	Variations     []variant.Variation
	Price          decimal.Decimal
	CompareAtPrice decimal.Decimal
	Cost           decimal.Decimal
	Currency       string
	Images         []string
	Tags           []string
	IsActive       *bool
	SortOrder      int
	OperatorID     uint
}

// UpdateProductInput 更新商品基础信息（不触碰 SKU）
type UpdateProductInput struct {
	CategoryID     uint
	Slug           string
	Name           string
	Brand          string
	Description    string
	SKUPrefix      string
	Price          decimal.Decimal
	CompareAtPrice decimal.Decimal
	Cost           decimal.Decimal
	Currency       string
	Images         []string
	Tags           []string
	IsActive       *bool
	SortOrder      int
}

// UpdateSKUInput 编辑单个 SKU 的运营元数据
type UpdateSKUInput struct {
	Price             *decimal.Decimal
	Cost              *decimal.Decimal
	LowStockThreshold *int
	MinReorderQty     *int
	Weight            *variant.Weight
	Dimensions        *variant.Dimensions
	IsActive          *bool
}

// List 商品列表
func (s *ProductService) List(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	filter.WithCategory = true
	return s.productRepo.List(filter)
}

// Get 商品详情
func (s *ProductService) Get(id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// CreateProduct 在一个事务内创建商品、SKU 与初始库存流水
func (s *ProductService) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrProductInvalid)
	}
	if err := validateMoneyInputs(input.Price, input.CompareAtPrice, input.Cost); err != nil {
		return nil, err
	}
	if err := s.ensureCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	variations := input.Variations
	if variations == nil {
		expanded, err := variant.ExpandWithDefaults(input.Attributes, s.defaults)
		if err != nil {
			return nil, err
		}
		variations = expanded
	} else if err := s.validateSuppliedVariations(input.Attributes, variations); err != nil {
		return nil, err
	}
	if len(variations) == 0 {
		variations = []variant.Variation{s.defaultVariation()}
	}
	if err := validateVariations(variations); err != nil {
		return nil, err
	}

	slug, err := s.resolveSlug(input.Slug, name, nil)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		CategoryID:      input.CategoryID,
		Slug:            slug,
		Name:            name,
		Brand:           strings.TrimSpace(input.Brand),
		Description:     input.Description,
		SKUPrefix:       ResolveSKUPrefix(input.SKUPrefix, slug),
		Attributes:      models.AttributeList(cloneAttributes(input.Attributes)),
		PriceAmount:     models.NewMoneyFromDecimal(input.Price),
		CompareAtAmount: models.NewMoneyFromDecimal(input.CompareAtPrice),
		CostAmount:      models.NewMoneyFromDecimal(input.Cost),
		Currency:        s.resolveCurrency(input.Currency),
		Images:          models.StringArray(compactStrings(input.Images)),
		Tags:            models.StringArray(compactStrings(input.Tags)),
		IsActive:        true,
		SortOrder:       input.SortOrder,
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	err = s.productRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.productRepo.WithTx(tx).Create(product); err != nil {
			return err
		}
		skus, err := s.writeSKUs(tx, product, variations, constants.StockMovementInitial, input.OperatorID)
		if err != nil {
			return err
		}
		product.SKUs = skus
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("product_created",
		"product_id", product.ID,
		"slug", product.Slug,
		"sku_count", len(product.SKUs),
		"operator_id", input.OperatorID,
	)
	return s.Get(product.ID)
}

// RegenerateVariations 按新属性重建全部 SKU；旧 SKU 软删除并清零库存，元数据不再沿用
func (s *ProductService) RegenerateVariations(ctx context.Context, productID uint, attrs []variant.Attribute, operatorID uint) (*models.Product, error) {
	product, err := s.Get(productID)
	if err != nil {
		return nil, err
	}
	variations, err := variant.ExpandWithDefaults(attrs, s.defaults)
	if err != nil {
		return nil, err
	}
	if len(variations) == 0 {
		variations = []variant.Variation{s.defaultVariation()}
	}

	previous := product.SKUs
	err = s.productRepo.Transaction(func(tx *gorm.DB) error {
		movements := make([]models.StockMovement, 0, len(previous))
		for _, sku := range previous {
			if sku.Stock == 0 {
				continue
			}
			movements = append(movements, models.StockMovement{
				SKUID:      sku.ID,
				ProductID:  product.ID,
				Type:       constants.StockMovementRegenerate,
				Quantity:   -sku.Stock,
				StockAfter: 0,
				RefType:    "product",
				RefID:      product.ID,
				Reason:     "variations regenerated",
				OperatorID: operatorID,
			})
		}
		if err := s.movementRepo.WithTx(tx).CreateBatch(movements); err != nil {
			return err
		}
		if _, err := s.skuRepo.WithTx(tx).RetireByProduct(product.ID, s.now()); err != nil {
			return err
		}

		product.Attributes = models.AttributeList(cloneAttributes(attrs))
		product.SKUs = nil
		if err := s.productRepo.WithTx(tx).Update(product); err != nil {
			return err
		}
		_, err := s.writeSKUs(tx, product, variations, constants.StockMovementInitial, operatorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("product_variations_regenerated",
		"product_id", product.ID,
		"previous_sku_count", len(previous),
		"sku_count", len(variations),
		"operator_id", operatorID,
	)
	return s.Get(product.ID)
}

// Update 更新商品基础信息
func (s *ProductService) Update(ctx context.Context, id uint, input UpdateProductInput) (*models.Product, error) {
	product, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrProductInvalid)
	}
	if err := validateMoneyInputs(input.Price, input.CompareAtPrice, input.Cost); err != nil {
		return nil, err
	}
	if err := s.ensureCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}
	slug, err := s.resolveSlug(input.Slug, name, &id)
	if err != nil {
		return nil, err
	}

	product.CategoryID = input.CategoryID
	product.Slug = slug
	product.Name = name
	product.Brand = strings.TrimSpace(input.Brand)
	product.Description = input.Description
	product.SKUPrefix = ResolveSKUPrefix(input.SKUPrefix, slug)
	product.PriceAmount = models.NewMoneyFromDecimal(input.Price)
	product.CompareAtAmount = models.NewMoneyFromDecimal(input.CompareAtPrice)
	product.CostAmount = models.NewMoneyFromDecimal(input.Cost)
	product.Currency = s.resolveCurrency(input.Currency)
	product.Images = models.StringArray(compactStrings(input.Images))
	product.Tags = models.StringArray(compactStrings(input.Tags))
	product.SortOrder = input.SortOrder
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete 软删除商品及其 SKU
func (s *ProductService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.productRepo.Delete(id)
}

// GetSKU 获取 SKU
func (s *ProductService) GetSKU(id uint) (*models.ProductSKU, error) {
	sku, err := s.skuRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if sku == nil {
		return nil, ErrSKUNotFound
	}
	return sku, nil
}

// UpdateSKU 编辑单个 SKU 的价格与运营元数据
func (s *ProductService) UpdateSKU(id uint, input UpdateSKUInput) (*models.ProductSKU, error) {
	sku, err := s.GetSKU(id)
	if err != nil {
		return nil, err
	}
	current := sku.ToVariation()
	if input.LowStockThreshold != nil {
		current.LowStockThreshold = *input.LowStockThreshold
	}
	if input.MinReorderQty != nil {
		current.MinReorderQty = *input.MinReorderQty
	}
	if input.Weight != nil {
		current.Weight = *input.Weight
	}
	if input.Dimensions != nil {
		current.Dimensions = *input.Dimensions
	}
	if input.IsActive != nil {
		current.IsActive = *input.IsActive
	}
	if err := current.Validate(); err != nil {
		return nil, err
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price must not be negative", ErrProductInvalid)
		}
		sku.PriceAmount = models.NewMoneyFromDecimal(*input.Price)
	}
	if input.Cost != nil {
		if input.Cost.IsNegative() {
			return nil, fmt.Errorf("%w: cost must not be negative", ErrProductInvalid)
		}
		sku.CostAmount = models.NewMoneyFromDecimal(*input.Cost)
	}

	stock := sku.Stock
	sku.ApplyVariation(current)
	sku.Stock = stock
	sku.Product = nil
	if err := s.skuRepo.Update(sku); err != nil {
		return nil, err
	}
	return s.GetSKU(id)
}

// AdjustStock 人工调整库存，结果为负时返回 ErrInsufficientStock
func (s *ProductService) AdjustStock(ctx context.Context, skuID uint, delta int, reason string, operatorID uint) (*models.ProductSKU, error) {
	if delta == 0 {
		return nil, ErrStockDeltaInvalid
	}
	sku, err := s.GetSKU(skuID)
	if err != nil {
		return nil, err
	}

	var updated *models.ProductSKU
	err = s.productRepo.Transaction(func(tx *gorm.DB) error {
		skuRepo := s.skuRepo.WithTx(tx)
		affected, err := skuRepo.AdjustStock(sku.ID, delta)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrInsufficientStock
		}
		updated, err = skuRepo.GetByID(sku.ID)
		if err != nil {
			return err
		}
		if updated == nil {
			return ErrSKUNotFound
		}
		return s.movementRepo.WithTx(tx).Create(&models.StockMovement{
			SKUID:      sku.ID,
			ProductID:  sku.ProductID,
			Type:       constants.StockMovementAdjustment,
			Quantity:   delta,
			StockAfter: updated.Stock,
			Reason:     truncateRunes(strings.TrimSpace(reason), 255),
			OperatorID: operatorID,
		})
	})
	if err != nil {
		return nil, err
	}

	if updated.Stock <= updated.LowStockThreshold {
		s.enqueueLowStockCheck([]uint{updated.ID}, "stock_adjusted")
	}
	return updated, nil
}

// ListMovements 库存流水列表
func (s *ProductService) ListMovements(filter repository.StockMovementFilter) ([]models.StockMovement, int64, error) {
	return s.movementRepo.List(filter)
}

func (s *ProductService) writeSKUs(tx *gorm.DB, product *models.Product, variations []variant.Variation, movementType string, operatorID uint) ([]models.ProductSKU, error) {
	order := attributeOrder(product.Attributes, variations)
	codes := buildSKUCodes(product.SKUPrefix, order, variations)
	skus := make([]models.ProductSKU, 0, len(variations))
	for i, v := range variations {
		sku := models.ProductSKU{
			ProductID:   product.ID,
			SKUCode:     codes[i],
			PriceAmount: product.PriceAmount,
			CostAmount:  product.CostAmount,
			SortOrder:   i,
		}
		sku.ApplyVariation(v)
		skus = append(skus, sku)
	}
	if err := s.skuRepo.WithTx(tx).CreateBatch(skus); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSKUCodeConflict
		}
		return nil, err
	}

	movements := make([]models.StockMovement, 0, len(skus))
	for _, sku := range skus {
		if sku.Stock <= 0 {
			continue
		}
		movements = append(movements, models.StockMovement{
			SKUID:      sku.ID,
			ProductID:  product.ID,
			Type:       movementType,
			Quantity:   sku.Stock,
			StockAfter: sku.Stock,
			RefType:    "product",
			RefID:      product.ID,
			OperatorID: operatorID,
		})
	}
	if err := s.movementRepo.WithTx(tx).CreateBatch(movements); err != nil {
		return nil, err
	}
	return skus, nil
}

func (s *ProductService) defaultVariation() variant.Variation {
	v := variant.NewVariation(nil)
	v.LowStockThreshold = s.defaults.LowStockThreshold
	v.MinReorderQty = s.defaults.MinReorderQty
	v.InitialStock = s.defaults.InitialStock
	v.Weight.Unit = s.defaults.WeightUnit
	v.Dimensions.Unit = s.defaults.DimensionUnit
	return v
}

func (s *ProductService) ensureCategory(ctx context.Context, categoryID uint) error {
	if categoryID == 0 {
		return ErrCategoryNotFound
	}
	if s.catalog == nil {
		return nil
	}
	category, err := s.catalog.Lookup(ctx, categoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *ProductService) resolveSlug(raw, name string, excludeID *uint) (string, error) {
	slug := slugify(raw)
	if slug == "" {
		slug = slugify(name)
	}
	if slug == "" {
		slug = "p-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	}
	count, err := s.productRepo.CountBySlug(slug, excludeID)
	if err != nil {
		return "", err
	}
	if count > 0 {
		return "", ErrSlugExists
	}
	return slug, nil
}

func (s *ProductService) resolveCurrency(raw string) string {
	currency := strings.ToUpper(strings.TrimSpace(raw))
	if currency == "" {
		return s.currency
	}
	return currency
}

func (s *ProductService) enqueueLowStockCheck(skuIDs []uint, source string) {
	if s.queueClient == nil || len(skuIDs) == 0 {
		return
	}
	if err := s.queueClient.EnqueueLowStockCheck(queue.LowStockCheckPayload{SKUIDs: skuIDs, Source: source}); err != nil {
		logger.Warnw("low_stock_check_enqueue_failed", "sku_ids", skuIDs, "source", source, "error", err)
	}
}

// validateSuppliedVariations 调用方自带变体时，属性本身须可展开，且变体须与属性的全部组合一一对应
func (s *ProductService) validateSuppliedVariations(attrs []variant.Attribute, variations []variant.Variation) error {
	if len(attrs) > 0 {
		if _, err := variant.ExpandWithDefaults(attrs, s.defaults); err != nil {
			return err
		}
	}
	if !variant.Conforms(attrs, variations) {
		return fmt.Errorf("%w: variations do not match attributes", ErrVariationsStale)
	}
	return nil
}

func validateVariations(variations []variant.Variation) error {
	seen := make(map[string]struct{}, len(variations))
	for _, v := range variations {
		if err := v.Validate(); err != nil {
			return err
		}
		key := v.Key()
		if _, ok := seen[key]; ok {
			return fmt.Errorf("%w: duplicate variation %q", ErrProductInvalid, key)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func validateMoneyInputs(values ...decimal.Decimal) error {
	for _, v := range values {
		if v.IsNegative() {
			return fmt.Errorf("%w: amount must not be negative", ErrProductInvalid)
		}
	}
	return nil
}

func cloneAttributes(attrs []variant.Attribute) []variant.Attribute {
	out := make([]variant.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		out = append(out, variant.Attribute{
			Name:    attr.Name,
			Options: append([]string(nil), attr.Options...),
		})
	}
	return out
}

func compactStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func slugify(raw string) string {
	return strings.ToLower(SanitizeSKUSegment(raw))
}

func truncateRunes(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
