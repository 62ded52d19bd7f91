package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stockdesk/internal/config"
	"github.com/stockdesk/internal/constants"
	"github.com/stockdesk/internal/models"
	"github.com/stockdesk/internal/repository"
	"github.com/stockdesk/internal/variant"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProductExpandsAttributes(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()

	product, err := f.productSvc.CreateProduct(ctx, CreateProductInput{
		CategoryID: f.category.ID,
		Name:       "Basic Tee",
		Attributes: []variant.Attribute{
			{Name: "Color", Options: []string{"Red", "Blue"}},
			{Name: "Size", Options: []string{"S", "M", "L"}},
		},
		Price: decimal.RequireFromString("19.90"),
		Cost:  decimal.RequireFromString("8.00"),
	})
	require.NoError(t, err)

	assert.Equal(t, "basic-tee", product.Slug)
	assert.Equal(t, "BASIC-TEE", product.SKUPrefix)
	assert.Equal(t, "CNY", product.Currency)
	require.Len(t, product.SKUs, 6)

	codes := make([]string, 0, len(product.SKUs))
	for _, sku := range product.SKUs {
		codes = append(codes, sku.SKUCode)
		assert.Equal(t, "19.90", sku.PriceAmount.String())
		assert.Equal(t, "8.00", sku.CostAmount.String())
		assert.Equal(t, 10, sku.LowStockThreshold)
		assert.Equal(t, 5, sku.MinReorderQty)
		assert.True(t, sku.IsActive)
	}
	assert.Equal(t, []string{
		"BASIC-TEE-RED-S", "BASIC-TEE-RED-M", "BASIC-TEE-RED-L",
		"BASIC-TEE-BLUE-S", "BASIC-TEE-BLUE-M", "BASIC-TEE-BLUE-L",
	}, codes)
}

func TestCreateProductWithoutAttributesUsesDefaultSKU(t *testing.T) {
	f := newInventoryFixture(t)

	product, err := f.productSvc.CreateProduct(context.Background(), CreateProductInput{
		CategoryID: f.category.ID,
		Name:       "Gift Box",
		Price:      decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	require.Len(t, product.SKUs, 1)
	assert.Equal(t, "DEFAULT", product.SKUs[0].SKUCode)
	assert.Empty(t, product.SKUs[0].Options)
}

func TestCreateProductEditedVariationsRecordInitialStock(t *testing.T) {
	f := newInventoryFixture(t)

	variations, err := f.productSvc.ExpandVariants([]variant.Attribute{{Name: "Color", Options: []string{"Red", "Blue"}}})
	require.NoError(t, err)
	variations[0].InitialStock = 12
	variations[1].IsActive = false

	product, err := f.productSvc.CreateProduct(context.Background(), CreateProductInput{
		CategoryID: f.category.ID,
		Name:       "Mug",
		Attributes: []variant.Attribute{{Name: "Color", Options: []string{"Red", "Blue"}}},
		Variations: variations,
		OperatorID: 7,
	})
	require.NoError(t, err)
	require.Len(t, product.SKUs, 2)
	assert.Equal(t, 12, product.SKUs[0].Stock)
	assert.False(t, product.SKUs[1].IsActive)

	movements, total, err := f.productSvc.ListMovements(repository.StockMovementFilter{ProductID: product.ID})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, constants.StockMovementInitial, movements[0].Type)
	assert.Equal(t, 12, movements[0].Quantity)
	assert.Equal(t, uint(7), movements[0].OperatorID)
}

func TestCreateProductValidation(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()

	_, err := f.productSvc.CreateProduct(ctx, CreateProductInput{CategoryID: f.category.ID, Name: "  "})
	assert.True(t, errors.Is(err, ErrProductInvalid))

	_, err = f.productSvc.CreateProduct(ctx, CreateProductInput{CategoryID: 9999, Name: "Orphan"})
	assert.True(t, errors.Is(err, ErrCategoryNotFound))

	_, err = f.productSvc.CreateProduct(ctx, CreateProductInput{
		CategoryID: f.category.ID,
		Name:       "Dup",
		Attributes: []variant.Attribute{
			{Name: "Color", Options: []string{"Red"}},
			{Name: "color", Options: []string{"Blue"}},
		},
	})
	assert.True(t, errors.Is(err, variant.ErrValidation))

	_, err = f.productSvc.CreateProduct(ctx, CreateProductInput{
		CategoryID: f.category.ID,
		Name:       "Empty",
		Attributes: []variant.Attribute{{Name: "Color"}},
	})
	assert.True(t, errors.Is(err, variant.ErrValidation))

	_, err = f.productSvc.CreateProduct(ctx, CreateProductInput{CategoryID: f.category.ID, Name: "Same", Slug: "same"})
	require.NoError(t, err)
	_, err = f.productSvc.CreateProduct(ctx, CreateProductInput{CategoryID: f.category.ID, Name: "Other", Slug: "same"})
	assert.True(t, errors.Is(err, ErrSlugExists))
}

func TestRegenerateVariationsDiscardsPreviousSKUs(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()

	variations, err := f.productSvc.ExpandVariants([]variant.Attribute{{Name: "Size", Options: []string{"S", "M"}}})
	require.NoError(t, err)
	variations[0].InitialStock = 4
	variations[0].LowStockThreshold = 2

	product, err := f.productSvc.CreateProduct(ctx, CreateProductInput{
		CategoryID: f.category.ID,
		Name:       "Hoodie",
		SKUPrefix:  "hd",
		Attributes: []variant.Attribute{{Name: "Size", Options: []string{"S", "M"}}},
		Variations: variations,
	})
	require.NoError(t, err)

	regenerated, err := f.productSvc.RegenerateVariations(ctx, product.ID, []variant.Attribute{
		{Name: "Size", Options: []string{"S", "M", "L"}},
	}, 1)
	require.NoError(t, err)
	require.Len(t, regenerated.SKUs, 3)
	for _, sku := range regenerated.SKUs {
		assert.Equal(t, 0, sku.Stock)
		assert.Equal(t, 10, sku.LowStockThreshold)
	}
	assert.Equal(t, "HD-S", regenerated.SKUs[0].SKUCode)
	assert.Len(t, regenerated.Attributes, 1)

	movements, _, err := f.productSvc.ListMovements(repository.StockMovementFilter{
		ProductID: product.ID,
		Type:      constants.StockMovementRegenerate,
	})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, -4, movements[0].Quantity)

	var retired []models.ProductSKU
	require.NoError(t, f.db.Unscoped().Where("product_id = ? AND deleted_at IS NOT NULL", product.ID).Order("id ASC").Find(&retired).Error)
	require.Len(t, retired, 2)
	for _, sku := range retired {
		assert.Equal(t, fmt.Sprintf("HD-%s~%d", sku.Options["size"], sku.ID), sku.SKUCode)
		assert.Equal(t, 0, sku.Stock)
		assert.False(t, sku.IsActive)
	}
}

func TestAdjustStock(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()

	product, err := f.productSvc.CreateProduct(ctx, CreateProductInput{CategoryID: f.category.ID, Name: "Pen"})
	require.NoError(t, err)
	skuID := product.SKUs[0].ID

	_, err = f.productSvc.AdjustStock(ctx, skuID, 0, "noop", 1)
	assert.True(t, errors.Is(err, ErrStockDeltaInvalid))

	sku, err := f.productSvc.AdjustStock(ctx, skuID, 15, "restock", 1)
	require.NoError(t, err)
	assert.Equal(t, 15, sku.Stock)

	_, err = f.productSvc.AdjustStock(ctx, skuID, -20, "shrinkage", 1)
	assert.True(t, errors.Is(err, ErrInsufficientStock))

	sku, err = f.productSvc.AdjustStock(ctx, skuID, -5, "shrinkage", 1)
	require.NoError(t, err)
	assert.Equal(t, 10, sku.Stock)

	movements, total, err := f.productSvc.ListMovements(repository.StockMovementFilter{SKUID: skuID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, 10, movements[0].StockAfter)
	assert.Equal(t, -5, movements[0].Quantity)

	_, err = f.productSvc.AdjustStock(ctx, 9999, 1, "", 1)
	assert.True(t, errors.Is(err, ErrSKUNotFound))
}

func TestUpdateSKUKeepsStock(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()

	product, err := f.productSvc.CreateProduct(ctx, CreateProductInput{CategoryID: f.category.ID, Name: "Lamp"})
	require.NoError(t, err)
	skuID := product.SKUs[0].ID
	_, err = f.productSvc.AdjustStock(ctx, skuID, 3, "", 1)
	require.NoError(t, err)

	price := decimal.RequireFromString("12.5")
	threshold := 1
	updated, err := f.productSvc.UpdateSKU(skuID, UpdateSKUInput{Price: &price, LowStockThreshold: &threshold})
	require.NoError(t, err)
	assert.Equal(t, "12.50", updated.PriceAmount.String())
	assert.Equal(t, 1, updated.LowStockThreshold)
	assert.Equal(t, 3, updated.Stock)

	negative := -1
	_, err = f.productSvc.UpdateSKU(skuID, UpdateSKUInput{MinReorderQty: &negative})
	assert.True(t, errors.Is(err, variant.ErrValidation))
}

func TestBuildSKUCodesResolvesCollisions(t *testing.T) {
	variations := []variant.Variation{
		variant.NewVariation(map[string]string{"color": "红"}),
		variant.NewVariation(map[string]string{"color": "蓝"}),
		variant.NewVariation(map[string]string{"color": "Black Ink"}),
	}
	codes := buildSKUCodes("PEN", []string{"color"}, variations)
	assert.Equal(t, []string{"PEN", "PEN-2", "PEN-BLACK-INK"}, codes)
	assert.Equal(t, "SKU", ResolveSKUPrefix("", "  "))
	assert.Equal(t, "ABCDEFGHIJKLMNOP", ResolveSKUPrefix("abcdefghijklmnopqrstu", ""))
}

func TestCreateProductRejectsMismatchedVariations(t *testing.T) {
	f := newInventoryFixture(t)
	ctx := context.Background()

	colors, err := f.productSvc.ExpandVariants([]variant.Attribute{{Name: "Color", Options: []string{"Red", "Blue"}}})
	require.NoError(t, err)

	_, err = f.productSvc.CreateProduct(ctx, CreateProductInput{
		CategoryID: f.category.ID,
		Name:       "Tee",
		Attributes: []variant.Attribute{{Name: "Size", Options: []string{"S", "M"}}},
		Variations: colors,
	})
	assert.True(t, errors.Is(err, ErrVariationsStale))

	_, err = f.productSvc.CreateProduct(ctx, CreateProductInput{
		CategoryID: f.category.ID,
		Name:       "Tee",
		Attributes: []variant.Attribute{{Name: "Color", Options: []string{"Red", "Blue", "Green"}}},
		Variations: colors,
	})
	assert.True(t, errors.Is(err, ErrVariationsStale))

	_, err = f.productSvc.CreateProduct(ctx, CreateProductInput{
		CategoryID: f.category.ID,
		Name:       "Plain",
		Variations: colors[:1],
	})
	assert.True(t, errors.Is(err, ErrVariationsStale))
}

func TestExpansionRespectsConfiguredLimit(t *testing.T) {
	f := newInventoryFixture(t)
	capped := NewProductService(f.products, f.skus, f.movements, f.catalog, nil, config.InventoryConfig{MaxVariations: 4})
	attrs := []variant.Attribute{
		{Name: "Color", Options: []string{"Red", "Blue"}},
		{Name: "Size", Options: []string{"S", "M", "L"}},
	}

	_, err := capped.ExpandVariants(attrs)
	var verr *variant.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, variant.ReasonTooManyVariations, verr.Reason)
	assert.Equal(t, 4, verr.Limit)

	_, err = capped.CreateProduct(context.Background(), CreateProductInput{CategoryID: f.category.ID, Name: "Wide", Attributes: attrs})
	assert.True(t, errors.Is(err, variant.ErrValidation))

	variations, err := f.productSvc.ExpandVariants(attrs)
	require.NoError(t, err)
	assert.Len(t, variations, 6)
}
