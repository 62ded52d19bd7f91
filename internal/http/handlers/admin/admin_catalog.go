package admin

import (
	"strings"

	"github.com/stockdesk/internal/http/response"
	"github.com/stockdesk/internal/repository"
	"github.com/stockdesk/internal/service"
	"github.com/stockdesk/internal/variant"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ExpandVariantsRequest 变体预览请求
type ExpandVariantsRequest struct {
	Attributes []variant.Attribute `json:"attributes"`
}

// ExpandVariants 预览属性的全部组合，不写库
func (h *Handler) ExpandVariants(c *gin.Context) {
	var req ExpandVariantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	variations, err := h.ProductService.ExpandVariants(req.Attributes)
	if err != nil {
		respondWithMappedError(c, err, productErrorRules, response.CodeInternal, "error.variant_expand_failed")
		return
	}
	response.Success(c, gin.H{
		"count":      len(variations),
		"variations": variations,
	})
}

// CategoryRequest 分类创建/更新请求
type CategoryRequest struct {
	Slug      string                 `json:"slug" binding:"required"`
	NameJSON  map[string]interface{} `json:"name" binding:"required"`
	Icon      string                 `json:"icon"`
	SortOrder int                    `json:"sort_order"`
	IsActive  *bool                  `json:"is_active"`
}

func (r CategoryRequest) toInput() service.CreateCategoryInput {
	return service.CreateCategoryInput{
		Slug:      r.Slug,
		NameJSON:  r.NameJSON,
		Icon:      r.Icon,
		SortOrder: r.SortOrder,
		IsActive:  r.IsActive,
	}
}

// GetAdminCategories 获取分类列表，带 keyword 时直接查库
func (h *Handler) GetAdminCategories(c *gin.Context) {
	if keyword := strings.TrimSpace(c.Query("keyword")); keyword != "" {
		categories, err := h.CategoryService.Search(keyword)
		if err != nil {
			respondError(c, response.CodeInternal, "error.category_fetch_failed", err)
			return
		}
		response.Success(c, categories)
		return
	}
	categories, err := h.CategoryService.List(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.category_fetch_failed", err)
		return
	}
	response.Success(c, categories)
}

// GetAdminCategory 获取分类详情
func (h *Handler) GetAdminCategory(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	category, err := h.CategoryService.Get(c.Request.Context(), id)
	if err != nil {
		respondWithMappedError(c, err, categoryErrorRules, response.CodeInternal, "error.category_fetch_failed")
		return
	}
	response.Success(c, category)
}

// CreateCategory 创建分类
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	category, err := h.CategoryService.Create(c.Request.Context(), req.toInput())
	if err != nil {
		respondWithMappedError(c, err, categoryErrorRules, response.CodeInternal, "error.category_create_failed")
		return
	}
	response.Success(c, category)
}

// UpdateCategory 更新分类
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	category, err := h.CategoryService.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		respondWithMappedError(c, err, categoryErrorRules, response.CodeInternal, "error.category_update_failed")
		return
	}
	response.Success(c, category)
}

// DeleteCategory 删除分类
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.CategoryService.Delete(c.Request.Context(), id); err != nil {
		respondWithMappedError(c, err, categoryErrorRules, response.CodeInternal, "error.category_delete_failed")
		return
	}
	response.Success(c, nil)
}

// CreateProductRequest 创建商品请求
type CreateProductRequest struct {
	CategoryID     uint                `json:"category_id" binding:"required"`
	Slug           string              `json:"slug"`
	Name           string              `json:"name" binding:"required"`
	Brand          string              `json:"brand"`
	Description    string              `json:"description"`
	SKUPrefix      string              `json:"sku_prefix"`
	Attributes     []variant.Attribute `json:"attributes"`
	Variations     []variant.Variation `json:"variations"`
	Price          decimal.Decimal     `json:"price"`
	CompareAtPrice decimal.Decimal     `json:"compare_at_price"`
	Cost           decimal.Decimal     `json:"cost"`
	Currency       string              `json:"currency"`
	Images         []string            `json:"images"`
	Tags           []string            `json:"tags"`
	IsActive       *bool               `json:"is_active"`
	SortOrder      int                 `json:"sort_order"`
}

// UpdateProductRequest 更新商品基础信息请求
type UpdateProductRequest struct {
	CategoryID     uint            `json:"category_id" binding:"required"`
	Slug           string          `json:"slug"`
	Name           string          `json:"name" binding:"required"`
	Brand          string          `json:"brand"`
	Description    string          `json:"description"`
	SKUPrefix      string          `json:"sku_prefix"`
	Price          decimal.Decimal `json:"price"`
	CompareAtPrice decimal.Decimal `json:"compare_at_price"`
	Cost           decimal.Decimal `json:"cost"`
	Currency       string          `json:"currency"`
	Images         []string        `json:"images"`
	Tags           []string        `json:"tags"`
	IsActive       *bool           `json:"is_active"`
	SortOrder      int             `json:"sort_order"`
}

// RegenerateVariationsRequest 重新生成变体请求
type RegenerateVariationsRequest struct {
	Attributes []variant.Attribute `json:"attributes"`
}

// UpdateSKURequest 编辑 SKU 请求
type UpdateSKURequest struct {
	Price             *decimal.Decimal    `json:"price"`
	Cost              *decimal.Decimal    `json:"cost"`
	LowStockThreshold *int                `json:"low_stock_threshold"`
	MinReorderQty     *int                `json:"min_reorder_qty"`
	Weight            *variant.Weight     `json:"weight"`
	Dimensions        *variant.Dimensions `json:"dimensions"`
	IsActive          *bool               `json:"is_active"`
}

// AdjustStockRequest 手工调整库存请求
type AdjustStockRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason"`
}

// GetAdminProducts 获取商品列表
func (h *Handler) GetAdminProducts(c *gin.Context) {
	page, pageSize := parsePageQuery(c)
	categoryID, err := parseQueryUint(c, "category_id")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	onlyActive, err := parseQueryBool(c, "only_active")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	products, total, err := h.ProductService.List(repository.ProductListFilter{
		Page:        page,
		PageSize:    pageSize,
		CategoryID:  categoryID,
		Search:      strings.TrimSpace(c.Query("search")),
		StockStatus: strings.TrimSpace(c.Query("stock_status")),
		OnlyActive:  onlyActive,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, products, response.NewPagination(page, pageSize, total))
}

// GetAdminProduct 获取商品详情（含 SKU）
func (h *Handler) GetAdminProduct(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	product, err := h.ProductService.Get(id)
	if err != nil {
		respondWithMappedError(c, err, productErrorRules, response.CodeInternal, "error.product_fetch_failed")
		return
	}
	response.Success(c, product)
}

// CreateProduct 创建商品并按属性展开 SKU
func (h *Handler) CreateProduct(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	product, err := h.ProductService.CreateProduct(c.Request.Context(), service.CreateProductInput{
		CategoryID:     req.CategoryID,
		Slug:           req.Slug,
		Name:           req.Name,
		Brand:          req.Brand,
		Description:    req.Description,
		SKUPrefix:      req.SKUPrefix,
		Attributes:     req.Attributes,
		Variations:     req.Variations,
		Price:          req.Price,
		CompareAtPrice: req.CompareAtPrice,
		Cost:           req.Cost,
		Currency:       req.Currency,
		Images:         req.Images,
		Tags:           req.Tags,
		IsActive:       req.IsActive,
		SortOrder:      req.SortOrder,
		OperatorID:     adminID,
	})
	if err != nil {
		respondWithMappedError(c, err, productErrorRules, response.CodeInternal, "error.product_create_failed")
		return
	}
	response.Success(c, product)
}

// UpdateProduct 更新商品基础信息
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	product, err := h.ProductService.Update(c.Request.Context(), id, service.UpdateProductInput{
		CategoryID:     req.CategoryID,
		Slug:           req.Slug,
		Name:           req.Name,
		Brand:          req.Brand,
		Description:    req.Description,
		SKUPrefix:      req.SKUPrefix,
		Price:          req.Price,
		CompareAtPrice: req.CompareAtPrice,
		Cost:           req.Cost,
		Currency:       req.Currency,
		Images:         req.Images,
		Tags:           req.Tags,
		IsActive:       req.IsActive,
		SortOrder:      req.SortOrder,
	})
	if err != nil {
		respondWithMappedError(c, err, productErrorRules, response.CodeInternal, "error.product_update_failed")
		return
	}
	response.Success(c, product)
}

// DeleteProduct 删除商品
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.ProductService.Delete(id); err != nil {
		respondWithMappedError(c, err, productErrorRules, response.CodeInternal, "error.product_delete_failed")
		return
	}
	response.Success(c, nil)
}

// RegenerateProductVariations 按新属性重建商品 SKU
func (h *Handler) RegenerateProductVariations(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req RegenerateVariationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	product, err := h.ProductService.RegenerateVariations(c.Request.Context(), id, req.Attributes, adminID)
	if err != nil {
		respondWithMappedError(c, err, productErrorRules, response.CodeInternal, "error.product_update_failed")
		return
	}
	response.Success(c, product)
}

// GetProductMovements 获取商品库存流水
func (h *Handler) GetProductMovements(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	skuID, err := parseQueryUint(c, "sku_id")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	page, pageSize := parsePageQuery(c)
	movements, total, err := h.ProductService.ListMovements(repository.StockMovementFilter{
		Page:      page,
		PageSize:  pageSize,
		ProductID: id,
		SKUID:     skuID,
		Type:      strings.TrimSpace(c.Query("type")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.movement_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, movements, response.NewPagination(page, pageSize, total))
}

// UpdateSKU 编辑 SKU 元数据
func (h *Handler) UpdateSKU(c *gin.Context) {
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req UpdateSKURequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	sku, err := h.ProductService.UpdateSKU(id, service.UpdateSKUInput{
		Price:             req.Price,
		Cost:              req.Cost,
		LowStockThreshold: req.LowStockThreshold,
		MinReorderQty:     req.MinReorderQty,
		Weight:            req.Weight,
		Dimensions:        req.Dimensions,
		IsActive:          req.IsActive,
	})
	if err != nil {
		respondWithMappedError(c, err, productErrorRules, response.CodeInternal, "error.sku_update_failed")
		return
	}
	response.Success(c, sku)
}

// AdjustSKUStock 手工调整库存并写流水
func (h *Handler) AdjustSKUStock(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	id, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.stock_delta_invalid", err)
		return
	}
	sku, err := h.ProductService.AdjustStock(c.Request.Context(), id, req.Delta, req.Reason, adminID)
	if err != nil {
		respondWithMappedError(c, err, productErrorRules, response.CodeInternal, "error.stock_adjust_failed")
		return
	}
	requestLog(c).Infow("admin_stock_adjusted", "sku_id", id, "delta", req.Delta, "admin_id", adminID)
	response.Success(c, sku)
}
