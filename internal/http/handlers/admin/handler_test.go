package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stockdesk/internal/config"
	"github.com/stockdesk/internal/models"
	"github.com/stockdesk/internal/provider"
	"github.com/stockdesk/internal/repository"
	"github.com/stockdesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var handlerTestDBSeq int64

type handlerFixture struct {
	h        *Handler
	db       *gorm.DB
	category models.Category
	adminID  uint
}

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:admin_handler_test_%d?mode=memory&cache=shared", atomic.AddInt64(&handlerTestDBSeq, 1))
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

	cfg := &config.Config{}
	cfg.Inventory = config.InventoryConfig{DefaultLowStockThreshold: 3, DefaultMinReorderQty: 5, DefaultCurrency: "CNY"}

	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	skuRepo := repository.NewProductSKURepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	returnRepo := repository.NewReturnRepository(db)
	catalog := service.NewCategoryCatalog(categoryRepo)
	productSvc := service.NewProductService(productRepo, skuRepo, movementRepo, catalog, nil, cfg.Inventory)

	c := &provider.Container{
		Config:          cfg,
		CategoryRepo:    categoryRepo,
		CategoryCatalog: catalog,
		CategoryService: service.NewCategoryService(categoryRepo, catalog),
		ProductService:  productSvc,
		DraftService:    service.NewDraftService(repository.NewDraftRepository(db), productSvc),
		SaleService:     service.NewSaleService(saleRepo, skuRepo, movementRepo, nil),
		ReturnService:   service.NewReturnService(returnRepo, saleRepo, skuRepo, movementRepo, nil),
		CaptchaService:  service.NewCaptchaService(config.CaptchaConfig{Enabled: false}),
	}

	category := models.Category{Slug: "tees", NameJSON: models.JSON{"zh-CN": "T恤"}, IsActive: true}
	require.NoError(t, categoryRepo.Create(&category))
	return &handlerFixture{h: New(c), db: db, category: category, adminID: 7}
}

func (f *handlerFixture) call(t *testing.T, handler gin.HandlerFunc, method, target string, body interface{}, params ...gin.Param) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.Header.Set("Accept-Language", "en-US")
	c.Params = params
	c.Set("admin_id", f.adminID)
	handler(c)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code)
	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (f *handlerFixture) createProduct(t *testing.T) models.Product {
	t.Helper()
	w := f.call(t, f.h.CreateProduct, http.MethodPost, "/admin/products", map[string]interface{}{
		"category_id": f.category.ID,
		"name":        "Basic Tee",
		"sku_prefix":  "tee",
		"price":       "59.00",
		"cost":        "20.00",
		"attributes": []map[string]interface{}{
			{"name": "Size", "options": []string{"S", "M"}},
			{"name": "Color", "options": []string{"Red", "Blue"}},
		},
	})
	resp := decodeEnvelope(t, w)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	var product models.Product
	require.NoError(t, json.Unmarshal(resp.Data, &product))
	return product
}

func TestExpandVariantsReportsDuplicateName(t *testing.T) {
	f := newHandlerFixture(t)
	w := f.call(t, f.h.ExpandVariants, http.MethodPost, "/admin/variants/expand", map[string]interface{}{
		"attributes": []map[string]interface{}{
			{"name": "Size", "options": []string{"S"}},
			{"name": "size", "options": []string{"M"}},
		},
	})
	resp := decodeEnvelope(t, w)
	assert.Equal(t, 400, resp.StatusCode)
	assert.Contains(t, resp.Msg, "size")
}

func TestExpandVariantsCountsCombinations(t *testing.T) {
	f := newHandlerFixture(t)
	w := f.call(t, f.h.ExpandVariants, http.MethodPost, "/admin/variants/expand", map[string]interface{}{
		"attributes": []map[string]interface{}{
			{"name": "Size", "options": []string{"S", "M", "L"}},
			{"name": "Color", "options": []string{"Red", "Blue"}},
		},
	})
	resp := decodeEnvelope(t, w)
	require.Equal(t, 0, resp.StatusCode)
	var data struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, 6, data.Count)
}

func TestCreateProductThenRecordSale(t *testing.T) {
	f := newHandlerFixture(t)
	product := f.createProduct(t)
	require.Len(t, product.SKUs, 4)

	skuID := product.SKUs[0].ID
	adjust := f.call(t, f.h.AdjustSKUStock, http.MethodPost, "/admin/skus/1/adjust",
		map[string]interface{}{"delta": 5, "reason": "restock"},
		gin.Param{Key: "id", Value: fmt.Sprint(skuID)})
	require.Equal(t, 0, decodeEnvelope(t, adjust).StatusCode)

	sale := f.call(t, f.h.CreateSale, http.MethodPost, "/admin/sales", map[string]interface{}{
		"sku_id":   skuID,
		"quantity": 2,
		"order_no": "POS-0001",
	})
	require.Equal(t, 0, decodeEnvelope(t, sale).StatusCode)

	var sku models.ProductSKU
	require.NoError(t, f.db.First(&sku, skuID).Error)
	assert.Equal(t, product.SKUs[0].Stock+5-2, sku.Stock)

	tooMany := f.call(t, f.h.CreateSale, http.MethodPost, "/admin/sales", map[string]interface{}{
		"sku_id":   skuID,
		"quantity": 1000,
	})
	assert.Equal(t, 400, decodeEnvelope(t, tooMany).StatusCode)
}

func TestExportSalesWritesCSVAttachment(t *testing.T) {
	f := newHandlerFixture(t)
	product := f.createProduct(t)
	skuID := product.SKUs[1].ID
	f.call(t, f.h.AdjustSKUStock, http.MethodPost, "/admin/skus/1/adjust",
		map[string]interface{}{"delta": 3}, gin.Param{Key: "id", Value: fmt.Sprint(skuID)})
	f.call(t, f.h.CreateSale, http.MethodPost, "/admin/sales", map[string]interface{}{
		"sku_id":   skuID,
		"quantity": 1,
		"order_no": "EXPORT-1",
		"channel":  "online",
	})

	w := f.call(t, f.h.ExportSales, http.MethodGet, "/admin/sales/export?channel=online", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=\"sales_")
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/csv"))
	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "order_no,"))
	assert.Contains(t, body, "EXPORT-1")
}

func TestExportSalesRejectsUnknownChannelAsJSON(t *testing.T) {
	f := newHandlerFixture(t)
	w := f.call(t, f.h.ExportSales, http.MethodGet, "/admin/sales/export?channel=fax", nil)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, 400, resp.StatusCode)
	assert.Empty(t, w.Header().Get("Content-Disposition"))
}

func TestGetAdminProductsBadCategoryQuery(t *testing.T) {
	f := newHandlerFixture(t)
	w := f.call(t, f.h.GetAdminProducts, http.MethodGet, "/admin/products?category_id=abc", nil)
	assert.Equal(t, 400, decodeEnvelope(t, w).StatusCode)
}

func TestDraftAdvanceListsMissingFields(t *testing.T) {
	f := newHandlerFixture(t)
	created := decodeEnvelope(t, f.call(t, f.h.CreateDraft, http.MethodPost, "/admin/drafts", nil))
	require.Equal(t, 0, created.StatusCode)
	var view service.DraftView
	require.NoError(t, json.Unmarshal(created.Data, &view))
	token := gin.Param{Key: "token", Value: view.Token}

	blocked := decodeEnvelope(t, f.call(t, f.h.AdvanceDraft, http.MethodPost, "/admin/drafts/x/next", nil, token))
	assert.Equal(t, 400, blocked.StatusCode)
	assert.Contains(t, blocked.Msg, "name")

	patched := decodeEnvelope(t, f.call(t, f.h.PatchDraft, http.MethodPatch, "/admin/drafts/x",
		map[string]interface{}{"basic": map[string]interface{}{"name": "Hoodie"}}, token))
	require.Equal(t, 0, patched.StatusCode)

	advanced := decodeEnvelope(t, f.call(t, f.h.AdvanceDraft, http.MethodPost, "/admin/drafts/x/next", nil, token))
	require.Equal(t, 0, advanced.StatusCode, advanced.Msg)
	require.NoError(t, json.Unmarshal(advanced.Data, &view))
	assert.Equal(t, "category", string(view.Step))
}

func TestDraftOwnedByAnotherAdmin(t *testing.T) {
	f := newHandlerFixture(t)
	created := decodeEnvelope(t, f.call(t, f.h.CreateDraft, http.MethodPost, "/admin/drafts", nil))
	var view service.DraftView
	require.NoError(t, json.Unmarshal(created.Data, &view))

	f.adminID = 99
	resp := decodeEnvelope(t, f.call(t, f.h.GetDraft, http.MethodGet, "/admin/drafts/x", nil, gin.Param{Key: "token", Value: view.Token}))
	assert.Equal(t, 403, resp.StatusCode)
}

func TestGetAdminCaptchaDisabled(t *testing.T) {
	f := newHandlerFixture(t)
	resp := decodeEnvelope(t, f.call(t, f.h.GetAdminCaptcha, http.MethodGet, "/admin/captcha", nil))
	require.Equal(t, 0, resp.StatusCode)
	var challenge service.CaptchaImageChallenge
	require.NoError(t, json.Unmarshal(resp.Data, &challenge))
	assert.False(t, challenge.Enabled)
	assert.Empty(t, challenge.ImageBase64)
}

func TestCategoryDeleteInUse(t *testing.T) {
	f := newHandlerFixture(t)
	f.createProduct(t)
	resp := decodeEnvelope(t, f.call(t, f.h.DeleteCategory, http.MethodDelete, "/admin/categories/x", nil,
		gin.Param{Key: "id", Value: fmt.Sprint(f.category.ID)}))
	assert.Equal(t, 400, resp.StatusCode)
}
