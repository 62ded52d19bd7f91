package router

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/stockdesk/internal/authz"
	"github.com/stockdesk/internal/cache"
	"github.com/stockdesk/internal/config"
	adminhandlers "github.com/stockdesk/internal/http/handlers/admin"
	"github.com/stockdesk/internal/http/response"
	"github.com/stockdesk/internal/logger"
	"github.com/stockdesk/internal/provider"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.LoggerOptions())
	}
	r := gin.New()

	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "sd"
	}
	loginLimiter := NewLimiter(cache.Client(), redisPrefix+":rate:admin_login", cfg.Security.LoginRateLimit, "error.login_too_many")
	exportLimiter := NewLimiter(cache.Client(), redisPrefix+":rate:export", cfg.Security.ExportRateLimit, "error.rate_limited")

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// 上传文件静态目录
	uploadDir := strings.TrimSpace(cfg.Upload.Dir)
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	r.Static("/uploads", uploadDir)

	apiV1 := r.Group("/api/v1")
	admin := apiV1.Group("/admin")
	{
		// 无需鉴权
		admin.POST("/login", loginLimiter.Middleware(KeyByJSONFieldAndIP("username")), adminHandler.AdminLogin)
		admin.GET("/captcha", adminHandler.GetAdminCaptcha)

		authorized := admin.Group("")
		authorized.Use(JWTAuthMiddleware(c.AuthService, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
		{
			authorized.GET("/me", adminHandler.GetAdminProfile)
			authorized.PUT("/password", adminHandler.UpdateAdminPassword)

			// 变体预览
			authorized.POST("/variants/expand", adminHandler.ExpandVariants)

			// 分类
			authorized.GET("/categories", adminHandler.GetAdminCategories)
			authorized.GET("/categories/:id", adminHandler.GetAdminCategory)
			authorized.POST("/categories", adminHandler.CreateCategory)
			authorized.PUT("/categories/:id", adminHandler.UpdateCategory)
			authorized.DELETE("/categories/:id", adminHandler.DeleteCategory)

			// 商品与 SKU
			authorized.GET("/products", adminHandler.GetAdminProducts)
			authorized.GET("/products/:id", adminHandler.GetAdminProduct)
			authorized.POST("/products", adminHandler.CreateProduct)
			authorized.PUT("/products/:id", adminHandler.UpdateProduct)
			authorized.DELETE("/products/:id", adminHandler.DeleteProduct)
			authorized.PUT("/products/:id/variations", adminHandler.RegenerateProductVariations)
			authorized.GET("/products/:id/movements", adminHandler.GetProductMovements)
			authorized.PUT("/skus/:id", adminHandler.UpdateSKU)
			authorized.POST("/skus/:id/adjust", adminHandler.AdjustSKUStock)

			// 新增商品向导草稿
			authorized.POST("/drafts", adminHandler.CreateDraft)
			authorized.GET("/drafts", adminHandler.ListDrafts)
			authorized.GET("/drafts/:token", adminHandler.GetDraft)
			authorized.PATCH("/drafts/:token", adminHandler.PatchDraft)
			authorized.DELETE("/drafts/:token", adminHandler.DeleteDraft)
			authorized.POST("/drafts/:token/regenerate", adminHandler.RegenerateDraft)
			authorized.POST("/drafts/:token/next", adminHandler.AdvanceDraft)
			authorized.POST("/drafts/:token/back", adminHandler.BackDraft)
			authorized.POST("/drafts/:token/submit", adminHandler.SubmitDraft)

			// 销售记录
			authorized.GET("/sales", adminHandler.ListSales)
			authorized.POST("/sales", adminHandler.CreateSale)
			authorized.GET("/sales/summary", adminHandler.GetSalesSummary)
			authorized.GET("/sales/export", exportLimiter.Middleware(KeyByAdmin), adminHandler.ExportSales)
			authorized.GET("/sales/:id", adminHandler.GetSale)

			// 退货
			authorized.GET("/returns", adminHandler.ListReturns)
			authorized.POST("/returns", adminHandler.CreateReturn)
			authorized.GET("/returns/export", exportLimiter.Middleware(KeyByAdmin), adminHandler.ExportReturns)
			authorized.GET("/returns/:id", adminHandler.GetReturn)
			authorized.POST("/returns/:id/approve", adminHandler.ApproveReturn)
			authorized.POST("/returns/:id/reject", adminHandler.RejectReturn)

			// 分析报表
			authorized.GET("/analytics/overview", adminHandler.GetAnalyticsOverview)
			authorized.GET("/analytics/trends", adminHandler.GetAnalyticsTrends)
			authorized.GET("/analytics/top-products", adminHandler.GetAnalyticsTopProducts)
			authorized.GET("/analytics/aging", adminHandler.GetAnalyticsAging)
			authorized.GET("/analytics/abc", adminHandler.GetAnalyticsABC)
			authorized.GET("/analytics/low-stock", adminHandler.GetAnalyticsLowStock)
			authorized.GET("/analytics/export", exportLimiter.Middleware(KeyByAdmin), adminHandler.ExportAnalytics)
			authorized.DELETE("/analytics/cache", adminHandler.InvalidateAnalyticsCache)

			// 文件上传
			authorized.POST("/upload", adminHandler.UploadFile)

			// 设置
			authorized.GET("/settings/analytics-alert", adminHandler.GetAnalyticsAlertSettings)
			authorized.PUT("/settings/analytics-alert", adminHandler.UpdateAnalyticsAlertSettings)
			authorized.GET("/settings/captcha", adminHandler.GetCaptchaSettings)
			authorized.PUT("/settings/captcha", adminHandler.UpdateCaptchaSettings)

			// 权限管理
			authorized.GET("/authz/me", adminHandler.AuthzMe)
			authorized.GET("/authz/roles", adminHandler.ListRoles)
			authorized.POST("/authz/roles", adminHandler.CreateRole)
			authorized.DELETE("/authz/roles/:role", adminHandler.DeleteRole)
			authorized.GET("/authz/roles/:role/policies", adminHandler.ListRolePolicies)
			authorized.POST("/authz/policies", adminHandler.GrantPolicy)
			authorized.DELETE("/authz/policies", adminHandler.RevokePolicy)
			authorized.GET("/authz/admins", adminHandler.ListAdmins)
			authorized.POST("/authz/admins", adminHandler.CreateAdmin)
			authorized.PUT("/authz/admins/:id", adminHandler.UpdateAdmin)
			authorized.DELETE("/authz/admins/:id", adminHandler.DeleteAdmin)
			authorized.GET("/authz/admins/:id/roles", adminHandler.GetAdminRoles)
			authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAdminRoles)
			authorized.GET("/authz/audit-logs", adminHandler.ListAccessAudit)
			authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
				response.Success(ctx, buildAdminPermissionCatalog(r))
			})
		}
	}

	// 健康检查
	r.GET("/health", healthCheck(c.DB))

	return r
}

const healthTimeout = 2 * time.Second

// healthCheck 数据库或 Redis 任一不可用时返回 503
func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		checks := gin.H{"database": "ok", "redis": "ok"}
		healthy := true
		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(ctx)
			}
			if err != nil {
				checks["database"] = "down"
				healthy = false
				logger.Warnw("health_database_down", "error", err)
			}
		}
		if err := cache.Ping(ctx); err != nil {
			checks["redis"] = "down"
			healthy = false
			logger.Warnw("health_redis_down", "error", err)
		}
		if !healthy {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "checks": checks})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": checks})
	}
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		if item.Path == "/api/v1/admin/login" || item.Path == "/api/v1/admin/captcha" {
			continue
		}
		object := authz.Resource(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
