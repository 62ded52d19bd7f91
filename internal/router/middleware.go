package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/stockdesk/internal/authz"
	"github.com/stockdesk/internal/cache"
	"github.com/stockdesk/internal/http/response"
	"github.com/stockdesk/internal/i18n"
	"github.com/stockdesk/internal/logger"
	"github.com/stockdesk/internal/repository"
	"github.com/stockdesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDKey           = "request_id"
	requestIDHeader        = "X-Request-ID"
	adminIsSuperContextKey = "admin_is_super"
	maxRequestIDLen        = 64
)

// RequestIDMiddleware 沿用上游传入的请求 ID，缺失或过长时生成新的
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 每个请求一条日志，5xx 记 error，4xx 记 warn
func LoggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.L()
	}
	sugar := log.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		fields := []interface{}{
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"route", route,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if id := c.GetUint("admin_id"); id > 0 {
			fields = append(fields, "admin_id", id)
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}
		switch {
		case status >= http.StatusInternalServerError || len(c.Errors) > 0:
			sugar.Errorw("http_request", fields...)
		case status >= http.StatusBadRequest:
			sugar.Warnw("http_request", fields...)
		default:
			sugar.Infow("http_request", fields...)
		}
	}
}

func abortWithKey(c *gin.Context, code int, key string) {
	response.Error(c, code, i18n.T(i18n.ResolveLocale(c), key))
	c.Abort()
}

// JWTAuthMiddleware 后台 JWT 鉴权中间件，令牌版本与失效时间优先读取 Redis 快照
func JWTAuthMiddleware(authService *service.AuthService, adminRepo repository.AdminRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authService == nil || adminRepo == nil {
			abortWithKey(c, response.CodeUnauthorized, "error.token_invalid")
			return
		}
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithKey(c, response.CodeUnauthorized, "error.auth_header_missing")
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			abortWithKey(c, response.CodeUnauthorized, "error.auth_header_invalid")
			return
		}

		claims, err := authService.ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			abortWithKey(c, response.CodeUnauthorized, "error.token_invalid")
			return
		}

		snap, err := cache.LoadAuthSnapshot(c.Request.Context(), claims.AdminID)
		if err != nil {
			logger.Warnw("admin_auth_snapshot_load_failed", "admin_id", claims.AdminID, "error", err)
		}
		if snap == nil {
			admin, err := adminRepo.GetByID(claims.AdminID)
			if err != nil || admin == nil {
				abortWithKey(c, response.CodeUnauthorized, "error.token_invalid")
				return
			}
			snap = cache.SnapshotOf(admin)
			if err := cache.StoreAuthSnapshot(c.Request.Context(), admin); err != nil {
				logger.Warnw("admin_auth_snapshot_store_failed", "admin_id", admin.ID, "error", err)
			}
		}

		var issuedAt time.Time
		if claims.IssuedAt != nil {
			issuedAt = claims.IssuedAt.Time
		}
		if !snap.Accepts(claims.TokenVersion, issuedAt) {
			abortWithKey(c, response.CodeUnauthorized, "error.token_revoked")
			return
		}
		setAdminContext(c, claims, snap.IsSuper)
		c.Next()
	}
}

func setAdminContext(c *gin.Context, claims *service.TokenClaims, isSuper bool) {
	c.Set("admin_id", claims.AdminID)
	c.Set("username", claims.Username)
	c.Set(adminIsSuperContextKey, isSuper)
}

// AdminRBACMiddleware 按路由模板与请求方法做 RBAC 判定，超级管理员直接放行
func AdminRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetBool(adminIsSuperContextKey) {
			c.Next()
			return
		}
		adminID := c.GetUint("admin_id")
		if adminID == 0 {
			abortWithKey(c, response.CodeUnauthorized, "error.unauthorized")
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		allowed, err := authzService.Allowed(adminID, route, c.Request.Method)
		if err != nil {
			logger.Errorw("admin_rbac_check_failed", "admin_id", adminID, "route", route, "error", err)
			abortWithKey(c, response.CodeUnauthorized, "error.unauthorized")
			return
		}
		if !allowed {
			logger.Warnw("admin_rbac_denied",
				"admin_id", adminID,
				"method", c.Request.Method,
				"route", authz.Resource(route),
			)
			abortWithKey(c, response.CodeForbidden, "error.forbidden")
			return
		}
		c.Next()
	}
}
