package admin

import (
	"strconv"
	"strings"

	"github.com/stockdesk/internal/http/response"
	"github.com/stockdesk/internal/service"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GetAnalyticsOverview 获取分析总览
func (h *Handler) GetAnalyticsOverview(c *gin.Context) {
	input, err := parseAnalyticsQuery(c)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	data, err := h.AnalyticsService.Overview(c.Request.Context(), input)
	if err != nil {
		respondWithMappedError(c, err, analyticsErrorRules, response.CodeInternal, "error.analytics_fetch_failed")
		return
	}
	response.Success(c, data)
}

// GetAnalyticsTrends 获取销售趋势
func (h *Handler) GetAnalyticsTrends(c *gin.Context) {
	input, err := parseAnalyticsQuery(c)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	data, err := h.AnalyticsService.Trends(c.Request.Context(), input)
	if err != nil {
		respondWithMappedError(c, err, analyticsErrorRules, response.CodeInternal, "error.analytics_fetch_failed")
		return
	}
	response.Success(c, data)
}

// GetAnalyticsTopProducts 获取畅销商品排行
func (h *Handler) GetAnalyticsTopProducts(c *gin.Context) {
	input, err := parseAnalyticsQuery(c)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	data, err := h.AnalyticsService.TopProducts(c.Request.Context(), input)
	if err != nil {
		respondWithMappedError(c, err, analyticsErrorRules, response.CodeInternal, "error.analytics_fetch_failed")
		return
	}
	response.Success(c, data)
}

// GetAnalyticsAging 获取库龄分布
func (h *Handler) GetAnalyticsAging(c *gin.Context) {
	forceRefresh, err := parseQueryBool(c, "force_refresh")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	data, err := h.AnalyticsService.AgingInventory(c.Request.Context(), forceRefresh)
	if err != nil {
		respondError(c, response.CodeInternal, "error.analytics_fetch_failed", err)
		return
	}
	response.Success(c, data)
}

// GetAnalyticsABC 获取 ABC 分类
func (h *Handler) GetAnalyticsABC(c *gin.Context) {
	input, err := parseAnalyticsQuery(c)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	data, err := h.AnalyticsService.ABCAnalysis(c.Request.Context(), input)
	if err != nil {
		respondWithMappedError(c, err, analyticsErrorRules, response.CodeInternal, "error.analytics_fetch_failed")
		return
	}
	response.Success(c, data)
}

// GetAnalyticsLowStock 获取低库存预警
func (h *Handler) GetAnalyticsLowStock(c *gin.Context) {
	forceRefresh, err := parseQueryBool(c, "force_refresh")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	data, err := h.AnalyticsService.LowStockAlerts(c.Request.Context(), forceRefresh)
	if err != nil {
		respondError(c, response.CodeInternal, "error.analytics_fetch_failed", err)
		return
	}
	response.Success(c, data)
}

// ExportAnalytics 导出 ABC 与库龄 XLSX
func (h *Handler) ExportAnalytics(c *gin.Context) {
	input, err := parseAnalyticsQuery(c)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	w := newAttachmentWriter(c, "analytics", "xlsx", xlsxContentType)
	if err := h.AnalyticsService.ExportAnalytics(c.Request.Context(), input, w); err != nil {
		if w.started {
			requestLog(c).Errorw("admin_analytics_export_interrupted", "error", err)
			return
		}
		respondWithMappedError(c, err, analyticsErrorRules, response.CodeInternal, "error.export_failed")
		return
	}
	w.finish()
}

// InvalidateAnalyticsCache 清空分析缓存
func (h *Handler) InvalidateAnalyticsCache(c *gin.Context) {
	removed, err := h.AnalyticsService.InvalidateCache(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "error.analytics_cache_clear_failed", err)
		return
	}
	response.Success(c, gin.H{"removed": removed})
}

func parseAnalyticsQuery(c *gin.Context) (service.AnalyticsQueryInput, error) {
	rangeRaw := strings.TrimSpace(c.DefaultQuery("range", "7d"))
	timezone := strings.TrimSpace(c.Query("tz"))
	limitRaw := strings.TrimSpace(c.Query("limit"))

	from, err := parseTimeNullable(c.Query("from"))
	if err != nil {
		return service.AnalyticsQueryInput{}, err
	}
	to, err := parseTimeNullable(c.Query("to"))
	if err != nil {
		return service.AnalyticsQueryInput{}, err
	}
	forceRefresh, err := parseQueryBool(c, "force_refresh")
	if err != nil {
		return service.AnalyticsQueryInput{}, err
	}

	limit := 0
	if limitRaw != "" {
		limit, err = strconv.Atoi(limitRaw)
		if err != nil {
			return service.AnalyticsQueryInput{}, err
		}
	}

	return service.AnalyticsQueryInput{
		Range:        rangeRaw,
		From:         from,
		To:           to,
		Timezone:     timezone,
		Limit:        limit,
		ForceRefresh: forceRefresh,
	}, nil
}
