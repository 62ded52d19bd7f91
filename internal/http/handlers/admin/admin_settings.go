package admin

import (
	"errors"

	"github.com/stockdesk/internal/http/response"
	"github.com/stockdesk/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAnalyticsAlertSettings 获取分析告警规则
func (h *Handler) GetAnalyticsAlertSettings(c *gin.Context) {
	setting, err := h.SettingService.GetAnalyticsAlertSetting()
	if err != nil {
		respondError(c, response.CodeInternal, "error.settings_fetch_failed", err)
		return
	}
	response.Success(c, setting)
}

// UpdateAnalyticsAlertSettings 更新分析告警规则，并清空分析缓存
func (h *Handler) UpdateAnalyticsAlertSettings(c *gin.Context) {
	var req service.AnalyticsAlertSetting
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	setting, err := h.SettingService.UpdateAnalyticsAlertSetting(req)
	if err != nil {
		if errors.Is(err, service.ErrSettingInvalid) {
			respondError(c, response.CodeBadRequest, "error.settings_invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.settings_save_failed", err)
		return
	}
	if h.AnalyticsService != nil {
		if _, err := h.AnalyticsService.InvalidateCache(c.Request.Context()); err != nil {
			requestLog(c).Warnw("admin_analytics_cache_clear_failed", "error", err)
		}
	}
	response.Success(c, setting)
}

// GetCaptchaSettings 获取验证码配置
func (h *Handler) GetCaptchaSettings(c *gin.Context) {
	setting, err := h.SettingService.GetCaptchaSetting(h.Config.Captcha)
	if err != nil {
		respondError(c, response.CodeInternal, "error.settings_fetch_failed", err)
		return
	}
	response.Success(c, setting)
}

// UpdateCaptchaSettings 更新验证码配置并立即生效
func (h *Handler) UpdateCaptchaSettings(c *gin.Context) {
	var req service.CaptchaSettingPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	setting, err := h.SettingService.PatchCaptchaSetting(h.Config.Captcha, req)
	if err != nil {
		if errors.Is(err, service.ErrSettingInvalid) {
			respondError(c, response.CodeBadRequest, "error.settings_invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.settings_save_failed", err)
		return
	}

	h.Config.Captcha = service.CaptchaSettingToConfig(setting, h.Config.Captcha)
	if h.CaptchaService != nil {
		h.CaptchaService.Reload(h.Config.Captcha)
	}
	requestLog(c).Infow("admin_captcha_setting_updated", "enabled", setting.Enabled, "admin_id", c.GetUint("admin_id"))

	response.Success(c, setting)
}
