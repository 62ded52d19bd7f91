package service

import (
	"math"

	"github.com/stockdesk/internal/constants"
)

// AnalyticsAlertSetting 分析告警规则
type AnalyticsAlertSetting struct {
	Enabled bool `json:"enabled"`
	// LowStockRatioPercent 低库存与售罄 SKU 占启用 SKU 的比例达到该值时告警
	LowStockRatioPercent float64 `json:"low_stock_ratio_percent"`
	// ReturnRateWarnPercent 退货率达到该值时告警
	ReturnRateWarnPercent float64 `json:"return_rate_warn_percent"`
	// NoSalesDays 有库存但超过该天数未售出的 SKU 计入滞销
	NoSalesDays int `json:"no_sales_days"`
}

// AnalyticsAlertDefaultSetting 默认告警规则
func AnalyticsAlertDefaultSetting() AnalyticsAlertSetting {
	return AnalyticsAlertSetting{
		Enabled:               true,
		LowStockRatioPercent:  20,
		ReturnRateWarnPercent: 10,
		NoSalesDays:           60,
	}
}

// NormalizeAnalyticsAlertSetting 归一化告警规则，越界值回退默认
func NormalizeAnalyticsAlertSetting(setting AnalyticsAlertSetting) AnalyticsAlertSetting {
	defaults := AnalyticsAlertDefaultSetting()
	if math.IsNaN(setting.LowStockRatioPercent) || setting.LowStockRatioPercent <= 0 || setting.LowStockRatioPercent > 100 {
		setting.LowStockRatioPercent = defaults.LowStockRatioPercent
	}
	if math.IsNaN(setting.ReturnRateWarnPercent) || setting.ReturnRateWarnPercent <= 0 || setting.ReturnRateWarnPercent > 100 {
		setting.ReturnRateWarnPercent = defaults.ReturnRateWarnPercent
	}
	if setting.NoSalesDays < 1 || setting.NoSalesDays > 3650 {
		setting.NoSalesDays = defaults.NoSalesDays
	}
	setting.LowStockRatioPercent = math.Round(setting.LowStockRatioPercent*100) / 100
	setting.ReturnRateWarnPercent = math.Round(setting.ReturnRateWarnPercent*100) / 100
	return setting
}

// GetAnalyticsAlertSetting 获取告警规则（未配置时回退默认）
func (s *SettingService) GetAnalyticsAlertSetting() (AnalyticsAlertSetting, error) {
	fallback := AnalyticsAlertDefaultSetting()
	if s == nil {
		return fallback, nil
	}
	setting, err := loadSetting(s.repo, constants.SettingKeyAnalyticsAlert, fallback)
	return NormalizeAnalyticsAlertSetting(setting), err
}

// UpdateAnalyticsAlertSetting 保存告警规则
func (s *SettingService) UpdateAnalyticsAlertSetting(setting AnalyticsAlertSetting) (AnalyticsAlertSetting, error) {
	normalized := NormalizeAnalyticsAlertSetting(setting)
	if err := saveSetting(s.repo, constants.SettingKeyAnalyticsAlert, normalized); err != nil {
		return AnalyticsAlertSetting{}, err
	}
	return normalized, nil
}
