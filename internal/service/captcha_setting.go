package service

import (
	"github.com/stockdesk/internal/config"
	"github.com/stockdesk/internal/constants"
)

// CaptchaSetting 后台登录图片验证码设置
type CaptchaSetting struct {
	Enabled       bool `json:"enabled"`
	Length        int  `json:"length"`
	Width         int  `json:"width"`
	Height        int  `json:"height"`
	NoiseCount    int  `json:"noise_count"`
	ShowLine      int  `json:"show_line"`
	ExpireSeconds int  `json:"expire_seconds"`
}

// CaptchaSettingPatch 验证码设置补丁
type CaptchaSettingPatch struct {
	Enabled       *bool `json:"enabled"`
	Length        *int  `json:"length"`
	Width         *int  `json:"width"`
	Height        *int  `json:"height"`
	NoiseCount    *int  `json:"noise_count"`
	ShowLine      *int  `json:"show_line"`
	ExpireSeconds *int  `json:"expire_seconds"`
}

// CaptchaDefaultSetting 以 config.yml 为默认值
func CaptchaDefaultSetting(cfg config.CaptchaConfig) CaptchaSetting {
	cfg = normalizeCaptchaConfig(cfg)
	return CaptchaSetting{
		Enabled:       cfg.Enabled,
		Length:        cfg.Length,
		Width:         cfg.Width,
		Height:        cfg.Height,
		NoiseCount:    cfg.NoiseCount,
		ShowLine:      cfg.ShowLine,
		ExpireSeconds: cfg.ExpireSeconds,
	}
}

// CaptchaSettingToConfig 合并设置到运行配置，MaxStore 沿用 base
func CaptchaSettingToConfig(setting CaptchaSetting, base config.CaptchaConfig) config.CaptchaConfig {
	base.Enabled = setting.Enabled
	base.Length = setting.Length
	base.Width = setting.Width
	base.Height = setting.Height
	base.NoiseCount = setting.NoiseCount
	base.ShowLine = setting.ShowLine
	base.ExpireSeconds = setting.ExpireSeconds
	return normalizeCaptchaConfig(base)
}

func normalizeCaptchaSetting(setting CaptchaSetting, base config.CaptchaConfig) CaptchaSetting {
	return CaptchaDefaultSetting(CaptchaSettingToConfig(setting, base))
}

// GetCaptchaSetting 获取验证码设置（优先 settings，空时回退 config.yml）
func (s *SettingService) GetCaptchaSetting(defaultCfg config.CaptchaConfig) (CaptchaSetting, error) {
	fallback := CaptchaDefaultSetting(defaultCfg)
	setting, err := loadSetting(s.repo, constants.SettingKeyCaptcha, fallback)
	if err != nil {
		return fallback, err
	}
	return normalizeCaptchaSetting(setting, defaultCfg), nil
}

// PatchCaptchaSetting 基于补丁更新验证码设置
func (s *SettingService) PatchCaptchaSetting(defaultCfg config.CaptchaConfig, patch CaptchaSettingPatch) (CaptchaSetting, error) {
	next, err := s.GetCaptchaSetting(defaultCfg)
	if err != nil {
		return CaptchaSetting{}, err
	}
	if patch.Enabled != nil {
		next.Enabled = *patch.Enabled
	}
	fields := []struct {
		src  *int
		dest *int
	}{
		{patch.Length, &next.Length},
		{patch.Width, &next.Width},
		{patch.Height, &next.Height},
		{patch.NoiseCount, &next.NoiseCount},
		{patch.ShowLine, &next.ShowLine},
		{patch.ExpireSeconds, &next.ExpireSeconds},
	}
	for _, field := range fields {
		if field.src != nil {
			*field.dest = *field.src
		}
	}
	normalized := normalizeCaptchaSetting(next, defaultCfg)
	if err := saveSetting(s.repo, constants.SettingKeyCaptcha, normalized); err != nil {
		return CaptchaSetting{}, err
	}
	return normalized, nil
}
