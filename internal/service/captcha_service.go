package service

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/stockdesk/internal/config"

	"github.com/mojocn/base64Captcha"
)

// captchaCharset 去掉了 0/1/i/l/o 等易混字符
const captchaCharset = "23456789abcdefghjkmnpqrstuvwxyzABCDEFGHJKMNPQRSTUVWXYZ"

type captchaBound struct {
	field    func(*config.CaptchaConfig) *int
	min, max int
	fallback int
}

var captchaBounds = []captchaBound{
	{func(c *config.CaptchaConfig) *int { return &c.Length }, 4, 8, 5},
	{func(c *config.CaptchaConfig) *int { return &c.Width }, 100, 600, 240},
	{func(c *config.CaptchaConfig) *int { return &c.Height }, 40, 200, 80},
	{func(c *config.CaptchaConfig) *int { return &c.NoiseCount }, 0, 20, 2},
	{func(c *config.CaptchaConfig) *int { return &c.ShowLine }, 0, 20, 2},
	{func(c *config.CaptchaConfig) *int { return &c.ExpireSeconds }, 30, 3600, 300},
	{func(c *config.CaptchaConfig) *int { return &c.MaxStore }, 100, 100000, 10240},
}

// normalizeCaptchaConfig 越界的项回到默认值
func normalizeCaptchaConfig(cfg config.CaptchaConfig) config.CaptchaConfig {
	for _, b := range captchaBounds {
		if v := b.field(&cfg); *v < b.min || *v > b.max {
			*v = b.fallback
		}
	}
	return cfg
}

type CaptchaVerifyPayload struct {
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

type CaptchaImageChallenge struct {
	CaptchaID   string `json:"captcha_id"`
	ImageBase64 string `json:"image_base64"`
	Enabled     bool   `json:"enabled"`
}

type captchaState struct {
	cfg    config.CaptchaConfig
	store  base64Captcha.Store
	driver base64Captcha.Driver
}

func newCaptchaState(cfg config.CaptchaConfig) *captchaState {
	cfg = normalizeCaptchaConfig(cfg)
	return &captchaState{
		cfg:   cfg,
		store: base64Captcha.NewMemoryStore(cfg.MaxStore, time.Duration(cfg.ExpireSeconds)*time.Second),
		driver: base64Captcha.NewDriverString(cfg.Height, cfg.Width, cfg.NoiseCount, cfg.ShowLine, cfg.Length,
			captchaCharset, nil, base64Captcha.DefaultEmbeddedFonts, nil),
	}
}

// CaptchaService 后台登录图片验证码；配置可在运行中整体替换
type CaptchaService struct {
	state atomic.Pointer[captchaState]
}

func NewCaptchaService(cfg config.CaptchaConfig) *CaptchaService {
	s := &CaptchaService{}
	s.state.Store(newCaptchaState(cfg))
	return s
}

func (s *CaptchaService) current() *captchaState {
	if s == nil {
		return nil
	}
	return s.state.Load()
}

func (s *CaptchaService) Enabled() bool {
	st := s.current()
	return st != nil && st.cfg.Enabled
}

// Reload 换用新配置；旧存储中未使用的验证码一并作废
func (s *CaptchaService) Reload(cfg config.CaptchaConfig) {
	if s != nil {
		s.state.Store(newCaptchaState(cfg))
	}
}

func (s *CaptchaService) Config() config.CaptchaConfig {
	if st := s.current(); st != nil {
		return st.cfg
	}
	return config.CaptchaConfig{}
}

// GenerateImageChallenge 未启用时返回 enabled=false 的空挑战
func (s *CaptchaService) GenerateImageChallenge() (*CaptchaImageChallenge, error) {
	st := s.current()
	if st == nil || !st.cfg.Enabled {
		return &CaptchaImageChallenge{}, nil
	}
	id, image, _, err := base64Captcha.NewCaptcha(st.driver, st.store).Generate()
	if err != nil {
		return nil, err
	}
	return &CaptchaImageChallenge{CaptchaID: id, ImageBase64: image, Enabled: true}, nil
}

// Verify 区分大小写，无论成败答案只能用一次
func (s *CaptchaService) Verify(payload CaptchaVerifyPayload) error {
	st := s.current()
	if st == nil || !st.cfg.Enabled {
		return nil
	}
	id := strings.TrimSpace(payload.CaptchaID)
	code := strings.TrimSpace(payload.CaptchaCode)
	if id == "" || code == "" {
		return ErrCaptchaRequired
	}
	if st.store == nil {
		return ErrCaptchaConfigInvalid
	}
	if !st.store.Verify(id, code, true) {
		return ErrCaptchaInvalid
	}
	return nil
}
