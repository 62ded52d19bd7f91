package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stockdesk/internal/logger"

	"github.com/spf13/viper"
)

// Config 对应 config.yml 的完整结构，环境变量 SD_<SECTION>_<KEY> 可覆盖任意项
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Upload    UploadConfig    `mapstructure:"upload"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Security  SecurityConfig  `mapstructure:"security"`
	Captcha   CaptchaConfig   `mapstructure:"captcha"`
	Inventory InventoryConfig `mapstructure:"inventory"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Worker    WorkerConfig    `mapstructure:"worker"`
}

// ServerConfig 监听地址；mode 为 debug 或 release
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

func (c ServerConfig) Release() bool {
	return c.Mode == "release"
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
	SQLLevel   string `mapstructure:"sql_level"` // silent / error / warn / info
}

func (c LogConfig) LoggerOptions() logger.Options {
	return logger.Options{
		Level:      c.Level,
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig driver 取 sqlite 或 postgres
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"`
	DSN    string             `mapstructure:"dsn"`
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

type JWTConfig struct {
	SecretKey   string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

var weakSecretMarkers = []string{"change-me", "change-in-production", "your-secret-key"}

// WeakSecret 少于 32 字节或仍是示例占位值
func (c JWTConfig) WeakSecret() bool {
	if len(c.SecretKey) < 32 {
		return true
	}
	lower := strings.ToLower(c.SecretKey)
	for _, marker := range weakSecretMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig asynq 使用的 Redis，与缓存可以分库
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

type CaptchaConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	Length        int  `mapstructure:"length"`
	Width         int  `mapstructure:"width"`
	Height        int  `mapstructure:"height"`
	NoiseCount    int  `mapstructure:"noise_count"`
	ShowLine      int  `mapstructure:"show_line"`
	ExpireSeconds int  `mapstructure:"expire_seconds"`
	MaxStore      int  `mapstructure:"max_store"`
}

type UploadConfig struct {
	MaxSize           int64                `mapstructure:"max_size"`
	AllowedTypes      []string             `mapstructure:"allowed_types"`
	AllowedExtensions []string             `mapstructure:"allowed_extensions"`
	MaxWidth          int                  `mapstructure:"max_width"`
	MaxHeight         int                  `mapstructure:"max_height"`
	Dir               string               `mapstructure:"dir"`
	Compress          UploadCompressConfig `mapstructure:"compress"`
}

type UploadCompressConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	MaxEdge     int  `mapstructure:"max_edge"`     // 最长边超过该值时等比缩放
	JPEGQuality int  `mapstructure:"jpeg_quality"` // 重新编码 JPEG 的质量（1-100）
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type SecurityConfig struct {
	LoginRateLimit  RateLimitConfig      `mapstructure:"login_rate_limit"`
	ExportRateLimit RateLimitConfig      `mapstructure:"export_rate_limit"`
	PasswordPolicy  PasswordPolicyConfig `mapstructure:"password_policy"`
}

// RateLimitConfig 固定窗口限流；block_seconds 为 0 时超限只需等窗口过期
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxAttempts   int `mapstructure:"max_attempts"`
	BlockSeconds  int `mapstructure:"block_seconds"`
}

type PasswordPolicyConfig struct {
	MinLength      int  `mapstructure:"min_length"`
	RequireUpper   bool `mapstructure:"require_upper"`
	RequireLower   bool `mapstructure:"require_lower"`
	RequireNumber  bool `mapstructure:"require_number"`
	RequireSpecial bool `mapstructure:"require_special"`
}

// InventoryConfig 新建 SKU 未指定时采用的默认值
type InventoryConfig struct {
	DefaultLowStockThreshold int    `mapstructure:"default_low_stock_threshold"`
	DefaultMinReorderQty     int    `mapstructure:"default_min_reorder_qty"`
	DefaultCurrency          string `mapstructure:"default_currency"`
	MaxVariations            int    `mapstructure:"max_variations"` // 单个商品变体组合上限
}

// AnalyticsConfig 分析报表配置
type AnalyticsConfig struct {
	CacheTTLSeconds   int     `mapstructure:"cache_ttl_seconds"`
	DefaultTimezone   string  `mapstructure:"default_timezone"`
	AgingBucketsDays  []int   `mapstructure:"aging_buckets_days"` // 库龄分桶边界，例如 [30, 60, 90]
	ABCClassAPercent  float64 `mapstructure:"abc_class_a_percent"`
	ABCClassBPercent  float64 `mapstructure:"abc_class_b_percent"`
	MaxCustomRangeDay int     `mapstructure:"max_custom_range_days"`
}

// WorkerConfig cron 表达式支持 robfig/cron 的描述符，例如 @every 15m
type WorkerConfig struct {
	LowStockSweepCron  string   `mapstructure:"low_stock_sweep_cron"`
	AnalyticsWarmCron  string   `mapstructure:"analytics_warm_cron"`
	DraftPurgeCron     string   `mapstructure:"draft_purge_cron"`
	DraftRetentionDays int      `mapstructure:"draft_retention_days"`
	WarmRanges         []string `mapstructure:"warm_ranges"`
	WarmPoolSize       int      `mapstructure:"warm_pool_size"`
	Location           string   `mapstructure:"location"`
}

const envPrefix = "SD"

var searchPaths = []string{".", "./etc", "../"}

// defaults 未出现在配置文件与环境变量中的项
var defaults = map[string]interface{}{
	"server.host": "0.0.0.0",
	"server.port": "8080",
	"server.mode": "debug",

	"log.level":        "info",
	"log.dir":          "",
	"log.filename":     "stockdesk.log",
	"log.max_size_mb":  100,
	"log.max_backups":  7,
	"log.max_age_days": 30,
	"log.compress":     true,
	"log.sql_level":    "warn",

	"database.driver":                          "sqlite",
	"database.dsn":                             "./db/stockdesk.db",
	"database.pool.max_open_conns":             1,
	"database.pool.max_idle_conns":             1,
	"database.pool.conn_max_lifetime_seconds":  0,
	"database.pool.conn_max_idle_time_seconds": 0,

	"jwt.secret":       "change-me-in-production",
	"jwt.expire_hours": 24,

	"redis.enabled":  true,
	"redis.host":     "127.0.0.1",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,
	"redis.prefix":   "sd",

	"queue.enabled":     true,
	"queue.host":        "127.0.0.1",
	"queue.port":        6379,
	"queue.password":    "",
	"queue.db":          1,
	"queue.concurrency": 10,
	"queue.queues":      map[string]int{"default": 10, "critical": 5},

	"captcha.enabled":        false,
	"captcha.length":         5,
	"captcha.width":          240,
	"captcha.height":         80,
	"captcha.noise_count":    2,
	"captcha.show_line":      2,
	"captcha.expire_seconds": 300,
	"captcha.max_store":      10240,

	"upload.max_size":              10 << 20,
	"upload.allowed_types":         []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
	"upload.allowed_extensions":    []string{".jpg", ".jpeg", ".png", ".gif", ".webp"},
	"upload.max_width":             8192,
	"upload.max_height":            8192,
	"upload.dir":                   "uploads",
	"upload.compress.enabled":      true,
	"upload.compress.max_edge":     1600,
	"upload.compress.jpeg_quality": 82,

	"cors.allowed_origins": []string{"*"},
	"cors.allowed_methods": []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
	"cors.allowed_headers": []string{
		"Content-Type", "Content-Length", "Accept-Encoding", "Accept-Language",
		"Authorization", "Cache-Control", "X-Requested-With", "X-Locale",
	},
	"cors.allow_credentials": true,
	"cors.max_age":           600,

	"security.login_rate_limit.window_seconds":  300,
	"security.login_rate_limit.max_attempts":    5,
	"security.login_rate_limit.block_seconds":   900,
	"security.export_rate_limit.window_seconds": 60,
	"security.export_rate_limit.max_attempts":   6,
	"security.export_rate_limit.block_seconds":  0,
	"security.password_policy.min_length":       8,
	"security.password_policy.require_upper":    true,
	"security.password_policy.require_lower":    true,
	"security.password_policy.require_number":   true,
	"security.password_policy.require_special":  false,

	"inventory.default_low_stock_threshold": 10,
	"inventory.default_min_reorder_qty":     5,
	"inventory.default_currency":            "CNY",
	"inventory.max_variations":              1000,

	"analytics.cache_ttl_seconds":     60,
	"analytics.default_timezone":      "Asia/Shanghai",
	"analytics.aging_buckets_days":    []int{30, 60, 90},
	"analytics.abc_class_a_percent":   80,
	"analytics.abc_class_b_percent":   95,
	"analytics.max_custom_range_days": 90,

	"worker.low_stock_sweep_cron": "@every 15m",
	"worker.analytics_warm_cron":  "@every 5m",
	"worker.draft_purge_cron":     "@daily",
	"worker.draft_retention_days": 30,
	"worker.warm_ranges":          []string{"today", "7d", "30d"},
	"worker.warm_pool_size":       4,
	"worker.location":             "Asia/Shanghai",
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load 读取配置；path 为空时在默认目录中查找 config.yml，找不到则只用默认值与环境变量
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, dir := range searchPaths {
			v.AddConfigPath(dir)
		}
	}

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		logger.Infow("config_file_loaded", "file", v.ConfigFileUsed())
	case path == "" && errors.As(err, &notFound):
		logger.Warnw("config_file_missing", "fallback", "env_or_defaults")
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 拒绝启动后才会暴露的错误配置
func (c *Config) Validate() error {
	var problems []error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			problems = append(problems, fmt.Errorf(format, args...))
		}
	}
	check(c.Server.Mode == "debug" || c.Server.Mode == "release", "server.mode %q must be debug or release", c.Server.Mode)
	check(!c.Server.Release() || !c.JWT.WeakSecret(), "jwt.secret is too weak for release mode")
	check(c.Database.Driver == "sqlite" || c.Database.Driver == "postgres", "database.driver %q is not supported", c.Database.Driver)
	check(c.Analytics.ABCClassAPercent > 0 && c.Analytics.ABCClassAPercent < c.Analytics.ABCClassBPercent && c.Analytics.ABCClassBPercent <= 100,
		"analytics abc percents must satisfy 0 < a < b <= 100")
	check(c.Analytics.MaxCustomRangeDay > 0, "analytics.max_custom_range_days must be positive")
	check(c.Queue.Concurrency >= 0, "queue.concurrency must not be negative")
	return errors.Join(problems...)
}
