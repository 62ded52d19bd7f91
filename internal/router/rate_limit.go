package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/stockdesk/internal/config"
	"github.com/stockdesk/internal/http/response"
	"github.com/stockdesk/internal/i18n"
	"github.com/stockdesk/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// limitScript KEYS: 计数键、封禁键；ARGV: 窗口秒数、上限、封禁秒数。
// 返回 {本窗口计数, 剩余等待秒数}，处于封禁期时计数为 -1
var limitScript = redis.NewScript(`
local blocked = redis.call("TTL", KEYS[2])
if blocked > 0 then
	return {-1, blocked}
end
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local block = tonumber(ARGV[3])
if n > tonumber(ARGV[2]) and block > 0 then
	redis.call("SET", KEYS[2], 1, "EX", block)
	redis.call("DEL", KEYS[1])
	return {n, block}
end
return {n, redis.call("TTL", KEYS[1])}
`)

// Limiter 基于 Redis 的固定窗口限流器，可选超限封禁
type Limiter struct {
	client     *redis.Client
	prefix     string
	window     int
	max        int
	block      int
	messageKey string
}

// NewLimiter client 为空或规则不完整时返回的限流器放行所有请求
func NewLimiter(client *redis.Client, prefix string, cfg config.RateLimitConfig, messageKey string) *Limiter {
	return &Limiter{
		client:     client,
		prefix:     prefix,
		window:     cfg.WindowSeconds,
		max:        cfg.MaxAttempts,
		block:      cfg.BlockSeconds,
		messageKey: messageKey,
	}
}

func (l *Limiter) enabled() bool {
	return l != nil && l.client != nil && l.window > 0 && l.max > 0
}

// Allow 计入一次请求，超限时返回需要等待的秒数
func (l *Limiter) Allow(ctx context.Context, key string) (bool, int, error) {
	if !l.enabled() {
		return true, 0, nil
	}
	base := l.prefix + ":" + key
	vals, err := limitScript.Run(ctx, l.client, []string{base, base + ":block"}, l.window, l.max, l.block).Int64Slice()
	if err != nil {
		return false, 0, err
	}
	if len(vals) < 2 {
		return false, 0, redis.Nil
	}
	count, wait := vals[0], int(vals[1])
	if count >= 0 && count <= int64(l.max) {
		return true, 0, nil
	}
	if wait < 1 {
		wait = max(l.window, 1)
	}
	return false, wait, nil
}

// KeyFunc 从请求中提取限流维度
type KeyFunc func(*gin.Context) string

// Middleware 超限返回 429 业务码；Redis 故障时拒绝请求
func (l *Limiter) Middleware(keyFn KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.enabled() {
			c.Next()
			return
		}
		key := strings.TrimSpace(keyFn(c))
		if key == "" {
			key = c.ClientIP()
		}
		allowed, wait, err := l.Allow(c.Request.Context(), key)
		locale := i18n.ResolveLocale(c)
		switch {
		case err != nil:
			logger.Warnw("rate_limit_check_failed", "prefix", l.prefix, "error", err)
			response.Error(c, response.CodeInternal, i18n.T(locale, "error.rate_limit_unavailable"))
			c.Abort()
		case !allowed:
			logger.Infow("rate_limited", "prefix", l.prefix, "key", key, "wait_seconds", wait)
			response.Error(c, response.CodeTooManyRequests, i18n.Sprintf(locale, l.messageKey, wait))
			c.Abort()
		default:
			c.Next()
		}
	}
}

// KeyByAdmin 按登录管理员计数，未登录时退回客户端 IP
func KeyByAdmin(c *gin.Context) string {
	if id := c.GetUint("admin_id"); id > 0 {
		return "admin:" + strconv.FormatUint(uint64(id), 10)
	}
	return c.ClientIP()
}

// KeyByJSONFieldAndIP 按请求体中的某个字段加 IP 计数，读取后恢复请求体供后续绑定
func KeyByJSONFieldAndIP(field string) KeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(peekJSONField(c, field))
		if value == "" {
			return c.ClientIP()
		}
		return value + "|" + c.ClientIP()
	}
}

func peekJSONField(c *gin.Context, field string) string {
	if c.Request == nil || c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil || len(body) == 0 {
		return ""
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	var value string
	if err := json.Unmarshal(payload[field], &value); err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}
