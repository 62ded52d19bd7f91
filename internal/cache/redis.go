package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/stockdesk/internal/config"

	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix = "sd"
	scanBatch     = 200
)

type store struct {
	client *redis.Client
	prefix string
}

func (s *store) key(k string) string {
	k = strings.TrimSpace(k)
	if k == "" {
		return s.prefix
	}
	return s.prefix + ":" + k
}

// active 为 nil 表示缓存关闭，所有读写都退化为未命中或空操作
var active atomic.Pointer[store]

// InitRedis 未启用时保持关闭状态，不返回错误
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		active.Store(nil)
		return nil
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	active.Store(&store{
		client: redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(host, strconv.Itoa(port)),
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		prefix: prefix,
	})
	return nil
}

func Enabled() bool { return active.Load() != nil }

// Client 原始客户端，给限流脚本这类需要自行拼键的调用方；缓存关闭时为 nil
func Client() *redis.Client {
	if s := active.Load(); s != nil {
		return s.client
	}
	return nil
}

// GetJSON 命中时解码到 dest 并返回 true
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	s := active.Load()
	if s == nil {
		return false, nil
	}
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s := active.Load()
	if s == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(key), payload, ttl).Err()
}

func Del(ctx context.Context, key string) error {
	s := active.Load()
	if s == nil {
		return nil
	}
	return s.client.Del(ctx, s.key(key)).Err()
}

// DelByPrefix 用 SCAN 分批删除，返回删除数量
func DelByPrefix(ctx context.Context, prefix string) (int64, error) {
	s := active.Load()
	if s == nil {
		return 0, nil
	}
	var deleted int64
	batch := make([]string, 0, scanBatch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := s.client.Unlink(ctx, batch...).Result()
		deleted += n
		batch = batch[:0]
		return err
	}
	iter := s.client.Scan(ctx, 0, s.key(prefix)+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := flush(); err != nil {
				return deleted, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, err
	}
	return deleted, flush()
}

// Ping 缓存关闭时视为健康
func Ping(ctx context.Context) error {
	s := active.Load()
	if s == nil {
		return nil
	}
	return s.client.Ping(ctx).Err()
}

func Close() error {
	s := active.Swap(nil)
	if s == nil {
		return nil
	}
	return s.client.Close()
}
