package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stockdesk/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledCacheIsNoop(t *testing.T) {
	require.NoError(t, InitRedis(&config.RedisConfig{Enabled: false}))
	ctx := context.Background()

	assert.False(t, Enabled())
	assert.Nil(t, Client())
	require.NoError(t, SetJSON(ctx, "k", map[string]int{"a": 1}, time.Minute))
	var out map[string]int
	hit, err := GetJSON(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)
	n, err := DelByPrefix(ctx, AnalyticsKeyPrefix)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, Ping(ctx))
	assert.NoError(t, Close())
}

func TestStoreKeyPrefix(t *testing.T) {
	s := &store{prefix: "sd"}
	assert.Equal(t, "sd:category:all", s.key(CategoryAllKey))
	assert.Equal(t, "sd", s.key("  "))
}

func TestAnalyticsKey(t *testing.T) {
	assert.Equal(t, "analytics:overview:7d:-:Asia/Shanghai", AnalyticsKey("overview", "7d", " ", "Asia/Shanghai"))
}
