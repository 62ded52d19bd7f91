package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stockdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthSnapshotAccepts(t *testing.T) {
	revokedAt := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	snap := SnapshotOf(&models.Admin{ID: 3, TokenVersion: 2, TokenInvalidBefore: &revokedAt})

	assert.True(t, snap.Accepts(2, revokedAt))
	assert.True(t, snap.Accepts(2, revokedAt.Add(time.Minute)))
	assert.False(t, snap.Accepts(2, revokedAt.Add(-time.Second)))
	assert.False(t, snap.Accepts(1, revokedAt.Add(time.Minute)))

	fresh := SnapshotOf(&models.Admin{ID: 4})
	assert.True(t, fresh.Accepts(0, time.Unix(0, 0)))

	var missing *AuthSnapshot
	assert.False(t, missing.Accepts(0, time.Now()))
}

func TestAuthSnapshotWithoutRedis(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, StoreAuthSnapshot(ctx, &models.Admin{ID: 5}))
	snap, err := LoadAuthSnapshot(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, snap)
	require.NoError(t, ForgetAuthSnapshot(ctx, 5))
}
