package worker

import (
	"testing"

	"github.com/stockdesk/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServiceRequiresEnabledQueue(t *testing.T) {
	_, err := NewService(nil, &Consumer{})
	assert.ErrorIs(t, err, errQueueDisabled)
	_, err = NewService(&config.QueueConfig{Enabled: false}, &Consumer{})
	assert.ErrorIs(t, err, errQueueDisabled)

	_, err = NewService(&config.QueueConfig{Enabled: true, Host: "127.0.0.1", Port: 6379}, nil)
	require.Error(t, err)
}
