package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeService struct {
	name     string
	startErr error
	failNow  bool

	mu      sync.Mutex
	stopped bool
}

func (f *fakeService) Name() string { return f.name }

func (f *fakeService) Start(ctx context.Context) error {
	if f.failNow {
		return f.startErr
	}
	<-ctx.Done()
	return nil
}

func (f *fakeService) Stop(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	return nil
}

func (f *fakeService) wasStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

func TestRunnerStopsAllWhenOneFails(t *testing.T) {
	boom := errors.New("listen failed")
	healthy := &fakeService{name: "scheduler"}
	broken := &fakeService{name: "http", failNow: true, startErr: boom}

	err := NewRunner(zap.NewNop().Sugar(), time.Second, healthy, broken).Run(context.Background())
	require.ErrorIs(t, err, boom)
	assert.True(t, healthy.wasStopped())
	assert.True(t, broken.wasStopped())
}

func TestRunnerCancelIsCleanExit(t *testing.T) {
	svc := &fakeService{name: "worker"}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewRunner(zap.NewNop().Sugar(), time.Second, svc).Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop after cancel")
	}
	assert.True(t, svc.wasStopped())
}

func TestRunnerRequiresServices(t *testing.T) {
	assert.Error(t, NewRunner(zap.NewNop().Sugar(), time.Second).Run(context.Background()))
}

func TestBuildServicesRejectsUnknownMode(t *testing.T) {
	_, err := buildServices(nil, nil, "cron")
	assert.Error(t, err)
}
