package app

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service 由 Runner 托管的长驻组件；Start 阻塞到 ctx 结束或自身出错
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Runner 并发运行多个 Service，任意一个退出都会带停其余全部
type Runner struct {
	services    []Service
	log         *zap.SugaredLogger
	stopTimeout time.Duration
}

// NewRunner 创建运行器
func NewRunner(log *zap.SugaredLogger, stopTimeout time.Duration, services ...Service) *Runner {
	return &Runner{services: services, log: log, stopTimeout: stopTimeout}
}

// Run ctx 被取消视为正常退出
func (r *Runner) Run(ctx context.Context) error {
	if len(r.services) == 0 {
		return errors.New("app: no services to run")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	for _, svc := range r.services {
		g.Go(func() error {
			r.log.Infow("service_start", "service", svc.Name())
			err := svc.Start(gctx)
			r.log.Infow("service_exit", "service", svc.Name(), "error", err)
			cancel()
			return err
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		r.stopAll()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (r *Runner) stopAll() {
	ctx, cancel := context.WithTimeout(context.Background(), r.stopTimeout)
	defer cancel()
	for i := len(r.services) - 1; i >= 0; i-- {
		svc := r.services[i]
		if err := svc.Stop(ctx); err != nil {
			r.log.Errorw("service_stop_failed", "service", svc.Name(), "error", err)
		}
	}
}
