package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"time"

	"github.com/stockdesk/internal/config"
	"github.com/stockdesk/internal/logger"
	"github.com/stockdesk/internal/provider"
	"github.com/stockdesk/internal/router"
	"github.com/stockdesk/internal/worker"

	"go.uber.org/zap"
)

// 启动模式：api 只提供 HTTP，worker 只跑队列与定时任务
const (
	ModeAll    = "all"
	ModeAPI    = "api"
	ModeWorker = "worker"
)

const defaultShutdownTimeout = 10 * time.Second

// Options 启动参数
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

// Run 组装容器与服务，运行到收到信号或某个服务退出
func Run(opts Options) error {
	if opts.Config == nil {
		return errors.New("app: config is nil")
	}
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}
	if opts.Mode == "" {
		opts.Mode = ModeAll
	}

	if opts.Mode != ModeAll && opts.Mode != ModeAPI && opts.Mode != ModeWorker {
		return fmt.Errorf("app: unknown mode %q", opts.Mode)
	}
	container, err := provider.NewContainer(opts.Config)
	if err != nil {
		return err
	}
	defer container.Close()
	services, err := buildServices(opts.Config, container, opts.Mode)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if len(opts.Signals) > 0 {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, opts.Signals...)
		defer stop()
	}
	opts.Logger.Infow("app_start", "mode", opts.Mode, "services", len(services))
	return NewRunner(opts.Logger, opts.ShutdownTimeout, services...).Run(ctx)
}

func buildServices(cfg *config.Config, container *provider.Container, mode string) ([]Service, error) {
	serveAPI := mode == ModeAll || mode == ModeAPI
	serveJobs := mode == ModeAll || mode == ModeWorker
	if !serveAPI && !serveJobs {
		return nil, fmt.Errorf("app: unknown mode %q", mode)
	}

	var services []Service
	if serveAPI {
		addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
		services = append(services, NewHTTPService(addr, router.SetupRouter(cfg, container)))
	}
	if serveJobs {
		// 队列关闭时调度任务直接在进程内执行
		consumer := worker.NewConsumer(container)
		if cfg.Queue.Enabled {
			queueWorker, err := worker.NewService(&cfg.Queue, consumer)
			if err != nil {
				return nil, err
			}
			services = append(services, queueWorker)
		}
		scheduler, err := worker.NewScheduler(cfg.Worker, worker.NewQueueDispatcher(container.QueueClient, consumer))
		if err != nil {
			return nil, err
		}
		services = append(services, scheduler)
	}
	return services, nil
}
