package app

import (
	"errors"

	"github.com/freshcart/internal/config"
	"github.com/freshcart/internal/logger"
	"github.com/freshcart/internal/provider"
	"github.com/freshcart/internal/router"
	"github.com/freshcart/internal/worker"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string, container *provider.Container) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if container == nil {
		return nil, errors.New("container is nil")
	}
	if !isKnownMode(mode) {
		return nil, errors.New("unknown mode: " + mode)
	}

	var services []Service

	// 初始化 HTTP 服务
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewHTTPService(cfg.Server, engine))
	}

	// 初始化 Worker 服务；all 模式下队列未启用时跳过
	if mode == ModeWorker || (mode == ModeAll && cfg.Queue.Enabled) {
		consumer := worker.NewConsumer(container)
		workerService, err := worker.NewService(&cfg.Queue, consumer)
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	} else if mode == ModeAll {
		logger.Infow("app_worker_skipped", "reason", "queue_disabled")
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}

	runner := NewRunner(services...)
	runner.OnShutdown(container.Close)
	return runner, nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	container := provider.NewContainer(opts.Config)
	runner, err := BuildRunner(opts.Config, opts.Mode, container)
	if err != nil {
		container.Close()
		return err
	}

	opts.Logger.Infow("app_start", "addr", opts.Config.Server.Addr(), "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
