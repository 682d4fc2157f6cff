package app

import (
	"context"
	"errors"
	"os/signal"
	"time"

	"go.uber.org/zap"
)

const defaultStopTimeout = 10 * time.Second

// Service 可由 Runner 启停的服务
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Runner 并行运行服务：任一服务退出即整体关闭，按启动逆序停止，最后执行资源回收
type Runner struct {
	services []Service
	closers  []func()
}

// NewRunner 创建服务运行器
func NewRunner(services ...Service) *Runner {
	return &Runner{services: services}
}

// OnShutdown 注册在所有服务停止后执行的回收函数（如关闭 Redis、队列连接）
func (r *Runner) OnShutdown(fn func()) {
	if r == nil || fn == nil {
		return
	}
	r.closers = append(r.closers, fn)
}

// RunWithOptions 运行服务并处理系统信号
func RunWithOptions(runner *Runner, opts Options) error {
	if runner == nil {
		return errors.New("runner is nil")
	}
	opts = normalizeOptions(opts)
	ctx := context.Background()
	if len(opts.Signals) > 0 {
		var cancel context.CancelFunc
		ctx, cancel = signal.NotifyContext(ctx, opts.Signals...)
		defer cancel()
	}
	return runner.Run(ctx, opts.ShutdownTimeout, opts.Logger)
}

// Run 启动全部服务并阻塞，直到 ctx 结束或某个服务退出
func (r *Runner) Run(ctx context.Context, stopTimeout time.Duration, log *zap.SugaredLogger) error {
	if r == nil || len(r.services) == 0 {
		return errors.New("no services to run")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	exited := make(chan serviceExit, len(r.services))
	for _, svc := range r.services {
		go startService(ctx, svc, log, exited)
	}

	var runErr error
	select {
	case <-ctx.Done():
		runErr = ctx.Err()
	case exit := <-exited:
		runErr = exit.err
		if runErr == nil {
			log.Infow("service_exit_early", "service", exit.name)
		}
	}
	cancel()

	r.stopAll(stopTimeout, log)
	for _, closeFn := range r.closers {
		closeFn()
	}
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

type serviceExit struct {
	name string
	err  error
}

func startService(ctx context.Context, svc Service, log *zap.SugaredLogger, exited chan<- serviceExit) {
	if svc == nil {
		exited <- serviceExit{name: "unknown", err: errors.New("service is nil")}
		return
	}
	name := svc.Name()
	log.Infow("service_start", "service", name)
	err := svc.Start(ctx)
	if err != nil {
		log.Errorw("service_failed", "service", name, "error", err)
	}
	exited <- serviceExit{name: name, err: err}
}

func (r *Runner) stopAll(timeout time.Duration, log *zap.SugaredLogger) {
	if timeout <= 0 {
		timeout = defaultStopTimeout
	}
	stopCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	for i := len(r.services) - 1; i >= 0; i-- {
		svc := r.services[i]
		if svc == nil {
			continue
		}
		if err := svc.Stop(stopCtx); err != nil {
			log.Errorw("service_stop_failed", "service", svc.Name(), "error", err)
			continue
		}
		log.Infow("service_stopped", "service", svc.Name())
	}
}
