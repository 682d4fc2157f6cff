package worker

import (
	"context"
	"errors"
	"sort"

	"github.com/freshcart/internal/config"
	"github.com/freshcart/internal/logger"
	"github.com/freshcart/internal/queue"

	"github.com/hibiken/asynq"
)

// ErrQueueDisabled 队列未启用时无法启动 worker
var ErrQueueDisabled = errors.New("queue disabled")

// Service 图片预热 worker，随 Runner 启停
type Service struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	queues []string
}

// NewService 创建 worker 服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, ErrQueueDisabled
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	queues := make([]string, 0, len(serverCfg.Queues))
	for name := range serverCfg.Queues {
		queues = append(queues, name)
	}
	sort.Strings(queues)
	return &Service{
		server: asynq.NewServer(opt, serverCfg),
		mux:    mux,
		queues: queues,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	return "worker"
}

// Start 启动消费并阻塞到 ctx 结束；信号由 Runner 统一处理
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil {
		return errors.New("worker not initialized")
	}
	if err := s.server.Start(s.mux); err != nil {
		return err
	}
	logger.Infow("worker_started", "queues", s.queues)
	<-ctx.Done()
	return nil
}

// Stop 等待进行中的任务结束后停止
func (s *Service) Stop(_ context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	s.server.Shutdown()
	logger.Infow("worker_stopped")
	return nil
}
