package worker

import (
	"context"
	"errors"

	"github.com/freshcart/internal/logger"
	"github.com/freshcart/internal/provider"
	"github.com/freshcart/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskImageWarmCache, c.handleImageWarm)
}

// handleImageWarm 预先解析图片地址写入缓存；单个商品失败不重试整个任务
func (c *Consumer) handleImageWarm(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_image_warm_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseImageWarmPayload(task)
	if err != nil {
		if errors.Is(err, queue.ErrEmptyImageWarmPayload) {
			logger.Debugw("worker_image_warm_skip_empty_payload")
			return nil
		}
		logger.Warnw("worker_image_warm_unmarshal_failed", "error", err)
		return errors.Join(err, asynq.SkipRetry)
	}
	if c.ImageService == nil {
		logger.Warnw("worker_image_warm_skip_image_service_nil", "count", len(payload.Names))
		return nil
	}
	resolved := c.ImageService.Warm(ctx, payload.Names)
	logger.Debugw("worker_image_warm_done", "requested", len(payload.Names), "resolved", resolved)
	return nil
}
