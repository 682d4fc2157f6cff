package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/freshcart/internal/config"
	"github.com/freshcart/internal/constants"
	"github.com/freshcart/internal/logger"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列名称
	DefaultQueue = constants.QueueDefault
	// ImagesQueue 图片预热专用队列
	ImagesQueue = constants.QueueImages

	defaultRedisAddr   = "127.0.0.1:6379"
	defaultConcurrency = 10

	imageWarmMaxRetry  = 2
	imageWarmTimeout   = 30 * time.Second
	imageWarmUniqueTTL = 10 * time.Minute
)

// Client 队列客户端；未启用时所有投递均为空操作
type Client struct {
	inner *asynq.Client
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{}, nil
	}
	return &Client{inner: asynq.NewClient(buildRedisOpt(cfg))}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.inner != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.inner.Close()
}

// EnqueueImageWarm 投递图片预热任务。
// 相同商品集合在 imageWarmUniqueTTL 内只保留一个任务，重复投递视为成功。
func (c *Client) EnqueueImageWarm(payload ImageWarmPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewImageWarmTask(payload)
	if err != nil {
		return err
	}
	options := []asynq.Option{
		asynq.Queue(ImagesQueue),
		asynq.MaxRetry(imageWarmMaxRetry),
		asynq.Timeout(imageWarmTimeout),
		asynq.Unique(imageWarmUniqueTTL),
	}
	info, err := c.inner.Enqueue(task, append(options, opts...)...)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		logger.Debugw("queue_image_warm_duplicate", "names", len(payload.Names))
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue image warm: %w", err)
	}
	logger.Debugw("queue_image_warm_enqueued", "task_id", info.ID, "queue", info.Queue)
	return nil
}

// BuildServerConfig 生成 worker 配置；图片队列总会被监听
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	concurrency := defaultConcurrency
	queues := map[string]int{DefaultQueue: 1, ImagesQueue: 1}
	if cfg != nil {
		if cfg.Concurrency > 0 {
			concurrency = cfg.Concurrency
		}
		if len(cfg.Queues) > 0 {
			queues = make(map[string]int, len(cfg.Queues)+1)
			for name, weight := range cfg.Queues {
				if weight > 0 {
					queues[name] = weight
				}
			}
			if _, ok := queues[ImagesQueue]; !ok {
				queues[ImagesQueue] = 1
			}
		}
	}
	return buildRedisOpt(cfg), asynq.Config{
		Concurrency:  concurrency,
		Queues:       queues,
		ErrorHandler: asynq.ErrorHandlerFunc(logTaskError),
	}
}

func logTaskError(ctx context.Context, task *asynq.Task, err error) {
	taskType := ""
	if task != nil {
		taskType = task.Type()
	}
	retried, _ := asynq.GetRetryCount(ctx)
	logger.Warnw("queue_task_failed", "task_type", taskType, "retried", retried, "error", err)
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	if cfg == nil {
		return asynq.RedisClientOpt{Addr: defaultRedisAddr}
	}
	addr := defaultRedisAddr
	if host := strings.TrimSpace(cfg.Host); host != "" || cfg.Port > 0 {
		if host == "" {
			host = "127.0.0.1"
		}
		port := cfg.Port
		if port <= 0 {
			port = 6379
		}
		addr = fmt.Sprintf("%s:%d", host, port)
	}
	return asynq.RedisClientOpt{Addr: addr, Password: cfg.Password, DB: cfg.DB}
}
