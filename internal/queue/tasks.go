package queue

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/freshcart/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskImageWarmCache 图片 URL 预热任务
	TaskImageWarmCache = constants.TaskImageWarmCache
)

// ErrEmptyImageWarmPayload 预热任务没有可处理的商品名
var ErrEmptyImageWarmPayload = errors.New("image warm payload has no names")

// ImageWarmPayload 图片预热任务载荷
type ImageWarmPayload struct {
	Names []string `json:"names"`
}

// NewImageWarmTask 创建图片预热任务，空白名称与重复名称会被剔除
func NewImageWarmTask(payload ImageWarmPayload) (*asynq.Task, error) {
	payload.Names = dedupeNames(payload.Names)
	if len(payload.Names) == 0 {
		return nil, ErrEmptyImageWarmPayload
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskImageWarmCache, body), nil
}

// ParseImageWarmPayload 解析图片预热任务载荷
func ParseImageWarmPayload(task *asynq.Task) (ImageWarmPayload, error) {
	var payload ImageWarmPayload
	if task == nil {
		return payload, ErrEmptyImageWarmPayload
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, err
	}
	payload.Names = dedupeNames(payload.Names)
	if len(payload.Names) == 0 {
		return payload, ErrEmptyImageWarmPayload
	}
	return payload, nil
}

func dedupeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}
	return result
}
