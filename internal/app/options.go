package app

import (
	"os"
	"strings"
	"time"

	"github.com/freshcart/internal/config"
	"github.com/freshcart/internal/logger"

	"go.uber.org/zap"
)

// 启动模式
const (
	ModeAll    = "all"    // API + worker（队列未启用时仅 API）
	ModeAPI    = "api"    // 仅 HTTP API
	ModeWorker = "worker" // 仅图片预热 worker
)

// Options 应用启动选项
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

func isKnownMode(mode string) bool {
	switch mode {
	case ModeAll, ModeAPI, ModeWorker:
		return true
	default:
		return false
	}
}

// normalizeOptions 补齐默认参数
func normalizeOptions(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultStopTimeout
	}
	opts.Mode = strings.ToLower(strings.TrimSpace(opts.Mode))
	if opts.Mode == "" {
		opts.Mode = ModeAll
	}
	return opts
}
