package models

import (
	"fmt"

	"github.com/freshcart/internal/logger"
)

// gormLogWriter 将 gorm 日志转发到结构化日志
type gormLogWriter struct{}

func (gormLogWriter) Printf(format string, args ...interface{}) {
	logger.SW("component", "gorm").Info(fmt.Sprintf(format, args...))
}
