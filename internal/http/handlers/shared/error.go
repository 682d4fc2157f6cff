package shared

import (
	"github.com/freshcart/internal/http/response"
	"github.com/freshcart/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	kv := make([]interface{}, 0, 4)
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			kv = append(kv, "request_id", id)
		}
	}
	if session := CartSession(c); session != "" {
		kv = append(kv, "cart_session", session)
	}
	return logger.SW(kv...)
}

// RespondError 返回错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		log := RequestLog(c)
		if appErr.Retryable() {
			log.Warnw("handler_error_retryable",
				"code", appErr.Code,
				"message", appErr.Message,
				"error", err,
			)
		} else {
			log.Errorw("handler_error",
				"code", appErr.Code,
				"message", appErr.Message,
				"error", err,
			)
		}
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// RespondErrorWithData 返回带数据的错误响应（如字段级校验错误）。
func RespondErrorWithData(c *gin.Context, code int, msg string, data interface{}) {
	response.ErrorWithData(c, code, msg, data)
}
