package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const requestIDKey = "request_id"

// Response 统一响应结构
type Response struct {
	StatusCode int         `json:"status_code"`         // 业务状态码
	Msg        string      `json:"msg"`                 // 提示消息
	Data       interface{} `json:"data"`                // 数据内容
	Retryable  bool        `json:"retryable,omitempty"` // 客户端可展示重试入口
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	write(c, CodeOK, "success", data)
}

// SuccessWithMsg 成功响应（自定义消息）
func SuccessWithMsg(c *gin.Context, msg string, data interface{}) {
	write(c, CodeOK, msg, data)
}

// Error 错误响应，data 中附带 request_id 便于排查
func Error(c *gin.Context, statusCode int, msg string) {
	write(c, statusCode, msg, withRequestID(c, nil))
}

// ErrorWithData 错误响应（带数据，如字段级校验错误）
func ErrorWithData(c *gin.Context, statusCode int, msg string, data interface{}) {
	write(c, statusCode, msg, withRequestID(c, data))
}

// NotFound 404响应
func NotFound(c *gin.Context, msg string) {
	Error(c, CodeNotFound, msg)
}

// BadRequest 400响应
func BadRequest(c *gin.Context, msg string) {
	Error(c, CodeBadRequest, msg)
}

// ServiceUnavailable 503响应（可重试）
func ServiceUnavailable(c *gin.Context, msg string) {
	Error(c, CodeServiceUnavailable, msg)
}

func write(c *gin.Context, code int, msg string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		StatusCode: code,
		Msg:        msg,
		Data:       data,
		Retryable:  IsRetryable(code),
	})
}

func withRequestID(c *gin.Context, data interface{}) interface{} {
	requestID := c.GetString(requestIDKey)
	if requestID == "" {
		return data
	}
	switch v := data.(type) {
	case nil:
		return gin.H{requestIDKey: requestID}
	case gin.H:
		if _, ok := v[requestIDKey]; !ok {
			v[requestIDKey] = requestID
		}
		return v
	case map[string]interface{}:
		if _, ok := v[requestIDKey]; !ok {
			v[requestIDKey] = requestID
		}
		return v
	default:
		return gin.H{requestIDKey: requestID, "data": data}
	}
}
