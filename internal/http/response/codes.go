package response

// 业务状态码，HTTP 状态恒为 200
const (
	CodeOK                 = 0
	CodeBadRequest         = 400
	CodeNotFound           = 404
	CodeConflict           = 409
	CodeValidationFailed   = 422
	CodeTooManyRequests    = 429
	CodeInternal           = 500
	CodeServiceUnavailable = 503
)

// IsRetryable 该业务码是否提示客户端稍后重试
func IsRetryable(code int) bool {
	return code == CodeServiceUnavailable || code == CodeTooManyRequests
}
