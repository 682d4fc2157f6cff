package response

// AppError 接口错误：业务码 + 面向用户的提示 + 原始错误
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Retryable 客户端稍后重试即可能成功（目录暂不可用、限流）
func (e *AppError) Retryable() bool {
	return e != nil && IsRetryable(e.Code)
}

// WrapError 包装错误
func WrapError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
