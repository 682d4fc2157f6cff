package shared

import (
	"strconv"
	"strings"

	"github.com/freshcart/internal/constants"
	"github.com/freshcart/internal/http/response"

	"github.com/gin-gonic/gin"
)

// CartSession 读取中间件写入的购物车会话 ID
func CartSession(c *gin.Context) string {
	if c == nil {
		return ""
	}
	value, ok := c.Get(constants.CartSessionCtxKey)
	if !ok {
		return ""
	}
	session, _ := value.(string)
	return session
}

// ParseUintParam 解析路径中的正整数 ID，失败时直接写入错误响应。
func ParseUintParam(c *gin.Context, name, invalidMsg string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		RespondError(c, response.CodeBadRequest, invalidMsg, nil)
		return 0, false
	}
	return uint(id), true
}
