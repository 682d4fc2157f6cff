package public

import "github.com/freshcart/internal/provider"

// Handler 前台公开接口处理器入口
// 说明：店铺无登录体系，购物车以会话 ID 区分。
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
