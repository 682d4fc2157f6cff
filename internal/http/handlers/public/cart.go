package public

import (
	"github.com/freshcart/internal/http/response"

	"github.com/gin-gonic/gin"
)

// AddCartItemRequest 加入购物车请求
type AddCartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	// Quantity 详情页选择的数量；加入购物车固定 +1，该字段只记录不生效
	Quantity *int `json:"quantity"`
}

// UpdateCartItemRequest 修改数量请求
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	session, ok := getCartSession(c)
	if !ok {
		return
	}
	view, err := h.CartService.Get(c.Request.Context(), session)
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, msgCartFetchFailed)
		return
	}
	response.Success(c, view)
}

// AddCartItem 加入购物车
func (h *Handler) AddCartItem(c *gin.Context) {
	session, ok := getCartSession(c)
	if !ok {
		return
	}
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, msgBadRequest)
		return
	}
	if req.Quantity != nil && *req.Quantity != 1 {
		requestLog(c).Debugw("cart_add_quantity_ignored",
			"product_id", req.ProductID,
			"requested_quantity", *req.Quantity,
		)
	}
	view, err := h.CartService.AddItem(c.Request.Context(), session, req.ProductID)
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, msgCartUpdateFailed)
		return
	}
	response.Success(c, view)
}

// UpdateCartItem 修改数量，数量 <= 0 时移除
func (h *Handler) UpdateCartItem(c *gin.Context) {
	session, ok := getCartSession(c)
	if !ok {
		return
	}
	productID, ok := parseProductID(c, "product_id")
	if !ok {
		return
	}
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, msgBadRequest)
		return
	}
	view, err := h.CartService.SetQuantity(c.Request.Context(), session, productID, *req.Quantity)
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, msgCartUpdateFailed)
		return
	}
	response.Success(c, view)
}

// RemoveCartItem 移除购物车项
func (h *Handler) RemoveCartItem(c *gin.Context) {
	session, ok := getCartSession(c)
	if !ok {
		return
	}
	productID, ok := parseProductID(c, "product_id")
	if !ok {
		return
	}
	view, err := h.CartService.RemoveItem(c.Request.Context(), session, productID)
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, msgCartUpdateFailed)
		return
	}
	response.Success(c, view)
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	session, ok := getCartSession(c)
	if !ok {
		return
	}
	if err := h.CartService.Clear(session); err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, msgCartUpdateFailed)
		return
	}
	view, err := h.CartService.Get(c.Request.Context(), session)
	if err != nil {
		respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, msgCartFetchFailed)
		return
	}
	response.Success(c, view)
}
