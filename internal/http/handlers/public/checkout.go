package public

import (
	"github.com/freshcart/internal/http/response"
	"github.com/freshcart/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckoutRequest 收货信息
type CheckoutRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (r CheckoutRequest) toCustomerInfo() service.CustomerInfo {
	return service.CustomerInfo{Name: r.Name, Phone: r.Phone, Address: r.Address}
}

// ValidateCheckout 校验收货信息（不下单）
func (h *Handler) ValidateCheckout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, msgBadRequest)
		return
	}
	response.Success(c, h.CheckoutService.Validate(req.toCustomerInfo()))
}

// SubmitCheckout 提交订单：返回消息深链，由前端在新窗口打开
func (h *Handler) SubmitCheckout(c *gin.Context) {
	session, ok := getCartSession(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, msgBadRequest)
		return
	}
	result, err := h.CheckoutService.Submit(c.Request.Context(), session, req.toCustomerInfo())
	if err != nil {
		respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, msgCheckoutSubmitFailed)
		return
	}
	response.SuccessWithMsg(c, msgCheckoutSubmitted, result)
}
