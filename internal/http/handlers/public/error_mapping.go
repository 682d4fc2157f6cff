package public

import (
	"errors"

	handlershared "github.com/freshcart/internal/http/handlers/shared"
	"github.com/freshcart/internal/http/response"
	"github.com/freshcart/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	msgBadRequest           = "invalid request"
	msgProductIDInvalid     = "invalid product id"
	msgProductNotFound      = "product not found"
	msgCatalogUnavailable   = "catalog is temporarily unavailable, please retry"
	msgCartSessionMissing   = "cart session is missing"
	msgCartItemInvalid      = "invalid cart item"
	msgCartEmpty            = "cart is empty"
	msgCartFetchFailed      = "failed to load cart"
	msgCartUpdateFailed     = "failed to update cart"
	msgValidationFailed     = "please correct the highlighted fields"
	msgCheckoutClosed       = "order already submitted"
	msgCheckoutSubmitFailed = "failed to submit order"
	msgCheckoutSubmitted    = "order submitted"
	msgInternal             = "internal error"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		handlershared.RespondErrorWithData(c, response.CodeValidationFailed, msgValidationFailed, gin.H{
			"errors": validationErr.Fields,
		})
		return
	}
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var catalogErrorRules = []mappedHandlerError{
	{target: service.ErrNotFound, code: response.CodeNotFound, msg: msgProductNotFound},
	{target: service.ErrCatalogUnavailable, code: response.CodeServiceUnavailable, msg: msgCatalogUnavailable},
}

var cartErrorRules = concatMappedHandlerErrors(catalogErrorRules, []mappedHandlerError{
	{target: service.ErrInvalidSession, code: response.CodeBadRequest, msg: msgCartSessionMissing},
	{target: service.ErrInvalidCartItem, code: response.CodeBadRequest, msg: msgCartItemInvalid},
})

var checkoutErrorRules = concatMappedHandlerErrors(cartErrorRules, []mappedHandlerError{
	{target: service.ErrCartEmpty, code: response.CodeBadRequest, msg: msgCartEmpty},
	{target: service.ErrCheckoutClosed, code: response.CodeConflict, msg: msgCheckoutClosed},
})
