package public

import (
	handlershared "github.com/freshcart/internal/http/handlers/shared"
	"github.com/freshcart/internal/http/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func getCartSession(c *gin.Context) (string, bool) {
	session := handlershared.CartSession(c)
	if session == "" {
		respondError(c, response.CodeBadRequest, msgCartSessionMissing, nil)
		return "", false
	}
	return session, true
}

func parseProductID(c *gin.Context, name string) (uint, bool) {
	return handlershared.ParseUintParam(c, name, msgProductIDInvalid)
}

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}
