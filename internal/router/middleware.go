package router

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/freshcart/internal/config"
	"github.com/freshcart/internal/constants"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
	healthPath      = "/health"
)

var (
	cartSessionPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)
	requestIDPattern   = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

	defaultCORSMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	defaultCORSHeaders = []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Cache-Control",
		"X-Requested-With",
		requestIDHeader,
		constants.CartSessionHeader,
	}
)

// corsPolicy 启动时预先拼好的跨域响应头
type corsPolicy struct {
	origins     []string
	wildcard    bool
	credentials bool
	methods     string
	headers     string
	expose      string
	maxAge      string
}

func newCORSPolicy(cfg config.CORSConfig) corsPolicy {
	p := corsPolicy{
		credentials: cfg.AllowCredentials,
		methods:     strings.Join(orDefault(cfg.AllowedMethods, defaultCORSMethods), ", "),
		headers:     strings.Join(orDefault(cfg.AllowedHeaders, defaultCORSHeaders), ", "),
		expose:      requestIDHeader + ", " + constants.CartSessionHeader,
	}
	for _, origin := range orDefault(cfg.AllowedOrigins, []string{"*"}) {
		origin = strings.TrimSpace(origin)
		switch origin {
		case "":
		case "*":
			p.wildcard = true
		default:
			p.origins = append(p.origins, origin)
		}
	}
	if cfg.MaxAge > 0 {
		p.maxAge = strconv.Itoa(cfg.MaxAge)
	}
	return p
}

func orDefault(values, fallback []string) []string {
	if len(values) == 0 {
		return fallback
	}
	return values
}

// allowOrigin 返回应写入 Access-Control-Allow-Origin 的值，空串表示不放行。
// 携带凭证时浏览器不接受 *，回显请求来源。
func (p corsPolicy) allowOrigin(origin string) string {
	if p.wildcard {
		if p.credentials && origin != "" {
			return origin
		}
		return "*"
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range p.origins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

func (p corsPolicy) apply(h http.Header, origin string) {
	if allowed := p.allowOrigin(origin); allowed != "" {
		h.Set("Access-Control-Allow-Origin", allowed)
		if allowed != "*" {
			h.Add("Vary", "Origin")
		}
	}
	if p.credentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
	h.Set("Access-Control-Allow-Headers", p.headers)
	h.Set("Access-Control-Allow-Methods", p.methods)
	h.Set("Access-Control-Expose-Headers", p.expose)
	if p.maxAge != "" {
		h.Set("Access-Control-Max-Age", p.maxAge)
	}
}

// CORSMiddleware 跨域中间件，预检请求直接返回 204
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	policy := newCORSPolicy(cfg)
	return func(c *gin.Context) {
		policy.apply(c.Writer.Header(), c.GetHeader("Origin"))
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// RequestIDMiddleware 沿用上游请求 ID，缺失或格式异常时重新生成
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if !requestIDPattern.MatchString(requestID) {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// CartSessionMiddleware 购物车会话中间件：沿用客户端会话 ID，缺失或非法时签发新的
func CartSessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := strings.TrimSpace(c.GetHeader(constants.CartSessionHeader))
		if !cartSessionPattern.MatchString(session) {
			session = uuid.NewString()
		}
		c.Set(constants.CartSessionCtxKey, session)
		c.Writer.Header().Set(constants.CartSessionHeader, session)
		c.Next()
	}
}

// LoggerMiddleware 请求日志；5xx 记 error，4xx 记 warn，健康检查不记录
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Request.URL.Path == healthPath {
			return
		}
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("cart_session", c.GetString(constants.CartSessionCtxKey)),
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case status >= http.StatusInternalServerError || len(c.Errors) > 0:
			logger.Error("http_request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("http_request", fields...)
		default:
			logger.Info("http_request", fields...)
		}
	}
}
