package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/freshcart/internal/http/response"
	"github.com/freshcart/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	msgRateLimitUnavailable = "rate limiter unavailable, please retry"
	defaultRateLimitMessage = "too many requests, please retry in %d seconds"
)

// RateLimitKeyFunc 从请求中提取限流维度
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 固定窗口限流规则
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	Message       string // 可含一个 %d，替换为需等待的秒数
}

func (r RateLimitRule) enabled() bool {
	return r.WindowSeconds > 0 && r.MaxRequests > 0
}

// fixedWindowScript 计数 +1，首次命中时设置窗口过期；返回 {count, ttl}
var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

// RateLimitDecision 单次限流判定结果
type RateLimitDecision struct {
	Allowed     bool
	Remaining   int
	WaitSeconds int
}

// RateLimiter 基于 Redis 的固定窗口限流器
type RateLimiter struct {
	client *redis.Client
	rule   RateLimitRule
}

// NewRateLimiter 创建限流器；client 为空或规则无效时放行所有请求
func NewRateLimiter(client *redis.Client, rule RateLimitRule) *RateLimiter {
	return &RateLimiter{client: client, rule: rule}
}

// Allow 对 key 计数并判定是否放行
func (l *RateLimiter) Allow(ctx context.Context, key string) (RateLimitDecision, error) {
	if l == nil || l.client == nil || !l.rule.enabled() {
		return RateLimitDecision{Allowed: true, Remaining: -1}, nil
	}
	if l.rule.Prefix != "" {
		key = l.rule.Prefix + ":" + key
	}
	result, err := fixedWindowScript.Run(ctx, l.client, []string{key}, l.rule.WindowSeconds).Result()
	if err != nil {
		return RateLimitDecision{}, fmt.Errorf("run rate limit script: %w", err)
	}
	values, ok := result.([]interface{})
	if !ok || len(values) < 2 {
		return RateLimitDecision{}, fmt.Errorf("unexpected rate limit result %T", result)
	}
	count, ok := toInt64(values[0])
	if !ok {
		return RateLimitDecision{}, fmt.Errorf("unexpected rate limit count %v", values[0])
	}
	ttl, _ := toInt64(values[1])
	return l.decide(count, ttl), nil
}

func (l *RateLimiter) decide(count, ttl int64) RateLimitDecision {
	limit := int64(l.rule.MaxRequests)
	if count <= limit {
		return RateLimitDecision{Allowed: true, Remaining: int(limit - count)}
	}
	wait := int(ttl)
	if wait < 1 {
		wait = l.rule.WindowSeconds
	}
	if wait < 1 {
		wait = 1
	}
	return RateLimitDecision{Allowed: false, WaitSeconds: wait}
}

func (l *RateLimiter) message(wait int) string {
	msg := strings.TrimSpace(l.rule.Message)
	if msg == "" {
		msg = defaultRateLimitMessage
	}
	if strings.Contains(msg, "%d") {
		return fmt.Sprintf(msg, wait)
	}
	return msg
}

// RateLimitMiddleware Redis 频率限制中间件
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	limiter := NewRateLimiter(client, rule)
	return func(c *gin.Context) {
		key := ""
		if keyFunc != nil {
			key = strings.TrimSpace(keyFunc(c))
		}
		if key == "" {
			key = c.ClientIP()
		}

		decision, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Warnw("rate_limit_check_failed", "prefix", rule.Prefix, "error", err)
			response.ServiceUnavailable(c, msgRateLimitUnavailable)
			c.Abort()
			return
		}
		if !decision.Allowed {
			c.Header("Retry-After", strconv.Itoa(decision.WaitSeconds))
			response.Error(c, response.CodeTooManyRequests, limiter.message(decision.WaitSeconds))
			c.Abort()
			return
		}
		if decision.Remaining >= 0 {
			c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		}
		c.Next()
	}
}

// KeyByIP 按客户端 IP 限流
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByIPAndJSONField 按 JSON 字段 + IP 限流（如下单手机号）；读取后恢复请求体
func KeyByIPAndJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(strings.TrimSpace(readJSONField(c, field)))
		if value == "" {
			return c.ClientIP()
		}
		return value + "|" + c.ClientIP()
	}
}

func readJSONField(c *gin.Context, field string) string {
	if c == nil || c.Request == nil || c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil || len(body) == 0 {
		return ""
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	raw, ok := payload[field]
	if !ok {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint64:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint8:
		return int64(v), true
	case float64:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
