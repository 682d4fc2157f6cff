package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/freshcart/internal/config"
	"github.com/freshcart/internal/logger"

	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix      = "fc"
	defaultHost        = "127.0.0.1"
	defaultPort        = 6379
	connectPingTimeout = 2 * time.Second
)

var (
	redisClient *redis.Client
	redisPrefix = defaultPrefix
)

// InitRedis 初始化 Redis 客户端；连不上时保持未启用，缓存读写全部降级为直连数据源
func InitRedis(cfg *config.RedisConfig) error {
	_ = Close()
	redisPrefix = defaultPrefix
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	if prefix := strings.TrimSpace(cfg.Prefix); prefix != "" {
		redisPrefix = prefix
	}

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr(cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), connectPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("redis ping %s failed: %w", client.Options().Addr, err)
	}
	redisClient = client
	logger.Infow("redis_connected", "addr", client.Options().Addr, "prefix", redisPrefix)
	return nil
}

func redisAddr(host string, port int) string {
	host = strings.TrimSpace(host)
	if host == "" {
		host = defaultHost
	}
	if port <= 0 {
		port = defaultPort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Ping 检查 Redis 连通性，未启用时直接返回
func Ping(ctx context.Context) error {
	if !Enabled() {
		return nil
	}
	return redisClient.Ping(ctx).Err()
}

// Close 关闭 Redis 客户端
func Close() error {
	if redisClient == nil {
		return nil
	}
	err := redisClient.Close()
	redisClient = nil
	return err
}

// Enabled 判断缓存是否可用
func Enabled() bool {
	return redisClient != nil
}

// Client 获取 Redis 客户端，未启用时为 nil
func Client() *redis.Client {
	return redisClient
}

// Prefix 当前 key 前缀
func Prefix() string {
	return redisPrefix
}

// GetJSON 读取 JSON 缓存，未命中返回 false
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !Enabled() {
		return false, nil
	}
	val, err := redisClient.Get(ctx, BuildKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, fmt.Errorf("decode cache %s: %w", key, err)
	}
	return true, nil
}

// SetJSON 写入 JSON 缓存；ttl 非正数时不写
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !Enabled() || ttl <= 0 {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return redisClient.Set(ctx, BuildKey(key), payload, ttl).Err()
}

// Remember 读穿缓存：命中直接返回，否则调用 load 并回写。
// 缓存读写失败只记日志，load 的错误原样返回。
func Remember[T any](ctx context.Context, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var cached T
	hit, err := GetJSON(ctx, key, &cached)
	if err != nil {
		logger.Warnw("cache_get_failed", "key", key, "error", err)
	} else if hit {
		return cached, nil
	}

	value, err := load()
	if err != nil {
		return value, err
	}
	if err := SetJSON(ctx, key, value, ttl); err != nil {
		logger.Warnw("cache_set_failed", "key", key, "error", err)
	}
	return value, nil
}

// Del 删除缓存
func Del(ctx context.Context, keys ...string) error {
	if !Enabled() || len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, key := range keys {
		full = append(full, BuildKey(key))
	}
	return redisClient.Del(ctx, full...).Err()
}

// BuildKey 拼接带前缀的缓存 key
func BuildKey(key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return redisPrefix
	}
	return redisPrefix + ":" + trimmed
}

// CatalogKey 商品列表缓存 key（按分类）
func CatalogKey(category string) string {
	return "catalog:" + strings.ToLower(strings.TrimSpace(category))
}

// ProductKey 商品详情缓存 key
func ProductKey(id uint) string {
	return "product:" + strconv.FormatUint(uint64(id), 10)
}

// ImageURLKey 图片 URL 缓存 key（按归一化后的图片 key）
func ImageURLKey(normalized string) string {
	return "image:" + normalized
}
