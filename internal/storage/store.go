package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/freshcart/internal/config"
	"github.com/freshcart/internal/constants"
)

// ErrObjectNotFound 对象不存在
var ErrObjectNotFound = errors.New("storage object not found")

// ErrEmptyKey 对象 key 为空
var ErrEmptyKey = errors.New("storage object key is empty")

// ImageStore 商品图片只读存储，按 key 返回可公开访问的 URL
type ImageStore interface {
	PublicURL(ctx context.Context, key string) (string, error)
}

// NewImageStore 根据配置创建图片存储
func NewImageStore(ctx context.Context, cfg config.StorageConfig) (ImageStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", constants.StorageProviderPublic:
		store, err := NewPublicImageStore(cfg.PublicBaseURL, cfg.Bucket, cfg.Prefix)
		if err != nil {
			return nil, err
		}
		return store, nil
	case constants.StorageProviderS3:
		store, err := NewS3ImageStore(ctx, S3ImageStoreConfig{
			Bucket:        cfg.Bucket,
			Region:        cfg.Region,
			Endpoint:      cfg.Endpoint,
			Prefix:        cfg.Prefix,
			PublicBaseURL: cfg.PublicBaseURL,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Provider)
	}
}

// joinObjectURL 拼接对象访问地址，key 按路径段转义
func joinObjectURL(base, bucket, key string) string {
	segments := []string{strings.TrimRight(strings.TrimSpace(base), "/")}
	if bucket = strings.Trim(strings.TrimSpace(bucket), "/"); bucket != "" {
		segments = append(segments, url.PathEscape(bucket))
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" {
			continue
		}
		segments = append(segments, url.PathEscape(part))
	}
	return strings.Join(segments, "/")
}

func objectKey(prefix, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrEmptyKey
	}
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return key, nil
	}
	return prefix + "/" + key, nil
}
