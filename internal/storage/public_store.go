package storage

import (
	"context"
	"errors"
	"strings"
)

// PublicImageStore 公开桶图片存储：只拼接地址，不做存在性检查
type PublicImageStore struct {
	baseURL string
	bucket  string
	prefix  string
}

// NewPublicImageStore 创建公开桶图片存储
func NewPublicImageStore(baseURL, bucket, prefix string) (*PublicImageStore, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("storage public_base_url is required for public provider")
	}
	return &PublicImageStore{baseURL: baseURL, bucket: bucket, prefix: prefix}, nil
}

// PublicURL 返回对象公开地址
func (s *PublicImageStore) PublicURL(_ context.Context, key string) (string, error) {
	fullKey, err := objectKey(s.prefix, key)
	if err != nil {
		return "", err
	}
	return joinObjectURL(s.baseURL, s.bucket, fullKey), nil
}
