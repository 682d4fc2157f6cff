package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/freshcart/internal/cache"
	"github.com/freshcart/internal/logger"
	"github.com/freshcart/internal/storage"

	"golang.org/x/sync/errgroup"
)

const (
	defaultImageLookupTimeout = 3 * time.Second
	defaultImageConcurrency   = 8
)

var (
	imageExtPattern   = regexp.MustCompile(`(?i)\.(jpg|jpeg|png)$`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// NormalizeImageKey 商品名转图片 key：小写、去扩展名、合并空白、去首尾空白
func NormalizeImageKey(name string) string {
	key := strings.ToLower(name)
	key = imageExtPattern.ReplaceAllString(key, "")
	key = whitespacePattern.ReplaceAllString(key, " ")
	return strings.TrimSpace(key)
}

// ImageItem 待解析图片的商品
type ImageItem struct {
	ID   uint
	Name string
}

// ImageService 商品图片解析，失败只影响单个商品
type ImageService struct {
	store         storage.ImageStore
	lookupTimeout time.Duration
	cacheTTL      time.Duration
	concurrency   int
}

// NewImageService 创建图片解析服务，store 为空时所有解析都返回未解析
func NewImageService(store storage.ImageStore, lookupTimeout, cacheTTL time.Duration, concurrency int) *ImageService {
	if lookupTimeout <= 0 {
		lookupTimeout = defaultImageLookupTimeout
	}
	if concurrency <= 0 {
		concurrency = defaultImageConcurrency
	}
	return &ImageService{
		store:         store,
		lookupTimeout: lookupTimeout,
		cacheTTL:      cacheTTL,
		concurrency:   concurrency,
	}
}

// Resolve 解析单个商品图片地址，未找到或查询失败时返回 ErrImageUnresolved
func (s *ImageService) Resolve(ctx context.Context, name string) (string, error) {
	key := NormalizeImageKey(name)
	if key == "" || s.store == nil {
		return "", ErrImageUnresolved
	}

	cacheKey := cache.ImageURLKey(key)
	var cached string
	if hit, err := cache.GetJSON(ctx, cacheKey, &cached); err != nil {
		logger.Debugw("image_url_cache_get_failed", "key", key, "error", err)
	} else if hit && cached != "" {
		return cached, nil
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
	defer cancel()
	url, err := s.store.PublicURL(lookupCtx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrObjectNotFound) {
			logger.Warnw("image_resolve_failed", "key", key, "error", err)
		}
		return "", fmt.Errorf("%w: %v", ErrImageUnresolved, err)
	}
	if s.cacheTTL > 0 {
		if err := cache.SetJSON(ctx, cacheKey, url, s.cacheTTL); err != nil {
			logger.Debugw("image_url_cache_set_failed", "key", key, "error", err)
		}
	}
	return url, nil
}

// ResolveMany 每个商品一个 goroutine 独立解析，互不等待也互不取消；未解析的商品不出现在结果中
func (s *ImageService) ResolveMany(ctx context.Context, items []ImageItem) map[uint]string {
	return s.resolveAll(ctx, items, 0)
}

// Warm 预先解析并写入缓存，返回成功数量；在 worker 中运行，按 concurrency 限流
func (s *ImageService) Warm(ctx context.Context, names []string) int {
	items := make([]ImageItem, 0, len(names))
	for i, name := range names {
		items = append(items, ImageItem{ID: uint(i + 1), Name: name})
	}
	return len(s.resolveAll(ctx, items, s.concurrency))
}

// resolveAll limit <= 0 表示不限并发
func (s *ImageService) resolveAll(ctx context.Context, items []ImageItem, limit int) map[uint]string {
	urls := make([]string, len(items))
	var group errgroup.Group
	if limit > 0 {
		group.SetLimit(limit)
	}
	for i, item := range items {
		group.Go(func() error {
			url, err := s.Resolve(ctx, item.Name)
			if err == nil {
				urls[i] = url
			}
			return nil
		})
	}
	_ = group.Wait()

	result := make(map[uint]string, len(items))
	for i, item := range items {
		if urls[i] != "" {
			result[item.ID] = urls[i]
		}
	}
	return result
}
