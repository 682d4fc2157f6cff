package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/freshcart/internal/cache"
	"github.com/freshcart/internal/constants"
	"github.com/freshcart/internal/logger"
	"github.com/freshcart/internal/models"
	"github.com/freshcart/internal/queue"
	"github.com/freshcart/internal/repository"

	"github.com/hibiken/asynq"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ImageWarmEnqueuer 图片预热任务投递
type ImageWarmEnqueuer interface {
	EnqueueImageWarm(payload queue.ImageWarmPayload, opts ...asynq.Option) error
}

// BrowseQuery 首页浏览条件
type BrowseQuery struct {
	Category string
	Query    string
	Sort     string
}

// CatalogService 商品目录只读服务
type CatalogService struct {
	repo       repository.ProductRepository
	categories []string
	cacheTTL   time.Duration
	warmer     ImageWarmEnqueuer
}

// NewCatalogService 创建商品目录服务
func NewCatalogService(repo repository.ProductRepository, categories []string, cacheTTL time.Duration, warmer ImageWarmEnqueuer) *CatalogService {
	return &CatalogService{
		repo:       repo,
		categories: normalizeCategories(categories),
		cacheTTL:   cacheTTL,
		warmer:     warmer,
	}
}

// Categories 分类标签，首项固定为 All Products
func (s *CatalogService) Categories() []string {
	result := make([]string, len(s.categories))
	copy(result, s.categories)
	return result
}

// ListProducts 按分类获取商品；分类为空或为 All Products 时返回全部
func (s *CatalogService) ListProducts(ctx context.Context, category string) ([]models.Product, error) {
	category = strings.TrimSpace(category)
	if category == "" || strings.EqualFold(category, constants.CategoryAll) {
		category = ""
	}
	cacheKey := cache.CatalogKey(category)
	if category == "" {
		cacheKey = cache.CatalogKey(constants.CategoryAll)
	}

	return cache.Remember(ctx, cacheKey, s.cacheTTL, func() ([]models.Product, error) {
		products, err := s.repo.List(repository.ProductListFilter{Category: category})
		if err != nil {
			logger.Errorw("catalog_list_failed", "category", category, "error", err)
			return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
		}
		s.warmImages(products)
		return products, nil
	})
}

// GetProduct 商品详情
func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	return cache.Remember(ctx, cache.ProductKey(id), s.cacheTTL, func() (*models.Product, error) {
		product, err := s.repo.GetByID(id)
		if err != nil {
			logger.Errorw("catalog_get_failed", "product_id", id, "error", err)
			return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
		}
		if product == nil {
			return nil, ErrNotFound
		}
		return product, nil
	})
}

// Browse 分类过滤 -> 关键字搜索 -> 排序
func (s *CatalogService) Browse(ctx context.Context, query BrowseQuery) ([]models.Product, error) {
	products, err := s.ListProducts(ctx, query.Category)
	if err != nil {
		return nil, err
	}
	return SortProducts(SearchProducts(products, query.Query), query.Sort), nil
}

func (s *CatalogService) warmImages(products []models.Product) {
	if s.warmer == nil || len(products) == 0 {
		return
	}
	names := make([]string, 0, len(products))
	for _, product := range products {
		names = append(names, product.Name)
	}
	if err := s.warmer.EnqueueImageWarm(queue.ImageWarmPayload{Names: names}); err != nil {
		logger.Warnw("catalog_image_warm_enqueue_failed", "count", len(names), "error", err)
	}
}

// SearchProducts 名称或描述不区分大小写包含关键字；关键字为空时原样返回
func SearchProducts(products []models.Product, query string) []models.Product {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return products
	}
	result := make([]models.Product, 0, len(products))
	for _, product := range products {
		if strings.Contains(strings.ToLower(product.Name), query) ||
			strings.Contains(strings.ToLower(product.Description), query) {
			result = append(result, product)
		}
	}
	return result
}

// SortProducts 稳定排序并返回新切片；未知排序方式保持原顺序
func SortProducts(products []models.Product, key string) []models.Product {
	sorted := make([]models.Product, len(products))
	copy(sorted, products)

	switch strings.TrimSpace(key) {
	case constants.SortByName:
		collator := collate.New(language.English)
		sort.SliceStable(sorted, func(i, j int) bool {
			return collator.CompareString(sorted[i].Name, sorted[j].Name) < 0
		})
	case constants.SortByPriceLow:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Price.LessThan(sorted[j].Price.Decimal)
		})
	case constants.SortByPriceHigh:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Price.GreaterThan(sorted[j].Price.Decimal)
		})
	}
	return sorted
}

func normalizeCategories(categories []string) []string {
	result := []string{constants.CategoryAll}
	seen := map[string]struct{}{strings.ToLower(constants.CategoryAll): {}}
	for _, category := range categories {
		category = strings.TrimSpace(category)
		if category == "" {
			continue
		}
		key := strings.ToLower(category)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, category)
	}
	return result
}
