package provider

import (
	"context"
	"time"

	"github.com/freshcart/internal/cache"
	"github.com/freshcart/internal/config"
	"github.com/freshcart/internal/logger"
	"github.com/freshcart/internal/models"
	"github.com/freshcart/internal/queue"
	"github.com/freshcart/internal/repository"
	"github.com/freshcart/internal/service"
	"github.com/freshcart/internal/storage"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	ImageStore  storage.ImageStore

	// Repositories
	ProductRepo      repository.ProductRepository
	CartSnapshotRepo repository.CartSnapshotRepository

	// Services
	Pricing         *service.PricingCalculator
	CatalogService  *service.CatalogService
	ImageService    *service.ImageService
	CartService     *service.CartService
	CheckoutService *service.CheckoutService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端，未启用时为空实现
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient, _ = queue.NewClient(nil)
	}

	// 初始化图片存储，失败时所有图片降级为占位
	imageStore, err := storage.NewImageStore(context.Background(), cfg.Storage)
	if err != nil {
		logger.Warnw("provider_init_image_store_failed", "provider", cfg.Storage.Provider, "error", err)
		imageStore = nil
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		ImageStore:  imageStore,
	}

	// 1. 初始化 Repositories
	c.initRepositories(models.DB)

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartSnapshotRepo = repository.NewCartSnapshotRepository(db)
}

func (c *Container) initServices() {
	cfg := c.Config
	c.Pricing = service.NewPricingCalculator(
		decimal.NewFromFloat(cfg.Checkout.FreeDeliveryThreshold),
		decimal.NewFromFloat(cfg.Checkout.DeliveryFee),
	)
	c.CatalogService = service.NewCatalogService(
		c.ProductRepo,
		cfg.Catalog.Categories,
		seconds(cfg.Catalog.CacheTTLSeconds),
		c.QueueClient,
	)
	c.ImageService = service.NewImageService(
		c.ImageStore,
		time.Duration(cfg.Storage.LookupTimeoutMS)*time.Millisecond,
		seconds(cfg.Storage.URLCacheTTLSeconds),
		cfg.Storage.Concurrency,
	)
	c.CartService = service.NewCartService(c.CartSnapshotRepo, c.CatalogService, c.ImageService, c.Pricing, cfg.Cart.SlotPrefix)
	c.CartService.OnChange(service.NewImageWarmObserver(c.QueueClient))
	c.CheckoutService = service.NewCheckoutService(
		c.CartService,
		c.Pricing,
		service.LogHandoffDispatcher{},
		cfg.Checkout.WhatsAppNumber,
		cfg.Checkout.CurrencySymbol,
		cfg.Checkout.SuccessRedirect,
	)
}

// Close 释放容器持有的外部连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
	if err := models.CloseDB(); err != nil {
		logger.Warnw("provider_close_database_failed", "error", err)
	}
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}
