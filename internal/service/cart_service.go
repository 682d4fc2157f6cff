package service

import (
	"context"
	"strings"
	"sync"

	"github.com/freshcart/internal/constants"
	"github.com/freshcart/internal/logger"
	"github.com/freshcart/internal/models"
	"github.com/freshcart/internal/queue"
	"github.com/freshcart/internal/repository"
)

// CartLineView 购物车行展示数据
type CartLineView struct {
	CartLine
	LineTotal       models.Money `json:"line_total"`
	DiscountPercent int          `json:"discount_percent"`
	ImageURL        string       `json:"image_url,omitempty"`
}

// CartView 购物车展示数据
type CartView struct {
	Lines     []CartLineView `json:"lines"`
	Totals    OrderTotals    `json:"totals"`
	ItemCount int            `json:"item_count"`
	Empty     bool           `json:"empty"`
}

// CartChangeObserver 会话购物车变更回调
type CartChangeObserver func(session string, cart Cart)

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// CartService 会话购物车服务，同一会话的操作串行执行
type CartService struct {
	repo       repository.CartSnapshotRepository
	catalog    *CatalogService
	images     *ImageService
	pricing    *PricingCalculator
	slotPrefix string

	locksMu sync.Mutex
	locks   map[string]*sessionLock

	observersMu sync.RWMutex
	observers   []CartChangeObserver
}

// NewCartService 创建购物车服务
func NewCartService(repo repository.CartSnapshotRepository, catalog *CatalogService, images *ImageService, pricing *PricingCalculator, slotPrefix string) *CartService {
	slotPrefix = strings.TrimSpace(slotPrefix)
	if slotPrefix == "" {
		slotPrefix = constants.CartSlotPrefix
	}
	if pricing == nil {
		pricing = DefaultPricingCalculator()
	}
	return &CartService{
		repo:       repo,
		catalog:    catalog,
		images:     images,
		pricing:    pricing,
		slotPrefix: slotPrefix,
		locks:      make(map[string]*sessionLock),
	}
}

// OnChange 注册购物车变更回调
func (s *CartService) OnChange(observer CartChangeObserver) {
	if observer == nil {
		return
	}
	s.observersMu.Lock()
	s.observers = append(s.observers, observer)
	s.observersMu.Unlock()
}

// Get 获取会话购物车
func (s *CartService) Get(ctx context.Context, session string) (*CartView, error) {
	cart, err := s.Lines(session)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, cart), nil
}

// Lines 获取会话购物车行
func (s *CartService) Lines(session string) (Cart, error) {
	var cart Cart
	err := s.withStore(session, func(store *CartStore) error {
		cart = store.Lines()
		return nil
	})
	return cart, err
}

// AddItem 加入商品，每次加入数量 +1
func (s *CartService) AddItem(ctx context.Context, session string, productID uint) (*CartView, error) {
	if productID == 0 {
		return nil, ErrInvalidCartItem
	}
	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	var cart Cart
	err = s.withStore(session, func(store *CartStore) error {
		var addErr error
		cart, addErr = store.AddItem(*product)
		return addErr
	})
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, cart), nil
}

// SetQuantity 设置数量，数量 <= 0 时删除该行
func (s *CartService) SetQuantity(ctx context.Context, session string, productID uint, quantity int) (*CartView, error) {
	var cart Cart
	err := s.withStore(session, func(store *CartStore) error {
		var err error
		cart, err = store.SetQuantity(productID, quantity)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, cart), nil
}

// RemoveItem 删除商品行
func (s *CartService) RemoveItem(ctx context.Context, session string, productID uint) (*CartView, error) {
	var cart Cart
	err := s.withStore(session, func(store *CartStore) error {
		var err error
		cart, err = store.RemoveItem(productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, cart), nil
}

// Clear 清空会话购物车
func (s *CartService) Clear(session string) error {
	return s.withStore(session, func(store *CartStore) error {
		return store.Clear()
	})
}

// TakeForOrder 在同一次会话锁内读取购物车、调用 compose 并清空购物车。
// 购物车为空返回 ErrCartEmpty；compose 返回错误时购物车保持不变。
func (s *CartService) TakeForOrder(session string, compose func(cart Cart) error) (Cart, error) {
	var taken Cart
	err := s.withStore(session, func(store *CartStore) error {
		cart := store.Lines()
		if len(cart) == 0 {
			return ErrCartEmpty
		}
		if err := compose(cart); err != nil {
			return err
		}
		if err := store.Clear(); err != nil {
			return err
		}
		taken = cart
		return nil
	})
	if err != nil {
		return nil, err
	}
	return taken, nil
}

// Totals 计算会话购物车金额
func (s *CartService) Totals(cart Cart) OrderTotals {
	return s.pricing.Totals(cart)
}

func (s *CartService) withStore(session string, fn func(store *CartStore) error) error {
	session = strings.TrimSpace(session)
	if session == "" {
		return ErrInvalidSession
	}
	unlock := s.lockSession(session)
	defer unlock()

	store, err := OpenCartStore(s.repo, s.slotPrefix+":"+session)
	if err != nil {
		logger.Errorw("cart_snapshot_load_failed", "session", session, "error", err)
		return err
	}
	unsubscribe := store.Subscribe(func(cart Cart) {
		s.notify(session, cart)
	})
	defer unsubscribe()
	return fn(store)
}

func (s *CartService) notify(session string, cart Cart) {
	s.observersMu.RLock()
	observers := make([]CartChangeObserver, len(s.observers))
	copy(observers, s.observers)
	s.observersMu.RUnlock()
	for _, observer := range observers {
		observer(session, cart)
	}
}

// lockSession 获取会话锁，引用计数归零时回收
func (s *CartService) lockSession(session string) func() {
	s.locksMu.Lock()
	lock, ok := s.locks[session]
	if !ok {
		lock = &sessionLock{}
		s.locks[session] = lock
	}
	lock.refs++
	s.locksMu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		s.locksMu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.locks, session)
		}
		s.locksMu.Unlock()
	}
}

func (s *CartService) buildView(ctx context.Context, cart Cart) *CartView {
	var urls map[uint]string
	if s.images != nil && len(cart) > 0 {
		items := make([]ImageItem, 0, len(cart))
		for _, line := range cart {
			items = append(items, ImageItem{ID: line.ID, Name: line.Name})
		}
		urls = s.images.ResolveMany(ctx, items)
	}

	lines := make([]CartLineView, 0, len(cart))
	for _, line := range cart {
		product := models.Product{Price: line.Price, FinalPrice: line.FinalPrice}
		lines = append(lines, CartLineView{
			CartLine:        line,
			LineTotal:       models.NewMoneyFromDecimal(line.LineTotal()),
			DiscountPercent: product.DiscountPercent(),
			ImageURL:        urls[line.ID],
		})
	}
	return &CartView{
		Lines:     lines,
		Totals:    s.pricing.Totals(cart),
		ItemCount: cart.ItemCount(),
		Empty:     len(cart) == 0,
	}
}

// NewImageWarmObserver 购物车每次变更后按商品逐个投递图片预热任务；
// 同名任务在队列去重窗口内只保留一个，已在购物车中的商品不会重复预热。
// 清空购物车不投递。
func NewImageWarmObserver(enqueuer ImageWarmEnqueuer) CartChangeObserver {
	return func(session string, cart Cart) {
		if enqueuer == nil {
			return
		}
		for _, line := range cart {
			if err := enqueuer.EnqueueImageWarm(queue.ImageWarmPayload{Names: []string{line.Name}}); err != nil {
				logger.Warnw("cart_image_warm_enqueue_failed", "session", session, "product_id", line.ID, "error", err)
			}
		}
	}
}
