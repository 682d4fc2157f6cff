package service

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/freshcart/internal/logger"
	"github.com/freshcart/internal/models"
	"github.com/freshcart/internal/repository"

	"github.com/shopspring/decimal"
)

// CartLine 购物车行：商品字段快照 + 数量，以商品 ID 作为标识
type CartLine struct {
	ID          uint         `json:"id"`
	Name        string       `json:"name"`
	Category    string       `json:"category"`
	Price       models.Money `json:"price"`
	FinalPrice  models.Money `json:"final_price"`
	Unit        string       `json:"unit"`
	Description string       `json:"description,omitempty"`
	Quantity    int          `json:"quantity"`
}

func newCartLine(product models.Product) CartLine {
	return CartLine{
		ID:          product.ID,
		Name:        product.Name,
		Category:    product.Category,
		Price:       product.Price,
		FinalPrice:  product.FinalPrice,
		Unit:        product.Unit,
		Description: product.Description,
		Quantity:    1,
	}
}

// LineTotal 折后小计
func (l CartLine) LineTotal() decimal.Decimal {
	return l.FinalPrice.Times(l.Quantity).Decimal
}

// OriginalLineTotal 原价小计
func (l CartLine) OriginalLineTotal() decimal.Decimal {
	return l.Price.Times(l.Quantity).Decimal
}

// Cart 购物车，保留插入顺序
type Cart []CartLine

// Clone 复制购物车
func (c Cart) Clone() Cart {
	cloned := make(Cart, len(c))
	copy(cloned, c)
	return cloned
}

// IndexOf 返回商品所在行下标，不存在时返回 -1
func (c Cart) IndexOf(id uint) int {
	for i := range c {
		if c[i].ID == id {
			return i
		}
	}
	return -1
}

// ItemCount 商品件数合计
func (c Cart) ItemCount() int {
	count := 0
	for _, line := range c {
		count += line.Quantity
	}
	return count
}

// EncodeCart 序列化购物车为 JSON 数组
func EncodeCart(cart Cart) ([]byte, error) {
	if cart == nil {
		cart = Cart{}
	}
	return json.Marshal(cart)
}

// DecodeCart 反序列化购物车；重复行、非法 ID 或数量小于 1 视为快照损坏
func DecodeCart(payload []byte) (Cart, error) {
	var cart Cart
	if err := json.Unmarshal(payload, &cart); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceCorrupt, err)
	}
	seen := make(map[uint]struct{}, len(cart))
	for _, line := range cart {
		if line.ID == 0 || line.Quantity < 1 {
			return nil, fmt.Errorf("%w: invalid line id=%d quantity=%d", ErrPersistenceCorrupt, line.ID, line.Quantity)
		}
		if _, ok := seen[line.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate line id=%d", ErrPersistenceCorrupt, line.ID)
		}
		seen[line.ID] = struct{}{}
	}
	if cart == nil {
		cart = Cart{}
	}
	return cart, nil
}

// CartObserver 购物车变更回调，收到的是已持久化的快照副本
type CartObserver func(cart Cart)

// CartStore 单个会话的购物车，所有变更先写快照槽位再返回
type CartStore struct {
	slot string
	repo repository.CartSnapshotRepository

	mu        sync.Mutex
	lines     Cart
	observers map[int]CartObserver
	nextID    int
}

// OpenCartStore 打开槽位并加载快照；快照损坏时回落为空购物车
func OpenCartStore(repo repository.CartSnapshotRepository, slot string) (*CartStore, error) {
	store := &CartStore{
		slot:      slot,
		repo:      repo,
		lines:     Cart{},
		observers: make(map[int]CartObserver),
	}
	if err := store.load(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *CartStore) load() error {
	payload, found, err := s.repo.Load(s.slot)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	cart, err := DecodeCart(payload)
	if err != nil {
		logger.Warnw("cart_snapshot_corrupt_reset", "slot", s.slot, "error", err)
		return nil
	}
	s.lines = cart
	return nil
}

// Lines 当前购物车副本
func (s *CartStore) Lines() Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines.Clone()
}

// ItemCount 商品件数合计
func (s *CartStore) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines.ItemCount()
}

// Subscribe 注册变更回调，返回取消函数
func (s *CartStore) Subscribe(observer CartObserver) func() {
	if observer == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = observer
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// AddItem 加入商品：已存在则数量 +1，否则追加数量为 1 的新行
func (s *CartStore) AddItem(product models.Product) (Cart, error) {
	if product.ID == 0 {
		return nil, ErrInvalidCartItem
	}
	return s.mutate(func(cart Cart) (Cart, bool) {
		if idx := cart.IndexOf(product.ID); idx >= 0 {
			cart[idx].Quantity++
			return cart, true
		}
		return append(cart, newCartLine(product)), true
	})
}

// RemoveItem 删除商品行，不存在时不做任何事
func (s *CartStore) RemoveItem(id uint) (Cart, error) {
	return s.mutate(func(cart Cart) (Cart, bool) {
		idx := cart.IndexOf(id)
		if idx < 0 {
			return cart, false
		}
		return append(cart[:idx], cart[idx+1:]...), true
	})
}

// SetQuantity 设置数量，数量 <= 0 等同于删除
func (s *CartStore) SetQuantity(id uint, quantity int) (Cart, error) {
	if quantity <= 0 {
		return s.RemoveItem(id)
	}
	return s.mutate(func(cart Cart) (Cart, bool) {
		idx := cart.IndexOf(id)
		if idx < 0 || cart[idx].Quantity == quantity {
			return cart, false
		}
		cart[idx].Quantity = quantity
		return cart, true
	})
}

// Clear 清空购物车
func (s *CartStore) Clear() error {
	_, err := s.mutate(func(cart Cart) (Cart, bool) {
		return Cart{}, true
	})
	return err
}

// mutate 在副本上变更，写入成功后才替换内存状态并通知观察者
func (s *CartStore) mutate(fn func(cart Cart) (Cart, bool)) (Cart, error) {
	s.mu.Lock()
	next, changed := fn(s.lines.Clone())
	if !changed {
		current := s.lines.Clone()
		s.mu.Unlock()
		return current, nil
	}
	payload, err := EncodeCart(next)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if err := s.repo.Save(s.slot, payload); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("save cart snapshot failed: %w", err)
	}
	s.lines = next
	snapshot := next.Clone()
	observers := make([]CartObserver, 0, len(s.observers))
	for _, observer := range s.observers {
		observers = append(observers, observer)
	}
	s.mu.Unlock()

	for _, observer := range observers {
		observer(snapshot.Clone())
	}
	return snapshot, nil
}
