package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/freshcart/internal/models"
	"github.com/freshcart/internal/queue"
	"github.com/freshcart/internal/repository"

	"github.com/hibiken/asynq"
)

type memSnapshotRepo struct {
	mu      sync.Mutex
	slots   map[string][]byte
	saveErr error
	loadErr error
	saves   int
}

func newMemSnapshotRepo() *memSnapshotRepo {
	return &memSnapshotRepo{slots: make(map[string][]byte)}
}

func (r *memSnapshotRepo) Load(slot string) ([]byte, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return nil, false, r.loadErr
	}
	payload, ok := r.slots[slot]
	return payload, ok, nil
}

func (r *memSnapshotRepo) Save(slot string, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	r.slots[slot] = append([]byte(nil), payload...)
	return nil
}

func (r *memSnapshotRepo) Delete(slot string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.slots, slot)
	return nil
}

type fakeProductRepo struct {
	products []models.Product
	err      error
	calls    int
}

func (r *fakeProductRepo) List(filter repository.ProductListFilter) ([]models.Product, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	result := make([]models.Product, 0, len(r.products))
	for _, product := range r.products {
		if filter.Category != "" && !strings.EqualFold(product.Category, filter.Category) {
			continue
		}
		result = append(result, product)
	}
	return result, nil
}

func (r *fakeProductRepo) GetByID(id uint) (*models.Product, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	for i := range r.products {
		if r.products[i].ID == id {
			product := r.products[i]
			return &product, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) ListByIDs(ids []uint) ([]models.Product, error) {
	result := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		product, err := r.GetByID(id)
		if err != nil {
			return nil, err
		}
		if product != nil {
			result = append(result, *product)
		}
	}
	return result, nil
}

type recordingWarmer struct {
	mu       sync.Mutex
	payloads []queue.ImageWarmPayload
	err      error
}

func (w *recordingWarmer) EnqueueImageWarm(payload queue.ImageWarmPayload, _ ...asynq.Option) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.payloads = append(w.payloads, payload)
	return w.err
}

type fakeImageStore struct {
	urls  map[string]string
	block map[string]bool
	fail  map[string]error
}

func (s *fakeImageStore) PublicURL(ctx context.Context, key string) (string, error) {
	if s.block[key] {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err := s.fail[key]; err != nil {
		return "", err
	}
	url, ok := s.urls[key]
	if !ok {
		return "", errNoObject
	}
	return url, nil
}

var errNoObject = errors.New("no object")

func product(id uint, name, category, price, finalPrice string) models.Product {
	return models.Product{
		ID:         id,
		Name:       name,
		Category:   category,
		Price:      models.MustMoney(price),
		FinalPrice: models.MustMoney(finalPrice),
		Unit:       "kg",
	}
}

func line(id uint, name, price, finalPrice string, quantity int) CartLine {
	l := newCartLine(product(id, name, "", price, finalPrice))
	l.Quantity = quantity
	return l
}

func openStore(t *testing.T, repo repository.CartSnapshotRepository, slot string) *CartStore {
	t.Helper()
	store, err := OpenCartStore(repo, slot)
	if err != nil {
		t.Fatalf("open cart store failed: %v", err)
	}
	return store
}

// sameLines 按 (id, 数量, 字段) 比较两个购物车，金额按数值比较
func sameLines(a, b Cart) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.ID != y.ID || x.Quantity != y.Quantity || x.Name != y.Name || x.Category != y.Category ||
			x.Unit != y.Unit || x.Description != y.Description ||
			!x.Price.Equal(y.Price.Decimal) || !x.FinalPrice.Equal(y.FinalPrice.Decimal) {
			return false
		}
	}
	return true
}
