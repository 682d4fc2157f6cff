package service

import (
	"context"
	"errors"
	"testing"

	"github.com/freshcart/internal/constants"
	"github.com/freshcart/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(products []models.Product) []string {
	result := make([]string, 0, len(products))
	for _, p := range products {
		result = append(result, p.Name)
	}
	return result
}

func newTestCatalog(products ...models.Product) (*CatalogService, *fakeProductRepo, *recordingWarmer) {
	repo := &fakeProductRepo{products: products}
	warmer := &recordingWarmer{}
	return NewCatalogService(repo, constants.DefaultCategories, 0, warmer), repo, warmer
}

func TestCatalogListProductsCategoryFilter(t *testing.T) {
	catalog, _, warmer := newTestCatalog(
		product(1, "Carrot", "vegetables", "40", "35"),
		product(2, "Mango", "Fruits", "300", "300"),
		product(3, "Spinach", "Vegetables", "20", "20"),
	)
	ctx := context.Background()

	all, err := catalog.ListProducts(ctx, constants.CategoryAll)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	blank, err := catalog.ListProducts(ctx, "  ")
	require.NoError(t, err)
	assert.Len(t, blank, 3)

	veg, err := catalog.ListProducts(ctx, "VEGETABLES")
	require.NoError(t, err)
	assert.Equal(t, []string{"Carrot", "Spinach"}, names(veg))

	none, err := catalog.ListProducts(ctx, "Bakery")
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NotEmpty(t, warmer.payloads)
	assert.Equal(t, []string{"Carrot", "Mango", "Spinach"}, warmer.payloads[0].Names)
}

func TestCatalogListProductsUnavailable(t *testing.T) {
	catalog, repo, _ := newTestCatalog()
	repo.err = errors.New("connection refused")

	_, err := catalog.ListProducts(context.Background(), "")
	assert.ErrorIs(t, err, ErrCatalogUnavailable)

	_, err = catalog.GetProduct(context.Background(), 1)
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestCatalogGetProduct(t *testing.T) {
	catalog, _, _ := newTestCatalog(product(5, "Butter", "Dairy", "55", "50"))

	got, err := catalog.GetProduct(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Butter", got.Name)

	_, err = catalog.GetProduct(context.Background(), 6)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = catalog.GetProduct(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearchProducts(t *testing.T) {
	products := []models.Product{
		{ID: 1, Name: "Cherry Tomatoes"},
		{ID: 2, Name: "Onion", Description: "Red TOMATO-free onions"},
		{ID: 3, Name: "Potato"},
	}
	assert.Equal(t, []string{"Cherry Tomatoes", "Onion"}, names(SearchProducts(products, " tomato ")))
	assert.Empty(t, SearchProducts(products, "mango"))
	assert.Len(t, SearchProducts(products, ""), 3)
}

func TestSortProducts(t *testing.T) {
	products := []models.Product{
		{ID: 1, Name: "banana", Price: models.MustMoney("40")},
		{ID: 2, Name: "Apple", Price: models.MustMoney("120")},
		{ID: 3, Name: "", Price: models.MustMoney("40")},
		{ID: 4, Name: "cherry"},
	}

	assert.Equal(t, []string{"", "Apple", "banana", "cherry"}, names(SortProducts(products, constants.SortByName)))

	low := SortProducts(products, constants.SortByPriceLow)
	assert.Equal(t, []uint{4, 1, 3, 2}, ids(low))

	high := SortProducts(products, constants.SortByPriceHigh)
	assert.Equal(t, []uint{2, 1, 3, 4}, ids(high))

	unchanged := SortProducts(products, "popularity")
	assert.Equal(t, []uint{1, 2, 3, 4}, ids(unchanged))
	assert.Equal(t, uint(1), products[0].ID, "input must not be reordered")
}

func ids(products []models.Product) []uint {
	result := make([]uint, 0, len(products))
	for _, p := range products {
		result = append(result, p.ID)
	}
	return result
}

func TestCatalogBrowse(t *testing.T) {
	catalog, _, _ := newTestCatalog(
		product(1, "Toned Milk", "Dairy", "30", "30"),
		product(2, "Buffalo Milk", "Dairy", "70", "65"),
		product(3, "Milk Bread", "Bakery", "45", "40"),
	)
	got, err := catalog.Browse(context.Background(), BrowseQuery{Category: "dairy", Query: "milk", Sort: constants.SortByPriceHigh})
	require.NoError(t, err)
	assert.Equal(t, []string{"Buffalo Milk", "Toned Milk"}, names(got))
}

func TestCatalogCategories(t *testing.T) {
	catalog := NewCatalogService(&fakeProductRepo{}, []string{"Fruits", " fruits ", "", "Dairy", "all products"}, 0, nil)
	assert.Equal(t, []string{constants.CategoryAll, "Fruits", "Dairy"}, catalog.Categories())
}
