package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/freshcart/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedProducts(t *testing.T, db *gorm.DB) []models.Product {
	t.Helper()
	products := []models.Product{
		{Name: "Fresh Tomatoes", Category: "vegetables", Price: models.MustMoney("40"), FinalPrice: models.MustMoney("35"), Unit: "kg", Description: "Farm picked"},
		{Name: "Alphonso Mango", Category: "Fruits", Price: models.MustMoney("300"), FinalPrice: models.MustMoney("300"), Unit: "dozen"},
		{Name: "Toned Milk", Category: "dairy", Price: models.MustMoney("30"), FinalPrice: models.MustMoney("30"), Unit: "l", Description: "Fresh tomato-free milk"},
	}
	for i := range products {
		if err := db.Create(&products[i]).Error; err != nil {
			t.Fatalf("create product failed: %v", err)
		}
	}
	return products
}

func TestProductRepositoryListCategoryCaseInsensitive(t *testing.T) {
	db := openTestDB(t)
	seedProducts(t, db)
	repo := NewProductRepository(db)

	got, err := repo.List(ProductListFilter{Category: "FRUITS"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Alphonso Mango" {
		t.Fatalf("expected only mango, got %+v", got)
	}

	all, err := repo.List(ProductListFilter{})
	if err != nil {
		t.Fatalf("list all failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 products, got %d", len(all))
	}
}

func TestProductRepositoryListSearch(t *testing.T) {
	db := openTestDB(t)
	seedProducts(t, db)
	repo := NewProductRepository(db)

	got, err := repo.List(ProductListFilter{Search: "TOMATO"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected name and description matches, got %d", len(got))
	}
}

func TestProductRepositoryGetByID(t *testing.T) {
	db := openTestDB(t)
	products := seedProducts(t, db)
	repo := NewProductRepository(db)

	got, err := repo.GetByID(products[2].ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil || got.Name != "Toned Milk" {
		t.Fatalf("unexpected product %+v", got)
	}
	if !got.FinalPrice.Equal(models.MustMoney("30").Decimal) {
		t.Fatalf("final price want 30 got %s", got.FinalPrice.String())
	}

	missing, err := repo.GetByID(9999)
	if err != nil {
		t.Fatalf("get missing failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("missing product should be nil")
	}
}

func TestProductRepositoryListByIDs(t *testing.T) {
	db := openTestDB(t)
	products := seedProducts(t, db)
	repo := NewProductRepository(db)

	got, err := repo.ListByIDs([]uint{products[0].ID, products[2].ID})
	if err != nil {
		t.Fatalf("list by ids failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 products, got %d", len(got))
	}
	empty, err := repo.ListByIDs(nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty ids should return empty slice, got %v %v", empty, err)
	}
}

func TestProductRepositoryListSearchTreatsWildcardsLiterally(t *testing.T) {
	db := openTestDB(t)
	seedProducts(t, db)
	repo := NewProductRepository(db)

	got, err := repo.List(ProductListFilter{Search: "%"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("percent sign should not match every product, got %d", len(got))
	}

	got, err = repo.List(ProductListFilter{Search: "tomato_free"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("underscore should not match the hyphen, got %d", len(got))
	}
}
