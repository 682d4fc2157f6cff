package repository

import (
	"errors"
	"testing"

	"github.com/freshcart/internal/models"
)

func TestCartSnapshotRepositorySaveLoadOverwrite(t *testing.T) {
	db := openTestDB(t)
	repo := NewCartSnapshotRepository(db)

	if _, found, err := repo.Load("cart:s1"); err != nil || found {
		t.Fatalf("empty slot should not be found, found=%v err=%v", found, err)
	}

	if err := repo.Save("cart:s1", []byte(`[{"id":1,"quantity":1}]`)); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := repo.Save("cart:s1", []byte(`[{"id":1,"quantity":3}]`)); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	payload, found, err := repo.Load("cart:s1")
	if err != nil || !found {
		t.Fatalf("load failed, found=%v err=%v", found, err)
	}
	if string(payload) != `[{"id":1,"quantity":3}]` {
		t.Fatalf("unexpected payload %s", payload)
	}

	var count int64
	if err := db.Model(&models.CartSnapshot{}).Where("slot = ?", "cart:s1").Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("slot should hold exactly one row, got %d", count)
	}
}

func TestCartSnapshotRepositorySlotsAreIsolated(t *testing.T) {
	db := openTestDB(t)
	repo := NewCartSnapshotRepository(db)

	if err := repo.Save("cart:a", []byte(`[]`)); err != nil {
		t.Fatalf("save a failed: %v", err)
	}
	if err := repo.Save("cart:b", []byte(`[{"id":2,"quantity":1}]`)); err != nil {
		t.Fatalf("save b failed: %v", err)
	}
	if err := repo.Delete("cart:b"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, found, _ := repo.Load("cart:b"); found {
		t.Fatalf("deleted slot should be gone")
	}
	payload, found, err := repo.Load("cart:a")
	if err != nil || !found || string(payload) != `[]` {
		t.Fatalf("slot a should survive, payload=%s found=%v err=%v", payload, found, err)
	}
}

func TestCartSnapshotRepositoryRejectsEmptySlot(t *testing.T) {
	repo := NewCartSnapshotRepository(openTestDB(t))
	if err := repo.Save("  ", []byte(`[]`)); !errors.Is(err, ErrEmptySlot) {
		t.Fatalf("expected ErrEmptySlot, got %v", err)
	}
	if _, _, err := repo.Load(""); !errors.Is(err, ErrEmptySlot) {
		t.Fatalf("expected ErrEmptySlot, got %v", err)
	}
}
