package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/freshcart/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrEmptySlot 槽位名为空
var ErrEmptySlot = errors.New("cart snapshot slot is empty")

// CartSnapshotRepository 购物车快照槽位访问接口
type CartSnapshotRepository interface {
	Load(slot string) ([]byte, bool, error)
	Save(slot string, payload []byte) error
	Delete(slot string) error
}

// GormCartSnapshotRepository GORM 实现
type GormCartSnapshotRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewCartSnapshotRepository 创建购物车快照仓库
func NewCartSnapshotRepository(db *gorm.DB) *GormCartSnapshotRepository {
	return &GormCartSnapshotRepository{db: db, now: time.Now}
}

// Load 读取槽位内容，槽位不存在时 found=false
func (r *GormCartSnapshotRepository) Load(slot string) ([]byte, bool, error) {
	slot = strings.TrimSpace(slot)
	if slot == "" {
		return nil, false, ErrEmptySlot
	}
	var snapshot models.CartSnapshot
	if err := r.db.Where("slot = ?", slot).First(&snapshot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(snapshot.Payload), true, nil
}

// Save 单条 upsert 整体覆盖槽位内容，读者不会看到部分写入
func (r *GormCartSnapshotRepository) Save(slot string, payload []byte) error {
	slot = strings.TrimSpace(slot)
	if slot == "" {
		return ErrEmptySlot
	}
	snapshot := models.CartSnapshot{
		Slot:      slot,
		Payload:   string(payload),
		UpdatedAt: r.now(),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&snapshot).Error
}

// Delete 删除槽位
func (r *GormCartSnapshotRepository) Delete(slot string) error {
	slot = strings.TrimSpace(slot)
	if slot == "" {
		return ErrEmptySlot
	}
	return r.db.Where("slot = ?", slot).Delete(&models.CartSnapshot{}).Error
}
