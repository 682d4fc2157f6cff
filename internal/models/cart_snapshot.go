package models

import "time"

// CartSnapshot 购物车快照槽位，每个会话一个槽位，整体覆盖写入
type CartSnapshot struct {
	ID        uint      `gorm:"primarykey" json:"id"`                               // 主键
	Slot      string    `gorm:"type:varchar(128);not null;uniqueIndex" json:"slot"` // 槽位名（cart:<session>）
	Payload   string    `gorm:"type:text;not null" json:"payload"`                  // 序列化后的购物车行数组
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                            // 最后写入时间
}

// TableName 指定表名
func (CartSnapshot) TableName() string {
	return "cart_snapshots"
}
