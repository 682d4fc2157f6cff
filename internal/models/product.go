package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product 商品表（只读目录，由外部数据源维护）
type Product struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                     // 主键
	Name        string    `gorm:"type:varchar(255);not null;index" json:"name"`             // 商品名称（同时决定图片 key）
	Category    string    `gorm:"type:varchar(64);index" json:"category"`                   // 分类（大小写不敏感匹配）
	Price       Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price"`       // 原价
	FinalPrice  Money     `gorm:"type:decimal(20,2);not null;default:0" json:"final_price"` // 折后价（不高于原价）
	Unit        string    `gorm:"type:varchar(20);not null;default:'kg'" json:"unit"`       // 计量单位
	Description string    `gorm:"type:text" json:"description"`                             // 描述
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt   time.Time `json:"updated_at"`                                               // 更新时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// DiscountPercent 折扣百分比（四舍五入取整），无折扣时为 0
func (p Product) DiscountPercent() int {
	if !p.Price.IsPositive() || !p.FinalPrice.IsPositive() || !p.Price.GreaterThan(p.FinalPrice.Decimal) {
		return 0
	}
	percent := p.Price.Sub(p.FinalPrice.Decimal).Div(p.Price.Decimal).Mul(decimal.NewFromInt(100))
	return int(percent.Round(0).IntPart())
}
