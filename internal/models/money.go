package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money 统一金额类型（保留 2 位小数）
type Money struct {
	decimal.Decimal
}

// NewMoneyFromDecimal 从 decimal 创建金额
func NewMoneyFromDecimal(amount decimal.Decimal) Money {
	return Money{Decimal: amount.Round(2)}
}

// NewMoneyFromFloat 从浮点数创建金额（配置项、种子数据使用）
func NewMoneyFromFloat(amount float64) Money {
	return NewMoneyFromDecimal(decimal.NewFromFloat(amount))
}

// MustMoney 从字符串创建金额，格式错误时 panic（仅用于常量与测试数据）
func MustMoney(amount string) Money {
	return NewMoneyFromDecimal(decimal.RequireFromString(amount))
}

// MarshalJSON 统一输出 2 位小数的字符串
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Decimal.Round(2).StringFixed(2))
}

// UnmarshalJSON 解析金额（字符串、数字或 null）
func (m *Money) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		m.Decimal = decimal.Zero
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			m.Decimal = decimal.Zero
			return nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		m.Decimal = d.Round(2)
		return nil
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return err
	}
	m.Decimal = d.Round(2)
	return nil
}

// Value 用于数据库写入
func (m Money) Value() (driver.Value, error) {
	return m.Decimal.Round(2).Value()
}

// Scan 用于数据库读取
func (m *Money) Scan(value interface{}) error {
	if value == nil {
		m.Decimal = decimal.Zero
		return nil
	}
	if err := m.Decimal.Scan(value); err != nil {
		return err
	}
	m.Decimal = m.Decimal.Round(2)
	return nil
}

// String 返回 2 位小数格式
func (m Money) String() string {
	return m.Decimal.Round(2).StringFixed(2)
}

// Plain 返回不补零的最短格式（如 30、30.5）
func (m Money) Plain() string {
	return m.Decimal.String()
}

// Format 带货币符号的 2 位小数格式（如 ₹30.00）
func (m Money) Format(symbol string) string {
	return symbol + m.String()
}

// Times 单价乘以数量
func (m Money) Times(quantity int) Money {
	return NewMoneyFromDecimal(m.Decimal.Mul(decimal.NewFromInt(int64(quantity))))
}
