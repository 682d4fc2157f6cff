package service

import (
	"github.com/freshcart/internal/constants"
	"github.com/freshcart/internal/models"

	"github.com/shopspring/decimal"
)

// OrderTotals 订单金额汇总（派生值，不落库）
type OrderTotals struct {
	Subtotal              models.Money `json:"subtotal"`
	DiscountedTotal       models.Money `json:"discounted_total"`
	Discount              models.Money `json:"discount"`
	DeliveryFee           models.Money `json:"delivery_fee"`
	GrandTotal            models.Money `json:"grand_total"`
	FreeDelivery          bool         `json:"free_delivery"`
	FreeDeliveryShortfall models.Money `json:"free_delivery_shortfall"`
}

// PricingCalculator 购物车计价，无状态
type PricingCalculator struct {
	threshold decimal.Decimal
	fee       decimal.Decimal
}

// NewPricingCalculator 创建计价器；非正的门槛或负的运费回落到默认值
func NewPricingCalculator(threshold, fee decimal.Decimal) *PricingCalculator {
	if !threshold.IsPositive() {
		threshold = decimal.NewFromInt(constants.FreeDeliveryThreshold)
	}
	if fee.IsNegative() {
		fee = decimal.NewFromInt(constants.DeliveryFee)
	}
	return &PricingCalculator{threshold: threshold, fee: fee}
}

// DefaultPricingCalculator 使用默认门槛 499 与运费 40
func DefaultPricingCalculator() *PricingCalculator {
	return NewPricingCalculator(decimal.NewFromInt(constants.FreeDeliveryThreshold), decimal.NewFromInt(constants.DeliveryFee))
}

// Threshold 免运费门槛
func (p *PricingCalculator) Threshold() decimal.Decimal {
	return p.threshold
}

// Fee 固定运费
func (p *PricingCalculator) Fee() decimal.Decimal {
	return p.fee
}

// Subtotal 原价合计
func (p *PricingCalculator) Subtotal(cart Cart) decimal.Decimal {
	total := decimal.Zero
	for _, line := range cart {
		total = total.Add(line.OriginalLineTotal())
	}
	return total
}

// DiscountedTotal 折后价合计
func (p *PricingCalculator) DiscountedTotal(cart Cart) decimal.Decimal {
	total := decimal.Zero
	for _, line := range cart {
		total = total.Add(line.LineTotal())
	}
	return total
}

// Discount 优惠金额
func (p *PricingCalculator) Discount(cart Cart) decimal.Decimal {
	return p.Subtotal(cart).Sub(p.DiscountedTotal(cart))
}

// DeliveryFee 折后合计达到门槛免运费，否则收取固定运费（空车同样收取）
func (p *PricingCalculator) DeliveryFee(cart Cart) decimal.Decimal {
	return p.deliveryFeeFor(p.DiscountedTotal(cart))
}

// GrandTotal 应付总额
func (p *PricingCalculator) GrandTotal(cart Cart) decimal.Decimal {
	discounted := p.DiscountedTotal(cart)
	return discounted.Add(p.deliveryFeeFor(discounted))
}

// FreeDeliveryShortfall 距免运费还差的金额，已达门槛时为 0
func (p *PricingCalculator) FreeDeliveryShortfall(cart Cart) decimal.Decimal {
	shortfall := p.threshold.Sub(p.DiscountedTotal(cart))
	if shortfall.IsNegative() {
		return decimal.Zero
	}
	return shortfall
}

// Totals 一次性计算全部金额
func (p *PricingCalculator) Totals(cart Cart) OrderTotals {
	subtotal := p.Subtotal(cart)
	discounted := p.DiscountedTotal(cart)
	fee := p.deliveryFeeFor(discounted)
	shortfall := p.threshold.Sub(discounted)
	if shortfall.IsNegative() {
		shortfall = decimal.Zero
	}
	return OrderTotals{
		Subtotal:              models.NewMoneyFromDecimal(subtotal),
		DiscountedTotal:       models.NewMoneyFromDecimal(discounted),
		Discount:              models.NewMoneyFromDecimal(subtotal.Sub(discounted)),
		DeliveryFee:           models.NewMoneyFromDecimal(fee),
		GrandTotal:            models.NewMoneyFromDecimal(discounted.Add(fee)),
		FreeDelivery:          fee.IsZero(),
		FreeDeliveryShortfall: models.NewMoneyFromDecimal(shortfall),
	}
}

func (p *PricingCalculator) deliveryFeeFor(discounted decimal.Decimal) decimal.Decimal {
	if discounted.GreaterThanOrEqual(p.threshold) {
		return decimal.Zero
	}
	return p.fee
}
