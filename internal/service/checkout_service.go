package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/freshcart/internal/constants"
	"github.com/freshcart/internal/logger"
)

// CheckoutState 下单流程状态
type CheckoutState string

const (
	CheckoutStateEditing    CheckoutState = "editing"
	CheckoutStateValidating CheckoutState = "validating"
	CheckoutStateInvalid    CheckoutState = "invalid"
	CheckoutStateValid      CheckoutState = "valid"
	CheckoutStateSubmitting CheckoutState = "submitting"
	CheckoutStateSubmitted  CheckoutState = "submitted"
)

// 校验提示文案
const (
	MsgNameRequired    = "Name is required"
	MsgPhoneRequired   = "Phone number is required"
	MsgPhoneInvalid    = "Please enter a valid 10-digit phone number"
	MsgAddressRequired = "Address is required"
)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// CustomerInfo 收货信息，只在下单过程中存在
type CustomerInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (c CustomerInfo) normalized() CustomerInfo {
	return CustomerInfo{
		Name:    strings.TrimSpace(c.Name),
		Phone:   strings.TrimSpace(c.Phone),
		Address: strings.TrimSpace(c.Address),
	}
}

// ValidateCustomer 校验收货信息，返回字段到提示文案的映射，为空表示通过
func ValidateCustomer(info CustomerInfo) map[string]string {
	info = info.normalized()
	errs := make(map[string]string)
	if info.Name == "" {
		errs["name"] = MsgNameRequired
	}
	if info.Phone == "" {
		errs["phone"] = MsgPhoneRequired
	} else if !phonePattern.MatchString(info.Phone) {
		errs["phone"] = MsgPhoneInvalid
	}
	if info.Address == "" {
		errs["address"] = MsgAddressRequired
	}
	return errs
}

// CheckoutFlow 单个收货信息草稿的状态机
type CheckoutFlow struct {
	state  CheckoutState
	info   CustomerInfo
	errors map[string]string
}

// NewCheckoutFlow 创建处于编辑态的下单流程
func NewCheckoutFlow() *CheckoutFlow {
	return &CheckoutFlow{state: CheckoutStateEditing}
}

// State 当前状态
func (f *CheckoutFlow) State() CheckoutState {
	return f.state
}

// Errors 最近一次校验的错误
func (f *CheckoutFlow) Errors() map[string]string {
	return f.errors
}

// Info 当前草稿
func (f *CheckoutFlow) Info() CustomerInfo {
	return f.info
}

// Edit 更新草稿并回到编辑态
func (f *CheckoutFlow) Edit(info CustomerInfo) error {
	switch f.state {
	case CheckoutStateSubmitting, CheckoutStateSubmitted:
		return ErrCheckoutClosed
	}
	f.info = info
	f.errors = nil
	f.state = CheckoutStateEditing
	return nil
}

// Validate 校验草稿，结果为 invalid 或 valid
func (f *CheckoutFlow) Validate() (bool, error) {
	switch f.state {
	case CheckoutStateSubmitting, CheckoutStateSubmitted:
		return false, ErrCheckoutClosed
	}
	f.state = CheckoutStateValidating
	f.errors = ValidateCustomer(f.info)
	if len(f.errors) > 0 {
		f.state = CheckoutStateInvalid
		return false, nil
	}
	f.state = CheckoutStateValid
	return true, nil
}

// BeginSubmit 进入提交态，只允许从 valid 进入
func (f *CheckoutFlow) BeginSubmit() error {
	if f.state == CheckoutStateSubmitted {
		return ErrCheckoutClosed
	}
	if f.state != CheckoutStateValid {
		return ErrCheckoutNotValid
	}
	f.state = CheckoutStateSubmitting
	return nil
}

// Complete 标记提交完成
func (f *CheckoutFlow) Complete() {
	if f.state == CheckoutStateSubmitting {
		f.state = CheckoutStateSubmitted
	}
}

// ComposeOrderMessage 生成订单消息文本
func ComposeOrderMessage(info CustomerInfo, cart Cart, totals OrderTotals, symbol string) string {
	if symbol == "" {
		symbol = constants.CurrencySymbol
	}
	info = info.normalized()

	var b strings.Builder
	b.WriteString("\n*New Order*\n")
	fmt.Fprintf(&b, "*Name:* %s\n", info.Name)
	fmt.Fprintf(&b, "*Phone:* %s\n", info.Phone)
	fmt.Fprintf(&b, "*Address:* %s\n", info.Address)
	b.WriteString("\n*Order Details:*\n")
	for _, line := range cart {
		fmt.Fprintf(&b, "%s (%d x %s%s) = %s\n",
			line.Name, line.Quantity, symbol, line.FinalPrice.Plain(), line.FinalPrice.Times(line.Quantity).Format(symbol))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "*Subtotal:* %s\n", totals.Subtotal.Format(symbol))
	if totals.Discount.IsPositive() {
		fmt.Fprintf(&b, "*Discount:* -%s\n", totals.Discount.Format(symbol))
	}
	if totals.DeliveryFee.IsZero() {
		b.WriteString("*Delivery Fee:* FREE\n")
	} else {
		fmt.Fprintf(&b, "*Delivery Fee:* %s\n", totals.DeliveryFee.Format(symbol))
	}
	fmt.Fprintf(&b, "*Total Amount:* %s\n", totals.GrandTotal.Format(symbol))
	return b.String()
}

// BuildHandoffURL 生成消息应用深链
func BuildHandoffURL(number, message string) string {
	number = strings.TrimPrefix(strings.TrimSpace(number), "+")
	return constants.WhatsAppBaseURL + number + "?text=" + encodeURIComponent(message)
}

// encodeURIComponent 与浏览器 encodeURIComponent 一致：保留 A-Z a-z 0-9 - _ . ! ~ * ' ( )
func encodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
			b.WriteByte(c)
		case strings.IndexByte("-_.!~*'()", c) >= 0:
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		}
	}
	return b.String()
}

// HandoffDispatcher 订单深链投递，无回执
type HandoffDispatcher interface {
	Dispatch(ctx context.Context, url string)
}

// LogHandoffDispatcher 只记录投递日志，深链由调用方打开
type LogHandoffDispatcher struct{}

// Dispatch 记录投递
func (LogHandoffDispatcher) Dispatch(_ context.Context, url string) {
	logger.Infow("checkout_handoff_dispatched", "url_length", len(url))
}

// CheckoutResult 下单结果
type CheckoutResult struct {
	State      CheckoutState     `json:"state"`
	Errors     map[string]string `json:"errors,omitempty"`
	Message    string            `json:"message,omitempty"`
	HandoffURL string            `json:"handoff_url,omitempty"`
	RedirectTo string            `json:"redirect_to,omitempty"`
	Totals     *OrderTotals      `json:"totals,omitempty"`
}

// CheckoutService 下单服务
type CheckoutService struct {
	carts          *CartService
	pricing        *PricingCalculator
	dispatcher     HandoffDispatcher
	whatsappNumber string
	currencySymbol string
	redirectTo     string
}

// NewCheckoutService 创建下单服务
func NewCheckoutService(carts *CartService, pricing *PricingCalculator, dispatcher HandoffDispatcher, whatsappNumber, currencySymbol, redirectTo string) *CheckoutService {
	if pricing == nil {
		pricing = DefaultPricingCalculator()
	}
	if dispatcher == nil {
		dispatcher = LogHandoffDispatcher{}
	}
	if strings.TrimSpace(currencySymbol) == "" {
		currencySymbol = constants.CurrencySymbol
	}
	if strings.TrimSpace(redirectTo) == "" {
		redirectTo = "/"
	}
	return &CheckoutService{
		carts:          carts,
		pricing:        pricing,
		dispatcher:     dispatcher,
		whatsappNumber: whatsappNumber,
		currencySymbol: currencySymbol,
		redirectTo:     redirectTo,
	}
}

// Validate 仅校验收货信息，不触发投递
func (s *CheckoutService) Validate(info CustomerInfo) *CheckoutResult {
	errs := ValidateCustomer(info)
	if len(errs) > 0 {
		return &CheckoutResult{State: CheckoutStateInvalid, Errors: errs}
	}
	return &CheckoutResult{State: CheckoutStateValid}
}

// Submit 校验后在会话锁内生成消息并清空购物车，解锁后投递深链
func (s *CheckoutService) Submit(ctx context.Context, session string, info CustomerInfo) (*CheckoutResult, error) {
	flow := NewCheckoutFlow()
	if err := flow.Edit(info); err != nil {
		return nil, err
	}
	ok, err := flow.Validate()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &ValidationError{Fields: flow.Errors()}
	}

	var (
		totals     OrderTotals
		message    string
		handoffURL string
	)
	cart, err := s.carts.TakeForOrder(session, func(cart Cart) error {
		if err := flow.BeginSubmit(); err != nil {
			return err
		}
		totals = s.pricing.Totals(cart)
		message = ComposeOrderMessage(flow.Info(), cart, totals, s.currencySymbol)
		handoffURL = BuildHandoffURL(s.whatsappNumber, message)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(ctx, handoffURL)
	flow.Complete()
	logger.Infow("checkout_submitted",
		"session", session,
		"lines", len(cart),
		"grand_total", totals.GrandTotal.String(),
	)
	return &CheckoutResult{
		State:      flow.State(),
		Message:    message,
		HandoffURL: handoffURL,
		RedirectTo: s.redirectTo,
		Totals:     &totals,
	}, nil
}
