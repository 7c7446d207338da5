package checkout

import (
	"encoding/json"
	"strconv"
	"strings"
)

// PaymentMethod enumerates the payment channels the backend accepts.
type PaymentMethod string

const (
	PaymentMethodAlipay PaymentMethod = "ALIPAY"
	PaymentMethodWechat PaymentMethod = "WECHAT"
)

// Status is the order lifecycle state. PENDING is the only non-terminal
// state; PAID, CANCELLED and FAILED are terminal and never transition again.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
	StatusFailed    Status = "FAILED"
)

// Terminal reports whether no further transition can be observed for s.
func (s Status) Terminal() bool {
	switch s {
	case StatusPaid, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

// NoCoupon is the sentinel the backend expects when no coupon is applied.
const NoCoupon = -1

// Defaults substituted during lenient decoding. Every substitution is logged.
const (
	DefaultUsername      = "anonymous"
	DefaultPaymentMethod = PaymentMethodAlipay
	DefaultStatus        = StatusPending
)

// ShippingAddress is the delivery target sent with a checkout. Location is
// the merged province/city/district/detail string the latest contract uses.
type ShippingAddress struct {
	RecipientName string `json:"recipientName" validate:"required"`
	Telephone     string `json:"telephone" validate:"required"`
	ZipCode       string `json:"zipCode"`
	Location      string `json:"location" validate:"required"`
}

// topUpAddress is the fixed placeholder address used for credit top-up
// orders, which ship nothing.
var topUpAddress = ShippingAddress{
	RecipientName: "system",
	Telephone:     "00000000000",
	ZipCode:       "000000",
	Location:      "tomatomall credit top-up",
}

// OrderSubmission is the checkout request body. A normal checkout carries at
// least one cart item and Tomato == 0; a credit top-up carries no cart items,
// the NoCoupon sentinel and a positive Tomato count.
type OrderSubmission struct {
	CartItemIDs     []string        `json:"cartItemIds"`
	ShippingAddress ShippingAddress `json:"shipping_address" validate:"required"`
	PaymentMethod   PaymentMethod   `json:"payment_method" validate:"required,oneof=ALIPAY WECHAT"`
	UseCoupon       bool            `json:"useCoupon"`
	CouponID        int             `json:"couponId"`
	Tomato          int             `json:"tomato"`
}

// Order is a server-recorded purchase intent. The client never persists it.
type Order struct {
	OrderID       string        `json:"orderId"`
	Username      string        `json:"username"`
	TotalAmount   float64       `json:"totalAmount"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	CreateTime    string        `json:"createTime"`
	Status        Status        `json:"status"`

	// Coupon settlement detail, present when a coupon was applied.
	UseCoupon     bool    `json:"useCoupon"`
	BeforeAmount  float64 `json:"beforeAmount,omitempty"`
	ReducedAmount float64 `json:"reducedAmount,omitempty"`
}

// PaymentTicket is the provider hand-off payload for a PENDING order.
type PaymentTicket struct {
	PaymentForm   string        `json:"paymentForm"`
	OrderID       string        `json:"orderId"`
	TotalAmount   float64       `json:"totalAmount"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
}

// orderPayload is the wire shape of an order as the backend emits it. The id
// arrives as a bare number on some endpoints and a string on others.
type orderPayload struct {
	OrderID       json.RawMessage `json:"orderId"`
	Username      string          `json:"username"`
	TotalAmount   float64         `json:"totalAmount"`
	PaymentMethod string          `json:"paymentMethod"`
	CreateTime    string          `json:"createTime"`
	Status        string          `json:"status"`
	UseCoupon     bool            `json:"useCoupon"`
	BeforeAmount  float64         `json:"beforeAmount"`
	ReducedAmount float64         `json:"reducedAmount"`
}

type ticketPayload struct {
	PaymentForm   string          `json:"paymentForm"`
	OrderID       json.RawMessage `json:"orderId"`
	TotalAmount   float64         `json:"totalAmount"`
	PaymentMethod string          `json:"paymentMethod"`
}

type statusPayload struct {
	Status string `json:"status"`
}

// coerceID normalizes a JSON number or string into its string form.
func coerceID(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if unquoted, err := strconv.Unquote(s); err == nil {
		return unquoted
	}
	return s
}

// allDigits reports whether s is a non-empty decimal-digit string.
func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
