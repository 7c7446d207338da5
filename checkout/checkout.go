// Package checkout implements the client side of the TomatoMall checkout and
// payment flow: order submission, payment initiation, provider hand-off,
// payment-return handling and order status polling.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/happy-299/TomatoMall/events"
	"github.com/happy-299/TomatoMall/internal/rest"
)

var (
	ErrEmptyCart    = errors.New("checkout requires at least one cart item")
	ErrInvalidTopUp = errors.New("top-up requires a positive tomato count")
	ErrEmptyOrderID = errors.New("order id must not be empty")
)

var validate = validator.New()

// Service orchestrates one checkout attempt at a time: submit, pay, hand off,
// poll. It keeps no state between calls beyond its collaborators.
type Service struct {
	rest *rest.Client
	bus  *events.Bus
	log  *zap.Logger
}

func NewService(rc *rest.Client, bus *events.Bus, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{rest: rc, bus: bus, log: log}
}

// Bus returns the payment event bus so callers can subscribe.
func (s *Service) Bus() *events.Bus { return s.bus }

// SubmitOrder converts a cart selection into a server-created order. The
// returned order has been leniently decoded (missing optional fields are
// defaulted and logged) and sanity-checked: a non-numeric order id or a
// non-positive total is a malformed response, surfaced as an error.
func (s *Service) SubmitOrder(ctx context.Context, sub OrderSubmission) (*Order, error) {
	if len(sub.CartItemIDs) == 0 {
		return nil, ErrEmptyCart
	}
	if !sub.UseCoupon {
		sub.CouponID = NoCoupon
	}
	sub.Tomato = 0
	if err := validate.Struct(sub); err != nil {
		return nil, fmt.Errorf("invalid submission: %w", err)
	}

	var payload orderPayload
	if err := s.rest.Do(ctx, "POST", "/api/cart/checkout", nil, sub, &payload, rest.UnwrapDataData); err != nil {
		return nil, err
	}
	return s.decodeOrder(payload)
}

// TopUpCredit submits the order variant that purchases platform credit
// (tomato coins) instead of goods: no cart items, the NoCoupon sentinel and a
// fixed placeholder shipping address.
func (s *Service) TopUpCredit(ctx context.Context, coins int, method PaymentMethod) (*Order, error) {
	if coins <= 0 {
		return nil, ErrInvalidTopUp
	}
	if method == "" {
		method = DefaultPaymentMethod
	}

	sub := OrderSubmission{
		CartItemIDs:     []string{},
		ShippingAddress: topUpAddress,
		PaymentMethod:   method,
		UseCoupon:       false,
		CouponID:        NoCoupon,
		Tomato:          coins,
	}
	if err := validate.Struct(sub); err != nil {
		return nil, fmt.Errorf("invalid top-up: %w", err)
	}

	var payload orderPayload
	if err := s.rest.Do(ctx, "POST", "/api/cart/tomato", nil, sub, &payload, rest.UnwrapDataData); err != nil {
		return nil, err
	}
	return s.decodeOrder(payload)
}

// PayOrder requests a payment ticket for a PENDING order. A missing inner
// payload means the server has no payment to offer (unknown or settled
// order) and is reported as a malformed response.
func (s *Service) PayOrder(ctx context.Context, orderID string) (*PaymentTicket, error) {
	if orderID == "" {
		return nil, ErrEmptyOrderID
	}

	var payload ticketPayload
	if err := s.rest.Do(ctx, "POST", "/api/orders/"+url.PathEscape(orderID)+"/pay", nil, nil, &payload, rest.UnwrapDataData); err != nil {
		return nil, err
	}

	if payload.PaymentForm == "" {
		return nil, rest.Malformed("payment ticket carries no form payload")
	}

	method := PaymentMethod(payload.PaymentMethod)
	if method == "" {
		s.log.Warn("payment method missing in ticket, defaulting",
			zap.String("order_id", coerceID(payload.OrderID)),
			zap.String("default", string(DefaultPaymentMethod)))
		method = DefaultPaymentMethod
	}

	return &PaymentTicket{
		PaymentForm:   payload.PaymentForm,
		OrderID:       coerceID(payload.OrderID),
		TotalAmount:   payload.TotalAmount,
		PaymentMethod: method,
	}, nil
}

// CancelOrder cancels a PENDING order.
func (s *Service) CancelOrder(ctx context.Context, orderID string) error {
	if orderID == "" {
		return ErrEmptyOrderID
	}
	return s.rest.Do(ctx, "DELETE", "/api/orders/"+url.PathEscape(orderID), nil, nil, nil, rest.UnwrapData)
}

// OrderStatus queries the current lifecycle state of an order.
func (s *Service) OrderStatus(ctx context.Context, orderID string) (Status, error) {
	if orderID == "" {
		return "", ErrEmptyOrderID
	}

	var payload statusPayload
	if err := s.rest.Do(ctx, "GET", "/api/orders/"+url.PathEscape(orderID)+"/status", nil, nil, &payload, rest.UnwrapData); err != nil {
		return "", err
	}
	if payload.Status == "" {
		return "", rest.Malformed("order status missing")
	}
	return Status(payload.Status), nil
}

// IsPaid reports whether the order status is exactly PAID. PENDING,
// CANCELLED and FAILED all read as not paid.
func (s *Service) IsPaid(ctx context.Context, orderID string) (bool, error) {
	status, err := s.OrderStatus(ctx, orderID)
	if err != nil {
		return false, err
	}
	return status == StatusPaid, nil
}

// ListOrders fetches the caller's orders.
func (s *Service) ListOrders(ctx context.Context) ([]Order, error) {
	var payloads []orderPayload
	if err := s.rest.Do(ctx, "GET", "/api/orders", nil, nil, &payloads, rest.UnwrapData); err != nil {
		return nil, err
	}

	orders := make([]Order, 0, len(payloads))
	for _, p := range payloads {
		order, err := s.decodeOrder(p)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

// WaitForPayment polls the order status at the caller-chosen interval until a
// terminal status is observed or ctx is done. The core performs no retries:
// any polling error is returned immediately.
func (s *Service) WaitForPayment(ctx context.Context, orderID string, interval time.Duration) (Status, error) {
	status, err := s.OrderStatus(ctx, orderID)
	if err != nil {
		return "", err
	}
	if status.Terminal() {
		return status, nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return status, ctx.Err()
		case <-ticker.C:
			status, err = s.OrderStatus(ctx, orderID)
			if err != nil {
				return "", err
			}
			if status.Terminal() {
				return status, nil
			}
		}
	}
}

// decodeOrder applies the lenient-decoding policy: optional fields fall back
// to named defaults (with a warning), then the result is sanity-checked.
func (s *Service) decodeOrder(p orderPayload) (*Order, error) {
	order := &Order{
		OrderID:       coerceID(p.OrderID),
		Username:      p.Username,
		TotalAmount:   p.TotalAmount,
		PaymentMethod: PaymentMethod(p.PaymentMethod),
		CreateTime:    p.CreateTime,
		Status:        Status(p.Status),
		UseCoupon:     p.UseCoupon,
		BeforeAmount:  p.BeforeAmount,
		ReducedAmount: p.ReducedAmount,
	}

	if order.Username == "" {
		s.log.Warn("order username missing, defaulting", zap.String("order_id", order.OrderID), zap.String("default", DefaultUsername))
		order.Username = DefaultUsername
	}
	if order.PaymentMethod == "" {
		s.log.Warn("order payment method missing, defaulting", zap.String("order_id", order.OrderID), zap.String("default", string(DefaultPaymentMethod)))
		order.PaymentMethod = DefaultPaymentMethod
	}
	if order.CreateTime == "" {
		s.log.Warn("order create time missing, defaulting to now", zap.String("order_id", order.OrderID))
		order.CreateTime = time.Now().Format(time.RFC3339)
	}
	if order.Status == "" {
		s.log.Warn("order status missing, defaulting", zap.String("order_id", order.OrderID), zap.String("default", string(DefaultStatus)))
		order.Status = DefaultStatus
	}

	if !allDigits(order.OrderID) {
		return nil, rest.Malformed("order id %q is not numeric", order.OrderID)
	}
	if order.TotalAmount <= 0 {
		return nil, rest.Malformed("order %s has non-positive total %v", order.OrderID, order.TotalAmount)
	}
	return order, nil
}
