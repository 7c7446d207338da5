// Package cart is the thin client for the TomatoMall shopping cart endpoints.
package cart

import (
	"context"
	"errors"
	"net/url"

	"github.com/happy-299/TomatoMall/internal/rest"
)

var ErrInvalidQuantity = errors.New("quantity must be positive")

type Service struct {
	rest *rest.Client
}

func NewService(rc *rest.Client) *Service {
	return &Service{rest: rc}
}

// Add puts quantity units of a product into the cart and returns the created
// line.
func (s *Service) Add(ctx context.Context, productID string, quantity int) (*Item, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	body := map[string]interface{}{
		"productId": productID,
		"quantity":  quantity,
	}
	var item Item
	if err := s.rest.Do(ctx, "POST", "/api/cart", nil, body, &item, rest.UnwrapData); err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete removes one cart line.
func (s *Service) Delete(ctx context.Context, cartItemID string) error {
	return s.rest.Do(ctx, "DELETE", "/api/cart/"+url.PathEscape(cartItemID), nil, nil, nil, rest.UnwrapData)
}

// DeleteAll empties the cart.
func (s *Service) DeleteAll(ctx context.Context) error {
	return s.rest.Do(ctx, "DELETE", "/api/cart", nil, nil, nil, rest.UnwrapData)
}

// UpdateQuantity changes the quantity of one cart line. The backend rejects
// quantities beyond the product's stock.
func (s *Service) UpdateQuantity(ctx context.Context, cartItemID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	body := map[string]int{"quantity": quantity}
	return s.rest.Do(ctx, "PATCH", "/api/cart/"+url.PathEscape(cartItemID), nil, body, nil, rest.UnwrapData)
}

// Get fetches the cart contents.
func (s *Service) Get(ctx context.Context) (*List, error) {
	var list List
	if err := s.rest.Do(ctx, "GET", "/api/cart", nil, nil, &list, rest.UnwrapData); err != nil {
		return nil, err
	}
	return &list, nil
}
