// Package product is the thin client for the TomatoMall product and
// stockpile endpoints.
package product

import (
	"context"
	"fmt"
	"net/url"

	"github.com/go-playground/validator/v10"

	"github.com/happy-299/TomatoMall/internal/rest"
)

var validate = validator.New()

type Service struct {
	rest *rest.Client
}

func NewService(rc *rest.Client) *Service {
	return &Service{rest: rc}
}

// List fetches the whole catalogue.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := s.rest.Do(ctx, "GET", "/api/products", nil, nil, &products, rest.UnwrapData); err != nil {
		return nil, err
	}
	return products, nil
}

// Get fetches a single product by id.
func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	var p Product
	if err := s.rest.Do(ctx, "GET", "/api/products/"+url.PathEscape(id), nil, nil, &p, rest.UnwrapData); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create adds a new product (admin operation).
func (s *Service) Create(ctx context.Context, info CreateInfo) (*Product, error) {
	if err := validate.Struct(info); err != nil {
		return nil, fmt.Errorf("invalid product: %w", err)
	}
	var p Product
	if err := s.rest.Do(ctx, "POST", "/api/products", nil, info, &p, rest.UnwrapData); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update modifies an existing product (admin operation).
func (s *Service) Update(ctx context.Context, info UpdateInfo) error {
	if err := validate.Struct(info); err != nil {
		return fmt.Errorf("invalid product update: %w", err)
	}
	return s.rest.Do(ctx, "PUT", "/api/products", nil, info, nil, rest.UnwrapData)
}

// Delete removes a product (admin operation).
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.rest.Do(ctx, "DELETE", "/api/products/"+url.PathEscape(id), nil, nil, nil, rest.UnwrapData)
}

// Stockpile fetches the inventory record for a product.
func (s *Service) Stockpile(ctx context.Context, productID string) (*Stockpile, error) {
	var sp Stockpile
	if err := s.rest.Do(ctx, "GET", "/api/products/stockpile/"+url.PathEscape(productID), nil, nil, &sp, rest.UnwrapData); err != nil {
		return nil, err
	}
	return &sp, nil
}

// AdjustStockpile sets the available amount for a product (admin operation).
func (s *Service) AdjustStockpile(ctx context.Context, productID string, amount int) error {
	if amount < 0 {
		return fmt.Errorf("stock amount must not be negative, got %d", amount)
	}
	body := map[string]int{"amount": amount}
	return s.rest.Do(ctx, "PATCH", "/api/products/stockpile/"+url.PathEscape(productID), nil, body, nil, rest.UnwrapData)
}
