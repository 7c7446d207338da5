// Package coupon is the thin client for the TomatoMall coupon endpoints.
package coupon

import (
	"context"
	"strconv"

	"github.com/happy-299/TomatoMall/internal/rest"
)

type Service struct {
	rest *rest.Client
}

func NewService(rc *rest.Client) *Service {
	return &Service{rest: rc}
}

// CreateTemplate publishes a new coupon template (admin operation).
func (s *Service) CreateTemplate(ctx context.Context, tpl Template) (*Template, error) {
	var created Template
	if err := s.rest.Do(ctx, "POST", "/api/coupons/template", nil, tpl, &created, rest.UnwrapData); err != nil {
		return nil, err
	}
	return &created, nil
}

// Templates lists every coupon template.
func (s *Service) Templates(ctx context.Context) ([]Template, error) {
	var templates []Template
	if err := s.rest.Do(ctx, "GET", "/api/coupons/template/all", nil, nil, &templates, rest.UnwrapData); err != nil {
		return nil, err
	}
	return templates, nil
}

// Template fetches one coupon template.
func (s *Service) Template(ctx context.Context, templateID int) (*Template, error) {
	var tpl Template
	if err := s.rest.Do(ctx, "GET", "/api/coupons/template/"+strconv.Itoa(templateID), nil, nil, &tpl, rest.UnwrapData); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// Mine lists the current user's claimed coupons.
func (s *Service) Mine(ctx context.Context) ([]Coupon, error) {
	var coupons []Coupon
	if err := s.rest.Do(ctx, "GET", "/api/coupons/all", nil, nil, &coupons, rest.UnwrapData); err != nil {
		return nil, err
	}
	return coupons, nil
}

// Claim takes one coupon from a template for the current user.
func (s *Service) Claim(ctx context.Context, templateID int) (*Coupon, error) {
	var c Coupon
	if err := s.rest.Do(ctx, "POST", "/api/coupons/"+strconv.Itoa(templateID), nil, nil, &c, rest.UnwrapData); err != nil {
		return nil, err
	}
	return &c, nil
}

// Claimed reports whether the current user already claimed from a template.
func (s *Service) Claimed(ctx context.Context, templateID int) (bool, error) {
	var claimed bool
	if err := s.rest.Do(ctx, "GET", "/api/coupons/check/"+strconv.Itoa(templateID), nil, nil, &claimed, rest.UnwrapData); err != nil {
		return false, err
	}
	return claimed, nil
}
