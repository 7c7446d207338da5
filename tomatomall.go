// Package tomatomall is a Go client for the TomatoMall commerce API. It wires
// the per-resource clients over one authenticated transport and exposes the
// checkout and payment orchestration flow.
package tomatomall

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/happy-299/TomatoMall/account"
	"github.com/happy-299/TomatoMall/cart"
	"github.com/happy-299/TomatoMall/checkout"
	"github.com/happy-299/TomatoMall/config"
	"github.com/happy-299/TomatoMall/coupon"
	"github.com/happy-299/TomatoMall/events"
	"github.com/happy-299/TomatoMall/internal/rest"
	"github.com/happy-299/TomatoMall/product"
)

// Client aggregates every TomatoMall API surface over a shared session.
type Client struct {
	Accounts *account.Service
	Products *product.Service
	Cart     *cart.Service
	Coupons  *coupon.Service
	Checkout *checkout.Service

	// Session holds the token attached to every request. Accounts.Login
	// fills it; SetToken injects an externally obtained one.
	Session *rest.SessionStore
	// Events receives the payment-success broadcast.
	Events *events.Bus
}

type Option func(*options)

type options struct {
	logger *zap.Logger
	http   *http.Client
	token  string
}

// WithLogger routes client logging through l instead of the global logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithHTTPClient replaces the transport's http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(o *options) { o.http = h }
}

// WithToken seeds the session with an externally stored token.
func WithToken(token string) Option {
	return func(o *options) { o.token = token }
}

// New builds a client for the API at cfg.BaseURL.
func New(cfg *config.Config, opts ...Option) *Client {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.L()
	}

	session := &rest.SessionStore{}
	if o.token != "" {
		session.Set(o.token)
	}

	restOpts := []rest.Option{
		rest.WithTokenProvider(session),
		rest.WithLogger(o.logger),
	}
	if o.http != nil {
		restOpts = append(restOpts, rest.WithHTTPClient(o.http))
	} else if cfg.RequestTimeout > 0 {
		restOpts = append(restOpts, rest.WithTimeout(cfg.RequestTimeout))
	}
	rc := rest.NewClient(cfg.BaseURL, restOpts...)

	bus := &events.Bus{}

	return &Client{
		Accounts: account.NewService(rc, session),
		Products: product.NewService(rc),
		Cart:     cart.NewService(rc),
		Coupons:  coupon.NewService(rc),
		Checkout: checkout.NewService(rc, bus, o.logger),
		Session:  session,
		Events:   bus,
	}
}

// SetToken stores an externally obtained session token.
func (c *Client) SetToken(token string) {
	c.Session.Set(token)
}
