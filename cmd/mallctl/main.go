// mallctl walks one complete purchase against a TomatoMall backend: register
// and log in, stock the catalogue (admin), fill the cart, check out, hand the
// order to the payment gateway and poll until it settles. Useful as a smoke
// test against cmd/mockmall and as a usage example for the client.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/url"
	"time"

	tomatomall "github.com/happy-299/TomatoMall"
	"github.com/happy-299/TomatoMall/account"
	"github.com/happy-299/TomatoMall/checkout"
	"github.com/happy-299/TomatoMall/config"
	"github.com/happy-299/TomatoMall/internal/rest"
	"github.com/happy-299/TomatoMall/pkg/logger"
	"github.com/happy-299/TomatoMall/product"
)

func main() {
	var (
		baseURL   = flag.String("base", "", "API base URL (defaults to TOMATOMALL_BASE_URL)")
		username  = flag.String("user", "demo", "shopper username")
		password  = flag.String("pass", "demo12345", "shopper password")
		adminUser = flag.String("admin-user", "admin", "admin username used to seed the catalogue")
		adminPass = flag.String("admin-pass", "admin123", "admin password")
		interval  = flag.Duration("poll", 500*time.Millisecond, "status polling interval")
	)
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}

	if err := logger.InitLogger(&logger.Config{
		Level:    cfg.LogLevel,
		Filename: cfg.LogFilename,
		MaxSize:  cfg.LogMaxSize,
		MaxAge:   cfg.LogMaxAge,
	}); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	productID, err := seedCatalogue(ctx, cfg, *adminUser, *adminPass)
	if err != nil {
		log.Fatalf("seed catalogue: %v", err)
	}

	client := tomatomall.New(cfg, tomatomall.WithLogger(logger.Log))

	if err := ensureAccount(ctx, client.Accounts, *username, *password); err != nil {
		log.Fatalf("ensure account: %v", err)
	}
	if _, err := client.Accounts.Login(ctx, *username, *password); err != nil {
		log.Fatalf("login: %v", err)
	}
	fmt.Printf("logged in as %s\n", *username)

	item, err := client.Cart.Add(ctx, productID, 2)
	if err != nil {
		log.Fatalf("add to cart: %v", err)
	}
	fmt.Printf("cart line %s: %s x%d\n", item.CartItemID, item.Title, item.Quantity)

	order, err := client.Checkout.SubmitOrder(ctx, checkout.OrderSubmission{
		CartItemIDs: []string{item.CartItemID},
		ShippingAddress: checkout.ShippingAddress{
			RecipientName: "Demo Shopper",
			Telephone:     "13800000000",
			ZipCode:       "210000",
			Location:      "Jiangsu Nanjing Gulou 22 Hankou Rd",
		},
		PaymentMethod: checkout.PaymentMethodAlipay,
	})
	if err != nil {
		log.Fatalf("checkout: %v", err)
	}
	fmt.Printf("order %s created, total %.2f, status %s\n", order.OrderID, order.TotalAmount, order.Status)

	events, cancelSub := client.Events.Subscribe(1)
	defer cancelSub()

	ticket, err := client.Checkout.PayOrder(ctx, order.OrderID)
	if err != nil {
		log.Fatalf("pay: %v", err)
	}

	form, err := checkout.ParsePaymentForm(ticket.PaymentForm)
	if err != nil {
		log.Fatalf("parse payment form: %v", err)
	}
	fmt.Printf("gateway %s, %d field(s)\n", form.Action, len(form.Fields))

	if err := client.Checkout.SubmitPaymentForm(ctx, form); err != nil {
		log.Fatalf("submit payment form: %v", err)
	}

	// The gateway would redirect the browser back with success=true; replay
	// that return locally so the event bus fires.
	client.Checkout.HandlePaymentReturn(url.Values{
		"success":      {"true"},
		"out_trade_no": {order.OrderID},
	})
	select {
	case ev := <-events:
		fmt.Printf("payment event for order %s at %s\n", ev.OrderID, ev.At.Format(time.RFC3339))
	default:
	}

	status, err := client.Checkout.WaitForPayment(ctx, order.OrderID, *interval)
	if err != nil {
		log.Fatalf("wait for payment: %v", err)
	}
	fmt.Printf("order %s settled: %s\n", order.OrderID, status)
}

// seedCatalogue logs in as admin and makes sure at least one in-stock product
// exists, returning its id.
func seedCatalogue(ctx context.Context, cfg *config.Config, adminUser, adminPass string) (string, error) {
	admin := tomatomall.New(cfg, tomatomall.WithLogger(logger.Log))
	if _, err := admin.Accounts.Login(ctx, adminUser, adminPass); err != nil {
		return "", fmt.Errorf("admin login: %w", err)
	}

	products, err := admin.Products.List(ctx)
	if err != nil {
		return "", err
	}
	for _, p := range products {
		sp, err := admin.Products.Stockpile(ctx, p.ID)
		if err == nil && sp.Amount-sp.Frozen > 0 {
			return p.ID, nil
		}
	}

	created, err := admin.Products.Create(ctx, product.CreateInfo{
		Title:       "深入理解计算机系统",
		Price:       99.0,
		Rate:        9.9,
		Description: "CSAPP, the canonical systems text",
	})
	if err != nil {
		return "", err
	}
	if err := admin.Products.AdjustStockpile(ctx, created.ID, 100); err != nil {
		return "", err
	}
	return created.ID, nil
}

// ensureAccount registers the shopper, tolerating an already-existing one.
func ensureAccount(ctx context.Context, accounts *account.Service, username, password string) error {
	err := accounts.Register(ctx, account.RegisterInfo{
		Username: username,
		Password: password,
		Name:     "Demo Shopper",
	})
	if err == nil {
		return nil
	}
	var apiErr *rest.APIError
	var statusErr *rest.StatusError
	if errors.As(err, &apiErr) || errors.As(err, &statusErr) {
		// Most likely the account already exists; login will settle it.
		return nil
	}
	return err
}
