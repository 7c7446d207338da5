package mockmall_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	tomatomall "github.com/happy-299/TomatoMall"
	"github.com/happy-299/TomatoMall/account"
	"github.com/happy-299/TomatoMall/checkout"
	"github.com/happy-299/TomatoMall/config"
	"github.com/happy-299/TomatoMall/coupon"
	"github.com/happy-299/TomatoMall/internal/mockmall"
	"github.com/happy-299/TomatoMall/internal/rest"
	"github.com/happy-299/TomatoMall/product"
)

func setupMall(t *testing.T) (*mockmall.Server, *tomatomall.Client, *tomatomall.Client) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv, err := mockmall.NewServer(mockmall.Config{
		DBPath:    ":memory:",
		JWTSecret: "test-secret",
	}, nil)
	require.NoError(t, err)

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, srv.DB().Create(&mockmall.Account{
		Username: "admin",
		Password: string(hashed),
		Name:     "Administrator",
		Role:     "admin",
	}).Error)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	cfg := &config.Config{BaseURL: ts.URL, RequestTimeout: 5 * time.Second}
	admin := tomatomall.New(cfg)
	shopper := tomatomall.New(cfg)

	ctx := context.Background()
	_, err = admin.Accounts.Login(ctx, "admin", "admin123")
	require.NoError(t, err)

	require.NoError(t, shopper.Accounts.Register(ctx, account.RegisterInfo{
		Username: "alice",
		Password: "secret123",
		Name:     "Alice",
	}))
	_, err = shopper.Accounts.Login(ctx, "alice", "secret123")
	require.NoError(t, err)

	return srv, admin, shopper
}

func seedProduct(t *testing.T, admin *tomatomall.Client, price float64, stock int) string {
	t.Helper()
	ctx := context.Background()

	created, err := admin.Products.Create(ctx, product.CreateInfo{
		Title: "番茄工作法图解",
		Price: price,
		Rate:  9.5,
	})
	require.NoError(t, err)
	require.NoError(t, admin.Products.AdjustStockpile(ctx, created.ID, stock))
	return created.ID
}

func submitOrder(t *testing.T, shopper *tomatomall.Client, cartItemIDs []string) *checkout.Order {
	t.Helper()
	order, err := shopper.Checkout.SubmitOrder(context.Background(), checkout.OrderSubmission{
		CartItemIDs: cartItemIDs,
		ShippingAddress: checkout.ShippingAddress{
			RecipientName: "Alice",
			Telephone:     "13800000000",
			ZipCode:       "210000",
			Location:      "Jiangsu Nanjing",
		},
		PaymentMethod: checkout.PaymentMethodAlipay,
	})
	require.NoError(t, err)
	return order
}

// payThroughGateway performs the provider hand-off for an order: request the
// ticket, parse the auto-submit form and post it to the stand-in gateway.
func payThroughGateway(t *testing.T, shopper *tomatomall.Client, orderID string) {
	t.Helper()
	ctx := context.Background()

	ticket, err := shopper.Checkout.PayOrder(ctx, orderID)
	require.NoError(t, err)
	require.Equal(t, orderID, ticket.OrderID)

	form, err := checkout.ParsePaymentForm(ticket.PaymentForm)
	require.NoError(t, err)
	require.Equal(t, orderID, form.Fields.Get("out_trade_no"))

	require.NoError(t, shopper.Checkout.SubmitPaymentForm(ctx, form))
}

func TestFullPurchaseFlow(t *testing.T) {
	_, admin, shopper := setupMall(t)
	ctx := context.Background()

	productID := seedProduct(t, admin, 19.9, 10)

	item, err := shopper.Cart.Add(ctx, productID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)

	order := submitOrder(t, shopper, []string{item.CartItemID})
	assert.Equal(t, checkout.StatusPending, order.Status)
	assert.Equal(t, "alice", order.Username)
	assert.InDelta(t, 39.8, order.TotalAmount, 0.001)

	// Checkout freezes the units but leaves them counted.
	sp, err := shopper.Products.Stockpile(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 10, sp.Amount)
	assert.Equal(t, 2, sp.Frozen)

	payThroughGateway(t, shopper, order.OrderID)

	status, err := shopper.Checkout.WaitForPayment(ctx, order.OrderID, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, checkout.StatusPaid, status)

	paid, err := shopper.Checkout.IsPaid(ctx, order.OrderID)
	require.NoError(t, err)
	assert.True(t, paid)

	// Settlement consumes the frozen units and clears the purchased lines.
	sp, err = shopper.Products.Stockpile(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 8, sp.Amount)
	assert.Equal(t, 0, sp.Frozen)

	list, err := shopper.Cart.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	orders, err := shopper.Checkout.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, checkout.StatusPaid, orders[0].Status)
}

func TestTopUpFlow(t *testing.T) {
	srv, _, shopper := setupMall(t)
	ctx := context.Background()

	order, err := shopper.Checkout.TopUpCredit(ctx, 100, checkout.PaymentMethodAlipay)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, order.TotalAmount, 0.001)

	payThroughGateway(t, shopper, order.OrderID)

	paid, err := shopper.Checkout.IsPaid(ctx, order.OrderID)
	require.NoError(t, err)
	assert.True(t, paid)

	var acct mockmall.Account
	require.NoError(t, srv.DB().Where("username = ?", "alice").First(&acct).Error)
	assert.Equal(t, 100, acct.Tomato)
}

func TestCancelFlow(t *testing.T) {
	_, admin, shopper := setupMall(t)
	ctx := context.Background()

	productID := seedProduct(t, admin, 10, 5)
	item, err := shopper.Cart.Add(ctx, productID, 3)
	require.NoError(t, err)

	order := submitOrder(t, shopper, []string{item.CartItemID})

	require.NoError(t, shopper.Checkout.CancelOrder(ctx, order.OrderID))

	status, err := shopper.Checkout.OrderStatus(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, checkout.StatusCancelled, status)

	// Cancellation releases the frozen units.
	sp, err := shopper.Products.Stockpile(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 5, sp.Amount)
	assert.Equal(t, 0, sp.Frozen)

	// Terminal states reject further transitions.
	err = shopper.Checkout.CancelOrder(ctx, order.OrderID)
	require.Error(t, err)
	_, err = shopper.Checkout.PayOrder(ctx, order.OrderID)
	require.Error(t, err)
	assert.True(t, rest.IsMalformed(err))
}

func TestCouponFlow(t *testing.T) {
	_, admin, shopper := setupMall(t)
	ctx := context.Background()

	tmpl, err := admin.Coupons.CreateTemplate(ctx, coupon.Template{
		Title:     "满50减10",
		Type:      coupon.TypeFullReduction,
		Threshold: 50,
		Reduce:    10,
		RestCnt:   5,
	})
	require.NoError(t, err)

	claimed, err := shopper.Coupons.Claimed(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.False(t, claimed)

	mineCoupon, err := shopper.Coupons.Claim(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, tmpl.ID, mineCoupon.TemplateID)

	claimed, err = shopper.Coupons.Claimed(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.True(t, claimed)

	// Second claim of the same template is rejected.
	_, err = shopper.Coupons.Claim(ctx, tmpl.ID)
	require.Error(t, err)

	mine, err := shopper.Coupons.Mine(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	productID := seedProduct(t, admin, 30, 10)
	item, err := shopper.Cart.Add(ctx, productID, 2)
	require.NoError(t, err)

	order, err := shopper.Checkout.SubmitOrder(ctx, checkout.OrderSubmission{
		CartItemIDs: []string{item.CartItemID},
		ShippingAddress: checkout.ShippingAddress{
			RecipientName: "Alice",
			Telephone:     "13800000000",
			Location:      "Nanjing",
		},
		PaymentMethod: checkout.PaymentMethodAlipay,
		UseCoupon:     true,
		CouponID:      mine[0].ID,
	})
	require.NoError(t, err)
	assert.True(t, order.UseCoupon)
	assert.InDelta(t, 60.0, order.BeforeAmount, 0.001)
	assert.InDelta(t, 10.0, order.ReducedAmount, 0.001)
	assert.InDelta(t, 50.0, order.TotalAmount, 0.001)

	// The coupon was consumed at checkout.
	mine, err = shopper.Coupons.Mine(ctx)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestAuthRequired(t *testing.T) {
	srv, _, _ := setupMall(t)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	anonymous := tomatomall.New(&config.Config{BaseURL: ts.URL, RequestTimeout: 5 * time.Second})

	_, err := anonymous.Checkout.ListOrders(context.Background())
	require.Error(t, err)

	var statusErr *rest.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 401, statusErr.StatusCode)
}

func TestStockGuardsCart(t *testing.T) {
	_, admin, shopper := setupMall(t)
	ctx := context.Background()

	productID := seedProduct(t, admin, 10, 2)

	_, err := shopper.Cart.Add(ctx, productID, 3)
	require.Error(t, err)

	item, err := shopper.Cart.Add(ctx, productID, 2)
	require.NoError(t, err)

	require.Error(t, shopper.Cart.UpdateQuantity(ctx, item.CartItemID, 5))
	require.NoError(t, shopper.Cart.UpdateQuantity(ctx, item.CartItemID, 1))
}
