package mockmall

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type shippingAddressBody struct {
	RecipientName string `json:"recipientName" binding:"required"`
	Telephone     string `json:"telephone" binding:"required"`
	ZipCode       string `json:"zipCode"`
	Location      string `json:"location" binding:"required"`
}

type checkoutBody struct {
	CartItemIDs     []string            `json:"cartItemIds"`
	ShippingAddress shippingAddressBody `json:"shipping_address" binding:"required"`
	PaymentMethod   string              `json:"payment_method" binding:"required,oneof=ALIPAY WECHAT"`
	UseCoupon       bool                `json:"useCoupon"`
	CouponID        int                 `json:"couponId"`
	Tomato          int                 `json:"tomato"`
}

type orderLine struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

type checkoutView struct {
	OrderID       string  `json:"orderId"`
	Username      string  `json:"username"`
	TotalAmount   float64 `json:"totalAmount"`
	PaymentMethod string  `json:"paymentMethod"`
	CreateTime    string  `json:"createTime"`
	Status        string  `json:"status"`
	UseCoupon     bool    `json:"useCoupon"`
	BeforeAmount  float64 `json:"beforeAmount,omitempty"`
	ReducedAmount float64 `json:"reducedAmount,omitempty"`
}

func checkoutViewOf(o *Order) checkoutView {
	return checkoutView{
		OrderID:       strconv.Itoa(int(o.ID)),
		Username:      o.Username,
		TotalAmount:   o.TotalAmount,
		PaymentMethod: o.PaymentMethod,
		CreateTime:    o.CreatedAt.Format(time.RFC3339),
		Status:        o.Status,
		UseCoupon:     o.UseCoupon,
		BeforeAmount:  o.BeforeAmount,
		ReducedAmount: o.ReducedAmount,
	}
}

// checkout turns the selected cart lines into a PENDING order, applying an
// optional coupon and freezing stock.
func (s *Server) checkout(c *gin.Context) {
	var body checkoutBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if len(body.CartItemIDs) == 0 {
		fail(c, http.StatusBadRequest, "cart item ids must not be empty")
		return
	}

	acct := currentAccount(c)

	var items []CartItem
	for _, rawID := range body.CartItemIDs {
		itemID, err := parseUint(rawID)
		if err != nil {
			fail(c, http.StatusBadRequest, "invalid cart item id "+rawID)
			return
		}
		var item CartItem
		if err := s.db.Where("id = ? AND account_id = ?", itemID, acct.ID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				fail(c, http.StatusNotFound, "cart item "+rawID+" not found")
				return
			}
			fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		items = append(items, item)
	}

	var total float64
	lines := make([]orderLine, 0, len(items))
	for _, item := range items {
		var p Product
		if err := s.db.First(&p, item.ProductID).Error; err != nil {
			fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		if !s.hasStock(item.ProductID, item.Quantity) {
			fail(c, http.StatusBadRequest, "insufficient stock for "+p.Title)
			return
		}
		total += p.Price * float64(item.Quantity)
		lines = append(lines, orderLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order := Order{
		AccountID:     acct.ID,
		Username:      acct.Username,
		TotalAmount:   total,
		PaymentMethod: body.PaymentMethod,
		Status:        OrderStatusPending,
	}

	if body.UseCoupon {
		before := total
		reduced, err := s.redeemCoupon(acct.ID, body.CouponID, total)
		if err != nil {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		order.UseCoupon = true
		order.BeforeAmount = before
		order.ReducedAmount = reduced
		order.TotalAmount = before - reduced
	}

	addr, _ := json.Marshal(body.ShippingAddress)
	order.Address = datatypes.JSON(addr)
	rawLines, _ := json.Marshal(lines)
	order.Lines = datatypes.JSON(rawLines)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for _, line := range lines {
			result := tx.Model(&Stockpile{}).
				Where("product_id = ? AND amount - frozen >= ?", line.ProductID, line.Quantity).
				Update("frozen", gorm.Expr("frozen + ?", line.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return errors.New("insufficient stock")
			}
		}
		return nil
	})
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	s.log.Info("order created",
		zap.Uint("order_id", order.ID),
		zap.String("username", order.Username),
		zap.Float64("total", order.TotalAmount))

	okDeep(c, checkoutViewOf(&order))
}

// buyTomato creates the credit top-up order variant: no cart items, amount
// derived from the coin count.
func (s *Server) buyTomato(c *gin.Context) {
	var body checkoutBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if len(body.CartItemIDs) != 0 {
		fail(c, http.StatusBadRequest, "top-up must not carry cart items")
		return
	}
	if body.Tomato <= 0 {
		fail(c, http.StatusBadRequest, "tomato count must be positive")
		return
	}

	acct := currentAccount(c)
	addr, _ := json.Marshal(body.ShippingAddress)

	order := Order{
		AccountID:     acct.ID,
		Username:      acct.Username,
		TotalAmount:   float64(body.Tomato) / TomatoRate,
		PaymentMethod: body.PaymentMethod,
		Status:        OrderStatusPending,
		Address:       datatypes.JSON(addr),
		TomatoCnt:     body.Tomato,
	}
	if err := s.db.Create(&order).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	okDeep(c, checkoutViewOf(&order))
}

type payView struct {
	PaymentForm   string  `json:"paymentForm"`
	OrderID       string  `json:"orderId"`
	TotalAmount   float64 `json:"totalAmount"`
	PaymentMethod string  `json:"paymentMethod"`
}

// payOrder issues the provider hand-off ticket for a PENDING order: an
// auto-submitting form targeting the stand-in gateway.
func (s *Server) payOrder(c *gin.Context) {
	orderID, err := parseUint(c.Param("orderId"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid order id")
		return
	}

	acct := currentAccount(c)
	var order Order
	if err := s.db.Where("id = ? AND account_id = ?", orderID, acct.ID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No payment available for an unknown order: the envelope goes
			// out with a null payload, matching the observed backend.
			okDeep(c, nil)
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	if order.Status != OrderStatusPending {
		okDeep(c, nil)
		return
	}

	scheme := "http"
	if c.Request.TLS != nil || c.Request.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	gateway := scheme + "://" + c.Request.Host + "/gateway/pay"

	form := fmt.Sprintf(`<form name="punchout_form" method="post" action="%s">`+
		`<input type="hidden" name="out_trade_no" value="%d">`+
		`<input type="hidden" name="total_amount" value="%.2f">`+
		`<input type="hidden" name="subject" value="TomatoMall order %d">`+
		`</form><script>document.forms[0].submit();</script>`,
		gateway, order.ID, order.TotalAmount, order.ID)

	okDeep(c, payView{
		PaymentForm:   form,
		OrderID:       strconv.Itoa(int(order.ID)),
		TotalAmount:   order.TotalAmount,
		PaymentMethod: order.PaymentMethod,
	})
}

// cancelOrder lets the owner cancel a PENDING order, releasing frozen stock.
func (s *Server) cancelOrder(c *gin.Context) {
	orderID, err := parseUint(c.Param("orderId"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid order id")
		return
	}

	acct := currentAccount(c)
	var order Order
	if err := s.db.Where("id = ? AND account_id = ?", orderID, acct.ID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "order not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	if order.Status != OrderStatusPending {
		fail(c, http.StatusBadRequest, "order is not pending")
		return
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.releaseStock(tx, &order); err != nil {
			return err
		}
		return tx.Model(&order).Update("status", OrderStatusCancelled).Error
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	ok(c, "删除成功")
}

func (s *Server) orderStatus(c *gin.Context) {
	orderID, err := parseUint(c.Param("orderId"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid order id")
		return
	}

	acct := currentAccount(c)
	var order Order
	if err := s.db.Where("id = ? AND account_id = ?", orderID, acct.ID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "order not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	ok(c, gin.H{"status": order.Status})
}

func (s *Server) listOrders(c *gin.Context) {
	acct := currentAccount(c)

	var orders []Order
	if err := s.db.Where("account_id = ?", acct.ID).Order("id desc").Find(&orders).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	views := make([]checkoutView, 0, len(orders))
	for i := range orders {
		views = append(views, checkoutViewOf(&orders[i]))
	}
	ok(c, views)
}

// paymentNotify is the asynchronous provider confirmation: TRADE_SUCCESS
// settles the order. The response body is the bare "success"/"fail" the
// provider protocol expects.
func (s *Server) paymentNotify(c *gin.Context) {
	tradeStatus := c.PostForm("trade_status")
	outTradeNo := c.PostForm("out_trade_no")

	if tradeStatus != "TRADE_SUCCESS" {
		c.String(http.StatusOK, "success")
		return
	}

	orderID, err := parseUint(outTradeNo)
	if err != nil {
		c.String(http.StatusBadRequest, "fail")
		return
	}

	if err := s.settleOrder(orderID); err != nil {
		s.log.Warn("payment notify rejected", zap.String("out_trade_no", outTradeNo), zap.Error(err))
		c.String(http.StatusBadRequest, "fail")
		return
	}
	c.String(http.StatusOK, "success")
}

// gatewayPay is the stand-in payment provider. It accepts the auto-submit
// form and confirms the trade immediately, so a paid order is observable on
// the very next status poll.
func (s *Server) gatewayPay(c *gin.Context) {
	outTradeNo := c.PostForm("out_trade_no")
	orderID, err := parseUint(outTradeNo)
	if err != nil {
		c.String(http.StatusBadRequest, "fail")
		return
	}

	if err := s.settleOrder(orderID); err != nil {
		c.String(http.StatusBadRequest, "fail")
		return
	}
	c.String(http.StatusOK, "success&out_trade_no=%s&redirect=/?success=true", outTradeNo)
}

// settleOrder flips a PENDING order to PAID exactly once, consuming frozen
// stock, clearing the purchased cart lines and crediting tomato coins for
// top-up orders. Settling an already-settled order is a no-op error.
func (s *Server) settleOrder(orderID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var order Order
		if err := tx.First(&order, orderID).Error; err != nil {
			return err
		}
		if order.Status != OrderStatusPending {
			return errors.New("order is not pending")
		}

		if err := tx.Model(&order).Update("status", OrderStatusPaid).Error; err != nil {
			return err
		}

		var lines []orderLine
		if len(order.Lines) > 0 {
			if err := json.Unmarshal(order.Lines, &lines); err != nil {
				return err
			}
		}
		for _, line := range lines {
			result := tx.Model(&Stockpile{}).
				Where("product_id = ?", line.ProductID).
				Updates(map[string]interface{}{
					"amount": gorm.Expr("amount - ?", line.Quantity),
					"frozen": gorm.Expr("frozen - ?", line.Quantity),
				})
			if result.Error != nil {
				return result.Error
			}
			tx.Where("account_id = ? AND product_id = ?", order.AccountID, line.ProductID).Delete(&CartItem{})
		}

		if order.TomatoCnt > 0 {
			if err := tx.Model(&Account{}).Where("id = ?", order.AccountID).
				Update("tomato", gorm.Expr("tomato + ?", order.TomatoCnt)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// releaseStock returns an order's frozen units to the sellable pool.
func (s *Server) releaseStock(tx *gorm.DB, order *Order) error {
	var lines []orderLine
	if len(order.Lines) == 0 {
		return nil
	}
	if err := json.Unmarshal(order.Lines, &lines); err != nil {
		return err
	}
	for _, line := range lines {
		if err := tx.Model(&Stockpile{}).
			Where("product_id = ?", line.ProductID).
			Update("frozen", gorm.Expr("frozen - ?", line.Quantity)).Error; err != nil {
			return err
		}
	}
	return nil
}
