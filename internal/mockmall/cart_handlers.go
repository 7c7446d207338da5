package mockmall

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type cartItemView struct {
	CartItemID  string  `json:"cartItemId"`
	ProductID   string  `json:"productId"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
	Cover       string  `json:"cover,omitempty"`
	Detail      string  `json:"detail,omitempty"`
	Quantity    int     `json:"quantity"`
}

func (s *Server) cartItemViewOf(item *CartItem) (cartItemView, error) {
	var p Product
	if err := s.db.First(&p, item.ProductID).Error; err != nil {
		return cartItemView{}, err
	}
	return cartItemView{
		CartItemID:  strconv.Itoa(int(item.ID)),
		ProductID:   strconv.Itoa(int(item.ProductID)),
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		Cover:       p.Cover,
		Detail:      p.Detail,
		Quantity:    item.Quantity,
	}, nil
}

func (s *Server) addCartItem(c *gin.Context) {
	var body struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	productID, err := parseUint(body.ProductID)
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid product id")
		return
	}

	var p Product
	if err := s.db.First(&p, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "product not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	if !s.hasStock(productID, body.Quantity) {
		fail(c, http.StatusBadRequest, "insufficient stock")
		return
	}

	acct := currentAccount(c)
	item := CartItem{
		AccountID: acct.ID,
		ProductID: productID,
		Quantity:  body.Quantity,
	}
	if err := s.db.Create(&item).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	view, err := s.cartItemViewOf(&item)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	ok(c, view)
}

func (s *Server) deleteCartItem(c *gin.Context) {
	itemID, err := parseUint(c.Param("cartItemId"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid cart item id")
		return
	}

	acct := currentAccount(c)
	result := s.db.Where("id = ? AND account_id = ?", itemID, acct.ID).Delete(&CartItem{})
	if result.Error != nil {
		fail(c, http.StatusInternalServerError, result.Error.Error())
		return
	}
	if result.RowsAffected == 0 {
		fail(c, http.StatusNotFound, "cart item not found")
		return
	}
	ok(c, "删除成功")
}

func (s *Server) clearCart(c *gin.Context) {
	acct := currentAccount(c)
	if err := s.db.Where("account_id = ?", acct.ID).Delete(&CartItem{}).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	ok(c, "清空成功")
}

func (s *Server) adjustCartItem(c *gin.Context) {
	itemID, err := parseUint(c.Param("cartItemId"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid cart item id")
		return
	}

	var body struct {
		Quantity int `json:"quantity" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	acct := currentAccount(c)
	var item CartItem
	if err := s.db.Where("id = ? AND account_id = ?", itemID, acct.ID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "cart item not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	if !s.hasStock(item.ProductID, body.Quantity) {
		fail(c, http.StatusBadRequest, "insufficient stock")
		return
	}

	if err := s.db.Model(&item).Update("quantity", body.Quantity).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	ok(c, "修改成功")
}

func (s *Server) getCart(c *gin.Context) {
	acct := currentAccount(c)

	var items []CartItem
	if err := s.db.Where("account_id = ?", acct.ID).Order("id").Find(&items).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	views := make([]cartItemView, 0, len(items))
	var totalAmount float64
	for i := range items {
		view, err := s.cartItemViewOf(&items[i])
		if err != nil {
			fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		views = append(views, view)
		totalAmount += view.Price * float64(view.Quantity)
	}

	ok(c, gin.H{
		"items":       views,
		"total":       len(views),
		"totalAmount": totalAmount,
	})
}

// hasStock reports whether a product has at least quantity sellable units.
func (s *Server) hasStock(productID uint, quantity int) bool {
	var sp Stockpile
	if err := s.db.Where("product_id = ?", productID).First(&sp).Error; err != nil {
		return false
	}
	return sp.Amount-sp.Frozen >= quantity
}
