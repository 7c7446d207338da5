package mockmall

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type specView struct {
	ID        string `json:"id,omitempty"`
	Item      string `json:"item"`
	Value     string `json:"value"`
	ProductID string `json:"productId,omitempty"`
}

type productView struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Price          float64    `json:"price"`
	Rate           float64    `json:"rate"`
	Description    string     `json:"description,omitempty"`
	Cover          string     `json:"cover,omitempty"`
	Detail         string     `json:"detail,omitempty"`
	Specifications []specView `json:"specifications,omitempty"`
}

func productViewOf(p *Product) productView {
	view := productView{
		ID:          strconv.Itoa(int(p.ID)),
		Title:       p.Title,
		Price:       p.Price,
		Rate:        p.Rate,
		Description: p.Description,
		Cover:       p.Cover,
		Detail:      p.Detail,
	}
	if len(p.Specs) > 0 {
		var specs []specView
		if json.Unmarshal(p.Specs, &specs) == nil {
			view.Specifications = specs
		}
	}
	return view
}

func (s *Server) listProducts(c *gin.Context) {
	var products []Product
	if err := s.db.Find(&products).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	views := make([]productView, 0, len(products))
	for i := range products {
		views = append(views, productViewOf(&products[i]))
	}
	ok(c, views)
}

func (s *Server) getProduct(c *gin.Context) {
	id, err := parseUint(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid product id")
		return
	}

	var p Product
	if err := s.db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "product not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	ok(c, productViewOf(&p))
}

type createProductBody struct {
	Title          string     `json:"title" binding:"required"`
	Price          float64    `json:"price" binding:"required,gt=0"`
	Rate           float64    `json:"rate"`
	Description    string     `json:"description"`
	Cover          string     `json:"cover"`
	Detail         string     `json:"detail"`
	Specifications []specView `json:"specifications"`
}

func (s *Server) createProduct(c *gin.Context) {
	var body createProductBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	p := Product{
		Title:       body.Title,
		Price:       body.Price,
		Rate:        body.Rate,
		Description: body.Description,
		Cover:       body.Cover,
		Detail:      body.Detail,
	}
	if len(body.Specifications) > 0 {
		raw, _ := json.Marshal(body.Specifications)
		p.Specs = datatypes.JSON(raw)
	}

	if err := s.db.Create(&p).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	// Every product gets a stock row, empty until the admin fills it.
	if err := s.db.Create(&Stockpile{ProductID: p.ID}).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	ok(c, productViewOf(&p))
}

type updateProductBody struct {
	ID             string     `json:"id" binding:"required"`
	Title          string     `json:"title"`
	Price          float64    `json:"price"`
	Rate           float64    `json:"rate"`
	Description    string     `json:"description"`
	Cover          string     `json:"cover"`
	Detail         string     `json:"detail"`
	Specifications []specView `json:"specifications"`
}

func (s *Server) updateProduct(c *gin.Context) {
	var body updateProductBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	id, err := parseUint(body.ID)
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid product id")
		return
	}

	var p Product
	if err := s.db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "product not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if body.Title != "" {
		updates["title"] = body.Title
	}
	if body.Price > 0 {
		updates["price"] = body.Price
	}
	if body.Rate > 0 {
		updates["rate"] = body.Rate
	}
	if body.Description != "" {
		updates["description"] = body.Description
	}
	if body.Cover != "" {
		updates["cover"] = body.Cover
	}
	if body.Detail != "" {
		updates["detail"] = body.Detail
	}
	if len(body.Specifications) > 0 {
		raw, _ := json.Marshal(body.Specifications)
		updates["specs"] = datatypes.JSON(raw)
	}

	if len(updates) > 0 {
		if err := s.db.Model(&p).Updates(updates).Error; err != nil {
			fail(c, http.StatusInternalServerError, err.Error())
			return
		}
	}
	ok(c, "更新成功")
}

func (s *Server) deleteProduct(c *gin.Context) {
	id, err := parseUint(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := s.db.Delete(&Product{}, id).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	s.db.Where("product_id = ?", id).Delete(&Stockpile{})
	ok(c, "删除成功")
}

type stockpileView struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Amount    int    `json:"amount"`
	Frozen    int    `json:"frozen"`
}

func (s *Server) getStockpile(c *gin.Context) {
	productID, err := parseUint(c.Param("productId"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid product id")
		return
	}

	var sp Stockpile
	if err := s.db.Where("product_id = ?", productID).First(&sp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "stockpile not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	ok(c, stockpileView{
		ID:        strconv.Itoa(int(sp.ID)),
		ProductID: strconv.Itoa(int(sp.ProductID)),
		Amount:    sp.Amount,
		Frozen:    sp.Frozen,
	})
}

func (s *Server) adjustStockpile(c *gin.Context) {
	productID, err := parseUint(c.Param("productId"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid product id")
		return
	}

	var body struct {
		Amount int `json:"amount" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	result := s.db.Model(&Stockpile{}).Where("product_id = ?", productID).Update("amount", body.Amount)
	if result.Error != nil {
		fail(c, http.StatusInternalServerError, result.Error.Error())
		return
	}
	if result.RowsAffected == 0 {
		fail(c, http.StatusNotFound, "stockpile not found")
		return
	}
	ok(c, "调整成功")
}
