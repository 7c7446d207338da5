package mockmall

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	couponTypeFullReduction = "FULL_REDUCTION"
	couponTypeDiscount      = "DISCOUNT"
)

// Coupon ids stay numeric on the wire, unlike products, matching the
// production contract.
type couponTemplateView struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Img         string  `json:"img,omitempty"`
	Type        string  `json:"type"`
	Threshold   float64 `json:"threshold"`
	Reduce      float64 `json:"reduce"`
	Discount    float64 `json:"discount"`
	InUse       bool    `json:"inUse"`
	RestCnt     int     `json:"restCnt"`
	ExpiryTime  string  `json:"expiryDateTime,omitempty"`
}

func templateViewOf(t *CouponTemplate) couponTemplateView {
	return couponTemplateView{
		ID:          int(t.ID),
		Title:       t.Title,
		Description: t.Description,
		Img:         t.Img,
		Type:        t.Type,
		Threshold:   t.Threshold,
		Reduce:      t.Reduce,
		Discount:    t.Discount,
		InUse:       t.InUse,
		RestCnt:     t.RestCnt,
		ExpiryTime:  t.ExpiryTime,
	}
}

type couponView struct {
	ID          int     `json:"id"`
	UserID      int     `json:"userId"`
	TemplateID  int     `json:"couponTemplateId"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Img         string  `json:"img,omitempty"`
	Type        string  `json:"type"`
	Threshold   float64 `json:"threshold"`
	Reduce      float64 `json:"reduce"`
	Discount    float64 `json:"discount"`
	InUse       bool    `json:"inUse"`
	ExpiryTime  string  `json:"expiryDateTime,omitempty"`
}

func couponViewOf(cp *Coupon, tmpl *CouponTemplate) couponView {
	return couponView{
		ID:          int(cp.ID),
		UserID:      int(cp.AccountID),
		TemplateID:  int(cp.TemplateID),
		Title:       tmpl.Title,
		Description: tmpl.Description,
		Img:         tmpl.Img,
		Type:        tmpl.Type,
		Threshold:   tmpl.Threshold,
		Reduce:      tmpl.Reduce,
		Discount:    tmpl.Discount,
		InUse:       tmpl.InUse,
		ExpiryTime:  tmpl.ExpiryTime,
	}
}

type createTemplateBody struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Img         string  `json:"img"`
	Type        string  `json:"type" binding:"required,oneof=FULL_REDUCTION DISCOUNT"`
	Threshold   float64 `json:"threshold"`
	Reduce      float64 `json:"reduce"`
	Discount    float64 `json:"discount"`
	RestCnt     int     `json:"restCnt" binding:"required,gt=0"`
	ExpiryTime  string  `json:"expiryDateTime"`
}

func (s *Server) createCouponTemplate(c *gin.Context) {
	var body createTemplateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	switch body.Type {
	case couponTypeFullReduction:
		if body.Reduce <= 0 {
			fail(c, http.StatusBadRequest, "reduce must be positive for full reduction coupons")
			return
		}
	case couponTypeDiscount:
		if body.Discount <= 0 || body.Discount >= 1 {
			fail(c, http.StatusBadRequest, "discount must be in (0, 1)")
			return
		}
	}

	tmpl := CouponTemplate{
		Title:       body.Title,
		Description: body.Description,
		Img:         body.Img,
		Type:        body.Type,
		Threshold:   body.Threshold,
		Reduce:      body.Reduce,
		Discount:    body.Discount,
		InUse:       true,
		RestCnt:     body.RestCnt,
		ExpiryTime:  body.ExpiryTime,
	}
	if err := s.db.Create(&tmpl).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	ok(c, templateViewOf(&tmpl))
}

func (s *Server) listCouponTemplates(c *gin.Context) {
	var templates []CouponTemplate
	if err := s.db.Where("in_use = ?", true).Find(&templates).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	views := make([]couponTemplateView, 0, len(templates))
	for i := range templates {
		views = append(views, templateViewOf(&templates[i]))
	}
	ok(c, views)
}

func (s *Server) getCouponTemplate(c *gin.Context) {
	templateID, err := parseUint(c.Param("templateId"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid template id")
		return
	}

	var tmpl CouponTemplate
	if err := s.db.First(&tmpl, templateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "coupon template not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	ok(c, templateViewOf(&tmpl))
}

func (s *Server) myCoupons(c *gin.Context) {
	acct := currentAccount(c)

	var coupons []Coupon
	if err := s.db.Where("account_id = ?", acct.ID).Find(&coupons).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	views := make([]couponView, 0, len(coupons))
	for i := range coupons {
		var tmpl CouponTemplate
		if err := s.db.First(&tmpl, coupons[i].TemplateID).Error; err != nil {
			continue
		}
		views = append(views, couponViewOf(&coupons[i], &tmpl))
	}
	ok(c, views)
}

func (s *Server) claimCoupon(c *gin.Context) {
	templateID, err := parseUint(c.Param("templateId"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid template id")
		return
	}

	acct := currentAccount(c)

	var existing Coupon
	if err := s.db.Where("account_id = ? AND template_id = ?", acct.ID, templateID).
		First(&existing).Error; err == nil {
		fail(c, http.StatusBadRequest, "coupon already claimed")
		return
	}

	cp := Coupon{AccountID: acct.ID, TemplateID: templateID}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&CouponTemplate{}).
			Where("id = ? AND in_use = ? AND rest_cnt > 0", templateID, true).
			Update("rest_cnt", gorm.Expr("rest_cnt - 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errors.New("coupon template unavailable")
		}
		return tx.Create(&cp).Error
	})
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	var tmpl CouponTemplate
	if err := s.db.First(&tmpl, templateID).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	ok(c, couponViewOf(&cp, &tmpl))
}

func (s *Server) couponClaimed(c *gin.Context) {
	templateID, err := parseUint(c.Param("templateId"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid template id")
		return
	}

	acct := currentAccount(c)
	var count int64
	if err := s.db.Model(&Coupon{}).
		Where("account_id = ? AND template_id = ?", acct.ID, templateID).
		Count(&count).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	ok(c, count > 0)
}

// redeemCoupon consumes the account's coupon and returns the reduction it
// yields on total. The coupon row is deleted so it cannot be reused.
func (s *Server) redeemCoupon(accountID uint, couponID int, total float64) (float64, error) {
	if couponID <= 0 {
		return 0, errors.New("a coupon id is required when useCoupon is set")
	}

	var cp Coupon
	if err := s.db.Where("id = ? AND account_id = ?", couponID, accountID).First(&cp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, errors.New("coupon not found")
		}
		return 0, err
	}

	var tmpl CouponTemplate
	if err := s.db.First(&tmpl, cp.TemplateID).Error; err != nil {
		return 0, err
	}

	var reduced float64
	switch tmpl.Type {
	case couponTypeFullReduction:
		if total < tmpl.Threshold {
			return 0, fmt.Errorf("order total %.2f below coupon threshold %.2f", total, tmpl.Threshold)
		}
		reduced = tmpl.Reduce
	case couponTypeDiscount:
		reduced = total * (1 - tmpl.Discount)
	default:
		return 0, errors.New("unknown coupon type")
	}
	if reduced > total {
		reduced = total
	}

	if err := s.db.Delete(&cp).Error; err != nil {
		return 0, err
	}
	return reduced, nil
}
