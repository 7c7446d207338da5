package coupon

// Type enumerates the coupon mechanics the backend supports.
type Type string

const (
	TypeFullReduction Type = "FULL_REDUCTION"
	TypeDiscount      Type = "DISCOUNT"
)

// Template is a claimable coupon definition.
type Template struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Img         string  `json:"img,omitempty"`
	Type        Type    `json:"type"`
	Threshold   float64 `json:"threshold"`
	Reduce      float64 `json:"reduce"`
	Discount    float64 `json:"discount"`
	InUse       bool    `json:"inUse"`
	RestCnt     int     `json:"restCnt"`
	ExpiryTime  string  `json:"expiryDateTime,omitempty"`
}

// Coupon is a claimed instance of a template, owned by a user.
type Coupon struct {
	ID          int     `json:"id"`
	UserID      int     `json:"userId"`
	TemplateID  int     `json:"couponTemplateId"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Img         string  `json:"img,omitempty"`
	Type        Type    `json:"type"`
	Threshold   float64 `json:"threshold"`
	Reduce      float64 `json:"reduce"`
	Discount    float64 `json:"discount"`
	InUse       bool    `json:"inUse"`
	ExpiryTime  string  `json:"expiryDateTime,omitempty"`
}
