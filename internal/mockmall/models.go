package mockmall

import (
	"time"

	"gorm.io/datatypes"
)

// Order status values, mirrored by the public checkout package.
const (
	OrderStatusPending   = "PENDING"
	OrderStatusPaid      = "PAID"
	OrderStatusCancelled = "CANCELLED"
	OrderStatusFailed    = "FAILED"
)

// TomatoRate is how many tomato coins one yuan buys.
const TomatoRate = 10

type Account struct {
	ID        uint   `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Username  string `gorm:"uniqueIndex;not null"`
	Password  string `gorm:"not null"`
	Name      string
	Avatar    string
	Role      string `gorm:"not null;default:'user'"`
	Telephone string
	Email     string
	Location  string
	Tomato    int `gorm:"default:0"`
}

type Product struct {
	ID          uint `gorm:"primarykey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Title       string  `gorm:"not null"`
	Price       float64 `gorm:"not null"`
	Rate        float64
	Description string
	Cover       string
	Detail      string
	Specs       datatypes.JSON
}

type Stockpile struct {
	ID        uint `gorm:"primarykey"`
	ProductID uint `gorm:"uniqueIndex;not null"`
	Amount    int  `gorm:"not null;default:0"`
	Frozen    int  `gorm:"not null;default:0"`
}

type CartItem struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	AccountID uint `gorm:"index;not null"`
	ProductID uint `gorm:"not null"`
	Quantity  int  `gorm:"not null;default:1"`
}

type Order struct {
	ID            uint `gorm:"primarykey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	AccountID     uint    `gorm:"index;not null"`
	Username      string  `gorm:"not null"`
	TotalAmount   float64 `gorm:"not null"`
	PaymentMethod string  `gorm:"not null;default:'ALIPAY'"`
	Status        string  `gorm:"not null;default:'PENDING'"`
	// Address is the shipping address as submitted, kept verbatim.
	Address datatypes.JSON
	// Lines is the [{productId, quantity}] snapshot used to settle stock.
	Lines datatypes.JSON
	// TomatoCnt is non-zero for credit top-up orders.
	TomatoCnt     int
	UseCoupon     bool
	BeforeAmount  float64
	ReducedAmount float64
}

type CouponTemplate struct {
	ID          uint `gorm:"primarykey"`
	CreatedAt   time.Time
	Title       string `gorm:"not null"`
	Description string
	Img         string
	Type        string  `gorm:"not null;default:'FULL_REDUCTION'"`
	Threshold   float64 `gorm:"not null;default:0"`
	Reduce      float64 `gorm:"not null;default:0"`
	Discount    float64 `gorm:"not null;default:0"`
	InUse       bool    `gorm:"not null;default:true"`
	RestCnt     int     `gorm:"not null;default:0"`
	ExpiryTime  string
}

type Coupon struct {
	ID         uint `gorm:"primarykey"`
	CreatedAt  time.Time
	AccountID  uint `gorm:"index;not null"`
	TemplateID uint `gorm:"index;not null"`
}
