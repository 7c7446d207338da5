package cart

// Item is one line in the shopping cart.
type Item struct {
	CartItemID  string  `json:"cartItemId"`
	ProductID   string  `json:"productId"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
	Cover       string  `json:"cover,omitempty"`
	Detail      string  `json:"detail,omitempty"`
	Quantity    int     `json:"quantity"`
}

// List is the whole cart: its lines, the distinct item count and the summed
// amount.
type List struct {
	Items       []Item  `json:"items"`
	Total       int     `json:"total"`
	TotalAmount float64 `json:"totalAmount"`
}
