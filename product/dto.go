package product

// Specification is one attribute/value pair attached to a product.
type Specification struct {
	ID        string `json:"id,omitempty"`
	Item      string `json:"item"`
	Value     string `json:"value"`
	ProductID string `json:"productId,omitempty"`
}

// Product is a listed item in the mall catalogue.
type Product struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Price          float64         `json:"price"`
	Rate           float64         `json:"rate"`
	Description    string          `json:"description,omitempty"`
	Cover          string          `json:"cover,omitempty"`
	Detail         string          `json:"detail,omitempty"`
	Specifications []Specification `json:"specifications,omitempty"`
}

// Stockpile is the inventory record for one product.
type Stockpile struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Amount    int    `json:"amount"`
	Frozen    int    `json:"frozen"`
}

// CreateInfo is the product-creation request body.
type CreateInfo struct {
	Title          string          `json:"title" validate:"required"`
	Price          float64         `json:"price" validate:"gt=0"`
	Rate           float64         `json:"rate"`
	Description    string          `json:"description,omitempty"`
	Cover          string          `json:"cover,omitempty"`
	Detail         string          `json:"detail,omitempty"`
	Specifications []Specification `json:"specifications,omitempty"`
}

// UpdateInfo is the product-update request body; ID selects the product.
type UpdateInfo struct {
	ID             string          `json:"id" validate:"required"`
	Title          string          `json:"title,omitempty"`
	Price          float64         `json:"price,omitempty"`
	Rate           float64         `json:"rate,omitempty"`
	Description    string          `json:"description,omitempty"`
	Cover          string          `json:"cover,omitempty"`
	Detail         string          `json:"detail,omitempty"`
	Specifications []Specification `json:"specifications,omitempty"`
}
