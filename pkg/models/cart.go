package models

// MaxCartQuantity bounds the units of a single cart line. Keep the binding
// tags below in step with it.
const MaxCartQuantity = 999

// CartItem is a snapshot of a product taken when it entered the cart.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

type Cart struct {
	SessionID string     `json:"session_id"`
	Items     []CartItem `json:"items"`
	Subtotal  float64    `json:"subtotal"`
	ItemCount int        `json:"item_count"`
}

type SetCartItemRequest struct {
	ID       int  `json:"id" form:"id" binding:"required"`
	Quantity *int `json:"quantity" form:"quantity" binding:"required,min=0,max=999"`
}

type BuyNowRequest struct {
	ID       int  `json:"id" form:"id" binding:"required"`
	Quantity *int `json:"quantity" form:"quantity" binding:"omitempty,min=1,max=999"`
}
