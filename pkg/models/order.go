package models

import (
	"time"
)

const OrderStatusInProgress = "IN PROGRESS"

// ShippingFields is the checkout form.
type ShippingFields struct {
	FirstName   string `json:"first_name" form:"first_name"`
	LastName    string `json:"last_name" form:"last_name"`
	CompanyName string `json:"company_name" form:"company_name"`
	Address     string `json:"address" form:"address"`
	Country     string `json:"country" form:"country"`
	State       string `json:"state" form:"state"`
	City        string `json:"city" form:"city"`
	ZipCode     string `json:"zip_code" form:"zip_code"`
	Email       string `json:"email" form:"email"`
	PhoneNumber string `json:"phone_number" form:"phone_number"`
	PixName     string `json:"pix_name" form:"pix_name"`
	OrderNotes  string `json:"order_notes" form:"order_notes"`
}

// Order is immutable once written.
type Order struct {
	ID        int    `json:"id"`
	UserEmail string `json:"userEmail"`
	ShippingFields
	PixReceipt  string     `json:"pix_receipt,omitempty"`
	Items       []CartItem `json:"order_items"`
	Total       float64    `json:"order_total"`
	Date        time.Time  `json:"order_date"`
	Status      string     `json:"status"`
	NumberItems int        `json:"number_items"`
}

// GetItemCount returns the total number of units in the order.
func (o *Order) GetItemCount() int {
	var count int
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}
