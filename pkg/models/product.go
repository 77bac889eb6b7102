package models

import (
	"strings"
)

// Product is a catalog entry as stored in the products collection.
type Product struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Seller       string   `json:"seller"`
	Brand        string   `json:"brand"`
	Rating       int      `json:"rating"`
	Price        float64  `json:"price"`
	Availability string   `json:"availability"`
	Categories   []string `json:"categories"`
	Images       []string `json:"images"`
	Video        string   `json:"video,omitempty"`
	Description  []string `json:"description"`
}

func (p *Product) OwnedBy(email string) bool {
	return email != "" && p.Seller == email
}

func (p *Product) HasCategory(category string) bool {
	for _, c := range p.Categories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}

// ProductFields is the raw form input for creating or editing a product.
// Empty strings mean "not supplied".
type ProductFields struct {
	Name         string `form:"name"`
	Brand        string `form:"brand"`
	Price        string `form:"price"`
	Rating       string `form:"rating"`
	Availability string `form:"availability"`
	Categories   string `form:"categories"`
	Description  string `form:"description"`
	UserEmail    string `form:"userEmail"`
}

// Media holds the stored paths of uploaded files.
type Media struct {
	Images []string
	Video  string
}

// ProductFilter narrows a catalog listing.
type ProductFilter struct {
	Query      string   `form:"query"`
	Categories []string `form:"category"`
	Brands     []string `form:"brand"`
	Price      string   `form:"price"`
}
