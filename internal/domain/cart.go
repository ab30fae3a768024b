package domain

import "github.com/shopspring/decimal"

// Product is the catalog snapshot a shopper adds to the cart.
type Product struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Slug     string          `json:"slug,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Images   []string        `json:"images,omitempty"`
	Quantity int             `json:"quantity,omitempty"`
}

// LineItem is one product identity in the cart. Display fields are copied
// from the product when it is first added and are not refreshed on repeat adds.
type LineItem struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	Slug       string           `json:"slug,omitempty"`
	Price      decimal.Decimal  `json:"price"`
	Images     []string         `json:"images,omitempty"`
	Quantity   int              `json:"quantity"`
	TotalPrice *decimal.Decimal `json:"totalPrice,omitempty"` // set by the pricing API
}

// NewLineItem snapshots p with the given quantity.
func NewLineItem(p Product, quantity int) LineItem {
	var images []string
	if len(p.Images) > 0 {
		images = append([]string(nil), p.Images...)
	}
	return LineItem{
		ID:       p.ID,
		Title:    p.Title,
		Slug:     p.Slug,
		Price:    p.Price,
		Images:   images,
		Quantity: quantity,
	}
}

// Normalize defaults a missing or non-positive quantity to 1. Carts written
// by older clients carry no quantity field at all.
func (li LineItem) Normalize() LineItem {
	if li.Quantity < 1 {
		li.Quantity = 1
	}
	return li
}

// Clone returns a deep copy of the item.
func (li LineItem) Clone() LineItem {
	if li.Images != nil {
		li.Images = append([]string(nil), li.Images...)
	}
	if li.TotalPrice != nil {
		tp := *li.TotalPrice
		li.TotalPrice = &tp
	}
	return li
}

// CloneItems deep copies a cart. A nil cart stays nil.
func CloneItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}

// TotalQuantity sums item quantities.
func TotalQuantity(items []LineItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}
