package domain

import "github.com/shopspring/decimal"

// ShipmentPlan is a selectable shipping destination. Plans are owned by the
// pricing API and are never modified here.
type ShipmentPlan struct {
	ID      string          `json:"id"`
	Country string          `json:"country"`
	Price   decimal.Decimal `json:"price"`
	VAT     decimal.Decimal `json:"vat"` // percentage
}

// OrderSummary is the server-computed price breakdown for a cart and
// shipment plan pair.
type OrderSummary struct {
	TotalItems         int             `json:"totalItems"`
	TotalItemsPrice    decimal.Decimal `json:"totalItemsPrice"`
	TotalShipmentPrice decimal.Decimal `json:"totalShipmentPrice"`
	TotalVatPrice      decimal.Decimal `json:"totalVatPrice"`
	TotalPrice         decimal.Decimal `json:"totalPrice"`
}

// IsZero reports whether the summary describes an empty order.
func (s OrderSummary) IsZero() bool {
	return s.TotalItems == 0 &&
		s.TotalItemsPrice.IsZero() &&
		s.TotalShipmentPrice.IsZero() &&
		s.TotalVatPrice.IsZero() &&
		s.TotalPrice.IsZero()
}

// Quote is the pricing API response. Cart is the server's rendition of the
// submitted cart and is what gets displayed once the quote is applied.
type Quote struct {
	Cart      []LineItem   `json:"cart"`
	OrderInfo OrderSummary `json:"orderInfo"`
}

// PriceRequest is the body sent to the pricing API.
type PriceRequest struct {
	Cart         []LineItem `json:"cart"`
	ShipmentPlan string     `json:"shipmentPlan"`
}
