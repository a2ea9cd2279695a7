package models

import "time"

// ShippingAddress is the delivery address captured at checkout.
type ShippingAddress struct {
	FullName string `json:"fullName"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zipCode"`
	Country  string `json:"country"`
	Phone    string `json:"phone,omitempty"`
}

// CheckoutItem freezes the price a line was sold at.
type CheckoutItem struct {
	ProductID   string  `json:"product_id"`
	Quantity    int     `json:"quantity"`
	PriceAtTime float64 `json:"price_at_time"`
}

// CheckoutEvent is published for the order service to turn into an order.
type CheckoutEvent struct {
	Event           string          `json:"event"` // "checkout.requested"
	CheckoutID      string          `json:"checkout_id"`
	UserID          string          `json:"user_id"`
	Items           []CheckoutItem  `json:"items"`
	TotalAmount     float64         `json:"total_amount"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	Notes           string          `json:"notes,omitempty"`
	Status          string          `json:"status"`
	Timestamp       time.Time       `json:"timestamp"`
}
