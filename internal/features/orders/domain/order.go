package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is the label attached to order amounts. No conversion is performed.
type Currency string

const (
	CurrencyBYN Currency = "BYN"
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
	CurrencyRUB Currency = "RUB"
)

// Valid reports whether c is a supported currency.
func (c Currency) Valid() bool {
	switch c {
	case CurrencyBYN, CurrencyEUR, CurrencyUSD, CurrencyRUB:
		return true
	}
	return false
}

// PaymentMethod is how the customer intends to pay.
type PaymentMethod string

const (
	// PaymentMethodBePaid is online card payment through bePaid.
	PaymentMethodBePaid   PaymentMethod = "bepaid"
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodTransfer PaymentMethod = "transfer"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodBePaid, PaymentMethodCash, PaymentMethodTransfer:
		return true
	}
	return false
}

// Address is a shipping or billing destination.
type Address struct {
	Country    string `json:"country"`
	City       string `json:"city"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code,omitempty"`
	Region     string `json:"region,omitempty"`
}

// Customer holds the contact details captured at checkout.
type Customer struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// Order is the aggregate root persisted together with its items.
type Order struct {
	// ID is the storage identifier.
	ID int64 `json:"id"`
	// OrderNumber is the human-readable identifier, assigned once at creation.
	OrderNumber string `json:"order_number"`
	Customer
	ShippingAddress Address `json:"shipping_address"`
	// BillingAddress equals ShippingAddress when the customer did not supply one.
	BillingAddress Address         `json:"billing_address"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Shipping       decimal.Decimal `json:"shipping"`
	Tax            decimal.Decimal `json:"tax"`
	// Total is fixed at creation and never recomputed.
	Total         decimal.Decimal `json:"total"`
	Currency      Currency        `json:"currency"`
	Status        OrderStatus     `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Notes         string          `json:"notes,omitempty"`
	// Version increments on every update and guards concurrent writers.
	Version   int64       `json:"version"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	Items     []OrderItem `json:"items,omitempty"`
}

// OrderItem is an immutable line of an order carrying the price snapshot.
type OrderItem struct {
	ID      int64 `json:"id"`
	OrderID int64 `json:"order_id"`
	// ProductID is a soft reference; the product may change or be deleted later.
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	// UnitPrice is the effective price charged at order time.
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Name          string          `json:"name"`
	Image         string          `json:"image,omitempty"`
	SelectedColor string          `json:"selected_color,omitempty"`
	SelectedSize  string          `json:"selected_size,omitempty"`
}

// LineTotal is UnitPrice times Quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
