package ports

import "lepatage-store/internal/features/orders/domain"

// CreateOrderInput is a checkout request.
type CreateOrderInput struct {
	Customer        CustomerInput   `json:"customer"`
	ShippingAddress AddressInput    `json:"shipping_address"`
	BillingAddress  *AddressInput   `json:"billing_address,omitempty" validate:"omitempty"`
	Currency        string          `json:"currency,omitempty" validate:"omitempty,oneof=BYN EUR USD RUB"`
	PaymentMethod   string          `json:"payment_method,omitempty" validate:"omitempty,oneof=bepaid cash transfer"`
	Items           []LineItemInput `json:"items" validate:"required,min=1,dive"`
	Notes           string          `json:"notes,omitempty" validate:"max=1000"`
}

// CustomerInput carries the checkout contact details.
type CustomerInput struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
}

// AddressInput is a destination as entered by the customer.
type AddressInput struct {
	Country    string `json:"country" validate:"required"`
	City       string `json:"city" validate:"required"`
	Address    string `json:"address" validate:"required"`
	PostalCode string `json:"postal_code,omitempty"`
	Region     string `json:"region,omitempty"`
}

// ToDomain converts the input into a domain.Address.
func (a AddressInput) ToDomain() domain.Address {
	return domain.Address{
		Country:    a.Country,
		City:       a.City,
		Address:    a.Address,
		PostalCode: a.PostalCode,
		Region:     a.Region,
	}
}

// LineItemInput is one requested product line.
type LineItemInput struct {
	ProductID     int64  `json:"product_id" validate:"required,min=1"`
	Quantity      int    `json:"quantity" validate:"required,min=1,max=1000"`
	SelectedColor string `json:"selected_color,omitempty"`
	SelectedSize  string `json:"selected_size,omitempty"`
}

// ListOrdersInput pages through orders.
type ListOrdersInput struct {
	// Status is an optional filter; empty means all.
	Status string `json:"status,omitempty"`
	// Limit defaults to 20 when zero.
	Limit  int `json:"limit" validate:"min=0,max=100"`
	Offset int `json:"offset" validate:"min=0"`
}

// UpdateStatusInput is an admin status change.
type UpdateStatusInput struct {
	OrderID       int64   `json:"-" validate:"min=1"`
	Status        string  `json:"status" validate:"required"`
	PaymentStatus *string `json:"payment_status,omitempty"`
	// Force skips transition rules.
	Force bool `json:"force,omitempty"`
}
