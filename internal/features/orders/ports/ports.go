package ports

import (
	"context"

	catalog "lepatage-store/internal/features/catalog/domain"
	"lepatage-store/internal/features/orders/domain"
)

// ListFilter narrows ListOrders results.
type ListFilter struct {
	// Status restricts results to one status when non-nil.
	Status *domain.OrderStatus
	Limit  int
	Offset int
}

// OrderRepository persists order aggregates.
// This is a Secondary Port (Driven Port).
type OrderRepository interface {
	// Create stores the order and its items atomically and fills in the assigned ids.
	// It returns domain.ErrDuplicateOrderNumber when the order number is already taken.
	Create(ctx context.Context, order *domain.Order) error

	// GetByNumber loads an order with its items, or domain.ErrOrderNotFound.
	GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)

	// GetByID loads an order without its items, or domain.ErrOrderNotFound.
	GetByID(ctx context.Context, id int64) (*domain.Order, error)

	// List returns orders newest first without their items.
	List(ctx context.Context, filter ListFilter) ([]domain.Order, error)

	// UpdateStatus writes status, payment status and updated_at if the stored
	// version still equals expectedVersion, then bumps order.Version.
	// It returns domain.ErrConcurrentModification otherwise.
	UpdateStatus(ctx context.Context, order *domain.Order, expectedVersion int64) error
}

// CatalogReader resolves the price snapshot of a product.
// This is a Secondary Port (Driven Port).
type CatalogReader interface {
	ResolveProduct(ctx context.Context, productID int64) (catalog.Snapshot, error)
}

// NumberGenerator mints order numbers.
type NumberGenerator interface {
	Next() (string, error)
}

// OrderService is the Primary Port used by the HTTP handler.
type OrderService interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)
	ListOrders(ctx context.Context, input ListOrdersInput) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, input UpdateStatusInput) (*domain.Order, error)
	ValidateAddress(address domain.Address) domain.AddressValidation
}
