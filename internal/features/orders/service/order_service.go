package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"lepatage-store/internal/core/events"
	"lepatage-store/internal/core/logger"
	"lepatage-store/internal/core/metrics"
	catalog "lepatage-store/internal/features/catalog/domain"
	"lepatage-store/internal/features/orders/domain"
	"lepatage-store/internal/features/orders/ports"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	// EventOrderCreated is published after an order is committed.
	EventOrderCreated = "order.created"
	// EventOrderStatusChanged is published after a status update is committed.
	EventOrderStatusChanged = "order.status_changed"

	// DefaultListLimit applies when ListOrdersInput.Limit is zero.
	DefaultListLimit = 20

	maxCreateAttempts = 3
)

// OrderService builds, prices, persists and updates orders.
type OrderService struct {
	repo      ports.OrderRepository
	catalog   ports.CatalogReader
	numbers   ports.NumberGenerator
	publisher events.Publisher
	metrics   *metrics.OrderMetrics
	validate  *validator.Validate
	now       func() time.Time
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(
	repo ports.OrderRepository,
	catalogReader ports.CatalogReader,
	numbers ports.NumberGenerator,
	publisher events.Publisher,
	m *metrics.OrderMetrics,
) *OrderService {
	return &OrderService{
		repo:      repo,
		catalog:   catalogReader,
		numbers:   numbers,
		publisher: publisher,
		metrics:   m,
		validate:  newValidator(),
		now:       time.Now,
	}
}

// CreateOrder validates the checkout, snapshots prices from the catalog,
// computes totals and stores the order with a fresh order number.
func (s *OrderService) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	if err := s.checkCreateInput(input); err != nil {
		s.metrics.OrderFailures.WithLabelValues("validation").Inc()
		return nil, err
	}

	currency := domain.CurrencyBYN
	if input.Currency != "" {
		currency = domain.Currency(input.Currency)
	}
	method := domain.PaymentMethodBePaid
	if input.PaymentMethod != "" {
		method = domain.PaymentMethod(input.PaymentMethod)
	}

	items := make([]domain.OrderItem, 0, len(input.Items))
	lines := make([]domain.PricedLine, 0, len(input.Items))
	for _, in := range input.Items {
		snap, err := s.catalog.ResolveProduct(ctx, in.ProductID)
		if err != nil {
			if errors.Is(err, catalog.ErrProductNotFound) {
				s.metrics.OrderFailures.WithLabelValues("product_not_found").Inc()
			} else {
				s.metrics.OrderFailures.WithLabelValues("catalog").Inc()
			}
			return nil, fmt.Errorf("service: resolve product %d: %w", in.ProductID, err)
		}

		items = append(items, domain.OrderItem{
			ProductID:     snap.ProductID,
			Quantity:      in.Quantity,
			UnitPrice:     snap.UnitPrice,
			Name:          snap.Name,
			Image:         snap.Image,
			SelectedColor: in.SelectedColor,
			SelectedSize:  in.SelectedSize,
		})
		lines = append(lines, domain.PricedLine{Quantity: in.Quantity, UnitPrice: snap.UnitPrice})
	}

	totals := domain.CalculateTotals(lines, currency)

	shipping := input.ShippingAddress.ToDomain()
	billing := shipping
	if input.BillingAddress != nil {
		billing = input.BillingAddress.ToDomain()
	}

	now := s.now().UTC()
	order := &domain.Order{
		Customer: domain.Customer{
			Email:     strings.TrimSpace(input.Customer.Email),
			FirstName: input.Customer.FirstName,
			LastName:  input.Customer.LastName,
			Phone:     input.Customer.Phone,
		},
		ShippingAddress: shipping,
		BillingAddress:  billing,
		Subtotal:        totals.Subtotal,
		Shipping:        totals.Shipping,
		Tax:             totals.Tax,
		Total:           totals.Total,
		Currency:        currency,
		Status:          domain.StatusPending,
		PaymentStatus:   domain.PaymentPending,
		PaymentMethod:   method,
		Notes:           input.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
		Items:           items,
	}

	if err := order.CheckAmounts(); err != nil {
		s.metrics.OrderFailures.WithLabelValues("validation").Inc()
		return nil, err
	}

	if err := s.persistNew(ctx, order); err != nil {
		s.metrics.OrderFailures.WithLabelValues("storage").Inc()
		return nil, err
	}

	logger.Get().Info("Order created",
		zap.String("order_number", order.OrderNumber),
		zap.Int64("order_id", order.ID),
		zap.String("total", order.Total.StringFixed(2)),
		zap.String("currency", string(order.Currency)),
	)

	s.metrics.OrdersCreated.WithLabelValues(string(order.Currency), string(order.PaymentMethod)).Inc()
	s.metrics.OrderTotal.WithLabelValues(string(order.Currency)).Observe(order.Total.InexactFloat64())
	s.publish(ctx, events.Event{
		Type:       EventOrderCreated,
		Key:        order.OrderNumber,
		OccurredAt: now,
		Payload:    order,
	})

	return order, nil
}

func (s *OrderService) checkCreateInput(input ports.CreateOrderInput) error {
	if err := validateInput(s.validate, input); err != nil {
		return err
	}

	var problems []string
	for _, msg := range domain.ValidateAddress(input.ShippingAddress.ToDomain()).Errors {
		problems = append(problems, "shipping_address: "+msg)
	}
	if input.BillingAddress != nil {
		for _, msg := range domain.ValidateAddress(input.BillingAddress.ToDomain()).Errors {
			problems = append(problems, "billing_address: "+msg)
		}
	}
	if len(problems) > 0 {
		return domain.NewValidationError(problems...)
	}
	return nil
}

// persistNew assigns an order number and stores the order, drawing a new
// number when storage reports a collision.
func (s *OrderService) persistNew(ctx context.Context, order *domain.Order) error {
	var err error
	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		var number string
		number, err = s.numbers.Next()
		if err != nil {
			return fmt.Errorf("service: %w", err)
		}
		order.OrderNumber = number

		err = s.repo.Create(ctx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDuplicateOrderNumber) {
			return fmt.Errorf("service: failed to save order: %w", err)
		}

		logger.Get().Warn("Order number collision, retrying",
			zap.String("order_number", number),
			zap.Int("attempt", attempt),
		)
	}
	return fmt.Errorf("service: no unique order number after %d attempts: %w", maxCreateAttempts, err)
}

// GetOrderByNumber returns an order with its items.
func (s *OrderService) GetOrderByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, domain.NewValidationError("order_number: is required")
	}

	order, err := s.repo.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get order: %w", err)
	}
	return order, nil
}

// ListOrders returns a page of orders, newest first, without items.
func (s *OrderService) ListOrders(ctx context.Context, input ports.ListOrdersInput) ([]domain.Order, error) {
	if err := validateInput(s.validate, input); err != nil {
		return nil, err
	}

	filter := ports.ListFilter{Limit: input.Limit, Offset: input.Offset}
	if filter.Limit == 0 {
		filter.Limit = DefaultListLimit
	}
	if input.Status != "" {
		status := domain.OrderStatus(input.Status)
		if !status.Valid() {
			return nil, domain.NewValidationError(fmt.Sprintf("status: unknown status %q", input.Status))
		}
		filter.Status = &status
	}

	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateOrderStatus applies an admin status change under the transition rules
// unless Force is set. The stored order is left untouched on any error.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, input ports.UpdateStatusInput) (*domain.Order, error) {
	if err := validateInput(s.validate, input); err != nil {
		return nil, err
	}

	order, err := s.repo.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load order: %w", err)
	}

	change := domain.StatusChange{
		Status: domain.OrderStatus(input.Status),
		Force:  input.Force,
	}
	if input.PaymentStatus != nil {
		ps := domain.PaymentStatus(*input.PaymentStatus)
		change.PaymentStatus = &ps
	}

	expectedVersion := order.Version
	now := s.now().UTC()

	applied, err := order.ApplyStatusChange(change, now)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, order, expectedVersion); err != nil {
		return nil, fmt.Errorf("service: failed to update order: %w", err)
	}

	forced := strconv.FormatBool(input.Force)
	for _, tr := range applied {
		s.metrics.StatusTransitions.WithLabelValues(tr.Field, tr.To, forced).Inc()
	}

	logger.Get().Info("Order status updated",
		zap.String("order_number", order.OrderNumber),
		zap.Int64("order_id", order.ID),
		zap.String("status", string(order.Status)),
		zap.String("payment_status", string(order.PaymentStatus)),
		zap.Bool("forced", input.Force),
	)

	if len(applied) > 0 {
		s.publish(ctx, events.Event{
			Type:       EventOrderStatusChanged,
			Key:        order.OrderNumber,
			OccurredAt: now,
			Payload: StatusChangedPayload{
				OrderID:       order.ID,
				OrderNumber:   order.OrderNumber,
				Status:        order.Status,
				PaymentStatus: order.PaymentStatus,
				Transitions:   applied,
				Forced:        input.Force,
			},
		})
	}

	return order, nil
}

// StatusChangedPayload is the body of an order.status_changed event.
type StatusChangedPayload struct {
	OrderID       int64                `json:"order_id"`
	OrderNumber   string               `json:"order_number"`
	Status        domain.OrderStatus   `json:"status"`
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
	Transitions   []domain.Transition  `json:"transitions"`
	Forced        bool                 `json:"forced"`
}

// ValidateAddress runs the delivery address policy. It never fails.
func (s *OrderService) ValidateAddress(address domain.Address) domain.AddressValidation {
	return domain.ValidateAddress(address)
}

// publish delivers an event after commit. Failures are logged only.
func (s *OrderService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Get().Warn("Failed to publish order event",
			zap.String("event_type", event.Type),
			zap.String("order_number", event.Key),
			zap.Error(err),
		)
	}
}
