package handler

import (
	"errors"
	"net/http"
	"strconv"

	"lepatage-store/internal/core/logger"
	catalog "lepatage-store/internal/features/catalog/domain"
	"lepatage-store/internal/features/orders/domain"
	"lepatage-store/internal/features/orders/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// OrderHandler handles HTTP requests related to orders.
type OrderHandler struct {
	// service is the order engine.
	service ports.OrderService
}

// NewOrderHandler creates a new instance of OrderHandler.
func NewOrderHandler(s ports.OrderService) *OrderHandler {
	return &OrderHandler{
		service: s,
	}
}

// Register mounts the public routes on r and the admin routes on admin.
func (h *OrderHandler) Register(r fiber.Router, admin fiber.Router) {
	r.Post("/orders", h.CreateOrder)
	r.Get("/orders/:number", h.GetOrder)
	r.Post("/addresses/validate", h.ValidateAddress)

	admin.Get("/orders", h.ListOrders)
	admin.Patch("/orders/:id/status", h.UpdateOrderStatus)
}

// CreateOrder handles POST /orders.
// @Summary Place an order
// @Description Validates the checkout, snapshots catalog prices, computes totals and stores the order.
// @Tags Orders
// @Accept json
// @Produce json
// @Param order body ports.CreateOrderInput true "Checkout details"
// @Success 201 {object} domain.Order
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /orders [post]
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var input ports.CreateOrderInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid request body")
	}

	order, err := h.service.CreateOrder(c.Context(), input)
	if err != nil {
		return writeError(c, "Failed to create order", err)
	}

	return c.Status(http.StatusCreated).JSON(order)
}

// GetOrder handles GET /orders/:number.
// @Summary Get order by number
// @Description Fetch an order with its items using the public order number.
// @Tags Orders
// @Produce json
// @Param number path string true "Order number, e.g. LP-1767225600123-AB12C"
// @Success 200 {object} domain.Order
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /orders/{number} [get]
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	number := c.Params("number")

	order, err := h.service.GetOrderByNumber(c.Context(), number)
	if err != nil {
		return writeError(c, "Failed to fetch order", err, zap.String("order_number", number))
	}

	return c.Status(http.StatusOK).JSON(order)
}

// ValidateAddress handles POST /addresses/validate.
// @Summary Check a delivery address
// @Description Advisory check of country, city and street against the delivery policy.
// @Tags Addresses
// @Accept json
// @Produce json
// @Param address body ports.AddressInput true "Address"
// @Success 200 {object} domain.AddressValidation
// @Failure 400 {object} ErrorResponse
// @Router /addresses/validate [post]
func (h *OrderHandler) ValidateAddress(c *fiber.Ctx) error {
	var input ports.AddressInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid request body")
	}

	return c.Status(http.StatusOK).JSON(h.service.ValidateAddress(input.ToDomain()))
}

// ListOrders handles GET /admin/orders.
// @Summary List orders
// @Description Newest first, without items. Requires an admin token.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param limit query int false "Page size (1-100, default 20)"
// @Param offset query int false "Rows to skip"
// @Success 200 {array} domain.Order
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/orders [get]
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	limit, err := intQuery(c, "limit")
	if err != nil {
		return badRequest(c, "limit must be an integer")
	}
	offset, err := intQuery(c, "offset")
	if err != nil {
		return badRequest(c, "offset must be an integer")
	}

	orders, err := h.service.ListOrders(c.Context(), ports.ListOrdersInput{
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return writeError(c, "Failed to list orders", err)
	}

	return c.Status(http.StatusOK).JSON(orders)
}

// UpdateOrderStatus handles PATCH /admin/orders/:id/status.
// @Summary Change order status
// @Description Applies the status state machine; "force" overrides the transition rules. Requires an admin token.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Order ID"
// @Param change body ports.UpdateStatusInput true "Requested state"
// @Success 200 {object} domain.Order
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/orders/{id}/status [patch]
func (h *OrderHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id < 1 {
		return badRequest(c, "Order ID must be a positive integer")
	}

	var input ports.UpdateStatusInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "Invalid request body")
	}
	input.OrderID = id

	order, err := h.service.UpdateOrderStatus(c.Context(), input)
	if err != nil {
		return writeError(c, "Failed to update order status", err, zap.Int64("order_id", id))
	}

	return c.Status(http.StatusOK).JSON(order)
}

func intQuery(c *fiber.Ctx, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func rayID(c *fiber.Ctx) string {
	id, ok := c.Locals("requestid").(string)
	if !ok {
		return "unknown"
	}
	return id
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
		Message: msg,
		RayID:   rayID(c),
	})
}

// writeError maps service errors to HTTP responses.
func writeError(c *fiber.Ctx, logMsg string, err error, fields ...zap.Field) error {
	id := rayID(c)
	resp := ErrorResponse{RayID: id}
	status := http.StatusInternalServerError

	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		status = http.StatusBadRequest
		resp.Message = "Validation failed"
		resp.Details = vErr.Problems
	case errors.Is(err, catalog.ErrProductNotFound):
		status = http.StatusUnprocessableEntity
		resp.Message = "Product not found"
	case errors.Is(err, domain.ErrOrderNotFound):
		status = http.StatusNotFound
		resp.Message = "Order not found"
	case errors.Is(err, domain.ErrInvalidTransition):
		status = http.StatusConflict
		resp.Message = err.Error()
	case errors.Is(err, domain.ErrConcurrentModification):
		status = http.StatusConflict
		resp.Message = "Order was modified concurrently, reload and retry"
	default:
		resp.Message = "Internal Server Error"
	}

	log := logger.WithRayID(id).With(fields...)
	if status == http.StatusInternalServerError {
		log.Error(logMsg, zap.Error(err))
	} else {
		log.Info(logMsg, zap.Int("status", status), zap.Error(err))
	}

	return c.Status(status).JSON(resp)
}

// ErrorResponse represents the structure of an error response.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for debugging.
	RayID string `json:"ray_id"`
	// Details lists individual validation problems.
	Details []string `json:"details,omitempty"`
}
