package adapters

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"lepatage-store/internal/features/orders/domain"
	"lepatage-store/internal/features/orders/ports"

	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Fixed-width UTC timestamps keep lexical order equal to time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var legacyTimeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05"}

const orderColumns = `
	id, order_number, email, first_name, last_name, COALESCE(phone, ''),
	shipping_address, billing_address,
	subtotal_minor, shipping_minor, tax_minor, total_minor,
	currency, status, payment_status, payment_method, COALESCE(notes, ''),
	version, created_at, updated_at`

// SQLiteOrderRepository stores orders in the storefront SQLite database.
type SQLiteOrderRepository struct {
	db *sql.DB
}

// NewSQLiteOrderRepository creates a repository over an open database.
func NewSQLiteOrderRepository(db *sql.DB) *SQLiteOrderRepository {
	return &SQLiteOrderRepository{db: db}
}

// Create inserts the order and its items in a single transaction.
func (r *SQLiteOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	shipping, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("sqlite: encode shipping address: %w", err)
	}
	billing, err := json.Marshal(order.BillingAddress)
	if err != nil {
		return fmt.Errorf("sqlite: encode billing address: %w", err)
	}

	amounts, err := minorAmounts(order.Subtotal, order.Shipping, order.Tax, order.Total)
	if err != nil {
		return fmt.Errorf("sqlite: order %s: %w", order.OrderNumber, err)
	}
	unitPrices := make([]int64, len(order.Items))
	for i, item := range order.Items {
		if unitPrices[i], err = domain.ToMinor(item.UnitPrice); err != nil {
			return fmt.Errorf("sqlite: item %d unit price: %w", i, err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if order.Version == 0 {
		order.Version = 1
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO orders (
			order_number, email, first_name, last_name, phone,
			shipping_address, billing_address,
			subtotal_minor, shipping_minor, tax_minor, total_minor,
			currency, status, payment_status, payment_method, notes,
			version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.OrderNumber, order.Email, order.FirstName, order.LastName, nullString(order.Phone),
		string(shipping), string(billing),
		amounts[0], amounts[1], amounts[2], amounts[3],
		string(order.Currency), string(order.Status), string(order.PaymentStatus), string(order.PaymentMethod), nullString(order.Notes),
		order.Version, order.CreatedAt.UTC().Format(timeLayout), order.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateOrderNumber, order.OrderNumber)
		}
		return fmt.Errorf("sqlite: insert order: %w", err)
	}

	orderID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: order id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO order_items (
			order_id, product_id, quantity, unit_price_minor, name, image, selected_color, selected_size
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sqlite: prepare item insert: %w", err)
	}
	defer stmt.Close()

	itemIDs := make([]int64, len(order.Items))
	for i, item := range order.Items {
		res, err := stmt.ExecContext(ctx,
			orderID, item.ProductID, item.Quantity, unitPrices[i], item.Name,
			nullString(item.Image), nullString(item.SelectedColor), nullString(item.SelectedSize),
		)
		if err != nil {
			return fmt.Errorf("sqlite: insert item %d: %w", i, err)
		}
		if itemIDs[i], err = res.LastInsertId(); err != nil {
			return fmt.Errorf("sqlite: item id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}

	order.ID = orderID
	for i := range order.Items {
		order.Items[i].ID = itemIDs[i]
		order.Items[i].OrderID = orderID
	}
	return nil
}

// GetByNumber loads an order and its items.
func (r *SQLiteOrderRepository) GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_number = ?`, orderNumber)

	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, orderNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get order %s: %w", orderNumber, err)
	}

	if order.Items, err = r.items(ctx, order.ID); err != nil {
		return nil, err
	}
	return order, nil
}

// GetByID loads an order without its items.
func (r *SQLiteOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)

	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", domain.ErrOrderNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get order %d: %w", id, err)
	}
	return order, nil
}

// List returns orders newest first.
func (r *SQLiteOrderRepository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Order, error) {
	var (
		where strings.Builder
		args  []interface{}
	)
	if filter.Status != nil {
		where.WriteString(" WHERE status = ?")
		args = append(args, string(*filter.Status))
	}
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders`+where.String()+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus performs a version-checked update of the order state.
func (r *SQLiteOrderRepository) UpdateStatus(ctx context.Context, order *domain.Order, expectedVersion int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET    status = ?, payment_status = ?, updated_at = ?, version = version + 1
		WHERE  id = ? AND version = ?`,
		string(order.Status), string(order.PaymentStatus), order.UpdatedAt.UTC().Format(timeLayout),
		order.ID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("sqlite: update order %d: %w", order.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: update order %d: %w", order.ID, err)
	}
	if affected == 0 {
		var exists int
		err := r.db.QueryRowContext(ctx, `SELECT 1 FROM orders WHERE id = ?`, order.ID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: id %d", domain.ErrOrderNotFound, order.ID)
		}
		if err != nil {
			return fmt.Errorf("sqlite: update order %d: %w", order.ID, err)
		}
		return fmt.Errorf("%w: id %d", domain.ErrConcurrentModification, order.ID)
	}

	order.Version = expectedVersion + 1
	return nil
}

func (r *SQLiteOrderRepository) items(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price_minor, name,
		       COALESCE(image, ''), COALESCE(selected_color, ''), COALESCE(selected_size, '')
		FROM   order_items
		WHERE  order_id = ?
		ORDER  BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list items of order %d: %w", orderID, err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var (
			item      domain.OrderItem
			unitMinor int64
		)
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &unitMinor, &item.Name,
			&item.Image, &item.SelectedColor, &item.SelectedSize); err != nil {
			return nil, fmt.Errorf("sqlite: scan item: %w", err)
		}
		item.UnitPrice = domain.FromMinor(unitMinor)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list items of order %d: %w", orderID, err)
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		o                                 domain.Order
		shipping, billing                 string
		subtotal, shippingFee, tax, total int64
		currency, status, payment, method string
		createdAt, updatedAt              string
	)

	if err := row.Scan(
		&o.ID, &o.OrderNumber, &o.Email, &o.FirstName, &o.LastName, &o.Phone,
		&shipping, &billing,
		&subtotal, &shippingFee, &tax, &total,
		&currency, &status, &payment, &method, &o.Notes,
		&o.Version, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(shipping), &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("decode shipping address of order %d: %w", o.ID, err)
	}
	if err := json.Unmarshal([]byte(billing), &o.BillingAddress); err != nil {
		return nil, fmt.Errorf("decode billing address of order %d: %w", o.ID, err)
	}

	o.Subtotal = domain.FromMinor(subtotal)
	o.Shipping = domain.FromMinor(shippingFee)
	o.Tax = domain.FromMinor(tax)
	o.Total = domain.FromMinor(total)
	o.Currency = domain.Currency(currency)
	o.Status = domain.OrderStatus(status)
	o.PaymentStatus = domain.PaymentStatus(payment)
	o.PaymentMethod = domain.PaymentMethod(method)

	var err error
	if o.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at of order %d: %w", o.ID, err)
	}
	if o.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at of order %d: %w", o.ID, err)
	}
	return &o, nil
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err == nil {
		return t, nil
	}
	for _, layout := range legacyTimeLayouts {
		if legacy, legacyErr := time.Parse(layout, value); legacyErr == nil {
			return legacy.UTC(), nil
		}
	}
	return time.Time{}, err
}

func minorAmounts(amounts ...decimal.Decimal) ([]int64, error) {
	out := make([]int64, len(amounts))
	for i, amount := range amounts {
		minor, err := domain.ToMinor(amount)
		if err != nil {
			return nil, err
		}
		out[i] = minor
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
