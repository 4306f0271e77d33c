package adapters

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"lepatage-store/internal/core/database"
	"lepatage-store/internal/features/orders/domain"
	"lepatage-store/internal/features/orders/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(context.Background(), filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestOrder(number string, createdAt time.Time) *domain.Order {
	shipping := domain.Address{Country: "Беларусь", City: "Минск", Address: "ул. Ленина 10", PostalCode: "220030"}
	return &domain.Order{
		OrderNumber: number,
		Customer: domain.Customer{
			Email:     "anna@example.com",
			FirstName: "Anna",
			LastName:  "Ivanova",
			Phone:     "+375291234567",
		},
		ShippingAddress: shipping,
		BillingAddress:  shipping,
		Subtotal:        decimal.RequireFromString("160.00"),
		Shipping:        decimal.Zero,
		Tax:             decimal.Zero,
		Total:           decimal.RequireFromString("160.00"),
		Currency:        domain.CurrencyBYN,
		Status:          domain.StatusPending,
		PaymentStatus:   domain.PaymentPending,
		PaymentMethod:   domain.PaymentMethodBePaid,
		Notes:           "Gift wrap",
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
		Items: []domain.OrderItem{
			{ProductID: 7, Quantity: 2, UnitPrice: decimal.RequireFromString("80.00"), Name: "Silver ring", Image: "/assets/ring.jpg", SelectedSize: "17"},
		},
	}
}

func TestSQLiteOrderRepository_CreateAndGet(t *testing.T) {
	repo := NewSQLiteOrderRepository(openTestDB(t))
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 10, 0, 0, 123000000, time.UTC)

	order := newTestOrder("LP-1-AAAAA", created)
	require.NoError(t, repo.Create(ctx, order))

	assert.NotZero(t, order.ID)
	assert.Equal(t, int64(1), order.Version)
	require.Len(t, order.Items, 1)
	assert.NotZero(t, order.Items[0].ID)
	assert.Equal(t, order.ID, order.Items[0].OrderID)

	got, err := repo.GetByNumber(ctx, "LP-1-AAAAA")
	require.NoError(t, err)

	assert.Equal(t, order.ID, got.ID)
	assert.Equal(t, order.Customer, got.Customer)
	assert.Equal(t, order.ShippingAddress, got.ShippingAddress)
	assert.Equal(t, order.BillingAddress, got.BillingAddress)
	assert.Equal(t, "160", got.Subtotal.String())
	assert.Equal(t, "0", got.Shipping.String())
	assert.Equal(t, "160", got.Total.String())
	assert.Equal(t, domain.CurrencyBYN, got.Currency)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, domain.PaymentPending, got.PaymentStatus)
	assert.Equal(t, domain.PaymentMethodBePaid, got.PaymentMethod)
	assert.Equal(t, "Gift wrap", got.Notes)
	assert.True(t, created.Equal(got.CreatedAt))

	require.Len(t, got.Items, 1)
	item := got.Items[0]
	assert.Equal(t, int64(7), item.ProductID)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, "80", item.UnitPrice.String())
	assert.Equal(t, "Silver ring", item.Name)
	assert.Equal(t, "/assets/ring.jpg", item.Image)
	assert.Equal(t, "17", item.SelectedSize)
	assert.Empty(t, item.SelectedColor)

	byID, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "LP-1-AAAAA", byID.OrderNumber)
	assert.Empty(t, byID.Items)
}

func TestSQLiteOrderRepository_NotFound(t *testing.T) {
	repo := NewSQLiteOrderRepository(openTestDB(t))
	ctx := context.Background()

	_, err := repo.GetByNumber(ctx, "LP-0-NOPE0")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = repo.GetByID(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestSQLiteOrderRepository_DuplicateNumber(t *testing.T) {
	repo := NewSQLiteOrderRepository(openTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, newTestOrder("LP-1-DUPE0", now)))

	err := repo.Create(ctx, newTestOrder("LP-1-DUPE0", now))
	assert.ErrorIs(t, err, domain.ErrDuplicateOrderNumber)
}

func TestSQLiteOrderRepository_CreateIsAtomic(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteOrderRepository(db)
	ctx := context.Background()

	_, err := db.Exec(`CREATE TRIGGER reject_items BEFORE INSERT ON order_items BEGIN SELECT RAISE(ABORT, 'items rejected'); END`)
	require.NoError(t, err)

	err = repo.Create(ctx, newTestOrder("LP-1-ATOM0", time.Now().UTC()))
	require.Error(t, err)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&count))
	assert.Zero(t, count)

	_, err = repo.GetByNumber(ctx, "LP-1-ATOM0")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestSQLiteOrderRepository_List(t *testing.T) {
	repo := NewSQLiteOrderRepository(openTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		order := newTestOrder(fmt.Sprintf("LP-%d-LIST0", i), base.Add(time.Duration(i)*time.Minute))
		if i%2 == 1 {
			order.Status = domain.StatusShipped
		}
		require.NoError(t, repo.Create(ctx, order))
	}

	t.Run("NewestFirst", func(t *testing.T) {
		orders, err := repo.List(ctx, ports.ListFilter{Limit: 20})
		require.NoError(t, err)
		require.Len(t, orders, 5)
		assert.Equal(t, "LP-4-LIST0", orders[0].OrderNumber)
		assert.Equal(t, "LP-0-LIST0", orders[4].OrderNumber)
		assert.Empty(t, orders[0].Items)
	})

	t.Run("StatusFilter", func(t *testing.T) {
		shipped := domain.StatusShipped
		orders, err := repo.List(ctx, ports.ListFilter{Status: &shipped, Limit: 20})
		require.NoError(t, err)
		require.Len(t, orders, 2)
		for _, o := range orders {
			assert.Equal(t, domain.StatusShipped, o.Status)
		}
	})

	t.Run("Paging", func(t *testing.T) {
		orders, err := repo.List(ctx, ports.ListFilter{Limit: 2, Offset: 2})
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, "LP-2-LIST0", orders[0].OrderNumber)
		assert.Equal(t, "LP-1-LIST0", orders[1].OrderNumber)
	})

	t.Run("EmptyPage", func(t *testing.T) {
		orders, err := repo.List(ctx, ports.ListFilter{Limit: 20, Offset: 10})
		require.NoError(t, err)
		assert.NotNil(t, orders)
		assert.Empty(t, orders)
	})
}

func TestSQLiteOrderRepository_UpdateStatus(t *testing.T) {
	repo := NewSQLiteOrderRepository(openTestDB(t))
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	order := newTestOrder("LP-1-UPD00", created)
	require.NoError(t, repo.Create(ctx, order))

	t.Run("Success", func(t *testing.T) {
		loaded, err := repo.GetByID(ctx, order.ID)
		require.NoError(t, err)

		updated := created.Add(time.Hour)
		_, err = loaded.ApplyStatusChange(domain.StatusChange{Status: domain.StatusConfirmed}, updated)
		require.NoError(t, err)
		require.NoError(t, repo.UpdateStatus(ctx, loaded, 1))
		assert.Equal(t, int64(2), loaded.Version)

		got, err := repo.GetByNumber(ctx, "LP-1-UPD00")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusConfirmed, got.Status)
		assert.Equal(t, domain.PaymentPending, got.PaymentStatus)
		assert.Equal(t, int64(2), got.Version)
		assert.True(t, updated.Equal(got.UpdatedAt))
		assert.True(t, created.Equal(got.CreatedAt))
		assert.Equal(t, "160", got.Total.String())
	})

	t.Run("StaleVersion", func(t *testing.T) {
		stale, err := repo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		stale.Status = domain.StatusCancelled

		err = repo.UpdateStatus(ctx, stale, 1)
		assert.ErrorIs(t, err, domain.ErrConcurrentModification)

		got, err := repo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusConfirmed, got.Status)
	})

	t.Run("UnknownOrder", func(t *testing.T) {
		ghost := &domain.Order{ID: 9999, Status: domain.StatusShipped, PaymentStatus: domain.PaymentPaid, UpdatedAt: time.Now()}
		err := repo.UpdateStatus(ctx, ghost, 1)
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})
}

func TestSQLiteOrderRepository_RejectsUnstorableAmounts(t *testing.T) {
	db := openTestDB(t)
	repo := NewSQLiteOrderRepository(db)
	ctx := context.Background()

	t.Run("Total", func(t *testing.T) {
		order := newTestOrder("LP-1-HUGE0", time.Now().UTC())
		order.Total = decimal.RequireFromString("10000000000000000000")

		err := repo.Create(ctx, order)
		assert.ErrorIs(t, err, domain.ErrAmountOutOfRange)
	})

	t.Run("UnitPrice", func(t *testing.T) {
		order := newTestOrder("LP-1-HUGE1", time.Now().UTC())
		order.Items[0].UnitPrice = decimal.RequireFromString("92233720368547758.08")

		err := repo.Create(ctx, order)
		assert.ErrorIs(t, err, domain.ErrAmountOutOfRange)
	})

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&count))
	assert.Zero(t, count)
}
