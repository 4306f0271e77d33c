// Package database opens the storefront SQLite database and applies its schema.
//
// The catalog tables are owned by the catalog subsystem; they are created here
// only so that a fresh database file is usable by the order engine.
package database

import (
	"context"
	"database/sql"
	"fmt"

	// Pure-Go SQLite driver, registered as "sqlite".
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
    id                INTEGER PRIMARY KEY AUTOINCREMENT,
    name              TEXT    NOT NULL,
    slug              TEXT    NOT NULL UNIQUE,
    description       TEXT,
    short_description TEXT,
    price             REAL    NOT NULL,
    sale_price        REAL,
    category_id       INTEGER,
    images            TEXT,
    colors            TEXT,
    sizes             TEXT,
    in_stock          INTEGER DEFAULT 1,
    featured          INTEGER DEFAULT 0,
    is_new            INTEGER DEFAULT 0,
    on_sale           INTEGER DEFAULT 0,
    tags              TEXT,
    created_at        TEXT    DEFAULT CURRENT_TIMESTAMP,
    updated_at        TEXT    DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS orders (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    order_number     TEXT    NOT NULL UNIQUE,
    user_id          INTEGER,
    email            TEXT    NOT NULL,
    first_name       TEXT    NOT NULL,
    last_name        TEXT    NOT NULL,
    phone            TEXT,
    shipping_address TEXT    NOT NULL,
    billing_address  TEXT    NOT NULL,

    -- Monetary amounts in minor units (kopecks, cents).
    subtotal_minor   INTEGER NOT NULL,
    shipping_minor   INTEGER NOT NULL DEFAULT 0,
    tax_minor        INTEGER NOT NULL DEFAULT 0,
    total_minor      INTEGER NOT NULL,

    currency         TEXT    NOT NULL DEFAULT 'BYN',
    status           TEXT    NOT NULL DEFAULT 'pending',
    payment_status   TEXT    NOT NULL DEFAULT 'pending',
    payment_method   TEXT    NOT NULL,
    payment_id       TEXT,
    payment_data     TEXT,
    notes            TEXT,
    version          INTEGER NOT NULL DEFAULT 1,
    created_at       TEXT    NOT NULL,
    updated_at       TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at);
CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at);

CREATE TABLE IF NOT EXISTS order_items (
    id                INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id          INTEGER NOT NULL REFERENCES orders(id),
    -- Soft reference: the product may change or disappear later.
    product_id        INTEGER NOT NULL,
    quantity          INTEGER NOT NULL,
    unit_price_minor  INTEGER NOT NULL,
    name              TEXT    NOT NULL,
    image             TEXT,
    selected_color    TEXT,
    selected_size     TEXT
);

CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
`

// Open opens (or creates) the SQLite database at path and applies the schema.
//
//	db, err := database.Open(ctx, "./data/lepatage.db")
func Open(ctx context.Context, path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// A single connection serializes writers; SQLite allows only one at a time.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping %q: %w", path, err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return db, nil
}
