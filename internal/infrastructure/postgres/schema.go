package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema DDL mínimo del servicio. Los CHECK de no-negatividad respaldan en BD
// los invariantes que el motor garantiza en código.
const schema = `
CREATE TABLE IF NOT EXISTS inventory_items (
	id UUID PRIMARY KEY,
	product_id UUID NOT NULL,
	sku TEXT NOT NULL,
	quantity_available INT NOT NULL DEFAULT 0 CHECK (quantity_available >= 0),
	quantity_reserved INT NOT NULL DEFAULT 0 CHECK (quantity_reserved >= 0),
	reorder_threshold INT NOT NULL DEFAULT 0,
	reorder_quantity INT NOT NULL DEFAULT 0,
	last_restock_at TIMESTAMPTZ,
	warehouse_code TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS ux_inventory_items_product_id ON inventory_items (product_id);
CREATE UNIQUE INDEX IF NOT EXISTS ux_inventory_items_sku ON inventory_items (sku);

CREATE TABLE IF NOT EXISTS inventory_movements (
	id UUID PRIMARY KEY,
	inventory_item_id UUID NOT NULL REFERENCES inventory_items(id),
	quantity INT NOT NULL,
	type TEXT NOT NULL,
	reference_id TEXT,
	reference_type TEXT NOT NULL DEFAULT '',
	ts TIMESTAMPTZ NOT NULL,
	initiated_by TEXT
);
CREATE INDEX IF NOT EXISTS ix_inventory_movements_item_ts ON inventory_movements (inventory_item_id, ts DESC);
`

// EnsureSchema crea las tablas e índices si no existen.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
