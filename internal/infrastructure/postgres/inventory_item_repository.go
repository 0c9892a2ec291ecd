package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventory-service/internal/domain"
	"github.com/jhoicas/inventory-service/internal/domain/entity"
	"github.com/jhoicas/inventory-service/internal/domain/repository"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)

const itemColumns = `id, product_id, sku, quantity_available, quantity_reserved,
		reorder_threshold, reorder_quantity, last_restock_at, warehouse_code, created_at, updated_at`

// InventoryItemRepo implementación de InventoryItemRepository sobre PostgreSQL
// (usable con pool o tx).
type InventoryItemRepo struct {
	q Querier
}

// NewInventoryItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryItemRepository(q Querier) *InventoryItemRepo {
	return &InventoryItemRepo{q: q}
}

func scanItem(row pgx.Row) (*entity.InventoryItem, error) {
	var it entity.InventoryItem
	var lastRestock *time.Time
	err := row.Scan(
		&it.ID, &it.ProductID, &it.SKU, &it.QuantityAvailable, &it.QuantityReserved,
		&it.ReorderThreshold, &it.ReorderQuantity, &lastRestock, &it.WarehouseCode,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastRestock != nil {
		it.LastRestockAt = *lastRestock
	}
	return &it, nil
}

// GetByProductID obtiene el registro por clave de negocio. (nil, nil) si no existe.
func (r *InventoryItemRepo) GetByProductID(ctx context.Context, productID string) (*entity.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE product_id = $1`
	it, err := scanItem(r.q.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	return it, nil
}

// GetByProductIDForUpdate obtiene el registro y bloquea la fila (SELECT FOR UPDATE).
// Serializa los ciclos read-modify-write concurrentes sobre el mismo producto.
func (r *InventoryItemRepo) GetByProductIDForUpdate(ctx context.Context, productID string) (*entity.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items WHERE product_id = $1 FOR UPDATE`
	it, err := scanItem(r.q.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory item for update: %w", err)
	}
	return it, nil
}

// Insert persiste un registro nuevo. Devuelve domain.ErrDuplicate si
// product_id o sku chocan con los índices únicos.
func (r *InventoryItemRepo) Insert(ctx context.Context, item *entity.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (id, product_id, sku, quantity_available, quantity_reserved,
			reorder_threshold, reorder_quantity, last_restock_at, warehouse_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	lastRestock := (*time.Time)(nil)
	if !item.LastRestockAt.IsZero() {
		lastRestock = &item.LastRestockAt
	}
	_, err := r.q.Exec(ctx, query,
		item.ID, item.ProductID, item.SKU, item.QuantityAvailable, item.QuantityReserved,
		item.ReorderThreshold, item.ReorderQuantity, lastRestock, item.WarehouseCode,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert inventory item: %w", err)
	}
	return nil
}

// UpdateQuantities escribe cantidades y marcas de tiempo del registro ya bloqueado.
func (r *InventoryItemRepo) UpdateQuantities(ctx context.Context, item *entity.InventoryItem) error {
	query := `
		UPDATE inventory_items
		SET quantity_available = $2, quantity_reserved = $3, last_restock_at = $4, updated_at = $5
		WHERE id = $1`
	lastRestock := (*time.Time)(nil)
	if !item.LastRestockAt.IsZero() {
		lastRestock = &item.LastRestockAt
	}
	tag, err := r.q.Exec(ctx, query,
		item.ID, item.QuantityAvailable, item.QuantityReserved, lastRestock, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update inventory item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista registros con filtros y paginación, devolviendo también el total.
func (r *InventoryItemRepo) List(ctx context.Context, filter repository.InventoryItemFilter) ([]*entity.InventoryItem, int, error) {
	var conds []string
	var args []any
	pos := 1

	if filter.SKU != "" {
		conds = append(conds, fmt.Sprintf("sku = $%d", pos))
		args = append(args, filter.SKU)
		pos++
	}
	if filter.MinStock != nil {
		conds = append(conds, fmt.Sprintf("quantity_available >= $%d", pos))
		args = append(args, *filter.MinStock)
		pos++
	}
	if filter.MaxStock != nil {
		conds = append(conds, fmt.Sprintf("quantity_available <= $%d", pos))
		args = append(args, *filter.MaxStock)
		pos++
	}
	if filter.LowStockOnly {
		conds = append(conds, "quantity_available <= reorder_threshold")
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.q.QueryRow(ctx, "SELECT count(*) FROM inventory_items"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count inventory items: %w", err)
	}

	// Columnas de orden en whitelist: nunca interpolar entrada del cliente.
	orderCol := "sku"
	if filter.SortBy == "quantity_available" {
		orderCol = "quantity_available"
	}
	dir := "ASC"
	if filter.SortDesc {
		dir = "DESC"
	}
	query := fmt.Sprintf("SELECT %s FROM inventory_items%s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		itemColumns, where, orderCol, dir, pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list inventory items: %w", err)
	}
	defer rows.Close()

	var list []*entity.InventoryItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan inventory item: %w", err)
		}
		list = append(list, it)
	}
	return list, total, rows.Err()
}
