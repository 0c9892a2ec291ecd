package repository

import (
	"context"

	"github.com/jhoicas/inventory-service/internal/domain/entity"
)

// InventoryItemFilter filtros para el listado paginado de inventario.
type InventoryItemFilter struct {
	SKU          string
	MinStock     *int
	MaxStock     *int
	LowStockOnly bool
	SortBy       string // "sku" (default) o "quantity_available"
	SortDesc     bool
	Limit        int
	Offset       int
}

// InventoryItemRepository define el puerto de persistencia del registro
// autoritativo de stock. Las lecturas devuelven (nil, nil) si no existe.
type InventoryItemRepository interface {
	GetByProductID(ctx context.Context, productID string) (*entity.InventoryItem, error)
	// GetByProductIDForUpdate bloquea la fila (SELECT FOR UPDATE); usar solo dentro de una transacción.
	GetByProductIDForUpdate(ctx context.Context, productID string) (*entity.InventoryItem, error)
	// Insert falla con domain.ErrDuplicate si product_id o sku ya existen.
	Insert(ctx context.Context, item *entity.InventoryItem) error
	UpdateQuantities(ctx context.Context, item *entity.InventoryItem) error
	List(ctx context.Context, filter InventoryItemFilter) ([]*entity.InventoryItem, int, error)
}
