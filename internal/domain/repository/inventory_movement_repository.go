package repository

import (
	"context"

	"github.com/jhoicas/inventory-service/internal/domain/entity"
)

// InventoryMovementRepository define el puerto de persistencia del libro de
// movimientos. Solo inserta y lee: los movimientos nunca se modifican.
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	// ListByItem devuelve los movimientos más recientes del registro, ordenados
	// por timestamp descendente.
	ListByItem(ctx context.Context, inventoryItemID string, limit int) ([]*entity.InventoryMovement, error)
}
