package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/inventory-service/internal/domain/entity"
	"github.com/jhoicas/inventory-service/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
// Solo inserta y lee: la tabla es un libro append-only.
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create persiste un movimiento de inventario.
func (r *InventoryMovementRepo) Create(ctx context.Context, movement *entity.InventoryMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO inventory_movements (id, inventory_item_id, quantity, type, reference_id, reference_type, ts, initiated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	referenceID := (*string)(nil)
	if movement.ReferenceID != "" {
		referenceID = &movement.ReferenceID
	}
	initiatedBy := (*string)(nil)
	if movement.InitiatedBy != "" {
		initiatedBy = &movement.InitiatedBy
	}
	_, err := r.q.Exec(ctx, query,
		movement.ID, movement.InventoryItemID, movement.Quantity, movement.Type,
		referenceID, movement.ReferenceType, movement.Timestamp, initiatedBy,
	)
	if err != nil {
		return fmt.Errorf("create inventory movement: %w", err)
	}
	return nil
}

// ListByItem lista los movimientos más recientes de un registro, del más nuevo al más viejo.
func (r *InventoryMovementRepo) ListByItem(ctx context.Context, inventoryItemID string, limit int) ([]*entity.InventoryMovement, error) {
	query := `
		SELECT id, inventory_item_id, quantity, type, reference_id, reference_type, ts, initiated_by
		FROM inventory_movements WHERE inventory_item_id = $1
		ORDER BY ts DESC LIMIT $2`
	rows, err := r.q.Query(ctx, query, inventoryItemID, limit)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.InventoryMovement
	for rows.Next() {
		var m entity.InventoryMovement
		var referenceID, initiatedBy *string
		if err := rows.Scan(&m.ID, &m.InventoryItemID, &m.Quantity, &m.Type,
			&referenceID, &m.ReferenceType, &m.Timestamp, &initiatedBy); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		if referenceID != nil {
			m.ReferenceID = *referenceID
		}
		if initiatedBy != nil {
			m.InitiatedBy = *initiatedBy
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
