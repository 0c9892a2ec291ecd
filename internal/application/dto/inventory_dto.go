package dto

import (
	"time"

	"github.com/jhoicas/inventory-service/internal/domain/entity"
)

// CreateInventoryItemRequest body para POST /api/v1/inventory.
type CreateInventoryItemRequest struct {
	ProductID         string `json:"product_id"`
	SKU               string `json:"sku"`
	QuantityAvailable int    `json:"quantity_available"`
	QuantityReserved  int    `json:"quantity_reserved"`
	ReorderThreshold  int    `json:"reorder_threshold"`
	ReorderQuantity   int    `json:"reorder_quantity"`
	WarehouseCode     string `json:"warehouse_code"`
}

// ToEntity convierte el request en la entidad a insertar.
func (r CreateInventoryItemRequest) ToEntity() *entity.InventoryItem {
	return &entity.InventoryItem{
		ProductID:         r.ProductID,
		SKU:               r.SKU,
		QuantityAvailable: r.QuantityAvailable,
		QuantityReserved:  r.QuantityReserved,
		ReorderThreshold:  r.ReorderThreshold,
		ReorderQuantity:   r.ReorderQuantity,
		WarehouseCode:     r.WarehouseCode,
	}
}

// ReserveStockRequest body para POST /api/v1/inventory/reserve.
type ReserveStockRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	OrderID   string `json:"order_id"`
}

// ReleaseStockRequest body para POST /api/v1/inventory/release.
type ReleaseStockRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	OrderID   string `json:"order_id"`
}

// AdjustStockRequest body para POST /api/v1/inventory/adjust.
// NewQuantity es el valor absoluto objetivo, no un delta.
type AdjustStockRequest struct {
	ProductID   string `json:"product_id"`
	NewQuantity int    `json:"new_quantity"`
	Reason      string `json:"reason"`
}

// InventoryQueryParams filtros de GET /api/v1/inventory.
type InventoryQueryParams struct {
	PageRequest
	SKU          string `query:"sku"`
	MinStock     *int   `query:"min_stock"`
	MaxStock     *int   `query:"max_stock"`
	LowStockOnly bool   `query:"low_stock_only"`
	SortBy       string `query:"sort_by"`
	SortDesc     bool   `query:"sort_desc"`
}

// InventoryMovementDTO proyección de lectura de un movimiento.
type InventoryMovementDTO struct {
	ID            string    `json:"id"`
	Quantity      int       `json:"quantity"`
	Type          string    `json:"type"`
	ReferenceID   string    `json:"reference_id,omitempty"`
	ReferenceType string    `json:"reference_type,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	InitiatedBy   string    `json:"initiated_by,omitempty"`
}

// InventoryItemDTO proyección de lectura del registro, con sus movimientos
// recientes embebidos como copia (sin back-reference viva).
type InventoryItemDTO struct {
	ID                string                 `json:"id"`
	ProductID         string                 `json:"product_id"`
	SKU               string                 `json:"sku"`
	QuantityAvailable int                    `json:"quantity_available"`
	QuantityReserved  int                    `json:"quantity_reserved"`
	ReorderThreshold  int                    `json:"reorder_threshold"`
	ReorderQuantity   int                    `json:"reorder_quantity"`
	LastRestockAt     *time.Time             `json:"last_restock_at,omitempty"`
	WarehouseCode     string                 `json:"warehouse_code"`
	RecentMovements   []InventoryMovementDTO `json:"recent_movements,omitempty"`
}

// FromEntity construye la proyección de un registro.
func FromEntity(item *entity.InventoryItem) InventoryItemDTO {
	d := InventoryItemDTO{
		ID:                item.ID,
		ProductID:         item.ProductID,
		SKU:               item.SKU,
		QuantityAvailable: item.QuantityAvailable,
		QuantityReserved:  item.QuantityReserved,
		ReorderThreshold:  item.ReorderThreshold,
		ReorderQuantity:   item.ReorderQuantity,
		WarehouseCode:     item.WarehouseCode,
	}
	if !item.LastRestockAt.IsZero() {
		t := item.LastRestockAt
		d.LastRestockAt = &t
	}
	return d
}

// FromMovements construye las proyecciones de movimientos.
func FromMovements(movs []*entity.InventoryMovement) []InventoryMovementDTO {
	out := make([]InventoryMovementDTO, 0, len(movs))
	for _, m := range movs {
		out = append(out, InventoryMovementDTO{
			ID:            m.ID,
			Quantity:      m.Quantity,
			Type:          m.Type,
			ReferenceID:   m.ReferenceID,
			ReferenceType: m.ReferenceType,
			Timestamp:     m.Timestamp,
			InitiatedBy:   m.InitiatedBy,
		})
	}
	return out
}
