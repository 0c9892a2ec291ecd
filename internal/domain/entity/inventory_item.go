package entity

import "time"

// InventoryItem representa el registro autoritativo de stock de un producto.
// Se crea una única vez y solo lo muta el motor de inventario; nunca se borra.
type InventoryItem struct {
	ID                string
	ProductID         string // clave de negocio única
	SKU               string // clave de negocio única
	QuantityAvailable int    // nunca negativo
	QuantityReserved  int    // nunca negativo
	ReorderThreshold  int
	ReorderQuantity   int
	LastRestockAt     time.Time
	WarehouseCode     string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsLowStock indica si el disponible está en o bajo el punto de reorden.
func (i *InventoryItem) IsLowStock() bool {
	return i.QuantityAvailable <= i.ReorderThreshold
}
