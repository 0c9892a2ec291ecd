package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementTypeStockIn            = "StockIn"
	MovementTypeStockOut           = "StockOut"
	MovementTypeReservation        = "Reservation"
	MovementTypeReservationRelease = "ReservationRelease"
	MovementTypeAdjustment         = "Adjustment"
)

// InventoryMovement es la entrada inmutable del libro de movimientos: una por
// cada mutación de cantidades, escrita en la misma transacción que la mutación.
//
// Quantity usa una sola convención para todos los tipos: el delta firmado
// aplicado a QuantityAvailable (Reservation = -q, ReservationRelease = +q,
// StockIn/StockOut = delta del ajuste). Así la suma de los movimientos de un
// registro reconcilia con su disponible actual por construcción.
type InventoryMovement struct {
	ID              string
	InventoryItemID string // registro dueño (muchos a uno)
	Quantity        int
	Type            string
	ReferenceID     string // correlación opcional, ej. ID de orden
	ReferenceType   string
	Timestamp       time.Time
	InitiatedBy     string
}
