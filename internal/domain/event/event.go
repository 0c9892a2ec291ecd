package event

import (
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventory-service/internal/domain/entity"
)

// Type discrimina la variante del evento.
type Type string

const (
	TypeInventoryChanged  Type = "InventoryChanged"
	TypeInventoryReserved Type = "InventoryReserved"
	TypeLowStock          Type = "LowStock"
)

// Event es la unión cerrada de los tres eventos de dominio que emite el motor
// tras el commit. El discriminante es Type y exactamente uno de los payloads
// es no-nil. Es efímero: se publica, no se persiste.
type Event struct {
	ID        string    `json:"id"`
	Type      Type      `json:"eventType"`
	Timestamp time.Time `json:"timestamp"`
	ProductID string    `json:"productId"`
	SKU       string    `json:"sku"`

	Changed  *ChangedPayload  `json:"changed,omitempty"`
	Reserved *ReservedPayload `json:"reserved,omitempty"`
	LowStock *LowStockPayload `json:"lowStock,omitempty"`
}

// ChangedPayload datos de InventoryChanged: el estado resultante y la causa.
type ChangedPayload struct {
	NewQuantityAvailable int    `json:"newQuantityAvailable"`
	NewQuantityReserved  int    `json:"newQuantityReserved"`
	ChangeReason         string `json:"changeReason"`
}

// ReservedPayload datos de InventoryReserved.
type ReservedPayload struct {
	QuantityReserved int    `json:"quantityReserved"`
	OrderID          string `json:"orderId"`
}

// LowStockPayload datos de LowStock: stock actual y política de reorden.
type LowStockPayload struct {
	CurrentStock               int `json:"currentStock"`
	ReorderThreshold           int `json:"reorderThreshold"`
	RecommendedReorderQuantity int `json:"recommendedReorderQuantity"`
}

func newEvent(t Type, item *entity.InventoryItem) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      t,
		Timestamp: time.Now().UTC(),
		ProductID: item.ProductID,
		SKU:       item.SKU,
	}
}

// NewInventoryChanged construye el evento de cambio de inventario con el
// estado post-commit del registro.
func NewInventoryChanged(item *entity.InventoryItem, reason string) Event {
	ev := newEvent(TypeInventoryChanged, item)
	ev.Changed = &ChangedPayload{
		NewQuantityAvailable: item.QuantityAvailable,
		NewQuantityReserved:  item.QuantityReserved,
		ChangeReason:         reason,
	}
	return ev
}

// NewInventoryReserved construye el evento de reserva confirmada.
func NewInventoryReserved(item *entity.InventoryItem, quantity int, orderID string) Event {
	ev := newEvent(TypeInventoryReserved, item)
	ev.Reserved = &ReservedPayload{
		QuantityReserved: quantity,
		OrderID:          orderID,
	}
	return ev
}

// NewLowStock construye la alerta de bajo stock con la política de reorden del registro.
func NewLowStock(item *entity.InventoryItem) Event {
	ev := newEvent(TypeLowStock, item)
	ev.LowStock = &LowStockPayload{
		CurrentStock:               item.QuantityAvailable,
		ReorderThreshold:           item.ReorderThreshold,
		RecommendedReorderQuantity: item.ReorderQuantity,
	}
	return ev
}
