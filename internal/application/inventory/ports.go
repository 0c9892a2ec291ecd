package inventory

import (
	"context"

	"github.com/jhoicas/inventory-service/internal/domain/entity"
	"github.com/jhoicas/inventory-service/internal/domain/event"
	"github.com/jhoicas/inventory-service/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Es la única frontera de atomicidad del motor:
// si fn devuelve error se hace Rollback de registro y movimiento juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		itemRepo repository.InventoryItemRepository,
		movRepo repository.InventoryMovementRepository,
	) error) error
}

// Cache es el espejo de lectura por producto. No participa en la transacción:
// sus fallos son best-effort y nunca afectan el resultado de una operación.
type Cache interface {
	// GetItem devuelve (nil, nil) en cache miss.
	GetItem(ctx context.Context, productID string) (*entity.InventoryItem, error)
	// SetItem escribe la entrada con el TTL fijo del adaptador.
	SetItem(ctx context.Context, item *entity.InventoryItem) error
	RemoveItem(ctx context.Context, productID string) error
}

// EventPublisher publica eventos de dominio tras el commit. El caller trata el
// fallo como no fatal.
type EventPublisher interface {
	Publish(ctx context.Context, ev event.Event) error
}
