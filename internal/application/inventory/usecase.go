package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventory-service/internal/domain"
	"github.com/jhoicas/inventory-service/internal/domain/entity"
	"github.com/jhoicas/inventory-service/internal/domain/event"
	"github.com/jhoicas/inventory-service/internal/domain/repository"
	"github.com/jhoicas/inventory-service/pkg/logger"
	"github.com/jhoicas/inventory-service/pkg/metrics"
)

const (
	// DefaultMovementLimit movimientos devueltos por defecto en el historial.
	DefaultMovementLimit = 10

	referenceTypeOrder      = "Order"
	referenceTypeAdjustment = "Adjustment"
	initiatedBySystem       = "System"
)

// StockUseCase es el motor de mutación de stock: orquesta registro autoritativo,
// libro de movimientos, espejo de caché y publicación de eventos.
//
// Cada operación de escritura abre una transacción vía TxRunner, bloquea la fila
// del registro (SELECT FOR UPDATE), valida, muta registro + movimiento y hace
// commit. Solo después del commit se refresca el caché y se publican eventos;
// esos efectos son best-effort y sus fallos se loguean sin afectar el resultado.
//
// Las condiciones de negocio (no existe, stock insuficiente, sobre-liberación)
// se reportan como false, nunca como error; los errores de infraestructura se
// propagan tras el rollback.
type StockUseCase struct {
	txRunner TxRunner
	itemRepo repository.InventoryItemRepository // lecturas fuera de transacción
	movRepo  repository.InventoryMovementRepository
	cache    Cache
	events   EventPublisher
	log      *logger.Logger
}

// NewStockUseCase construye el motor con sus colaboradores inyectados.
func NewStockUseCase(
	txRunner TxRunner,
	itemRepo repository.InventoryItemRepository,
	movRepo repository.InventoryMovementRepository,
	cache Cache,
	events EventPublisher,
	log *logger.Logger,
) *StockUseCase {
	return &StockUseCase{
		txRunner: txRunner,
		itemRepo: itemRepo,
		movRepo:  movRepo,
		cache:    cache,
		events:   events,
		log:      log,
	}
}

// CreateItem inserta un registro de inventario nuevo con identidad generada.
// Devuelve domain.ErrDuplicate si product_id o sku ya existen y
// domain.ErrInvalidInput con datos inválidos. No escribe movimiento: no hay
// delta respecto a un estado anterior. Tras el insert puebla el caché y emite
// InventoryChanged.
func (uc *StockUseCase) CreateItem(ctx context.Context, item *entity.InventoryItem) (*entity.InventoryItem, error) {
	if item.ProductID == "" || item.SKU == "" || item.QuantityAvailable < 0 || item.QuantityReserved < 0 ||
		item.ReorderThreshold < 0 || item.ReorderQuantity < 0 {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	item.ID = uuid.New().String()
	item.CreatedAt = now
	item.UpdatedAt = now

	if err := uc.itemRepo.Insert(ctx, item); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			metrics.Operations.WithLabelValues("create", metrics.ResultRejected).Inc()
			return nil, domain.ErrDuplicate
		}
		metrics.Operations.WithLabelValues("create", metrics.ResultError).Inc()
		return nil, fmt.Errorf("insert inventory item: %w", err)
	}
	metrics.Operations.WithLabelValues("create", metrics.ResultOK).Inc()

	uc.refreshCache(ctx, item)
	uc.publish(ctx, event.NewInventoryChanged(item, "New inventory item created"))
	return item, nil
}

// AdjustStock fija QuantityAvailable en un valor absoluto (no un delta) y
// escribe un movimiento con el delta firmado: StockIn si sube, StockOut si
// baja, Adjustment con cantidad cero si no cambia. Devuelve false si el
// producto no existe o el valor es negativo. Si el nuevo valor es > 0 se
// actualiza LastRestockAt.
func (uc *StockUseCase) AdjustStock(ctx context.Context, productID string, newQuantity int, reason string) (bool, error) {
	if productID == "" || newQuantity < 0 {
		return false, nil
	}

	var item *entity.InventoryItem
	err := uc.txRunner.Run(ctx, func(
		items repository.InventoryItemRepository,
		movs repository.InventoryMovementRepository,
	) error {
		it, err := items.GetByProductIDForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if it == nil {
			return domain.ErrNotFound
		}

		now := time.Now().UTC()
		delta := newQuantity - it.QuantityAvailable
		it.QuantityAvailable = newQuantity
		if newQuantity > 0 {
			it.LastRestockAt = now
		}
		it.UpdatedAt = now
		if err := items.UpdateQuantities(ctx, it); err != nil {
			return err
		}

		movType := entity.MovementTypeAdjustment
		if delta > 0 {
			movType = entity.MovementTypeStockIn
		} else if delta < 0 {
			movType = entity.MovementTypeStockOut
		}
		if err := movs.Create(ctx, &entity.InventoryMovement{
			InventoryItemID: it.ID,
			Quantity:        delta,
			Type:            movType,
			ReferenceType:   referenceTypeAdjustment,
			Timestamp:       now,
			InitiatedBy:     initiatedBySystem,
		}); err != nil {
			return err
		}

		item = it
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			uc.log.Warn().Str("product_id", productID).Msg("ajuste sobre producto inexistente")
			metrics.Operations.WithLabelValues("adjust", metrics.ResultRejected).Inc()
			return false, nil
		}
		metrics.Operations.WithLabelValues("adjust", metrics.ResultError).Inc()
		return false, fmt.Errorf("adjust stock: %w", err)
	}
	metrics.Operations.WithLabelValues("adjust", metrics.ResultOK).Inc()

	uc.refreshCache(ctx, item)
	uc.publish(ctx, event.NewInventoryChanged(item, reason))
	return true, nil
}

// ReserveStock descuenta del disponible y suma al reservado si hay stock
// suficiente. Devuelve false sin mutar estado cuando el producto no existe,
// la cantidad no es positiva o el disponible es menor a lo pedido. Escribe un
// movimiento Reservation con delta -quantity y referencia a la orden. Tras el
// commit emite InventoryReserved y, si el disponible quedó en o bajo el punto
// de reorden, también LowStock (solo la reserva dispara esta regla).
func (uc *StockUseCase) ReserveStock(ctx context.Context, productID string, quantity int, orderID string) (bool, error) {
	if productID == "" || quantity <= 0 {
		return false, nil
	}

	var item *entity.InventoryItem
	err := uc.txRunner.Run(ctx, func(
		items repository.InventoryItemRepository,
		movs repository.InventoryMovementRepository,
	) error {
		it, err := items.GetByProductIDForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if it == nil {
			return domain.ErrNotFound
		}
		if it.QuantityAvailable < quantity {
			return domain.ErrInsufficientStock
		}

		now := time.Now().UTC()
		it.QuantityAvailable -= quantity
		it.QuantityReserved += quantity
		it.UpdatedAt = now
		if err := items.UpdateQuantities(ctx, it); err != nil {
			return err
		}
		if err := movs.Create(ctx, &entity.InventoryMovement{
			InventoryItemID: it.ID,
			Quantity:        -quantity,
			Type:            entity.MovementTypeReservation,
			ReferenceID:     orderID,
			ReferenceType:   referenceTypeOrder,
			Timestamp:       now,
			InitiatedBy:     initiatedBySystem,
		}); err != nil {
			return err
		}

		item = it
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			uc.log.Warn().Str("product_id", productID).Msg("reserva sobre producto inexistente")
			metrics.Operations.WithLabelValues("reserve", metrics.ResultRejected).Inc()
			return false, nil
		case errors.Is(err, domain.ErrInsufficientStock):
			uc.log.Warn().
				Str("product_id", productID).
				Int("requested", quantity).
				Msg("stock insuficiente para reservar")
			metrics.Operations.WithLabelValues("reserve", metrics.ResultRejected).Inc()
			return false, nil
		}
		metrics.Operations.WithLabelValues("reserve", metrics.ResultError).Inc()
		return false, fmt.Errorf("reserve stock: %w", err)
	}
	metrics.Operations.WithLabelValues("reserve", metrics.ResultOK).Inc()

	uc.refreshCache(ctx, item)
	uc.publish(ctx, event.NewInventoryReserved(item, quantity, orderID))
	if item.IsLowStock() {
		uc.publish(ctx, event.NewLowStock(item))
	}
	return true, nil
}

// ReleaseStock devuelve al disponible una cantidad previamente reservada.
// Devuelve false cuando el producto no existe, la cantidad no es positiva o
// excede lo reservado: liberar más de lo reservado dejaría el balance negativo,
// así que se rechaza en vez de recortar. Escribe un movimiento
// ReservationRelease con delta +quantity y referencia a la orden.
func (uc *StockUseCase) ReleaseStock(ctx context.Context, productID string, quantity int, orderID string) (bool, error) {
	if productID == "" || quantity <= 0 {
		return false, nil
	}

	var item *entity.InventoryItem
	err := uc.txRunner.Run(ctx, func(
		items repository.InventoryItemRepository,
		movs repository.InventoryMovementRepository,
	) error {
		it, err := items.GetByProductIDForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if it == nil {
			return domain.ErrNotFound
		}
		if it.QuantityReserved < quantity {
			return domain.ErrConflict
		}

		now := time.Now().UTC()
		it.QuantityAvailable += quantity
		it.QuantityReserved -= quantity
		it.UpdatedAt = now
		if err := items.UpdateQuantities(ctx, it); err != nil {
			return err
		}
		if err := movs.Create(ctx, &entity.InventoryMovement{
			InventoryItemID: it.ID,
			Quantity:        quantity,
			Type:            entity.MovementTypeReservationRelease,
			ReferenceID:     orderID,
			ReferenceType:   referenceTypeOrder,
			Timestamp:       now,
			InitiatedBy:     initiatedBySystem,
		}); err != nil {
			return err
		}

		item = it
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			uc.log.Warn().Str("product_id", productID).Msg("liberación sobre producto inexistente")
			metrics.Operations.WithLabelValues("release", metrics.ResultRejected).Inc()
			return false, nil
		case errors.Is(err, domain.ErrConflict):
			uc.log.Warn().
				Str("product_id", productID).
				Int("requested", quantity).
				Msg("liberación excede lo reservado")
			metrics.Operations.WithLabelValues("release", metrics.ResultRejected).Inc()
			return false, nil
		}
		metrics.Operations.WithLabelValues("release", metrics.ResultError).Inc()
		return false, fmt.Errorf("release stock: %w", err)
	}
	metrics.Operations.WithLabelValues("release", metrics.ResultOK).Inc()

	uc.refreshCache(ctx, item)
	uc.publish(ctx, event.NewInventoryChanged(item, fmt.Sprintf("Reservation released for order %s", orderID)))
	return true, nil
}

// GetByProductID lee primero del caché; en miss consulta el registro
// autoritativo y puebla el caché antes de devolver. Un miss nunca se cachea.
// Devuelve (nil, nil) si el producto no existe.
func (uc *StockUseCase) GetByProductID(ctx context.Context, productID string) (*entity.InventoryItem, error) {
	cached, err := uc.cache.GetItem(ctx, productID)
	if err != nil {
		// El caché caído no es fatal: seguimos al registro autoritativo.
		uc.log.Warn().Err(err).Str("product_id", productID).Msg("lectura de caché falló")
		metrics.SideEffectFailures.WithLabelValues("cache").Inc()
	}
	if cached != nil {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	item, err := uc.itemRepo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	if item == nil {
		return nil, nil
	}
	uc.refreshCache(ctx, item)
	return item, nil
}

// MovementsForProduct devuelve los movimientos más recientes del producto,
// ordenados del más nuevo al más viejo. Si el producto no existe devuelve
// una lista vacía, no un error.
func (uc *StockUseCase) MovementsForProduct(ctx context.Context, productID string, limit int) ([]*entity.InventoryMovement, error) {
	if limit <= 0 {
		limit = DefaultMovementLimit
	}
	item, err := uc.itemRepo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	if item == nil {
		return []*entity.InventoryMovement{}, nil
	}
	movs, err := uc.movRepo.ListByItem(ctx, item.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return movs, nil
}

// ListItems lista registros de inventario con filtros y paginación.
// Devuelve también el total para los metadatos de página.
func (uc *StockUseCase) ListItems(ctx context.Context, filter repository.InventoryItemFilter) ([]*entity.InventoryItem, int, error) {
	items, total, err := uc.itemRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list inventory items: %w", err)
	}
	return items, total, nil
}

// refreshCache actualiza el espejo tras un commit. Best-effort: el registro
// autoritativo ya avanzó, así que un fallo aquí solo se loguea.
func (uc *StockUseCase) refreshCache(ctx context.Context, item *entity.InventoryItem) {
	if err := uc.cache.SetItem(ctx, item); err != nil {
		uc.log.Warn().Err(err).Str("product_id", item.ProductID).Msg("actualización de caché falló")
		metrics.SideEffectFailures.WithLabelValues("cache").Inc()
	}
}

// publish emite un evento de dominio tras un commit. Best-effort.
func (uc *StockUseCase) publish(ctx context.Context, ev event.Event) {
	if err := uc.events.Publish(ctx, ev); err != nil {
		uc.log.Warn().Err(err).
			Str("event_type", string(ev.Type)).
			Str("product_id", ev.ProductID).
			Msg("publicación de evento falló")
		metrics.SideEffectFailures.WithLabelValues("events").Inc()
		return
	}
	metrics.EventsPublished.WithLabelValues(string(ev.Type)).Inc()
}
