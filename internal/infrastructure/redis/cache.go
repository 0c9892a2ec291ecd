package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/inventory-service/internal/application/inventory"
	"github.com/jhoicas/inventory-service/internal/domain/entity"
	"github.com/redis/go-redis/v9"
)

var _ inventory.Cache = (*ItemCache)(nil)

const keyPrefix = "inventory:"

// ItemCache espejo de lectura del inventario sobre Redis. Guarda el registro
// serializado como JSON bajo "inventory:<productID>" con TTL fijo. No es
// autoritativo: ante cualquier inconsistencia manda el registro en Postgres.
type ItemCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewItemCache construye el adaptador con el TTL por entrada.
func NewItemCache(client *redis.Client, ttl time.Duration) *ItemCache {
	return &ItemCache{client: client, ttl: ttl}
}

// GetItem devuelve (nil, nil) en cache miss.
func (c *ItemCache) GetItem(ctx context.Context, productID string) (*entity.InventoryItem, error) {
	val, err := c.client.Get(ctx, keyPrefix+productID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}
	var item entity.InventoryItem
	if err := json.Unmarshal(val, &item); err != nil {
		// Entrada corrupta: tratarla como miss, la reescribirá el read-through.
		return nil, nil
	}
	return &item, nil
}

// SetItem escribe la entrada con el TTL configurado.
func (c *ItemCache) SetItem(ctx context.Context, item *entity.InventoryItem) error {
	val, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+item.ProductID, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// RemoveItem elimina la entrada del producto.
func (c *ItemCache) RemoveItem(ctx context.Context, productID string) error {
	if err := c.client.Del(ctx, keyPrefix+productID).Err(); err != nil {
		return fmt.Errorf("cache del: %w", err)
	}
	return nil
}
