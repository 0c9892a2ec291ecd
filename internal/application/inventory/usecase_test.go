package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-service/internal/application/inventory"
	"github.com/jhoicas/inventory-service/internal/domain"
	"github.com/jhoicas/inventory-service/internal/domain/entity"
	"github.com/jhoicas/inventory-service/internal/domain/event"
	"github.com/jhoicas/inventory-service/internal/domain/repository"
	"github.com/jhoicas/inventory-service/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memState struct {
	items map[string]*entity.InventoryItem // por productID
	movs  []*entity.InventoryMovement
}

func cloneState(s *memState) *memState {
	c := &memState{items: make(map[string]*entity.InventoryItem, len(s.items))}
	for k, v := range s.items {
		cp := *v
		c.items[k] = &cp
	}
	c.movs = append([]*entity.InventoryMovement(nil), s.movs...)
	return c
}

// stagedRepos implementa ambos puertos sobre un estado en preparación (sin lock:
// el runner ya serializa).
type stagedRepos struct {
	state *memState
}

func (r *stagedRepos) GetByProductID(_ context.Context, productID string) (*entity.InventoryItem, error) {
	it, ok := r.state.items[productID]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (r *stagedRepos) GetByProductIDForUpdate(ctx context.Context, productID string) (*entity.InventoryItem, error) {
	return r.GetByProductID(ctx, productID)
}

func (r *stagedRepos) Insert(_ context.Context, item *entity.InventoryItem) error {
	for _, it := range r.state.items {
		if it.ProductID == item.ProductID || it.SKU == item.SKU {
			return domain.ErrDuplicate
		}
	}
	cp := *item
	r.state.items[item.ProductID] = &cp
	return nil
}

func (r *stagedRepos) UpdateQuantities(_ context.Context, item *entity.InventoryItem) error {
	if _, ok := r.state.items[item.ProductID]; !ok {
		return domain.ErrNotFound
	}
	cp := *item
	r.state.items[item.ProductID] = &cp
	return nil
}

func (r *stagedRepos) List(_ context.Context, filter repository.InventoryItemFilter) ([]*entity.InventoryItem, int, error) {
	var out []*entity.InventoryItem
	for _, it := range r.state.items {
		if filter.SKU != "" && it.SKU != filter.SKU {
			continue
		}
		if filter.LowStockOnly && !it.IsLowStock() {
			continue
		}
		cp := *it
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (r *stagedRepos) Create(_ context.Context, m *entity.InventoryMovement) error {
	cp := *m
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	r.state.movs = append(r.state.movs, &cp)
	return nil
}

// ListByItem devuelve del más reciente al más viejo; los fakes insertan en
// orden cronológico, así que basta recorrer al revés.
func (r *stagedRepos) ListByItem(_ context.Context, inventoryItemID string, limit int) ([]*entity.InventoryMovement, error) {
	out := []*entity.InventoryMovement{}
	for i := len(r.state.movs) - 1; i >= 0 && len(out) < limit; i-- {
		if r.state.movs[i].InventoryItemID == inventoryItemID {
			cp := *r.state.movs[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

// memStore es el almacén autoritativo fake: vista committed con lock (y contador
// de lecturas para verificar el read-through) más el TxRunner con semántica de
// snapshot: fn corre sobre una copia que solo se publica si fn no falla.
type memStore struct {
	mu       sync.Mutex
	state    *memState
	getCalls int
	failTx   error
}

func newMemStore(seed ...*entity.InventoryItem) *memStore {
	s := &memStore{state: &memState{items: make(map[string]*entity.InventoryItem)}}
	for _, it := range seed {
		cp := *it
		if cp.ID == "" {
			cp.ID = uuid.New().String()
		}
		s.state.items[cp.ProductID] = &cp
	}
	return s
}

func (s *memStore) Run(_ context.Context, fn func(
	itemRepo repository.InventoryItemRepository,
	movRepo repository.InventoryMovementRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failTx != nil {
		return s.failTx
	}
	staged := cloneState(s.state)
	repos := &stagedRepos{state: staged}
	if err := fn(repos, repos); err != nil {
		return err // rollback: el estado committed queda intacto
	}
	s.state = staged
	return nil
}

func (s *memStore) GetByProductID(ctx context.Context, productID string) (*entity.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	return (&stagedRepos{state: s.state}).GetByProductID(ctx, productID)
}

func (s *memStore) GetByProductIDForUpdate(ctx context.Context, productID string) (*entity.InventoryItem, error) {
	return s.GetByProductID(ctx, productID)
}

func (s *memStore) Insert(ctx context.Context, item *entity.InventoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&stagedRepos{state: s.state}).Insert(ctx, item)
}

func (s *memStore) UpdateQuantities(ctx context.Context, item *entity.InventoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&stagedRepos{state: s.state}).UpdateQuantities(ctx, item)
}

func (s *memStore) List(ctx context.Context, filter repository.InventoryItemFilter) ([]*entity.InventoryItem, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&stagedRepos{state: s.state}).List(ctx, filter)
}

func (s *memStore) Create(ctx context.Context, m *entity.InventoryMovement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&stagedRepos{state: s.state}).Create(ctx, m)
}

func (s *memStore) ListByItem(ctx context.Context, inventoryItemID string, limit int) ([]*entity.InventoryMovement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&stagedRepos{state: s.state}).ListByItem(ctx, inventoryItemID, limit)
}

func (s *memStore) committed(productID string) *entity.InventoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.state.items[productID]
	if !ok {
		return nil
	}
	cp := *it
	return &cp
}

func (s *memStore) movements() []*entity.InventoryMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*entity.InventoryMovement(nil), s.state.movs...)
}

type fakeCache struct {
	mu      sync.Mutex
	items   map[string]*entity.InventoryItem
	failGet bool
	failSet bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string]*entity.InventoryItem)}
}

func (c *fakeCache) GetItem(_ context.Context, productID string) (*entity.InventoryItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return nil, errors.New("cache caído")
	}
	it, ok := c.items[productID]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (c *fakeCache) SetItem(_ context.Context, item *entity.InventoryItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSet {
		return errors.New("cache caído")
	}
	cp := *item
	c.items[item.ProductID] = &cp
	return nil
}

func (c *fakeCache) RemoveItem(_ context.Context, productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, productID)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []event.Event
	fail   bool
}

func (p *fakePublisher) Publish(_ context.Context, ev event.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker caído")
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) byType(t event.Type) []event.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []event.Event
	for _, ev := range p.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func newTestEngine(seed ...*entity.InventoryItem) (*inventory.StockUseCase, *memStore, *fakeCache, *fakePublisher) {
	store := newMemStore(seed...)
	cache := newFakeCache()
	pub := &fakePublisher{}
	uc := inventory.NewStockUseCase(store, store, store, cache, pub, logger.Nop())
	return uc, store, cache, pub
}

func testItem() *entity.InventoryItem {
	return &entity.InventoryItem{
		ProductID:         "11111111-1111-1111-1111-111111111111",
		SKU:               "SKU-001",
		QuantityAvailable: 100,
		QuantityReserved:  0,
		ReorderThreshold:  20,
		ReorderQuantity:   50,
		WarehouseCode:     "BOG-01",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateItem
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateItem_PueblaCacheYEmiteEvento(t *testing.T) {
	uc, store, cache, pub := newTestEngine()

	created, err := uc.CreateItem(context.Background(), testItem())
	require.NoError(t, err)
	require.NotEmpty(t, created.ID, "debe asignarse identidad nueva")

	// Crear no escribe movimiento: no hay delta respecto a un estado anterior
	assert.Empty(t, store.movements())

	cached, err := cache.GetItem(context.Background(), created.ProductID)
	require.NoError(t, err)
	require.NotNil(t, cached, "el registro recién creado debe quedar en caché")
	assert.Equal(t, 100, cached.QuantityAvailable)

	changed := pub.byType(event.TypeInventoryChanged)
	require.Len(t, changed, 1)
	assert.Equal(t, "New inventory item created", changed[0].Changed.ChangeReason)
	assert.Equal(t, created.ProductID, changed[0].ProductID)
}

func TestCreateItem_Duplicado(t *testing.T) {
	uc, _, _, _ := newTestEngine(testItem())

	dup := testItem()
	_, err := uc.CreateItem(context.Background(), dup)
	assert.ErrorIs(t, err, domain.ErrDuplicate, "product_id repetido debe señalarse como duplicado")

	otroProducto := testItem()
	otroProducto.ProductID = "22222222-2222-2222-2222-222222222222"
	_, err = uc.CreateItem(context.Background(), otroProducto)
	assert.ErrorIs(t, err, domain.ErrDuplicate, "sku repetido debe señalarse como duplicado")
}

func TestCreateItem_EntradaInvalida(t *testing.T) {
	uc, _, _, _ := newTestEngine()

	sinSKU := testItem()
	sinSKU.SKU = ""
	_, err := uc.CreateItem(context.Background(), sinSKU)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	negativo := testItem()
	negativo.QuantityAvailable = -1
	_, err = uc.CreateItem(context.Background(), negativo)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// ReserveStock
// ──────────────────────────────────────────────────────────────────────────────

func TestReserveStock_Exito(t *testing.T) {
	item := testItem()
	uc, store, _, pub := newTestEngine(item)

	ok, err := uc.ReserveStock(context.Background(), item.ProductID, 10, "order-1")
	require.NoError(t, err)
	require.True(t, ok)

	after := store.committed(item.ProductID)
	assert.Equal(t, 90, after.QuantityAvailable)
	assert.Equal(t, 10, after.QuantityReserved)

	movs := store.movements()
	require.Len(t, movs, 1, "exactamente un movimiento por mutación")
	assert.Equal(t, entity.MovementTypeReservation, movs[0].Type)
	assert.Equal(t, -10, movs[0].Quantity, "la reserva registra el delta firmado del disponible")
	assert.Equal(t, "order-1", movs[0].ReferenceID)
	assert.Equal(t, "Order", movs[0].ReferenceType)
	assert.Equal(t, after.ID, movs[0].InventoryItemID)

	reserved := pub.byType(event.TypeInventoryReserved)
	require.Len(t, reserved, 1)
	assert.Equal(t, 10, reserved[0].Reserved.QuantityReserved)
	assert.Equal(t, "order-1", reserved[0].Reserved.OrderID)
	assert.Empty(t, pub.byType(event.TypeLowStock), "90 > umbral 20: sin alerta de bajo stock")
}

func TestReserveStock_StockInsuficiente(t *testing.T) {
	item := testItem()
	item.QuantityAvailable = 5
	uc, store, _, pub := newTestEngine(item)

	ok, err := uc.ReserveStock(context.Background(), item.ProductID, 10, "order-1")
	require.NoError(t, err, "stock insuficiente es condición de negocio, no error")
	assert.False(t, ok)

	after := store.committed(item.ProductID)
	assert.Equal(t, 5, after.QuantityAvailable, "sin mutación de estado")
	assert.Equal(t, 0, after.QuantityReserved)
	assert.Empty(t, store.movements(), "sin movimiento en reserva rechazada")
	assert.Empty(t, pub.events)
}

func TestReserveStock_ProductoInexistente(t *testing.T) {
	uc, _, _, _ := newTestEngine()

	ok, err := uc.ReserveStock(context.Background(), "99999999-9999-9999-9999-999999999999", 1, "order-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReserveStock_CantidadInvalida(t *testing.T) {
	item := testItem()
	uc, store, _, _ := newTestEngine(item)

	for _, q := range []int{0, -5} {
		ok, err := uc.ReserveStock(context.Background(), item.ProductID, q, "order-1")
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Empty(t, store.movements())
}

func TestReserveStock_EmiteLowStockAlCruzarUmbral(t *testing.T) {
	// Ejemplo de referencia: 100 disponibles, umbral 20, reserva de 85.
	item := testItem()
	uc, store, _, pub := newTestEngine(item)

	ok, err := uc.ReserveStock(context.Background(), item.ProductID, 85, "order-1")
	require.NoError(t, err)
	require.True(t, ok)

	after := store.committed(item.ProductID)
	assert.Equal(t, 15, after.QuantityAvailable)
	assert.Equal(t, 85, after.QuantityReserved)

	low := pub.byType(event.TypeLowStock)
	require.Len(t, low, 1, "15 <= 20 debe disparar la alerta")
	assert.Equal(t, 15, low[0].LowStock.CurrentStock)
	assert.Equal(t, 20, low[0].LowStock.ReorderThreshold)
	assert.Equal(t, 50, low[0].LowStock.RecommendedReorderQuantity)
}

func TestReserveStock_UmbralExactoTambienDispara(t *testing.T) {
	item := testItem()
	uc, _, _, pub := newTestEngine(item)

	ok, err := uc.ReserveStock(context.Background(), item.ProductID, 80, "order-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, pub.byType(event.TypeLowStock), 1, "quedar exactamente en el umbral dispara la alerta")
}

// ──────────────────────────────────────────────────────────────────────────────
// ReleaseStock
// ──────────────────────────────────────────────────────────────────────────────

func TestReleaseStock_RoundTripConReserva(t *testing.T) {
	item := testItem()
	uc, store, _, pub := newTestEngine(item)

	ok, err := uc.ReserveStock(context.Background(), item.ProductID, 85, "order-1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = uc.ReleaseStock(context.Background(), item.ProductID, 85, "order-1")
	require.NoError(t, err)
	require.True(t, ok)

	after := store.committed(item.ProductID)
	assert.Equal(t, 100, after.QuantityAvailable, "liberar lo reservado restaura el estado previo")
	assert.Equal(t, 0, after.QuantityReserved)

	movs := store.movements()
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementTypeReservationRelease, movs[1].Type)
	assert.Equal(t, 85, movs[1].Quantity)
	assert.Equal(t, "order-1", movs[1].ReferenceID)
	// Los deltas del libro reconcilian con el disponible
	assert.Zero(t, movs[0].Quantity+movs[1].Quantity)

	changed := pub.byType(event.TypeInventoryChanged)
	require.Len(t, changed, 1)
	assert.Contains(t, changed[0].Changed.ChangeReason, "order-1")
}

func TestReleaseStock_ExcedeReservado(t *testing.T) {
	item := testItem()
	item.QuantityReserved = 5
	uc, store, _, _ := newTestEngine(item)

	ok, err := uc.ReleaseStock(context.Background(), item.ProductID, 10, "order-1")
	require.NoError(t, err, "sobre-liberación es condición de negocio, no error")
	assert.False(t, ok, "liberar más de lo reservado se rechaza, no se recorta")

	after := store.committed(item.ProductID)
	assert.Equal(t, 100, after.QuantityAvailable)
	assert.Equal(t, 5, after.QuantityReserved, "el reservado nunca queda negativo")
	assert.Empty(t, store.movements())
}

func TestReleaseStock_ProductoInexistente(t *testing.T) {
	uc, _, _, _ := newTestEngine()

	ok, err := uc.ReleaseStock(context.Background(), "99999999-9999-9999-9999-999999999999", 1, "order-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

// ──────────────────────────────────────────────────────────────────────────────
// AdjustStock
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjustStock_ValorAbsoluto(t *testing.T) {
	item := testItem()
	item.QuantityAvailable = 40
	uc, store, _, pub := newTestEngine(item)

	ok, err := uc.AdjustStock(context.Background(), item.ProductID, 100, "reabastecimiento semanal")
	require.NoError(t, err)
	require.True(t, ok)

	after := store.committed(item.ProductID)
	assert.Equal(t, 100, after.QuantityAvailable, "ajuste fija el valor absoluto, no un delta")
	assert.False(t, after.LastRestockAt.IsZero(), "valor > 0 actualiza la última reposición")

	movs := store.movements()
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeStockIn, movs[0].Type)
	assert.Equal(t, 60, movs[0].Quantity, "el movimiento registra delta = nuevo - anterior")

	changed := pub.byType(event.TypeInventoryChanged)
	require.Len(t, changed, 1)
	assert.Equal(t, "reabastecimiento semanal", changed[0].Changed.ChangeReason)
}

func TestAdjustStock_HaciaAbajoRegistraStockOut(t *testing.T) {
	item := testItem()
	uc, store, _, _ := newTestEngine(item)

	ok, err := uc.AdjustStock(context.Background(), item.ProductID, 30, "merma")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, 30, store.committed(item.ProductID).QuantityAvailable)
	movs := store.movements()
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeStockOut, movs[0].Type)
	assert.Equal(t, -70, movs[0].Quantity)
}

func TestAdjustStock_SinCambioEscribeAjusteCero(t *testing.T) {
	item := testItem()
	uc, store, _, _ := newTestEngine(item)

	ok, err := uc.AdjustStock(context.Background(), item.ProductID, 100, "conteo físico")
	require.NoError(t, err)
	require.True(t, ok)

	// Cada mutación confirmada deja su fila en el libro, incluso sin delta
	movs := store.movements()
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeAdjustment, movs[0].Type)
	assert.Zero(t, movs[0].Quantity)
}

func TestAdjustStock_ProductoInexistente(t *testing.T) {
	uc, _, _, _ := newTestEngine()

	ok, err := uc.AdjustStock(context.Background(), "99999999-9999-9999-9999-999999999999", 10, "x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAdjustStock_NegativoRechazado(t *testing.T) {
	item := testItem()
	uc, store, _, _ := newTestEngine(item)

	ok, err := uc.AdjustStock(context.Background(), item.ProductID, -1, "x")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, store.movements())
}

func TestAdjustStock_NoDisparaLowStock(t *testing.T) {
	item := testItem()
	uc, _, _, pub := newTestEngine(item)

	// Deja el disponible bajo el umbral, pero la regla solo aplica a reservas
	ok, err := uc.AdjustStock(context.Background(), item.ProductID, 5, "merma")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, pub.byType(event.TypeLowStock))
}

// ──────────────────────────────────────────────────────────────────────────────
// Lectura read-through
// ──────────────────────────────────────────────────────────────────────────────

func TestGetByProductID_PueblaCacheEnMiss(t *testing.T) {
	item := testItem()
	uc, store, _, _ := newTestEngine(item)

	first, err := uc.GetByProductID(context.Background(), item.ProductID)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 1, store.getCalls, "el miss va al registro autoritativo")

	second, err := uc.GetByProductID(context.Background(), item.ProductID)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, 1, store.getCalls, "dentro del TTL la segunda lectura no toca el store")
	assert.Equal(t, first.QuantityAvailable, second.QuantityAvailable)
}

func TestGetByProductID_NoCacheaMiss(t *testing.T) {
	uc, store, cache, _ := newTestEngine()

	it, err := uc.GetByProductID(context.Background(), "99999999-9999-9999-9999-999999999999")
	require.NoError(t, err)
	assert.Nil(t, it)
	assert.Empty(t, cache.items, "un producto inexistente no deja entrada en caché")

	_, err = uc.GetByProductID(context.Background(), "99999999-9999-9999-9999-999999999999")
	require.NoError(t, err)
	assert.Equal(t, 2, store.getCalls)
}

func TestGetByProductID_CacheCaidoNoEsFatal(t *testing.T) {
	item := testItem()
	uc, _, cache, _ := newTestEngine(item)
	cache.failGet = true

	it, err := uc.GetByProductID(context.Background(), item.ProductID)
	require.NoError(t, err, "con el caché caído manda el registro autoritativo")
	require.NotNil(t, it)
	assert.Equal(t, 100, it.QuantityAvailable)
}

// ──────────────────────────────────────────────────────────────────────────────
// Semántica de fallos
// ──────────────────────────────────────────────────────────────────────────────

func TestEfectosSecundariosNoAfectanResultado(t *testing.T) {
	item := testItem()
	uc, store, cache, pub := newTestEngine(item)
	cache.failSet = true
	pub.fail = true

	ok, err := uc.ReserveStock(context.Background(), item.ProductID, 10, "order-1")
	require.NoError(t, err, "fallos post-commit de caché/eventos se tragan")
	assert.True(t, ok)
	assert.Equal(t, 90, store.committed(item.ProductID).QuantityAvailable, "el commit ya ocurrió")
}

func TestFalloDeInfraestructuraSePropaga(t *testing.T) {
	item := testItem()
	uc, store, _, pub := newTestEngine(item)
	store.failTx = errors.New("db caída")

	ok, err := uc.ReserveStock(context.Background(), item.ProductID, 10, "order-1")
	require.Error(t, err, "el error de transacción llega al caller tras el rollback")
	assert.False(t, ok)
	assert.Empty(t, pub.events, "sin commit no hay eventos")
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia
// ──────────────────────────────────────────────────────────────────────────────

func TestReservasConcurrentes_SinDobleGasto(t *testing.T) {
	item := testItem()
	item.QuantityAvailable = 10
	uc, store, _, _ := newTestEngine(item)

	// Dos reservas de 7: solo cabe una.
	var wg sync.WaitGroup
	results := make([]bool, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := uc.ReserveStock(context.Background(), item.ProductID, 7, "order-concurrent")
			assert.NoError(t, err)
			results[i] = ok
		}(i)
	}
	wg.Wait()

	exitos := 0
	for _, ok := range results {
		if ok {
			exitos++
		}
	}
	assert.Equal(t, 1, exitos, "exactamente una reserva debe ganar")

	after := store.committed(item.ProductID)
	assert.Equal(t, 3, after.QuantityAvailable)
	assert.Equal(t, 7, after.QuantityReserved)
	assert.Len(t, store.movements(), 1, "solo la reserva ganadora escribe movimiento")
}

func TestReservasConcurrentes_AmbasCabenAmbasGanan(t *testing.T) {
	item := testItem()
	item.QuantityAvailable = 20
	uc, store, _, _ := newTestEngine(item)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := uc.ReserveStock(context.Background(), item.ProductID, 7, "order-fit")
			assert.NoError(t, err)
			assert.True(t, ok)
		}()
	}
	wg.Wait()

	after := store.committed(item.ProductID)
	assert.Equal(t, 6, after.QuantityAvailable)
	assert.Equal(t, 14, after.QuantityReserved)
	assert.Len(t, store.movements(), 2)
}

func TestReservasConcurrentes_NingunaCabeNingunaGana(t *testing.T) {
	item := testItem()
	item.QuantityAvailable = 5
	uc, store, _, _ := newTestEngine(item)

	var wg sync.WaitGroup
	for _, q := range []int{7, 8} {
		wg.Add(1)
		go func(q int) {
			defer wg.Done()
			ok, err := uc.ReserveStock(context.Background(), item.ProductID, q, "order-nofit")
			assert.NoError(t, err)
			assert.False(t, ok)
		}(q)
	}
	wg.Wait()

	assert.Equal(t, 5, store.committed(item.ProductID).QuantityAvailable)
	assert.Empty(t, store.movements())
}

// ──────────────────────────────────────────────────────────────────────────────
// Historial y listado
// ──────────────────────────────────────────────────────────────────────────────

func TestMovementsForProduct_ProductoInexistente(t *testing.T) {
	uc, _, _, _ := newTestEngine()

	movs, err := uc.MovementsForProduct(context.Background(), "99999999-9999-9999-9999-999999999999", 10)
	require.NoError(t, err, "producto inexistente devuelve lista vacía, no error")
	assert.Empty(t, movs)
}

func TestMovementsForProduct_MasRecientePrimeroConLimite(t *testing.T) {
	item := testItem()
	uc, _, _, _ := newTestEngine(item)

	for _, target := range []int{90, 80, 70} {
		ok, err := uc.AdjustStock(context.Background(), item.ProductID, target, "x")
		require.NoError(t, err)
		require.True(t, ok)
	}

	movs, err := uc.MovementsForProduct(context.Background(), item.ProductID, 2)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, -10, movs[0].Quantity, "primero el movimiento más reciente (80 -> 70)")
	assert.Equal(t, -10, movs[1].Quantity)
}

func TestMovementsForProduct_LimitePorDefecto(t *testing.T) {
	item := testItem()
	uc, _, _, _ := newTestEngine(item)

	for i := 0; i < inventory.DefaultMovementLimit+3; i++ {
		ok, err := uc.AdjustStock(context.Background(), item.ProductID, 100-i, "x")
		require.NoError(t, err)
		require.True(t, ok)
	}

	movs, err := uc.MovementsForProduct(context.Background(), item.ProductID, 0)
	require.NoError(t, err)
	assert.Len(t, movs, inventory.DefaultMovementLimit)
}

func TestListItems_FiltraBajoStock(t *testing.T) {
	normal := testItem()
	bajo := testItem()
	bajo.ProductID = "22222222-2222-2222-2222-222222222222"
	bajo.SKU = "SKU-002"
	bajo.QuantityAvailable = 10 // bajo el umbral de 20
	uc, _, _, _ := newTestEngine(normal, bajo)

	items, total, err := uc.ListItems(context.Background(), repository.InventoryItemFilter{LowStockOnly: true, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "SKU-002", items[0].SKU)
}
