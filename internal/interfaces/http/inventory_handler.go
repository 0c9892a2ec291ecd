package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-service/internal/application/dto"
	"github.com/jhoicas/inventory-service/internal/application/inventory"
	"github.com/jhoicas/inventory-service/internal/domain"
	"github.com/jhoicas/inventory-service/internal/domain/entity"
	"github.com/jhoicas/inventory-service/internal/domain/repository"
)

// StockService operaciones del motor de inventario consumidas por los handlers.
type StockService interface {
	CreateItem(ctx context.Context, item *entity.InventoryItem) (*entity.InventoryItem, error)
	AdjustStock(ctx context.Context, productID string, newQuantity int, reason string) (bool, error)
	ReserveStock(ctx context.Context, productID string, quantity int, orderID string) (bool, error)
	ReleaseStock(ctx context.Context, productID string, quantity int, orderID string) (bool, error)
	GetByProductID(ctx context.Context, productID string) (*entity.InventoryItem, error)
	MovementsForProduct(ctx context.Context, productID string, limit int) ([]*entity.InventoryMovement, error)
	ListItems(ctx context.Context, filter repository.InventoryItemFilter) ([]*entity.InventoryItem, int, error)
}

// InventoryHandler maneja las peticiones HTTP del inventario.
type InventoryHandler struct {
	svc StockService
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(svc StockService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// GetByProductID devuelve el registro con sus movimientos recientes.
// GET /api/v1/inventory/:productId
func (h *InventoryHandler) GetByProductID(c *fiber.Ctx) error {
	productID := c.Params("productId")

	item, err := h.svc.GetByProductID(c.Context(), productID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if item == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
	}

	// Los movimientos se cargan aparte y se devuelven como proyección,
	// nunca como referencia viva desde el registro.
	movements, err := h.svc.MovementsForProduct(c.Context(), productID, inventory.DefaultMovementLimit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	out := dto.FromEntity(item)
	out.RecentMovements = dto.FromMovements(movements)
	return c.JSON(out)
}

// List devuelve el inventario paginado con filtros.
// GET /api/v1/inventory
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	var params dto.InventoryQueryParams
	if err := c.QueryParser(&params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	params.DefaultPage()

	items, total, err := h.svc.ListItems(c.Context(), repository.InventoryItemFilter{
		SKU:          params.SKU,
		MinStock:     params.MinStock,
		MaxStock:     params.MaxStock,
		LowStockOnly: params.LowStockOnly,
		SortBy:       params.SortBy,
		SortDesc:     params.SortDesc,
		Limit:        params.Limit,
		Offset:       params.Offset,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	out := make([]dto.InventoryItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, dto.FromEntity(it))
	}
	return c.JSON(fiber.Map{
		"items": out,
		"page":  dto.PageResponse{Limit: params.Limit, Offset: params.Offset, Total: total},
	})
}

// Movements devuelve el historial de movimientos del producto.
// GET /api/v1/inventory/:productId/movements?limit=
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	productID := c.Params("productId")
	limit := c.QueryInt("limit", inventory.DefaultMovementLimit)

	movements, err := h.svc.MovementsForProduct(c.Context(), productID, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"movements": dto.FromMovements(movements)})
}

// Create inserta un registro de inventario nuevo.
// POST /api/v1/inventory
func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInventoryItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	item, err := h.svc.CreateItem(c.Context(), in.ToEntity())
	if err != nil {
		switch err {
		case domain.ErrInvalidInput:
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
		case domain.ErrDuplicate:
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "product_id o sku ya existen"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromEntity(item))
}

// Reserve reserva stock para una orden.
// POST /api/v1/inventory/reserve
func (h *InventoryHandler) Reserve(c *fiber.Ctx) error {
	var in dto.ReserveStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	ok, err := h.svc.ReserveStock(c.Context(), in.ProductID, in.Quantity, in.OrderID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "RESERVE_FAILED",
			Message: "no se pudo reservar: verifique stock disponible",
		})
	}
	return c.SendStatus(fiber.StatusOK)
}

// Release libera stock reservado de una orden.
// POST /api/v1/inventory/release
func (h *InventoryHandler) Release(c *fiber.Ctx) error {
	var in dto.ReleaseStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	ok, err := h.svc.ReleaseStock(c.Context(), in.ProductID, in.Quantity, in.OrderID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "RELEASE_FAILED",
			Message: "no se pudo liberar: verifique lo reservado para la orden",
		})
	}
	return c.SendStatus(fiber.StatusOK)
}

// Adjust fija el disponible en un valor absoluto.
// POST /api/v1/inventory/adjust
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	ok, err := h.svc.AdjustStock(c.Context(), in.ProductID, in.NewQuantity, in.Reason)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "ADJUST_FAILED",
			Message: "no se pudo ajustar: verifique producto y cantidad",
		})
	}
	return c.SendStatus(fiber.StatusOK)
}
