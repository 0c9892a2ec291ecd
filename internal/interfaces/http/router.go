package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Stock StockService
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1")

	inv := api.Group("/inventory")
	handler := NewInventoryHandler(deps.Stock)
	inv.Get("/", handler.List)
	inv.Post("/", handler.Create)
	inv.Post("/reserve", handler.Reserve)
	inv.Post("/release", handler.Release)
	inv.Post("/adjust", handler.Adjust)
	inv.Get("/:productId", handler.GetByProductID)
	inv.Get("/:productId/movements", handler.Movements)
}
