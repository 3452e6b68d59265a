package http

import (
	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Facturacion FacturacionService
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Facturación electrónica AFIP. El resto del back office (pantallas,
	// liquidaciones, PDFs) vive en otro servicio y consume estas rutas.
	afipGroup := api.Group("/afip")
	afipHandler := NewAfipHandler(deps.Facturacion)
	afipGroup.Post("/facturas", afipHandler.IssueInvoice)
	afipGroup.Get("/comprobantes/ultimo", afipHandler.LastVoucher)
	afipGroup.Get("/puntos-venta", afipHandler.SalesPoints)
	afipGroup.Get("/status", afipHandler.Status)
}
