package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/welook-io/mercure-sub001/internal/application/dto"
	"github.com/welook-io/mercure-sub001/internal/domain"
)

// FacturacionService operaciones de facturación expuestas por la API.
// Se define como puerto para poder inyectar un mock en los tests.
type FacturacionService interface {
	IssueInvoice(ctx context.Context, in dto.IssueInvoiceRequest) (*dto.IssueInvoiceResponse, error)
	LastVoucher(ctx context.Context, pointOfSale int, invoiceType string) (*dto.LastVoucherResponse, error)
	SalesPoints(ctx context.Context) ([]dto.SalesPointResponse, error)
	Status(ctx context.Context) *dto.AfipStatusResponse
}

// AfipHandler maneja las peticiones HTTP de facturación electrónica.
type AfipHandler struct {
	svc FacturacionService
}

// NewAfipHandler construye el handler.
func NewAfipHandler(svc FacturacionService) *AfipHandler {
	return &AfipHandler{svc: svc}
}

// IssueInvoice emite una factura electrónica y devuelve el CAE.
// POST /api/afip/facturas
//
// Un rechazo de AFIP no es un error HTTP: la respuesta llega con 200 y
// success=false más los errores codificados, para que el back office pueda
// reaccionar a códigos concretos.
func (h *AfipHandler) IssueInvoice(c *fiber.Ctx) error {
	var in dto.IssueInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.svc.IssueInvoice(c.Context(), in)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(result)
}

// LastVoucher devuelve el último comprobante autorizado para un par
// (punto de venta, tipo).
// GET /api/afip/comprobantes/ultimo?pto_vta=4&cbte_tipo=A
func (h *AfipHandler) LastVoucher(c *fiber.Ctx) error {
	ptoVta := c.QueryInt("pto_vta")
	tipo := c.Query("cbte_tipo")
	if ptoVta <= 0 || tipo == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "pto_vta y cbte_tipo son requeridos"})
	}
	result, err := h.svc.LastVoucher(c.Context(), ptoVta, tipo)
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(result)
}

// SalesPoints lista los puntos de venta habilitados en AFIP.
// GET /api/afip/puntos-venta
func (h *AfipHandler) SalesPoints(c *fiber.Ctx) error {
	points, err := h.svc.SalesPoints(c.Context())
	if err != nil {
		return mapDomainError(c, err)
	}
	return c.JSON(points)
}

// Status devuelve el estado agregado de la integración (config, sesión, FEDummy).
// GET /api/afip/status
func (h *AfipHandler) Status(c *fiber.Ctx) error {
	return c.JSON(h.svc.Status(c.Context()))
}

// mapDomainError traduce la taxonomía de errores del dominio a HTTP:
// entrada inválida 400, configuración 500, transporte y fault de AFIP 502.
func mapDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrConfiguration):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "AFIP_CONFIG", Message: err.Error()})
	case errors.Is(err, domain.ErrTransport):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "AFIP_TRANSPORT", Message: err.Error()})
	case errors.Is(err, domain.ErrAuthorityFault):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "AFIP_FAULT", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
