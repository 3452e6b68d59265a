// Package billing orquesta la emisión de facturas electrónicas: valida la
// solicitud, delega en el cliente WSFE y mapea el resultado a DTOs.
package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/welook-io/mercure-sub001/internal/application/dto"
	"github.com/welook-io/mercure-sub001/internal/domain"
	"github.com/welook-io/mercure-sub001/internal/domain/afip"
	infraafip "github.com/welook-io/mercure-sub001/internal/infrastructure/afip"
	pkgafip "github.com/welook-io/mercure-sub001/pkg/afip"
	"github.com/welook-io/mercure-sub001/pkg/logger"
)

// FacturacionUseCase caso de uso de facturación electrónica AFIP.
//
// No persiste nada: la liquidación facturada, el CAE y el XML de auditoría
// vuelven al caller, que es quien decide dónde guardarlos. Tampoco serializa
// emisiones: quien emita concurrentemente sobre el mismo (punto de venta,
// tipo) debe encolar por par aguas arriba.
type FacturacionUseCase struct {
	invoices afip.InvoiceService
	auth     afip.Authenticator
	store    afip.CredentialStore
	log      *logger.Logger
}

// NewFacturacionUseCase construye el caso de uso.
func NewFacturacionUseCase(invoices afip.InvoiceService, auth afip.Authenticator, store afip.CredentialStore, log *logger.Logger) *FacturacionUseCase {
	return &FacturacionUseCase{invoices: invoices, auth: auth, store: store, log: log}
}

// IssueInvoice emite un comprobante y devuelve el resultado de autorización.
// Cada operación lleva un operation_id propio que acompaña los logs y la
// respuesta, para correlacionar con el XML de auditoría.
func (uc *FacturacionUseCase) IssueInvoice(ctx context.Context, in dto.IssueInvoiceRequest) (*dto.IssueInvoiceResponse, error) {
	opID := uuid.NewString()
	log := uc.log.With().Str("operation_id", opID).Logger()

	req := &afip.InvoiceRequest{
		InvoiceType:    pkgafip.InvoiceType(in.InvoiceType),
		PointOfSale:    in.PointOfSale,
		Concept:        in.Concept,
		DocType:        in.DocType,
		DocNumber:      in.DocNumber,
		InvoiceDate:    in.InvoiceDate,
		NetAmount:      decimal.NewFromFloat(in.NetAmount),
		IVAAmount:      decimal.NewFromFloat(in.IvaAmount),
		TotalAmount:    decimal.NewFromFloat(in.TotalAmount),
		ServiceFrom:    in.ServiceFrom,
		ServiceTo:      in.ServiceTo,
		PaymentDueDate: in.PaymentDueDate,
	}

	result, err := uc.invoices.CreateInvoice(ctx, req)
	if err != nil {
		log.Error().Err(err).
			Int("pto_vta", in.PointOfSale).
			Str("cbte_tipo", in.InvoiceType).
			Msg("emisión de factura fallida")
		return nil, err
	}

	out := &dto.IssueInvoiceResponse{
		Success:      result.Success,
		OperationID:  opID,
		Errors:       toCodedMessages(result.Errors),
		Observations: toCodedObservations(result.Observations),
		RawResponse:  result.RawResponse,
	}
	if result.Success {
		out.Cae = result.CAE
		out.CaeExpiration = formatCAEDate(result.CAEExpiration)
		out.InvoiceNumber = result.InvoiceNumber
		out.FormattedNumber = FormatInvoiceNumber(in.PointOfSale, result.InvoiceNumber)
		log.Info().
			Str("cae", result.CAE).
			Str("nro", out.FormattedNumber).
			Msg("factura autorizada")
	} else {
		log.Warn().
			Interface("errores", out.Errors).
			Msg("factura rechazada por AFIP")
	}
	return out, nil
}

// LastVoucher consulta el último comprobante autorizado para el par.
func (uc *FacturacionUseCase) LastVoucher(ctx context.Context, pointOfSale int, invoiceType string) (*dto.LastVoucherResponse, error) {
	t := pkgafip.InvoiceType(invoiceType)
	if !t.Valid() {
		return nil, fmt.Errorf("%w: tipo de comprobante %q", domain.ErrInvalidInput, invoiceType)
	}
	last, err := uc.invoices.LastVoucherNumber(ctx, pointOfSale, t)
	if err != nil {
		return nil, err
	}
	return &dto.LastVoucherResponse{
		PointOfSale: pointOfSale,
		InvoiceType: invoiceType,
		LastNumber:  last,
	}, nil
}

// SalesPoints lista los puntos de venta habilitados.
func (uc *FacturacionUseCase) SalesPoints(ctx context.Context) ([]dto.SalesPointResponse, error) {
	points, err := uc.invoices.SalesPoints(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SalesPointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, dto.SalesPointResponse{
			Number:       p.Number,
			EmissionType: p.EmissionType,
			Blocked:      p.Blocked,
			DroppedDate:  p.DroppedDate,
		})
	}
	return out, nil
}

// Status arma el estado agregado: presencia de configuración firmante, cache
// de sesión y el FEDummy del WSFE. Un fallo del sondeo no es error de la
// operación: se refleja como subsistemas caídos.
func (uc *FacturacionUseCase) Status(ctx context.Context) *dto.AfipStatusResponse {
	out := &dto.AfipStatusResponse{Status: "error"}

	identity, err := uc.store.Load(ctx)
	if err != nil {
		uc.log.Warn().Err(err).Msg("status: configuración AFIP no disponible")
		out.Config = dto.AfipConfigStatus{Environment: "unknown"}
	} else {
		out.Config = dto.AfipConfigStatus{
			HasCert:     true,
			HasKey:      true,
			Cuit:        identity.CUIT,
			Environment: string(identity.Environment),
		}
	}

	out.Credentials.Cached = uc.auth.HasValidCredentials(infraafip.ServiceWSFE)

	health, err := uc.invoices.Health(ctx)
	if err != nil {
		uc.log.Warn().Err(err).Msg("status: FEDummy fallido")
		health = &afip.ServiceHealth{}
	}
	out.Wsfe = dto.WsfeStatus{
		AppServer:  health.AppServer,
		DbServer:   health.DbServer,
		AuthServer: health.AuthServer,
	}

	if out.Config.HasCert && out.Config.HasKey && health.OK() {
		out.Status = "ok"
	}
	return out
}

// FormatInvoiceNumber formatea el número completo del comprobante:
// punto de venta a 4 dígitos y número a 8 (0004-00000042).
func FormatInvoiceNumber(pointOfSale int, number int64) string {
	return fmt.Sprintf("%04d-%08d", pointOfSale, number)
}

// formatCAEDate convierte AAAAMMDD a AAAA-MM-DD; devuelve el valor tal cual
// si no tiene la forma esperada.
func formatCAEDate(s string) string {
	if len(s) != 8 {
		return s
	}
	return s[0:4] + "-" + s[4:6] + "-" + s[6:8]
}

func toCodedMessages(errs []afip.ServiceError) []dto.CodedMessage {
	if len(errs) == 0 {
		return nil
	}
	out := make([]dto.CodedMessage, 0, len(errs))
	for _, e := range errs {
		out = append(out, dto.CodedMessage{Code: e.Code, Message: e.Message})
	}
	return out
}

func toCodedObservations(obs []afip.ServiceObservation) []dto.CodedMessage {
	if len(obs) == 0 {
		return nil
	}
	out := make([]dto.CodedMessage, 0, len(obs))
	for _, o := range obs {
		out = append(out, dto.CodedMessage{Code: o.Code, Message: o.Message})
	}
	return out
}
