package afip

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"

	"github.com/welook-io/mercure-sub001/internal/domain"
	"github.com/welook-io/mercure-sub001/internal/domain/afip"
	pkgafip "github.com/welook-io/mercure-sub001/pkg/afip"
	"github.com/welook-io/mercure-sub001/pkg/logger"
)

// WSFEClient cliente del servicio de facturación electrónica (WSFEv1).
// Implementa afip.InvoiceService.
//
// Contrato de numeración: cada emisión consulta el último comprobante
// autorizado y envía último+1. Esa secuencia chequear-y-actuar corre contra
// estado que es propiedad de AFIP, así que el caller debe serializar las
// emisiones por par (punto de venta, tipo); ver afip.InvoiceService.
type WSFEClient struct {
	store       afip.CredentialStore
	auth        afip.Authenticator
	log         *logger.Logger
	transport   *soapTransport
	urlOverride string // solo para tests
}

// WSFEOption opción de construcción del cliente.
type WSFEOption func(*WSFEClient)

// WithWSFEHTTPClient reemplaza el http.Client.
func WithWSFEHTTPClient(c *http.Client) WSFEOption {
	return func(w *WSFEClient) { w.transport = newSOAPTransport(c) }
}

// WithWSFEURL fija el endpoint, ignorando el ambiente. Para tests.
func WithWSFEURL(url string) WSFEOption {
	return func(w *WSFEClient) { w.urlOverride = url }
}

// NewWSFEClient construye el cliente WSFE sobre el almacén de identidad y el
// autenticador WSAA.
func NewWSFEClient(store afip.CredentialStore, auth afip.Authenticator, log *logger.Logger, opts ...WSFEOption) *WSFEClient {
	w := &WSFEClient{
		store:     store,
		auth:      auth,
		log:       log,
		transport: newSOAPTransport(nil),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// LastVoucherNumber devuelve el último número de comprobante autorizado para
// el par (punto de venta, tipo). Devuelve 0 si nunca se emitió sobre ese par.
// Sin efectos: se puede (y se debe) consultar antes de cada emisión; cachear
// este valor es inseguro porque otro proceso puede avanzarlo.
func (w *WSFEClient) LastVoucherNumber(ctx context.Context, pointOfSale int, invoiceType pkgafip.InvoiceType) (int64, error) {
	if !invoiceType.Valid() {
		return 0, fmt.Errorf("%w: tipo de comprobante %q", domain.ErrInvalidInput, invoiceType)
	}
	identity, err := w.store.Load(ctx)
	if err != nil {
		return 0, err
	}

	last, errs, err := w.lastVoucher(ctx, identity, pointOfSale, invoiceType.Code())
	if err != nil {
		return 0, err
	}
	// Sesión vencida entre el chequeo del cache y el uso: renovar una vez.
	if isAuthRejection(errs) {
		w.auth.Invalidate(ServiceWSFE)
		if last, errs, err = w.lastVoucher(ctx, identity, pointOfSale, invoiceType.Code()); err != nil {
			return 0, err
		}
	}
	if len(errs) > 0 {
		return 0, fmt.Errorf("%w: FECompUltimoAutorizado: %v", domain.ErrAuthorityFault, formatServiceErrors(errs))
	}
	return last, nil
}

func (w *WSFEClient) lastVoucher(ctx context.Context, identity *afip.SigningIdentity, pointOfSale, typeCode int) (int64, []afip.ServiceError, error) {
	auth, err := w.authHeader(ctx, identity)
	if err != nil {
		return 0, nil, err
	}
	env, err := w.call(ctx, identity, "FECompUltimoAutorizado", &feCompUltimoAutorizadoRequest{
		Xmlns:    wsfeServiceNS,
		Auth:     auth,
		PtoVta:   pointOfSale,
		CbteTipo: typeCode,
	})
	if err != nil {
		return 0, nil, err
	}
	if env.Body.UltimoAutorizado == nil {
		return 0, nil, fmt.Errorf("%w: respuesta FECompUltimoAutorizado vacía", domain.ErrAuthorityFault)
	}
	result := env.Body.UltimoAutorizado.Result
	return result.CbteNro, result.Errors.toDomain(), nil
}

// CreateInvoice emite un comprobante: consulta el último número autorizado,
// arma la solicitud FECAESolicitar para último+1 con los importes redondeados
// a dos decimales y la envía. Exactamente un intento de autorización por
// llamada: no hay reintento interno, porque tras un error de transporte el
// número pudo o no haber sido consumido. En ese caso el caller debe consultar
// LastVoucherNumber antes de decidir reenviar.
//
// La única excepción es un rechazo por sesión vencida (códigos 600-602), que
// no consume numeración: se renueva la sesión y se repite la secuencia
// completa (incluida la re-consulta del último número) una sola vez.
func (w *WSFEClient) CreateInvoice(ctx context.Context, req *afip.InvoiceRequest) (*afip.AuthorizationResult, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: solicitud nula", domain.ErrInvalidInput)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	identity, err := w.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	result, err := w.createOnce(ctx, identity, req)
	if err != nil {
		return nil, err
	}
	if !result.Success && isAuthRejection(result.Errors) {
		w.log.Warn().Msg("wsfe: sesión rechazada, renovando credenciales y reintentando una vez")
		w.auth.Invalidate(ServiceWSFE)
		return w.createOnce(ctx, identity, req)
	}
	return result, nil
}

func (w *WSFEClient) createOnce(ctx context.Context, identity *afip.SigningIdentity, req *afip.InvoiceRequest) (*afip.AuthorizationResult, error) {
	auth, err := w.authHeader(ctx, identity)
	if err != nil {
		return nil, err
	}

	last, errs, err := w.lastVoucher(ctx, identity, req.PointOfSale, req.InvoiceType.Code())
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		if isAuthRejection(errs) {
			// Devolver como rechazo para que CreateInvoice dispare la renovación.
			return &afip.AuthorizationResult{Success: false, Errors: errs}, nil
		}
		return nil, fmt.Errorf("%w: FECompUltimoAutorizado: %v", domain.ErrAuthorityFault, formatServiceErrors(errs))
	}
	nextNumber := last + 1

	neto, iva, total := req.RoundedAmounts()
	detail := fecaeDetRequest{
		Concepto:   req.Concept,
		DocTipo:    req.DocType,
		DocNro:     pkgafip.NormalizeCUIT(req.DocNumber),
		CbteDesde:  nextNumber,
		CbteHasta:  nextNumber,
		CbteFch:    req.InvoiceDate,
		ImpTotal:   total.StringFixed(2),
		ImpTotConc: "0.00",
		ImpNeto:    neto.StringFixed(2),
		ImpOpEx:    "0.00",
		ImpTrib:    "0.00",
		ImpIVA:     iva.StringFixed(2),

		FchServDesde: req.ServiceFrom,
		FchServHasta: req.ServiceTo,
		FchVtoPago:   req.PaymentDueDate,

		MonId:    pkgafip.CurrencyPES,
		MonCotiz: pkgafip.CurrencyExchangeUnit,
		Iva: feIvaList{AlicIva: []feAlicIva{{
			Id:      pkgafip.IVARate21,
			BaseImp: neto.StringFixed(2),
			Importe: iva.StringFixed(2),
		}}},
	}

	w.log.Info().
		Int("pto_vta", req.PointOfSale).
		Str("cbte_tipo", string(req.InvoiceType)).
		Int64("cbte_nro", nextNumber).
		Str("imp_total", total.StringFixed(2)).
		Msg("wsfe: solicitando CAE")

	env, err := w.call(ctx, identity, "FECAESolicitar", &fecaeSolicitarRequest{
		Xmlns: wsfeServiceNS,
		Auth:  auth,
		FeCAEReq: feCAEReq{
			FeCabReq: feCabReq{CantReg: 1, PtoVta: req.PointOfSale, CbteTipo: req.InvoiceType.Code()},
			FeDetReq: feDetReq{Detail: []fecaeDetRequest{detail}},
		},
	})
	if err != nil {
		return nil, err
	}
	return interpretCAEResponse(env, nextNumber)
}

// SalesPoints lista los puntos de venta habilitados con su estado de bloqueo.
func (w *WSFEClient) SalesPoints(ctx context.Context) ([]afip.SalesPoint, error) {
	identity, err := w.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	auth, err := w.authHeader(ctx, identity)
	if err != nil {
		return nil, err
	}
	env, err := w.call(ctx, identity, "FEParamGetPtosVenta", &feParamGetPtosVentaRequest{
		Xmlns: wsfeServiceNS,
		Auth:  auth,
	})
	if err != nil {
		return nil, err
	}
	if env.Body.PtosVenta == nil {
		return nil, fmt.Errorf("%w: respuesta FEParamGetPtosVenta vacía", domain.ErrAuthorityFault)
	}
	result := env.Body.PtosVenta.Result
	if errs := result.Errors.toDomain(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: FEParamGetPtosVenta: %v", domain.ErrAuthorityFault, formatServiceErrors(errs))
	}

	var points []afip.SalesPoint
	if result.ResultGet != nil {
		for _, p := range result.ResultGet.PtoVenta {
			points = append(points, afip.SalesPoint{
				Number:       p.Nro,
				EmissionType: p.EmisionTipo,
				Blocked:      p.Bloqueado == "S",
				DroppedDate:  p.FchBaja,
			})
		}
	}
	return points, nil
}

// Health ejecuta FEDummy, el sondeo sin autenticación que reporta el estado de
// los tres subsistemas del WSFE.
func (w *WSFEClient) Health(ctx context.Context) (*afip.ServiceHealth, error) {
	identity, err := w.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	env, err := w.call(ctx, identity, "FEDummy", &feDummyRequest{Xmlns: wsfeServiceNS})
	if err != nil {
		return nil, err
	}
	if env.Body.Dummy == nil {
		return nil, fmt.Errorf("%w: respuesta FEDummy vacía", domain.ErrAuthorityFault)
	}
	result := env.Body.Dummy.Result
	return &afip.ServiceHealth{
		AppServer:  result.AppServer == "OK",
		DbServer:   result.DbServer == "OK",
		AuthServer: result.AuthServer == "OK",
	}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// authHeader obtiene credenciales de sesión vigentes y arma el bloque Auth.
func (w *WSFEClient) authHeader(ctx context.Context, identity *afip.SigningIdentity) (feAuth, error) {
	cred, err := w.auth.Credentials(ctx, ServiceWSFE)
	if err != nil {
		return feAuth{}, err
	}
	return feAuth{Token: cred.Token, Sign: cred.Sign, Cuit: identity.CUIT}, nil
}

// call serializa el body, lo envía y decodifica el envelope de respuesta.
// Un SOAP Fault se devuelve como error (forma (a) del intérprete): no hay
// datos de negocio que rescatar.
func (w *WSFEClient) call(ctx context.Context, identity *afip.SigningIdentity, operation string, body interface{}) (*wsfeResponseEnvelope, error) {
	url := w.urlOverride
	if url == "" {
		var err error
		if url, err = WSFEURL(identity.Environment); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
		}
	}

	envelope, err := marshalEnvelope(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}
	rawBody, err := w.transport.post(ctx, url, wsfeActionBase+operation, envelope)
	if err != nil {
		return nil, err
	}

	var env wsfeResponseEnvelope
	if err := xml.Unmarshal(rawBody, &env); err != nil {
		return nil, fmt.Errorf("%w: respuesta WSFE no parseable: %v", domain.ErrTransport, err)
	}
	if env.Body.Fault != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthorityFault, env.Body.Fault)
	}
	env.raw = rawBody
	return &env, nil
}

// interpretCAEResponse clasifica la respuesta de FECAESolicitar en aprobación
// o rechazo (formas (c) y (b)). Las observaciones acompañan ambos desenlaces
// y siempre se devuelven: en una aprobación pueden ser advertencias blandas.
func interpretCAEResponse(env *wsfeResponseEnvelope, assignedNumber int64) (*afip.AuthorizationResult, error) {
	if env.Body.CAESolicitar == nil {
		return nil, fmt.Errorf("%w: respuesta FECAESolicitar vacía", domain.ErrAuthorityFault)
	}
	result := env.Body.CAESolicitar.Result

	out := &afip.AuthorizationResult{
		Errors:      result.Errors.toDomain(),
		RawResponse: string(env.raw),
	}

	var det *fecaeDetResponse
	if result.FeDetResp != nil && len(result.FeDetResp.Detail) > 0 {
		det = &result.FeDetResp.Detail[0]
		out.Observations = det.Observaciones.toDomain()
	}

	approved := result.FeCabResp != nil && result.FeCabResp.Resultado == "A" &&
		det != nil && det.CAE != ""
	if approved {
		out.Success = true
		out.CAE = det.CAE
		out.CAEExpiration = det.CAEFchVto
		out.InvoiceNumber = assignedNumber
		return out, nil
	}

	if len(out.Errors) == 0 && det == nil {
		return nil, fmt.Errorf("%w: FECAESolicitar sin resultado ni errores: %s",
			domain.ErrAuthorityFault, truncate(env.raw, 512))
	}
	return out, nil
}

func formatServiceErrors(errs []afip.ServiceError) string {
	s := ""
	for i, e := range errs {
		if i > 0 {
			s += "; "
		}
		s += fmt.Sprintf("[%d] %s", e.Code, e.Message)
	}
	return s
}
