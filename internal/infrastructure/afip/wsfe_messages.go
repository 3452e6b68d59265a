package afip

import (
	"encoding/xml"

	"github.com/welook-io/mercure-sub001/internal/domain/afip"
)

// Namespace y SOAPAction del WSFEv1. Las operaciones se serializan con el
// namespace por defecto del servicio sobre el elemento raíz de cada body.
const (
	wsfeServiceNS  = "http://ar.gov.afip.dif.FEV1/"
	wsfeActionBase = "http://ar.gov.afip.dif.FEV1/"
)

// ── Requests ──────────────────────────────────────────────────────────────────

// feAuth credenciales de sesión que encabezan toda operación autenticada.
type feAuth struct {
	Token string `xml:"Token"`
	Sign  string `xml:"Sign"`
	Cuit  string `xml:"Cuit"`
}

// feCompUltimoAutorizadoRequest consulta del último comprobante autorizado
// para un (punto de venta, tipo).
type feCompUltimoAutorizadoRequest struct {
	XMLName  xml.Name `xml:"FECompUltimoAutorizado"`
	Xmlns    string   `xml:"xmlns,attr"`
	Auth     feAuth   `xml:"Auth"`
	PtoVta   int      `xml:"PtoVta"`
	CbteTipo int      `xml:"CbteTipo"`
}

// fecaeSolicitarRequest solicitud de CAE. Siempre lote unitario: CantReg=1 y
// CbteDesde = CbteHasta = último autorizado + 1.
type fecaeSolicitarRequest struct {
	XMLName  xml.Name `xml:"FECAESolicitar"`
	Xmlns    string   `xml:"xmlns,attr"`
	Auth     feAuth   `xml:"Auth"`
	FeCAEReq feCAEReq `xml:"FeCAEReq"`
}

type feCAEReq struct {
	FeCabReq feCabReq `xml:"FeCabReq"`
	FeDetReq feDetReq `xml:"FeDetReq"`
}

type feCabReq struct {
	CantReg  int `xml:"CantReg"`
	PtoVta   int `xml:"PtoVta"`
	CbteTipo int `xml:"CbteTipo"`
}

type feDetReq struct {
	Detail []fecaeDetRequest `xml:"FECAEDetRequest"`
}

// fecaeDetRequest detalle del comprobante. El orden de los campos sigue el
// schema del WSFE; los importes viajan como texto con dos decimales fijos.
type fecaeDetRequest struct {
	Concepto   int    `xml:"Concepto"`
	DocTipo    int    `xml:"DocTipo"`
	DocNro     string `xml:"DocNro"`
	CbteDesde  int64  `xml:"CbteDesde"`
	CbteHasta  int64  `xml:"CbteHasta"`
	CbteFch    string `xml:"CbteFch"`
	ImpTotal   string `xml:"ImpTotal"`
	ImpTotConc string `xml:"ImpTotConc"`
	ImpNeto    string `xml:"ImpNeto"`
	ImpOpEx    string `xml:"ImpOpEx"`
	ImpTrib    string `xml:"ImpTrib"`
	ImpIVA     string `xml:"ImpIVA"`

	// Solo para conceptos de servicios; omitidos cuando no aplican.
	FchServDesde string `xml:"FchServDesde,omitempty"`
	FchServHasta string `xml:"FchServHasta,omitempty"`
	FchVtoPago   string `xml:"FchVtoPago,omitempty"`

	MonId    string    `xml:"MonId"`
	MonCotiz string    `xml:"MonCotiz"`
	Iva      feIvaList `xml:"Iva"`
}

type feIvaList struct {
	AlicIva []feAlicIva `xml:"AlicIva"`
}

// feAlicIva una línea de desglose de IVA: código de alícuota, base imponible e importe.
type feAlicIva struct {
	Id      int    `xml:"Id"`
	BaseImp string `xml:"BaseImp"`
	Importe string `xml:"Importe"`
}

// feParamGetPtosVentaRequest consulta de puntos de venta habilitados.
type feParamGetPtosVentaRequest struct {
	XMLName xml.Name `xml:"FEParamGetPtosVenta"`
	Xmlns   string   `xml:"xmlns,attr"`
	Auth    feAuth   `xml:"Auth"`
}

// feDummyRequest sondeo de vida del servicio; no requiere autenticación.
type feDummyRequest struct {
	XMLName xml.Name `xml:"FEDummy"`
	Xmlns   string   `xml:"xmlns,attr"`
}

// ── Responses ─────────────────────────────────────────────────────────────────

// wsfeResponseEnvelope envelope de respuesta de todas las operaciones WSFE.
// Decodifica por nombre local, tolerante a prefijos de namespace.
type wsfeResponseEnvelope struct {
	// raw conserva el cuerpo completo para auditoría (AuthorizationResult.RawResponse).
	raw []byte `xml:"-"`

	Body struct {
		Fault *soapFault `xml:"Fault"`

		UltimoAutorizado *struct {
			Result feCompUltimoAutorizadoResult `xml:"FECompUltimoAutorizadoResult"`
		} `xml:"FECompUltimoAutorizadoResponse"`

		CAESolicitar *struct {
			Result fecaeSolicitarResult `xml:"FECAESolicitarResult"`
		} `xml:"FECAESolicitarResponse"`

		PtosVenta *struct {
			Result feParamGetPtosVentaResult `xml:"FEParamGetPtosVentaResult"`
		} `xml:"FEParamGetPtosVentaResponse"`

		Dummy *struct {
			Result feDummyResult `xml:"FEDummyResult"`
		} `xml:"FEDummyResponse"`
	} `xml:"Body"`
}

type feCompUltimoAutorizadoResult struct {
	PtoVta   int       `xml:"PtoVta"`
	CbteTipo int       `xml:"CbteTipo"`
	CbteNro  int64     `xml:"CbteNro"`
	Errors   *feErrors `xml:"Errors"`
}

type fecaeSolicitarResult struct {
	FeCabResp *fecaeCabResponse `xml:"FeCabResp"`
	FeDetResp *struct {
		Detail []fecaeDetResponse `xml:"FECAEDetResponse"`
	} `xml:"FeDetResp"`
	Errors *feErrors `xml:"Errors"`
}

type fecaeCabResponse struct {
	Cuit       string `xml:"Cuit"`
	PtoVta     int    `xml:"PtoVta"`
	CbteTipo   int    `xml:"CbteTipo"`
	FchProceso string `xml:"FchProceso"`
	CantReg    int    `xml:"CantReg"`
	Resultado  string `xml:"Resultado"` // A aprobado, R rechazado, P parcial
}

type fecaeDetResponse struct {
	Concepto      int             `xml:"Concepto"`
	DocTipo       int             `xml:"DocTipo"`
	DocNro        string          `xml:"DocNro"`
	CbteDesde     int64           `xml:"CbteDesde"`
	CbteHasta     int64           `xml:"CbteHasta"`
	CbteFch       string          `xml:"CbteFch"`
	Resultado     string          `xml:"Resultado"`
	CAE           string          `xml:"CAE"`
	CAEFchVto     string          `xml:"CAEFchVto"`
	Observaciones *feObservations `xml:"Observaciones"`
}

type feParamGetPtosVentaResult struct {
	ResultGet *struct {
		PtoVenta []fePtoVenta `xml:"PtoVenta"`
	} `xml:"ResultGet"`
	Errors *feErrors `xml:"Errors"`
}

type fePtoVenta struct {
	Nro         int    `xml:"Nro"`
	EmisionTipo string `xml:"EmisionTipo"`
	Bloqueado   string `xml:"Bloqueado"` // S/N
	FchBaja     string `xml:"FchBaja"`
}

type feDummyResult struct {
	AppServer  string `xml:"AppServer"`
	DbServer   string `xml:"DbServer"`
	AuthServer string `xml:"AuthServer"`
}

type feErrors struct {
	Err []feCodeMsg `xml:"Err"`
}

type feObservations struct {
	Obs []feCodeMsg `xml:"Obs"`
}

type feCodeMsg struct {
	Code int    `xml:"Code"`
	Msg  string `xml:"Msg"`
}

// ── Mapeo a dominio ───────────────────────────────────────────────────────────

func (e *feErrors) toDomain() []afip.ServiceError {
	if e == nil {
		return nil
	}
	out := make([]afip.ServiceError, 0, len(e.Err))
	for _, err := range e.Err {
		out = append(out, afip.ServiceError{Code: err.Code, Message: err.Msg})
	}
	return out
}

func (o *feObservations) toDomain() []afip.ServiceObservation {
	if o == nil {
		return nil
	}
	out := make([]afip.ServiceObservation, 0, len(o.Obs))
	for _, obs := range o.Obs {
		out = append(out, afip.ServiceObservation{Code: obs.Code, Message: obs.Msg})
	}
	return out
}

// Códigos de error del WSFE que indican credenciales de sesión inválidas o
// vencidas. Es la única clase de rechazo que se reintenta: renovar la sesión
// no tiene efectos sobre la numeración.
func isAuthRejection(errs []afip.ServiceError) bool {
	for _, e := range errs {
		if e.Code >= 600 && e.Code <= 602 {
			return true
		}
	}
	return false
}
