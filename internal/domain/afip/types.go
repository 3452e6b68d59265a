// Package afip define el modelo de dominio del cliente de facturación
// electrónica AFIP: identidad firmante, credenciales de sesión WSAA,
// solicitud de comprobante y resultado de autorización WSFE.
package afip

import (
	"crypto"
	"crypto/x509"
	"time"

	"github.com/shopspring/decimal"

	pkgafip "github.com/welook-io/mercure-sub001/pkg/afip"
)

// Environment ambiente AFIP contra el que opera el cliente.
// Homologación y producción usan hosts distintos; nunca se mezclan.
type Environment string

const (
	EnvTesting    Environment = "testing"    // homologación (wsaahomo / wswhomo)
	EnvProduction Environment = "production" // producción
)

// Valid indica si el ambiente es uno de los soportados.
func (e Environment) Valid() bool {
	return e == EnvTesting || e == EnvProduction
}

// SigningIdentity identidad firmante del emisor: certificado X.509, llave
// privada, CUIT y ambiente. Inmutable una vez cargada; recargarla invalida
// todas las credenciales de sesión cacheadas.
type SigningIdentity struct {
	Certificate *x509.Certificate
	PrivateKey  crypto.PrivateKey
	CUIT        string // normalizado, sin guiones
	Environment Environment
}

// SessionCredential par token/sign emitido por el WSAA para un servicio.
// Solo es usable mientras now < ExpirationTime.
type SessionCredential struct {
	Token          string
	Sign           string
	ExpirationTime time.Time
}

// Valid indica si la credencial sigue vigente en el instante dado.
func (c *SessionCredential) Valid(now time.Time) bool {
	return c != nil && now.Before(c.ExpirationTime)
}

// InvoiceRequest solicitud de emisión de un comprobante. La construye el
// caller con los montos ya calculados; el cliente la valida, redondea a dos
// decimales y la transmite tal cual. Inmutable una vez enviada.
type InvoiceRequest struct {
	InvoiceType pkgafip.InvoiceType // A, B o C
	PointOfSale int                 // punto de venta habilitado en AFIP
	Concept     int                 // 1 productos, 2 servicios, 3 ambos
	DocType     int                 // 80 CUIT, 86 CUIL, 96 DNI, 99 consumidor final
	DocNumber   string              // documento del receptor, con o sin guiones
	InvoiceDate string              // fecha del comprobante, formato AAAAMMDD

	NetAmount   decimal.Decimal // neto gravado
	IVAAmount   decimal.Decimal // IVA (alícuota general 21%)
	TotalAmount decimal.Decimal // neto + IVA

	// Solo para conceptos de servicios (formato AAAAMMDD; vacío = omitir).
	ServiceFrom    string
	ServiceTo      string
	PaymentDueDate string
}

// ServiceError error codificado devuelto por el WSFE (arreglo Errors/Err).
type ServiceError struct {
	Code    int
	Message string
}

// ServiceObservation observación codificada del WSFE (Observaciones/Obs).
// Puede acompañar tanto aprobaciones como rechazos; siempre se devuelve.
type ServiceObservation struct {
	Code    int
	Message string
}

// AuthorizationResult resultado de una solicitud de CAE. Se construye una
// sola vez por envío y no se muta; RawResponse conserva el XML completo
// para auditoría. La persistencia es responsabilidad del caller.
type AuthorizationResult struct {
	Success       bool
	CAE           string // código de autorización electrónico
	CAEExpiration string // vencimiento del CAE, formato AAAAMMDD
	InvoiceNumber int64  // número de comprobante asignado
	Errors        []ServiceError
	Observations  []ServiceObservation
	RawResponse   string
}

// SalesPoint punto de venta informado por FEParamGetPtosVenta.
type SalesPoint struct {
	Number       int
	EmissionType string // CAE, CAEA, etc.
	Blocked      bool
	DroppedDate  string // fecha de baja (vacío si activo)
}

// ServiceHealth estado de los tres subsistemas reportados por FEDummy.
type ServiceHealth struct {
	AppServer  bool
	DbServer   bool
	AuthServer bool
}

// OK indica si los tres subsistemas están operativos.
func (h ServiceHealth) OK() bool {
	return h.AppServer && h.DbServer && h.AuthServer
}
