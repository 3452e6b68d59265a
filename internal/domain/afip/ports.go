package afip

import (
	"context"

	pkgafip "github.com/welook-io/mercure-sub001/pkg/afip"
)

// CredentialStore puerto de salida hacia el almacén de la identidad firmante
// (tabla de configuración en Postgres o variables de entorno). El núcleo la
// lee una vez por proceso y la cachea; Invalidate fuerza una relectura en la
// próxima carga (por ejemplo tras rotar el certificado).
type CredentialStore interface {
	Load(ctx context.Context) (*SigningIdentity, error)
	Invalidate()
}

// Authenticator puerto del autenticador de sesiones WSAA. Credentials devuelve
// un par token/sign vigente para el servicio indicado, reusando el cache si la
// credencial no expiró; solo hay intercambio de red en cache miss.
type Authenticator interface {
	Credentials(ctx context.Context, service string) (*SessionCredential, error)
	HasValidCredentials(service string) bool
	Invalidate(service string)
}

// InvoiceService puerto del cliente WSFE.
//
// Obligación del caller: la emisión debe serializarse por par
// (punto de venta, tipo de comprobante). CreateInvoice lee el último número
// autorizado y envía último+1 en una secuencia chequear-y-actuar que el núcleo
// no puede hacer transaccional: dos emisiones concurrentes sobre el mismo par
// leerán el mismo último número y AFIP rechazará una por duplicada.
// Tras un error de transporte durante el envío el resultado es ambiguo:
// consultar LastVoucherNumber antes de decidir reenviar.
type InvoiceService interface {
	LastVoucherNumber(ctx context.Context, pointOfSale int, invoiceType pkgafip.InvoiceType) (int64, error)
	CreateInvoice(ctx context.Context, req *InvoiceRequest) (*AuthorizationResult, error)
	SalesPoints(ctx context.Context) ([]SalesPoint, error)
	Health(ctx context.Context) (*ServiceHealth, error)
}
