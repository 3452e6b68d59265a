package domain

import "errors"

// Errores de dominio (sin dependencias externas).
//
// La taxonomía distingue tres familias que el integrador necesita separar:
//   - ErrConfiguration: certificado/llave/CUIT ausentes o malformados. Fatal,
//     no reintentable, se detecta antes de cualquier llamada de red.
//   - ErrTransport: fallo de red, timeout o respuesta HTTP inválida. El caller
//     puede reintentar, pero nunca una emisión de factura sin consultar antes
//     el último comprobante autorizado (el resultado del envío es ambiguo).
//   - ErrAuthorityFault: SOAP Fault del organismo. Es un rechazo del lado de
//     AFIP, distinto de un problema de red o de credenciales locales.
var (
	ErrConfiguration  = errors.New("configuración AFIP ausente o inválida")
	ErrTransport      = errors.New("error de transporte con el servicio AFIP")
	ErrAuthorityFault = errors.New("el servicio AFIP devolvió un fault")
	ErrInvalidInput   = errors.New("entrada inválida")
	ErrNotFound       = errors.New("recurso no encontrado")
)
