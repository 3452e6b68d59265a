// Package afip contiene catálogos y validaciones alineados al manual del
// desarrollador del WS de Facturación Electrónica AFIP (WSFEv1) RG 4291.
package afip

// =============================================================================
// Tipos de comprobante (FEParamGetTiposCbte)
// El servicio identifica cada letra de factura con un código numérico.
// =============================================================================

// InvoiceType letra del comprobante (A, B o C).
type InvoiceType string

const (
	InvoiceTypeA InvoiceType = "A" // Factura A: responsable inscripto a responsable inscripto
	InvoiceTypeB InvoiceType = "B" // Factura B: responsable inscripto a consumidor final/exento
	InvoiceTypeC InvoiceType = "C" // Factura C: monotributista o exento emisor
)

// InvoiceTypeCodes códigos AFIP por letra de comprobante.
var InvoiceTypeCodes = map[InvoiceType]int{
	InvoiceTypeA: 1,
	InvoiceTypeB: 6,
	InvoiceTypeC: 11,
}

// Code devuelve el código AFIP del tipo de comprobante (0 si la letra no existe).
func (t InvoiceType) Code() int {
	return InvoiceTypeCodes[t]
}

// Valid indica si la letra de comprobante está soportada.
func (t InvoiceType) Valid() bool {
	_, ok := InvoiceTypeCodes[t]
	return ok
}

// =============================================================================
// Conceptos (FEParamGetTiposConcepto)
// =============================================================================

const (
	ConceptProducts            = 1 // Productos
	ConceptServices            = 2 // Servicios
	ConceptProductsAndServices = 3 // Productos y servicios
)

// ValidConceptCodes conceptos aceptados por el WSFE.
var ValidConceptCodes = map[int]bool{
	ConceptProducts: true, ConceptServices: true, ConceptProductsAndServices: true,
}

// ConceptRequiresServiceDates indica si el concepto exige FchServDesde/FchServHasta/FchVtoPago.
func ConceptRequiresServiceDates(concept int) bool {
	return concept == ConceptServices || concept == ConceptProductsAndServices
}

// =============================================================================
// Tipos de documento del receptor (FEParamGetTiposDoc)
// =============================================================================

const (
	DocTypeCUIT            = 80 // CUIT
	DocTypeCUIL            = 86 // CUIL
	DocTypeDNI             = 96 // DNI
	DocTypeConsumidorFinal = 99 // Consumidor final sin identificar
)

// ValidDocTypeCodes tipos de documento de receptor soportados.
var ValidDocTypeCodes = map[int]bool{
	DocTypeCUIT: true, DocTypeCUIL: true, DocTypeDNI: true, DocTypeConsumidorFinal: true,
}

// =============================================================================
// Alícuotas de IVA (FEParamGetTiposIva)
// =============================================================================

const (
	IVARate0    = 3 // 0%
	IVARate10_5 = 4 // 10,5%
	IVARate21   = 5 // 21% (alícuota general, la usada por la liquidación de fletes)
	IVARate27   = 6 // 27%
)

// =============================================================================
// Moneda
// Las liquidaciones se facturan siempre en pesos con cotización unitaria.
// =============================================================================

const (
	CurrencyPES          = "PES" // Peso argentino
	CurrencyExchangeUnit = "1"   // MonCotiz para moneda local
)
