package dto

// IssueInvoiceRequest solicitud de emisión de factura electrónica.
// Los montos llegan ya calculados por la liquidación; fechas en AAAAMMDD.
type IssueInvoiceRequest struct {
	InvoiceType    string  `json:"invoice_type"`   // A, B o C
	PointOfSale    int     `json:"point_of_sale"`
	Concept        int     `json:"concept"`        // 1 productos, 2 servicios, 3 ambos
	DocType        int     `json:"doc_type"`       // 80 CUIT, 86 CUIL, 96 DNI, 99 CF
	DocNumber      string  `json:"doc_number"`
	InvoiceDate    string  `json:"invoice_date"`   // AAAAMMDD
	NetAmount      float64 `json:"net_amount"`
	IvaAmount      float64 `json:"iva_amount"`
	TotalAmount    float64 `json:"total_amount"`
	ServiceFrom    string  `json:"service_from,omitempty"`
	ServiceTo      string  `json:"service_to,omitempty"`
	PaymentDueDate string  `json:"payment_due_date,omitempty"`
}

// CodedMessage error u observación codificada devuelta por AFIP.
type CodedMessage struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// IssueInvoiceResponse resultado de la emisión.
type IssueInvoiceResponse struct {
	Success         bool           `json:"success"`
	OperationID     string         `json:"operation_id"`
	Cae             string         `json:"cae,omitempty"`
	CaeExpiration   string         `json:"cae_expiration,omitempty"` // AAAA-MM-DD
	InvoiceNumber   int64          `json:"invoice_number,omitempty"`
	FormattedNumber string         `json:"formatted_number,omitempty"` // 0004-00000042
	Errors          []CodedMessage `json:"errors,omitempty"`
	Observations    []CodedMessage `json:"observations,omitempty"`
	RawResponse     string         `json:"raw_response,omitempty"` // XML completo para auditoría
}

// LastVoucherResponse último comprobante autorizado para un (punto de venta, tipo).
type LastVoucherResponse struct {
	PointOfSale int    `json:"point_of_sale"`
	InvoiceType string `json:"invoice_type"`
	LastNumber  int64  `json:"last_number"`
}

// SalesPointResponse punto de venta habilitado en AFIP.
type SalesPointResponse struct {
	Number       int    `json:"number"`
	EmissionType string `json:"emission_type"`
	Blocked      bool   `json:"blocked"`
	DroppedDate  string `json:"dropped_date,omitempty"`
}

// AfipStatusResponse estado agregado de la integración AFIP.
type AfipStatusResponse struct {
	Status      string           `json:"status"` // ok | error
	Config      AfipConfigStatus `json:"config"`
	Credentials CredentialStatus `json:"credentials"`
	Wsfe        WsfeStatus       `json:"wsfe"`
}

// AfipConfigStatus presencia de la configuración firmante.
type AfipConfigStatus struct {
	HasCert     bool   `json:"has_cert"`
	HasKey      bool   `json:"has_key"`
	Cuit        string `json:"cuit,omitempty"`
	Environment string `json:"environment"`
}

// CredentialStatus estado del cache de sesión WSAA.
type CredentialStatus struct {
	Cached bool `json:"cached"`
}

// WsfeStatus estado de los subsistemas reportados por FEDummy.
type WsfeStatus struct {
	AppServer  bool `json:"app_server"`
	DbServer   bool `json:"db_server"`
	AuthServer bool `json:"auth_server"`
}
