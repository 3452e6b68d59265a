package afip

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	pkgafip "github.com/welook-io/mercure-sub001/pkg/afip"
)

// ErrInvalidRequest agrupa errores de validación de la solicitud de comprobante.
var ErrInvalidRequest = errors.New("solicitud de comprobante inválida para AFIP")

// Validate valida la solicitud antes de cualquier llamada de red.
// Reglas: importes positivos y conciliados a dos decimales (neto + IVA = total,
// con redondeo mitad hacia arriba, que es lo que exige el WSFE), códigos de
// catálogo conocidos, fechas en formato AAAAMMDD y fechas de servicio presentes
// cuando el concepto las exige.
func (r *InvoiceRequest) Validate() error {
	var errs []error

	if !r.InvoiceType.Valid() {
		errs = append(errs, fmt.Errorf("tipo de comprobante desconocido: %q", r.InvoiceType))
	}
	if r.PointOfSale <= 0 {
		errs = append(errs, fmt.Errorf("punto de venta debe ser positivo: %d", r.PointOfSale))
	}
	if !pkgafip.ValidConceptCodes[r.Concept] {
		errs = append(errs, fmt.Errorf("concepto desconocido: %d", r.Concept))
	}
	if !pkgafip.ValidDocTypeCodes[r.DocType] {
		errs = append(errs, fmt.Errorf("tipo de documento desconocido: %d", r.DocType))
	}
	if r.DocType != pkgafip.DocTypeConsumidorFinal && pkgafip.NormalizeCUIT(r.DocNumber) == "" {
		errs = append(errs, errors.New("número de documento del receptor requerido"))
	}

	if !r.TotalAmount.IsPositive() {
		errs = append(errs, fmt.Errorf("importe total debe ser mayor a cero: %s", r.TotalAmount))
	}
	if r.NetAmount.IsNegative() || r.IVAAmount.IsNegative() {
		errs = append(errs, errors.New("importes neto e IVA no pueden ser negativos"))
	}
	// Conciliación a dos decimales: el WSFE rechaza sumas que no cierran.
	neto := r.NetAmount.Round(2)
	iva := r.IVAAmount.Round(2)
	total := r.TotalAmount.Round(2)
	if !neto.Add(iva).Equal(total) {
		errs = append(errs, fmt.Errorf("neto (%s) + IVA (%s) no concilia con el total (%s)",
			neto, iva, total))
	}

	if err := validateDate(r.InvoiceDate, true); err != nil {
		errs = append(errs, fmt.Errorf("fecha de comprobante: %w", err))
	}
	if pkgafip.ConceptRequiresServiceDates(r.Concept) {
		if r.ServiceFrom == "" || r.ServiceTo == "" || r.PaymentDueDate == "" {
			errs = append(errs, fmt.Errorf("concepto %d exige período de servicio y vencimiento de pago", r.Concept))
		}
	}
	for name, d := range map[string]string{
		"fecha de servicio desde": r.ServiceFrom,
		"fecha de servicio hasta": r.ServiceTo,
		"vencimiento de pago":     r.PaymentDueDate,
	} {
		if err := validateDate(d, false); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidRequest}, errs...)...)
	}
	return nil
}

// RoundedAmounts devuelve neto, IVA y total redondeados a dos decimales
// (decimal.Round redondea mitad alejándose de cero: medio centavo sube).
func (r *InvoiceRequest) RoundedAmounts() (neto, iva, total decimal.Decimal) {
	return r.NetAmount.Round(2), r.IVAAmount.Round(2), r.TotalAmount.Round(2)
}

func validateDate(s string, required bool) error {
	if s == "" {
		if required {
			return errors.New("requerida")
		}
		return nil
	}
	if _, err := time.Parse("20060102", s); err != nil {
		return fmt.Errorf("formato esperado AAAAMMDD, recibido %q", s)
	}
	return nil
}
