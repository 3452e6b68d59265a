package afip

import (
	"fmt"
	"unicode"
)

// pesos para el cálculo del dígito verificador de CUIT/CUIL (módulo 11).
// Se aplican a los 10 primeros dígitos, de izquierda a derecha.
var cuitWeights = [10]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}

// NormalizeCUIT elimina guiones, puntos y espacios del CUIT.
// "30-71234567-8" -> "30712345678". No valida el dígito verificador.
func NormalizeCUIT(cuit string) string {
	out := make([]byte, 0, len(cuit))
	for _, r := range cuit {
		if unicode.IsDigit(r) {
			out = append(out, byte(r))
		}
	}
	return string(out)
}

// ValidateCUIT valida largo y dígito verificador de un CUIT/CUIL
// (con o sin guiones) según el algoritmo módulo 11 de AFIP.
func ValidateCUIT(cuit string) error {
	digits := NormalizeCUIT(cuit)
	if len(digits) != 11 {
		return fmt.Errorf("afip: CUIT debe tener 11 dígitos, se encontraron %d", len(digits))
	}
	var sum int
	for i := 0; i < 10; i++ {
		sum += int(digits[i]-'0') * cuitWeights[i]
	}
	remainder := sum % 11
	var expected byte
	switch remainder {
	case 0:
		expected = '0'
	case 1:
		// Resto 1 no produce un verificador válido; AFIP no asigna esos CUIT.
		return fmt.Errorf("afip: CUIT %s no es asignable (resto 1 en módulo 11)", digits)
	default:
		expected = byte('0' + (11 - remainder))
	}
	if digits[10] != expected {
		return fmt.Errorf("afip: dígito verificador del CUIT inválido: esperado %c, recibido %c", expected, digits[10])
	}
	return nil
}
