// Package afip implementa los clientes WSAA (autenticación) y WSFE
// (facturación electrónica) contra los web services SOAP de AFIP.
package afip

import (
	"fmt"

	"github.com/welook-io/mercure-sub001/internal/domain/afip"
)

// Endpoints por ambiente. Homologación y producción son hosts distintos;
// la selección es solo por configuración, nunca por llamada.
const (
	wsaaURLProduction = "https://wsaa.afip.gov.ar/ws/services/LoginCms"
	wsaaURLTesting    = "https://wsaahomo.afip.gov.ar/ws/services/LoginCms"

	wsfeURLProduction = "https://servicios1.afip.gov.ar/wsfev1/service.asmx"
	wsfeURLTesting    = "https://wswhomo.afip.gov.ar/wsfev1/service.asmx"
)

// ServiceWSFE identificador del servicio de facturación ante el WSAA.
// El WSAA emite credenciales separadas por servicio.
const ServiceWSFE = "wsfe"

// WSAAURL devuelve el endpoint del servicio de autenticación para el ambiente.
func WSAAURL(env afip.Environment) (string, error) {
	switch env {
	case afip.EnvProduction:
		return wsaaURLProduction, nil
	case afip.EnvTesting:
		return wsaaURLTesting, nil
	default:
		return "", fmt.Errorf("ambiente AFIP desconocido %q (usar 'testing' o 'production')", env)
	}
}

// WSFEURL devuelve el endpoint del servicio de facturación para el ambiente.
func WSFEURL(env afip.Environment) (string, error) {
	switch env {
	case afip.EnvProduction:
		return wsfeURLProduction, nil
	case afip.EnvTesting:
		return wsfeURLTesting, nil
	default:
		return "", fmt.Errorf("ambiente AFIP desconocido %q (usar 'testing' o 'production')", env)
	}
}
