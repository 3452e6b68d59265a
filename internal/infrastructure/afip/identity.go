package afip

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/welook-io/mercure-sub001/internal/domain"
	"github.com/welook-io/mercure-sub001/internal/domain/afip"
	pkgafip "github.com/welook-io/mercure-sub001/pkg/afip"
)

// ParseIdentity construye la identidad firmante desde el certificado y la
// llave en PEM. Acepta también PEM codificado en base64 (como se guarda en la
// tabla de configuración). Los errores de parseo son de configuración: fatales
// y detectados antes de cualquier llamada de red.
func ParseIdentity(certSrc, keySrc, cuit string, env afip.Environment) (*afip.SigningIdentity, error) {
	if certSrc == "" || keySrc == "" {
		return nil, fmt.Errorf("%w: certificado o llave privada vacíos", domain.ErrConfiguration)
	}
	if !env.Valid() {
		return nil, fmt.Errorf("%w: ambiente %q desconocido", domain.ErrConfiguration, env)
	}
	normalizedCUIT := pkgafip.NormalizeCUIT(cuit)
	if normalizedCUIT == "" {
		return nil, fmt.Errorf("%w: CUIT del emisor vacío", domain.ErrConfiguration)
	}

	certPEM, err := decodePEM(certSrc)
	if err != nil {
		return nil, fmt.Errorf("%w: certificado: %v", domain.ErrConfiguration, err)
	}
	keyPEM, err := decodePEM(keySrc)
	if err != nil {
		return nil, fmt.Errorf("%w: llave privada: %v", domain.ErrConfiguration, err)
	}

	// tls.X509KeyPair valida que la llave corresponda al certificado y
	// soporta RSA/EC en PKCS#1, PKCS#8 y SEC1.
	pair, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: par certificado/llave inválido: %v", domain.ErrConfiguration, err)
	}
	x509Cert, err := x509.ParseCertificate(pair.Certificate[0])
	if err != nil {
		return nil, fmt.Errorf("%w: parsear certificado X.509: %v", domain.ErrConfiguration, err)
	}

	return &afip.SigningIdentity{
		Certificate: x509Cert,
		PrivateKey:  pair.PrivateKey,
		CUIT:        normalizedCUIT,
		Environment: env,
	}, nil
}

// decodePEM devuelve los bytes PEM: si el valor no contiene un encabezado
// "-----BEGIN" se asume PEM codificado en base64 y se decodifica primero.
func decodePEM(src string) ([]byte, error) {
	if strings.Contains(src, "-----BEGIN") {
		return []byte(src), nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(src))
	if err != nil {
		return nil, fmt.Errorf("no es PEM ni base64 de PEM: %w", err)
	}
	if !strings.Contains(string(raw), "-----BEGIN") {
		return nil, fmt.Errorf("el contenido decodificado no es PEM")
	}
	return raw, nil
}
