package afip

import (
	"crypto/rsa"
	"encoding/base64"
	"fmt"

	"go.mozilla.org/pkcs7"

	"github.com/welook-io/mercure-sub001/internal/domain"
	"github.com/welook-io/mercure-sub001/internal/domain/afip"
)

// SignTRA firma el TRA como CMS/PKCS#7 SignedData con SHA-256 y devuelve el
// DER codificado en base64, que es lo que espera el parámetro in0 de loginCms.
// AddSigner incluye los atributos autenticados content-type, message-digest y
// signing-time y adjunta el certificado del firmante.
func SignTRA(tra []byte, identity *afip.SigningIdentity) (string, error) {
	if identity == nil || identity.Certificate == nil {
		return "", fmt.Errorf("%w: identidad firmante no cargada", domain.ErrConfiguration)
	}
	priv, ok := identity.PrivateKey.(*rsa.PrivateKey)
	if !ok {
		return "", fmt.Errorf("%w: el WSAA requiere llave privada RSA", domain.ErrConfiguration)
	}

	signed, err := pkcs7.NewSignedData(tra)
	if err != nil {
		return "", fmt.Errorf("%w: inicializar SignedData: %v", domain.ErrConfiguration, err)
	}
	signed.SetDigestAlgorithm(pkcs7.OIDDigestAlgorithmSHA256)
	if err := signed.AddSigner(identity.Certificate, priv, pkcs7.SignerInfoConfig{}); err != nil {
		return "", fmt.Errorf("%w: firmar TRA: %v", domain.ErrConfiguration, err)
	}

	der, err := signed.Finish()
	if err != nil {
		return "", fmt.Errorf("%w: serializar CMS: %v", domain.ErrConfiguration, err)
	}
	return base64.StdEncoding.EncodeToString(der), nil
}
