package afip

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/welook-io/mercure-sub001/internal/domain"
	"github.com/welook-io/mercure-sub001/internal/domain/afip"
	"github.com/welook-io/mercure-sub001/pkg/config"
)

// EnvCredentialStore almacén de identidad firmante alimentado por la
// configuración del proceso (variables de entorno o archivos PEM).
// Implementa afip.CredentialStore: carga y parsea una sola vez por proceso;
// Invalidate fuerza la relectura en la próxima carga.
type EnvCredentialStore struct {
	cfg config.AFIPConfig

	mu       sync.Mutex
	identity *afip.SigningIdentity
}

// NewEnvCredentialStore construye el almacén desde la configuración AFIP.
func NewEnvCredentialStore(cfg config.AFIPConfig) *EnvCredentialStore {
	return &EnvCredentialStore{cfg: cfg}
}

// Load devuelve la identidad firmante, cacheada tras la primera lectura.
// Si CertPath/KeyPath están definidos se leen los archivos; si no, se usan
// los valores inline (PEM o base64 de PEM).
func (s *EnvCredentialStore) Load(_ context.Context) (*afip.SigningIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity != nil {
		return s.identity, nil
	}

	certSrc, keySrc := s.cfg.Certificate, s.cfg.PrivateKey
	if s.cfg.CertPath != "" {
		raw, err := os.ReadFile(s.cfg.CertPath)
		if err != nil {
			return nil, fmt.Errorf("%w: leer certificado %s: %v", domain.ErrConfiguration, s.cfg.CertPath, err)
		}
		certSrc = string(raw)
	}
	if s.cfg.KeyPath != "" {
		raw, err := os.ReadFile(s.cfg.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("%w: leer llave privada %s: %v", domain.ErrConfiguration, s.cfg.KeyPath, err)
		}
		keySrc = string(raw)
	}

	identity, err := ParseIdentity(certSrc, keySrc, s.cfg.CUIT, afip.Environment(s.cfg.Environment))
	if err != nil {
		return nil, err
	}
	s.identity = identity
	return identity, nil
}

// Invalidate descarta la identidad cacheada (por ejemplo tras rotar el
// certificado). Las credenciales de sesión deben invalidarse por separado.
func (s *EnvCredentialStore) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = nil
}
