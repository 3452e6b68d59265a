package afip_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domafip "github.com/welook-io/mercure-sub001/internal/domain/afip"
	infraafip "github.com/welook-io/mercure-sub001/internal/infrastructure/afip"
	"github.com/welook-io/mercure-sub001/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test compartidos: certificado autofirmado, almacén falso de
// identidad y autenticador falso para aislar el WSFE del WSAA.
// ──────────────────────────────────────────────────────────────────────────────

const testCUIT = "30712345678"

// newTestPEM genera una llave RSA y un certificado autofirmado en PEM,
// equivalentes al par que AFIP emite para homologación.
func newTestPEM(t *testing.T) (certPEM, keyPEM string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "mercure homologacion"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	certPEM = string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
	keyPEM = string(pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}))
	return certPEM, keyPEM
}

// newTestIdentity construye una identidad firmante de homologación.
func newTestIdentity(t *testing.T) *domafip.SigningIdentity {
	t.Helper()
	certPEM, keyPEM := newTestPEM(t)
	identity, err := infraafip.ParseIdentity(certPEM, keyPEM, testCUIT, domafip.EnvTesting)
	require.NoError(t, err)
	return identity
}

// fakeStore almacén de identidad en memoria.
type fakeStore struct {
	identity *domafip.SigningIdentity
	err      error
	loads    int
}

func (s *fakeStore) Load(_ context.Context) (*domafip.SigningIdentity, error) {
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

func (s *fakeStore) Invalidate() { s.identity = nil }

// fakeAuthenticator autenticador con credenciales fijas; cuenta renovaciones.
type fakeAuthenticator struct {
	cred        *domafip.SessionCredential
	calls       int
	invalidates int
}

func (a *fakeAuthenticator) Credentials(_ context.Context, _ string) (*domafip.SessionCredential, error) {
	a.calls++
	return a.cred, nil
}

func (a *fakeAuthenticator) HasValidCredentials(_ string) bool {
	return a.cred != nil && a.cred.Valid(time.Now())
}

func (a *fakeAuthenticator) Invalidate(_ string) { a.invalidates++ }

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

func testCredential() *domafip.SessionCredential {
	return &domafip.SessionCredential{
		Token:          "TOKEN",
		Sign:           "SIGN",
		ExpirationTime: time.Now().Add(12 * time.Hour),
	}
}
