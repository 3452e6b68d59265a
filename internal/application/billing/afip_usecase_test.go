package billing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/welook-io/mercure-sub001/internal/application/dto"
	"github.com/welook-io/mercure-sub001/internal/domain"
	"github.com/welook-io/mercure-sub001/internal/domain/afip"
	pkgafip "github.com/welook-io/mercure-sub001/pkg/afip"
	"github.com/welook-io/mercure-sub001/pkg/logger"
)

// ── Dobles de test ────────────────────────────────────────────────────────────

type stubInvoiceService struct {
	createResult *afip.AuthorizationResult
	createErr    error
	lastNumber   int64
	lastErr      error
	points       []afip.SalesPoint
	health       *afip.ServiceHealth
	healthErr    error

	gotRequest *afip.InvoiceRequest
}

func (s *stubInvoiceService) LastVoucherNumber(_ context.Context, _ int, _ pkgafip.InvoiceType) (int64, error) {
	return s.lastNumber, s.lastErr
}

func (s *stubInvoiceService) CreateInvoice(_ context.Context, req *afip.InvoiceRequest) (*afip.AuthorizationResult, error) {
	s.gotRequest = req
	return s.createResult, s.createErr
}

func (s *stubInvoiceService) SalesPoints(_ context.Context) ([]afip.SalesPoint, error) {
	return s.points, nil
}

func (s *stubInvoiceService) Health(_ context.Context) (*afip.ServiceHealth, error) {
	return s.health, s.healthErr
}

type stubAuthenticator struct{ cached bool }

func (a *stubAuthenticator) Credentials(_ context.Context, _ string) (*afip.SessionCredential, error) {
	return &afip.SessionCredential{Token: "T", Sign: "S", ExpirationTime: time.Now().Add(time.Hour)}, nil
}
func (a *stubAuthenticator) HasValidCredentials(_ string) bool { return a.cached }
func (a *stubAuthenticator) Invalidate(_ string)               {}

type stubStore struct {
	identity *afip.SigningIdentity
	err      error
}

func (s *stubStore) Load(_ context.Context) (*afip.SigningIdentity, error) {
	return s.identity, s.err
}
func (s *stubStore) Invalidate() {}

func newUseCase(svc *stubInvoiceService, auth *stubAuthenticator, store *stubStore) *FacturacionUseCase {
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	return NewFacturacionUseCase(svc, auth, store, log)
}

func issueRequest() dto.IssueInvoiceRequest {
	return dto.IssueInvoiceRequest{
		InvoiceType: "A",
		PointOfSale: 4,
		Concept:     1,
		DocType:     80,
		DocNumber:   "20111111112",
		InvoiceDate: "20260115",
		NetAmount:   1000,
		IvaAmount:   210,
		TotalAmount: 1210,
	}
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestIssueInvoiceAutorizada(t *testing.T) {
	svc := &stubInvoiceService{createResult: &afip.AuthorizationResult{
		Success:       true,
		CAE:           "70123456789012",
		CAEExpiration: "20260125",
		InvoiceNumber: 42,
		RawResponse:   "<xml/>",
	}}
	uc := newUseCase(svc, &stubAuthenticator{}, &stubStore{})

	out, err := uc.IssueInvoice(context.Background(), issueRequest())
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "70123456789012", out.Cae)
	assert.Equal(t, "2026-01-25", out.CaeExpiration, "el vencimiento del CAE se reformatea a AAAA-MM-DD")
	assert.Equal(t, int64(42), out.InvoiceNumber)
	assert.Equal(t, "0004-00000042", out.FormattedNumber)
	assert.NotEmpty(t, out.OperationID)
	assert.Equal(t, "<xml/>", out.RawResponse)

	require.NotNil(t, svc.gotRequest)
	assert.Equal(t, pkgafip.InvoiceTypeA, svc.gotRequest.InvoiceType)
	assert.Equal(t, "1210", svc.gotRequest.TotalAmount.String())
}

func TestIssueInvoiceRechazada(t *testing.T) {
	svc := &stubInvoiceService{createResult: &afip.AuthorizationResult{
		Success: false,
		Errors:  []afip.ServiceError{{Code: 10016, Message: "Campo CbteFch invalido"}},
		Observations: []afip.ServiceObservation{
			{Code: 10048, Message: "El importe total no coincide"},
		},
	}}
	uc := newUseCase(svc, &stubAuthenticator{}, &stubStore{})

	out, err := uc.IssueInvoice(context.Background(), issueRequest())
	require.NoError(t, err, "un rechazo de AFIP no es un error de la operación")
	assert.False(t, out.Success)
	assert.Empty(t, out.Cae)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, dto.CodedMessage{Code: 10016, Message: "Campo CbteFch invalido"}, out.Errors[0])
	require.Len(t, out.Observations, 1)
}

func TestIssueInvoiceError(t *testing.T) {
	svc := &stubInvoiceService{createErr: fmt.Errorf("%w: llamada HTTP fallida", domain.ErrTransport)}
	uc := newUseCase(svc, &stubAuthenticator{}, &stubStore{})

	_, err := uc.IssueInvoice(context.Background(), issueRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransport)
}

func TestLastVoucher(t *testing.T) {
	svc := &stubInvoiceService{lastNumber: 41}
	uc := newUseCase(svc, &stubAuthenticator{}, &stubStore{})

	out, err := uc.LastVoucher(context.Background(), 4, "A")
	require.NoError(t, err)
	assert.Equal(t, int64(41), out.LastNumber)
	assert.Equal(t, 4, out.PointOfSale)
	assert.Equal(t, "A", out.InvoiceType)

	_, err = uc.LastVoucher(context.Background(), 4, "X")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStatus(t *testing.T) {
	t.Run("todo operativo", func(t *testing.T) {
		svc := &stubInvoiceService{health: &afip.ServiceHealth{AppServer: true, DbServer: true, AuthServer: true}}
		store := &stubStore{identity: &afip.SigningIdentity{CUIT: "30712345678", Environment: afip.EnvTesting}}
		uc := newUseCase(svc, &stubAuthenticator{cached: true}, store)

		out := uc.Status(context.Background())
		assert.Equal(t, "ok", out.Status)
		assert.True(t, out.Config.HasCert)
		assert.Equal(t, "30712345678", out.Config.Cuit)
		assert.Equal(t, "testing", out.Config.Environment)
		assert.True(t, out.Credentials.Cached)
		assert.True(t, out.Wsfe.AppServer)
	})

	t.Run("sin configuracion", func(t *testing.T) {
		svc := &stubInvoiceService{health: &afip.ServiceHealth{AppServer: true, DbServer: true, AuthServer: true}}
		store := &stubStore{err: fmt.Errorf("%w: sin fila activa", domain.ErrConfiguration)}
		uc := newUseCase(svc, &stubAuthenticator{}, store)

		out := uc.Status(context.Background())
		assert.Equal(t, "error", out.Status)
		assert.False(t, out.Config.HasCert)
		assert.Equal(t, "unknown", out.Config.Environment)
	})

	t.Run("sondeo caido", func(t *testing.T) {
		svc := &stubInvoiceService{healthErr: fmt.Errorf("%w: timeout", domain.ErrTransport)}
		store := &stubStore{identity: &afip.SigningIdentity{CUIT: "30712345678", Environment: afip.EnvTesting}}
		uc := newUseCase(svc, &stubAuthenticator{}, store)

		out := uc.Status(context.Background())
		assert.Equal(t, "error", out.Status)
		assert.False(t, out.Wsfe.AppServer)
	})
}

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "0004-00000042", FormatInvoiceNumber(4, 42))
	assert.Equal(t, "0001-00000001", FormatInvoiceNumber(1, 1))
	assert.Equal(t, "9999-12345678", FormatInvoiceNumber(9999, 12345678))
}
