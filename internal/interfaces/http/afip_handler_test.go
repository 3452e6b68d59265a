package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/welook-io/mercure-sub001/internal/application/dto"
	"github.com/welook-io/mercure-sub001/internal/domain"
)

// mockFacturacion implementación de FacturacionService para los tests.
type mockFacturacion struct {
	issueOut  *dto.IssueInvoiceResponse
	issueErr  error
	lastOut   *dto.LastVoucherResponse
	lastErr   error
	pointsOut []dto.SalesPointResponse
	status    *dto.AfipStatusResponse
}

func (m *mockFacturacion) IssueInvoice(_ context.Context, _ dto.IssueInvoiceRequest) (*dto.IssueInvoiceResponse, error) {
	return m.issueOut, m.issueErr
}

func (m *mockFacturacion) LastVoucher(_ context.Context, _ int, _ string) (*dto.LastVoucherResponse, error) {
	return m.lastOut, m.lastErr
}

func (m *mockFacturacion) SalesPoints(_ context.Context) ([]dto.SalesPointResponse, error) {
	return m.pointsOut, nil
}

func (m *mockFacturacion) Status(_ context.Context) *dto.AfipStatusResponse {
	return m.status
}

func newTestApp(svc FacturacionService) *fiber.App {
	app := fiber.New()
	Router(app, RouterDeps{Facturacion: svc})
	return app
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestIssueInvoiceEndpoint(t *testing.T) {
	t.Run("factura autorizada", func(t *testing.T) {
		app := newTestApp(&mockFacturacion{issueOut: &dto.IssueInvoiceResponse{
			Success:         true,
			OperationID:     "op-1",
			Cae:             "70123456789012",
			CaeExpiration:   "2026-01-25",
			InvoiceNumber:   42,
			FormattedNumber: "0004-00000042",
		}})

		body, _ := json.Marshal(dto.IssueInvoiceRequest{InvoiceType: "A", PointOfSale: 4})
		req := httptest.NewRequest(http.MethodPost, "/api/afip/facturas", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		out := decodeBody[dto.IssueInvoiceResponse](t, resp)
		assert.True(t, out.Success)
		assert.Equal(t, "70123456789012", out.Cae)
		assert.Equal(t, "0004-00000042", out.FormattedNumber)
	})

	t.Run("rechazo de AFIP responde 200 con success=false", func(t *testing.T) {
		app := newTestApp(&mockFacturacion{issueOut: &dto.IssueInvoiceResponse{
			Success: false,
			Errors:  []dto.CodedMessage{{Code: 10016, Message: "Campo CbteFch invalido"}},
		}})

		body, _ := json.Marshal(dto.IssueInvoiceRequest{InvoiceType: "A", PointOfSale: 4})
		req := httptest.NewRequest(http.MethodPost, "/api/afip/facturas", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		out := decodeBody[dto.IssueInvoiceResponse](t, resp)
		assert.False(t, out.Success)
		require.Len(t, out.Errors, 1)
		assert.Equal(t, 10016, out.Errors[0].Code)
	})

	t.Run("cuerpo invalido", func(t *testing.T) {
		app := newTestApp(&mockFacturacion{})

		req := httptest.NewRequest(http.MethodPost, "/api/afip/facturas", bytes.NewReader([]byte("{no-json")))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		out := decodeBody[dto.ErrorResponse](t, resp)
		assert.Equal(t, "INVALID_BODY", out.Code)
	})

	t.Run("mapeo de errores de dominio", func(t *testing.T) {
		cases := []struct {
			name       string
			err        error
			wantStatus int
			wantCode   string
		}{
			{"entrada invalida", fmt.Errorf("%w: tipo desconocido", domain.ErrInvalidInput), http.StatusBadRequest, "VALIDATION"},
			{"configuracion", fmt.Errorf("%w: certificado ausente", domain.ErrConfiguration), http.StatusInternalServerError, "AFIP_CONFIG"},
			{"transporte", fmt.Errorf("%w: timeout", domain.ErrTransport), http.StatusBadGateway, "AFIP_TRANSPORT"},
			{"fault del organismo", fmt.Errorf("%w: soap fault", domain.ErrAuthorityFault), http.StatusBadGateway, "AFIP_FAULT"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				app := newTestApp(&mockFacturacion{issueErr: tc.err})

				body, _ := json.Marshal(dto.IssueInvoiceRequest{InvoiceType: "A"})
				req := httptest.NewRequest(http.MethodPost, "/api/afip/facturas", bytes.NewReader(body))
				req.Header.Set("Content-Type", "application/json")

				resp, err := app.Test(req)
				require.NoError(t, err)
				assert.Equal(t, tc.wantStatus, resp.StatusCode)

				out := decodeBody[dto.ErrorResponse](t, resp)
				assert.Equal(t, tc.wantCode, out.Code)
			})
		}
	})
}

func TestLastVoucherEndpoint(t *testing.T) {
	app := newTestApp(&mockFacturacion{lastOut: &dto.LastVoucherResponse{
		PointOfSale: 4, InvoiceType: "A", LastNumber: 41,
	}})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/afip/comprobantes/ultimo?pto_vta=4&cbte_tipo=A", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeBody[dto.LastVoucherResponse](t, resp)
	assert.Equal(t, int64(41), out.LastNumber)

	// Parámetros faltantes cortan antes de llegar al servicio.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/afip/comprobantes/ultimo", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSalesPointsEndpoint(t *testing.T) {
	app := newTestApp(&mockFacturacion{pointsOut: []dto.SalesPointResponse{
		{Number: 4, EmissionType: "CAE"},
		{Number: 9, EmissionType: "CAEA", Blocked: true, DroppedDate: "20250801"},
	}})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/afip/puntos-venta", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeBody[[]dto.SalesPointResponse](t, resp)
	require.Len(t, out, 2)
	assert.True(t, out[1].Blocked)
}

func TestStatusEndpoint(t *testing.T) {
	app := newTestApp(&mockFacturacion{status: &dto.AfipStatusResponse{
		Status: "ok",
		Config: dto.AfipConfigStatus{HasCert: true, HasKey: true, Cuit: "30712345678", Environment: "testing"},
		Wsfe:   dto.WsfeStatus{AppServer: true, DbServer: true, AuthServer: true},
	}})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/afip/status", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeBody[dto.AfipStatusResponse](t, resp)
	assert.Equal(t, "ok", out.Status)
	assert.True(t, out.Config.HasCert)
}
