package afip

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/welook-io/mercure-sub001/internal/domain"
)

const (
	soapEnvelopeNS = "http://schemas.xmlsoap.org/soap/envelope/"

	// respuestas de AFIP acotadas; un lote CantReg=1 nunca se acerca a esto
	maxResponseBytes = 1 << 20 // 1 MB

	defaultTimeout = 60 * time.Second
)

// soapTransport transporte HTTP compartido por los clientes WSAA y WSFE.
// Cada operación es un request/response corto; no hay conexiones persistentes
// ni tareas de fondo. Un remoto colgado corta por timeout (error de transporte).
type soapTransport struct {
	httpClient *http.Client
}

func newSOAPTransport(client *http.Client) *soapTransport {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &soapTransport{httpClient: client}
}

// post envía el envelope y devuelve el cuerpo crudo de la respuesta.
// Errores de red/timeout se reportan como domain.ErrTransport; distinguirlos
// de un fault del organismo es parte del contrato con el caller.
func (t *soapTransport) post(ctx context.Context, url, soapAction string, envelope []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(envelope))
	if err != nil {
		return nil, fmt.Errorf("%w: crear request: %v", domain.ErrTransport, err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", soapAction)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: timeout o cancelación: %v", domain.ErrTransport, ctx.Err())
		}
		return nil, fmt.Errorf("%w: llamada HTTP fallida: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: leer respuesta: %v", domain.ErrTransport, err)
	}

	// Los faults SOAP llegan con 500; el cuerpo trae el detalle y se clasifica
	// en el intérprete de cada servicio. Otros códigos sin cuerpo XML son
	// errores de transporte.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: HTTP %d: %s", domain.ErrTransport, resp.StatusCode, truncate(rawBody, 512))
	}
	return rawBody, nil
}

// soapFault detalle de un SOAP Fault (forma (a) del intérprete de respuestas).
type soapFault struct {
	FaultCode   string `xml:"faultcode"`
	FaultString string `xml:"faultstring"`
}

// Error implementa error envolviendo domain.ErrAuthorityFault.
func (f *soapFault) Error() string {
	return fmt.Sprintf("SOAP Fault [%s]: %s", f.FaultCode, f.FaultString)
}

// marshalEnvelope serializa un body dentro del envelope SOAP 1.1 con el
// prefijo soap: y el namespace adicional del servicio.
func marshalEnvelope(body interface{}) ([]byte, error) {
	env := requestEnvelope{
		XmlnsSoap: soapEnvelopeNS,
		Body:      requestBody{Content: body},
	}
	payload, err := xml.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("soap: serializar envelope: %w", err)
	}
	return append([]byte(xml.Header), payload...), nil
}

type requestEnvelope struct {
	XMLName   xml.Name    `xml:"soap:Envelope"`
	XmlnsSoap string      `xml:"xmlns:soap,attr"`
	Body      requestBody `xml:"soap:Body"`
}

type requestBody struct {
	Content interface{}
}

func (b requestBody) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name.Local = "soap:Body"
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := e.Encode(b.Content); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "…"
}
