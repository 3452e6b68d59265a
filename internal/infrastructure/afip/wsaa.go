package afip

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/beevik/etree"

	"github.com/welook-io/mercure-sub001/internal/domain"
	"github.com/welook-io/mercure-sub001/internal/domain/afip"
	"github.com/welook-io/mercure-sub001/pkg/logger"
)

const wsaaServiceNS = "http://wsaa.view.sua.dvadac.desein.afip.gov"

// WSAAClient autenticador de sesiones contra el WSAA. Implementa
// afip.Authenticator con un cache de credenciales por servicio protegido por
// mutex: ante dos callers concurrentes con cache vencido, el primero renueva
// y el segundo espera y reusa (nunca dos intercambios simultáneos).
type WSAAClient struct {
	store       afip.CredentialStore
	log         *logger.Logger
	transport   *soapTransport
	urlOverride string // solo para tests; vacío = resolver por ambiente

	mu    sync.Mutex
	cache map[string]*afip.SessionCredential
	now   func() time.Time
}

// WSAAOption opción de construcción del cliente.
type WSAAOption func(*WSAAClient)

// WithWSAAHTTPClient reemplaza el http.Client (timeouts propios, proxies).
func WithWSAAHTTPClient(c *http.Client) WSAAOption {
	return func(w *WSAAClient) { w.transport = newSOAPTransport(c) }
}

// WithWSAAURL fija el endpoint, ignorando el ambiente. Para tests.
func WithWSAAURL(url string) WSAAOption {
	return func(w *WSAAClient) { w.urlOverride = url }
}

// WithWSAAClock reemplaza el reloj. Para tests de expiración.
func WithWSAAClock(now func() time.Time) WSAAOption {
	return func(w *WSAAClient) { w.now = now }
}

// NewWSAAClient construye el autenticador. store provee la identidad firmante;
// el ambiente de la identidad decide el host (homologación vs producción).
func NewWSAAClient(store afip.CredentialStore, log *logger.Logger, opts ...WSAAOption) *WSAAClient {
	w := &WSAAClient{
		store:     store,
		log:       log,
		transport: newSOAPTransport(nil),
		cache:     make(map[string]*afip.SessionCredential),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Credentials devuelve un par token/sign vigente para el servicio. Cache hit:
// sin llamada de red. Cache miss o vencido: genera el TRA, lo firma como CMS,
// lo intercambia por loginCms y cachea la credencial resultante.
func (w *WSAAClient) Credentials(ctx context.Context, service string) (*afip.SessionCredential, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if cached, ok := w.cache[service]; ok && cached.Valid(w.now()) {
		w.log.Debug().Str("service", service).Msg("wsaa: credenciales cacheadas vigentes")
		return cached, nil
	}

	cred, err := w.login(ctx, service)
	if err != nil {
		return nil, err
	}
	w.cache[service] = cred
	return cred, nil
}

// HasValidCredentials indica si hay una credencial cacheada y vigente, sin red.
func (w *WSAAClient) HasValidCredentials(service string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	cached, ok := w.cache[service]
	return ok && cached.Valid(w.now())
}

// Invalidate descarta la credencial cacheada del servicio (si existe).
func (w *WSAAClient) Invalidate(service string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.cache, service)
}

// InvalidateAll descarta todas las credenciales. Necesario tras rotar el
// certificado: la identidad nueva invalida cualquier sesión previa.
func (w *WSAAClient) InvalidateAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cache = make(map[string]*afip.SessionCredential)
}

// login ejecuta el intercambio completo TRA → CMS → loginCms → token/sign.
// Se llama con el mutex tomado.
func (w *WSAAClient) login(ctx context.Context, service string) (*afip.SessionCredential, error) {
	identity, err := w.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	url := w.urlOverride
	if url == "" {
		if url, err = WSAAURL(identity.Environment); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
		}
	}

	tra, err := BuildTRA(service, w.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}
	cms, err := SignTRA(tra, identity)
	if err != nil {
		return nil, err
	}

	w.log.Info().
		Str("service", service).
		Str("environment", string(identity.Environment)).
		Msg("wsaa: solicitando credenciales")

	envelope, err := marshalEnvelope(&loginCmsRequest{Xmlns: wsaaServiceNS, In0: cms})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfiguration, err)
	}

	rawBody, err := w.transport.post(ctx, url, "", envelope)
	if err != nil {
		return nil, err
	}

	cred, err := parseLoginResponse(rawBody)
	if err != nil {
		return nil, err
	}

	w.log.Info().
		Str("service", service).
		Time("expiration", cred.ExpirationTime).
		Msg("wsaa: credenciales obtenidas")
	return cred, nil
}

// loginCmsRequest body de la operación loginCms (el CMS en base64 viaja en in0).
type loginCmsRequest struct {
	XMLName xml.Name `xml:"loginCms"`
	Xmlns   string   `xml:"xmlns,attr"`
	In0     string   `xml:"in0"`
}

type loginResponseEnvelope struct {
	Body struct {
		Fault         *soapFault `xml:"Fault"`
		LoginResponse *struct {
			Return string `xml:"loginCmsReturn"`
		} `xml:"loginCmsResponse"`
	} `xml:"Body"`
}

// parseLoginResponse clasifica la respuesta del WSAA: fault del organismo o
// éxito con el loginTicketResponse anidado. El payload interno llega escapado
// como entidades HTML dentro de loginCmsReturn; encoding/xml lo des-escapa al
// decodificarlo como string y etree parsea el XML recuperado.
func parseLoginResponse(rawBody []byte) (*afip.SessionCredential, error) {
	var env loginResponseEnvelope
	if err := xml.Unmarshal(rawBody, &env); err != nil {
		return nil, fmt.Errorf("%w: respuesta WSAA no parseable: %v", domain.ErrTransport, err)
	}
	if env.Body.Fault != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthorityFault, env.Body.Fault)
	}
	if env.Body.LoginResponse == nil || env.Body.LoginResponse.Return == "" {
		return nil, fmt.Errorf("%w: respuesta WSAA sin loginCmsReturn: %s",
			domain.ErrAuthorityFault, truncate(rawBody, 512))
	}

	ta := etree.NewDocument()
	if err := ta.ReadFromString(env.Body.LoginResponse.Return); err != nil {
		return nil, fmt.Errorf("%w: loginTicketResponse no parseable: %v", domain.ErrAuthorityFault, err)
	}
	root := ta.Root()
	if root == nil || root.Tag != "loginTicketResponse" {
		return nil, fmt.Errorf("%w: loginTicketResponse ausente", domain.ErrAuthorityFault)
	}

	token := textOf(root, "credentials/token")
	sign := textOf(root, "credentials/sign")
	expiration := textOf(root, "header/expirationTime")
	if token == "" || sign == "" {
		return nil, fmt.Errorf("%w: token/sign ausentes en loginTicketResponse", domain.ErrAuthorityFault)
	}

	expTime, err := time.Parse(time.RFC3339, expiration)
	if err != nil {
		return nil, fmt.Errorf("%w: expirationTime inválido %q: %v", domain.ErrAuthorityFault, expiration, err)
	}

	return &afip.SessionCredential{
		Token:          token,
		Sign:           sign,
		ExpirationTime: expTime,
	}, nil
}

func textOf(root *etree.Element, path string) string {
	if el := root.FindElement(path); el != nil {
		return el.Text()
	}
	return ""
}
