package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/welook-io/mercure-sub001/internal/domain"
	domafip "github.com/welook-io/mercure-sub001/internal/domain/afip"
	infraafip "github.com/welook-io/mercure-sub001/internal/infrastructure/afip"
)

// AfipConfigRepository almacén de identidad firmante respaldado por la tabla
// mercure_afip_config (certificado, llave y CUIT cargados desde el back
// office). Implementa afip.CredentialStore: una sola lectura por proceso,
// cacheada; Invalidate fuerza una relectura (rotación de certificado).
//
// El certificado y la llave se guardan como PEM o como PEM en base64; el
// parseo acepta ambos.
type AfipConfigRepository struct {
	pool *pgxpool.Pool

	mu       sync.Mutex
	identity *domafip.SigningIdentity
}

// NewAfipConfigRepository construye el repositorio sobre el pool.
func NewAfipConfigRepository(pool *pgxpool.Pool) *AfipConfigRepository {
	return &AfipConfigRepository{pool: pool}
}

// Load lee la fila activa de configuración AFIP y construye la identidad
// firmante. Cache hit: sin consulta.
func (r *AfipConfigRepository) Load(ctx context.Context) (*domafip.SigningIdentity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.identity != nil {
		return r.identity, nil
	}

	const query = `
		SELECT certificate, private_key, cuit, environment
		FROM mercure_afip_config
		WHERE is_active = true
		LIMIT 1`

	var cert, key, cuit, environment string
	err := r.pool.QueryRow(ctx, query).Scan(&cert, &key, &cuit, &environment)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: no hay configuración AFIP activa en mercure_afip_config", domain.ErrConfiguration)
	}
	if err != nil {
		return nil, fmt.Errorf("leer mercure_afip_config: %w", err)
	}

	identity, err := infraafip.ParseIdentity(cert, key, cuit, domafip.Environment(environment))
	if err != nil {
		return nil, err
	}
	r.identity = identity
	return identity, nil
}

// Invalidate descarta la identidad cacheada; la próxima carga vuelve a la tabla.
func (r *AfipConfigRepository) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.identity = nil
}
