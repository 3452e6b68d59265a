package afip_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domafip "github.com/welook-io/mercure-sub001/internal/domain/afip"
	infraafip "github.com/welook-io/mercure-sub001/internal/infrastructure/afip"
)

// Homologación y producción jamás se mezclan: cada ambiente resuelve a su
// propio host y un ambiente desconocido es un error, nunca un default.
func TestEndpointsPorAmbiente(t *testing.T) {
	wsaaTesting, err := infraafip.WSAAURL(domafip.EnvTesting)
	require.NoError(t, err)
	assert.Equal(t, "https://wsaahomo.afip.gov.ar/ws/services/LoginCms", wsaaTesting)

	wsaaProd, err := infraafip.WSAAURL(domafip.EnvProduction)
	require.NoError(t, err)
	assert.Equal(t, "https://wsaa.afip.gov.ar/ws/services/LoginCms", wsaaProd)
	assert.NotEqual(t, wsaaTesting, wsaaProd)

	wsfeTesting, err := infraafip.WSFEURL(domafip.EnvTesting)
	require.NoError(t, err)
	assert.Equal(t, "https://wswhomo.afip.gov.ar/wsfev1/service.asmx", wsfeTesting)

	wsfeProd, err := infraafip.WSFEURL(domafip.EnvProduction)
	require.NoError(t, err)
	assert.Equal(t, "https://servicios1.afip.gov.ar/wsfev1/service.asmx", wsfeProd)
	assert.NotContains(t, wsfeTesting, "servicios1")

	_, err = infraafip.WSAAURL(domafip.Environment("staging"))
	assert.Error(t, err)
	_, err = infraafip.WSFEURL(domafip.Environment(""))
	assert.Error(t, err)
}
