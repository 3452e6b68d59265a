package afip

import (
	"fmt"
	"time"

	"github.com/beevik/etree"
)

// traTTL vigencia del ticket de acceso: el WSAA exige que el pedido esté
// dentro de la ventana generationTime..expirationTime.
const traTTL = 10 * time.Minute

// timezona de Argentina (UTC-3, sin horario de verano). El WSAA valida las
// fechas del TRA contra su propio reloj en esta zona.
var argentinaTZ = time.FixedZone("-03:00", -3*60*60)

// BuildTRA genera el XML del Ticket de Requerimiento de Acceso (loginTicketRequest)
// para el servicio indicado. uniqueId se deriva del instante actual (segundos
// Unix); el ticket vive solo lo que tarda en firmarse y transmitirse.
func BuildTRA(service string, now time.Time) ([]byte, error) {
	if service == "" {
		return nil, fmt.Errorf("tra: servicio destino vacío")
	}
	now = now.In(argentinaTZ)
	expiration := now.Add(traTTL)

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("loginTicketRequest")
	root.CreateAttr("version", "1.0")

	header := root.CreateElement("header")
	header.CreateElement("uniqueId").SetText(fmt.Sprintf("%d", now.Unix()))
	header.CreateElement("generationTime").SetText(formatTRATime(now))
	header.CreateElement("expirationTime").SetText(formatTRATime(expiration))

	root.CreateElement("service").SetText(service)

	doc.Indent(2)
	return doc.WriteToBytes()
}

// formatTRATime formatea en ISO-8601 con offset explícito: 2025-12-12T16:30:00-03:00.
func formatTRATime(t time.Time) string {
	return t.Format("2006-01-02T15:04:05-07:00")
}
