// afip-status sondea la integración AFIP desde la línea de comandos: carga la
// configuración, ejecuta FEDummy contra el WSFE y opcionalmente hace el login
// WSAA completo para verificar el certificado.
//
// Uso: go run ./cmd/afip-status [-login] [-pto-vta N -cbte-tipo A]
// Con -login también autentica; con -pto-vta/-cbte-tipo consulta además el
// último comprobante autorizado para ese par.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/welook-io/mercure-sub001/internal/application/billing"
	infraafip "github.com/welook-io/mercure-sub001/internal/infrastructure/afip"
	pkgafip "github.com/welook-io/mercure-sub001/pkg/afip"
	"github.com/welook-io/mercure-sub001/pkg/config"
	"github.com/welook-io/mercure-sub001/pkg/logger"
)

func main() {
	doLogin := flag.Bool("login", false, "ejecutar el login WSAA completo (firma y envía un TRA real)")
	ptoVta := flag.Int("pto-vta", 0, "punto de venta para consultar el último comprobante")
	cbteTipo := flag.String("cbte-tipo", "", "tipo de comprobante (A, B o C)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "warn"})

	store := infraafip.NewEnvCredentialStore(cfg.AFIP)
	wsaaClient := infraafip.NewWSAAClient(store, log)
	wsfeClient := infraafip.NewWSFEClient(store, wsaaClient, log)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	fmt.Printf("Ambiente: %s\n", cfg.AFIP.Environment)

	health, err := wsfeClient.Health(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FEDummy: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("WSFE AppServer=%v DbServer=%v AuthServer=%v\n",
		health.AppServer, health.DbServer, health.AuthServer)

	if *doLogin {
		cred, err := wsaaClient.Credentials(ctx, infraafip.ServiceWSFE)
		if err != nil {
			fmt.Fprintf(os.Stderr, "login WSAA: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("WSAA OK, sesión vence %s\n", cred.ExpirationTime.Format(time.RFC3339))
	}

	if *ptoVta > 0 && *cbteTipo != "" {
		last, err := wsfeClient.LastVoucherNumber(ctx, *ptoVta, pkgafip.InvoiceType(*cbteTipo))
		if err != nil {
			fmt.Fprintf(os.Stderr, "último comprobante: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Último comprobante %s: %s (siguiente %d)\n",
			*cbteTipo, billing.FormatInvoiceNumber(*ptoVta, last), last+1)
	}
}
