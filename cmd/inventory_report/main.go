// inventory_report genera el reporte PDF de inventario de una tienda sin pasar por la API.
// Usa BACKEND_SERVICE_TOKEN para autenticarse contra el backend.
//
// Uso: go run ./cmd/inventory_report --store <id> [--branch <id>] [--low-stock] [--out reporte.pdf]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/jhoicas/inventario-dashboard/internal/application/dto"
	"github.com/jhoicas/inventario-dashboard/internal/application/inventory"
	"github.com/jhoicas/inventario-dashboard/internal/infrastructure/backend"
	infrapdf "github.com/jhoicas/inventario-dashboard/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-dashboard/pkg/config"
	"github.com/jhoicas/inventario-dashboard/pkg/logger"
	"github.com/spf13/pflag"
)

const cliUser = "inventory-report-cli"

func main() {
	storeID := pflag.String("store", "", "tienda (obligatorio)")
	branchID := pflag.String("branch", "", "filtrar por sucursal")
	categoryID := pflag.String("category", "", "filtrar por categoría")
	lowStock := pflag.Bool("low-stock", false, "solo filas con stock bajo")
	search := pflag.String("search", "", "texto libre")
	out := pflag.String("out", "", "archivo de salida (por defecto inventario-<tienda>-<fecha>.pdf)")
	pflag.Parse()

	if *storeID == "" {
		fmt.Fprintln(os.Stderr, "--store es obligatorio")
		pflag.Usage()
		os.Exit(2)
	}
	if *out == "" {
		*out = fmt.Sprintf("inventario-%s-%s.pdf", *storeID, time.Now().Format("20060102"))
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	client, err := backend.NewClient(backend.Config{
		BaseURL:           cfg.Backend.BaseURL,
		Timeout:           cfg.Backend.Timeout,
		ServiceToken:      cfg.Backend.ServiceToken,
		LowStockThreshold: cfg.Inventory.LowStockThreshold,
	}, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Backend: %v\n", err)
		os.Exit(1)
	}

	uc := inventory.NewUseCase(client, nil, infrapdf.NewMarotoInventoryReport(cfg.App.Name), inventory.Config{
		LowStockThreshold: cfg.Inventory.LowStockThreshold,
		PageSize:          cfg.Inventory.PageSize,
		FetchLimit:        cfg.Inventory.FetchLimit,
	}, log)

	// La consulta fija los filtros de la sesión que luego usa el reporte.
	page, err := uc.Query(ctx, cliUser, *storeID, dto.InventoryQueryRequest{
		BranchID:     *branchID,
		CategoryID:   *categoryID,
		LowStockOnly: *lowStock,
		Search:       *search,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Consultar inventario: %v\n", err)
		os.Exit(1)
	}

	pdf, err := uc.Report(ctx, cliUser, *storeID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generar PDF: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, pdf, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir %s: %v\n", *out, err)
		os.Exit(1)
	}

	log.Info().
		Str("store_id", *storeID).
		Int("rows", page.TotalCount).
		Str("file", *out).
		Msg("reporte de inventario generado")
}
