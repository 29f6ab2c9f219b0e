// lowstock reevalúa las alertas de stock bajo de todos los productos y escribe el reporte de reposición.
//
// Uso: go run ./cmd/lowstock [-lang pt-BR]
// Pensado para cron: sale con código 2 si quedan alertas abiertas.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jhoicas/fulfillment-ledger/internal/application/inventory"
	"github.com/jhoicas/fulfillment-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/fulfillment-ledger/pkg/config"
	"github.com/jhoicas/fulfillment-ledger/pkg/logger"
)

func main() {
	lang := flag.String("lang", "pt-BR", "idioma del formato numérico del reporte")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	tag, err := language.Parse(*lang)
	if err != nil {
		log.Fatal().Err(err).Str("lang", *lang).Msg("idioma inválido")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	txRunner := postgres.NewTxRunner(pool)
	locations := inventory.ParseLocations(cfg.Inventory.Locations)
	alerts := inventory.NewAlertEngine(txRunner, log.Component("alerts"))
	ledger := inventory.NewStockLedger(txRunner, inventory.NewLotTracker(txRunner), alerts, locations, log.Component("ledger"))

	sweep, err := alerts.EvaluateAll(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("evaluar alertas")
	}
	items, err := ledger.Replenishment(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("lista de reposición")
	}
	log.Info().Int("evaluados", sweep.Evaluated).Int("abiertas", len(sweep.Open)).Msg("barrido de alertas")

	if err := writeReport(os.Stdout, message.NewPrinter(tag), len(sweep.Open), items); err != nil {
		log.Fatal().Err(err).Msg("escribir reporte")
	}
	if len(sweep.Open) > 0 {
		os.Exit(2)
	}
}

func writeReport(w io.Writer, p *message.Printer, open int, items []inventory.ReplenishmentItem) error {
	if _, err := p.Fprintf(w, "Alertas abiertas: %d\n\n", open); err != nil {
		return err
	}
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "Sin productos para reponer.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tSKU\tProducto\tSaldo\tMínimo\tSugerido\tCosto estimado\t")
	for _, it := range items {
		p.Fprintf(tw, "%d\t%s\t%s\t%v\t%v\t%v\t%v\t\n",
			it.Priority, it.SKU, it.Name,
			number.Decimal(it.Balance.InexactFloat64(), number.MaxFractionDigits(3)),
			number.Decimal(it.Minimum.InexactFloat64(), number.MaxFractionDigits(3)),
			number.Decimal(it.SuggestedQty.InexactFloat64(), number.MaxFractionDigits(3)),
			number.Decimal(it.EstimatedCost.InexactFloat64(), number.Scale(2)),
		)
	}
	return tw.Flush()
}
