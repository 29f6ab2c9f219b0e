package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/fulfillment-ledger/internal/domain"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/repository"
)

// OperationalExitItem cantidad a retirar de un producto.
type OperationalExitItem struct {
	ProductID int64
	Quantity  decimal.Decimal
}

// OperationalExitBatch salidas que no son venta, todas desde la misma ubicación y con el mismo motivo.
type OperationalExitBatch struct {
	BatchRef string
	Location string
	Type     entity.OperationalExitType
	Date     time.Time
	Note     string
	UserID   string
	Items    []OperationalExitItem
}

// OperationalExitResult salidas registradas y sus movimientos EXIT, en el orden procesado.
type OperationalExitResult struct {
	BatchRef  string
	Exits     []*entity.OperationalExit
	Movements []*MovementResult
}

// RecordOperationalExitBatch retira stock de una ubicación por uso interno, pérdida, cambio o muestra.
// Cada ítem genera un EXIT (FIFO) y su registro de salida; si alguno falla no queda ninguno.
func (l *StockLedger) RecordOperationalExitBatch(ctx context.Context, in OperationalExitBatch) (*OperationalExitResult, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: la salida operativa no tiene ítems", domain.ErrInvalidInput)
	}
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: tipo de salida %q desconocido", domain.ErrInvalidInput, in.Type)
	}
	loc := strings.ToUpper(strings.TrimSpace(in.Location))
	if !l.locations.Contains(loc) {
		return nil, fmt.Errorf("%w: ubicación %q desconocida", domain.ErrInvalidInput, in.Location)
	}
	for _, it := range in.Items {
		if !it.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: cantidad inválida para producto %d", domain.ErrInvalidInput, it.ProductID)
		}
	}
	items := make([]OperationalExitItem, len(in.Items))
	copy(items, in.Items)
	// orden fijo de bloqueo de saldos
	sort.SliceStable(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	date := in.Date
	if date.IsZero() {
		date = l.Now()
	}
	note := fmt.Sprintf("Salida operacional %s %s", in.Type, loc)
	if n := strings.TrimSpace(in.Note); n != "" {
		note += " " + n
	}

	out := &OperationalExitResult{BatchRef: batchRefOr(in.BatchRef)}
	err := l.tx.Run(ctx, func(repos repository.Repositories) error {
		out.Exits, out.Movements = nil, nil
		for _, it := range items {
			mr, err := l.RecordExitInTx(ctx, repos, ExitInput{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Date:      date,
				Location:  loc,
				Origin:    &Origin{Type: entity.OriginOperational},
				Note:      note,
				UserID:    in.UserID,
			})
			if err != nil {
				return err
			}
			ex := &entity.OperationalExit{
				BatchRef:   out.BatchRef,
				ProductID:  it.ProductID,
				Location:   loc,
				Type:       in.Type,
				Quantity:   mr.Movement.Quantity,
				Date:       date,
				Note:       strings.TrimSpace(in.Note),
				UserID:     in.UserID,
				MovementID: mr.Movement.ID,
				CreatedAt:  l.Now(),
			}
			if err := repos.OperationalExits().Create(ctx, ex); err != nil {
				return err
			}
			out.Exits = append(out.Exits, ex)
			out.Movements = append(out.Movements, mr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.log.Info().Str("batch_ref", out.BatchRef).Str("tipo", string(in.Type)).Str("ubicacion", loc).
		Int("items", len(out.Exits)).Msg("salida operacional registrada")
	return out, nil
}
