package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/inventory"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/repository"
)

// LotTracker gestiona lotes de entrada y su consumo FIFO.
type LotTracker struct {
	tx  TxRunner
	Now func() time.Time
}

// NewLotTracker construye el tracker.
func NewLotTracker(tx TxRunner) *LotTracker {
	return &LotTracker{tx: tx, Now: time.Now}
}

// LotAge lote con remanente y sus días en stock.
type LotAge struct {
	Lot         *entity.Lot
	DaysInStock int
}

// Open crea un lote nuevo con remanente = cantidad inicial.
func (t *LotTracker) Open(ctx context.Context, repos repository.Repositories, productID int64, qty decimal.Decimal, entryDate time.Time, origin *Origin) (*entity.Lot, error) {
	lot := &entity.Lot{
		ProductID:    productID,
		EntryDate:    entryDate,
		InitialQty:   qty,
		RemainingQty: qty,
		CreatedAt:    t.Now(),
	}
	if origin != nil {
		lot.OriginType = origin.Type
		if origin.ID != 0 {
			id := origin.ID
			lot.OriginID = &id
		}
	}
	if err := repos.Lots().Create(ctx, lot); err != nil {
		return nil, err
	}
	return lot, nil
}

// Consume descuenta qty de los lotes del producto en orden FIFO (entry_date, id).
// Debe llamarse dentro de la transacción del ledger, con el saldo del producto ya bloqueado.
// Si los lotes no alcanzan devuelve ErrInsufficientStock sin escribir nada.
func (t *LotTracker) Consume(ctx context.Context, repos repository.Repositories, productID int64, qty decimal.Decimal) ([]inventory.LotAllocation, error) {
	lots, err := repos.Lots().ListAvailableForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	plan, err := inventory.PlanFIFO(lots, qty)
	if err != nil {
		return nil, fmt.Errorf("producto %d: %w", productID, err)
	}
	for _, a := range plan {
		if err := repos.Lots().UpdateRemaining(ctx, a.LotID, a.RemainingAfter); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

// Aging lotes con remanente del producto, del más antiguo al más nuevo, con su antigüedad.
func (t *LotTracker) Aging(ctx context.Context, productID int64) ([]LotAge, error) {
	today := t.Now()
	var out []LotAge
	err := t.tx.Run(ctx, func(repos repository.Repositories) error {
		lots, err := repos.Lots().ListAvailable(ctx, productID)
		if err != nil {
			return err
		}
		inventory.SortFIFO(lots)
		out = make([]LotAge, 0, len(lots))
		for _, l := range lots {
			out = append(out, LotAge{Lot: l, DaysInStock: l.DaysInStock(today)})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
