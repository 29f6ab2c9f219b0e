package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/fulfillment-ledger/internal/domain"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/inventory"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/repository"
)

// Reconciliation compara el saldo en caché con la reconstrucción del ledger y con los lotes.
type Reconciliation struct {
	ProductID     int64
	Cached        decimal.Decimal
	Replayed      decimal.Decimal
	LotsRemaining decimal.Decimal
	Consistent    bool
}

// Reconcile reconstruye el saldo del producto desde el ledger.
func (l *StockLedger) Reconcile(ctx context.Context, productID int64) (*Reconciliation, error) {
	var rec *Reconciliation
	err := l.tx.Run(ctx, func(repos repository.Repositories) error {
		bal, err := repos.Balances().Get(ctx, productID)
		if err != nil {
			return err
		}
		replayed, err := repos.Movements().SumSigned(ctx, productID)
		if err != nil {
			return err
		}
		lots, err := repos.Lots().SumRemaining(ctx, productID)
		if err != nil {
			return err
		}
		rec = &Reconciliation{
			ProductID:     productID,
			Cached:        bal.Quantity,
			Replayed:      inventory.RoundQty(replayed),
			LotsRemaining: inventory.RoundQty(lots),
		}
		rec.Consistent = rec.Replayed.Equal(rec.Cached) && rec.LotsRemaining.GreaterThanOrEqual(rec.Cached)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !rec.Consistent {
		l.log.Warn().Int64("product_id", productID).Stringer("cache", rec.Cached).
			Stringer("ledger", rec.Replayed).Stringer("lotes", rec.LotsRemaining).Msg("saldo inconsistente con el ledger")
	}
	return rec, nil
}

// Balance saldo consolidado y por ubicación del producto.
func (l *StockLedger) Balance(ctx context.Context, productID int64) (*entity.StockBalance, []*entity.LocationBalance, error) {
	var (
		bal  *entity.StockBalance
		locs []*entity.LocationBalance
	)
	err := l.tx.Run(ctx, func(repos repository.Repositories) error {
		var err error
		if bal, err = repos.Balances().Get(ctx, productID); err != nil {
			return err
		}
		locs, err = repos.LocationBalances().ListByProduct(ctx, productID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return bal, locs, nil
}

// History movimientos del producto, más recientes primero.
func (l *StockLedger) History(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	var out []*entity.StockMovement
	err := l.tx.Run(ctx, func(repos repository.Repositories) error {
		var err error
		out, err = repos.Movements().List(ctx, f)
		return err
	})
	return out, err
}

// SetThresholds configura mínimo, ideal y máximo del producto y reevalúa su alerta.
// max = 0 significa sin máximo.
func (l *StockLedger) SetThresholds(ctx context.Context, productID int64, minimum, ideal, maximum decimal.Decimal) (*entity.StockBalance, error) {
	minimum, ideal, maximum = inventory.RoundQty(minimum), inventory.RoundQty(ideal), inventory.RoundQty(maximum)
	if minimum.IsNegative() || ideal.IsNegative() || maximum.IsNegative() {
		return nil, fmt.Errorf("%w: los umbrales no pueden ser negativos", domain.ErrInvalidInput)
	}
	if ideal.IsPositive() && minimum.GreaterThan(ideal) {
		return nil, fmt.Errorf("%w: mínimo mayor que ideal", domain.ErrInvalidInput)
	}
	if maximum.IsPositive() && (minimum.GreaterThan(maximum) || ideal.GreaterThan(maximum)) {
		return nil, fmt.Errorf("%w: umbral mayor que el máximo", domain.ErrInvalidInput)
	}
	var bal *entity.StockBalance
	err := l.tx.Run(ctx, func(repos repository.Repositories) error {
		p, err := repos.Products().GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: producto %d", domain.ErrNotFound, productID)
		}
		if bal, err = repos.Balances().GetForUpdate(ctx, productID); err != nil {
			return err
		}
		bal.MinimumQty, bal.IdealQty, bal.MaximumQty = minimum, ideal, maximum
		bal.UpdatedAt = l.Now()
		if err := repos.Balances().Upsert(ctx, bal); err != nil {
			return err
		}
		_, err = l.alerts.EvaluateInTx(ctx, repos, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return bal, nil
}
