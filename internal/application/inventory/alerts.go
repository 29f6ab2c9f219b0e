package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/fulfillment-ledger/internal/domain"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/inventory"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/repository"
)

// AlertEngine mantiene a lo sumo una alerta OPEN por producto según saldo vs mínimo.
type AlertEngine struct {
	tx  TxRunner
	log zerolog.Logger
	Now func() time.Time
}

// NewAlertEngine construye el motor de alertas.
func NewAlertEngine(tx TxRunner, log zerolog.Logger) *AlertEngine {
	return &AlertEngine{tx: tx, log: log, Now: time.Now}
}

// SweepResult resultado de evaluar todos los productos con saldo.
type SweepResult struct {
	Evaluated int
	Open      []*entity.StockAlert
}

// EvaluateInTx evalúa el producto dentro de la transacción del caller.
// Devuelve la alerta abierta tras la evaluación o nil si no queda ninguna.
func (e *AlertEngine) EvaluateInTx(ctx context.Context, repos repository.Repositories, productID int64) (*entity.StockAlert, error) {
	bal, err := repos.Balances().Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	open, err := repos.Alerts().GetOpen(ctx, productID)
	if err != nil {
		return nil, err
	}
	now := e.Now()
	switch inventory.DecideAlert(bal.Quantity, bal.MinimumQty, open) {
	case inventory.AlertOpenNew:
		open = &entity.StockAlert{
			ProductID:       productID,
			Status:          entity.AlertOpen,
			BalanceSnapshot: bal.Quantity,
			MinimumSnapshot: bal.MinimumQty,
			OpenedAt:        now,
			UpdatedAt:       now,
		}
		if err := repos.Alerts().Create(ctx, open); err != nil {
			return nil, err
		}
		e.log.Info().Int64("product_id", productID).
			Stringer("saldo", bal.Quantity).Stringer("minimo", bal.MinimumQty).
			Msg("alerta de stock bajo abierta")
	case inventory.AlertRefresh:
		open.BalanceSnapshot = bal.Quantity
		open.MinimumSnapshot = bal.MinimumQty
		open.UpdatedAt = now
		if err := repos.Alerts().Update(ctx, open); err != nil {
			return nil, err
		}
	case inventory.AlertResolve:
		open.Status = entity.AlertResolved
		open.ResolvedAt = &now
		open.UpdatedAt = now
		if err := repos.Alerts().Update(ctx, open); err != nil {
			return nil, err
		}
		e.log.Info().Int64("product_id", productID).Stringer("saldo", bal.Quantity).Msg("alerta de stock bajo resuelta")
		return nil, nil
	}
	return open, nil
}

// Evaluate evalúa un producto en su propia transacción, bloqueando su saldo.
func (e *AlertEngine) Evaluate(ctx context.Context, productID int64) (*entity.StockAlert, error) {
	var alert *entity.StockAlert
	err := e.tx.Run(ctx, func(repos repository.Repositories) error {
		p, err := repos.Products().GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: producto %d", domain.ErrNotFound, productID)
		}
		if _, err := repos.Balances().GetForUpdate(ctx, productID); err != nil {
			return err
		}
		alert, err = e.EvaluateInTx(ctx, repos, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return alert, nil
}

// EvaluateAll barre todos los productos con saldo registrado, cada uno en su transacción.
func (e *AlertEngine) EvaluateAll(ctx context.Context) (*SweepResult, error) {
	var ids []int64
	err := e.tx.Run(ctx, func(repos repository.Repositories) error {
		var err error
		ids, err = repos.Balances().ListProductIDs(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	res := &SweepResult{}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := e.Evaluate(ctx, id); err != nil {
			return nil, fmt.Errorf("evaluar producto %d: %w", id, err)
		}
		res.Evaluated++
	}
	res.Open, err = e.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ListOpen alertas abiertas.
func (e *AlertEngine) ListOpen(ctx context.Context) ([]*entity.StockAlert, error) {
	var out []*entity.StockAlert
	err := e.tx.Run(ctx, func(repos repository.Repositories) error {
		var err error
		out, err = repos.Alerts().ListOpen(ctx)
		return err
	})
	return out, err
}
