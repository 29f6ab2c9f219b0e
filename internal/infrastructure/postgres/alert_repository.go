package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/fulfillment-ledger/internal/domain"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/repository"
)

var _ repository.StockAlertRepository = (*StockAlertRepo)(nil)

// StockAlertRepo alertas de stock bajo (usable con pool o tx).
type StockAlertRepo struct {
	q Querier
}

// NewStockAlertRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockAlertRepository(q Querier) *StockAlertRepo {
	return &StockAlertRepo{q: q}
}

const alertColumns = `id, product_id, status, balance_snapshot, minimum_snapshot, opened_at, resolved_at, updated_at`

func scanAlert(row rowScanner) (*entity.StockAlert, error) {
	var a entity.StockAlert
	var status string
	err := row.Scan(&a.ID, &a.ProductID, &status, &a.BalanceSnapshot, &a.MinimumSnapshot, &a.OpenedAt, &a.ResolvedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Status = entity.AlertStatus(status)
	return &a, nil
}

// GetOpen alerta abierta del producto o nil, nil.
func (r *StockAlertRepo) GetOpen(ctx context.Context, productID int64) (*entity.StockAlert, error) {
	a, err := scanAlert(r.q.QueryRow(ctx, `
		SELECT `+alertColumns+` FROM stock_alerts
		WHERE product_id = $1 AND status = 'OPEN'`, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get open alert: %w", err)
	}
	return a, nil
}

// Create abre una alerta. El índice parcial uq_stock_alerts_open impide dos OPEN por producto.
func (r *StockAlertRepo) Create(ctx context.Context, a *entity.StockAlert) error {
	query := `
		INSERT INTO stock_alerts (product_id, status, balance_snapshot, minimum_snapshot, opened_at, resolved_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		a.ProductID, string(a.Status), a.BalanceSnapshot, a.MinimumSnapshot, a.OpenedAt, a.ResolvedAt, a.UpdatedAt,
	).Scan(&a.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("alerta abierta para producto %d: %w", a.ProductID, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

// Update guarda estado y snapshots.
func (r *StockAlertRepo) Update(ctx context.Context, a *entity.StockAlert) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_alerts
		SET status = $2, balance_snapshot = $3, minimum_snapshot = $4, resolved_at = $5, updated_at = $6
		WHERE id = $1`,
		a.ID, string(a.Status), a.BalanceSnapshot, a.MinimumSnapshot, a.ResolvedAt, a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("alerta abierta para producto %d: %w", a.ProductID, domain.ErrDuplicate)
		}
		return fmt.Errorf("update alert: %w", err)
	}
	return expectOne(tag, domain.ErrNotFound)
}

// ListOpen alertas abiertas ordenadas por producto.
func (r *StockAlertRepo) ListOpen(ctx context.Context) ([]*entity.StockAlert, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+alertColumns+` FROM stock_alerts
		WHERE status = 'OPEN' ORDER BY product_id`)
	if err != nil {
		return nil, fmt.Errorf("list open alerts: %w", err)
	}
	return collect(rows, scanAlert)
}
