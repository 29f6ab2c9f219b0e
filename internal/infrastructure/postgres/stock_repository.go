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

var (
	_ repository.StockBalanceRepository    = (*StockBalanceRepo)(nil)
	_ repository.LocationBalanceRepository = (*LocationBalanceRepo)(nil)
)

// StockBalanceRepo saldo consolidado por producto sobre PostgreSQL (usable con pool o tx).
type StockBalanceRepo struct {
	q Querier
}

// NewStockBalanceRepository construye el adaptador de saldos. Pasar pool o tx (Querier).
func NewStockBalanceRepository(q Querier) *StockBalanceRepo {
	return &StockBalanceRepo{q: q}
}

const balanceColumns = `product_id, quantity, minimum_qty, ideal_qty, maximum_qty, average_cost, updated_at`

func scanBalance(row rowScanner) (*entity.StockBalance, error) {
	var b entity.StockBalance
	if err := row.Scan(&b.ProductID, &b.Quantity, &b.MinimumQty, &b.IdealQty, &b.MaximumQty, &b.AverageCost, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// Get saldo actual sin bloquear. Un producto sin fila tiene saldo cero.
func (r *StockBalanceRepo) Get(ctx context.Context, productID int64) (*entity.StockBalance, error) {
	b, err := scanBalance(r.q.QueryRow(ctx, `SELECT `+balanceColumns+` FROM stock_balances WHERE product_id = $1`, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.NewStockBalance(productID), nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return b, nil
}

// GetForUpdate crea la fila en cero si no existe y la bloquea (SELECT FOR UPDATE).
func (r *StockBalanceRepo) GetForUpdate(ctx context.Context, productID int64) (*entity.StockBalance, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_balances (product_id) VALUES ($1)
		ON CONFLICT (product_id) DO NOTHING`, productID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("producto %d: %w", productID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("init stock: %w", err)
	}
	b, err := scanBalance(r.q.QueryRow(ctx, `
		SELECT `+balanceColumns+` FROM stock_balances WHERE product_id = $1
		FOR UPDATE`, productID))
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return b, nil
}

// Upsert inserta o actualiza el saldo y los umbrales del producto.
func (r *StockBalanceRepo) Upsert(ctx context.Context, b *entity.StockBalance) error {
	query := `
		INSERT INTO stock_balances (product_id, quantity, minimum_qty, ideal_qty, maximum_qty, average_cost, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, minimum_qty = EXCLUDED.minimum_qty,
			ideal_qty = EXCLUDED.ideal_qty, maximum_qty = EXCLUDED.maximum_qty,
			average_cost = EXCLUDED.average_cost, updated_at = now()`
	_, err := r.q.Exec(ctx, query, b.ProductID, b.Quantity, b.MinimumQty, b.IdealQty, b.MaximumQty, b.AverageCost)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

// ListProductIDs productos con fila de saldo, en orden ascendente.
func (r *StockBalanceRepo) ListProductIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.q.Query(ctx, `SELECT product_id FROM stock_balances ORDER BY product_id`)
	if err != nil {
		return nil, fmt.Errorf("list stock products: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("list stock products: %w", err)
	}
	return ids, nil
}

// LocationBalanceRepo saldo por ubicación (usable con pool o tx).
type LocationBalanceRepo struct {
	q Querier
}

// NewLocationBalanceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLocationBalanceRepository(q Querier) *LocationBalanceRepo {
	return &LocationBalanceRepo{q: q}
}

func scanLocationBalance(row rowScanner) (*entity.LocationBalance, error) {
	var lb entity.LocationBalance
	if err := row.Scan(&lb.ProductID, &lb.Location, &lb.Quantity, &lb.UpdatedAt); err != nil {
		return nil, err
	}
	return &lb, nil
}

// GetForUpdate crea la fila (producto, ubicación) en cero si no existe y la bloquea.
func (r *LocationBalanceRepo) GetForUpdate(ctx context.Context, productID int64, location string) (*entity.LocationBalance, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO location_balances (product_id, location) VALUES ($1, $2)
		ON CONFLICT (product_id, location) DO NOTHING`, productID, location)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("producto %d: %w", productID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("init location stock: %w", err)
	}
	lb, err := scanLocationBalance(r.q.QueryRow(ctx, `
		SELECT product_id, location, quantity, updated_at
		FROM location_balances WHERE product_id = $1 AND location = $2
		FOR UPDATE`, productID, location))
	if err != nil {
		return nil, fmt.Errorf("get location stock for update: %w", err)
	}
	return lb, nil
}

// Upsert guarda la cantidad de la ubicación.
func (r *LocationBalanceRepo) Upsert(ctx context.Context, lb *entity.LocationBalance) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO location_balances (product_id, location, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (product_id, location)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`,
		lb.ProductID, lb.Location, lb.Quantity)
	if err != nil {
		return fmt.Errorf("upsert location stock: %w", err)
	}
	return nil
}

// ListByProduct saldos del producto por ubicación, ordenados por nombre.
func (r *LocationBalanceRepo) ListByProduct(ctx context.Context, productID int64) ([]*entity.LocationBalance, error) {
	rows, err := r.q.Query(ctx, `
		SELECT product_id, location, quantity, updated_at
		FROM location_balances WHERE product_id = $1
		ORDER BY location`, productID)
	if err != nil {
		return nil, fmt.Errorf("list location stock: %w", err)
	}
	return collect(rows, scanLocationBalance)
}
