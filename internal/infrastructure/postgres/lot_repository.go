package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/fulfillment-ledger/internal/domain"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo lotes de entrada (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

const lotColumns = `id, product_id, entry_date, initial_qty, remaining_qty, origin_type, origin_id, created_at`

func scanLot(row rowScanner) (*entity.Lot, error) {
	var l entity.Lot
	err := row.Scan(&l.ID, &l.ProductID, &l.EntryDate, &l.InitialQty, &l.RemainingQty, &l.OriginType, &l.OriginID, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserta el lote y asigna ID.
func (r *LotRepo) Create(ctx context.Context, lot *entity.Lot) error {
	query := `
		INSERT INTO stock_lots (product_id, entry_date, initial_qty, remaining_qty, origin_type, origin_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		lot.ProductID, lot.EntryDate, lot.InitialQty, lot.RemainingQty, lot.OriginType, lot.OriginID, lot.CreatedAt,
	).Scan(&lot.ID)
	if err != nil {
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

// ListAvailableForUpdate lotes con remanente en orden FIFO, bloqueados hasta el fin de la tx.
func (r *LotRepo) ListAvailableForUpdate(ctx context.Context, productID int64) ([]*entity.Lot, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+lotColumns+` FROM stock_lots
		WHERE product_id = $1 AND remaining_qty > 0
		ORDER BY entry_date, id
		FOR UPDATE`, productID)
	if err != nil {
		return nil, fmt.Errorf("list lots for update: %w", err)
	}
	return collect(rows, scanLot)
}

// UpdateRemaining guarda el remanente tras un consumo.
func (r *LotRepo) UpdateRemaining(ctx context.Context, lotID int64, remaining decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `UPDATE stock_lots SET remaining_qty = $2 WHERE id = $1`, lotID, remaining)
	if err != nil {
		return fmt.Errorf("update lot: %w", err)
	}
	return expectOne(tag, fmt.Errorf("lote %d: %w", lotID, domain.ErrNotFound))
}

// ListAvailable lotes con remanente en orden FIFO, sin bloqueo.
func (r *LotRepo) ListAvailable(ctx context.Context, productID int64) ([]*entity.Lot, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+lotColumns+` FROM stock_lots
		WHERE product_id = $1 AND remaining_qty > 0
		ORDER BY entry_date, id`, productID)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	return collect(rows, scanLot)
}

// SumRemaining total pendiente de consumir en lotes.
func (r *LotRepo) SumRemaining(ctx context.Context, productID int64) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(remaining_qty), 0) FROM stock_lots WHERE product_id = $1`, productID).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum lots: %w", err)
	}
	return sum, nil
}

// ListEnteredSince lotes con entrada desde since, incluidos los ya consumidos.
func (r *LotRepo) ListEnteredSince(ctx context.Context, productID int64, since time.Time) ([]*entity.Lot, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+lotColumns+` FROM stock_lots
		WHERE product_id = $1 AND entry_date >= $2
		ORDER BY entry_date, id`, productID, since)
	if err != nil {
		return nil, fmt.Errorf("list lots since: %w", err)
	}
	return collect(rows, scanLot)
}
