package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo traslados entre ubicaciones (usable con pool o tx).
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

// Create inserta el traslado y asigna ID.
func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	query := `
		INSERT INTO stock_transfers (batch_ref, product_id, from_location, to_location, quantity, transfer_date, note, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		t.BatchRef, t.ProductID, t.FromLocation, t.ToLocation, t.Quantity, t.Date, t.Note, t.UserID, t.CreatedAt,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

// ListByBatch traslados de un lote en orden de creación.
func (r *TransferRepo) ListByBatch(ctx context.Context, batchRef string) ([]*entity.Transfer, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, batch_ref, product_id, from_location, to_location, quantity, transfer_date, note, user_id, created_at
		FROM stock_transfers WHERE batch_ref = $1
		ORDER BY id`, batchRef)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	return collect(rows, func(row rowScanner) (*entity.Transfer, error) {
		var t entity.Transfer
		err := row.Scan(&t.ID, &t.BatchRef, &t.ProductID, &t.FromLocation, &t.ToLocation, &t.Quantity, &t.Date,
			&t.Note, &t.UserID, &t.CreatedAt)
		if err != nil {
			return nil, err
		}
		return &t, nil
	})
}
