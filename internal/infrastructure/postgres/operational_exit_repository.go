package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/fulfillment-ledger/internal/domain"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/repository"
)

var _ repository.OperationalExitRepository = (*OperationalExitRepo)(nil)

// OperationalExitRepo salidas operativas (usable con pool o tx).
type OperationalExitRepo struct {
	q Querier
}

// NewOperationalExitRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOperationalExitRepository(q Querier) *OperationalExitRepo {
	return &OperationalExitRepo{q: q}
}

// Create inserta la salida y asigna ID. El movimiento ya debe existir en la misma tx.
func (r *OperationalExitRepo) Create(ctx context.Context, e *entity.OperationalExit) error {
	query := `
		INSERT INTO stock_operational_exits (batch_ref, product_id, location, exit_type, quantity, exit_date,
			note, user_id, movement_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		e.BatchRef, e.ProductID, e.Location, string(e.Type), e.Quantity, e.Date,
		e.Note, e.UserID, e.MovementID, e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert operational exit: movimiento %d: %w", e.MovementID, domain.ErrDuplicate)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("insert operational exit: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("insert operational exit: %w", err)
	}
	return nil
}

// ListByBatch salidas de un lote en orden de creación.
func (r *OperationalExitRepo) ListByBatch(ctx context.Context, batchRef string) ([]*entity.OperationalExit, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, batch_ref, product_id, location, exit_type, quantity, exit_date, note, user_id, movement_id, created_at
		FROM stock_operational_exits WHERE batch_ref = $1
		ORDER BY id`, batchRef)
	if err != nil {
		return nil, fmt.Errorf("list operational exits: %w", err)
	}
	return collect(rows, func(row rowScanner) (*entity.OperationalExit, error) {
		var e entity.OperationalExit
		var kind string
		err := row.Scan(&e.ID, &e.BatchRef, &e.ProductID, &e.Location, &kind, &e.Quantity, &e.Date,
			&e.Note, &e.UserID, &e.MovementID, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		e.Type = entity.OperationalExitType(kind)
		return &e, nil
	})
}
